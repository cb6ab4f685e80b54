package entity

// FormAssignment is one value destined for a control on the target form. The
// control is located by id first and by its label text second.
type FormAssignment struct {
	Field  string `json:"field"`
	Target string `json:"target"`
	Label  string `json:"label,omitempty"`
	Value  string `json:"value"`
}
