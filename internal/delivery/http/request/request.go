package request

type ExtractRequest struct {
	URL string `json:"url"`
}

type InjectRequest struct {
	TargetURL string `json:"target_url"`
}
