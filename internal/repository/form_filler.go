package repository

import (
	"context"
	"errors"

	"github.com/user/bookmeta/internal/entity"
)

// ErrFormNotPersisted is returned when filled values would be thrown away
// with the tab: there is neither a submit control to press nor a browser
// the user keeps open.
var ErrFormNotPersisted = errors.New("form values would not persist: configure a submit selector or a remote browser")

// FormFiller writes planned values into a target page's form controls.
type FormFiller interface {
	Fill(ctx context.Context, targetURL string, assignments []entity.FormAssignment) (int, error)
}
