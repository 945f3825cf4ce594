// Package post holds the blog's single entity, its in-memory store with
// periodic snapshotting, read-time estimation and substring search.
package post

import (
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrNotFound is returned when no post has the requested id.
var ErrNotFound = errors.New("post: not found")

// Post is a blog post. Content is raw markdown and is never stored rendered.
type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	ReadTime  string    `json:"readTime"`
	CreatedAt time.Time `json:"createdAt"`
}

// Date formats CreatedAt for display.
func (p Post) Date() string {
	return p.CreatedAt.Format("2006-01-02")
}

// Input carries the caller-supplied fields of a create or update.
type Input struct {
	Title   string `json:"title"`
	Author  string `json:"author"`
	Content string `json:"content"`
}

var notBlank = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return validation.NewError("validation_required", "cannot be blank")
	}
	return nil
})

// Validate reports every field that is missing or blank after trimming.
func (in Input) Validate() error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, notBlank),
		validation.Field(&in.Author, validation.Required, notBlank),
		validation.Field(&in.Content, validation.Required, notBlank),
	)
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if errors.As(err, &errs) {
		return &ValidationError{errs: errs}
	}
	return err
}

// ValidationError is returned by Create and Update when a required field is
// missing. It is an expected outcome, not a failure of the store.
type ValidationError struct {
	errs validation.Errors
}

func (e *ValidationError) Error() string {
	return "post: invalid input: " + e.errs.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.errs
}

// Fields maps each failing field name to its message.
func (e *ValidationError) Fields() map[string]string {
	out := make(map[string]string, len(e.errs))
	for name, err := range e.errs {
		out[name] = err.Error()
	}
	return out
}

// Has reports whether the named field failed validation.
func (e *ValidationError) Has(field string) bool {
	_, ok := e.errs[field]
	return ok
}
