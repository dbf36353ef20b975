package school

import (
	"mime/multipart"
	"strings"
)

// CreateSchoolRequest carries the multipart form fields of POST /schools.
type CreateSchoolRequest struct {
	Name    string `form:"name" validate:"required"`
	Address string `form:"address" validate:"required"`
	City    string `form:"city" validate:"required"`
	State   string `form:"state" validate:"required"`
	Contact string `form:"contact" validate:"required"`
	EmailID string `form:"email_id" validate:"required"`

	// Image is nil when the form has no "image" part.
	Image *multipart.FileHeader `form:"-" validate:"-"`
}

func (r *CreateSchoolRequest) trim() {
	r.Name = strings.TrimSpace(r.Name)
	r.Address = strings.TrimSpace(r.Address)
	r.City = strings.TrimSpace(r.City)
	r.State = strings.TrimSpace(r.State)
	r.Contact = strings.TrimSpace(r.Contact)
	r.EmailID = strings.TrimSpace(r.EmailID)
}

// hasImage reports whether a non-empty attachment was supplied.
func (r *CreateSchoolRequest) hasImage() bool {
	return r.Image != nil && r.Image.Size > 0
}

type CreateSchoolResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}
