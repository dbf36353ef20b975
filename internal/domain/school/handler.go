package school

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"schooldirectory/internal/pkg/response"
)

// Handler exposes the school gateway over HTTP. Every failure is converted
// to a JSON error envelope here; nothing propagates further.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List godoc
// @Summary List schools
// @Description Returns every registered school, newest first.
// @Tags Schools
// @Produce json
// @Success 200 {array} School
// @Failure 500,503 {object} map[string]interface{}
// @Router /schools [get]
func (h *Handler) List(c *gin.Context) {
	schools, err := h.service.List(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Failed to fetch schools")
		return
	}
	c.JSON(http.StatusOK, schools)
}

// Create godoc
// @Summary Register a school
// @Tags Schools
// @Accept multipart/form-data
// @Produce json
// @Param name formData string true "School name"
// @Param address formData string true "Address"
// @Param city formData string true "City"
// @Param state formData string true "State"
// @Param contact formData string true "Contact number"
// @Param email_id formData string true "Email"
// @Param image formData file false "Image (image/*)"
// @Success 201 {object} CreateSchoolResponse
// @Failure 400,413,500,503 {object} map[string]interface{}
// @Router /schools [post]
func (h *Handler) Create(c *gin.Context) {
	req := CreateSchoolRequest{
		Name:    c.PostForm("name"),
		Address: c.PostForm("address"),
		City:    c.PostForm("city"),
		State:   c.PostForm("state"),
		Contact: c.PostForm("contact"),
		EmailID: c.PostForm("email_id"),
	}
	// a missing or non-multipart image part simply means "no image"
	if fh, err := c.FormFile("image"); err == nil {
		req.Image = fh
	}

	school, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, "Failed to add school")
		return
	}

	response.Created(c, http.StatusCreated, "School added successfully", gin.H{"id": school.ID})
}

// Health godoc
// @Summary Store health
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) Health(c *gin.Context) {
	total, err := h.service.Count(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Store unavailable")
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"status":  "healthy",
		"schools": total,
	})
}

func (h *Handler) fail(c *gin.Context, err error, action string) {
	status := StatusFor(err)
	kind := KindOf(err)

	message := err.Error()
	if kind != KindValidation {
		message = action + ": " + err.Error()
		_ = c.Error(err).SetMeta(gin.H{"kind": kind.String(), "action": action})
	}
	response.Error(c, status, kind.String(), message)
}
