package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"schooldirectory/internal/domain/school"
	"schooldirectory/internal/logger"
)

const schoolsPath = "/api/schools"

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// FormError means the form failed the client-side checks and nothing was
// sent. Problems is keyed by form field name.
type FormError struct {
	Problems map[string]string
}

func (e *FormError) Error() string {
	fields := make([]string, 0, len(e.Problems))
	for _, f := range formFields {
		if msg, ok := e.Problems[f]; ok {
			fields = append(fields, f+": "+msg)
		}
	}
	return "invalid form: " + strings.Join(fields, "; ")
}

// ImageUpload is an optional attachment for Create.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        io.Reader
}

// Client talks to the school API. It satisfies Fetcher.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: logger.Component("directory_client"),
	}
}

func (c *Client) List(ctx context.Context) ([]school.School, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+schoolsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schools: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp)
	}

	var schools []school.School
	if err := json.NewDecoder(resp.Body).Decode(&schools); err != nil {
		return nil, fmt.Errorf("failed to decode schools: %w", err)
	}
	c.log.Debug().Int("count", len(schools)).Msg("schools fetched")
	return schools, nil
}

// Create checks the form with ValidateForm, then submits it as multipart and
// returns the new id. A *FormError is returned without contacting the server.
func (c *Client) Create(ctx context.Context, in FormInput, image *ImageUpload) (int64, error) {
	if problems := ValidateForm(in); problems != nil {
		return 0, &FormError{Problems: problems}
	}

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	fields := []struct{ name, value string }{
		{"name", in.Name},
		{"address", in.Address},
		{"city", in.City},
		{"state", in.State},
		{"contact", in.Contact},
		{"email_id", in.EmailID},
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return 0, fmt.Errorf("failed to write field %s: %w", f.name, err)
		}
	}

	if image != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, escapeQuotes(image.Filename)))
		h.Set("Content-Type", image.ContentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return 0, fmt.Errorf("failed to create image part: %w", err)
		}
		if _, err := io.Copy(part, image.Data); err != nil {
			return 0, fmt.Errorf("failed to copy image: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return 0, fmt.Errorf("failed to close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+schoolsPath, body)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to submit school: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return 0, decodeAPIError(resp)
	}

	var created school.CreateSchoolResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}
	return created.ID, nil
}

func decodeAPIError(resp *http.Response) error {
	var payload struct {
		Message string `json:"message"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, &payload); err != nil || payload.Message == "" {
		payload.Message = strings.TrimSpace(string(data))
	}
	if payload.Message == "" {
		payload.Message = http.StatusText(resp.StatusCode)
	}
	return &APIError{Status: resp.StatusCode, Message: payload.Message}
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
