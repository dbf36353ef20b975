package school

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"schooldirectory/internal/logger"
	"schooldirectory/internal/pkg/validator"
	"schooldirectory/internal/storage"
)

const DefaultMaxImageBytes = 5 * 1024 * 1024 // 5 MB

// requiredFields lists form fields in the order they are reported.
var requiredFields = []string{"name", "address", "city", "state", "contact", "email_id"}

// Service validates submissions and performs the single read or write each
// operation needs. It holds no locks; concurrent creates produce independent
// rows.
type Service struct {
	repo          Repository
	images        storage.ImageStore
	maxImageBytes int64
	now           func() time.Time
	newToken      func() string
	log           zerolog.Logger
}

func NewService(repo Repository, images storage.ImageStore, maxImageBytes int64) *Service {
	if maxImageBytes <= 0 {
		maxImageBytes = DefaultMaxImageBytes
	}
	return &Service{
		repo:          repo,
		images:        images,
		maxImageBytes: maxImageBytes,
		now:           time.Now,
		newToken:      func() string { return uuid.New().String() },
		log:           logger.Component("school"),
	}
}

// List returns all schools ordered by id descending. The slice is never nil
// on success.
func (s *Service) List(ctx context.Context) ([]School, error) {
	schools, err := s.repo.List(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list schools")
		return nil, err
	}
	if schools == nil {
		schools = []School{}
	}
	s.log.Debug().Int("count", len(schools)).Msg("schools listed")
	return schools, nil
}

// Count returns the number of stored schools.
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// Create validates the request, writes the image (if any) and then inserts
// the row. The write always happens first so a row never points at a file
// that was not stored; a failed insert can leave the image orphaned.
func (s *Service) Create(ctx context.Context, req CreateSchoolRequest) (*School, error) {
	req.trim()

	if invalid := validator.Validate(&req); invalid != nil {
		missing := make([]string, 0, len(invalid))
		for _, f := range requiredFields {
			if _, ok := invalid[f]; ok {
				missing = append(missing, f)
			}
		}
		return nil, &ValidationError{Reason: ErrMissingField, Fields: missing}
	}

	var imagePath string
	if req.hasImage() {
		contentType := req.Image.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, "image/") {
			return nil, &ValidationError{Reason: ErrInvalidImageType}
		}
		if req.Image.Size > s.maxImageBytes {
			return nil, &ValidationError{Reason: ErrImageTooLarge}
		}

		var err error
		imagePath, err = s.saveImage(ctx, req.Image, contentType)
		if err != nil {
			s.log.Error().Err(err).Str("filename", req.Image.Filename).Msg("failed to store school image")
			return nil, err
		}
	}

	school := &School{
		Name:    req.Name,
		Address: req.Address,
		City:    req.City,
		State:   req.State,
		Contact: req.Contact,
		Image:   imagePath,
		EmailID: req.EmailID,
	}

	if err := s.repo.Create(ctx, school); err != nil {
		var serr *StoreError
		if !errors.As(err, &serr) {
			err = newStoreError("create", err)
		}
		ev := s.log.Error().Err(err)
		if imagePath != "" {
			ev = ev.Str("orphaned_image", imagePath)
		}
		ev.Msg("failed to insert school")
		return nil, err
	}

	s.log.Info().Int64("id", school.ID).Str("image", school.Image).Msg("school created")
	return school, nil
}

func (s *Service) saveImage(ctx context.Context, fh *multipart.FileHeader, contentType string) (string, error) {
	name := s.imageName(fh.Filename, contentType)

	file, err := fh.Open()
	if err != nil {
		return "", &FilesystemError{Op: "open", Name: fh.Filename, Cause: err}
	}
	defer file.Close()

	stored, err := s.images.Save(ctx, name, contentType, file)
	if err != nil {
		return "", &FilesystemError{Op: "write", Name: name, Cause: err}
	}
	return stored, nil
}

// imageName builds <unix-nanos>_<uuid><ext>. Uniqueness comes from the name,
// not the content: the same upload twice yields two files.
func (s *Service) imageName(original, contentType string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(original)))
	if !validExt(ext) {
		ext = mimeToExt(contentType)
	}
	return fmt.Sprintf("%d_%s%s", s.now().UnixNano(), s.newToken(), ext)
}

func validExt(ext string) bool {
	if len(ext) < 2 || len(ext) > 6 {
		return false
	}
	for _, r := range ext[1:] {
		if !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

func mimeToExt(mime string) string {
	switch strings.Split(mime, ";")[0] {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/svg+xml":
		return ".svg"
	case "image/avif":
		return ".avif"
	default:
		return ".bin"
	}
}
