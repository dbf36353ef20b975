package school

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) List(ctx context.Context) ([]School, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]School), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, s *School) error {
	args := m.Called(ctx, s)
	if args.Error(0) == nil && s != nil {
		s.ID = 999 // simulate DB insert
	}
	return args.Error(0)
}

func (m *MockRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type fakeImageStore struct {
	mu    sync.Mutex
	saved map[string][]byte
	types map[string]string
	err   error
}

func newFakeImageStore() *fakeImageStore {
	return &fakeImageStore{saved: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeImageStore) Save(_ context.Context, name, contentType string, data io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved[name] = b
	f.types[name] = contentType
	return name, nil
}

func (f *fakeImageStore) has(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.saved[name]
	return ok
}

func (f *fakeImageStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

func validRequest() CreateSchoolRequest {
	return CreateSchoolRequest{
		Name:    "Green Valley High School",
		Address: "12 MG Road",
		City:    "Pune",
		State:   "Maharashtra",
		Contact: "9876543210",
		EmailID: "office@greenvalley.edu",
	}
}

// newFileHeader round-trips a multipart body so the header looks exactly
// like one produced by a real request.
func newFileHeader(t *testing.T, filename, contentType string, data []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, filename))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	require.Len(t, form.File["image"], 1)
	return form.File["image"][0]
}
