package school

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"schooldirectory/internal/storage"
)

type testEnv struct {
	router     *gin.Engine
	db         *gorm.DB
	contentDir string
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type formFile struct {
	filename    string
	contentType string
	data        []byte
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return setupTestEnvWithContentDir(t, filepath.Join(t.TempDir(), "public", "schoolImages"))
}

func setupTestEnvWithContentDir(t *testing.T, contentDir string) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:school_handler_test_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err, "failed to open sqlite db")
	require.NoError(t, AutoMigrate(db), "failed to migrate db")
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	svc := NewService(NewRepository(db), storage.NewLocalStore(contentDir), 1<<20)
	h := NewHandler(svc)

	r := gin.New()
	r.GET("/health", h.Health)
	RegisterRoutes(r.Group("/api"), h)

	return &testEnv{router: r, db: db, contentDir: contentDir}
}

func validFields() map[string]string {
	return map[string]string{
		"name":     "Green Valley High School",
		"address":  "12 MG Road",
		"city":     "Pune",
		"state":    "Maharashtra",
		"contact":  "9876543210",
		"email_id": "office@greenvalley.edu",
	}
}

func newMultipartRequest(t *testing.T, fields map[string]string, file *formFile) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, file.filename))
		h.Set("Content-Type", file.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(file.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/schools", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) create(t *testing.T, fields map[string]string, file *formFile) *httptest.ResponseRecorder {
	t.Helper()
	return e.do(newMultipartRequest(t, fields, file))
}

func (e *testEnv) list(t *testing.T) []School {
	t.Helper()
	rr := e.do(httptest.NewRequest(http.MethodGet, "/api/schools", nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var schools []School
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &schools))
	return schools
}

func decodeCreated(t *testing.T, rr *httptest.ResponseRecorder) CreateSchoolResponse {
	t.Helper()
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var resp CreateSchoolResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	return resp
}

func TestHandler_List_EmptyTableReturnsEmptyArray(t *testing.T) {
	env := setupTestEnv(t)

	rr := env.do(httptest.NewRequest(http.MethodGet, "/api/schools", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestHandler_Create_WithoutImage(t *testing.T) {
	env := setupTestEnv(t)

	created := decodeCreated(t, env.create(t, validFields(), nil))
	assert.Equal(t, "School added successfully", created.Message)
	assert.Positive(t, created.ID)

	schools := env.list(t)
	require.Len(t, schools, 1)
	assert.Equal(t, created.ID, schools[0].ID)
	assert.Equal(t, "", schools[0].Image)
	assert.Equal(t, "office@greenvalley.edu", schools[0].EmailID)
}

func TestHandler_Create_EmptyNameIsRejected(t *testing.T) {
	env := setupTestEnv(t)
	decodeCreated(t, env.create(t, validFields(), nil))
	before := len(env.list(t))

	fields := validFields()
	fields["name"] = ""
	rr := env.create(t, fields, nil)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	resp := decodeError(t, rr)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Equal(t, "missing required field: name", resp.Message)
	assert.Len(t, env.list(t), before)
}

func TestHandler_Create_MissingFieldsAreRejected(t *testing.T) {
	env := setupTestEnv(t)

	for _, field := range requiredFields {
		fields := validFields()
		delete(fields, field)
		rr := env.create(t, fields, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code, field)
	}

	assert.Empty(t, env.list(t))
}

func TestHandler_Create_NonMultipartBodyIsValidationFailure(t *testing.T) {
	env := setupTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/schools", strings.NewReader(`{"name":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := env.do(req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, env.list(t))
}

func TestHandler_Create_TextFileIsRejected(t *testing.T) {
	env := setupTestEnv(t)

	rr := env.create(t, validFields(), &formFile{filename: "notes.txt", contentType: "text/plain", data: []byte("hello")})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	resp := decodeError(t, rr)
	assert.Equal(t, "invalid image type", resp.Message)

	entries, err := os.ReadDir(env.contentDir)
	if err == nil {
		assert.Empty(t, entries)
	} else {
		assert.True(t, os.IsNotExist(err))
	}
	assert.Empty(t, env.list(t))
}

func TestHandler_Create_WithImage(t *testing.T) {
	env := setupTestEnv(t)
	data := []byte("\x89PNG\r\n\x1a\nfake")

	created := decodeCreated(t, env.create(t, validFields(), &formFile{filename: "campus.png", contentType: "image/png", data: data}))

	schools := env.list(t)
	require.Len(t, schools, 1)
	assert.Equal(t, created.ID, schools[0].ID)
	require.NotEmpty(t, schools[0].Image)
	assert.True(t, strings.HasSuffix(schools[0].Image, ".png"))

	written, err := os.ReadFile(filepath.Join(env.contentDir, schools[0].Image))
	require.NoError(t, err)
	assert.Equal(t, data, written)
}

func TestHandler_Create_ImageTooLarge(t *testing.T) {
	env := setupTestEnv(t)

	rr := env.create(t, validFields(), &formFile{filename: "huge.jpg", contentType: "image/jpeg", data: make([]byte, 1<<20+1)})

	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	assert.Empty(t, env.list(t))
}

func TestHandler_Create_FilesystemFailure(t *testing.T) {
	// a regular file where the content directory should be makes MkdirAll fail
	blocker := filepath.Join(t.TempDir(), "schoolImages")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	env := setupTestEnvWithContentDir(t, blocker)

	rr := env.create(t, validFields(), &formFile{filename: "campus.png", contentType: "image/png", data: []byte("png")})

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	resp := decodeError(t, rr)
	assert.Equal(t, "FILESYSTEM_ERROR", resp.Error.Code)
	assert.True(t, strings.HasPrefix(resp.Message, "Failed to add school"))
	assert.Empty(t, env.list(t), "no row may reference an unwritten image")
}

func TestHandler_Create_DuplicatesGetDistinctIDs(t *testing.T) {
	env := setupTestEnv(t)

	first := decodeCreated(t, env.create(t, validFields(), nil))
	second := decodeCreated(t, env.create(t, validFields(), nil))

	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, env.list(t), 2)
}

func TestHandler_Create_IDsAreUniqueAndListIsNewestFirst(t *testing.T) {
	env := setupTestEnv(t)

	seen := map[int64]bool{}
	for i := 0; i < 15; i++ {
		fields := validFields()
		fields["name"] = fmt.Sprintf("School %02d", i)
		created := decodeCreated(t, env.create(t, fields, nil))
		assert.False(t, seen[created.ID], "id %d returned twice", created.ID)
		seen[created.ID] = true
	}

	schools := env.list(t)
	require.Len(t, schools, 15)
	for i := 1; i < len(schools); i++ {
		assert.Greater(t, schools[i-1].ID, schools[i].ID)
	}
	assert.Equal(t, "School 14", schools[0].Name)
}

func TestHandler_List_MissingTableIsStoreUnavailable(t *testing.T) {
	env := setupTestEnv(t)
	require.NoError(t, env.db.Migrator().DropTable(&School{}))

	rr := env.do(httptest.NewRequest(http.MethodGet, "/api/schools", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	resp := decodeError(t, rr)
	assert.Equal(t, "STORE_UNAVAILABLE", resp.Error.Code)
	assert.Contains(t, resp.Message, ErrTableMissing.Error())
}

func TestHandler_Health(t *testing.T) {
	env := setupTestEnv(t)
	decodeCreated(t, env.create(t, validFields(), nil))

	rr := env.do(httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Status  string `json:"status"`
			Schools int64  `json:"schools"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "healthy", resp.Data.Status)
	assert.Equal(t, int64(1), resp.Data.Schools)
}
