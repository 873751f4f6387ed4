package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"visage/internal/config"
	"visage/internal/database"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq atomic.Int64

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Port:                     "8000",
		Env:                      "test",
		JWTSecret:                "handler-test-secret",
		JWTAlgorithm:             "HS256",
		AccessTokenExpireMinutes: 30,
		UploadDir:                t.TempDir(),
	}
}

// newTestServer builds a Server on an in-memory database with routes mounted
// on a bare Fiber app. The middleware pipeline (rate limiter included) is
// exercised by its own tests; handler tests talk to routes directly.
func newTestServer(t *testing.T) (*Server, *fiber.App) {
	t.Helper()

	dsn := fmt.Sprintf("file:server_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))

	srv, err := NewServerWithDeps(testConfig(t), db, nil)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{BodyLimit: 4 * 1024 * 1024})
	srv.SetupRoutes(app)
	return srv, app
}

func jsonRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// registerUser creates an account through the API and returns its ID.
func registerUser(t *testing.T, app *fiber.App, username, email, password string) uint {
	t.Helper()

	resp, err := app.Test(jsonRequest(http.MethodPost, "/v1/users", fiber.Map{
		"username": username,
		"email":    email,
		"password": password,
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		ID uint `json:"id"`
	}
	decodeJSON(t, resp, &body)
	require.NotZero(t, body.ID)
	return body.ID
}

// loginUser authenticates through the API and returns the bearer token.
func loginUser(t *testing.T, app *fiber.App, identifier, password string) string {
	t.Helper()

	form := url.Values{}
	form.Set("username", identifier)
	form.Set("password", password)
	req := httptest.NewRequest(http.MethodPost, "/v1/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body LoginResponse
	decodeJSON(t, resp, &body)
	require.NotEmpty(t, body.AccessToken)
	return body.AccessToken
}

func withBearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

// multipartUpload builds a multipart request carrying a single "file" part.
func multipartUpload(t *testing.T, target, filename, contentType string, content []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = io.Copy(part, bytes.NewReader(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}
