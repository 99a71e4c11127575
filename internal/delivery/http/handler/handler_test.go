package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"talenthub/internal/delivery/http/middleware"
	"talenthub/internal/domain/user"
	"talenthub/internal/pkg/jwt"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	app    *fiber.App
	jwt    *jwt.HMACService
	guards Guards
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	svc := jwt.NewHMACService("access-secret", "refresh-secret", time.Minute, time.Hour)
	authMw := middleware.NewAuthMiddleware(svc)

	app := fiber.New()
	app.Use(middleware.NewErrorMiddleware(nil).Middleware())

	return &testEnv{
		app:    app,
		jwt:    svc,
		guards: Guards{Auth: authMw.Middleware(), Optional: authMw.Optional()},
	}
}

func (e *testEnv) token(t *testing.T, id uuid.UUID, role user.Role) string {
	t.Helper()
	pair, err := e.jwt.IssuePair(jwt.Subject{UserID: id, Email: "someone@example.com", Role: string(role)})
	require.NoError(t, err)
	return pair.AccessToken
}

type apiResponse struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *testEnv) do(t *testing.T, req *http.Request) (*http.Response, apiResponse) {
	t.Helper()
	resp, err := e.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body apiResponse
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	}
	return resp, body
}

func jsonRequest(method, target string, body any) *http.Request {
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	return req
}

func withToken(req *http.Request, tok string) *http.Request {
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+tok)
	return req
}

func multipartRequest(t *testing.T, target string, fields map[string]string, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		fw, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out), strings.TrimSpace(string(raw)))
	return out
}
