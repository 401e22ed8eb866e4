package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"vocab-quiz/internal/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newErrorApp(err error) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	app.Use(RequestLogger())
	app.Get("/fail", func(c *fiber.Ctx) error { return err })
	return app
}

func doGet(t *testing.T, app *fiber.App, path string) (int, map[string]interface{}) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &decoded), string(body))
	return resp.StatusCode, decoded
}

func TestErrorHandler_DomainErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{domain.NewNotFoundError("nope"), http.StatusNotFound, "NOT_FOUND"},
		{domain.NewVocabularyNotFoundError("01ARZ3NDEKTSV4RRFFQ69G5FAV"), http.StatusNotFound, "VOCABULARY_NOT_FOUND"},
		{domain.NewInvalidInputError("bad"), http.StatusBadRequest, "INVALID_INPUT"},
		{domain.NewUnauthorizedError("who"), http.StatusUnauthorized, "UNAUTHORIZED"},
		{domain.NewConflictError("taken"), http.StatusConflict, "CONFLICT"},
		{domain.NewIdentityProviderError("google", errors.New("x")), http.StatusBadGateway, "IDENTITY_PROVIDER_ERROR"},
		{domain.NewLLMServiceError(errors.New("x")), http.StatusServiceUnavailable, "LLM_SERVICE_ERROR"},
		{domain.NewInternalError("boom", errors.New("x")), http.StatusInternalServerError, "INTERNAL_ERROR"},
		{errors.New("plain"), http.StatusInternalServerError, "INTERNAL_ERROR"},
		{fiber.ErrMethodNotAllowed, http.StatusMethodNotAllowed, "HTTP_ERROR"},
	}

	for _, tc := range tests {
		t.Run(tc.code, func(t *testing.T) {
			status, body := doGet(t, newErrorApp(tc.err), "/fail")
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.code, body["code"])
			assert.Equal(t, float64(tc.status), body["status"])
		})
	}
}

func TestErrorHandler_InsufficientVocabularyDetails(t *testing.T) {
	status, body := doGet(t, newErrorApp(domain.NewInsufficientVocabularyError(1, 2)), "/fail")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INSUFFICIENT_VOCABULARY", body["code"])

	details, ok := body["details"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1), details["available"])
	assert.Equal(t, float64(2), details["minimum"])
}

func TestErrorHandler_ValidationErrors(t *testing.T) {
	errs := domain.ValidationErrors{
		domain.NewMissingFieldError("word"),
		domain.NewOutOfRangeError("limit", 500, 1, 100),
	}
	status, body := doGet(t, newErrorApp(errs), "/fail")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])

	list, ok := body["errors"].([]interface{})
	require.True(t, ok)
	require.Len(t, list, 2)
	first := list[0].(map[string]interface{})
	assert.Equal(t, "word", first["field"])
	assert.Equal(t, "MISSING_FIELD", first["code"])
}

func TestErrorHandler_UnknownRoute(t *testing.T) {
	status, body := doGet(t, newErrorApp(nil), "/missing")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "HTTP_ERROR", body["code"])
}

func TestStatusFor_UnknownCodeIs500(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, StatusFor(domain.ErrorCode("SOMETHING_NEW")))
	assert.Equal(t, http.StatusBadRequest, StatusFor(domain.CodeOutOfRange))
}
