package middleware

import (
	"errors"
	"net/http"
	"vocab-quiz/internal/domain"
	"vocab-quiz/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every non-validation error.
type ErrorResponse struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Status  int                    `json:"status"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ValidationErrorResponse lists every rejected field of a request.
type ValidationErrorResponse struct {
	Code    string                   `json:"code"`
	Message string                   `json:"message"`
	Status  int                      `json:"status"`
	Errors  []domain.ValidationError `json:"errors"`
}

// statusByCode maps domain error codes to HTTP statuses. Unlisted codes are 500.
var statusByCode = map[domain.ErrorCode]int{
	domain.CodeNotFound:               http.StatusNotFound,
	domain.CodeVocabularyNotFound:     http.StatusNotFound,
	domain.CodeInvalidInput:           http.StatusBadRequest,
	domain.CodeValidation:             http.StatusBadRequest,
	domain.CodeMissingField:           http.StatusBadRequest,
	domain.CodeInvalidFormat:          http.StatusBadRequest,
	domain.CodeOutOfRange:             http.StatusBadRequest,
	domain.CodeInsufficientVocabulary: http.StatusBadRequest,
	domain.CodeUnauthorized:           http.StatusUnauthorized,
	domain.CodeConflict:               http.StatusConflict,
	domain.CodeIdentityProvider:       http.StatusBadGateway,
	domain.CodeLLMServiceError:        http.StatusServiceUnavailable,
	domain.CodeCacheError:             http.StatusServiceUnavailable,
}

// StatusFor returns the HTTP status for a domain error code.
func StatusFor(code domain.ErrorCode) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ErrorHandler turns handler errors into JSON responses. Install it through fiber.Config.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var (
			validationErrs domain.ValidationErrors
			domainErr      *domain.DomainError
			fiberErr       *fiber.Error
		)

		switch {
		case errors.As(err, &validationErrs):
			logger.Get().Warn("Request rejected by validation",
				zap.String("path", c.Path()),
				zap.Int("error_count", len(validationErrs)),
			)
			return c.Status(http.StatusBadRequest).JSON(ValidationErrorResponse{
				Code:    string(domain.CodeValidation),
				Message: "Request validation failed",
				Status:  http.StatusBadRequest,
				Errors:  validationErrs,
			})

		case errors.As(err, &domainErr):
			status := StatusFor(domainErr.Code)
			logDomainError(c, domainErr, status)
			return c.Status(status).JSON(ErrorResponse{
				Code:    string(domainErr.Code),
				Message: domainErr.Message,
				Status:  status,
				Details: domainErr.Context,
			})

		case errors.As(err, &fiberErr):
			logger.Get().Warn("Fiber error",
				zap.String("path", c.Path()),
				zap.Int("status", fiberErr.Code),
				zap.String("message", fiberErr.Message),
			)
			return c.Status(fiberErr.Code).JSON(ErrorResponse{
				Code:    "HTTP_ERROR",
				Message: fiberErr.Message,
				Status:  fiberErr.Code,
			})
		}

		logger.Get().Error("Unhandled error", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Code:    string(domain.CodeInternal),
			Message: "Internal server error",
			Status:  http.StatusInternalServerError,
		})
	}
}

// logDomainError logs 5xx at error level and everything else at warn.
func logDomainError(c *fiber.Ctx, err *domain.DomainError, status int) {
	fields := []zap.Field{
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.String("code", string(err.Code)),
		zap.String("message", err.Message),
		zap.Int("status", status),
	}
	if err.Err != nil {
		fields = append(fields, zap.Error(err.Err))
	}
	if status >= http.StatusInternalServerError {
		logger.Get().Error("Request failed", fields...)
		return
	}
	logger.Get().Warn("Request rejected", fields...)
}
