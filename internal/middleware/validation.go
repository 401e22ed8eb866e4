package middleware

import (
	"strconv"
	"vocab-quiz/internal/domain"
	"vocab-quiz/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// Keys for validated values stored in fiber.Ctx locals
const (
	ValidatedSkipKey         = "validated_skip"
	ValidatedLimitKey        = "validated_limit"
	ValidatedNumQuestionsKey = "validated_num_questions"
	ValidatedIDKey           = "validated_id"
)

// ValidationMiddleware provides request validation middleware
type ValidationMiddleware struct {
	validator *validation.Validator
}

// NewValidationMiddleware creates a new validation middleware instance
func NewValidationMiddleware(validator *validation.Validator) *ValidationMiddleware {
	if validator == nil {
		validator = validation.NewValidator()
	}
	return &ValidationMiddleware{validator: validator}
}

// ValidatePagination validates the skip and limit query parameters.
func (vm *ValidationMiddleware) ValidatePagination() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var errs domain.ValidationErrors
		skip, ok := queryInt(c, "skip", 0, &errs)
		limit, ok2 := queryInt(c, "limit", validation.MaxPageLimit, &errs)
		if !ok || !ok2 {
			return errs
		}
		if errs := vm.validator.ValidatePagination(skip, limit); len(errs) > 0 {
			return errs // This will be handled by ErrorHandler middleware
		}

		c.Locals(ValidatedSkipKey, skip)
		c.Locals(ValidatedLimitKey, limit)
		return c.Next()
	}
}

// ValidateQuestionCount validates num_questions, falling back to defaultCount when absent.
// Negative counts are rejected; counts above maxCount are capped, not rejected.
func (vm *ValidationMiddleware) ValidateQuestionCount(defaultCount, maxCount int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var errs domain.ValidationErrors
		n, ok := queryInt(c, "num_questions", defaultCount, &errs)
		if !ok {
			return errs
		}
		if errs := vm.validator.ValidateQuestionCount(n); len(errs) > 0 {
			return errs
		}

		c.Locals(ValidatedNumQuestionsKey, validation.CapQuestionCount(n, maxCount))
		return c.Next()
	}
}

// ValidateIDParam validates the :id path parameter.
func (vm *ValidationMiddleware) ValidateIDParam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if errs := vm.validator.ValidateID("id", id); len(errs) > 0 {
			return errs
		}
		c.Locals(ValidatedIDKey, id)
		return c.Next()
	}
}

func queryInt(c *fiber.Ctx, name string, def int, errs *domain.ValidationErrors) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, domain.NewInvalidFormatError(name, raw))
		return 0, false
	}
	return n, true
}
