package handler

import (
	"vocab-quiz/internal/domain"
	"vocab-quiz/internal/dto"
	"vocab-quiz/internal/middleware"
	"vocab-quiz/internal/service"
	"vocab-quiz/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// VocabularyHandler handles CRUD on the caller's vocabulary.
// Routes are expected behind middleware.Protected; list and :id routes also behind the matching ValidationMiddleware handler.
type VocabularyHandler struct {
	service   service.VocabularyService
	validator *validation.Validator
}

func NewVocabularyHandler(service service.VocabularyService, validator *validation.Validator) *VocabularyHandler {
	return &VocabularyHandler{
		service:   service,
		validator: validator,
	}
}

// ListVocabulary godoc
// @Summary List vocabulary
// @Description Returns one page of the caller's vocabulary, newest first.
// @Tags vocabulary
// @Security ApiKeyAuth
// @Produce json
// @Param skip query int false "Items to skip" default(0)
// @Param limit query int false "Page size (1-100)" default(100)
// @Success 200 {object} dto.VocabularyListResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /vocabulary [get]
func (h *VocabularyHandler) ListVocabulary(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	skip, _ := c.Locals(middleware.ValidatedSkipKey).(int)
	limit, ok := c.Locals(middleware.ValidatedLimitKey).(int)
	if !ok {
		limit = validation.MaxPageLimit
	}

	resp, err := h.service.List(c.UserContext(), userID, skip, limit)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GetVocabulary godoc
// @Summary Get a vocabulary item
// @Tags vocabulary
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Vocabulary item ID (ULID)"
// @Success 200 {object} dto.VocabularyResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /vocabulary/{id} [get]
func (h *VocabularyHandler) GetVocabulary(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	resp, err := h.service.Get(c.UserContext(), userID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// CreateVocabulary godoc
// @Summary Add a vocabulary item
// @Description Adds a word. Without an example, one may be generated.
// @Tags vocabulary
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param item body dto.VocabularyRequest true "Vocabulary item"
// @Success 201 {object} dto.VocabularyResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Router /vocabulary [post]
func (h *VocabularyHandler) CreateVocabulary(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	var req dto.VocabularyRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if errs := h.validator.ValidateVocabulary(&req, ""); len(errs) > 0 {
		return errs
	}

	resp, err := h.service.Create(c.UserContext(), userID, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// CreateVocabularyBatch godoc
// @Summary Add several vocabulary items
// @Description Adds up to 100 items in one transaction.
// @Tags vocabulary
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param items body dto.VocabularyBatchRequest true "Vocabulary items"
// @Success 201 {array} dto.VocabularyResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Router /vocabulary/batch [post]
func (h *VocabularyHandler) CreateVocabularyBatch(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	var req dto.VocabularyBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if errs := h.validator.ValidateVocabularyBatch(&req); len(errs) > 0 {
		return errs
	}

	resp, err := h.service.CreateBatch(c.UserContext(), userID, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// UpdateVocabulary godoc
// @Summary Replace a vocabulary item
// @Tags vocabulary
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path string true "Vocabulary item ID (ULID)"
// @Param item body dto.VocabularyRequest true "Vocabulary item"
// @Success 200 {object} dto.VocabularyResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /vocabulary/{id} [put]
func (h *VocabularyHandler) UpdateVocabulary(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	var req dto.VocabularyRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if errs := h.validator.ValidateVocabulary(&req, ""); len(errs) > 0 {
		return errs
	}

	resp, err := h.service.Update(c.UserContext(), userID, c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// DeleteVocabulary godoc
// @Summary Delete a vocabulary item
// @Tags vocabulary
// @Security ApiKeyAuth
// @Param id path string true "Vocabulary item ID (ULID)"
// @Success 204
// @Failure 404 {object} middleware.ErrorResponse
// @Router /vocabulary/{id} [delete]
func (h *VocabularyHandler) DeleteVocabulary(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), userID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func requireUser(c *fiber.Ctx) (string, error) {
	userID := middleware.UserID(c)
	if userID == "" {
		return "", domain.NewUnauthorizedError("user id not found in context")
	}
	return userID, nil
}
