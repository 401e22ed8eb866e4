package handler

import (
	"crypto/rand"
	"encoding/base64"
	"time"
	"vocab-quiz/internal/domain"
	"vocab-quiz/internal/dto"
	"vocab-quiz/internal/logger"
	"vocab-quiz/internal/middleware"
	"vocab-quiz/internal/service"
	"vocab-quiz/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	oauthStateCookieName = "oauthstate"
	oauthStateTTL        = 10 * time.Minute
)

type AuthHandler struct {
	authService service.AuthService
	validator   *validation.Validator
}

func NewAuthHandler(authService service.AuthService, validator *validation.Validator) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validator:   validator,
	}
}

// Register creates a local account.
// @Summary Register
// @Description Creates an account with email, username and password and returns tokens.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.RegisterRequest true "Registration data"
// @Success 201 {object} dto.TokenResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 409 {object} middleware.ErrorResponse "Email or username taken"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if errs := h.validator.ValidateRegister(&req); len(errs) > 0 {
		return errs
	}

	tokens, _, err := h.authService.Register(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(tokens)
}

// Login authenticates with a password.
// @Summary Login
// @Description Authenticates with an email or username and a password.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.TokenResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 401 {object} middleware.ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if errs := h.validator.ValidateLogin(&req); len(errs) > 0 {
		return errs
	}

	tokens, _, err := h.authService.Login(c.UserContext(), req.Login, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(tokens)
}

// GoogleLogin initiates the Google OAuth2 login flow.
// @Summary Initiate Google Login
// @Description Redirects the user to Google's OAuth2 consent page.
// @Tags auth
// @Success 307 {string} string "Redirects to Google"
// @Router /auth/google/login [get]
func (h *AuthHandler) GoogleLogin(c *fiber.Ctx) error {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return domain.NewInternalError("could not generate state for OAuth flow", err)
	}
	state := base64.URLEncoding.EncodeToString(b)
	logger.Get().Debug("Google login process initiated")

	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookieName,
		Value:    state,
		Expires:  time.Now().Add(oauthStateTTL),
		HTTPOnly: true,
		Secure:   c.Secure(),
		SameSite: "Lax",
		Path:     "/",
	})

	return c.Redirect(h.authService.GetGoogleLoginURL(state), fiber.StatusTemporaryRedirect)
}

// GoogleCallback handles the callback from Google OAuth2.
// @Summary Google OAuth2 Callback
// @Description Handles user authentication after Google login, issues JWTs.
// @Tags auth
// @Produce json
// @Param code query string true "Authorization code from Google"
// @Param state query string true "State string for CSRF protection"
// @Success 200 {object} dto.TokenResponse
// @Failure 400 {object} middleware.ErrorResponse "Missing code"
// @Failure 401 {object} middleware.ErrorResponse "State mismatch"
// @Failure 502 {object} middleware.ErrorResponse "Google rejected the code"
// @Router /auth/google/callback [get]
func (h *AuthHandler) GoogleCallback(c *fiber.Ctx) error {
	code := c.Query("code")
	receivedState := c.Query("state")
	expectedState := c.Cookies(oauthStateCookieName)

	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   c.Secure(),
		SameSite: "Lax",
		Path:     "/",
	})

	if code == "" {
		logger.Get().Warn("Authorization code missing in Google OAuth callback")
		return domain.NewInvalidInputError("authorization code is missing")
	}

	tokens, user, err := h.authService.HandleGoogleCallback(c.UserContext(), code, receivedState, expectedState)
	if err != nil {
		return err
	}
	logger.Get().Info("Google OAuth callback successful, tokens issued", zap.String("userID", user.ID))
	return c.JSON(tokens)
}

// RefreshToken generates new access and refresh tokens using a valid refresh token.
// @Summary Refresh JWT tokens
// @Description Rotates the token pair. The presented refresh token is revoked.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.TokenResponse
// @Failure 400 {object} middleware.ErrorResponse "Refresh token missing"
// @Failure 401 {object} middleware.ErrorResponse "Refresh token invalid, expired or revoked"
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	var req dto.RefreshTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if req.RefreshToken == "" {
		return domain.ValidationErrors{domain.NewMissingFieldError("refresh_token")}
	}

	tokens, err := h.authService.RefreshToken(c.UserContext(), req.RefreshToken)
	if err != nil {
		return err
	}
	return c.JSON(tokens)
}

// VerifyToken reports the owner and expiry of the bearer token.
// @Summary Verify token
// @Description Validates the token from the Authorization header.
// @Tags auth
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.VerifyTokenResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /auth/verify-token [post]
func (h *AuthHandler) VerifyToken(c *fiber.Ctx) error {
	token := middleware.BearerToken(c)
	if token == "" {
		return domain.NewUnauthorizedError("bearer token is missing")
	}
	resp, err := h.authService.VerifyToken(c.UserContext(), token)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Logout revokes the caller's tokens.
// @Summary Logout user
// @Description Revokes the access token and, if given, the refresh token.
// @Tags auth
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param body body dto.RefreshTokenRequest false "Refresh token to revoke as well"
// @Success 200 {object} dto.MessageResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.RefreshTokenRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return domain.NewInvalidInputError("invalid request body")
		}
	}

	if err := h.authService.Logout(c.UserContext(), middleware.BearerToken(c), req.RefreshToken); err != nil {
		return err
	}
	logger.Get().Info("User logout request", zap.String("userID", middleware.UserID(c)))
	return c.JSON(dto.MessageResponse{Message: "Logged out"})
}
