package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"vocab-quiz/internal/cache"
	"vocab-quiz/internal/config"
	"vocab-quiz/internal/domain"
	"vocab-quiz/internal/dto"
	"vocab-quiz/internal/logger"
	"vocab-quiz/internal/util"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	tokenTypeAccess   = "access"
	tokenTypeRefresh  = "refresh"
	bearerTokenType   = "Bearer"
)

var (
	ErrInvalidAuthState      = errors.New("invalid oauth state")
	ErrFailedToExchangeToken = errors.New("failed to exchange oauth token")
	ErrFailedToGetUserInfo   = errors.New("failed to get user info from google")
	ErrInvalidJWTToken       = errors.New("invalid jwt token")
	ErrTokenRevoked          = errors.New("token has been revoked")
	ErrInvalidCredentials    = errors.New("invalid credentials")
)

// dummyHash is compared against when the login name is unknown so both paths cost one bcrypt run.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("vocab-quiz-dummy-password"), bcrypt.MinCost)

// AuthService defines the interface for authentication operations.
type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.TokenResponse, *domain.User, error)
	Login(ctx context.Context, login, password string) (*dto.TokenResponse, *domain.User, error)
	GetGoogleLoginURL(state string) string
	HandleGoogleCallback(ctx context.Context, code string, receivedState string, expectedState string) (*dto.TokenResponse, *domain.User, error)
	CreateJWT(ctx context.Context, user *domain.User, ttl time.Duration, tokenType string) (string, error)
	ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
	ValidateAccessToken(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
	RefreshToken(ctx context.Context, refreshTokenString string) (*dto.TokenResponse, error)
	VerifyToken(ctx context.Context, tokenString string) (*dto.VerifyTokenResponse, error)
	Logout(ctx context.Context, accessToken, refreshToken string) error
}

type authServiceImpl struct {
	userRepo     domain.UserRepository
	cache        domain.Cache // nil disables revocation
	oauth2Config *oauth2.Config
	jwtConfig    config.JWTConfig
	userInfoURL  string
	bcryptCost   int
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(userRepo domain.UserRepository, authCfg config.AuthConfig, cache domain.Cache) (AuthService, error) {
	if authCfg.JWT.SecretKey == "" {
		return nil, errors.New("jwt secret key is not configured")
	}

	scopes := authCfg.GoogleOAuth.Scopes
	if len(scopes) == 0 {
		scopes = []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		}
	}

	return &authServiceImpl{
		userRepo: userRepo,
		cache:    cache,
		oauth2Config: &oauth2.Config{
			ClientID:     authCfg.GoogleOAuth.ClientID,
			ClientSecret: authCfg.GoogleOAuth.ClientSecret,
			RedirectURL:  authCfg.GoogleOAuth.RedirectURL,
			Scopes:       scopes,
			Endpoint:     google.Endpoint,
		},
		jwtConfig:   authCfg.JWT,
		userInfoURL: googleUserInfoURL,
		bcryptCost:  bcrypt.DefaultCost,
	}, nil
}

// Register creates a local account and signs the user in.
func (s *authServiceImpl) Register(ctx context.Context, req dto.RegisterRequest) (*dto.TokenResponse, *domain.User, error) {
	appLogger := logger.Get()

	existing, err := s.userRepo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, nil, domain.NewInternalError("failed to check email", err)
	}
	if existing != nil {
		return nil, nil, domain.NewConflictError("email is already registered")
	}
	existing, err = s.userRepo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, nil, domain.NewInternalError("failed to check username", err)
	}
	if existing != nil {
		return nil, nil, domain.NewConflictError("username is already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, nil, domain.NewInternalError("failed to hash password", err)
	}

	user := domain.NewUser(req.Email, req.Username)
	user.ID = util.NewULID()
	user.FullName = req.FullName
	user.PasswordHash = string(hash)
	if err := user.Validate(); err != nil {
		return nil, nil, err
	}

	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, nil, domain.NewConflictError("email or username is already registered")
		}
		return nil, nil, domain.NewInternalError("failed to create user", err)
	}
	appLogger.Info("New user registered", zap.String("userID", user.ID), zap.String("username", user.Username))

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return tokens, user, nil
}

// Login authenticates with an email or username and a password.
func (s *authServiceImpl) Login(ctx context.Context, login, password string) (*dto.TokenResponse, *domain.User, error) {
	var (
		user *domain.User
		err  error
	)
	if strings.Contains(login, "@") {
		user, err = s.userRepo.GetUserByEmail(ctx, login)
	} else {
		user, err = s.userRepo.GetUserByUsername(ctx, login)
	}
	if err != nil {
		return nil, nil, domain.NewInternalError("failed to look up user", err)
	}

	if user == nil || !user.HasPassword() {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		logger.Get().Warn("Login failed: unknown user or no password set", zap.String("login", login))
		return nil, nil, domain.NewError(domain.CodeUnauthorized, "invalid credentials", ErrInvalidCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.Get().Warn("Login failed: wrong password", zap.String("userID", user.ID))
		return nil, nil, domain.NewError(domain.CodeUnauthorized, "invalid credentials", ErrInvalidCredentials)
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	logger.Get().Info("User logged in", zap.String("userID", user.ID))
	return tokens, user, nil
}

func (s *authServiceImpl) GetGoogleLoginURL(state string) string {
	return s.oauth2Config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// HandleGoogleCallback exchanges the code, then finds the user by google id, links by email, or creates one.
func (s *authServiceImpl) HandleGoogleCallback(ctx context.Context, code string, receivedState string, expectedState string) (*dto.TokenResponse, *domain.User, error) {
	appLogger := logger.Get()
	if receivedState == "" || receivedState != expectedState {
		return nil, nil, domain.NewError(domain.CodeUnauthorized, "invalid oauth state", ErrInvalidAuthState)
	}

	googleToken, err := s.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, nil, domain.NewIdentityProviderError("failed to exchange authorization code", fmt.Errorf("%w: %v", ErrFailedToExchangeToken, err))
	}

	userInfo, err := s.fetchGoogleUserInfo(ctx, googleToken)
	if err != nil {
		return nil, nil, domain.NewIdentityProviderError("failed to read google profile", err)
	}

	user, err := s.userRepo.GetUserByGoogleID(ctx, userInfo.ID)
	if err != nil {
		return nil, nil, domain.NewInternalError("error fetching user by google_id", err)
	}
	if user == nil {
		user, err = s.userRepo.GetUserByEmail(ctx, userInfo.Email)
		if err != nil {
			return nil, nil, domain.NewInternalError("error fetching user by email", err)
		}
	}

	if user == nil {
		user = domain.NewUser(userInfo.Email, "")
		user.ID = util.NewULID()
		user.GoogleID = userInfo.ID
		user.FullName = userInfo.Name
		user.ProfilePictureURL = userInfo.Picture
		if err := s.userRepo.CreateUser(ctx, user); err != nil {
			return nil, nil, domain.NewInternalError("failed to create user", err)
		}
		appLogger.Info("New user created via Google OAuth", zap.String("userID", user.ID), zap.String("email", user.Email))
	} else {
		if user.GoogleID == "" {
			appLogger.Info("Linking Google account to existing user", zap.String("userID", user.ID))
		}
		user.GoogleID = userInfo.ID
		if userInfo.Name != "" {
			user.FullName = userInfo.Name
		}
		user.ProfilePictureURL = userInfo.Picture
		if err := s.userRepo.UpdateUser(ctx, user); err != nil {
			return nil, nil, domain.NewInternalError("failed to update user", err)
		}
		appLogger.Info("User logged in via Google OAuth", zap.String("userID", user.ID), zap.String("email", user.Email))
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return tokens, user, nil
}

func (s *authServiceImpl) fetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*dto.GoogleUserInfo, error) {
	client := s.oauth2Config.Client(ctx, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToGetUserInfo, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToGetUserInfo, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrFailedToGetUserInfo, resp.StatusCode)
	}

	var userInfo dto.GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	if userInfo.ID == "" || userInfo.Email == "" {
		return nil, errors.New("google user info is incomplete")
	}
	return &userInfo, nil
}

func (s *authServiceImpl) CreateJWT(ctx context.Context, user *domain.User, ttl time.Duration, tokenType string) (string, error) {
	now := time.Now()
	claims := dto.AuthClaims{
		UserID:    user.ID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        util.NewULID(),
			Issuer:    s.jwtConfig.Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtConfig.SecretKey))
}

func (s *authServiceImpl) issueTokens(ctx context.Context, user *domain.User) (*dto.TokenResponse, error) {
	accessToken, err := s.CreateJWT(ctx, user, s.jwtConfig.AccessTokenTTL, tokenTypeAccess)
	if err != nil {
		return nil, domain.NewInternalError("failed to create access token", err)
	}
	refreshToken, err := s.CreateJWT(ctx, user, s.jwtConfig.RefreshTokenTTL, tokenTypeRefresh)
	if err != nil {
		return nil, domain.NewInternalError("failed to create refresh token", err)
	}
	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    bearerTokenType,
		ExpiresIn:    int64(s.jwtConfig.AccessTokenTTL / time.Second),
	}, nil
}

// ValidateJWT checks the signature, time claims and revocation list.
func (s *authServiceImpl) ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
	appLogger := logger.Get()
	token, err := jwt.ParseWithClaims(tokenString, &dto.AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtConfig.SecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			appLogger.Warn("JWT token expired", zap.Error(err), zap.String("token_snippet", tokenSnippet(tokenString)))
		} else {
			appLogger.Warn("JWT validation failed", zap.Error(err), zap.String("token_snippet", tokenSnippet(tokenString)))
		}
		return nil, domain.NewError(domain.CodeUnauthorized, "invalid or expired token", fmt.Errorf("%w: %v", ErrInvalidJWTToken, err))
	}

	claims, ok := token.Claims.(*dto.AuthClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, domain.NewError(domain.CodeUnauthorized, "invalid or expired token", ErrInvalidJWTToken)
	}

	revoked, err := s.isRevoked(ctx, claims.ID)
	if err != nil {
		// fail closed
		appLogger.Error("Token revocation check failed", zap.String("jti", claims.ID), zap.Error(err))
		return nil, domain.NewError(domain.CodeUnauthorized, "token could not be verified", err)
	}
	if revoked {
		appLogger.Warn("Revoked token presented", zap.String("jti", claims.ID), zap.String("userID", claims.UserID))
		return nil, domain.NewError(domain.CodeUnauthorized, "token has been revoked", ErrTokenRevoked)
	}
	return claims, nil
}

// ValidateAccessToken is ValidateJWT restricted to access tokens.
func (s *authServiceImpl) ValidateAccessToken(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
	claims, err := s.ValidateJWT(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != tokenTypeAccess {
		return nil, domain.NewError(domain.CodeUnauthorized, "not an access token", ErrInvalidJWTToken)
	}
	return claims, nil
}

// RefreshToken rotates the token pair; the presented refresh token is revoked.
func (s *authServiceImpl) RefreshToken(ctx context.Context, refreshTokenString string) (*dto.TokenResponse, error) {
	appLogger := logger.Get()
	claims, err := s.ValidateJWT(ctx, refreshTokenString)
	if err != nil {
		appLogger.Warn("Refresh token validation failed", zap.Error(err), zap.String("refresh_token_snippet", tokenSnippet(refreshTokenString)))
		return nil, err
	}
	if claims.TokenType != tokenTypeRefresh {
		return nil, domain.NewError(domain.CodeUnauthorized, "not a refresh token", ErrInvalidJWTToken)
	}

	user, err := s.userRepo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		appLogger.Error("Failed to load user for refresh token", zap.String("userID", claims.UserID), zap.Error(err))
		return nil, domain.NewInternalError("failed to load user for refresh token", err)
	}
	if user == nil {
		return nil, domain.NewNotFoundError(fmt.Sprintf("User %s not found for refresh token", claims.UserID))
	}

	if err := s.revoke(ctx, claims); err != nil {
		return nil, domain.NewInternalError("failed to revoke refresh token", err)
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	appLogger.Info("JWT token refreshed", zap.String("userID", user.ID))
	return tokens, nil
}

// VerifyToken describes a valid token of either type.
func (s *authServiceImpl) VerifyToken(ctx context.Context, tokenString string) (*dto.VerifyTokenResponse, error) {
	claims, err := s.ValidateJWT(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load user", err)
	}
	if user == nil {
		return nil, domain.NewUnauthorizedError("user no longer exists")
	}

	resp := &dto.VerifyTokenResponse{
		Valid:     true,
		UserID:    user.ID,
		Email:     user.Email,
		TokenType: claims.TokenType,
	}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Time
	}
	return resp, nil
}

// Logout revokes the access token and, when given, the refresh token.
func (s *authServiceImpl) Logout(ctx context.Context, accessToken, refreshToken string) error {
	claims, err := s.ValidateAccessToken(ctx, accessToken)
	if err != nil {
		return err
	}
	if s.cache == nil {
		logger.Get().Warn("Logout without a revocation store; token stays valid until expiry", zap.String("userID", claims.UserID))
		return nil
	}
	if err := s.revoke(ctx, claims); err != nil {
		return domain.NewInternalError("failed to revoke access token", err)
	}

	if refreshToken != "" {
		refreshClaims, err := s.ValidateJWT(ctx, refreshToken)
		if err == nil && refreshClaims.UserID == claims.UserID && refreshClaims.TokenType == tokenTypeRefresh {
			if err := s.revoke(ctx, refreshClaims); err != nil {
				return domain.NewInternalError("failed to revoke refresh token", err)
			}
		}
	}

	logger.Get().Info("User logged out", zap.String("userID", claims.UserID))
	return nil
}

func (s *authServiceImpl) isRevoked(ctx context.Context, jti string) (bool, error) {
	if s.cache == nil || jti == "" {
		return false, nil
	}
	return s.cache.Exists(ctx, cache.RevokedTokenKey(jti))
}

// revoke stores the token id until the token would have expired anyway.
func (s *authServiceImpl) revoke(ctx context.Context, claims *dto.AuthClaims) error {
	if s.cache == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return s.cache.Set(ctx, cache.RevokedTokenKey(claims.ID), "1", ttl)
}

func tokenSnippet(token string) string {
	return token[:min(len(token), 20)] + "..."
}
