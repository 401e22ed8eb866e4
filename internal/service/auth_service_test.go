package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"vocab-quiz/internal/cache"
	"vocab-quiz/internal/config"
	"vocab-quiz/internal/domain"
	"vocab-quiz/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWT: config.JWTConfig{
			SecretKey:       "testsecretkeydontuseinproduction32bytes!",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 7 * 24 * time.Hour,
			Issuer:          "vocab-quiz-test",
		},
		GoogleOAuth: config.GoogleOAuthConfig{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			RedirectURL:  "http://localhost:8090/api/auth/google/callback",
		},
	}
}

func newTestAuthService(t *testing.T, repo *MockUserRepository, c domain.Cache) *authServiceImpl {
	t.Helper()
	svc, err := NewAuthService(repo, testAuthConfig(), c)
	require.NoError(t, err)
	impl := svc.(*authServiceImpl)
	impl.bcryptCost = bcrypt.MinCost
	return impl
}

func userWithPassword(t *testing.T, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.User{
		ID:           "01HZX3J5Q9D7T2B6K8M4N1P0RS",
		Email:        "learner@example.com",
		Username:     "learner",
		PasswordHash: string(hash),
	}
}

func assertCode(t *testing.T, err error, code domain.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	var domainErr *domain.DomainError
	require.True(t, errors.As(err, &domainErr), "error should be a domain.DomainError: %v", err)
	assert.Equal(t, code, domainErr.Code)
}

func TestNewAuthService_RequiresSecret(t *testing.T) {
	cfg := testAuthConfig()
	cfg.JWT.SecretKey = ""
	_, err := NewAuthService(new(MockUserRepository), cfg, nil)
	assert.Error(t, err)
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()
	req := dto.RegisterRequest{Email: "new@example.com", Username: "newbie", Password: "s3cretpass", FullName: "New Bie"}

	t.Run("success", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newTestAuthService(t, repo, newMemoryCache())
		repo.On("GetUserByEmail", mock.Anything, req.Email).Return(nil, nil)
		repo.On("GetUserByUsername", mock.Anything, req.Username).Return(nil, nil)
		repo.On("CreateUser", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

		tokens, user, err := svc.Register(ctx, req)
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.NotEmpty(t, user.ID)
		assert.Equal(t, "new@example.com", user.Email)
		assert.Equal(t, "New Bie", user.FullName)
		assert.NotEqual(t, req.Password, user.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)))

		assert.Equal(t, "Bearer", tokens.TokenType)
		assert.Equal(t, int64(15*60), tokens.ExpiresIn)
		claims, err := svc.ValidateAccessToken(ctx, tokens.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
		assert.Equal(t, user.ID, claims.Subject)
		assert.Equal(t, "vocab-quiz-test", claims.Issuer)
		assert.NotEmpty(t, claims.ID)
		repo.AssertExpectations(t)
	})

	t.Run("email taken", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newTestAuthService(t, repo, nil)
		repo.On("GetUserByEmail", mock.Anything, req.Email).Return(&domain.User{ID: "x"}, nil)

		_, _, err := svc.Register(ctx, req)
		assertCode(t, err, domain.CodeConflict)
		repo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})

	t.Run("username taken", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newTestAuthService(t, repo, nil)
		repo.On("GetUserByEmail", mock.Anything, req.Email).Return(nil, nil)
		repo.On("GetUserByUsername", mock.Anything, req.Username).Return(&domain.User{ID: "x"}, nil)

		_, _, err := svc.Register(ctx, req)
		assertCode(t, err, domain.CodeConflict)
	})

	t.Run("unique violation on insert", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newTestAuthService(t, repo, nil)
		repo.On("GetUserByEmail", mock.Anything, req.Email).Return(nil, nil)
		repo.On("GetUserByUsername", mock.Anything, req.Username).Return(nil, nil)
		repo.On("CreateUser", mock.Anything, mock.Anything).Return(fmt.Errorf("insert: %w", domain.ErrAlreadyExists))

		_, _, err := svc.Register(ctx, req)
		assertCode(t, err, domain.CodeConflict)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	user := userWithPassword(t, "correct-horse")

	t.Run("by email", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newTestAuthService(t, repo, nil)
		repo.On("GetUserByEmail", mock.Anything, user.Email).Return(user, nil)

		tokens, got, err := svc.Login(ctx, user.Email, "correct-horse")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.NotEmpty(t, tokens.AccessToken)
		assert.NotEmpty(t, tokens.RefreshToken)
	})

	t.Run("by username", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newTestAuthService(t, repo, nil)
		repo.On("GetUserByUsername", mock.Anything, user.Username).Return(user, nil)

		_, _, err := svc.Login(ctx, user.Username, "correct-horse")
		require.NoError(t, err)
		repo.AssertNotCalled(t, "GetUserByEmail", mock.Anything, mock.Anything)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newTestAuthService(t, repo, nil)
		repo.On("GetUserByEmail", mock.Anything, user.Email).Return(user, nil)

		_, _, err := svc.Login(ctx, user.Email, "wrong-password")
		assertCode(t, err, domain.CodeUnauthorized)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newTestAuthService(t, repo, nil)
		repo.On("GetUserByUsername", mock.Anything, "ghost").Return(nil, nil)

		_, _, err := svc.Login(ctx, "ghost", "whatever1")
		assertCode(t, err, domain.CodeUnauthorized)
	})

	t.Run("google-only account", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newTestAuthService(t, repo, nil)
		repo.On("GetUserByEmail", mock.Anything, "g@example.com").Return(&domain.User{ID: "g", GoogleID: "123"}, nil)

		_, _, err := svc.Login(ctx, "g@example.com", "whatever1")
		assertCode(t, err, domain.CodeUnauthorized)
	})

	t.Run("repository error", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newTestAuthService(t, repo, nil)
		dbErr := errors.New("connection reset")
		repo.On("GetUserByEmail", mock.Anything, user.Email).Return(nil, dbErr)

		_, _, err := svc.Login(ctx, user.Email, "correct-horse")
		assertCode(t, err, domain.CodeInternal)
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestAuthService_ValidateJWT(t *testing.T) {
	ctx := context.Background()
	user := &domain.User{ID: "user123"}

	t.Run("expired", func(t *testing.T) {
		svc := newTestAuthService(t, new(MockUserRepository), nil)
		token, err := svc.CreateJWT(ctx, user, -time.Minute, tokenTypeAccess)
		require.NoError(t, err)

		_, err = svc.ValidateJWT(ctx, token)
		assertCode(t, err, domain.CodeUnauthorized)
		assert.ErrorIs(t, err, ErrInvalidJWTToken)
	})

	t.Run("signed with another key", func(t *testing.T) {
		svc := newTestAuthService(t, new(MockUserRepository), nil)
		other := newTestAuthService(t, new(MockUserRepository), nil)
		other.jwtConfig.SecretKey = "a-completely-different-secret-key!!"
		token, err := other.CreateJWT(ctx, user, time.Minute, tokenTypeAccess)
		require.NoError(t, err)

		_, err = svc.ValidateJWT(ctx, token)
		assertCode(t, err, domain.CodeUnauthorized)
	})

	t.Run("garbage", func(t *testing.T) {
		svc := newTestAuthService(t, new(MockUserRepository), nil)
		_, err := svc.ValidateJWT(ctx, "not.a.jwt")
		assertCode(t, err, domain.CodeUnauthorized)
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		svc := newTestAuthService(t, new(MockUserRepository), nil)
		token, err := svc.CreateJWT(ctx, user, time.Minute, tokenTypeRefresh)
		require.NoError(t, err)

		_, err = svc.ValidateJWT(ctx, token)
		require.NoError(t, err)
		_, err = svc.ValidateAccessToken(ctx, token)
		assertCode(t, err, domain.CodeUnauthorized)
	})

	t.Run("revocation store failure fails closed", func(t *testing.T) {
		c := newMemoryCache()
		svc := newTestAuthService(t, new(MockUserRepository), c)
		token, err := svc.CreateJWT(ctx, user, time.Minute, tokenTypeAccess)
		require.NoError(t, err)

		c.err = errors.New("redis down")
		_, err = svc.ValidateAccessToken(ctx, token)
		assertCode(t, err, domain.CodeUnauthorized)
	})
}

func TestAuthService_RefreshToken_UserNotFound(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	authService := newTestAuthService(t, mockUserRepo, newMemoryCache())

	dummyUser := &domain.User{ID: "user123"}
	refreshTokenString, err := authService.CreateJWT(context.Background(), dummyUser, time.Hour, tokenTypeRefresh)
	require.NoError(t, err)

	// repo returns (nil, nil) when the user is gone
	mockUserRepo.On("GetUserByID", mock.Anything, "user123").Return(nil, nil)

	_, err = authService.RefreshToken(context.Background(), refreshTokenString)
	assertCode(t, err, domain.CodeNotFound)
}

func TestAuthService_RefreshToken_RepoError(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	authService := newTestAuthService(t, mockUserRepo, newMemoryCache())

	dummyUser := &domain.User{ID: "user123"}
	refreshTokenString, err := authService.CreateJWT(context.Background(), dummyUser, time.Hour, tokenTypeRefresh)
	require.NoError(t, err)

	expectedRepoError := fmt.Errorf("some database connection error")
	mockUserRepo.On("GetUserByID", mock.Anything, "user123").Return(nil, expectedRepoError)

	_, err = authService.RefreshToken(context.Background(), refreshTokenString)
	assertCode(t, err, domain.CodeInternal)
	assert.ErrorIs(t, err, expectedRepoError)
}

func TestAuthService_RefreshToken_Rotates(t *testing.T) {
	ctx := context.Background()
	c := newMemoryCache()
	repo := new(MockUserRepository)
	svc := newTestAuthService(t, repo, c)
	user := &domain.User{ID: "user123", Email: "a@example.com"}
	repo.On("GetUserByID", mock.Anything, "user123").Return(user, nil)

	oldRefresh, err := svc.CreateJWT(ctx, user, time.Hour, tokenTypeRefresh)
	require.NoError(t, err)

	tokens, err := svc.RefreshToken(ctx, oldRefresh)
	require.NoError(t, err)
	assert.NotEqual(t, oldRefresh, tokens.RefreshToken)

	_, err = svc.ValidateAccessToken(ctx, tokens.AccessToken)
	assert.NoError(t, err)

	// the presented refresh token cannot be used twice
	_, err = svc.RefreshToken(ctx, oldRefresh)
	assertCode(t, err, domain.CodeUnauthorized)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	// new refresh token still works
	_, err = svc.RefreshToken(ctx, tokens.RefreshToken)
	assert.NoError(t, err)
}

func TestAuthService_RefreshToken_RejectsAccessToken(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuthService(t, new(MockUserRepository), nil)
	access, err := svc.CreateJWT(ctx, &domain.User{ID: "user123"}, time.Hour, tokenTypeAccess)
	require.NoError(t, err)

	_, err = svc.RefreshToken(ctx, access)
	assertCode(t, err, domain.CodeUnauthorized)
}

func TestAuthService_VerifyToken(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	svc := newTestAuthService(t, repo, nil)
	user := &domain.User{ID: "user123", Email: "a@example.com"}

	token, err := svc.CreateJWT(ctx, user, time.Hour, tokenTypeAccess)
	require.NoError(t, err)

	repo.On("GetUserByID", mock.Anything, "user123").Return(user, nil).Once()
	resp, err := svc.VerifyToken(ctx, token)
	require.NoError(t, err)
	assert.True(t, resp.Valid)
	assert.Equal(t, "user123", resp.UserID)
	assert.Equal(t, "a@example.com", resp.Email)
	assert.Equal(t, tokenTypeAccess, resp.TokenType)
	assert.WithinDuration(t, time.Now().Add(time.Hour), resp.ExpiresAt, 5*time.Second)

	repo.On("GetUserByID", mock.Anything, "user123").Return(nil, nil).Once()
	_, err = svc.VerifyToken(ctx, token)
	assertCode(t, err, domain.CodeUnauthorized)
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	c := newMemoryCache()
	svc := newTestAuthService(t, new(MockUserRepository), c)
	user := &domain.User{ID: "user123"}

	access, err := svc.CreateJWT(ctx, user, time.Hour, tokenTypeAccess)
	require.NoError(t, err)
	refresh, err := svc.CreateJWT(ctx, user, 24*time.Hour, tokenTypeRefresh)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(ctx, access)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, access, refresh))

	key := cache.RevokedTokenKey(claims.ID)
	assert.True(t, c.has(key))
	ttl := c.ttls[key]
	assert.Greater(t, ttl, 59*time.Minute)
	assert.LessOrEqual(t, ttl, time.Hour)

	_, err = svc.ValidateAccessToken(ctx, access)
	assert.ErrorIs(t, err, ErrTokenRevoked)
	_, err = svc.ValidateJWT(ctx, refresh)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	// a second logout with the revoked token is rejected
	err = svc.Logout(ctx, access, "")
	assertCode(t, err, domain.CodeUnauthorized)
}

func TestAuthService_GetGoogleLoginURL(t *testing.T) {
	svc := newTestAuthService(t, new(MockUserRepository), nil)
	url := svc.GetGoogleLoginURL("state-123")
	assert.Contains(t, url, "state=state-123")
	assert.Contains(t, url, "client_id=client-id")
	assert.True(t, strings.HasPrefix(url, "https://accounts.google.com/"))
}

// newGoogleStub serves the token and userinfo endpoints used by HandleGoogleCallback.
func newGoogleStub(t *testing.T, info dto.GoogleUserInfo, tokenStatus int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if tokenStatus != http.StatusOK {
			w.WriteHeader(tokenStatus)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"google-access","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer google-access" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(info)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func pointAtStub(svc *authServiceImpl, srv *httptest.Server) {
	svc.oauth2Config.Endpoint = oauth2.Endpoint{
		AuthURL:  srv.URL + "/auth",
		TokenURL: srv.URL + "/token",
	}
	svc.userInfoURL = srv.URL + "/userinfo"
}

func TestAuthService_HandleGoogleCallback(t *testing.T) {
	ctx := context.Background()
	info := dto.GoogleUserInfo{ID: "google-42", Email: "g@example.com", Name: "Gee", Picture: "http://pic"}

	t.Run("invalid state", func(t *testing.T) {
		svc := newTestAuthService(t, new(MockUserRepository), nil)
		_, _, err := svc.HandleGoogleCallback(ctx, "code", "a", "b")
		assertCode(t, err, domain.CodeUnauthorized)
		assert.ErrorIs(t, err, ErrInvalidAuthState)
	})

	t.Run("creates new user", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newTestAuthService(t, repo, nil)
		pointAtStub(svc, newGoogleStub(t, info, http.StatusOK))

		repo.On("GetUserByGoogleID", mock.Anything, "google-42").Return(nil, nil)
		repo.On("GetUserByEmail", mock.Anything, "g@example.com").Return(nil, nil)
		repo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.GoogleID == "google-42" && u.Email == "g@example.com" && u.FullName == "Gee" && u.ID != ""
		})).Return(nil)

		tokens, user, err := svc.HandleGoogleCallback(ctx, "code", "s", "s")
		require.NoError(t, err)
		assert.Equal(t, "google-42", user.GoogleID)
		assert.NotEmpty(t, tokens.AccessToken)
		repo.AssertExpectations(t)
	})

	t.Run("links existing email account", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newTestAuthService(t, repo, nil)
		pointAtStub(svc, newGoogleStub(t, info, http.StatusOK))

		existing := &domain.User{ID: "local-1", Email: "g@example.com", Username: "gee", PasswordHash: "x"}
		repo.On("GetUserByGoogleID", mock.Anything, "google-42").Return(nil, nil)
		repo.On("GetUserByEmail", mock.Anything, "g@example.com").Return(existing, nil)
		repo.On("UpdateUser", mock.Anything, existing).Return(nil)

		_, user, err := svc.HandleGoogleCallback(ctx, "code", "s", "s")
		require.NoError(t, err)
		assert.Equal(t, "local-1", user.ID)
		assert.Equal(t, "google-42", user.GoogleID)
		repo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})

	t.Run("create fails", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc := newTestAuthService(t, repo, nil)
		pointAtStub(svc, newGoogleStub(t, info, http.StatusOK))

		expectedRepoError := errors.New("failed to create user in DB")
		repo.On("GetUserByGoogleID", mock.Anything, "google-42").Return(nil, nil)
		repo.On("GetUserByEmail", mock.Anything, "g@example.com").Return(nil, nil)
		repo.On("CreateUser", mock.Anything, mock.AnythingOfType("*domain.User")).Return(expectedRepoError)

		_, _, err := svc.HandleGoogleCallback(ctx, "code", "s", "s")
		assertCode(t, err, domain.CodeInternal)
		assert.ErrorIs(t, err, expectedRepoError)
	})

	t.Run("code exchange rejected", func(t *testing.T) {
		svc := newTestAuthService(t, new(MockUserRepository), nil)
		pointAtStub(svc, newGoogleStub(t, info, http.StatusBadRequest))

		_, _, err := svc.HandleGoogleCallback(ctx, "bad-code", "s", "s")
		assertCode(t, err, domain.CodeIdentityProvider)
		assert.ErrorIs(t, err, ErrFailedToExchangeToken)
	})
}
