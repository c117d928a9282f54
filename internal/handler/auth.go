package handler

import (
	"context"       // context with cancellation for DB calls
	"encoding/json" // raw message handling for the otp field
	"errors"        // sentinel error comparisons
	"net/http"      // HTTP status codes and cookie primitives
	"regexp"        // email shape validation
	"strings"       // string manipulation utilities
	"time"          // timeouts and expiries

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/willianramosdev-stack/todoApp/internal/config"     // app configuration
	"github.com/willianramosdev-stack/todoApp/internal/queue"      // broker event payloads
	"github.com/willianramosdev-stack/todoApp/internal/repository" // DB repositories
	queue_publisher "github.com/willianramosdev-stack/todoApp/internal/service"
	"github.com/willianramosdev-stack/todoApp/internal/utils" // hashing and token issuing
)

const (
	refreshCookieName = "refresh_token"
	// Cookie is scoped to the refresh endpoint so it is not replayed on
	// every API call.
	refreshCookiePath = "/v1/auth/refresh"

	dbTimeout = 5 * time.Second
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// AuthHandler bundles dependencies for auth endpoints. PublishReset defaults
// to the RabbitMQ publisher and is a field so tests can intercept dispatch.
type AuthHandler struct {
	Cfg          config.Config
	Users        repository.UserStore
	Tokens       repository.TokenStore
	Resets       repository.ResetStore
	PublishReset func(ctx context.Context, ev queue.PasswordResetRequestedEvent) error
}

func NewAuthHandler(cfg config.Config, u repository.UserStore, t repository.TokenStore, r repository.ResetStore) *AuthHandler {
	return &AuthHandler{
		Cfg: cfg, Users: u, Tokens: t, Resets: r,
		PublishReset: func(ctx context.Context, ev queue.PasswordResetRequestedEvent) error {
			return queue_publisher.PublishPasswordReset(ctx, cfg.AMQPURL, ev)
		},
	}
}

// ----- DTOs -----

type registerReq struct {
	FullName string `json:"fullName"`
	Age      *int   `json:"age"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type forgotPasswordReq struct {
	Email string `json:"email"`
}
type logoutReq struct {
	RefreshToken string `json:"refreshToken"`
}
type resetPasswordReq struct {
	OTP         json.RawMessage `json:"otp"` // accepted as number or string
	NewPassword string          `json:"newPassword"`
}

type userPart struct {
	ID       uint64 `json:"id"`
	FullName string `json:"fullName"`
	Age      int    `json:"age"`
	Email    string `json:"email"`
}
type authResp struct {
	User        userPart `json:"user"`
	AccessToken string   `json:"accessToken"`
}

// issueTokens mints an access/refresh pair for the user, records the
// refresh token hash in the registry and sets the refresh cookie. Only the
// access token is returned in the body.
func (h *AuthHandler) issueTokens(c echo.Context, ctx context.Context, userID uint64) (string, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTAccessSecret, userID, h.Cfg.AccessTTLMin)
	if err != nil {
		return "", err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.JWTRefreshSecret, userID, h.Cfg.RefreshTTLDays)
	if err != nil {
		return "", err
	}
	if err := h.Tokens.StoreRefresh(ctx, userID, utils.HashToken(refresh.Token), refresh.Exp); err != nil {
		return "", err
	}
	h.setRefreshCookie(c, refresh.Token, refresh.Exp)
	return access.Token, nil
}

func (h *AuthHandler) setRefreshCookie(c echo.Context, token string, exp time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     refreshCookiePath,
		Expires:  exp,
		MaxAge:   h.Cfg.RefreshTTLDays * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   h.Cfg.Env == "prod",
		SameSite: http.SameSiteStrictMode,
	})
}

// Register: create user and return the access token immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if len(req.FullName) < 3 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "fullName must be at least 3 characters"})
	}
	if req.Age == nil || *req.Age < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "age must be a non-negative integer"})
	}
	if !emailRe.MatchString(req.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email"})
	}
	if len(req.Password) < 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 6 characters"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	uid, err := h.Users.Create(ctx, req.FullName, *req.Age, req.Email, hash)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	accessToken, err := h.issueTokens(c, ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}

	return c.JSON(http.StatusCreated, authResp{
		User:        userPart{ID: uid, FullName: req.FullName, Age: *req.Age, Email: req.Email},
		AccessToken: accessToken,
	})
}

// Login: verify credentials and issue a fresh pair. Unknown email and wrong
// password produce the same response so accounts cannot be enumerated.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid email or password"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid email or password"})
	}

	accessToken, err := h.issueTokens(c, ctx, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"accessToken": accessToken})
}

// Refresh: exchange the cookie-borne refresh token for a new access token.
// The presented token must carry a valid refresh-secret signature AND an
// active registry row; it is then rotated, so each refresh token is
// accepted at most once.
func (h *AuthHandler) Refresh(c echo.Context) error {
	cookie, err := c.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "refresh token required"})
	}
	raw := cookie.Value

	uid, err := utils.VerifyToken(h.Cfg.JWTRefreshSecret, raw)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	hash := utils.HashToken(raw)
	regUID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil || regUID != uid {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
	}
	// The old token must be dead before its replacement exists; otherwise a
	// failed revocation would leave two live tokens for one session.
	if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
	}

	accessToken, err := h.issueTokens(c, ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"accessToken": accessToken})
}

// Logout: revoke refresh tokens. With a valid bearer access token every
// session of the user is revoked. Otherwise a single session is terminated,
// identified by the refresh cookie or, since the cookie only travels to the
// refresh endpoint, by a refreshToken field in the body.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		uid, err := utils.VerifyToken(h.Cfg.JWTAccessSecret, strings.TrimPrefix(auth, "Bearer "))
		if err == nil {
			if err := h.Tokens.RevokeAllForUser(ctx, uid); err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
			}
			return c.NoContent(http.StatusNoContent)
		}
	}

	raw := ""
	if cookie, err := c.Cookie(refreshCookieName); err == nil && cookie.Value != "" {
		raw = cookie.Value
	} else {
		var req logoutReq
		if err := c.Bind(&req); err == nil {
			raw = req.RefreshToken
		}
	}
	if raw == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "provide Authorization header, refresh cookie or refreshToken"})
	}

	hash := utils.HashToken(raw)
	if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
	}
	if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ForgotPassword: issue a six-digit one-time code valid for fifteen minutes
// and hand it off to the mail queue. The HTTP response never waits on the
// broker: dispatch runs in its own goroutine and failures are only logged,
// since the persisted code stays redeemable either way.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if !emailRe.MatchString(req.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "email not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	code, err := utils.NewResetCode()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue code failed"})
	}
	expiresAt := time.Now().UTC().Add(time.Duration(h.Cfg.ResetOTPTTLMin) * time.Minute)
	if err := h.Resets.CreateReset(ctx, u.ID, code, expiresAt); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save code failed"})
	}

	ev := queue.PasswordResetRequestedEvent{
		UserID:      u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		Code:        code,
		ExpiresAt:   expiresAt.Format(time.RFC3339),
		RequestedAt: time.Now().UTC().Format(time.RFC3339),
	}
	publish := h.PublishReset
	go func() {
		pubCtx, pubCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer pubCancel()
		_ = publish(pubCtx, ev) // errors already logged by the publisher
	}()

	return c.JSON(http.StatusOK, echo.Map{"message": "OTP sent to email!"})
}

// ResetPassword: redeem a one-time code and set a new password. Redemption
// is a single transaction in the store, so a replayed or raced code fails
// with the same generic 400 as an unknown one.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	code := strings.Trim(strings.TrimSpace(string(req.OTP)), `"`)
	if !isSixDigits(code) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "otp must be a 6-digit code"})
	}
	if len(req.NewPassword) < 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "newPassword must be at least 6 characters"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	hash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reset failed"})
	}
	if err := h.Resets.Redeem(ctx, code, hash); err != nil {
		if errors.Is(err, repository.ErrResetInvalid) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired OTP"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reset failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Password reset successful!"})
}

func isSixDigits(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
