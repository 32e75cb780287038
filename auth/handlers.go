package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Fearce02/Drawlio-sub000/domain"

	"github.com/gin-gonic/gin"
)

var (
	ErrMissingTokenStr          = "missing-token"
	ErrExpiredTokenStr          = "expired-token"
	ErrServerTimeoutStr         = "server-timeout"
	ErrInvalidRequestFormatStr  = "bad-request-format"
	ErrInvalidCredentialsStr    = "invalid-credentials"
	ErrUnknownStr               = "unknown-error"
	ErrUsernameAlreadyExistsStr = "username-already-exists"
	ErrWeakPasswordStr          = "weak-password"
	ErrPasswordTooLongStr       = "password-too-long"
	ErrInvalidUsernameFormatStr = "invalid-username-format"
	ErrUserNotFoundStr          = "user-not-found"
)

type AuthService interface {
	Signup(ctx context.Context, username, password string) (string, error)
	Login(ctx context.Context, username, password string) (string, error)
	VerifyToken(token string) (string, error)
	GetUser(ctx context.Context, id string) (domain.User, error)
}

type Handler struct {
	authService  AuthService
	cookieMaxAge time.Duration
}

func NewHandler(service AuthService, cookieMaxAge time.Duration) *Handler {
	return &Handler{authService: service, cookieMaxAge: cookieMaxAge}
}

func (ah *Handler) RequireAuthMiddleware(ctx *gin.Context) {
	token, err := ctx.Cookie("token")
	if err != nil {
		ctx.String(http.StatusUnauthorized, ErrMissingTokenStr)
		ctx.Abort()
		return
	}

	id, err := ah.authService.VerifyToken(token)
	if err != nil {
		if errors.Is(err, domain.ErrExpiredToken) {
			ctx.String(http.StatusUnauthorized, ErrExpiredTokenStr)
		} else {
			slog.Warn("rejected token", "ip", ctx.ClientIP(), "reason", err)
			ctx.String(http.StatusUnauthorized, ErrMissingTokenStr)
		}
		ctx.Abort()
		return
	}

	ctx.Set("id", id)
	ctx.Next()
}

// OptionalAuthMiddleware sets "id" when a valid token cookie is present and
// lets the request through either way. Guests reach the game without one.
func (ah *Handler) OptionalAuthMiddleware(ctx *gin.Context) {
	token, err := ctx.Cookie("token")
	if err == nil {
		if id, err := ah.authService.VerifyToken(token); err == nil {
			ctx.Set("id", id)
		}
	}
	ctx.Next()
}

func (ah *Handler) SignupHandler(ctx *gin.Context) {
	var signupCredentials struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := ctx.ShouldBindJSON(&signupCredentials); err != nil {
		ctx.String(http.StatusBadRequest, ErrInvalidRequestFormatStr)
		ctx.Abort()
		return
	}

	token, err := ah.authService.Signup(ctx.Request.Context(), signupCredentials.Username, signupCredentials.Password)

	if err != nil {
		switch {
		case errors.Is(err, ErrUsernameAlreadyExists):
			ctx.String(http.StatusConflict, ErrUsernameAlreadyExistsStr)
		case errors.Is(err, ErrWeakPassword):
			ctx.String(http.StatusBadRequest, ErrWeakPasswordStr)
		case errors.Is(err, ErrPasswordTooLong):
			ctx.String(http.StatusBadRequest, ErrPasswordTooLongStr)
		case errors.Is(err, ErrInvalidUsernameFormat):
			ctx.String(http.StatusBadRequest, ErrInvalidUsernameFormatStr)
		case errors.Is(err, context.DeadlineExceeded):
			ctx.String(http.StatusGatewayTimeout, ErrServerTimeoutStr)
		default:
			slog.Error("signup failed", "error", err)
			ctx.String(http.StatusInternalServerError, ErrUnknownStr)
		}
		ctx.Abort()
		return
	}

	ah.setTokenCookie(ctx, token)
	ctx.Status(http.StatusCreated)
}

func (ah *Handler) LoginHandler(ctx *gin.Context) {
	var loginCredentials struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := ctx.ShouldBindJSON(&loginCredentials); err != nil {
		ctx.String(http.StatusBadRequest, ErrInvalidRequestFormatStr)
		ctx.Abort()
		return
	}

	token, err := ah.authService.Login(ctx.Request.Context(), loginCredentials.Username, loginCredentials.Password)

	if err != nil {
		switch {
		case errors.Is(err, ErrIncorrectPassword), errors.Is(err, domain.ErrUserNotFound):
			ctx.String(http.StatusUnauthorized, ErrInvalidCredentialsStr)
		case errors.Is(err, context.DeadlineExceeded):
			ctx.String(http.StatusGatewayTimeout, ErrServerTimeoutStr)
		default:
			slog.Error("login failed", "error", err)
			ctx.String(http.StatusInternalServerError, ErrUnknownStr)
		}
		ctx.Abort()
		return
	}

	ah.setTokenCookie(ctx, token)
	ctx.Status(http.StatusOK)
}

// MeHandler returns the authenticated user's profile. Requires the auth
// middleware.
func (ah *Handler) MeHandler(ctx *gin.Context) {
	id := ctx.GetString("id")
	if id == "" {
		slog.Error("id missing after auth middleware", "ip", ctx.ClientIP())
		ctx.String(http.StatusInternalServerError, ErrUnknownStr)
		return
	}

	user, err := ah.authService.GetUser(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			ctx.String(http.StatusNotFound, ErrUserNotFoundStr)
			return
		}
		slog.Error("load user", "userId", id, "error", err)
		ctx.String(http.StatusInternalServerError, ErrUnknownStr)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"id": user.Id, "username": user.Username})
}

func (ah *Handler) LogoutHandler(ctx *gin.Context) {
	ctx.SetSameSite(http.SameSiteNoneMode)
	ctx.SetCookie("token", "", -1, "/", "", true, true)
	ctx.Status(http.StatusOK)
}

func (ah *Handler) setTokenCookie(ctx *gin.Context, token string) {
	ctx.SetSameSite(http.SameSiteNoneMode)
	ctx.SetCookie("token", token, int(ah.cookieMaxAge.Seconds()), "/", "", true, true)
}
