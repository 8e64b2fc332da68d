package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	authmiddleware "github.com/starterkit/backend/internal/auth/middleware"
	"github.com/starterkit/backend/internal/middleware"
	"github.com/starterkit/backend/internal/models"
	"go.uber.org/zap"
)

// AuthService is the interface that wraps methods for authentication business logic.
type AuthService interface {
	// Method Register validates the request, creates an active user and returns it together with an access token.
	//
	// "req" parameter contains name, email and password. Name and email are trimmed in place.
	// "meta" parameter describes the client and is forwarded to login observers.
	//
	// If the request is invalid, a *apperrors.ValidationError will be returned.
	// If such user already exists, apperrors.ErrUserAlreadyExists will be returned.
	// If some other error occurs, the error will be returned together with "nil" value.
	Register(ctx context.Context, req *models.RegisterRequest, meta models.RequestMeta) (*models.AuthResult, error)
	// Method Login verifies the credentials and returns the user together with an access token.
	//
	// "req" parameter contains email and password.
	// "meta" parameter describes the client and is forwarded to login observers.
	//
	// If the credentials do not match an active user, apperrors.ErrInvalidCredentials will be returned.
	// If the account is locked, a 403 *apperrors.Error will be returned.
	// If some other error occurs, the error will be returned together with "nil" value.
	Login(ctx context.Context, req *models.LoginRequest, meta models.RequestMeta) (*models.AuthResult, error)
}

// SessionCreator is the interface that wraps methods for server-side session creation.
type SessionCreator interface {
	// Method Create opens a session for the user and returns its id.
	//
	// If some error occurs during session creation, the error will be returned together with an empty string.
	Create(ctx context.Context, userID int) (string, error)
	// Method TTL returns the lifetime of new sessions.
	TTL() time.Duration
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService AuthService
	sessions    SessionCreator
}

// NewAuthHandler creates a new auth handler.
// sessions may be nil when server-side sessions are disabled.
func NewAuthHandler(
	authService AuthService,
	sessions SessionCreator,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		BaseHandler: BaseHandler{Logger: logger},
		authService: authService,
		sessions:    sessions,
	}
}

// RegisterRoutes registers all auth handler routes
// Note: This assumes the router is already scoped to /api
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register-user", h.Register)
		r.Post("/login", h.Login)
	})
}

// Register handles POST /auth/register-user
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	result, err := h.authService.Register(r.Context(), &req, requestMeta(r))
	if err != nil {
		h.RespondServiceError(w, r, "register", err)
		return
	}

	h.startSession(w, r, result.User.ID)

	h.RespondJSON(w, http.StatusCreated, models.RegisterResponse{
		AccessToken: result.AccessToken,
		User:        models.NewUserResponse(result.User),
	})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	result, err := h.authService.Login(r.Context(), &req, requestMeta(r))
	if err != nil {
		h.RespondServiceError(w, r, "login", err)
		return
	}

	h.startSession(w, r, result.User.ID)

	h.RespondJSON(w, http.StatusOK, models.LoginResponse{
		AccessToken: result.AccessToken,
		Data:        models.NewUserResponse(result.User),
	})
}

// startSession opens a server-side session and sets its cookie when sessions are enabled.
// The access token is already issued at this point, so a failing session store only
// costs the client the cookie.
func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, userID int) {
	if h.sessions == nil {
		return
	}

	sessionID, err := h.sessions.Create(r.Context(), userID)
	if err != nil {
		h.Logger.Warn("failed to create session, continuing without cookie",
			zap.Error(err),
			zap.Int("userId", userID),
			zap.String("request_id", middleware.GetRequestID(r.Context())),
		)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authmiddleware.SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(h.sessions.TTL().Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func requestMeta(r *http.Request) models.RequestMeta {
	return models.RequestMeta{
		RequestID:  middleware.GetRequestID(r.Context()),
		RemoteAddr: r.RemoteAddr,
		UserAgent:  r.UserAgent(),
	}
}
