package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starterkit/backend/internal/apperrors"
	authmiddleware "github.com/starterkit/backend/internal/auth/middleware"
	"github.com/starterkit/backend/internal/models"
	"go.uber.org/zap"
)

// ProfileService is the interface that wraps methods for profile business logic
type ProfileService interface {
	// GetUser retrieves the authenticated user
	//
	// "userID" parameter is used to identify the user.
	//
	// If user with such ID does not exist, apperrors.ErrUserNotFound will be returned together with "nil" value.
	// If the user is inactive, apperrors.ErrUserInactive will be returned together with "nil" value.
	GetUser(ctx context.Context, userID int) (*models.User, error)
}

// ProfileHandler handles profile HTTP requests
type ProfileHandler struct {
	BaseHandler
	profileService ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService ProfileService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler:    BaseHandler{Logger: logger},
		profileService: profileService,
	}
}

// RegisterRoutes registers all profile handler routes
func (h *ProfileHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.With(authMiddleware).Get("/me", h.GetMe)
}

// GetMe handles GET /me
func (h *ProfileHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	// Extract userID from auth middleware context
	userID, ok := authmiddleware.GetUserID(r.Context())
	if !ok {
		h.Logger.Error("user ID not found in context")
		h.RespondError(w, http.StatusUnauthorized, apperrors.ErrNotAuthenticated.Message)
		return
	}

	user, err := h.profileService.GetUser(r.Context(), userID)
	if err != nil {
		h.RespondServiceError(w, r, "get user", err)
		return
	}

	h.RespondJSON(w, http.StatusOK, models.MeResponse{Data: models.NewUserResponse(user)})
}
