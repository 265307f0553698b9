package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bistro-boss/backend/internal/platform/rbac"
	"bistro-boss/backend/internal/server/httperr"
	"bistro-boss/backend/internal/user/domain"
	"bistro-boss/backend/internal/user/service"
)

// UserService is the user API used by the handler.
type UserService interface {
	Register(ctx context.Context, email, name string) (*domain.User, bool, error)
	List(ctx context.Context) ([]*domain.User, error)
	PromoteToAdmin(ctx context.Context, actorEmail, id string) (int64, error)
	IsAdmin(ctx context.Context, email string) (bool, error)
}

// TokenIssuer signs identity payloads. Implemented by security.TokenProvider.
type TokenIssuer interface {
	Issue(payload map[string]any) (string, time.Time, error)
}

// Handler serves token issuance and the /users endpoints.
type Handler struct {
	svc    UserService
	tokens TokenIssuer
}

// NewHandler returns a user handler.
func NewHandler(svc UserService, tokens TokenIssuer) *Handler {
	return &Handler{svc: svc, tokens: tokens}
}

type userResponse struct {
	ID    string `json:"_id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role"`
}

func toResponse(u *domain.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Name: u.Name, Role: string(u.Role)}
}

type registerRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// IssueToken handles POST /jwt. The JSON object body is signed as the identity payload.
func (h *Handler) IssueToken(c *gin.Context) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		httperr.Abort(c, fmt.Errorf("%w: %v", httperr.ErrInvalidRequest, err))
		return
	}
	token, expiresAt, err := h.tokens.Issue(payload)
	if err != nil {
		httperr.Abort(c, fmt.Errorf("issue token: %w", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "expiresAt": expiresAt})
}

// Register handles POST /users. Registering an existing email writes nothing.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Abort(c, fmt.Errorf("%w: %v", httperr.ErrInvalidRequest, err))
		return
	}
	u, created, err := h.svc.Register(c.Request.Context(), req.Email, req.Name)
	if err != nil {
		httperr.Abort(c, mapError(err))
		return
	}
	if !created {
		c.JSON(http.StatusOK, gin.H{"message": "User already exists", "insertedId": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"acknowledged": true, "insertedId": u.ID})
}

// List handles GET /users (admin only).
func (h *Handler) List(c *gin.Context) {
	users, err := h.svc.List(c.Request.Context())
	if err != nil {
		httperr.Abort(c, mapError(err))
		return
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toResponse(u))
	}
	c.JSON(http.StatusOK, out)
}

// CheckAdmin handles GET /users/admin/:email. OwnsResource has already matched email to the caller.
func (h *Handler) CheckAdmin(c *gin.Context) {
	claim, ok := rbac.ClaimFromContext(c.Request.Context())
	if !ok {
		httperr.Abort(c, rbac.ErrUnauthenticated)
		return
	}
	admin, err := h.svc.IsAdmin(c.Request.Context(), claim.Email)
	if err != nil {
		httperr.Abort(c, mapError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"admin": admin})
}

// Promote handles PATCH /users/admin/:id (admin only).
func (h *Handler) Promote(c *gin.Context) {
	claim, ok := rbac.ClaimFromContext(c.Request.Context())
	if !ok {
		httperr.Abort(c, rbac.ErrUnauthenticated)
		return
	}
	n, err := h.svc.PromoteToAdmin(c.Request.Context(), claim.Email, c.Param("id"))
	if err != nil {
		httperr.Abort(c, mapError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"acknowledged": true, "modifiedCount": n})
}

func mapError(err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidUser):
		return fmt.Errorf("%w: %w", httperr.ErrInvalidRequest, err)
	case errors.Is(err, service.ErrNotFound):
		return fmt.Errorf("%w: %w", httperr.ErrNotFound, err)
	default:
		return err
	}
}
