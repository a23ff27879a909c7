package handler

import (
	"net/http"
	"time"

	"github.com/zippyboards/backend/internal/service"
)

// MeHandler returns the current user.
type MeHandler struct {
	authService service.AuthService
}

func NewMeHandler(authService service.AuthService) *MeHandler {
	return &MeHandler{authService: authService}
}

type meResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	GitHub    bool      `json:"github_linked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Me handles GET /api/me.
func (h *MeHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.authService.CurrentUser(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, meResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		GitHub:    user.GitHubID != "",
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	})
}
