package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ufoundit-dev/ufoundit/internal/services"
	"github.com/ufoundit-dev/ufoundit/pkg/response"
)

// ProfileHandler exposes the caller's own profile.
type ProfileHandler struct {
	users *services.UserService
}

// NewProfileHandler constructs a ProfileHandler.
func NewProfileHandler(users *services.UserService) *ProfileHandler {
	return &ProfileHandler{users: users}
}

type updateProfileRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,min=1"`
	Phone    *string `json:"phone"`
}

// Get returns any user's public profile by id. The password hash is excluded
// by the model's json tags.
func (h *ProfileHandler) Get(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// AdminContact returns the platform admin's public profile so clients can
// surface a support contact.
func (h *ProfileHandler) AdminContact(c *gin.Context) {
	admin, err := h.users.AdminContact(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, admin)
}

// Me returns the authenticated user's profile.
func (h *ProfileHandler) Me(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// Update applies a partial update to the authenticated user's profile.
func (h *ProfileHandler) Update(c *gin.Context) {
	payload, err := bindAndValidate[updateProfileRequest](c)
	if err != nil {
		response.Error(c, err)
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), currentUserID(c), services.UpdateProfileInput{
		FullName: payload.FullName,
		Phone:    payload.Phone,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}
