package v1

import (
	"net/http"

	"github.com/vibe-gaming/notes/internal/domain"
	"github.com/vibe-gaming/notes/pkg/validator"

	"github.com/gin-gonic/gin"
)

func (h *Handler) initUsersRoutes(api *gin.RouterGroup) {
	users := api.Group("/user", h.userIdentityMiddleware)

	users.GET("/profile", h.getProfile)
}

type profileResponse struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	DateOfBirth *string `json:"date_of_birth"`
}

type getProfileResponse struct {
	Message string          `json:"message"`
	User    profileResponse `json:"user"`
}

func newProfileResponse(user *domain.User) profileResponse {
	res := profileResponse{
		Name:  user.Name,
		Email: user.Email,
	}
	if user.DateOfBirth.Valid {
		dob := user.DateOfBirth.Time.Format(validator.DateLayout)
		res.DateOfBirth = &dob
	}

	return res
}

// @Summary Profile
// @Tags User
// @Description Returns the signed-in user's profile
// @ModuleID getProfile
// @Produce  json
// @Success 200 {object} getProfileResponse
// @Failure 401 {object} ErrorStruct
// @Security CookieAuth
// @Router /user/profile [get]
func (h *Handler) getProfile(c *gin.Context) {
	userID, err := getUserUUID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	user, err := h.services.Users.GetProfile(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, getProfileResponse{
		Message: "Profile fetched successfully",
		User:    newProfileResponse(user),
	})
}
