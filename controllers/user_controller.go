package controllers

import (
	"net/http"

	"github.com/CUknot/studymatch_backend/middleware"
	"github.com/CUknot/studymatch_backend/services"
	"github.com/gin-gonic/gin"
)

type UpdateProfileInput struct {
	Name     string    `json:"name" example:"Ann"`
	Subjects *[]string `json:"subjects"`
	Gender   string    `json:"gender" example:"Female"`
	Goals    *[]string `json:"goals"`
}

type ProfileResponse struct {
	ID       uint     `json:"id"`
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Gender   string   `json:"gender"`
	Subjects []string `json:"subjects"`
	Goals    []string `json:"goals"`
}

type UserController struct {
	users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

// GetMe godoc
// @Summary Current user
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 404 {object} ErrorResponse "User not found"
// @Router /api/user/me [get]
func (uc *UserController) GetMe(c *gin.Context) {
	user, err := uc.users.Get(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateProfile godoc
// @Summary Update the profile
// @Description Absent fields are kept; arrays replace the stored list; an unknown gender is ignored
// @Tags user
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body UpdateProfileInput true "Profile fields"
// @Success 200 {object} ProfileResponse
// @Failure 400 {object} ErrorResponse "Invalid request body"
// @Failure 404 {object} ErrorResponse "User not found"
// @Router /api/user/profile [put]
func (uc *UserController) UpdateProfile(c *gin.Context) {
	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	user, err := uc.users.UpdateProfile(c.Request.Context(), middleware.UserID(c), services.ProfileUpdate{
		Name:     input.Name,
		Subjects: input.Subjects,
		Gender:   input.Gender,
		Goals:    input.Goals,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ProfileResponse{
		ID:       user.ID,
		Name:     user.Name,
		Email:    user.Email,
		Gender:   user.Gender,
		Subjects: user.Subjects,
		Goals:    user.Goals,
	})
}

// GetHistory godoc
// @Summary Room history
// @Description Rooms the caller joined, newest first; leftAt is null while still a member
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.RoomHistory
// @Router /api/user/history [get]
func (uc *UserController) GetHistory(c *gin.Context) {
	history, err := uc.users.History(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}
