package controllers

import (
	"net/http"

	"github.com/CUknot/studymatch_backend/models"
	"github.com/CUknot/studymatch_backend/services"
	"github.com/gin-gonic/gin"
)

type SignupInput struct {
	Name     string `json:"name" binding:"required" example:"Ann"`
	Email    string `json:"email" binding:"required,email" example:"ann@example.com"`
	Password string `json:"password" binding:"required,min=6" example:"secret123"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required" example:"ann@example.com"`
	Password string `json:"password" binding:"required" example:"secret123"`
}

type AuthResponse struct {
	Token string             `json:"token"`
	User  models.UserSummary `json:"user"`
}

type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

// Signup godoc
// @Summary Register a new user
// @Description Creates an account and returns a token for it
// @Tags auth
// @Accept json
// @Produce json
// @Param input body SignupInput true "Account details"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} ErrorResponse "User already exists"
// @Failure 500 {object} ErrorResponse "Server error"
// @Router /api/auth/signup [post]
func (ac *AuthController) Signup(c *gin.Context) {
	var input SignupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Name, a valid email and a password of at least 6 characters are required")
		return
	}

	token, user, err := ac.auth.Signup(c.Request.Context(), input.Name, input.Email, input.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{Token: token, User: user.Summary()})
}

// Login godoc
// @Summary Log in
// @Description Authenticates with email and password and returns a token
// @Tags auth
// @Accept json
// @Produce json
// @Param input body LoginInput true "Credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} ErrorResponse "Invalid credentials"
// @Failure 500 {object} ErrorResponse "Server error"
// @Router /api/auth/login [post]
func (ac *AuthController) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, services.ErrInvalidCredentials)
		return
	}

	token, user, err := ac.auth.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Token: token, User: user.Summary()})
}
