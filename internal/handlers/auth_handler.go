package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barber-loyalty/internal/dto"
	"github.com/BruksfildServices01/barber-loyalty/internal/httperr"
	"github.com/BruksfildServices01/barber-loyalty/internal/usecase/identity"
)

type AuthHandler struct {
	identity *identity.Service
}

func NewAuthHandler(svc *identity.Service) *AuthHandler {
	return &AuthHandler{identity: svc}
}

// --------- Requests ---------

type SignUpRequest struct {
	Username  string       `json:"username" binding:"required,min=3,max=50"`
	Password  string       `json:"password" binding:"required,min=6,max=72"`
	Email     string       `json:"email" binding:"omitempty,email"`
	Name      string       `json:"name" binding:"max=100"`
	FirstName string       `json:"firstName" binding:"max=100"`
	Phone     string       `json:"phone" binding:"max=20"`
	Role      dto.RoleList `json:"role"`
}

type SignInRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// --------- Handlers ---------

func (h *AuthHandler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	u, err := h.identity.SignUp(c.Request.Context(), identity.SignUpInput{
		Username:  req.Username,
		Password:  req.Password,
		Email:     req.Email,
		Name:      req.Name,
		FirstName: req.FirstName,
		Phone:     req.Phone,
		Roles:     req.Role,
	})
	if err != nil {
		httperr.Respond(c, err, "failed_to_create_user")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User registered successfully!",
		"user":    dto.NewUser(u, h.identity.Policy()),
	})
}

func (h *AuthHandler) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	session, err := h.identity.SignIn(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		httperr.Respond(c, err, "failed_to_sign_in")
		return
	}

	c.JSON(http.StatusOK, dto.SessionDTO{
		Token:     session.Token,
		Type:      "Bearer",
		ExpiresAt: session.ExpiresAt.Unix(),
		UserDTO:   dto.NewUser(session.User, h.identity.Policy()),
	})
}
