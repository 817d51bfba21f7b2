package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-jwt-identity/internal/application"
	"github.com/oksasatya/go-jwt-identity/internal/interface/middleware"
	"github.com/oksasatya/go-jwt-identity/pkg/helpers"
	"github.com/oksasatya/go-jwt-identity/pkg/response"
	"github.com/oksasatya/go-jwt-identity/pkg/validation"
)

type AuthHandler struct {
	Svc    *application.AuthService
	Logger *logrus.Logger
}

func NewAuthHandler(svc *application.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	FirstName string `json:"firstName" binding:"required,name50"`
	LastName  string `json:"lastName" binding:"required,name50"`
	UserName  string `json:"username" binding:"required,name50"`
	Email     string `json:"email" binding:"required,email,max=128"`
	Password  string `json:"password" binding:"required,pwd"`
}

type tokenRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type addRoleRequest struct {
	UserID string `json:"userId" binding:"required"`
	Role   string `json:"role" binding:"required"`
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	res, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		UserName:  req.UserName,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.internalError(c, "register failed", err)
		return
	}
	if !res.IsAuthenticated {
		response.Error(c, http.StatusBadRequest, res.Message, nil)
		return
	}
	response.Success(c, http.StatusOK, res, "registered")
}

// Token POST /api/auth/token
func (h *AuthHandler) Token(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	res, err := h.Svc.GetToken(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.internalError(c, "get token failed", err)
		return
	}
	if !res.IsAuthenticated {
		response.Error(c, http.StatusBadRequest, res.Message, nil)
		return
	}
	response.Success(c, http.StatusOK, res, "token issued")
}

// AddRole POST /api/auth/addrole (Admin only)
func (h *AuthHandler) AddRole(c *gin.Context) {
	var req addRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	err := h.Svc.AddRole(c.Request.Context(), req.UserID, req.Role)
	switch {
	case err == nil:
		response.Success(c, http.StatusOK, req, "role assigned")
	case errors.Is(err, application.ErrInvalidUserOrRole),
		errors.Is(err, application.ErrAlreadyInRole),
		errors.Is(err, application.ErrSomethingWrong):
		response.Error(c, http.StatusBadRequest, err.Error(), nil)
	default:
		h.internalError(c, "add role failed", err)
	}
}

// Me GET /api/auth/me returns the claims of the presented token.
func (h *AuthHandler) Me(c *gin.Context) {
	response.Success(c, http.StatusOK, middleware.ClaimsFrom(c), "ok")
}

func (h *AuthHandler) internalError(c *gin.Context, msg string, err error) {
	if h.Logger != nil {
		helpers.LogError(h.Logger, msg, err, logrus.Fields{"request_id": c.GetString("request_id")})
	}
	response.Error(c, http.StatusInternalServerError, application.ErrSomethingWrong.Error(), nil)
}
