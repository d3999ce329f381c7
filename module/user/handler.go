package user

import (
	"context"
	"errors"
	"net/http"

	"PChat/logger"
	midsec "PChat/middleware/security"
	usermodel "PChat/module/user/model"
	"PChat/module/user/service"
	jwtsec "PChat/tools/security"

	"github.com/gin-gonic/gin"
)

// Accounts is the account store the handlers need.
type Accounts interface {
	Register(ctx context.Context, username, password string) (usermodel.User, error)
	Authenticate(ctx context.Context, username, password string) (usermodel.User, error)
}

type Handler struct {
	accounts Accounts
	jwtOpts  jwtsec.Options
}

func NewHandler(accounts Accounts, jwtOpts jwtsec.Options) *Handler {
	return &Handler{accounts: accounts, jwtOpts: jwtOpts}
}

type credentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

// HandlerRegister serves POST /api/auth/register.
func (h *Handler) HandlerRegister(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password (min 6 chars) required"})
		return
	}

	u, err := h.accounts.Register(c.Request.Context(), req.Username, req.Password)
	if errors.Is(err, service.ErrUserExists) {
		c.JSON(http.StatusConflict, gin.H{"error": "username already taken"})
		return
	}
	if err != nil {
		logger.Errorf("[Auth] register failed username=%s err=%v", req.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	token, _, err := jwtsec.Generate(h.jwtOpts, u.Username)
	if err != nil {
		logger.Errorf("[Auth] token sign failed username=%s err=%v", u.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  gin.H{"username": u.Username},
	})
}

// HandlerLogin serves POST /api/auth/login.
func (h *Handler) HandlerLogin(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password required"})
		return
	}

	u, err := h.accounts.Authenticate(c.Request.Context(), req.Username, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		return
	}
	if err != nil {
		logger.Errorf("[Auth] login failed username=%s err=%v", req.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	token, _, err := jwtsec.Generate(h.jwtOpts, u.Username)
	if err != nil {
		logger.Errorf("[Auth] token sign failed username=%s err=%v", u.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  gin.H{"username": u.Username},
	})
}

// HandlerMe serves GET /api/auth/me behind the auth middleware.
func (h *Handler) HandlerMe(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"username": c.GetString(midsec.CtxUserKey)})
}
