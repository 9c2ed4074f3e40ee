package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/habitboard/habitboard/authz"
	"github.com/habitboard/habitboard/config"
	"github.com/habitboard/habitboard/middleware"
	"github.com/habitboard/habitboard/models"
	"github.com/habitboard/habitboard/utils"
)

// AuthController issues session tokens and reports the caller's identity.
type AuthController struct {
	db *gorm.DB
}

// NewAuthController creates a new AuthController instance.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

// Login verifies first-party credentials and issues a JWT carrying the
// user's user_roles claim.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid request payload")
		return
	}

	var user models.User
	err := a.db.Where("username = ?", strings.TrimSpace(req.Username)).First(&user).Error
	if err != nil || !utils.CheckPassword(user.PasswordHash, req.Password) {
		// Same answer for unknown user and wrong password.
		utils.Error(ctx, http.StatusUnauthorized, 40110, "invalid credentials")
		return
	}

	ttl := time.Duration(config.Get().TokenTTLHours) * time.Hour
	token, err := utils.GenerateToken(user.ID, user.Username, user.RoleMap(), ttl)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to issue token")
		return
	}

	utils.Success(ctx, gin.H{
		"token": token,
		"user":  gin.H{"id": user.ID, "username": user.Username},
	})
}

// Me returns the authenticated identity together with the caller's advisory
// role for the habit resource, resolved the same way a client would resolve
// it from the raw token.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, _ := ctx.Get(middleware.ContextUserIDKey)
	username := ctx.GetString(middleware.ContextUsernameKey)
	token := ctx.GetString(middleware.ContextTokenKey)

	role := authz.ResolveRole(token, middleware.HabitResource)

	utils.Success(ctx, gin.H{
		"id":         userID,
		"username":   username,
		"role":       role,
		"can_create": role.CanManage(),
	})
}
