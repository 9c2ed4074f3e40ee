package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/habitboard/habitboard/services"
	"github.com/habitboard/habitboard/utils"
)

// ActionController serves the action catalog.
type ActionController struct {
	actions *services.ActionService
}

// NewActionController creates a new ActionController instance.
func NewActionController(actions *services.ActionService) *ActionController {
	return &ActionController{actions: actions}
}

// ListActions returns the full catalog, served from cache when fresh.
func (a *ActionController) ListActions(ctx *gin.Context) {
	actions, err := a.actions.GetActions(ctx.Request.Context())
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, err.Error())
		return
	}
	utils.Success(ctx, gin.H{"actions": actions})
}
