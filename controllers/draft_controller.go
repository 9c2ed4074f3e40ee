package controllers

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/habitboard/habitboard/middleware"
	"github.com/habitboard/habitboard/models"
	"github.com/habitboard/habitboard/selection"
	"github.com/habitboard/habitboard/services"
	"github.com/habitboard/habitboard/utils"
)

// DraftController keeps one server-held create-flow selection per user: the
// multi-select form state lives here between requests until submit or a
// type switch discards it.
type DraftController struct {
	habits *services.HabitService

	mu     sync.Mutex
	drafts map[uint]*selection.Model
}

// NewDraftController creates a new DraftController instance.
func NewDraftController(habits *services.HabitService) *DraftController {
	return &DraftController{habits: habits, drafts: map[uint]*selection.Model{}}
}

func (d *DraftController) draftFor(ctx *gin.Context) (*selection.Model, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		utils.Error(ctx, http.StatusUnauthorized, 40160, "unauthorized")
		return nil, false
	}
	userID, ok := value.(uint)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40160, "unauthorized")
		return nil, false
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	model, ok := d.drafts[userID]
	if !ok {
		model = selection.NewModel(models.ActionTypeSports)
		d.drafts[userID] = model
	}
	return model, true
}

func draftPayload(model *selection.Model) gin.H {
	return gin.H{
		"action_type": model.ActionType(),
		"entries":     model.Entries(),
		"count":       model.Count(),
		"success":     model.Success(),
	}
}

// GetDraft returns the caller's current selection state.
func (d *DraftController) GetDraft(ctx *gin.Context) {
	model, ok := d.draftFor(ctx)
	if !ok {
		return
	}
	utils.Success(ctx, draftPayload(model))
}

// Toggle selects or deselects one action in the caller's draft.
func (d *DraftController) Toggle(ctx *gin.Context) {
	var req struct {
		ActionID uint  `json:"action_id" binding:"required"`
		Selected *bool `json:"selected" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40061, "invalid request payload")
		return
	}

	model, ok := d.draftFor(ctx)
	if !ok {
		return
	}
	model.Toggle(req.ActionID, *req.Selected)
	utils.Success(ctx, draftPayload(model))
}

// UpdateEntry edits one field of an already-selected action. Edits never
// create entries.
func (d *DraftController) UpdateEntry(ctx *gin.Context) {
	var req struct {
		ActionID uint   `json:"action_id" binding:"required"`
		Field    string `json:"field" binding:"required,oneof=note date time completed_at"`
		Value    string `json:"value"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40062, "invalid request payload")
		return
	}

	model, ok := d.draftFor(ctx)
	if !ok {
		return
	}

	var applied bool
	switch req.Field {
	case "note":
		applied = model.SetNote(req.ActionID, req.Value)
	case "date":
		applied = model.SetDate(req.ActionID, req.Value)
	case "time":
		applied = model.SetTime(req.ActionID, req.Value)
	case "completed_at":
		applied = model.SetCompletedAt(req.ActionID, req.Value)
	}
	if !applied {
		utils.Error(ctx, http.StatusConflict, 40960, "action is not selected")
		return
	}
	utils.Success(ctx, draftPayload(model))
}

// SetType switches the action-type tab, discarding the whole selection.
func (d *DraftController) SetType(ctx *gin.Context) {
	var req struct {
		Type int `json:"type" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil || !models.ValidActionType(req.Type) {
		utils.Error(ctx, http.StatusBadRequest, 40063, "invalid action type")
		return
	}

	model, ok := d.draftFor(ctx)
	if !ok {
		return
	}
	model.SetType(req.Type)
	utils.Success(ctx, draftPayload(model))
}

// Submit turns the draft into one batched insert. On failure the draft is
// kept so the user can retry without re-entering anything; on success it
// clears and the transient success flag raises.
func (d *DraftController) Submit(ctx *gin.Context) {
	model, ok := d.draftFor(ctx)
	if !ok {
		return
	}

	rows := model.Rows()
	if len(rows) == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40064, "no actions selected")
		return
	}

	ids, err := d.habits.CreateHabits(ctx.Request.Context(), rows)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, err.Error())
		return
	}

	model.MarkSubmitted()
	utils.Success(ctx, gin.H{"ids": ids, "success": true})
}
