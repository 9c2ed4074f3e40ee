package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/habitboard/habitboard/feed"
	"github.com/habitboard/habitboard/heatmap"
	"github.com/habitboard/habitboard/models"
	"github.com/habitboard/habitboard/services"
	"github.com/habitboard/habitboard/utils"
)

// HabitController serves the habit feed, score aggregates, the composed
// heatmap, detail lookups, and batched creates.
type HabitController struct {
	habits *services.HabitService
}

// NewHabitController creates a new HabitController instance.
func NewHabitController(habits *services.HabitService) *HabitController {
	return &HabitController{habits: habits}
}

// GetFeed returns one feed window with its date groups. Remote errors pass
// through with their message intact; the UI shows them inline.
func (h *HabitController) GetFeed(ctx *gin.Context) {
	actionType, ok := parseActionType(ctx)
	if !ok {
		return
	}
	offset := 0
	if v, err := strconv.Atoi(ctx.Query("offset")); err == nil && v > 0 {
		offset = v
	}

	page, err := h.habits.GetHabitFeed(ctx.Request.Context(), actionType, offset)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50050, err.Error())
		return
	}

	utils.Success(ctx, gin.H{
		"items":    page.Items,
		"groups":   feed.GroupByDate(page.Items),
		"has_more": page.HasMore,
	})
}

// GetScores returns the raw per-day aggregates for the year ending at
// start_date (default today).
func (h *HabitController) GetScores(ctx *gin.Context) {
	actionType, ok := parseActionType(ctx)
	if !ok {
		return
	}
	startDate := ctx.DefaultQuery("start_date", time.Now().Format("2006-01-02"))

	scores, err := h.habits.GetDailyHabitScores(ctx.Request.Context(), startDate, actionType)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50051, err.Error())
		return
	}
	utils.Success(ctx, gin.H{"scores": scores})
}

// GetGraph returns the composed heatmap grid for the year ending at
// start_date (default today).
func (h *HabitController) GetGraph(ctx *gin.Context) {
	actionType, ok := parseActionType(ctx)
	if !ok {
		return
	}
	startDate := ctx.DefaultQuery("start_date", time.Now().Format("2006-01-02"))
	refDay, err := time.ParseInLocation("2006-01-02", startDate, time.Local)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40052, "invalid start_date")
		return
	}

	scores, err := h.habits.GetDailyHabitScores(ctx.Request.Context(), startDate, actionType)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50052, err.Error())
		return
	}

	graph := heatmap.Compose(refDay, scores)
	utils.Success(ctx, gin.H{"graph": graph, "action_type": actionType})
}

// GetHabit returns one habit with its joined action, or a distinct 404 when
// the id does not exist.
func (h *HabitController) GetHabit(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40053, "invalid habit id")
		return
	}

	habit, err := h.habits.GetHabitByID(ctx.Request.Context(), uint(id))
	if errors.Is(err, services.ErrHabitNotFound) {
		utils.Error(ctx, http.StatusNotFound, 40450, "habit not found")
		return
	}
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50053, err.Error())
		return
	}

	utils.Success(ctx, gin.H{
		"habit":      habit,
		"type_label": models.ActionTypeLabels[habit.Action.Type],
	})
}

// CreateHabits inserts a batch of habit rows and returns the generated ids.
// The batch fails atomically; no row persists unless the call succeeds.
func (h *HabitController) CreateHabits(ctx *gin.Context) {
	var req struct {
		Rows []struct {
			ActionID    uint    `json:"action_id" binding:"required"`
			Note        *string `json:"note"`
			CompletedAt string  `json:"completed_at" binding:"required"`
		} `json:"rows" binding:"required,min=1"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40054, "invalid request payload")
		return
	}

	inputs := make([]services.HabitInput, 0, len(req.Rows))
	for _, row := range req.Rows {
		completedAt, err := parseTimestamp(row.CompletedAt)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40055, "invalid completed_at timestamp")
			return
		}
		inputs = append(inputs, services.HabitInput{
			ActionID:    row.ActionID,
			Note:        row.Note,
			CompletedAt: completedAt,
		})
	}

	ids, err := h.habits.CreateHabits(ctx.Request.Context(), inputs)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50054, err.Error())
		return
	}

	utils.Success(ctx, gin.H{"ids": ids})
}

// ExportFeed walks the entire feed for one action type through the pager and
// returns every date group. Load-more semantics apply: each step appends one
// window, never replacing what came before.
func (h *HabitController) ExportFeed(ctx *gin.Context) {
	actionType, ok := parseActionType(ctx)
	if !ok {
		return
	}

	pager := feed.NewPager(h.habits.GetHabitFeed, actionType)
	if err := pager.LoadFirst(ctx.Request.Context()); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50055, err.Error())
		return
	}
	for pager.HasMore() {
		if err := pager.LoadMore(ctx.Request.Context()); err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50055, err.Error())
			return
		}
	}

	items := pager.Items()
	utils.Success(ctx, gin.H{
		"groups": pager.Groups(),
		"total":  len(items),
	})
}

// parseActionType reads and validates the type query parameter, answering
// the request itself on failure.
func parseActionType(ctx *gin.Context) (int, bool) {
	actionType, err := strconv.Atoi(ctx.DefaultQuery("type", "1"))
	if err != nil || !models.ValidActionType(actionType) {
		utils.Error(ctx, http.StatusBadRequest, 40051, "invalid action type")
		return 0, false
	}
	return actionType, true
}

// parseTimestamp accepts RFC3339 or the local minute/second layouts the
// create form produces.
func parseTimestamp(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", value, time.Local); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02T15:04", value, time.Local)
}
