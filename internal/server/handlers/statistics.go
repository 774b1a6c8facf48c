package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/herdsync/internal/domain/models"
	"github.com/mamadbah2/herdsync/internal/service/statistics"
)

type commandRequest struct {
	Text string `json:"text" binding:"required"`
}

// GetStatistics loads the month of ?date=YYYY-MM-DD or ?month=YYYY-MM, or the
// currently selected month when neither is given.
func (h *Handler) GetStatistics(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		stats statistics.MonthStats
		err   error
	)
	switch date, month := c.Query("date"), c.Query("month"); {
	case date != "":
		var anchor time.Time
		if anchor, err = models.ParseDay(date, h.loc); err != nil {
			h.fail(c, err, "invalid statistics date")
			return
		}
		stats, err = h.svc.Statistics.UpdateSelectedDate(ctx, anchor)
	case month != "":
		var m models.Month
		if m, err = models.ParseMonth(month, h.loc); err != nil {
			h.fail(c, err, "invalid statistics month")
			return
		}
		anchor, _ := models.ParseDay(m.Start, h.loc)
		stats, err = h.svc.Statistics.UpdateSelectedDate(ctx, anchor)
	default:
		stats, err = h.svc.Statistics.Reload(ctx)
	}
	if err != nil {
		h.fail(c, err, "failed to load statistics")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Reconcile repairs the completion flags of ?month=YYYY-MM (default current month).
func (h *Handler) Reconcile(c *gin.Context) {
	month := models.MonthOf(h.now(), h.loc)
	if value := c.Query("month"); value != "" {
		m, err := models.ParseMonth(value, h.loc)
		if err != nil {
			h.fail(c, err, "invalid reconcile month")
			return
		}
		month = m
	}

	result, err := h.svc.Reconciler.Reconcile(c.Request.Context(), month)
	if err != nil {
		h.fail(c, err, "failed to reconcile")
		return
	}
	c.JSON(http.StatusOK, result)
}

// Reset deletes every herd, goal and record.
func (h *Handler) Reset(c *gin.Context) {
	if err := h.svc.Reset.ResetAll(c.Request.Context()); err != nil {
		h.fail(c, err, "failed to reset data")
		return
	}
	c.Status(http.StatusNoContent)
}

// RunCommand executes a text command such as "/milk 40".
func (h *Handler) RunCommand(c *gin.Context) {
	var req commandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid command payload"})
		return
	}

	reply, err := h.svc.Commands.HandleCommand(c.Request.Context(), models.ParseCommand(req.Text))
	if err != nil {
		h.fail(c, err, "failed to run command")
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}
