package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdsync/internal/domain/models"
)

type goalsRequest struct {
	Milk *float64 `json:"milk" binding:"required"`
	Eggs *float64 `json:"eggs" binding:"required"`
	Wool *float64 `json:"wool" binding:"required"`
}

type valueRequest struct {
	Value *float64 `json:"value" binding:"required"`
}

type productView struct {
	Type      models.ProductType `json:"type"`
	LabelKey  string             `json:"label_key"`
	UnitKey   string             `json:"unit_key"`
	Required  float64            `json:"required"`
	Actual    float64            `json:"actual"`
	Progress  float64            `json:"progress"`
	Completed bool               `json:"completed"`
}

// DefaultGoals returns the goal implied by the current herds.
func (h *Handler) DefaultGoals(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Goals.Defaults())
}

// GetGoals returns the stored or default goal of a day.
func (h *Handler) GetGoals(c *gin.Context) {
	day, err := h.resolveDay(c.Param("day"))
	if err != nil {
		h.fail(c, err, "invalid day")
		return
	}

	goal, persisted, err := h.svc.Goals.GoalFor(c.Request.Context(), day)
	if err != nil {
		h.fail(c, err, "failed to load goals")
		return
	}
	c.JSON(http.StatusOK, gin.H{"goal": goal, "persisted": persisted})
}

// SaveGoals stores the goal of a day.
func (h *Handler) SaveGoals(c *gin.Context) {
	day, err := h.resolveDay(c.Param("day"))
	if err != nil {
		h.fail(c, err, "invalid day")
		return
	}

	var req goalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid goals payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid goals payload"})
		return
	}

	goal, err := h.svc.Goals.SaveGoals(c.Request.Context(), day, *req.Milk, *req.Eggs, *req.Wool)
	if err != nil {
		h.fail(c, err, "failed to save goals")
		return
	}
	// The record of the day, if any, is judged against the new goal right away.
	if _, err := h.svc.Records.RefreshCompletion(c.Request.Context(), day); err != nil {
		h.logger.Warn("failed to refresh completion after goal change", zap.String("day", day), zap.Error(err))
	}
	c.JSON(http.StatusOK, goal)
}

// GetRecord returns the record of a day.
func (h *Handler) GetRecord(c *gin.Context) {
	day, err := h.resolveDay(c.Param("day"))
	if err != nil {
		h.fail(c, err, "invalid day")
		return
	}

	record, err := h.svc.Records.RecordFor(c.Request.Context(), day)
	if err != nil {
		h.fail(c, err, "failed to load record")
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no record for " + day})
		return
	}
	c.JSON(http.StatusOK, record)
}

// SetProduct overwrites one product of a day's record.
func (h *Handler) SetProduct(c *gin.Context) {
	day, err := h.resolveDay(c.Param("day"))
	if err != nil {
		h.fail(c, err, "invalid day")
		return
	}

	product, err := models.ParseProduct(c.Param("product"))
	if err != nil {
		h.fail(c, err, "invalid product")
		return
	}

	var req valueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid record payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record payload"})
		return
	}

	record, err := h.svc.Records.SetProduct(c.Request.Context(), day, product, *req.Value)
	if err != nil {
		h.fail(c, err, "failed to save record")
		return
	}
	c.JSON(http.StatusOK, record)
}

// GetPlan returns the progress view of a day.
func (h *Handler) GetPlan(c *gin.Context) {
	day, err := h.resolveDay(c.Param("day"))
	if err != nil {
		h.fail(c, err, "invalid day")
		return
	}

	p, err := h.svc.Plans.PlanFor(c.Request.Context(), day)
	if err != nil {
		h.fail(c, err, "failed to build plan")
		return
	}

	products := make([]productView, 0, len(p.Products))
	for _, pp := range p.Products {
		products = append(products, productView{
			Type:      pp.Type,
			LabelKey:  pp.Type.LabelKey(),
			UnitKey:   pp.Type.UnitKey(),
			Required:  pp.Required,
			Actual:    pp.Actual,
			Progress:  pp.Progress(),
			Completed: pp.IsCompleted(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"day":            p.Day,
		"goal_persisted": p.GoalPersisted,
		"completed":      p.Completed(),
		"products":       products,
	})
}
