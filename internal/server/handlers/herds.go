package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdsync/internal/service/herds"
)

type herdRequest struct {
	Name     string `json:"name" binding:"required"`
	Cows     int    `json:"cows" binding:"min=0"`
	Chickens int    `json:"chickens" binding:"min=0"`
	Sheep    int    `json:"sheep" binding:"min=0"`
	Goats    int    `json:"goats" binding:"min=0"`
}

func (r herdRequest) input() herds.Input {
	return herds.Input{Name: r.Name, Cows: r.Cows, Chickens: r.Chickens, Sheep: r.Sheep, Goats: r.Goats}
}

// ListHerds returns every herd.
func (h *Handler) ListHerds(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"herds": h.svc.Herds.List()})
}

// CreateHerd adds a herd.
func (h *Handler) CreateHerd(c *gin.Context) {
	var req herdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid herd payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid herd payload"})
		return
	}

	herd, err := h.svc.Herds.Add(c.Request.Context(), req.input())
	if err != nil {
		h.fail(c, err, "failed to add herd")
		return
	}
	c.JSON(http.StatusCreated, herd)
}

// UpdateHerd edits a herd.
func (h *Handler) UpdateHerd(c *gin.Context) {
	var req herdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid herd payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid herd payload"})
		return
	}

	herd, err := h.svc.Herds.Update(c.Request.Context(), c.Param("id"), req.input())
	if err != nil {
		h.fail(c, err, "failed to update herd")
		return
	}
	c.JSON(http.StatusOK, herd)
}

// DeleteHerd removes a herd.
func (h *Handler) DeleteHerd(c *gin.Context) {
	if err := h.svc.Herds.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err, "failed to delete herd")
		return
	}
	c.Status(http.StatusNoContent)
}
