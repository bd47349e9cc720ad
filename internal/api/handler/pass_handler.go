package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cuongbtq/jobboard/internal/api/dto"
	"github.com/cuongbtq/jobboard/internal/domain"
)

// TriggerPass handles POST /api/v1/passes
// Publishes a trigger message for the worker and returns immediately
func (h *PassHandler) TriggerPass(c *gin.Context) {
	var req dto.TriggerPassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	kind, err := domain.ParsePassKind(req.Kind)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	msg := dto.TriggerMessage{
		PassID: uuid.New().String(),
		Kind:   string(kind),
	}

	body, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to encode trigger message", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to encode trigger message",
		})
		return
	}

	if err := h.publisher.PublishWithRetry(c.Request.Context(), body, "application/json"); err != nil {
		h.logger.Error("Failed to publish pass trigger",
			slog.String("pass_id", msg.PassID),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Failed to queue pass",
		})
		return
	}

	h.logger.Info("Pass trigger queued",
		slog.String("pass_id", msg.PassID),
		slog.String("kind", msg.Kind),
	)

	c.JSON(http.StatusAccepted, dto.TriggerPassResponse{
		PassID: msg.PassID,
		Kind:   msg.Kind,
	})
}
