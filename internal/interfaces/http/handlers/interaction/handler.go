// Package interaction exposes engagement recording. The consent gate sits
// inside the use case; this layer only translates the denial into a 403.
package interaction

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	interactionapp "pharos/internal/application/interaction"
	"pharos/internal/interfaces/http/handlers/common"
	"pharos/internal/shared/logger"
	"pharos/internal/shared/utils"
)

type RecordInteractionRequest struct {
	Channel    string    `json:"channel" binding:"required"`
	Status     string    `json:"status" binding:"required"`
	OccurredAt time.Time `json:"occurred_at"`
	Notes      string    `json:"notes" binding:"max=4096"`
}

type Handler struct {
	recordUC *interactionapp.RecordInteractionUseCase
	logger   logger.Interface
}

func NewHandler(recordUC *interactionapp.RecordInteractionUseCase, logger logger.Interface) *Handler {
	return &Handler{
		recordUC: recordUC,
		logger:   logger,
	}
}

// Record handles POST /subjects/:sid/interactions
func (h *Handler) Record(c *gin.Context) {
	var req RecordInteractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid record interaction request", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.recordUC.Execute(c.Request.Context(), interactionapp.RecordInteractionCommand{
		SubjectSID: c.Param("sid"),
		Channel:    req.Channel,
		Status:     req.Status,
		OccurredAt: req.OccurredAt,
		Notes:      req.Notes,
		Provenance: common.Provenance(c),
	})
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, result)
}
