// Package consent exposes the consent ledger API: append events, read the
// resolved per-channel status, and list a subject's full consent history.
package consent

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	consentapp "pharos/internal/application/consent"
	"pharos/internal/domain/consent"
	"pharos/internal/interfaces/http/handlers/common"
	"pharos/internal/shared/logger"
	"pharos/internal/shared/utils"
)

type RecordConsentRequest struct {
	Channel     string     `json:"channel" binding:"required"`
	Status      string     `json:"status" binding:"required"`
	Source      string     `json:"source" binding:"required,max=128"`
	EvidenceRef string     `json:"evidence_ref" binding:"max=256"`
	Notes       string     `json:"notes" binding:"max=2048"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

type ConsentRecordResponse struct {
	ID          uint       `json:"id"`
	Channel     string     `json:"channel"`
	Status      string     `json:"status"`
	Source      string     `json:"source"`
	EvidenceRef string     `json:"evidence_ref,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	RecordedAt  time.Time  `json:"recorded_at"`
}

func toRecordResponse(r *consent.Record) ConsentRecordResponse {
	return ConsentRecordResponse{
		ID:          r.ID(),
		Channel:     r.Channel().String(),
		Status:      r.Status().String(),
		Source:      r.Source(),
		EvidenceRef: r.EvidenceRef(),
		Notes:       r.Notes(),
		ExpiresAt:   r.ExpiresAt(),
		RecordedAt:  r.CreatedAt(),
	}
}

type Handler struct {
	ledger *consentapp.Ledger
	logger logger.Interface
}

func NewHandler(ledger *consentapp.Ledger, logger logger.Interface) *Handler {
	return &Handler{
		ledger: ledger,
		logger: logger,
	}
}

// Record handles POST /subjects/:sid/consents
func (h *Handler) Record(c *gin.Context) {
	var req RecordConsentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid record consent request", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	record, err := h.ledger.RecordConsent(c.Request.Context(), consentapp.RecordConsentCommand{
		SubjectSID:  c.Param("sid"),
		Channel:     req.Channel,
		Status:      req.Status,
		Source:      req.Source,
		EvidenceRef: req.EvidenceRef,
		Notes:       req.Notes,
		ExpiresAt:   req.ExpiresAt,
		Provenance:  common.Provenance(c),
	})
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, toRecordResponse(record))
}

// Overview handles GET /subjects/:sid/consents
func (h *Handler) Overview(c *gin.Context) {
	overview, err := h.ledger.StatusOverview(c.Request.Context(), c.Param("sid"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", overview)
}

// History handles GET /subjects/:sid/consents/history
func (h *Handler) History(c *gin.Context) {
	records, err := h.ledger.History(c.Request.Context(), c.Param("sid"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	views := make([]ConsentRecordResponse, len(records))
	for i, r := range records {
		views[i] = toRecordResponse(r)
	}

	utils.SuccessResponse(c, http.StatusOK, "", views)
}
