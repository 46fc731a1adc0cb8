// Package auditlog exposes read-only access to the audit trail: filtered
// queries, per-entity history, and the integrity check.
package auditlog

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	auditapp "pharos/internal/application/audit"
	"pharos/internal/domain/audit"
	"pharos/internal/domain/subject"
	"pharos/internal/interfaces/http/handlers/common"
	"pharos/internal/shared/logger"
	"pharos/internal/shared/query"
	"pharos/internal/shared/utils"
)

type EntryResponse struct {
	ID            uint              `json:"id"`
	ActorID       *uint             `json:"actor_id,omitempty"`
	Action        string            `json:"action"`
	EntityType    string            `json:"entity_type"`
	EntityID      string            `json:"entity_id"`
	PreviousState audit.Snapshot    `json:"previous_state,omitempty"`
	NewState      audit.Snapshot    `json:"new_state,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	OriginAddress string            `json:"origin_address,omitempty"`
	ClientAgent   string            `json:"client_agent,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

func toEntryResponse(e *audit.Entry) EntryResponse {
	return EntryResponse{
		ID:            e.ID(),
		ActorID:       e.ActorID(),
		Action:        e.Action().String(),
		EntityType:    e.EntityType(),
		EntityID:      e.EntityID(),
		PreviousState: e.PreviousState(),
		NewState:      e.NewState(),
		Metadata:      e.Metadata(),
		OriginAddress: e.OriginAddress(),
		ClientAgent:   e.ClientAgent(),
		CreatedAt:     e.CreatedAt(),
	}
}

type Handler struct {
	trail  *auditapp.Trail
	logger logger.Interface
}

func NewHandler(trail *auditapp.Trail, logger logger.Interface) *Handler {
	return &Handler{
		trail:  trail,
		logger: logger,
	}
}

// List handles GET /audit/entries
func (h *Handler) List(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	pagination := utils.ParsePagination(c)
	filter.BaseFilter = query.NewBaseFilter(
		query.WithPage(pagination.Page, pagination.PageSize),
	)

	entries, total, err := h.trail.Query(c.Request.Context(), filter)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	views := make([]EntryResponse, len(entries))
	for i, e := range entries {
		views[i] = toEntryResponse(e)
	}

	utils.SuccessResponse(c, http.StatusOK, "",
		utils.NewListResponse(views, total, pagination.Page, pagination.PageSize))
}

// History handles GET /audit/entities/:type/:id
func (h *Handler) History(c *gin.Context) {
	entries, err := h.trail.History(c.Request.Context(), c.Param("type"), c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	views := make([]EntryResponse, len(entries))
	for i, e := range entries {
		views[i] = toEntryResponse(e)
	}

	utils.SuccessResponse(c, http.StatusOK, "", views)
}

// RecordAIDecisionRequest captures an automated decision about a subject so
// the access report can disclose the model and the factors behind it.
type RecordAIDecisionRequest struct {
	SubjectSID string `json:"subject_sid" binding:"required"`
	Model      string `json:"model" binding:"required,max=128"`
	Factors    string `json:"factors" binding:"required,max=2048"`
}

// RecordAIDecision handles POST /audit/ai-decisions
func (h *Handler) RecordAIDecision(c *gin.Context) {
	var req RecordAIDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid record AI decision request", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	meta := audit.Metadata{
		audit.MetaKeyModel:   req.Model,
		audit.MetaKeyFactors: req.Factors,
	}
	err := h.trail.Record(c.Request.Context(), common.Provenance(c),
		audit.ActionAIDecision, subject.EntityType, req.SubjectSID, nil, nil, meta)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "AI decision recorded", nil)
}

// VerifyIntegrity handles GET /audit/entities/:type/:id/integrity
func (h *Handler) VerifyIntegrity(c *gin.Context) {
	result, err := h.trail.VerifyIntegrity(c.Request.Context(), c.Param("type"), c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

func parseFilter(c *gin.Context) (audit.Filter, error) {
	var filter audit.Filter

	if v := c.Query("actor_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return filter, err
		}
		actorID := uint(id)
		filter.ActorID = &actorID
	}
	if v := c.Query("action"); v != "" {
		action := audit.Action(v)
		filter.Action = &action
	}
	filter.EntityType = c.Query("entity_type")
	filter.EntityID = c.Query("entity_id")

	if v := c.Query("from"); v != "" {
		from, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, err
		}
		filter.From = &from
	}
	if v := c.Query("to"); v != "" {
		to, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, err
		}
		filter.To = &to
	}

	return filter, nil
}
