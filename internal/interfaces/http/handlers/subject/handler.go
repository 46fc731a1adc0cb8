// Package subject exposes the HCP profile API. Every route that returns or
// changes PII runs behind authentication so the audit trail can name the
// actor.
package subject

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pharos/internal/application/subject/usecases"
	"pharos/internal/interfaces/http/handlers/common"
	"pharos/internal/shared/logger"
	"pharos/internal/shared/utils"
)

type Handler struct {
	createUC usecases.CreateSubjectExecutor
	getUC    usecases.GetSubjectExecutor
	updateUC usecases.UpdateSubjectExecutor
	searchUC usecases.SearchSubjectsExecutor
	deleteUC usecases.SoftDeleteSubjectExecutor
	logger   logger.Interface
}

func NewHandler(
	createUC usecases.CreateSubjectExecutor,
	getUC usecases.GetSubjectExecutor,
	updateUC usecases.UpdateSubjectExecutor,
	searchUC usecases.SearchSubjectsExecutor,
	deleteUC usecases.SoftDeleteSubjectExecutor,
	logger logger.Interface,
) *Handler {
	return &Handler{
		createUC: createUC,
		getUC:    getUC,
		updateUC: updateUC,
		searchUC: searchUC,
		deleteUC: deleteUC,
		logger:   logger,
	}
}

// Create handles POST /subjects
func (h *Handler) Create(c *gin.Context) {
	var req CreateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid create subject request", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.createUC.Execute(c.Request.Context(), req.ToCommand(common.Provenance(c)))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, result)
}

// Get handles GET /subjects/:sid
func (h *Handler) Get(c *gin.Context) {
	result, err := h.getUC.Execute(c.Request.Context(), usecases.GetSubjectQuery{
		SID:        c.Param("sid"),
		Provenance: common.Provenance(c),
	})
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// Update handles PATCH /subjects/:sid
func (h *Handler) Update(c *gin.Context) {
	var req UpdateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid update subject request", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.updateUC.Execute(c.Request.Context(),
		req.ToCommand(c.Param("sid"), common.Provenance(c)))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "subject updated", result)
}

// Search handles GET /subjects
func (h *Handler) Search(c *gin.Context) {
	var req SearchSubjectsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	pagination := utils.ParsePagination(c)
	result, err := h.searchUC.Execute(c.Request.Context(),
		req.ToQuery(pagination.Page, pagination.PageSize, territoryScope(c)))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "",
		utils.NewListResponse(result.Subjects, result.Total, pagination.Page, pagination.PageSize))
}

// Delete handles DELETE /subjects/:sid
func (h *Handler) Delete(c *gin.Context) {
	err := h.deleteUC.Execute(c.Request.Context(), usecases.SoftDeleteSubjectCommand{
		SID:        c.Param("sid"),
		Provenance: common.Provenance(c),
	})
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// territoryScope reads the caller's territory visibility from the gin
// context. Empty means unrestricted; the upstream CRM sets it per role.
func territoryScope(c *gin.Context) []uint {
	if scope, exists := c.Get("territory_scope"); exists {
		if ids, ok := scope.([]uint); ok {
			return ids
		}
	}
	return nil
}
