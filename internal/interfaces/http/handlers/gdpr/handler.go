// Package gdpr exposes the erasure operations: irreversible anonymization
// and the data subject access report in JSON, markdown, or HTML.
package gdpr

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pharos/internal/application/erasure"
	"pharos/internal/interfaces/http/handlers/common"
	"pharos/internal/shared/logger"
	"pharos/internal/shared/utils"
)

type Handler struct {
	anonymizeUC *erasure.AnonymizeSubjectUseCase
	reportUC    *erasure.GenerateReportUseCase
	logger      logger.Interface
}

func NewHandler(
	anonymizeUC *erasure.AnonymizeSubjectUseCase,
	reportUC *erasure.GenerateReportUseCase,
	logger logger.Interface,
) *Handler {
	return &Handler{
		anonymizeUC: anonymizeUC,
		reportUC:    reportUC,
		logger:      logger,
	}
}

// Anonymize handles POST /subjects/:sid/gdpr/anonymize
func (h *Handler) Anonymize(c *gin.Context) {
	result, err := h.anonymizeUC.Execute(c.Request.Context(), erasure.AnonymizeSubjectCommand{
		SID:        c.Param("sid"),
		Provenance: common.Provenance(c),
	})
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "subject anonymized", result)
}

// Report handles GET /subjects/:sid/gdpr/report. The format query parameter
// selects json (default), markdown, or html.
func (h *Handler) Report(c *gin.Context) {
	report, err := h.reportUC.Execute(c.Request.Context(), erasure.GenerateReportQuery{
		SID:        c.Param("sid"),
		Provenance: common.Provenance(c),
	})
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	switch c.DefaultQuery("format", "json") {
	case "markdown":
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(erasure.RenderMarkdown(report)))
	case "html":
		html, err := erasure.RenderHTML(report)
		if err != nil {
			utils.HandleError(c, err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
	default:
		utils.SuccessResponse(c, http.StatusOK, "", report)
	}
}
