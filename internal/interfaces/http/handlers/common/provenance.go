// Package common holds helpers shared across HTTP handler packages.
package common

import (
	"github.com/gin-gonic/gin"

	auditapp "pharos/internal/application/audit"
	"pharos/internal/interfaces/http/middleware"
)

// Provenance builds audit attribution from the request: the authenticated
// actor if one was resolved, plus origin address and client agent.
func Provenance(c *gin.Context) auditapp.Provenance {
	prov := auditapp.Provenance{
		OriginAddress: c.ClientIP(),
		ClientAgent:   c.Request.UserAgent(),
	}

	if userID, exists := c.Get(middleware.ContextKeyUserID); exists {
		if id, ok := userID.(uint); ok {
			actorID := id
			prov.ActorID = &actorID
		}
	}

	return prov
}
