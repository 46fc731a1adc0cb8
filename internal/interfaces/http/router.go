// Package http wires the handlers, middleware, and routes of the trust
// layer API.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	vo "pharos/internal/domain/subject/valueobjects"
	"pharos/internal/interfaces/http/handlers/auditlog"
	"pharos/internal/interfaces/http/handlers/consent"
	"pharos/internal/interfaces/http/handlers/gdpr"
	"pharos/internal/interfaces/http/handlers/interaction"
	"pharos/internal/interfaces/http/handlers/subject"
	"pharos/internal/interfaces/http/middleware"
	"pharos/internal/shared/logger"
)

// Handlers bundles the handler set the router mounts.
type Handlers struct {
	Subject     *subject.Handler
	Consent     *consent.Handler
	Interaction *interaction.Handler
	AuditLog    *auditlog.Handler
	GDPR        *gdpr.Handler
}

type Router struct {
	engine   *gin.Engine
	handlers Handlers
	auth     *middleware.AuthMiddleware
	logger   logger.Interface
}

func NewRouter(handlers Handlers, auth *middleware.AuthMiddleware, log logger.Interface) *Router {
	engine := gin.New()
	registerValidations()

	return &Router{
		engine:   engine,
		handlers: handlers,
		auth:     auth,
		logger:   log,
	}
}

// registerValidations adds domain validations to gin's binding validator.
func registerValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("influencetier", func(fl validator.FieldLevel) bool {
			return vo.InfluenceTier(fl.Field().String()).IsValid()
		})
	}
}

func (r *Router) SetupRoutes() {
	r.engine.Use(
		middleware.Recovery(r.logger),
		middleware.RequestID(),
		middleware.Logger(r.logger),
	)

	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.engine.Group("/api/v1")
	api.Use(r.auth.RequireAuth())

	subjects := api.Group("/subjects")
	{
		subjects.POST("", r.handlers.Subject.Create)
		subjects.GET("", r.handlers.Subject.Search)
		subjects.GET("/:sid", r.handlers.Subject.Get)
		subjects.PATCH("/:sid", r.handlers.Subject.Update)
		subjects.DELETE("/:sid", r.handlers.Subject.Delete)

		subjects.POST("/:sid/consents", r.handlers.Consent.Record)
		subjects.GET("/:sid/consents", r.handlers.Consent.Overview)
		subjects.GET("/:sid/consents/history", r.handlers.Consent.History)

		subjects.POST("/:sid/interactions", r.handlers.Interaction.Record)

		subjects.POST("/:sid/gdpr/anonymize", r.handlers.GDPR.Anonymize)
		subjects.GET("/:sid/gdpr/report", r.handlers.GDPR.Report)
	}

	auditRoutes := api.Group("/audit")
	{
		auditRoutes.GET("/entries", r.handlers.AuditLog.List)
		auditRoutes.POST("/ai-decisions", r.handlers.AuditLog.RecordAIDecision)
		auditRoutes.GET("/entities/:type/:id", r.handlers.AuditLog.History)
		auditRoutes.GET("/entities/:type/:id/integrity", r.handlers.AuditLog.VerifyIntegrity)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
