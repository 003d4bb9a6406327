package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/clientportal/backend/internal/infrastructure/auth"
	"github.com/clientportal/backend/internal/infrastructure/config"
	"github.com/clientportal/backend/internal/interfaces/http/middleware"
)

// RouteRegistrar registers a handler's routes on the API group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router owns the gin engine and the versioned API group
type Router struct {
	engine *gin.Engine
	api    *gin.RouterGroup
}

// New builds the engine with the standard middleware chain and an
// authenticated /api/v1 group. Login and the OAuth callback are the only
// unauthenticated API paths.
func New(cfg *config.Config, jwtService *auth.JWTService, logger *zap.Logger) (*Router, error) {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	registerValidations()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.RequestLogger(logger),
		middleware.CORS(cfg.HTTP),
	)

	api := engine.Group("/api/v1")
	api.Use(middleware.JWTAuth(middleware.JWTConfig{
		Service: jwtService,
		SkipPaths: []string{
			"/api/v1/auth/login",
			"/api/v1/billing/callback",
		},
	}))

	return &Router{engine: engine, api: api}, nil
}

// Register adds handlers to the API group
func (r *Router) Register(registrars ...RouteRegistrar) {
	for _, reg := range registrars {
		reg.RegisterRoutes(r.api)
	}
}

// Engine exposes the underlying gin engine for probe routes and the server
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
