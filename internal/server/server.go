package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/aman-churiwal/storefront-gateway/internal/config"
	"github.com/aman-churiwal/storefront-gateway/internal/handler"
	"github.com/aman-churiwal/storefront-gateway/internal/identity"
	"github.com/aman-churiwal/storefront-gateway/internal/middleware"
	"github.com/aman-churiwal/storefront-gateway/internal/ratelimit"
	"github.com/aman-churiwal/storefront-gateway/internal/repository"
	"github.com/aman-churiwal/storefront-gateway/internal/routes"
	"github.com/aman-churiwal/storefront-gateway/internal/service"
	"github.com/aman-churiwal/storefront-gateway/internal/session"
	"github.com/aman-churiwal/storefront-gateway/internal/storage"
	"github.com/aman-churiwal/storefront-gateway/internal/upstream"
	"github.com/gin-gonic/gin"
)

type Server struct {
	router   *gin.Engine
	config   *config.Config
	redis    *storage.RedisClient
	postgres *storage.Postgres

	sessionCache   *session.Cache
	decisionLogger *middleware.DecisionLogger
	pool           *upstream.Pool
	forwarder      *upstream.Forwarder

	authHandler    *handler.AuthHandler
	accountHandler *handler.AccountHandler
	systemHandler  *handler.SystemHandler

	httpServer *http.Server
}

func New(cfg *config.Config, redis *storage.RedisClient, postgres *storage.Postgres) (*Server, error) {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Identity provider backed by Postgres
	userRepo := repository.NewUserRepository(postgres)
	identityService := identity.NewService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTLHours)

	// Session cache and resolver
	sessionCache := session.NewCache(cfg.Pipeline.SessionTTL(), cfg.Pipeline.SweepInterval())
	resolver := session.NewResolver(sessionCache, identityService)

	// Gate decision logging
	decisionRepo := repository.NewGateDecisionRepository(postgres)
	decisionLogger := middleware.NewDecisionLogger(decisionRepo, 1000)
	trafficService := service.NewTrafficService(postgres, decisionRepo)

	// Upstream storefront instances
	pool, err := upstream.NewPool(upstream.PoolConfig{
		Targets:         cfg.Upstream.Targets,
		Strategy:        cfg.Upstream.Strategy,
		BreakerFailures: cfg.Upstream.BreakerMaxFailures,
		BreakerCooldown: time.Duration(cfg.Upstream.BreakerTimeoutSeconds) * time.Second,
		HealthPath:      cfg.Upstream.HealthPath,
		ProbeEvery:      time.Duration(cfg.Upstream.HealthIntervalSeconds) * time.Second,
	})
	if err != nil {
		return nil, err
	}

	forwarder, err := upstream.NewForwarder(pool)
	if err != nil {
		return nil, err
	}

	secureCookies := cfg.Server.Environment == "production"

	s := &Server{
		router:         router,
		config:         cfg,
		redis:          redis,
		postgres:       postgres,
		sessionCache:   sessionCache,
		decisionLogger: decisionLogger,
		pool:           pool,
		forwarder:      forwarder,
		authHandler:    handler.NewAuthHandler(identityService, cfg.Auth.CookieName, cfg.Auth.TokenTTLHours, secureCookies),
		accountHandler: handler.NewAccountHandler(userRepo),
		systemHandler:  handler.NewSystemHandler(pool, trafficService),
	}

	s.setupMiddleware(resolver, identityService)
	s.setupRoutes()

	sessionCache.StartSweeper()
	pool.Start()

	return s, nil
}

// The gate pipeline. Order is load-bearing: later stages assume earlier ones
// already passed.
func (s *Server) setupMiddleware(resolver *session.Resolver, provider identity.Provider) {
	pipeline := s.config.Pipeline

	limiters := ratelimit.NewClassLimiters(s.redis, pipeline)
	classifier := ratelimit.NewClassifier(pipeline.AuthMarker, pipeline.OrderMarker)
	table := routes.NewTable(pipeline.PublicPaths, pipeline.ProtectedPaths, pipeline.PrivilegedPaths)

	s.router.Use(middleware.Recovery())
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.Logger())
	s.router.Use(s.decisionLogger.Middleware())
	s.router.Use(middleware.RateLimit(limiters, classifier, pipeline.APIPrefix))
	s.router.Use(middleware.OriginGuard(pipeline.APIPrefix))
	s.router.Use(middleware.ResolveSession(resolver, s.config.Auth.CookieName))
	s.router.Use(middleware.Authorize(table, provider, s.config.Auth.LoginPath))
}

func (s *Server) setupRoutes() {
	s.router.GET("/api/health", s.healthCheck)

	auth := s.router.Group("/api/auth")
	{
		auth.POST("/register", s.authHandler.Register)
		auth.POST("/login", s.authHandler.Login)
		auth.POST("/logout", s.authHandler.Logout)
	}

	s.router.GET("/api/profile/me", s.authHandler.Me)

	admin := s.router.Group("/api/admin")
	{
		admin.GET("/users", s.accountHandler.List)
		admin.GET("/users/:id", s.accountHandler.Get)
		admin.PATCH("/users/:id/staff", s.accountHandler.SetStaff)
		admin.GET("/upstreams", s.systemHandler.UpstreamStatus)
		admin.POST("/upstreams/reset", s.systemHandler.ResetBreaker)
		admin.GET("/traffic", s.systemHandler.TrafficSummary)
		admin.GET("/decisions", s.systemHandler.RecentDecisions)
		admin.POST("/decisions/cleanup", s.systemHandler.CleanupDecisions)
	}

	// Everything else is storefront traffic and goes upstream
	s.router.NoRoute(func(c *gin.Context) {
		s.forwarder.Handle(c)
	})
}

func (s *Server) healthCheck(c *gin.Context) {
	redisHealthy := true
	if err := s.redis.Ping(c.Request.Context()); err != nil {
		redisHealthy = false
		log.Printf("Redis health check failed: %v", err)
	}

	dbHealthy := true
	if err := s.postgres.Ping(c.Request.Context()); err != nil {
		dbHealthy = false
		log.Printf("Database health check failed: %v", err)
	}

	upstreamHealthy := s.pool.HasHealthy()

	status := "healthy"
	statusCode := http.StatusOK

	if !redisHealthy || !dbHealthy || !upstreamHealthy {
		status = "degraded"
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"status":    status,
		"service":   "storefront-gateway",
		"version":   "1.0.0",
		"timestamp": time.Now().Unix(),
		"checks": gin.H{
			"redis":    redisHealthy,
			"database": dbHealthy,
			"upstream": upstreamHealthy,
		},
	})
}

func (s *Server) Run(addr string) error {
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	log.Printf("Starting storefront gateway on %s", addr)
	log.Printf("Environment: %s", s.config.Server.Environment)

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}

	// Stop background tasks after in-flight requests have drained
	s.sessionCache.Stop()
	s.pool.Stop()
	s.decisionLogger.Stop()

	return err
}

func (s *Server) GetRouter() *gin.Engine {
	return s.router
}
