package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tunaskarier/portal-api/config"
	"github.com/tunaskarier/portal-api/internal/handlers"
	"github.com/tunaskarier/portal-api/internal/middleware"
	"github.com/tunaskarier/portal-api/internal/models"
	"github.com/tunaskarier/portal-api/internal/services"
	"github.com/tunaskarier/portal-api/internal/session"
	"github.com/tunaskarier/portal-api/internal/upstream"
	"github.com/tunaskarier/portal-api/pkg/httpclient"
	"github.com/tunaskarier/portal-api/pkg/jwt"
	"github.com/tunaskarier/portal-api/pkg/logger"
	"github.com/tunaskarier/portal-api/pkg/metrics"
	"github.com/tunaskarier/portal-api/pkg/profiling"
	"github.com/tunaskarier/portal-api/pkg/tracing"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// registerRoleRoutes registers the resource routes for one portal role.
// Every route in the subtree is behind the role guard; the resource catalog
// decides which resources the role can actually reach.
func registerRoleRoutes(
	router *gin.Engine,
	role models.Role,
	guard *middleware.RoleGuard,
	generalRateLimiter *middleware.RateLimiter,
	resourceHandler *handlers.ResourceHandler,
) {
	grp := router.Group("/portal/"+role.String(), guard.RequireRole(role))
	grp.GET("/:resource", generalRateLimiter.Middleware(), resourceHandler.List)
	grp.GET("/:resource/:id", generalRateLimiter.Middleware(), resourceHandler.Get)
	grp.POST("/:resource", generalRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(1*1024*1024), resourceHandler.Create)
	grp.PUT("/:resource/:id", generalRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(1*1024*1024), resourceHandler.Update)
	grp.DELETE("/:resource/:id", generalRateLimiter.Middleware(), resourceHandler.Delete)
	grp.POST("/:resource/:id/cancel-delete", generalRateLimiter.Middleware(), resourceHandler.CancelDelete)
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting TunasKarier portal API",
		zap.String("version", "1.0.0"),
		zap.String("environment", cfg.Server.AppEnv),
	)

	// Initialize distributed tracing
	tracerShutdown, err := tracing.InitTracer(
		cfg.Observability.ServiceName,
		cfg.Observability.ServiceNamespace,
		cfg.Observability.ServiceVersion,
		cfg.Observability.ServiceInstanceID,
		cfg.Server.AppEnv,
		cfg.Observability.ExporterEndpoint,
	)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	// Initialize continuous profiling
	profilerStop, err := profiling.InitProfiler(
		cfg.Profiling,
		cfg.Observability.ServiceName,
		cfg.Observability.ServiceNamespace,
		cfg.Observability.ServiceVersion,
		cfg.Observability.ServiceInstanceID,
		cfg.Server.AppEnv,
	)
	if err != nil {
		logger.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer profilerStop()

	// Start infrastructure metrics collection
	metrics.RecordInfrastructureMetrics()

	// Upstream client with the configured default timeout; mentor-scoped
	// calls get their tighter timeout inside the client.
	httpClient := httpclient.NewClientWithTimeout(time.Duration(cfg.Upstream.TimeoutSeconds) * time.Second)
	upstreamClient := upstream.NewClient(cfg.Upstream, httpClient)

	// Session store and portal token manager
	sessionStore := session.NewStore(cfg.Session.TTLHours)
	tokenManager := jwt.NewTokenManager(cfg.Session.JWTSecret, cfg.Session.JWTIssuer, cfg.Session.TTLHours)
	guard := middleware.NewRoleGuard(tokenManager, sessionStore, cfg.Server.LoginPath, cfg.Session.CookieDomain, cfg.Session.CookieSecure)

	// Initialize services
	authService := services.NewAuthService(upstreamClient, sessionStore, tokenManager)
	resourceService := services.NewResourceService(upstreamClient, sessionStore, cfg.Pagination)
	profileService := services.NewProfileService(upstreamClient, sessionStore)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, cfg.Session)
	resourceHandler := handlers.NewResourceHandler(resourceService)
	profileHandler := handlers.NewProfileHandler(profileService)
	healthHandler := handlers.NewHealthHandler(func() bool { return cfg.Upstream.BaseURL != "" })

	// Set up Gin router
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName))
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// CORS configuration - only allow specific origins
	allowedOrigins := cfg.Server.AllowedOrigins
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000", "http://127.0.0.1:3000")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-CSRF-Token", "traceparent", "tracestate"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true, // Required for session cookies
		MaxAge:           12 * time.Hour,
	}))

	// Rate limiters: login gets a much tighter budget than the rest
	generalRateLimiter := middleware.NewRateLimiter(100, 200) // 100 req/sec, burst of 200
	authRateLimiter := middleware.NewRateLimiter(1, 5)        // 1 req/sec, burst of 5 (login abuse prevention)
	defer generalRateLimiter.Stop()
	defer authRateLimiter.Stop()

	// Utility endpoints (not versioned - operational endpoints)
	api := router.Group("/api")
	api.GET("/healthcheck", generalRateLimiter.Middleware(), healthHandler.Healthcheck)
	api.GET("/metrics", generalRateLimiter.Middleware(), gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	// Authentication routes (public)
	auth := router.Group("/api/v1/auth")
	auth.POST("/login", authRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(10*1024), authHandler.Login)
	auth.POST("/register-student", authRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(100*1024), authHandler.RegisterStudent)
	auth.POST("/logout", guard.ResolveSession(), authHandler.Logout)
	auth.GET("/session", guard.RequireAnySession(), authHandler.Session)

	// Profile routes (any authenticated role)
	profile := router.Group("/api/v1/profile", guard.RequireAnySession())
	profile.GET("", generalRateLimiter.Middleware(), profileHandler.GetProfile)
	profile.PUT("", generalRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(1*1024*1024), profileHandler.UpdateProfile)
	profile.PUT("/password", authRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(10*1024), profileHandler.UpdatePassword)

	// Role subtrees
	for _, role := range []models.Role{models.RoleAdmin, models.RoleCompany, models.RoleMentor, models.RoleStudent} {
		registerRoleRoutes(router, role, guard, generalRateLimiter, resourceHandler)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
