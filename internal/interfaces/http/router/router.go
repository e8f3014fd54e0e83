// Package router 提供 HTTP 路由配置
package router

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"linkedin-post-ai/internal/config"
	"linkedin-post-ai/internal/interfaces/http/handler"
	"linkedin-post-ai/internal/interfaces/http/middleware"
)

// RouterHandlers 路由依赖的处理器集合
type RouterHandlers struct {
	Health *handler.HealthHandler
	Post   *handler.PostHandler
	Stream *handler.StreamHandler
	Page   *handler.PageHandler
	// RateLimiter Redis 未启用时为 nil，生成接口不限流
	RateLimiter middleware.RateLimiter
}

// Router HTTP 路由器
type Router struct {
	engine   *gin.Engine
	cfg      *config.Config
	handlers *RouterHandlers
}

// NewWithDeps 创建带处理器依赖的路由器
func NewWithDeps(cfg *config.Config, handlers *RouterHandlers) (*Router, error) {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	tmpl, err := handler.LoadTemplates()
	if err != nil {
		return nil, fmt.Errorf("load page templates: %w", err)
	}
	engine.SetHTMLTemplate(tmpl)

	r := &Router{
		engine:   engine,
		cfg:      cfg,
		handlers: handlers,
	}
	r.setupMiddleware()
	r.setupRoutes()
	return r, nil
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) setupMiddleware() {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())

	r.engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: r.cfg.Security.CORS.AllowedOrigins,
		AllowedMethods: r.cfg.Security.CORS.AllowedMethods,
		AllowedHeaders: r.cfg.Security.CORS.AllowedHeaders,
	}))

	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name))
		r.engine.Use(middleware.TraceContext())
	}

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics())
	}

	r.engine.Use(middleware.Audit(middleware.DefaultAuditSkipPaths...))
}

func (r *Router) setupRoutes() {
	h := r.handlers

	// 系统端点
	r.engine.GET("/health", h.Health.Health)
	r.engine.GET("/ready", h.Health.Ready)
	r.engine.GET("/live", h.Health.Live)

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.GET(r.cfg.Observability.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	limitCfg := middleware.RateLimitConfig{
		Enabled:  r.cfg.Security.RateLimit.Enabled,
		Requests: r.cfg.Security.RateLimit.Requests,
		Window:   r.cfg.Security.RateLimit.Window,
	}
	limit := middleware.RateLimit(limitCfg, h.RateLimiter)

	// 页面：限流时重新渲染页面而不是返回 JSON
	pageLimitCfg := limitCfg
	pageLimitCfg.OnReject = h.Page.RateLimited
	r.engine.GET("/", h.Page.Index)
	r.engine.POST("/generate", middleware.RateLimit(pageLimitCfg, h.RateLimiter), h.Page.Generate)

	v1 := r.engine.Group("/v1")
	{
		v1.GET("/topics", h.Post.ListTopics)
		v1.GET("/options", h.Post.ListOptions)

		posts := v1.Group("/posts")
		posts.Use(limit)
		{
			posts.POST("/generate", h.Post.Generate)
			posts.POST("/generate/stream", h.Stream.GenerateStream) // SSE
		}
	}
}
