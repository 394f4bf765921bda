// Collisionscope - UK Road Collision Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/collisionscope

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/collisionscope/internal/config"
	"github.com/tomtom215/collisionscope/internal/middleware"
)

// Router wires handlers to routes with the shared middleware stack.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router for the given handler, deriving middleware
// configuration from the API config.
func NewRouter(handler *Handler, apiCfg *config.APIConfig) *Router {
	mwCfg := DefaultChiMiddlewareConfig()
	if apiCfg != nil {
		mwCfg.CORSAllowedOrigins = apiCfg.CORSOrigins
		mwCfg.RateLimitRequests = apiCfg.RateLimitReqs
		mwCfg.RateLimitWindow = apiCfg.RateLimitWindow
		mwCfg.RateLimitDisabled = apiCfg.RateLimitDisabled
	}

	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(mwCfg),
	}
}

// SetupChi configures all HTTP routes using the Chi router.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	// Health endpoints get a permissive rate limit so monitoring probes
	// are not throttled with regular traffic.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
		r.Get("/", router.handler.Health)
	})

	// Analytics and loader endpoints.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(middleware.PrometheusMetrics)

		r.Get("/stats", router.handler.Stats)
		r.Get("/trend", router.handler.Trend)
		r.Get("/road-types", router.handler.RoadTypes)
		r.Get("/locations", router.handler.Locations)
		r.Get("/load/status", router.handler.LoadStatus)
		r.Post("/load", router.handler.TriggerLoad)
	})

	// Prometheus scrape endpoint, outside the rate-limited groups.
	r.Handle("/metrics", promhttp.Handler())

	return r
}
