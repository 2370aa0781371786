package main

import (
	"github.com/JaimeStill/legal-lab/internal/config"
	"github.com/JaimeStill/legal-lab/internal/middleware"
)

// buildMiddleware creates the middleware stack: slash trimming, access logging,
// CORS and bearer identity, outermost first.
func buildMiddleware(rt *Runtime, cfg *config.Config) middleware.System {
	middlewareSys := middleware.New()
	middlewareSys.Use(middleware.TrimSlash())
	middlewareSys.Use(middleware.Logger(rt.Logger))
	middlewareSys.Use(middleware.CORS(&cfg.CORS))
	middlewareSys.Use(rt.Identity.Middleware())
	return middlewareSys
}
