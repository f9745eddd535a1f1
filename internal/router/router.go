// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-booking/internal/handler"
	"github.com/iliyamo/salon-booking/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication
// on the provided Echo instance. Currently it exposes only a health
// check, used by load balancers to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies
// the necessary middleware. Unauthenticated operations live under
// /v1/auth, while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// /refresh rotates the refresh token; /refresh-access only mints a
	// new access token.
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout deliberately skips the JWT middleware so that a client
	// with an expired access token can still end the session with its
	// refresh token in the body.
	g.POST("/logout", a.Logout)
	e.POST("/v1/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("OWNER", "CUSTOMER"))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the unauthenticated marketplace endpoints:
// browsing businesses, their catalogs and rosters, and availability
// lookups. The extra middlewares (response cache, rate limiting) are
// applied only here; authenticated traffic is never cached.
func RegisterPublic(e *echo.Echo, p *handler.PublicBrowseHandler, av *handler.AvailabilityHandler, mws ...echo.MiddlewareFunc) {
	g := e.Group("/v1", mws...)
	g.GET("/businesses", p.ListBusinesses)
	g.GET("/search/businesses", p.ListBusinesses)
	g.GET("/businesses/:id", p.GetBusiness)
	g.GET("/businesses/:id/services", p.ListServices)
	g.GET("/businesses/:id/staff", p.ListStaff)
	// Availability is the hot path: cached in Redis by the handler
	// itself and additionally shielded by the shared middlewares.
	g.GET("/availability", av.Get)
}
