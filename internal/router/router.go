// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/Saishivram/paperroute/internal/handler"
	"github.com/Saishivram/paperroute/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication routes. Unauthenticated
// operations live under /v1/auth; /v1/me requires a valid token of
// either role.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/owners/register", a.RegisterOwner)
	g.POST("/owners/login", a.LoginOwner)
	g.POST("/employees/login", a.LoginEmployee)
	// Refresh rotates the refresh token on every use.
	g.POST("/refresh", a.Refresh)
	// Logout accepts either a refresh token in the body (single session)
	// or a bearer access token (all sessions), so it stays outside the
	// JWT middleware.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(handler.RoleOwner, handler.RoleEmployee),
	)
	auth.GET("/me", a.Me)
}
