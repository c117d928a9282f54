package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/willianramosdev-stack/todoApp/internal/handler"    // import the handlers that implement business logic
	"github.com/willianramosdev-stack/todoApp/internal/middleware" // import middleware for JWT authentication
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance. Currently it exposes only a health check, used by
// load balancers and monitoring to verify that the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes. Unauthenticated
// session operations live under /v1/auth; none of them carry the JWT
// middleware since their whole job is producing or replacing tokens.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Refresh reads the httpOnly cookie set by register/login and rotates
	// the refresh token on every successful call.
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)
	g.POST("/forgot-password", a.ForgotPassword)
	g.POST("/reset-password", a.ResetPassword)
}

// RegisterTasks registers the task CRUD endpoints under /v1/tasks. All of
// them require a valid access token; the JWTAuth middleware places the
// caller's identity in the context before any handler runs.
func RegisterTasks(e *echo.Echo, t *handler.TaskHandler, accessSecret string) {
	g := e.Group("/v1/tasks")
	g.Use(middleware.JWTAuth(accessSecret))
	g.POST("", t.Create)
	g.GET("", t.List)
	g.GET("/:id", t.Get)
	g.PUT("/:id", t.Replace)
	g.PATCH("/:id", t.Patch)
	g.PATCH("/:id/status", t.PatchStatus)
	g.PATCH("/:id/complete", t.Complete)
}

// RegisterUsers registers the profile endpoints under /v1/users/me, all
// protected by the JWT middleware.
func RegisterUsers(e *echo.Echo, u *handler.UserHandler, accessSecret string) {
	g := e.Group("/v1/users/me")
	g.Use(middleware.JWTAuth(accessSecret))
	g.GET("", u.Me)
	g.PUT("", u.UpdateMe)
	g.PATCH("/password", u.ChangePassword)
}
