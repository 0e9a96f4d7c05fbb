// Package router defines how HTTP routes are registered for the API.
package router

import (
	"database/sql"

	"github.com/labstack/echo/v4"

	"github.com/rayyan-app/rayyan-server/internal/handler"
	"github.com/rayyan-app/rayyan-server/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication:
// the liveness and readiness probes.
func RegisterRoutes(e *echo.Echo, db *sql.DB) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db))
}

// RegisterAuth registers all authentication-related routes.
// Unauthenticated operations live under /v1/auth; the account
// endpoints live under /v1 behind the JWT middleware. The otpLimiter
// guards only the code-issuing endpoint, which is the one an abuser
// can use to flood an inbox.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, otpLimiter echo.MiddlewareFunc) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/otp/request", a.RequestOtp, otpLimiter)
	g.POST("/otp/verify", a.VerifyOtp)
	g.POST("/google", a.GoogleSignIn)
	// Rotating refresh; the presented token is revoked and replaced.
	g.POST("/refresh", a.Refresh)
	// Access-only refresh; the refresh token stays valid.
	g.POST("/refresh-access", a.RefreshAccess)
	g.POST("/logout", a.Logout)
	g.POST("/forgot-password", a.ForgotPassword)
	g.POST("/reset-password", a.ResetPassword)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
	auth.PUT("/me", a.UpdateProfile)
	// With a bearer token and no body this logs out every session.
	auth.POST("/logout", a.Logout)
}

// RegisterAPI registers the protected domain routes: the Qada ledger,
// fast logging, circles and the dashboard. The cache middleware is
// applied only to the dashboard-style GETs, which are read-heavy and
// tolerate a few seconds of staleness.
func RegisterAPI(e *echo.Echo, jwtSecret string, cache echo.MiddlewareFunc,
	b *handler.BucketHandler, f *handler.FastHandler, cl *handler.CircleHandler, hm *handler.HomeHandler) {

	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))

	// Qada ledger
	g.POST("/qada/buckets", b.Create)
	g.GET("/qada/buckets", b.List)
	g.GET("/qada/buckets/:id", b.Get)
	g.PUT("/qada/buckets/:id", b.Update)
	g.DELETE("/qada/buckets/:id", b.Delete)
	g.POST("/qada/buckets/:id/increment", b.Increment)
	g.POST("/qada/buckets/:id/decrement", b.Decrement)
	g.GET("/qada/summary", b.Summary, cache)
	g.GET("/qada/most-urgent", b.MostUrgent)
	g.POST("/qada/log-fast", f.LogQada)

	// Fast logging
	g.POST("/fasts", f.Create)
	g.POST("/fasts/bulk", f.CreateBulk)
	g.GET("/fasts", f.List)
	g.GET("/fasts/type/:type", f.ListByType)
	g.GET("/fasts/missed", f.ListMissed)
	g.GET("/fasts/today", f.Today)
	g.GET("/fasts/stats", f.Stats)
	g.GET("/fasts/:id", f.Get)
	g.PATCH("/fasts/:id/status", f.UpdateStatus)
	g.DELETE("/fasts/:id", f.Delete)

	// Circles
	g.POST("/circles", cl.Create)
	g.POST("/circles/join", cl.Join)
	g.POST("/circles/leave", cl.Leave)
	g.GET("/circles/my", cl.My)
	g.GET("/circles/summary", cl.Summary)
	g.PATCH("/circles/privacy", cl.UpdatePrivacy)
	g.POST("/circles/actions", cl.SendAction)

	// Dashboard
	g.GET("/home/dashboard", hm.Dashboard, cache)
	g.GET("/home/ledger", hm.LedgerSummary, cache)
	g.GET("/home/sunnah", hm.SunnahOpportunities)
}
