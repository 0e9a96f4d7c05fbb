package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/rayyan-app/rayyan-server/internal/middleware"
)

// middlewareUserID pulls the authenticated user id that the JWT
// middleware stored on the context. Zero means unauthenticated.
func middlewareUserID(c echo.Context) uint64 {
	return middleware.UserID(c)
}
