package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-booking/internal/handler"
	"github.com/iliyamo/salon-booking/internal/middleware"
)

// RegisterCustomer registers customer-scoped endpoints under /v1. All
// routes require a valid JWT and the CUSTOMER role. Customers can book
// appointments, list their own, cancel and reschedule.
func RegisterCustomer(e *echo.Echo, h *handler.ClientAppointmentHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("CUSTOMER"),
	)
	// Availability browsing lives on the public router; booking starts
	// here.
	g.POST("/appointments", h.Book)
	g.GET("/my-appointments", h.List)
	g.GET("/appointments/:id", h.Get)
	// Both verbs cancel: DELETE for REST clients, POST /cancel for
	// form-style frontends.
	g.DELETE("/appointments/:id", h.Cancel)
	g.POST("/appointments/:id/cancel", h.Cancel)
	g.POST("/appointments/:id/reschedule", h.Reschedule)
}
