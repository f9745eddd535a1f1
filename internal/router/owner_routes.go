package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-booking/internal/handler"
	"github.com/iliyamo/salon-booking/internal/middleware"
)

// OwnerHandlers groups the handlers mounted under the OWNER-scoped
// routes so RegisterOwner does not take half a dozen parameters.
type OwnerHandlers struct {
	Businesses   *handler.OwnerBusinessHandler
	Staff        *handler.OwnerStaffHandler
	Services     *handler.OwnerServiceHandler
	Schedules    *handler.OwnerScheduleHandler
	Appointments *handler.OwnerAppointmentHandler
}

// RegisterOwner registers OWNER-scoped endpoints under /v1. All routes
// require a valid JWT and the OWNER role.
func RegisterOwner(e *echo.Echo, h OwnerHandlers, jwtSecret string) {
	g := e.Group(
		"/v1/owner",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("OWNER"),
	)

	// ---- Businesses ----
	g.POST("/businesses", h.Businesses.Create)
	g.GET("/businesses", h.Businesses.List)
	g.PUT("/businesses/:id", h.Businesses.Update)
	g.PATCH("/businesses/:id", h.Businesses.Update)
	g.DELETE("/businesses/:id", h.Businesses.Deactivate)
	g.POST("/businesses/:id/activate", h.Businesses.Activate)

	// ---- Staff ----
	g.POST("/staff", h.Staff.Create)
	g.GET("/businesses/:id/staff", h.Staff.ListByBusiness)
	g.PUT("/staff/:id", h.Staff.Update)
	g.PATCH("/staff/:id", h.Staff.Update)
	g.DELETE("/staff/:id", h.Staff.Deactivate)

	// ---- Services ----
	g.POST("/services", h.Services.Create)
	g.GET("/businesses/:id/services", h.Services.ListByBusiness)
	g.PUT("/services/:id", h.Services.Update)
	g.PATCH("/services/:id", h.Services.Update)
	g.DELETE("/services/:id", h.Services.Deactivate)

	// ---- Working hours & time off ----
	g.PUT("/staff/:id/working-hours", h.Schedules.ReplaceWeek)
	g.GET("/staff/:id/working-hours", h.Schedules.GetWeek)
	g.POST("/staff/:id/time-off", h.Schedules.AddTimeOff)
	g.GET("/staff/:id/time-off", h.Schedules.ListTimeOff)
	g.DELETE("/time-off/:id", h.Schedules.DeleteTimeOff)

	// ---- Appointments ----
	g.GET("/businesses/:id/appointments", h.Appointments.Agenda)
	g.PATCH("/appointments/:id/status", h.Appointments.UpdateStatus)
}
