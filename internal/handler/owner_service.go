package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/repository"
)

// OwnerServiceHandler manages the treatment catalog of a business.
type OwnerServiceHandler struct {
	Services *repository.ServiceRepo
}

func NewOwnerServiceHandler(s *repository.ServiceRepo) *OwnerServiceHandler {
	return &OwnerServiceHandler{Services: s}
}

type serviceReq struct {
	BusinessID    uint64  `json:"business_id"`
	Name          string  `json:"name"`
	Description   *string `json:"description"`
	DurationMin   uint32  `json:"duration_min"`
	PreBufferMin  uint32  `json:"pre_buffer_min"`
	PostBufferMin uint32  `json:"post_buffer_min"`
	PriceCents    uint32  `json:"price_cents"`
}

type serviceResp struct {
	ID            uint64  `json:"id"`
	BusinessID    uint64  `json:"business_id"`
	Name          string  `json:"name"`
	Description   *string `json:"description,omitempty"`
	DurationMin   uint32  `json:"duration_min"`
	PreBufferMin  uint32  `json:"pre_buffer_min"`
	PostBufferMin uint32  `json:"post_buffer_min"`
	PriceCents    uint32  `json:"price_cents"`
	IsActive      bool    `json:"is_active"`
}

func toServiceResp(s *model.Service) serviceResp {
	return serviceResp{
		ID:            s.ID,
		BusinessID:    s.BusinessID,
		Name:          s.Name,
		Description:   s.Description,
		DurationMin:   s.DurationMin,
		PreBufferMin:  s.PreBufferMin,
		PostBufferMin: s.PostBufferMin,
		PriceCents:    s.PriceCents,
		IsActive:      s.IsActive,
	}
}

func (req *serviceReq) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return "name required"
	}
	if req.DurationMin == 0 {
		return "duration_min must be positive"
	}
	// a full-day treatment is almost certainly a typo in minutes
	if req.DurationMin > 24*60 {
		return "duration_min too large"
	}
	return ""
}

// Create adds a service to one of the owner's businesses.
func (h *OwnerServiceHandler) Create(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req serviceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.BusinessID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "business_id required"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	s := &model.Service{
		BusinessID:    req.BusinessID,
		Name:          req.Name,
		Description:   req.Description,
		DurationMin:   req.DurationMin,
		PreBufferMin:  req.PreBufferMin,
		PostBufferMin: req.PostBufferMin,
		PriceCents:    req.PriceCents,
	}
	if err := h.Services.Create(ctx, s, ownerID); err != nil {
		switch err {
		case sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "business not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your business"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create service failed"})
	}
	return c.JSON(http.StatusCreated, toServiceResp(s))
}

// ListByBusiness returns the full catalog of a business including
// deactivated services (the owner view).
func (h *OwnerServiceHandler) ListByBusiness(c echo.Context) error {
	if _, err := getUserID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	businessID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	list, err := h.Services.ListByBusiness(ctx, businessID, false)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]serviceResp, 0, len(list))
	for i := range list {
		out = append(out, toServiceResp(&list[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// Update replaces the editable fields of a service. Existing
// appointments keep their snapshot, so price or duration edits only
// affect future bookings.
func (h *OwnerServiceHandler) Update(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req serviceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	s := &model.Service{
		ID:            id,
		Name:          req.Name,
		Description:   req.Description,
		DurationMin:   req.DurationMin,
		PreBufferMin:  req.PreBufferMin,
		PostBufferMin: req.PostBufferMin,
		PriceCents:    req.PriceCents,
	}
	if err := h.Services.Update(ctx, s, ownerID); err != nil {
		switch err {
		case sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your service"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Deactivate hides a service from booking. Committed appointments
// carry their own snapshot and are not affected.
func (h *OwnerServiceHandler) Deactivate(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Services.Deactivate(ctx, id, ownerID); err != nil {
		switch err {
		case sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your service"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "deactivate failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
