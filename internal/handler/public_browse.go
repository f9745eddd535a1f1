package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-booking/internal/repository"
)

// PublicBrowseHandler serves the unauthenticated marketplace views:
// browse businesses and look at a business's services and staff.
type PublicBrowseHandler struct {
	Businesses *repository.BusinessRepo
	Staff      *repository.StaffRepo
	Services   *repository.ServiceRepo
}

func NewPublicBrowseHandler(b *repository.BusinessRepo, st *repository.StaffRepo, sv *repository.ServiceRepo) *PublicBrowseHandler {
	return &PublicBrowseHandler{Businesses: b, Staff: st, Services: sv}
}

// ListBusinesses returns active businesses with optional name search
// and limit/offset paging.
func (h *PublicBrowseHandler) ListBusinesses(c echo.Context) error {
	search := strings.TrimSpace(c.QueryParam("q"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	list, err := h.Businesses.ListActive(ctx, search, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]businessResp, 0, len(list))
	for i := range list {
		out = append(out, toBusinessResp(&list[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// GetBusiness returns one active business.
func (h *PublicBrowseHandler) GetBusiness(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	b, err := h.Businesses.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "business not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !b.IsActive {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "business not found"})
	}
	return c.JSON(http.StatusOK, toBusinessResp(b))
}

// ListServices returns the active services of an active business.
func (h *PublicBrowseHandler) ListServices(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.requireActiveBusiness(ctx, id); err != nil {
		return publicBusinessError(c, err)
	}
	list, err := h.Services.ListByBusiness(ctx, id, true)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]serviceResp, 0, len(list))
	for i := range list {
		out = append(out, toServiceResp(&list[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// ListStaff returns the active staff roster of an active business.
func (h *PublicBrowseHandler) ListStaff(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.requireActiveBusiness(ctx, id); err != nil {
		return publicBusinessError(c, err)
	}
	list, err := h.Staff.ListByBusiness(ctx, id, true)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]staffResp, 0, len(list))
	for i := range list {
		out = append(out, toStaffResp(&list[i]))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *PublicBrowseHandler) requireActiveBusiness(ctx context.Context, id uint64) error {
	b, err := h.Businesses.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !b.IsActive {
		return sql.ErrNoRows
	}
	return nil
}

func publicBusinessError(c echo.Context, err error) error {
	if err == sql.ErrNoRows {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "business not found"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
}
