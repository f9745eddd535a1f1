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

// OwnerStaffHandler manages the staff roster of a business.
type OwnerStaffHandler struct {
	Staff *repository.StaffRepo
}

func NewOwnerStaffHandler(s *repository.StaffRepo) *OwnerStaffHandler {
	return &OwnerStaffHandler{Staff: s}
}

type staffReq struct {
	BusinessID  uint64  `json:"business_id"`
	DisplayName string  `json:"display_name"`
	Title       *string `json:"title"`
}

type staffResp struct {
	ID          uint64  `json:"id"`
	BusinessID  uint64  `json:"business_id"`
	DisplayName string  `json:"display_name"`
	Title       *string `json:"title,omitempty"`
	IsActive    bool    `json:"is_active"`
}

func toStaffResp(s *model.Staff) staffResp {
	return staffResp{
		ID:          s.ID,
		BusinessID:  s.BusinessID,
		DisplayName: s.DisplayName,
		Title:       s.Title,
		IsActive:    s.IsActive,
	}
}

// Create adds a staff member to one of the owner's businesses.
func (h *OwnerStaffHandler) Create(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req staffReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if req.BusinessID == 0 || req.DisplayName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "business_id and display_name required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	s := &model.Staff{
		BusinessID:  req.BusinessID,
		DisplayName: req.DisplayName,
		Title:       req.Title,
	}
	if err := h.Staff.Create(ctx, s, ownerID); err != nil {
		switch err {
		case sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "business not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your business"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create staff failed"})
	}
	return c.JSON(http.StatusCreated, toStaffResp(s))
}

// ListByBusiness returns the full roster of a business, including
// deactivated members (the owner view).
func (h *OwnerStaffHandler) ListByBusiness(c echo.Context) error {
	if _, err := getUserID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	businessID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	list, err := h.Staff.ListByBusiness(ctx, businessID, false)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]staffResp, 0, len(list))
	for i := range list {
		out = append(out, toStaffResp(&list[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// Update changes a staff member's display name or title.
func (h *OwnerStaffHandler) Update(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req staffReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if req.DisplayName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "display_name required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	s := &model.Staff{ID: id, DisplayName: req.DisplayName, Title: req.Title}
	if err := h.Staff.Update(ctx, s, ownerID); err != nil {
		switch err {
		case sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "staff not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your staff"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Deactivate removes a staff member from the bookable roster. It is
// refused while the member still has upcoming live appointments, so
// the owner must cancel or reassign those first.
func (h *OwnerStaffHandler) Deactivate(c echo.Context) error {
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

	if err := h.Staff.Deactivate(ctx, id, ownerID); err != nil {
		switch err {
		case sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "staff not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your staff"})
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "staff has upcoming appointments"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "deactivate failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
