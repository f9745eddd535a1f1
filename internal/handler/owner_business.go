package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/repository"
)

// OwnerBusinessHandler exposes CRUD for the owner's businesses.
type OwnerBusinessHandler struct {
	Businesses *repository.BusinessRepo
}

func NewOwnerBusinessHandler(b *repository.BusinessRepo) *OwnerBusinessHandler {
	return &OwnerBusinessHandler{Businesses: b}
}

type businessReq struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Address     string  `json:"address"`
	Timezone    string  `json:"timezone"`
}

type businessResp struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Address     string  `json:"address"`
	Timezone    string  `json:"timezone"`
	IsActive    bool    `json:"is_active"`
}

func toBusinessResp(b *model.Business) businessResp {
	return businessResp{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		Address:     b.Address,
		Timezone:    b.Timezone,
		IsActive:    b.IsActive,
	}
}

func (req *businessReq) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	req.Timezone = strings.TrimSpace(req.Timezone)
	if req.Name == "" {
		return "name required"
	}
	if req.Timezone == "" {
		return "timezone required"
	}
	if _, err := time.LoadLocation(req.Timezone); err != nil {
		return "invalid timezone"
	}
	return ""
}

// Create registers a new business for the authenticated owner.
func (h *OwnerBusinessHandler) Create(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req businessReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	b := &model.Business{
		OwnerID:     ownerID,
		Name:        req.Name,
		Description: req.Description,
		Address:     strings.TrimSpace(req.Address),
		Timezone:    req.Timezone,
	}
	if err := h.Businesses.Create(ctx, b); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create business failed"})
	}
	return c.JSON(http.StatusCreated, toBusinessResp(b))
}

// List returns all businesses owned by the authenticated owner,
// including deactivated ones.
func (h *OwnerBusinessHandler) List(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	list, err := h.Businesses.ListByOwner(ctx, ownerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]businessResp, 0, len(list))
	for i := range list {
		out = append(out, toBusinessResp(&list[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// Update replaces the editable fields of a business the owner controls.
func (h *OwnerBusinessHandler) Update(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req businessReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	b := &model.Business{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Address:     strings.TrimSpace(req.Address),
		Timezone:    req.Timezone,
	}
	if err := h.Businesses.Update(ctx, b, ownerID); err != nil {
		switch err {
		case sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "business not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your business"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Deactivate hides a business from the marketplace. Existing
// appointments are untouched.
func (h *OwnerBusinessHandler) Deactivate(c echo.Context) error {
	return h.setActive(c, false)
}

// Activate re-lists a previously deactivated business.
func (h *OwnerBusinessHandler) Activate(c echo.Context) error {
	return h.setActive(c, true)
}

func (h *OwnerBusinessHandler) setActive(c echo.Context, active bool) error {
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

	if err := h.Businesses.SetActive(ctx, id, ownerID, active); err != nil {
		switch err {
		case sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "business not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your business"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
