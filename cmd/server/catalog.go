package main

import (
	"context"

	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/repository"
)

// catalogAdapter bundles the three lookup repositories into the single
// catalog view the booking orchestrator consumes.
type catalogAdapter struct {
	businesses *repository.BusinessRepo
	staff      *repository.StaffRepo
	services   *repository.ServiceRepo
}

func (a catalogAdapter) BusinessByID(ctx context.Context, id uint64) (*model.Business, error) {
	return a.businesses.GetByID(ctx, id)
}

func (a catalogAdapter) StaffByID(ctx context.Context, id uint64) (*model.Staff, error) {
	return a.staff.GetByID(ctx, id)
}

func (a catalogAdapter) ServiceByID(ctx context.Context, id uint64) (*model.Service, error) {
	return a.services.GetByID(ctx, id)
}
