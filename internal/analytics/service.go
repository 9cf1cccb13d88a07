package analytics

import (
	"context"

	"medwaste-backend/internal/models"
	"medwaste-backend/internal/pricing"
	"medwaste-backend/internal/store"
)

type Repository interface {
	pricing.Repository
	ListCollections(ctx context.Context, f store.CollectionFilter) ([]models.WasteCollection, error)
	ListHospitals(ctx context.Context, includeInactive bool) ([]models.Hospital, error)
	ListIssues(ctx context.Context, f store.IssueFilter) ([]models.Issue, error)
	ListLocationCategories(ctx context.Context) ([]models.LocationCategory, error)
	ListCoefficients(ctx context.Context, f store.CoefficientFilter) ([]models.OperationalCoefficient, error)
}

type Service struct {
	repo    Repository
	prices  *pricing.Service
	builder Builder
	window  int
}

func NewService(repo Repository, builder Builder, window int) *Service {
	return &Service{repo: repo, prices: pricing.NewService(repo), builder: builder, window: window}
}

func (s *Service) Report(ctx context.Context, scope *uint) (Report, error) {
	in := Input{Scope: scope}

	var err error
	if in.Collections, err = s.repo.ListCollections(ctx, store.CollectionFilter{HospitalID: scope, Limit: s.window}); err != nil {
		return Report{}, err
	}
	in.Global = in.Collections
	if scope != nil {
		if in.Global, err = s.repo.ListCollections(ctx, store.CollectionFilter{Limit: s.window}); err != nil {
			return Report{}, err
		}
	}
	if in.Hospitals, err = s.repo.ListHospitals(ctx, false); err != nil {
		return Report{}, err
	}
	if in.Issues, err = s.repo.ListIssues(ctx, store.IssueFilter{}); err != nil {
		return Report{}, err
	}
	if in.Categories, err = s.repo.ListLocationCategories(ctx); err != nil {
		return Report{}, err
	}
	if in.Coefficients, err = s.repo.ListCoefficients(ctx, store.CoefficientFilter{HospitalID: scope}); err != nil {
		return Report{}, err
	}

	table, types, err := s.prices.LoadTable(ctx)
	if err != nil {
		return Report{}, err
	}
	in.WasteTypes = types

	return s.builder.Build(in, table), nil
}
