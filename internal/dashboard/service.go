package dashboard

import (
	"context"

	"medwaste-backend/internal/models"
	"medwaste-backend/internal/store"
)

type Repository interface {
	ListCollections(ctx context.Context, f store.CollectionFilter) ([]models.WasteCollection, error)
	ListHospitals(ctx context.Context, includeInactive bool) ([]models.Hospital, error)
	ListWasteTypes(ctx context.Context) ([]models.WasteType, error)
	ListIssues(ctx context.Context, f store.IssueFilter) ([]models.Issue, error)
}

type Service struct {
	repo   Repository
	window int
}

func NewService(repo Repository, window int) *Service {
	return &Service{repo: repo, window: window}
}

// Load özet için gereken satırları okur. Kapsam verilmişse hastane kırılımı için
// ayrıca kapsamsız bir pencere okunur.
func (s *Service) Load(ctx context.Context, scope *uint) (Input, error) {
	in := Input{Scope: scope}

	recent, err := s.repo.ListCollections(ctx, store.CollectionFilter{HospitalID: scope, Limit: s.window})
	if err != nil {
		return in, err
	}
	in.Recent = recent
	in.Global = recent
	if scope != nil {
		if in.Global, err = s.repo.ListCollections(ctx, store.CollectionFilter{Limit: s.window}); err != nil {
			return in, err
		}
	}

	if in.Hospitals, err = s.repo.ListHospitals(ctx, false); err != nil {
		return in, err
	}
	if in.WasteTypes, err = s.repo.ListWasteTypes(ctx); err != nil {
		return in, err
	}
	open := false
	if in.OpenIssues, err = s.repo.ListIssues(ctx, store.IssueFilter{Resolved: &open}); err != nil {
		return in, err
	}
	return in, nil
}

func (s *Service) Summary(ctx context.Context, scope *uint) (Summary, error) {
	in, err := s.Load(ctx, scope)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(in), nil
}
