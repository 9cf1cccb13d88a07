package pricing

import (
	"context"
	"errors"
	"time"

	"medwaste-backend/internal/models"
	"medwaste-backend/internal/store"
)

type Repository interface {
	GetWasteType(ctx context.Context, id uint) (*models.WasteType, error)
	ListWasteTypes(ctx context.Context) ([]models.WasteType, error)
	ListWasteTypeCosts(ctx context.Context, wasteTypeID *uint) ([]models.WasteTypeCost, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ResolveRate tek bir atık türü için on gününde geçerli fiyatı döndürür.
// Fiyat bulunamaması hata değildir; yalnızca atık türü yoksa hata döner.
func (s *Service) ResolveRate(ctx context.Context, wasteTypeID uint, on time.Time) (Rate, error) {
	wt, err := s.repo.GetWasteType(ctx, wasteTypeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Rate{}, ErrWasteTypeNotFound
		}
		return Rate{}, err
	}
	costs, err := s.repo.ListWasteTypeCosts(ctx, &wasteTypeID)
	if err != nil {
		return Rate{}, err
	}
	return NewTable([]models.WasteType{*wt}, costs).Lookup(wasteTypeID, on)
}

// LoadTable tüm atık türleri ve fiyat geçmişiyle tablo kurar.
func (s *Service) LoadTable(ctx context.Context) (*Table, []models.WasteType, error) {
	types, err := s.repo.ListWasteTypes(ctx)
	if err != nil {
		return nil, nil, err
	}
	costs, err := s.repo.ListWasteTypeCosts(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	return NewTable(types, costs), types, nil
}
