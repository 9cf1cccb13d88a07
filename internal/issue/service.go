// Package issue sahadan bildirilen uygunsuzlukları kaydeder ve çözüm durumunu izler.
package issue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"medwaste-backend/internal/apperr"
	"medwaste-backend/internal/audit"
	"medwaste-backend/internal/auth"
	"medwaste-backend/internal/models"
	"medwaste-backend/internal/store"

	"gorm.io/datatypes"
)

// UnknownReporter: bildiren kullanıcı artık bulunamıyorsa gösterilen ad.
const UnknownReporter = "Unknown"

var (
	ErrInvalidCategory  = apperr.Invalid("Geçersiz kategori")
	ErrIssueNotFound    = apperr.NotFound("Bildirim bulunamadı")
	ErrHospitalNotFound = apperr.NotFound("Hastane bulunamadı")
	ErrInvalidStatus    = apperr.Invalid("status 'open' veya 'resolved' olmalı")
)

type Repository interface {
	GetHospital(ctx context.Context, id uint) (*models.Hospital, error)
	FindCollectionByTag(ctx context.Context, tag string) (*models.WasteCollection, error)
	GetLocationByCode(ctx context.Context, code string) (*models.Location, error)
	CreateIssue(ctx context.Context, issue *models.Issue) error
	GetIssue(ctx context.Context, id uint) (*models.Issue, error)
	ResolveIssue(ctx context.Context, id uint, at time.Time) error
	ListIssues(ctx context.Context, f store.IssueFilter) ([]models.Issue, error)
	ListUsersByIDs(ctx context.Context, ids []uint) ([]models.User, error)
}

type Counters interface {
	IssueReported(category string)
	IssueResolved()
}

type Service struct {
	repo     Repository
	audit    audit.Recorder
	counters Counters
	now      func() time.Time
}

func NewService(repo Repository, rec audit.Recorder, counters Counters) *Service {
	return &Service{repo: repo, audit: rec, counters: counters, now: time.Now}
}

type CreateInput struct {
	HospitalID   uint
	Category     models.IssueCategory
	Description  string
	TagCode      string
	LocationCode string
	Photos       []string
}

// Create bildirimi kaydeder. Etiket kodu hastaneden bağımsız aranır; eşleşmezse
// metin saklanır, bağlantı kurulmaz. Lokasyon kodu da aynı şekilde toleranslıdır.
func (s *Service) Create(ctx context.Context, actor *auth.Identity, in CreateInput) (*models.Issue, error) {
	if !in.Category.Valid() {
		return nil, ErrInvalidCategory
	}
	if err := auth.RequireHospital(actor, in.HospitalID); err != nil {
		return nil, err
	}
	hospital, err := s.repo.GetHospital(ctx, in.HospitalID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrHospitalNotFound
		}
		return nil, err
	}

	is := &models.Issue{
		HospitalID:   hospital.ID,
		Category:     in.Category,
		Description:  in.Description,
		ReportedByID: actor.UserID,
		ReportedAt:   s.now(),
	}
	if len(in.Photos) > 0 {
		is.Photos = datatypes.JSONSlice[string](in.Photos)
	}

	if in.TagCode != "" {
		tag := in.TagCode
		is.TagCode = &tag
		wc, err := s.repo.FindCollectionByTag(ctx, tag)
		switch {
		case err == nil:
			is.CollectionID = &wc.ID
		case !errors.Is(err, store.ErrNotFound):
			return nil, err
		}
	}
	if in.LocationCode != "" {
		loc, err := s.repo.GetLocationByCode(ctx, in.LocationCode)
		switch {
		case err == nil && loc.HospitalID == hospital.ID:
			is.LocationID = &loc.ID
		case err != nil && !errors.Is(err, store.ErrNotFound):
			return nil, err
		}
	}

	if err := s.repo.CreateIssue(ctx, is); err != nil {
		return nil, err
	}
	is.Hospital = *hospital

	s.counters.IssueReported(string(is.Category))
	s.audit.Record(ctx, audit.LogOptions{
		HospitalID:  &is.HospitalID,
		Actor:       actor,
		EntityType:  "issue",
		EntityID:    is.ID,
		Action:      models.AuditActionCreate,
		Description: fmt.Sprintf("Uygunsuzluk bildirildi: %s", is.Category),
		After:       is,
	})
	return is, nil
}

// Resolve idempotenttir: çözülmüş bildirim için kayıt olduğu gibi döner,
// ResolvedAt değişmez.
func (s *Service) Resolve(ctx context.Context, actor *auth.Identity, id uint) (*models.Issue, error) {
	is, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireHospital(actor, is.HospitalID); err != nil {
		return nil, err
	}
	if is.IsResolved {
		return is, nil
	}

	before := *is
	if err := s.repo.ResolveIssue(ctx, id, s.now()); err != nil {
		if errors.Is(err, store.ErrNotPending) {
			// başka bir istek araya girip çözmüş
			return s.get(ctx, id)
		}
		return nil, err
	}
	resolved, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.counters.IssueResolved()
	s.audit.Record(ctx, audit.LogOptions{
		HospitalID:  &resolved.HospitalID,
		Actor:       actor,
		EntityType:  "issue",
		EntityID:    resolved.ID,
		Action:      models.AuditActionResolve,
		Description: fmt.Sprintf("Uygunsuzluk çözüldü: #%d", resolved.ID),
		Before:      before,
		After:       resolved,
	})
	return resolved, nil
}

func (s *Service) get(ctx context.Context, id uint) (*models.Issue, error) {
	is, err := s.repo.GetIssue(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrIssueNotFound
		}
		return nil, err
	}
	return is, nil
}

// View: listelemede hastane ve bildiren adlarıyla zenginleştirilmiş bildirim.
type View struct {
	models.Issue
	HospitalName string
	ReporterName string
}

// List en yeni bildirim önce. status: "", "open" veya "resolved".
func (s *Service) List(ctx context.Context, scope *uint, status string) ([]View, error) {
	f := store.IssueFilter{HospitalID: scope}
	switch status {
	case "":
	case "open":
		open := false
		f.Resolved = &open
	case "resolved":
		resolved := true
		f.Resolved = &resolved
	default:
		return nil, ErrInvalidStatus
	}

	issues, err := s.repo.ListIssues(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, issues)
}

// Detail tek bildirimi zenginleştirilmiş olarak döndürür.
func (s *Service) Detail(ctx context.Context, is *models.Issue) (View, error) {
	views, err := s.enrich(ctx, []models.Issue{*is})
	if err != nil {
		return View{}, err
	}
	return views[0], nil
}

// enrich: bildiren adı ad soyad, yoksa kullanıcı adı; kullanıcı yoksa UnknownReporter.
func (s *Service) enrich(ctx context.Context, issues []models.Issue) ([]View, error) {
	seen := make(map[uint]bool)
	ids := make([]uint, 0)
	for _, is := range issues {
		if !seen[is.ReportedByID] {
			seen[is.ReportedByID] = true
			ids = append(ids, is.ReportedByID)
		}
	}
	users, err := s.repo.ListUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(users))
	for _, u := range users {
		names[u.ID] = u.DisplayName()
	}

	views := make([]View, 0, len(issues))
	for _, is := range issues {
		name, ok := names[is.ReportedByID]
		if !ok {
			name = UnknownReporter
		}
		views = append(views, View{Issue: is, HospitalName: is.Hospital.Name, ReporterName: name})
	}
	return views, nil
}
