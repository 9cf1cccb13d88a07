package store

import (
	"context"
	"time"

	"medwaste-backend/internal/models"
)

type IssueFilter struct {
	HospitalID *uint
	Resolved   *bool
}

func (s *Store) CreateIssue(ctx context.Context, issue *models.Issue) error {
	return translate(s.db.WithContext(ctx).Omit("Hospital", "Collection", "Location").Create(issue).Error)
}

func (s *Store) GetIssue(ctx context.Context, id uint) (*models.Issue, error) {
	var issue models.Issue
	if err := s.db.WithContext(ctx).Preload("Hospital").First(&issue, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &issue, nil
}

// ListIssues en yeni bildirim önce.
func (s *Store) ListIssues(ctx context.Context, f IssueFilter) ([]models.Issue, error) {
	q := s.db.WithContext(ctx).Preload("Hospital").Order("reported_at DESC, id DESC")
	if f.HospitalID != nil {
		q = q.Where("hospital_id = ?", *f.HospitalID)
	}
	if f.Resolved != nil {
		q = q.Where("is_resolved = ?", *f.Resolved)
	}
	var issues []models.Issue
	if err := q.Find(&issues).Error; err != nil {
		return nil, err
	}
	return issues, nil
}

// ResolveIssue yalnızca açık kaydı kapatır; zaten çözülmüşse ErrNotPending.
func (s *Store) ResolveIssue(ctx context.Context, id uint, at time.Time) error {
	res := s.db.WithContext(ctx).Model(&models.Issue{}).
		Where("id = ? AND is_resolved = ?", id, false).
		Updates(map[string]interface{}{"is_resolved": true, "resolved_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotPending
	}
	return nil
}
