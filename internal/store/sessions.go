package store

import (
	"context"
	"time"

	"medwaste-backend/internal/models"
)

// Sessions: auth.SessionStore'un Postgres tablosu üzerindeki karşılığı.
type Sessions struct {
	s *Store
}

func (s *Store) Sessions() *Sessions { return &Sessions{s: s} }

func (ss *Sessions) Create(ctx context.Context, sess models.Session) error {
	return ss.s.db.WithContext(ctx).Create(&sess).Error
}

// Get süresi geçmemiş oturumu döndürür.
func (ss *Sessions) Get(ctx context.Context, id string, now time.Time) (*models.Session, error) {
	var sess models.Session
	err := ss.s.db.WithContext(ctx).Where("id = ? AND expires_at > ?", id, now).First(&sess).Error
	if err != nil {
		return nil, translate(err)
	}
	return &sess, nil
}

func (ss *Sessions) Delete(ctx context.Context, id string) error {
	return ss.s.db.WithContext(ctx).Delete(&models.Session{}, "id = ?", id).Error
}

func (ss *Sessions) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := ss.s.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&models.Session{})
	return res.RowsAffected, res.Error
}
