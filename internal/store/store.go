// Package store GORM üzerinden tüm kalıcı okuma/yazma işlemlerini toplar.
package store

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound   = errors.New("kayıt bulunamadı")
	ErrDuplicate  = errors.New("kayıt zaten mevcut")
	ErrNotPending = errors.New("kayıt beklemede değil")
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DB() *gorm.DB { return s.db }

// translate gorm hatalarını paket hatalarına çevirir.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
