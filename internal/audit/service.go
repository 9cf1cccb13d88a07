package audit

import (
	"context"
	"encoding/json"

	"medwaste-backend/internal/auth"
	"medwaste-backend/internal/logger"
	"medwaste-backend/internal/models"
	"medwaste-backend/internal/store"

	"github.com/sirupsen/logrus"
)

type LogOptions struct {
	HospitalID  *uint
	Actor       *auth.Identity
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

// Recorder yazma işlemlerinin denetim kaydını tutar. Kayıt hatası işlemi
// başarısız saymaz, yalnızca loglanır.
type Recorder interface {
	Record(ctx context.Context, opts LogOptions)
}

type Repository interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
	ListAuditLogs(ctx context.Context, f store.AuditFilter) ([]models.AuditLog, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Record(ctx context.Context, opts LogOptions) {
	log := BuildLog(opts)
	if err := s.repo.CreateAuditLog(ctx, &log); err != nil {
		logger.L().WithError(err).WithFields(logrus.Fields{
			"entity_type": opts.EntityType,
			"entity_id":   opts.EntityID,
			"action":      opts.Action,
		}).Error("audit log kaydedilemedi")
	}
}

func (s *Service) List(ctx context.Context, f store.AuditFilter) ([]models.AuditLog, error) {
	return s.repo.ListAuditLogs(ctx, f)
}

// BuildLog seçenekleri tabloya yazılacak satıra çevirir.
func BuildLog(opts LogOptions) models.AuditLog {
	// PostgreSQL jsonb için boş string yerine "null" JSON string'i kullanmalıyız
	beforeStr := "null"
	afterStr := "null"

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	log := models.AuditLog{
		HospitalID:  opts.HospitalID,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
	}
	if opts.Actor != nil {
		log.UserID = opts.Actor.UserID
		log.UserName = opts.Actor.DisplayName
	}
	return log
}

// Nop: denetim kaydı tutmayan Recorder.
type Nop struct{}

func (Nop) Record(context.Context, LogOptions) {}
