package logger

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// CtxUserIDKey: auth middleware'in kullanıcı id'sini yazdığı locals anahtarı.
const CtxUserIDKey = "user_id"

// WithRequest istek bilgileriyle zenginleştirilmiş log entry döndürür.
func WithRequest(c *fiber.Ctx) *logrus.Entry {
	fields := logrus.Fields{
		"method": c.Method(),
		"path":   c.Path(),
		"ip":     c.IP(),
	}
	if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
		fields["request_id"] = rid
	} else if rid := c.GetRespHeader(fiber.HeaderXRequestID); rid != "" {
		fields["request_id"] = rid
	}
	if uid, ok := c.Locals(CtxUserIDKey).(uint); ok {
		fields["user_id"] = uid
	}
	return L().WithFields(fields)
}

// AccessLog her isteği durum kodu ve süresiyle loglar.
func AccessLog() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			} else if s, ok := err.(interface{ Status() int }); ok {
				status = s.Status()
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		entry := WithRequest(c).WithFields(logrus.Fields{
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
		})
		switch {
		case status >= 500:
			entry.Warn("istek hata ile sonuçlandı")
		case status >= 400:
			entry.Info("istek reddedildi")
		default:
			entry.Debug("istek tamamlandı")
		}
		return err
	}
}
