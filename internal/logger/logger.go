package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"medwaste-backend/internal/config"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	appLogger = logrus.New()
	mu        sync.RWMutex
)

// Init uygulama logger'ını yapılandırır. Çağrılmazsa stdout'a text log yazılır.
func Init(cfg config.LogConfig) (*logrus.Logger, error) {
	l := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("geçersiz LOG_LEVEL %q: %w", cfg.Level, err)
	}
	l.SetLevel(level)

	if strings.EqualFold(cfg.Format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05"})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"})
	}

	var writers []io.Writer
	output := strings.ToLower(cfg.Output)
	if output == "stdout" || output == "both" || output == "" {
		writers = append(writers, os.Stdout)
	}
	if output == "file" || output == "both" {
		if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
			return nil, fmt.Errorf("log klasörü oluşturulamadı: %w", err)
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   filepath.Join(cfg.Path, cfg.File),
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		})
	}
	if len(writers) == 0 {
		return nil, fmt.Errorf("geçersiz LOG_OUTPUT %q", cfg.Output)
	}
	l.SetOutput(io.MultiWriter(writers...))

	mu.Lock()
	appLogger = l
	mu.Unlock()
	return l, nil
}

// L uygulama logger'ını döndürür.
func L() *logrus.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return appLogger
}
