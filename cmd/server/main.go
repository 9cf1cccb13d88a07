package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medwaste-backend/internal/config"
	"medwaste-backend/internal/database"
	"medwaste-backend/internal/hbys"
	"medwaste-backend/internal/logger"
	"medwaste-backend/internal/seed"
	"medwaste-backend/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Hata: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:           "medwaste",
		Short:         "Tıbbi atık toplama ve maliyet analitiği API sunucusu",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), envFile)
		},
	}
	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Ortam değişkeni dosyası (yoksa yok sayılır)")

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "HTTP sunucusunu başlatır (varsayılan)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), envFile)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Veritabanı şemasını günceller",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := bootstrap(envFile)
			if err != nil {
				return err
			}
			return database.Migrate(db)
		},
	})

	var seedFile string
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "YAML dosyasından referans verisini yükler",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := seed.Load(seedFile)
			if err != nil {
				return err
			}
			cfg, db, err := bootstrap(envFile)
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			return seed.Apply(cmd.Context(), store.New(db), f, cfg.Location())
		},
	}
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "seed.yaml", "Seed dosyası")
	cmd.AddCommand(seedCmd)

	var sheetFile string
	importCmd := &cobra.Command{
		Use:   "import-coefficients",
		Short: "HBYS Excel tablosundan aylık katsayıları içe aktarır",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(sheetFile)
			if err != nil {
				return fmt.Errorf("dosya açılamadı: %w", err)
			}
			defer file.Close()

			_, db, err := bootstrap(envFile)
			if err != nil {
				return err
			}
			rows, rowErrs, err := hbys.ReadSheet(file)
			if err != nil {
				return err
			}
			res, err := hbys.Import(cmd.Context(), store.New(db), rows)
			if err != nil {
				return err
			}
			for _, e := range append(rowErrs, res.Skipped...) {
				logger.L().Warn(e.Error())
			}
			return nil
		},
	}
	importCmd.Flags().StringVarP(&sheetFile, "file", "f", "", "HBYS .xlsx dosyası")
	_ = importCmd.MarkFlagRequired("file")
	cmd.AddCommand(importCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "prune-sessions",
		Short: "Süresi dolmuş oturumları siler",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := bootstrap(envFile)
			if err != nil {
				return err
			}
			n, err := store.New(db).Sessions().DeleteExpired(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			logger.L().WithField("deleted", n).Info("Süresi dolmuş oturumlar silindi")
			return nil
		},
	})

	return cmd
}

// bootstrap config, logger ve veritabanı bağlantısını hazırlar.
func bootstrap(envFile string) (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, err
	}
	if _, err := logger.Init(cfg.Log); err != nil {
		return nil, nil, err
	}
	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func serve(ctx context.Context, envFile string) error {
	cfg, db, err := bootstrap(envFile)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	app := newApp(cfg, buildServices(cfg, store.New(db)))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.L().WithFields(logrus.Fields{
			"port":     cfg.HTTPPort,
			"sessions": cfg.SessionBackend,
			"kpi_mode": cfg.KPI.Mode,
		}).Info("Server çalışıyor")
		errCh <- app.Listen(":" + cfg.HTTPPort)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.L().Info("Kapatma sinyali alındı, server durduruluyor")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return fmt.Errorf("server düzgün kapatılamadı: %w", err)
	}
	return nil
}
