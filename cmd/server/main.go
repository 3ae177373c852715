package main

import (
	"fmt"
	"log"

	"dochub/internal/backup"
	"dochub/internal/batch"
	"dochub/internal/config"
	"dochub/internal/docx"
	"dochub/internal/email/noop"
	"dochub/internal/email/ses"
	"dochub/internal/handler"
	"dochub/internal/pipeline"
	"dochub/internal/port"
	"dochub/internal/repository/sqlite"
	"dochub/internal/resolver/powerauto"
	"dochub/internal/router"
	"dochub/internal/service"
	s3storage "dochub/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := sqlite.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	runRepo := sqlite.NewRunRepo(db)

	// Document pipeline collaborators
	loader := docx.NewLoader()
	resolver := powerauto.NewClient(&cfg.Lookup)
	var backups port.BackupManager
	if cfg.Process.BackupDir != "" {
		backups = backup.NewManagerInDir(cfg.Process.BackupDir)
	} else {
		backups = backup.NewManager()
	}
	processor := pipeline.NewProcessor(loader, resolver, backups)
	scheduler := batch.NewScheduler(processor, batch.NewGCReclaimer(), cfg.Batch.Concurrency, cfg.Batch.ReclaimInterval)

	// Optional archive store
	var archive port.ObjectStorage
	if cfg.Storage.ArchiveEnabled {
		archive, err = s3storage.NewS3Client(&cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	}

	// Email sender
	var sender port.EmailSender
	if cfg.Email.Provider == "ses" {
		sender, err = ses.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	} else {
		sender = noop.NewNoopSender()
	}

	// Services
	authSvc := service.NewAuthService(cfg.Auth, cfg.JWT)
	docSvc := service.NewDocumentService(processor, loader, runRepo, archive, cfg.Storage, cfg.Process, cfg.Lookup)
	jobSvc := service.NewJobService(scheduler, runRepo, sender)

	// Handlers
	authH := handler.NewAuthHandler(authSvc)
	docH := handler.NewDocumentHandler(docSvc)
	jobH := handler.NewJobHandler(jobSvc)
	runH := handler.NewRunHandler(runRepo)
	healthH := handler.NewHealthHandler(db)

	r := router.Setup(cfg, authSvc, authH, docH, jobH, runH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
