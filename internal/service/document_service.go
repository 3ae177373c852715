package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"dochub/internal/config"
	"dochub/internal/domain"
	"dochub/internal/options"
	"dochub/internal/pipeline"
	"dochub/internal/port"
)

// DocumentService runs single-document operations: processing, pre-flight
// inspection, and option validation.
type DocumentService interface {
	Process(ctx context.Context, path string, cfg domain.SessionConfig) (*domain.RunRecord, error)
	Inspect(ctx context.Context, path string) (*domain.Inspection, error)
	ValidateConfig(cfg domain.SessionConfig) (domain.ProcessingOptions, options.ValidationResult)
}

type documentService struct {
	processor *pipeline.Processor
	loader    port.DocumentLoader
	runs      port.RunRepository
	archive   port.ObjectStorage
	storeCfg  config.StorageConfig
	procCfg   config.ProcessConfig
	lookupCfg config.LookupConfig
}

// NewDocumentService wires the single-document service. archive may be nil
// when no object store is configured.
func NewDocumentService(
	processor *pipeline.Processor,
	loader port.DocumentLoader,
	runs port.RunRepository,
	archive port.ObjectStorage,
	storeCfg config.StorageConfig,
	procCfg config.ProcessConfig,
	lookupCfg config.LookupConfig,
) DocumentService {
	return &documentService{
		processor: processor,
		loader:    loader,
		runs:      runs,
		archive:   archive,
		storeCfg:  storeCfg,
		procCfg:   procCfg,
		lookupCfg: lookupCfg,
	}
}

// ValidateConfig maps the session configuration into processing options and
// validates them, applying server-side defaults for unset limits.
func (s *documentService) ValidateConfig(cfg domain.SessionConfig) (domain.ProcessingOptions, options.ValidationResult) {
	if cfg.MaxFileSizeMB <= 0 {
		cfg.MaxFileSizeMB = s.procCfg.MaxFileSizeMB
	}
	if cfg.ContentIDSuffix == "" {
		cfg.ContentIDSuffix = s.procCfg.ContentIDSuffix
	}
	if cfg.APIEndpoint == "" {
		cfg.APIEndpoint = s.lookupCfg.Endpoint
	}
	if cfg.Requester.Email == "" {
		cfg.Requester = domain.Requester{
			FirstName: s.lookupCfg.FirstName,
			LastName:  s.lookupCfg.LastName,
			Email:     s.lookupCfg.Email,
		}
	}
	opts := options.SessionToProcessorOptions(cfg)
	return opts, options.Validate(opts)
}

func (s *documentService) Process(ctx context.Context, path string, cfg domain.SessionConfig) (*domain.RunRecord, error) {
	opts, v := s.ValidateConfig(cfg)
	if !v.Valid {
		msgs := make([]string, 0, len(v.Errors))
		for _, e := range v.Errors {
			msgs = append(msgs, e.Error())
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrValidationFailure, strings.Join(msgs, "; "))
	}

	result := s.processor.ProcessDocument(ctx, path, opts)
	run := recordForResult(path, result)

	if err := s.runs.Insert(ctx, run); err != nil {
		log.Printf("[document] persisting run for %s: %v", path, err)
	}
	if result.Success && s.archive != nil && s.storeCfg.Bucket != "" {
		s.archiveRun(ctx, run)
	}
	return run, nil
}

func (s *documentService) Inspect(_ context.Context, path string) (*domain.Inspection, error) {
	return s.loader.Inspect(path)
}

// archiveRun uploads the processed document (and its backup, when taken) to
// the archive bucket. Archive failures degrade to log lines; the run already
// succeeded locally.
func (s *documentService) archiveRun(ctx context.Context, run *domain.RunRecord) {
	upload := func(localPath, kind string) {
		data, err := os.ReadFile(localPath)
		if err != nil {
			log.Printf("[document] reading %s for archive: %v", localPath, err)
			return
		}
		key := fmt.Sprintf("runs/%s/%s/%s", run.ID, kind, filepath.Base(localPath))
		_, err = s.archive.Upload(ctx, port.UploadInput{
			Bucket:      s.storeCfg.Bucket,
			Key:         key,
			Body:        bytes.NewReader(data),
			ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		})
		if err != nil {
			log.Printf("[document] archiving %s: %v", localPath, err)
			return
		}
		log.Printf("[document] archived %s to %s/%s", localPath, s.storeCfg.Bucket, key)
	}
	upload(run.Path, "processed")
	if run.BackupPath != "" {
		upload(run.BackupPath, "backup")
	}
}

// recordForResult converts a pipeline result into a persistable run record.
func recordForResult(path string, result domain.ProcessingResult) *domain.RunRecord {
	run := &domain.RunRecord{
		ID:         uuid.New(),
		Path:       path,
		Success:    result.Success,
		Counts:     result.Counts,
		Warnings:   len(result.Warnings),
		DurationMs: result.ProcessingTimeMs,
		BackupPath: result.BackupPath,
		ChangeLog:  result.ChangeLog,
		CreatedAt:  time.Now(),
	}
	if len(result.ErrorMessages) > 0 {
		run.Error = strings.Join(result.ErrorMessages, "; ")
	}
	return run
}
