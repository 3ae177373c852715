// Command dochub processes documents from the command line, without the
// HTTP server: one or more paths, a JSON session configuration, bounded
// concurrency, and an optional Excel report.
// Usage: dochub -config session.json [-concurrency 4] [-report out.xlsx] file.docx...
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"dochub/internal/backup"
	"dochub/internal/batch"
	"dochub/internal/config"
	"dochub/internal/docx"
	"dochub/internal/domain"
	"dochub/internal/options"
	"dochub/internal/pipeline"
	"dochub/internal/resolver/powerauto"
	"dochub/internal/xlsxexport"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var (
		configPath  = flag.String("config", "", "path to a JSON session configuration")
		concurrency = flag.Int("concurrency", 0, "documents in flight at once (default from env)")
		reportPath  = flag.String("report", "", "write an Excel run report to this path")
		inspectOnly = flag.Bool("inspect", false, "print pre-flight diagnostics instead of processing")
	)
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		return fmt.Errorf("no documents given; usage: dochub -config session.json file.docx...")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	loader := docx.NewLoader()
	if *inspectOnly {
		return inspectAll(loader, paths)
	}

	session, err := loadSession(*configPath, cfg)
	if err != nil {
		return err
	}
	opts := options.SessionToProcessorOptions(session)
	if v := options.Validate(opts); !v.Valid {
		for _, e := range v.Errors {
			fmt.Fprintf(os.Stderr, "invalid configuration: %s\n", e.Error())
		}
		return fmt.Errorf("configuration has %d problems", len(v.Errors))
	}

	resolver := powerauto.NewClient(&cfg.Lookup)
	backups := backup.NewManager()
	if cfg.Process.BackupDir != "" {
		backups = backup.NewManagerInDir(cfg.Process.BackupDir)
	}
	processor := pipeline.NewProcessor(loader, resolver, backups)

	if *concurrency < 1 {
		*concurrency = cfg.Batch.Concurrency
	}
	scheduler := batch.NewScheduler(processor, batch.NewGCReclaimer(), *concurrency, cfg.Batch.ReclaimInterval)

	// SIGINT stops scheduling new documents; in-flight ones finish.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	progress := func(path string, completed, total int, r domain.ProcessingResult) {
		status := "ok"
		if !r.Success {
			status = "FAILED: " + firstError(r)
		}
		fmt.Printf("[%d/%d] %s - %s (%dms)\n", completed, total, path, status, r.ProcessingTimeMs)
	}

	result := scheduler.Run(ctx, paths, opts, progress)
	fmt.Printf("\n%d files: %d succeeded, %d failed\n",
		result.TotalFiles, result.SuccessfulFiles, result.FailedFiles)

	if *reportPath != "" {
		if err := writeReport(*reportPath, result); err != nil {
			return err
		}
		fmt.Printf("report written to %s\n", *reportPath)
	}

	if result.FailedFiles > 0 {
		os.Exit(1)
	}
	return nil
}

// loadSession reads the JSON session configuration, falling back to server
// defaults when no file is given.
func loadSession(path string, cfg *config.Config) (domain.SessionConfig, error) {
	session := domain.SessionConfig{
		MaxFileSizeMB:   cfg.Process.MaxFileSizeMB,
		CreateBackup:    true,
		ContentIDSuffix: cfg.Process.ContentIDSuffix,
		APIEndpoint:     cfg.Lookup.Endpoint,
		Requester: domain.Requester{
			FirstName: cfg.Lookup.FirstName,
			LastName:  cfg.Lookup.LastName,
			Email:     cfg.Lookup.Email,
		},
	}
	if path == "" {
		return session, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return session, fmt.Errorf("reading session config: %w", err)
	}
	if err := json.Unmarshal(data, &session); err != nil {
		return session, fmt.Errorf("parsing session config: %w", err)
	}
	if session.MaxFileSizeMB <= 0 {
		session.MaxFileSizeMB = cfg.Process.MaxFileSizeMB
	}
	if session.ContentIDSuffix == "" {
		session.ContentIDSuffix = cfg.Process.ContentIDSuffix
	}
	return session, nil
}

func inspectAll(loader *docx.Loader, paths []string) error {
	failed := 0
	for _, path := range paths {
		insp, err := loader.Inspect(path)
		if err != nil {
			fmt.Printf("%s: %v\n", path, err)
			failed++
			continue
		}
		fmt.Printf("%s: %d bytes, %d hyperlinks, %d tracked changes, %d content controls, %d field codes\n",
			insp.Path, insp.SizeBytes, insp.Hyperlinks, insp.TrackedChanges, insp.ContentControls, insp.FieldCodes)
		for _, w := range insp.Warnings {
			fmt.Printf("  warning: %s\n", w)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d documents could not be inspected", failed)
	}
	return nil
}

func writeReport(path string, result domain.BatchResult) error {
	runs := make([]domain.RunRecord, 0, len(result.Results))
	for _, fr := range result.Results {
		runs = append(runs, domain.RunRecord{
			ID:         uuid.New(),
			Path:       fr.Path,
			Success:    fr.Result.Success,
			Counts:     fr.Result.Counts,
			Error:      firstError(fr.Result),
			Warnings:   len(fr.Result.Warnings),
			DurationMs: fr.Result.ProcessingTimeMs,
			BackupPath: fr.Result.BackupPath,
			ChangeLog:  fr.Result.ChangeLog,
			CreatedAt:  time.Now(),
		})
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}
	defer f.Close()
	if err := xlsxexport.WriteRunReport(f, runs); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

func firstError(r domain.ProcessingResult) string {
	if len(r.ErrorMessages) == 0 {
		return ""
	}
	return r.ErrorMessages[0]
}
