package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"auction-etl/config"
	"auction-etl/models"
	"auction-etl/services"
	"auction-etl/storage"
	"auction-etl/utils"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: auction-etl <path to json files>")
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}
	logger := utils.NewLogger(os.Stderr, cfg.LogLevel)

	logger.Info("=== Auction extraction starting ===")
	logger.Info("Config: output: %s | strict: %t | load: %s", cfg.OutputDir, cfg.Strict, cfg.LoadTarget)

	report, err := extract(cfg, logger, args)
	if err != nil {
		logger.Error("Extraction aborted: %v", err)
		return 1
	}

	if cfg.LoadTarget != config.LoadNone {
		loaded, err := load(cfg, logger)
		if err != nil {
			logger.Error("Database load failed: %v", err)
			return 1
		}
		report.Loaded = loaded
	}

	services.PrintReport(os.Stdout, report)
	return 0
}

// extract runs every input document through the driver. The sinks are closed
// on both success and failure so flushed rows survive an aborted run.
func extract(cfg *config.Config, logger *utils.Logger, paths []string) (report *models.RunReport, err error) {
	writer, err := storage.NewDatWriter(cfg.OutputDir, cfg.DatSuffix)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := writer.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	driver := services.NewDriver(writer, cfg.Strict, logger)
	for _, path := range paths {
		if !strings.HasSuffix(path, cfg.InputSuffix) || len(path) <= len(cfg.InputSuffix) {
			logger.Debug("Ignoring %s: not a %s file", path, cfg.InputSuffix)
			continue
		}
		if err := driver.ProcessFile(path); err != nil {
			return driver.Report(), err
		}
		logger.Info("Success parsing %s", path)
	}

	report = driver.Report()
	if report.Skipped > 0 {
		logger.Warn("Skipped %d records with missing required fields", report.Skipped)
	}
	return report, nil
}

func load(cfg *config.Config, logger *utils.Logger) (map[models.Relation]int, error) {
	retry := &utils.RetryConfig{
		MaxAttempts: cfg.MaxRetries,
		BaseDelay:   2 * time.Second,
		Logger:      logger,
	}

	var (
		loader storage.Loader
		err    error
	)
	switch cfg.LoadTarget {
	case config.LoadPostgres:
		loader, err = storage.NewPostgresLoader(cfg.DSN(), cfg.LoadBatchSize, retry)
	case config.LoadSQLite:
		loader, err = storage.NewSQLiteLoader(cfg.SQLitePath, cfg.LoadBatchSize, retry)
	default:
		return nil, fmt.Errorf("unsupported load target %q", cfg.LoadTarget)
	}
	if err != nil {
		return nil, err
	}
	defer loader.Close()

	// The relation files hold the full accumulated output, so the tables are
	// rebuilt from them rather than appended to.
	if err := loader.Clear(); err != nil {
		return nil, err
	}
	return loader.LoadDir(cfg.OutputDir, cfg.DatSuffix)
}
