// FILE: src/cmd/tracesift/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tracesift/src/internal/config"
	"tracesift/src/internal/extract"
	"tracesift/src/internal/format"
	"tracesift/src/internal/service"
	"tracesift/src/internal/version"

	"github.com/lixenwraith/log"
)

var logger *log.Logger

func main() {
	if err := parseFlags(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	InitOutputHandler(*quiet)

	if *showVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	if *configFile != "" {
		os.Setenv("TRACESIFT_CONFIG_FILE", *configFile)
	}

	cfg, err := config.Load()
	if err != nil {
		FatalError(1, "Failed to load config: %v\n", err)
	}
	applyFlagOverrides(cfg)

	if err := initializeLogger(cfg); err != nil {
		FatalError(1, "Failed to initialize logger: %v\n", err)
	}
	defer shutdownLogger()

	extractor, err := extract.New(extract.Options{
		Convention:      cfg.Extraction.Convention,
		MergeWindow:     time.Duration(cfg.Extraction.MergeWindowSeconds) * time.Second,
		KeepLoneSingles: cfg.Extraction.KeepLoneSingles,
		PayloadMarker:   cfg.Extraction.PayloadMarker,
	}, logger)
	if err != nil {
		FatalError(1, "Failed to build extractor: %v\n", err)
	}

	if cfg.Server.Enabled {
		runServe(cfg, extractor)
		return
	}

	runFiles(cfg, extractor, flag.Args())
}

// runFiles extracts traces from the given log files and prints them.
func runFiles(cfg *config.Config, extractor *extract.Extractor, paths []string) {
	if len(paths) == 0 {
		FatalError(2, "No input files given (see -help)\n")
	}

	logger.Info("msg", "Extracting traces",
		"version", version.Short(),
		"files", len(paths))

	incidents := extractor.IncidentsFromFiles(paths)
	if cfg.Extraction.MostRecentOnly {
		if inc, ok := extract.MostRecentIncident(incidents); ok {
			incidents = incidents[:0]
			incidents = append(incidents, inc)
		} else {
			incidents = nil
		}
	}

	formatter, err := format.New(cfg.Extraction.Output, logger)
	if err != nil {
		FatalError(1, "Invalid output format: %v\n", err)
	}

	for _, inc := range incidents {
		rendered, err := formatter.Format(inc)
		if err != nil {
			logger.Warn("msg", "Failed to render incident",
				"incident", inc.ID.String(),
				"error", err)
			continue
		}
		os.Stdout.Write(rendered)
	}

	if len(incidents) == 0 {
		// A frequent, valid, non-error result.
		logger.Info("msg", "No traces found")
	}
}

// runServe starts the HTTP extraction endpoint and waits for shutdown.
func runServe(cfg *config.Config, extractor *extract.Extractor) {
	svc := service.New(cfg.Server, extractor, logger)
	if err := svc.Start(); err != nil {
		logger.Error("msg", "Failed to start service", "error", err)
		os.Exit(1)
	}

	logger.Info("msg", "tracesift serving",
		"version", version.Short(),
		"host", cfg.Server.Host,
		"port", cfg.Server.Port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("msg", "Shutdown signal received")
	svc.Shutdown()
}

func shutdownLogger() {
	if logger != nil {
		if err := logger.Shutdown(2 * time.Second); err != nil {
			Error("Logger shutdown error: %v\n", err)
		}
	}
}
