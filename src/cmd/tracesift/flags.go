// FILE: src/cmd/tracesift/flags.go
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"tracesift/src/internal/config"

	"github.com/lixenwraith/log"
)

// Command-line flags
var (
	// General flags
	configFile  = flag.String("config", "", "Config file path")
	showVersion = flag.Bool("version", false, "Show version information")
	quiet       = flag.Bool("quiet", false, "Suppress console output")
	serve       = flag.Bool("serve", false, "Run the HTTP extraction endpoint instead of file mode")

	// Extraction flags
	conventionFlag = flag.String("convention", "", "Force a stack-trace convention: traceback, framestack, panicdump, sentence")
	mostRecent     = flag.Bool("most-recent", false, "Print only the single most recent trace")
	outputFormat   = flag.String("output", "", "Output format: raw, json (overrides config)")

	// Logging flags
	logOutput = flag.String("log-output", "", "Log output: file, stdout, stderr, both, none (overrides config)")
	logLevel  = flag.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
)

func init() {
	flag.Usage = customUsage
}

func customUsage() {
	fmt.Fprintf(os.Stderr, "tracesift - Stack Trace Extraction for Application Logs\n\n")
	fmt.Fprintf(os.Stderr, "Usage: %s [options] <logfile ...>\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Options:\n")

	fmt.Fprintf(os.Stderr, "\nGeneral:\n")
	fmt.Fprintf(os.Stderr, "  -config string\n\tConfig file path\n")
	fmt.Fprintf(os.Stderr, "  -version\n\tShow version information\n")
	fmt.Fprintf(os.Stderr, "  -quiet\n\tSuppress console output\n")
	fmt.Fprintf(os.Stderr, "  -serve\n\tRun the HTTP extraction endpoint instead of file mode\n")

	fmt.Fprintf(os.Stderr, "\nExtraction:\n")
	fmt.Fprintf(os.Stderr, "  -convention string\n\tForce a convention: traceback, framestack, panicdump, sentence\n")
	fmt.Fprintf(os.Stderr, "  -most-recent\n\tPrint only the single most recent trace\n")
	fmt.Fprintf(os.Stderr, "  -output string\n\tOutput format: raw, json\n")

	fmt.Fprintf(os.Stderr, "\nLogging:\n")
	fmt.Fprintf(os.Stderr, "  -log-output string\n\tLog output: file, stdout, stderr, both, none\n")
	fmt.Fprintf(os.Stderr, "  -log-level string\n\tLog level: debug, info, warn, error\n")

	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  # Extract every trace from two log files\n")
	fmt.Fprintf(os.Stderr, "  %s app.log app.log.1.gz\n\n", os.Args[0])

	fmt.Fprintf(os.Stderr, "  # Only the latest incident, as JSON\n")
	fmt.Fprintf(os.Stderr, "  %s -most-recent -output json app.log\n\n", os.Args[0])

	fmt.Fprintf(os.Stderr, "  # Serve POST /extract on the configured port\n")
	fmt.Fprintf(os.Stderr, "  %s -serve -config /etc/tracesift.toml\n\n", os.Args[0])

	fmt.Fprintf(os.Stderr, "Environment Variables:\n")
	fmt.Fprintf(os.Stderr, "  TRACESIFT_CONFIG_FILE  Config file path\n")
	fmt.Fprintf(os.Stderr, "  TRACESIFT_CONFIG_DIR   Config directory\n")
}

func parseFlags() error {
	flag.Parse()

	if *logOutput != "" {
		validOutputs := map[string]bool{
			"file": true, "stdout": true, "stderr": true,
			"both": true, "none": true,
		}
		if !validOutputs[*logOutput] {
			return fmt.Errorf("invalid log-output: %s (valid: file, stdout, stderr, both, none)", *logOutput)
		}
	}

	if *logLevel != "" {
		if _, err := parseLogLevel(*logLevel); err != nil {
			return fmt.Errorf("invalid log-level: %s (valid: debug, info, warn, error)", *logLevel)
		}
	}

	if *outputFormat != "" && *outputFormat != "raw" && *outputFormat != "json" {
		return fmt.Errorf("invalid output: %s (valid: raw, json)", *outputFormat)
	}

	return nil
}

// applyFlagOverrides lays CLI flags over the loaded configuration.
func applyFlagOverrides(cfg *config.Config) {
	if *quiet {
		cfg.Quiet = true
	}
	if *serve {
		cfg.Server.Enabled = true
	}
	if *conventionFlag != "" {
		cfg.Extraction.Convention = *conventionFlag
	}
	if *mostRecent {
		cfg.Extraction.MostRecentOnly = true
	}
	if *outputFormat != "" {
		cfg.Extraction.Output = *outputFormat
	}
	if cfg.Logging == nil {
		cfg.Logging = config.DefaultLogConfig()
	}
	if *logOutput != "" {
		cfg.Logging.Output = *logOutput
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
}

func parseLogLevel(level string) (int, error) {
	switch strings.ToLower(level) {
	case "debug":
		return int(log.LevelDebug), nil
	case "info":
		return int(log.LevelInfo), nil
	case "warn", "warning":
		return int(log.LevelWarn), nil
	case "error":
		return int(log.LevelError), nil
	default:
		return 0, fmt.Errorf("unknown log level: %s", level)
	}
}
