// Command lexweave assembles contracts from YAML clause libraries.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lexweave/lexweave/pkg/config"
	"github.com/lexweave/lexweave/pkg/observability"
)

func main() {
	os.Exit(Run(os.Args, os.Stdout, os.Stderr))
}

// Run is the entrypoint, split out for testing.
func Run(args []string, stdout, stderr io.Writer) int {
	cfg := config.Load()
	initLogging(cfg.LogLevel, stderr)

	if len(args) < 2 {
		usage(stderr)
		return 2
	}

	ctx := context.Background()
	obs, code := initTelemetry(ctx, cfg, stderr)
	if code != 0 {
		return code
	}
	if obs != nil {
		defer func() { _ = obs.Shutdown(ctx) }()
	}

	switch args[1] {
	case "assemble":
		return runAssemble(cfg, obs, args[2:], stdout, stderr)
	case "validate":
		return runValidate(cfg, obs, args[2:], stdout, stderr)
	case "lint":
		return runLint(args[2:], stdout, stderr)
	case "help", "-h", "--help":
		usage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", args[1])
		usage(stderr)
		return 2
	}
}

// initTelemetry builds the observability provider when an OTLP
// endpoint is configured; otherwise assembly runs uninstrumented.
func initTelemetry(ctx context.Context, cfg *config.Config, stderr io.Writer) (*observability.Provider, int) {
	if cfg.OTLPEndpoint == "" {
		return nil, 0
	}
	ocfg := observability.DefaultConfig()
	ocfg.Enabled = true
	ocfg.OTLPEndpoint = cfg.OTLPEndpoint
	// The CLI exposes no TLS knob; local collectors are the target.
	ocfg.Insecure = true

	obs, err := observability.New(ctx, ocfg)
	if err != nil {
		fmt.Fprintf(stderr, "init telemetry: %v\n", err)
		return nil, 1
	}
	return obs, 0
}

func usage(w io.Writer) {
	fmt.Fprintln(w, `usage: lexweave <command> [flags]

commands:
  assemble  -library lib.yaml -template id -vars vars.json [-out doc.txt] [-receipt receipt.json]
  validate  -library lib.yaml -template id
  lint      -library lib.yaml`)
}

func initLogging(level string, w io.Writer) {
	var lvl slog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		lvl = slog.LevelDebug
	case "WARN":
		lvl = slog.LevelWarn
	case "ERROR":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})))
}
