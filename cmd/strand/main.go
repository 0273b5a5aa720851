// Command strand renders hair and surface scenes into named light passes.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()
	slog.SetDefault(newLogger(os.Getenv("STRAND_LOG_LEVEL")))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fang.Execute(ctx, rootCmd(), fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "strand",
		Short: "Render hair and surface scenes into light passes",
		Long: `strand ray traces a JSON scene and shades every hit with either the
anisotropic hair model or the Phong surface model, writing the final image
and the per-light passes (diffuse, specular, shadow, indirect, ...) as PNGs.`,
		SilenceUsage: true,
	}
	root.AddCommand(renderCmd(), viewCmd(), passesCmd())
	return root
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// progressPrinter reports finished rows on stderr.
func progressPrinter(quiet bool) func(done, total int) {
	if quiet {
		return nil
	}
	return func(done, total int) {
		fmt.Fprintf(os.Stderr, "\rrendering %3d%%", done*100/total)
		if done == total {
			fmt.Fprintln(os.Stderr)
		}
	}
}
