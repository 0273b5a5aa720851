package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/taigrr/strand/pkg/publish"
	"github.com/taigrr/strand/pkg/render"
	"github.com/taigrr/strand/pkg/scene"
	"github.com/taigrr/strand/pkg/shading"
)

type renderOptions struct {
	out      string
	spp      int
	workers  int
	seed     int64
	passes   string
	upload   string
	check    bool
	exposure float64
	quiet    bool
}

func renderCmd() *cobra.Command {
	var opts renderOptions
	cmd := &cobra.Command{
		Use:   "render <scene.json>",
		Short: "Render a scene and write the result and passes as PNGs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args[0], opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.out, "out", "o", "out", "output directory")
	f.IntVar(&opts.spp, "spp", 0, "samples per pixel (overrides the scene)")
	f.IntVarP(&opts.workers, "workers", "j", 0, "concurrent rows (0 = all CPUs)")
	f.Int64Var(&opts.seed, "seed", -1, "random seed (overrides the scene)")
	f.StringVar(&opts.passes, "passes", "", "comma-separated passes to write (default: the scene's list)")
	f.StringVar(&opts.upload, "upload", "", "upload written files under this S3 key prefix")
	f.BoolVar(&opts.check, "check", false, "fail when the pass identities do not hold")
	f.Float64Var(&opts.exposure, "exposure", 1, "linear exposure applied before PNG encoding")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "no progress output")
	return cmd
}

// checkTolerance is the allowed deviation of the pass identities, in linear
// units.
const checkTolerance = 1e-4

// loadRenderer loads the scene and applies command-line overrides.
func loadRenderer(path string, spp, workers int, seed int64, passList string) (*render.Renderer, error) {
	cfg, err := scene.Load(path)
	if err != nil {
		return nil, err
	}
	if passList != "" {
		cfg.Passes = strings.Split(passList, ",")
	}
	r, err := cfg.Renderer()
	if err != nil {
		return nil, fmt.Errorf("build scene: %w", err)
	}
	if spp > 0 {
		r.Samples = spp
	}
	if seed >= 0 {
		r.Seed = uint64(seed)
	}
	r.Workers = workers
	slog.Info("scene loaded", "path", path, "primitives", r.Scene.Len(), "lights", len(r.Scene.Lights),
		"size", fmt.Sprintf("%dx%d", r.Width, r.Height), "spp", r.Samples)
	return r, nil
}

func runRender(cmd *cobra.Command, path string, opts renderOptions) error {
	ctx := cmd.Context()
	r, err := loadRenderer(path, opts.spp, opts.workers, opts.seed, opts.passes)
	if err != nil {
		return err
	}
	r.Progress = progressPrinter(opts.quiet)

	start := time.Now()
	set, err := r.Render(ctx)
	if err != nil {
		return err
	}
	slog.Info("render finished", "elapsed", time.Since(start).Round(time.Millisecond))

	rep := set.Check()
	slog.Info("pass identities", "beauty", rep.Beauty, "shadow", rep.Shadow, "raw_shadow", rep.RawShadow)
	if opts.check && rep.Max() > checkTolerance {
		return fmt.Errorf("pass identities violated by %g (tolerance %g)", rep.Max(), checkTolerance)
	}

	files, err := set.SaveAll(opts.out, opts.exposure)
	if err != nil {
		return err
	}
	slog.Info("passes written", "dir", opts.out, "files", len(files), "enabled", len(set.Enabled()))

	if opts.upload != "" {
		cfg, err := publish.ConfigFromEnv()
		if err != nil {
			return err
		}
		up, err := publish.New(cfg)
		if err != nil {
			return err
		}
		keys, err := up.UploadFiles(ctx, opts.upload, files)
		if err != nil {
			return err
		}
		slog.Info("passes uploaded", "bucket", cfg.Bucket, "prefix", opts.upload, "objects", len(keys))
	}

	if !opts.quiet {
		fmt.Fprintf(os.Stderr, "Wrote %d files to %s (%s)\n", len(files), opts.out, enabledSummary(set.Enabled()))
	}
	return nil
}

func enabledSummary(ps []shading.Pass) string {
	if len(ps) == shading.NumPasses {
		return "all passes"
	}
	if len(ps) == 0 {
		return "result only"
	}
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.String()
	}
	return strings.Join(names, ", ")
}
