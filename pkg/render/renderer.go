package render

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/taigrr/strand/pkg/passes"
	"github.com/taigrr/strand/pkg/shading"
)

// Renderer produces a pass set from a scene.
type Renderer struct {
	Scene   *Scene
	Width   int
	Height  int
	Samples int // Per pixel; values below 1 mean 1
	Workers int // Concurrent rows; 0 means GOMAXPROCS
	Seed    uint64

	// Passes lists the passes to record. Nil records every pass; an empty
	// non-nil slice records none.
	Passes []shading.Pass

	// Progress, when set, is called after each finished row. It may be
	// called from several goroutines.
	Progress func(done, total int)
}

// Render traces every pixel. Rows are distributed over worker goroutines;
// each row draws from its own random stream so output does not depend on
// scheduling.
func (r *Renderer) Render(ctx context.Context) (*passes.Set, error) {
	if r.Width <= 0 || r.Height <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", r.Width, r.Height)
	}
	if r.Scene == nil || r.Scene.Camera == nil {
		return nil, fmt.Errorf("render: scene has no camera")
	}
	spp := max(1, r.Samples)
	workers := r.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	set := passes.NewSet(r.Width, r.Height, r.Passes)
	r.Scene.Prepare()
	cam := *r.Scene.Camera
	cam.AspectRatio = float64(r.Width) / float64(r.Height)

	var done atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for y := range r.Height {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r.renderRow(&cam, set, y, spp)
			if r.Progress != nil {
				r.Progress(int(done.Add(1)), r.Height)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	set.Normalize(spp)
	return set, nil
}

func (r *Renderer) renderRow(cam *Camera, set *passes.Set, y, spp int) {
	host := NewHost(r.Scene, r.Seed, uint64(y))
	var sample passes.Sample
	w, h := float64(r.Width), float64(r.Height)
	for x := range r.Width {
		for range spp {
			jx, jy := 0.5, 0.5
			if spp > 1 {
				jx, jy = host.rng.Float64(), host.rng.Float64()
			}
			sample.Reset()
			ray := cam.Ray((float64(x)+jx)/w, (float64(y)+jy)/h)
			c, _ := host.Trace(ray, &sample)
			set.AddSample(x, y, c, &sample)
		}
	}
}
