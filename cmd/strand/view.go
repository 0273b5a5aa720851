package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"time"

	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/spf13/cobra"

	"github.com/taigrr/strand/pkg/passes"
)

func viewCmd() *cobra.Command {
	var (
		spp, workers, fps int
		seed              int64
		passList          string
	)
	cmd := &cobra.Command{
		Use:   "view <scene.json>",
		Short: "Render a scene and browse its passes in the terminal",
		Long: `Keys: tab/n next pass, shift+tab/p previous pass, +/- exposure,
0 reset exposure, esc/q quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := loadRenderer(args[0], spp, workers, seed, passList)
			if err != nil {
				return err
			}
			r.Progress = progressPrinter(false)
			set, err := r.Render(cmd.Context())
			if err != nil {
				return err
			}
			return runViewer(cmd.Context(), set, fps)
		},
	}
	f := cmd.Flags()
	f.IntVar(&spp, "spp", 0, "samples per pixel (overrides the scene)")
	f.IntVarP(&workers, "workers", "j", 0, "concurrent rows (0 = all CPUs)")
	f.Int64Var(&seed, "seed", -1, "random seed (overrides the scene)")
	f.StringVar(&passList, "passes", "", "comma-separated passes to keep")
	f.IntVar(&fps, "fps", 30, "viewer frame rate")
	return cmd
}

// exposureState eases the displayed exposure toward its target with a
// critically damped spring.
type exposureState struct {
	Value  float64
	Target float64
	vel    float64
	spring harmonica.Spring
}

func newExposureState(fps int) *exposureState {
	return &exposureState{
		Value:  1,
		Target: 1,
		spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
	}
}

// Update advances one frame and reports whether the value moved visibly.
func (e *exposureState) Update() bool {
	prev := e.Value
	e.Value, e.vel = e.spring.Update(e.Value, e.vel, e.Target)
	return math.Abs(e.Value-prev) > 1e-4
}

// Step moves the target by half stops (×√2 each), within [1/64, 64].
func (e *exposureState) Step(halfStops int) {
	e.Target = math.Min(64, math.Max(1.0/64, e.Target*math.Pow(math.Sqrt2, float64(halfStops))))
}

// view is one selectable image: the result or an enabled pass.
type view struct {
	name string
	buf  *passes.Buffer
}

func views(set *passes.Set) []view {
	out := []view{{"RESULT", set.Result}}
	for _, p := range set.Enabled() {
		out = append(out, view{p.String(), set.Pass(p)})
	}
	return out
}

type viewerAction int

const (
	actNext viewerAction = iota
	actPrev
	actBrighter
	actDarker
	actReset
	actQuit
	actResize
)

func runViewer(ctx context.Context, set *passes.Set, fps int) error {
	if fps <= 0 {
		fps = 30
	}
	vs := views(set)

	term := uv.DefaultTerminal()
	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)
	defer func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}()

	actions := make(chan viewerAction, 16)
	sizes := make(chan [2]int, 1)
	go func() {
		for ev := range term.Events() {
			var a viewerAction
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				select {
				case <-sizes:
				default:
				}
				sizes <- [2]int{ev.Width, ev.Height}
				a = actResize
			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("escape", "q", "ctrl+c"):
					a = actQuit
				case ev.MatchString("tab", "n", "right"):
					a = actNext
				case ev.MatchString("shift+tab", "p", "left"):
					a = actPrev
				case ev.MatchString("+", "=", "up"):
					a = actBrighter
				case ev.MatchString("-", "_", "down"):
					a = actDarker
				case ev.MatchString("0"):
					a = actReset
				default:
					continue
				}
			default:
				continue
			}
			select {
			case actions <- a:
			case <-ctx.Done():
				return
			}
		}
	}()

	exposure := newExposureState(fps)
	current := 0
	dirty := true
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case a := <-actions:
			switch a {
			case actQuit:
				return nil
			case actNext:
				current = (current + 1) % len(vs)
			case actPrev:
				current = (current + len(vs) - 1) % len(vs)
			case actBrighter:
				exposure.Step(1)
			case actDarker:
				exposure.Step(-1)
			case actReset:
				exposure.Target = 1
			case actResize:
				select {
				case sz := <-sizes:
					width, height = sz[0], sz[1]
				default:
				}
				term.Erase()
				term.Resize(width, height)
			}
			dirty = true
		case <-ticker.C:
			if exposure.Update() {
				dirty = true
			}
			if !dirty {
				continue
			}
			drawView(term, width, height, vs, current, exposure.Value)
			if err := term.Display(); err != nil {
				return fmt.Errorf("display: %w", err)
			}
			dirty = false
		}
	}
}

// drawView paints the selected view above a one-line status bar.
func drawView(scr uv.Screen, width, height int, vs []view, current int, exposure float64) {
	if width <= 0 || height < 2 {
		return
	}
	area := uv.Rectangle(image.Rect(0, 0, width, height-1))
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			scr.SetCell(x, y, &uv.Cell{Content: " ", Width: 1})
		}
	}
	v := vs[current]
	v.buf.Draw(scr, area, exposure)

	status := fmt.Sprintf(" %s  [%d/%d]  exposure %.2f  tab/n next  +/- exposure  q quit",
		v.name, current+1, len(vs), exposure)
	drawText(scr, 0, height-1, width, status)
}

var statusStyle = uv.Style{
	Fg: color.RGBA{20, 20, 28, 255},
	Bg: color.RGBA{200, 200, 210, 255},
}

func drawText(scr uv.Screen, x, y, width int, s string) {
	col := x
	for _, r := range s {
		if col >= width {
			return
		}
		scr.SetCell(col, y, &uv.Cell{Content: string(r), Width: 1, Style: statusStyle})
		col++
	}
	for ; col < width; col++ {
		scr.SetCell(col, y, &uv.Cell{Content: " ", Width: 1, Style: statusStyle})
	}
}
