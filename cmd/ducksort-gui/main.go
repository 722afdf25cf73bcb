// Command ducksort-gui is the desktop front-end: the mouse steers the
// player, the ducks flee, and the clock runs until every group is sorted.
package main

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/talgya/duck-sorter/internal/audio"
	"github.com/talgya/duck-sorter/internal/config"
	"github.com/talgya/duck-sorter/internal/engine"
	"github.com/talgya/duck-sorter/internal/entropy"
	"github.com/talgya/duck-sorter/internal/game"
	"github.com/talgya/duck-sorter/internal/pond"
	"github.com/talgya/duck-sorter/internal/vec"
)

var errQuit = errors.New("quit")

var (
	playerColor  = color.RGBA{0xff, 0xff, 0xff, 0xff}
	playerRing   = color.RGBA{0x1a, 0x1c, 0x2c, 0xff}
	sortedDot    = color.RGBA{0xff, 0xff, 0xff, 0xff}
	overlayColor = color.RGBA{0x00, 0x00, 0x00, 0x99}
)

// App implements ebiten.Game around a game.Controller.
type App struct {
	ctl    *game.Controller
	tuning config.Tuning

	backdrop *ebiten.Image
	pondSeed int64
	hasPond  bool
}

func (a *App) Update() error {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		if a.ctl.Back() {
			return errQuit
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyG):
		a.ctl.CycleGroups()
	case inpututil.IsKeyJustPressed(ebiten.KeyK):
		a.ctl.CycleDucks()
	case inpututil.IsKeyJustPressed(ebiten.KeyD):
		a.report(a.ctl.StartDaily())
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		a.report(a.ctl.StartRandom())
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter):
		a.report(a.ctl.Replay())
	}

	mx, my := ebiten.CursorPosition()
	a.ctl.Frame(vec.New(float64(mx), float64(my)))
	return nil
}

func (a *App) report(err error) {
	if err != nil {
		slog.Error("could not start round", "error", err)
	}
}

// ensureBackdrop renders the pond for the current seed once.
func (a *App) ensureBackdrop(seed int64) {
	if a.hasPond && a.pondSeed == seed {
		return
	}
	img := image.NewRGBA(image.Rect(0, 0, int(a.tuning.ArenaWidth), int(a.tuning.ArenaHeight)))
	pond.New(seed).Render(img, 0, 4)
	a.backdrop = ebiten.NewImageFromImage(img)
	a.pondSeed, a.hasPond = seed, true
}

func (a *App) Draw(screen *ebiten.Image) {
	seed, ok := a.ctl.LastSeed()
	if !ok {
		seed = 0
	}
	a.ensureBackdrop(seed)
	screen.DrawImage(a.backdrop, nil)

	snap := a.ctl.Last
	if a.ctl.Phase != game.PhaseStart {
		for _, d := range snap.Ducks {
			x, y := float32(d.Position.X), float32(d.Position.Y)
			vector.DrawFilledCircle(screen, x, y, float32(d.Radius), d.Color.ToRGBA(), true)
			if d.Sorted {
				vector.DrawFilledCircle(screen, x, y, float32(d.Radius)/3, sortedDot, true)
			}
		}
		p := snap.Player
		vector.DrawFilledCircle(screen, float32(p.Position.X), float32(p.Position.Y), float32(p.Radius), playerColor, true)
		vector.StrokeCircle(screen, float32(p.Position.X), float32(p.Position.Y), float32(p.Radius), 2, playerRing, true)
	}

	w, h := float32(a.tuning.ArenaWidth), float32(a.tuning.ArenaHeight)
	switch a.ctl.Phase {
	case game.PhasePlaying:
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s   seed %d   Esc to give up", a.ctl.TimerText(), snap.Seed), 10, 10)
	case game.PhaseStart:
		vector.DrawFilledRect(screen, 0, 0, w, h, overlayColor, false)
		a.printMenu(screen, "Sort the ducks!", "Chase each colour into its own flock.")
	case game.PhaseWon:
		vector.DrawFilledRect(screen, 0, 0, w, h, overlayColor, false)
		a.printMenu(screen, a.ctl.VictoryText(), fmt.Sprintf("on seed: %d", snap.Seed))
	}
}

func (a *App) printMenu(screen *ebiten.Image, title, subtitle string) {
	x, y := int(a.tuning.ArenaWidth)/2-140, int(a.tuning.ArenaHeight)/2-60
	lines := []string{
		title,
		subtitle,
		"",
		a.ctl.SettingsText() + "   (G groups, K ducks)",
		"",
		"D  daily seed",
		"R  random seed",
		"Enter  replay last seed",
		"Esc  back / quit",
	}
	for i, l := range lines {
		ebitenutil.DebugPrintAt(screen, l, x, y+i*16)
	}
}

func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return int(a.tuning.ArenaWidth), int(a.tuning.ArenaHeight)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	eng := engine.NewEngine(cfg.Tuning, engine.SystemClock{}, engine.DefaultTickHz)
	ctl := game.NewController(eng, entropy.NewSeedSource(cfg.RandomOrgKey))

	if cfg.Audio {
		chimes := audio.New(0.6)
		if err := chimes.Init(); err != nil {
			slog.Warn("audio disabled", "error", err)
		} else {
			defer chimes.Close()
			ctl.Sounds = chimes
		}
	}

	app := &App{ctl: ctl, tuning: cfg.Tuning}

	ebiten.SetWindowSize(int(cfg.Tuning.ArenaWidth), int(cfg.Tuning.ArenaHeight))
	ebiten.SetWindowTitle("Duck Sorter")
	ebiten.SetTPS(engine.DefaultTickHz)

	if err := ebiten.RunGame(app); err != nil && !errors.Is(err, errQuit) {
		slog.Error("game exited", "error", err)
		os.Exit(1)
	}
}
