// Command ducksort-tui plays the duck-sorting game in a terminal. The
// mouse pointer steers the player; logs go to DUCKSORT_LOG_FILE because
// the terminal is the screen.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/talgya/duck-sorter/internal/audio"
	"github.com/talgya/duck-sorter/internal/config"
	"github.com/talgya/duck-sorter/internal/engine"
	"github.com/talgya/duck-sorter/internal/entropy"
	"github.com/talgya/duck-sorter/internal/game"
	"github.com/talgya/duck-sorter/internal/pond"
	"github.com/talgya/duck-sorter/internal/vec"
)

const (
	duckRune       = '●'
	sortedDuckRune = '◉'
	playerRune     = '◎'
)

// UI is the terminal front-end state.
type UI struct {
	screen tcell.Screen
	ctl    *game.Controller
	tuning config.Tuning
	view   view
	target vec.Vec2

	// Pond background per cell, rebuilt on resize or a new seed.
	water     [][]tcell.Color
	waterSeed int64
}

func newUI(ctl *game.Controller, tuning config.Tuning) (*UI, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.EnableMouse(tcell.MouseMotionEvents)
	screen.HideCursor()

	ui := &UI{
		screen: screen,
		ctl:    ctl,
		tuning: tuning,
		target: tuning.PlayerStart,
	}
	ui.resize()
	return ui, nil
}

func (ui *UI) resize() {
	cols, rows := ui.screen.Size()
	ui.view = view{cols: cols, rows: rows, arenaW: ui.tuning.ArenaWidth, arenaH: ui.tuning.ArenaHeight}
	ui.water = nil
}

func (ui *UI) ensureWater() {
	seed, _ := ui.ctl.LastSeed()
	if ui.water != nil && ui.waterSeed == seed {
		return
	}
	p := pond.New(seed)
	rows := ui.view.fieldRows()
	ui.water = make([][]tcell.Color, rows)
	for cy := 0; cy < rows; cy++ {
		ui.water[cy] = make([]tcell.Color, ui.view.cols)
		for cx := 0; cx < ui.view.cols; cx++ {
			pt := ui.view.toArena(cx, cy)
			c := p.Color(pt.X, pt.Y, 0)
			ui.water[cy][cx] = tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
		}
	}
	ui.waterSeed = seed
}

// handle processes one input event and reports whether to keep running.
func (ui *UI) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape:
			return !ui.ctl.Back()
		case ev.Key() == tcell.KeyCtrlC:
			return false
		case ev.Key() == tcell.KeyEnter:
			ui.report(ui.ctl.Replay())
		case ev.Key() == tcell.KeyRune:
			switch ev.Rune() {
			case 'd', 'D':
				ui.report(ui.ctl.StartDaily())
			case 'r', 'R':
				ui.report(ui.ctl.StartRandom())
			case 'g', 'G':
				ui.ctl.CycleGroups()
			case 'k', 'K':
				ui.ctl.CycleDucks()
			}
		}
	case *tcell.EventMouse:
		x, y := ev.Position()
		ui.target = ui.view.toArena(x, y)
	case *tcell.EventResize:
		ui.resize()
		ui.screen.Sync()
	}
	return true
}

func (ui *UI) report(err error) {
	if err != nil {
		slog.Error("could not start round", "error", err)
	}
}

func (ui *UI) draw() {
	ui.ensureWater()
	ui.screen.Clear()

	for cy, row := range ui.water {
		for cx, c := range row {
			ui.screen.SetContent(cx, cy, ' ', nil, tcell.StyleDefault.Background(c))
		}
	}

	snap := ui.ctl.Last
	if ui.ctl.Phase != game.PhaseStart {
		for _, d := range snap.Ducks {
			cx, cy, ok := ui.view.toCell(d.Position)
			if !ok {
				continue
			}
			rgba := d.Color.ToRGBA()
			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(rgba.R), int32(rgba.G), int32(rgba.B))).
				Background(ui.water[cy][cx])
			r := duckRune
			if d.Sorted {
				r = sortedDuckRune
				style = style.Bold(true)
			}
			ui.screen.SetContent(cx, cy, r, nil, style)
		}
		if cx, cy, ok := ui.view.toCell(snap.Player.Position); ok {
			ui.screen.SetContent(cx, cy, playerRune, nil,
				tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(ui.water[cy][cx]).Bold(true))
		}
	}

	status := ""
	switch ui.ctl.Phase {
	case game.PhaseStart:
		status = fmt.Sprintf("Sort the ducks! %s (g/k)  d daily  r random  enter replay  esc quit", ui.ctl.SettingsText())
	case game.PhasePlaying:
		status = fmt.Sprintf("%s  seed %d  esc give up", ui.ctl.TimerText(), snap.Seed)
	case game.PhaseWon:
		status = fmt.Sprintf("%s  seed %d  %s  d/r/enter play again", ui.ctl.VictoryText(), snap.Seed, ui.ctl.SettingsText())
	}
	ui.printLine(ui.view.rows-1, status)
	ui.screen.Show()
}

func (ui *UI) printLine(y int, s string) {
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)
	x := 0
	for _, r := range s {
		if x >= ui.view.cols {
			break
		}
		ui.screen.SetContent(x, y, r, nil, style)
		x++
	}
	for ; x < ui.view.cols; x++ {
		ui.screen.SetContent(x, y, ' ', nil, style)
	}
}

func (ui *UI) run() {
	ticker := time.NewTicker(time.Second / engine.DefaultTickHz)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := ui.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	for {
		select {
		case ev := <-events:
			if !ui.handle(ev) {
				return
			}
		case <-ticker.C:
			ui.ctl.Frame(ui.target)
			ui.draw()
		}
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	var logOut io.Writer = io.Discard
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintln(os.Stderr, "log file:", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})))

	eng := engine.NewEngine(cfg.Tuning, engine.SystemClock{}, engine.DefaultTickHz)
	ctl := game.NewController(eng, entropy.NewSeedSource(cfg.RandomOrgKey))

	if cfg.Audio {
		chimes := audio.New(0.6)
		if err := chimes.Init(); err != nil {
			// Non-fatal, the game runs silently.
			slog.Warn("audio disabled", "error", err)
		} else {
			defer chimes.Close()
			ctl.Sounds = chimes
		}
	}

	ui, err := newUI(ctl, cfg.Tuning)
	if err != nil {
		fmt.Fprintln(os.Stderr, "terminal:", err)
		os.Exit(1)
	}
	defer ui.screen.Fini()

	ui.run()
}
