// Package console is a terminal front end for the audio engine
// Every key press or click is forwarded as a user gesture before it is handled
package console

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/ambient/audio"
	"github.com/lixenwraith/ambient/gesture"
	"github.com/lixenwraith/ambient/scene"
)

const (
	redrawInterval = 100 * time.Millisecond
	volumeStep     = 0.1
	meterWidth     = 20
)

// SceneKeys maps number keys 1..6 to scenes
var SceneKeys = []string{scene.Title, scene.Ghat, scene.Labyrinth, scene.TrialA, scene.TrialB, scene.Warden}

// Engine is the part of the audio engine the console drives
type Engine interface {
	SetVolumes(u audio.VolumeUpdate)
	StartAmbient(key string)
	StopAmbient(fade bool)
	PlaySfx(kind string)
	Volume(bus string) float64
	Enabled() bool
	Stats() audio.Stats
	Gestures() *gesture.Source
}

// Console draws engine state and maps keys to engine calls
type Console struct {
	screen tcell.Screen
	engine Engine
	log    *slog.Logger

	width, height int
	message       string
}

// New creates a console on an initialized screen
func New(screen tcell.Screen, engine Engine, log *slog.Logger) *Console {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	c := &Console{screen: screen, engine: engine, log: log}
	c.width, c.height = screen.Size()
	c.message = "press any key to start audio"
	return c
}

// Run polls input and redraws until quit or ctx is cancelled
func (c *Console) Run(ctx context.Context) error {
	ticker := time.NewTicker(redrawInterval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 64)
	go func() {
		for {
			ev := c.screen.PollEvent()
			if ev == nil {
				close(eventChan)
				return
			}
			eventChan <- ev
		}
	}()

	c.draw()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-eventChan:
			if !ok {
				return nil
			}
			if !c.handleInput(ev) {
				return nil
			}
			c.draw()
		case <-ticker.C:
			c.draw()
		}
	}
}

// handleInput dispatches one terminal event; false means quit
func (c *Console) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return c.handleKey(ev.Key(), ev.Rune())
	case *tcell.EventMouse:
		c.handleMouse(ev.Buttons())
	case *tcell.EventResize:
		c.width, c.height = c.screen.Size()
		c.screen.Sync()
	}
	return true
}

func (c *Console) handleMouse(buttons tcell.ButtonMask) {
	if buttons&(tcell.Button1|tcell.Button2|tcell.Button3) != 0 {
		c.engine.Gestures().Fire(gesture.PointerDown)
		c.engine.PlaySfx("click")
	}
}

// handleKey maps a key to an engine call; false means quit
func (c *Console) handleKey(key tcell.Key, r rune) bool {
	if key == tcell.KeyEscape || key == tcell.KeyCtrlC {
		return false
	}
	c.engine.Gestures().Fire(gesture.KeyDown)

	if key == tcell.KeyEnter {
		c.engine.PlaySfx("click")
		c.message = "click"
		return true
	}
	if key != tcell.KeyRune {
		return true
	}

	switch {
	case r >= '1' && r <= '9':
		i := int(r - '1')
		if i < len(SceneKeys) {
			c.engine.StartAmbient(SceneKeys[i])
			c.message = "scene " + SceneKeys[i]
		}
	case r == '0':
		c.engine.StopAmbient(true)
		c.message = "ambience stopped"
	case r == 'h':
		c.engine.PlaySfx("hover")
		c.message = "hover"
	case r == 'j':
		c.engine.PlaySfx("journal")
		c.message = "journal"
	case r == 'o':
		c.engine.PlaySfx("objective")
		c.message = "objective"
	case r == '+' || r == '=':
		c.nudgeMaster(volumeStep)
	case r == '-' || r == '_':
		c.nudgeMaster(-volumeStep)
	case r == 'm':
		enabled := !c.engine.Enabled()
		c.engine.SetVolumes(audio.VolumeUpdate{Enabled: &enabled})
		c.message = fmt.Sprintf("sound enabled: %v", enabled)
	case r == 'q':
		return false
	}
	return true
}

func (c *Console) nudgeMaster(delta float64) {
	v := c.engine.Volume(audio.BusMaster) + delta
	c.engine.SetVolumes(audio.VolumeUpdate{Master: &v})
	c.message = fmt.Sprintf("master %.0f%%", c.engine.Volume(audio.BusMaster)*100)
}

func (c *Console) draw() {
	c.screen.Clear()
	st := c.engine.Stats()

	title := tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	plain := tcell.StyleDefault
	dim := tcell.StyleDefault.Foreground(tcell.ColorGray)


	row := 0
	c.text(0, row, "ambient", title)
	row += 2
	c.text(0, row, fmt.Sprintf("state   %s  backend %s", st.State, orDash(st.Backend)), plain)
	row++
	c.text(0, row, fmt.Sprintf("scene   %s  generations %d  voices %d  nodes %d",
		orDash(st.Scene), st.Generations, st.Voices, st.LiveNodes), plain)
	row++
	c.text(0, row, fmt.Sprintf("enabled %v  comp %.1f dB", c.engine.Enabled(), st.Reduction), plain)
	row += 2

	for _, bus := range []string{audio.BusMaster, audio.BusMusic, audio.BusAmbient, audio.BusSfx} {
		c.meter(0, row, bus, c.engine.Volume(bus))
		row++
	}
	row++

	c.text(0, row, "1-6 scenes  0 stop  h/enter/j/o cues  +/- master  m mute  q quit", dim)
	row++
	for i, key := range SceneKeys {
		c.text(0, row+i, fmt.Sprintf(" %d %s", i+1, key), dim)
	}

	if c.height > 0 {
		c.text(0, c.height-1, c.message, plain)
	}
	c.screen.Show()
}

func (c *Console) meter(x, y int, label string, level float64) {
	c.text(x, y, fmt.Sprintf("%-8s", label), tcell.StyleDefault)
	filled := int(level*meterWidth + 0.5)
	for i := range meterWidth {
		ch, style := '·', tcell.StyleDefault.Foreground(tcell.ColorGray)
		if i < filled {
			ch, style = '█', tcell.StyleDefault.Foreground(tcell.ColorGreen)
		}
		c.screen.SetContent(x+9+i, y, ch, nil, style)
	}
	c.text(x+10+meterWidth, y, fmt.Sprintf("%3.0f%%", level*100), tcell.StyleDefault)
}

func (c *Console) text(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		if c.width > 0 && x >= c.width {
			return
		}
		c.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
