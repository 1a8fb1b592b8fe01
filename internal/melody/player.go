// Package melody plays note sequences on a PWM buzzer. The player is a
// non-blocking state machine: each Step decides the buzzer and LED levels for
// the current instant.
package melody

import (
	"fmt"
	"time"

	"github.com/sweeney/labkit/internal/analog"
	"github.com/sweeney/labkit/internal/button"
	"github.com/sweeney/labkit/internal/config"
)

// NoteDuration is (60000 / tempo) / division milliseconds.
func NoteDuration(tempo, division int) time.Duration {
	ms := 60000.0 / float64(tempo) / float64(division)
	return time.Duration(ms * float64(time.Millisecond))
}

// Volume maps a potentiometer sample onto a buzzer duty in [min, max], never
// below min so the tone stays audible.
func Volume(raw uint16, min, max int) uint16 {
	v := int(float64(raw) / analog.FullScale * float64(max))
	if v < min {
		v = min
	}
	return uint16(v)
}

// Output is the buzzer and LED state for one step.
type Output struct {
	Freq uint32
	Duty uint16
	LED  bool

	Melody   string
	Note     string
	Started  bool // a melody started from its first note this step
	Switched bool // the button selected another melody this step
}

// Player walks a playlist.
type Player struct {
	cfg     config.MelodyConfig
	library []Melody
	button  *button.Edge

	index     int
	note      int
	playing   bool
	noteStart time.Time
	resumeAt  time.Time
	volume    uint16
	started   bool
}

// NewPlayer creates a player positioned at the start of the first melody.
func NewPlayer(cfg config.MelodyConfig, library []Melody) (*Player, error) {
	if len(library) == 0 {
		return nil, fmt.Errorf("melody: empty library")
	}
	for _, m := range library {
		for i, n := range m.Notes {
			if _, ok := Frequencies[n.Name]; !ok {
				return nil, fmt.Errorf("melody %q note %d: unknown note %q", m.Name, i, n.Name)
			}
			if n.Division <= 0 {
				return nil, fmt.Errorf("melody %q note %d: division %d", m.Name, i, n.Division)
			}
		}
	}
	return &Player{
		cfg:     cfg,
		library: library,
		button:  button.NewEdge(cfg.Debounce),
	}, nil
}

// Step advances the player to now. buttonLevel is the raw button line and
// potRaw the current volume potentiometer sample.
func (p *Player) Step(now time.Time, buttonLevel bool, potRaw uint16) Output {
	var out Output

	if !p.started {
		p.started = true
		p.begin(now, potRaw)
		out.Started = true
	}

	if p.button.Process(buttonLevel, now) {
		p.index = (p.index + 1) % len(p.library)
		p.playing = false
		// the hold-off, then the pause before the next melody
		p.resumeAt = now.Add(p.cfg.Debounce + p.cfg.Pause)
		out.Switched = true
	}

	if !p.playing {
		if now.Before(p.resumeAt) {
			out.Melody = p.current().Name
			return out
		}
		p.begin(p.resumeAt, potRaw)
		out.Started = true
	}

	m := p.current()
	for {
		n := m.Notes[p.note]
		dur := NoteDuration(p.cfg.Tempo, n.Division)
		if now.Sub(p.noteStart) < dur {
			break
		}
		next := p.noteStart.Add(dur)
		p.note++
		if p.note == len(m.Notes) {
			p.playing = false
			p.resumeAt = next.Add(p.cfg.Pause)
			out.Melody = m.Name
			if !now.Before(p.resumeAt) {
				return p.Step(now, buttonLevel, potRaw)
			}
			return out
		}
		p.noteStart = next
		p.volume = Volume(potRaw, p.cfg.VolumeMin, p.cfg.VolumeMax)
	}

	n := m.Notes[p.note]
	out.Melody = m.Name
	out.Note = n.Name
	if n.Name == Rest {
		return out
	}
	dur := NoteDuration(p.cfg.Tempo, n.Division)
	out.Freq = Frequencies[n.Name]
	out.Duty = p.volume
	out.LED = now.Sub(p.noteStart) < dur/2
	return out
}

func (p *Player) begin(at time.Time, potRaw uint16) {
	p.playing = true
	p.note = 0
	p.noteStart = at
	p.volume = Volume(potRaw, p.cfg.VolumeMin, p.cfg.VolumeMax)
}

func (p *Player) current() Melody {
	return p.library[p.index]
}

// Current returns the name of the selected melody.
func (p *Player) Current() string {
	return p.current().Name
}
