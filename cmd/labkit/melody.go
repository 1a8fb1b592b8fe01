package main

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/sweeney/labkit/internal/config"
	"github.com/sweeney/labkit/internal/filter"
	"github.com/sweeney/labkit/internal/gpio"
	"github.com/sweeney/labkit/internal/melody"
	"github.com/sweeney/labkit/internal/mqtt"
	"github.com/sweeney/labkit/internal/status"
)

type melodyExercise struct {
	player *melody.Player
	button gpio.Input
	pot    filter.Source
	led    gpio.Output
	buzzer gpio.PWM

	last   melody.Output
	primed bool
}

func (e *melodyExercise) Step(now time.Time) (report, error) {
	level, err := e.button.Read()
	if err != nil {
		return report{}, fmt.Errorf("read button: %w", err)
	}
	raw, err := e.pot.Read()
	if err != nil {
		return report{}, fmt.Errorf("read volume: %w", err)
	}

	out := e.player.Step(now, level, raw)
	if err := e.apply(out); err != nil {
		return report{}, err
	}

	r := report{
		Mode: out.Melody,
		Readings: []status.Reading{
			{Name: "note", Value: out.Note},
			{Name: "frequency", Value: strconv.Itoa(int(out.Freq))},
			{Name: "volume", Value: strconv.Itoa(int(out.Duty))},
		},
	}
	if out.Switched {
		log.Printf("melody changed: %s", e.player.Current())
	}
	if out.Started {
		log.Printf("playing: %s", out.Melody)
		r.Events = append(r.Events, mqtt.Event{
			Type:   "MELODY",
			Fields: map[string]any{"melody": out.Melody},
		})
	}
	return r, nil
}

// apply writes only the outputs that changed.
func (e *melodyExercise) apply(out melody.Output) error {
	if out.Freq != 0 && (!e.primed || out.Freq != e.last.Freq) {
		if err := e.buzzer.SetFrequency(out.Freq); err != nil {
			return fmt.Errorf("buzzer frequency: %w", err)
		}
	}
	if !e.primed || out.Duty != e.last.Duty {
		if err := e.buzzer.SetDuty(out.Duty); err != nil {
			return fmt.Errorf("buzzer duty: %w", err)
		}
	}
	if !e.primed || out.LED != e.last.LED {
		if err := e.led.Set(out.LED); err != nil {
			return fmt.Errorf("set led: %w", err)
		}
	}
	e.last = out
	e.primed = true
	return nil
}

func (e *melodyExercise) Recover(error) {
	e.primed = false
	if err := e.buzzer.SetDuty(0); err != nil {
		log.Printf("buzzer off: %v", err)
	}
	if err := e.led.Set(false); err != nil {
		log.Printf("led off: %v", err)
	}
}

func buildMelody(cfg config.MelodyConfig, hw hardware) (*melodyExercise, closers, error) {
	var cl closers
	player, err := melody.NewPlayer(cfg, melody.Library)
	if err != nil {
		return nil, cl, err
	}
	button, err := hw.Input(cfg.ButtonPin)
	if err != nil {
		return nil, cl, openErr("button", err)
	}
	cl.add(button)
	led, err := hw.Output(cfg.LEDPin)
	if err != nil {
		return nil, cl, openErr("led", err)
	}
	cl.add(led)
	buzzer, err := hw.PWM(cfg.BuzzerPin, melody.Frequencies["A4"])
	if err != nil {
		return nil, cl, openErr("buzzer", err)
	}
	cl.add(buzzer)
	pot, err := hw.ADC(cfg.PotChannel)
	if err != nil {
		return nil, cl, openErr("potentiometer", err)
	}
	cl.add(pot)

	return &melodyExercise{
		player: player,
		button: button,
		pot:    pot,
		led:    led,
		buzzer: buzzer,
	}, cl, nil
}

func runMelody(cfg *config.Config) error {
	ex, cl, err := buildMelody(cfg.Melody, openHardware(cfg))
	defer closeAll(cl)
	if err != nil {
		return err
	}
	return serve(cfg, loopConfig{Name: "melody", Poll: cfg.Melody.Poll, Cooldown: defaultCooldown}, ex)
}
