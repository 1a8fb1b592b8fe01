package main

import (
	"fmt"
	"log"
	"time"

	"github.com/sweeney/labkit/internal/blink"
	"github.com/sweeney/labkit/internal/config"
	"github.com/sweeney/labkit/internal/gpio"
	"github.com/sweeney/labkit/internal/mqtt"
	"github.com/sweeney/labkit/internal/status"
)

type blinkExercise struct {
	ctl    *blink.Controller
	button gpio.Input
	led    gpio.Output

	led0   bool
	primed bool
}

func (e *blinkExercise) Step(now time.Time) (report, error) {
	level, err := e.button.Read()
	if err != nil {
		return report{}, fmt.Errorf("read button: %w", err)
	}
	out := e.ctl.Step(now, level)

	if !e.primed || out.LED != e.led0 {
		if err := e.led.Set(out.LED); err != nil {
			return report{}, fmt.Errorf("set led: %w", err)
		}
		e.led0 = out.LED
		e.primed = true
	}

	r := report{
		Mode:     out.Mode.String(),
		Readings: []status.Reading{{Name: "led", Value: onOff(out.LED)}},
	}
	if out.Pressed {
		log.Printf("button pressed: mode=%d (%s)", int(out.Mode), out.Mode)
		r.Events = append(r.Events, mqtt.Event{
			Type:   "BLINK_MODE",
			Fields: map[string]any{"mode": out.Mode.String()},
		})
	}
	return r, nil
}

func (e *blinkExercise) Recover(error) {
	e.primed = false
	if err := e.led.Set(false); err != nil {
		log.Printf("led off: %v", err)
	}
}

func buildBlink(cfg config.BlinkConfig, hw hardware) (*blinkExercise, closers, error) {
	var cl closers
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

	return &blinkExercise{
		ctl:    blink.NewController(cfg),
		button: button,
		led:    led,
	}, cl, nil
}

func runBlink(cfg *config.Config) error {
	ex, cl, err := buildBlink(cfg.Blink, openHardware(cfg))
	defer closeAll(cl)
	if err != nil {
		return err
	}
	return serve(cfg, loopConfig{Name: "blink", Poll: cfg.Blink.Poll, Cooldown: defaultCooldown}, ex)
}

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}
