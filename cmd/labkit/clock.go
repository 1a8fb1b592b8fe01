package main

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/sweeney/labkit/internal/clock"
	"github.com/sweeney/labkit/internal/config"
	"github.com/sweeney/labkit/internal/gpio"
	"github.com/sweeney/labkit/internal/mqtt"
	"github.com/sweeney/labkit/internal/status"
	"github.com/sweeney/labkit/internal/timer"
)

// clockPoll is how often the clock loop wakes to check its update timer.
const clockPoll = time.Second

type clockExercise struct {
	synced *clock.Synced
	zone   *time.Location
	servo  gpio.PWM
	update *timer.Interval

	last  clock.Reading
	moved bool
}

func (e *clockExercise) Step(now time.Time) (report, error) {
	if e.update.Due(now) {
		r := clock.Position(e.synced.Now(), e.zone)
		if err := e.servo.SetDuty(r.Duty); err != nil {
			e.update.Clear()
			return report{}, fmt.Errorf("servo: %w", err)
		}
		e.last = r
		e.moved = true
		log.Printf("hour: %02d:%02d | angle: %.0f°", r.Hour, r.Minute, r.Angle)
		return e.report(&mqtt.Event{
			Type: "CLOCK",
			Fields: map[string]any{
				"hour":   r.Hour,
				"minute": r.Minute,
				"angle":  r.Angle,
				"duty":   r.Duty,
			},
		}), nil
	}
	return e.report(nil), nil
}

func (e *clockExercise) report(ev *mqtt.Event) report {
	r := report{Mode: "SYNCED"}
	if e.moved {
		r.Readings = []status.Reading{
			{Name: "time", Value: fmt.Sprintf("%02d:%02d", e.last.Hour, e.last.Minute)},
			{Name: "angle", Value: fmt.Sprintf("%.0f°", e.last.Angle)},
			{Name: "duty", Value: strconv.Itoa(int(e.last.Duty))},
			{Name: "ntp offset", Value: e.synced.Offset().String()},
		}
	}
	if ev != nil {
		r.Events = []mqtt.Event{*ev}
	}
	return r
}

// Recover leaves the pointer where it is; the next step retries.
func (e *clockExercise) Recover(error) {}

// zoneFor names a fixed offset like "UTC+2".
func zoneFor(offset time.Duration) *time.Location {
	name := "UTC"
	if offset != 0 {
		name = fmt.Sprintf("UTC%+g", offset.Hours())
	}
	return time.FixedZone(name, int(offset.Seconds()))
}

func buildClock(cfg config.ClockConfig, hw hardware, query clock.Query, now func() time.Time) (*clockExercise, closers, error) {
	var cl closers
	synced, err := clock.Sync(cfg.NTPServer, query, now)
	if err != nil {
		return nil, cl, fmt.Errorf("time sync: %w", err)
	}
	log.Printf("ntp: %s offset=%v", cfg.NTPServer, synced.Offset())

	servo, err := hw.PWM(cfg.ServoPin, clock.ServoFrequency)
	if err != nil {
		return nil, cl, openErr("servo", err)
	}
	cl.add(servo)

	return &clockExercise{
		synced: synced,
		zone:   zoneFor(cfg.UTCOffset),
		servo:  servo,
		update: timer.New(cfg.Update),
	}, cl, nil
}

func runClock(cfg *config.Config) error {
	ex, cl, err := buildClock(cfg.Clock, openHardware(cfg), clock.NTPQuery, time.Now)
	defer closeAll(cl)
	if err != nil {
		return err
	}
	return serve(cfg, loopConfig{Name: "clock", Poll: clockPoll, Cooldown: defaultCooldown}, ex)
}
