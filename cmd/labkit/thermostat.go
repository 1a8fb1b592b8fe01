package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"

	"github.com/sweeney/labkit/internal/config"
	"github.com/sweeney/labkit/internal/display"
	"github.com/sweeney/labkit/internal/mqtt"
	"github.com/sweeney/labkit/internal/status"
	"github.com/sweeney/labkit/internal/thermostat"
)

var modeColors = map[thermostat.Mode]*color.Color{
	thermostat.ModeFault:    color.New(color.FgMagenta, color.Bold),
	thermostat.ModeAlarm:    color.New(color.FgRed, color.Bold),
	thermostat.ModeElevated: color.New(color.FgYellow),
	thermostat.ModeNormal:   color.New(color.FgGreen),
}

type thermostatExercise struct {
	ctl     *thermostat.Controller
	act     *thermostat.Actuators
	disp    display.Display
	console io.Writer

	lines   [display.Rows]string
	drawn   bool
	mode    thermostat.Mode
	started bool
	line    string
}

func (e *thermostatExercise) Step(now time.Time) (report, error) {
	out, err := e.ctl.Tick(now)
	if err != nil {
		return report{}, err
	}
	if err := e.act.Apply(out); err != nil {
		return report{}, fmt.Errorf("actuators: %w", err)
	}
	if !e.drawn || out.Lines != e.lines {
		if err := display.Render(e.disp, out.Lines); err != nil {
			e.drawn = false
			return report{}, fmt.Errorf("display: %w", err)
		}
		e.lines = out.Lines
		e.drawn = true
	}

	if out.Sampled {
		e.printStatus(out)
	}

	r := report{
		Mode:     out.Mode.String(),
		Lines:    out.Lines,
		Readings: thermostatReadings(out),
	}
	if !e.started || out.Mode != e.mode {
		e.started = true
		e.mode = out.Mode
		fields := map[string]any{"mode": out.Mode.String(), "setpoint": out.Setpoint}
		if out.Measurement.Valid {
			fields["temperature"] = out.Measurement.Temperature
			fields["humidity"] = out.Measurement.Humidity
		}
		r.Events = append(r.Events, mqtt.Event{Type: "MODE", Fields: fields})
	}
	return r, nil
}

// printStatus writes the console line when it changed.
func (e *thermostatExercise) printStatus(out thermostat.Output) {
	line := thermostat.StatusLine(out)
	if line == e.line {
		return
	}
	e.line = line
	c, ok := modeColors[out.Mode]
	if !ok {
		c = color.New(color.Reset)
	}
	fmt.Fprintf(e.console, "%s %s\n", c.Sprintf("[%-8s]", out.Mode), line)
}

func (e *thermostatExercise) Recover(error) {
	if err := e.act.Safe(); err != nil {
		log.Printf("actuators safe: %v", err)
	}
	e.drawn = false
	if err := display.ShowError(e.disp, thermostat.TextSystemError, thermostat.TextCheck); err != nil {
		log.Printf("display error screen: %v", err)
	}
}

func thermostatReadings(out thermostat.Output) []status.Reading {
	r := []status.Reading{
		{Name: "setpoint", Value: fmt.Sprintf("%.1f°C", out.Setpoint)},
	}
	if out.Measurement.Valid {
		r = append(r,
			status.Reading{Name: "temperature", Value: fmt.Sprintf("%.1f°C", out.Measurement.Temperature)},
			status.Reading{Name: "humidity", Value: fmt.Sprintf("%.1f%%", out.Measurement.Humidity)},
			status.Reading{Name: "diff", Value: fmt.Sprintf("%.1f°C", out.Diff())},
		)
	} else {
		r = append(r, status.Reading{Name: "temperature", Value: "ERREUR"})
	}
	return append(r,
		status.Reading{Name: "led", Value: strconv.Itoa(int(out.LED))},
		status.Reading{Name: "buzzer", Value: onOff(out.Buzzer)},
	)
}

func buildThermostat(cfg config.ThermostatConfig, hw hardware, now time.Time) (*thermostatExercise, closers, error) {
	var cl closers
	led, err := hw.PWM(cfg.LEDPin, cfg.LEDFrequency)
	if err != nil {
		return nil, cl, openErr("led", err)
	}
	cl.add(led)
	buzzer, err := hw.PWM(cfg.BuzzerPin, cfg.BuzzerFrequency)
	if err != nil {
		return nil, cl, openErr("buzzer", err)
	}
	cl.add(buzzer)
	pot, err := hw.ADC(cfg.PotChannel)
	if err != nil {
		return nil, cl, openErr("potentiometer", err)
	}
	cl.add(pot)
	s, err := hw.Sensor(cfg.SensorAddr)
	if err != nil {
		return nil, cl, openErr("sensor", err)
	}
	cl.add(s)
	disp, err := hw.Display(cfg.DisplayAddr)
	if err != nil {
		return nil, cl, openErr("display", err)
	}
	cl.add(disp)

	act := thermostat.NewActuators(led, buzzer, cfg.BuzzerDuty)
	if err := act.Safe(); err != nil {
		return nil, cl, fmt.Errorf("init outputs: %w", err)
	}
	if err := disp.Clear(); err != nil {
		return nil, cl, fmt.Errorf("clear display: %w", err)
	}

	return &thermostatExercise{
		ctl:     thermostat.NewController(cfg, pot, s, now),
		act:     act,
		disp:    disp,
		console: os.Stdout,
	}, cl, nil
}

func runThermostat(cfg *config.Config) error {
	ex, cl, err := buildThermostat(cfg.Thermostat, openHardware(cfg), time.Now())
	defer closeAll(cl)
	if err != nil {
		return err
	}
	return serve(cfg, loopConfig{Name: "thermostat", Poll: cfg.Thermostat.Poll, Cooldown: cfg.Thermostat.Cooldown}, ex)
}
