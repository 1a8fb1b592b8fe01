package thermostat

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sweeney/labkit/internal/analog"
	"github.com/sweeney/labkit/internal/config"
	"github.com/sweeney/labkit/internal/display"
	"github.com/sweeney/labkit/internal/filter"
	"github.com/sweeney/labkit/internal/sensor"
	"github.com/sweeney/labkit/internal/timer"
)

// Display texts.
const (
	TextSensorFault = "Capteur erreur"
	TextSystemError = "SYSTEM ERROR"
	TextCheck       = "Check sensors"

	alarmPadding = "     "
)

// Output is everything one tick decided.
type Output struct {
	Mode        Mode
	Setpoint    float64
	Measurement sensor.Measurement
	Buzzer      bool
	LED         uint16
	Lines       [display.Rows]string
	// Sampled is true when the setpoint and sensor were re-read this tick.
	Sampled bool
}

// Diff returns measured minus setpoint, or 0 when the measurement is absent.
func (o Output) Diff() float64 {
	if !o.Measurement.Valid {
		return 0
	}
	return o.Measurement.Temperature - o.Setpoint
}

// Controller owns all mutable state of the station. Tick is its only mutator.
type Controller struct {
	cfg    config.ThermostatConfig
	pot    filter.Source
	sensor sensor.Sensor
	avg    *filter.Average

	sensorTimer    *timer.Interval
	alarmTimer     *timer.Interval
	textTimer      *timer.Interval
	scrollTimer    *timer.Interval
	breathingTimer *timer.Interval

	setpoint  float64
	meas      sensor.Measurement
	phase     float64
	ledOn     bool
	textOn    bool
	scrollPos int
	led       uint16
}

// NewController creates a controller reading the setpoint from pot and the
// ambient conditions from s. Animation timers start at start; the first Tick
// samples the inputs immediately.
func NewController(cfg config.ThermostatConfig, pot filter.Source, s sensor.Sensor, start time.Time) *Controller {
	c := &Controller{
		cfg:            cfg,
		pot:            pot,
		sensor:         s,
		avg:            filter.NewAverage(cfg.SetpointSamples),
		sensorTimer:    timer.New(cfg.SensorInterval),
		alarmTimer:     timer.New(cfg.AlarmBlink),
		textTimer:      timer.New(cfg.TextBlink),
		scrollTimer:    timer.New(cfg.Scroll),
		breathingTimer: timer.New(cfg.Breathing),
		textOn:         true,
	}
	c.alarmTimer.Reset(start)
	c.textTimer.Reset(start)
	c.scrollTimer.Reset(start)
	c.breathingTimer.Reset(start)
	return c
}

// Tick runs one loop iteration at now. An error means the setpoint could not
// be read; sensor faults are not errors, they yield ModeFault.
func (c *Controller) Tick(now time.Time) (Output, error) {
	sampled := false
	if c.sensorTimer.Due(now) {
		sp, err := c.readSetpoint()
		if err != nil {
			return Output{}, err
		}
		c.setpoint = sp
		c.meas = c.readSensor()
		sampled = true
	}

	mode := Classify(c.meas, c.setpoint, c.cfg.AlarmDelta)
	out := Output{
		Mode:        mode,
		Setpoint:    c.setpoint,
		Measurement: c.meas,
		Sampled:     sampled,
	}
	out.Lines[0] = fmt.Sprintf("Set: %.1fC", c.setpoint)

	switch mode {
	case ModeFault:
		c.led = 0
		out.Lines[1] = TextSensorFault

	case ModeAlarm:
		out.Buzzer = true
		if c.alarmTimer.Due(now) {
			c.ledOn = !c.ledOn
			if c.ledOn {
				c.led = 65535
			} else {
				c.led = 0
			}
		}
		if c.textTimer.Due(now) {
			c.textOn = !c.textOn
		}
		if c.scrollTimer.Due(now) {
			c.scrollPos = (c.scrollPos + 1) % display.Columns
		}
		if c.textOn {
			out.Lines[1] = ScrollWindow(fmt.Sprintf("ALARM! %.1fC", c.meas.Temperature)+alarmPadding, c.scrollPos)
		}

	case ModeElevated:
		if c.breathingTimer.Due(now) {
			c.phase += c.cfg.BreathingStep
			c.led = Brightness(c.phase)
		}
		out.Lines[1] = fmt.Sprintf("Amb: %.1fC", c.meas.Temperature)

	case ModeNormal:
		c.led = 0
		out.Lines[1] = fmt.Sprintf("Amb: %.1fC", c.meas.Temperature)
	}

	out.LED = c.led
	return out, nil
}

func (c *Controller) readSetpoint() (float64, error) {
	if err := c.avg.Fill(c.pot, c.cfg.SetpointSamples); err != nil {
		return 0, fmt.Errorf("read setpoint: %w", err)
	}
	return analog.Setpoint(c.avg.Value()), nil
}

// readSensor turns a sensor fault into an absent measurement.
func (c *Controller) readSensor() sensor.Measurement {
	m, err := c.sensor.Measure()
	if err != nil {
		log.Printf("sensor read error: %v", err)
		return sensor.Absent
	}
	return m
}

// Phase returns the breathing phase. It only advances in ModeElevated and is
// kept across mode changes.
func (c *Controller) Phase() float64 {
	return c.phase
}

// ScrollWindow returns the Columns-wide view of text repeated twice, starting
// at pos.
func ScrollWindow(text string, pos int) string {
	doubled := []rune(strings.Repeat(text, 2))
	if len(doubled) == 0 {
		return ""
	}
	pos %= len(doubled)
	end := pos + display.Columns
	if end > len(doubled) {
		end = len(doubled)
	}
	return string(doubled[pos:end])
}

// StatusLine is the console debug line for an output.
func StatusLine(o Output) string {
	if !o.Measurement.Valid {
		return fmt.Sprintf("Consigne: %.1f°C | Mesurée: ERREUR", o.Setpoint)
	}
	return fmt.Sprintf("Consigne: %.1f°C | Mesurée: %.1f°C | Diff: %.1f°C | Hum: %.1f%%",
		o.Setpoint, o.Measurement.Temperature, o.Diff(), o.Measurement.Humidity)
}
