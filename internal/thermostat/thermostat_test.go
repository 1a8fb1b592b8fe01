package thermostat

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/labkit/internal/analog"
	"github.com/sweeney/labkit/internal/config"
	"github.com/sweeney/labkit/internal/gpio"
	"github.com/sweeney/labkit/internal/sensor"
)

// rawFor22 maps to a setpoint of 22.0°C.
const rawFor22 = 22937

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestController(t *testing.T, s *sensor.Fake, raw uint16) (*Controller, *analog.FakeADC) {
	t.Helper()
	pot := analog.NewFakeADC(raw)
	return NewController(config.Default().Thermostat, pot, s, t0), pot
}

func TestClassifyPartition(t *testing.T) {
	tests := []struct {
		measured sensor.Measurement
		setpoint float64
		want     Mode
	}{
		{sensor.Absent, 22, ModeFault},
		{sensor.Reading(25.5, 40), 22, ModeAlarm},
		{sensor.Reading(25.01, 40), 22, ModeAlarm},
		{sensor.Reading(25.0, 40), 22, ModeElevated},
		{sensor.Reading(22.1, 40), 22, ModeElevated},
		{sensor.Reading(22.0, 40), 22, ModeNormal},
		{sensor.Reading(10.0, 40), 22, ModeNormal},
	}
	for _, tt := range tests {
		got := Classify(tt.measured, tt.setpoint, 3.0)
		if got != tt.want {
			t.Errorf("Classify(%v, %v): got %s, want %s", tt.measured, tt.setpoint, got, tt.want)
		}
		if again := Classify(tt.measured, tt.setpoint, 3.0); again != got {
			t.Errorf("Classify not deterministic: %s then %s", got, again)
		}
	}
}

func TestModeString(t *testing.T) {
	for m, want := range map[Mode]string{
		ModeFault: "FAULT", ModeAlarm: "ALARM", ModeElevated: "ELEVATED", ModeNormal: "NORMAL", Mode(42): "UNKNOWN",
	} {
		if m.String() != want {
			t.Errorf("got %q, want %q", m.String(), want)
		}
	}
}

func TestBrightnessRangeAndPeriod(t *testing.T) {
	for i := 0; i < 2000; i++ {
		phase := float64(i) * 0.1
		b := Brightness(phase)
		shifted := Brightness(phase + 2*math.Pi)
		// float rounding may move the truncation by one step
		if d := int(b) - int(shifted); d < -1 || d > 1 {
			t.Fatalf("phase %v: brightness %d vs %d one period later", phase, b, shifted)
		}
	}
	if got := Brightness(math.Pi / 2); got != 65535 {
		t.Errorf("peak: got %d, want 65535", got)
	}
	if got := Brightness(-math.Pi / 2); got != 0 {
		t.Errorf("trough: got %d, want 0", got)
	}
}

func TestScrollWindow(t *testing.T) {
	text := "ALARM! 25.5C     "
	if got := ScrollWindow(text, 0); got != "ALARM! 25.5C    " {
		t.Errorf("pos 0: got %q", got)
	}
	if got := ScrollWindow(text, 1); got != "LARM! 25.5C     " {
		t.Errorf("pos 1: got %q", got)
	}
	for pos := 0; pos < 16; pos++ {
		if n := len([]rune(ScrollWindow(text, pos))); n != 16 {
			t.Errorf("pos %d: width %d", pos, n)
		}
	}
	if got := ScrollWindow("", 3); got != "" {
		t.Errorf("empty: got %q", got)
	}
}

// Setpoint 22.0, measured 25.5 -> ALARM.
func TestAlarmScenario(t *testing.T) {
	c, _ := newTestController(t, sensor.NewFake(sensor.Reading(25.5, 40)), rawFor22)

	out, err := c.Tick(t0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Setpoint != 22.0 {
		t.Fatalf("setpoint: got %v, want 22.0", out.Setpoint)
	}
	if out.Mode != ModeAlarm {
		t.Fatalf("mode: got %s, want ALARM", out.Mode)
	}
	if math.Abs(out.Diff()-3.5) > 1e-9 {
		t.Errorf("diff: got %v, want 3.5", out.Diff())
	}
	if !out.Buzzer {
		t.Error("expected buzzer on")
	}
	if out.Lines[0] != "Set: 22.0C" {
		t.Errorf("line 0: got %q", out.Lines[0])
	}
	if !strings.HasPrefix(out.Lines[1], "ALARM! 25.5C") {
		t.Errorf("line 1: got %q", out.Lines[1])
	}

	// LED toggles every 125ms independent of the buzzer.
	var levels []uint16
	for ms := 10; ms <= 520; ms += 10 {
		out, _ = c.Tick(t0.Add(time.Duration(ms) * time.Millisecond))
		if !out.Buzzer {
			t.Fatalf("buzzer off at %dms", ms)
		}
		if len(levels) == 0 || levels[len(levels)-1] != out.LED {
			levels = append(levels, out.LED)
		}
	}
	want := []uint16{0, 65535, 0, 65535, 0}
	if len(levels) < len(want) {
		t.Fatalf("LED transitions: got %v, want at least %v", levels, want)
	}
	for i := range want {
		if levels[i] != want[i] {
			t.Errorf("LED transitions: got %v, want prefix %v", levels, want)
			break
		}
	}
}

func TestAlarmTextScrollsAndBlinks(t *testing.T) {
	c, _ := newTestController(t, sensor.NewFake(sensor.Reading(25.5, 40)), rawFor22)
	c.Tick(t0)

	out, _ := c.Tick(t0.Add(300 * time.Millisecond))
	if out.Lines[1] != "LARM! 25.5C     " {
		t.Errorf("after one scroll step: got %q", out.Lines[1])
	}

	out, _ = c.Tick(t0.Add(500 * time.Millisecond))
	if out.Lines[1] != "" {
		t.Errorf("text should be hidden after 500ms, got %q", out.Lines[1])
	}

	out, _ = c.Tick(t0.Add(1000 * time.Millisecond))
	if out.Lines[1] == "" {
		t.Error("text should be visible again after 1000ms")
	}
}

// The sensor fails -> FAULT.
func TestSensorFaultScenario(t *testing.T) {
	s := sensor.NewFake(sensor.Reading(21, 40))
	s.Errors = []error{errors.New("i2c nack")}
	c, _ := newTestController(t, s, rawFor22)

	out, err := c.Tick(t0)
	if err != nil {
		t.Fatalf("sensor fault must not be an error: %v", err)
	}
	if out.Mode != ModeFault {
		t.Fatalf("mode: got %s, want FAULT", out.Mode)
	}
	if out.Buzzer || out.LED != 0 {
		t.Errorf("expected outputs off, got buzzer=%v led=%d", out.Buzzer, out.LED)
	}
	if out.Lines[1] != TextSensorFault {
		t.Errorf("line 1: got %q, want %q", out.Lines[1], TextSensorFault)
	}
	if out.Lines[0] != "Set: 22.0C" {
		t.Errorf("line 0: got %q", out.Lines[0])
	}

	// Recovers on the next sensor interval without intervention.
	out, _ = c.Tick(t0.Add(time.Second))
	if out.Mode != ModeNormal {
		t.Errorf("mode after recovery: got %s, want NORMAL", out.Mode)
	}
}

// Potentiometer extremes.
func TestSetpointExtremes(t *testing.T) {
	for raw, want := range map[uint16]float64{0: 15.0, 65535: 35.0} {
		c, _ := newTestController(t, sensor.NewFake(sensor.Reading(20, 40)), raw)
		out, err := c.Tick(t0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Setpoint != want {
			t.Errorf("raw %d: setpoint %v, want %v", raw, out.Setpoint, want)
		}
	}
}

func TestSetpointAveragesSamples(t *testing.T) {
	s := sensor.NewFake(sensor.Reading(20, 40))
	pot := analog.NewFakeADC(0, 0, 0, 0, 0, 65535, 65535, 65535, 65535, 65535)
	c := NewController(config.Default().Thermostat, pot, s, t0)

	out, _ := c.Tick(t0)
	if pot.Reads != 10 {
		t.Errorf("expected 10 potentiometer reads, got %d", pot.Reads)
	}
	// floor(5*65535/10) = 32767 -> 24.99...
	if out.Setpoint != 25.0 {
		t.Errorf("setpoint: got %v, want 25.0", out.Setpoint)
	}
}

func TestSensorReadOnlyOnInterval(t *testing.T) {
	s := sensor.NewFake(sensor.Reading(20, 40))
	c, _ := newTestController(t, s, rawFor22)

	for ms := 0; ms < 1000; ms += 10 {
		c.Tick(t0.Add(time.Duration(ms) * time.Millisecond))
	}
	if s.Calls != 1 {
		t.Errorf("expected 1 sensor read in the first second, got %d", s.Calls)
	}
	out, _ := c.Tick(t0.Add(time.Second))
	if !out.Sampled || s.Calls != 2 {
		t.Errorf("expected a second read at 1s, calls=%d sampled=%v", s.Calls, out.Sampled)
	}
}

func TestSetpointReadError(t *testing.T) {
	c, pot := newTestController(t, sensor.NewFake(sensor.Reading(20, 40)), rawFor22)
	pot.ReadError = errors.New("adc gone")

	if _, err := c.Tick(t0); err == nil {
		t.Error("expected error when the setpoint cannot be read")
	}
}

func TestElevatedBreathing(t *testing.T) {
	c, _ := newTestController(t, sensor.NewFake(sensor.Reading(23.0, 40)), rawFor22)

	out, _ := c.Tick(t0)
	if out.Mode != ModeElevated {
		t.Fatalf("mode: got %s, want ELEVATED", out.Mode)
	}
	if out.Buzzer {
		t.Error("buzzer must be off when elevated")
	}
	if out.Lines[1] != "Amb: 23.0C" {
		t.Errorf("line 1: got %q", out.Lines[1])
	}

	out, _ = c.Tick(t0.Add(50 * time.Millisecond))
	if math.Abs(c.Phase()-0.1) > 1e-9 {
		t.Errorf("phase: got %v, want 0.1", c.Phase())
	}
	if out.LED != Brightness(0.1) {
		t.Errorf("led: got %d, want %d", out.LED, Brightness(0.1))
	}

	// No advance before the next 50ms step.
	c.Tick(t0.Add(90 * time.Millisecond))
	if math.Abs(c.Phase()-0.1) > 1e-9 {
		t.Errorf("phase advanced early: %v", c.Phase())
	}
}

func TestBreathingPhaseKeptAcrossModes(t *testing.T) {
	s := sensor.NewFake(sensor.Reading(23.0, 40), sensor.Reading(20.0, 40), sensor.Reading(23.0, 40))
	c, _ := newTestController(t, s, rawFor22)

	for ms := 0; ms < 1000; ms += 10 {
		c.Tick(t0.Add(time.Duration(ms) * time.Millisecond))
	}
	phase := c.Phase()
	if phase <= 0 {
		t.Fatal("expected phase to advance while elevated")
	}

	// NORMAL for one second: phase frozen.
	for ms := 1000; ms < 2000; ms += 10 {
		out, _ := c.Tick(t0.Add(time.Duration(ms) * time.Millisecond))
		if out.Mode != ModeNormal {
			t.Fatalf("mode at %dms: got %s", ms, out.Mode)
		}
		if out.LED != 0 {
			t.Fatalf("LED must be off in NORMAL, got %d", out.LED)
		}
	}
	if c.Phase() != phase {
		t.Errorf("phase changed outside ELEVATED: %v -> %v", phase, c.Phase())
	}

	// Back to ELEVATED: continues from where it stopped.
	c.Tick(t0.Add(2000 * time.Millisecond))
	if c.Phase() < phase {
		t.Errorf("phase was reset: %v -> %v", phase, c.Phase())
	}
}

func TestStatusLine(t *testing.T) {
	o := Output{Setpoint: 22, Measurement: sensor.Reading(25.5, 40)}
	want := "Consigne: 22.0°C | Mesurée: 25.5°C | Diff: 3.5°C | Hum: 40.0%"
	if got := StatusLine(o); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	o.Measurement = sensor.Absent
	if got := StatusLine(o); got != "Consigne: 22.0°C | Mesurée: ERREUR" {
		t.Errorf("got %q", got)
	}
}

func TestActuatorsApply(t *testing.T) {
	led := gpio.NewFakePWM(1000)
	buzzer := gpio.NewFakePWM(2000)
	a := NewActuators(led, buzzer, gpio.DutyHalf)

	if err := a.Apply(Output{Buzzer: true, LED: 65535}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buzzer.Duty != gpio.DutyHalf || led.Duty != 65535 {
		t.Errorf("got buzzer=%d led=%d", buzzer.Duty, led.Duty)
	}

	// Unchanged levels are not rewritten.
	a.Apply(Output{Buzzer: true, LED: 65535})
	if len(led.Duties) != 1 || len(buzzer.Duties) != 1 {
		t.Errorf("expected single writes, got led=%v buzzer=%v", led.Duties, buzzer.Duties)
	}

	if err := a.Safe(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buzzer.Duty != 0 || led.Duty != 0 {
		t.Errorf("Safe: got buzzer=%d led=%d", buzzer.Duty, led.Duty)
	}
}

func TestActuatorsRetryAfterError(t *testing.T) {
	led := gpio.NewFakePWM(1000)
	buzzer := gpio.NewFakePWM(2000)
	a := NewActuators(led, buzzer, gpio.DutyHalf)

	led.Error = errors.New("pwm")
	if err := a.Apply(Output{LED: 100}); err == nil {
		t.Fatal("expected error")
	}
	led.Error = nil
	if err := a.Apply(Output{LED: 100}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if led.Duty != 100 {
		t.Errorf("led: got %d, want 100", led.Duty)
	}
}
