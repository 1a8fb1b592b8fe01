// Package config holds the compiled-in defaults of every exercise and the
// optional YAML and environment overrides applied on top of them.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the complete application configuration.
type Config struct {
	Hardware   HardwareConfig   `yaml:"hardware"`
	MQTT       MQTTConfig       `yaml:"mqtt"`
	HTTP       HTTPConfig       `yaml:"http"`
	Blink      BlinkConfig      `yaml:"blink"`
	Melody     MelodyConfig     `yaml:"melody"`
	Thermostat ThermostatConfig `yaml:"thermostat"`
	Beats      BeatsConfig      `yaml:"beats"`
	Clock      ClockConfig      `yaml:"clock"`
}

// HardwareConfig names the buses shared by all exercises.
type HardwareConfig struct {
	Chip    string    `yaml:"chip"`     // GPIO character device
	I2CBus  string    `yaml:"i2c_bus"`  // periph bus name, "" = first
	SPIPort string    `yaml:"spi_port"` // periph port name, "" = first
	ADC     ADCConfig `yaml:"adc"`
}

// ADC kinds.
const (
	ADCKindADS1115 = "ads1115"
	ADCKindSerial  = "serial"
)

// ADCConfig selects the analog front end.
type ADCConfig struct {
	Kind       string  `yaml:"kind"`
	Addr       uint16  `yaml:"addr"`
	VRef       float64 `yaml:"vref"`
	SerialPort string  `yaml:"serial_port"`
	Baud       int     `yaml:"baud"`
}

// MQTTConfig configures telemetry. An empty broker disables it.
type MQTTConfig struct {
	Broker string `yaml:"broker"`
}

// HTTPConfig configures the status page. An empty address disables it.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// BlinkConfig configures the LED blink-mode exercise.
type BlinkConfig struct {
	ButtonPin  int           `yaml:"button_pin"`
	LEDPin     int           `yaml:"led_pin"`
	Debounce   time.Duration `yaml:"debounce"`
	SlowPeriod time.Duration `yaml:"slow_period"`
	FastPeriod time.Duration `yaml:"fast_period"`
	Poll       time.Duration `yaml:"poll"`
}

// MelodyConfig configures the buzzer melody player.
type MelodyConfig struct {
	ButtonPin  int           `yaml:"button_pin"`
	LEDPin     int           `yaml:"led_pin"`
	BuzzerPin  int           `yaml:"buzzer_pin"`
	PotChannel int           `yaml:"pot_channel"`
	Tempo      int           `yaml:"tempo"`
	VolumeMin  int           `yaml:"volume_min"`
	VolumeMax  int           `yaml:"volume_max"`
	Debounce   time.Duration `yaml:"debounce"`
	Pause      time.Duration `yaml:"pause"`
	Poll       time.Duration `yaml:"poll"`
}

// ThermostatConfig configures the temperature monitoring station.
type ThermostatConfig struct {
	LEDPin          int           `yaml:"led_pin"`
	BuzzerPin       int           `yaml:"buzzer_pin"`
	PotChannel      int           `yaml:"pot_channel"`
	SensorAddr      uint16        `yaml:"sensor_addr"`
	DisplayAddr     uint16        `yaml:"display_addr"`
	LEDFrequency    uint32        `yaml:"led_frequency"`
	BuzzerFrequency uint32        `yaml:"buzzer_frequency"`
	BuzzerDuty      uint16        `yaml:"buzzer_duty"`
	AlarmDelta      float64       `yaml:"alarm_delta"`
	SetpointSamples int           `yaml:"setpoint_samples"`
	BreathingStep   float64       `yaml:"breathing_step"`
	SensorInterval  time.Duration `yaml:"sensor_interval"`
	AlarmBlink      time.Duration `yaml:"alarm_blink"`
	TextBlink       time.Duration `yaml:"text_blink"`
	Scroll          time.Duration `yaml:"scroll"`
	Breathing       time.Duration `yaml:"breathing"`
	Poll            time.Duration `yaml:"poll"`
	Cooldown        time.Duration `yaml:"cooldown"`
}

// BeatsConfig configures the audio beat detector.
type BeatsConfig struct {
	MicChannel     int           `yaml:"mic_channel"`
	Threshold      int           `yaml:"threshold"`
	AverageSamples int           `yaml:"average_samples"`
	HistorySize    int           `yaml:"history_size"`
	ColorMin       uint8         `yaml:"color_min"`
	Fade           float32       `yaml:"fade"`
	MinInterval    time.Duration `yaml:"min_interval"`
	LogInterval    time.Duration `yaml:"log_interval"`
	Poll           time.Duration `yaml:"poll"`
	LogPath        string        `yaml:"log_path"`
}

// ClockConfig configures the servo clock.
type ClockConfig struct {
	ServoPin  int           `yaml:"servo_pin"`
	NTPServer string        `yaml:"ntp_server"`
	UTCOffset time.Duration `yaml:"utc_offset"`
	Update    time.Duration `yaml:"update"`
}

// Default returns the compiled-in configuration.
func Default() *Config {
	return &Config{
		Hardware: HardwareConfig{
			Chip: "gpiochip0",
			ADC: ADCConfig{
				Kind: ADCKindADS1115,
				Addr: 0x48,
				VRef: 3.3,
				Baud: 115200,
			},
		},
		HTTP: HTTPConfig{Addr: ":8080"},
		Blink: BlinkConfig{
			ButtonPin:  18,
			LEDPin:     16,
			Debounce:   200 * time.Millisecond,
			SlowPeriod: 1000 * time.Millisecond,
			FastPeriod: 250 * time.Millisecond,
			Poll:       10 * time.Millisecond,
		},
		Melody: MelodyConfig{
			ButtonPin:  16,
			LEDPin:     20,
			BuzzerPin:  18,
			PotChannel: 2,
			Tempo:      60,
			VolumeMin:  500,
			VolumeMax:  4000,
			Debounce:   300 * time.Millisecond,
			Pause:      time.Second,
			Poll:       5 * time.Millisecond,
		},
		Thermostat: ThermostatConfig{
			LEDPin:          12,
			BuzzerPin:       13,
			PotChannel:      0,
			SensorAddr:      0x38,
			DisplayAddr:     0x3E,
			LEDFrequency:    1000,
			BuzzerFrequency: 2000,
			BuzzerDuty:      32768,
			AlarmDelta:      3.0,
			SetpointSamples: 10,
			BreathingStep:   0.1,
			SensorInterval:  1000 * time.Millisecond,
			AlarmBlink:      125 * time.Millisecond,
			TextBlink:       500 * time.Millisecond,
			Scroll:          300 * time.Millisecond,
			Breathing:       50 * time.Millisecond,
			Poll:            10 * time.Millisecond,
			Cooldown:        2 * time.Second,
		},
		Beats: BeatsConfig{
			MicChannel:     0,
			Threshold:      1500,
			AverageSamples: 50,
			HistorySize:    20,
			ColorMin:       50,
			Fade:           0.85,
			MinInterval:    300 * time.Millisecond,
			LogInterval:    60 * time.Second,
			Poll:           20 * time.Millisecond,
			LogPath:        "bpm_log.txt",
		},
		Clock: ClockConfig{
			ServoPin:  19,
			NTPServer: "pool.ntp.org",
			UTCOffset: 2 * time.Hour,
			Update:    60 * time.Second,
		},
	}
}

// Environment variables read after the YAML file.
const (
	EnvMQTTBroker = "LABKIT_MQTT_BROKER"
	EnvNTPServer  = "LABKIT_NTP_SERVER"
	EnvHTTPAddr   = "LABKIT_HTTP_ADDR"
	EnvBPMLog     = "LABKIT_BPM_LOG"
)

// Load builds the configuration: defaults, then the optional .env file at
// envPath, then the optional YAML file at path, then environment variables.
// Empty paths are skipped; a missing .env file is not an error.
func Load(path, envPath string) (*Config, error) {
	cfg := Default()

	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv(EnvMQTTBroker); ok {
		c.MQTT.Broker = v
	}
	if v, ok := os.LookupEnv(EnvNTPServer); ok {
		c.Clock.NTPServer = v
	}
	if v, ok := os.LookupEnv(EnvHTTPAddr); ok {
		c.HTTP.Addr = v
	}
	if v, ok := os.LookupEnv(EnvBPMLog); ok {
		c.Beats.LogPath = v
	}
}

// Validate rejects configurations no exercise can run with.
func (c *Config) Validate() error {
	var errs []error
	positive := func(name string, d time.Duration) {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", name, d))
		}
	}

	switch c.Hardware.ADC.Kind {
	case ADCKindADS1115:
		if c.Hardware.ADC.VRef <= 0 || c.Hardware.ADC.VRef > 4.096 {
			errs = append(errs, fmt.Errorf("hardware.adc.vref must be in (0, 4.096], got %v", c.Hardware.ADC.VRef))
		}
	case ADCKindSerial:
		if c.Hardware.ADC.SerialPort == "" {
			errs = append(errs, errors.New("hardware.adc.serial_port is required for a serial ADC"))
		}
	default:
		errs = append(errs, fmt.Errorf("hardware.adc.kind: unknown %q", c.Hardware.ADC.Kind))
	}

	positive("blink.debounce", c.Blink.Debounce)
	positive("blink.slow_period", c.Blink.SlowPeriod)
	positive("blink.fast_period", c.Blink.FastPeriod)
	positive("blink.poll", c.Blink.Poll)

	if c.Melody.Tempo <= 0 {
		errs = append(errs, fmt.Errorf("melody.tempo must be positive, got %d", c.Melody.Tempo))
	}
	if c.Melody.VolumeMin < 0 || c.Melody.VolumeMin > c.Melody.VolumeMax || c.Melody.VolumeMax > 65535 {
		errs = append(errs, fmt.Errorf("melody volume range [%d, %d] invalid", c.Melody.VolumeMin, c.Melody.VolumeMax))
	}
	positive("melody.poll", c.Melody.Poll)

	if c.Thermostat.SetpointSamples < 1 {
		errs = append(errs, fmt.Errorf("thermostat.setpoint_samples must be at least 1, got %d", c.Thermostat.SetpointSamples))
	}
	if c.Thermostat.AlarmDelta <= 0 {
		errs = append(errs, fmt.Errorf("thermostat.alarm_delta must be positive, got %v", c.Thermostat.AlarmDelta))
	}
	positive("thermostat.sensor_interval", c.Thermostat.SensorInterval)
	positive("thermostat.alarm_blink", c.Thermostat.AlarmBlink)
	positive("thermostat.text_blink", c.Thermostat.TextBlink)
	positive("thermostat.scroll", c.Thermostat.Scroll)
	positive("thermostat.breathing", c.Thermostat.Breathing)
	positive("thermostat.poll", c.Thermostat.Poll)

	if c.Beats.AverageSamples < 1 {
		errs = append(errs, fmt.Errorf("beats.average_samples must be at least 1, got %d", c.Beats.AverageSamples))
	}
	if c.Beats.HistorySize < 1 {
		errs = append(errs, fmt.Errorf("beats.history_size must be at least 1, got %d", c.Beats.HistorySize))
	}
	if c.Beats.Fade < 0 || c.Beats.Fade > 1 {
		errs = append(errs, fmt.Errorf("beats.fade must be in [0, 1], got %v", c.Beats.Fade))
	}
	positive("beats.poll", c.Beats.Poll)
	positive("beats.log_interval", c.Beats.LogInterval)

	positive("clock.update", c.Clock.Update)
	if c.Clock.NTPServer == "" {
		errs = append(errs, errors.New("clock.ntp_server is required"))
	}

	return errors.Join(errs...)
}
