// Command labkit runs the microcontroller lab exercises on a Linux board.
package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/sweeney/labkit/internal/config"
)

// envFile is read before the YAML file when present.
const envFile = ".env"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	var cfg *config.Config

	root := &cobra.Command{
		Use:           "labkit",
		Short:         "Run one of the lab exercises",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configPath, envFile)
			if err != nil {
				return err
			}
			*cfg = *loaded
			return nil
		},
	}
	cfg = config.Default()
	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML configuration file (defaults are compiled in)")

	root.AddCommand(
		newExerciseCmd("blink", "Cycle an LED through off, slow and fast blinking with a button", cfg, runBlink),
		newExerciseCmd("melody", "Play melodies on a buzzer, volume from a potentiometer", cfg, runMelody),
		newExerciseCmd("thermostat", "Temperature station with OLED display and alarm", cfg, runThermostat),
		newExerciseCmd("beats", "Detect beats from a microphone and flash an RGB LED", cfg, runBeats),
		newExerciseCmd("clock", "Point a servo at the current hour using NTP time", cfg, runClock),
		newPrintStateCmd(cfg),
	)
	return root
}

func newExerciseCmd(name, short string, cfg *config.Config, run func(*config.Config) error) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfg)
		},
	}
}

func newPrintStateCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "print-state",
		Short: "Read every configured input once and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printState(cmd.OutOrStdout(), cfg, openHardware(cfg))
		},
	}
}
