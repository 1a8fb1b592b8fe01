package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/labkit/internal/config"
	"github.com/sweeney/labkit/internal/mqtt"
	"github.com/sweeney/labkit/internal/status"
	"github.com/sweeney/labkit/internal/web"
)

// defaultCooldown is the pause after a failed step for exercises without
// their own setting.
const defaultCooldown = 2 * time.Second

// exercise is one lab program driven by runLoop.
type exercise interface {
	// Step runs one loop iteration at now.
	Step(now time.Time) (report, error)

	// Recover puts outputs in a safe state after a failed step.
	Recover(err error)
}

// report is what a step tells the outside world.
type report struct {
	Mode     string
	Readings []status.Reading
	Lines    [2]string
	Events   []mqtt.Event // Timestamp and Exercise are filled by runLoop
}

// loopConfig holds the timing of one exercise.
type loopConfig struct {
	Name     string
	Poll     time.Duration
	Cooldown time.Duration
}

// serve publishes lifecycle events, starts the status page and runs ex until
// SIGINT or SIGTERM.
func serve(cfg *config.Config, lc loopConfig, ex exercise) error {
	publisher, mqttStatus := newPublisher(cfg.MQTT.Broker, lc.Name)
	defer publisher.Close()

	tracker := status.NewTracker(lc.Name, time.Now(), status.Config{
		PollMs:   lc.Poll.Milliseconds(),
		Broker:   cfg.MQTT.Broker,
		HTTPAddr: cfg.HTTP.Addr,
	})

	startup := mqtt.SystemEvent{
		Timestamp: time.Now(),
		Event:     mqtt.EventStartup,
		Exercise:  lc.Name,
		Retained:  true,
	}
	if err := publisher.PublishSystem(startup); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	}

	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTP.Addr)
	}

	log.Printf("started: exercise=%s poll=%v broker=%q", lc.Name, lc.Poll, cfg.MQTT.Broker)

	ticker := time.NewTicker(lc.Poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(lc, ex, publisher, mqttStatus, tracker, time.Now, ticker.C, sigCh)
}

// newPublisher connects to broker. An empty broker, or one the client
// refuses outright, disables telemetry.
func newPublisher(broker, exercise string) (mqtt.Publisher, mqtt.ConnectionStatus) {
	if broker == "" {
		return mqtt.Nop{}, mqtt.Nop{}
	}
	p, err := mqtt.NewRealPublisher(broker, exercise)
	if err != nil {
		log.Printf("mqtt disabled: %v", err)
		return mqtt.Nop{}, mqtt.Nop{}
	}
	return p, p
}

func runLoop(lc loopConfig, ex exercise, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	var resumeAt time.Time

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     mqtt.EventShutdown,
				Exercise:  lc.Name,
				Reason:    signalName(s),
				Retained:  true,
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			if t.Before(resumeAt) {
				continue
			}

			r, err := step(ex, t)
			if err != nil {
				log.Printf("step error: %v", err)
				ex.Recover(err)
				if tracker != nil {
					tracker.RecordFault(err.Error())
				}
				resumeAt = t.Add(lc.Cooldown)
				continue
			}

			for _, event := range r.Events {
				event.Timestamp = t
				event.Exercise = lc.Name
				log.Printf("event: %s %v", event.Type, event.Fields)
				if err := publisher.Publish(event); err != nil {
					log.Printf("publish error: %v", err)
				}
				if tracker != nil {
					tracker.RecordEvent()
				}
			}

			if tracker != nil {
				tracker.Update(r.Mode, r.Readings...)
				tracker.SetLines(r.Lines)
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
			}
		}
	}
}

// step runs ex.Step, turning a panic into an error.
func step(ex exercise, t time.Time) (r report, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return ex.Step(t)
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}
