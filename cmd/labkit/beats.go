package main

import (
	"fmt"
	"log"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/sweeney/labkit/internal/beat"
	"github.com/sweeney/labkit/internal/config"
	"github.com/sweeney/labkit/internal/filter"
	"github.com/sweeney/labkit/internal/mqtt"
	"github.com/sweeney/labkit/internal/pixel"
	"github.com/sweeney/labkit/internal/status"
)

type beatsExercise struct {
	det     *beat.Detector
	mic     filter.Source
	avg     *filter.Average
	px      pixel.Pixel
	log     beat.Recorder

	color  pixel.Color
	primed bool
}

func (e *beatsExercise) Step(now time.Time) (report, error) {
	level, err := e.mic.Read()
	if err != nil {
		return report{}, fmt.Errorf("read microphone: %w", err)
	}
	// The average covers the previous window, not the current sample.
	average := e.avg.Value()
	e.avg.Add(level)

	out := e.det.Step(now, level, average)
	if !e.primed || out.Color != e.color {
		if err := e.px.Write(out.Color); err != nil {
			return report{}, fmt.Errorf("write pixel: %w", err)
		}
		e.color = out.Color
		e.primed = true
	}

	r := report{
		Mode: "LISTENING",
		Readings: []status.Reading{
			{Name: "level", Value: strconv.Itoa(int(level))},
			{Name: "average", Value: strconv.Itoa(int(average))},
			{Name: "bpm", Value: fmt.Sprintf("%.1f", out.BPM)},
			{Name: "beats", Value: strconv.Itoa(e.det.Beats())},
			{Name: "color", Value: out.Color.String()},
		},
	}
	if out.Beat && out.BPM > 0 {
		log.Printf("beat: bpm=%.1f color=%s", out.BPM, out.Color)
	}
	if out.Report {
		if err := e.log.Record(now, out.ReportBPM); err != nil {
			log.Printf("bpm log error: %v", err)
		} else {
			log.Printf("bpm %.2f recorded", out.ReportBPM)
		}
		r.Events = append(r.Events, mqtt.Event{
			Type:   "BPM",
			Fields: map[string]any{"bpm": out.ReportBPM},
		})
	}
	return r, nil
}

func (e *beatsExercise) Recover(error) {
	e.primed = false
	if err := e.px.Write(pixel.Color{}); err != nil {
		log.Printf("pixel off: %v", err)
	}
}

func buildBeats(cfg config.BeatsConfig, hw hardware, rng *rand.Rand, now time.Time) (*beatsExercise, closers, error) {
	var cl closers
	mic, err := hw.ADC(cfg.MicChannel)
	if err != nil {
		return nil, cl, openErr("microphone", err)
	}
	cl.add(mic)
	px, err := hw.Pixel()
	if err != nil {
		return nil, cl, openErr("pixel", err)
	}
	cl.add(px)

	// One burst primes the rolling window; each step then adds one sample.
	avg := filter.NewAverage(cfg.AverageSamples)
	if err := avg.Fill(mic, cfg.AverageSamples); err != nil {
		return nil, cl, openErr("microphone average", err)
	}

	return &beatsExercise{
		det: beat.NewDetector(cfg, rng, now),
		mic: mic,
		avg: avg,
		px:  px,
		log: beat.NewFileLog(cfg.LogPath),
	}, cl, nil
}

func runBeats(cfg *config.Config) error {
	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	ex, cl, err := buildBeats(cfg.Beats, openHardware(cfg), rng, time.Now())
	defer closeAll(cl)
	if err != nil {
		return err
	}
	log.Printf("bpm log: %s", cfg.Beats.LogPath)
	return serve(cfg, loopConfig{Name: "beats", Poll: cfg.Beats.Poll, Cooldown: defaultCooldown}, ex)
}
