package main

import (
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"
)

// TempoEvent represents a tempo change in the MIDI file
type TempoEvent struct {
	Time uint32  `json:"time"` // Absolute time in ticks
	BPM  float64 `json:"bpm"`
}

// Meter is a time signature change
type Meter struct {
	Time        uint32 `json:"time"`
	Numerator   uint8  `json:"numerator"`
	Denominator uint8  `json:"denominator"`
}

var defaultMeter = Meter{Numerator: 4, Denominator: 4}

// ticksPerQuarter returns the metric resolution of the file, or 0 when the
// file is timed in SMPTE frames and has no notion of beats
func ticksPerQuarter(smfData *smf.SMF) int64 {
	if tf, ok := smfData.TimeFormat.(smf.MetricTicks); ok {
		return int64(tf)
	}
	return 0
}

// extractTempoMap extracts tempo changes from all tracks in the MIDI file
func extractTempoMap(smfData *smf.SMF) []TempoEvent {
	var tempoEvents []TempoEvent

	for _, track := range smfData.Tracks {
		var currentTime uint32

		for _, event := range track {
			currentTime += event.Delta

			var bpm float64
			if event.Message.GetMetaTempo(&bpm) {
				tempoEvents = append(tempoEvents, TempoEvent{
					Time: currentTime,
					BPM:  bpm,
				})
			}
		}
	}

	sort.SliceStable(tempoEvents, func(i, j int) bool {
		return tempoEvents[i].Time < tempoEvents[j].Time
	})

	return tempoEvents
}

// extractMeters collects time signature changes from all tracks, sorted by time
func extractMeters(smfData *smf.SMF) []Meter {
	var meters []Meter

	for _, track := range smfData.Tracks {
		var currentTime uint32

		for _, event := range track {
			currentTime += event.Delta

			var num, denom uint8
			if event.Message.GetMetaMeter(&num, &denom) {
				meters = append(meters, Meter{
					Time:        currentTime,
					Numerator:   num,
					Denominator: denom,
				})
			}
		}
	}

	sort.SliceStable(meters, func(i, j int) bool {
		return meters[i].Time < meters[j].Time
	})

	return meters
}

// findBPMAtTime finds the BPM that applies at a given time
func findBPMAtTime(time uint32, tempoMap []TempoEvent) float64 {
	bpm := 120.0 // Default BPM

	for _, tempo := range tempoMap {
		if tempo.Time <= time {
			bpm = tempo.BPM
		} else {
			break
		}
	}

	return bpm
}

// findMeterAtTime returns the time signature in effect at time, 4/4 if the
// file never sets one
func findMeterAtTime(time int64, meters []Meter) Meter {
	meter := defaultMeter

	for _, m := range meters {
		if int64(m.Time) <= time {
			meter = m
		} else {
			break
		}
	}

	if meter.Numerator == 0 || meter.Denominator == 0 {
		return defaultMeter
	}

	return meter
}
