package main

import (
	"log/slog"
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	minVelocity = 1
	maxVelocity = 127
)

// Stats summarizes what a humanization pass changed
type Stats struct {
	Tracks           int `json:"tracks"`
	Notes            int `json:"notes"`
	VelocityChanges  int `json:"velocityChanges"`
	TimingChanges    int `json:"timingChanges"`
	Chords           int `json:"chords"`
	RolledChords     int `json:"rolledChords"`
	PhraseEndings    int `json:"phraseEndings"`
	ResolvedOverlaps int `json:"resolvedOverlaps"`
}

// Humanizer applies random velocity and timing variation to the notes of a
// MIDI file
type Humanizer struct {
	Method   string
	Settings Settings

	rng    *rand.Rand
	logger *slog.Logger

	// resolution and meters of the file currently being processed
	tpq    int64
	meters []Meter
}

// NewHumanizer creates a humanizer. A seed of 0 picks a random seed so every
// run sounds different; any other seed makes the output reproducible.
func NewHumanizer(method string, settings Settings, seed uint64) (*Humanizer, error) {
	if _, err := findMethod(method); err != nil {
		return nil, err
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	return &Humanizer{
		Method:   method,
		Settings: settings,
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		logger:   GetLogger(),
	}, nil
}

// Humanize modifies every track of midiFile in place
func (h *Humanizer) Humanize(midiFile *smf.SMF) Stats {
	var stats Stats

	h.tpq = ticksPerQuarter(midiFile)
	h.meters = extractMeters(midiFile)

	if h.tpq == 0 {
		h.logger.Warn("file uses SMPTE timing, only velocities will be humanized")
	}

	h.logger.Info("humanizing",
		"method", h.Method,
		"velocity_range", h.Settings.VelocityRange,
		"noteon_timing", h.Settings.NoteOnTiming,
		"noteoff_timing", h.Settings.NoteOffTiming,
		"noteon_ticks", h.beatsToTicks(h.Settings.NoteOnTiming),
		"noteoff_ticks", h.beatsToTicks(h.Settings.NoteOffTiming),
		"resolution", h.tpq,
	)

	for i, track := range midiFile.Tracks {
		tn := extractNotes(track)
		stats.Tracks++

		if len(tn.Notes) == 0 {
			continue
		}

		var trackStats Stats
		switch h.Method {
		case MethodPiano:
			trackStats = h.humanizePiano(tn)
		default:
			trackStats = h.humanizeBasic(tn)
		}

		trackStats.Notes = len(tn.Notes)
		for _, note := range tn.Notes {
			if note.Velocity != note.origVelocity {
				trackStats.VelocityChanges++
			}
			if note.Start != note.origStart || (note.Released() && note.End != note.origEnd) {
				trackStats.TimingChanges++
			}
		}

		h.logger.Info("processed track",
			"track", i,
			"name", getTrackName(track),
			"notes", trackStats.Notes,
			"velocity_changes", trackStats.VelocityChanges,
			"timing_changes", trackStats.TimingChanges,
		)

		midiFile.Tracks[i] = tn.Rebuild()
		stats.add(trackStats)
	}

	return stats
}

func (s *Stats) add(o Stats) {
	s.Notes += o.Notes
	s.VelocityChanges += o.VelocityChanges
	s.TimingChanges += o.TimingChanges
	s.Chords += o.Chords
	s.RolledChords += o.RolledChords
	s.PhraseEndings += o.PhraseEndings
	s.ResolvedOverlaps += o.ResolvedOverlaps
}

// humanizeBasic jitters every note independently
func (h *Humanizer) humanizeBasic(tn *TrackNotes) Stats {
	onTicks := h.beatsToTicks(h.Settings.NoteOnTiming)
	offTicks := h.beatsToTicks(h.Settings.NoteOffTiming)

	for _, note := range tn.Notes {
		velocityOffset := h.randOffset(h.Settings.VelocityRange)
		note.Velocity = clampVelocity(int(note.Velocity) + velocityOffset)

		startOffset := h.randOffset64(onTicks)
		note.Start = max(0, note.Start+startOffset)

		if note.Released() {
			note.End = max(0, note.End+h.randOffset64(offTicks))
		}

		if abs(velocityOffset) > h.Settings.VelocityRange/2 || abs64(startOffset) > onTicks/2 {
			h.logger.Debug("note changed",
				"key", note.Key,
				"velocity", note.origVelocity,
				"new_velocity", note.Velocity,
				"start", note.origStart,
				"new_start", note.Start,
				"duration", note.origEnd-note.origStart,
				"new_duration", note.Duration(),
			)
		}
	}

	return Stats{ResolvedOverlaps: h.finishNotes(tn)}
}

// finishNotes keeps the notes playable after their times were moved: a note
// never ends before it starts, short notes get the minimum duration, and a
// note pushed into the next note on the same key is cut at that note's start
func (h *Humanizer) finishNotes(tn *TrackNotes) int {
	minTicks := h.beatsToTicks(h.Settings.MinDuration)

	for _, note := range tn.Notes {
		if !note.Released() {
			continue
		}
		if note.End < note.Start {
			note.End = note.Start
		}
		if minTicks > 0 && note.End-note.Start < minTicks {
			note.End = note.Start + minTicks
		}
	}

	return resolveOverlaps(tn.Notes, minTicks)
}

// resolveOverlaps shortens notes that now run into the following note of the
// same channel and key. Notes that already overlapped in the source are left
// alone.
func resolveOverlaps(notes []*Note, minTicks int64) int {
	byKey := make(map[uint16][]*Note)
	var ids []uint16
	for _, note := range notes {
		id := noteID(note.Channel, note.Key)
		if _, ok := byKey[id]; !ok {
			ids = append(ids, id)
		}
		byKey[id] = append(byKey[id], note)
	}

	count := 0
	for _, id := range ids {
		keyNotes := byKey[id]
		sort.SliceStable(keyNotes, func(i, j int) bool {
			return keyNotes[i].origStart < keyNotes[j].origStart
		})

		for i := 0; i < len(keyNotes)-1; i++ {
			current, next := keyNotes[i], keyNotes[i+1]
			if !current.Released() || current.origEnd > next.origStart {
				continue
			}

			if current.End > next.Start {
				count++
				current.End = max(current.Start+minTicks, next.Start)
			}
		}
	}

	return count
}

func (h *Humanizer) beatsToTicks(beats float64) int64 {
	if h.tpq <= 0 || beats <= 0 {
		return 0
	}
	return min(int64(beats*float64(h.tpq)), maxDeltaTicks)
}

// randOffset returns a uniform integer in [-n, n]
func (h *Humanizer) randOffset(n int) int {
	if n <= 0 {
		return 0
	}
	return h.rng.IntN(2*n+1) - n
}

func (h *Humanizer) randOffset64(n int64) int64 {
	if n <= 0 {
		return 0
	}
	return h.rng.Int64N(2*n+1) - n
}

// gauss draws from a normal distribution
func (h *Humanizer) gauss(mean, stddev float64) float64 {
	return h.rng.NormFloat64()*stddev + mean
}

func clampVelocity(v int) uint8 {
	if v < minVelocity {
		return minVelocity
	}
	if v > maxVelocity {
		return maxVelocity
	}
	return uint8(v)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
