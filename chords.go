package main

import (
	"math"
	"sort"
)

const (
	middleC = 60

	// tick tolerances below are expressed at this resolution and scaled to
	// the resolution of the file being processed
	referenceResolution = 480

	chordToleranceTicks = 5
	groupToleranceTicks = 10
	minChordSize        = 3
)

// roll patterns
const (
	RollUpward    = "upward"
	RollDownward  = "downward"
	RollInsideOut = "inside_out"
	RollOutsideIn = "outside_in"
)

// scaleTicks converts a tick count given at 480 ticks per quarter note to the
// resolution tpq
func scaleTicks(ticks int64, tpq int64) int64 {
	if tpq <= 0 {
		return 0
	}
	return int64(math.Round(float64(ticks) * float64(tpq) / referenceResolution))
}

// groupNotesByTiming groups notes whose onsets are within tolerance ticks of
// the first note of a group. Groups come back in the order they were created.
func groupNotesByTiming(notes []*Note, tolerance int64) [][]*Note {
	var groupStarts []int64
	var groups [][]*Note

	for _, note := range notes {
		found := false
		for i, start := range groupStarts {
			diff := note.Start - start
			if diff < 0 {
				diff = -diff
			}
			if diff <= tolerance {
				groups[i] = append(groups[i], note)
				found = true
				break
			}
		}

		if !found {
			groupStarts = append(groupStarts, note.Start)
			groups = append(groups, []*Note{note})
		}
	}

	return groups
}

// detectChords returns groups of three or more notes struck together
func detectChords(notes []*Note, tolerance int64) [][]*Note {
	var chords [][]*Note
	for _, group := range groupNotesByTiming(notes, tolerance) {
		if len(group) >= minChordSize {
			chords = append(chords, group)
		}
	}
	return chords
}

// separateHands splits notes at splitKey, lower notes go to the left hand
func separateHands(notes []*Note, splitKey uint8) (left, right []*Note) {
	for _, note := range notes {
		if note.Key < splitKey {
			left = append(left, note)
		} else {
			right = append(right, note)
		}
	}
	return left, right
}

// detectPhraseEndings treats long notes as the end of a phrase
func detectPhraseEndings(notes []*Note, minDuration int64) []*Note {
	var endings []*Note
	for _, note := range notes {
		if note.Released() && note.Duration() >= minDuration {
			endings = append(endings, note)
		}
	}
	return endings
}

// beatStrength returns the velocity multiplier for a note depending on where
// it falls in the bar
func beatStrength(start int64, tpq int64, meter Meter) float64 {
	if tpq <= 0 {
		return 1.0
	}

	beatTicks := tpq * 4 / int64(meter.Denominator)
	if beatTicks <= 0 {
		return 1.0
	}

	offset := start - int64(meter.Time)
	if offset < 0 {
		offset = 0
	}

	position := float64(offset%beatTicks) / float64(beatTicks)
	beatNumber := (offset / beatTicks) % int64(meter.Numerator)

	if position >= 0.1 {
		return 0.88 // off-beat
	}

	switch {
	case beatNumber == 0:
		return 1.15 // downbeat
	case meter.Numerator >= 4 && meter.Numerator%2 == 0 && beatNumber == int64(meter.Numerator/2):
		return 1.08 // secondary accent, beat 3 in 4/4
	default:
		return 0.95
	}
}

// rollOrder orders the notes of a chord in the sequence they get played
func rollOrder(chord []*Note, pattern string) []*Note {
	sorted := make([]*Note, len(chord))
	copy(sorted, chord)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Key < sorted[j].Key
	})

	switch pattern {
	case RollDownward:
		for i, j := 0, len(sorted)-1; i < j; i, j = i+1, j-1 {
			sorted[i], sorted[j] = sorted[j], sorted[i]
		}
		return sorted

	case RollInsideOut:
		mid := len(sorted) / 2
		order := make([]*Note, 0, len(sorted))
		for i := 0; i < len(sorted); i++ {
			var idx int
			if i%2 == 0 {
				idx = mid + i/2
			} else {
				idx = mid - (i+1)/2
			}
			if idx >= 0 && idx < len(sorted) {
				order = append(order, sorted[idx])
			}
		}
		return order

	case RollOutsideIn:
		order := make([]*Note, 0, len(sorted))
		left, right := 0, len(sorted)-1
		fromLeft := true
		for left <= right {
			if fromLeft {
				order = append(order, sorted[left])
				left++
			} else {
				order = append(order, sorted[right])
				right--
			}
			fromLeft = !fromLeft
		}
		return order

	default:
		return sorted
	}
}

func chordSpan(chord []*Note) int {
	lowest, highest := chord[0].Key, chord[0].Key
	for _, note := range chord[1:] {
		if note.Key < lowest {
			lowest = note.Key
		}
		if note.Key > highest {
			highest = note.Key
		}
	}
	return int(highest) - int(lowest)
}
