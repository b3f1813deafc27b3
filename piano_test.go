package main

import (
	"testing"
)

func TestHumanizePianoPresets(t *testing.T) {
	method, err := findMethod(MethodPiano)
	if err != nil {
		t.Fatal(err)
	}

	for _, preset := range method.Presets {
		t.Run(preset.Name, func(t *testing.T) {
			in := chordFile(t)
			out := cloneSMF(in)

			stats := newTestHumanizer(t, MethodPiano, preset.Settings, 99).Humanize(out)

			if stats.Notes != 56 {
				t.Errorf("Expected 56 notes, got %d", stats.Notes)
			}
			if stats.Chords != 8 {
				t.Errorf("Expected 8 chords, got %d", stats.Chords)
			}

			for i := range in.Tracks {
				if len(in.Tracks[i]) != len(out.Tracks[i]) {
					t.Fatalf("Track %d: expected %d events, got %d", i, len(in.Tracks[i]), len(out.Tracks[i]))
				}
				last := out.Tracks[i][len(out.Tracks[i])-1]
				if !isEndOfTrack(last.Message) {
					t.Errorf("Track %d: end of track is not the last event", i)
				}
			}

			for _, note := range extractNotes(out.Tracks[1]).Notes {
				if note.Velocity < minVelocity || note.Velocity > maxVelocity {
					t.Errorf("Velocity %d out of range", note.Velocity)
				}
				if note.Start < 0 {
					t.Errorf("Negative onset %d", note.Start)
				}
				if note.End < note.Start {
					t.Errorf("Key %d: release %d before onset %d", note.Key, note.End, note.Start)
				}
			}
		})
	}
}

func TestHumanizePianoRollsChords(t *testing.T) {
	settings, err := PresetSettings(MethodPiano, "romantic")
	if err != nil {
		t.Fatal(err)
	}
	settings.ChordRollProbability = 1
	settings.ChordRollProbabilityStd = 1e-9

	midiFile := chordFile(t)
	stats := newTestHumanizer(t, MethodPiano, settings, 5).Humanize(midiFile)

	if stats.RolledChords == 0 {
		t.Error("Expected chords to be rolled")
	}
}

func TestRollChordSpacing(t *testing.T) {
	h := newTestHumanizer(t, MethodPiano, Settings{}, 1)
	h.tpq = testResolution

	chord := notesAt([]int64{100, 100, 100, 100}, []uint8{64, 60, 72, 67})

	h.rollChord(chord, 10, 0, RollUpward)

	expected := map[uint8]int64{60: 100, 64: 110, 67: 120, 72: 130}
	for _, note := range chord {
		if note.Start != expected[note.Key] {
			t.Errorf("Key %d: expected onset %d, got %d", note.Key, expected[note.Key], note.Start)
		}
	}
}

func TestRollChordIgnoresSmallChords(t *testing.T) {
	h := newTestHumanizer(t, MethodPiano, Settings{}, 1)

	chord := notesAt([]int64{100, 100}, []uint8{60, 64})
	h.rollChord(chord, 10, 0, RollUpward)

	for _, note := range chord {
		if note.Start != 100 {
			t.Errorf("Expected two note chords to stay together, key %d moved to %d", note.Key, note.Start)
		}
	}
}

func TestApplyRitardando(t *testing.T) {
	h := newTestHumanizer(t, MethodPiano, Settings{}, 1)
	h.tpq = testResolution

	starts := []int64{0, 1920, 2400}
	notes := notesAt(starts, []uint8{60, 62, 64})
	h.applyRitardando(notes, []*Note{notes[2]})

	if notes[0].Start != 0 {
		t.Errorf("Expected a note far from the ending to stay, got %d", notes[0].Start)
	}
	for i, note := range notes[1:] {
		delay := note.Start - starts[i+1]
		if delay < 5 || delay > 25 {
			t.Errorf("Key %d: expected a delay of 5-25 ticks, got %d", note.Key, delay)
		}
	}
}
