package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const testResolution = 480

// timedMessage is an event at an absolute tick, used to build fixtures
type timedMessage struct {
	Time    uint32
	Message smf.Message
}

func at(time uint32, msg []byte) timedMessage {
	return timedMessage{Time: time, Message: smf.Message(msg)}
}

// buildTrack converts absolute times to deltas and closes the track
func buildTrack(messages ...timedMessage) smf.Track {
	track := smf.Track{}
	var lastTime uint32
	for _, m := range messages {
		track = append(track, smf.Event{Delta: m.Time - lastTime, Message: m.Message})
		lastTime = m.Time
	}
	track = append(track, smf.Event{Delta: 0, Message: smf.EOT})
	return track
}

func buildSMF(t testing.TB, tracks ...smf.Track) *smf.SMF {
	t.Helper()

	s := smf.NewSMF1()
	s.TimeFormat = smf.MetricTicks(testResolution)
	for _, track := range tracks {
		if err := s.Add(track); err != nil {
			t.Fatalf("Failed to add track: %v", err)
		}
	}
	return s
}

func tempoTrack() smf.Track {
	return buildTrack(
		at(0, smf.MetaTrackSequenceName("Tempo")),
		at(0, smf.MetaTempo(120)),
		at(0, smf.MetaMeter(4, 4)),
	)
}

// scaleFile builds a two track file: a tempo track and a piano track with one
// sixteenth note per velocity, walking up an octave so the same key only
// comes back every 12 notes
func scaleFile(t testing.TB, velocities []uint8) *smf.SMF {
	t.Helper()

	messages := []timedMessage{
		at(0, smf.MetaTrackSequenceName("Piano")),
		at(0, midi.ProgramChange(0, 0)),
		at(0, midi.ControlChange(0, 7, 100)),
	}

	for i, vel := range velocities {
		key := uint8(60 + i%12)
		start := uint32(i) * 240
		messages = append(messages,
			at(start, midi.NoteOn(0, key, vel)),
			at(start+120, midi.NoteOff(0, key)),
		)
	}

	last := uint32(len(velocities)) * 240
	messages = append(messages, at(last, midi.ControlChange(0, 64, 0)))

	return buildSMF(t, tempoTrack(), buildTrack(messages...))
}

// singleNoteFile is one note at velocity 64 lasting one beat
func singleNoteFile(t testing.TB) *smf.SMF {
	t.Helper()
	return buildSMF(t, buildTrack(
		at(0, midi.NoteOn(0, 60, 64)),
		at(testResolution, midi.NoteOff(0, 60)),
	))
}

// chordFile has block chords in both hands on every beat of two bars
func chordFile(t testing.TB) *smf.SMF {
	t.Helper()

	var messages []timedMessage
	for beat := uint32(0); beat < 8; beat++ {
		start := beat * testResolution
		for _, key := range []uint8{48, 52, 55, 60, 64, 67, 72} {
			messages = append(messages, at(start, midi.NoteOn(0, key, 80)))
		}
		for _, key := range []uint8{48, 52, 55, 60, 64, 67, 72} {
			messages = append(messages, at(start+testResolution-60, midi.NoteOff(0, key)))
		}
	}

	return buildSMF(t, tempoTrack(), buildTrack(messages...))
}

func writeTestFile(t testing.TB, s *smf.SMF, name string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := SaveMidiFile(s, path); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}
	return path
}

func encodeSMF(t testing.TB, s *smf.SMF) []byte {
	t.Helper()

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		t.Fatalf("Failed to encode MIDI: %v", err)
	}
	return buf.Bytes()
}

// cloneSMF deep copies tracks so a file can be compared after being humanized
func cloneSMF(s *smf.SMF) *smf.SMF {
	clone := &smf.SMF{TimeFormat: s.TimeFormat}
	for _, track := range s.Tracks {
		copied := make(smf.Track, len(track))
		for i, event := range track {
			msg := make(smf.Message, len(event.Message))
			copy(msg, event.Message)
			copied[i] = smf.Event{Delta: event.Delta, Message: msg}
		}
		clone.Tracks = append(clone.Tracks, copied)
	}
	return clone
}
