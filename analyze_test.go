package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gitlab.com/gomidi/midi/v2"
)

func TestAnalyzeMidi(t *testing.T) {
	midiFile := scaleFile(t, []uint8{64, 70, 80, 90})
	report := AnalyzeMidi(midiFile, encodeSMF(t, midiFile), "scale.mid")

	if report.File != "scale.mid" {
		t.Errorf("Expected file scale.mid, got %s", report.File)
	}
	if report.Format != 1 {
		t.Errorf("Expected format 1, got %d", report.Format)
	}
	if report.Resolution != testResolution {
		t.Errorf("Expected resolution %d, got %d", testResolution, report.Resolution)
	}
	if report.InitialBPM != 120 {
		t.Errorf("Expected 120 BPM, got %v", report.InitialBPM)
	}
	if len(report.Meters) != 1 || report.Meters[0].Numerator != 4 || report.Meters[0].Denominator != 4 {
		t.Errorf("Expected one 4/4 meter, got %v", report.Meters)
	}
	if report.LengthSeconds <= 0 {
		t.Errorf("Expected a positive length, got %v", report.LengthSeconds)
	}
	if report.TotalNotes != 4 {
		t.Errorf("Expected 4 notes, got %d", report.TotalNotes)
	}

	if len(report.Tracks) != 2 {
		t.Fatalf("Expected 2 tracks, got %d", len(report.Tracks))
	}

	piano := report.Tracks[1]
	if piano.Name != "Piano" {
		t.Errorf("Expected track name Piano, got %q", piano.Name)
	}
	if len(piano.Instruments) != 1 || piano.Instruments[0] != "Acoustic Grand Piano" {
		t.Errorf("Expected Acoustic Grand Piano, got %v", piano.Instruments)
	}
	if piano.ControlChange != 2 {
		t.Errorf("Expected 2 control changes, got %d", piano.ControlChange)
	}
	if len(piano.FirstNotes) != 4 || piano.FirstNotes[0].Name != "C4" || piano.FirstNotes[1].Start != 240 {
		t.Errorf("Unexpected note table: %+v", piano.FirstNotes)
	}
}

func TestAnalyzeTrackDrums(t *testing.T) {
	track := buildTrack(
		at(0, midi.NoteOn(gmDrumChannel, 36, 100)),
		at(120, midi.NoteOff(gmDrumChannel, 36)),
	)

	report := analyzeTrack(0, track)

	if !report.IsDrum {
		t.Error("Expected a channel 10 track to be reported as drums")
	}
	if len(report.FirstNotes) != 1 || report.FirstNotes[0].Name != drumName(36) {
		t.Errorf("Expected drum note names, got %+v", report.FirstNotes)
	}
}

func TestAnalyzeLimitsNoteTable(t *testing.T) {
	velocities := make([]uint8, 30)
	for i := range velocities {
		velocities[i] = 80
	}

	report := AnalyzeMidi(scaleFile(t, velocities), nil, "long.mid")
	if len(report.Tracks[1].FirstNotes) != maxReportedNotes {
		t.Errorf("Expected %d notes in the table, got %d", maxReportedNotes, len(report.Tracks[1].FirstNotes))
	}

	var buf bytes.Buffer
	if err := PrintReport(&buf, report, false); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "and 10 more notes") {
		t.Errorf("Expected a note about the remaining notes, got:\n%s", buf.String())
	}
}

func TestPrintReportText(t *testing.T) {
	midiFile := scaleFile(t, []uint8{64})
	report := AnalyzeMidi(midiFile, nil, "scale.mid")

	var buf bytes.Buffer
	if err := PrintReport(&buf, report, false); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{"MIDI File: scale.mid", "Resolution: 480", "Track 0: Tempo", "Track 1: Piano", "Total notes: 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestPrintReportJSON(t *testing.T) {
	midiFile := scaleFile(t, []uint8{64, 65})
	report := AnalyzeMidi(midiFile, nil, "scale.mid")

	var buf bytes.Buffer
	if err := PrintReport(&buf, report, true); err != nil {
		t.Fatal(err)
	}

	var decoded Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Expected valid JSON: %v", err)
	}
	if decoded.TotalNotes != 2 || len(decoded.Tracks) != 2 {
		t.Errorf("Unexpected decoded report: %+v", decoded)
	}
}

func TestPrintReportNoNotes(t *testing.T) {
	report := AnalyzeMidi(buildSMF(t, tempoTrack()), nil, "empty.mid")

	var buf bytes.Buffer
	if err := PrintReport(&buf, report, false); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "no notes found") {
		t.Errorf("Expected a warning about missing notes, got:\n%s", buf.String())
	}
}

func TestPrintPresets(t *testing.T) {
	var buf bytes.Buffer
	PrintPresets(&buf)

	out := buf.String()
	for _, method := range ListMethods() {
		if !strings.Contains(out, "Method: "+method.Name) {
			t.Errorf("Expected method %s in the listing", method.Name)
		}
		for _, preset := range method.Presets {
			if !strings.Contains(out, preset.Name+": "+preset.Description) {
				t.Errorf("Expected preset %s in the listing", preset.Name)
			}
		}
	}
}
