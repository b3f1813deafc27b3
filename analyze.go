package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sinshu/go-meltysynth/meltysynth"
	"gitlab.com/gomidi/midi/v2/smf"
)

const maxReportedNotes = 20

// Report describes the content of a MIDI file
type Report struct {
	File          string        `json:"file"`
	Format        int           `json:"format"`
	TimeFormat    string        `json:"timeFormat"`
	Resolution    int64         `json:"resolution"`
	Tempos        []TempoEvent  `json:"tempos"`
	Meters        []Meter       `json:"timeSignatures"`
	KeySignatures int           `json:"keySignatures"`
	InitialBPM    float64       `json:"initialBpm"`
	LengthSeconds float64       `json:"lengthSeconds"`
	TotalNotes    int           `json:"totalNotes"`
	Tracks        []TrackReport `json:"tracks"`
}

// TrackReport describes a single track
type TrackReport struct {
	Index         int          `json:"index"`
	Name          string       `json:"name,omitempty"`
	Events        int          `json:"events"`
	Notes         int          `json:"notes"`
	ControlChange int          `json:"controlChanges"`
	Channels      []uint8      `json:"channels,omitempty"`
	Instruments   []string     `json:"instruments,omitempty"`
	IsDrum        bool         `json:"isDrum"`
	FirstNotes    []NoteReport `json:"firstNotes,omitempty"`
}

// NoteReport is one row of the note table
type NoteReport struct {
	Start    int64  `json:"start"`
	End      int64  `json:"end"`
	Duration int64  `json:"duration"`
	Key      uint8  `json:"key"`
	Velocity uint8  `json:"velocity"`
	Name     string `json:"name"`
}

// AnalyzeMidi builds a report for a parsed MIDI file. raw is the file content
// and is only used to compute the playback length.
func AnalyzeMidi(midiFile *smf.SMF, raw []byte, filename string) *Report {
	tempos := extractTempoMap(midiFile)

	report := &Report{
		File:       filename,
		Format:     int(midiFile.Format()),
		TimeFormat: fmt.Sprint(midiFile.TimeFormat),
		Resolution: ticksPerQuarter(midiFile),
		Tempos:     tempos,
		Meters:     extractMeters(midiFile),
		InitialBPM: findBPMAtTime(0, tempos),
	}

	if len(raw) > 0 {
		length, err := playbackLength(raw)
		if err != nil {
			GetLogger().Warn("could not compute playback length", "error", err)
		} else {
			report.LengthSeconds = length
		}
	}

	for i, track := range midiFile.Tracks {
		trackReport := analyzeTrack(i, track)
		report.TotalNotes += trackReport.Notes

		for _, event := range track {
			if event.Message.Type() == smf.MetaKeySigMsg {
				report.KeySignatures++
			}
		}

		report.Tracks = append(report.Tracks, trackReport)
	}

	return report
}

// playbackLength runs the file through the meltysynth sequencer's parser,
// which resolves tempo changes into wall clock time
func playbackLength(raw []byte) (float64, error) {
	midi, err := meltysynth.NewMidiFile(bytes.NewReader(raw))
	if err != nil {
		return 0, fmt.Errorf("failed to parse MIDI for length: %w", err)
	}
	return midi.GetLength().Seconds(), nil
}

func analyzeTrack(index int, track smf.Track) TrackReport {
	report := TrackReport{
		Index:  index,
		Name:   getTrackName(track),
		Events: len(track),
	}

	channels := make(map[uint8]bool)
	instruments := make(map[string]bool)

	for _, event := range track {
		msg := event.Message
		var ch, key, val uint8

		if msg.GetNoteOn(&ch, &key, &val) {
			channels[ch] = true
		} else if msg.GetNoteOff(&ch, &key, &val) {
			channels[ch] = true
		} else if msg.GetControlChange(&ch, &key, &val) {
			report.ControlChange++
			channels[ch] = true
		} else if msg.GetProgramChange(&ch, &val) {
			channels[ch] = true
			if ch != gmDrumChannel {
				instruments[getGMInstrument(val)] = true
			}
		}
	}

	for ch := range channels {
		report.Channels = append(report.Channels, ch)
	}
	sort.Slice(report.Channels, func(i, j int) bool {
		return report.Channels[i] < report.Channels[j]
	})
	report.IsDrum = len(report.Channels) == 1 && report.Channels[0] == gmDrumChannel

	for name := range instruments {
		report.Instruments = append(report.Instruments, name)
	}
	sort.Strings(report.Instruments)

	tn := extractNotes(track)
	report.Notes = len(tn.Notes)

	for _, note := range tn.Notes {
		if len(report.FirstNotes) >= maxReportedNotes {
			break
		}

		name := noteName(note.Key)
		if note.Channel == gmDrumChannel {
			name = drumName(note.Key)
		}

		report.FirstNotes = append(report.FirstNotes, NoteReport{
			Start:    note.Start,
			End:      note.End,
			Duration: note.Duration(),
			Key:      note.Key,
			Velocity: note.Velocity,
			Name:     name,
		})
	}

	return report
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7aa2f7"))
	headingStyle = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#777"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0af68"))
)

// PrintReport writes the report as text, or as indented JSON
func PrintReport(w io.Writer, report *Report, jsonOutput bool) error {
	if jsonOutput {
		jsonData, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("error marshaling to JSON: %w", err)
		}
		fmt.Fprintln(w, string(jsonData))
		return nil
	}

	fmt.Fprintln(w, titleStyle.Render("MIDI File: "+report.File))
	fmt.Fprintf(w, "Format: %d\n", report.Format)
	if report.Resolution > 0 {
		fmt.Fprintf(w, "Resolution: %d ticks per beat\n", report.Resolution)
	} else {
		fmt.Fprintf(w, "Time format: %s\n", report.TimeFormat)
	}
	fmt.Fprintf(w, "Tempos: %d (initial %.1f BPM)\n", len(report.Tempos), report.InitialBPM)
	fmt.Fprintf(w, "Time signatures: %d\n", len(report.Meters))
	fmt.Fprintf(w, "Key signatures: %d\n", report.KeySignatures)
	fmt.Fprintf(w, "Length: %.2f seconds\n", report.LengthSeconds)
	fmt.Fprintf(w, "Tracks: %d\n", len(report.Tracks))
	fmt.Fprintf(w, "Total notes: %d\n", report.TotalNotes)
	fmt.Fprintln(w)

	for _, track := range report.Tracks {
		name := track.Name
		if name == "" {
			name = "Unnamed"
		}
		fmt.Fprintln(w, headingStyle.Render(fmt.Sprintf("Track %d: %s", track.Index, name)))
		fmt.Fprintf(w, "  Events: %d, Notes: %d, Control changes: %d\n", track.Events, track.Notes, track.ControlChange)

		if len(track.Channels) > 0 {
			var channels []string
			for _, ch := range track.Channels {
				channels = append(channels, fmt.Sprint(ch))
			}
			fmt.Fprintf(w, "  Channels: %s", strings.Join(channels, ", "))
			if track.IsDrum {
				fmt.Fprint(w, " (drums)")
			}
			fmt.Fprintln(w)
		}

		if len(track.Instruments) > 0 {
			fmt.Fprintf(w, "  Instruments: %s\n", strings.Join(track.Instruments, ", "))
		}

		if len(track.FirstNotes) > 0 {
			fmt.Fprintln(w, dimStyle.Render("      #     Start       End  Duration  Pitch  Vel  Note"))
			for i, note := range track.FirstNotes {
				fmt.Fprintf(w, "    %3d  %8d  %8d  %8d  %5d  %3d  %s\n",
					i, note.Start, note.End, note.Duration, note.Key, note.Velocity, note.Name)
			}
			if track.Notes > len(track.FirstNotes) {
				fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("    ... and %d more notes", track.Notes-len(track.FirstNotes))))
			}
		}

		fmt.Fprintln(w)
	}

	if report.TotalNotes == 0 {
		fmt.Fprintln(w, warnStyle.Render("Warning: no notes found in MIDI file"))
	}

	return nil
}

// PrintPresets lists every method with its presets
func PrintPresets(w io.Writer) {
	fmt.Fprintln(w, titleStyle.Render("Available humanization methods and presets:"))

	for _, method := range ListMethods() {
		fmt.Fprintln(w)
		fmt.Fprintln(w, headingStyle.Render("Method: "+method.Name))
		fmt.Fprintf(w, "Description: %s\n", method.Description)
		fmt.Fprintln(w, "Presets:")
		for _, preset := range method.Presets {
			marker := ""
			if preset.Name == method.DefaultPreset {
				marker = dimStyle.Render(" (default)")
			}
			fmt.Fprintf(w, "  %s: %s%s\n", preset.Name, preset.Description, marker)
		}
	}
}
