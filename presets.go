package main

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// humanization methods
const (
	MethodBasic = "basic"
	MethodPiano = "piano_performance"
)

// Settings controls how much a performance is disturbed. Timing values are in
// beats (quarter notes) and get converted to ticks using the file resolution.
type Settings struct {
	VelocityRange int     `json:"velocityRange"`
	NoteOnTiming  float64 `json:"noteOnTiming"`
	NoteOffTiming float64 `json:"noteOffTiming"`
	MinDuration   float64 `json:"minDuration"`

	// piano_performance only
	ChordRollProbability     float64 `json:"chordRollProbability,omitempty"`
	ChordRollProbabilityStd  float64 `json:"chordRollProbabilityStd,omitempty"`
	ChordRollMeanTiming      float64 `json:"chordRollMeanTiming,omitempty"`
	ChordRollStdTiming       float64 `json:"chordRollStdTiming,omitempty"`
	HandSeparation           bool    `json:"handSeparation,omitempty"`
	LeftHandTimingFactor     float64 `json:"leftHandTimingFactor,omitempty"`
	RightHandVelocityFactor  float64 `json:"rightHandVelocityFactor,omitempty"`
	BeatAccenting            bool    `json:"beatAccenting,omitempty"`
	ChordVelocityCorrelation bool    `json:"chordVelocityCorrelation,omitempty"`
	JazzChordEmphasis        bool    `json:"jazzChordEmphasis,omitempty"`
}

// Preset is a named group of settings for a method
type Preset struct {
	Name        string
	Description string
	Settings    Settings
}

// MethodInfo describes a humanization method and its presets
type MethodInfo struct {
	Name          string
	Title         string
	Description   string
	DefaultPreset string
	Presets       []Preset
}

var humanizationMethods = []MethodInfo{
	{
		Name:          MethodBasic,
		Title:         "Basic Randomization",
		Description:   "Simple velocity and timing randomization",
		DefaultPreset: "medium",
		Presets: []Preset{
			{
				Name:        "minimal",
				Description: "Very subtle humanization - barely noticeable variations",
				Settings: Settings{
					VelocityRange: 5,
					NoteOnTiming:  0.005,
					NoteOffTiming: 0.002,
					MinDuration:   1.0 / 32,
				},
			},
			{
				Name:        "medium",
				Description: "Moderate humanization - natural musical variations",
				Settings: Settings{
					VelocityRange: 10,
					NoteOnTiming:  0.01,
					NoteOffTiming: 0.005,
					MinDuration:   1.0 / 32,
				},
			},
			{
				Name:        "aggressive",
				Description: "Strong humanization - pronounced expressive variations",
				Settings: Settings{
					VelocityRange: 20,
					NoteOnTiming:  0.02,
					NoteOffTiming: 0.01,
					MinDuration:   1.0 / 32,
				},
			},
		},
	},
	{
		Name:          MethodPiano,
		Title:         "Advanced Piano Performance",
		Description:   "Piano performance with chord rolling, hand separation and beat accents",
		DefaultPreset: "classical",
		Presets: []Preset{
			{
				Name:        "classical",
				Description: "Classical style with barely perceptible chord rolling and hand independence",
				Settings: Settings{
					VelocityRange:            12,
					NoteOnTiming:             0.008,
					NoteOffTiming:            0.004,
					MinDuration:              1.0 / 32,
					ChordRollProbability:     0.05,
					ChordRollProbabilityStd:  0.015,
					ChordRollMeanTiming:      0.0002,
					ChordRollStdTiming:       0.0001,
					HandSeparation:           true,
					LeftHandTimingFactor:     0.7,
					RightHandVelocityFactor:  1.2,
					BeatAccenting:            true,
					ChordVelocityCorrelation: true,
				},
			},
			{
				Name:        "romantic",
				Description: "Romantic style with subtle expressive chord rolling and rubato",
				Settings: Settings{
					VelocityRange:            18,
					NoteOnTiming:             0.015,
					NoteOffTiming:            0.008,
					MinDuration:              1.0 / 32,
					ChordRollProbability:     0.08,
					ChordRollProbabilityStd:  0.025,
					ChordRollMeanTiming:      0.0003,
					ChordRollStdTiming:       0.0002,
					HandSeparation:           true,
					LeftHandTimingFactor:     0.6,
					RightHandVelocityFactor:  1.4,
					BeatAccenting:            true,
					ChordVelocityCorrelation: true,
				},
			},
			{
				Name:        "jazz",
				Description: "Jazz style with varied chord rolling and swing feel",
				Settings: Settings{
					VelocityRange:            15,
					NoteOnTiming:             0.012,
					NoteOffTiming:            0.006,
					MinDuration:              1.0 / 32,
					ChordRollProbability:     0.12,
					ChordRollProbabilityStd:  0.04,
					ChordRollMeanTiming:      0.0004,
					ChordRollStdTiming:       0.0003,
					HandSeparation:           true,
					LeftHandTimingFactor:     0.8,
					RightHandVelocityFactor:  1.3,
					BeatAccenting:            true,
					ChordVelocityCorrelation: true,
					JazzChordEmphasis:        true,
				},
			},
		},
	},
}

// ListMethods returns every humanization method with its presets
func ListMethods() []MethodInfo {
	return humanizationMethods
}

func findMethod(method string) (*MethodInfo, error) {
	for i := range humanizationMethods {
		if humanizationMethods[i].Name == method {
			return &humanizationMethods[i], nil
		}
	}

	var names []string
	for _, m := range humanizationMethods {
		names = append(names, m.Name)
	}
	sort.Strings(names)

	return nil, &InvalidArgumentError{
		Name:   "method",
		Value:  method,
		Reason: fmt.Sprintf("available: %s", strings.Join(names, ", ")),
	}
}

// PresetSettings looks up the settings of a preset. An empty preset name
// selects the method's default preset.
func PresetSettings(method, preset string) (Settings, error) {
	info, err := findMethod(method)
	if err != nil {
		return Settings{}, err
	}

	if preset == "" {
		preset = info.DefaultPreset
	}

	var names []string
	for _, p := range info.Presets {
		if p.Name == preset {
			return p.Settings, nil
		}
		names = append(names, p.Name)
	}

	return Settings{}, &InvalidArgumentError{
		Name:   "preset",
		Value:  preset,
		Reason: fmt.Sprintf("unknown preset for method %s, available: %s", method, strings.Join(names, ", ")),
	}
}

// maxTimingBeats keeps any timing bound within maxDeltaTicks at the highest
// metric resolution an SMF header can declare (0x7FFF ticks per quarter)
const maxTimingBeats = 8192

// Validate checks that all ranges are usable
func (s Settings) Validate() error {
	if s.VelocityRange < 0 || s.VelocityRange > 127 {
		return &InvalidArgumentError{
			Name:   "velocity",
			Value:  fmt.Sprint(s.VelocityRange),
			Reason: "must be between 0 and 127",
		}
	}

	timings := []struct {
		name  string
		value float64
	}{
		{"timing", s.NoteOnTiming},
		{"note-off timing", s.NoteOffTiming},
		{"minimum duration", s.MinDuration},
	}
	for _, tm := range timings {
		if tm.value < 0 || math.IsNaN(tm.value) || math.IsInf(tm.value, 0) {
			return &InvalidArgumentError{
				Name:   tm.name,
				Value:  fmt.Sprint(tm.value),
				Reason: "must be a non-negative number of beats",
			}
		}
		if tm.value > maxTimingBeats {
			return &InvalidArgumentError{
				Name:   tm.name,
				Value:  fmt.Sprint(tm.value),
				Reason: fmt.Sprintf("must be at most %d beats", maxTimingBeats),
			}
		}
	}

	if s.ChordRollProbability < 0 || s.ChordRollProbability > 1 {
		return &InvalidArgumentError{
			Name:   "roll-probability",
			Value:  fmt.Sprint(s.ChordRollProbability),
			Reason: "must be between 0.0 and 1.0",
		}
	}

	return nil
}
