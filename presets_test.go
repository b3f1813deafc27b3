package main

import (
	"math"
	"testing"
)

func TestPresetSettings(t *testing.T) {
	tests := []struct {
		method, preset string
		velocity       int
		onTiming       float64
	}{
		{MethodBasic, "minimal", 5, 0.005},
		{MethodBasic, "medium", 10, 0.01},
		{MethodBasic, "", 10, 0.01},
		{MethodBasic, "aggressive", 20, 0.02},
		{MethodPiano, "romantic", 18, 0.015},
	}

	for _, tt := range tests {
		t.Run(tt.method+"/"+tt.preset, func(t *testing.T) {
			settings, err := PresetSettings(tt.method, tt.preset)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if settings.VelocityRange != tt.velocity {
				t.Errorf("Expected velocity range %d, got %d", tt.velocity, settings.VelocityRange)
			}
			if settings.NoteOnTiming != tt.onTiming {
				t.Errorf("Expected note-on timing %v, got %v", tt.onTiming, settings.NoteOnTiming)
			}
		})
	}
}

func TestPresetSettingsUnknown(t *testing.T) {
	if _, err := PresetSettings(MethodBasic, "romantic"); exitCodeFor(err) != exitInvalidArgs {
		t.Errorf("Expected invalid argument error for a preset of another method, got %v", err)
	}
	if _, err := PresetSettings("swing", ""); exitCodeFor(err) != exitInvalidArgs {
		t.Errorf("Expected invalid argument error for an unknown method, got %v", err)
	}
}

func TestPresetsAreValid(t *testing.T) {
	for _, method := range ListMethods() {
		found := false
		for _, preset := range method.Presets {
			if err := preset.Settings.Validate(); err != nil {
				t.Errorf("%s/%s: %v", method.Name, preset.Name, err)
			}
			if preset.Name == method.DefaultPreset {
				found = true
			}
		}
		if !found {
			t.Errorf("%s: default preset %q does not exist", method.Name, method.DefaultPreset)
		}
	}
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		valid    bool
	}{
		{"zero", Settings{}, true},
		{"max velocity", Settings{VelocityRange: 127}, true},
		{"velocity too large", Settings{VelocityRange: 128}, false},
		{"negative velocity", Settings{VelocityRange: -1}, false},
		{"negative timing", Settings{NoteOnTiming: -0.01}, false},
		{"NaN timing", Settings{NoteOnTiming: math.NaN()}, false},
		{"infinite release timing", Settings{NoteOffTiming: math.Inf(1)}, false},
		{"negative min duration", Settings{MinDuration: -1}, false},
		{"roll probability one", Settings{ChordRollProbability: 1}, true},
		{"negative roll probability", Settings{ChordRollProbability: -0.1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.settings.Validate()
			if tt.valid && err != nil {
				t.Errorf("Expected valid, got %v", err)
			}
			if !tt.valid && err == nil {
				t.Error("Expected an error")
			}
		})
	}
}
