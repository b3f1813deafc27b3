package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// BatchResult is the outcome of rendering one preset
type BatchResult struct {
	Method string
	Preset string
	Output string
	Stats  Stats
	Err    error
}

// presetOutputPath names the file for a method/preset combination after the input
func presetOutputPath(input, outputDir, method, preset string) string {
	base := filepath.Base(input)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if ext == "" {
		ext = ".mid"
	}
	return filepath.Join(outputDir, fmt.Sprintf("%s_%s_%s%s", stem, method, preset, ext))
}

// RenderAllPresets humanizes input once for every method and preset and
// writes each result into outputDir. The input is read fresh for every preset
// so the renders are independent. A non-zero seed is offset per preset to keep
// the renders reproducible without making them identical. override, when not
// nil, adjusts every preset's settings before rendering.
func RenderAllPresets(input, outputDir string, seed uint64, override func(Settings) Settings) ([]BatchResult, error) {
	logger := GetLogger()

	// fail early on an unreadable input instead of once per preset
	if _, err := LoadMidiFile(input); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, &FileWriteError{Path: outputDir, Err: err}
	}

	var results []BatchResult
	var failed int
	var n uint64

	for _, method := range ListMethods() {
		for _, preset := range method.Presets {
			n++
			result := BatchResult{
				Method: method.Name,
				Preset: preset.Name,
				Output: presetOutputPath(input, outputDir, method.Name, preset.Name),
			}

			presetSeed := seed
			if seed != 0 {
				presetSeed = seed + n
			}

			settings := preset.Settings
			if override != nil {
				settings = override(settings)
			}

			result.Stats, result.Err = humanizeFile(input, result.Output, method.Name, settings, presetSeed)
			if result.Err != nil {
				failed++
				logger.Error("preset failed", "method", method.Name, "preset", preset.Name, "error", result.Err)
			} else {
				logger.Info("rendered preset", "method", method.Name, "preset", preset.Name, "output", result.Output)
			}

			results = append(results, result)
		}
	}

	if failed > 0 {
		return results, fmt.Errorf("%d of %d presets failed", failed, len(results))
	}

	return results, nil
}

// humanizeFile runs the whole load, humanize, save pipeline
func humanizeFile(input, output, method string, settings Settings, seed uint64) (Stats, error) {
	humanizer, err := NewHumanizer(method, settings, seed)
	if err != nil {
		return Stats{}, err
	}

	midiFile, err := LoadMidiFile(input)
	if err != nil {
		return Stats{}, err
	}

	stats := humanizer.Humanize(midiFile)

	if err := SaveMidiFile(midiFile, output); err != nil {
		return stats, err
	}

	return stats, nil
}
