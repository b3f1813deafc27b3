package main

import (
	"fmt"
	"io"
	"os"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code
func run(args []string, stdout, stderr io.Writer) int {
	config, err := ParseArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		fmt.Fprintln(stderr, "run with --help for usage")
		return exitCodeFor(err)
	}

	if config.ShowHelp {
		PrintHelp(stdout)
		return exitOK
	}

	if err := InitLogger(config.LogLevel, stderr); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitInvalidArgs
	}

	switch {
	case config.ListPresets:
		PrintPresets(stdout)
		return exitOK

	case config.Analyze:
		err = analyzeCommand(config, stdout)

	case config.AllPresets:
		err = allPresetsCommand(config)

	default:
		err = humanizeCommand(config)
	}

	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitCodeFor(err)
	}

	return exitOK
}

func analyzeCommand(config *Config, stdout io.Writer) error {
	midiFile, raw, err := LoadMidiBytes(config.Input)
	if err != nil {
		return err
	}

	report := AnalyzeMidi(midiFile, raw, config.Input)
	return PrintReport(stdout, report, config.JSON)
}

func allPresetsCommand(config *Config) error {
	results, err := RenderAllPresets(config.Input, config.Output, config.Seed, config.applyOverrides)
	if err != nil {
		return err
	}

	GetLogger().Info("all presets rendered", "count", len(results), "output_dir", config.Output)
	return nil
}

func humanizeCommand(config *Config) error {
	logger := GetLogger()

	settings, err := config.Settings()
	if err != nil {
		return err
	}

	method := config.Method
	if config.usesPreset() {
		preset := config.Preset
		if preset == "" {
			info, _ := findMethod(method)
			preset = info.DefaultPreset
			logger.Info("no preset specified, using default", "preset", preset)
		}
		logger.Info("using preset", "method", method, "preset", preset)
	}

	logger.Info("loading MIDI file", "path", config.Input)
	stats, err := humanizeFile(config.Input, config.Output, method, settings, config.Seed)
	if err != nil {
		return err
	}

	if stats.Notes == 0 {
		logger.Warn("no notes found in MIDI file, output is an unchanged copy")
	}

	logger.Info("humanization complete",
		"output", config.Output,
		"tracks", stats.Tracks,
		"notes", stats.Notes,
		"velocity_changes", stats.VelocityChanges,
		"timing_changes", stats.TimingChanges,
		"rolled_chords", stats.RolledChords,
		"resolved_overlaps", stats.ResolvedOverlaps,
	)

	return nil
}
