package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const logLevelEnv = "MIDIHUMANIZE_LOG_LEVEL"

// Config holds everything parsed from the command line
type Config struct {
	Input  string
	Output string

	Method          string
	Preset          string
	Velocity        int
	Timing          float64
	RollProbability float64
	Seed            uint64

	ListPresets bool
	Analyze     bool
	JSON        bool
	AllPresets  bool
	LogLevel    string
	Verbose     bool
	ShowHelp    bool

	// flags given explicitly on the command line
	explicit map[string]bool
}

// flags that never take a value, needed to reorder arguments
var boolFlags = map[string]bool{
	"list-presets": true,
	"analyze":      true,
	"json":         true,
	"all-presets":  true,
	"v":            true,
	"verbose":      true,
	"h":            true,
	"help":         true,
}

func newFlagSet(config *Config) *flag.FlagSet {
	fs := flag.NewFlagSet("midihumanize", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.IntVar(&config.Velocity, "velocity", 10, "max velocity deviation (0-127)")
	fs.Float64Var(&config.Timing, "timing", 0.01, "max timing deviation in beats")
	fs.StringVar(&config.Method, "method", MethodBasic, "humanization method (basic, piano_performance)")
	fs.StringVar(&config.Preset, "preset", "", "preset name, see --list-presets")
	fs.Float64Var(&config.RollProbability, "roll-probability", 0, "chord roll probability override (0.0-1.0, piano_performance only)")
	fs.Uint64Var(&config.Seed, "seed", 0, "random seed for reproducible output (0 = random)")
	fs.BoolVar(&config.ListPresets, "list-presets", false, "list available methods and presets")
	fs.BoolVar(&config.Analyze, "analyze", false, "print a report about the input file instead of humanizing")
	fs.BoolVar(&config.JSON, "json", false, "print the analysis as JSON")
	fs.BoolVar(&config.AllPresets, "all-presets", false, "render every method and preset into the output directory")
	fs.StringVar(&config.LogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	fs.BoolVar(&config.Verbose, "v", false, "verbose output (same as --log-level debug)")
	fs.BoolVar(&config.Verbose, "verbose", false, "verbose output (same as --log-level debug)")
	fs.BoolVar(&config.ShowHelp, "h", false, "show help")
	fs.BoolVar(&config.ShowHelp, "help", false, "show help")

	return fs
}

// ParseArgs parses command line arguments (without the program name).
// Flags may appear before or after the positional arguments.
func ParseArgs(args []string) (*Config, error) {
	config := &Config{explicit: make(map[string]bool)}
	fs := newFlagSet(config)

	if err := fs.Parse(reorderArgs(args)); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			config.ShowHelp = true
			return config, nil
		}
		return nil, &InvalidArgumentError{Name: "arguments", Reason: err.Error()}
	}

	fs.Visit(func(f *flag.Flag) {
		config.explicit[f.Name] = true
	})

	if config.ShowHelp {
		return config, nil
	}

	if config.Verbose {
		config.LogLevel = "debug"
	} else if !config.explicit["log-level"] {
		if level := os.Getenv(logLevelEnv); level != "" {
			config.LogLevel = strings.ToLower(level)
		}
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[config.LogLevel] {
		return nil, &InvalidArgumentError{
			Name:   "log level",
			Value:  config.LogLevel,
			Reason: "must be debug, info, warn, or error",
		}
	}

	if config.ListPresets {
		return config, nil
	}

	positional := fs.Args()

	if config.Analyze {
		if len(positional) != 1 {
			return nil, &InvalidArgumentError{Name: "arguments", Reason: "--analyze takes exactly one input file"}
		}
		config.Input = positional[0]
		return config, nil
	}

	if len(positional) != 2 {
		return nil, &InvalidArgumentError{
			Name:   "arguments",
			Reason: fmt.Sprintf("expected <input> and <output>, got %d argument(s)", len(positional)),
		}
	}
	config.Input = positional[0]
	config.Output = positional[1]

	if config.AllPresets {
		// explicit flags apply to every preset
		for _, method := range ListMethods() {
			for _, preset := range method.Presets {
				if err := config.applyOverrides(preset.Settings).Validate(); err != nil {
					return nil, err
				}
			}
		}
		return config, nil
	}

	if config.explicit["roll-probability"] && config.Method != MethodPiano {
		return nil, &InvalidArgumentError{
			Name:   "roll-probability",
			Value:  strconv.FormatFloat(config.RollProbability, 'g', -1, 64),
			Reason: "only used by the piano_performance method",
		}
	}

	// surface bad values before any file is touched
	if _, err := config.Settings(); err != nil {
		return nil, err
	}

	return config, nil
}

// usesPreset reports whether settings come from the preset table rather
// than directly from --velocity and --timing
func (c *Config) usesPreset() bool {
	return c.Preset != "" || c.Method != MethodBasic
}

// Settings resolves the humanization settings. Without a preset the basic
// method uses --velocity and --timing directly, for onsets and releases
// alike. With a preset, explicitly given flags override the preset values.
func (c *Config) Settings() (Settings, error) {
	var settings Settings

	if c.usesPreset() {
		preset, err := PresetSettings(c.Method, c.Preset)
		if err != nil {
			return Settings{}, err
		}
		settings = preset
		settings = c.applyOverrides(settings)
	} else {
		settings = Settings{
			VelocityRange: c.Velocity,
			NoteOnTiming:  c.Timing,
			NoteOffTiming: c.Timing,
		}
	}

	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}

	return settings, nil
}

// applyOverrides copies explicitly given flags over preset settings
func (c *Config) applyOverrides(settings Settings) Settings {
	if c.explicit["velocity"] {
		settings.VelocityRange = c.Velocity
	}
	if c.explicit["timing"] {
		settings.NoteOnTiming = c.Timing
		settings.NoteOffTiming = c.Timing
	}
	if c.explicit["roll-probability"] {
		settings.ChordRollProbability = c.RollProbability
	}
	return settings
}

// reorderArgs moves flags in front of positional arguments so that
// "in.mid out.mid --velocity 5" parses the same as "--velocity 5 in.mid out.mid"
func reorderArgs(args []string) []string {
	var flags []string
	var positional []string

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if arg == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}

		if len(arg) > 1 && arg[0] == '-' && !isNumber(arg) {
			flags = append(flags, arg)

			name := strings.TrimLeft(arg, "-")
			if strings.Contains(name, "=") || boolFlags[name] {
				continue
			}

			// the value of a flag is the next argument, even when it's a
			// negative number
			if i+1 < len(args) && (!strings.HasPrefix(args[i+1], "-") || isNumber(args[i+1])) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			positional = append(positional, arg)
		}
	}

	flags = append(flags, "--")
	return append(flags, positional...)
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// PrintHelp writes usage information
func PrintHelp(w io.Writer) {
	fmt.Fprintf(w, `midihumanize - make quantized MIDI files sound played

Usage:
  midihumanize [options] <input.mid> <output.mid>
  midihumanize --analyze [--json] <input.mid>
  midihumanize --all-presets <input.mid> <output-dir>
  midihumanize --list-presets

Options:
`)

	config := &Config{}
	fs := newFlagSet(config)
	fs.SetOutput(w)
	fs.PrintDefaults()
}
