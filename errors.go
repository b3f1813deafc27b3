package main

import (
	"errors"
	"fmt"
)

// FileReadError is returned when the input MIDI file is missing, unreadable
// or not a well formed standard MIDI file
type FileReadError struct {
	Path string
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Path, e.Err)
}

func (e *FileReadError) Unwrap() error {
	return e.Err
}

// FileWriteError is returned when the output file can't be created or written
type FileWriteError struct {
	Path string
	Err  error
}

func (e *FileWriteError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *FileWriteError) Unwrap() error {
	return e.Err
}

// InvalidArgumentError reports a bad command line value. These are detected
// before any file is touched.
type InvalidArgumentError struct {
	Name   string
	Value  string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Name, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Name, e.Value, e.Reason)
}

// exit codes
const (
	exitOK          = 0
	exitFailure     = 1
	exitInvalidArgs = 2
)

// exitCodeFor maps an error from the pipeline to the process exit status
func exitCodeFor(err error) int {
	if err == nil {
		return exitOK
	}

	var argErr *InvalidArgumentError
	if errors.As(err, &argErr) {
		return exitInvalidArgs
	}

	return exitFailure
}
