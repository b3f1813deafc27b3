package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gitlab.com/gomidi/midi/v2/smf"
)

// LoadMidiFile reads and parses a standard MIDI file from disk
func LoadMidiFile(path string) (*smf.SMF, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &FileReadError{Path: path, Err: err}
	}
	defer file.Close()

	midiFile, err := smf.ReadFrom(bufio.NewReader(file))
	if err != nil {
		return nil, &FileReadError{Path: path, Err: fmt.Errorf("not a valid MIDI file: %w", err)}
	}

	return midiFile, nil
}

// SaveMidiFile writes the MIDI file to path, replacing anything already there.
// The data goes to a temporary file in the same directory first and is renamed
// into place, so a failed write never leaves a truncated file at path. A
// replaced file keeps its permissions, a new one gets 0666 minus the umask.
func SaveMidiFile(midiFile *smf.SMF, path string) (err error) {
	dir := filepath.Dir(path)

	mode, created, err := outputMode(path)
	if err != nil {
		return &FileWriteError{Path: path, Err: err}
	}
	if created {
		defer func() {
			if err != nil {
				os.Remove(path)
			}
		}()
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &FileWriteError{Path: path, Err: err}
	}

	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	writer := bufio.NewWriter(tmp)
	if _, err = midiFile.WriteTo(writer); err != nil {
		return &FileWriteError{Path: path, Err: fmt.Errorf("error writing MIDI data: %w", err)}
	}

	if err = writer.Flush(); err != nil {
		return &FileWriteError{Path: path, Err: err}
	}

	if err = tmp.Close(); err != nil {
		return &FileWriteError{Path: path, Err: err}
	}

	if err = os.Chmod(tmpName, mode); err != nil {
		return &FileWriteError{Path: path, Err: err}
	}

	if err = os.Rename(tmpName, path); err != nil {
		return &FileWriteError{Path: path, Err: err}
	}

	return nil
}

// outputMode returns the permissions for the file written to path. When
// nothing exists there yet an empty file is created so the umask applies,
// created reports that it should be removed if the write fails.
func outputMode(path string) (mode os.FileMode, created bool, err error) {
	info, err := os.Stat(path)
	if err == nil {
		return info.Mode().Perm(), false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return 0, false, err
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o666)
	if err != nil {
		return 0, false, err
	}
	info, err = file.Stat()
	file.Close()
	if err != nil {
		os.Remove(path)
		return 0, false, err
	}

	return info.Mode().Perm(), true, nil
}

// LoadMidiBytes reads a MIDI file and keeps its raw bytes, for consumers that
// parse the data themselves
func LoadMidiBytes(path string) (*smf.SMF, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, &FileReadError{Path: path, Err: err}
	}

	midiFile, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, nil, &FileReadError{Path: path, Err: fmt.Errorf("not a valid MIDI file: %w", err)}
	}

	return midiFile, data, nil
}
