package main

import (
	"bytes"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// Note is a note-on event paired with the release that ends it. Times are
// absolute ticks from the start of the track.
type Note struct {
	Channel  uint8
	Key      uint8
	Velocity uint8
	Start    int64
	End      int64 // only meaningful when the note has a release

	onIndex  int // index of the note-on in the source track
	offIndex int // index of the release, -1 if the note is never released

	origVelocity uint8
	origStart    int64
	origEnd      int64
}

// Released reports whether a note-off (or zero velocity note-on) was found for the note
func (n *Note) Released() bool {
	return n.offIndex >= 0
}

// Duration in ticks, zero for notes that are never released
func (n *Note) Duration() int64 {
	if !n.Released() {
		return 0
	}
	return n.End - n.Start
}

// TrackNotes is a track unpacked into absolute times with its notes paired up
type TrackNotes struct {
	Events []smf.Event
	Times  []int64 // absolute time of each event in Events
	Notes  []*Note // in order of their note-on events
}

// noteID identifies a sounding key on a channel
func noteID(channel, key uint8) uint16 {
	return uint16(channel)<<7 | uint16(key)
}

// extractNotes converts delta times to absolute times and pairs every note-on
// with the first following release of the same channel and key
func extractNotes(track smf.Track) *TrackNotes {
	tn := &TrackNotes{
		Events: track,
		Times:  make([]int64, len(track)),
	}

	pending := make(map[uint16][]*Note)

	var currentTime int64
	for i, event := range track {
		currentTime += int64(event.Delta)
		tn.Times[i] = currentTime

		msg := event.Message
		var ch, key, vel uint8

		if msg.GetNoteStart(&ch, &key, &vel) {
			note := &Note{
				Channel:      ch,
				Key:          key,
				Velocity:     vel,
				Start:        currentTime,
				End:          currentTime,
				onIndex:      i,
				offIndex:     -1,
				origVelocity: vel,
				origStart:    currentTime,
				origEnd:      currentTime,
			}
			tn.Notes = append(tn.Notes, note)
			id := noteID(ch, key)
			pending[id] = append(pending[id], note)
		} else if msg.GetNoteEnd(&ch, &key) {
			id := noteID(ch, key)
			queue := pending[id]
			if len(queue) == 0 {
				// stray release, left where it is
				continue
			}

			note := queue[0]
			pending[id] = queue[1:]

			note.End = currentTime
			note.origEnd = currentTime
			note.offIndex = i
		}
	}

	return tn
}

func isEndOfTrack(msg smf.Message) bool {
	return bytes.Equal(msg, smf.EOT)
}

// maxDeltaTicks is the largest delta time a variable length quantity can hold
const maxDeltaTicks = 0x0FFFFFFF

// Rebuild writes the notes' current times and velocities back into a new
// track. Events are ordered by their new absolute time, ties keep the source
// order, and every non-note event keeps its bytes and time. The end of track
// marker is pushed back if a note was moved past it. A gap longer than
// maxDeltaTicks is shortened to it.
func (tn *TrackNotes) Rebuild() smf.Track {
	times := make([]int64, len(tn.Times))
	copy(times, tn.Times)

	messages := make([]smf.Message, len(tn.Events))
	for i, event := range tn.Events {
		messages[i] = event.Message
	}

	for _, note := range tn.Notes {
		times[note.onIndex] = note.Start
		if note.Velocity != note.origVelocity {
			messages[note.onIndex] = smf.Message(midi.NoteOn(note.Channel, note.Key, note.Velocity))
		}
		if note.Released() {
			times[note.offIndex] = note.End
		}
	}

	var latest int64
	eotIndex := -1
	for i, msg := range messages {
		if isEndOfTrack(msg) {
			eotIndex = i
			continue
		}
		if times[i] > latest {
			latest = times[i]
		}
	}
	if eotIndex >= 0 && times[eotIndex] < latest {
		times[eotIndex] = latest
	}

	order := make([]int, len(times))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ta, tb := times[order[a]], times[order[b]]
		if ta == tb {
			// end of track always goes last
			return eotIndex >= 0 && order[b] == eotIndex && order[a] != eotIndex
		}
		return ta < tb
	})

	track := make(smf.Track, 0, len(order))
	var lastTime int64
	for _, idx := range order {
		delta := min(times[idx]-lastTime, maxDeltaTicks)
		track = append(track, smf.Event{Delta: uint32(delta), Message: messages[idx]})
		lastTime += delta
	}

	return track
}
