package main

// piano_performance method: chord rolling, hand separation, beat accents,
// chord velocity correlation and a ritardando at phrase ends

const (
	chordVelocitySpread = 4
	ritardandoMinTicks  = 5
	ritardandoMaxTicks  = 25
	leftHandVelocity    = 0.9
)

func (h *Humanizer) humanizePiano(tn *TrackNotes) Stats {
	var stats Stats
	s := h.Settings

	chords := detectChords(tn.Notes, scaleTicks(chordToleranceTicks, h.tpq))
	stats.Chords = len(chords)

	if h.tpq > 0 {
		meanRoll := s.ChordRollMeanTiming * float64(h.tpq)
		stdRoll := s.ChordRollStdTiming * float64(h.tpq)

		for _, chord := range chords {
			probability := h.rollProbability()
			if h.rng.Float64() >= probability {
				continue
			}

			pattern := h.chooseRollPattern(chord)
			h.rollChord(chord, meanRoll, stdRoll, pattern)
			stats.RolledChords++

			h.logger.Debug("rolled chord", "pattern", pattern, "notes", len(chord), "probability", probability)
		}
	}

	if s.HandSeparation {
		left, right := separateHands(tn.Notes, middleC)
		h.logger.Debug("hand separation", "left", len(left), "right", len(right))

		h.humanizeHand(left, s.LeftHandTimingFactor, leftHandVelocity)
		h.humanizeHand(right, 1.0, s.RightHandVelocityFactor)
	} else {
		onTicks := h.beatsToTicks(s.NoteOnTiming)
		offTicks := h.beatsToTicks(s.NoteOffTiming)
		for _, note := range tn.Notes {
			note.Start = max(0, note.Start+h.randOffset64(onTicks))
			if note.Released() {
				note.End = max(0, note.End+h.randOffset64(offTicks))
			}
		}

		h.accentVelocities(tn.Notes, s.VelocityRange)
	}

	if h.tpq > 0 {
		endings := detectPhraseEndings(tn.Notes, h.tpq)
		stats.PhraseEndings = len(endings)
		h.applyRitardando(tn.Notes, endings)
	}

	stats.ResolvedOverlaps = h.finishNotes(tn)
	return stats
}

// rollProbability varies the chance of rolling so some passages roll more
// than others
func (h *Humanizer) rollProbability() float64 {
	base := h.Settings.ChordRollProbability
	std := h.Settings.ChordRollProbabilityStd
	if std == 0 {
		std = 0.02
	}
	return clampFloat(h.gauss(base, std), 0, base*3)
}

func (h *Humanizer) chooseRollPattern(chord []*Note) string {
	if h.Settings.JazzChordEmphasis {
		patterns := []string{RollUpward, RollDownward, RollInsideOut}
		return patterns[h.rng.IntN(len(patterns))]
	}

	// chords wider than two octaves mostly roll upward
	if chordSpan(chord) > 24 {
		if h.rng.Float64() < 0.7 {
			return RollUpward
		}
		return RollDownward
	}

	patterns := []string{RollUpward, RollDownward, RollInsideOut, RollOutsideIn}
	return patterns[h.rng.IntN(len(patterns))]
}

// rollChord spreads the onsets of a chord, the spacing between notes is drawn
// from a normal distribution
func (h *Humanizer) rollChord(chord []*Note, meanTicks, stdTicks float64, pattern string) {
	if len(chord) < minChordSize {
		return
	}

	spacing := clampFloat(h.gauss(meanTicks, stdTicks), 0, meanTicks*6)
	spacing = max(spacing, 0.2)

	base := chord[0].Start
	for _, note := range chord[1:] {
		base = min(base, note.Start)
	}

	for i, note := range rollOrder(chord, pattern) {
		note.Start = base + int64(float64(i)*spacing)
	}
}

func (h *Humanizer) humanizeHand(notes []*Note, timingFactor, velocityFactor float64) {
	timingRange := int64(h.Settings.NoteOnTiming * float64(h.tpq) * timingFactor)
	for _, note := range notes {
		note.Start = max(0, note.Start+h.randOffset64(timingRange))
	}

	h.accentVelocities(notes, int(float64(h.Settings.VelocityRange)*velocityFactor))
}

// accentVelocities randomizes velocities per group of simultaneous notes.
// With beat accenting the offsets are scaled by the position in the bar, with
// chord correlation all notes of a group move together.
func (h *Humanizer) accentVelocities(notes []*Note, velocityRange int) {
	s := h.Settings

	for _, group := range groupNotesByTiming(notes, scaleTicks(groupToleranceTicks, h.tpq)) {
		if s.ChordVelocityCorrelation && len(group) > 1 {
			base := h.randOffset(velocityRange)
			if s.BeatAccenting {
				base = int(float64(base) * h.strengthAt(group[0].Start))
			}

			for _, note := range group {
				offset := base + h.randOffset(chordVelocitySpread)
				note.Velocity = clampVelocity(int(note.Velocity) + offset)
			}
			continue
		}

		for _, note := range group {
			offset := h.randOffset(velocityRange)
			if s.BeatAccenting {
				offset = int(float64(offset) * h.strengthAt(note.Start))
			}
			note.Velocity = clampVelocity(int(note.Velocity) + offset)
		}
	}
}

func (h *Humanizer) strengthAt(start int64) float64 {
	return beatStrength(start, h.tpq, findMeterAtTime(start, h.meters))
}

// applyRitardando delays notes within two beats of a phrase ending
func (h *Humanizer) applyRitardando(notes []*Note, endings []*Note) {
	window := 2 * h.tpq
	lo := scaleTicks(ritardandoMinTicks, h.tpq)
	hi := scaleTicks(ritardandoMaxTicks, h.tpq)

	for _, ending := range endings {
		endingStart := ending.Start
		for _, note := range notes {
			if abs64(note.Start-endingStart) < window {
				note.Start += lo + h.rng.Int64N(hi-lo+1)
			}
		}
	}
}
