// Package rhythm encodes characters as binary duration patterns and scores
// rhythm sequences for steganographic regularity.
package rhythm

import (
	"github.com/stegomidi/stegomidi/model"
	"github.com/stegomidi/stegomidi/pitch"
	"github.com/stegomidi/stegomidi/util"
)

const (
	// BitOneDuration and BitZeroDuration carry one bit each; the decode
	// threshold sits between them.
	BitOneDuration  = 0.5
	BitZeroDuration = 0.25
	bitThreshold    = 0.4

	BitsPerChar = 8

	noteVelocity = 80
)

// durations is the ascii mod 5 table used by the multi-layer duration
// channel.
var durations = [5]float64{0.25, 0.375, 0.5, 0.75, 1.0}

// carrierScale builds the 8-pitch cycle the bit notes ride on: the seven
// scale degrees above middle C plus the octave.
func carrierScale(key string) [8]uint8 {
	scale := pitch.ScaleFor(key)
	var out [8]uint8
	for i := 0; i < 7; i++ {
		out[i] = uint8(60 + scale[i])
	}
	out[7] = 72
	return out
}

// CharToRhythmSequence emits exactly 8 notes, one per bit of the
// character's ascii value, most significant bit first.
func CharToRhythmSequence(ch byte, key string) []model.Note {
	carrier := carrierScale(key)
	notes := make([]model.Note, 0, BitsPerChar)
	for i := 0; i < BitsPerChar; i++ {
		bit := (ch >> (BitsPerChar - 1 - i)) & 1
		dur := BitZeroDuration
		if bit == 1 {
			dur = BitOneDuration
		}
		notes = append(notes, model.Note{
			Pitch:    carrier[i%len(carrier)],
			Duration: dur,
			Velocity: noteVelocity,
			Position: i,
		})
	}
	return notes
}

// RhythmSequenceToChar inverts one 8-note group. Groups that are not
// exactly 8 notes, or that decode outside ascii 1-127, come back as '?'.
func RhythmSequenceToChar(notes []model.Note) byte {
	if len(notes) != BitsPerChar {
		return '?'
	}
	var value int
	for _, n := range notes {
		value <<= 1
		if n.Duration >= bitThreshold {
			value |= 1
		}
	}
	if value < 1 || value > 127 {
		return '?'
	}
	return byte(value)
}

// CharToDuration is the multi-layer duration channel: ascii mod 5 into the
// fixed duration table.
func CharToDuration(ch byte) float64 {
	return durations[int(ch)%len(durations)]
}

// onsets returns each note's start position in beats.
func onsets(notes []model.Note) []float64 {
	out := make([]float64, len(notes))
	var at float64
	for i, n := range notes {
		out[i] = at
		at += n.Duration
	}
	return out
}

// AnalyzeRhythmPatterns extracts the duration statistics of a sequence.
// Syncopation is the fraction of notes starting in the second or fourth
// beat of a four-beat bar.
func AnalyzeRhythmPatterns(notes []model.Note) model.RhythmStats {
	durs := make([]float64, len(notes))
	for i, n := range notes {
		durs[i] = n.Duration
	}
	hist := util.Histogram(durs)

	var syncopated int
	for _, onset := range onsets(notes) {
		beat := int(onset) % 4
		if beat == 1 || beat == 3 {
			syncopated++
		}
	}
	var syncopation float64
	if len(notes) > 0 {
		syncopation = float64(syncopated) / float64(len(notes))
	}

	return model.RhythmStats{
		Count:        len(notes),
		TotalBeats:   util.Sum(durs),
		UniqueDurs:   len(hist),
		DurationHist: hist,
		MeanDuration: util.Mean(durs),
		Entropy:      util.Entropy(hist),
		Syncopation:  syncopation,
	}
}

// DetectRhythmEncoding is the standalone rhythm suspicion heuristic. Three
// indicators, averaged: duration entropy outside [1.0, 3.0], a degenerate
// variety-to-count ratio, and syncopation pinned at exactly one half.
func DetectRhythmEncoding(notes []model.Note) model.RhythmSuspicion {
	stats := AnalyzeRhythmPatterns(notes)

	var entropyScore float64
	switch {
	case stats.Entropy < 1.0:
		entropyScore = 1.0 - stats.Entropy
	case stats.Entropy > 3.0:
		entropyScore = (stats.Entropy - 3.0) / 2.0
	}
	if entropyScore > 1.0 {
		entropyScore = 1.0
	}
	if entropyScore < 0 {
		entropyScore = 0
	}

	var varietyScore float64
	if stats.Count > 0 {
		ratio := float64(stats.UniqueDurs) / float64(stats.Count)
		if ratio > 0.8 || ratio < 0.1 {
			varietyScore = 0.8
		}
	}

	var syncScore float64
	diff := stats.Syncopation - 0.5
	if diff < 0 {
		diff = -diff
	}
	if stats.Count > 0 && diff <= 0.05 {
		syncScore = 0.9
	}

	return model.RhythmSuspicion{
		Score:            (entropyScore + varietyScore + syncScore) / 3,
		EntropyScore:     entropyScore,
		VarietyScore:     varietyScore,
		SyncopationScore: syncScore,
		EntropyFlag:      entropyScore > 0,
		VarietyFlag:      varietyScore > 0,
		SyncopationFlag:  syncScore > 0,
	}
}
