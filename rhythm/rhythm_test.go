package rhythm

import (
	"fmt"
	"testing"

	"github.com/stegomidi/stegomidi/model"
	"github.com/stretchr/testify/assert"
)

func TestCharToRhythmSequenceEmitsEightNotes(t *testing.T) {
	notes := CharToRhythmSequence('S', "c_major")
	assert.Len(t, notes, 8)

	// 'S' is 0x53 = 01010011
	wantBits := []float64{0.25, 0.5, 0.25, 0.5, 0.25, 0.25, 0.5, 0.5}
	for i, n := range notes {
		assert.Equal(t, wantBits[i], n.Duration, "bit %d", i)
	}
}

func TestRhythmRoundTripFullAsciiRange(t *testing.T) {
	for ch := byte(1); ch <= 127; ch++ {
		notes := CharToRhythmSequence(ch, "c_major")
		got := RhythmSequenceToChar(notes)
		if got != ch {
			t.Fatalf("char %d round-tripped to %d", ch, got)
		}
	}
}

func TestRhythmSequenceToCharRejectsBadGroups(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(byte('?'), RhythmSequenceToChar(nil))
	assert.Equal(byte('?'), RhythmSequenceToChar(make([]model.Note, 7)))

	// all zero bits decodes to 0, outside 1-127
	zeros := make([]model.Note, 8)
	for i := range zeros {
		zeros[i].Duration = 0.25
	}
	assert.Equal(byte('?'), RhythmSequenceToChar(zeros))
}

func TestCharToDurationTable(t *testing.T) {
	cases := []struct {
		ch   byte
		want float64
	}{
		{'A', 0.25},  // 65 % 5 = 0
		{'B', 0.375}, // 66 % 5 = 1
		{'C', 0.5},
		{'D', 0.75},
		{'E', 1.0},
		{'F', 0.25}, // wraps
	}
	for _, c := range cases {
		t.Run(fmt.Sprintf("%c", c.ch), func(t *testing.T) {
			assert.Equal(t, c.want, CharToDuration(c.ch))
		})
	}
}

func notesWithDurations(durs []float64) []model.Note {
	notes := make([]model.Note, len(durs))
	for i, d := range durs {
		notes[i] = model.Note{Pitch: 60, Duration: d, Velocity: 80, Position: i}
	}
	return notes
}

func TestAnalyzeRhythmPatterns(t *testing.T) {
	notes := notesWithDurations([]float64{0.5, 0.5, 0.25, 0.25})
	stats := AnalyzeRhythmPatterns(notes)

	assert := assert.New(t)
	assert.Equal(4, stats.Count)
	assert.InDelta(1.5, stats.TotalBeats, 0.001)
	assert.Equal(2, stats.UniqueDurs)
	assert.InDelta(0.375, stats.MeanDuration, 0.001)
	assert.InDelta(1.0, stats.Entropy, 0.001) // two values, even split
}

func TestSyncopationCountsOffBeatOnsets(t *testing.T) {
	// onsets 0, 1, 2, 3: two fall in beats 1 and 3
	notes := notesWithDurations([]float64{1, 1, 1, 1})
	stats := AnalyzeRhythmPatterns(notes)
	assert.InDelta(t, 0.5, stats.Syncopation, 0.001)
}

func TestDetectRhythmEncodingFlagsUniformDurations(t *testing.T) {
	notes := notesWithDurations([]float64{
		0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5,
		0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5,
	})
	susp := DetectRhythmEncoding(notes)

	assert := assert.New(t)
	assert.True(susp.EntropyFlag)
	assert.True(susp.VarietyFlag)
	assert.True(susp.SyncopationFlag)
	assert.GreaterOrEqual(susp.Score, 0.89)
}

func TestDetectRhythmEncodingPassesVariedDurations(t *testing.T) {
	// six distinct durations, ordered so onsets avoid the off-beat pin
	notes := notesWithDurations([]float64{
		2.0, 2.0, 0.25, 0.375, 0.5, 0.75, 1.0, 0.25, 0.375, 0.5, 0.75, 1.0,
	})
	susp := DetectRhythmEncoding(notes)
	assert.Less(t, susp.Score, 0.3)
}

func TestBitDurationsSitAroundDetectionThreshold(t *testing.T) {
	assert.GreaterOrEqual(t, BitOneDuration, 0.4)
	assert.Less(t, BitZeroDuration, 0.4)
}
