// Package pitch maps characters onto scale pitches and back, and extracts
// pitch-distribution statistics used by the detection pipeline.
package pitch

import (
	"github.com/stegomidi/stegomidi/model"
	"github.com/stegomidi/stegomidi/util"
)

// Scale tables are semitone offsets from the octave root. Fixed at process
// start, never mutated.
var scales = map[string][]int{
	"c_major": {0, 2, 4, 5, 7, 9, 11},
	"g_major": {0, 2, 4, 5, 7, 9, 11},
	"a_minor": {0, 2, 3, 5, 7, 8, 10},
	"d_major": {0, 2, 4, 6, 7, 9, 11},
}

const (
	letterBase = 60 // middle C, where 'A' lands
	digitBase  = 72
	otherBase  = 48
)

// ScaleFor returns the scale table for key, falling back to c_major for
// anything unknown.
func ScaleFor(key string) []int {
	if s, ok := scales[key]; ok {
		return s
	}
	return scales["c_major"]
}

// Keys lists the supported scale names.
func Keys() []string {
	return util.GetKeysSorted(scales)
}

// CharToPitch maps one character to a pitch. Space becomes a rest (pitch 0).
// Letters walk up the scale from middle C, seven degrees per octave. Digits
// occupy the chromatic run 72-81. Anything else gets a deterministic
// fallback so encoding never aborts.
func CharToPitch(ch byte, key string) uint8 {
	scale := ScaleFor(key)
	switch {
	case ch == ' ':
		return 0
	case ch >= 'A' && ch <= 'Z':
		idx := int(ch - 'A')
		return uint8(letterBase + (idx/7)*12 + scale[idx%7])
	case ch >= '0' && ch <= '9':
		return uint8(digitBase + int(ch-'0'))
	default:
		return uint8(otherBase + int(ch)%36)
	}
}

// PitchToChar inverts CharToPitch. Scale-degree pitches invert to letters
// before the digit range is considered: digit pitches that coincide with a
// scale degree come back as the letter. Pitches that fit neither grid snap
// to the nearest scale degree, or '?' when even that falls outside A-Z.
func PitchToChar(p uint8, key string) byte {
	if p == 0 {
		return ' '
	}
	scale := ScaleFor(key)
	rel := int(p) - letterBase
	if rel >= 0 {
		octave := rel / 12
		within := rel % 12
		for j, off := range scale {
			if off == within {
				letterIdx := octave*7 + j
				if letterIdx < 26 {
					return byte('A' + letterIdx)
				}
			}
		}
	}
	if p >= digitBase && p <= digitBase+9 {
		return byte('0' + (p - digitBase))
	}
	if rel < 0 {
		return '?'
	}
	// off-grid: snap to the nearest degree in this octave
	octave := rel / 12
	within := rel % 12
	best, bestDist := 0, 128
	for j, off := range scale {
		dist := within - off
		if dist < 0 {
			dist = -dist
		}
		if dist < bestDist {
			best, bestDist = j, dist
		}
	}
	letterIdx := octave*7 + best
	if letterIdx < 26 {
		return byte('A' + letterIdx)
	}
	return '?'
}

// AnalyzePitchDistribution computes the pitch statistics over the non-rest
// notes of a sequence.
func AnalyzePitchDistribution(notes []model.Note) model.PitchStats {
	var pitches []uint8
	for _, n := range notes {
		if !n.IsRest() {
			pitches = append(pitches, n.Pitch)
		}
	}

	valueHist := util.Histogram(pitches)
	classHist := make(map[uint8]int)
	for _, p := range pitches {
		classHist[p%12]++
	}

	return model.PitchStats{
		Count:      len(pitches),
		Mean:       util.Mean(pitches),
		Median:     util.Median(pitches),
		StdDev:     util.StdDev(pitches),
		Entropy:    util.Entropy(valueHist),
		ClassHist:  classHist,
		ValueHist:  valueHist,
		UniqueVals: len(valueHist),
	}
}
