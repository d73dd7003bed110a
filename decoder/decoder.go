// Package decoder recovers embedded text from SMF bytes and extracts the
// statistics bundle the analyzer scores.
package decoder

import (
	"errors"
	"sort"

	"github.com/stegomidi/stegomidi/midifile"
	"github.com/stegomidi/stegomidi/model"
	"github.com/stegomidi/stegomidi/pitch"
	"github.com/stegomidi/stegomidi/rhythm"
	"github.com/stegomidi/stegomidi/util"
)

var ErrNoTracks = errors.New("decoder: document has no tracks")

type layerDecoder func(notes []model.Note, key string) string

var layers = map[model.EncodingMode]layerDecoder{
	model.ModePitch:    decodePitchLayer,
	model.ModeRhythm:   decodeRhythmLayer,
	model.ModeInterval: decodeIntervalLayer,
	// Multi-layer decode only recovers the pitch channel. The duration and
	// velocity channels the encoder embeds are discarded here; known
	// limitation, kept as-is.
	model.ModeMultiLayer: decodePitchLayer,
}

func decodePitchLayer(notes []model.Note, key string) string {
	out := make([]byte, 0, len(notes))
	for _, n := range notes {
		out = append(out, pitch.PitchToChar(n.Pitch, key))
	}
	return string(out)
}

func decodeRhythmLayer(notes []model.Note, key string) string {
	var out []byte
	for i := 0; i+rhythm.BitsPerChar <= len(notes); i += rhythm.BitsPerChar {
		out = append(out, rhythm.RhythmSequenceToChar(notes[i:i+rhythm.BitsPerChar]))
	}
	if len(notes)%rhythm.BitsPerChar != 0 {
		out = append(out, '?')
	}
	return string(out)
}

func decodeIntervalLayer(notes []model.Note, key string) string {
	var out []byte
	prev := 60
	for _, n := range notes {
		if n.IsRest() {
			out = append(out, ' ')
			continue
		}
		iv := ((int(n.Pitch)-prev)%12 + 12) % 12
		// 'A' sits at interval 5; earlier letters wrap around the octave
		out = append(out, byte('A'+(iv+7)%12))
		prev = int(n.Pitch)
	}
	return string(out)
}

// DetectMode classifies a note sequence as one of the four encoding layers.
// The final branch is unconditional, so classification never fails.
func DetectMode(notes []model.Note) model.EncodingMode {
	stats := rhythm.AnalyzeRhythmPatterns(notes)
	if stats.UniqueDurs == 2 && len(notes) >= 8 {
		return model.ModeRhythm
	}
	if pitch.AnalyzePitchDistribution(notes).Entropy > 2.5 {
		return model.ModePitch
	}
	for _, iv := range adjacentIntervals(notes) {
		if iv > 7 || iv < -7 {
			return model.ModeInterval
		}
	}
	return model.ModeMultiLayer
}

func adjacentIntervals(notes []model.Note) []int {
	var out []int
	prev := -1
	for _, n := range notes {
		if n.IsRest() {
			continue
		}
		if prev >= 0 {
			out = append(out, int(n.Pitch)-prev)
		}
		prev = int(n.Pitch)
	}
	return out
}

// MelodyNotes parses the file and pairs the first track back into notes.
func MelodyNotes(data []byte) ([]model.Note, error) {
	doc, err := midifile.Parse(data)
	if err != nil {
		return nil, err
	}
	if len(doc.Tracks) == 0 {
		return nil, ErrNoTracks
	}
	return midifile.PairNotes(doc.Tracks[0].Events, doc.TicksPerBeat), nil
}

// Decode parses the SMF, pairs the first track back into notes, and inverts
// the explicit or auto-detected encoding layer.
func Decode(data []byte, opts model.DecodeOptions) (string, error) {
	notes, err := MelodyNotes(data)
	if err != nil {
		return "", err
	}
	if opts.Key == "" {
		opts.Key = model.DefaultKey
	}

	mode := model.ModeMultiLayer
	if opts.Mode != nil {
		mode = *opts.Mode
	} else {
		mode = DetectMode(notes)
	}

	layer, ok := layers[mode]
	if !ok {
		layer = decodePitchLayer
	}
	return layer(notes, opts.Key), nil
}

func intervalStats(tracks [][]model.Note) model.IntervalStats {
	var all []int
	for _, notes := range tracks {
		all = append(all, adjacentIntervals(notes)...)
	}
	hist := util.Histogram(all)

	var sumAbs float64
	var maxAbs int
	for _, iv := range all {
		if iv < 0 {
			iv = -iv
		}
		sumAbs += float64(iv)
		if iv > maxAbs {
			maxAbs = iv
		}
	}
	var meanAbs float64
	if len(all) > 0 {
		meanAbs = sumAbs / float64(len(all))
	}

	return model.IntervalStats{
		Count:        len(all),
		MeanAbs:      meanAbs,
		MaxAbs:       maxAbs,
		Hist:         hist,
		UniqueVals:   len(hist),
		SingleRepeat: len(hist) == 1 && len(all) >= 2,
	}
}

func rankCandidates(notes []model.Note, ps model.PitchStats, rs model.RhythmStats, is model.IntervalStats) []model.ModeCandidate {
	velocities := make(map[uint8]int)
	for _, n := range notes {
		if !n.IsRest() {
			velocities[n.Velocity]++
		}
	}

	scores := map[model.EncodingMode]float64{
		model.ModeRhythm:     0.1,
		model.ModePitch:      0.3,
		model.ModeInterval:   0.2,
		model.ModeMultiLayer: 0.2,
	}
	if rs.UniqueDurs == 2 && rs.Count >= 8 {
		scores[model.ModeRhythm] = 0.9
	}
	if ps.Entropy > 2.5 {
		scores[model.ModePitch] = 0.8
	}
	if is.MaxAbs > 7 {
		scores[model.ModeInterval] = 0.6
	}
	if len(velocities) > 3 && rs.UniqueDurs > 2 {
		scores[model.ModeMultiLayer] = 0.7
	}

	candidates := make([]model.ModeCandidate, 0, len(scores))
	for _, mode := range []model.EncodingMode{
		model.ModePitch, model.ModeRhythm, model.ModeInterval, model.ModeMultiLayer,
	} {
		candidates = append(candidates, model.ModeCandidate{Mode: mode, Score: scores[mode]})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates
}

// Analyze extracts the full statistics bundle over every parsable track,
// independent of whether Decode would succeed on the file.
func Analyze(data []byte) (model.StatsBundle, error) {
	doc, err := midifile.Parse(data)
	if err != nil {
		return model.StatsBundle{}, err
	}

	var perTrack [][]model.Note
	var pooled []model.Note
	for _, t := range doc.Tracks {
		notes := midifile.PairNotes(t.Events, doc.TicksPerBeat)
		if len(notes) == 0 {
			continue
		}
		perTrack = append(perTrack, notes)
		pooled = append(pooled, notes...)
	}

	ps := pitch.AnalyzePitchDistribution(pooled)
	rs := rhythm.AnalyzeRhythmPatterns(pooled)
	is := intervalStats(perTrack)

	return model.StatsBundle{
		NoteCount:       len(pooled),
		TrackCount:      len(doc.Tracks),
		Pitch:           ps,
		Rhythm:          rs,
		Intervals:       is,
		RhythmSuspicion: rhythm.DetectRhythmEncoding(pooled),
		Candidates:      rankCandidates(pooled, ps, rs, is),
	}, nil
}
