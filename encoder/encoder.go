// Package encoder turns text into note sequences through one of four
// embedding layers and serializes the result as an SMF.
package encoder

import (
	"github.com/stegomidi/stegomidi/midifile"
	"github.com/stegomidi/stegomidi/model"
	"github.com/stegomidi/stegomidi/pitch"
	"github.com/stegomidi/stegomidi/rhythm"
)

const (
	fixedDuration = 0.5
	fixedVelocity = 80

	intervalStart = 60
	intervalLow   = 48
	intervalHigh  = 84

	harmonySectionLen = 4
	harmonyDuration   = 2.0
	harmonyVelocity   = 50
)

type layerFunc func(text, key string) []model.Note

// One encode function per mode. Unknown modes fall back to multi-layer
// rather than failing.
var layers = map[model.EncodingMode]layerFunc{
	model.ModePitch:      encodePitchLayer,
	model.ModeRhythm:     encodeRhythmLayer,
	model.ModeInterval:   encodeIntervalLayer,
	model.ModeMultiLayer: encodeMultiLayer,
}

func encodePitchLayer(text, key string) []model.Note {
	notes := make([]model.Note, 0, len(text))
	for i := 0; i < len(text); i++ {
		notes = append(notes, model.Note{
			Pitch:    pitch.CharToPitch(text[i], key),
			Duration: fixedDuration,
			Velocity: fixedVelocity,
			Position: i,
		})
	}
	return notes
}

func encodeRhythmLayer(text, key string) []model.Note {
	notes := make([]model.Note, 0, len(text)*rhythm.BitsPerChar)
	for i := 0; i < len(text); i++ {
		for _, n := range rhythm.CharToRhythmSequence(text[i], key) {
			n.Position = len(notes)
			notes = append(notes, n)
		}
	}
	return notes
}

func encodeIntervalLayer(text, key string) []model.Note {
	notes := make([]model.Note, 0, len(text))
	running := intervalStart
	for i := 0; i < len(text); i++ {
		running += int(text[i]) % 12
		for running > intervalHigh {
			running -= 12
		}
		for running < intervalLow {
			running += 12
		}
		notes = append(notes, model.Note{
			Pitch:    uint8(running),
			Duration: fixedDuration,
			Velocity: fixedVelocity,
			Position: i,
		})
	}
	return notes
}

// encodeMultiLayer rides three channels on one stream: pitch, duration and
// velocity each carry the character independently.
func encodeMultiLayer(text, key string) []model.Note {
	notes := make([]model.Note, 0, len(text))
	for i := 0; i < len(text); i++ {
		ch := text[i]
		notes = append(notes, model.Note{
			Pitch:    pitch.CharToPitch(ch, key),
			Duration: rhythm.CharToDuration(ch),
			Velocity: uint8(60 + int(ch)%40),
			Position: i,
		})
	}
	return notes
}

// progression is I-IV-V-I as semitone root offsets.
var progression = [4]int{0, 5, 7, 0}

// triad offsets: root, major third, perfect fifth.
var triad = [3]int{0, 4, 7}

// BuildHarmony lays a decorative triad under every 4-note melody section.
// It carries no payload; it only nudges the aggregate statistics toward
// natural music.
func BuildHarmony(melody []model.Note) []model.Note {
	sections := (len(melody) + harmonySectionLen - 1) / harmonySectionLen
	notes := make([]model.Note, 0, sections*len(triad))
	for s := 0; s < sections; s++ {
		root := intervalStart + progression[s%len(progression)]
		for _, off := range triad {
			notes = append(notes, model.Note{
				Pitch:    uint8(root + off),
				Duration: harmonyDuration,
				Velocity: harmonyVelocity,
				Position: len(notes),
			})
		}
	}
	return notes
}

func normalize(opts model.EncodeOptions) model.EncodeOptions {
	if opts.Tempo <= 0 {
		opts.Tempo = model.DefaultTempo
	}
	if opts.Key == "" {
		opts.Key = model.DefaultKey
	}
	return opts
}

// EncodeNotes runs just the layer dispatch, without serializing.
func EncodeNotes(text string, opts model.EncodeOptions) []model.Note {
	opts = normalize(opts)
	layer, ok := layers[opts.Mode]
	if !ok {
		layer = encodeMultiLayer
	}
	return layer(text, opts.Key)
}

// Encode embeds text and serializes melody plus optional harmony as SMF
// bytes.
func Encode(text string, opts model.EncodeOptions) ([]byte, error) {
	opts = normalize(opts)
	melody := EncodeNotes(text, opts)
	var harmony []model.Note
	if opts.AddHarmony {
		harmony = BuildHarmony(melody)
	}
	return midifile.Serialize(melody, harmony, opts.Tempo)
}

// Info describes the encoding without producing any bytes.
func Info(text string, opts model.EncodeOptions) model.EncodingInfo {
	opts = normalize(opts)
	melody := EncodeNotes(text, opts)
	var harmony []model.Note
	if opts.AddHarmony {
		harmony = BuildHarmony(melody)
	}

	var beats float64
	for _, n := range melody {
		beats += n.Duration
	}

	info := model.EncodingInfo{
		Mode:           opts.Mode,
		Key:            opts.Key,
		Tempo:          opts.Tempo,
		CharCount:      len(text),
		MelodyNotes:    len(melody),
		HarmonyNotes:   len(harmony),
		TotalBeats:     beats,
		DurationSecs:   beats * 60 / opts.Tempo,
		HarmonyEnabled: opts.AddHarmony,
	}
	if len(text) > 0 {
		info.NotesPerChar = float64(len(melody)) / float64(len(text))
	}
	return info
}
