package encoder

import (
	"testing"

	"github.com/stegomidi/stegomidi/model"
	"github.com/stretchr/testify/assert"
)

func TestPitchLayerUsesFixedDurationAndVelocity(t *testing.T) {
	notes := EncodeNotes("ABC", model.EncodeOptions{Mode: model.ModePitch})
	assert.Len(t, notes, 3)
	for _, n := range notes {
		assert.Equal(t, 0.5, n.Duration)
		assert.Equal(t, uint8(80), n.Velocity)
	}
	assert.Equal(t, uint8(60), notes[0].Pitch)
	assert.Equal(t, uint8(62), notes[1].Pitch)
}

func TestPitchLayerEncodesSpaceAsRest(t *testing.T) {
	notes := EncodeNotes("A B", model.EncodeOptions{Mode: model.ModePitch})
	assert.Len(t, notes, 3)
	assert.True(t, notes[1].IsRest())
}

func TestRhythmLayerEmitsEightNotesPerChar(t *testing.T) {
	notes := EncodeNotes("SOS", model.EncodeOptions{Mode: model.ModeRhythm})
	assert.Len(t, notes, 24)
	for i, n := range notes {
		assert.Equal(t, i, n.Position)
	}
}

func TestIntervalLayerWalksAndClamps(t *testing.T) {
	// 'Z' is 90, 90 % 12 = 6: the walk would leave [48, 84] without the
	// octave correction
	notes := EncodeNotes("ZZZZZZ", model.EncodeOptions{Mode: model.ModeInterval})
	assert.Len(t, notes, 6)
	for _, n := range notes {
		assert.GreaterOrEqual(t, n.Pitch, uint8(48))
		assert.LessOrEqual(t, n.Pitch, uint8(84))
	}
	assert.Equal(t, uint8(66), notes[0].Pitch)
	assert.Equal(t, uint8(72), notes[1].Pitch)
}

func TestMultiLayerRidesThreeChannels(t *testing.T) {
	notes := EncodeNotes("A", model.EncodeOptions{Mode: model.ModeMultiLayer})
	assert.Len(t, notes, 1)

	assert := assert.New(t)
	assert.Equal(uint8(60), notes[0].Pitch)            // pitch channel
	assert.Equal(0.25, notes[0].Duration)              // 65 % 5 = 0
	assert.Equal(uint8(60+65%40), notes[0].Velocity)   // velocity channel
}

func TestBuildHarmonyFollowsProgression(t *testing.T) {
	melody := EncodeNotes("ABCDEFGH", model.EncodeOptions{Mode: model.ModePitch})
	harmony := BuildHarmony(melody)

	// 8 melody notes = 2 sections = 2 triads
	assert.Len(t, harmony, 6)

	assert := assert.New(t)
	// section 1: I (root 60), section 2: IV (root 65)
	assert.Equal(uint8(60), harmony[0].Pitch)
	assert.Equal(uint8(64), harmony[1].Pitch)
	assert.Equal(uint8(67), harmony[2].Pitch)
	assert.Equal(uint8(65), harmony[3].Pitch)
	for _, n := range harmony {
		assert.Equal(2.0, n.Duration)
		assert.Equal(uint8(50), n.Velocity)
	}
}

func TestEncodeProducesParsableBytes(t *testing.T) {
	data, err := Encode("HELLO", model.EncodeOptions{Mode: model.ModePitch, Tempo: 120, AddHarmony: true})
	assert.NoError(t, err)
	assert.Equal(t, "MThd", string(data[0:4]))
}

func TestInfoReportsWithoutSerializing(t *testing.T) {
	info := Info("SOS", model.EncodeOptions{Mode: model.ModeRhythm, Tempo: 120, AddHarmony: false})

	assert := assert.New(t)
	assert.Equal(3, info.CharCount)
	assert.Equal(24, info.MelodyNotes)
	assert.Equal(0, info.HarmonyNotes)
	assert.InDelta(8.0, info.NotesPerChar, 0.001)
	assert.Greater(info.TotalBeats, 0.0)
	assert.InDelta(info.TotalBeats*60/120, info.DurationSecs, 0.001)
}

func TestZeroOptionsFallBackToDefaults(t *testing.T) {
	info := Info("HI", model.EncodeOptions{Mode: model.ModePitch})
	assert.Equal(t, model.DefaultTempo, info.Tempo)
	assert.Equal(t, model.DefaultKey, info.Key)
}
