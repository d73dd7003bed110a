package midifile

import (
	"bytes"
	"testing"

	"github.com/stegomidi/stegomidi/model"
	"github.com/stretchr/testify/assert"
	"gitlab.com/gomidi/midi/v2/smf"
)

// The files this codec writes must read identically under standard
// tooling, so round-trip them through gomidi as an independent reference
// parser.

func TestSerializedFileParsesUnderGomidi(t *testing.T) {
	melody := []model.Note{
		{Pitch: 60, Duration: 0.5, Velocity: 80},
		{Pitch: 64, Duration: 0.25, Velocity: 90},
		{Duration: 0.5}, // rest
		{Pitch: 67, Duration: 1.0, Velocity: 70},
	}
	harmony := []model.Note{
		{Pitch: 60, Duration: 2.0, Velocity: 50},
		{Pitch: 64, Duration: 2.0, Velocity: 50},
		{Pitch: 67, Duration: 2.0, Velocity: 50},
	}

	data, err := Serialize(melody, harmony, 120)
	assert.NoError(t, err)

	parsed, err := smf.ReadFrom(bytes.NewReader(data))
	assert.NoError(t, err)
	assert.Len(t, parsed.Tracks, 2)

	var gotPitches []uint8
	var gotVelocities []uint8
	for _, ev := range parsed.Tracks[0] {
		var ch, key, vel uint8
		if ev.Message.GetNoteOn(&ch, &key, &vel) && vel > 0 {
			assert.Equal(t, uint8(0), ch)
			gotPitches = append(gotPitches, key)
			gotVelocities = append(gotVelocities, vel)
		}
	}
	assert.Equal(t, []uint8{60, 64, 67}, gotPitches)
	assert.Equal(t, []uint8{80, 90, 70}, gotVelocities)

	var harmonyOns int
	for _, ev := range parsed.Tracks[1] {
		var ch, key, vel uint8
		if ev.Message.GetNoteOn(&ch, &key, &vel) && vel > 0 {
			assert.Equal(t, uint8(1), ch)
			harmonyOns++
		}
	}
	assert.Equal(t, len(harmony), harmonyOns)
}

func TestGomidiAgreesOnNoteTiming(t *testing.T) {
	melody := []model.Note{
		{Pitch: 72, Duration: 0.5, Velocity: 80},
		{Pitch: 74, Duration: 0.5, Velocity: 80},
	}
	data, err := Serialize(melody, nil, 120)
	assert.NoError(t, err)

	parsed, err := smf.ReadFrom(bytes.NewReader(data))
	assert.NoError(t, err)

	var absTicks uint64
	var onTicks []uint64
	for _, ev := range parsed.Tracks[0] {
		absTicks += uint64(ev.Delta)
		var ch, key, vel uint8
		if ev.Message.GetNoteOn(&ch, &key, &vel) && vel > 0 {
			onTicks = append(onTicks, absTicks)
		}
	}
	assert.Equal(t, []uint64{0, 240}, onTicks)
}
