// Package midifile implements the Standard MIDI File codec used by the
// encoder and the forensic pipeline: format-1 serialization, a parser that
// degrades per track instead of failing whole documents, variable-length
// quantities, and NoteOn/NoteOff pairing back into notes.
package midifile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/stegomidi/stegomidi/model"
)

var (
	ErrBadHeader       = errors.New("midifile: bad MThd header")
	ErrBadHeaderLength = errors.New("midifile: header chunk length is not 6")
	ErrTruncated       = errors.New("midifile: truncated chunk")
	ErrVLQOverflow     = errors.New("midifile: variable-length quantity longer than 4 bytes")
	ErrVLQTooLarge     = errors.New("midifile: value too large for a variable-length quantity")
)

const (
	headerMagic = "MThd"
	trackMagic  = "MTrk"

	metaTempo      = 0x51
	metaEndOfTrack = 0x2F

	microsPerMinute = 60_000_000

	// RestDuration is the beat value one reconstructed rest stands for.
	RestDuration = 0.5
)

// EncodeVLQ renders n as a big-endian base-128 quantity with continuation
// bits on all but the last byte. Values need at most 4 bytes.
func EncodeVLQ(n uint32) ([]byte, error) {
	if n > 0x0FFFFFFF {
		return nil, ErrVLQTooLarge
	}
	if n == 0 {
		return []byte{0}, nil
	}
	var chunks []byte
	for n != 0 {
		chunks = append(chunks, byte(n&0x7F))
		n >>= 7
	}
	out := make([]byte, len(chunks))
	for i := len(chunks) - 1; i >= 0; i-- {
		b := chunks[i]
		if i != 0 {
			b |= 0x80
		}
		out[len(chunks)-1-i] = b
	}
	return out, nil
}

// DecodeVLQ reads one quantity from the front of data, returning the value
// and how many bytes it consumed. A fourth byte still carrying the
// continuation bit is a structural error.
func DecodeVLQ(data []byte) (uint32, int, error) {
	var value uint32
	for i := 0; i < 4; i++ {
		if i >= len(data) {
			return 0, 0, ErrTruncated
		}
		b := data[i]
		value = value<<7 | uint32(b&0x7F)
		if b&0x80 == 0 {
			return value, i + 1, nil
		}
	}
	return 0, 0, ErrVLQOverflow
}

func beatsToTicks(beats float64) uint32 {
	return uint32(math.Round(beats * model.TicksPerBeat))
}

// notesToEvents converts a note list into tick-stamped on/off pairs.
// Rests advance the running tick without emitting anything; the returned
// end tick includes them so trailing rests survive serialization.
func notesToEvents(notes []model.Note, channel uint8) ([]model.MidiEvent, uint32) {
	var events []model.MidiEvent
	var tick uint32
	for _, n := range notes {
		durTicks := beatsToTicks(n.Duration)
		if n.IsRest() {
			tick += durTicks
			continue
		}
		events = append(events,
			model.MidiEvent{Type: model.NoteOn, Tick: tick, Channel: channel, Pitch: n.Pitch, Velocity: n.Velocity},
			model.MidiEvent{Type: model.NoteOff, Tick: tick + durTicks, Channel: channel, Pitch: n.Pitch},
		)
		tick += durTicks
	}
	return events, tick
}

func tempoMetaData(tempo float64) []byte {
	mpq := uint32(microsPerMinute / tempo)
	return []byte{byte(mpq >> 16), byte(mpq >> 8), byte(mpq)}
}

func writeTrack(w *bytes.Buffer, notes []model.Note, channel uint8, tempo float64) error {
	payload := new(bytes.Buffer)

	// tempo meta first, at delta 0
	payload.WriteByte(0)
	payload.Write([]byte{0xFF, metaTempo, 0x03})
	payload.Write(tempoMetaData(tempo))

	events, endTick := notesToEvents(notes, channel)
	var prevTick uint32
	for _, ev := range events {
		delta, err := EncodeVLQ(ev.Tick - prevTick)
		if err != nil {
			return fmt.Errorf("midifile: encoding delta at tick %d: %w", ev.Tick, err)
		}
		payload.Write(delta)
		status := byte(0x90)
		velocity := ev.Velocity
		if ev.Type == model.NoteOff {
			status = 0x80
			velocity = 0
		}
		payload.Write([]byte{status | ev.Channel, ev.Pitch, velocity})
		prevTick = ev.Tick
	}

	// end of track at the true end tick, so trailing rests keep their time
	eotDelta, err := EncodeVLQ(endTick - prevTick)
	if err != nil {
		return fmt.Errorf("midifile: encoding end-of-track delta: %w", err)
	}
	payload.Write(eotDelta)
	payload.Write([]byte{0xFF, metaEndOfTrack, 0x00})

	w.WriteString(trackMagic)
	binary.Write(w, binary.BigEndian, uint32(payload.Len()))
	w.Write(payload.Bytes())
	return nil
}

// Serialize renders melody and harmony as a format-1, two-track SMF at 480
// ticks per beat. The harmony track is written even when empty so the track
// count stays fixed.
func Serialize(melody, harmony []model.Note, tempo float64) ([]byte, error) {
	if tempo <= 0 {
		tempo = model.DefaultTempo
	}

	buf := new(bytes.Buffer)
	buf.WriteString(headerMagic)
	binary.Write(buf, binary.BigEndian, uint32(6))
	binary.Write(buf, binary.BigEndian, uint16(1))
	binary.Write(buf, binary.BigEndian, uint16(2))
	binary.Write(buf, binary.BigEndian, uint16(model.TicksPerBeat))

	if err := writeTrack(buf, melody, 0, tempo); err != nil {
		return nil, err
	}
	if err := writeTrack(buf, harmony, 1, tempo); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// parseTrackPayload walks one track chunk. The first malformed frame stops
// the walk and everything decoded before it is kept, with Complete false.
func parseTrackPayload(payload []byte, doc *model.MidiDocument) model.Track {
	track := model.Track{Complete: false}
	channelSet := false
	var tick uint32
	p := 0

	for p < len(payload) {
		delta, n, err := DecodeVLQ(payload[p:])
		if err != nil {
			return track
		}
		p += n
		tick += delta

		if p >= len(payload) {
			return track
		}
		status := payload[p]

		switch {
		case status >= 0x80 && status <= 0x9F:
			if p+3 > len(payload) {
				return track
			}
			typ := model.NoteOff
			if status&0xF0 == 0x90 {
				typ = model.NoteOn
			}
			ev := model.MidiEvent{
				Type:     typ,
				Tick:     tick,
				Channel:  status & 0x0F,
				Pitch:    payload[p+1],
				Velocity: payload[p+2],
			}
			if !channelSet {
				track.Channel = ev.Channel
				channelSet = true
			}
			track.Events = append(track.Events, ev)
			p += 3

		case status == 0xFF:
			if p+2 > len(payload) {
				return track
			}
			metaType := payload[p+1]
			metaLen := int(payload[p+2])
			if p+3+metaLen > len(payload) {
				return track
			}
			data := payload[p+3 : p+3+metaLen]
			track.Events = append(track.Events, model.MidiEvent{
				Type:     model.Meta,
				Tick:     tick,
				MetaType: metaType,
				MetaData: data,
			})
			if metaType == metaTempo && metaLen == 3 {
				mpq := uint32(data[0])<<16 | uint32(data[1])<<8 | uint32(data[2])
				if mpq > 0 {
					doc.Tempo = microsPerMinute / float64(mpq)
				}
			}
			p += 3 + metaLen
			if metaType == metaEndOfTrack {
				track.Complete = true
				return track
			}

		default:
			// unknown status byte: structural break, keep what we have
			return track
		}
	}
	return track
}

// Parse validates the header and walks every declared track chunk. Header
// problems are hard errors; anything wrong inside a track degrades to a
// partial Track instead.
func Parse(data []byte) (*model.MidiDocument, error) {
	if len(data) < 14 {
		return nil, fmt.Errorf("%w: %d bytes is too short for a header", ErrBadHeader, len(data))
	}
	if string(data[0:4]) != headerMagic {
		return nil, fmt.Errorf("%w: got %q", ErrBadHeader, data[0:4])
	}
	if binary.BigEndian.Uint32(data[4:8]) != 6 {
		return nil, ErrBadHeaderLength
	}

	doc := &model.MidiDocument{
		Format:       binary.BigEndian.Uint16(data[8:10]),
		TicksPerBeat: binary.BigEndian.Uint16(data[12:14]),
		Tempo:        model.DefaultTempo,
	}
	trackCount := int(binary.BigEndian.Uint16(data[10:12]))

	pos := 14
	for i := 0; i < trackCount; i++ {
		if pos+8 > len(data) || string(data[pos:pos+4]) != trackMagic {
			// can't locate the next chunk boundary; keep prior tracks
			break
		}
		trackLen := int(binary.BigEndian.Uint32(data[pos+4 : pos+8]))
		start := pos + 8
		end := start + trackLen
		truncated := false
		if end > len(data) {
			end = len(data)
			truncated = true
		}
		track := parseTrackPayload(data[start:end], doc)
		if truncated {
			track.Complete = false
		}
		doc.Tracks = append(doc.Tracks, track)
		if truncated {
			break
		}
		pos = start + trackLen
	}
	return doc, nil
}

// PairNotes rebuilds notes from a track's events: each NoteOn is matched to
// the nearest later NoteOff (or zero-velocity NoteOn) of the same pitch and
// channel; unmatched NoteOns are dropped. Gaps of at least half a beat,
// between consecutive notes or between the last note and the end-of-track
// meta, are reconstructed as rests so encoded spaces survive the round
// trip.
func PairNotes(events []model.MidiEvent, ticksPerBeat uint16) []model.Note {
	if ticksPerBeat == 0 {
		ticksPerBeat = model.TicksPerBeat
	}
	restTicks := uint32(ticksPerBeat) / 2

	used := make([]bool, len(events))
	var notes []model.Note
	var cursor uint32
	pos := 0

	for i, ev := range events {
		if ev.Type != model.NoteOn || ev.Velocity == 0 {
			continue
		}
		for j := i + 1; j < len(events); j++ {
			other := events[j]
			if used[j] || other.Pitch != ev.Pitch || other.Channel != ev.Channel {
				continue
			}
			isOff := other.Type == model.NoteOff ||
				(other.Type == model.NoteOn && other.Velocity == 0)
			if !isOff || other.Tick < ev.Tick {
				continue
			}
			used[j] = true

			if ev.Tick > cursor {
				for gap := ev.Tick - cursor; gap >= restTicks; gap -= restTicks {
					notes = append(notes, model.Note{Duration: RestDuration, Position: pos})
					pos++
				}
			}
			notes = append(notes, model.Note{
				Pitch:    ev.Pitch,
				Duration: float64(other.Tick-ev.Tick) / float64(ticksPerBeat),
				Velocity: ev.Velocity,
				Position: pos,
			})
			pos++
			if other.Tick > cursor {
				cursor = other.Tick
			}
			break
		}
	}

	// trailing rests: the end-of-track meta carries the true end tick
	for _, ev := range events {
		if ev.Type == model.Meta && ev.MetaType == metaEndOfTrack && ev.Tick > cursor {
			for gap := ev.Tick - cursor; gap >= restTicks; gap -= restTicks {
				notes = append(notes, model.Note{Duration: RestDuration, Position: pos})
				pos++
			}
		}
	}
	return notes
}
