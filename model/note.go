package model

// TicksPerBeat is the SMF division used everywhere in this project.
const TicksPerBeat = 480

// Note is the intermediate unit between text and the binary format.
// Pitch 0 means a rest: it advances time but never becomes an event.
type Note struct {
	Pitch    uint8
	Duration float64 // beats
	Velocity uint8
	Position int
}

func (n Note) IsRest() bool {
	return n.Pitch == 0
}

type EventType uint8

const (
	NoteOn EventType = iota
	NoteOff
	Meta
)

// MidiEvent only exists while serializing or parsing.
type MidiEvent struct {
	Type     EventType
	Tick     uint32
	Channel  uint8
	Pitch    uint8
	Velocity uint8

	// meta events only
	MetaType uint8
	MetaData []byte
}

// Track holds tick-ordered events for one channel. Complete is false when
// parsing hit a malformed frame and returned everything decoded so far.
type Track struct {
	Channel  uint8
	Events   []MidiEvent
	Complete bool
}

type MidiDocument struct {
	Format       uint16
	TicksPerBeat uint16
	Tempo        float64 // BPM
	Tracks       []Track
}
