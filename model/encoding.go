package model

type EncodingMode uint8

const (
	ModePitch EncodingMode = iota
	ModeRhythm
	ModeInterval
	ModeMultiLayer
)

func (m EncodingMode) String() string {
	switch m {
	case ModePitch:
		return "pitch"
	case ModeRhythm:
		return "rhythm"
	case ModeInterval:
		return "interval"
	case ModeMultiLayer:
		return "multi_layer"
	}
	return "unknown"
}

func ParseEncodingMode(s string) (EncodingMode, bool) {
	switch s {
	case "pitch":
		return ModePitch, true
	case "rhythm":
		return ModeRhythm, true
	case "interval":
		return ModeInterval, true
	case "multi_layer", "multilayer":
		return ModeMultiLayer, true
	}
	return ModeMultiLayer, false
}

const (
	DefaultTempo = 120.0
	DefaultKey   = "c_major"
)

type EncodeOptions struct {
	Tempo      float64
	Key        string
	Mode       EncodingMode
	AddHarmony bool
}

func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{
		Tempo:      DefaultTempo,
		Key:        DefaultKey,
		Mode:       ModeMultiLayer,
		AddHarmony: true,
	}
}

type DecodeOptions struct {
	// Mode is nil for auto-detection.
	Mode *EncodingMode
	Key  string
}

func DefaultDecodeOptions() DecodeOptions {
	return DecodeOptions{Key: DefaultKey}
}

// EncodingInfo describes what an encode call would produce, without
// serializing anything.
type EncodingInfo struct {
	Mode           EncodingMode `json:"mode"`
	Key            string       `json:"key"`
	Tempo          float64      `json:"tempo"`
	CharCount      int          `json:"char_count"`
	MelodyNotes    int          `json:"melody_notes"`
	HarmonyNotes   int          `json:"harmony_notes"`
	TotalBeats     float64      `json:"total_beats"`
	DurationSecs   float64      `json:"duration_secs"`
	NotesPerChar   float64      `json:"notes_per_char"`
	HarmonyEnabled bool         `json:"harmony_enabled"`
}
