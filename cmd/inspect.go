package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/stegomidi/stegomidi/midifile"
	"gitlab.com/gomidi/midi/v2/smf"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [file.mid]",
	Short: "Inspects a MIDI file with both parsers",
	Long:  `Parses a MIDI file with the built-in codec and with gomidi, side by side, to confirm the file reads identically under standard tooling.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			panic("Need exactly 1 arg: the MIDI file")
		}
		inspect(args[0])
	},
}

// readWithGomidi wraps smf.ReadFrom. gomidi panics on some malformed
// files, so recover into an error.
// https://github.com/gomidi/midi/issues/20
func readWithGomidi(data []byte) (s *smf.SMF, e error) {
	defer func() {
		if r, ok := recover().(string); ok {
			e = errors.New(r)
		}
	}()
	return smf.ReadFrom(bytes.NewReader(data))
}

func inspect(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		panic("Could not read file: " + err.Error())
	}

	doc, err := midifile.Parse(data)
	if err != nil {
		fmt.Printf("built-in codec: %v\n", err)
	} else {
		fmt.Printf("built-in codec: format %v, %v ticks/beat, tempo %.1f BPM\n",
			doc.Format, doc.TicksPerBeat, doc.Tempo)
		for i, t := range doc.Tracks {
			fmt.Printf("  track %v: channel %v, %v events, complete=%v\n",
				i, t.Channel, len(t.Events), t.Complete)
		}
	}

	parsed, err := readWithGomidi(data)
	if err != nil {
		fmt.Printf("gomidi: %v\n", err)
		return
	}
	fmt.Printf("gomidi: %v tracks, time format %v\n", len(parsed.Tracks), parsed.TimeFormat)
	for i, track := range parsed.Tracks {
		var notes int
		for _, ev := range track {
			var ch, key, vel uint8
			if ev.Message.GetNoteOn(&ch, &key, &vel) {
				notes++
			}
		}
		fmt.Printf("  track %v: %v events, %v note-ons\n", i, len(track), notes)
	}
}
