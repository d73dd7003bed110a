package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/stegomidi/stegomidi/encoder"
	"github.com/stegomidi/stegomidi/model"
)

var (
	encodeOut     string
	encodeMode    string
	encodeKey     string
	encodeTempo   float64
	encodeNoChord bool
	encodeInfo    bool
)

func init() {
	encodeCmd.Flags().StringVarP(&encodeOut, "out", "o", "out.mid", "output file")
	encodeCmd.Flags().StringVar(&encodeMode, "mode", "multi_layer", "encoding layer: pitch, rhythm, interval, multi_layer")
	encodeCmd.Flags().StringVar(&encodeKey, "key", model.DefaultKey, "scale key")
	encodeCmd.Flags().Float64Var(&encodeTempo, "tempo", model.DefaultTempo, "tempo in BPM")
	encodeCmd.Flags().BoolVar(&encodeNoChord, "no-harmony", false, "skip the decorative harmony track")
	encodeCmd.Flags().BoolVar(&encodeInfo, "info", false, "print encoding stats instead of writing a file")
	rootCmd.AddCommand(encodeCmd)
}

var encodeCmd = &cobra.Command{
	Use:   "encode [text]",
	Short: "Embeds text in a MIDI file",
	Long:  `Embeds text in a MIDI file`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			panic("Need exactly 1 arg: the text to embed")
		}
		encode(args[0])
	},
}

func encode(text string) {
	mode, ok := model.ParseEncodingMode(encodeMode)
	if !ok {
		fmt.Printf("Unknown mode %q, falling back to multi_layer\n", encodeMode)
	}
	opts := model.EncodeOptions{
		Tempo:      encodeTempo,
		Key:        encodeKey,
		Mode:       mode,
		AddHarmony: !encodeNoChord,
	}

	if encodeInfo {
		info := encoder.Info(text, opts)
		fmt.Printf("mode: %v  key: %v  tempo: %v\n", info.Mode, info.Key, info.Tempo)
		fmt.Printf("melody notes: %v  harmony notes: %v\n", info.MelodyNotes, info.HarmonyNotes)
		fmt.Printf("length: %.1f beats (%.1fs)\n", info.TotalBeats, info.DurationSecs)
		return
	}

	data, err := encoder.Encode(text, opts)
	if err != nil {
		panic("Could not encode: " + err.Error())
	}
	if err := os.WriteFile(encodeOut, data, 0644); err != nil {
		panic("Could not write output file: " + err.Error())
	}
	fmt.Printf("Wrote %v bytes to %v\n", len(data), encodeOut)
}
