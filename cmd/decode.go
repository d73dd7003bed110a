package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/stegomidi/stegomidi/decoder"
	"github.com/stegomidi/stegomidi/model"
)

var (
	decodeMode string
	decodeKey  string
)

func init() {
	decodeCmd.Flags().StringVar(&decodeMode, "mode", "", "encoding layer, empty for auto-detect")
	decodeCmd.Flags().StringVar(&decodeKey, "key", model.DefaultKey, "scale key")
	rootCmd.AddCommand(decodeCmd)
}

var decodeCmd = &cobra.Command{
	Use:   "decode [file.mid]",
	Short: "Recovers embedded text from a MIDI file",
	Long:  `Recovers embedded text from a MIDI file`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			panic("Need exactly 1 arg: the MIDI file")
		}
		decode(args[0])
	},
}

func decode(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		panic("Could not read file: " + err.Error())
	}

	opts := model.DecodeOptions{Key: decodeKey}
	if decodeMode != "" {
		mode, ok := model.ParseEncodingMode(decodeMode)
		if !ok {
			panic("Unknown mode: " + decodeMode)
		}
		opts.Mode = &mode
	}

	text, err := decoder.Decode(data, opts)
	if err != nil {
		panic("Could not decode: " + err.Error())
	}
	fmt.Println(text)
}
