package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "stegomidi",
	Short: "MIDI steganography encoder and forensic analyzer",
	Long:  `Embeds text in MIDI files and detects files that carry hidden text.`,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
