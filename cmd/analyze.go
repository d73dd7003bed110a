package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/stegomidi/stegomidi/analyzer"
	"github.com/stegomidi/stegomidi/decoder"
	"github.com/stegomidi/stegomidi/model"
)

var analyzeJSON bool

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "emit JSON instead of the text report")
	rootCmd.AddCommand(analyzeCmd)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file.mid]",
	Short: "Scores a MIDI file for steganographic suspicion",
	Long:  `Scores a MIDI file for steganographic suspicion`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			panic("Need exactly 1 arg: the MIDI file")
		}
		analyze(args[0])
	},
}

func analyze(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		panic("Could not read file: " + err.Error())
	}

	res, err := analyzer.AnalyzeFile(data)
	if err != nil {
		panic("Could not analyze: " + err.Error())
	}
	notes, err := decoder.MelodyNotes(data)
	if err != nil {
		panic("Could not pair notes: " + err.Error())
	}
	comparison := analyzer.CompareToNatural(res.Stats)
	binary := analyzer.DetectBinaryEncodingPatterns(notes)
	chi := analyzer.ChiSquareTest(res.Stats.Pitch.ClassHist)

	if analyzeJSON {
		out := struct {
			Result     model.AnalysisResult      `json:"result"`
			Comparison model.NaturalComparison   `json:"comparison"`
			Binary     model.BinaryPatternResult `json:"binary_patterns"`
			ChiSquare  model.ChiSquareResult     `json:"chi_square"`
		}{res, comparison, binary, chi}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			panic("Could not marshal result: " + err.Error())
		}
		return
	}

	fmt.Print(analyzer.GenerateReport(res))
	fmt.Printf("\nBaseline comparison: %.3f deviation\n  %s\n",
		comparison.OverallDeviation, comparison.Interpretation)
	fmt.Printf("Binary patterns: %s\n", binary.Verdict)
	fmt.Printf("Chi-square: %.2f (p=%.4f, significant=%v)\n",
		chi.Statistic, chi.PValue, chi.Significant)
}
