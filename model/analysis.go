package model

// PitchStats is what AnalyzePitchDistribution produces.
type PitchStats struct {
	Count      int           `json:"count"`
	Mean       float64       `json:"mean"`
	Median     float64       `json:"median"`
	StdDev     float64       `json:"std_dev"`
	Entropy    float64       `json:"entropy"`
	ClassHist  map[uint8]int `json:"class_hist"` // pitch mod 12
	ValueHist  map[uint8]int `json:"value_hist"`
	UniqueVals int           `json:"unique_vals"`
}

type RhythmStats struct {
	Count        int             `json:"count"`
	TotalBeats   float64         `json:"total_beats"`
	UniqueDurs   int             `json:"unique_durs"`
	DurationHist map[float64]int `json:"-"`
	MeanDuration float64         `json:"mean_duration"`
	Entropy      float64         `json:"entropy"`
	Syncopation  float64         `json:"syncopation"`
}

type IntervalStats struct {
	Count        int         `json:"count"`
	MeanAbs      float64     `json:"mean_abs"`
	MaxAbs       int         `json:"max_abs"`
	Hist         map[int]int `json:"-"`
	UniqueVals   int         `json:"unique_vals"`
	SingleRepeat bool        `json:"single_repeat"`
}

// RhythmSuspicion is the RhythmEncoder's standalone heuristic.
type RhythmSuspicion struct {
	Score            float64 `json:"score"`
	EntropyScore     float64 `json:"entropy_score"`
	VarietyScore     float64 `json:"variety_score"`
	SyncopationScore float64 `json:"syncopation_score"`
	EntropyFlag      bool    `json:"entropy_flag"`
	VarietyFlag      bool    `json:"variety_flag"`
	SyncopationFlag  bool    `json:"syncopation_flag"`
}

// ModeCandidate ranks how well an encoding mode explains a note sequence.
type ModeCandidate struct {
	Mode  EncodingMode `json:"mode"`
	Score float64      `json:"score"`
}

// StatsBundle is the full statistical extraction Decoder.Analyze returns.
type StatsBundle struct {
	NoteCount       int             `json:"note_count"`
	TrackCount      int             `json:"track_count"`
	Pitch           PitchStats      `json:"pitch"`
	Rhythm          RhythmStats     `json:"rhythm"`
	Intervals       IntervalStats   `json:"intervals"`
	RhythmSuspicion RhythmSuspicion `json:"rhythm_suspicion"`
	Candidates      []ModeCandidate `json:"candidates"`
}

type RiskLevel string

const (
	RiskMinimal RiskLevel = "Minimal"
	RiskLow     RiskLevel = "Low"
	RiskMedium  RiskLevel = "Medium"
	RiskHigh    RiskLevel = "High"
)

type AnalysisResult struct {
	ID              string    `json:"id"`
	PitchScore      float64   `json:"pitch_score"`
	RhythmScore     float64   `json:"rhythm_score"`
	IntervalScore   float64   `json:"interval_score"`
	RhythmEncScore  float64   `json:"rhythm_enc_score"`
	Overall         float64   `json:"overall_suspicion_score"`
	Risk            RiskLevel `json:"risk_level"`
	Anomalies       []string  `json:"anomalies"`
	Recommendations []string  `json:"recommendations"`

	Stats StatsBundle `json:"stats"`
}

// NaturalComparison is the output of analyzer.CompareToNatural.
type NaturalComparison struct {
	PitchClassDivergence float64 `json:"pitch_class_divergence"`
	IntervalDivergence   float64 `json:"interval_divergence"`
	RhythmEntropyDiff    float64 `json:"rhythm_entropy_diff"`
	OverallDeviation     float64 `json:"overall_deviation"`
	Interpretation       string  `json:"interpretation"`
}

type BinaryVerdict string

const (
	VerdictHighlySuspicious   BinaryVerdict = "HighlySuspicious"
	VerdictSuspicious         BinaryVerdict = "Suspicious"
	VerdictPossiblySuspicious BinaryVerdict = "PossiblySuspicious"
	VerdictAppearsNatural     BinaryVerdict = "AppearsNatural"
)

// BinaryPatternResult carries the four structural detector flags.
type BinaryPatternResult struct {
	Alternating      bool          `json:"alternating_durations"`
	RepeatedPattern  bool          `json:"repeated_pattern"`
	UniformChunks    bool          `json:"uniform_chunk_entropy"`
	BitLikeDurations bool          `json:"bit_like_durations"`
	Verdict          BinaryVerdict `json:"verdict"`
}

type ChiSquareResult struct {
	Statistic   float64 `json:"statistic"`
	DegreesFree int     `json:"degrees_free"`
	PValue      float64 `json:"p_value"`
	Significant bool    `json:"significant"`
}
