package model

type AnalyzeRequestBody struct {
	// Midi is the SMF file, base64 encoded.
	Midi string `json:"midi"`
}

type AnalyzeResponse struct {
	Result     AnalysisResult      `json:"result"`
	Comparison NaturalComparison   `json:"comparison"`
	Binary     BinaryPatternResult `json:"binary_patterns"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
