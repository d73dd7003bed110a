package constants

import "os"

func GetListenAddr() string {
	addr := os.Getenv("LISTEN_ADDR")
	if addr != "" {
		return addr
	}
	return ":8080"
}

func GetDynamoEndpoint() string {
	endpoint := os.Getenv("DYNAMO_ENDPOINT")
	if endpoint != "" {
		return endpoint
	}
	return "http://localhost:8000"
}

func GetAnalysisTable() string {
	return os.Getenv("ANALYSIS_TABLE")
}

// AnalysisStoreEnabled reports whether analysis results should be persisted.
func AnalysisStoreEnabled() bool {
	return GetAnalysisTable() != ""
}
