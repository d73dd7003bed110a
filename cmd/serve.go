package cmd

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"github.com/stegomidi/stegomidi/analyzer"
	"github.com/stegomidi/stegomidi/constants"
	"github.com/stegomidi/stegomidi/db"
	"github.com/stegomidi/stegomidi/decoder"
	"github.com/stegomidi/stegomidi/model"
	"go.uber.org/zap"
)

var log *zap.Logger

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the analysis API",
	Long:  `Serves the analysis API`,
	Run: func(cmd *cobra.Command, args []string) {
		serve()
	},
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.ErrorResponse{Error: msg})
}

// HandleAnalyze scores a base64-encoded SMF posted as JSON.
func HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, 400, "could not read request body")
		return
	}

	var input model.AnalyzeRequestBody
	if err := json.Unmarshal(body, &input); err != nil {
		writeError(w, 400, "request body is not valid JSON")
		return
	}

	data, err := base64.StdEncoding.DecodeString(input.Midi)
	if err != nil {
		writeError(w, 400, "midi field is not valid base64")
		return
	}

	res, err := analyzer.AnalyzeFile(data)
	if err != nil {
		writeError(w, 422, err.Error())
		return
	}

	if constants.AnalysisStoreEnabled() {
		if err := db.PutAnalysisRecord(res); err != nil && log != nil {
			log.Warn("could not persist analysis record",
				zap.String("id", res.ID), zap.Error(err))
		}
	}
	if log != nil {
		log.Info("analyzed file",
			zap.String("id", res.ID),
			zap.Int("bytes", len(data)),
			zap.Float64("overall", res.Overall),
			zap.String("risk", string(res.Risk)))
	}

	notes, err := decoder.MelodyNotes(data)
	if err != nil {
		writeError(w, 422, err.Error())
		return
	}
	resp := model.AnalyzeResponse{
		Result:     res,
		Comparison: analyzer.CompareToNatural(res.Stats),
		Binary:     analyzer.DetectBinaryEncodingPatterns(notes),
	}
	json.NewEncoder(w).Encode(resp)
}

// HandleGetAnalysis returns a stored analysis summary by ID.
func HandleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	if !constants.AnalysisStoreEnabled() {
		writeError(w, 404, "analysis store is not enabled")
		return
	}
	id := mux.Vars(r)["id"]
	rec, err := db.GetAnalysisRecord(id)
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	if rec == nil {
		writeError(w, 404, "no analysis with that id")
		return
	}
	json.NewEncoder(w).Encode(rec)
}

func serve() {
	var err error
	log, err = zap.NewProduction()
	if err != nil {
		panic("Could not build logger: " + err.Error())
	}
	defer log.Sync()

	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/analyze", HandleAnalyze).Methods("POST")
	router.HandleFunc("/analyses/{id}", HandleGetAnalysis).Methods("GET")

	handler := cors.Default().Handler(router)
	addr := constants.GetListenAddr()
	log.Info("listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
