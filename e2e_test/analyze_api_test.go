//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stegomidi/stegomidi/cmd"
	"github.com/stegomidi/stegomidi/encoder"
	"github.com/stegomidi/stegomidi/model"
	"github.com/stretchr/testify/assert"
)

func createAnalyzeReqBody(t *testing.T, midi []byte) io.Reader {
	body := model.AnalyzeRequestBody{Midi: base64.StdEncoding.EncodeToString(midi)}
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	return bytes.NewReader(data)
}

func TestAnalyzeEncodedFileE2E(t *testing.T) {
	midi, err := encoder.Encode("SECRET MESSAGE", model.EncodeOptions{
		Tempo: 120, Key: model.DefaultKey, Mode: model.ModeRhythm,
	})
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/analyze", createAnalyzeReqBody(t, midi))
	w := httptest.NewRecorder()
	cmd.HandleAnalyze(w, req)

	resp := w.Result()
	respBody, _ := io.ReadAll(resp.Body)

	assert := assert.New(t)
	assert.Equal(200, resp.StatusCode)

	var out model.AnalyzeResponse
	err = json.Unmarshal(respBody, &out)
	assert.NoError(err)

	assert.NotEmpty(out.Result.ID)
	assert.GreaterOrEqual(out.Result.Overall, 0.0)
	assert.LessOrEqual(out.Result.Overall, 1.0)
	assert.NotEmpty(out.Result.Risk)
	assert.NotEmpty(out.Comparison.Interpretation)
	// a rhythm-encoded file should trip the bit-duration detector
	assert.True(out.Binary.BitLikeDurations)
}

func TestAnalyzeRejectsBadBase64E2E(t *testing.T) {
	body := bytes.NewReader([]byte(`{"midi": "not base64!!!"}`))
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	w := httptest.NewRecorder()
	cmd.HandleAnalyze(w, req)

	assert.Equal(t, 400, w.Result().StatusCode)
}

func TestAnalyzeRejectsCorruptedHeaderE2E(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/analyze",
		createAnalyzeReqBody(t, []byte("MThx not a midi file")))
	w := httptest.NewRecorder()
	cmd.HandleAnalyze(w, req)

	assert.Equal(t, 422, w.Result().StatusCode)
}
