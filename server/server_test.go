package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"geneflow_go/apperr"
	"geneflow_go/gene_flow"
	"geneflow_go/heatmap"
	"geneflow_go/pipeline"
)

const (
	sampleFASTA = ">s1\nACGTACGT\n>s2\nGGCC\n"
	sampleCSV   = "temp,rain\n10,1\n20,2\n30,3\n"
)

type stubHeatmap struct{ err error }

func (s stubHeatmap) Render() (*heatmap.Image, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &heatmap.Image{
		Grid:      heatmap.RandomGrid(heatmap.GridSize, func() float64 { return 0.5 }),
		MediaType: heatmap.MediaType,
		Data:      []byte("\x89PNG\r\n\x1a\nstub"),
	}, nil
}

func newTestServer(t *testing.T, hm pipeline.Heatmap, maxUpload int64) http.Handler {
	t.Helper()
	orch, err := pipeline.New(pipeline.Config{
		Simulation: gene_flow.DefaultConfig(),
		Heatmap:    hm,
		Log:        zerolog.Nop(),
	})
	require.NoError(t, err)
	return New(Config{
		Port:           0,
		Log:            zerolog.Nop(),
		Pipeline:       orch,
		MaxUploadBytes: maxUpload,
		DevMode:        true,
	}).Handler()
}

type part struct {
	name, filename, body string
}

func multipartRequest(t *testing.T, path string, parts ...part) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		if p.filename == "" {
			require.NoError(t, mw.WriteField(p.name, p.body))
			continue
		}
		fw, err := mw.CreateFormFile(p.name, p.filename)
		require.NoError(t, err)
		_, err = io.WriteString(fw, p.body)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestIndexAndHealth(t *testing.T) {
	h := newTestServer(t, stubHeatmap{}, 0)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/process")

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"healthy"`)
}

func TestProcess_JSON(t *testing.T) {
	h := newTestServer(t, stubHeatmap{}, 0)

	rec := serve(h, multipartRequest(t, "/api/process",
		part{fieldGenetic, "genetic_data.fasta", sampleFASTA},
		part{fieldEnvironmental, "environmental_data.csv", sampleCSV},
	))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res pipeline.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, pipeline.SuccessMessage, res.Message)
	assert.Equal(t, 2, res.GeneticData.Count)
	assert.Len(t, res.GeneFrequencies, 100)
	assert.InDelta(t, 0.77, res.GeneFrequencies[1], 1e-12)
	require.Len(t, res.EnvironmentSummary, 2)
	assert.InDelta(t, 20.0, res.EnvironmentSummary[0].Mean, 1e-12)
	r, ok := res.Correlation.At("temp", "rain")
	require.True(t, ok)
	assert.InDelta(t, 1.0, r, 1e-12)
	require.NotNil(t, res.Heatmap)
	assert.True(t, bytes.HasPrefix(res.Heatmap.Data, []byte("\x89PNG")))
}

func TestProcess_Msgpack(t *testing.T) {
	h := newTestServer(t, stubHeatmap{}, 0)

	req := multipartRequest(t, "/api/process",
		part{fieldGenetic, "a.fasta", sampleFASTA},
		part{fieldEnvironmental, "b.csv", sampleCSV},
	)
	req.Header.Set("Accept", "application/x-msgpack;q=0.9, application/json;q=0.5")
	rec := serve(h, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, MediaTypeMsgpack, rec.Header().Get("Content-Type"))

	var res map[string]any
	require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, pipeline.SuccessMessage, res["message"])
	assert.Len(t, res["gene_frequencies"], 100)
}

func TestProcess_Delimiter(t *testing.T) {
	h := newTestServer(t, stubHeatmap{}, 0)

	rec := serve(h, multipartRequest(t, "/api/process",
		part{fieldGenetic, "a.fasta", sampleFASTA},
		part{fieldEnvironmental, "b.tsv", strings.ReplaceAll(sampleCSV, ",", "\t")},
		part{name: fieldDelimiter, body: "tab"},
	))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestProcess_Errors(t *testing.T) {
	tests := []struct {
		name   string
		parts  []part
		status int
		kind   apperr.Kind
	}{
		{
			name:   "missing environment",
			parts:  []part{{fieldGenetic, "a.fasta", sampleFASTA}},
			status: http.StatusBadRequest,
			kind:   apperr.KindMissingInput,
		},
		{
			name:   "zero-length record",
			parts:  []part{{fieldGenetic, "a.fasta", ">a\n>b\nAC\n"}, {fieldEnvironmental, "b.csv", sampleCSV}},
			status: http.StatusBadRequest,
			kind:   apperr.KindMalformedRecord,
		},
		{
			name:   "no numeric columns required",
			parts:  []part{{fieldGenetic, "a.fasta", sampleFASTA}, {fieldEnvironmental, "b.csv", "site\nA\n"}, {name: fieldRequireCorrelation, body: "true"}},
			status: http.StatusBadRequest,
			kind:   apperr.KindNoNumericData,
		},
		{
			name:   "bad require flag",
			parts:  []part{{fieldGenetic, "a.fasta", sampleFASTA}, {fieldEnvironmental, "b.csv", sampleCSV}, {name: fieldRequireCorrelation, body: "sometimes"}},
			status: http.StatusBadRequest,
			kind:   apperr.KindMalformedInput,
		},
		{
			name:   "bad delimiter",
			parts:  []part{{fieldGenetic, "a.fasta", sampleFASTA}, {fieldEnvironmental, "b.csv", sampleCSV}, {name: fieldDelimiter, body: "::"}},
			status: http.StatusBadRequest,
			kind:   apperr.KindMalformedInput,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestServer(t, stubHeatmap{}, 0)
			rec := serve(h, multipartRequest(t, "/api/process", tc.parts...))
			assert.Equal(t, tc.status, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tc.kind, body.Kind)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestProcess_NotMultipart(t *testing.T) {
	h := newTestServer(t, stubHeatmap{}, 0)
	req := httptest.NewRequest(http.MethodPost, "/api/process", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")

	rec := serve(h, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperr.KindMissingInput, decodeError(t, rec).Kind)
}

func TestProcess_TooLarge(t *testing.T) {
	h := newTestServer(t, stubHeatmap{}, 64)
	rec := serve(h, multipartRequest(t, "/api/process",
		part{fieldGenetic, "a.fasta", sampleFASTA},
		part{fieldEnvironmental, "b.csv", sampleCSV},
	))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestProcess_HeatmapFailure(t *testing.T) {
	h := newTestServer(t, stubHeatmap{err: errors.New("boom")}, 0)
	rec := serve(h, multipartRequest(t, "/api/process",
		part{fieldGenetic, "a.fasta", sampleFASTA},
		part{fieldEnvironmental, "b.csv", sampleCSV},
	))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, apperr.KindImageEncoding, decodeError(t, rec).Kind)
}

func TestUploadGenomicData(t *testing.T) {
	h := newTestServer(t, stubHeatmap{}, 0)

	rec := serve(h, multipartRequest(t, "/api/uploadGenomicData",
		part{fieldGenetic, "a.fasta", sampleFASTA}))
	require.Equal(t, http.StatusOK, rec.Code)
	var body genomicResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.GeneticData.Count)
	assert.Equal(t, 8, body.GeneticData.MaxLength)

	rec = serve(h, multipartRequest(t, "/api/uploadGenomicData",
		part{fieldEnvironmental, "b.csv", sampleCSV}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperr.KindMissingInput, decodeError(t, rec).Kind)
}

func TestUploadEnvData(t *testing.T) {
	h := newTestServer(t, stubHeatmap{}, 0)

	rec := serve(h, multipartRequest(t, "/api/uploadEnvData",
		part{fieldEnvironmental, "b.csv", "site,temp,rain\nA,10,1\nB,20,2\nC,30,3\n"}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body envResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Summary, 2)
	assert.Equal(t, []string{"site"}, body.ExcludedColumns)
	assert.Empty(t, body.Warnings)

	rec = serve(h, multipartRequest(t, "/api/uploadEnvData",
		part{fieldEnvironmental, "b.csv", "site\nA\n"}))
	require.Equal(t, http.StatusOK, rec.Code)
	body = envResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Empty(t, body.Summary)
	assert.Len(t, body.Warnings, 1)
}

func TestRunSimulation(t *testing.T) {
	h := newTestServer(t, stubHeatmap{}, 0)

	rec := serve(h, httptest.NewRequest(http.MethodPost, "/api/runSimulation", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var sim pipeline.Simulation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sim))
	assert.Len(t, sim.GeneFrequencies, 100)
	assert.InDelta(t, 0.77, sim.GeneFrequencies[1], 1e-12)

	rec = serve(h, httptest.NewRequest(http.MethodPost, "/api/runSimulation",
		strings.NewReader(`{"selection_pressure": 0, "migration_rate": 0, "mutation_rate": 0}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	sim = pipeline.Simulation{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sim))
	for _, f := range sim.GeneFrequencies {
		assert.Equal(t, 0.5, f)
	}

	for _, body := range []string{`{"mutation_rate": 3}`, `{"speed": 1}`, `not json`} {
		rec = serve(h, httptest.NewRequest(http.MethodPost, "/api/runSimulation", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, apperr.KindMalformedInput, decodeError(t, rec).Kind, body)
	}
}

func TestRunSimulation_Diverges(t *testing.T) {
	h := newTestServer(t, stubHeatmap{}, 0)

	rec := serve(h, httptest.NewRequest(http.MethodPost, "/api/runSimulation",
		strings.NewReader(`{"selection_pressure": 10}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, apperr.KindMalformedInput, body.Kind)
	assert.Contains(t, body.Error, "diverged")
}

func TestProcess_OverflowingEnvColumn(t *testing.T) {
	h := newTestServer(t, stubHeatmap{}, 0)

	rec := serve(h, multipartRequest(t, "/api/process",
		part{fieldGenetic, "genetic_data.fasta", sampleFASTA},
		part{fieldEnvironmental, "environmental_data.csv", "a,b\n1e308,1\n1e308,2\n-1e308,3\n"},
	))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res pipeline.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, []string{"a"}, res.ExcludedColumns)
	require.Len(t, res.EnvironmentSummary, 1)
	assert.Equal(t, "b", res.EnvironmentSummary[0].Name)
}

func TestWriteResult_EncodingFailure(t *testing.T) {
	s := &Server{log: zerolog.Nop()}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.writeResult(rec, req, http.StatusOK, map[string]float64{"mean": math.NaN()})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, apperr.KindInternal, decodeError(t, rec).Kind)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", MediaTypeMsgpack)
	rec = httptest.NewRecorder()
	s.writeResult(rec, req, http.StatusOK, map[string]interface{}{"c": make(chan int)})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, MediaTypeMsgpack, rec.Header().Get("Content-Type"))
	var body map[string]string
	require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(apperr.KindInternal), body["kind"])
}

func TestGenerateHeatmap(t *testing.T) {
	r, err := heatmap.NewRenderer(heatmap.Options{})
	require.NoError(t, err)
	h := newTestServer(t, r, 0)

	rec := serve(h, httptest.NewRequest(http.MethodPost, "/api/generateHeatmap", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, heatmap.MediaType, rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG\r\n\x1a\n")))
	assert.Equal(t, fmt.Sprint(rec.Body.Len()), rec.Header().Get("Content-Length"))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperr.New("op", apperr.KindMissingInput, "x"), http.StatusBadRequest},
		{apperr.New("op", apperr.KindNoNumericData, "x"), http.StatusBadRequest},
		{apperr.New("op", apperr.KindImageEncoding, "x"), http.StatusInternalServerError},
		{errors.New("unclassified"), http.StatusInternalServerError},
		{apperr.Wrap("op", apperr.KindMalformedInput, &http.MaxBytesError{Limit: 1}), http.StatusRequestEntityTooLarge},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}

func TestWantsMsgpack(t *testing.T) {
	for accept, want := range map[string]bool{
		"":                               false,
		"application/json":               false,
		"application/msgpack":            true,
		"text/html, application/msgpack": true,
		"application/x-msgpack; q=1":     true,
		"*/*":                            false,
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept", accept)
		assert.Equal(t, want, wantsMsgpack(req), accept)
	}
}
