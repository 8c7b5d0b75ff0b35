package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"geneflow_go/apperr"
	"geneflow_go/config"
	"geneflow_go/env_summary"
	"geneflow_go/fasta_stats"
	"geneflow_go/pipeline"
)

// Multipart field names.
const (
	fieldGenetic            = "genetic_file"
	fieldEnvironmental      = "environmental_file"
	fieldDelimiter          = "delimiter"
	fieldRequireCorrelation = "require_correlation"
)

// Parts beyond this stay on disk until the request ends.
const multipartMemory = 8 << 20

var endpoints = []string{
	"GET /health",
	"POST /api/process",
	"POST /api/uploadGenomicData",
	"POST /api/uploadEnvData",
	"POST /api/runSimulation",
	"POST /api/generateHeatmap",
}

// handleIndex lists the available endpoints
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "Welcome to the GeneFlow API",
		"endpoints": endpoints,
	})
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"version": config.MainVersion,
		"service": "geneflow",
	})
}

// handleProcess runs the full pipeline on the two uploaded documents
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	form, err := s.parseUpload(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer form.RemoveAll()

	in := pipeline.Input{}
	if in.Delimiter, err = s.formDelimiter(form); err != nil {
		s.writeError(w, r, err)
		return
	}
	if in.RequireCorrelation, err = formBool(form, fieldRequireCorrelation); err != nil {
		s.writeError(w, r, err)
		return
	}
	seqs, err := openPart(form, fieldGenetic)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	env, err := openPart(form, fieldEnvironmental)
	if err != nil {
		closeIf(seqs)
		s.writeError(w, r, err)
		return
	}
	in.Sequences, in.Environment = seqs, env

	res, err := s.pipeline.Process(in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeResult(w, r, http.StatusOK, res)
}

type genomicResponse struct {
	Message     string            `json:"message"`
	GeneticData fasta_stats.Stats `json:"genetic_data"`
}

// handleUploadGenomicData summarizes an uploaded FASTA collection
func (s *Server) handleUploadGenomicData(w http.ResponseWriter, r *http.Request) {
	form, err := s.parseUpload(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer form.RemoveAll()

	f, err := openPart(form, fieldGenetic)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	st, err := s.pipeline.SequenceStats(f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeResult(w, r, http.StatusOK, genomicResponse{
		Message:     "Genomic data processed successfully",
		GeneticData: st,
	})
}

type envResponse struct {
	Message         string                        `json:"message"`
	Summary         []env_summary.ColumnSummary   `json:"environmental_data_summary"`
	ExcludedColumns []string                      `json:"excluded_columns"`
	Correlation     env_summary.CorrelationMatrix `json:"correlation_matrix"`
	Warnings        []string                      `json:"warnings,omitempty"`
}

// handleUploadEnvData summarizes an uploaded environmental table
func (s *Server) handleUploadEnvData(w http.ResponseWriter, r *http.Request) {
	form, err := s.parseUpload(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer form.RemoveAll()

	delim, err := s.formDelimiter(form)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	requireCorr, err := formBool(form, fieldRequireCorrelation)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	f, err := openPart(form, fieldEnvironmental)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var warnings []string
	sum, err := s.pipeline.EnvironmentSummary(f, delim)
	if err != nil {
		var ae *apperr.Error
		if requireCorr || sum == nil || !errors.As(err, &ae) || ae.Kind != apperr.KindNoNumericData {
			s.writeError(w, r, err)
			return
		}
		warnings = append(warnings, ae.Message())
	}

	excluded := sum.Dataset.Excluded
	if excluded == nil {
		excluded = []string{}
	}
	s.writeResult(w, r, http.StatusOK, envResponse{
		Message:         "Environmental data processed successfully",
		Summary:         sum.Columns,
		ExcludedColumns: excluded,
		Correlation:     sum.Correlation,
		Warnings:        warnings,
	})
}

// handleRunSimulation runs the recurrence, optionally overriding the configured rates
func (s *Server) handleRunSimulation(w http.ResponseWriter, r *http.Request) {
	var ro pipeline.RateOverrides
	if r.Body != nil {
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&ro); err != nil && !errors.Is(err, io.EOF) {
			s.writeError(w, r, apperr.Wrap("server.run_simulation", apperr.KindMalformedInput, err))
			return
		}
	}

	sim, err := s.pipeline.Simulate(ro)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeResult(w, r, http.StatusOK, sim)
}

// handleGenerateHeatmap returns a freshly drawn heatmap as a PNG body
func (s *Server) handleGenerateHeatmap(w http.ResponseWriter, r *http.Request) {
	img, err := s.pipeline.RenderHeatmap()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", img.MediaType)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(img.Data); err != nil {
		s.log.Error().Err(err).Msg("Failed to write heatmap")
	}
}

// parseUpload bounds the request body and parses it as a multipart form.
func (s *Server) parseUpload(w http.ResponseWriter, r *http.Request) (*multipart.Form, error) {
	if r.ContentLength > s.maxUpload {
		return nil, apperr.Wrap("server.upload", apperr.KindMalformedInput,
			&http.MaxBytesError{Limit: s.maxUpload})
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return nil, apperr.Wrap("server.upload", apperr.KindMalformedInput, err)
		case errors.Is(err, http.ErrNotMultipart):
			return nil, apperr.New("server.upload", apperr.KindMissingInput,
				"expected a multipart/form-data upload")
		default:
			return nil, apperr.Wrap("server.upload", apperr.KindMalformedInput, err)
		}
	}
	return r.MultipartForm, nil
}

func (s *Server) formDelimiter(form *multipart.Form) (rune, error) {
	v := formValue(form, fieldDelimiter)
	if v == "" {
		return s.delimiter, nil
	}
	return env_summary.ParseDelimiter(v)
}

func formBool(form *multipart.Form, name string) (bool, error) {
	v := formValue(form, name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, apperr.New("server.upload", apperr.KindMalformedInput,
			"%s must be a boolean, got %q", name, v)
	}
	return b, nil
}

func formValue(form *multipart.Form, name string) string {
	if vs := form.Value[name]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// openPart opens the first file uploaded under name. A missing part is not an
// error here: it yields a nil file and the pipeline reports missing_input.
func openPart(form *multipart.Form, name string) (multipart.File, error) {
	fhs := form.File[name]
	if len(fhs) == 0 {
		return nil, nil
	}
	f, err := fhs[0].Open()
	if err != nil {
		return nil, apperr.Wrap("server.upload", apperr.KindMalformedInput, err)
	}
	return f, nil
}

func closeIf(f multipart.File) {
	if f != nil {
		_ = f.Close()
	}
}
