package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/vmihailenco/msgpack/v5"

	"geneflow_go/apperr"
)

// MediaTypeMsgpack is the negotiated binary encoding of JSON responses.
const MediaTypeMsgpack = "application/msgpack"

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error string      `json:"error"`
	Kind  apperr.Kind `json:"kind"`
}

// encodeFailure replaces a response body that could not be encoded.
var encodeFailure = errorResponse{Error: "failed to encode response", Kind: apperr.KindInternal}

// writeJSON writes a JSON response. The body is encoded before the status is
// committed so an encoding failure still yields a well-formed 500.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
		buf.Reset()
		_ = json.NewEncoder(&buf).Encode(encodeFailure)
		status = http.StatusInternalServerError
	}
	s.writeBody(w, status, "application/json", buf.Bytes())
}

// writeMsgpack writes a MessagePack response keyed by the json field names.
func (s *Server) writeMsgpack(w http.ResponseWriter, status int, data interface{}) {
	body, err := encodeMsgpack(data)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to encode msgpack response")
		body, _ = encodeMsgpack(encodeFailure)
		status = http.StatusInternalServerError
	}
	s.writeBody(w, status, MediaTypeMsgpack, body)
}

func encodeMsgpack(data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Server) writeBody(w http.ResponseWriter, status int, mediaType string, body []byte) {
	w.Header().Set("Content-Type", mediaType)
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		s.log.Debug().Err(err).Msg("Failed to write response body")
	}
}

// writeResult encodes data in the representation the client accepts.
func (s *Server) writeResult(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	if wantsMsgpack(r) {
		s.writeMsgpack(w, status, data)
		return
	}
	s.writeJSON(w, status, data)
}

// writeError maps err to a status and writes the error body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	kind := apperr.KindOf(err)

	msg := err.Error()
	var ae *apperr.Error
	if errors.As(err, &ae) {
		msg = ae.Message()
	}
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Str("request_id", middleware.GetReqID(r.Context())).Msg("Request failed")
	} else {
		s.log.Debug().Err(err).Str("kind", string(kind)).Msg("Request rejected")
	}

	s.writeResult(w, r, status, errorResponse{Error: msg, Kind: kind})
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	if apperr.KindOf(err).ClientFault() {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func wantsMsgpack(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		if mt == MediaTypeMsgpack || mt == "application/x-msgpack" {
			return true
		}
	}
	return false
}
