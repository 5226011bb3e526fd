// Package api exposes the conversion and rendering paths over HTTP for
// the hosted preview flow.
//
// The surface is intentionally small: POST /v1/convert translates between
// dialect text and diagram JSON, POST /v1/render produces SVG or PNG, and
// GET /healthz reports liveness. Editing and persistence stay behind the
// library API.
package api

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/schemadraw/schemadraw/pkg/diagram"
	"github.com/schemadraw/schemadraw/pkg/dialect"
	"github.com/schemadraw/schemadraw/pkg/dialect/dialects"
	"github.com/schemadraw/schemadraw/pkg/errors"
	"github.com/schemadraw/schemadraw/pkg/render"
)

// maxBodyBytes caps request bodies. Dialect text and diagram JSON are
// small; anything larger is abuse.
const maxBodyBytes = 1 << 20

// Server handles the HTTP facade.
type Server struct {
	logger *log.Logger
}

// NewServer creates a server. A nil logger falls back to log.Default().
func NewServer(logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{logger: logger}
}

// Router builds the chi router with all routes registered.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/convert", s.handleConvert)
		r.Post("/render", s.handleRender)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// convertRequest carries either dialect text or a diagram. Exactly one of
// Text and Diagram must be set.
type convertRequest struct {
	Text    string           `json:"text,omitempty"`
	From    diagram.Type     `json:"from,omitempty"`
	Diagram *diagram.Diagram `json:"diagram,omitempty"`
}

type convertResponse struct {
	Text            string           `json:"text,omitempty"`
	Diagram         *diagram.Diagram `json:"diagram,omitempty"`
	Inconsistencies []string         `json:"inconsistencies,omitempty"`
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req convertRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, errors.New(errors.ErrCodeValidation, "invalid request body: %v", err))
		return
	}

	switch {
	case req.Diagram != nil && req.Text != "":
		s.writeError(w, r, errors.New(errors.ErrCodeValidation, "provide either text or diagram, not both"))
	case req.Diagram != nil:
		if err := req.Diagram.Validate(); err != nil {
			s.writeError(w, r, err)
			return
		}
		text, err := dialects.Export(req.Diagram)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, convertResponse{Text: text})
	case req.Text != "":
		d, inconsistencies, err := importText(req.Text, req.From)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, convertResponse{Diagram: d, Inconsistencies: inconsistencies})
	default:
		s.writeError(w, r, errors.New(errors.ErrCodeValidation, "text or diagram is required"))
	}
}

// renderRequest renders dialect text or a diagram to an image.
type renderRequest struct {
	Text           string           `json:"text,omitempty"`
	From           diagram.Type     `json:"from,omitempty"`
	Diagram        *diagram.Diagram `json:"diagram,omitempty"`
	Format         string           `json:"format,omitempty"` // svg (default), png, dot
	Detailed       bool             `json:"detailed,omitempty"`
	IncludePreview bool             `json:"include_preview,omitempty"`
}

var renderContentTypes = map[string]string{
	"svg": "image/svg+xml",
	"png": "image/png",
	"dot": "text/vnd.graphviz",
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, errors.New(errors.ErrCodeValidation, "invalid request body: %v", err))
		return
	}

	format := req.Format
	if format == "" {
		format = "svg"
	}
	contentType, ok := renderContentTypes[format]
	if !ok {
		s.writeError(w, r, errors.New(errors.ErrCodeValidation, "unknown format %q", format))
		return
	}

	d := req.Diagram
	if d == nil {
		if req.Text == "" {
			s.writeError(w, r, errors.New(errors.ErrCodeValidation, "text or diagram is required"))
			return
		}
		var err error
		d, _, err = importText(req.Text, req.From)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
	} else if err := d.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	dot := render.ToDOT(d, render.Options{
		Detailed:       req.Detailed,
		IncludePreview: req.IncludePreview,
	})

	var data []byte
	var err error
	switch format {
	case "dot":
		data = []byte(dot)
	case "svg":
		data, err = render.SVG(r.Context(), dot)
	case "png":
		data, err = render.PNG(r.Context(), dot)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// importText parses dialect text into a materialized diagram.
func importText(text string, from diagram.Type) (*diagram.Diagram, []string, error) {
	var codec dialect.Codec
	var err error
	if from != "" {
		codec, err = dialects.ForType(from)
	} else {
		codec, err = dialects.Detect(text)
	}
	if err != nil {
		return nil, nil, err
	}

	result, err := codec.Import(text, dialect.ImportOptions{})
	if err != nil {
		return nil, nil, err
	}
	shapes, conns, err := result.Materialize()
	if err != nil {
		return nil, nil, err
	}
	return &diagram.Diagram{
		ID:         diagram.NewID(),
		Type:       result.Type,
		Shapes:     shapes,
		Connectors: conns,
	}, result.Inconsistencies, nil
}

// =============================================================================
// Helpers
// =============================================================================

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusForCode maps structured error codes to HTTP status codes.
func statusForCode(code errors.Code) int {
	switch code {
	case errors.ErrCodeValidation, errors.ErrCodeInvalidDialect, errors.ErrCodeInvalidShape:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeShapeNotFound,
		errors.ErrCodeConnectorNotFound, errors.ErrCodeDiagramNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUpstream, errors.ErrCodeGeneration:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == "" {
		var coder interface{ Code() errors.Code }
		if stderrors.As(err, &coder) {
			code = coder.Code()
		}
	}
	status := statusForCode(code)
	if status >= http.StatusInternalServerError {
		s.logger.Errorf("%s %s: %v", r.Method, r.URL.Path, err)
	} else {
		s.logger.Debugf("%s %s: %v", r.Method, r.URL.Path, err)
	}
	writeJSON(w, status, errorResponse{Error: errorBody{
		Code:    string(code),
		Message: err.Error(),
	}})
}
