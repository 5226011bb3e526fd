// Package suggest integrates AI-generated diagram content.
//
// A suggestion is a comment shape attached to a target shape. Applying
// it sends the target's syntax and the suggestion text to a generation
// service, imports the returned syntax, and splices the result into the
// diagram in place of the target, wrapped in a preview container.
package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/schemadraw/schemadraw/pkg/diagram"
	"github.com/schemadraw/schemadraw/pkg/errors"
	"github.com/schemadraw/schemadraw/pkg/observability"
)

// Request is one generation call.
type Request struct {
	// Syntax is the dialect text of the suggestion's target subgraph.
	Syntax string `json:"syntax"`
	// Suggestion is the user's instruction text.
	Suggestion string `json:"suggestion"`
	// DiagramType selects the dialect the service must answer in.
	DiagramType diagram.Type `json:"diagramType"`
	// AuthToken overrides the client's default token when set.
	AuthToken string `json:"-"`
}

// Response is the generation service's answer.
type Response struct {
	// Syntax is the generated dialect text.
	Syntax string `json:"syntax"`
}

// Generator produces diagram syntax from a suggestion.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}

const httpTimeout = 30 * time.Second

// HTTPGenerator calls a remote generation service over JSON/HTTP.
type HTTPGenerator struct {
	http    *http.Client
	baseURL string
	token   string
}

// NewHTTPGenerator creates a generator client for the given service URL.
// The token is sent as a bearer credential on every request.
func NewHTTPGenerator(baseURL, token string) *HTTPGenerator {
	return &HTTPGenerator{
		http:    &http.Client{Timeout: httpTimeout},
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
	}
}

// Generate posts the request and decodes the generated syntax.
func (g *HTTPGenerator) Generate(ctx context.Context, req Request) (*Response, error) {
	observability.Generation().OnRequest(ctx, string(req.DiagramType))
	start := time.Now()
	resp, err := g.generate(ctx, req)
	observability.Generation().OnResponse(ctx, string(req.DiagramType), time.Since(start), err)
	return resp, err
}

func (g *HTTPGenerator) generate(ctx context.Context, req Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode generation request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/generate", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "build generation request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	token := req.AuthToken
	if token == "" {
		token = g.token
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	httpResp, err := g.http.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUpstream, err, "generation service unreachable")
	}
	defer httpResp.Body.Close()

	if err := checkStatus(httpResp.StatusCode); err != nil {
		return nil, err
	}

	var resp Response
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, errors.Wrap(errors.ErrCodeUpstream, err, "decode generation response")
	}
	if strings.TrimSpace(resp.Syntax) == "" {
		return nil, errors.New(errors.ErrCodeGeneration, "generation service returned empty syntax")
	}
	return &resp, nil
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return errors.New(errors.ErrCodeUpstream, "generation service rejected credentials (status %d)", code)
	case code >= 500:
		return errors.New(errors.ErrCodeUpstream, "generation service error (status %d)", code)
	default:
		return errors.New(errors.ErrCodeGeneration, "generation request rejected (status %d)", code)
	}
}

// Ensure HTTPGenerator implements Generator.
var _ Generator = (*HTTPGenerator)(nil)
