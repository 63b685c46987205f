// Package http exposes a debug and control surface for a running app: state
// inspection, transition history and name-based requests, plus health and
// Prometheus endpoints.
package http

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Git0Shuai/bevy/pkg/domain"
	"github.com/Git0Shuai/bevy/pkg/ports"
	"github.com/Git0Shuai/bevy/pkg/runner"
)

// openapiSpec is the OpenAPI document describing this API, served at
// /openapi.yaml and validated in tests.
//
//go:embed openapi.yaml
var openapiSpec []byte

// Runtime defines what the handler needs from the state engine. *bevy.App
// satisfies it.
type Runtime interface {
	Built() bool
	Descriptors() []domain.Descriptor
	Value(kind string) (string, bool)
	Records() []domain.Transition
	LastTransition(kind string) (domain.Transition, bool)
	PassCount() uint64
	RequestByName(kind, value string) error
}

// Server handles the debug API routes.
type Server struct {
	Runtime Runtime
	Journal ports.TransitionJournal
}

type Option func(*Server)

// WithJournal mounts GET /v1/journal backed by the given journal.
func WithJournal(j ports.TransitionJournal) Option {
	return func(s *Server) {
		s.Journal = j
	}
}

// NewHandler creates the HTTP handler for the runtime.
func NewHandler(rt Runtime, opts ...Option) http.Handler {
	server := &Server{Runtime: rt}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()

	// Swagger UI
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(openapiSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})

	r.Get("/healthz", server.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/states", server.ListStates)
		r.Get("/states/{name}", server.GetState)
		r.Post("/states/{name}", server.RequestState)
		r.Get("/transitions", server.ListTransitions)
		if server.Journal != nil {
			r.Get("/journal", server.ListJournal)
		}
	})

	return enableCORS(r)
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Bevy API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// StateView is the wire form of one state kind.
type StateView struct {
	Name    string   `json:"name"`
	Variant string   `json:"variant"`
	Sources []string `json:"sources,omitempty"`
	Value   *string  `json:"value"`
}

// StateDetail extends StateView with the kind's most recent record.
type StateDetail struct {
	StateView
	LastTransition *domain.Transition `json:"last_transition,omitempty"`
}

// RequestBody carries the encoded value of a POST /v1/states/{name} call.
type RequestBody struct {
	Value string `json:"value"`
}

// Health handles the GET /healthz request.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"built":  s.Runtime.Built(),
		"pass":   s.Runtime.PassCount(),
	})
}

// ListStates handles the GET /v1/states request.
func (s *Server) ListStates(w http.ResponseWriter, r *http.Request) {
	descs := s.Runtime.Descriptors()
	names := nameIndex(descs)
	views := make([]StateView, 0, len(descs))
	for _, d := range descs {
		views = append(views, s.view(d, names))
	}
	writeJSON(w, http.StatusOK, views)
}

// GetState handles the GET /v1/states/{name} request.
func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	descs := s.Runtime.Descriptors()
	for _, d := range descs {
		if d.Name != name {
			continue
		}
		detail := StateDetail{StateView: s.view(d, nameIndex(descs))}
		if tr, ok := s.Runtime.LastTransition(name); ok {
			detail.LastTransition = &tr
		}
		writeJSON(w, http.StatusOK, detail)
		return
	}
	http.Error(w, fmt.Sprintf("unknown state kind %q", name), http.StatusNotFound)
}

// RequestState handles the POST /v1/states/{name} request. The change is
// queued, not applied: it takes effect on the app's next tick, so the reply
// is 202 Accepted.
func (s *Server) RequestState(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var body RequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		slog.Warn("RequestState: invalid request body", "error", err)
		return
	}

	// Sanitize input (global policy)
	clean, err := runner.SanitizeInput(body.Value)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid value: %v", err), http.StatusBadRequest)
		slog.Warn("RequestState: value rejected", "error", err, "size", len(body.Value))
		return
	}
	body.Value = clean

	if err := s.Runtime.RequestByName(name, body.Value); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, domain.ErrUnknownKind) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		slog.Warn("RequestState failed", "kind", name, "error", err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"kind":   name,
		"value":  body.Value,
		"queued": true,
	})
}

// ListTransitions handles the GET /v1/transitions request, returning the
// records of the most recent pass.
func (s *Server) ListTransitions(w http.ResponseWriter, r *http.Request) {
	recs := s.Runtime.Records()
	if recs == nil {
		recs = []domain.Transition{}
	}
	writeJSON(w, http.StatusOK, recs)
}

// ListJournal handles the GET /v1/journal request. An optional limit query
// parameter keeps only the most recent records.
func (s *Server) ListJournal(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			http.Error(w, "limit must be an integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	recs, err := s.Journal.List(r.Context(), limit)
	if err != nil {
		http.Error(w, fmt.Sprintf("journal error: %v", err), http.StatusInternalServerError)
		slog.Error("ListJournal failed", "error", err)
		return
	}
	if recs == nil {
		recs = []domain.Transition{}
	}
	writeJSON(w, http.StatusOK, recs)
}

// -- Helpers --

func (s *Server) view(d domain.Descriptor, names map[domain.KindID]string) StateView {
	v := StateView{
		Name:    d.Name,
		Variant: d.Variant.String(),
	}
	for _, src := range d.Sources {
		v.Sources = append(v.Sources, names[src])
	}
	if val, ok := s.Runtime.Value(d.Name); ok {
		v.Value = &val
	}
	return v
}

func nameIndex(descs []domain.Descriptor) map[domain.KindID]string {
	names := make(map[domain.KindID]string, len(descs))
	for _, d := range descs {
		names[d.ID] = d.Name
	}
	return names
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode error", "error", err)
	}
}
