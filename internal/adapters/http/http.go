// Package http exposes the facade over a minimal HTTP surface: one
// handler per operation under /api/{operation}, no routing framework and
// no middleware stack — full HTTP routing is explicitly out of scope,
// this is a thin wire adapter like its siblings in internal/adapters.
// Grounded on teacher's internal/server.IndexServer: a *http.ServeMux
// with one mux.HandleFunc(path, s.handleX) registration per endpoint,
// each handler decoding a JSON request body and json.Encode-ing the
// response.
package http

import (
	"encoding/json"
	"net/http"

	"github.com/standardbeagle/lci-analyzer/internal/facade"
	"github.com/standardbeagle/lci-analyzer/internal/report"
)

// apiRequest is the JSON body every /api/{operation} endpoint accepts.
type apiRequest struct {
	ProjectPath string   `json:"project_path"`
	Include     []string `json:"include"`
	Exclude     []string `json:"exclude"`
	Format      string   `json:"format"`
}

// Server wires the facade's operations to HTTP handlers under /api/.
type Server struct {
	f   *facade.Facade
	mux *http.ServeMux
}

// NewServer builds a Server with every /api/{operation} route registered.
func NewServer(f *facade.Facade) *Server {
	s := &Server{f: f, mux: http.NewServeMux()}

	s.mux.HandleFunc("/api/analyze", s.handle(facade.OpAnalyze))
	s.mux.HandleFunc("/api/report/generate", s.handle(facade.OpReportGen))
	s.mux.HandleFunc("/api/quality_gate/evaluate", s.handle(facade.OpQualityGate))

	return s
}

// ServeHTTP implements http.Handler, delegating to the registered mux.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handle(op facade.Operation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req apiRequest
		if r.Body != nil {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err.Error() != "EOF" {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}

		resp, err := s.f.Dispatch(r.Context(), facade.UnifiedRequest{
			Operation:   op,
			ProjectPath: req.ProjectPath,
			Include:     req.Include,
			Exclude:     req.Exclude,
			Format:      report.Format(req.Format),
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		switch op {
		case facade.OpReportGen:
			if report.Format(req.Format) == report.FormatJSON || req.Format == "" {
				w.Write(resp.Rendered)
				return
			}
			w.Header().Set("Content-Type", "text/plain")
			w.Write(resp.Rendered)
		case facade.OpQualityGate:
			json.NewEncoder(w).Encode(resp.Gate)
		default:
			json.NewEncoder(w).Encode(resp.Report)
		}
	}
}
