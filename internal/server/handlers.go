package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/octavate/labelgraph/pkg/buildinfo"
	lgerrors "github.com/octavate/labelgraph/pkg/errors"
	pkgio "github.com/octavate/labelgraph/pkg/io"
	"github.com/octavate/labelgraph/pkg/labelgraph"
	"github.com/octavate/labelgraph/pkg/pipeline"
)

// RunIDHeader carries the id assigned to a POST /convert run.
const RunIDHeader = "X-Run-ID"

// convertResponse is the body of POST /convert.
type convertResponse struct {
	RunID     string                      `json:"run_id"`
	InputHash string                      `json:"input_hash"`
	Cached    bool                        `json:"cached"`
	Stats     statsResponse               `json:"stats"`
	Graph     labelgraph.Graph            `json:"graph"`
	Malformed []labelgraph.MalformedEntry `json:"malformed"`
}

type statsResponse struct {
	Nodes     int                         `json:"nodes"`
	Links     int                         `json:"links"`
	Malformed int                         `json:"malformed"`
	ByType    map[labelgraph.NodeType]int `json:"by_type"`
}

func newStatsResponse(st pipeline.Stats) statsResponse {
	return statsResponse{Nodes: st.Nodes, Links: st.Links, Malformed: st.Malformed, ByType: st.Counts}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	res, ok := s.requireCurrent(w)
	if !ok {
		return
	}
	g := res.Graph
	if q := r.URL.Query().Get("types"); q != "" {
		types, err := parseTypes(q)
		if err != nil {
			writeError(w, err)
			return
		}
		g = labelgraph.Filter(g, types...)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := pkgio.WriteGraph(w, g); err != nil {
		s.logger.Warn("write graph", "err", err)
	}
}

func (s *Server) handleMalformed(w http.ResponseWriter, r *http.Request) {
	res, ok := s.requireCurrent(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, res.Malformed)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	res, ok := s.requireCurrent(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newStatsResponse(res.Stats))
}

func (s *Server) handleRender(format string) http.HandlerFunc {
	contentType := "text/vnd.graphviz; charset=utf-8"
	if format == pipeline.FormatSVG {
		contentType = "image/svg+xml"
	}

	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := s.requireCurrent(w)
		if !ok {
			return
		}

		opts := pipeline.RenderOptions{Format: format, Types: s.opts.RenderTypes, Detailed: s.opts.Detailed}
		q := r.URL.Query()
		if v := q.Get("types"); v != "" {
			types, err := parseTypes(v)
			if err != nil {
				writeError(w, err)
				return
			}
			opts.Types = types
		}
		if v := q.Get("detailed"); v != "" {
			detailed, err := strconv.ParseBool(v)
			if err != nil {
				writeError(w, lgerrors.Wrap(lgerrors.ErrCodeInvalidInput, err, "detailed: %q", v))
				return
			}
			opts.Detailed = detailed
		}

		out, _, err := s.runner.Render(r.Context(), res, opts)
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(out)
	}
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes))
	if err != nil {
		writeError(w, lgerrors.Wrap(lgerrors.ErrCodeInvalidInput, err, "read request body"))
		return
	}

	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))
	res, err := s.runner.Convert(r.Context(), data, pipeline.Options{Refresh: refresh})
	if err != nil {
		writeError(w, err)
		return
	}

	runID := uuid.NewString()
	if replace, _ := strconv.ParseBool(r.URL.Query().Get("replace")); replace {
		s.setCurrent(res)
		s.logger.Info("serving new graph", "run_id", runID, "nodes", res.Stats.Nodes)
	}

	w.Header().Set(RunIDHeader, runID)
	writeJSON(w, http.StatusOK, convertResponse{
		RunID:     runID,
		InputHash: res.InputHash,
		Cached:    res.Cached,
		Stats:     newStatsResponse(res.Stats),
		Graph:     res.Graph,
		Malformed: res.Malformed,
	})
}

func (s *Server) requireCurrent(w http.ResponseWriter) (*pipeline.Result, bool) {
	res := s.Current()
	if res == nil {
		writeError(w, lgerrors.New(lgerrors.ErrCodeNotFound, "no graph loaded"))
		return nil, false
	}
	return res, true
}

func parseTypes(q string) ([]labelgraph.NodeType, error) {
	types, unknown := labelgraph.ParseNodeTypes(q)
	if len(unknown) > 0 {
		return nil, lgerrors.New(lgerrors.ErrCodeInvalidInput, "unknown node types: %s", strings.Join(unknown, ", "))
	}
	return types, nil
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(data)
}

// writeError maps coded errors to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch lgerrors.GetCode(err) {
	case lgerrors.ErrCodeInvalidInput, lgerrors.ErrCodeInvalidDocument, lgerrors.ErrCodeInvalidFormat:
		status = http.StatusBadRequest
	case lgerrors.ErrCodeNotFound:
		status = http.StatusNotFound
	}
	writeJSON(w, status, map[string]string{
		"error":   err.Error(),
		"message": lgerrors.UserMessage(err),
		"code":    string(lgerrors.GetCode(err)),
	})
}
