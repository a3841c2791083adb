package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/frameql/frameql/internal/table"
)

// TableResult is the JSON shape of a materialized table. NA values are
// encoded as JSON null.
type TableResult struct {
	Columns []string `json:"columns"`
	Types   []string `json:"types"`
	Rows    [][]any  `json:"rows"`
	NumRows int      `json:"numRows"`
}

// QueryRequest mirrors the query surface: T[selector, expression, by/sortedBy]
// plus assignment mode via Let.
type QueryRequest struct {
	Table    string   `json:"table"`
	Where    string   `json:"where,omitempty"`
	Select   string   `json:"select,omitempty"`
	Let      string   `json:"let,omitempty"`
	By       []string `json:"by,omitempty"`
	SortedBy []string `json:"sortedBy,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleTableList(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	names := s.engine.Names()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"tables": names})
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.engine.Lookup(name)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, materialize(t))
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	// Evaluation and materialization run under the server lock: assignment
	// queries write into shared stores, and concurrent readers must never
	// observe them mid-write.
	s.mu.Lock()
	defer s.mu.Unlock()

	q, err := s.engine.QueryNamed(req.Table)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	if req.Where != "" {
		q.Where(req.Where)
	}
	if req.Select != "" {
		q.Select(req.Select)
	}
	if req.Let != "" {
		q.Let(req.Let)
	}
	if len(req.SortedBy) > 0 {
		q.SortedBy(req.SortedBy...)
	} else if len(req.By) > 0 {
		q.By(req.By...)
	}

	result, err := q.Run()
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, materialize(result))
}

// materialize converts a table into its JSON shape. The handle stays on the
// server side.
func materialize(t *table.Table) TableResult {
	names := t.Names()
	res := TableResult{
		Columns: names,
		Types:   make([]string, len(names)),
		Rows:    make([][]any, 0, t.NumRows()),
		NumRows: t.NumRows(),
	}

	cols := make([]table.Column, len(names))
	for i, name := range names {
		c, err := t.Column(name)
		if err != nil {
			continue
		}
		cols[i] = c
		res.Types[i] = string(c.Type())
	}

	for row := 0; row < t.NumRows(); row++ {
		vals := make([]any, len(cols))
		for i, c := range cols {
			if c != nil {
				vals[i] = c.Value(row)
			}
		}
		res.Rows = append(res.Rows, vals)
	}
	return res
}

func writeQueryError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	var engineErr *table.Error
	if !errors.As(err, &engineErr) {
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}
	if engineErr.Kind == table.KindUnknownColumn {
		status = http.StatusNotFound
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Kind: string(engineErr.Kind)})
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
