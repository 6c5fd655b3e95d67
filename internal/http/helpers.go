package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 4 << 20

type errorResponse struct {
	Error    string   `json:"error"`
	Problems []string `json:"problems,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, problems ...string) {
	writeJSON(w, status, errorResponse{Error: msg, Problems: problems})
}

// decodeJSON reads a bounded JSON body into dst, rejecting trailing data.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty request body")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if dec.More() {
		return errors.New("invalid JSON body: trailing data")
	}
	return nil
}

// pathKey reads a URL parameter and returns it in canonical form.
func pathKey(r *http.Request, name string, canon func(string) (string, error)) (string, error) {
	return canon(chi.URLParam(r, name))
}

// sanitizeInput removes control characters except tab, newline and carriage return.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}

// uniqueIDs reports the first empty or repeated id in ids.
func uniqueIDs(ids []string) error {
	seen := make(map[string]bool, len(ids))
	for i, id := range ids {
		switch {
		case id == "":
			return fmt.Errorf("item %d: empty id", i)
		case seen[id]:
			return fmt.Errorf("item %d: duplicate id %q", i, id)
		}
		seen[id] = true
	}
	return nil
}
