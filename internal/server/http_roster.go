package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/alfredjeanlab/cardwall/internal/presence"
)

// handleEditorRoster handles GET /v1/editors/roster.
// Returns the live editor roster from the presence tracker, enriched with
// the name of the board each editor last touched.
func (s *CardwallServer) handleEditorRoster(w http.ResponseWriter, r *http.Request) {
	if s.Presence == nil {
		writeJSON(w, http.StatusOK, map[string]any{"editors": []any{}})
		return
	}

	// Parse optional stale_threshold_secs query param (default: 30 min).
	staleThreshold := 30 * time.Minute
	if v := r.URL.Query().Get("stale_threshold_secs"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			staleThreshold = time.Duration(secs) * time.Second
		}
	}

	entries := s.Presence.Roster(staleThreshold)

	type rosterEntry struct {
		presence.Entry
		BoardName string `json:"board_name,omitempty"`
	}

	// Board names are looked up per distinct board, not per editor.
	names := make(map[string]string)
	editors := make([]rosterEntry, 0, len(entries))
	for _, e := range entries {
		re := rosterEntry{Entry: e}
		if e.BoardID != "" {
			name, ok := names[e.BoardID]
			if !ok {
				if board, err := s.store.GetBoard(r.Context(), e.BoardID); err == nil && board != nil {
					name = board.Name
				}
				names[e.BoardID] = name
			}
			re.BoardName = name
		}
		editors = append(editors, re)
	}

	writeJSON(w, http.StatusOK, map[string]any{"editors": editors})
}
