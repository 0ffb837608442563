package client

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alfredjeanlab/cardwall/internal/model"
	"github.com/alfredjeanlab/cardwall/internal/reconcile"
)

// patchRecorder is a test server that records PATCH bodies per card.
type patchRecorder struct {
	mu      sync.Mutex
	patches []model.FieldValues
}

func (pr *patchRecorder) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var patch model.FieldValues
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		pr.mu.Lock()
		pr.patches = append(pr.patches, patch)
		pr.mu.Unlock()
		_ = json.NewEncoder(w).Encode(model.Card{ID: r.PathValue("id"), FieldValues: patch})
	})
}

func (pr *patchRecorder) count() int {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	return len(pr.patches)
}

func (pr *patchRecorder) last() model.FieldValues {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	if len(pr.patches) == 0 {
		return nil
	}
	return pr.patches[len(pr.patches)-1]
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatal("condition not met within deadline")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestCardEditor_CoalescesEdits(t *testing.T) {
	pr := &patchRecorder{}
	mux := http.NewServeMux()
	mux.Handle("PATCH /v1/cards/{id}/fields", pr.handler())
	ts := httptest.NewServer(mux)
	defer ts.Close()

	var savedMu sync.Mutex
	var saved []string
	ed := NewCardEditor(NewHTTPClient(ts.URL, "", "tester"), EditorConfig{
		Debounce: 30 * time.Millisecond,
		OnSaved: func(cardID string, _ model.FieldValues) {
			savedMu.Lock()
			saved = append(saved, cardID)
			savedMu.Unlock()
		},
	})
	defer ed.Close()

	// A typing burst: each keystroke replaces the draft value.
	for _, v := range []string{"O", "Ou", "Out", "Outer Wilds"} {
		ed.SetField("crd-1", "elm-title", v)
	}
	if got := ed.State("crd-1"); got != reconcile.StateDirty {
		t.Errorf("state during burst = %v, want dirty", got)
	}

	waitFor(t, func() bool { return pr.count() >= 1 })

	if pr.count() != 1 {
		t.Errorf("got %d PATCHes, want 1", pr.count())
	}
	if got := pr.last()["elm-title"]; got != "Outer Wilds" {
		t.Errorf("saved title = %v, want final value", got)
	}

	waitFor(t, func() bool { return ed.State("crd-1") == reconcile.StateIdle })
	savedMu.Lock()
	defer savedMu.Unlock()
	if len(saved) != 1 || saved[0] != "crd-1" {
		t.Errorf("OnSaved calls = %v", saved)
	}
}

func TestCardEditor_ClearFieldSendsNull(t *testing.T) {
	var gotRaw map[string]json.RawMessage
	var mu sync.Mutex
	mux := http.NewServeMux()
	mux.HandleFunc("PATCH /v1/cards/{id}/fields", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		_ = json.NewDecoder(r.Body).Decode(&gotRaw)
		mu.Unlock()
		_ = json.NewEncoder(w).Encode(model.Card{ID: "crd-1", FieldValues: model.FieldValues{}})
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	ed := NewCardEditor(NewHTTPClient(ts.URL, "", ""), EditorConfig{Debounce: 20 * time.Millisecond})
	defer ed.Close()

	ed.ClearField("crd-1", "elm-due")
	ed.Flush("crd-1")

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return gotRaw != nil
	})
	mu.Lock()
	defer mu.Unlock()
	if string(gotRaw["elm-due"]) != "null" {
		t.Errorf("elm-due = %s, want null", gotRaw["elm-due"])
	}
}

func TestCardEditor_SaveFailureKeepsDraft(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PATCH /v1/cards/{id}/fields", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "db down"})
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	errs := make(chan error, 1)
	ed := NewCardEditor(NewHTTPClient(ts.URL, "", ""), EditorConfig{
		Debounce: 20 * time.Millisecond,
		OnError: func(_ string, _ model.FieldValues, err error) {
			select {
			case errs <- err:
			default:
			}
		},
	})
	defer ed.Close()

	ed.SetField("crd-1", "elm-title", "Hades")
	ed.Flush("crd-1")

	select {
	case err := <-errs:
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("err = %v, want *APIError", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("OnError not called")
	}

	if ed.State("crd-1") != reconcile.StateDirty {
		t.Errorf("state = %v, want dirty after failed save", ed.State("crd-1"))
	}
	if ed.Draft("crd-1")["elm-title"] != "Hades" {
		t.Errorf("draft lost after failed save: %v", ed.Draft("crd-1"))
	}
}

func TestCardEditor_DiscardDropsDraft(t *testing.T) {
	pr := &patchRecorder{}
	mux := http.NewServeMux()
	mux.Handle("PATCH /v1/cards/{id}/fields", pr.handler())
	ts := httptest.NewServer(mux)
	defer ts.Close()

	ed := NewCardEditor(NewHTTPClient(ts.URL, "", ""), EditorConfig{Debounce: 30 * time.Millisecond})
	defer ed.Close()

	ed.SetField("crd-1", "elm-title", "abandoned")
	ed.Discard("crd-1")

	time.Sleep(100 * time.Millisecond)
	if pr.count() != 0 {
		t.Errorf("got %d PATCHes after discard, want 0", pr.count())
	}
	if ed.Draft("crd-1") != nil {
		t.Errorf("draft = %v after discard, want nil", ed.Draft("crd-1"))
	}
}
