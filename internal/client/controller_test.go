package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/TWCkaijin/Finder-For-FOOOOOD/internal/search"
)

func restaurantPage(prefix string, n int) []search.Restaurant {
	out := make([]search.Restaurant, n)
	for i := range out {
		out[i] = search.Restaurant{
			ID:       fmt.Sprintf("%s-%d", prefix, i),
			Name:     fmt.Sprintf("%s Restaurant %d", prefix, i),
			Address:  "addr",
			Rating:   4.2,
			Distance: "verified",
		}
	}
	return out
}

// searchServer answers phase-1 and phase-2 requests with pages sized
// to the requested limit.
func searchServer(t *testing.T, gate chan struct{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req search.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request: %v", err)
		}
		if gate != nil {
			<-gate
		}
		_ = json.NewEncoder(w).Encode(restaurantPage(fmt.Sprintf("p%d", req.Limit), req.Limit))
	}))
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func newTestController(serverURL string, devMode bool) *Controller {
	c := NewController(NewAPI(serverURL), devMode)
	c.finishingDelay = 10 * time.Millisecond
	return c
}

func TestController_TwoPhaseFlow(t *testing.T) {
	srv := searchServer(t, nil)
	defer srv.Close()

	c := newTestController(srv.URL, false)
	c.Start(SearchParams{Location: "Taipei 101", Radius: "1km"})

	eventually(t, "result state", func() bool {
		return c.Snapshot().State == StateResult
	})

	snap := c.Snapshot()
	if len(snap.Displayed) != phase1Limit {
		t.Fatalf("phase 1 must display %d items, got %d", phase1Limit, len(snap.Displayed))
	}

	eventually(t, "background fetch completion", func() bool {
		return !c.Snapshot().BackgroundFetching
	})

	// Background results enlarge the pool without touching the page.
	snap = c.Snapshot()
	if len(snap.Displayed) != phase1Limit {
		t.Fatalf("phase 2 must not change the displayed page, got %d", len(snap.Displayed))
	}
	if snap.Exhausted {
		t.Fatal("pool has unshown items, must not be exhausted")
	}

	c.Next()
	snap = c.Snapshot()
	if len(snap.Displayed) != phase1Limit+phase2Limit {
		t.Fatalf("next must reveal the downloaded pool, got %d", len(snap.Displayed))
	}
	if !snap.Exhausted {
		t.Fatal("all downloaded items shown and no fetch in flight: expected exhausted")
	}
}

func TestController_CancelBeforePhase1LeavesStateUnchanged(t *testing.T) {
	gate := make(chan struct{})
	srv := searchServer(t, gate)
	defer srv.Close()

	c := newTestController(srv.URL, false)
	c.Start(SearchParams{Location: "Taipei 101"})

	eventually(t, "searching state", func() bool {
		return c.Snapshot().State == StateSearching
	})

	c.Cancel()
	close(gate) // let the (aborted) response land

	time.Sleep(50 * time.Millisecond)

	snap := c.Snapshot()
	if snap.State != StateIdle {
		t.Fatalf("expected idle after cancel, got %v", snap.State)
	}
	if snap.Err != "" {
		t.Fatalf("cancel must not surface an error, got %q", snap.Err)
	}
	if len(snap.Displayed) != 0 {
		t.Fatal("late response must not commit results after cancel")
	}
}

func TestController_EmptyResultIsAnErrorState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := newTestController(srv.URL, false)
	c.Start(SearchParams{Location: "nowhere", Language: "en"})

	eventually(t, "error state", func() bool {
		return c.Snapshot().State == StateError
	})

	if snap := c.Snapshot(); snap.Err != "No restaurants found." {
		t.Fatalf("unexpected error message %q", snap.Err)
	}
}

func TestController_ServerErrorSurfacesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Model Overloaded (503)"}`))
	}))
	defer srv.Close()

	c := newTestController(srv.URL, false)
	c.Start(SearchParams{Location: "Taipei 101"})

	eventually(t, "error state", func() bool {
		return c.Snapshot().State == StateError
	})

	if snap := c.Snapshot(); snap.Err != "Model Overloaded (503)" {
		t.Fatalf("expected upstream message, got %q", snap.Err)
	}
}

func TestController_NewSearchDiscardsOldResponse(t *testing.T) {
	gate := make(chan struct{})
	var requests atomic.Int32

	// The first request (the stale search) blocks on the gate and
	// answers with stale items; later requests answer instantly.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req search.Request
		_ = json.NewDecoder(r.Body).Decode(&req)
		if requests.Add(1) == 1 {
			<-gate
			_ = json.NewEncoder(w).Encode(restaurantPage("stale", req.Limit))
			return
		}
		_ = json.NewEncoder(w).Encode(restaurantPage("fresh", req.Limit))
	}))
	defer srv.Close()

	c := newTestController(srv.URL, false)
	c.Start(SearchParams{Location: "first"})

	eventually(t, "first request in flight", func() bool {
		return requests.Load() >= 1
	})

	// Second search replaces the first.
	c.Start(SearchParams{Location: "second"})
	close(gate)

	eventually(t, "result state", func() bool {
		return c.Snapshot().State == StateResult
	})
	eventually(t, "background completion", func() bool {
		return !c.Snapshot().BackgroundFetching
	})

	for _, r := range c.Snapshot().Displayed {
		if r.ID[:5] != "fresh" {
			t.Fatalf("stale result leaked into the new search: %s", r.ID)
		}
	}
}

func TestController_DevModeStreamsProgress(t *testing.T) {
	srv := searchServer(t, nil)
	defer srv.Close()

	c := newTestController(srv.URL, true)
	c.Start(SearchParams{Location: "Taipei 101"})

	eventually(t, "result state", func() bool {
		return c.Snapshot().State == StateResult
	})

	if c.Snapshot().StreamOutput == "" {
		t.Fatal("dev mode must accumulate progress output")
	}
}

func TestController_NoStreamOutsideDevMode(t *testing.T) {
	srv := searchServer(t, nil)
	defer srv.Close()

	c := newTestController(srv.URL, false)
	c.Start(SearchParams{Location: "Taipei 101"})

	eventually(t, "result state", func() bool {
		return c.Snapshot().State == StateResult
	})

	if out := c.Snapshot().StreamOutput; out != "" {
		t.Fatalf("progress stream must be inert in normal operation, got %q", out)
	}
}

func TestController_BackClearsResults(t *testing.T) {
	srv := searchServer(t, nil)
	defer srv.Close()

	c := newTestController(srv.URL, false)
	c.Start(SearchParams{Location: "Taipei 101"})

	eventually(t, "result state", func() bool {
		return c.Snapshot().State == StateResult
	})

	c.Back()
	snap := c.Snapshot()
	if snap.State != StateIdle || len(snap.Displayed) != 0 {
		t.Fatalf("back must reset to idle with no results, got %+v", snap.State)
	}
}
