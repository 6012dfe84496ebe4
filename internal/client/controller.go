package client

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/TWCkaijin/Finder-For-FOOOOOD/internal/search"
)

// Search lifecycle: Idle -> Searching -> (Finishing | Error) ->
// Idle | Result. A new search or Back invalidates the previous
// request; late continuations check both the context and the
// generation counter before touching state.
type State int

const (
	StateIdle State = iota
	StateSearching
	StateFinishing
	StateError
	StateResult
)

const (
	phase1Limit = 6
	phase2Limit = 9
)

// Snapshot is the derived view state consumers render from.
type Snapshot struct {
	State              State
	Displayed          []search.Restaurant
	Err                string
	StreamOutput       string
	BackgroundFetching bool
	Exhausted          bool
}

type Controller struct {
	api            *API
	devMode        bool
	finishingDelay time.Duration

	mu                 sync.Mutex
	state              State
	cancel             context.CancelFunc
	generation         int
	pool               []search.Restaurant
	shown              map[string]bool
	displayed          []search.Restaurant
	stream             strings.Builder
	errMsg             string
	backgroundFetching bool
}

func NewController(api *API, devMode bool) *Controller {
	return &Controller{
		api:            api,
		devMode:        devMode,
		finishingDelay: 500 * time.Millisecond,
		state:          StateIdle,
		shown:          make(map[string]bool),
	}
}

// Start launches a new search, invalidating any in-flight one.
func (c *Controller) Start(params SearchParams) {
	c.mu.Lock()

	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.generation++
	gen := c.generation

	c.state = StateSearching
	c.pool = nil
	c.shown = make(map[string]bool)
	c.displayed = nil
	c.errMsg = ""
	c.stream.Reset()
	c.backgroundFetching = false

	c.mu.Unlock()

	go c.run(ctx, gen, params)
}

func (c *Controller) run(ctx context.Context, gen int, params SearchParams) {
	var onProgress ProgressFunc
	if c.devMode {
		onProgress = func(chunk string) {
			c.mu.Lock()
			defer c.mu.Unlock()
			if gen != c.generation {
				return
			}
			c.stream.WriteString(chunk)
		}
	}

	// Phase 1: small blocking page.
	results, err := c.api.FetchRestaurants(ctx, params, phase1Limit, params.ExcludedNames, onProgress)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		c.fail(gen, err.Error())
		return
	}
	if len(results) == 0 {
		msg := "找不到符合條件的餐廳"
		if params.Language == "en" {
			msg = "No restaurants found."
		}
		c.fail(gen, msg)
		return
	}

	// Short finishing transition before committing results.
	if !c.transition(gen, StateFinishing) {
		return
	}
	select {
	case <-ctx.Done():
		return
	case <-time.After(c.finishingDelay):
	}

	c.mu.Lock()
	if gen != c.generation || ctx.Err() != nil {
		c.mu.Unlock()
		return
	}
	c.state = StateResult
	c.pool = results
	for _, r := range results {
		c.shown[r.ID] = true
	}
	c.displayed = append([]search.Restaurant(nil), results...)
	c.backgroundFetching = true
	c.mu.Unlock()

	// Phase 2: supplemental page in the background. Failures are
	// logged only; the user already has results.
	exclude := make([]string, 0, len(results)+len(params.ExcludedNames))
	for _, r := range results {
		exclude = append(exclude, r.Name)
	}
	exclude = append(exclude, params.ExcludedNames...)

	more, err := c.api.FetchRestaurants(ctx, params, phase2Limit, exclude, nil)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation || ctx.Err() != nil {
		return
	}
	c.backgroundFetching = false
	if err != nil {
		log.Printf("[CLIENT] background fetch ended: %v", err)
		return
	}
	c.pool = append(c.pool, more...)
}

func (c *Controller) transition(gen int, next State) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return false
	}
	c.state = next
	return true
}

func (c *Controller) fail(gen int, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return
	}
	c.state = StateError
	c.errMsg = msg
}

// Next reveals every downloaded-but-unshown restaurant.
func (c *Controller) Next() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, r := range c.pool {
		if !c.shown[r.ID] {
			c.shown[r.ID] = true
			c.displayed = append(c.displayed, r)
		}
	}
}

// Cancel aborts the in-flight search and returns to idle. Late
// responses from the aborted request never mutate state.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.generation++
	c.state = StateIdle
	c.errMsg = ""
}

// Back leaves the result view, aborting any background fetch.
func (c *Controller) Back() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.generation++
	c.state = StateIdle
	c.pool = nil
	c.shown = make(map[string]bool)
	c.displayed = nil
	c.backgroundFetching = false
}

// Snapshot returns a copy of the derived view state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	exhausted := !c.backgroundFetching && len(c.pool) > 0
	if exhausted {
		for _, r := range c.pool {
			if !c.shown[r.ID] {
				exhausted = false
				break
			}
		}
	}

	return Snapshot{
		State:              c.state,
		Displayed:          append([]search.Restaurant(nil), c.displayed...),
		Err:                c.errMsg,
		StreamOutput:       c.stream.String(),
		BackgroundFetching: c.backgroundFetching,
		Exhausted:          exhausted,
	}
}
