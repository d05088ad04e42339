// Package listview implements the paginated resource-list controller that
// backs every list screen in the portal: server-driven pagination,
// page-local substring search, page-size selection and delete with
// confirmation. One controller instance owns the view state for one
// (session, resource) pair.
package listview

import (
	"context"
	"errors"
	"fmt"
	"sync"

	apperrors "github.com/tunaskarier/portal-api/pkg/errors"
	"github.com/tunaskarier/portal-api/pkg/logger"
	"github.com/tunaskarier/portal-api/pkg/metrics"
	"go.uber.org/zap"
)

// State is the controller's lifecycle state. Loaded and Failed persist
// until the next trigger; there is no automatic retry or polling.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

var (
	// ErrSuperseded marks a load whose response arrived after a newer
	// request changed the controller's parameters; its result is discarded.
	ErrSuperseded = errors.New("load superseded by newer request")

	// ErrPageSizeNotAllowed rejects sizes outside the enumerated set.
	ErrPageSizeNotAllowed = errors.New("page size not allowed")

	// ErrNoPendingDelete rejects a confirm with nothing requested.
	ErrNoPendingDelete = errors.New("no pending delete")
)

// Page is one fetched page of items plus the server-reported totals.
// The server's totalPages value is trusted, not recomputed.
type Page[T any] struct {
	Items      []T
	Total      int
	TotalPages int
}

// Config parameterizes a controller for one entity type.
type Config[T any] struct {
	Resource string

	// Fetch loads one page from the backend.
	Fetch func(ctx context.Context, page, limit int) (Page[T], error)

	// Delete removes one record by id.
	Delete func(ctx context.Context, id string) error

	// Matches reports whether an item matches the search text.
	Matches func(item T, query string) bool

	// ID extracts an item's identifier.
	ID func(item T) string

	AllowedPageSizes []int
	DefaultPageSize  int
}

// Controller owns fetching, filtering and mutating one paginated
// collection view. All methods are safe for concurrent use; overlapping
// loads resolve by generation: the last requested parameters win and
// stale responses are discarded.
type Controller[T any] struct {
	cfg Config[T]

	mu            sync.Mutex
	state         State
	page          int
	pageSize      int
	searchText    string
	items         []T
	total         int
	totalPages    int
	errMsg        string
	pendingDelete string
	generation    uint64
}

// Snapshot is the renderable view of the controller at one instant.
// Items is the filtered view: only current-page records matching the
// search text.
type Snapshot[T any] struct {
	State         State
	Page          int
	PageSize      int
	SearchText    string
	Items         []T
	Total         int
	TotalPages    int
	Pages         []int
	RangeStart    int
	RangeEnd      int
	RangeLabel    string
	ErrorMessage  string
	PendingDelete string
}

// New creates a controller in the Idle state at page 1 with the default
// page size.
func New[T any](cfg Config[T]) *Controller[T] {
	return &Controller[T]{
		cfg:      cfg,
		state:    StateIdle,
		page:     1,
		pageSize: cfg.DefaultPageSize,
		items:    []T{},
	}
}

// Load fetches the given page at the given size. It is idempotent and
// safe to call repeatedly. A failed load leaves an empty list and a
// human-readable message, never stale data.
func (c *Controller[T]) Load(ctx context.Context, page, size int) error {
	c.mu.Lock()
	if page < 1 {
		page = 1
	}
	c.page = page
	c.pageSize = size
	c.state = StateLoading
	c.errMsg = ""
	c.generation++
	gen := c.generation
	c.mu.Unlock()

	result, err := c.cfg.Fetch(ctx, page, size)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		// A newer request superseded this one while it was in flight.
		metrics.StaleResponsesDiscarded.WithLabelValues(c.cfg.Resource).Inc()
		logger.Debug("Discarding stale list response",
			zap.String("resource", c.cfg.Resource),
			zap.Int("page", page))
		return ErrSuperseded
	}

	if err != nil {
		c.state = StateFailed
		c.items = []T{}
		c.total = 0
		c.totalPages = 0
		c.errMsg = apperrors.UserMessage(err)
		metrics.ListLoads.WithLabelValues(c.cfg.Resource, "error").Inc()
		return err
	}

	items := result.Items
	if items == nil {
		items = []T{}
	}
	c.state = StateLoaded
	c.items = items
	c.total = result.Total
	c.totalPages = result.TotalPages
	metrics.ListLoads.WithLabelValues(c.cfg.Resource, "success").Inc()
	return nil
}

// Refresh re-runs the load for the current parameters.
func (c *Controller[T]) Refresh(ctx context.Context) error {
	c.mu.Lock()
	page, size := c.page, c.pageSize
	c.mu.Unlock()
	return c.Load(ctx, page, size)
}

// SetSearchText updates the page-local filter. Purely local: no fetch is
// triggered, and the filtered view is recomputed on the next snapshot.
func (c *Controller[T]) SetSearchText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.searchText = text
}

// ChangePage loads the target page. Out-of-bounds targets are a no-op:
// no fetch, no state change.
func (c *Controller[T]) ChangePage(ctx context.Context, target int) error {
	c.mu.Lock()
	if target < 1 || target > c.totalPages || target == c.page {
		c.mu.Unlock()
		return nil
	}
	size := c.pageSize
	c.mu.Unlock()
	return c.Load(ctx, target, size)
}

// ChangePageSize sets a new page size, resets to page 1 and reloads.
// Sizes outside the allowed set are rejected without any state change.
func (c *Controller[T]) ChangePageSize(ctx context.Context, size int) error {
	if !c.sizeAllowed(size) {
		return fmt.Errorf("%w: %d", ErrPageSizeNotAllowed, size)
	}
	return c.Load(ctx, 1, size)
}

// RequestDelete registers a pending delete for id and returns the
// confirmation prompt. Nothing is sent upstream until ConfirmDelete.
func (c *Controller[T]) RequestDelete(id string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingDelete = id
	return fmt.Sprintf("Yakin ingin menghapus data ini? (%s)", id)
}

// CancelDelete drops the pending delete. Zero upstream calls are made.
func (c *Controller[T]) CancelDelete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pendingDelete != "" {
		metrics.DeleteConfirmations.WithLabelValues(c.cfg.Resource, "cancelled").Inc()
	}
	c.pendingDelete = ""
}

// ConfirmDelete executes the pending delete. On success the current page
// is reloaded so the view reflects server truth, clamped when the delete
// emptied the last page. On failure the list is left unchanged and the
// error is surfaced.
func (c *Controller[T]) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	id := c.pendingDelete
	if id == "" {
		c.mu.Unlock()
		return ErrNoPendingDelete
	}
	c.pendingDelete = ""
	page, size := c.page, c.pageSize
	c.mu.Unlock()

	if err := c.cfg.Delete(ctx, id); err != nil {
		c.mu.Lock()
		c.errMsg = apperrors.UserMessage(err)
		c.mu.Unlock()
		metrics.DeleteConfirmations.WithLabelValues(c.cfg.Resource, "failed").Inc()
		return err
	}
	metrics.DeleteConfirmations.WithLabelValues(c.cfg.Resource, "confirmed").Inc()

	if err := c.Load(ctx, page, size); err != nil {
		return err
	}

	// The delete may have removed the last record of the last page; clamp
	// to the server's new page count instead of staying pinned past it.
	c.mu.Lock()
	clamped := c.totalPages
	needClamp := clamped >= 1 && c.page > clamped
	c.mu.Unlock()
	if needClamp {
		return c.Load(ctx, clamped, size)
	}
	return nil
}

// Snapshot renders the current state, recomputing the filtered view.
func (c *Controller[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	filtered := make([]T, 0, len(c.items))
	for _, item := range c.items {
		if c.cfg.Matches == nil || c.cfg.Matches(item, c.searchText) {
			filtered = append(filtered, item)
		}
	}

	start, end := 0, 0
	if len(filtered) > 0 {
		start = (c.page-1)*c.pageSize + 1
		end = start + len(filtered) - 1
		if end > c.total {
			end = c.total
		}
	}

	pages := make([]int, 0, c.totalPages)
	for p := 1; p <= c.totalPages; p++ {
		pages = append(pages, p)
	}

	return Snapshot[T]{
		State:         c.state,
		Page:          c.page,
		PageSize:      c.pageSize,
		SearchText:    c.searchText,
		Items:         filtered,
		Total:         c.total,
		TotalPages:    c.totalPages,
		Pages:         pages,
		RangeStart:    start,
		RangeEnd:      end,
		RangeLabel:    fmt.Sprintf("Menampilkan %d sampai %d dari %d entri", start, end, c.total),
		ErrorMessage:  c.errMsg,
		PendingDelete: c.pendingDelete,
	}
}

func (c *Controller[T]) sizeAllowed(size int) bool {
	for _, s := range c.cfg.AllowedPageSizes {
		if s == size {
			return true
		}
	}
	return false
}
