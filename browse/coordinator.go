package browse

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/MrEthical07/goCinema/catalog"
)

// DefaultDebounce is the quiet period before a query edit is committed.
const DefaultDebounce = 500 * time.Millisecond

// Fetcher is the catalog surface the coordinator needs. *catalog.Client
// satisfies it.
type Fetcher interface {
	Popular(ctx context.Context, page int) (*catalog.Page, error)
	Search(ctx context.Context, query string, page int) (*catalog.Page, error)
}

// Mode is browse or search.
type Mode uint8

const (
	ModeBrowse Mode = iota
	ModeSearch
)

func (m Mode) String() string {
	if m == ModeSearch {
		return "search"
	}
	return "browse"
}

// Options configures a [Coordinator].
type Options struct {
	Debounce  time.Duration
	Scheduler Scheduler
	Runner    Runner
	Logger    *slog.Logger
}

// View is a snapshot of what the presentation layer should render.
type View struct {
	RawQuery       string
	DebouncedQuery string
	Mode           Mode
	Movies         []catalog.Movie
	CurrentPage    int
	TotalPages     int
	Loading        bool
	Err            error
	HasMorePages   bool
	CanLoadMore    bool
}

// Coordinator is safe for concurrent use.
type Coordinator struct {
	fetcher   Fetcher
	debounce  time.Duration
	scheduler Scheduler
	run       Runner
	logger    *slog.Logger

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	closed  bool
	started bool

	rawQuery       string
	debouncedQuery string
	timer          Timer
	timerGen       uint64

	currentPage   int
	accumulated   []catalog.Movie
	totalPages    int
	hasBrowseData bool
	searchResults *catalog.Page

	seq           uint64
	browseSeq     uint64
	searchSeq     uint64
	browseLoading bool
	searchLoading bool
	err           error

	notifyMu sync.Mutex
	subMu    sync.Mutex
	subs     map[uint64]func(View)
	nextSub  uint64
}

// New returns an idle coordinator. Call Start to load the first page.
func New(fetcher Fetcher, opts Options) *Coordinator {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Scheduler == nil {
		opts.Scheduler = realScheduler{}
	}
	if opts.Runner == nil {
		opts.Runner = goRunner
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		fetcher:     fetcher,
		debounce:    opts.Debounce,
		scheduler:   opts.Scheduler,
		run:         opts.Runner,
		logger:      opts.Logger,
		ctx:         ctx,
		cancel:      cancel,
		currentPage: 1,
		subs:        make(map[uint64]func(View)),
	}
}

// Start binds fetches to ctx and requests the first browse page. Calling it
// again is a no-op.
func (c *Coordinator) Start(ctx context.Context) {
	c.mu.Lock()
	if c.closed || c.started {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.cancel()
	c.ctx, c.cancel = context.WithCancel(ctx)
	task := c.browseLocked(c.currentPage)
	v := c.viewLocked()
	c.mu.Unlock()

	c.publish(v)
	c.run(task)
}

// SetQuery records a raw query edit and restarts the debounce timer.
func (c *Coordinator) SetQuery(q string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.rawQuery = q
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timerGen++
	gen := c.timerGen
	c.timer = c.scheduler.AfterFunc(c.debounce, func() { c.commit(gen) })
	v := c.viewLocked()
	c.mu.Unlock()

	c.publish(v)
}

func (c *Coordinator) commit(gen uint64) {
	c.mu.Lock()
	if c.closed || gen != c.timerGen {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	next := strings.TrimSpace(c.rawQuery)
	if next == c.debouncedQuery {
		c.mu.Unlock()
		return
	}
	c.debouncedQuery = next
	c.currentPage = 1
	c.err = nil

	var task func()
	if next != "" {
		c.accumulated = nil
		c.searchResults = nil
		c.browseSeq = c.nextSeq()
		c.browseLoading = false
		task = c.searchLocked(next)
	} else {
		c.searchResults = nil
		c.searchSeq = c.nextSeq()
		c.searchLoading = false
		task = c.browseLocked(1)
	}
	v := c.viewLocked()
	c.mu.Unlock()

	c.logger.Debug("goCinema: query committed", "query", next, "mode", v.Mode.String())
	c.publish(v)
	c.run(task)
}

// LoadMore requests the next browse page. It reports false and changes
// nothing in search mode, when no further page exists or while a fetch is in
// flight.
func (c *Coordinator) LoadMore() bool {
	c.mu.Lock()
	if c.closed || c.debouncedQuery != "" || !c.hasBrowseData ||
		c.currentPage >= c.totalPages || c.browseLoading || c.searchLoading {
		c.mu.Unlock()
		return false
	}
	c.currentPage++
	task := c.browseLocked(c.currentPage)
	v := c.viewLocked()
	c.mu.Unlock()

	c.publish(v)
	c.run(task)
	return true
}

// View returns the current snapshot.
func (c *Coordinator) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// Subscribe registers fn for view updates and returns an unsubscribe func.
func (c *Coordinator) Subscribe(fn func(View)) func() {
	if fn == nil {
		return func() {}
	}
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.subMu.Lock()
			delete(c.subs, id)
			c.subMu.Unlock()
		})
	}
}

// Close stops the debounce timer and cancels in-flight fetches. Later
// completions are dropped.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.cancel()
}

func (c *Coordinator) nextSeq() uint64 {
	c.seq++
	return c.seq
}

func (c *Coordinator) browseLocked(page int) func() {
	seq := c.nextSeq()
	c.browseSeq = seq
	c.browseLoading = true
	c.err = nil
	ctx := c.ctx
	return func() {
		res, err := c.fetcher.Popular(ctx, page)
		c.completeBrowse(seq, page, res, err)
	}
}

func (c *Coordinator) searchLocked(query string) func() {
	seq := c.nextSeq()
	c.searchSeq = seq
	c.searchLoading = true
	c.err = nil
	ctx := c.ctx
	return func() {
		res, err := c.fetcher.Search(ctx, query, 1)
		c.completeSearch(seq, query, res, err)
	}
}

func (c *Coordinator) completeBrowse(seq uint64, page int, res *catalog.Page, err error) {
	c.mu.Lock()
	if c.closed || seq != c.browseSeq {
		c.mu.Unlock()
		return
	}
	c.browseLoading = false
	switch {
	case c.debouncedQuery != "" || page != c.currentPage:
	case err != nil:
		c.err = err
		// Step back so the next LoadMore retries the failed page.
		if page > 1 {
			c.currentPage = page - 1
		}
		c.logger.Warn("goCinema: browse fetch failed", "page", page, "error", err)
	case res != nil:
		if page == 1 {
			c.accumulated = slices.Clone(res.Results)
		} else {
			c.accumulated = append(c.accumulated, res.Results...)
		}
		c.totalPages = res.TotalPages
		c.hasBrowseData = true
	}
	v := c.viewLocked()
	c.mu.Unlock()

	c.publish(v)
}

func (c *Coordinator) completeSearch(seq uint64, query string, res *catalog.Page, err error) {
	c.mu.Lock()
	if c.closed || seq != c.searchSeq {
		c.mu.Unlock()
		return
	}
	c.searchLoading = false
	switch {
	case query != c.debouncedQuery:
	case err != nil:
		c.err = err
		c.logger.Warn("goCinema: search fetch failed", "query", query, "error", err)
	default:
		c.searchResults = res
	}
	v := c.viewLocked()
	c.mu.Unlock()

	c.publish(v)
}

func (c *Coordinator) viewLocked() View {
	v := View{
		RawQuery:       c.rawQuery,
		DebouncedQuery: c.debouncedQuery,
		CurrentPage:    c.currentPage,
		TotalPages:     c.totalPages,
		Loading:        c.browseLoading || c.searchLoading,
		Err:            c.err,
		HasMorePages:   c.hasBrowseData && c.currentPage < c.totalPages,
	}
	if c.debouncedQuery != "" {
		v.Mode = ModeSearch
		if c.searchResults != nil {
			v.Movies = slices.Clone(c.searchResults.Results)
		}
	} else {
		v.Movies = slices.Clone(c.accumulated)
	}
	v.CanLoadMore = v.Mode == ModeBrowse && v.HasMorePages && !v.Loading
	return v
}

func (c *Coordinator) publish(v View) {
	c.subMu.Lock()
	fns := make([]func(View), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()
	if len(fns) == 0 {
		return
	}
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	for _, fn := range fns {
		fn(v)
	}
}
