package harvester

import "sync"

// pageItem is one unit of traversal work: a page URL plus the @context it
// inherits from the page that discovered it. Context is run-local; resumed
// pages start with a nil context, as the original discovery context is not
// persisted.
type pageItem struct {
	url     string
	context any
}

// frontier tracks the pages known but not yet fully processed. It holds two
// views: the durable pending set (order-preserving, persisted in State) and
// the run-local FIFO queue of items still to visit this run. A failed page
// leaves the queue but stays pending, so the next run retries it.
type frontier struct {
	mu      sync.Mutex
	queue   []pageItem
	pending map[string]struct{}
	order   []string
}

func newFrontier() *frontier {
	return &frontier{pending: make(map[string]struct{})}
}

// seed loads the pending set from a saved state and queues every entry for
// this run, preserving the persisted order.
func (f *frontier) seed(pending []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range pending {
		if _, ok := f.pending[u]; ok {
			continue
		}
		f.pending[u] = struct{}{}
		f.order = append(f.order, u)
		f.queue = append(f.queue, pageItem{url: u})
	}
}

// add inserts a newly discovered page. Inserting a URL that is already
// pending is a no-op; the caller guards against already-processed URLs.
func (f *frontier) add(item pageItem) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.pending[item.url]; ok {
		return false
	}
	f.pending[item.url] = struct{}{}
	f.order = append(f.order, item.url)
	f.queue = append(f.queue, item)
	return true
}

// requeue schedules a visit without touching the pending set. Used for
// already-processed pages that must be re-fetched to discover relations
// appended since the first visit.
func (f *frontier) requeue(item pageItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, item)
}

// ensure marks a URL pending without queueing it, for pages being processed
// directly. No-op when already pending.
func (f *frontier) ensure(url string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.pending[url]; ok {
		return
	}
	f.pending[url] = struct{}{}
	f.order = append(f.order, url)
}

// pop removes and returns the next item to visit this run.
func (f *frontier) pop() (pageItem, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queue) == 0 {
		return pageItem{}, false
	}
	item := f.queue[0]
	f.queue = f.queue[1:]
	return item, true
}

// remove drops a URL from the pending set once its page is fully processed.
func (f *frontier) remove(url string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.pending[url]; !ok {
		return
	}
	delete(f.pending, url)
	for i, u := range f.order {
		if u == url {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
}

// has reports whether a URL is pending.
func (f *frontier) has(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.pending[url]
	return ok
}

// pendingLen returns the size of the pending set.
func (f *frontier) pendingLen() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

// snapshot copies the pending set in discovery order.
func (f *frontier) snapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}
