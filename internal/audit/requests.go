package audit

import (
	"context"
	"sync"

	"github.com/aleister1102/isolatedaudit/internal/blocklist"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// requestTally counts the requests a page issued and how many of them match
// the blocked patterns of the run.
type requestTally struct {
	patterns []string

	mu      sync.Mutex
	total   int
	blocked int
}

func newRequestTally(patterns []string) *requestTally {
	return &requestTally{patterns: patterns}
}

func (t *requestTally) observe(rawURL string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.total++
	if blocklist.MatchAny(t.patterns, rawURL) {
		t.blocked++
	}
}

func (t *requestTally) counts() (total, blocked int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total, t.blocked
}

// blockedNothing reports whether patterns were set but no request matched,
// which makes the run indistinguishable from the baseline.
func (t *requestTally) blockedNothing() bool {
	_, blocked := t.counts()
	return len(t.patterns) > 0 && blocked == 0
}

// watchRequests feeds every request the page sends into tally until the
// returned stop function is called.
func watchRequests(page *rod.Page, tally *requestTally) (stop func()) {
	ctx, cancel := context.WithCancel(page.GetContext())
	wait := page.Context(ctx).EachEvent(func(e *proto.NetworkRequestWillBeSent) {
		tally.observe(e.Request.URL)
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		wait()
	}()

	return func() {
		cancel()
		<-done
	}
}
