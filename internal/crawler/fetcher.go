package crawler

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

const (
	ctxBodyKey   = "body"
	ctxStatusKey = "status"
)

// PageFetcher retrieves a page body. Implementations never return an error:
// every failure is reported as a nil result.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) *FetchResult
}

// FetchResult is a successful (HTTP 200) response
type FetchResult struct {
	Body       string
	StatusCode int
	// Duration covers the network call only, not the wait for a slot
	Duration time.Duration
}

// Fetcher issues GET requests through a colly collector while holding one
// slot of a weighted semaphore. One Fetcher is shared by every site of a run,
// so the semaphore is the global bound on in-flight requests.
type Fetcher struct {
	collector *colly.Collector
	sem       *semaphore.Weighted
	inFlight  atomic.Int64
	peak      atomic.Int64
}

// NewFetcher creates a fetcher allowing at most maxConcurrent requests in flight
func NewFetcher(maxConcurrent int, timeout time.Duration, userAgent string) *Fetcher {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	// Synchronous collector: Request blocks until callbacks have run, which
	// lets each goroutine read its own response from the request context.
	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.MaxDepth(0),
		colly.UserAgent(userAgent),
	)
	c.SetRequestTimeout(timeout)

	c.OnResponse(func(r *colly.Response) {
		r.Ctx.Put(ctxStatusKey, r.StatusCode)
		if r.StatusCode == http.StatusOK {
			r.Ctx.Put(ctxBodyKey, string(r.Body))
		}
	})

	return &Fetcher{
		collector: c,
		sem:       semaphore.NewWeighted(int64(maxConcurrent)),
	}
}

// Fetch returns the body of rawURL, or nil on a non-200 status, timeout,
// transport error or cancellation while waiting for a slot.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (result *FetchResult) {
	if err := f.sem.Acquire(ctx, 1); err != nil {
		logrus.Debugf("Fetch of %s abandoned waiting for a slot: %v", rawURL, err)
		return nil
	}
	defer f.sem.Release(1)

	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		peak := f.peak.Load()
		if n <= peak || f.peak.CompareAndSwap(peak, n) {
			break
		}
	}

	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("Fetch of %s panicked: %v", rawURL, r)
			result = nil
		}
	}()

	reqCtx := colly.NewContext()
	start := time.Now()
	err := f.collector.Request(http.MethodGet, rawURL, nil, reqCtx, nil)
	elapsed := time.Since(start)
	if err != nil {
		logrus.Debugf("Fetch of %s failed: %v", rawURL, err)
		return nil
	}

	status, _ := reqCtx.GetAny(ctxStatusKey).(int)
	if status != http.StatusOK {
		logrus.Debugf("Fetch of %s returned status %d", rawURL, status)
		return nil
	}

	return &FetchResult{
		Body:       reqCtx.Get(ctxBodyKey),
		StatusCode: status,
		Duration:   elapsed,
	}
}

// InFlight returns the number of requests currently holding a slot
func (f *Fetcher) InFlight() int {
	return int(f.inFlight.Load())
}

// PeakInFlight returns the highest InFlight value observed so far
func (f *Fetcher) PeakInFlight() int {
	return int(f.peak.Load())
}
