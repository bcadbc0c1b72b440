package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"building_monitor/internal/logger"
	"building_monitor/internal/models"

	"github.com/google/uuid"
)

// Ledger faults. Writes and reads fail independently; neither is fatal to the
// monitoring pipeline.
var (
	ErrWriteFailure = errors.New("ledger: write failure")
	ErrReadFailure  = errors.New("ledger: read failure")
)

// Append/refresh cycle states, exposed for diagnostics.
const (
	StateIdle       = "idle"
	StateWriting    = "writing"
	StateWritten    = "written"
	StateRefreshing = "refreshing"
)

const (
	defaultTimeout     = 10 * time.Second
	defaultMaxAttempts = 3
	defaultBackoff     = 250 * time.Millisecond

	documentsPath = "/documents"
)

// Client talks to the external append-only document store. It owns retry for
// appends, coalescing for refreshes, and a read-only cache of the document
// collection with stale-while-revalidate semantics for the latest document.
type Client struct {
	baseURL     string
	httpc       *http.Client
	log         *logger.Logger
	maxAttempts int
	backoff     time.Duration

	mu          sync.Mutex
	docs        []models.AuditDocument
	latest      *models.AuditDocument
	lastErr     string
	state       string
	refreshDone chan struct{} // non-nil while a refresh is in flight
	refreshErr  error
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) {
		if httpc != nil {
			c.httpc = httpc
		}
	}
}

// WithRetry overrides the append retry policy.
func WithRetry(maxAttempts int, backoff time.Duration) Option {
	return func(c *Client) {
		if maxAttempts > 0 {
			c.maxAttempts = maxAttempts
		}
		if backoff > 0 {
			c.backoff = backoff
		}
	}
}

// NewClient constructs a ledger client for the given base URL.
func NewClient(baseURL string, log *logger.Logger, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("ledger: empty base url")
	}
	c := &Client{
		baseURL:     baseURL,
		httpc:       &http.Client{Timeout: defaultTimeout},
		log:         log,
		maxAttempts: defaultMaxAttempts,
		backoff:     defaultBackoff,
		state:       StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Append writes one document to the ledger, retrying transient failures with
// bounded backoff. On success it returns the document id and refreshes the
// cache so the new document becomes visible. On exhaustion it returns
// ErrWriteFailure; the caller records the alert locally regardless.
func (c *Client) Append(ctx context.Context, doc models.AuditDocument) (string, error) {
	now := time.Now().UTC()
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	if doc.PublishedDate.IsZero() {
		doc.PublishedDate = now
	}
	doc.UpdatedAt = now

	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}

	c.setState(StateWriting)

	var lastAttemptErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				c.failWrite(ctx.Err())
				return "", fmt.Errorf("%w: %v", ErrWriteFailure, ctx.Err())
			case <-time.After(c.backoff * time.Duration(attempt-1)):
			}
		}

		id, err := c.postDocument(ctx, body)
		if err == nil {
			if id == "" {
				id = doc.ID
			}
			c.setState(StateWritten)
			// The append's own refresh; a failure here leaves the cache stale
			// but the write itself has succeeded.
			if rerr := c.Refresh(ctx); rerr != nil && c.log != nil {
				c.log.Warnw("ledger_post_append_refresh_failed", "err", rerr)
			}
			c.setState(StateIdle)
			return id, nil
		}
		lastAttemptErr = err
		if c.log != nil {
			c.log.Warnw("ledger_append_attempt_failed", "attempt", attempt, "err", err)
		}
	}

	c.failWrite(lastAttemptErr)
	return "", fmt.Errorf("%w: after %d attempts: %v", ErrWriteFailure, c.maxAttempts, lastAttemptErr)
}

// failWrite records the stale indicator and returns the cycle to idle. A
// failed write never leaves the client in a dangling writing state.
func (c *Client) failWrite(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.lastErr = err.Error()
	}
	c.state = StateIdle
}

func (c *Client) postDocument(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+documentsPath, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("ledger append: non-2xx response %d", resp.StatusCode)
	}

	// The store echoes the created document; the id is all we need back.
	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&created); err != nil {
		return "", nil // write succeeded; echo body is advisory
	}
	return created.ID, nil
}

// Refresh fetches the current document set and replaces the cache. Concurrent
// calls are coalesced: a refresh already in flight is joined, not duplicated.
// The cached latest document survives transient errors and is only replaced
// or cleared on a confirmed result.
func (c *Client) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.refreshDone != nil {
		done := c.refreshDone
		c.mu.Unlock()
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrReadFailure, ctx.Err())
		case <-done:
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.refreshErr
	}
	done := make(chan struct{})
	c.refreshDone = done
	c.state = StateRefreshing
	c.mu.Unlock()

	docs, err := c.fetchDocuments(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		c.docs = docs
		c.latest = latestByUpdate(docs)
		c.lastErr = "" // fresh data clears the stale indicator
	} else {
		// keep the previous cache; surface staleness only
		c.lastErr = err.Error()
		err = fmt.Errorf("%w: %v", ErrReadFailure, err)
		if c.log != nil {
			c.log.Warnw("ledger_refresh_failed", "err", err)
		}
	}
	c.refreshErr = err
	c.refreshDone = nil
	c.state = StateIdle
	close(done)
	return err
}

func (c *Client) fetchDocuments(ctx context.Context) ([]models.AuditDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+documentsPath, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ledger read: non-200 response %d", resp.StatusCode)
	}

	var docs []models.AuditDocument
	if err := json.NewDecoder(resp.Body).Decode(&docs); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}
	return docs, nil
}

// latestByUpdate picks the most recently updated document, nil when empty.
func latestByUpdate(docs []models.AuditDocument) *models.AuditDocument {
	var latest *models.AuditDocument
	for i := range docs {
		if latest == nil || docs[i].UpdatedAt.After(latest.UpdatedAt) {
			latest = &docs[i]
		}
	}
	if latest == nil {
		return nil
	}
	cp := *latest
	return &cp
}

// LatestDocument returns the cached most-recent document. The second return
// is false only when the ledger is confirmed empty or never fetched.
func (c *Client) LatestDocument() (models.AuditDocument, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.latest == nil {
		return models.AuditDocument{}, false
	}
	return *c.latest, true
}

// Documents returns a copy of the cached collection.
func (c *Client) Documents() []models.AuditDocument {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.AuditDocument, len(c.docs))
	copy(out, c.docs)
	return out
}

// LastError returns the stale-data indicator, empty when the cache is fresh.
func (c *Client) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// State reports where the append/refresh cycle currently is.
func (c *Client) State() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) setState(s string) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}
