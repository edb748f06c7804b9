package repository

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"resty.dev/v3"

	"github.com/mehak151/unfurl/internal/config"
	"github.com/mehak151/unfurl/internal/ctxlog"
)

// Reference identifies one external source. Two references with the same
// URL and revision share a cache entry even under different names.
type Reference struct {
	Name     string
	URL      string
	Revision string
}

// Key is the cache identity of the reference.
func (r Reference) Key() string {
	return r.URL + "#" + r.Revision
}

// Option configures a Cache.
type Option func(*Cache)

// WithTimeout bounds each individual fetch attempt.
func WithTimeout(d time.Duration) Option {
	return func(c *Cache) { c.timeout = d }
}

// WithRetries sets the number of retries after the first failed attempt.
func WithRetries(n int) Option {
	return func(c *Cache) { c.retries = n }
}

// Cache materializes references under a root directory and remembers what
// it has already fetched.
type Cache struct {
	root    string
	timeout time.Duration
	retries int
	client  *resty.Client

	mu     sync.Mutex
	byKey  map[string]string // reference key -> local dir
	byName map[string]string // repository name -> local dir
}

// NewCache creates a cache rooted at the given directory.
func NewCache(root string, opts ...Option) *Cache {
	c := &Cache{
		root:    root,
		timeout: 30 * time.Second,
		retries: 3,
		byKey:   make(map[string]string),
		byName:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.client = resty.New().
		SetTimeout(c.timeout).
		SetRetryCount(c.retries).
		SetRetryWaitTime(250 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second)
	return c
}

// Close releases the cache's HTTP client.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Resolve materializes all given repositories, fetching independent
// references in parallel. The first failure cancels the remaining fetches.
func (c *Cache) Resolve(ctx context.Context, repos map[string]*config.Repository) error {
	logger := ctxlog.FromContext(ctx)
	if len(repos) == 0 {
		logger.Debug("No repository references to resolve.")
		return nil
	}

	group, groupCtx := errgroup.WithContext(ctx)
	for _, repo := range repos {
		ref := Reference{Name: repo.Name, URL: repo.URL, Revision: repo.Revision}
		group.Go(func() error {
			dir, err := c.EnsureLocal(groupCtx, ref)
			if err != nil {
				return err
			}
			logger.Debug("Repository reference resolved.", "name", ref.Name, "dir", dir)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}
	logger.Info("Repository references resolved.", "count", len(repos))
	return nil
}

// EnsureLocal returns the local directory for a reference, fetching it
// first if the cache has no entry for its identity. The operation is
// idempotent: a second call with the same identity returns the recorded
// directory without touching the network.
func (c *Cache) EnsureLocal(ctx context.Context, ref Reference) (string, error) {
	c.mu.Lock()
	if dir, ok := c.byKey[ref.Key()]; ok {
		c.byName[ref.Name] = dir
		c.mu.Unlock()
		return dir, nil
	}
	c.mu.Unlock()

	dir, err := c.fetch(ctx, ref)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.byKey[ref.Key()] = dir
	c.byName[ref.Name] = dir
	c.mu.Unlock()
	return dir, nil
}

// Dir implements helpers.DirResolver: it returns the directory recorded
// for a repository name, failing for names that were never resolved.
func (c *Cache) Dir(name string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if dir, ok := c.byName[name]; ok {
		return dir, nil
	}
	return "", fmt.Errorf("repository '%s' is not resolved", name)
}

// fetch materializes one reference. Local sources map straight to their
// directory; remote ones are downloaded into the cache root. Partial
// downloads are written to a staging directory and discarded on failure.
func (c *Cache) fetch(ctx context.Context, ref Reference) (string, error) {
	logger := ctxlog.FromContext(ctx)

	parsed, err := url.Parse(ref.URL)
	if err != nil {
		return "", &FetchError{Name: ref.Name, URL: ref.URL, Kind: FetchNotFound, Err: err}
	}

	switch parsed.Scheme {
	case "", "file":
		localPath := parsed.Path
		if parsed.Scheme == "" {
			localPath = ref.URL
		}
		info, err := os.Stat(localPath)
		if err != nil {
			return "", &FetchError{Name: ref.Name, URL: ref.URL, Kind: FetchNotFound, Err: err}
		}
		if info.IsDir() {
			return localPath, nil
		}
		return filepath.Dir(localPath), nil
	case "http", "https":
		// handled below
	default:
		return "", &FetchError{Name: ref.Name, URL: ref.URL, Kind: FetchNotFound,
			Err: fmt.Errorf("unsupported scheme '%s'", parsed.Scheme)}
	}

	logger.Debug("Fetching repository reference.", "name", ref.Name, "url", ref.URL, "revision", ref.Revision)

	res, err := c.client.R().SetContext(ctx).Get(ref.URL)
	if err != nil {
		return "", &FetchError{Name: ref.Name, URL: ref.URL, Kind: classify(err), Err: err}
	}
	if res.StatusCode() == http.StatusNotFound {
		return "", &FetchError{Name: ref.Name, URL: ref.URL, Kind: FetchNotFound,
			Err: fmt.Errorf("server returned %s", res.Status())}
	}
	if res.IsError() {
		return "", &FetchError{Name: ref.Name, URL: ref.URL, Kind: FetchNetworkFailure,
			Err: fmt.Errorf("server returned %s", res.Status())}
	}

	dir := filepath.Join(c.root, sanitizeName(ref.Name))
	staging := dir + ".partial"
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}

	fileName := path.Base(parsed.Path)
	if fileName == "." || fileName == "/" || fileName == "" {
		fileName = "content"
	}
	if err := os.WriteFile(filepath.Join(staging, fileName), res.Bytes(), 0o644); err != nil {
		os.RemoveAll(staging)
		return "", fmt.Errorf("failed to write fetched content: %w", err)
	}

	os.RemoveAll(dir)
	if err := os.Rename(staging, dir); err != nil {
		os.RemoveAll(staging)
		return "", fmt.Errorf("failed to commit fetched content: %w", err)
	}
	return dir, nil
}

// classify maps a transport error onto the fetch taxonomy.
func classify(err error) FetchKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return FetchTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FetchTimeout
	}
	return FetchNetworkFailure
}

// sanitizeName makes a repository name safe as a directory component.
func sanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '_'
		}
		return r
	}, name)
}
