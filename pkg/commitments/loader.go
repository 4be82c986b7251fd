package commitments

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Loader fetches the raw commitment file bytes from wherever it lives. The
// HTTPS fetch itself is an external collaborator per §1 — Loader is the
// seam the core exposes so that collaborator can plug in.
type Loader interface {
	Load(ctx context.Context) ([]byte, error)
}

// FileLoader reads the commitment file from local disk, e.g. a build
// artifact bundled alongside the client.
type FileLoader struct {
	Path string
}

// Load implements Loader.
func (l *FileLoader) Load(_ context.Context) ([]byte, error) {
	return os.ReadFile(l.Path)
}

// HTTPLoader fetches the commitment file over HTTP(S). It's the
// external-collaborator contract for fetching the published commitment
// bundle; this type just knows how to turn a URL into bytes.
type HTTPLoader struct {
	Client *http.Client
	URL    string
}

// Load implements Loader.
func (l *HTTPLoader) Load(ctx context.Context) ([]byte, error) {
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.URL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("commitments: fetch %s: unexpected status %d", l.URL, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// cacheKey is the single entry go-cache ever holds; there is exactly one
// commitment bundle in flight per Refresher, so a constant key is enough —
// same role the server's caches["..."] map gives one name per resource.
const cacheKey = "commitment-file"

// Refresher periodically loads a commitment file through Loader, selects
// one (commitmentsKey, channel) entry out of it, and publishes the result
// into a Store. Between fetches it serves the previous bytes out of an
// in-memory cache so a flaky network blip doesn't force every caller to
// refetch — mirrors how the issuer keeps a read-through cache in front of
// its own slower-changing lookups.
type Refresher struct {
	Loader         Loader
	Store          *Store
	CommitmentsKey string
	Channel        string
	TTL            time.Duration

	cache *cache.Cache
	log   *logrus.Entry
}

// NewRefresher builds a Refresher with a TTL-backed read-through cache in
// front of loader.
func NewRefresher(loader Loader, store *Store, commitmentsKey, channel string, ttl time.Duration) *Refresher {
	return &Refresher{
		Loader:         loader,
		Store:          store,
		CommitmentsKey: commitmentsKey,
		Channel:        channel,
		TTL:            ttl,
		cache:          cache.New(ttl, 2*ttl),
		log:            logrus.WithField("component", "commitments"),
	}
}

// RefreshOnce performs a single fetch-parse-select-publish cycle.
func (r *Refresher) RefreshOnce(ctx context.Context) error {
	var raw []byte
	if cached, ok := r.cache.Get(cacheKey); ok {
		raw = cached.([]byte)
	} else {
		fetched, err := r.Loader.Load(ctx)
		if err != nil {
			r.log.WithError(err).Warn("commitment fetch failed, keeping prior snapshot")
			return err
		}
		raw = fetched
		r.cache.SetDefault(cacheKey, raw)
	}

	file, err := ParseFile(raw)
	if err != nil {
		return err
	}
	snap, err := file.Select(r.CommitmentsKey, r.Channel)
	if err != nil {
		return err
	}
	r.Store.Set(snap)
	r.log.Debug("published refreshed commitment snapshot")
	return nil
}

// StartPeriodic schedules RefreshOnce on a cron expression (e.g. "@hourly")
// and returns the running *cron.Cron so the caller can Stop it. Errors from
// individual refresh attempts are logged, not fatal — a transient fetch
// failure leaves the previous snapshot in place rather than panicking, as
// spec.md §5 permits.
func (r *Refresher) StartPeriodic(ctx context.Context, spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if err := r.RefreshOnce(ctx); err != nil {
			r.log.WithError(err).Error("periodic commitment refresh failed")
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
