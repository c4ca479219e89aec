// Package metadata fetches operator profile metadata from the external
// registry. The registry is best-effort: calls are rate limited on the
// client side, wrapped in a circuit breaker, and cached under the static
// TTL tier. Callers treat a failed lookup as "no profile".
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/stakescope/stakescope/internal/config"
	"github.com/stakescope/stakescope/internal/infrastructure/cache"
)

const maxBodyBytes = 1 << 20

// Profile is the registry's public description of an operator.
type Profile struct {
	Address     string `json:"address"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Website     string `json:"website"`
	Logo        string `json:"logo"`
	Twitter     string `json:"twitter"`
}

// Enricher looks up operator profiles with caching and backpressure toward
// the upstream registry.
type Enricher struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	cache   *cache.Store
	ttl     time.Duration
}

// New builds an Enricher from the registry configuration. The static TTL
// tier governs how long profiles stay cached.
func New(cfg config.MetadataConfig, store *cache.Store, ttl time.Duration) *Enricher {
	settings := gobreaker.Settings{
		Name:    "metadata-registry",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("metadata breaker state change")
		},
	}
	return &Enricher{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.RequestTimeout},
		breaker: gobreaker.NewCircuitBreaker(settings),
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		cache:   store,
		ttl:     ttl,
	}
}

// Lookup returns the operator's registry profile. A cached profile is served
// without touching the registry. Upstream faults surface as errors; callers
// degrade to an absent profile.
func (e *Enricher) Lookup(ctx context.Context, address string) (*Profile, error) {
	key := cache.Key("metadata", "profile", address)
	if data, found, err := e.cache.Get(ctx, key); err == nil && found {
		var p Profile
		if err := json.Unmarshal(data, &p); err == nil {
			return &p, nil
		}
		log.Warn().Str("key", key).Msg("cached profile undecodable, refetching")
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("metadata limiter: %w", err)
	}

	out, err := e.breaker.Execute(func() (interface{}, error) {
		return e.fetch(ctx, address)
	})
	if err != nil {
		return nil, err
	}
	p := out.(*Profile)

	if data, err := json.Marshal(p); err == nil {
		if err := e.cache.Set(ctx, key, data, e.ttl); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("profile cache write failed")
		}
	}
	return p, nil
}

func (e *Enricher) fetch(ctx context.Context, address string) (*Profile, error) {
	endpoint := e.baseURL + "/operators/" + url.PathEscape(address) + "/metadata"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("metadata request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("metadata registry: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, fmt.Errorf("metadata registry: status %d", resp.StatusCode)
	}

	var p Profile
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&p); err != nil {
		return nil, fmt.Errorf("metadata decode: %w", err)
	}
	if p.Address == "" {
		p.Address = address
	}
	return &p, nil
}
