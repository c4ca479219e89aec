package metadata

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakescope/stakescope/internal/config"
	"github.com/stakescope/stakescope/internal/infrastructure/cache"
)

func newEnricher(t *testing.T, baseURL string) (*Enricher, redismock.ClientMock) {
	t.Helper()
	db, mock := redismock.NewClientMock()
	cfg := config.MetadataConfig{
		BaseURL:           baseURL,
		RequestTimeout:    2 * time.Second,
		RequestsPerSecond: 100,
	}
	return New(cfg, cache.NewWithClient(db), time.Hour), mock
}

func TestEnricher_Lookup(t *testing.T) {
	t.Run("fetches_and_caches_profile", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			assert.Equal(t, "/operators/0xabc/metadata", r.URL.Path)
			json.NewEncoder(w).Encode(Profile{Name: "Acme Staking", Website: "https://acme.example"})
		}))
		defer srv.Close()

		e, mock := newEnricher(t, srv.URL)
		key := "metadata:profile:0xabc"
		mock.ExpectGet(key).RedisNil()

		p, err := e.Lookup(context.Background(), "0xabc")
		require.NoError(t, err)
		assert.Equal(t, "Acme Staking", p.Name)
		// Registry omitted the address; the client fills it in.
		assert.Equal(t, "0xabc", p.Address)
		assert.Equal(t, int32(1), hits.Load())
	})

	t.Run("cache_hit_skips_registry", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("registry must not be called on a cache hit")
		}))
		defer srv.Close()

		e, mock := newEnricher(t, srv.URL)
		cached, err := json.Marshal(Profile{Address: "0xabc", Name: "Acme Staking"})
		require.NoError(t, err)
		mock.ExpectGet("metadata:profile:0xabc").SetVal(string(cached))

		p, err := e.Lookup(context.Background(), "0xabc")
		require.NoError(t, err)
		assert.Equal(t, "Acme Staking", p.Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("upstream_error_surfaces", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		e, mock := newEnricher(t, srv.URL)
		mock.ExpectGet("metadata:profile:0xabc").RedisNil()

		_, err := e.Lookup(context.Background(), "0xabc")
		assert.ErrorContains(t, err, "status 502")
	})

	t.Run("breaker_opens_after_consecutive_failures", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		e, mock := newEnricher(t, srv.URL)
		for i := 0; i < 6; i++ {
			mock.ExpectGet("metadata:profile:0xabc").RedisNil()
		}

		var lastErr error
		for i := 0; i < 6; i++ {
			_, lastErr = e.Lookup(context.Background(), "0xabc")
			require.Error(t, lastErr)
		}
		// The sixth call is rejected by the open breaker without a request.
		assert.ErrorContains(t, lastErr, "circuit breaker is open")
	})

	t.Run("cancelled_context_stops_before_request", func(t *testing.T) {
		e, mock := newEnricher(t, "http://registry.invalid")
		mock.ExpectGet("metadata:profile:0xabc").RedisNil()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := e.Lookup(ctx, "0xabc")
		assert.Error(t, err)
	})
}
