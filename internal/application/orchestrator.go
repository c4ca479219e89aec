// Package application composes the analytics calculators against repository
// data behind a cache-aside layer. Each operation reads its canonical cache
// key first, recomputes from the store on a miss, and writes the fresh
// result back under the operation's TTL tier. Error results are never
// cached, and a failed cache write never fails the request.
package application

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/stakescope/stakescope/internal/domain/commission"
	"github.com/stakescope/stakescope/internal/domain/concentration"
	"github.com/stakescope/stakescope/internal/domain/rank"
	"github.com/stakescope/stakescope/internal/domain/risk"
	"github.com/stakescope/stakescope/internal/domain/volatility"
	"github.com/stakescope/stakescope/internal/infrastructure/cache"
	"github.com/stakescope/stakescope/internal/persistence"
)

// ErrInvalidRange signals caller-supplied date ranges or pagination bounds
// outside the configured limits. Surfaced immediately, never retried.
var ErrInvalidRange = errors.New("invalid range")

const (
	maxRangeDays     = 365
	defaultRangeDays = 90
	maxPageLimit     = 100
)

// Repos bundles the repository read interfaces the orchestrator consumes.
type Repos struct {
	Operators   persistence.OperatorRepo
	Allocations persistence.AllocationRepo
	Commission  persistence.CommissionRepo
	Snapshots   persistence.SnapshotRepo
}

// Observer receives cache events for metrics export.
type Observer interface {
	CacheHit(domain string)
	CacheMiss(domain string)
}

type nopObserver struct{}

func (nopObserver) CacheHit(string)  {}
func (nopObserver) CacheMiss(string) {}

// Options tunes the orchestrator. Zero values fall back to defaults.
type Options struct {
	TTL               cache.TTLPolicy
	VolatilityEpsilon float64
	RiskWeights       risk.Weights
	Observer          Observer
}

// Orchestrator runs the analytics operations.
type Orchestrator struct {
	cache    *cache.Store
	repos    Repos
	ttl      cache.TTLPolicy
	vol      *volatility.Calculator
	weights  risk.Weights
	observer Observer
	now      func() time.Time
}

// New creates an Orchestrator.
func New(store *cache.Store, repos Repos, opts Options) *Orchestrator {
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}
	weights := opts.RiskWeights
	if weights == (risk.Weights{}) {
		weights = risk.DefaultWeights
	}
	return &Orchestrator{
		cache:    store,
		repos:    repos,
		ttl:      opts.TTL.Normalize(),
		vol:      volatility.New(opts.VolatilityEpsilon),
		weights:  weights,
		observer: opts.Observer,
		now:      time.Now,
	}
}

// OperatorConcentration returns the operator's USD exposure concentration
// across the AVSs it serves.
func (o *Orchestrator) OperatorConcentration(ctx context.Context, address string) (*OperatorConcentration, error) {
	key := cache.Key("operators", "concentration", address)
	var cached OperatorConcentration
	if o.lookup(ctx, key, "concentration", &cached) {
		return &cached, nil
	}

	var (
		wg     sync.WaitGroup
		allocs []persistence.Allocation
		errs   [2]error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = o.repos.Operators.Get(ctx, address)
	}()
	go func() {
		defer wg.Done()
		allocs, errs[1] = o.repos.Allocations.ListByOperator(ctx, address)
	}()
	wg.Wait()
	if err := firstError(errs[:]); err != nil {
		return nil, err
	}

	res := &OperatorConcentration{
		Operator:   address,
		Result:     concentration.Compute(exposureByAVS(allocs)),
		ComputedAt: o.now().UTC(),
	}
	o.store(ctx, key, res, o.ttl.List)
	return res, nil
}

// NetworkConcentration returns stake concentration across the whole
// operator population, weighted by TVS.
func (o *Orchestrator) NetworkConcentration(ctx context.Context) (*NetworkConcentration, error) {
	key := cache.Key("network", "concentration")
	var cached NetworkConcentration
	if o.lookup(ctx, key, "concentration", &cached) {
		return &cached, nil
	}

	metrics, err := o.repos.Operators.ListMetrics(ctx)
	if err != nil {
		return nil, err
	}

	weights := make([]concentration.WeightedEntity, len(metrics))
	for i, m := range metrics {
		weights[i] = concentration.WeightedEntity{
			EntityID: m.Address,
			Weight:   m.TVSUSD.InexactFloat64(),
		}
	}

	res := &NetworkConcentration{
		Result:     concentration.Compute(weights),
		ComputedAt: o.now().UTC(),
	}
	o.store(ctx, key, res, o.ttl.List)
	return res, nil
}

// OperatorVolatility returns trailing-window TVS volatility for the
// operator over the requested date range. A zero range defaults to the
// trailing 90 days; ranges above one year are rejected with ErrInvalidRange.
func (o *Orchestrator) OperatorVolatility(ctx context.Context, address string, from, to time.Time) (*OperatorVolatility, error) {
	if to.IsZero() {
		to = o.now().UTC()
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -defaultRangeDays)
	}
	if from.After(to) || to.Sub(from) > maxRangeDays*24*time.Hour {
		return nil, ErrInvalidRange
	}

	key := cache.Key("operators", "volatility", address,
		from.Format("2006-01-02"), to.Format("2006-01-02"))
	var cached OperatorVolatility
	if o.lookup(ctx, key, "volatility", &cached) {
		return &cached, nil
	}

	var (
		wg    sync.WaitGroup
		snaps []persistence.TVSSnapshot
		errs  [2]error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = o.repos.Operators.Get(ctx, address)
	}()
	go func() {
		defer wg.Done()
		snaps, errs[1] = o.repos.Snapshots.ListTVS(ctx, address, from, to)
	}()
	wg.Wait()
	if err := firstError(errs[:]); err != nil {
		return nil, err
	}

	series := make([]volatility.Point, len(snaps))
	for i, s := range snaps {
		series[i] = s.Domain()
	}

	res := &OperatorVolatility{
		Operator:   address,
		From:       from,
		To:         to,
		Result:     o.vol.Compute(series),
		ComputedAt: o.now().UTC(),
	}
	o.store(ctx, key, res, o.ttl.History)
	return res, nil
}

// OperatorCommission returns the operator's blended commission exposure
// against the network benchmarks. The independent repository reads run
// concurrently and join before computation.
func (o *Orchestrator) OperatorCommission(ctx context.Context, address string) (*OperatorCommission, error) {
	key := cache.Key("operators", "commission", address)
	var cached OperatorCommission
	if o.lookup(ctx, key, "commission", &cached) {
		return &cached, nil
	}

	var (
		wg     sync.WaitGroup
		allocs []persistence.Allocation
		rates  []persistence.CommissionRate
		bench  *persistence.CommissionBenchmarks
		errs   [4]error
	)
	wg.Add(4)
	go func() {
		defer wg.Done()
		_, errs[0] = o.repos.Operators.Get(ctx, address)
	}()
	go func() {
		defer wg.Done()
		allocs, errs[1] = o.repos.Allocations.ListByOperator(ctx, address)
	}()
	go func() {
		defer wg.Done()
		rates, errs[2] = o.repos.Commission.ListRates(ctx, address)
	}()
	go func() {
		defer wg.Done()
		bench, errs[3] = o.repos.Commission.Benchmarks(ctx)
	}()
	wg.Wait()

	// Missing benchmarks degrade to zero values rather than failing the
	// whole request; the benchmark job runs on its own cadence.
	if errors.Is(errs[3], persistence.ErrNotFound) {
		errs[3] = nil
		bench = &persistence.CommissionBenchmarks{}
	}
	if err := firstError(errs[:]); err != nil {
		return nil, err
	}

	domainAllocs := make([]commission.Allocation, len(allocs))
	for i, a := range allocs {
		domainAllocs[i] = a.Domain()
	}
	domainRates := make([]commission.Rate, len(rates))
	for i, r := range rates {
		domainRates[i] = r.Domain()
	}

	res := &OperatorCommission{
		Operator:   address,
		Impact:     commission.Analyze(domainAllocs, domainRates, bench.Domain()),
		Benchmarks: bench.Domain(),
		ComputedAt: o.now().UTC(),
	}
	o.store(ctx, key, res, o.ttl.List)
	return res, nil
}

// OperatorPercentiles places the operator within the peer population for
// TVS, delegator count, AVS count and risk score.
func (o *Orchestrator) OperatorPercentiles(ctx context.Context, address string) (*OperatorPercentiles, error) {
	key := cache.Key("operators", "percentiles", address)
	var cached OperatorPercentiles
	if o.lookup(ctx, key, "percentiles", &cached) {
		return &cached, nil
	}

	metrics, err := o.repos.Operators.ListMetrics(ctx)
	if err != nil {
		return nil, err
	}

	var target *persistence.OperatorMetrics
	tvs := make([]float64, len(metrics))
	delegators := make([]float64, len(metrics))
	avsCounts := make([]float64, len(metrics))
	riskScores := make([]float64, len(metrics))
	for i := range metrics {
		m := &metrics[i]
		tvs[i] = m.TVSUSD.InexactFloat64()
		delegators[i] = float64(m.DelegatorCount)
		avsCounts[i] = float64(m.AVSCount)
		riskScores[i] = m.RiskScore
		if m.Address == address {
			target = m
		}
	}
	if target == nil {
		return nil, persistence.ErrNotFound
	}

	res := &OperatorPercentiles{
		Operator:             address,
		TVSPercentile:        rank.Rank(tvs, target.TVSUSD.InexactFloat64()),
		DelegatorsPercentile: rank.Rank(delegators, float64(target.DelegatorCount)),
		AVSCountPercentile:   rank.Rank(avsCounts, float64(target.AVSCount)),
		RiskPercentile:       rank.Rank(riskScores, target.RiskScore),
		PeerCount:            len(metrics),
		ComputedAt:           o.now().UTC(),
	}
	o.store(ctx, key, res, o.ttl.Realtime)
	return res, nil
}

// OperatorRisk returns the operator's composite risk score, recomputing the
// underlying concentration, volatility and commission signals from source.
func (o *Orchestrator) OperatorRisk(ctx context.Context, address string) (*OperatorRisk, error) {
	key := cache.Key("operators", "risk", address)
	var cached OperatorRisk
	if o.lookup(ctx, key, "risk", &cached) {
		return &cached, nil
	}

	to := o.now().UTC()
	from := to.AddDate(0, 0, -defaultRangeDays)

	var (
		wg     sync.WaitGroup
		allocs []persistence.Allocation
		snaps  []persistence.TVSSnapshot
		rates  []persistence.CommissionRate
		bench  *persistence.CommissionBenchmarks
		errs   [5]error
	)
	wg.Add(5)
	go func() {
		defer wg.Done()
		_, errs[0] = o.repos.Operators.Get(ctx, address)
	}()
	go func() {
		defer wg.Done()
		allocs, errs[1] = o.repos.Allocations.ListByOperator(ctx, address)
	}()
	go func() {
		defer wg.Done()
		snaps, errs[2] = o.repos.Snapshots.ListTVS(ctx, address, from, to)
	}()
	go func() {
		defer wg.Done()
		rates, errs[3] = o.repos.Commission.ListRates(ctx, address)
	}()
	go func() {
		defer wg.Done()
		bench, errs[4] = o.repos.Commission.Benchmarks(ctx)
	}()
	wg.Wait()

	if errors.Is(errs[4], persistence.ErrNotFound) {
		errs[4] = nil
		bench = &persistence.CommissionBenchmarks{}
	}
	if err := firstError(errs[:]); err != nil {
		return nil, err
	}

	conc := concentration.Compute(exposureByAVS(allocs))

	series := make([]volatility.Point, len(snaps))
	for i, s := range snaps {
		series[i] = s.Domain()
	}
	vol := o.vol.Compute(series)

	domainAllocs := make([]commission.Allocation, len(allocs))
	for i, a := range allocs {
		domainAllocs[i] = a.Domain()
	}
	domainRates := make([]commission.Rate, len(rates))
	for i, r := range rates {
		domainRates[i] = r.Domain()
	}
	comm := commission.Analyze(domainAllocs, domainRates, bench.Domain())

	res := &OperatorRisk{
		Operator:   address,
		Score:      risk.Compute(conc, vol, comm, o.weights),
		ComputedAt: o.now().UTC(),
	}
	o.store(ctx, key, res, o.ttl.Realtime)
	return res, nil
}

// ListOperators returns a paginated slice of the operator population sorted
// by TVS descending.
func (o *Orchestrator) ListOperators(ctx context.Context, limit, offset int) (*OperatorList, error) {
	if limit < 1 || limit > maxPageLimit || offset < 0 {
		return nil, ErrInvalidRange
	}

	key := cache.Key("operators", "list", strconv.Itoa(limit), strconv.Itoa(offset))
	var cached OperatorList
	if o.lookup(ctx, key, "list", &cached) {
		return &cached, nil
	}

	metrics, err := o.repos.Operators.ListMetrics(ctx)
	if err != nil {
		return nil, err
	}

	page := []persistence.OperatorMetrics{}
	if offset < len(metrics) {
		end := offset + limit
		if end > len(metrics) {
			end = len(metrics)
		}
		page = metrics[offset:end]
	}

	res := &OperatorList{
		Operators:  page,
		Total:      len(metrics),
		Limit:      limit,
		Offset:     offset,
		ComputedAt: o.now().UTC(),
	}
	o.store(ctx, key, res, o.ttl.List)
	return res, nil
}

// InvalidateOperator removes every cached view of the operator. Called by
// write-side collaborators after they update the underlying tables.
func (o *Orchestrator) InvalidateOperator(ctx context.Context, address string) error {
	var first error
	for _, scope := range []string{"concentration", "volatility", "commission", "percentiles", "risk"} {
		prefix := cache.Key("operators", scope, address)
		if err := o.cache.DeleteByPrefix(ctx, prefix); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// lookup attempts a cache read. Backend errors and decode failures are
// treated as misses; the caller recomputes from the source of truth.
func (o *Orchestrator) lookup(ctx context.Context, key, domain string, out any) bool {
	data, found, err := o.cache.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache read failed, recomputing")
	}
	if err != nil || !found {
		o.observer.CacheMiss(domain)
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache entry undecodable, recomputing")
		o.observer.CacheMiss(domain)
		return false
	}
	o.observer.CacheHit(domain)
	return true
}

// store writes a computed result back. Failures are logged, never
// propagated; the caller already holds the fresh result.
func (o *Orchestrator) store(ctx context.Context, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache encode failed")
		return
	}
	if err := o.cache.Set(ctx, key, data, ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// exposureByAVS folds an operator's allocations into USD weight per AVS.
func exposureByAVS(allocs []persistence.Allocation) []concentration.WeightedEntity {
	byAVS := make(map[string]float64)
	order := make([]string, 0, len(allocs))
	for _, a := range allocs {
		usd := a.MagnitudeUSD.InexactFloat64()
		if usd <= 0 {
			continue
		}
		if _, seen := byAVS[a.AVSID]; !seen {
			order = append(order, a.AVSID)
		}
		byAVS[a.AVSID] += usd
	}
	out := make([]concentration.WeightedEntity, len(order))
	for i, id := range order {
		out[i] = concentration.WeightedEntity{EntityID: id, Weight: byAVS[id]}
	}
	return out
}

func firstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
