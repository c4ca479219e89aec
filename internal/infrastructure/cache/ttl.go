package cache

import "time"

// TTLPolicy assigns cache lifetimes by data volatility. The orchestrator
// consults it per operation; nothing enforces the tiers mechanically.
type TTLPolicy struct {
	// Realtime covers live aggregates such as risk scores.
	Realtime time.Duration `yaml:"realtime"`
	// List covers list and detail views.
	List time.Duration `yaml:"list"`
	// History covers time-series and historical windows.
	History time.Duration `yaml:"history"`
	// Static covers slow-moving metadata such as names and logos.
	Static time.Duration `yaml:"static"`
}

// DefaultTTLPolicy mirrors the volatility of the underlying tables:
// aggregates refresh constantly, metadata barely moves.
func DefaultTTLPolicy() TTLPolicy {
	return TTLPolicy{
		Realtime: 30 * time.Second,
		List:     5 * time.Minute,
		History:  time.Hour,
		Static:   7 * 24 * time.Hour,
	}
}

// Normalize fills unset tiers from the defaults.
func (p TTLPolicy) Normalize() TTLPolicy {
	def := DefaultTTLPolicy()
	if p.Realtime <= 0 {
		p.Realtime = def.Realtime
	}
	if p.List <= 0 {
		p.List = def.List
	}
	if p.History <= 0 {
		p.History = def.History
	}
	if p.Static <= 0 {
		p.Static = def.Static
	}
	return p
}
