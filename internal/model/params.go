package model

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// MaxFilterParams is the maximum number of narrowing parameters the upstream
// market-data API accepts in a single token-list query.
const MaxFilterParams = 5

// Fixed sort directives used for every token-list query.
const (
	DefaultSortBy   = "volume_24h_usd"
	DefaultSortType = "desc"
	DefaultPageSize = 100
)

// allowedFilterKeys is the immutable catalog of narrowing parameters the
// upstream token-list endpoint understands.
var allowedFilterKeys = map[string]bool{
	"min_liquidity":                 true,
	"max_liquidity":                 true,
	"min_market_cap":                true,
	"max_market_cap":                true,
	"min_holder":                    true,
	"max_holder":                    true,
	"min_volume_24h_usd":            true,
	"max_volume_24h_usd":            true,
	"min_price_change_24h_percent":  true,
	"max_price_change_24h_percent":  true,
	"min_trade_24h_count":           true,
	"max_trade_24h_count":           true,
}

// AllowedFilterKeys returns the parameter catalog in sorted order.
func AllowedFilterKeys() []string {
	keys := make([]string, 0, len(allowedFilterKeys))
	for k := range allowedFilterKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsAllowedFilterKey reports whether key is part of the parameter catalog.
func IsAllowedFilterKey(key string) bool {
	return allowedFilterKeys[key]
}

// Floors are the mandatory minimum parameter values. They are enforced in
// code regardless of what the decision function proposes.
type Floors map[string]float64

// DefaultFloors returns the standard mandatory floors.
func DefaultFloors() Floors {
	return Floors{
		"min_liquidity":       10000,
		"min_market_cap":      50000,
		"min_holder":          100,
		"min_trade_24h_count": 500,
		"min_volume_24h_usd":  25000,
	}
}

// Validate checks that every floor key is in the catalog, is a minimum
// variant, and carries a positive finite value. Invalid floors are a fatal
// configuration error.
func (f Floors) Validate() error {
	if len(f) == 0 {
		return fmt.Errorf("no mandatory floors configured")
	}
	for key, value := range f {
		if !allowedFilterKeys[key] {
			return fmt.Errorf("floor %q is not in the parameter catalog", key)
		}
		if !strings.HasPrefix(key, "min_") {
			return fmt.Errorf("floor %q is not a minimum parameter", key)
		}
		if value <= 0 || math.IsNaN(value) || math.IsInf(value, 0) {
			return fmt.Errorf("floor %q has invalid value %v", key, value)
		}
	}
	return nil
}

// FilterParameterSet is the validated set of narrowing parameters plus fixed
// sort/limit directives for one pipeline run. Immutable once chosen.
type FilterParameterSet struct {
	Filters  map[string]float64 `json:"filters"`
	SortBy   string             `json:"sort_by"`
	SortType string             `json:"sort_type"`
	Limit    int                `json:"limit"`
}

// NewFilterParameterSet returns a parameter set with the fixed directives
// and an empty filter map.
func NewFilterParameterSet() FilterParameterSet {
	return FilterParameterSet{
		Filters:  make(map[string]float64),
		SortBy:   DefaultSortBy,
		SortType: DefaultSortType,
		Limit:    DefaultPageSize,
	}
}

// DefaultParameters is the hardcoded fallback used when the decision function
// fails to produce a usable proposal: the mandatory floors plus the fixed
// sort directives.
func DefaultParameters(floors Floors) FilterParameterSet {
	p := NewFilterParameterSet()
	for key, value := range floors {
		p.Filters[key] = value
	}
	return p
}

// Validate checks that every filter key is in the catalog and that values
// are finite. It does not enforce the parameter count; that is the
// selector's boundary check.
func (p FilterParameterSet) Validate() error {
	for key, value := range p.Filters {
		if !allowedFilterKeys[key] {
			return fmt.Errorf("filter %q is not in the parameter catalog", key)
		}
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return fmt.Errorf("filter %q has non-finite value", key)
		}
	}
	if p.Limit <= 0 {
		return fmt.Errorf("limit must be positive, got %d", p.Limit)
	}
	return nil
}

// ApplyFloors merges the mandatory floors into the set. A floor always wins
// over a weaker proposed value, and floors missing from the proposal are
// added. If the merged set exceeds MaxFilterParams, non-floor keys are
// dropped (floors are non-negotiable, the proposal is not).
func (p *FilterParameterSet) ApplyFloors(floors Floors) {
	if p.Filters == nil {
		p.Filters = make(map[string]float64)
	}
	for key, floor := range floors {
		if current, ok := p.Filters[key]; !ok || current < floor {
			p.Filters[key] = floor
		}
	}
	if len(p.Filters) <= MaxFilterParams {
		return
	}
	extras := make([]string, 0, len(p.Filters))
	for key := range p.Filters {
		if _, isFloor := floors[key]; !isFloor {
			extras = append(extras, key)
		}
	}
	sort.Strings(extras)
	for _, key := range extras {
		if len(p.Filters) <= MaxFilterParams {
			break
		}
		delete(p.Filters, key)
	}
}
