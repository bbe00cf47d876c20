package properties

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"

	"dealerbridge_backend/platform/normalize"
)

// Selection strategies for comma-separated config values. The source system
// picked uniformly at random per request; whether that was intended business
// behavior is unclear, so the strategy is injectable rather than fixed.
const (
	StrategyRandom     = "random"
	StrategyFirst      = "first"
	StrategyRoundRobin = "round-robin"
)

// Config keys with structural meaning inside a customProperties block.
const (
	defaultBlockKey = "default"
	overridesKey    = "_overrides"
)

// Composer merges layered custom-property configuration into the final
// key-value set attached to a CRM record.
type Composer struct {
	strategy string

	mu       sync.Mutex
	counters map[string]int
}

// NewComposer creates a composer with the given list-selection strategy.
// Unknown strategies fall back to random, the source system's behavior.
func NewComposer(strategy string) *Composer {
	switch strategy {
	case StrategyFirst, StrategyRoundRobin, StrategyRandom:
	default:
		strategy = StrategyRandom
	}
	return &Composer{
		strategy: strategy,
		counters: make(map[string]int),
	}
}

// Compose flattens a customProperties block for the given brand and dealer.
// Layering order, later layers overriding earlier ones:
//  1. top-level scalar keys
//  2. the "default" sub-block
//  3. the top-level "_overrides" entry for the dealer
//  4. the brand sub-block (its own "_overrides" excluded)
//  5. the brand sub-block's "_overrides" entry for the dealer
func (c *Composer) Compose(cfg map[string]interface{}, brandName, dealerName string) map[string]string {
	final := make(map[string]string)
	if len(cfg) == 0 {
		return final
	}

	applyScalars(final, cfg)

	if block, ok := asBlock(cfg[defaultBlockKey]); ok {
		applyScalars(final, block)
	}

	if overrides, ok := asBlock(cfg[overridesKey]); ok {
		if block, ok := dealerBlock(overrides, dealerName); ok {
			applyScalars(final, block)
		}
	}

	if brandBlock, ok := findBrandBlock(cfg, brandName); ok {
		applyScalars(final, brandBlock)
		if overrides, ok := asBlock(brandBlock[overridesKey]); ok {
			if block, ok := dealerBlock(overrides, dealerName); ok {
				applyScalars(final, block)
			}
		}
	}

	for key, value := range final {
		final[key] = c.selectValue(key, value)
	}
	return final
}

// selectValue picks one candidate from a comma-separated value list.
func (c *Composer) selectValue(key, value string) string {
	if !strings.Contains(value, ",") {
		return value
	}

	parts := strings.Split(value, ",")
	candidates := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			candidates = append(candidates, trimmed)
		}
	}
	if len(candidates) == 0 {
		return value
	}
	if len(candidates) == 1 {
		return candidates[0]
	}

	switch c.strategy {
	case StrategyFirst:
		return candidates[0]
	case StrategyRoundRobin:
		c.mu.Lock()
		idx := c.counters[key] % len(candidates)
		c.counters[key]++
		c.mu.Unlock()
		return candidates[idx]
	default:
		return candidates[rand.Intn(len(candidates))]
	}
}

func applyScalars(dst map[string]string, block map[string]interface{}) {
	for key, raw := range block {
		if key == defaultBlockKey || key == overridesKey {
			continue
		}
		switch v := raw.(type) {
		case string:
			dst[key] = v
		case bool:
			dst[key] = fmt.Sprintf("%t", v)
		case float64:
			dst[key] = strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
}

func findBrandBlock(cfg map[string]interface{}, brandName string) (map[string]interface{}, bool) {
	if brandName == "" {
		return nil, false
	}
	if block, ok := asBlock(cfg[brandName]); ok {
		return block, true
	}
	for key, raw := range cfg {
		if key == defaultBlockKey || key == overridesKey {
			continue
		}
		if normalize.Equal(key, brandName) {
			if block, ok := asBlock(raw); ok {
				return block, true
			}
		}
	}
	return nil, false
}

func dealerBlock(overrides map[string]interface{}, dealerName string) (map[string]interface{}, bool) {
	if dealerName == "" {
		return nil, false
	}
	for key, raw := range overrides {
		if normalize.Equal(key, dealerName) {
			return asBlock(raw)
		}
	}
	return nil, false
}

func asBlock(raw interface{}) (map[string]interface{}, bool) {
	block, ok := raw.(map[string]interface{})
	return block, ok && block != nil
}
