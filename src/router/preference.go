package router

import (
	"fmt"
	"sync"
	"time"

	"www.github.com/Wanderer0074348/ModelMux/src/config"
)

// ErrorRates supplies provider-level failure rates. Satisfied by
// metrics.Store.
type ErrorRates interface {
	ProviderErrorRate(provider string) float64
}

// PreferenceTracker owns the default preferred provider. After fallback runs
// it moves the preference away from a failing provider: error rate above the
// threshold, cooldown elapsed since the last switch, and an alternate with a
// strictly lower error rate available. A per-request preferred provider is
// never overridden by the tracker.
type PreferenceTracker struct {
	mu         sync.Mutex
	preferred  string
	threshold  float64
	cooldown   time.Duration
	lastSwitch time.Time
	providers  []string
}

func NewPreferenceTracker(cfg *config.RoutingConfig, providers []string) *PreferenceTracker {
	return &PreferenceTracker{
		preferred: cfg.PreferredProvider,
		threshold: cfg.ErrorRateThreshold,
		cooldown:  cfg.SwitchCooldown,
		providers: providers,
	}
}

// Preferred returns the current default preferred provider, possibly empty.
func (t *PreferenceTracker) Preferred() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.preferred
}

// Switch sets the preferred provider manually and restarts the cooldown
// window.
func (t *PreferenceTracker) Switch(provider string) error {
	known := false
	for _, p := range t.providers {
		if p == provider {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown provider %q", provider)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.preferred = provider
	t.lastSwitch = time.Now()
	return nil
}

// Evaluate checks the current preference against live error rates and
// switches to the lowest-error alternate when the switch conditions hold.
// Returns the new preferred provider and whether a switch happened.
func (t *PreferenceTracker) Evaluate(rates ErrorRates) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.preferred == "" {
		return "", false
	}
	if time.Since(t.lastSwitch) < t.cooldown {
		return t.preferred, false
	}

	current := rates.ProviderErrorRate(t.preferred)
	if current <= t.threshold {
		return t.preferred, false
	}

	best := ""
	bestRate := current
	for _, p := range t.providers {
		if p == t.preferred {
			continue
		}
		if r := rates.ProviderErrorRate(p); r < bestRate {
			bestRate = r
			best = p
		}
	}
	if best == "" {
		return t.preferred, false
	}

	t.preferred = best
	t.lastSwitch = time.Now()
	return t.preferred, true
}
