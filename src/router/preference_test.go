package router

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"www.github.com/Wanderer0074348/ModelMux/src/config"
	"www.github.com/Wanderer0074348/ModelMux/src/metrics"
)

func trackerConfig() *config.RoutingConfig {
	return &config.RoutingConfig{
		PreferredProvider:  "openai",
		ErrorRateThreshold: 0.5,
		SwitchCooldown:     5 * time.Minute,
	}
}

// recordRate feeds the store until provider/model shows the given failure
// ratio out of total calls.
func recordRate(store *metrics.Store, provider, model string, failures, total int) {
	for i := 0; i < total; i++ {
		if i < failures {
			store.RecordOutcome(provider, model, false, time.Millisecond, 0, errors.New("upstream error"))
		} else {
			store.RecordOutcome(provider, model, true, time.Millisecond, 0, nil)
		}
	}
}

func TestPreferenceTracker_SwitchesToLowerErrorAlternate(t *testing.T) {
	tracker := NewPreferenceTracker(trackerConfig(), []string{"openai", "groq"})
	store := metrics.NewStore()

	recordRate(store, "openai", "gpt-4o", 6, 10) // 60% > 50% threshold
	recordRate(store, "groq", "llama-3.3-70b-versatile", 1, 10)

	preferred, switched := tracker.Evaluate(store)
	assert.True(t, switched)
	assert.Equal(t, "groq", preferred)
	assert.Equal(t, "groq", tracker.Preferred())
}

func TestPreferenceTracker_NoSecondSwitchWithinCooldown(t *testing.T) {
	tracker := NewPreferenceTracker(trackerConfig(), []string{"openai", "groq", "local"})
	store := metrics.NewStore()

	recordRate(store, "openai", "gpt-4o", 6, 10)
	recordRate(store, "groq", "llama-3.3-70b-versatile", 1, 10)

	_, switched := tracker.Evaluate(store)
	require.True(t, switched)

	// The new preference starts failing immediately, but the cooldown has
	// not elapsed.
	recordRate(store, "groq", "llama-3.3-70b-versatile", 90, 90)

	preferred, switched := tracker.Evaluate(store)
	assert.False(t, switched)
	assert.Equal(t, "groq", preferred)
}

func TestPreferenceTracker_NoSwitchBelowThreshold(t *testing.T) {
	tracker := NewPreferenceTracker(trackerConfig(), []string{"openai", "groq"})
	store := metrics.NewStore()

	recordRate(store, "openai", "gpt-4o", 3, 10) // 30% < 50%
	recordRate(store, "groq", "llama-3.3-70b-versatile", 0, 10)

	preferred, switched := tracker.Evaluate(store)
	assert.False(t, switched)
	assert.Equal(t, "openai", preferred)
}

func TestPreferenceTracker_RequiresStrictlyLowerAlternate(t *testing.T) {
	tracker := NewPreferenceTracker(trackerConfig(), []string{"openai", "groq"})
	store := metrics.NewStore()

	recordRate(store, "openai", "gpt-4o", 6, 10)
	recordRate(store, "groq", "llama-3.3-70b-versatile", 6, 10) // just as bad

	preferred, switched := tracker.Evaluate(store)
	assert.False(t, switched)
	assert.Equal(t, "openai", preferred)
}

func TestPreferenceTracker_ManualSwitch(t *testing.T) {
	tracker := NewPreferenceTracker(trackerConfig(), []string{"openai", "groq"})

	err := tracker.Switch("groq")
	require.NoError(t, err)
	assert.Equal(t, "groq", tracker.Preferred())

	err = tracker.Switch("nonexistent")
	assert.Error(t, err)
	assert.Equal(t, "groq", tracker.Preferred())
}

func TestPreferenceTracker_ManualSwitchRestartsCooldown(t *testing.T) {
	tracker := NewPreferenceTracker(trackerConfig(), []string{"openai", "groq"})
	store := metrics.NewStore()

	require.NoError(t, tracker.Switch("openai"))

	// Conditions for an automatic switch hold, but the manual switch just
	// restarted the cooldown.
	recordRate(store, "openai", "gpt-4o", 6, 10)
	recordRate(store, "groq", "llama-3.3-70b-versatile", 1, 10)

	_, switched := tracker.Evaluate(store)
	assert.False(t, switched)
}

func TestPreferenceTracker_EmptyPreferenceNeverSwitches(t *testing.T) {
	cfg := trackerConfig()
	cfg.PreferredProvider = ""
	tracker := NewPreferenceTracker(cfg, []string{"openai", "groq"})
	store := metrics.NewStore()

	recordRate(store, "openai", "gpt-4o", 9, 10)

	preferred, switched := tracker.Evaluate(store)
	assert.False(t, switched)
	assert.Empty(t, preferred)
}
