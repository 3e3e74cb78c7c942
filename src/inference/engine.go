package inference

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"www.github.com/Wanderer0074348/ModelMux/src/config"
	"www.github.com/Wanderer0074348/ModelMux/src/metrics"
	"www.github.com/Wanderer0074348/ModelMux/src/models"
	"www.github.com/Wanderer0074348/ModelMux/src/registry"
	"www.github.com/Wanderer0074348/ModelMux/src/router"
)

var validStrategies = map[models.Strategy]bool{
	models.StrategySingle:      true,
	models.StrategyFallback:    true,
	models.StrategyEnsemble:    true,
	models.StrategyLoadBalance: true,
}

// Engine validates routing requests, executes them under the requested
// strategy against the registered provider clients, and folds every resolved
// call into the metrics store. It implements models.RequestRouter.
type Engine struct {
	cfg      *config.RoutingConfig
	registry *registry.ModelRegistry
	store    *metrics.Store
	selector *router.Selector
	tracker  *router.PreferenceTracker
	clients  map[string]models.ProviderClient

	cache               models.CacheStore
	semanticCache       models.SemanticCacheStore
	similarityThreshold float64
}

// NewEngine wires the routing core together. Every capability advertised by
// a registered model must be backed by a provider client; a gap is a startup
// error, never a runtime one.
func NewEngine(cfg *config.RoutingConfig, reg *registry.ModelRegistry, clients map[string]models.ProviderClient) (*Engine, error) {
	if len(clients) == 0 {
		return nil, fmt.Errorf("no provider clients registered")
	}
	for _, desc := range reg.All() {
		if _, ok := clients[desc.Provider]; !ok {
			return nil, fmt.Errorf("model %s has no provider client", desc.Key())
		}
	}

	return &Engine{
		cfg:      cfg,
		registry: reg,
		store:    metrics.NewStore(),
		selector: router.NewSelector(cfg),
		tracker:  router.NewPreferenceTracker(cfg, reg.Providers()),
		clients:  clients,
	}, nil
}

// SetCache enables exact-match response caching.
func (e *Engine) SetCache(cache models.CacheStore) {
	e.cache = cache
}

// SetSemanticCache enables similarity-based response caching for text tasks.
func (e *Engine) SetSemanticCache(sc models.SemanticCacheStore, threshold float64) {
	e.semanticCache = sc
	e.similarityThreshold = threshold
}

// Route executes one routing request and returns either a complete response
// or a typed error.
func (e *Engine) Route(ctx context.Context, req *models.RoutingRequest) (*models.RoutingResponse, error) {
	if err := e.validate(req); err != nil {
		return nil, err
	}

	candidates := e.registry.Lookup(req.TaskType)
	if len(candidates) == 0 {
		return nil, models.NewValidationError("task_type",
			fmt.Sprintf("no registered model supports capability %q", req.TaskType))
	}

	candidates, err := filterByPreferences(candidates, req.ModelPreferences)
	if err != nil {
		return nil, err
	}

	start := time.Now()

	if cached := e.cacheLookup(ctx, req); cached != nil {
		cached.CacheHit = true
		cached.Latency = time.Since(start)
		return cached, nil
	}

	// A per-request preference always wins over the adaptive default.
	preferred := req.PreferredProvider
	if preferred == "" {
		preferred = e.tracker.Preferred()
	}

	var resp *models.RoutingResponse
	switch req.Strategy {
	case models.StrategySingle:
		resp, err = e.executeSingle(ctx, req, candidates, preferred)
	case models.StrategyFallback:
		resp, err = e.executeFallback(ctx, req, candidates, preferred)
	case models.StrategyEnsemble:
		resp, err = e.executeEnsemble(ctx, req, candidates, preferred)
	case models.StrategyLoadBalance:
		resp, err = e.executeLoadBalance(ctx, req, candidates)
	}
	if err != nil {
		return nil, err
	}

	resp.RequestID = uuid.New().String()
	resp.Strategy = req.Strategy
	resp.Timestamp = time.Now()

	e.cacheStore(ctx, req, resp)

	return resp, nil
}

// MetricsSnapshot returns copies of every model's live counters.
func (e *Engine) MetricsSnapshot() map[string]*models.MetricsSnapshot {
	return e.store.SnapshotAll()
}

// AvailableModels returns every registered model descriptor.
func (e *Engine) AvailableModels() []*models.ModelDescriptor {
	return e.registry.All()
}

// SwitchPreferredProvider overrides the default preferred provider manually.
func (e *Engine) SwitchPreferredProvider(provider string) error {
	return e.tracker.Switch(provider)
}

// ProviderHealth pings every registered provider client.
func (e *Engine) ProviderHealth(ctx context.Context) map[string]bool {
	out := make(map[string]bool, len(e.clients))
	for name, client := range e.clients {
		out[name] = client.HealthCheck(ctx)
	}
	return out
}

func (e *Engine) validate(req *models.RoutingRequest) error {
	if strings.TrimSpace(req.Payload) == "" {
		return models.NewValidationError("payload", "payload must not be empty")
	}

	switch req.TaskType {
	case models.TaskCompletion, models.TaskChat, models.TaskEmbedding,
		models.TaskAnalysis, models.TaskCreative:
	default:
		return models.NewValidationError("task_type", fmt.Sprintf("unknown capability %q", req.TaskType))
	}

	if req.Strategy == "" {
		req.Strategy = models.Strategy(e.cfg.DefaultStrategy)
	}
	if !validStrategies[req.Strategy] {
		return models.NewValidationError("strategy", fmt.Sprintf("unknown strategy %q", req.Strategy))
	}

	if req.Timeout <= 0 && req.TimeoutMs > 0 {
		req.Timeout = time.Duration(req.TimeoutMs) * time.Millisecond
	}
	if req.Timeout <= 0 {
		req.Timeout = e.cfg.DefaultTimeout
	}

	return nil
}

// filterByPreferences narrows candidates to an explicit model-preference
// list. Entries match either a bare model id or a provider/model key.
func filterByPreferences(candidates []*models.ModelDescriptor, prefs []string) ([]*models.ModelDescriptor, error) {
	if len(prefs) == 0 {
		return candidates, nil
	}

	wanted := make(map[string]bool, len(prefs))
	for _, p := range prefs {
		wanted[p] = true
	}

	filtered := make([]*models.ModelDescriptor, 0, len(candidates))
	for _, c := range candidates {
		if wanted[c.Model] || wanted[c.Key()] {
			filtered = append(filtered, c)
		}
	}
	if len(filtered) == 0 {
		return nil, models.NewValidationError("model_preferences",
			"no capable model matches the preference list")
	}
	return filtered, nil
}

// executeSingle runs the top-ranked candidate once. Failures propagate
// unmodified; there is no retry.
func (e *Engine) executeSingle(ctx context.Context, req *models.RoutingRequest, candidates []*models.ModelDescriptor, preferred string) (*models.RoutingResponse, error) {
	ranked := e.selector.Rank(candidates, e.store, preferred)
	top := ranked[0].Descriptor

	result, latency, err := e.callCandidate(ctx, top, req)
	if err != nil {
		return nil, err
	}
	return singleResponse(top, result, latency), nil
}

// executeFallback walks the ranked chain sequentially until one candidate
// succeeds. Models of the preferred provider move to the front of the chain.
// The adaptive tracker re-evaluates the default preference after every run.
func (e *Engine) executeFallback(ctx context.Context, req *models.RoutingRequest, candidates []*models.ModelDescriptor, preferred string) (*models.RoutingResponse, error) {
	defer e.tracker.Evaluate(e.store)

	ranked := e.selector.Rank(candidates, e.store, preferred)
	chain := make([]*models.ModelDescriptor, 0, len(ranked))
	if preferred != "" {
		for _, r := range ranked {
			if r.Descriptor.Provider == preferred {
				chain = append(chain, r.Descriptor)
			}
		}
	}
	for _, r := range ranked {
		if r.Descriptor.Provider != preferred {
			chain = append(chain, r.Descriptor)
		}
	}

	var attempts []*models.ProviderError
	var failures []models.AttemptFailure

	for _, desc := range chain {
		result, latency, err := e.callCandidate(ctx, desc, req)
		if err != nil {
			if errors.Is(err, context.Canceled) && ctx.Err() != nil {
				return nil, err
			}
			var pe *models.ProviderError
			errors.As(err, &pe)
			attempts = append(attempts, pe)
			failures = append(failures, models.AttemptFailure{
				Provider: desc.Provider,
				Model:    desc.Model,
				Error:    pe.Error(),
			})
			continue
		}

		resp := singleResponse(desc, result, latency)
		resp.Fallbacks = failures
		return resp, nil
	}

	return nil, &models.FallbackExhaustedError{Attempts: attempts}
}

type memberOutcome struct {
	idx     int
	desc    *models.ModelDescriptor
	result  *models.ProviderResult
	latency time.Duration
	err     error
}

// executeEnsemble fans out to the top-N ranked candidates concurrently and
// joins on every member resolving, so one failure never aborts siblings.
func (e *Engine) executeEnsemble(ctx context.Context, req *models.RoutingRequest, candidates []*models.ModelDescriptor, preferred string) (*models.RoutingResponse, error) {
	ranked := e.selector.Rank(candidates, e.store, preferred)

	n := e.cfg.EnsembleSize
	if n <= 0 {
		n = 3
	}
	if len(ranked) < n {
		n = len(ranked)
	}
	members := ranked[:n]

	results := make(chan memberOutcome, len(members))
	var wg sync.WaitGroup

	for i, m := range members {
		wg.Add(1)
		go func(idx int, desc *models.ModelDescriptor) {
			defer wg.Done()

			result, latency, err := e.callCandidate(ctx, desc, req)
			results <- memberOutcome{
				idx:     idx,
				desc:    desc,
				result:  result,
				latency: latency,
				err:     err,
			}
		}(i, m.Descriptor)
	}

	// Wait for all members to resolve
	go func() {
		wg.Wait()
		close(results)
	}()

	outcomes := make([]memberOutcome, len(members))
	for out := range results {
		outcomes[out.idx] = out
	}

	var memberErrors []*models.ProviderError
	var successes []models.MemberResult
	var totalCost float64
	var maxLatency time.Duration

	for _, out := range outcomes {
		if out.err != nil {
			if errors.Is(out.err, context.Canceled) && ctx.Err() != nil {
				return nil, out.err
			}
			var pe *models.ProviderError
			errors.As(out.err, &pe)
			memberErrors = append(memberErrors, pe)
			totalCost += pe.PartialCost
			continue
		}

		successes = append(successes, models.MemberResult{
			Provider:   out.desc.Provider,
			Model:      out.desc.Model,
			Content:    out.result.Content,
			Embedding:  out.result.Embedding,
			Confidence: out.result.Confidence,
			Latency:    out.latency,
			Cost:       out.result.Cost,
		})
		totalCost += out.result.Cost
		if out.latency > maxLatency {
			maxLatency = out.latency
		}
	}

	if len(successes) == 0 {
		return nil, &models.EnsembleExhaustedError{Members: memberErrors}
	}

	merged, err := combineResults(req.TaskType, successes)
	if err != nil {
		return nil, err
	}

	return &models.RoutingResponse{
		Content:         merged.content,
		Embedding:       merged.embedding,
		Provider:        "ensemble",
		Model:           "ensemble-" + uuid.New().String(),
		Confidence:      merged.confidence,
		Latency:         maxLatency,
		Cost:            totalCost,
		EnsembleResults: successes,
	}, nil
}

// executeLoadBalance picks the capability-matching candidate with the lowest
// live request count and runs it once. No fallback on failure: the point is
// even distribution, not availability.
func (e *Engine) executeLoadBalance(ctx context.Context, req *models.RoutingRequest, candidates []*models.ModelDescriptor) (*models.RoutingResponse, error) {
	chosen := candidates[0]
	lowest := e.store.RequestCount(chosen.Provider, chosen.Model)
	for _, desc := range candidates[1:] {
		if count := e.store.RequestCount(desc.Provider, desc.Model); count < lowest {
			lowest = count
			chosen = desc
		}
	}

	result, latency, err := e.callCandidate(ctx, chosen, req)
	if err != nil {
		return nil, err
	}
	return singleResponse(chosen, result, latency), nil
}

// callCandidate runs one provider call under the request timeout and records
// the resolved outcome. Parent cancellation leaves no metrics trace: the
// attempt never resolved.
func (e *Engine) callCandidate(ctx context.Context, desc *models.ModelDescriptor, req *models.RoutingRequest) (*models.ProviderResult, time.Duration, error) {
	client := e.clients[desc.Provider]

	callCtx, cancel := context.WithTimeout(ctx, req.Timeout)
	defer cancel()

	start := time.Now()
	result, err := client.Execute(callCtx, req.TaskType, req.Payload, desc.Model)
	latency := time.Since(start)

	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return nil, latency, err
		}

		var pe *models.ProviderError
		if !errors.As(err, &pe) {
			if errors.Is(err, context.DeadlineExceeded) {
				pe = models.NewTimeoutError(desc.Provider, desc.Model, req.Timeout)
			} else {
				pe = models.NewProviderError(desc.Provider, desc.Model, "call failed", err)
			}
		}

		e.store.RecordOutcome(desc.Provider, desc.Model, false, latency, pe.PartialCost, pe)
		return nil, latency, pe
	}

	e.store.RecordOutcome(desc.Provider, desc.Model, true, latency, result.Cost, nil)
	return result, latency, nil
}

func (e *Engine) cacheLookup(ctx context.Context, req *models.RoutingRequest) *models.RoutingResponse {
	if e.semanticCache != nil && req.TaskType != models.TaskEmbedding {
		if hit, err := e.semanticCache.GetSimilar(ctx, req.Payload, e.similarityThreshold); err == nil && hit != nil {
			return hit.Response
		}
	}
	if e.cache == nil {
		return nil
	}
	cached, err := e.cache.Get(ctx, cacheKey(req))
	if err != nil || cached == nil {
		return nil
	}
	return cached
}

func (e *Engine) cacheStore(ctx context.Context, req *models.RoutingRequest, resp *models.RoutingResponse) {
	key := cacheKey(req)
	if e.semanticCache != nil && req.TaskType != models.TaskEmbedding {
		_ = e.semanticCache.SetWithEmbedding(ctx, key, req.Payload, resp)
		return
	}
	if e.cache != nil {
		_ = e.cache.Set(ctx, key, resp)
	}
}

func cacheKey(req *models.RoutingRequest) string {
	data := strings.Join([]string{
		string(req.TaskType),
		string(req.Strategy),
		req.Payload,
		req.PreferredProvider,
		strings.Join(req.ModelPreferences, ","),
	}, "|")
	hash := md5.Sum([]byte(data))
	return "route:" + hex.EncodeToString(hash[:])
}

func singleResponse(desc *models.ModelDescriptor, result *models.ProviderResult, latency time.Duration) *models.RoutingResponse {
	confidence := result.Confidence
	if confidence == 0 {
		confidence = defaultConfidence
	}
	return &models.RoutingResponse{
		Content:    result.Content,
		Embedding:  result.Embedding,
		Provider:   desc.Provider,
		Model:      desc.Model,
		Confidence: confidence,
		Latency:    latency,
		Cost:       result.Cost,
	}
}
