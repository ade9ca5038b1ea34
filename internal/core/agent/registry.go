package agent

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/vaanidesk/vaanidesk-be/internal/core/kb"
	"github.com/vaanidesk/vaanidesk-be/internal/core/llm"
	"github.com/vaanidesk/vaanidesk-be/internal/modules/leads/models"
)

// ErrTenantUnavailable means the tenant is unknown or its grounding source
// could not be loaded. Construction failures are surfaced, never cached.
var ErrTenantUnavailable = errors.New("tenant unavailable")

// BusinessLoader resolves a tenant's configuration.
type BusinessLoader interface {
	GetByID(id string) (*models.Business, error)
}

// SourceLoader resolves a tenant's grounding material.
type SourceLoader interface {
	GetSource(businessID string) (*kb.Source, error)
}

// Registry owns one Agent per tenant. It is an injected object (not ambient
// global state) so tests can spin up isolated registries. Construction and
// invalidation are serialized per tenant key; reads of a built Agent only pay
// the per-key mutex.
type Registry struct {
	businesses BusinessLoader
	sources    SourceLoader
	provider   llm.Provider
	models     []string

	mu      sync.Mutex
	entries map[string]*registryEntry
}

type registryEntry struct {
	mu    sync.Mutex
	agent *Agent
}

func NewRegistry(businesses BusinessLoader, sources SourceLoader, provider llm.Provider, modelChain []string) *Registry {
	return &Registry{
		businesses: businesses,
		sources:    sources,
		provider:   provider,
		models:     modelChain,
		entries:    make(map[string]*registryEntry),
	}
}

func (r *Registry) entry(tenantID string) *registryEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[tenantID]
	if !ok {
		e = &registryEntry{}
		r.entries[tenantID] = e
	}
	return e
}

// Get returns the cached Agent for a tenant, constructing it on first
// access. A concurrent Invalidate can never expose a half-built Agent: both
// paths hold the same per-tenant lock.
func (r *Registry) Get(tenantID string) (*Agent, error) {
	e := r.entry(tenantID)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.agent != nil {
		return e.agent, nil
	}

	business, err := r.businesses.GetByID(tenantID)
	if err != nil {
		return nil, fmt.Errorf("business %q: %v: %w", tenantID, err, ErrTenantUnavailable)
	}

	source, err := r.sources.GetSource(tenantID)
	if err != nil {
		return nil, fmt.Errorf("grounding source for %q: %v: %w", tenantID, err, ErrTenantUnavailable)
	}

	e.agent = &Agent{
		Business: business,
		LLM:      llm.NewClient(r.provider, r.models),
		source:   source,
	}

	log.Info().Str("business_id", tenantID).Bool("has_source", e.agent.HasSource()).Msg("🤖 Agent constructed")
	return e.agent, nil
}

// Invalidate drops the cached Agent so the next Get rebuilds it from fresh
// source documents. Called by the ingestion service after any change.
func (r *Registry) Invalidate(tenantID string) {
	r.mu.Lock()
	e, ok := r.entries[tenantID]
	r.mu.Unlock()
	if !ok {
		return
	}

	e.mu.Lock()
	e.agent = nil
	e.mu.Unlock()

	log.Info().Str("business_id", tenantID).Msg("🔄 Agent invalidated")
}

// Evict permanently removes a tenant's Agent (tenant teardown). In-flight
// requests holding the old Agent finish against it.
func (r *Registry) Evict(tenantID string) {
	r.mu.Lock()
	delete(r.entries, tenantID)
	r.mu.Unlock()

	log.Info().Str("business_id", tenantID).Msg("🗑️ Agent evicted")
}
