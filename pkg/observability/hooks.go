// Package observability provides hooks for metrics, tracing and logging.
//
// Instrumentation is optional and backend-agnostic. Consumers register hooks
// at startup and receive events about pipeline stages, cache operations and
// calls to the generative API.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, which keeps library
// packages free of any particular metrics or tracing framework.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(&myPipelineHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnStageStart(ctx, observability.StageCompose)
//	// ... compose ...
//	observability.Pipeline().OnStageComplete(ctx, observability.StageCompose, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// Stage names a pipeline step.
type Stage string

// Pipeline stages, in the order a full design runs them.
const (
	StageClarify  Stage = "clarify"
	StageBrief    Stage = "brief"
	StageRefine   Stage = "refine"
	StageEnhance  Stage = "enhance"
	StageGenerate Stage = "generate"
	StageOutpaint Stage = "outpaint"
	StageEdit     Stage = "edit"
	StageUpscale  Stage = "upscale"
	StageCompose  Stage = "compose"
	StageExport   Stage = "export"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the studio pipeline.
type PipelineHooks interface {
	OnStageStart(ctx context.Context, stage Stage)
	OnStageComplete(ctx context.Context, stage Stage, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// AI Hooks
// =============================================================================

// AIHooks receives events from calls to the generative API.
type AIHooks interface {
	// OnRequest records an outgoing model call.
	OnRequest(ctx context.Context, operation, model string)

	// OnResponse records a completed call. err is nil on success.
	OnResponse(ctx context.Context, operation, model string, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnStageStart(context.Context, Stage)                          {}
func (NoopPipelineHooks) OnStageComplete(context.Context, Stage, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopAIHooks is a no-op implementation of AIHooks.
type NoopAIHooks struct{}

func (NoopAIHooks) OnRequest(context.Context, string, string)                        {}
func (NoopAIHooks) OnResponse(context.Context, string, string, time.Duration, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	aiHooks       AIHooks       = NoopAIHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any pipeline operations.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetAIHooks registers custom AI hooks.
func SetAIHooks(h AIHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		aiHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// AI returns the registered AI hooks.
func AI() AIHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return aiHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
	aiHooks = NoopAIHooks{}
}
