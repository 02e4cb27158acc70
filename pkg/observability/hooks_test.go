package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnStageStart(ctx, StageCompose)
	p.OnStageComplete(ctx, StageCompose, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "artifact")
	c.OnCacheMiss(ctx, "upscale")
	c.OnCacheSet(ctx, "artifact", 1024)

	a := NoopAIHooks{}
	a.OnRequest(ctx, "generate", "imagen-4.0-generate-001")
	a.OnResponse(ctx, "generate", "imagen-4.0-generate-001", time.Second, nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := AI().(NoopAIHooks); !ok {
		t.Error("AI() should return NoopAIHooks by default")
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customAI := &testAIHooks{}
	SetAIHooks(customAI)
	if AI() != customAI {
		t.Error("SetAIHooks should set custom hooks")
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)
	SetPipelineHooks(nil)

	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}

	Reset()
}

func TestLogHooks(t *testing.T) {
	defer Reset()
	var buf bytes.Buffer
	logger := log.New(&buf)
	logger.SetLevel(log.DebugLevel)

	NewLogHooks(logger).Register()
	ctx := context.Background()
	Pipeline().OnStageComplete(ctx, StageExport, 12*time.Millisecond, nil)
	Pipeline().OnStageComplete(ctx, StageEdit, time.Second, errors.New("blocked"))
	Cache().OnCacheHit(ctx, "artifact")
	AI().OnRequest(ctx, "edit", "gemini-2.5-flash-image")

	out := buf.String()
	for _, want := range []string{"stage complete", "stage=export", "stage failed", "blocked", "cache hit", "model request"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

// Test implementations
type testPipelineHooks struct{ NoopPipelineHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testAIHooks struct{ NoopAIHooks }
