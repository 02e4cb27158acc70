package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/designstudio/pkg/ai"
	"github.com/matzehuels/designstudio/pkg/cache"
	errs "github.com/matzehuels/designstudio/pkg/errors"
	"github.com/matzehuels/designstudio/pkg/export"
	"github.com/matzehuels/designstudio/pkg/geometry"
	"github.com/matzehuels/designstudio/pkg/layout"
	"github.com/matzehuels/designstudio/pkg/observability"
	"github.com/matzehuels/designstudio/pkg/store"
	"github.com/matzehuels/designstudio/pkg/usage"
)

// =============================================================================
// Test Helpers
// =============================================================================

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func decodeSize(t *testing.T, data []byte) (int, int) {
	t.Helper()
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return cfg.Width, cfg.Height
}

var quiet = log.New(io.Discard)

// fakeAI records calls and returns canned results.
type fakeAI struct {
	mu sync.Mutex

	image      []byte
	doc        *layout.Document
	questions  []ai.Question
	enhanced   string
	enhanceErr error
	genErr     error
	editErr    error

	calls       []string
	genPrompt   string
	genRatio    geometry.AspectRatio
	editPrompt  string
	editImage   []byte
	editMIME    string
	brief       string
	constraints ai.Constraints
}

func (f *fakeAI) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeAI) GenerateImage(_ context.Context, prompt string, ratio geometry.AspectRatio) ([]byte, error) {
	f.record("generate")
	f.genPrompt, f.genRatio = prompt, ratio
	if f.genErr != nil {
		return nil, f.genErr
	}
	return f.image, nil
}

func (f *fakeAI) EditImage(_ context.Context, prompt string, img []byte, mime string) ([]byte, error) {
	f.record("edit")
	f.editPrompt, f.editImage, f.editMIME = prompt, img, mime
	if f.editErr != nil {
		return nil, f.editErr
	}
	if f.image == nil {
		return img, nil
	}
	return f.image, nil
}

func (f *fakeAI) GenerateLayoutBrief(_ context.Context, brief string, c ai.Constraints) (*layout.Document, error) {
	f.record("brief")
	f.brief, f.constraints = brief, c
	return f.doc.Clone(), nil
}

func (f *fakeAI) ClarifyBrief(context.Context, string) ([]ai.Question, error) {
	f.record("clarify")
	return f.questions, nil
}

func (f *fakeAI) RefineBrief(_ context.Context, doc *layout.Document, request string) (*layout.Document, error) {
	f.record("refine")
	// Mutate what we were given to prove the caller passed a copy.
	doc.ImagePrompt = request
	doc.Layout = doc.Layout[:0]
	return doc, nil
}

func (f *fakeAI) EnhancePrompt(_ context.Context, prompt string, _ ai.Framing) (string, error) {
	f.record("enhance")
	if f.enhanceErr != nil {
		return "", f.enhanceErr
	}
	return f.enhanced, nil
}

func (f *fakeAI) called(name string) int {
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

var poster = &layout.Document{
	ImagePrompt: "tulips on a pastel backdrop",
	Layout: []layout.Element{
		layout.NewText(layout.TextElement{
			Text: "SPRING SALE", FontSize: 8, Color: "#222222", TextAlign: layout.AlignCenter,
			Position: layout.Position{Top: 10, Left: 50},
		}),
	},
}

func newTracker(t *testing.T) *usage.Tracker {
	t.Helper()
	now := time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)
	return usage.NewTracker(store.NewMemoryStore(), usage.WithClock(func() time.Time { return now }))
}

func remaining(t *testing.T, tr *usage.Tracker, f usage.Feature) int {
	t.Helper()
	st, err := tr.Status(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return st.Remaining.Get(f)
}

type recordingHooks struct {
	mu     sync.Mutex
	stages []observability.Stage
	failed []observability.Stage
}

func (h *recordingHooks) OnStageStart(context.Context, observability.Stage) {}

func (h *recordingHooks) OnStageComplete(_ context.Context, s observability.Stage, _ time.Duration, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stages = append(h.stages, s)
	if err != nil {
		h.failed = append(h.failed, s)
	}
}

// =============================================================================
// Runner
// =============================================================================

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	if r.Cache == nil || r.Keyer == nil || r.Logger == nil || r.Exporter == nil {
		t.Fatalf("NewRunner left nil fields: %+v", r)
	}
	if _, ok := r.Cache.(*cache.NullCache); !ok {
		t.Errorf("default cache = %T, want *cache.NullCache", r.Cache)
	}
	if r.AI != nil || r.Usage != nil {
		t.Error("AI and Usage should stay unset without options")
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close error: %v", err)
	}
}

func TestOperationsWithoutAI(t *testing.T) {
	r := NewRunner(nil, nil, quiet)
	ctx := context.Background()
	if _, err := r.Generate(ctx, GenerateOptions{Prompt: "x"}); !errs.Is(err, errs.ErrCodeUnsupported) {
		t.Errorf("Generate error = %v, want UNSUPPORTED", err)
	}
	if _, err := r.Clarify(ctx, "a brief"); !errs.Is(err, errs.ErrCodeUnsupported) {
		t.Errorf("Clarify error = %v, want UNSUPPORTED", err)
	}
	if _, err := r.Export(ctx, ExportOptions{Background: pngBytes(t, 4, 4)}); err != nil {
		t.Errorf("Export should work without AI: %v", err)
	}
}

// =============================================================================
// Options
// =============================================================================

func TestExportOptionsDefaults(t *testing.T) {
	o := ExportOptions{Background: []byte{1}, Format: "jpg"}
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults error: %v", err)
	}
	if o.Format != export.FormatJPEG || o.Quality != export.DefaultJPEGQuality || o.ProductName != export.DefaultProductName {
		t.Errorf("defaults = %+v", o)
	}

	p := ExportOptions{Background: []byte{1}, Quality: 50}
	if err := p.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if p.Quality != 0 {
		t.Errorf("PNG quality = %d, want 0 so it does not split the cache", p.Quality)
	}
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name string
		opts interface{ ValidateAndSetDefaults() error }
		code errs.Code
	}{
		{"export without background", &ExportOptions{}, errs.ErrCodeInvalidInput},
		{"export bad format", &ExportOptions{Background: []byte{1}, Format: "gif"}, errs.ErrCodeInvalidFormat},
		{"export bad dpi", &ExportOptions{Background: []byte{1}, PrintDPI: 150}, errs.ErrCodeInvalidInput},
		{"generate blank prompt", &GenerateOptions{Prompt: "  "}, errs.ErrCodeInvalidInput},
		{"generate bad ratio", &GenerateOptions{Prompt: "x", Ratio: "wide"}, errs.ErrCodeInvalidRatio},
		{"edit without image", &EditOptions{Prompt: "x"}, errs.ErrCodeInvalidInput},
		{"edit without prompt", &EditOptions{Image: []byte{1}}, errs.ErrCodeInvalidInput},
		{"reformat without target", &ReformatOptions{Image: []byte{1}}, errs.ErrCodeInvalidRatio},
		{"reformat bad target", &ReformatOptions{Image: []byte{1}, Target: "0:1"}, errs.ErrCodeInvalidRatio},
		{"design blank brief", &DesignOptions{}, errs.ErrCodeInvalidInput},
		{"design bad custom size", &DesignOptions{Brief: "x", Constraints: ai.Constraints{CustomSize: &ai.CustomSize{Width: 0, Height: 5}}}, errs.ErrCodeInvalidInput},
		{"design bad dpi", &DesignOptions{Brief: "x", Constraints: ai.Constraints{PrintDPI: 72}}, errs.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.ValidateAndSetDefaults(); !errs.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestGenerateOptionsNearestRatio(t *testing.T) {
	tests := []struct {
		in, want geometry.AspectRatio
	}{
		{"", geometry.Square},
		{"9:16", geometry.Portrait},
		{"5:4", geometry.Standard},
		{"21:9", geometry.Landscape},
		{"2:3", geometry.Tall},
	}
	for _, tt := range tests {
		o := GenerateOptions{Prompt: "x", Ratio: tt.in}
		if err := o.ValidateAndSetDefaults(); err != nil {
			t.Fatalf("%q: %v", tt.in, err)
		}
		if o.Ratio != tt.want {
			t.Errorf("ratio %q -> %q, want %q", tt.in, o.Ratio, tt.want)
		}
	}
}

func TestDesignOptionsDefaults(t *testing.T) {
	o := DesignOptions{Brief: " poster ", Constraints: ai.Constraints{Target: ai.TargetPrint, UserImage: []byte{1}}}
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	c := o.Constraints
	if o.Brief != "poster" || c.PrintDPI != 300 || c.AspectRatio != geometry.Square || c.UserImageMIME != DefaultEditMIME {
		t.Errorf("defaults = %+v", o)
	}

	custom := DesignOptions{Brief: "x", Constraints: ai.Constraints{CustomSize: &ai.CustomSize{Width: 210, Height: 297, Unit: geometry.UnitMillimeter}}}
	if err := custom.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if got := custom.BackgroundRatio(); got != geometry.Tall {
		t.Errorf("A4 BackgroundRatio = %q, want 3:4", got)
	}
}

// =============================================================================
// Export
// =============================================================================

func TestExportCachesArtifacts(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, quiet)
	ctx := context.Background()
	opts := ExportOptions{
		Background: pngBytes(t, 64, 64),
		Document:   poster,
		Width:      256,
		LockAspect: true,
		Format:     export.FormatJPEG,
	}

	first, err := r.Export(ctx, opts)
	if err != nil {
		t.Fatalf("Export error: %v", err)
	}
	if first.CacheInfo.ArtifactHit {
		t.Error("first export should miss the cache")
	}
	if first.Artifact.Filename != "design-studio.jpg" || first.Artifact.Width != 256 || first.Artifact.Height != 256 {
		t.Errorf("artifact = %s %dx%d", first.Artifact.Filename, first.Artifact.Width, first.Artifact.Height)
	}
	if _, ok := first.Stats.Stages[observability.StageExport]; !ok {
		t.Error("export stage should be timed")
	}

	second, err := r.Export(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.ArtifactHit {
		t.Error("identical export should hit the cache")
	}
	if !bytes.Equal(first.Artifact.Data, second.Artifact.Data) {
		t.Error("cached artifact differs")
	}

	opts.Quality = 40
	third, err := r.Export(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.ArtifactHit {
		t.Error("a different quality should miss the cache")
	}

	opts.Refresh = true
	fourth, err := r.Export(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if fourth.CacheInfo.ArtifactHit {
		t.Error("Refresh should bypass the cache")
	}
}

func TestExportPrintUpscale(t *testing.T) {
	r := NewRunner(nil, nil, quiet)
	res, err := r.Export(context.Background(), ExportOptions{Background: pngBytes(t, 30, 20), PrintDPI: 300})
	if err != nil {
		t.Fatalf("Export error: %v", err)
	}
	if res.Artifact.Width != 60 || res.Artifact.Height != 40 {
		t.Errorf("300 DPI export = %dx%d, want 60x40", res.Artifact.Width, res.Artifact.Height)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("Warnings = %v", res.Warnings)
	}
}

func TestExportUpscaleFailureIsNonFatal(t *testing.T) {
	r := NewRunner(nil, nil, quiet)
	// 10000px wide at 4x exceeds the canvas limit.
	res, err := r.Export(context.Background(), ExportOptions{Background: pngBytes(t, 10000, 1), PrintDPI: 600})
	if err != nil {
		t.Fatalf("Export error: %v", err)
	}
	if res.Artifact.Width != 10000 || res.Artifact.Height != 1 {
		t.Errorf("export = %dx%d, want the original size", res.Artifact.Width, res.Artifact.Height)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "print optimization skipped") {
		t.Errorf("Warnings = %v", res.Warnings)
	}
}

func TestExportDoesNotCacheDegradedArtifact(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, quiet)
	ctx := context.Background()
	opts := ExportOptions{Background: pngBytes(t, 10000, 1), PrintDPI: 600}

	for i := range 2 {
		res, err := r.Export(ctx, opts)
		if err != nil {
			t.Fatalf("export %d: %v", i, err)
		}
		if res.CacheInfo.ArtifactHit {
			t.Errorf("export %d: an artifact with a skipped upscale should not be served from the cache", i)
		}
		if len(res.Warnings) != 1 {
			t.Errorf("export %d: Warnings = %v, want the upscale warning again", i, res.Warnings)
		}
	}
}

func TestExportErrorIsTyped(t *testing.T) {
	r := NewRunner(nil, nil, quiet)
	_, err := r.Export(context.Background(), ExportOptions{Background: []byte("not an image")})
	if !errs.Is(err, errs.ErrCodeExport) || !errs.Is(err, errs.ErrCodeAssetLoad) {
		t.Errorf("error = %v, want EXPORT_FAILED wrapping ASSET_LOAD", err)
	}
}

// =============================================================================
// Generate / Edit / Reformat
// =============================================================================

func TestGenerate(t *testing.T) {
	fake := &fakeAI{image: pngBytes(t, 8, 8), enhanced: "a detailed prompt"}
	tr := newTracker(t)
	r := NewRunner(nil, nil, quiet, WithAI(fake), WithUsage(tr))

	res, err := r.Generate(context.Background(), GenerateOptions{Prompt: "cat", Ratio: "5:4", Enhance: true})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if fake.genPrompt != "a detailed prompt" || res.Prompt != "a detailed prompt" {
		t.Errorf("prompt sent = %q, result prompt = %q", fake.genPrompt, res.Prompt)
	}
	if fake.genRatio != geometry.Standard {
		t.Errorf("ratio sent = %q, want 4:3", fake.genRatio)
	}
	if res.Usage == nil || res.Usage.Remaining.Generate != 2 {
		t.Errorf("Usage = %+v, want 2 generations left", res.Usage)
	}
}

func TestGenerateEnhanceFallback(t *testing.T) {
	fake := &fakeAI{image: []byte("img"), enhanceErr: errs.New(errs.ErrCodeGeneration, "down")}
	r := NewRunner(nil, nil, quiet, WithAI(fake))
	res, err := r.Generate(context.Background(), GenerateOptions{Prompt: "cat", Enhance: true})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if fake.genPrompt != "cat" {
		t.Errorf("prompt sent = %q, want the raw prompt", fake.genPrompt)
	}
	if res.Usage != nil {
		t.Error("Usage should be nil without a tracker")
	}
}

func TestGenerateFailureKeepsAllowance(t *testing.T) {
	fake := &fakeAI{genErr: errs.New(errs.ErrCodeGeneration, "safety filter")}
	tr := newTracker(t)
	r := NewRunner(nil, nil, quiet, WithAI(fake), WithUsage(tr))
	_, err := r.Generate(context.Background(), GenerateOptions{Prompt: "cat"})
	if !errs.Is(err, errs.ErrCodeGeneration) {
		t.Errorf("error = %v, want GENERATION_FAILED", err)
	}
	if n := remaining(t, tr, usage.FeatureGenerate); n != 3 {
		t.Errorf("remaining = %d, a failed generation should not count", n)
	}
}

func TestQuotaExceeded(t *testing.T) {
	fake := &fakeAI{image: []byte("img"), doc: poster}
	tr := newTracker(t)
	r := NewRunner(nil, nil, quiet, WithAI(fake), WithUsage(tr))
	ctx := context.Background()

	if _, err := r.Design(ctx, DesignOptions{Brief: "poster"}); err != nil {
		t.Fatalf("first Design error: %v", err)
	}
	before := len(fake.calls)
	_, err := r.Design(ctx, DesignOptions{Brief: "poster"})
	if !errs.Is(err, errs.ErrCodeQuotaExceeded) {
		t.Fatalf("second Design error = %v, want QUOTA_EXCEEDED", err)
	}
	if len(fake.calls) != before {
		t.Error("no collaborator should be called once the quota is spent")
	}
}

func TestEdit(t *testing.T) {
	fake := &fakeAI{image: []byte("edited")}
	tr := newTracker(t)
	r := NewRunner(nil, nil, quiet, WithAI(fake), WithUsage(tr))
	res, err := r.Edit(context.Background(), EditOptions{Prompt: "make it blue", Image: []byte("src")})
	if err != nil {
		t.Fatalf("Edit error: %v", err)
	}
	if string(res.Image) != "edited" || fake.editMIME != DefaultEditMIME {
		t.Errorf("Edit = %q, mime %q", res.Image, fake.editMIME)
	}
	if n := remaining(t, tr, usage.FeatureEdit); n != 2 {
		t.Errorf("remaining edits = %d, want 2", n)
	}

	fake.editErr = errs.New(errs.ErrCodeEdit, "no image returned")
	if _, err := r.Edit(context.Background(), EditOptions{Prompt: "x", Image: []byte("src")}); !errs.Is(err, errs.ErrCodeEdit) {
		t.Errorf("error = %v, want EDIT_FAILED", err)
	}
}

func TestReformat(t *testing.T) {
	fake := &fakeAI{}
	r := NewRunner(nil, nil, quiet, WithAI(fake))
	res, err := r.Reformat(context.Background(), ReformatOptions{Image: pngBytes(t, 40, 40), Target: geometry.Landscape})
	if err != nil {
		t.Fatalf("Reformat error: %v", err)
	}
	// The fake echoes its input, so the result is the padded canvas.
	if w, h := decodeSize(t, fake.editImage); w != 71 || h != 40 {
		t.Errorf("padded canvas = %dx%d, want 71x40", w, h)
	}
	if fake.editMIME != "image/png" || !strings.Contains(fake.editPrompt, "#ff00ff") {
		t.Errorf("edit call = %q (%s)", fake.editPrompt, fake.editMIME)
	}
	if res.Ratio != geometry.Landscape || len(res.Warnings) != 0 {
		t.Errorf("result = %+v", res)
	}
}

func TestReformatPrintAndMarkerWarning(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 20, 20))
	img.SetNRGBA(3, 3, color.NRGBA{R: 0xff, B: 0xff, A: 0xff})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}

	fake := &fakeAI{}
	r := NewRunner(nil, nil, quiet, WithAI(fake))
	res, err := r.Reformat(context.Background(), ReformatOptions{Image: buf.Bytes(), Target: geometry.Tall, PrintDPI: 300})
	if err != nil {
		t.Fatalf("Reformat error: %v", err)
	}
	if !strings.Contains(fake.editPrompt, "300 DPI") {
		t.Errorf("print prompt = %q", fake.editPrompt)
	}
	if w, h := decodeSize(t, res.Image); w != 40 || h != 54 {
		t.Errorf("upscaled = %dx%d, want 40x54", w, h)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "marker") {
		t.Errorf("Warnings = %v", res.Warnings)
	}
}

func TestReformatBadImage(t *testing.T) {
	fake := &fakeAI{}
	r := NewRunner(nil, nil, quiet, WithAI(fake))
	_, err := r.Reformat(context.Background(), ReformatOptions{Image: []byte("x"), Target: geometry.Square})
	if !errs.Is(err, errs.ErrCodeImageDecode) {
		t.Errorf("error = %v, want IMAGE_DECODE", err)
	}
	if fake.called("edit") != 0 {
		t.Error("edit should not run when padding fails")
	}
}

// =============================================================================
// Brief Workflow
// =============================================================================

func TestClarify(t *testing.T) {
	fake := &fakeAI{questions: []ai.Question{{Question: "Mood?", Options: []string{"calm", "bold"}}}}
	r := NewRunner(nil, nil, quiet, WithAI(fake))
	qs, err := r.Clarify(context.Background(), "poster")
	if err != nil || len(qs) != 1 {
		t.Fatalf("Clarify = %v, %v", qs, err)
	}
	if _, err := r.Clarify(context.Background(), " "); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("blank brief error = %v", err)
	}
}

func TestDesign(t *testing.T) {
	fake := &fakeAI{image: []byte("bg"), doc: poster}
	tr := newTracker(t)
	r := NewRunner(nil, nil, quiet, WithAI(fake), WithUsage(tr))

	res, err := r.Design(context.Background(), DesignOptions{
		Brief:   "spring poster",
		Answers: []ai.Answer{{Question: "Mood?", Choice: "calm"}},
		Constraints: ai.Constraints{
			CustomSize: &ai.CustomSize{Width: 1920, Height: 1080, Unit: geometry.UnitPixel},
			FontFamily: "Lobster",
		},
	})
	if err != nil {
		t.Fatalf("Design error: %v", err)
	}
	if fake.brief != "spring poster\n- Mood? calm" {
		t.Errorf("brief sent = %q", fake.brief)
	}
	if fake.constraints.FontFamily != "Lobster" || fake.constraints.Target != ai.TargetSocial {
		t.Errorf("constraints sent = %+v", fake.constraints)
	}
	if fake.genPrompt != poster.ImagePrompt || fake.genRatio != geometry.Landscape {
		t.Errorf("background request = %q at %q", fake.genPrompt, fake.genRatio)
	}
	if string(res.Background) != "bg" || len(res.Document.Layout) != 1 {
		t.Errorf("result = %+v", res)
	}
	if n := remaining(t, tr, usage.FeatureDesigner); n != 0 {
		t.Errorf("remaining designs = %d, want 0", n)
	}
}

func TestDesignSkipBackground(t *testing.T) {
	fake := &fakeAI{doc: poster}
	r := NewRunner(nil, nil, quiet, WithAI(fake))
	res, err := r.Design(context.Background(), DesignOptions{Brief: "x", SkipBackground: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.Background != nil || fake.called("generate") != 0 {
		t.Error("SkipBackground should not generate an image")
	}
}

func TestDesignWithoutImagePrompt(t *testing.T) {
	fake := &fakeAI{doc: &layout.Document{}}
	r := NewRunner(nil, nil, quiet, WithAI(fake))
	if _, err := r.Design(context.Background(), DesignOptions{Brief: "x"}); !errs.Is(err, errs.ErrCodeBrief) {
		t.Errorf("error = %v, want BRIEF_FAILED", err)
	}
}

func TestRefineDoesNotMutate(t *testing.T) {
	fake := &fakeAI{}
	r := NewRunner(nil, nil, quiet, WithAI(fake))
	doc := poster.Clone()

	res, err := r.Refine(context.Background(), doc, "make it autumn")
	if err != nil {
		t.Fatalf("Refine error: %v", err)
	}
	if res.Document.ImagePrompt != "make it autumn" {
		t.Errorf("refined prompt = %q", res.Document.ImagePrompt)
	}
	if doc.ImagePrompt != poster.ImagePrompt || len(doc.Layout) != 1 {
		t.Error("Refine mutated its input")
	}

	if _, err := r.Refine(context.Background(), nil, "x"); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("nil doc error = %v", err)
	}
	if _, err := r.Refine(context.Background(), doc, ""); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("blank request error = %v", err)
	}
}

// =============================================================================
// Hooks
// =============================================================================

func TestStageHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	t.Cleanup(observability.Reset)

	fake := &fakeAI{image: []byte("bg"), doc: poster, enhanceErr: errs.New(errs.ErrCodeGeneration, "x")}
	r := NewRunner(nil, nil, quiet, WithAI(fake))
	if _, err := r.Generate(context.Background(), GenerateOptions{Prompt: "cat", Enhance: true}); err != nil {
		t.Fatal(err)
	}

	want := []observability.Stage{observability.StageEnhance, observability.StageGenerate}
	if len(hooks.stages) != len(want) {
		t.Fatalf("stages = %v, want %v", hooks.stages, want)
	}
	for i := range want {
		if hooks.stages[i] != want[i] {
			t.Errorf("stage %d = %s, want %s", i, hooks.stages[i], want[i])
		}
	}
	if len(hooks.failed) != 1 || hooks.failed[0] != observability.StageEnhance {
		t.Errorf("failed stages = %v", hooks.failed)
	}
}
