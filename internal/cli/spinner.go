package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/designstudio/pkg/observability"
)

// Spinner provides a progress indicator with context cancellation support.
// The message can be changed while it spins.
type Spinner struct {
	w       io.Writer
	message string
	width   int // widest message shown, for clearing
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
	frames  []string
	mu      sync.Mutex
}

// newSpinner creates a new spinner with the given message.
func newSpinner(message string) *Spinner {
	return newSpinnerWithContext(context.Background(), message)
}

// newSpinnerWithContext creates a spinner that will stop when the context is cancelled.
func newSpinnerWithContext(ctx context.Context, message string) *Spinner {
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		w:       os.Stderr,
		message: message,
		width:   len(message),
		ctx:     spinnerCtx,
		cancel:  cancel,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		frames:  []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
	}
}

// Start begins the spinner animation.
func (s *Spinner) Start() {
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-s.done:
				return
			case <-ticker.C:
				s.mu.Lock()
				frame := s.frames[i%len(s.frames)]
				fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.padded()))
				s.mu.Unlock()
			}
		}
	}()
}

// SetMessage replaces the text next to the spinner.
func (s *Spinner) SetMessage(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = msg
	if len(msg) > s.width {
		s.width = len(msg)
	}
}

// padded returns the message padded to the widest one shown so a shorter
// message overwrites a longer one. Callers hold s.mu.
func (s *Spinner) padded() string {
	return s.message + strings.Repeat(" ", s.width-len(s.message))
}

// Stop stops the spinner and clears the line. Stop is idempotent.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		s.cancel()
		close(s.done)
		<-s.stopped
		s.clearLine()
	})
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width+4))
}

// StopWithSuccess stops the spinner and shows a success message.
func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	printSuccess("%s", message)
}

// StopWithError stops the spinner and shows an error message.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled returns true if the spinner was stopped due to context cancellation.
func (s *Spinner) Cancelled() bool {
	return s.ctx.Err() != nil
}

// =============================================================================
// Stage Messages
// =============================================================================

var stageMessages = map[observability.Stage]string{
	observability.StageClarify:  "Reading the brief...",
	observability.StageBrief:    "Designing the layout...",
	observability.StageRefine:   "Refining the layout...",
	observability.StageEnhance:  "Enhancing the prompt...",
	observability.StageGenerate: "Generating image...",
	observability.StageOutpaint: "Padding canvas...",
	observability.StageEdit:     "Editing image...",
	observability.StageUpscale:  "Upscaling for print...",
	observability.StageCompose:  "Composing layout...",
	observability.StageExport:   "Exporting...",
}

// spinnerHooks shows the running pipeline stage on a spinner.
type spinnerHooks struct {
	observability.NoopPipelineHooks
	s *Spinner
}

func (h spinnerHooks) OnStageStart(_ context.Context, stage observability.Stage) {
	if msg, ok := stageMessages[stage]; ok {
		h.s.SetMessage(msg)
	}
}

// spin runs fn behind a spinner that follows the pipeline stages. At debug
// level the spinner stays off so it does not garble log lines.
func (c *CLI) spin(ctx context.Context, msg, failMsg string, fn func() error) error {
	if c.Logger.GetLevel() <= log.DebugLevel {
		return fn()
	}
	s := newSpinnerWithContext(ctx, msg)
	observability.SetPipelineHooks(spinnerHooks{s: s})
	defer observability.SetPipelineHooks(observability.NoopPipelineHooks{})

	s.Start()
	if err := fn(); err != nil {
		s.StopWithError(failMsg)
		return err
	}
	s.Stop()
	return nil
}
