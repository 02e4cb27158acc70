// Package pkg provides the libraries behind the studio design tool.
//
// # Overview
//
// Studio turns a written brief into a finished social or print graphic: a
// generated background, text and image slots laid out in percentages, and an
// export at any resolution. The pkg directory is organized into four areas:
//
//  1. Core imaging: [geometry], [layout], [fonts], [compose], [outpaint],
//     [upscale] and [export]
//  2. Generative collaborators: [ai] and its [gemini] adapter
//  3. Persistence: [store], [cache], [templates] and [usage]
//  4. Orchestration: [pipeline], with [config] and [observability]
//
// # Architecture
//
// The typical data flow of a design:
//
//	Brief + answers to clarifying questions
//	         ↓
//	    [ai] brief (layout document + image prompt)
//	         ↓
//	    [ai] image generation (background)
//	         ↓
//	    [compose] (text and image slots at export size)
//	         ↓
//	    [export] PNG/JPEG
//
// Reformatting an existing image runs [outpaint] (magenta padding to the
// target ratio) followed by an [ai] edit call, and optionally [upscale] for
// print.
//
// # Errors
//
// Every package reports failures as [errors.Error] values carrying a code,
// so callers can branch on the kind of failure while keeping the cause:
//
//	if errors.Is(err, errors.ErrCodeQuotaExceeded) {
//	    // ask the user to upgrade
//	}
//
// [geometry]: https://pkg.go.dev/github.com/matzehuels/designstudio/pkg/geometry
// [layout]: https://pkg.go.dev/github.com/matzehuels/designstudio/pkg/layout
// [fonts]: https://pkg.go.dev/github.com/matzehuels/designstudio/pkg/fonts
// [compose]: https://pkg.go.dev/github.com/matzehuels/designstudio/pkg/compose
// [outpaint]: https://pkg.go.dev/github.com/matzehuels/designstudio/pkg/outpaint
// [upscale]: https://pkg.go.dev/github.com/matzehuels/designstudio/pkg/upscale
// [export]: https://pkg.go.dev/github.com/matzehuels/designstudio/pkg/export
// [ai]: https://pkg.go.dev/github.com/matzehuels/designstudio/pkg/ai
// [gemini]: https://pkg.go.dev/github.com/matzehuels/designstudio/pkg/ai/gemini
// [store]: https://pkg.go.dev/github.com/matzehuels/designstudio/pkg/store
// [cache]: https://pkg.go.dev/github.com/matzehuels/designstudio/pkg/cache
// [templates]: https://pkg.go.dev/github.com/matzehuels/designstudio/pkg/templates
// [usage]: https://pkg.go.dev/github.com/matzehuels/designstudio/pkg/usage
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/designstudio/pkg/pipeline
// [config]: https://pkg.go.dev/github.com/matzehuels/designstudio/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/designstudio/pkg/observability
// [errors.Error]: https://pkg.go.dev/github.com/matzehuels/designstudio/pkg/errors#Error
package pkg
