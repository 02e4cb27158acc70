// Package cache stores rendered artifacts between runs.
//
// Exports are deterministic: the same background, foreground, layout and
// export options always produce the same bytes. The pipeline runner therefore
// keys finished artifacts by a hash of their inputs and skips the compositor
// entirely on a hit.
//
// Three backends implement [Cache]:
//
//   - [NullCache] never stores anything (caching disabled)
//   - [FileCache] keeps entries as JSON files under a directory, for the CLI
//   - [RedisCache] keeps entries in Redis, for shared or long-lived setups
//
// Keys are produced by a [Keyer] so that the key layout lives in one place.
// [ScopedKeyer] prefixes every key, which isolates projects or users that
// share one backend.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key-value cache with optional expiry.
type Cache interface {
	// Get returns the data stored under key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A non-positive ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default time-to-live values.
const (
	// TTLArtifact is how long encoded exports are kept.
	TTLArtifact = 7 * 24 * time.Hour

	// TTLUpscale is how long print-optimized upscales are kept.
	TTLUpscale = 24 * time.Hour
)

// Keyer builds cache keys.
type Keyer interface {
	// ArtifactKey is the key of an encoded export.
	ArtifactKey(inputHash string, opts ArtifactKeyOpts) string

	// UpscaleKey is the key of an upscaled image.
	UpscaleKey(imageHash string, factor int) string
}

// ArtifactKeyOpts are the export options that change the encoded output.
type ArtifactKeyOpts struct {
	Format      string `json:"format"`
	Quality     int    `json:"quality,omitempty"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	LockAspect  bool   `json:"lock_aspect,omitempty"`
	ProductName string `json:"product_name,omitempty"`
	PrintDPI    int    `json:"print_dpi,omitempty"`
}

// DefaultKeyer produces unprefixed keys of the form "kind:sha256".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ArtifactKey hashes the input hash together with the options.
func (DefaultKeyer) ArtifactKey(inputHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", inputHash, opts)
}

// UpscaleKey hashes the image hash together with the factor.
func (DefaultKeyer) UpscaleKey(imageHash string, factor int) string {
	return hashKey("upscale", imageHash, factor)
}
