package io

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	errs "github.com/matzehuels/designstudio/pkg/errors"
	"github.com/matzehuels/designstudio/pkg/layout"
)

// ReadDocument decodes a JSON layout document from r and validates it.
// ReadDocument does not close r.
func ReadDocument(r io.Reader) (*layout.Document, error) {
	var doc layout.Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidLayout, err, "decode layout document")
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ImportDocument reads a JSON layout document from the file at path.
func ImportDocument(path string) (*layout.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadDocument(f)
}

// LoadAsset returns raster bytes from a data URL or a file path.
// Decoding into an image is left to the caller.
func LoadAsset(src string) ([]byte, error) {
	if strings.HasPrefix(src, "data:") {
		return DecodeDataURL(src)
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeAssetLoad, err, "read %s", src)
	}
	return data, nil
}

// DecodeDataURL extracts the payload of a base64 data URL.
func DecodeDataURL(u string) ([]byte, error) {
	header, payload, ok := strings.Cut(u, ",")
	if !ok || !strings.HasPrefix(header, "data:") {
		return nil, errs.New(errs.ErrCodeAssetLoad, "malformed data URL")
	}
	if !strings.HasSuffix(header, ";base64") {
		return nil, errs.New(errs.ErrCodeAssetLoad, "data URL is not base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeAssetLoad, err, "decode data URL")
	}
	return data, nil
}

// DetectMIMEType sniffs the content type of raster bytes.
func DetectMIMEType(data []byte) string {
	return http.DetectContentType(data)
}
