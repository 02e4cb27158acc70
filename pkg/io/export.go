package io

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/designstudio/pkg/layout"
)

// WriteDocument encodes a layout document as indented JSON and writes it to w.
// The output can be re-imported with [ReadDocument].
func WriteDocument(doc *layout.Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportDocument writes a layout document to a JSON file at path.
func ExportDocument(doc *layout.Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteDocument(doc, f)
}

// EncodeDataURL wraps raster bytes in a base64 data URL.
func EncodeDataURL(data []byte, mimeType string) string {
	if mimeType == "" {
		mimeType = DetectMIMEType(data)
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
