// Package io reads and writes layout documents and raster assets.
//
// # Documents
//
// Use [ImportDocument] to read a layout document from a file path, or
// [ReadDocument] to read from any io.Reader. Both validate the document after
// decoding, so a document that imports cleanly can be handed straight to the
// compositor:
//
//	doc, err := io.ImportDocument("poster.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// [ExportDocument] and [WriteDocument] produce indented JSON that round-trips
// through the import functions.
//
// # Assets
//
// [LoadAsset] reads raster bytes from a file path or a base64 data URL
// ("data:image/png;base64,..."), the form in which remote collaborators and
// browsers usually pass images around. [DetectMIMEType] sniffs the content
// type of raster bytes.
package io
