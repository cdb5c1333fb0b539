// Package proof stores payment receipts uploaded at checkout.
//
// Images are sniffed and size-checked by NewImage, then written to an
// S3-compatible bucket under a key derived from their SHA-256, so uploading
// the same receipt twice yields the same URL. DedupUploader short-circuits
// repeats without calling S3 at all.
//
// All upload failures wrap ErrUpload.
package proof
