// Package extract converts email attachment content into plain text.
//
// Supported types are PDF (text layer), DOCX (document body), plain text,
// and PNG/JPEG images via an OCR service. The dispatcher checks the size
// limit before touching the content and reports unsupported types with a
// sentinel error so callers can skip rather than fail the batch.
package extract
