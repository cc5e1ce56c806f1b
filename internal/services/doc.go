// Package services defines shared utilities consumed by the pipeline stages,
// the retrofit command and the external tool clients.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers, stage names, and image
//     filenames for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     into input, external tool, protocol, and configuration errors.
package services
