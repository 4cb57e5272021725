// Package services defines shared utilities consumed by the pipeline stage
// handlers and the external tool wrappers.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, key indexes, and stage names for
//     logging.
//   - Structured error markers plus the Wrap helper that keep failure messages
//     uniform across stages.
//
// Use these helpers when wiring new stage logic so error text and log fields
// stay consistent across the pipeline.
package services
