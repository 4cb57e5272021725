// Package stage defines the contract between the pipeline runner and the
// per-key generation stages (note, speech, merge, image, video), plus the
// helpers stages share for stale-output removal and artifact bookkeeping.
package stage
