// Package pipeline wires the generation stages together and drives every
// key of the configured keyboard range through them.
//
// A run acquires an advisory lock on the results root, checks stage health,
// records itself in the ledger and then processes keys either one at a time
// or through a small worker pool. The first stage failure aborts the run.
package pipeline
