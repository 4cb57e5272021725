// Package ledger records generation runs and the artifacts they produced in
// a SQLite database under the results root.
//
// The ledger is history only: the pipeline never reads it to decide what to
// regenerate. `pianoclips history` renders the most recent runs.
package ledger
