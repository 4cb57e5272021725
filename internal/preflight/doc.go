// Package preflight provides readiness checks for the external tools and
// filesystem paths pianoclips depends on.
//
// These checks run in two contexts:
//   - The pipeline runner calls RunAll before generating any key. If a check
//     fails the run stops before the first stage touches the results tree.
//   - The CLI "pianoclips status" command renders the same results as a table.
//
// Engine-specific checks are gated by the configured speech engine and
// instrument.
package preflight
