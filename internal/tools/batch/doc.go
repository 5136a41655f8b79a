// Package batch registers run_batch, which dispatches a list of commands
// with bounded parallelism and reports every outcome.
//
// Each entry goes through the dispatcher on its own, so it is validated,
// retried, timed out and audited exactly as if it had been called directly.
// A failing entry does not stop the others. Results keep the input order.
package batch
