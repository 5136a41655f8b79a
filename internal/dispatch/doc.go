// Package dispatch routes named commands to their handlers.
//
// A Registry holds command Descriptors, each with a declared parameter
// schema. The Dispatcher resolves an Invocation, validates and coerces its
// arguments against the schema, runs the handler with a per-attempt timeout
// and retries rate-limit and quota failures with exponential backoff. Every
// outcome is a Response whose errors are normalized ErrorDescriptors; errors
// from the Google client libraries never reach the caller unmodified.
//
// An invocation moves through the states
//
//	RECEIVED -> VALIDATED -> EXECUTING -> SUCCEEDED | FAILED
//
// and fails straight from RECEIVED when the command is unknown or its
// arguments are invalid.
package dispatch
