// Package errors provides structured error types for the runtime core.
//
// Errors are categorized by Phase (where in the lifecycle the error occurred)
// and Kind (error category). The Error type includes context: component path,
// offending value, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseInit, errors.KindAllocation).
//		Path("runtime", "memory").
//		Detail("backend construction failed").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Contract(errors.PhaseTeardown, "runtime must be running")
//	err := errors.AliveRuntimes(3)
//
// All errors implement the standard error interface and support errors.Is/As.
// Note that contract violations in this runtime are fatal: the lifecycle
// controller formats such an error as a diagnostic and aborts the process,
// it never returns the error to the caller.
package errors
