// Package types contains the semantic C types the compiler works with and the
// type system facade that answers questions about them. Primitive types are
// singletons owned by a Registry, so two primitive types are the same type only
// when they are the same reference. Aggregates (structs and arrays) and pointers
// are compared structurally by Equal.
// The Registry is immutable after construction and is handed to the compiler
// through its scope rather than looked up globally, which keeps it replaceable
// with a fake System in tests.
package types //nolint:revive
