// Package multimethod implements methods whose implementation is picked at
// call time from the runtime types of all of their arguments.
//
// Each Go type owns a Table. A Table maps a method name to an ordered list of
// Signatures; every Signature pairs a list of Constraints with a handler
// function. Calling the method scans the list in registration order and runs
// the first Signature whose constraints accept the arguments. There is no
// specificity ranking: when two signatures overlap, the one registered first
// wins.
//
// Constraints come in two flavours:
//
//   - nominal: Type[T]() requires the argument to be a T (or, when T is an
//     interface, to implement it); Kind(k) accepts any value of a reflect.Kind.
//   - structural: Implements[I]() checks interface conformance; RespondsTo
//     checks the method set by name.
//
// Handlers built with NewMethod take the receiver as their first parameter, so
// code inside them can reach the target instance the method was called on.
//
// Tables are definition-time state: populate them once, before use, from a
// single goroutine.
package multimethod
