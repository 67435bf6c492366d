// Package poly implements polymorphic output types: interfaces and unions.
//
// A Definition is declared fluently and built by a Builder into an immutable
// Descriptor, which knows its members, its possible concrete types (with
// flattened members expanded) and, for interfaces, the shared field
// contract. Registry writes descriptors into a schema.Schema once.
//
// At request time a Value wraps one concrete Object, directly or through
// flattened members. The Dispatcher routes field resolution, __typename and
// field collection of a Value to that object.
package poly
