package events

import "time"

// FieldDispatchStart is emitted before a field of a polymorphic value is
// handed to its concrete object.
type FieldDispatchStart struct {
	Type         string
	ConcreteType string
	Field        string
	Path         string
}

// FieldDispatchFinish is emitted after the concrete object returns.
type FieldDispatchFinish struct {
	Type         string
	ConcreteType string
	Field        string
	Path         string
	Err          error
	Duration     time.Duration
}
