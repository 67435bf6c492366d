// Package events holds the payloads published on the event bus while a
// request moves through the server, the executor and the field dispatcher.
package events

import (
	"net/http"
	"time"
)

type HTTPStart struct {
	Request *http.Request
}

// HTTPFinish carries the response status and how many operations the
// request held; a batched request counts each entry.
type HTTPFinish struct {
	Request    *http.Request
	Status     int
	Operations int
	Duration   time.Duration
}

// GraphQLStart precedes the execution of one operation. Persisted is set
// when the query text came from the persisted query store.
type GraphQLStart struct {
	Query         string
	OperationName string
	OperationType string
	Persisted     bool
}

type GraphQLFinish struct {
	Query         string
	OperationName string
	OperationType string
	Persisted     bool
	Errors        []error
	Duration      time.Duration
}
