// Package apq implements automatic persisted queries, protocol version 1.
//
// A client sends extensions.persistedQuery = {version: 1, sha256Hash: H}.
// With an empty query the stored query for H is used; an unknown H fails with
// PersistedQueryNotFound, prompting the client to resend the full query. With
// a query present the query is stored under H.
package apq

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/vektah/gqlparser/v2/gqlerror"

	eventbus "github.com/hanpama/polygraph/internal/eventbus"
	events "github.com/hanpama/polygraph/internal/events"
)

// ExtensionKey is the request extension carrying the persisted query.
const ExtensionKey = "persistedQuery"

// Error codes reported in the extensions of returned errors.
const (
	CodeNotFound     = "PERSISTED_QUERY_NOT_FOUND"
	CodeNotSupported = "PERSISTED_QUERY_NOT_SUPPORTED"
	CodeInvalid      = "PERSISTED_QUERY_INVALID"
	CodeHashMismatch = "PERSISTED_QUERY_HASH_MISMATCH"
)

const (
	supportedVersion  = 1
	notFoundMessage   = "PersistedQueryNotFound"
	invalidExtMessage = `Invalid "PersistedQuery" extension configuration.`
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// PersistedQuery is the persistedQuery request extension.
type PersistedQuery struct {
	Version    int    `json:"version"`
	SHA256Hash string `json:"sha256Hash"`
}

// Storage stores queries by hash. Implementations must be safe for
// concurrent use.
type Storage interface {
	Get(ctx context.Context, hash string) (string, bool, error)
	Set(ctx context.Context, hash, query string) error
}

// Processor resolves persisted queries against a Storage.
type Processor struct {
	storage Storage
	verify  bool
}

type Option func(*Processor)

// WithoutHashVerification stores queries under the client's hash without
// checking that it is the query's SHA-256.
func WithoutHashVerification() Option {
	return func(p *Processor) { p.verify = false }
}

func New(storage Storage, opts ...Option) *Processor {
	p := &Processor{storage: storage, verify: true}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process returns the query to execute for a request carrying query and
// extensions. Requests without the persistedQuery extension are returned
// unchanged. Returned errors are *gqlerror.Error with an extensions code.
func (p *Processor) Process(ctx context.Context, query string, extensions map[string]any) (string, error) {
	raw, ok := extensions[ExtensionKey]
	if !ok || raw == nil {
		return query, nil
	}
	pq, err := decode(raw)
	if err != nil {
		return "", newError(invalidExtMessage, CodeInvalid, err)
	}
	if pq.Version != supportedVersion {
		msg := fmt.Sprintf(`Only the "PersistedQuery" extension of version "1" is supported, and the current version is "%d".`, pq.Version)
		return "", newError(msg, CodeNotSupported, nil)
	}

	if query == "" {
		stored, found, err := p.storage.Get(ctx, pq.SHA256Hash)
		if err != nil {
			return "", fmt.Errorf("load persisted query %s: %w", pq.SHA256Hash, err)
		}
		if !found {
			eventbus.Publish(ctx, events.PersistedQueryMiss{Hash: pq.SHA256Hash})
			return "", newError(notFoundMessage, CodeNotFound, nil)
		}
		eventbus.Publish(ctx, events.PersistedQueryHit{Hash: pq.SHA256Hash})
		return stored, nil
	}

	if p.verify && Hash(query) != pq.SHA256Hash {
		return "", newError("provided sha does not match query", CodeHashMismatch, nil)
	}
	if err := p.storage.Set(ctx, pq.SHA256Hash, query); err != nil {
		return "", fmt.Errorf("store persisted query %s: %w", pq.SHA256Hash, err)
	}
	eventbus.Publish(ctx, events.PersistedQueryRegistered{Hash: pq.SHA256Hash})
	return query, nil
}

// Hash returns the hex-encoded SHA-256 of query.
func Hash(query string) string {
	sum := sha256.Sum256([]byte(query))
	return hex.EncodeToString(sum[:])
}

func decode(raw any) (PersistedQuery, error) {
	var pq PersistedQuery
	b, err := json.Marshal(raw)
	if err != nil {
		return pq, err
	}
	if err := json.Unmarshal(b, &pq); err != nil {
		return pq, err
	}
	if pq.SHA256Hash == "" {
		return pq, fmt.Errorf("missing sha256Hash")
	}
	return pq, nil
}

func newError(message, code string, cause error) *gqlerror.Error {
	err := &gqlerror.Error{Message: message, Extensions: map[string]any{"code": code}}
	if cause != nil {
		err.Err = cause
	}
	return err
}
