package events

// PersistedQueryHit is emitted when a persisted query is served from storage.
type PersistedQueryHit struct {
	Hash string
}

// PersistedQueryMiss is emitted when a hash-only request names an unknown
// query.
type PersistedQueryMiss struct {
	Hash string
}

// PersistedQueryRegistered is emitted when a query is stored under its hash.
type PersistedQueryRegistered struct {
	Hash string
}
