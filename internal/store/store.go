// Package store defines the persistence sentinels shared by the postgres
// and memory backends. Each domain package declares the narrow StoreAPI it
// consumes; both backends implement all of them on one concrete type, so
// core services never branch on which backend is active.
package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrVersionConflict is returned by optimistic updates when the
	// stored version no longer matches the caller's copy.
	ErrVersionConflict = errors.New("version conflict")

	// ErrStatusConflict is returned when a leave-request update carries a
	// stale expected status.
	ErrStatusConflict = errors.New("status conflict")

	// ErrIdempotencyConflict is returned when an idempotency key is
	// reused with a different request payload.
	ErrIdempotencyConflict = errors.New("idempotency key conflicts with an existing request")
)

// IdempotencyRecord stores the response of a completed side-effecting
// request so a retry carrying the same key replays it verbatim.
type IdempotencyRecord struct {
	RequestHash string
	Status      int
	Body        []byte
}

type IdempotencyAPI interface {
	GetIdempotencyRecord(ctx context.Context, userID, endpoint, key string) (IdempotencyRecord, error)
	PutIdempotencyRecord(ctx context.Context, userID, endpoint, key string, rec IdempotencyRecord) error
}
