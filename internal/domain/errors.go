package domain

import "errors"

var (
	// ErrNoActiveCatalog means no snapshot is active. This is a valid
	// state before the first publish, surfaced as not-found.
	ErrNoActiveCatalog = errors.New("no active catalog snapshot")

	// ErrPublishConflict means the active version moved between reading
	// the catalog and publishing against it.
	ErrPublishConflict = errors.New("catalog publish conflict: active version changed")

	// ErrRecordNotFound means the personal record does not exist or is
	// not visible to the caller.
	ErrRecordNotFound = errors.New("personal record not found")

	// ErrNotPromotable means the record is not an active system link
	// matching an entry of the active snapshot.
	ErrNotPromotable = errors.New("record is not a promotable system link")
)
