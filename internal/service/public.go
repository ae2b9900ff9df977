// Package service hosts the mutation layer. Every operation validates its
// input, writes through to the repository, and only then commits to the
// in-memory store, so store and storage never diverge. Failures surface as
// a false return, never as an error across this boundary.
package service

import (
	"github.com/google/uuid"
)

// CacheInvalidator receives invalidation hooks from the mutation paths.
// Implemented by the resolver; cache correctness is a structural property
// of the write path, not something readers reason about.
type CacheInvalidator interface {
	InvalidateUser(userId uuid.UUID)
	InvalidateAll()
}
