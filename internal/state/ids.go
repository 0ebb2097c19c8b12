package state

import (
	"strconv"

	"github.com/google/uuid"
)

// IDSource issues stroke identifiers. Identifiers only need to be unique
// within a session.
type IDSource func() string

// NewStrokeID returns a random UUID.
func NewStrokeID() string {
	return uuid.NewString()
}

// SequenceIDs returns an IDSource yielding prefix-1, prefix-2, ... for callers
// that want predictable identifiers.
func SequenceIDs(prefix string) IDSource {
	var n uint64
	return func() string {
		n++
		return prefix + "-" + strconv.FormatUint(n, 10)
	}
}
