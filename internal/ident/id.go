// Package ident issues locally generated identifiers for studio records.
package ident

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// IdeaPrefix is prepended to every idea identifier.
const IdeaPrefix = "idea-"

var seq atomic.Uint64

// NewIdeaID returns a fresh idea identifier. The UUIDv7 part is time-ordered
// and the sequence suffix keeps IDs distinct within a process even when two
// batches are created in the same millisecond.
func NewIdeaID() string {
	return New(IdeaPrefix)
}

// New creates an identifier with the given prefix, e.g. "idea-", "op-".
func New(prefix string) string {
	id, err := uuid.NewV7()
	if err != nil {
		log.Warn().Err(err).Msg("UUIDv7 generation failed, falling back to random UUID")
		id = uuid.New()
	}
	n := seq.Add(1)
	return prefix + id.String() + "-" + strconv.FormatUint(n, 36)
}
