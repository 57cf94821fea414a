package sqlrender

import (
	"strings"

	"github.com/google/uuid"
)

// SessionIDGenerator produces the identifiers substituted for %session_id%
// when the caller supplies none.
type SessionIDGenerator interface {
	Generate() string
}

// RandomSessionIDs derives session ids from random UUIDs. Ids are eight
// lower-case characters and always start with a letter so they can prefix
// a table name.
//
// Thread-safety: RandomSessionIDs is stateless and safe for concurrent use.
type RandomSessionIDs struct{}

// Generate returns a new session id such as "c1b4e2f0".
func (RandomSessionIDs) Generate() string {
	id := []byte(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	if id[0] >= '0' && id[0] <= '9' {
		id[0] = 'a' + (id[0] - '0')
	}
	return string(id)
}
