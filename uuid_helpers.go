package authgate

import (
	"github.com/google/uuid"
)

// parseUserID turns a token subject into a store key. A subject that
// is not a uuid can never resolve, treat it as a gone identity rather
// than a server fault.
func parseUserID(id string) (uuid.UUID, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, ErrIdentityGone
	}
	return uid, nil
}
