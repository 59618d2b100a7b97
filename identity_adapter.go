package authgate

var _ Identity = (*identityAdapter)(nil)

// identityAdapter projects a stored User onto the read-only Identity
// surface handed to token issuance and authorization.
type identityAdapter struct {
	user *User
}

// AsIdentity wraps a stored user record.
func AsIdentity(user *User) Identity {
	return &identityAdapter{user: user}
}

func (a *identityAdapter) ID() string    { return a.user.ID.String() }
func (a *identityAdapter) Name() string  { return a.user.Name }
func (a *identityAdapter) Email() string { return a.user.Email }
func (a *identityAdapter) Role() string  { return a.user.Role }
