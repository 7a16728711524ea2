package domain

// Session is the authenticated identity: the user record plus the bearer token.
type Session struct {
	User  User
	Token string
}

// UserID returns the session user's id.
func (s Session) UserID() string { return s.User.ID }

// DisplayName returns the session user's full name.
func (s Session) DisplayName() string { return s.User.FullName }

// Role returns the session user's role.
func (s Session) Role() string { return s.User.Role }

// BearerToken returns the opaque token attached to authenticated requests.
func (s Session) BearerToken() string { return s.Token }

// Valid reports whether the session carries both an identity and a token.
func (s Session) Valid() bool {
	return s.User.ID != "" && s.Token != ""
}
