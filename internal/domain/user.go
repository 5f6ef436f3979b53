package domain

// User is the resolved identity behind the current session token.
type User struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// IsRecognizable reports whether the payload carries enough identity to be
// accepted as a user. The backend sometimes returns partial objects; at least
// one of id, name, or email must be present.
func (u User) IsRecognizable() bool {
	return u.ID != "" || u.Name != "" || u.Email != ""
}
