// internal/models/user.go
package models

// User is a dashboard account member, looked up by the nudge side-channel.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}
