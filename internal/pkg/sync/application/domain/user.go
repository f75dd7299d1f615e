package domain

// User is a lightweight reference to a chat participant. The engine never
// owns user records; it only mirrors what the server sends along with
// conversations and messages.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// DisplayName returns the best printable name for the user.
func (u User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	return "someone"
}
