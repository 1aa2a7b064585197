package account

import "time"

// User is an operator of the inventory. The password digest never leaves the
// persistence layer.
type User struct {
	ID        int64      `db:"id" json:"id"`
	Username  string     `db:"username" json:"username"`
	Admin     bool       `db:"admin" json:"admin"`
	CreatedAt *time.Time `db:"created_at" json:"created_at,omitempty"`
}

// Role is the display name of the user's permission tier.
func (u User) Role() string {
	if u.Admin {
		return "Администратор"
	}
	return "Пользователь"
}
