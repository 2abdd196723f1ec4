package models

import "fmt"

// UserProfile is a user's public profile with demographic fields and counters.
type UserProfile struct {
	UID          string   `json:"uid"`
	Username     string   `json:"username"`
	Email        string   `json:"email"`
	Gender       *string  `json:"gender"`
	Age          *int     `json:"age"`
	Street       *string  `json:"street"`
	City         *string  `json:"city"`
	Province     *string  `json:"province"`
	MBTI         *string  `json:"mbti"`
	Hobbies      []string `json:"hobbies"`
	IsVIP        bool     `json:"isvip"`
	NumPlaylists int      `json:"num_playlists"`
	NumFavorites int      `json:"num_favorites"`
	CreatedAt    string   `json:"created_at,omitempty"`
	UpdatedAt    string   `json:"updated_at,omitempty"`
}

// ProfileUpdate is a partial profile update; nil fields are left untouched by the server.
type ProfileUpdate struct {
	Username *string  `json:"username,omitempty"`
	Email    *string  `json:"email,omitempty"`
	Gender   *string  `json:"gender,omitempty"`
	Age      *int     `json:"age,omitempty"`
	Street   *string  `json:"street,omitempty"`
	City     *string  `json:"city,omitempty"`
	Province *string  `json:"province,omitempty"`
	MBTI     *string  `json:"mbti,omitempty"`
	Hobbies  []string `json:"hobbies,omitempty"`
}

// Empty reports whether the update carries no fields.
func (u ProfileUpdate) Empty() bool {
	return u.Username == nil && u.Email == nil && u.Gender == nil && u.Age == nil &&
		u.Street == nil && u.City == nil && u.Province == nil && u.MBTI == nil && u.Hobbies == nil
}

// Validate rejects values the server would refuse.
func (u ProfileUpdate) Validate() error {
	if u.Empty() {
		return fmt.Errorf("no profile fields or hobbies to update")
	}
	if u.Age != nil && *u.Age < 0 {
		return fmt.Errorf("age must be a positive integer")
	}
	return nil
}

// Credentials is the input for login and signup.
type Credentials struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
