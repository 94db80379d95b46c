package models

import "github.com/google/uuid"

type User struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Password string    `json:"password,omitempty"`
	FullName string    `json:"full_name"`

	Bio              string `json:"bio"`
	ProfilePic       string `json:"profile_pic"`
	NativeLanguage   string `json:"native_language"`
	LearningLanguage string `json:"learning_language"`
	Location         string `json:"location"`

	IsOnboarded bool `json:"is_onboarded"`

	// Friends holds the ids of this user's accepted friends. Symmetric:
	// if A lists B, then B lists A. Mutated only via the friends engine.
	Friends []uuid.UUID `json:"friends"`
}

// HasFriend reports whether id is already in the user's friend list.
func (u *User) HasFriend(id uuid.UUID) bool {
	for _, f := range u.Friends {
		if f == id {
			return true
		}
	}
	return false
}
