package models

import "github.com/google/uuid"

// Fallbacks for cosmetic profile fields. A summary must always render;
// a half-filled profile is never an error.
const (
	FallbackName       = "Unknown User"
	FallbackProfilePic = "https://via.placeholder.com/150x150/4A5568/FFFFFF?text=User"
	FallbackLanguage   = "Unknown"
)

// UserSummary is the subset of a profile exposed on friend cards and
// recommendation lists.
type UserSummary struct {
	ID               uuid.UUID `json:"id"`
	FullName         string    `json:"full_name"`
	ProfilePic       string    `json:"profile_pic"`
	NativeLanguage   string    `json:"native_language"`
	LearningLanguage string    `json:"learning_language"`
}

// SummaryOf builds a UserSummary from a full user record, substituting
// fallback values for any cosmetic field that is empty.
func SummaryOf(u *User) UserSummary {
	s := UserSummary{
		ID:               u.ID,
		FullName:         u.FullName,
		ProfilePic:       u.ProfilePic,
		NativeLanguage:   u.NativeLanguage,
		LearningLanguage: u.LearningLanguage,
	}
	if s.FullName == "" {
		s.FullName = FallbackName
	}
	if s.ProfilePic == "" {
		s.ProfilePic = FallbackProfilePic
	}
	if s.NativeLanguage == "" {
		s.NativeLanguage = FallbackLanguage
	}
	if s.LearningLanguage == "" {
		s.LearningLanguage = FallbackLanguage
	}
	return s
}
