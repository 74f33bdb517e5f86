package entity

import (
	"strings"

	"shopadmin/internal/backend"
)

// User is a registered storefront account. Admin standing is not part of
// the record: it is the existence of a marker document in the admin
// collection, checked at action time.
type User struct {
	ID          string
	Email       string
	DisplayName string
}

// DecodeUser maps a fetched document onto a User.
func DecodeUser(doc backend.Document) User {
	return User{
		ID:          doc.ID,
		Email:       Str(doc.Fields, "email"),
		DisplayName: Str(doc.Fields, "displayName"),
	}
}

// MatchUser reports whether the user matches a lowercased free-text filter
// across email and display name.
func MatchUser(u User, lowered string) bool {
	if lowered == "" {
		return true
	}
	if u.Email != "" && strings.Contains(strings.ToLower(u.Email), lowered) {
		return true
	}
	if u.DisplayName != "" && strings.Contains(strings.ToLower(u.DisplayName), lowered) {
		return true
	}
	return false
}
