package testutil

import (
	"fmt"

	"github.com/dalemusser/adminusers/internal/domain/models"
)

// Profile returns a minimal active profile.
func Profile(id, username string) models.Profile {
	return models.Profile{
		ID:       id,
		Username: username,
		Email:    username + "@example.com",
		Roles:    "system_user",
	}
}

// Profiles returns n profiles with ids prefix0..prefixN-1.
func Profiles(prefix string, n int) []models.Profile {
	out := make([]models.Profile, 0, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("%s%d", prefix, i)
		out = append(out, Profile(id, "user-"+id))
	}
	return out
}
