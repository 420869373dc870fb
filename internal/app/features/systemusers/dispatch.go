// internal/app/features/systemusers/dispatch.go
package systemusers

import (
	"context"
	"errors"

	"github.com/dalemusser/adminusers/internal/app/clients/profileapi"
	"github.com/dalemusser/adminusers/internal/app/system/search"
	"github.com/dalemusser/adminusers/internal/domain/models"
)

// dispatcher turns an Intent into exactly one remote listing or search
// call. The only exception is the user-id fallback of a search that came
// back empty.
type dispatcher struct {
	profiles ProfileService
}

func (d dispatcher) fetch(ctx context.Context, in Intent) ([]models.Profile, error) {
	switch in.Op {
	case OpSearchProfiles:
		return d.search(ctx, in.Term, in.Role)
	case OpGetProfilesWithoutTeam:
		return d.profiles.GetProfilesWithoutTeam(ctx, in.Page, in.PerPage, models.ListFilterFor(in.Status))
	default:
		return d.profiles.GetProfiles(ctx, in.Page, in.PerPage, models.ListFilterFor(in.Status))
	}
}

func (d dispatcher) search(ctx context.Context, term, role string) ([]models.Profile, error) {
	found, err := d.profiles.SearchProfiles(ctx, term, search.Options(role))
	if err != nil || len(found) > 0 || !search.LooksLikeUserID(term) {
		return found, err
	}

	// Nothing matched, but the term is shaped like a user id: look it up.
	u, err := d.profiles.GetUser(ctx, term)
	if errors.Is(err, profileapi.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if u == nil || (role != "" && !u.HasRole(role)) {
		return nil, nil
	}
	return []models.Profile{*u}, nil
}

// profileIDs returns the ids of profiles in order.
func profileIDs(profiles []models.Profile) []string {
	if len(profiles) == 0 {
		return nil
	}
	ids := make([]string, 0, len(profiles))
	for _, p := range profiles {
		if p.ID != "" {
			ids = append(ids, p.ID)
		}
	}
	return ids
}
