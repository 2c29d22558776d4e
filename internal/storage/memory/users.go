package memory

import (
	"cmp"
	"context"
	"strings"

	usersdomain "github.com/atelier-arq/atelier-backend/internal/users/domain"
)

type Users struct{ s *Store }

func (r *Users) Ensure(ctx context.Context, in usersdomain.UpsertUser) (*usersdomain.User, error) {
	defer r.s.lock(ctx)()
	now := r.s.now()
	u, ok := r.s.st.users[in.ID]
	if !ok {
		u = usersdomain.User{
			ID:        in.ID,
			Role:      usersdomain.DefaultRole,
			IsActive:  true,
			CreatedAt: now,
		}
	}
	if in.Email != "" || !ok {
		u.Email = in.Email
	}
	if in.FirstName != "" || !ok {
		u.FirstName = in.FirstName
	}
	if in.LastName != "" || !ok {
		u.LastName = in.LastName
	}
	if in.ProfileImageURL != nil {
		u.ProfileImageURL = in.ProfileImageURL
	}
	u.UpdatedAt = now
	r.s.st.users[u.ID] = u
	return &u, nil
}

func (r *Users) Get(ctx context.Context, id string) (*usersdomain.User, error) {
	defer r.s.lock(ctx)()
	u, ok := r.s.st.users[id]
	if !ok {
		return nil, usersdomain.ErrUserNotFound
	}
	return &u, nil
}

func (r *Users) List(ctx context.Context, includeInactive bool) ([]usersdomain.User, error) {
	defer r.s.lock(ctx)()
	all := sortedValues(r.s.st.users, func(a, b usersdomain.User) int {
		return cmp.Or(
			strings.Compare(a.FirstName, b.FirstName),
			strings.Compare(a.LastName, b.LastName),
			strings.Compare(a.ID, b.ID),
		)
	})
	out := make([]usersdomain.User, 0, len(all))
	for _, u := range all {
		if u.IsActive || includeInactive {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *Users) UpdateRole(ctx context.Context, id string, role usersdomain.Role) (*usersdomain.User, error) {
	return r.update(ctx, id, func(u *usersdomain.User) { u.Role = role })
}

func (r *Users) SetActive(ctx context.Context, id string, active bool) (*usersdomain.User, error) {
	return r.update(ctx, id, func(u *usersdomain.User) { u.IsActive = active })
}

func (r *Users) update(ctx context.Context, id string, fn func(*usersdomain.User)) (*usersdomain.User, error) {
	defer r.s.lock(ctx)()
	u, ok := r.s.st.users[id]
	if !ok {
		return nil, usersdomain.ErrUserNotFound
	}
	fn(&u)
	u.UpdatedAt = r.s.now()
	r.s.st.users[id] = u
	return &u, nil
}
