package services

import (
	"context"
	"testing"

	"campusevents/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_Me(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	repo.add("user-1", "Alice", "alice@campus.edu", domain.RoleUser)
	svc := NewUserService(repo, &fakeMediaStore{})

	tests := []struct {
		name    string
		caller  domain.Caller
		wantErr error
	}{
		{"success", domain.Caller{ID: "user-1", Role: domain.RoleUser}, nil},
		{"anonymous", domain.Caller{}, domain.ErrUnauthenticated},
		{"deleted account", domain.Caller{ID: "gone", Role: domain.RoleUser}, domain.ErrUserNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := svc.Me(ctx, tt.caller)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Alice", user.Name)
		})
	}
}

func TestUserService_UpdateAvatar(t *testing.T) {
	ctx := context.Background()
	caller := domain.Caller{ID: "user-1", Role: domain.RoleUser}

	t.Run("success", func(t *testing.T) {
		repo := newFakeUserRepo()
		repo.add("user-1", "Alice", "alice@campus.edu", domain.RoleUser)
		media := &fakeMediaStore{}
		svc := NewUserService(repo, media)

		user, err := svc.UpdateAvatar(ctx, caller, pngImage())
		require.NoError(t, err)
		assert.Equal(t, "https://media.test/avatars/user-1", user.ImageURL)
		assert.Equal(t, []string{"avatars/user-1"}, media.uploads)
	})

	t.Run("invalid image", func(t *testing.T) {
		repo := newFakeUserRepo()
		repo.add("user-1", "Alice", "alice@campus.edu", domain.RoleUser)
		media := &fakeMediaStore{}
		svc := NewUserService(repo, media)

		img := pngImage()
		img.Size = domain.MaxImageSize + 1
		_, err := svc.UpdateAvatar(ctx, caller, img)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		_, err = svc.UpdateAvatar(ctx, caller, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Empty(t, media.uploads)
	})

	t.Run("anonymous", func(t *testing.T) {
		svc := NewUserService(newFakeUserRepo(), &fakeMediaStore{})
		_, err := svc.UpdateAvatar(ctx, domain.Caller{}, pngImage())
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})
}
