package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackshelf/trackshelf-backend/internal/shelf/domain"
	"github.com/trackshelf/trackshelf-backend/internal/shelf/repository"
	"github.com/trackshelf/trackshelf-backend/pkg/errors"
	"github.com/trackshelf/trackshelf-backend/pkg/testutil"
)

func TestPostgres_ItemLifecycle(t *testing.T) {
	testutil.SkipIfShort(t)
	s := testutil.NewIntegrationSuite(t, repository.Migrations)
	s.Truncate(t, "shelf_items")
	ctx := context.Background()
	f := testutil.NewFixtureFactory()
	repo := repository.NewItemRepository(s.DB)

	first := []domain.Item{f.Item("Milch", "14.03.2025"), f.Item("Brot", ""), f.Item("Käse", "01.04.2025")}
	n, err := repo.ReplaceAllForOwner(ctx, "alice", first)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// a second owner is untouched by alice's replace
	_, err = repo.ReplaceAllForOwner(ctx, "bob", []domain.Item{f.Item("Apfel", "")})
	require.NoError(t, err)

	_, err = repo.ReplaceAllForOwner(ctx, "alice", []domain.Item{first[2], first[0]})
	require.NoError(t, err)

	items, err := repo.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Käse", items[0].Name)
	assert.Equal(t, "01.04.2025", items[0].ExpiryDate.String())
	assert.Equal(t, "Milch", items[1].Name)

	bobs, err := repo.ListByOwner(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, bobs, 1)
	assert.Nil(t, bobs[0].ExpiryDate)

	created := f.Item("Joghurt", "20.03.2025")
	created.ID = ""
	created.OwnerID = "alice"
	require.NoError(t, repo.Create(ctx, &created))
	assert.Equal(t, 2, created.Position)

	created.Quantity = 3
	require.NoError(t, repo.Update(ctx, &created))
	got, err := repo.GetByID(ctx, "alice", created.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Quantity)

	_, err = repo.GetByID(ctx, "bob", created.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	owners, err := repo.ListOwners(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, owners)

	bad := f.Item("Milch", "")
	bad.Quantity = 0
	_, err = repo.ReplaceAllForOwner(ctx, "alice", []domain.Item{bad})
	assert.True(t, errors.Is(err, errors.ErrValidation))

	items, err = repo.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, items, 3, "failed replace leaves the previous shelf intact")

	n, err = repo.ReplaceAllForOwner(ctx, "alice", nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	items, err = repo.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestPostgres_SettingsAndShopping(t *testing.T) {
	testutil.SkipIfShort(t)
	s := testutil.NewIntegrationSuite(t, repository.Migrations)
	s.Truncate(t, "user_settings", "shopping_items", "shopping_groups")
	ctx := context.Background()

	settings := repository.NewSettingsRepository(s.DB)
	th, err := settings.GetThresholds(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, th)

	_, err = settings.SaveThresholds(ctx, "alice", domain.Thresholds{SoonDays: 5, ExpiredGraceDays: 1})
	require.NoError(t, err)
	stored, err := settings.SaveThresholds(ctx, "alice", domain.Thresholds{SoonDays: 10, ExpiredGraceDays: 2})
	require.NoError(t, err)
	assert.Equal(t, domain.Thresholds{SoonDays: 10, ExpiredGraceDays: 2}, *stored)

	_, err = settings.SaveThresholds(ctx, "alice", domain.Thresholds{SoonDays: 40})
	assert.True(t, errors.Is(err, errors.ErrValidation))

	shopping := repository.NewShoppingRepository(s.DB)
	list := testutil.NewFixtureFactory().ShoppingList()
	list.Sanitize()
	n, err := shopping.ReplaceAll(ctx, "alice", list)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	loaded, err := shopping.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, list.Groups, loaded.Groups)
	assert.Equal(t, list.Items, loaded.Items)

	_, err = shopping.ReplaceAll(ctx, "alice", domain.ShoppingList{})
	require.NoError(t, err)
	loaded, err = shopping.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, loaded.Groups)
	assert.Empty(t, loaded.Items)
}

func TestPostgres_OwnerPurge(t *testing.T) {
	testutil.SkipIfShort(t)
	s := testutil.NewIntegrationSuite(t, repository.Migrations)
	s.Truncate(t, "shelf_items", "user_settings", "shopping_items", "shopping_groups")
	ctx := context.Background()
	f := testutil.NewFixtureFactory()

	items := repository.NewItemRepository(s.DB)
	settings := repository.NewSettingsRepository(s.DB)
	shopping := repository.NewShoppingRepository(s.DB)

	for _, owner := range []string{"alice", "bob"} {
		_, err := items.ReplaceAllForOwner(ctx, owner, []domain.Item{f.Item("Milch", "14.03.2025")})
		require.NoError(t, err)
		_, err = settings.SaveThresholds(ctx, owner, domain.Thresholds{SoonDays: 5})
		require.NoError(t, err)
		list := f.ShoppingList()
		list.Sanitize()
		_, err = shopping.ReplaceAll(ctx, owner, list)
		require.NoError(t, err)
	}

	removed, err := repository.NewOwnerRepository(s.DB).Purge(ctx, "alice")
	require.NoError(t, err)
	assert.Positive(t, removed)

	left, err := items.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, left)
	th, err := settings.GetThresholds(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, th)
	list, err := shopping.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, list.Groups)
	assert.Empty(t, list.Items)

	bobs, err := items.ListByOwner(ctx, "bob")
	require.NoError(t, err)
	assert.Len(t, bobs, 1)
}
