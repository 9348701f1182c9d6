package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackshelf/trackshelf-backend/internal/shelf/collection"
	"github.com/trackshelf/trackshelf-backend/internal/shelf/domain"
	"github.com/trackshelf/trackshelf-backend/internal/shelf/events"
	"github.com/trackshelf/trackshelf-backend/internal/shelf/service"
	"github.com/trackshelf/trackshelf-backend/pkg/errors"
	"github.com/trackshelf/trackshelf-backend/pkg/logger"
	"github.com/trackshelf/trackshelf-backend/pkg/messaging"
	"github.com/trackshelf/trackshelf-backend/pkg/testutil"
)

type shelfFixture struct {
	svc      *service.ShelfService
	items    *testutil.MemItemStore
	settings *testutil.MemSettingsStore
	pub      *testutil.MockPublisher
	factory  *testutil.FixtureFactory
}

func newShelfFixture() *shelfFixture {
	f := &shelfFixture{
		items:    testutil.NewMemItemStore(),
		settings: testutil.NewMemSettingsStore(),
		pub:      testutil.NewMockPublisher(),
		factory:  testutil.NewFixtureFactory(),
	}
	log := logger.Nop()
	f.svc = service.NewShelfService(
		f.items, f.settings, testutil.TestCatalog(),
		service.NewClock(testutil.FixedClock(), testutil.Zurich),
		domain.DefaultThresholds(),
		events.NewShelfEventPublisher(f.pub, log), log,
	)
	return f
}

func TestClock_TodayUsesLocation(t *testing.T) {
	late := func() time.Time { return time.Date(2025, time.March, 9, 23, 30, 0, 0, time.UTC) }

	assert.Equal(t, "10.03.2025", service.NewClock(late, testutil.Zurich).Today().String())
	assert.Equal(t, "09.03.2025", service.NewClock(late, nil).Today().String())
}

func TestShelfService_ListItems(t *testing.T) {
	f := newShelfFixture()
	ctx := context.Background()
	f.items.Seed(testutil.TestOwner,
		f.factory.Item("Joghurt", "12.03.2025"),
		f.factory.Item("Salz", ""),
		f.factory.Item("Milch", "08.03.2025"),
		f.factory.Item("Reis", "01.01.2026"),
	)

	view, err := f.svc.ListItems(ctx, testutil.TestOwner, collection.Query{Sort: collection.SortExpiryAsc})
	require.NoError(t, err)

	names := make([]string, len(view.Items))
	for i, e := range view.Items {
		names[i] = e.Name
	}
	assert.Equal(t, []string{"Milch", "Joghurt", "Reis", "Salz"}, names)
	assert.Equal(t, domain.WarnExpired, view.Items[0].WarnLevel)
	assert.Equal(t, domain.WarnLevel(""), view.Items[3].WarnLevel)
	assert.Equal(t, domain.DefaultThresholds(), view.Thresholds)
	assert.Equal(t, testutil.FixedDay, view.Today)

	t.Run("summary ignores the filter", func(t *testing.T) {
		q := collection.Query{Filter: collection.Filter{WarnLevel: domain.WarnSoon}}
		view, err := f.svc.ListItems(ctx, testutil.TestOwner, q)
		require.NoError(t, err)

		require.Len(t, view.Items, 1)
		assert.Equal(t, "Joghurt", view.Items[0].Name)
		assert.Equal(t, 4, view.Summary.Total)
		assert.Equal(t, 1, view.Summary.Soon)
		assert.Equal(t, 1, view.Summary.Expired)
		assert.Equal(t, 1, view.Summary.Fresh)
		assert.Equal(t, 1, view.Summary.Undated)
	})

	t.Run("stored thresholds apply", func(t *testing.T) {
		f.settings.ByOwner[testutil.TestOwner] = domain.Thresholds{SoonDays: 1, ExpiredGraceDays: 0}

		view, err := f.svc.ListItems(ctx, testutil.TestOwner, collection.Query{})
		require.NoError(t, err)
		assert.Equal(t, 0, view.Summary.Soon)
		assert.Equal(t, 2, view.Summary.Fresh)
	})

	t.Run("empty shelf", func(t *testing.T) {
		view, err := f.svc.ListItems(ctx, "nobody", collection.Query{})
		require.NoError(t, err)
		assert.Empty(t, view.Items)
		assert.Equal(t, 0, view.Summary.Total)
	})
}

func TestShelfService_ReplaceAll(t *testing.T) {
	ctx := context.Background()

	t.Run("stores and publishes", func(t *testing.T) {
		f := newShelfFixture()
		items := []domain.Item{f.factory.Item("  Brot ", "11.03.2025"), f.factory.Item("Käse", "")}
		items[1].ID = ""

		n, err := f.svc.ReplaceAll(ctx, testutil.TestOwner, items)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		stored, _ := f.items.ListByOwner(ctx, testutil.TestOwner)
		require.Len(t, stored, 2)
		assert.Equal(t, "Brot", stored[0].Name)
		assert.NotEmpty(t, stored[1].ID)

		var evt events.ItemsReplacedEvent
		f.pub.DecodePayload(t, messaging.EventItemsReplaced, &evt)
		assert.Equal(t, events.ItemsReplacedEvent{OwnerID: testutil.TestOwner, Count: 2}, evt)
	})

	t.Run("empty set clears the shelf", func(t *testing.T) {
		f := newShelfFixture()
		f.items.Seed(testutil.TestOwner, f.factory.Item("Brot", ""))

		n, err := f.svc.ReplaceAll(ctx, testutil.TestOwner, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, n)

		stored, _ := f.items.ListByOwner(ctx, testutil.TestOwner)
		assert.Empty(t, stored)
	})

	t.Run("one invalid item rejects the save", func(t *testing.T) {
		f := newShelfFixture()
		f.items.Seed(testutil.TestOwner, f.factory.Item("Brot", ""))
		good := f.factory.Item("Milch", "")
		bad := f.factory.Item("Zucker", "")
		bad.Quantity = 0
		bad.Unit = "Sack"

		_, err := f.svc.ReplaceAll(ctx, testutil.TestOwner, []domain.Item{good, bad})
		require.Error(t, err)

		var appErr *errors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.True(t, errors.Is(err, errors.ErrValidation))
		assert.Contains(t, appErr.Details, "items[1].quantity")
		assert.Contains(t, appErr.Details, "items[1].unit")
		assert.NotContains(t, appErr.Details, "items[0].name")

		stored, _ := f.items.ListByOwner(ctx, testutil.TestOwner)
		require.Len(t, stored, 1)
		assert.Equal(t, "Brot", stored[0].Name)
		f.pub.AssertNoEventsPublished(t)
	})
}

func TestShelfService_ItemCRUD(t *testing.T) {
	f := newShelfFixture()
	ctx := context.Background()

	draft := f.factory.Item(" Joghurt ", "11.03.2025")
	draft.ID = "client-chosen"

	created, err := f.svc.CreateItem(ctx, testutil.TestOwner, draft)
	require.NoError(t, err)
	assert.NotEqual(t, "client-chosen", created.ID)
	assert.Equal(t, "Joghurt", created.Name)
	assert.Equal(t, domain.WarnSoon, created.WarnLevel)
	f.pub.AssertEventPublished(t, messaging.EventItemCreated)

	got, err := f.svc.GetItem(ctx, testutil.TestOwner, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = f.svc.GetItem(ctx, "someone-else", created.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	update := created.Item
	update.ExpiryDate = testutil.Ptr(domain.MustParseDate("01.03.2025"))
	updated, err := f.svc.UpdateItem(ctx, testutil.TestOwner, created.ID, update)
	require.NoError(t, err)
	assert.Equal(t, domain.WarnExpired, updated.WarnLevel)

	var changed events.ItemChangedEvent
	f.pub.DecodePayload(t, messaging.EventItemUpdated, &changed)
	assert.Equal(t, "01.03.2025", changed.ExpiryDate)

	_, err = f.svc.UpdateItem(ctx, testutil.TestOwner, "missing", update)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	require.NoError(t, f.svc.DeleteItem(ctx, testutil.TestOwner, created.ID))
	f.pub.AssertEventPublished(t, messaging.EventItemDeleted)
	assert.True(t, errors.Is(f.svc.DeleteItem(ctx, testutil.TestOwner, created.ID), errors.ErrNotFound))
}

func TestShelfService_CreateItemValidation(t *testing.T) {
	f := newShelfFixture()

	item := f.factory.Item("Brot", "")
	item.Category = "Spielzeug"
	_, err := f.svc.CreateItem(context.Background(), testutil.TestOwner, item)

	assert.True(t, errors.Is(err, errors.ErrValidation))
	f.pub.AssertNoEventsPublished(t)
}

func TestShelfService_Thresholds(t *testing.T) {
	f := newShelfFixture()
	ctx := context.Background()

	th, err := f.svc.GetThresholds(ctx, testutil.TestOwner)
	require.NoError(t, err)
	assert.Equal(t, domain.Thresholds{SoonDays: 3, ExpiredGraceDays: 0}, th)

	saved, err := f.svc.SaveThresholds(ctx, testutil.TestOwner, domain.Thresholds{SoonDays: 45, ExpiredGraceDays: 40})
	require.NoError(t, err)
	assert.Equal(t, domain.Thresholds{SoonDays: 30, ExpiredGraceDays: 29}, saved)

	th, err = f.svc.GetThresholds(ctx, testutil.TestOwner)
	require.NoError(t, err)
	assert.Equal(t, saved, th)

	var evt events.SettingsUpdatedEvent
	f.pub.DecodePayload(t, messaging.EventSettingsUpdated, &evt)
	assert.Equal(t, 30, evt.SoonDays)
	assert.Equal(t, 29, evt.ExpiredGraceDays)

	t.Run("out of range stored values are clamped on read", func(t *testing.T) {
		f.settings.ByOwner["legacy"] = domain.Thresholds{SoonDays: 0, ExpiredGraceDays: 5}
		th, err := f.svc.GetThresholds(ctx, "legacy")
		require.NoError(t, err)
		assert.Equal(t, domain.Thresholds{SoonDays: 1, ExpiredGraceDays: 0}, th)
	})
}
