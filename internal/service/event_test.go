package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifelog/lifelog/internal/apperr"
	"github.com/lifelog/lifelog/internal/repository"
	"github.com/lifelog/lifelog/internal/testutil"
)

func TestEventService_CreateDefaultsTimestamp(t *testing.T) {
	events, _ := newTestStack(t, testutil.NewMemStorage(), 10)
	ctx := context.Background()

	event, err := events.Create(ctx, CreateEventInput{Title: "just now"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), event.Timestamp, 2*time.Second)
	assert.WithinDuration(t, time.Now().UTC(), event.CreatedAt, 2*time.Second)

	explicit := time.Date(2024, 12, 24, 18, 0, 0, 0, time.UTC)
	event, err = events.Create(ctx, CreateEventInput{Title: "back then", Timestamp: &explicit})
	require.NoError(t, err)
	assert.True(t, event.Timestamp.Equal(explicit))
}

func TestEventService_CreateValidation(t *testing.T) {
	events, _ := newTestStack(t, testutil.NewMemStorage(), 10)
	ctx := context.Background()

	_, err := events.Create(ctx, CreateEventInput{})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeValidation))

	long := make([]byte, 201)
	for i := range long {
		long[i] = 'x'
	}
	_, err = events.Create(ctx, CreateEventInput{Title: string(long)})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeValidation))
}

func TestEventService_UpdateRoundTrip(t *testing.T) {
	events, _ := newTestStack(t, testutil.NewMemStorage(), 10)
	ctx := context.Background()

	created, err := events.Create(ctx, CreateEventInput{
		Title: "hike",
		Tags:  []string{"outdoors"},
	})
	require.NoError(t, err)

	description := "new"
	updated, err := events.Update(ctx, created.ID, repository.EventPatch{Description: &description})
	require.NoError(t, err)

	got, err := events.Get(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Description)
	assert.Equal(t, "new", *got.Description)
	assert.Equal(t, created.Title, got.Title)
	assert.Equal(t, created.Tags, got.Tags)
	assert.True(t, got.Timestamp.Equal(updated.Timestamp))
}

func TestEventService_UpdateRejectsEmptyTitle(t *testing.T) {
	events, _ := newTestStack(t, testutil.NewMemStorage(), 10)
	ctx := context.Background()

	created, err := events.Create(ctx, CreateEventInput{Title: "keep"})
	require.NoError(t, err)

	empty := ""
	_, err = events.Update(ctx, created.ID, repository.EventPatch{Title: &empty})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeValidation))
}

// Full lifecycle: create, attach, delete, and verify both sides are gone.
func TestEventService_DeletePurgesAttachments(t *testing.T) {
	store := testutil.NewMemStorage()
	events, attachments := newTestStack(t, store, 10)
	ctx := context.Background()

	created, err := events.Create(ctx, CreateEventInput{Title: "A", Tags: []string{"x"}})
	require.NoError(t, err)

	uploaded, err := attachments.UploadBatch(ctx, created.ID, []UploadFile{
		textFile("note.txt", "exactly one hundred bytes of text would go here"),
	})
	require.NoError(t, err)
	key := uploaded[0].Key

	got, err := events.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, got.Attachments, 1)
	assert.NotEmpty(t, got.Attachments[0].Key)

	require.NoError(t, events.Delete(ctx, created.ID))

	_, err = events.Get(ctx, created.ID)
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))

	_, err = attachments.PresignedURL(ctx, key)
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))

	assert.Zero(t, store.Len())
}

func TestEventService_DeleteNotFound(t *testing.T) {
	events, _ := newTestStack(t, testutil.NewMemStorage(), 10)

	err := events.Delete(context.Background(), 123)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
}

func TestEventService_ExportAllNewestFirst(t *testing.T) {
	events, _ := newTestStack(t, testutil.NewMemStorage(), 10)
	ctx := context.Background()

	older := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	_, err := events.Create(ctx, CreateEventInput{Title: "older", Timestamp: &older})
	require.NoError(t, err)
	_, err = events.Create(ctx, CreateEventInput{Title: "newer", Timestamp: &newer})
	require.NoError(t, err)

	all, err := events.ExportAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "newer", all[0].Title)
	assert.Equal(t, "older", all[1].Title)
}
