package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifelog/lifelog/internal/apperr"
	"github.com/lifelog/lifelog/internal/model"
	"github.com/lifelog/lifelog/internal/testutil"
)

func TestAttachmentRepository_CreateBatch(t *testing.T) {
	database := testutil.NewDB(t)
	events := NewEventRepository(database)
	attachments := NewAttachmentRepository(database)
	ctx := context.Background()

	event := seedEvent(t, events, "host", nil, base)

	batch := []*model.Attachment{
		{EventID: event.ID, Key: "k1.png", Filename: "photo.png", ContentType: "image/png", SizeBytes: 100, UploadedAt: base},
		{EventID: event.ID, Key: "k2.pdf", Filename: "doc.pdf", ContentType: "application/pdf", SizeBytes: 200, UploadedAt: base.Add(time.Second)},
	}
	require.NoError(t, attachments.CreateBatch(ctx, batch))
	assert.NotZero(t, batch[0].ID)
	assert.NotZero(t, batch[1].ID)

	count, err := attachments.CountByEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	listed, err := attachments.ByEvent(ctx, event.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "k1.png", listed[0].Key)
	assert.Equal(t, "k2.pdf", listed[1].Key)
}

func TestAttachmentRepository_CreateBatchDuplicateKeyRollsBack(t *testing.T) {
	database := testutil.NewDB(t)
	events := NewEventRepository(database)
	attachments := NewAttachmentRepository(database)
	ctx := context.Background()

	event := seedEvent(t, events, "host", nil, base)

	err := attachments.CreateBatch(ctx, []*model.Attachment{
		{EventID: event.ID, Key: "dup", Filename: "a", ContentType: "text/plain", SizeBytes: 1, UploadedAt: base},
		{EventID: event.ID, Key: "dup", Filename: "b", ContentType: "text/plain", SizeBytes: 1, UploadedAt: base},
	})
	require.Error(t, err)

	// The whole batch rolled back, including the first row.
	count, err := attachments.CountByEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestAttachmentRepository_ByKeyNotFound(t *testing.T) {
	attachments := NewAttachmentRepository(testutil.NewDB(t))

	_, err := attachments.ByKey(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
}

func TestAttachmentRepository_AllKeys(t *testing.T) {
	database := testutil.NewDB(t)
	events := NewEventRepository(database)
	attachments := NewAttachmentRepository(database)
	ctx := context.Background()

	event := seedEvent(t, events, "host", nil, base)
	require.NoError(t, attachments.CreateBatch(ctx, []*model.Attachment{
		{EventID: event.ID, Key: "one", Filename: "a", ContentType: "text/plain", SizeBytes: 1, UploadedAt: base},
		{EventID: event.ID, Key: "two", Filename: "b", ContentType: "text/plain", SizeBytes: 1, UploadedAt: base},
	}))

	keys, err := attachments.AllKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, keys)
}
