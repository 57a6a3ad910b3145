package importer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohammadpnp/household-import/internal/application/importer"
	domain "github.com/mohammadpnp/household-import/internal/domain/household"
)

type fakeCanceller struct {
	err       error
	cancelled []string
}

func (f *fakeCanceller) Cancel(userID string) error {
	f.cancelled = append(f.cancelled, userID)
	return f.err
}

type brokenChannel struct{}

func (brokenChannel) Publish(context.Context, string, string, domain.ImportProgress) error {
	return errors.New("connection refused")
}

func (brokenChannel) Current(context.Context, string) (*domain.ImportProgress, error) {
	return nil, errors.New("connection refused")
}

func (brokenChannel) Clear(context.Context, string) error {
	return errors.New("connection refused")
}

func TestProgressServiceCurrent(t *testing.T) {
	t.Parallel()

	channel := newRecordingChannel()
	svc := importer.NewImportProgressService(channel, &fakeCanceller{})

	_, err := svc.Current(context.Background(), owner)
	require.ErrorIs(t, err, importer.ErrProgressMissing)

	require.NoError(t, channel.Publish(context.Background(), owner, domain.EventImportProgress, domain.ImportProgress{RunID: "run-1", ProcessedRecords: 3}))

	p, err := svc.Current(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, "run-1", p.RunID)
	assert.Equal(t, 3, p.ProcessedRecords)

	_, err = svc.Current(context.Background(), "  ")
	assert.ErrorIs(t, err, importer.ErrMissingUser)
}

func TestProgressServiceDismissRemovesSnapshot(t *testing.T) {
	t.Parallel()

	channel := newRecordingChannel()
	svc := importer.NewImportProgressService(channel, &fakeCanceller{})
	require.NoError(t, channel.Publish(context.Background(), owner, domain.EventImportComplete, domain.ImportProgress{RunID: "run-1"}))

	require.NoError(t, svc.Dismiss(context.Background(), owner))

	_, err := svc.Current(context.Background(), owner)
	assert.ErrorIs(t, err, importer.ErrProgressMissing)
}

func TestProgressServiceStoreFailures(t *testing.T) {
	t.Parallel()

	svc := importer.NewImportProgressService(brokenChannel{}, &fakeCanceller{})

	_, err := svc.Current(context.Background(), owner)
	assert.ErrorIs(t, err, importer.ErrGetProgress)
	assert.ErrorIs(t, svc.Dismiss(context.Background(), owner), importer.ErrDismissProgress)
}

func TestProgressServiceCancel(t *testing.T) {
	t.Parallel()

	canceller := &fakeCanceller{}
	svc := importer.NewImportProgressService(newRecordingChannel(), canceller)

	require.NoError(t, svc.Cancel(context.Background(), owner))
	assert.Equal(t, []string{owner}, canceller.cancelled)

	canceller.err = importer.ErrRunNotFound
	assert.ErrorIs(t, svc.Cancel(context.Background(), owner), importer.ErrRunNotFound)
	assert.ErrorIs(t, svc.Cancel(context.Background(), ""), importer.ErrMissingUser)
}
