package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdejongh/dirmirror/pkg/compare"
	"github.com/sdejongh/dirmirror/pkg/models"
)

func newOperation(source, dest string, interval time.Duration, maxPasses int) *models.MirrorOperation {
	return &models.MirrorOperation{
		ID:         "test",
		SourcePath: source,
		DestPath:   dest,
		Interval:   interval,
		BufferSize: 4096,
		MaxPasses:  maxPasses,
		CreatedAt:  time.Now(),
	}
}

func newTestDriver(fs afero.Fs, op *models.MirrorOperation, opts ...Option) *Driver {
	opts = append([]Option{WithFs(fs)}, opts...)
	return NewDriver(op, compare.NewBinaryComparator(op.BufferSize), nil, nil, opts...)
}

func receiveReport(t *testing.T, reports <-chan *models.PassReport) *models.PassReport {
	t.Helper()
	select {
	case report := <-reports:
		return report
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a pass")
		return nil
	}
}

func TestDriver_Prepare(t *testing.T) {
	t.Run("SourceMissing", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		d := newTestDriver(fs, newOperation("/missing", "/dest", time.Second, 0))

		_, err := d.Prepare(context.Background())
		assert.True(t, errors.Is(err, ErrSourceMissing))
	})

	t.Run("SourceIsFile", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/source", []byte("x"), 0644))
		d := newTestDriver(fs, newOperation("/source", "/dest", time.Second, 0))

		_, err := d.Prepare(context.Background())
		assert.True(t, errors.Is(err, ErrSourceMissing))
	})

	t.Run("CreatesDestination", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, fs.MkdirAll("/source", 0755))
		d := newTestDriver(fs, newOperation("/source", "/backup/mirror", time.Second, 0))

		executor, err := d.Prepare(context.Background())
		require.NoError(t, err)
		require.NotNil(t, executor)

		info, err := fs.Stat("/backup/mirror")
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("DestinationUncreatable", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, fs.MkdirAll("/source", 0755))
		d := newTestDriver(afero.NewReadOnlyFs(fs), newOperation("/source", "/dest", time.Second, 0))

		_, err := d.Prepare(context.Background())
		assert.True(t, errors.Is(err, ErrDestUncreatable))
	})

	t.Run("DestinationIsFile", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, fs.MkdirAll("/source", 0755))
		require.NoError(t, afero.WriteFile(fs, "/dest", []byte("x"), 0644))
		d := newTestDriver(fs, newOperation("/source", "/dest", time.Second, 0))

		_, err := d.Prepare(context.Background())
		assert.True(t, errors.Is(err, ErrDestNotDirectory))
	})

	t.Run("NestedPaths", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, fs.MkdirAll("/source/inner", 0755))

		for _, dest := range []string{"/source", "/source/inner", "/"} {
			d := newTestDriver(fs, newOperation("/source", dest, time.Second, 0))
			_, err := d.Prepare(context.Background())
			assert.True(t, errors.Is(err, ErrNestedPaths), "dest %s", dest)
		}
	})

	t.Run("DryRunNeedsDestination", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, fs.MkdirAll("/source", 0755))
		op := newOperation("/source", "/dest", time.Second, 1)
		op.DryRun = true
		d := newTestDriver(fs, op)

		_, err := d.Prepare(context.Background())
		assert.True(t, errors.Is(err, ErrDestMissing))

		exists, err := afero.DirExists(fs, "/dest")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("InvalidOperation", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, fs.MkdirAll("/source", 0755))
		d := newTestDriver(fs, newOperation("/source", "/dest", 0, 0))

		_, err := d.Prepare(context.Background())
		var validationErr *models.ValidationError
		assert.True(t, errors.As(err, &validationErr))
	})
}

func TestDriver_Run(t *testing.T) {
	t.Run("FatalPrecondition", func(t *testing.T) {
		d := newTestDriver(afero.NewMemMapFs(), newOperation("/missing", "/dest", time.Second, 0))
		err := d.Run(context.Background())
		assert.True(t, errors.Is(err, ErrSourceMissing))
	})

	t.Run("MaxPasses", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, fs.MkdirAll("/source", 0755))
		require.NoError(t, afero.WriteFile(fs, "/source/a.txt", []byte("a"), 0644))

		var reports []*models.PassReport
		d := newTestDriver(fs, newOperation("/source", "/dest", time.Second, 1),
			WithPassHook(func(r *models.PassReport) { reports = append(reports, r) }))

		require.NoError(t, d.Run(context.Background()))
		require.Len(t, reports, 1)
		assert.Equal(t, 1, reports[0].Stats.FilesCreated)

		data, err := afero.ReadFile(fs, "/dest/a.txt")
		require.NoError(t, err)
		assert.Equal(t, "a", string(data))
	})

	t.Run("WaitsForInterval", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, fs.MkdirAll("/source", 0755))
		clock := clockwork.NewFakeClock()
		reports := make(chan *models.PassReport, 4)

		d := newTestDriver(fs, newOperation("/source", "/dest", 10*time.Second, 3),
			WithClock(clock),
			WithPassHook(func(r *models.PassReport) { reports <- r }))

		done := make(chan error, 1)
		go func() { done <- d.Run(context.Background()) }()

		first := receiveReport(t, reports)
		assert.Empty(t, first.Records)

		// Changes made during the wait are picked up by the next pass
		clock.BlockUntil(1)
		require.NoError(t, afero.WriteFile(fs, "/source/new.txt", []byte("new"), 0644))
		clock.Advance(5 * time.Second)
		select {
		case <-reports:
			t.Fatal("pass started before the interval elapsed")
		case <-time.After(50 * time.Millisecond):
		}
		clock.Advance(5 * time.Second)

		second := receiveReport(t, reports)
		assert.Equal(t, 1, second.Stats.FilesCreated)

		clock.BlockUntil(1)
		clock.Advance(10 * time.Second)
		third := receiveReport(t, reports)
		assert.Empty(t, third.Records)

		require.NoError(t, <-done)
	})

	t.Run("CancelDuringWait", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, fs.MkdirAll("/source", 0755))
		clock := clockwork.NewFakeClock()
		reports := make(chan *models.PassReport, 4)

		d := newTestDriver(fs, newOperation("/source", "/dest", time.Hour, 0),
			WithClock(clock),
			WithPassHook(func(r *models.PassReport) { reports <- r }))

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- d.Run(ctx) }()

		receiveReport(t, reports)
		clock.BlockUntil(1)
		cancel()

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("driver did not stop on cancellation")
		}
		assert.Empty(t, reports)
	})

	t.Run("TriggerWakesEarly", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, fs.MkdirAll("/source", 0755))
		clock := clockwork.NewFakeClock()
		trigger := make(chan struct{}, 1)
		reports := make(chan *models.PassReport, 4)

		d := newTestDriver(fs, newOperation("/source", "/dest", time.Hour, 2),
			WithClock(clock),
			WithTrigger(trigger),
			WithPassHook(func(r *models.PassReport) { reports <- r }))

		done := make(chan error, 1)
		go func() { done <- d.Run(context.Background()) }()

		receiveReport(t, reports)
		clock.BlockUntil(1)
		require.NoError(t, afero.WriteFile(fs, "/source/changed.txt", []byte("c"), 0644))
		trigger <- struct{}{}

		second := receiveReport(t, reports)
		assert.Equal(t, 1, second.Stats.FilesCreated)
		require.NoError(t, <-done)
	})
}
