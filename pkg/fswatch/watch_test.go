package fswatch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdejongh/dirmirror/pkg/logging"
)

func useMemFs(t *testing.T) {
	orig := fs
	fs = afero.NewMemMapFs()
	t.Cleanup(func() { fs = orig })
}

func TestGetDirsToWatch(t *testing.T) {
	useMemFs(t)

	for _, dir := range []string{"/src/a/b", "/src/c", "/other"} {
		require.NoError(t, fs.MkdirAll(dir, 0755))
	}
	require.NoError(t, afero.WriteFile(fs, "/src/a/file.txt", []byte("x"), 0644))

	dirs, err := getDirsToWatch("/src")
	require.NoError(t, err)

	sort.Strings(dirs)
	assert.Equal(t, []string{"/src", "/src/a", "/src/a/b", "/src/c"}, dirs)

	_, err = getDirsToWatch("/missing")
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	useMemFs(t)
	require.NoError(t, fs.MkdirAll("/src/new/inner", 0755))

	var added []string
	w := newWatcher(func(path string) error {
		added = append(added, path)
		return nil
	}, logging.NewNullLogger())

	events := make(chan fsnotify.Event)
	errs := make(chan error)
	ctx, cancel := context.WithCancel(context.Background())
	go w.run(ctx, events, errs)

	// Several events collapse into one pending trigger
	events <- fsnotify.Event{Name: "/src/a.txt", Op: fsnotify.Write}
	events <- fsnotify.Event{Name: "/src/b.txt", Op: fsnotify.Create}
	events <- fsnotify.Event{Name: "/src/new", Op: fsnotify.Create}
	errs <- errors.New("queue overflow")

	cancel()
	<-w.done

	assert.Len(t, w.trigger, 1)
	sort.Strings(added)
	assert.Equal(t, []string{"/src/new", "/src/new/inner"}, added)
}

func TestWatch(t *testing.T) {
	root := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w, err := Watch(ctx, root, nil)
	require.NoError(t, err)
	defer w.Close()

	waitTrigger := func() {
		t.Helper()
		select {
		case <-w.Trigger():
		case <-time.After(5 * time.Second):
			t.Fatal("no trigger after change")
		}
	}

	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0755))
	waitTrigger()

	// Changes inside a directory created after the watch started are seen
	time.Sleep(100 * time.Millisecond)
	drain(w.Trigger())
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "f.txt"), []byte("x"), 0644))
	waitTrigger()
}

func TestWatch_MissingRoot(t *testing.T) {
	_, err := Watch(context.Background(), filepath.Join(t.TempDir(), "absent"), nil)
	assert.Error(t, err)
}

func drain(ch <-chan struct{}) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}
