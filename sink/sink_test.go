package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{name: "simple file", path: "index.ts"},
		{name: "nested", path: "models/index.ts"},
		{name: "dotfile", path: "models/.keep"},
		{name: "empty", path: "", wantErr: "empty"},
		{name: "absolute", path: "/etc/passwd", wantErr: "absolute"},
		{name: "windows drive", path: "C:/out/index.ts", wantErr: "absolute"},
		{name: "traversal", path: "../index.ts", wantErr: "traversal"},
		{name: "embedded traversal", path: "models/../../index.ts", wantErr: "traversal"},
		{name: "duplicate slash", path: "models//index.ts", wantErr: "not clean"},
		{name: "dot segment", path: "./index.ts", wantErr: "not clean"},
		{name: "trailing slash", path: "models/", wantErr: "not clean"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMemorySink(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySink()

	content := []byte("export {};\n")
	require.NoError(t, s.WriteFile(ctx, "models/index.ts", content))
	require.NoError(t, s.WriteFile(ctx, "apiClient.ts", []byte("x")))

	// Stored content is isolated from the caller's buffer.
	content[0] = 'X'
	assert.Equal(t, "export {};\n", string(s.Get("models/index.ts")))

	got := s.Get("models/index.ts")
	got[0] = 'Y'
	assert.Equal(t, "export {};\n", string(s.Get("models/index.ts")))

	assert.Equal(t, []string{"apiClient.ts", "models/index.ts"}, s.Paths())
	assert.Len(t, s.Files(), 2)
	assert.Nil(t, s.Get("missing.ts"))

	assert.Error(t, s.WriteFile(ctx, "../x.ts", nil))

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, s.WriteFile(canceled, "late.ts", nil), context.Canceled)

	s.Reset()
	assert.Empty(t, s.Paths())
}

func TestMemorySink_Concurrent(t *testing.T) {
	s := NewMemorySink()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			path := fmt.Sprintf("unit%02d.ts", i)
			assert.NoError(t, s.WriteFile(context.Background(), path, []byte(path)))
			_ = s.Paths()
		}()
	}
	wg.Wait()
	assert.Len(t, s.Files(), 50)
}

func TestFilesystemSink(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s := NewFilesystemSink(root)

	require.NoError(t, s.WriteFile(ctx, "models/index.ts", []byte("first")))
	data, err := os.ReadFile(filepath.Join(root, "models", "index.ts"))
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))

	info, err := os.Stat(filepath.Join(root, "models", "index.ts"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	require.NoError(t, s.WriteFile(ctx, "models/index.ts", []byte("second")))
	data, err = os.ReadFile(filepath.Join(root, "models", "index.ts"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(filepath.Join(root, "models"))
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".clientgen-"), "temp file left behind: %s", e.Name())
	}
}

func TestFilesystemSink_NoOverwrite(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s := &FilesystemSink{Root: root}

	require.NoError(t, s.WriteFile(ctx, "index.ts", []byte("one")))
	err := s.WriteFile(ctx, "index.ts", []byte("two"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	data, err := os.ReadFile(filepath.Join(root, "index.ts"))
	require.NoError(t, err)
	assert.Equal(t, "one", string(data))
}

func TestFilesystemSink_Concurrent(t *testing.T) {
	root := t.TempDir()
	s := NewFilesystemSink(root)
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			path := fmt.Sprintf("ns%d/index.ts", i%4)
			assert.NoError(t, s.WriteFile(context.Background(), path, []byte(path)))
		}()
	}
	wg.Wait()
	for i := range 4 {
		data, err := os.ReadFile(filepath.Join(root, fmt.Sprintf("ns%d", i), "index.ts"))
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("ns%d/index.ts", i), string(data))
	}
}

func TestFilesystemSink_Errors(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s := NewFilesystemSink(root)

	assert.Error(t, s.WriteFile(ctx, "../escape.ts", nil))
	assert.Error(t, s.WriteFile(ctx, "/abs.ts", nil))

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, s.WriteFile(canceled, "late.ts", nil), context.Canceled)
	_, err := os.Stat(filepath.Join(root, "late.ts"))
	assert.True(t, os.IsNotExist(err))

	// A file where a directory is needed.
	require.NoError(t, os.WriteFile(filepath.Join(root, "blocker"), nil, 0o644))
	assert.Error(t, s.WriteFile(ctx, "blocker/index.ts", nil))
}
