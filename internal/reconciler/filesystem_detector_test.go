package reconciler

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilesystemDetector_Relevant(t *testing.T) {
	detector := NewFilesystemDetector("/etc/spring-boot-operator", "config.yaml", 100*time.Millisecond)

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{
			name:  "config written",
			event: fsnotify.Event{Name: "/etc/spring-boot-operator/config.yaml", Op: fsnotify.Write},
			want:  true,
		},
		{
			name:  "config created",
			event: fsnotify.Event{Name: "/etc/spring-boot-operator/config.yaml", Op: fsnotify.Create},
			want:  true,
		},
		{
			name:  "configmap mount swapped",
			event: fsnotify.Event{Name: "/etc/spring-boot-operator/..data", Op: fsnotify.Create},
			want:  true,
		},
		{
			name:  "config removed",
			event: fsnotify.Event{Name: "/etc/spring-boot-operator/config.yaml", Op: fsnotify.Remove},
			want:  true,
		},
		{
			name:  "chmod only",
			event: fsnotify.Event{Name: "/etc/spring-boot-operator/config.yaml", Op: fsnotify.Chmod},
			want:  false,
		},
		{
			name:  "other file",
			event: fsnotify.Event{Name: "/etc/spring-boot-operator/notes.txt", Op: fsnotify.Write},
			want:  false,
		},
		{
			name:  "editor swap file",
			event: fsnotify.Event{Name: "/etc/spring-boot-operator/.config.yaml.swp", Op: fsnotify.Write},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detector.relevant(tt.event))
		})
	}
}

func TestFilesystemDetector_StartStop(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "config")

	detector := NewFilesystemDetector(dir, "config.yaml", 50*time.Millisecond)
	assert.Equal(t, SourceFilesystem, detector.GetSource())

	events := make(chan Event, 10)
	require.NoError(t, detector.Start(context.Background(), events))

	// The directory is created when missing
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Starting twice is a no-op
	require.NoError(t, detector.Start(context.Background(), events))

	require.NoError(t, detector.Stop())
	// Stopping twice is a no-op
	require.NoError(t, detector.Stop())
}

func TestFilesystemDetector_EmitsConfigChanged(t *testing.T) {
	dir := t.TempDir()

	detector := NewFilesystemDetector(dir, "config.yaml", 50*time.Millisecond)
	events := make(chan Event, 10)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, detector.Start(ctx, events))
	defer detector.Stop()

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("options: {}\n"), 0644))

	select {
	case event := <-events:
		assert.Equal(t, EventConfigChanged, event.Kind)
		assert.Equal(t, SourceFilesystem, event.Source)
		assert.Equal(t, "config-changed", event.Name())
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for config-changed")
	}
}

func TestFilesystemDetector_Debounce(t *testing.T) {
	dir := t.TempDir()

	detector := NewFilesystemDetector(dir, "config.yaml", 200*time.Millisecond)
	events := make(chan Event, 10)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, detector.Start(ctx, events))
	defer detector.Stop()

	path := filepath.Join(dir, "config.yaml")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("options: {}\n"), 0644))
		time.Sleep(20 * time.Millisecond)
	}

	select {
	case <-events:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for config-changed")
	}

	// Rapid writes collapse into a single event
	select {
	case event := <-events:
		t.Fatalf("unexpected second event %s", event)
	case <-time.After(400 * time.Millisecond):
	}
}

func TestFilesystemDetector_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()

	detector := NewFilesystemDetector(dir, "config.yaml", 50*time.Millisecond)
	events := make(chan Event, 10)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, detector.Start(ctx, events))
	defer detector.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README"), []byte("x"), 0644))

	select {
	case event := <-events:
		t.Fatalf("unexpected event %s", event)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestFilesystemDetector_NoEventAfterStop(t *testing.T) {
	dir := t.TempDir()

	detector := NewFilesystemDetector(dir, "config.yaml", 100*time.Millisecond)
	events := make(chan Event, 10)

	require.NoError(t, detector.Start(context.Background(), events))

	// Arm the debounce timer directly, then stop before it fires
	detector.debounce(events)
	require.NoError(t, detector.Stop())

	select {
	case event := <-events:
		t.Fatalf("unexpected event %s", event)
	case <-time.After(300 * time.Millisecond):
	}
}
