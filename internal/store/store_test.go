// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPath_Deterministic(t *testing.T) {
	s := New("output")
	k := Key{Producer: "gemma3:4b", Category: "cmake", Topic: "01_cmake", Ext: ".md"}

	want := filepath.Join("output", "gemma3_4b", "cmake", "01_cmake.md")
	assert.Equal(t, want, s.Path(k))
	assert.Equal(t, s.Path(k), s.Path(k))
}

func TestWriteReadExists(t *testing.T) {
	s := New(t.TempDir())
	k := Key{Producer: "claude", Category: "concurrency", Topic: "01_jthread", Ext: ".md"}

	assert.False(t, s.Exists(k))
	_, err := s.Read(k)
	require.Error(t, err)

	require.NoError(t, s.Write(k, []byte("# std::jthread\n")))
	assert.True(t, s.Exists(k))

	data, err := s.Read(k)
	require.NoError(t, err)
	assert.Equal(t, "# std::jthread\n", string(data))
}

func TestWrite_Overwrites(t *testing.T) {
	s := New(t.TempDir())
	k := Key{Producer: "p", Category: "c", Topic: "t", Ext: ".json"}

	require.NoError(t, s.Write(k, []byte("old")))
	require.NoError(t, s.Write(k, []byte("new")))

	data, err := s.Read(k)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestWrite_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	k := Key{Producer: "p", Category: "c", Topic: "t", Ext: ".md"}
	require.NoError(t, s.Write(k, []byte("content")))

	entries, err := os.ReadDir(filepath.Join(dir, "p", "c"))
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".store-"), "leftover temp file %s", e.Name())
	}
}

// A reader polling the store during concurrent writes must only ever observe
// complete artifacts.
func TestWrite_AtomicUnderConcurrentReads(t *testing.T) {
	s := New(t.TempDir())
	k := Key{Producer: "p", Category: "c", Topic: "t", Ext: ".md"}

	first := strings.Repeat("a", 64*1024)
	second := strings.Repeat("b", 64*1024)
	require.NoError(t, s.Write(k, []byte(first)))

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			data, err := s.Read(k)
			if err != nil {
				continue
			}
			got := string(data)
			if got != first && got != second {
				t.Errorf("observed partial artifact (%d bytes)", len(got))
				return
			}
		}
	}()

	for i := 0; i < 50; i++ {
		content := first
		if i%2 == 0 {
			content = second
		}
		require.NoError(t, s.Write(k, []byte(content)))
	}
	close(done)
	wg.Wait()
}

func TestKeyString(t *testing.T) {
	k := Key{Producer: "claude", Category: "cmake", Topic: "01_cmake", Ext: ".md"}
	assert.Equal(t, "claude/cmake/01_cmake", k.String())
}
