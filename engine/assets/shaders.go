// Package assets loads shader sources from disk and keeps them fresh: a
// filesystem watcher marks entries dirty on write, and the renderer
// recompiles dirty programs on the next frame.
package assets

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/tectonic3d/tectonic/engine/core"
)

type shaderEntry struct {
	path   string
	source string
	dirty  bool
}

type ShaderStore struct {
	mutex   sync.RWMutex
	shaders map[string]*shaderEntry

	done     chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
}

func NewShaderStore() (*ShaderStore, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &ShaderStore{
		shaders:  make(map[string]*shaderEntry),
		fsnotify: fsWatch,
		done:     make(chan struct{}),
	}, nil
}

// Initialize loads every .vert and .frag file under shaderDir and starts
// watching the directory for changes.
func (ss *ShaderStore) Initialize(shaderDir string) error {
	entries, err := os.ReadDir(shaderDir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".vert" && ext != ".frag" {
			continue
		}
		if err := ss.load(filepath.Join(shaderDir, entry.Name())); err != nil {
			return err
		}
	}

	if err := ss.fsnotify.Add(shaderDir); err != nil {
		return err
	}

	go ss.watch()
	return nil
}

func (ss *ShaderStore) load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	name := filepath.Base(path)
	ss.mutex.Lock()
	ss.shaders[name] = &shaderEntry{path: path, source: string(data)}
	ss.mutex.Unlock()

	core.LogDebug("loaded shader source '%s'", name)
	return nil
}

// Source returns the current source text for a shader file name (e.g.
// "terrain.frag") and whether it exists.
func (ss *ShaderStore) Source(name string) (string, bool) {
	ss.mutex.RLock()
	defer ss.mutex.RUnlock()
	entry, ok := ss.shaders[name]
	if !ok {
		return "", false
	}
	return entry.source, true
}

// ConsumeDirty reports whether the named shader changed since the last
// call and clears the flag.
func (ss *ShaderStore) ConsumeDirty(name string) bool {
	ss.mutex.Lock()
	defer ss.mutex.Unlock()
	entry, ok := ss.shaders[name]
	if !ok || !entry.dirty {
		return false
	}
	entry.dirty = false
	return true
}

func (ss *ShaderStore) watch() {
	for {
		select {
		case e, ok := <-ss.fsnotify.Events:
			if !ok {
				return
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}

			name := filepath.Base(e.Name)
			ss.mutex.RLock()
			_, tracked := ss.shaders[name]
			ss.mutex.RUnlock()
			if !tracked {
				continue
			}

			if err := ss.load(e.Name); err != nil {
				core.LogWarn("failed to reload shader '%s': %s", name, err)
				continue
			}
			ss.mutex.Lock()
			ss.shaders[name].dirty = true
			ss.mutex.Unlock()
			core.LogInfo("shader '%s' changed on disk, marked for recompile", name)

		case err, ok := <-ss.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogWarn("shader watcher error: %s", err)

		case <-ss.done:
			ss.fsnotify.Close()
			return
		}
	}
}

func (ss *ShaderStore) Shutdown() error {
	ss.mutex.Lock()
	defer ss.mutex.Unlock()
	if ss.isClosed {
		return nil
	}
	ss.isClosed = true
	close(ss.done)
	return nil
}
