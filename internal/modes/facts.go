package modes

import (
	"os"
	"sync"

	"tview/internal/config"
)

// Facts caches the filesystem-derived facts the producers render from: the
// config section view, its raw text, and the public key inventory.
// Renderers only read the cached copy, so composing a frame never touches
// the disk; the app calls Refresh on its input-event throttle, on the
// refresh key and after a config reload.
type Facts struct {
	configPath string
	dataDir    string

	mu   sync.RWMutex
	file *config.File
	text string
	keys []sshKey
}

// NewFacts builds the cache and performs the first read.
func NewFacts(configPath, dataDir string) *Facts {
	f := &Facts{configPath: configPath, dataDir: dataDir, file: &config.File{}}
	f.Refresh()
	return f
}

// Refresh re-reads the config file and rescans the key directories.
// Safe to call from any goroutine; readers see either the old or the new
// snapshot, never a mix.
func (f *Facts) Refresh() {
	file, err := config.OpenFile(f.configPath)
	if err != nil {
		file = &config.File{}
	}
	data, _ := os.ReadFile(f.configPath)
	keys := listKeys(f.dataDir)

	f.mu.Lock()
	f.file = file
	f.text = string(data)
	f.keys = keys
	f.mu.Unlock()
}

func (f *Facts) view() *config.File {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.file
}

func (f *Facts) raw() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.text
}

func (f *Facts) keyList() []sshKey {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.keys
}
