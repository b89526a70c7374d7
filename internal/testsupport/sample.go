package testsupport

import (
	"context"
	"path"
	"sort"
	"strings"
	"sync"

	"samplebot/internal/sample"
)

// FakeAudioSource returns a fixed Audio value or error and records requests.
type FakeAudioSource struct {
	Audio sample.Audio
	Err   error
	// Block, when set, is received from before Fetch returns.
	Block <-chan struct{}

	mu       sync.Mutex
	requests []string
}

var _ sample.AudioSource = (*FakeAudioSource)(nil)

// Fetch implements sample.AudioSource.
func (f *FakeAudioSource) Fetch(ctx context.Context, sourceURL, format string) (sample.Audio, error) {
	f.mu.Lock()
	f.requests = append(f.requests, sourceURL+" "+format)
	f.mu.Unlock()
	if f.Block != nil {
		select {
		case <-f.Block:
		case <-ctx.Done():
			return sample.Audio{}, ctx.Err()
		}
	}
	if f.Err != nil {
		return sample.Audio{}, f.Err
	}
	return f.Audio, nil
}

// Requests returns "url format" for every Fetch call so far.
func (f *FakeAudioSource) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

// FakeObjectStore keeps uploads in memory and links them as
// https://share.test<path>.
type FakeObjectStore struct {
	UploadErr error
	LinkErr   error
	ListErr   error
	// Dirs are listed as directory entries under their parent.
	Dirs []string

	mu    sync.Mutex
	files map[string][]byte
	links []string
}

var _ sample.ObjectStore = (*FakeObjectStore)(nil)

// NewObjectStore returns a FakeObjectStore seeded with empty files at paths.
func NewObjectStore(paths ...string) *FakeObjectStore {
	store := &FakeObjectStore{files: make(map[string][]byte)}
	for _, p := range paths {
		store.files[p] = nil
	}
	return store
}

// Upload implements sample.ObjectStore. Conflicting paths are renamed with a
// " (1)" suffix before the extension.
func (f *FakeObjectStore) Upload(_ context.Context, target string, data []byte) (string, error) {
	if f.UploadErr != nil {
		return "", f.UploadErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.files == nil {
		f.files = make(map[string][]byte)
	}
	written := target
	if _, exists := f.files[written]; exists {
		ext := path.Ext(target)
		written = strings.TrimSuffix(target, ext) + " (1)" + ext
	}
	f.files[written] = append([]byte(nil), data...)
	return written, nil
}

// CreateSharedLink implements sample.ObjectStore.
func (f *FakeObjectStore) CreateSharedLink(_ context.Context, target string) (string, error) {
	if f.LinkErr != nil {
		return "", f.LinkErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.links = append(f.links, target)
	return "https://share.test" + target, nil
}

// List implements sample.ObjectStore.
func (f *FakeObjectStore) List(_ context.Context, dir string) ([]sample.Entry, error) {
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var entries []sample.Entry
	for p := range f.files {
		if path.Dir(p) == dir {
			entries = append(entries, sample.Entry{Path: p})
		}
	}
	for _, d := range f.Dirs {
		if path.Dir(d) == dir {
			entries = append(entries, sample.Entry{Path: d, IsDir: true})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

// File returns the stored bytes for p.
func (f *FakeObjectStore) File(p string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[p]
	return data, ok
}

// Links returns the paths shared so far.
func (f *FakeObjectStore) Links() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.links...)
}
