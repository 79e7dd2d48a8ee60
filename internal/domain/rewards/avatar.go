package rewards

import (
	"hash/fnv"
	"sync"
)

// AvatarCatalogue resolves the stable default avatar for a user.
type AvatarCatalogue interface {
	DefaultFor(userID string) string
}

// DefaultAvatars hashes user IDs onto a list of avatar paths. The list can be
// swapped at runtime, e.g. after listing the avatar bucket.
type DefaultAvatars struct {
	mu    sync.RWMutex
	paths []string
}

func NewDefaultAvatars(paths []string) *DefaultAvatars {
	d := &DefaultAvatars{}
	d.Replace(paths)
	return d
}

func (d *DefaultAvatars) Replace(paths []string) {
	cp := make([]string, 0, len(paths))
	for _, p := range paths {
		if p != "" {
			cp = append(cp, p)
		}
	}
	d.mu.Lock()
	d.paths = cp
	d.mu.Unlock()
}

func (d *DefaultAvatars) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.paths)
}

func (d *DefaultAvatars) DefaultFor(userID string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if len(d.paths) == 0 {
		return ""
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return d.paths[h.Sum32()%uint32(len(d.paths))]
}
