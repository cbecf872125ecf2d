package bridge

import "sync"

// factCache holds slow-changing facts fetched from the tray process.
// Each slot is populated at most once per process lifetime; a nil
// pointer means not yet fetched, which is distinct from a cached empty
// string.
type factCache struct {
	mu   sync.Mutex
	user *string
	mosh *string
	ssh  *string
}

func (c *factCache) userName() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return "", false
	}
	return *c.user, true
}

func (c *factCache) setUserName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = &name
}

func (c *factCache) executablePath(mosh bool) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	slot := c.slot(mosh)
	if *slot == nil {
		return "", false
	}
	return **slot, true
}

func (c *factCache) setExecutablePath(mosh bool, path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	*c.slot(mosh) = &path
}

// slot selects between the two independent executable path slots.
// Callers hold c.mu.
func (c *factCache) slot(mosh bool) **string {
	if mosh {
		return &c.mosh
	}
	return &c.ssh
}
