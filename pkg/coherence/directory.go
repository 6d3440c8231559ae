package coherence

// DirectoryTarget scans the snapshotted peer list for the first entry
// whose range contains addr, honoring the optional interleave. No match is
// a fatal configuration/protocol error: a directory link wired to a set of
// peers that doesn't cover the address space is a bug in the system
// topology, not a condition the cache can route around.
func (c *Cache) DirectoryTarget(addr uint64) string {
	for _, p := range c.peers {
		if p.Contains(addr) {
			return p.Name
		}
	}
	fatal("DirectoryTarget", "no directory peer covers address", "addr", addr)
	return ""
}
