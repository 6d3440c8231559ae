package simtest

import (
	"fmt"

	"github.com/marmos91/cachesim/pkg/coherence"
)

// CheckExclusivity asserts the single-writer invariant across a set of
// peer caches sharing addr: at most one of them may hold the block
// Exclusive or Dirty, and if one does, every other must hold it Invalid.
// Mirrors the way the teacher's cache test suite validates state
// transitions against the cache's own accessors rather than internal
// fields.
func CheckExclusivity(addr uint64, caches map[string]*coherence.Cache) error {
	var owner string
	for name, c := range caches {
		status, present := c.Inspect(addr)
		if !present {
			continue
		}
		if status == coherence.Exclusive || status == coherence.Dirty {
			if owner != "" {
				return fmt.Errorf("both %q and %q hold addr %#x exclusively", owner, name, addr)
			}
			owner = name
		}
	}
	if owner == "" {
		return nil
	}
	for name, c := range caches {
		if name == owner {
			continue
		}
		if status, present := c.Inspect(addr); present && status != coherence.Invalid {
			return fmt.Errorf("%q holds addr %#x exclusively but %q still holds it %s", owner, addr, name, status)
		}
	}
	return nil
}

// CheckSharedConsistency asserts that every cache holding addr Shared
// agrees on the same payload. Callers pass one byte slice per cache, keyed
// by cache name; the slices are compared byte for byte as given.
func CheckSharedConsistency(addr uint64, reads map[string][]byte) error {
	var refName string
	var ref []byte
	for name, data := range reads {
		if ref == nil {
			refName, ref = name, data
			continue
		}
		if string(data) != string(ref) {
			return fmt.Errorf("shared copy at %q disagrees with %q for addr %#x", name, refName, addr)
		}
	}
	return nil
}
