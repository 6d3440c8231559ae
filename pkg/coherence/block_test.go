package coherence

import "testing"

func TestStorageFindBlockPrefersExactTagOverEmpty(t *testing.T) {
	s := NewStorage(2, 2, 64)
	row := s.Row(0)
	row.Blocks[0].BaseAddr = 0
	row.Blocks[0].Status = Shared

	blk, ok := s.FindBlock(0, true)
	if !ok || blk != &row.Blocks[0] {
		t.Fatalf("expected to find the existing tagged block, got %+v ok=%v", blk, ok)
	}
}

func TestStorageFindBlockReturnsInvalidSlotWhenEmptyOK(t *testing.T) {
	s := NewStorage(1, 2, 64)
	blk, ok := s.FindBlock(0, true)
	if !ok || blk.Status != Invalid {
		t.Fatalf("expected an Invalid slot, got %+v ok=%v", blk, ok)
	}
}

func TestStorageFindBlockMissWithoutEmptyOK(t *testing.T) {
	s := NewStorage(1, 2, 64)
	_, ok := s.FindBlock(0, false)
	if ok {
		t.Fatal("expected a miss when emptyOK is false and nothing is cached")
	}
}

func TestGetLRUSkipsLockedBlocks(t *testing.T) {
	s := NewStorage(1, 2, 64)
	row := s.Row(0)
	row.Blocks[0].LastTouched = 1
	row.Blocks[0].LockedCount = 1 // locked, ineligible
	row.Blocks[1].LastTouched = 2

	victim := s.GetLRU(row)
	if victim != &row.Blocks[1] {
		t.Fatalf("expected the unlocked block to be chosen, got %+v", victim)
	}
}

func TestGetLRUReturnsNilWhenEveryWayLocked(t *testing.T) {
	s := NewStorage(1, 2, 64)
	row := s.Row(0)
	row.Blocks[0].LockedCount = 1
	row.Blocks[1].LockedCount = 1

	if victim := s.GetLRU(row); victim != nil {
		t.Fatalf("expected no victim when every way is locked, got %+v", victim)
	}
}

func TestRowEnqueueDrainAddrLeavesOthersUntouched(t *testing.T) {
	row := &Row{Blocks: make([]Block, 1)}
	evA := &Event{Addr: 0x40}
	evB := &Event{Addr: 0x80}
	row.Enqueue(evA, Upstream, 0x40, true)
	row.Enqueue(evB, Upstream, 0x80, true)

	drained := row.DrainAddr(0x40)
	if len(drained) != 1 || drained[0].ev != evA {
		t.Fatalf("expected only evA drained, got %+v", drained)
	}
	remaining := row.DrainAny()
	if len(remaining) != 0 {
		t.Fatalf("evB was parked with an address, not as an any-slot waiter, got %+v", remaining)
	}
	if len(row.DrainAddr(0x80)) != 1 {
		t.Fatal("evB should still be parked for its own address")
	}
}

func TestBlockLockUnlockTracksCount(t *testing.T) {
	var b Block
	if !b.Lockable() {
		t.Fatal("a fresh block should be lockable")
	}
	b.Lock()
	b.Lock()
	if b.Lockable() {
		t.Fatal("a block with LockedCount > 0 must not be lockable")
	}
	b.Unlock()
	if b.Lockable() {
		t.Fatal("one unlock should not fully release a double lock")
	}
	b.Unlock()
	if !b.Lockable() {
		t.Fatal("releasing both locks should make the block lockable again")
	}
	b.Unlock() // unlock past zero must not underflow
	if b.LockedCount != 0 {
		t.Fatalf("LockedCount must not go negative, got %d", b.LockedCount)
	}
}
