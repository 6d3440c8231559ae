package coherence

// LoadDirection records which way a load's fill request travels: Down
// toward memory, or Up toward a CPU/upstream cache (used when a directory
// Fetch asks us to pull fresher data from above).
type LoadDirection int

const (
	LoadDown LoadDirection = iota
	LoadUp
)

// waitingEvent is one entry queued behind a LoadInfo or an Invalidation,
// to be replayed once that transaction settles.
type waitingEvent struct {
	ev        *Event
	src       Source
	issueTime int64
}

// LoadInfo coalesces every concurrent miss on the same block into one
// outbound request.
type LoadInfo struct {
	BaseAddr    uint64
	InitiatingID EventID
	TargetBlock *Block // set once a victim/slot has been chosen
	Direction   LoadDirection

	queue []waitingEvent

	// BusEvent is the in-flight bus request for this load's fill, if the
	// fill was issued over the snoop bus; cancellable.
	BusEvent *Event
}

// LoadTable is keyed by BaseAddr.
type LoadTable struct {
	entries map[uint64]*LoadInfo
}

func NewLoadTable() *LoadTable { return &LoadTable{entries: make(map[uint64]*LoadInfo)} }

func (t *LoadTable) Get(addr uint64) (*LoadInfo, bool) {
	li, ok := t.entries[addr]
	return li, ok
}

func (t *LoadTable) Put(li *LoadInfo) { t.entries[li.BaseAddr] = li }

func (t *LoadTable) Delete(addr uint64) { delete(t.entries, addr) }

func (li *LoadInfo) Enqueue(ev *Event, src Source, now int64) {
	li.queue = append(li.queue, waitingEvent{ev: ev, src: src, issueTime: now})
}

func (li *LoadInfo) Drain() []waitingEvent {
	q := li.queue
	li.queue = nil
	return q
}

func (li *LoadInfo) Empty() bool { return len(li.queue) == 0 }

// Invalidation tracks one outstanding broadcast invalidate for an address.
type Invalidation struct {
	IssuingID       EventID
	BaseAddr        uint64
	TargetBlock     *Block // nil when the invalidate is opportunistic
	NewStatusOnACK  Status
	WaitingACKs     int
	CanCancel       bool
	BusEvent        *Event

	queue []waitingEvent
}

// InvalidationTable is keyed by BaseAddr.
type InvalidationTable struct {
	entries map[uint64]*Invalidation
}

func NewInvalidationTable() *InvalidationTable {
	return &InvalidationTable{entries: make(map[uint64]*Invalidation)}
}

func (t *InvalidationTable) Get(addr uint64) (*Invalidation, bool) {
	inv, ok := t.entries[addr]
	return inv, ok
}

func (t *InvalidationTable) Put(inv *Invalidation) { t.entries[inv.BaseAddr] = inv }

func (t *InvalidationTable) Delete(addr uint64) { delete(t.entries, addr) }

func (inv *Invalidation) Enqueue(ev *Event, src Source) {
	inv.queue = append(inv.queue, waitingEvent{ev: ev, src: src})
}

func (inv *Invalidation) Drain() []waitingEvent {
	q := inv.queue
	inv.queue = nil
	return q
}

// supplyKey identifies one in-flight SupplyInProgress transaction.
type supplyKey struct {
	addr uint64
	peer string
}

// SupplyInProgress is a single outstanding reply to a peer's RequestData.
type SupplyInProgress struct {
	Addr     uint64
	Peer     string
	BusEvent *Event
	Canceled bool
}

// SupplyTable is keyed by (address, peer); at most one uncancelled entry
// may exist per key at a time.
type SupplyTable struct {
	entries map[supplyKey]*SupplyInProgress
}

func NewSupplyTable() *SupplyTable { return &SupplyTable{entries: make(map[supplyKey]*SupplyInProgress)} }

func (t *SupplyTable) Get(addr uint64, peer string) (*SupplyInProgress, bool) {
	s, ok := t.entries[supplyKey{addr, peer}]
	return s, ok
}

func (t *SupplyTable) Put(s *SupplyInProgress) {
	t.entries[supplyKey{s.Addr, s.Peer}] = s
}

func (t *SupplyTable) Delete(addr uint64, peer string) {
	delete(t.entries, supplyKey{addr, peer})
}
