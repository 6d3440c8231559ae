// Package coherence implements a set-associative, coherent cache controller
// for a discrete-event simulator of memory hierarchies.
//
// A Cache sits between zero or more upstream requesters (a CPU or a higher
// cache level) and a downstream memory (a lower cache, a directory
// controller reachable over a network link, or a snoop bus). It serves
// load/store requests from its own storage, resolves misses by issuing
// requests downstream, runs a MESI-like coherence protocol against its
// peers, evicts blocks under capacity pressure, and answers invalidation
// and fetch commands originating from the coherence fabric.
//
// The package is single-threaded by design: the simulator kernel drives one
// event through Cache.Dispatch at a time, to completion, before delivering
// the next. Concurrency is simulated, not physical — multiple logical
// transactions (a load, an invalidate, a bus request) can be in flight at
// once, tracked by the tables in tables.go, but only one dispatch call runs
// at any instant. See Links for the narrow interfaces the surrounding
// simulator kernel, snoop-bus arbiter, and directory controller must
// implement.
package coherence
