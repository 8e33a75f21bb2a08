// Package planogram implements the layout state core of Shelfstack: the
// multi-door container model, the pure mutation engine, the placement
// validation engine, and the conflict reporter.
//
// # Model
//
// A [Container] maps door identifiers to [Door] values and records the
// physical left-to-right door order. Each door holds shelves ([Row], ordered
// top to bottom), each row holds an ordered sequence of [Stack] values, and
// each stack is a bottom-first pile of [Item] instances. Single-door units
// are simply containers with one entry; there is no separate single-door
// representation.
//
// # Immutability
//
// Mutations never modify their input. Every [Engine] operation deep-clones
// the container, applies the change to the clone, and returns it. On any
// rule failure the original container is returned unchanged together with a
// coded error from pkg/errors; partial mutations cannot be observed.
// Consumers may therefore hold references to old snapshots (the history log
// does exactly that) without defensive copying.
//
// # Checks
//
// Two constraint families apply. Physical constraints (stack height against
// the shelf's maximum, stack stability: nothing wider than the founding item
// may sit above it) hold unconditionally. Business constraints (shelf width
// capacity, allowed product types) apply only while rule enforcement is
// enabled on the [Engine]. Both validation and mutation apply the same
// checks, so a stale validation result can never smuggle an illegal
// placement past the engine.
package planogram
