// Package reconcile matches local roadmap items to remote board items and
// computes and applies the changes needed to bring one side in line with
// the other.
//
// There is no persisted link between a local item and its board entry.
// Every run recomputes the mapping from natural keys: the exact title
// first, then the label carried in the item's encoded body block. Matching
// is a linear scan of the board snapshot per local item, which is fine for
// the tens to low hundreds of items a roadmap holds.
//
// Push (local to remote) is split into a pure plan and an apply step so a
// dry run shows exactly what would be sent. Pull (remote to local) only
// ever imports status; the store stays authoritative for every other field.
package reconcile
