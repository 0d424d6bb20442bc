// Package flake implements time-ordered, globally unique 128-bit identifiers.
//
// A flake ID is made of three adjacent fields, most significant first:
//
//	| timestamp (64 bits) | node (48 bits) | sequence (16 bits) |
//
// The timestamp is milliseconds since the Unix epoch, the node identifies the
// producer and the sequence disambiguates IDs minted within one millisecond.
// Comparing two IDs as unsigned 128-bit integers is the same as comparing
// (timestamp, node, sequence) lexicographically, so IDs created later on a
// node always sort after earlier ones.
//
// A Generator is not safe for concurrent use. Give each goroutine its own
// Generator (with its own node) or guard a shared one with a mutex.
//
//	gen, err := flake.New(0xC0FFEE)
//	if err != nil {
//		return err
//	}
//	id, err := gen.TryNext()
//	if err != nil {
//		return err // flake.ErrExhausted or flake.ErrTimeDrift
//	}
//	fmt.Println(id) // 24 characters of padded base64
package flake
