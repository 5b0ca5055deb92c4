package merkle

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/iudanet/gophsync/internal/crdt"
)

const (
	// Radix of the trie keys.
	Radix = 3

	// KeyLength is the number of base-3 digits a key is padded to when it
	// is turned back into a timestamp.
	KeyLength = 16

	// DefaultPruneWidth is how many of the newest children prune keeps.
	DefaultPruneWidth = 2

	bucketMillis = 60 * 1000
)

// Trie is a base-3 prefix trie over one-minute time buckets. Every node
// holds the XOR of the hashes of all timestamps inserted at or beneath it.
//
// A Trie is never modified in place: Insert and Prune return a new root
// that shares unchanged subtrees with the old one, so a root handed out to
// readers is a stable snapshot. A nil *Trie is the empty trie.
type Trie struct {
	children [Radix]*Trie
	Hash     uint32
}

// New returns an empty trie.
func New() *Trie {
	return &Trie{}
}

// Key returns the trie path of a timestamp: its minute bucket in base 3,
// most significant digit first.
func Key(ts crdt.Timestamp) string {
	return strconv.FormatUint(ts.Millis()/bucketMillis, Radix)
}

// KeyToTimestamp turns a (possibly partial) key back into the timestamp of
// the earliest minute it covers. The key is right-padded with zeros.
func KeyToTimestamp(key string) crdt.Timestamp {
	if len(key) < KeyLength {
		key += strings.Repeat("0", KeyLength-len(key))
	}
	minutes, err := strconv.ParseUint(key, Radix, 64)
	if err != nil {
		return crdt.Zero()
	}
	return crdt.Since(minutes * bucketMillis)
}

// Child returns the child for digit 0, 1 or 2, or nil.
func (t *Trie) Child(digit int) *Trie {
	if t == nil || digit < 0 || digit >= Radix {
		return nil
	}
	return t.children[digit]
}

// IsEmpty reports whether nothing was ever inserted.
func (t *Trie) IsEmpty() bool {
	if t == nil {
		return true
	}
	if t.Hash != 0 {
		return false
	}
	for _, c := range t.children {
		if c != nil {
			return false
		}
	}
	return true
}

// RootHash returns the hash of the root, 0 for nil.
func (t *Trie) RootHash() uint32 {
	if t == nil {
		return 0
	}
	return t.Hash
}

// Insert indexes a timestamp under its minute bucket.
func (t *Trie) Insert(ts crdt.Timestamp) *Trie {
	return t.InsertHash(ts, ts.Hash())
}

// InsertHash indexes a timestamp with an explicit hash. Rebuilding from a
// stored log and test fixtures use it.
func (t *Trie) InsertHash(ts crdt.Timestamp, hash uint32) *Trie {
	return t.insertKey(Key(ts), hash)
}

func (t *Trie) insertKey(key string, hash uint32) *Trie {
	next := t.clone()
	next.Hash ^= hash

	if key == "" {
		return next
	}

	d := digit(key[0])
	next.children[d] = next.children[d].insertKey(key[1:], hash)
	return next
}

// Diff finds the earliest minute at which a and b may diverge. It reports
// false when the root hashes are equal. The result is a lower bound: the
// real divergence is at or after it. Pruned or partial tries only move the
// bound earlier.
func Diff(a, b *Trie) (crdt.Timestamp, bool) {
	if a.RootHash() == b.RootHash() {
		return crdt.Timestamp{}, false
	}

	var k strings.Builder
	n1, n2 := a, b
	for {
		diffDigit := -1
		for _, d := range unionDigits(n1, n2) {
			next1, next2 := n1.Child(d), n2.Child(d)
			// Ветка есть только с одной стороны: дальше спускаться нельзя
			if next1 == nil || next2 == nil {
				break
			}
			if next1.Hash != next2.Hash {
				diffDigit = d
				break
			}
		}

		if diffDigit < 0 {
			return KeyToTimestamp(k.String()), true
		}

		k.WriteByte(byte('0' + diffDigit))
		n1 = orEmpty(n1.Child(diffDigit))
		n2 = orEmpty(n2.Child(diffDigit))
	}
}

// Prune keeps only the n highest-digit (newest) children at every level.
// The hash of every retained node is unchanged.
func (t *Trie) Prune(n int) *Trie {
	if t == nil || t.Hash == 0 {
		return t
	}

	next := &Trie{Hash: t.Hash}
	digits := t.digits()
	if n < len(digits) {
		digits = digits[len(digits)-max(n, 0):]
	}
	for _, d := range digits {
		next.children[d] = t.children[d].Prune(n)
	}
	return next
}

// Debug renders the trie as an indented list of path and hash, one node
// per line.
func (t *Trie) Debug() string {
	var b strings.Builder
	t.debug(&b, "", 0)
	return b.String()
}

func (t *Trie) debug(b *strings.Builder, key string, indent int) {
	b.WriteString(strings.Repeat(" ", indent))
	if key != "" {
		fmt.Fprintf(b, "k: %s ", key)
	}
	if t.RootHash() == 0 {
		b.WriteString("hash: (empty)\n")
	} else {
		fmt.Fprintf(b, "hash: %d\n", t.Hash)
	}

	for _, d := range t.digits() {
		t.children[d].debug(b, key+strconv.Itoa(d), indent+2)
	}
}

// Count returns the number of nodes, root included.
func (t *Trie) Count() int {
	if t == nil {
		return 0
	}
	n := 1
	for _, c := range t.children {
		n += c.Count()
	}
	return n
}

func (t *Trie) digits() []int {
	if t == nil {
		return nil
	}
	out := make([]int, 0, Radix)
	for d, c := range t.children {
		if c != nil {
			out = append(out, d)
		}
	}
	return out
}

func (t *Trie) clone() *Trie {
	if t == nil {
		return &Trie{}
	}
	c := *t
	return &c
}

func unionDigits(a, b *Trie) []int {
	out := make([]int, 0, Radix)
	for d := 0; d < Radix; d++ {
		if a.Child(d) != nil || b.Child(d) != nil {
			out = append(out, d)
		}
	}
	return out
}

func orEmpty(t *Trie) *Trie {
	if t == nil {
		return New()
	}
	return t
}

func digit(c byte) int {
	return int(c - '0')
}
