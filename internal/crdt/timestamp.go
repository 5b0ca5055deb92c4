package crdt

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spaolacci/murmur3"
)

const (
	// MaxCounter is the largest logical counter value within one millisecond.
	MaxCounter = 0xFFFF

	// MaxMillis is the first millisecond that can no longer be rendered with
	// a four digit year (10000-01-01T00:00:00.000Z).
	MaxMillis = 253402300800000

	// NodeLength is the width of the node segment in the canonical form.
	NodeLength = 16

	isoLayout = "2006-01-02T15:04:05.000Z"
	zeroNode  = "0000000000000000"
)

// Timestamp is an immutable hybrid logical clock reading: wall-clock
// milliseconds, a logical counter and the id of the node that produced it.
//
// Canonical form: YYYY-MM-DDTHH:mm:ss.sssZ-CCCC-NNNNNNNNNNNNNNNN.
// Ordering by Compare is identical to comparing canonical strings.
type Timestamp struct {
	node    string
	millis  uint64
	counter uint16
}

// New creates a Timestamp. The node is kept verbatim and zero-padded only
// when rendered.
func New(millis uint64, counter uint16, node string) Timestamp {
	return Timestamp{millis: millis, counter: counter, node: node}
}

// Zero returns the smallest timestamp, used as "no clock yet".
func Zero() Timestamp {
	return Timestamp{node: zeroNode}
}

// Max returns the largest representable timestamp.
func Max() Timestamp {
	return Timestamp{millis: MaxMillis - 1, counter: MaxCounter, node: "FFFFFFFFFFFFFFFF"}
}

// Since returns the lowest timestamp inside the given millisecond, the
// lower bound the sync loop resumes from after a merkle diff.
func Since(millis uint64) Timestamp {
	return Timestamp{millis: millis, node: zeroNode}
}

// Millis returns milliseconds since the Unix epoch.
func (t Timestamp) Millis() uint64 { return t.millis }

// Counter returns the logical counter.
func (t Timestamp) Counter() uint16 { return t.counter }

// Node returns the node id as it was given.
func (t Timestamp) Node() string { return t.node }

// NodeKey returns the node as it appears in the canonical form, zero-padded
// to NodeLength. Two timestamps come from the same node iff their keys match.
func (t Timestamp) NodeKey() string { return paddedNode(t.node) }

// Time returns the wall-clock part as time.Time in UTC.
func (t Timestamp) Time() time.Time {
	return time.UnixMilli(int64(t.millis)).UTC()
}

// String renders the canonical 46 character form.
func (t Timestamp) String() string {
	return fmt.Sprintf("%s-%04X-%s", t.Time().Format(isoLayout), t.counter, paddedNode(t.node))
}

// Hash returns the murmur3 (x86, 32 bit, seed 0) hash of the canonical
// string. Every replica has to agree on this value.
func (t Timestamp) Hash() uint32 {
	return murmur3.Sum32([]byte(t.String()))
}

// Compare returns -1, 0 or 1 comparing (millis, counter, node).
func (t Timestamp) Compare(other Timestamp) int {
	switch {
	case t.millis < other.millis:
		return -1
	case t.millis > other.millis:
		return 1
	case t.counter < other.counter:
		return -1
	case t.counter > other.counter:
		return 1
	}
	return strings.Compare(paddedNode(t.node), paddedNode(other.node))
}

// Less reports whether t sorts before other.
func (t Timestamp) Less(other Timestamp) bool {
	return t.Compare(other) < 0
}

// Equal reports whether both timestamps have the same canonical form.
func (t Timestamp) Equal(other Timestamp) bool {
	return t.Compare(other) == 0
}

// IsZero reports whether t is the zero timestamp.
func (t Timestamp) IsZero() bool {
	return t.Equal(Zero())
}

// MarshalText implements encoding.TextMarshaler.
func (t Timestamp) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Timestamp) UnmarshalText(text []byte) error {
	parsed, ok := Parse(string(text))
	if !ok {
		return fmt.Errorf("invalid timestamp %q", string(text))
	}
	*t = parsed
	return nil
}

// Parse reads the canonical form. It never panics and reports false for
// anything that is not a valid timestamp.
func Parse(s string) (Timestamp, bool) {
	parts := strings.Split(s, "-")
	if len(parts) != 5 {
		return Timestamp{}, false
	}

	date, err := time.Parse(isoLayout, strings.Join(parts[:3], "-"))
	if err != nil {
		return Timestamp{}, false
	}
	millis := date.UnixMilli()
	if millis < 0 || millis >= MaxMillis {
		return Timestamp{}, false
	}

	if parts[3] == "" {
		return Timestamp{}, false
	}
	counter, err := strconv.ParseUint(parts[3], 16, 32)
	if err != nil || counter > MaxCounter {
		return Timestamp{}, false
	}

	node := parts[4]
	if len(node) > NodeLength {
		return Timestamp{}, false
	}

	return Timestamp{millis: uint64(millis), counter: uint16(counter), node: node}, true
}

// MustParse is Parse for literals in tests and fixtures.
func MustParse(s string) Timestamp {
	t, ok := Parse(s)
	if !ok {
		panic(fmt.Sprintf("crdt: invalid timestamp %q", s))
	}
	return t
}

func paddedNode(node string) string {
	if len(node) >= NodeLength {
		return node[len(node)-NodeLength:]
	}
	return zeroNode[:NodeLength-len(node)] + node
}
