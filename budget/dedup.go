package budget

import (
	"fmt"
	"hash/fnv"

	"github.com/tokenfit/tokenfit/message"
)

// DefaultDedupBuffer is how many recent message hashes a Deduper remembers.
const DefaultDedupBuffer = 64

// Deduper folds duplicate messages. It keeps a small per-session buffer of
// recently seen content hashes; like the Manager it expects sequential
// calls from a single session.
type Deduper struct {
	seen  map[uint64]bool
	order []uint64
	limit int
}

// NewDeduper creates a Deduper remembering up to limit recent hashes (zero
// means DefaultDedupBuffer).
func NewDeduper(limit int) *Deduper {
	if limit <= 0 {
		limit = DefaultDedupBuffer
	}
	return &Deduper{seen: make(map[uint64]bool), limit: limit}
}

func hashMessage(m message.Message) uint64 {
	h := fnv.New64a()
	h.Write([]byte(m.Role))
	h.Write([]byte{0})
	h.Write([]byte(m.Text()))
	return h.Sum64()
}

// Remember records the message and reports whether it was already in the
// buffer. The oldest hash is evicted once the buffer is full.
func (d *Deduper) Remember(m message.Message) bool {
	h := hashMessage(m)
	if d.seen[h] {
		return true
	}
	d.seen[h] = true
	d.order = append(d.order, h)
	if len(d.order) > d.limit {
		delete(d.seen, d.order[0])
		d.order = d.order[1:]
	}
	return false
}

// Fold collapses consecutive duplicate messages into a single message
// annotated with the repeat count. Returns a new slice and the number of
// messages folded away; the input is not modified.
func (d *Deduper) Fold(msgs []message.Message) ([]message.Message, int) {
	if len(msgs) == 0 {
		return nil, 0
	}
	out := make([]message.Message, 0, len(msgs))
	folded := 0

	i := 0
	for i < len(msgs) {
		run := 1
		h := hashMessage(msgs[i])
		for i+run < len(msgs) && hashMessage(msgs[i+run]) == h {
			run++
		}
		m := msgs[i]
		if run > 1 {
			m.Content = fmt.Sprintf("%s (repeated %d times)", m.Content, run)
			folded += run - 1
		}
		out = append(out, m)
		i += run
	}
	return out, folded
}
