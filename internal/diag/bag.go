package diag

import (
	"cmp"
	"slices"

	"fortio.org/safecast"
)

// Bag collects diagnostics up to a limit and counts what it had to drop.
type Bag struct {
	items   []Diagnostic
	limit   uint16
	dropped int
	errors  int
}

// NewBag returns a bag holding at most limit diagnostics. A limit that is
// not positive or does not fit in uint16 means 65535.
func NewBag(limit int) *Bag {
	l, err := safecast.Conv[uint16](limit)
	if err != nil || limit <= 0 {
		l = ^uint16(0)
	}
	return &Bag{limit: l}
}

// Add stores d. Once the limit is reached d is counted as dropped and Add
// reports false. Dropped errors still make HasErrors true.
func (b *Bag) Add(d Diagnostic) bool {
	if d.Severity >= SevError {
		b.errors++
	}
	if len(b.items) >= int(b.limit) {
		b.dropped++
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Cap() uint16 { return b.limit }

func (b *Bag) Len() int { return len(b.items) }

// Dropped returns how many diagnostics arrived after the limit.
func (b *Bag) Dropped() int { return b.dropped }

// HasErrors reports whether an error was added, kept or not.
func (b *Bag) HasErrors() bool { return b.errors > 0 }

// Items returns the kept diagnostics. The slice aliases the bag.
func (b *Bag) Items() []Diagnostic { return b.items }

// Sort orders diagnostics by position, then worst severity first, then code.
func (b *Bag) Sort() {
	slices.SortStableFunc(b.items, func(x, y Diagnostic) int {
		return cmp.Or(
			cmp.Compare(x.Primary.File, y.Primary.File),
			cmp.Compare(x.Primary.Start, y.Primary.Start),
			cmp.Compare(x.Primary.End, y.Primary.End),
			cmp.Compare(y.Severity, x.Severity),
			cmp.Compare(x.Code, y.Code),
		)
	})
}
