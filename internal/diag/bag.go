package diag

import (
	"fmt"
	"math"
)

// Bag collects diagnostics for one unit of work (a container, a scan).
type Bag struct {
	items []*Diagnostic
	max   uint16
}

// NewBag creates a bag that keeps at most max diagnostics; max <= 0 means the
// largest limit the bag supports.
func NewBag(max int) *Bag {
	if max <= 0 || max > math.MaxUint16 {
		max = math.MaxUint16
	}
	return &Bag{
		items: make([]*Diagnostic, 0, min(max, 16)),
		max:   uint16(max), //nolint:gosec // clamped above
	}
}

// Add добавляет диагностику, учитывая лимит.
// Возвращает false, если диагностика не добавлена (достигнут лимит).
func (b *Bag) Add(d *Diagnostic) bool {
	if d == nil || len(b.items) >= int(b.max) {
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Cap() uint16 {
	return b.max
}

// HasErrors возвращает true, если есть хотя бы одна диагностика с Severity >= Error
func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Severity >= SevError {
			return true
		}
	}
	return false
}

// HasWarnings возвращает true, если есть хотя бы одно предупреждение.
func (b *Bag) HasWarnings() bool {
	for _, d := range b.items {
		if d.Severity == SevWarning {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items возвращает read-only slice диагностик.
// ВАЖНО: не модифицируйте возвращаемый срез, он указывает на внутренний массив Bag.
func (b *Bag) Items() []*Diagnostic {
	return b.items
}

// Count returns how many diagnostics carry the code.
func (b *Bag) Count(code Code) int {
	n := 0
	for _, d := range b.items {
		if d.Code == code {
			n++
		}
	}
	return n
}

// Merge appends the other bag's diagnostics, respecting this bag's limit.
// Order is preserved: everything from b first, then other in its own order.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	for _, d := range other.items {
		if !b.Add(d) {
			return
		}
	}
}

// Dedup drops repeated diagnostics, keeping the first occurrence.
// Diagnostics without a span are keyed by their declaration and message.
func (b *Bag) Dedup() {
	seen := make(map[string]struct{}, len(b.items))
	kept := b.items[:0]
	for _, d := range b.items {
		key := fmt.Sprintf("%s:%s:%s:%s", d.Code.ID(), d.Primary.String(), d.Decl, d.Message)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, d)
	}
	clear(b.items[len(kept):])
	b.items = kept
}
