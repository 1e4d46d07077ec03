package kernel

import "github.com/achilleasa/go-viewshed/layer"

// Operator is the aggregation operator combining a new ray pass's verdict
// with the prior visibility value at a cell — spec §9's Design Notes call
// for "a small sum type with known members ... rather than an arbitrary
// callback, to preserve optimization opportunities and to make
// commutativity/idempotence statically known."
type Operator uint8

const (
	// Or is the default operator: a cell is visible if any ray pass
	// marked it visible. Commutative and idempotent — safe under
	// reordering and duplicate delivery (spec §5, §8).
	Or Operator = iota

	// And marks a cell visible only if every ray pass that touched it
	// agreed. Commutative and idempotent.
	And

	// Sum accumulates the number of ray passes that marked a cell
	// visible. Commutative but NOT idempotent: a duplicated message
	// changes the sum. Provided for completeness; spec §5 notes that a
	// non-idempotent operator would require the bus to gain per-task
	// exactly-once delivery, which this design does not implement.
	Sum

	// Debug stores the most recently observed value verbatim, useful
	// when inspecting a single ray pass in isolation. Not commutative
	// (result depends on evaluation order) and not idempotent.
	Debug
)

// visible/invisible are the two Boolean pass results the kernel can feed
// into an Operator.
const (
	visibleValue   int16 = 1
	invisibleValue int16 = 0
)

// Apply combines the operator's prior aggregate at a cell with a new pass
// result. existing == layer.NoData means the cell has never been touched
// by a ray pass before, distinct from a cell a pass has already marked
// invisible (0) — that distinction matters for And, which must not let an
// untouched cell vacuously fail the conjunction.
func (op Operator) Apply(existing int16, pass bool) int16 {
	touched := existing != layer.NoData
	passValue := invisibleValue
	if pass {
		passValue = visibleValue
	}

	switch op {
	case And:
		if !touched {
			return passValue
		}
		if existing == invisibleValue || passValue == invisibleValue {
			return invisibleValue
		}
		return visibleValue
	case Sum:
		if !touched {
			existing = 0
		}
		return existing + passValue
	case Debug:
		return passValue
	case Or:
		fallthrough
	default:
		if !touched {
			return passValue
		}
		if passValue == visibleValue {
			return visibleValue
		}
		return existing
	}
}

// Idempotent reports whether op is safe under the duplicate-delivery
// tolerance spec §5 requires of the Ray Packet Bus.
func (op Operator) Idempotent() bool {
	return op == Or || op == And
}
