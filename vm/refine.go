package vm

// splitByCRBit computes the pair (valueIfFalse, valueIfTrue) that should
// replace left in the not-taken and taken forks of a conditional branch
// that tests CR bit crb (0=lt, 1=gt, 2=eq, 3=so) of a field whose operands
// were (left, right). This is CR-driven refinement: turning a data-flow
// back-edge into a search, at branch time, for any register still tagged
// with the compare's result (see VM.setComparisonResult).
//
// All arithmetic on bounds wraps, matching Go's native uint32 semantics, so
// a refinement against 0 or 2^32-1 never panics — it just produces a
// degenerate range, the same "downgrade precision, never abort" discipline
// the rest of the VM follows.
func splitByCRBit(crb uint8, left, right GprValue) (falseVal, trueVal GprValue) {
	switch crb {
	case 0: // lt
		if min, max, step, ok := left.AsRange(); ok {
			if value, ok := right.AsConstant(); ok {
				return RangeValue(maxU32(min, value), maxU32(max, value), step),
					RangeValue(minU32(min, value-1), minU32(max, value-1), step)
			}
			return left, left
		}
		if value, ok := right.AsConstant(); ok {
			return RangeValue(value, 0xFFFFFFFF, 1), RangeValue(0, value-1, 1)
		}
		return left, left
	case 1: // gt
		if min, max, step, ok := left.AsRange(); ok {
			if value, ok := right.AsConstant(); ok {
				return RangeValue(minU32(min, value), minU32(max, value), step),
					RangeValue(maxU32(min, value+1), maxU32(max, value+1), step)
			}
			return left, left
		}
		if value, ok := right.AsConstant(); ok {
			return RangeValue(0, value, 1), RangeValue(value+1, 0xFFFFFFFF, 1)
		}
		return left, left
	case 2: // eq
		if l, lok := left.AsConstant(); lok {
			if r, rok := right.AsConstant(); rok {
				if l == r {
					return UnknownValue, ConstantValue(r)
				}
				return left, ConstantValue(r)
			}
		}
		if value, ok := right.AsConstant(); ok {
			return left, ConstantValue(value)
		}
		return left, left
	case 3: // so
		return left, left
	default:
		return left, left
	}
}

func minU32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

func maxU32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}
