package pager

// Operator is the comparison of a boundary condition.
type Operator string

const (
	OperatorGT Operator = ">"
	OperatorLT Operator = "<"
	// OperatorEQ only appears in the equality prefix of a boundary
	// conjunction. Cursor elements never carry it.
	OperatorEQ Operator = "="
)

// Strict seek operators and the ordering direction each one walks along.
var _seekDirections = map[Operator]Direction{
	OperatorGT: DirectionASC,
	OperatorLT: DirectionDESC,
}

// Valid reports whether o is a strict seek operator, the only kind a cursor
// element may store.
func (o Operator) Valid() bool {
	_, ok := _seekDirections[o]
	return ok
}

// SeekDirection returns the ordering direction o seeks along. ok is false for
// OperatorEQ and unknown operators.
func (o Operator) SeekDirection() (Direction, bool) {
	d, ok := _seekDirections[o]
	return d, ok
}
