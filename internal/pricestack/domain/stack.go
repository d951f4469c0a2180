package domain

import "strings"

// Mode selects the direction a stack is resolved in.
type Mode string

const (
	// ModeForward starts from cost of goods and derives a selling price.
	ModeForward Mode = "FORWARD"
	// ModeInverse starts from a known price and derives its composition.
	ModeInverse Mode = "INVERSE"
)

func ParseMode(raw string) (Mode, error) {
	switch m := Mode(strings.ToUpper(strings.TrimSpace(raw))); m {
	case "":
		return ModeForward, nil
	case ModeForward, ModeInverse:
		return m, nil
	default:
		return "", ErrUnknownMode
	}
}

// Stack is an ordered list of blocks resolved from StartValue.
// StartValue is the cost of goods in forward mode and the target price in
// inverse mode.
type Stack struct {
	StartValue float64
	Mode       Mode
	Blocks     []Block
}

// Clone returns a deep copy of the stack.
func (s Stack) Clone() Stack {
	blocks := make([]Block, len(s.Blocks))
	copy(blocks, s.Blocks)
	return Stack{StartValue: s.StartValue, Mode: s.Mode, Blocks: blocks}
}

// Validate checks every block carries a basis.
func (s Stack) Validate() error {
	for _, b := range s.Blocks {
		if b.Basis == nil {
			return ErrMissingBasis
		}
	}
	return nil
}

// FindFirst returns the index of the first active block of type t, or -1.
func (s Stack) FindFirst(t BlockType) int {
	for i, b := range s.Blocks {
		if b.Active && b.Type == t {
			return i
		}
	}
	return -1
}
