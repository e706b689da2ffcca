package filter

import "fmt"

// Instruction is a navigation step applied to a History. The concrete types
// are Add, Here, Parent, Reset and Prev.
type Instruction interface {
	instruction()
}

// Add pushes a new piece joined with AND (cd something).
type Add struct {
	Piece *Piece
}

// Here pushes an empty piece, so cd - can return to the level it came from
// (cd .).
type Here struct{}

// Parent moves up one level, stopping at the root (cd ..).
type Parent struct{}

// Reset returns to the root (cd).
type Reset struct{}

// Prev swaps back to the previously visited level (cd -).
type Prev struct{}

func (Add) instruction()    {}
func (Here) instruction()   {}
func (Parent) instruction() {}
func (Reset) instruction()  {}
func (Prev) instruction()   {}

// Resolve turns filter arguments into an instruction. With no arguments the
// result is Reset when resetIfEmpty is set and Here otherwise.
func Resolve(args []string, resetIfEmpty, caseInsensitive bool) (Instruction, error) {
	if len(args) == 0 {
		if resetIfEmpty {
			return Reset{}, nil
		}
		return Here{}, nil
	}
	if len(args) == 1 {
		switch args[0] {
		case ".":
			return Here{}, nil
		case "..":
			return Parent{}, nil
		case "-":
			return Prev{}, nil
		}
	}
	piece, err := Compile(args, caseInsensitive)
	if err != nil {
		return nil, err
	}
	return Add{Piece: piece}, nil
}

// History is a stack of filter pieces with cd-like navigation. Index 0 always
// holds the empty root piece. Adding after moving up overwrites the abandoned
// level instead of branching.
type History struct {
	pieces   []*Piece
	current  int
	previous int
}

func NewHistory() *History {
	return &History{pieces: []*Piece{{}}}
}

// Current returns the effective filter: the merge of the root up to the
// current level.
func (h *History) Current() *Piece {
	return Merge(h.pieces[:h.current+1]...)
}

// Len returns the number of recorded levels, including the root.
func (h *History) Len() int {
	return len(h.pieces)
}

// Cursor returns the current and previous level indices.
func (h *History) Cursor() (current, previous int) {
	return h.current, h.previous
}

// Record applies the instruction and returns the new effective filter.
func (h *History) Record(inst Instruction) *Piece {
	switch inst := inst.(type) {
	case Add:
		piece := inst.Piece
		if piece == nil {
			piece = &Piece{}
		}
		h.push(piece)
	case Here:
		h.push(&Piece{})
	case Parent:
		h.previous = h.current
		if h.current > 0 {
			h.current--
		}
	case Reset:
		h.previous = h.current
		h.current = 0
	case Prev:
		h.current, h.previous = h.previous, h.current
	default:
		panic(fmt.Sprintf("filter: unknown instruction %T", inst))
	}
	return h.Current()
}

func (h *History) push(piece *Piece) {
	h.previous = h.current
	h.current++
	if h.current == len(h.pieces) {
		h.pieces = append(h.pieces, piece)
	} else {
		h.pieces[h.current] = piece
	}
}

// Observe returns the filter Record would produce without changing the
// history.
func (h *History) Observe(inst Instruction) *Piece {
	scratch := &History{
		pieces:   append([]*Piece(nil), h.pieces...),
		current:  h.current,
		previous: h.previous,
	}
	return scratch.Record(inst)
}
