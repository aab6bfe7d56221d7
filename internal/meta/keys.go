package meta

import "fmt"

// KeyStrategy decides who assigns the primary key of a new row.
type KeyStrategy int

const (
	// KeyExternal leaves the id to the store (e.g. an INTEGER PRIMARY KEY
	// column). The generated key is read back after the insert.
	KeyExternal KeyStrategy = iota + 1

	// KeyInternal assigns ids in-process from the sequence generator before
	// the insert runs.
	KeyInternal
)

// String returns the configuration name of the strategy.
func (k KeyStrategy) String() string {
	switch k {
	case KeyExternal:
		return "external"
	case KeyInternal:
		return "internal"
	default:
		return fmt.Sprintf("KeyStrategy(%d)", int(k))
	}
}

// Valid reports whether k is a recognised strategy.
func (k KeyStrategy) Valid() bool {
	return k == KeyExternal || k == KeyInternal
}
