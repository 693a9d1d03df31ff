package roster

import (
	"fmt"
)

// Member represents a club member loaded from the roster file. Members are
// immutable once loaded and owned by the Registry for the run's lifetime.
type Member struct {
	MemberID  string `validate:"required"`
	FirstName string `validate:"required"`
	LastName  string `validate:"required"`
	Email     string
	Age       int    `validate:"gte=0,lte=120"`
	Gender    string `validate:"omitempty,oneof=M F"`
}

// FullName returns the member's "First Last" name
func (m *Member) FullName() string {
	return fmt.Sprintf("%s %s", m.FirstName, m.LastName)
}

// HasAge reports whether an age was present in the roster file. Zero means
// the column was empty.
func (m *Member) HasAge() bool {
	return m.Age > 0
}
