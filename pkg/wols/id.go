package wols

import (
	"strings"

	"github.com/lucsky/cuid"
)

// SpecimenID is the branded identifier type for specimen records. It is a
// zero-cost wrapper: construction is unvalidated, and the suffix format is
// checked only by the validator under the active id mode.
type SpecimenID string

// NewSpecimenID returns a fresh id: the namespace prefix plus a CUID suffix.
// CUIDs are lowercase alphanumeric, so generated ids satisfy the strict id
// mode.
func NewSpecimenID() SpecimenID {
	return SpecimenID(IDPrefix + cuid.New())
}

// String returns the id as a plain string.
func (id SpecimenID) String() string { return string(id) }

// Suffix returns the id without the namespace prefix.
func (id SpecimenID) Suffix() string {
	return strings.TrimPrefix(string(id), IDPrefix)
}
