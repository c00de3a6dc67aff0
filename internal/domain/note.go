package domain

// NoteType identifies the payoff variant of a structured note.
// The variant set is closed: Buffered and Floored are the only members.
type NoteType string

// Note type constants.
const (
	NoteTypeBuffered NoteType = "buffered"
	NoteTypeFloored  NoteType = "floored"
)

// Valid reports whether t is one of the known note types.
func (t NoteType) Valid() bool {
	return t == NoteTypeBuffered || t == NoteTypeFloored
}

// NoteParameters holds the issuance terms of a one-year structured note.
// ParticipationRate is derived ahead of the sweep (or on demand by the
// valuation engine) and capped at 2.0.
type NoteParameters struct {
	Year              int
	ProtectionLevel   float64 // fraction of downside absorbed, in [0, 1)
	ParticipationRate float64 // multiplier on positive underlying returns, in [0, 2.0]
	NoteType          NoteType
}
