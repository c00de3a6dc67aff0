package notes

import (
	"errors"
	"math"

	"portfolio-note-lab/internal/domain"
)

// ErrUnknownNoteType is returned for a note type outside the closed variant set.
var ErrUnknownNoteType = errors.New("unknown note type")

// Return computes the realized annual return of a note given the underlying
// return and the note's issuance terms.
//
// Buffered: positive returns are scaled by the participation rate; losses up
// to the protection level (inclusive) are absorbed in full, anything beyond
// passes through.
//
// Floored: positive returns are scaled by the participation rate; losses are
// capped at -protectionLevel.
func Return(underlyingReturn, participationRate, protectionLevel float64, noteType domain.NoteType) (float64, error) {
	switch noteType {
	case domain.NoteTypeBuffered:
		if underlyingReturn >= 0 {
			return underlyingReturn * participationRate, nil
		}
		loss := math.Abs(underlyingReturn)
		if loss <= protectionLevel {
			return 0, nil
		}
		return -(loss - protectionLevel), nil

	case domain.NoteTypeFloored:
		if underlyingReturn >= 0 {
			return underlyingReturn * participationRate, nil
		}
		return math.Max(underlyingReturn, -protectionLevel), nil

	default:
		return 0, ErrUnknownNoteType
	}
}
