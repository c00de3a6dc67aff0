package domain

import "time"

// ParameterFileSnapshot is the raw parameter file captured at setup time so a
// persisted sweep can always be traced back to the exact configuration that
// produced it.
type ParameterFileSnapshot struct {
	ID       int64
	Name     string
	Content  string
	LoadedAt time.Time
}
