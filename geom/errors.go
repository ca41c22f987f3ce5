package geom

// EmptyInputError is returned when a request carries no source vertices
// at all. Detected before any geometry is produced.
type EmptyInputError struct{}

func (e *EmptyInputError) Error() string {
	return "no source vertices"
}

// DegenerateInputError is returned when a convex hull is impossible:
// fewer than 4 unique points remain after sampling, or every point lies
// on a single plane.
type DegenerateInputError struct {
	Reason string
}

func (e *DegenerateInputError) Error() string {
	return "degenerate input: " + e.Reason
}
