package values

// Handle boxes an arbitrary Go datum inside a cell. A handle that refers to
// collectable things can say so through Marker; a handle that owns an
// outside resource, a database connection say, can have Cleanup run when the
// last cell referring to it is gone.
type Handle struct {
	Name    string
	Datum   any
	Marker  func(m *Marker)
	Cleanup func(h *Handle)
	marked  bool
}
