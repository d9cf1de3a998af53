// All this does is contain in one place the constants controlling which bits of the inner
// workings of the lexer/trampoline/collector are displayed to me for debugging purposes.
// In a release they must all be set to false except CHECK_INVARIANTS, which is cheap enough
// to leave on until the collector has been stable for a few versions.

package settings

const (
	// These do what it sounds like.
	SHOW_LEXER      = false
	SHOW_TRAMPOLINE = false // Dumps every Bounce the trampoline handles, with the level it came from.
	SHOW_GC         = false // Reports the flex and action counts before and after each collection.

	// Runs the cross-structure consistency verification after the mark phase of every
	// collection: keylists of marked varlists must be marked and sized to match, and
	// details archetypes must point back at marked actions. A failed check is a bug in
	// the tracer and panics with as much context as we can dump.
	CHECK_INVARIANTS = true

	// Recycles at every pass through the trampoline loop instead of waiting for the
	// allocation count to build up. Hideously slow and the best bug-shaker we have.
	GC_STRESS = false

	SHOW_TESTS = true // Says whether the tests should say what is being tested, useful if one of them crashes and we don't know which.
)
