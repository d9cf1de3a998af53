package vm

// Bounce is what a dispatcher hands back to the trampoline instead of a
// return value: an instruction about what the stack should do next. The
// actual values travel through the cells the levels' Out pointers aim at.
type Bounce uint8

const (
	// The level is finished and its result is in its out cell.
	BOUNCE_DONE Bounce = iota

	// The level has more to do. If it pushed a child, run the child and
	// come back; if it didn't, run the level itself again.
	BOUNCE_CONTINUE

	// The level has pushed a child whose result is the level's own result,
	// and has nothing further to say. The trampoline splices the level out
	// rather than waking it again, which is what makes deep chains of
	// delegation run in constant Go stack.
	BOUNCE_DELEGATE

	// A throw is in flight. The trampoline unwinds, dropping levels until
	// one that catches throws agrees to field this one.
	BOUNCE_THROWN

	// The dispatcher has already repointed the trampoline's current level
	// itself. Unplugging and replugging do their surgery and then say this.
	BOUNCE_REWIND
)

func (b Bounce) String() string {
	switch b {
	case BOUNCE_DONE:
		return "done"
	case BOUNCE_CONTINUE:
		return "continue"
	case BOUNCE_DELEGATE:
		return "delegate"
	case BOUNCE_THROWN:
		return "thrown"
	case BOUNCE_REWIND:
		return "rewind"
	}
	return "bad bounce"
}
