package runtime

// Frame is the activation record of one function call.
type Frame struct {
	// CallerLine is the index of the line that made the call. Returning
	// resumes on the line after it.
	CallerLine int
	Variables  map[string]string
	Labels     map[string]int

	// In holds parameters pushed by the caller, Out the results pushed by
	// the callee. Both are drained first-in first-out.
	In  []string
	Out []string
}

func NewFrame(callerLine int, in []string) *Frame {
	return &Frame{
		CallerLine: callerLine,
		Variables:  make(map[string]string),
		Labels:     make(map[string]int),
		In:         in,
	}
}

// popFront removes and returns the first element of q.
func popFront(q *[]string) (string, bool) {
	if len(*q) == 0 {
		return "", false
	}
	v := (*q)[0]
	*q = (*q)[1:]
	return v, true
}
