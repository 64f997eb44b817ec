package history

import "mindease-be/pkg/store"

// Window returns the turns that precede the pending question, limited to the last
// slideWindow entries of the transcript. The final turn (the question itself) is
// never part of the window, and error turns are left out before slicing.
func Window(transcript store.Transcript, slideWindow int) []store.Turn {
	turns := make([]store.Turn, 0, len(transcript))
	for _, t := range transcript {
		if !t.IsError {
			turns = append(turns, t)
		}
	}

	n := len(turns)
	if n < 2 || slideWindow <= 0 {
		return nil
	}

	start := n - slideWindow
	if start < 0 {
		start = 0
	}
	if start >= n-1 {
		return nil
	}
	return turns[start : n-1]
}
