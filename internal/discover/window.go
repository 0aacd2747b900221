package discover

import "fmt"

// Window is a shrinking star-count range used to enumerate more search
// results than a single query's result-count ceiling allows. The range is
// inclusive on both ends; a freshly started window has no upper bound.
type Window struct {
	Min  int
	Max  int
	Open bool // no upper bound yet
}

func StartWindow(min int) Window {
	return Window{Min: min, Open: true}
}

// Next derives the window for the following query from the star count of
// the last repository yielded by this one. The new upper bound is strictly
// below that star count, so results already yielded cannot come back, and
// the bottom of the range never moves, so nothing above Min is skipped.
// ok is false when the range is exhausted and enumeration should stop.
//
// Repositories that share the exact star count at the truncation point can
// be lost here; that is an accepted imprecision of the technique.
func (w Window) Next(lastSeenStars int) (next Window, ok bool) {
	top := lastSeenStars - 1
	if !w.Open && top >= w.Max {
		// The upper bound must strictly shrink even if the search
		// backend returns out-of-range star counts.
		top = w.Max - 1
	}
	if top < w.Min {
		return Window{}, false
	}
	return Window{Min: w.Min, Max: top}, true
}

// StarsQualifier renders the window as a GitHub search stars qualifier.
func (w Window) StarsQualifier() string {
	if w.Open {
		return fmt.Sprintf(">=%d", w.Min)
	}
	return fmt.Sprintf("%d..%d", w.Min, w.Max)
}

// Contains reports whether a star count falls inside the window.
func (w Window) Contains(stars int) bool {
	if stars < w.Min {
		return false
	}
	return w.Open || stars <= w.Max
}
