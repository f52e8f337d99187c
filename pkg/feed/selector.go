package feed

import "github.com/umputun/feedpost/pkg/domain"

// GapPolicy decides what happens when the cursor id is not present in the
// fetched window, i.e. the source rotated past the last delivered entry.
type GapPolicy int

// gap policies
const (
	GapRedeliver GapPolicy = iota // deliver the whole visible window, prefer duplicates over loss
	GapSkip                       // deliver nothing, log the gap
)

// SelectNew returns the entries not yet delivered, oldest first. Input is
// newest first as returned by the fetcher, cursor is the id of the last
// delivered entry or empty for a feed never delivered from.
func SelectNew(entries []domain.Entry, cursor string, policy GapPolicy) []domain.Entry {
	reversed := make([]domain.Entry, len(entries))
	for i, e := range entries {
		reversed[len(entries)-1-i] = e
	}

	if cursor == "" {
		return reversed
	}

	for i := len(reversed) - 1; i >= 0; i-- {
		if reversed[i].ID == cursor {
			return reversed[i+1:]
		}
	}

	// cursor rotated out of the window
	if policy == GapSkip {
		return nil
	}
	return reversed
}
