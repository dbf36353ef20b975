// Package directory holds the client-side view of the school list: search
// filtering and "load more" pagination over an already-fetched slice.
package directory

import (
	"strings"

	"schooldirectory/internal/domain/school"
)

// PageSize is how many cards one reveal adds.
const PageSize = 12

// View is the derived state shown to the user.
type View struct {
	Filtered  []school.School
	Displayed []school.School
	HasMore   bool
}

// Filter keeps rows whose name, city or address contains term, ignoring
// case. An empty term keeps everything.
func Filter(source []school.School, term string) []school.School {
	if term == "" {
		return source
	}
	needle := strings.ToLower(term)
	out := make([]school.School, 0, len(source))
	for _, s := range source {
		if strings.Contains(strings.ToLower(s.Name), needle) ||
			strings.Contains(strings.ToLower(s.City), needle) ||
			strings.Contains(strings.ToLower(s.Address), needle) {
			out = append(out, s)
		}
	}
	return out
}

// DeriveView computes the filtered and displayed rows. revealCount is the
// number of pages revealed so far; values below 1 are treated as 1.
func DeriveView(source []school.School, term string, revealCount int) View {
	if revealCount < 1 {
		revealCount = 1
	}
	filtered := Filter(source, term)

	n := revealCount * PageSize
	if n > len(filtered) {
		n = len(filtered)
	}
	return View{
		Filtered:  filtered,
		Displayed: filtered[:n],
		HasMore:   n < len(filtered),
	}
}
