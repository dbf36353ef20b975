package directory

import (
	"context"
	"fmt"

	"schooldirectory/internal/domain/school"
)

type State int

const (
	StateLoading State = iota
	StateLoaded
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Fetcher supplies the source list. Both the HTTP Client and school.Service
// satisfy it.
type Fetcher interface {
	List(ctx context.Context) ([]school.School, error)
}

// Model is the directory page state. It is not safe for concurrent use; it
// is driven by one UI loop.
type Model struct {
	state       State
	err         error
	source      []school.School
	term        string
	revealCount int
}

func NewModel() *Model {
	return &Model{state: StateLoading, revealCount: 1}
}

// Load performs a fresh fetch. On failure the source list is cleared and the
// error is kept for display.
func (m *Model) Load(ctx context.Context, f Fetcher) error {
	m.state = StateLoading
	rows, err := f.List(ctx)
	if err != nil {
		m.state = StateError
		m.err = err
		m.source = nil
		return err
	}
	m.state = StateLoaded
	m.err = nil
	m.source = rows
	return nil
}

func (m *Model) State() State { return m.state }

func (m *Model) Err() error { return m.err }

func (m *Model) SearchTerm() string { return m.term }

func (m *Model) RevealCount() int { return m.revealCount }

// SetSearchTerm changes the filter and goes back to the first page.
func (m *Model) SetSearchTerm(term string) {
	m.term = term
	m.revealCount = 1
}

// RevealMore shows one more page if anything is still hidden. It reports
// whether the view grew.
func (m *Model) RevealMore() bool {
	if !m.View().HasMore {
		return false
	}
	m.revealCount++
	return true
}

func (m *Model) View() View {
	return DeriveView(m.source, m.term, m.revealCount)
}

// Status is the counter line above the grid.
func (m *Model) Status() string {
	switch m.state {
	case StateLoading:
		return "Loading..."
	case StateError:
		return fmt.Sprintf("Failed to fetch schools: %v", m.err)
	default:
		return fmt.Sprintf("%d Schools Found", len(m.View().Filtered))
	}
}

// EmptyMessage is shown instead of the grid when nothing matches. It is ""
// while there is something to show.
func (m *Model) EmptyMessage() string {
	if m.state != StateLoaded || len(m.View().Filtered) > 0 {
		return ""
	}
	if m.term != "" {
		return "No schools match your search criteria."
	}
	return "No schools have been added yet."
}
