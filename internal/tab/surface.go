package tab

import (
	"github.com/google/uuid"

	"github.com/anstrom/scandeck/internal/views"
)

//go:generate mockgen -destination=mocks/mock_surface.go -package=mocks github.com/anstrom/scandeck/internal/tab Surface

// PromptKind tells the surface how to present a prompt.
type PromptKind string

const (
	PromptError    PromptKind = "error"
	PromptQuestion PromptKind = "question"
)

// Prompt is a non-fatal message for the user.
type Prompt struct {
	Kind  PromptKind `json:"kind"`
	Title string     `json:"title"`
	Text  string     `json:"text"`
}

// Surface is implemented by whatever renders tabs. Calls arrive on the loop
// goroutine and must not block.
type Surface interface {
	StatusChanged(tab uuid.UUID, state State)
	OutputChanged(tab uuid.UUID, output string)
	HostsChanged(tab uuid.UUID, hosts []views.HostListRow)
	ServicesChanged(tab uuid.UUID, services []string)
	Prompt(tab uuid.UUID, prompt Prompt)
}

type nopSurface struct{}

func (nopSurface) StatusChanged(uuid.UUID, State)              {}
func (nopSurface) OutputChanged(uuid.UUID, string)             {}
func (nopSurface) HostsChanged(uuid.UUID, []views.HostListRow) {}
func (nopSurface) ServicesChanged(uuid.UUID, []string)         {}
func (nopSurface) Prompt(uuid.UUID, Prompt)                    {}
