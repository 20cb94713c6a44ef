package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/anstrom/scandeck/internal/logging"
	"github.com/anstrom/scandeck/internal/tab"
	"github.com/anstrom/scandeck/internal/views"
)

// terminalSurface renders tab events on a terminal. With follow set it
// streams scanner output as it grows. Calls arrive on the loop goroutine.
type terminalSurface struct {
	w       io.Writer
	follow  bool
	printed string
}

var _ tab.Surface = (*terminalSurface)(nil)

func newTerminalSurface(w io.Writer, follow bool) *terminalSurface {
	return &terminalSurface{w: w, follow: follow}
}

func (s *terminalSurface) StatusChanged(id uuid.UUID, state tab.State) {
	logging.Debug("tab status changed", "tab_id", id, "state", state)
}

func (s *terminalSurface) OutputChanged(_ uuid.UUID, output string) {
	if !s.follow {
		return
	}
	if strings.HasPrefix(output, s.printed) {
		fmt.Fprint(s.w, output[len(s.printed):])
	} else if output != "" {
		fmt.Fprint(s.w, output)
	}
	s.printed = output
}

func (s *terminalSurface) HostsChanged(uuid.UUID, []views.HostListRow) {}

func (s *terminalSurface) ServicesChanged(uuid.UUID, []string) {}

func (s *terminalSurface) Prompt(_ uuid.UUID, p tab.Prompt) {
	fmt.Fprintf(s.w, "\n%s\n%s\n", p.Title, p.Text)
}
