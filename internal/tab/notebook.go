package tab

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/anstrom/scandeck/internal/archive"
	"github.com/anstrom/scandeck/internal/errors"
)

const untitledPrefix = "untitled_scan"

// Notebook owns the open tabs and keeps their titles unique.
type Notebook struct {
	opts     Options
	tabs     []*Controller
	byID     map[uuid.UUID]*Controller
	untitled int
}

// NewNotebook creates an empty notebook whose tabs share opts.
func NewNotebook(opts Options) *Notebook {
	return &Notebook{
		opts: opts.withDefaults(),
		byID: make(map[uuid.UUID]*Controller),
	}
}

// Open adds an empty tab. An empty title gives the next untitled_scanN.
func (n *Notebook) Open(title string) *Controller {
	c := NewController("", n.opts)
	c.setTitle(n.uniqueTitle(title, nil))
	n.tabs = append(n.tabs, c)
	n.byID[c.id] = c
	return c
}

// Get returns the tab with id.
func (n *Notebook) Get(id uuid.UUID) (*Controller, error) {
	c, ok := n.byID[id]
	if !ok {
		return nil, errors.ErrNotFound("tab", id.String())
	}
	return c, nil
}

// Tabs returns the open tabs in opening order.
func (n *Notebook) Tabs() []*Controller {
	out := make([]*Controller, len(n.tabs))
	copy(out, n.tabs)
	return out
}

// Len returns the number of open tabs.
func (n *Notebook) Len() int {
	return len(n.tabs)
}

// Close closes the tab and frees its title.
func (n *Notebook) Close(id uuid.UUID) error {
	c, err := n.Get(id)
	if err != nil {
		return err
	}
	c.Close()
	delete(n.byID, id)
	for i, t := range n.tabs {
		if t == c {
			n.tabs = append(n.tabs[:i], n.tabs[i+1:]...)
			break
		}
	}
	n.reportActive()
	return nil
}

// CloseAll closes every tab.
func (n *Notebook) CloseAll() {
	for _, c := range n.Tabs() {
		_ = n.Close(c.id)
	}
}

// TickAll polls every scanning tab.
func (n *Notebook) TickAll() {
	for _, c := range n.tabs {
		c.Tick()
	}
	n.reportActive()
}

func (n *Notebook) reportActive() {
	active := 0
	for _, c := range n.tabs {
		if c.state == StateScanning {
			active++
		}
	}
	n.opts.Metrics.SetActiveScans(active)
}

// StartScan starts req on the tab and retitles it after the request.
func (n *Notebook) StartScan(id uuid.UUID, req Request, confirm ConfirmFunc) error {
	c, err := n.Get(id)
	if err != nil {
		return err
	}
	if err := c.StartScan(req, confirm); err != nil {
		return err
	}
	if title := Title(req); title != "" {
		n.retitle(c, title)
	}
	n.reportActive()
	return nil
}

// LoadFile opens a saved result in the tab and names it after the file.
func (n *Notebook) LoadFile(id uuid.UUID, path string) error {
	c, err := n.Get(id)
	if err != nil {
		return err
	}
	if err := c.LoadFile(path); err != nil {
		return err
	}
	n.retitle(c, filepath.Base(path))
	return nil
}

// LoadArchived opens an archive entry in the tab.
func (n *Notebook) LoadArchived(id uuid.UUID, entry *archive.Entry) error {
	c, err := n.Get(id)
	if err != nil {
		return err
	}
	if err := c.LoadArchived(entry); err != nil {
		return err
	}
	if entry.Title != "" {
		n.retitle(c, entry.Title)
	}
	return nil
}

// Archive stores the tab's result through saver.
func (n *Notebook) Archive(ctx context.Context, id uuid.UUID, saver ArchiveSaver) (*archive.Entry, error) {
	c, err := n.Get(id)
	if err != nil {
		return nil, err
	}
	return c.Archive(ctx, saver)
}

func (n *Notebook) retitle(c *Controller, title string) {
	if strings.TrimSpace(title) == c.title {
		return
	}
	c.setTitle(n.uniqueTitle(title, c))
}

// uniqueTitle returns title, or "title (n)" with the smallest n >= 2 that no
// other tab uses. self is ignored when checking.
func (n *Notebook) uniqueTitle(title string, self *Controller) string {
	title = strings.TrimSpace(title)
	if title == "" {
		n.untitled++
		title = fmt.Sprintf("%s%d", untitledPrefix, n.untitled)
	}

	used := make(map[string]bool, len(n.tabs))
	for _, t := range n.tabs {
		if t != self {
			used[t.title] = true
		}
	}
	if !used[title] {
		return title
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s (%d)", title, i)
		if !used[candidate] {
			return candidate
		}
	}
}
