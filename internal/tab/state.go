// Package tab drives one scan from launch to browsable result. A Controller
// owns a results store, the running scanner process and the lifecycle state;
// a Notebook owns many controllers; a Loop serialises every call onto one
// goroutine and polls running scans.
package tab

// State is a tab's lifecycle position.
type State string

const (
	StateEmpty            State = "empty"
	StateScanning         State = "scanning"
	StateParsingResult    State = "parsing_result"
	StateUnsavedUnchanged State = "unsaved_unchanged"
	StateUnsavedChanged   State = "unsaved_changed"
	StateLoadedUnchanged  State = "loaded_unchanged"
	StateLoadedChanged    State = "loaded_changed"
	StateSaved            State = "saved"
	StateSearchLoaded     State = "search_loaded"
	StateScanFailed       State = "scan_failed"
)

// HasResults reports whether the tab holds a parsed scan the user can browse.
func (s State) HasResults() bool {
	switch s {
	case StateUnsavedUnchanged, StateUnsavedChanged,
		StateLoadedUnchanged, StateLoadedChanged,
		StateSaved, StateSearchLoaded:
		return true
	}
	return false
}

// Changed reports whether the tab has edits that were never saved.
func (s State) Changed() bool {
	return s == StateUnsavedChanged || s == StateLoadedChanged
}

// Unsaved reports whether closing the tab would lose data.
func (s State) Unsaved() bool {
	return s == StateUnsavedUnchanged || s.Changed()
}

// afterComment is the state a comment edit moves to.
func (s State) afterComment() State {
	switch s {
	case StateUnsavedUnchanged:
		return StateUnsavedChanged
	case StateLoadedUnchanged, StateSaved, StateSearchLoaded:
		return StateLoadedChanged
	}
	return s
}
