package errors

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyParseFailure(t *testing.T) {
	tests := []struct {
		name string
		text string
		want ParseKind
	}{
		{"plain root", "You requested a scan type which requires root privileges.", ParseRootRequired},
		{"upper case", "QUITTING! must be ROOT", ParseRootRequired},
		{"zero spelling", "r00t needed", ParseRootRequired},
		{"mixed zero", "rO0t", ParseRootRequired},
		{"unrelated", "Failed to resolve \"nosuchhost\".", ParseUnknown},
		{"empty", "", ParseUnknown},
		{"route is not root", "no route to host", ParseUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyParseFailure(tt.text))
		})
	}
}

func TestNewParseError(t *testing.T) {
	t.Run("classifies process output", func(t *testing.T) {
		err := NewParseError("TCP/IP fingerprinting (for OS scan) requires root privileges.", errors.New("EOF"))
		assert.Equal(t, ParseRootRequired, err.Kind)
		assert.Equal(t, CodeRootRequired, GetCode(err))
		assert.Contains(t, err.Error(), "root privileges")
	})

	t.Run("falls back to cause text", func(t *testing.T) {
		err := NewParseError("  ", errors.New("unexpected root element"))
		assert.Equal(t, ParseRootRequired, err.Kind)
	})

	t.Run("unknown keeps cause", func(t *testing.T) {
		cause := errors.New("XML syntax error on line 1")
		err := NewParseError("", cause)
		assert.Equal(t, ParseUnknown, err.Kind)
		assert.Equal(t, CodeParseFailed, GetCode(err))
		assert.ErrorIs(t, err, cause)
	})
}

func TestProcessError(t *testing.T) {
	t.Run("spawn error lists search paths", func(t *testing.T) {
		err := NewSpawnError("nmap", []string{"/usr/bin", "/opt/nmap/bin"}, errors.New("executable file not found"))
		assert.Equal(t, CodeProcessSpawn, err.Code)
		assert.Contains(t, err.Error(), "/usr/bin, /opt/nmap/bin")
		assert.True(t, IsCode(err, CodeProcessSpawn))
	})

	t.Run("describe singular extra dir", func(t *testing.T) {
		err := NewSpawnError("nmap", nil, nil)
		msg := err.Describe([]string{"/usr/bin", "/bin"}, []string{"/opt/nmap"})
		assert.Contains(t, msg, "/usr/bin"+string(filepath.ListSeparator)+"/bin")
		assert.Contains(t, msg, "plus the extra directory\n  /opt/nmap")
	})

	t.Run("describe plural extra dirs", func(t *testing.T) {
		err := NewSpawnError("nmap", nil, nil)
		msg := err.Describe([]string{"/usr/bin"}, []string{"/a", "/b"})
		assert.Contains(t, msg, "plus the extra directories\n  /a"+string(filepath.ListSeparator)+"/b")
	})

	t.Run("describe without extras", func(t *testing.T) {
		err := NewSpawnError("nmap", nil, nil)
		msg := err.Describe([]string{"/usr/bin"}, nil)
		assert.NotContains(t, msg, "extra")
	})

	t.Run("poll error", func(t *testing.T) {
		cause := errors.New("wait: no child processes")
		err := NewPollError("process handle invalid", cause)
		assert.Equal(t, CodeProcessPoll, GetCode(err))
		assert.ErrorIs(t, err, cause)
	})
}

func TestGetCodeThroughWrapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"nil", nil, CodeUnknown},
		{"plain", errors.New("boom"), CodeUnknown},
		{"scan", ErrEmptyCommand(), CodeEmptyCommand},
		{"wrapped scan", fmt.Errorf("start: %w", ErrNoTarget()), CodeNoTarget},
		{"aborted", ErrScanAborted(), CodeScanAborted},
		{"database", WrapDatabaseError(CodeDatabaseQuery, "query failed", nil), CodeDatabaseQuery},
		{"config", NewConfigFieldError(CodeValidation, "bad", "scanner.nmap_path", ""), CodeValidation},
		{"wrapped parse", fmt.Errorf("load: %w", NewParseError("", errors.New("EOF"))), CodeParseFailed},
		{"not found", ErrNotFound("tab", "abc"), CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetCode(tt.err))
		})
	}
}

func TestErrorFormatting(t *testing.T) {
	assert.Equal(t, "[EMPTY_COMMAND] empty nmap command", ErrEmptyCommand().Error())
	assert.Equal(t, "[NOT_FOUND] tab not found (target: abc)", ErrNotFound("tab", "abc").Error())
	assert.Equal(t, "[INVALID_STATE] cannot save while empty", ErrInvalidState("save", "empty").Error())

	dbErr := WrapDatabaseError(CodeDatabaseConnection, "connect failed", errors.New("refused")).WithOperation("connect")
	assert.Equal(t, "[DATABASE_CONNECTION] connect failed (operation: connect)", dbErr.Error())
	require.NotNil(t, dbErr.Unwrap())

	cfgErr := NewConfigFieldError(CodeValidation, "invalid value", "api.port", 0)
	assert.Equal(t, "[VALIDATION] invalid value (field: api.port)", cfgErr.Error())
}
