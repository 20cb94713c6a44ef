package tab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anstrom/scandeck/internal/errors"
	"github.com/anstrom/scandeck/internal/profiles"
)

func TestBuildCommand(t *testing.T) {
	store := profiles.NewStore("")

	tests := []struct {
		name     string
		req      Request
		expected string
		code     errors.ErrorCode
	}{
		{name: "profile and target", req: Request{Target: "10.0.0.1", Profile: "Quick scan"}, expected: "nmap -T4 -F 10.0.0.1"},
		{name: "command wins over profile", req: Request{Target: "h", Profile: "Quick scan", Command: "nmap -sn h"}, expected: "nmap -sn h"},
		{name: "placeholder filled from target", req: Request{Target: "h", Command: "nmap -p 22 <target>"}, expected: "nmap -p 22 h"},
		{name: "empty request", req: Request{}, code: errors.CodeEmptyCommand},
		{name: "blank command", req: Request{Command: "   "}, code: errors.CodeEmptyCommand},
		{name: "profile without target", req: Request{Profile: "Intense scan"}, code: errors.CodeNoTarget},
		{name: "unknown profile", req: Request{Target: "h", Profile: "Nope"}, code: errors.CodeNotFound},
		{name: "random targets drop placeholder", req: Request{Command: "nmap -iR 10 <target>"}, expected: "nmap -iR 10"},
		{name: "input list drops placeholder", req: Request{Command: "nmap -iL 'my hosts.txt' <target>"}, expected: "nmap -iL 'my hosts.txt'"},
		{name: "command without placeholder needs no target", req: Request{Command: "nmap -iL hosts.txt"}, expected: "nmap -iL hosts.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildCommand(tt.req, store)
			if tt.code != "" {
				require.Error(t, err)
				assert.Equal(t, tt.code, errors.GetCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestBuildCommandWithoutProfiles(t *testing.T) {
	_, err := BuildCommand(Request{Target: "h", Profile: "Quick scan"}, nil)
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Quick scan on 10.0.0.1", Title(Request{Target: "10.0.0.1", Profile: "Quick scan"}))
	assert.Equal(t, "Scan on 10.0.0.1", Title(Request{Target: " 10.0.0.1 "}))
	assert.Equal(t, "Quick scan", Title(Request{Profile: "Quick scan"}))
	assert.Empty(t, Title(Request{Command: "nmap -iL x"}))
}

func TestStateTransitionsOnComment(t *testing.T) {
	tests := []struct {
		from State
		to   State
	}{
		{StateUnsavedUnchanged, StateUnsavedChanged},
		{StateUnsavedChanged, StateUnsavedChanged},
		{StateLoadedUnchanged, StateLoadedChanged},
		{StateLoadedChanged, StateLoadedChanged},
		{StateSaved, StateLoadedChanged},
		{StateSearchLoaded, StateLoadedChanged},
	}
	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			assert.Equal(t, tt.to, tt.from.afterComment())
		})
	}

	assert.True(t, StateSaved.HasResults())
	assert.False(t, StateScanFailed.HasResults())
	assert.False(t, StateScanning.HasResults())
	assert.True(t, StateUnsavedUnchanged.Unsaved())
	assert.False(t, StateSaved.Unsaved())
	assert.True(t, StateLoadedChanged.Changed())
}
