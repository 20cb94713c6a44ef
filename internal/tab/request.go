package tab

import (
	"strings"

	"github.com/anstrom/scandeck/internal/errors"
	"github.com/anstrom/scandeck/internal/process"
	"github.com/anstrom/scandeck/internal/profiles"
)

// Request describes a scan to start. Command wins over Profile when both
// are set.
type Request struct {
	Target  string `json:"target"`
	Profile string `json:"profile,omitempty"`
	Command string `json:"command,omitempty"`
}

// ConfirmFunc is asked whether a running scan may be killed to make room
// for a new one.
type ConfirmFunc func() bool

// Confirm returns a ConfirmFunc that always answers answer.
func Confirm(answer bool) ConfirmFunc {
	return func() bool { return answer }
}

// BuildCommand assembles the command line for req. Without a target the
// command keeps the <target> placeholder, which is only acceptable when the
// command reads its targets from -iR or -iL.
func BuildCommand(req Request, store *profiles.Store) (string, error) {
	target := strings.TrimSpace(req.Target)
	command := strings.TrimSpace(req.Command)

	if command == "" && req.Profile != "" {
		if store == nil {
			return "", errors.ErrNotFound("profile", req.Profile)
		}
		built, err := store.BuildCommand(req.Profile, target)
		if err != nil {
			return "", err
		}
		command = built
	}
	if command == "" {
		return "", errors.ErrEmptyCommand()
	}

	if !strings.Contains(command, profiles.TargetPlaceholder) {
		return command, nil
	}
	if target != "" {
		return strings.ReplaceAll(command, profiles.TargetPlaceholder, target), nil
	}
	args, err := process.SplitCommand(command)
	if err != nil {
		return "", errors.NewScanError(errors.CodeValidation, err.Error())
	}
	if !readsTargetsFromOption(args) {
		return "", errors.ErrNoTarget()
	}
	kept := args[:0]
	for _, a := range args {
		if a != profiles.TargetPlaceholder {
			kept = append(kept, a)
		}
	}
	return strings.Join(quoteArgs(kept), " "), nil
}

func readsTargetsFromOption(args []string) bool {
	for _, a := range args {
		if strings.HasPrefix(a, "-iR") || strings.HasPrefix(a, "-iL") {
			return true
		}
	}
	return false
}

func quoteArgs(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		if a == "" || strings.ContainsAny(a, " \t'\"\\") {
			out[i] = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
		} else {
			out[i] = a
		}
	}
	return out
}

// Title is the tab title for req: "<profile> on <target>", "Scan on
// <target>" or just the profile name. It is empty when neither is known.
func Title(req Request) string {
	target := strings.TrimSpace(req.Target)
	profile := strings.TrimSpace(req.Profile)
	switch {
	case profile != "" && target != "":
		return profile + " on " + target
	case target != "":
		return "Scan on " + target
	default:
		return profile
	}
}
