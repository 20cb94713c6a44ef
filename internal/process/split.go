package process

import (
	"fmt"
	"strings"
	"unicode"
)

// SplitCommand breaks a command line into arguments. Single and double
// quotes group words; a backslash escapes the next character outside single
// quotes.
func SplitCommand(line string) ([]string, error) {
	var (
		args    []string
		current strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)

	for _, r := range line {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			inWord = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inWord = true
		case unicode.IsSpace(r):
			if inWord {
				args = append(args, current.String())
				current.Reset()
				inWord = false
			}
		default:
			current.WriteRune(r)
			inWord = true
		}
	}

	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote in command", quote)
	}
	if escaped {
		return nil, fmt.Errorf("command ends with a dangling backslash")
	}
	if inWord {
		args = append(args, current.String())
	}
	return args, nil
}
