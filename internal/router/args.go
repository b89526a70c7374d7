package router

import (
	"strings"
	"unicode"
)

// Args are the tokens left for a handler after command resolution.
type Args struct {
	Positional []string
	Flags      map[string]string
}

// First returns the first positional argument, or "" when there is none.
func (a Args) First() string {
	if len(a.Positional) == 0 {
		return ""
	}
	return a.Positional[0]
}

// Flag returns a flag value and whether it was given.
func (a Args) Flag(name string) (string, bool) {
	value, ok := a.Flags[name]
	return value, ok
}

// FlagOr returns the flag value, or fallback when it is missing or empty.
func (a Args) FlagOr(name, fallback string) string {
	if value, ok := a.Flags[name]; ok && strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func isSpace(r rune) bool { return unicode.IsSpace(r) }

// Tokenize splits text on runs of whitespace.
func Tokenize(text string) []string {
	return strings.FieldsFunc(text, isSpace)
}

// ParseArgs separates flags from positional tokens.
//
//	--name value   --name=value   --name (value "true")   --no-name (value "false")
//	-x value       -abc (a, b, c are "true"; c may take a value)
//
// A flag only consumes the next token when that token is not itself a flag.
// "--" ends flag parsing; everything after it is positional. A lone "-" and
// negative numbers are positional. Later duplicates win.
func ParseArgs(tokens []string) Args {
	args := Args{Positional: []string{}, Flags: map[string]string{}}
	for i := 0; i < len(tokens); i++ {
		token := tokens[i]
		switch {
		case token == "--":
			args.Positional = append(args.Positional, tokens[i+1:]...)
			return args
		case strings.HasPrefix(token, "--"):
			name := token[2:]
			if eq := strings.IndexByte(name, '='); eq >= 0 {
				args.Flags[name[:eq]] = name[eq+1:]
				continue
			}
			if strings.HasPrefix(name, "no-") && len(name) > 3 {
				args.Flags[name[3:]] = "false"
				continue
			}
			value, consumed := flagValue(tokens, i)
			args.Flags[name] = value
			if consumed {
				i++
			}
		case isShortFlag(token):
			letters := []rune(token[1:])
			for _, r := range letters[:len(letters)-1] {
				args.Flags[string(r)] = "true"
			}
			value, consumed := flagValue(tokens, i)
			args.Flags[string(letters[len(letters)-1])] = value
			if consumed {
				i++
			}
		default:
			args.Positional = append(args.Positional, token)
		}
	}
	return args
}

func flagValue(tokens []string, i int) (string, bool) {
	if i+1 < len(tokens) && !isFlagToken(tokens[i+1]) {
		return tokens[i+1], true
	}
	return "true", false
}

func isFlagToken(token string) bool {
	return strings.HasPrefix(token, "--") || isShortFlag(token)
}

func isShortFlag(token string) bool {
	if len(token) < 2 || token[0] != '-' || token[1] == '-' {
		return false
	}
	r := []rune(token[1:])[0]
	return !unicode.IsDigit(r) && r != '.'
}
