package main

import "errors"

var errUnbalanced = errors.New("unbalanced quotes or brackets in request")

// splitArgs splits a command line into arguments. Quoted strings and
// bracketed JSON values are kept as single arguments, so that a GeoJSON
// object can be typed without quoting it.
func splitArgs(line string) ([]string, error) {
	var args []string
	i := 0
	for {
		for i < len(line) && isSpace(line[i]) {
			i++
		}
		if i == len(line) {
			return args, nil
		}
		switch line[i] {
		case '"', '\'':
			arg, n, err := readQuoted(line[i:])
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			i += n
			if i < len(line) && !isSpace(line[i]) {
				return nil, errUnbalanced
			}
		case '{', '[':
			n, err := readJSON(line[i:])
			if err != nil {
				return nil, err
			}
			args = append(args, line[i:i+n])
			i += n
		default:
			s := i
			for i < len(line) && !isSpace(line[i]) {
				i++
			}
			args = append(args, line[s:i])
		}
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// readQuoted reads a quoted string at the start of s and returns the
// unquoted value and the number of bytes read.
func readQuoted(s string) (string, int, error) {
	q := s[0]
	var out []byte
	for i := 1; i < len(s); i++ {
		c := s[i]
		switch {
		case c == q:
			return string(out), i + 1, nil
		case c == '\\' && q == '"' && i+1 < len(s):
			i++
			switch s[i] {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			default:
				out = append(out, s[i])
			}
		default:
			out = append(out, c)
		}
	}
	return "", 0, errUnbalanced
}

// readJSON returns the length of the balanced object or array at the
// start of s.
func readJSON(s string) (int, error) {
	var depth int
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return i + 1, nil
			}
		case '"':
			for i++; i < len(s); i++ {
				if s[i] == '\\' {
					i++
				} else if s[i] == '"' {
					break
				}
			}
			if i >= len(s) {
				return 0, errUnbalanced
			}
		}
	}
	return 0, errUnbalanced
}
