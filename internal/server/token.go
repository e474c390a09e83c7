package server

import (
	"errors"
	"fmt"
	"strconv"
)

var errInvalidNumberOfArguments = errors.New("invalid number of arguments")
var errTooManyPoints = errors.New("too many points")

func errInvalidArgument(arg string) error {
	return fmt.Errorf("invalid argument '%s'", arg)
}
func errDuplicateArgument(arg string) error {
	return fmt.Errorf("duplicate argument '%s'", arg)
}

type clientError struct {
	msg string
}

func (err clientError) Error() string {
	return err.msg
}

func clientErrorf(format string, args ...interface{}) error {
	return clientError{msg: fmt.Sprintf(format, args...)}
}

func tokenval(vs []string) (nvs []string, token string, ok bool) {
	if len(vs) > 0 {
		token = vs[0]
		nvs = vs[1:]
		ok = true
	}
	return
}

func tokenfloat(vs []string) (nvs []string, f float64, err error) {
	var token string
	var ok bool
	if nvs, token, ok = tokenval(vs); !ok {
		return nil, 0, errInvalidNumberOfArguments
	}
	f, err = strconv.ParseFloat(token, 64)
	if err != nil {
		return nil, 0, errInvalidArgument(token)
	}
	return nvs, f, nil
}

func lc(s1, s2 string) bool {
	if len(s1) != len(s2) {
		return false
	}
	for i := 0; i < len(s1); i++ {
		ch := s1[i]
		if ch >= 'A' && ch <= 'Z' {
			if ch+32 != s2[i] {
				return false
			}
		} else if ch != s2[i] {
			return false
		}
	}
	return true
}
