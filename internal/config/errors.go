// SPDX-License-Identifier: MIT
package config

import "fmt"

// Error is a fatal configuration problem: unknown pipeline stage,
// missing required file, malformed mapping line. Unlike stage-level
// warnings it aborts the run before any output is written.
type Error struct {
	File string
	Line int
	Msg  string
}

func (e *Error) Error() string {
	switch {
	case e.File != "" && e.Line > 0:
		return fmt.Sprintf("config %s:%d: %s", e.File, e.Line, e.Msg)
	case e.File != "":
		return fmt.Sprintf("config %s: %s", e.File, e.Msg)
	default:
		return "config: " + e.Msg
	}
}

// Errorf builds a configuration error without file context.
func Errorf(format string, args ...any) *Error {
	return &Error{Msg: fmt.Sprintf(format, args...)}
}
