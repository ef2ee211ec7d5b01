// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package diag defines the Log type shared by the structuring and
// call-reconciliation passes. Every pass that can hit a malformed or
// unexpected invariant in its input records a LogEntry instead of
// failing outright; the caller decides, by inspecting the log
// afterward, whether to trust the result.
package diag

import (
	"bytes"
	"fmt"
)

// Severity classifies a LogEntry. An ERROR means the pass's output for
// the affected node should not be trusted; a WARNING means the pass
// made a reasonable fallback choice and continued.
type Severity int

const (
	INFO Severity = iota
	WARNING
	ERROR
	FATAL_ERROR
)

func (s Severity) String() string {
	switch s {
	case INFO:
		return ""
	case WARNING:
		return "Warning: "
	case ERROR:
		return "Error: "
	case FATAL_ERROR:
		return "ERROR: "
	default:
		return ""
	}
}

// LogEntry is one message recorded during analysis. Unlike doctor.LogEntry
// there is no source file/position: this package's callers operate on
// already-lifted IR, not source text.
type LogEntry struct {
	Severity Severity
	Message  string
}

func (entry LogEntry) String() string {
	var buf bytes.Buffer
	buf.WriteString(entry.Severity.String())
	buf.WriteString(entry.Message)
	return buf.String()
}

// Log accumulates LogEntries produced while structuring a procedure or
// reconciling its call sites.
type Log struct {
	Entries []LogEntry
}

// NewLog returns a new, empty Log.
func NewLog() *Log {
	return &Log{Entries: []LogEntry{}}
}

// Logf records a message at the given severity.
func (log *Log) Logf(severity Severity, format string, args ...any) {
	log.Entries = append(log.Entries, LogEntry{Severity: severity, Message: fmt.Sprintf(format, args...)})
}

// ContainsErrors reports whether the log has at least one ERROR or
// FATAL_ERROR entry.
func (log *Log) ContainsErrors() bool {
	for _, e := range log.Entries {
		if e.Severity >= ERROR {
			return true
		}
	}
	return false
}

func (log *Log) String() string {
	var buf bytes.Buffer
	for _, e := range log.Entries {
		buf.WriteString(e.String())
		buf.WriteString("\n")
	}
	return buf.String()
}
