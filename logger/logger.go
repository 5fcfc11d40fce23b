// Package logger is the central log for sci0play. Packages log with a short
// tag describing the source of the entry, for example:
//
//	logger.Log(logger.Allow, "pit", "counter 0 reprogrammed")
//
// Entries are kept in a ring of fixed length and can be echoed to an
// io.Writer as they arrive with SetEcho(). Repeated entries are collapsed
// into a single entry with a repeat count.
package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// Permission implementations indicate whether the environment making a log
// request is allowed to create new log entries.
type Permission interface {
	AllowLogging() bool
}

type allow struct{}

func (allow) AllowLogging() bool {
	return true
}

// Allow is a Permission that always allows logging.
var Allow Permission = allow{}

// the maximum number of entries in the central log
const maxEntries = 256

type entry struct {
	tag      string
	detail   string
	repeated int
}

func (e entry) String() string {
	s := fmt.Sprintf("%s: %s", e.tag, e.detail)
	if e.repeated > 0 {
		s = fmt.Sprintf("%s (repeat x%d)", s, e.repeated+1)
	}
	return s
}

type logger struct {
	crit    sync.Mutex
	entries []entry
	echo    io.Writer
}

var central = &logger{
	entries: make([]entry, 0, maxEntries),
}

func (l *logger) log(tag string, detail string) {
	l.crit.Lock()
	defer l.crit.Unlock()

	// multiline details are split so that each line has the tag
	for _, d := range strings.Split(detail, "\n") {
		d = strings.TrimRight(d, " \t")
		if d == "" {
			continue
		}

		if n := len(l.entries); n > 0 {
			last := &l.entries[n-1]
			if last.tag == tag && last.detail == d {
				last.repeated++
				continue
			}
		}

		e := entry{tag: tag, detail: d}
		if len(l.entries) >= maxEntries {
			l.entries = l.entries[1:]
		}
		l.entries = append(l.entries, e)

		if l.echo != nil {
			fmt.Fprintln(l.echo, e.String())
		}
	}
}

// Log adds an entry to the central log. The detail argument can be of any
// type: errors and fmt.Stringer implementations are converted to strings in
// the normal way.
func Log(perm Permission, tag string, detail any) {
	if perm == nil || !perm.AllowLogging() {
		return
	}

	var s string
	switch d := detail.(type) {
	case string:
		s = d
	case error:
		s = d.Error()
	case fmt.Stringer:
		s = d.String()
	default:
		s = fmt.Sprintf("%v", d)
	}

	central.log(tag, s)
}

// Logf is the same as Log but with a format string and arguments.
func Logf(perm Permission, tag string, detail string, args ...any) {
	if perm == nil || !perm.AllowLogging() {
		return
	}
	central.log(tag, fmt.Sprintf(detail, args...))
}

// Clear all entries from the central log.
func Clear() {
	central.crit.Lock()
	defer central.crit.Unlock()
	central.entries = central.entries[:0]
}

// Tail writes the last number of entries to output. A number less than zero
// writes every entry.
func Tail(output io.Writer, number int) {
	central.crit.Lock()
	defer central.crit.Unlock()

	n := len(central.entries)
	if number >= 0 && number < n {
		n = number
	}
	for _, e := range central.entries[len(central.entries)-n:] {
		fmt.Fprintln(output, e.String())
	}
}

// SetEcho prints new entries to output as they are logged. Setting output to
// nil stops echoing. If writeRecent is true then existing entries are written
// to output immediately.
func SetEcho(output io.Writer, writeRecent bool) {
	central.crit.Lock()
	defer central.crit.Unlock()

	central.echo = output
	if output != nil && writeRecent {
		for _, e := range central.entries {
			fmt.Fprintln(output, e.String())
		}
	}
}
