// Package codelog writes a per-pass, per-program dump of the IR, the same
// role the original implementation's CodeLogger/Log pairing plays: a file
// named after the program and the current compilation section, appended to
// across a single process run but truncated the first time a file name is
// seen in a fresh run, and skipped entirely when the code hasn't changed
// since the last entry unless verbosity says otherwise.
package codelog

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/fatih/color"

	"stencil/internal/ir"
	"stencil/internal/options"
)

var sanitizeRe = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// Logger dumps the IR for one pipeline compilation, one section at a time.
// It tracks the previous statement logged so that unchanged code can be
// skipped (the "only log if changed" behavior CodeLogger.cpp implements),
// and tracks which file names this Logger has already written so the
// first write truncates and every subsequent write appends. Log advances
// the section number on every call, so each dump normally gets a file of
// its own.
type Logger struct {
	mu sync.Mutex

	programName string
	dir         string
	opts        *options.Options

	section     int
	description string
	prev        ir.Stmt

	known map[string]bool
}

// New creates a Logger for a pipeline named programName, writing dump files
// under dir (created if necessary).
func New(programName, dir string, opts *options.Options) *Logger {
	if opts == nil {
		opts = options.Global
	}
	return &Logger{
		programName: programName,
		dir:         dir,
		opts:        opts,
		known:       map[string]bool{},
	}
}

// Section advances to a new named compilation section (e.g. "scheduling",
// "bounds", "lowering"); subsequent Log calls use this as the description
// until Section is called again.
func (l *Logger) Section(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.section++
	l.description = name
}

// Reset clears the previously-logged statement, forcing the next Log call
// to write unconditionally. Call between independent compilations of the
// same program so a fresh compilation doesn't get suppressed by the
// previous one's final statement.
func (l *Logger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prev = nil
}

// Log writes s to this section's dump file, unless s is structurally equal
// to the last statement logged and the configured debug level doesn't force
// it anyway.
func (l *Logger) Log(s ir.Stmt, description string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if description != "" {
		l.description = description
	}
	l.section++

	unchanged := ir.EqualStmt(s, l.prev)
	l.prev = s
	if unchanged && l.opts.DebugLevel <= 2 {
		return
	}

	name := fmt.Sprintf("%s_%d_%s", l.programName, l.section, l.description)
	l.writeFile(name, ir.PrintStmt(s))
}

func (l *Logger) writeFile(name, body string) {
	clean := sanitizeRe.ReplaceAllString(name, "_") + ".log"
	path := clean
	if l.dir != "" {
		if err := os.MkdirAll(l.dir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "codelog: cannot create %s: %v\n", l.dir, err)
			return
		}
		path = filepath.Join(l.dir, clean)
	}

	flags := os.O_WRONLY | os.O_CREATE
	if l.known[clean] {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
		l.known[clean] = true
	}

	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "codelog: cannot open %s: %v\n", path, err)
		return
	}
	defer f.Close()
	fmt.Fprintln(f, body)
}

// Console logs a one-line, level-tagged message to stderr if
// opts.ShouldLog(section, verbosity) allows it. File output from Log is
// not gated by ShouldLog. Colors mirror the rest of this toolchain's
// diagnostics.
func (l *Logger) Console(section string, verbosity int, format string, args ...any) {
	if !l.opts.ShouldLog(section, verbosity) {
		return
	}
	tag := color.New(color.FgCyan).Sprintf("[%s]", section)
	fmt.Fprintf(os.Stderr, "%s %s\n", tag, fmt.Sprintf(format, args...))
}
