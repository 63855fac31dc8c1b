package license

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	ledgerFile = "accepted-licenses"
	keyFile    = "license.key"

	// EnvPrefix marks acceptances supplied through the process environment:
	// RECAST_ACCEPT_LICENSE_<CANONICAL_NAME_WITH_UNDERSCORES_FOR_SPACES>=true
	EnvPrefix = "RECAST_ACCEPT_LICENSE_"
)

// Acceptation pairs a canonical license name with the instant it was
// accepted. Re-acceptance renews the timestamp; acceptations are never
// deleted by the program.
type Acceptation struct {
	Name string
	At   time.Time
}

// Requirement records that a module (a loaded recipe source) requires a
// license.
type Requirement struct {
	License License
	Module  string
}

// Ledger tracks required versus accepted licenses for one installation. The
// on-disk ledger file is read once at construction and rewritten at most once
// per Verify call; concurrent processes race last-writer-wins, which is an
// accepted limitation.
type Ledger struct {
	dir        string
	required   map[License][]string
	accepted   map[string]Acceptation
	acceptList []string
	dirty      bool
	now        func() time.Time
	environ    func() []string
}

type Option func(*Ledger)

// WithAcceptList supplies caller acceptances, matched case-insensitively with
// short-code aliasing against the remaining unaccepted licenses at Verify
// time.
func WithAcceptList(values []string) Option {
	return func(l *Ledger) { l.acceptList = values }
}

// WithEnviron overrides the process environment scanned for accept markers.
func WithEnviron(environ func() []string) Option {
	return func(l *Ledger) { l.environ = environ }
}

// WithClock overrides the acceptance timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// Open reads the acceptance ledger under dir (absence means nothing was ever
// accepted) and consumes every accept-license marker currently set in the
// process environment, renewing its timestamp. Malformed ledger lines are a
// hard failure.
func Open(dir string, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		dir:      dir,
		required: make(map[License][]string),
		now:      time.Now,
		environ:  os.Environ,
	}
	for _, opt := range opts {
		opt(l)
	}

	accepted, err := parseLedger(filepath.Join(dir, ledgerFile))
	if err != nil {
		return nil, err
	}
	l.accepted = accepted

	for _, entry := range l.environ() {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || value == "" || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		if lic, ok := Parse(key[len(EnvPrefix):]); ok {
			l.accept(lic)
		}
	}

	return l, nil
}

// Require records that module needs the license. Requirements deduplicate by
// canonical name and by module.
func (l *Ledger) Require(lic License, module string) {
	if !slices.Contains(l.required[lic], module) {
		l.required[lic] = append(l.required[lic], module)
	}
}

// Requirements returns every recorded requirement, in verification order.
func (l *Ledger) Requirements() []Requirement {
	var out []Requirement
	for _, lic := range All {
		for _, module := range slices.Sorted(slices.Values(l.required[lic])) {
			out = append(out, Requirement{License: lic, Module: module})
		}
	}
	return out
}

// Verify checks every required license for acceptance, persists any new
// acceptances, and fails with an UnacceptedError enumerating whatever
// remains.
func (l *Ledger) Verify() error {
	var unaccepted []Unaccepted

	for _, lic := range All {
		modules, ok := l.required[lic]
		if !ok {
			continue
		}
		if l.isAccepted(lic) {
			continue
		}

		if l.acceptListed(lic) {
			l.accept(lic)
			continue
		}

		unaccepted = append(unaccepted, Unaccepted{
			License: lic,
			Modules: slices.Sorted(slices.Values(modules)),
		})
	}

	if l.dirty {
		if err := l.flush(); err != nil {
			return err
		}
		l.dirty = false
	}

	if len(unaccepted) > 0 {
		return &UnacceptedError{Licenses: unaccepted}
	}
	return nil
}

// isAccepted reports whether the license needs no further action: the
// always-trusted default, a restricted tier vouched for by a non-empty
// license key file, or a name present in the acceptance set.
func (l *Ledger) isAccepted(lic License) bool {
	if !lic.Restricted() {
		return true
	}
	if l.keyPresent() {
		return true
	}
	_, ok := l.accepted[lic.Name()]
	return ok
}

func (l *Ledger) acceptListed(lic License) bool {
	for _, s := range l.acceptList {
		if parsed, ok := Parse(s); ok && parsed == lic {
			return true
		}
	}
	return false
}

func (l *Ledger) accept(lic License) {
	l.accepted[lic.Name()] = Acceptation{Name: lic.Name(), At: l.now()}
	l.dirty = true
}

func (l *Ledger) keyPresent() bool {
	bs, err := os.ReadFile(filepath.Join(l.dir, keyFile))
	return err == nil && len(bytes.TrimSpace(bs)) > 0
}

// flush rewrites the full ledger, existing and new acceptances alike, one
// name=epochSeconds line per license.
func (l *Ledger) flush() error {
	var b strings.Builder
	for _, name := range slices.Sorted(maps.Keys(l.accepted)) {
		fmt.Fprintf(&b, "%s=%d\n", name, l.accepted[name].At.Unix())
	}

	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(l.dir, ledgerFile), []byte(b.String()), 0o644)
}

func parseLedger(path string) (map[string]Acceptation, error) {
	out := make(map[string]Acceptation)

	bs, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return out, nil
	}
	if err != nil {
		return nil, err
	}

	for i, line := range strings.Split(string(bs), "\n") {
		if line == "" {
			continue
		}
		name, ts, ok := strings.Cut(line, "=")
		if !ok || name == "" {
			return nil, &ParseError{Path: path, Line: i + 1, Entry: line}
		}
		secs, err := strconv.ParseInt(ts, 10, 64)
		if err != nil {
			return nil, &ParseError{Path: path, Line: i + 1, Entry: line}
		}
		out[name] = Acceptation{Name: name, At: time.Unix(secs, 0)}
	}
	return out, nil
}

// ParseError reports a malformed ledger line. Malformed entries are never
// silently skipped.
type ParseError struct {
	Path  string
	Line  int
	Entry string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: malformed ledger entry %q", e.Path, e.Line, e.Entry)
}

// Unaccepted describes one required-but-unaccepted license.
type Unaccepted struct {
	License License
	Modules []string
}

// AcceptFlag returns the ready-to-use command line flag accepting the
// license.
func (u Unaccepted) AcceptFlag() string {
	return fmt.Sprintf("--accept-license=%q", u.License.Name())
}

// UnacceptedError enumerates every license still requiring acceptance. It is
// a policy signal, not a bug: callers render it as a plain, actionable list.
type UnacceptedError struct {
	Licenses []Unaccepted
}

func (e *UnacceptedError) Error() string {
	var b strings.Builder
	b.WriteString("use of the loaded recipes requires accepting the following licenses:")
	for _, u := range e.Licenses {
		fmt.Fprintf(&b, "\n  %s", u.License.Name())
		if url := u.License.URL(); url != "" {
			fmt.Fprintf(&b, " (%s)", url)
		}
		fmt.Fprintf(&b, "\n    required by: %s", strings.Join(u.Modules, ", "))
		fmt.Fprintf(&b, "\n    accept with: %s", u.AcceptFlag())
	}
	return b.String()
}
