// Package license gates use of non-default-licensed recipe content behind a
// persisted, timestamped acceptance ledger.
package license

import "strings"

// License is the closed set of licenses recipe content ships under.
type License int

const (
	// Apache2 is the default, always-trusted license.
	Apache2 License = iota
	// SourceAvailable covers source-available recipe modules.
	SourceAvailable
	// Proprietary covers commercially licensed recipe modules.
	Proprietary
)

// All lists every known license in verification order.
var All = []License{Apache2, SourceAvailable, Proprietary}

func (l License) Name() string {
	switch l {
	case Apache2:
		return "Apache License Version 2.0"
	case SourceAvailable:
		return "Moderne Source Available License"
	case Proprietary:
		return "Moderne Proprietary License"
	}
	return "Unknown License"
}

func (l License) URL() string {
	switch l {
	case Apache2:
		return "https://www.apache.org/licenses/LICENSE-2.0"
	case SourceAvailable:
		return "https://docs.moderne.io/licensing/moderne-source-available-license"
	}
	return ""
}

// Restricted reports whether use of the license requires a key file or an
// explicit acceptance.
func (l License) Restricted() bool {
	return l != Apache2
}

func (l License) String() string {
	return l.Name()
}

// Parse matches a user-supplied string against the canonical license names,
// case-insensitively, with underscores treated as spaces and word-initial
// short codes accepted (e.g. "MSAL" for the Moderne Source Available
// License).
func Parse(s string) (License, bool) {
	normalized := strings.ReplaceAll(s, "_", " ")
	for _, l := range All {
		if strings.EqualFold(normalized, l.Name()) || strings.EqualFold(s, initials(l.Name())) {
			return l, true
		}
	}
	return 0, false
}

func initials(name string) string {
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		b.WriteByte(word[0])
	}
	return b.String()
}
