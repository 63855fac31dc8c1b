// Package properties resolves free-form, pattern-keyed configuration trees
// onto concrete dotted names. Configuration authors write either deeply nested
// maps or single dotted keys (or both); resolution reconciles the two
// deterministically.
package properties

import (
	"maps"
	"regexp"
	"slices"
	"strings"
	"sync"
)

var (
	patternMu    sync.Mutex
	patternCache = map[string]*regexp.Regexp{}
)

// Pattern converts a glob-style key fragment into an anchored regular
// expression. `*` matches one or more characters up to the next namespace
// separator; everything else is literal. Compiled patterns are cached.
func Pattern(fragment string) *regexp.Regexp {
	patternMu.Lock()
	defer patternMu.Unlock()

	if re, ok := patternCache[fragment]; ok {
		return re
	}

	var b strings.Builder
	b.WriteByte('^')
	for _, r := range fragment {
		if r == '*' {
			b.WriteString(`[^.]+`)
		} else {
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteByte('$')

	re := regexp.MustCompile(b.String())
	patternCache[fragment] = re
	return re
}

type progress int

const (
	// matched: the pattern matched the entire target.
	matched progress = iota
	// hitEnd: the target was exhausted while pattern segments remained, i.e.
	// the target is a proper prefix of something the pattern could match.
	hitEnd
	// mismatch: a segment failed outright.
	mismatch
)

// match compares a dotted glob pattern against a dotted target, segment by
// segment. The hitEnd outcome drives the dotted-key peeling in Resolve.
func match(pattern, target string) progress {
	ps := segments(pattern)
	ts := segments(target)

	for i, p := range ps {
		if i >= len(ts) {
			return hitEnd
		}
		if !Pattern(p).MatchString(ts[i]) {
			return mismatch
		}
	}

	if len(ts) > len(ps) {
		return mismatch
	}
	return matched
}

func segments(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ".")
}

// Resolve flattens the configuration tree into the property map that applies
// to the given dotted name. An empty name, or configuration values that are
// neither maps nor scalars under a dotted key, yield an empty result.
func Resolve(config map[string]any, name string) map[string]any {
	if name == "" {
		return map[string]any{}
	}
	return resolve(config, name)
}

func resolve(config map[string]any, name string) map[string]any {
	out := make(map[string]any)
	keys := slices.Sorted(maps.Keys(config)) // deterministic collision order

	// Nested-map walk: at every dot boundary of the name (including the end of
	// the name itself), recurse into map values whose key pattern matches the
	// prefix in full.
	for _, boundary := range boundaries(name) {
		subpackage := name[:boundary]
		var remaining string
		if boundary < len(name) {
			remaining = name[boundary+1:]
		}

		for _, key := range keys {
			child, ok := config[key].(map[string]any)
			if !ok {
				continue
			}
			if match(key, subpackage) != matched {
				continue
			}
			maps.Copy(out, resolve(child, remaining))
		}
	}

	// Dotted-key walk: scalar values under (possibly multi-segment) dotted
	// keys are layered on top, so they win on collision.
	for _, key := range keys {
		if _, ok := config[key].(map[string]any); ok {
			continue // covered by the nested-map walk
		}
		if props, ok := dottedKey(key, config[key], name); ok {
			maps.Copy(out, props)
		}
	}

	return out
}

// dottedKey treats key as a multi-segment dotted pattern whose last segment is
// the leaf property name. The prefix is matched right-anchored against the
// whole name; while the match attempt exhausts the name without succeeding,
// one more segment is peeled off the prefix and re-nested into the value map.
func dottedKey(key string, value any, name string) (map[string]any, bool) {
	segs := segments(key)
	if len(segs) == 0 {
		return nil, false
	}

	acc := map[string]any{segs[len(segs)-1]: value}
	prefix := segs[:len(segs)-1]

	for {
		switch match(strings.Join(prefix, "."), name) {
		case matched:
			return acc, true
		case hitEnd:
			last := prefix[len(prefix)-1]
			prefix = prefix[:len(prefix)-1]
			acc = map[string]any{last: acc}
		default:
			return nil, false
		}
	}
}

// boundaries returns the offsets of every dot in name plus len(name), so the
// final prefix is the whole name with nothing remaining.
func boundaries(name string) []int {
	if name == "" {
		return nil
	}

	var out []int
	for i, r := range name {
		if r == '.' {
			out = append(out, i)
		}
	}
	return append(out, len(name))
}
