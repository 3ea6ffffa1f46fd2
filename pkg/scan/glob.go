// fll lets RESP clients list the stored lists by name; the following module implements glob matching over names.

package scan

import (
	"iter"
	"log/slog"

	"v.io/v23/glob"
)

// MatchGlob filters the `names` stream with the given glob `pattern`.
func MatchGlob(pattern string, names iter.Seq[string]) iter.Seq[string] {
	parsedPattern, err := glob.Parse(pattern)
	if err != nil { // If pattern is invalid, return empty sequence.
		slog.Debug("Ignoring an invalid glob pattern.", "pattern", pattern, "error", err)
		return func(yield func(string) bool) {}
	}
	return func(yield func(string) bool) {
		for name := range names {
			if parsedPattern.Head().Match(name) {
				if !yield(name) {
					return
				}
			}
		}
	}
}
