// Package objectkey describes how upload object keys are laid out:
// "<prefix>/<jobID>_<filename>".
package objectkey

import "strings"

// DefaultPrefix is the top-level folder every upload lands in.
const DefaultPrefix = "uploads"

var separators = strings.NewReplacer("/", "_", "\\", "_")

// Schema composes and parses object keys under a single-segment prefix.
type Schema struct {
	Prefix string
}

// New returns a Schema for prefix, falling back to DefaultPrefix when empty.
func New(prefix string) Schema {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return Schema{Prefix: prefix}
}

// SanitizeFilename replaces path separators so a filename can never add key nesting.
func SanitizeFilename(name string) string {
	return separators.Replace(name)
}

// Compose builds the object key for a job.
func (s Schema) Compose(jobID, filename string) string {
	return s.Prefix + "/" + jobID + "_" + SanitizeFilename(filename)
}

// JobID extracts the job identifier from key.
//
// Accepted layouts are "<prefix>/<id>_<name>" and "<prefix>/<id>/<name>".
// ok is false for keys outside the prefix or without a non-empty id and name;
// callers skip those keys.
func (s Schema) JobID(key string) (id string, ok bool) {
	rest, found := strings.CutPrefix(key, s.Prefix+"/")
	if !found {
		return "", false
	}
	i := strings.IndexAny(rest, "_/")
	if i <= 0 || i == len(rest)-1 {
		return "", false
	}
	return rest[:i], true
}
