// Package cache implements the build-output cache: a snapshot of the build
// directory addressed by (host OS, toolchain fingerprint). Entries live in a
// pluggable blob store behind a narrow get/put interface; the store keeps
// exactly one entry per key and last writer wins.
package cache

import "runtime"

// Key addresses a cache entry. It is a pure function of the host OS and the
// toolchain fingerprint: identical inputs always produce identical keys, and
// differing fingerprints always produce differing keys.
type Key struct {
	// OS is the host operating system identifier (e.g. "linux").
	OS string
	// Fingerprint identifies the installed toolchain version.
	Fingerprint string
}

// NewKey builds a key for the current host OS.
func NewKey(fingerprint string) Key {
	return Key{OS: runtime.GOOS, Fingerprint: fingerprint}
}

// String renders the composite key as "<os>-<fingerprint>".
func (k Key) String() string {
	return k.OS + "-" + k.Fingerprint
}
