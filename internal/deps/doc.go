// Package deps reports whether the external binaries the stages shell out to
// are installed.
package deps
