// Package label renders the key name onto a solid-colour canvas as a PNG.
package label
