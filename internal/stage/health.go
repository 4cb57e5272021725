package stage

import (
	"fmt"
	"os/exec"
	"strings"
)

// Health summarizes the readiness of a generation stage.
type Health struct {
	Name   string
	Ready  bool
	Detail string
}

// Healthy constructs a ready Health record.
func Healthy(name string) Health {
	return Health{Name: name, Ready: true}
}

// Unhealthy constructs an unhealthy Health record with context detail.
func Unhealthy(name, detail string) Health {
	return Health{Name: name, Ready: false, Detail: detail}
}

// BinaryHealth reports whether every binary resolves on PATH.
func BinaryHealth(name string, binaries ...string) Health {
	for _, binary := range binaries {
		binary = strings.TrimSpace(binary)
		if binary == "" {
			return Unhealthy(name, "binary not configured")
		}
		if _, err := exec.LookPath(binary); err != nil {
			return Unhealthy(name, fmt.Sprintf("binary %q not found", binary))
		}
	}
	return Healthy(name)
}
