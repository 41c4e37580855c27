package cli

import (
	"bytes"
	"io"
	"testing"

	"github.com/ubuntu/idbridge/internal/nss"
)

func withFacility(facility nss.Facility) option {
	return func(o *options) {
		o.facility = facility
	}
}

func withConfigDir(dir string) option {
	return func(o *options) {
		o.configDir = dir
	}
}

func withTerminal(terminal bool) option {
	return func(o *options) {
		o.isTerminal = func(io.Writer) bool { return terminal }
	}
}

// NewForTests creates a new App querying facility with the given command line arguments.
// It returns the App and the buffer its output is written to.
func NewForTests(t *testing.T, facility nss.Facility, terminal bool, args ...string) (*App, *bytes.Buffer) {
	t.Helper()

	a := New(withFacility(facility), withConfigDir(t.TempDir()), withTerminal(terminal))

	var out bytes.Buffer
	a.rootCmd.SetOut(&out)
	a.rootCmd.SetErr(io.Discard)
	// A nil slice would make cobra parse the test binary arguments.
	a.rootCmd.SetArgs(append([]string{}, args...))

	return a, &out
}

// Config returns the configuration the App ran with.
func (a *App) Config() (format string, initialGroupCapacity, maxGroupCapacity int) {
	return a.config.Format, a.config.Groups.InitialCapacity, a.config.Groups.MaxCapacity
}
