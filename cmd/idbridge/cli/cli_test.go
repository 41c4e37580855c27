package cli_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"
	"github.com/ubuntu/idbridge/cmd/idbridge/cli"
	"github.com/ubuntu/idbridge/internal/nss"
	"github.com/ubuntu/idbridge/internal/nss/testutils"
	"github.com/ubuntu/idbridge/internal/registry"
	"github.com/ubuntu/idbridge/internal/testutils/golden"
	"gopkg.in/yaml.v3"
	"gorbe.io/go/osrelease"
)

func newTestFacility() *testutils.Facility {
	return &testutils.Facility{
		Users: []nss.UserRecord{
			{Name: "root", Passwd: "x", UID: 0, GID: 0, Gecos: "root", Dir: "/root", Shell: "/bin/bash"},
			{Name: "alice", Passwd: "x", UID: 1000, GID: 1000, Gecos: "Alice", Dir: "/home/alice", Shell: "/bin/zsh"},
		},
		Groups: []nss.GroupRecord{
			{Name: "root", Passwd: "x", GID: 0},
			{Name: "sudo", Passwd: "x", GID: 27},
			{Name: "users", Passwd: "x", GID: 100},
			{Name: "alice", Passwd: "x", GID: 1000},
		},
		Memberships: map[string][]uint32{
			"alice": {27, 100},
		},
	}
}

var errFacility = errors.New("directory server unreachable")

type commandCase struct {
	args        []string
	facilityErr error

	wantErr        error
	wantUsageError bool
}

func runCommandCases(t *testing.T, tests map[string]commandCase) {
	t.Helper()

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			f := newTestFacility()
			f.Err = tc.facilityErr

			a, out := cli.NewForTests(t, f, false, tc.args...)

			err := a.Run()
			require.Equal(t, tc.wantUsageError, a.UsageError(), "Unexpected usage error state")
			if tc.wantUsageError {
				require.Error(t, err, "Run should return an error")
				return
			}
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr, "Run should return the expected error")
				return
			}
			require.NoError(t, err, "Run should not return an error")

			golden.CheckOrUpdate(t, out.String())
		})
	}
}

func TestUserCommands(t *testing.T) {
	t.Parallel()

	runCommandCases(t, map[string]commandCase{
		"Uid_of_user":            {args: []string{"user", "uid", "alice"}},
		"Name_of_uid":            {args: []string{"user", "name", "1000"}},
		"Groups_of_user_by_name": {args: []string{"user", "groups", "alice"}},
		"Groups_of_user_by_uid":  {args: []string{"user", "groups", "1000"}},
		"Groups_of_root":         {args: []string{"user", "groups", "root"}},
		"Show_user_by_name":      {args: []string{"user", "show", "alice"}},
		"Show_user_by_uid":       {args: []string{"user", "show", "0"}},

		"Error_on_unknown_user":           {args: []string{"user", "uid", "carol"}, wantErr: registry.NotFoundError{}},
		"Error_on_unknown_uid":            {args: []string{"user", "name", "4242"}, wantErr: registry.NotFoundError{}},
		"Error_on_groups_of_unknown_user": {args: []string{"user", "groups", "carol"}, wantErr: registry.NotFoundError{}},
		"Error_on_show_unknown_uid":       {args: []string{"user", "show", "4294967295"}, wantErr: registry.NotFoundError{}},
		"Error_on_facility_failure":       {args: []string{"user", "uid", "alice"}, facilityErr: errFacility, wantErr: errFacility},
		"Error_on_missing_argument":       {args: []string{"user", "uid"}, wantUsageError: true},
		"Error_on_malformed_uid":          {args: []string{"user", "name", "alice"}, wantUsageError: true},
		"Error_on_out_of_range_uid":       {args: []string{"user", "name", "4294967296"}, wantUsageError: true},
		"Error_on_too_many_arguments":     {args: []string{"user", "groups", "alice", "root"}, wantUsageError: true},
		"Error_on_unknown_subcommand":     {args: []string{"user", "delete", "alice"}, wantUsageError: true},
	})
}

func TestGroupCommands(t *testing.T) {
	t.Parallel()

	runCommandCases(t, map[string]commandCase{
		"Gid_of_group":       {args: []string{"group", "gid", "sudo"}},
		"Name_of_gid":        {args: []string{"group", "name", "100"}},
		"Show_group_by_name": {args: []string{"group", "show", "sudo"}},
		"Show_group_by_gid":  {args: []string{"group", "show", "0"}},

		"Error_on_unknown_group":    {args: []string{"group", "gid", "wheel"}, wantErr: registry.NotFoundError{}},
		"Error_on_unknown_gid":      {args: []string{"group", "name", "4242"}, wantErr: registry.NotFoundError{}},
		"Error_on_facility_failure": {args: []string{"group", "show", "sudo"}, facilityErr: errFacility, wantErr: registry.LookupFailureError{}},
		"Error_on_missing_argument": {args: []string{"group", "name"}, wantUsageError: true},
		"Error_on_malformed_gid":    {args: []string{"group", "name", "staff"}, wantUsageError: true},
	})
}

func TestInvalidIDMessage(t *testing.T) {
	t.Parallel()

	a, _ := cli.NewForTests(t, newTestFacility(), false, "user", "name", "-1")
	err := a.Run()
	// -1 is parsed as a shorthand flag.
	require.Error(t, err, "Run should return an error")

	a, _ = cli.NewForTests(t, newTestFacility(), false, "group", "name", "staff")
	err = a.Run()
	require.EqualError(t, err, `failed to parse GID "staff": invalid syntax`)
	require.True(t, a.UsageError(), "A malformed id is a usage error")

	a, _ = cli.NewForTests(t, newTestFacility(), false, "user", "name", "4294967296")
	err = a.Run()
	require.EqualError(t, err, `failed to parse UID "4294967296": value out of range`)
	require.True(t, a.UsageError(), "An id out of range is a usage error")
}

func TestYAMLOutput(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		args []string

		wantPrefix string
		want       map[string]any
	}{
		"Uid_of_user": {
			args:       []string{"user", "uid", "alice"},
			wantPrefix: "name: alice\nuid: 1000\n",
			want:       map[string]any{"name": "alice", "uid": 1000},
		},
		"Groups_of_user": {
			args:       []string{"user", "groups", "alice"},
			wantPrefix: "user: alice\n",
			want:       map[string]any{"user": "alice", "groups": []any{1000, 27, 100}},
		},
		"Show_user": {
			args:       []string{"user", "show", "root"},
			wantPrefix: "name: root\npasswd: x\nuid: 0\n",
			want: map[string]any{
				"name": "root", "passwd": "x", "uid": 0, "gid": 0,
				"gecos": "root", "dir": "/root", "shell": "/bin/bash",
			},
		},
		"Show_group": {
			args:       []string{"group", "show", "27"},
			wantPrefix: "name: sudo\n",
			want:       map[string]any{"name": "sudo", "passwd": "x", "gid": 27},
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			a, out := cli.NewForTests(t, newTestFacility(), false, append(tc.args, "--format", "yaml")...)
			require.NoError(t, a.Run(), "Run should not return an error")

			require.True(t, strings.HasPrefix(out.String(), tc.wantPrefix), "Fields are not in the expected order: %q", out.String())

			var got map[string]any
			require.NoError(t, yaml.Unmarshal(out.Bytes(), &got), "Output should be valid YAML")
			require.Equal(t, tc.want, got, "Unexpected YAML content")
		})
	}
}

func TestTableOutput(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		args     []string
		terminal bool

		wantContains []string
	}{
		"Auto_format_on_a_terminal": {
			args:         []string{"user", "show", "alice"},
			terminal:     true,
			wantContains: []string{"NAME", "UID", "SHELL", "alice", "1000", "/bin/zsh"},
		},
		"Explicit_table_format": {
			args:         []string{"user", "groups", "alice", "--format", "table"},
			wantContains: []string{"USER", "GROUPS", "alice", "1000,27,100"},
		},
		"Table_of_a_group": {
			args:         []string{"group", "gid", "users", "-f", "table"},
			wantContains: []string{"NAME", "GID", "users", "100"},
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			a, out := cli.NewForTests(t, newTestFacility(), tc.terminal, tc.args...)
			require.NoError(t, a.Run(), "Run should not return an error")

			for _, s := range tc.wantContains {
				require.Contains(t, out.String(), s, "Table should contain %q", s)
			}
			require.NotContains(t, out.String(), "\x1b[", "Table should not contain escape sequences with an ASCII profile")
		})
	}
}

func TestConfiguration(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		args []string

		wantFormat          string
		wantInitialCapacity int
		wantMaxCapacity     int
		wantGroupListCalls  int
		wantErr             error
		wantErrContains     string
	}{
		"Defaults": {
			args:               []string{"user", "groups", "alice"},
			wantFormat:         "auto",
			wantMaxCapacity:    65536,
			wantGroupListCalls: 2,
		},
		"Configuration_file": {
			args:                []string{"--config", filepath.Join("testdata", "idbridge.yaml"), "user", "groups", "alice"},
			wantFormat:          "yaml",
			wantInitialCapacity: 8,
			wantMaxCapacity:     128,
			wantGroupListCalls:  1,
		},
		"Flags_override_the_configuration_file": {
			args:                []string{"--config", filepath.Join("testdata", "idbridge.yaml"), "--format", "text", "--max-groups", "16", "user", "groups", "alice"},
			wantFormat:          "text",
			wantInitialCapacity: 8,
			wantMaxCapacity:     16,
			wantGroupListCalls:  1,
		},
		"Group_list_over_the_maximum_capacity": {
			args:               []string{"--max-groups", "2", "user", "groups", "alice"},
			wantFormat:         "auto",
			wantMaxCapacity:    2,
			wantGroupListCalls: 1,
			wantErr:            nss.ErrGroupCapacityExceeded,
		},

		"Error_on_invalid_format": {
			args:            []string{"--format", "xml", "user", "uid", "alice"},
			wantErrContains: `invalid output format "xml"`,
		},
		"Error_on_invalid_configuration_file": {
			args:            []string{"--config", filepath.Join("testdata", "invalid.yaml"), "user", "uid", "alice"},
			wantErrContains: "invalid configuration file",
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			f := newTestFacility()
			a, _ := cli.NewForTests(t, f, false, tc.args...)

			err := a.Run()
			if tc.wantErrContains != "" {
				require.ErrorContains(t, err, tc.wantErrContains, "Run should return the expected error")
				return
			}
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr, "Run should return the expected error")
			} else {
				require.NoError(t, err, "Run should not return an error")
			}

			format, initialCapacity, maxCapacity := a.Config()
			require.Equal(t, tc.wantFormat, format, "Unexpected output format")
			require.Equal(t, tc.wantInitialCapacity, initialCapacity, "Unexpected initial group capacity")
			require.Equal(t, tc.wantMaxCapacity, maxCapacity, "Unexpected maximum group capacity")
			require.Equal(t, tc.wantGroupListCalls, f.GroupListCalls(), "Unexpected number of group list calls")
		})
	}
}

func TestConfigurationFromEnvironment(t *testing.T) {
	// This test can't be parallel, since it changes the environment.
	t.Setenv("IDBRIDGE_FORMAT", "yaml")
	t.Setenv("IDBRIDGE_GROUPS_INITIALCAPACITY", "3")

	f := newTestFacility()
	a, out := cli.NewForTests(t, f, false, "user", "groups", "alice")
	require.NoError(t, a.Run(), "Run should not return an error")

	format, initialCapacity, _ := a.Config()
	require.Equal(t, "yaml", format, "Format should be read from the environment")
	require.Equal(t, 3, initialCapacity, "Initial capacity should be read from the environment")
	require.Equal(t, 1, f.GroupListCalls(), "A sufficient initial capacity needs a single call")
	require.True(t, strings.HasPrefix(out.String(), "user: alice\n"), "Output should be YAML: %q", out.String())
}

func TestVersion(t *testing.T) {
	t.Parallel()

	a, out := cli.NewForTests(t, newTestFacility(), false, "version")
	require.NoError(t, a.Run(), "Run should not return an error")

	golden.CheckOrUpdate(t, out.String())
}

func TestUsage(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		args []string

		wantUsageError bool
	}{
		"Usage_message_when_no_args": {},
		"Help_flag":                  {args: []string{"--help"}},
		"Usage_of_user_command":      {args: []string{"user"}},
		"Usage_of_group_command":     {args: []string{"group"}},
		"Completion_does_not_query":  {args: []string{"completion", "bash"}},

		"Error_on_invalid_command": {args: []string{"doesnotexist"}, wantUsageError: true},
		"Error_on_invalid_flag":    {args: []string{"--invalid-flag"}, wantUsageError: true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			f := newTestFacility()
			a, out := cli.NewForTests(t, f, false, tc.args...)

			err := a.Run()
			if tc.wantUsageError {
				require.Error(t, err, "Run should return an error")
				require.True(t, a.UsageError(), "Error should be a usage error")
				return
			}
			require.NoError(t, err, "Run should not return an error")
			require.NotEmpty(t, out.String(), "Some output is expected")
			require.Zero(t, f.GroupListCalls(), "No query should be made")
		})
	}
}

func TestMain(m *testing.M) {
	osrelease.Path = filepath.Join("testdata", "os-release")
	lipgloss.SetColorProfile(termenv.Ascii)

	os.Exit(m.Run())
}
