// Package consts defines the constants used by the project
package consts

import "github.com/ubuntu/idbridge/log"

var (
	// Version is the version of the executable.
	Version = "Dev"
)

const (
	// CmdName is the name of the command line tool.
	CmdName = "idbridge"

	// DefaultLogLevel is the default logging level selected without any option.
	DefaultLogLevel = log.NoticeLevel

	// DefaultConfigDir is the system directory searched for the configuration file.
	DefaultConfigDir = "/etc/idbridge"

	// DefaultMaxGroupCapacity is the largest group list the bridge accepts to allocate.
	// It matches NGROUPS_MAX on Linux.
	DefaultMaxGroupCapacity = 65536
)
