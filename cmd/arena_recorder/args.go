package main

import (
	"errors"
	"fmt"

	"github.com/vindinium-archive/recorder/internal/api"
	"github.com/vindinium-archive/recorder/internal/config"
)

// Args are the positional command line arguments.
type Args struct {
	Database string
	User     string
	Host     string // optional
	LogLevel string // optional
}

// ErrMissingArgs is returned when a required argument is absent.
var ErrMissingArgs = errors.New("missing required arguments")

// ParseArgs reads "database-name database-user [hostname] [log-level]".
func ParseArgs(argv []string) (Args, error) {
	if len(argv) < 2 {
		return Args{}, ErrMissingArgs
	}
	if len(argv) > 4 {
		return Args{}, fmt.Errorf("too many arguments: %d", len(argv))
	}

	args := Args{Database: argv[0], User: argv[1]}
	if len(argv) > 2 {
		args.Host = argv[2]
	}
	if len(argv) > 3 {
		args.LogLevel = argv[3]
	}
	if args.Database == "" || args.User == "" {
		return Args{}, ErrMissingArgs
	}
	return args, nil
}

// Apply overrides the loaded configuration with the arguments that were given.
func (a Args) Apply() {
	config.Set("db.database", a.Database)
	config.Set("db.username", a.User)
	if a.Host != "" {
		config.Set("feed.host", a.Host)
	}
	if a.LogLevel != "" {
		config.Set("logLevel", a.LogLevel)
	}
}

// Usage describes the command line.
func Usage(program string) string {
	return fmt.Sprintf(`usage: %s database-name database-user [hostname] [log-level]

  database-name  postgres database to record into
  database-user  postgres user
  hostname       arena server (default %s)
  log-level      trace, debug, info, warn or error (default info)
`, program, api.DefaultHost)
}
