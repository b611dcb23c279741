package main

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/jmoiron/sqlx"
)

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := &commandLine{}

	migrateRunFunc = func(db *sqlx.DB, command string, args ...string) error {
		switch command {
		case "up", "down", "drop", "version": // pass
		case "force":
			if len(args) == 0 {
				return fmt.Errorf("force must be of form: admin migrate force VERSION")
			}
			if _, err := strconv.Atoi(args[0]); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "force: no args", args: []string{"migrate", "force"}, wantErrStr: "force must be of form: admin migrate force VERSION"},
		{name: "force: non-int arg", args: []string{"migrate", "force", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "drop", args: []string{"migrate", "drop"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "force", args: []string{"migrate", "force", "2"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_help(t *testing.T) {
	cli := &commandLine{}

	readPasswordFunc = func(fd int) ([]byte, error) { return nil, nil }

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "resetpassword: no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "resetpassword: username but no password", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp},
		{name: "createschool: no args", args: []string{"createschool"}, wantErr: errHelp},
		{name: "addadmin: missing email", args: []string{"addadmin", "-name", "Awe", "-username", "awe"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
