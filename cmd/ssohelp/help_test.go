package main

import (
	"strings"
	"testing"
)

func TestRunHelp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args []string
		want string
	}{
		{nil, "Run 'ssohelp help <command>'"},
		{[]string{"render"}, "--no-static"},
		{[]string{"serve"}, "/policies/firefox.json"},
		{[]string{"check"}, "Exits with 5"},
		{[]string{"policy"}, "chrome-flag"},
		{[]string{"doctor"}, "--json"},
		{[]string{"version"}, "Show version information."},
		{[]string{"help"}, "Usage: ssohelp help [command]"},
	}

	for _, tt := range tests {
		t.Run(strings.Join(append([]string{"help"}, tt.args...), " "), func(t *testing.T) {
			t.Parallel()
			env, stdout, _ := testEnv(nil)
			runHelp(tt.args, env)
			if !strings.Contains(stdout.String(), tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, stdout)
			}
		})
	}
}

func TestRunHelp_UnknownCommand(t *testing.T) {
	t.Parallel()

	env, stdout, stderr := testEnv(nil)
	runHelp([]string{"bogus"}, env)
	if stdout.Len() != 0 {
		t.Errorf("stdout = %q, want empty", stdout)
	}
	if !strings.Contains(stderr.String(), "Unknown command: bogus") {
		t.Errorf("stderr = %q", stderr)
	}
}
