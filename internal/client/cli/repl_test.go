package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool
	calls    []string
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }

func (f *fakeExec) record(name string, args []string) error {
	f.calls = append(f.calls, strings.TrimSpace(name+" "+strings.Join(args, " ")))
	return nil
}

func (f *fakeExec) Login(_ context.Context, args []string) error {
	f.loggedIn = true
	return f.record("login", args)
}

func (f *fakeExec) Logout(_ context.Context, args []string) error {
	f.loggedIn = false
	return f.record("logout", args)
}

func (f *fakeExec) WhoAmI(_ context.Context, a []string) error    { return f.record("whoami", a) }
func (f *fakeExec) Profile(_ context.Context, a []string) error   { return f.record("profile", a) }
func (f *fakeExec) Passwd(_ context.Context, a []string) error    { return f.record("passwd", a) }
func (f *fakeExec) Prefs(_ context.Context, a []string) error     { return f.record("prefs", a) }
func (f *fakeExec) Upload(_ context.Context, a []string) error    { return f.record("upload", a) }
func (f *fakeExec) Images(_ context.Context, a []string) error    { return f.record("images", a) }
func (f *fakeExec) Analyze(_ context.Context, a []string) error   { return f.record("analyze", a) }
func (f *fakeExec) Show(_ context.Context, a []string) error      { return f.record("show", a) }
func (f *fakeExec) Wait(_ context.Context, a []string) error      { return f.record("wait", a) }
func (f *fakeExec) Summary(_ context.Context, a []string) error   { return f.record("summary", a) }
func (f *fakeExec) CallLogs(_ context.Context, a []string) error  { return f.record("calllogs", a) }
func (f *fakeExec) ImportCSV(_ context.Context, a []string) error { return f.record("importcsv", a) }

func captureREPL(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, fmt.Sprint(a...))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func run(exec execIface, input ...string) {
	sc := bufio.NewScanner(strings.NewReader(strings.Join(input, "\n")))
	runREPL(context.Background(), exec, func() string { return "test" }, sc)
}

func TestRunREPL_GuardsCommandsUntilLogin(t *testing.T) {
	out := captureREPL(t)
	exec := &fakeExec{}

	run(exec, "images", "summary", "login", "images", "analyze 7", "calllogs +1 555", "exit", "images")

	assert.Equal(t, []string{"login", "images", "analyze 7", "calllogs +1 555"}, exec.calls)
	assert.Contains(t, *out, "Please log in first (type 'login')")
	assert.Equal(t, "Bye!", (*out)[len(*out)-1])
}

func TestRunREPL_HelpDependsOnSession(t *testing.T) {
	out := captureREPL(t)
	exec := &fakeExec{}

	run(exec, "help", "login", "HELP", "logout", "help")

	assert.Contains(t, *out, helpGuest)
	assert.Contains(t, *out, helpMember)
	assert.Equal(t, []string{"login", "logout"}, exec.calls)
}

func TestRunREPL_UnknownAndBlankLines(t *testing.T) {
	out := captureREPL(t)
	exec := &fakeExec{loggedIn: true}

	run(exec, "", "   ", "frobnicate now", "quit")

	assert.Empty(t, exec.calls)
	assert.Contains(t, *out, "Unknown command:frobnicate")
}

func TestRunREPL_EndsOnEOF(t *testing.T) {
	captureREPL(t)
	exec := &fakeExec{loggedIn: true}

	run(exec, "whoami", "show 3")

	assert.Equal(t, []string{"whoami", "show 3"}, exec.calls)
}
