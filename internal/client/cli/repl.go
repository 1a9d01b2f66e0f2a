package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for REPL output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL drives. App implements it;
// tests use a stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context, args []string) error
	WhoAmI(ctx context.Context, args []string) error
	Profile(ctx context.Context, args []string) error
	Passwd(ctx context.Context, args []string) error
	Prefs(ctx context.Context, args []string) error
	Upload(ctx context.Context, args []string) error
	Images(ctx context.Context, args []string) error
	Analyze(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Wait(ctx context.Context, args []string) error
	Summary(ctx context.Context, args []string) error
	CallLogs(ctx context.Context, args []string) error
	ImportCSV(ctx context.Context, args []string) error
}

const (
	helpGuest  = "Available commands: login, help, exit"
	helpMember = "Available commands: whoami, profile, passwd, prefs [toggle <name>], " +
		"upload <path>, images, analyze <imageID>, show <jobID>, wait <jobID>, summary, " +
		"calllogs [term], importcsv <path>, logout, help, exit"
)

// runREPL reads commands from scanner until EOF, "exit" or "quit".
//
// The first word of a line selects the command and the rest are its
// arguments. Commands other than help, login, exit and quit are refused
// until a session exists. Handler errors are not fatal: handlers report
// them to the user themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	handlers := map[string]func(context.Context, []string) error{
		"login":     a.Login,
		"logout":    a.Logout,
		"whoami":    a.WhoAmI,
		"profile":   a.Profile,
		"passwd":    a.Passwd,
		"prefs":     a.Prefs,
		"upload":    a.Upload,
		"images":    a.Images,
		"analyze":   a.Analyze,
		"show":      a.Show,
		"wait":      a.Wait,
		"summary":   a.Summary,
		"calllogs":  a.CallLogs,
		"importcsv": a.ImportCSV,
	}

	for {
		printlnFn(fmt.Sprintf("gf (%s)> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpMember)
			} else {
				printlnFn(helpGuest)
			}
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		h, ok := handlers[cmd]
		if !ok {
			printlnFn("Unknown command:", cmd)
			continue
		}
		if cmd != "login" && !a.isLoggedIn() {
			printlnFn("Please log in first (type 'login')")
			continue
		}
		_ = h(ctx, args)
	}
}
