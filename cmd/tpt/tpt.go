// Command tpt is the universal package manager CLI: it dispatches to one of
// the verbs below, each implemented in its own file, following the teacher's
// cmd/distri verb-map idiom.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tpt "github.com/tpt-project/tpt"
	"github.com/tpt-project/tpt/internal/tpterr"
)

func funcmain() error {
	flag.Parse()

	type cmd struct {
		fn func(ctx context.Context, args []string) error
	}
	verbs := map[string]cmd{
		"search":           {cmdsearch},
		"details":          {cmddetails},
		"install":          {cmdinstall},
		"uninstall":        {cmduninstall},
		"upgrade":          {cmdupgrade},
		"list":             {cmdlist},
		"system-integrate": {cmdsystemintegrate},
		"aadpo-status":     {cmdaadpostatus},
		"fix-broken":       {cmdfixbroken},
	}

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintf(os.Stderr, "syntax: tpt [-flags] <command> [options]\n")
		fmt.Fprintln(os.Stderr)
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "\tsearch           - search all configured backends\n")
		fmt.Fprintf(os.Stderr, "\tdetails          - show everything known about a package\n")
		fmt.Fprintf(os.Stderr, "\tinstall          - resolve and install a package\n")
		fmt.Fprintf(os.Stderr, "\tuninstall        - remove an installed package\n")
		fmt.Fprintf(os.Stderr, "\tupgrade          - refresh tpt and native-manager packages\n")
		fmt.Fprintf(os.Stderr, "\tlist             - list installed packages\n")
		fmt.Fprintf(os.Stderr, "\tsystem-integrate - install/remove the shutdown-apply unit\n")
		fmt.Fprintf(os.Stderr, "\taadpo-status     - report staged-update status\n")
		fmt.Fprintf(os.Stderr, "\tfix-broken       - repair a stuck dpkg/apt transaction\n")
		os.Exit(2)
	}

	verb, rest := args[0], args[1:]
	v, ok := verbs[verb]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n", verb)
		fmt.Fprintf(os.Stderr, "syntax: tpt <command> [options]\n")
		os.Exit(2)
	}

	ctx, canc := tpt.InterruptibleContext()
	defer canc()

	if err := v.fn(ctx, rest); err != nil {
		return fmt.Errorf("%s: %w", verb, err)
	}

	return tpt.RunAtExit()
}

func main() {
	if err := funcmain(); err != nil {
		if *debug {
			fmt.Fprintln(os.Stderr, tpterr.DebugReport(err))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(tpterr.ExitCode(err))
	}
}
