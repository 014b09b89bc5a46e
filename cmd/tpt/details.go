package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
)

const detailsHelp = `tpt details <name>

Print everything known about name: every matching descriptor found by
search, plus the installed record if one exists.

Example:
  % tpt details firefox
`

func cmddetails(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("details", flag.ExitOnError)
	fset.Usage = usage(fset, detailsHelp)
	fset.Parse(args)
	if fset.NArg() != 1 {
		fset.Usage()
		return fmt.Errorf("details requires exactly one package name")
	}
	name := fset.Arg(0)

	pm, err := newPackageManager()
	if err != nil {
		return err
	}

	if record, ok := pm.DB.Get(name); ok {
		fmt.Printf("installed: %s %s (source=%s, handler=%s)\n", name, record.Version, record.Source, record.InstallationDetails.Handler)
		if record.InstallationDetails.Sandbox {
			fmt.Printf("  sandboxed in %s\n", record.InstallationDetails.SandboxName)
		}
	} else {
		fmt.Printf("not installed: %s\n", name)
	}

	results, err := pm.Search(ctx, name)
	if err != nil {
		return err
	}
	fmt.Println("available:")
	for _, d := range results {
		if !strings.EqualFold(d.Name, name) {
			continue
		}
		fmt.Printf("  %s %s from %s (%s)\n", d.Name, d.Version, d.Source, d.Format)
		if d.Description != "" {
			fmt.Printf("    %s\n", d.Description)
		}
	}
	return nil
}
