package main

import (
	"context"
	"flag"
	"fmt"
)

const searchHelp = `tpt search <term>

Search every configured backend (tpt repositories, apt, flatpak, snap) for
term and print one line per match.

Example:
  % tpt search firefox
`

func cmdsearch(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("search", flag.ExitOnError)
	fset.Usage = usage(fset, searchHelp)
	fset.Parse(args)
	if fset.NArg() != 1 {
		fset.Usage()
		return fmt.Errorf("search requires exactly one term")
	}

	pm, err := newPackageManager()
	if err != nil {
		return err
	}

	results, err := pm.Search(ctx, fset.Arg(0))
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("no matches found")
		return nil
	}
	for _, d := range results {
		if d.Description != "" {
			fmt.Printf("%s\t%s\t%s\t%s\n", d.Name, d.Version, d.Source, d.Description)
		} else {
			fmt.Printf("%s\t%s\t%s\n", d.Name, d.Version, d.Source)
		}
	}
	return nil
}
