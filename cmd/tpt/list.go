package main

import (
	"context"
	"flag"
	"fmt"
	"sort"
)

const listHelp = `tpt list

List every package tpt currently tracks as installed.

Example:
  % tpt list
`

func cmdlist(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("list", flag.ExitOnError)
	fset.Usage = usage(fset, listHelp)
	fset.Parse(args)

	pm, err := newPackageManager()
	if err != nil {
		return err
	}

	installed := pm.ListInstalled()
	names := make([]string, 0, len(installed))
	for name := range installed {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		record := installed[name]
		fmt.Printf("%s\t%s\t%s\t%s\n", name, record.Version, record.Source, record.InstallationDetails.Handler)
	}
	return nil
}
