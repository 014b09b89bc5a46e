package main

import (
	"context"
	"flag"
	"fmt"
)

const uninstallHelp = `tpt uninstall <name>

Remove an installed package, reversing whatever its handler recorded at
install time.

Example:
  % tpt uninstall firefox
`

func cmduninstall(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("uninstall", flag.ExitOnError)
	fset.Usage = usage(fset, uninstallHelp)
	fset.Parse(args)
	if fset.NArg() != 1 {
		fset.Usage()
		return fmt.Errorf("uninstall requires exactly one package name")
	}
	name := fset.Arg(0)

	pm, err := newPackageManager()
	if err != nil {
		return err
	}

	if record, ok := pm.DB.Get(name); ok && record.InstallationDetails.Sandbox {
		if err := pm.UninstallSandboxed(ctx, name); err != nil {
			return err
		}
		fmt.Printf("uninstalled %s (destroyed sandbox %s)\n", name, record.InstallationDetails.SandboxName)
		return nil
	}

	if err := pm.Uninstall(ctx, name); err != nil {
		return err
	}
	fmt.Printf("uninstalled %s\n", name)
	return nil
}
