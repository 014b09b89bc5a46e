package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
)

const systemIntegrateHelp = `tpt system-integrate install|uninstall

Install or remove the tpt-aadpo.service systemd unit that applies staged
updates (see "tpt upgrade -no-apply") before the machine shuts down.

Example:
  % tpt system-integrate install
  % tpt system-integrate uninstall
`

func cmdsystemintegrate(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("system-integrate", flag.ExitOnError)
	fset.Usage = usage(fset, systemIntegrateHelp)
	fset.Parse(args)
	if fset.NArg() != 1 {
		fset.Usage()
		return fmt.Errorf("system-integrate requires exactly one of: install, uninstall")
	}

	pm, err := newPackageManager()
	if err != nil {
		return err
	}

	switch fset.Arg(0) {
	case "install":
		self, err := os.Executable()
		if err != nil {
			return err
		}
		applier := filepath.Join(filepath.Dir(self), "tpt-apply-updates")
		return pm.SystemIntegrateInstall(ctx, applier)
	case "uninstall":
		return pm.SystemIntegrateUninstall(ctx)
	default:
		fset.Usage()
		return fmt.Errorf("unknown system-integrate subcommand %q", fset.Arg(0))
	}
}

const aadpoStatusHelp = `tpt aadpo-status

Report whether updates are currently staged for application at shutdown.

Example:
  % tpt aadpo-status
`

func cmdaadpostatus(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("aadpo-status", flag.ExitOnError)
	fset.Usage = usage(fset, aadpoStatusHelp)
	fset.Parse(args)

	pm, err := newPackageManager()
	if err != nil {
		return err
	}

	status, err := pm.GetAADPOStatus(ctx)
	if err != nil {
		return err
	}
	if !status.Staged {
		fmt.Println("no updates staged")
		return nil
	}
	fmt.Printf("%d action(s) staged in %s\n", status.ActionCount, status.ManifestPath)
	return nil
}

const fixBrokenHelp = `tpt fix-broken

Run the standard dpkg/apt repair pair ("apt-get install -f" followed by
"dpkg --configure -a") for a system left mid-transaction.

Example:
  % tpt fix-broken
`

func cmdfixbroken(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("fix-broken", flag.ExitOnError)
	fset.Usage = usage(fset, fixBrokenHelp)
	fset.Parse(args)

	pm, err := newPackageManager()
	if err != nil {
		return err
	}
	return pm.FixBroken(ctx)
}
