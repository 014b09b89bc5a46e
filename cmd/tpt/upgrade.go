package main

import (
	"context"
	"flag"
	"fmt"
)

const upgradeHelp = `tpt upgrade [-no-apply]

Check for updates to every tpt/tpt-git-sourced package and refresh every
detected native manager (apt, flatpak, snap). With -no-apply, nothing is
applied now: updates are staged into an AADPO manifest and applied at the
next shutdown instead (see "tpt system-integrate install").

Example:
  % tpt upgrade
  % tpt upgrade -no-apply
`

func cmdupgrade(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("upgrade", flag.ExitOnError)
	noApply := fset.Bool("no-apply", false, "stage updates for next shutdown instead of applying now")
	fset.Usage = usage(fset, upgradeHelp)
	fset.Parse(args)

	pm, err := newPackageManager()
	if err != nil {
		return err
	}

	report, err := pm.Upgrade(ctx, *noApply)
	if err != nil {
		return err
	}

	if len(report.TPTUpdates) == 0 {
		fmt.Println("no tpt-sourced updates available")
	}
	for _, u := range report.TPTUpdates {
		fmt.Printf("%s: %s -> %s\n", u.Name, u.Installed, u.Latest.Version)
	}
	for _, m := range report.SystemManagers {
		fmt.Printf("system manager detected: %s\n", m)
	}
	if report.Staged {
		fmt.Println("staged for next shutdown")
	}
	return nil
}
