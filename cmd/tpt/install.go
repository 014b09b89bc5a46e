package main

import (
	"context"
	"flag"
	"fmt"
)

const installHelp = `tpt install [-source src] [-sandbox] <name>

Resolve name against every configured backend and install it. With
-sandbox, the install runs inside a throwaway LXC container instead of on
the host (only deb, deb.xz, rpm, and alpine_apk formats support this).

Example:
  % tpt install firefox
  % tpt install -source apt firefox
  % tpt install -sandbox suspicious-tool
`

func cmdinstall(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("install", flag.ExitOnError)
	source := fset.String("source", "", "restrict resolution to this source (tpt, tpt-git, apt, flatpak, snap)")
	sandbox := fset.Bool("sandbox", false, "install inside a throwaway LXC container")
	fset.Usage = usage(fset, installHelp)
	fset.Parse(args)
	if fset.NArg() != 1 {
		fset.Usage()
		return fmt.Errorf("install requires exactly one package name")
	}
	name := fset.Arg(0)

	pm, err := newPackageManager()
	if err != nil {
		return err
	}

	if *sandbox {
		rec, err := pm.InstallSandboxed(ctx, name, *source)
		if err != nil {
			return err
		}
		fmt.Printf("installed %s %s in sandbox %s\n", name, rec.Version, rec.InstallationDetails.SandboxName)
		return nil
	}

	rec, err := pm.Install(ctx, name, *source)
	if err != nil {
		return err
	}
	fmt.Printf("installed %s %s\n", name, rec.Version)
	return nil
}
