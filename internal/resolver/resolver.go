// Package resolver implements spec.md §4.6: a parallel, four-backend
// search and the two install-time fallbacks (convention URL guessing and
// git-checkout lookup) used when a requested name has no exact match.
// Grounded on the teacher's installTransitively1 in cmd/distri/install.go,
// which fans out dependency resolution across goroutines joined by an
// errgroup.Group the same way the backends below are joined.
package resolver

import (
	"bufio"
	"context"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	tpt "github.com/tpt-project/tpt"
	"github.com/tpt-project/tpt/internal/config"
	"github.com/tpt-project/tpt/internal/downloader"
	"github.com/tpt-project/tpt/internal/manifest"
	"github.com/tpt-project/tpt/internal/sysexec"
	"github.com/tpt-project/tpt/internal/tptlog"
	"github.com/tpt-project/tpt/internal/tpterr"
)

// fallbackExtensions is the fixed probe order for the convention fallback,
// per spec.md §4.6.
var fallbackExtensions = []string{".deb", ".sh", ".py", ".AppImage", ".tar.gz", ".zip"}

// Resolver fans a search out across the tpt/apt/flatpak/snap backends and,
// at install time, falls back to convention URL guessing and git checkouts.
type Resolver struct {
	Exec       *sysexec.Runner
	Config     *config.Config
	Fetcher    *manifest.Fetcher
	Downloader *downloader.Downloader
	Logger     *tptlog.Logger
	URLCache   *urlCache
}

// New builds a Resolver, wiring a url-probe cache rooted under
// cfg.CacheDir/url_cache (SPEC_FULL.md §4 supplemented feature).
func New(exec *sysexec.Runner, cfg *config.Config, fetcher *manifest.Fetcher, dl *downloader.Downloader, logger *tptlog.Logger) *Resolver {
	return &Resolver{
		Exec:       exec,
		Config:     cfg,
		Fetcher:    fetcher,
		Downloader: dl,
		Logger:     logger,
		URLCache:   newURLCache(cfg.CacheDir),
	}
}

// Search issues the four backends in parallel and returns their combined
// results. A missing native tool (apt-cache, flatpak, snap) contributes no
// results rather than failing the whole search.
func (r *Resolver) Search(ctx context.Context, term string) ([]tpt.Descriptor, error) {
	results := make([][]tpt.Descriptor, 4)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		results[0] = r.searchTPT(ctx, term)
		return nil
	})
	eg.Go(func() error {
		results[1] = r.searchApt(ctx, term)
		return nil
	})
	eg.Go(func() error {
		results[2] = r.searchFlatpak(ctx, term)
		return nil
	})
	eg.Go(func() error {
		results[3] = r.searchSnap(ctx, term)
		return nil
	})
	// Backend goroutines never return a non-nil error (missing tools are
	// logged and swallowed), so Wait cannot fail; it only joins.
	_ = eg.Wait()

	var out []tpt.Descriptor
	for _, backend := range results {
		out = append(out, backend...)
	}
	return out, nil
}

func (r *Resolver) searchTPT(ctx context.Context, term string) []tpt.Descriptor {
	repos, err := r.Config.ReposFromFile()
	if err != nil {
		r.Logger.Warning("reading configured repos: %v", err)
		return nil
	}
	term = strings.ToLower(term)

	var out []tpt.Descriptor
	for _, repoURL := range repos {
		m, err := r.Fetcher.Fetch(ctx, repoURL)
		if err != nil {
			r.Logger.Warning("fetching manifest from %s: %v", repoURL, err)
			continue
		}
		for name, entry := range m.Packages {
			if !matches(term, name, entry.Description, entry.Keywords) {
				continue
			}
			out = append(out, descriptorFromManifestEntry(name, repoURL, entry))
		}
	}
	return out
}

func matches(term, name, description string, keywords []string) bool {
	if strings.Contains(strings.ToLower(name), term) {
		return true
	}
	if strings.Contains(strings.ToLower(description), term) {
		return true
	}
	for _, k := range keywords {
		if strings.Contains(strings.ToLower(k), term) {
			return true
		}
	}
	return false
}

func descriptorFromManifestEntry(name, repoURL string, entry manifest.PackageManifestEntry) tpt.Descriptor {
	format := entry.Format
	if format == "" {
		format = entry.Extension
	}
	d := tpt.Descriptor{
		Name:          name,
		Version:       entry.Version,
		Source:        tpt.SourceTPT,
		Format:        tpt.Format(format),
		DownloadURL:   entry.DownloadURL,
		SHA256:        entry.SHA256,
		Description:   entry.Description,
		Keywords:      entry.Keywords,
		RepositoryURL: repoURL,
		Metadata:      metadataFromRaw(entry.Metadata),
	}
	if d.Format == "" {
		if f, ok := inferFormat(entry.DownloadURL); ok {
			d.Format = f
		}
	}
	return d
}

// metadataFromRaw decodes a manifest entry's freeform "metadata" object into
// a tpt.Metadata. The original repo-index JSON is stringly typed in places
// (e.g. "terminal": "true" rather than a JSON boolean), so booleans and the
// strip_components count are read tolerantly instead of by direct type
// assertion.
func metadataFromRaw(raw map[string]any) tpt.Metadata {
	var m tpt.Metadata
	m.Icon = stringField(raw, "icon")
	m.Terminal = boolField(raw, "terminal")
	m.Categories = stringField(raw, "categories")
	m.SilentInstallFlags = stringField(raw, "silent_install_flags")
	m.ExecutablePathInPrefix = stringField(raw, "executable_path_in_prefix")
	m.StripComponents = intField(raw, "strip_components")
	m.AppID = stringField(raw, "app_id")
	m.SnapName = stringField(raw, "snap_name")
	m.Channel = stringField(raw, "channel")
	m.Classic = boolField(raw, "classic")
	m.Remote = stringField(raw, "remote")
	m.PackageName = stringField(raw, "package_name")
	return m
}

func stringField(raw map[string]any, key string) string {
	v, ok := raw[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// boolField tolerates both native JSON booleans and the stringly-typed
// "true"/"false" the original repo-index JSON sometimes carries.
func boolField(raw map[string]any, key string) bool {
	v, ok := raw[key]
	if !ok {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, _ := strconv.ParseBool(t)
		return b
	default:
		return false
	}
}

// intField tolerates a JSON number (decoded as float64) or a numeric
// string for strip_components.
func intField(raw map[string]any, key string) *int {
	v, ok := raw[key]
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case float64:
		n := int(t)
		return &n
	case string:
		n, err := strconv.Atoi(t)
		if err != nil {
			return nil
		}
		return &n
	default:
		return nil
	}
}

// searchApt runs "apt-cache search <term>" and parses lines of the form
// "name - description".
func (r *Resolver) searchApt(ctx context.Context, term string) []tpt.Descriptor {
	if _, ok := r.Exec.CheckDependency("apt-cache"); !ok {
		return nil
	}
	res, err := r.Exec.Execute(ctx, []string{"apt-cache", "search", term}, sysexec.Options{})
	if err != nil {
		r.Logger.Debug("apt-cache search failed: %v", err)
		return nil
	}

	var out []tpt.Descriptor
	sc := bufio.NewScanner(strings.NewReader(res.Stdout))
	for sc.Scan() {
		line := sc.Text()
		name, desc, ok := strings.Cut(line, " - ")
		if !ok {
			continue
		}
		out = append(out, tpt.Descriptor{
			Name:        strings.TrimSpace(name),
			Source:      tpt.SourceAPT,
			Format:      tpt.FormatDeb,
			Description: strings.TrimSpace(desc),
		})
	}
	return out
}

// searchFlatpak runs "flatpak search <term>" and parses its tab-separated
// table, skipping the header row.
func (r *Resolver) searchFlatpak(ctx context.Context, term string) []tpt.Descriptor {
	if _, ok := r.Exec.CheckDependency("flatpak"); !ok {
		return nil
	}
	res, err := r.Exec.Execute(ctx, []string{"flatpak", "search", term}, sysexec.Options{})
	if err != nil {
		r.Logger.Debug("flatpak search failed: %v", err)
		return nil
	}

	var out []tpt.Descriptor
	lines := strings.Split(strings.TrimRight(res.Stdout, "\n"), "\n")
	for i, line := range lines {
		if i == 0 || line == "" {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) < 3 {
			continue
		}
		out = append(out, tpt.Descriptor{
			Name:        strings.TrimSpace(cols[0]),
			Source:      tpt.SourceFlatpak,
			Format:      tpt.FormatFlatpak,
			Description: strings.TrimSpace(cols[1]),
			Metadata:    tpt.Metadata{AppID: strings.TrimSpace(cols[2])},
		})
	}
	return out
}

// searchSnap runs "snap find <term>" and parses its whitespace-aligned
// table, skipping the header row.
func (r *Resolver) searchSnap(ctx context.Context, term string) []tpt.Descriptor {
	if _, ok := r.Exec.CheckDependency("snap"); !ok {
		return nil
	}
	res, err := r.Exec.Execute(ctx, []string{"snap", "find", term}, sysexec.Options{})
	if err != nil {
		r.Logger.Debug("snap find failed: %v", err)
		return nil
	}

	var out []tpt.Descriptor
	lines := strings.Split(strings.TrimRight(res.Stdout, "\n"), "\n")
	for i, line := range lines {
		if i == 0 || line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		name, version := fields[0], fields[1]
		summary := ""
		if len(fields) > 4 {
			summary = strings.Join(fields[4:], " ")
		}
		out = append(out, tpt.Descriptor{
			Name:        name,
			Version:     version,
			Source:      tpt.SourceSnap,
			Format:      tpt.FormatSnap,
			Description: summary,
			Metadata:    tpt.Metadata{SnapName: name},
		})
	}
	return out
}

func inferFormat(url string) (tpt.Format, bool) {
	for _, suf := range []struct {
		s string
		f tpt.Format
	}{
		{".deb.xz", tpt.FormatDebXz},
		{".tar.gz", tpt.FormatTarGz},
		{".tar.xz", tpt.FormatTarXz},
		{".deb", tpt.FormatDeb},
		{".sh", tpt.FormatSh},
		{".py", tpt.FormatPy},
		{".AppImage", tpt.FormatAppImage},
		{".rpm", tpt.FormatRpm},
		{".ps1", tpt.FormatPs1},
		{".exe", tpt.FormatExe},
		{".msi", tpt.FormatMsi},
		{".apk", tpt.FormatApk},
		{".zip", tpt.FormatMetaZip},
	} {
		if strings.HasSuffix(url, suf.s) {
			return suf.f, true
		}
	}
	return "", false
}

// ResolveForInstall finds exactly one descriptor for name, using Search
// first and the convention/git fallbacks when no exact match exists. If
// source is non-empty, only candidates from that source are considered. If
// more than one exact match remains (whether or not their sources differ),
// it returns MultipleSourcesFoundError so the caller can disambiguate.
func (r *Resolver) ResolveForInstall(ctx context.Context, name, source string) (tpt.Descriptor, error) {
	all, err := r.Search(ctx, name)
	if err != nil {
		return tpt.Descriptor{}, err
	}

	var exact []tpt.Descriptor
	for _, d := range all {
		if !strings.EqualFold(d.Name, name) {
			continue
		}
		if source != "" && string(d.Source) != source {
			continue
		}
		exact = append(exact, d)
	}

	if len(exact) == 1 {
		return exact[0], nil
	}
	if len(exact) > 1 {
		choices := make([]tpterr.SourceChoice, len(exact))
		for i, d := range exact {
			choices[i] = tpterr.SourceChoice{Source: string(d.Source), Version: d.Version}
		}
		return tpt.Descriptor{}, tpterr.NewMultipleSourcesFound(name, choices)
	}

	if d, ok, err := r.resolveConvention(ctx, name); err != nil {
		return tpt.Descriptor{}, err
	} else if ok {
		return d, nil
	}

	if d, ok, err := r.resolveGit(ctx, name); err != nil {
		return tpt.Descriptor{}, err
	} else if ok {
		return d, nil
	}

	return tpt.Descriptor{}, tpterr.NewPackageNotFound(name)
}
