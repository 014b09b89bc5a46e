package resolver

import (
	"context"
	"strings"

	tpt "github.com/tpt-project/tpt"
)

// resolveConvention tries, in the fixed extension order, a HEAD probe of
// <repo>/<branch>/<name><ext> for every configured repo; the first 200
// wins. Results are cached under URLCache so repeated misses don't re-probe
// every repo on every invocation. Per spec.md §4.6 "Convention" fallback.
func (r *Resolver) resolveConvention(ctx context.Context, name string) (tpt.Descriptor, bool, error) {
	repos, err := r.Config.ReposFromFile()
	if err != nil || len(repos) == 0 {
		return tpt.Descriptor{}, false, nil
	}
	branch, err := r.Config.Branch()
	if err != nil {
		branch = "regular"
	}

	for _, ext := range fallbackExtensions {
		if cached, ok := r.URLCache.lookup(name, ext); ok {
			if cached.Exists {
				return conventionDescriptor(name, ext, cached.URL), true, nil
			}
			continue
		}
		for _, repo := range repos {
			url := strings.TrimRight(repo, "/") + "/" + branch + "/" + name + ext
			exists, err := r.Downloader.HeadExists(ctx, url)
			if err != nil {
				r.Logger.Debug("convention probe %s: %v", url, err)
				continue
			}
			r.URLCache.store(name, ext, url, exists)
			if exists {
				return conventionDescriptor(name, ext, url), true, nil
			}
		}
	}
	return tpt.Descriptor{}, false, nil
}

func conventionDescriptor(name, ext, url string) tpt.Descriptor {
	format, _ := inferFormat(name + ext)
	return tpt.Descriptor{
		Name:        name,
		Version:     tpt.ConventionVersion,
		Source:      tpt.SourceTPT,
		Format:      format,
		DownloadURL: url,
	}
}
