package resolver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/gravitational/trace"

	tpt "github.com/tpt-project/tpt"
)

// gitCloneBranch is the fixed branch the git fallback clones, per spec.md
// §4.6's "clones branch regular".
const gitCloneBranch = "regular"

// resolveGit tries, for each configured repo URL rewritten to a git clone
// URL, a clone (or reuse of an existing checkout) into
// <state>/git_clones/<repo>, then consults that checkout's packages.json.
// Per spec.md §4.6 "Git" fallback.
func (r *Resolver) resolveGit(ctx context.Context, name string) (tpt.Descriptor, bool, error) {
	repos, err := r.Config.ReposFromFile()
	if err != nil {
		return tpt.Descriptor{}, false, nil
	}

	for _, repo := range repos {
		cloneURL, cloneName, ok := asGitCloneURL(repo)
		if !ok {
			continue
		}
		clonePath := filepath.Join(r.Config.DirGitClones, cloneName)

		if err := r.ensureClone(ctx, cloneURL, clonePath); err != nil {
			r.Logger.Debug("git fallback clone of %s: %v", cloneURL, err)
			continue
		}

		entry, found, err := readPackagesJSON(clonePath, name)
		if err != nil {
			r.Logger.Debug("reading packages.json in %s: %v", clonePath, err)
			continue
		}
		if !found {
			continue
		}
		return descriptorFromGitEntry(name, clonePath, entry), true, nil
	}
	return tpt.Descriptor{}, false, nil
}

// ensureClone clones cloneURL's gitCloneBranch into dest if dest does not
// already hold a checkout; an existing checkout is reused as-is (the
// resolver does not pull, matching spec.md's "if absent" clause).
func (r *Resolver) ensureClone(ctx context.Context, cloneURL, dest string) error {
	if _, err := os.Stat(filepath.Join(dest, ".git")); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return trace.Wrap(err)
	}
	_, err := git.PlainCloneContext(ctx, dest, false, &git.CloneOptions{
		URL:           cloneURL,
		ReferenceName: plumbing.NewBranchReferenceName(gitCloneBranch),
		SingleBranch:  true,
		Depth:         1,
	})
	return trace.Wrap(err)
}

// asGitCloneURL rewrites an http(s) repo base URL into a git clone URL by
// appending ".git" when absent (ssh "git@" URLs get the same treatment); URLs
// already ending in ".git" are used unchanged. Returns the clone directory name
// derived from the URL's final path segment.
func asGitCloneURL(repoURL string) (cloneURL, cloneName string, ok bool) {
	trimmed := strings.TrimRight(repoURL, "/")
	if trimmed == "" {
		return "", "", false
	}
	base := trimmed
	if !strings.HasSuffix(base, ".git") {
		base += ".git"
	}
	parts := strings.Split(strings.TrimSuffix(trimmed, ".git"), "/")
	name := parts[len(parts)-1]
	if name == "" {
		return "", "", false
	}
	return base, name, true
}

// readPackagesJSON reads <clonePath>/packages.json and looks up name,
// reusing the canonical manifest package-entry schema (the git checkout's
// packages.json follows the same shape as a fetched repo manifest).
func readPackagesJSON(clonePath, name string) (manifestEntry, bool, error) {
	b, err := os.ReadFile(filepath.Join(clonePath, "packages.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return manifestEntry{}, false, nil
		}
		return manifestEntry{}, false, trace.Wrap(err)
	}
	var doc struct {
		Packages map[string]manifestEntry `json:"packages"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return manifestEntry{}, false, trace.Wrap(err)
	}
	entry, found := doc.Packages[name]
	return entry, found, nil
}

// manifestEntry mirrors manifest.PackageManifestEntry; duplicated (rather
// than imported) because a git checkout's packages.json additionally
// carries a repo-relative clone_path the canonical fetched manifest never
// needs.
type manifestEntry struct {
	Version     string         `json:"version"`
	Description string         `json:"description"`
	DownloadURL string         `json:"download_url,omitempty"`
	SHA256      string         `json:"sha256,omitempty"`
	Format      string         `json:"format,omitempty"`
	Extension   string         `json:"extension,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Keywords    []string       `json:"keywords,omitempty"`
	ClonePath   string         `json:"clone_path,omitempty"`
}

func descriptorFromGitEntry(name, clonePath string, e manifestEntry) tpt.Descriptor {
	format := e.Format
	if format == "" {
		format = e.Extension
	}
	relClonePath := e.ClonePath
	if relClonePath == "" {
		relClonePath = name
	}
	metadata := metadataFromRaw(e.Metadata)
	metadata.ClonePath = filepath.Join(clonePath, relClonePath)
	return tpt.Descriptor{
		Name:          name,
		Version:       e.Version,
		Source:        tpt.SourceTPTGit,
		Format:        tpt.Format(format),
		DownloadURL:   e.DownloadURL,
		SHA256:        e.SHA256,
		Description:   e.Description,
		Keywords:      e.Keywords,
		RepositoryURL: clonePath,
		Metadata:      metadata,
	}
}
