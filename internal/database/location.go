package database

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/jmmunozr/semdata/internal/shared"
)

const repositoriesSegment = "/repositories/"

// IsRemote reports whether location names a server rather than a filesystem root.
func IsRemote(location string) bool {
	l := strings.ToLower(location)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// Canonicalize returns the registry key for location.
//
// Local paths become absolute and cleaned. Remote URLs get a lower-case scheme and host and lose trailing slashes.
// Two spellings of the same location therefore share one manager.
func Canonicalize(location string) (string, error) {
	const op = "location.canonicalize"

	if strings.TrimSpace(location) == "" {
		return "", shared.NewError(shared.KindInvalidParameter, op, "location is empty")
	}

	if !IsRemote(location) {
		abs, err := filepath.Abs(location)
		if err != nil {
			return "", shared.Wrap(shared.KindInvalidParameter, op, fmt.Sprintf("invalid local location %q", location), err)
		}
		return filepath.Clean(abs), nil
	}

	u, err := url.Parse(location)
	if err != nil {
		return "", shared.Wrap(shared.KindInvalidParameter, op, fmt.Sprintf("invalid remote location %q", location), err)
	}
	if u.Host == "" {
		return "", shared.NewError(shared.KindInvalidParameter, op, fmt.Sprintf("remote location %q has no host", location))
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	u.Fragment = ""
	return u.String(), nil
}

// ParseRepositoryURL splits <location>/repositories/<id> into its location and repository id.
// The delimiter must occur exactly once with a non-empty part on each side.
func ParseRepositoryURL(repoURL string) (location, repoID string, err error) {
	parts := strings.Split(repoURL, repositoriesSegment)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", shared.NewError(shared.KindInvalidParameter, "location.parse_url",
			fmt.Sprintf("invalid repository URL %q: expected <base-url>/repositories/<repo-id>", repoURL))
	}
	return parts[0], parts[1], nil
}
