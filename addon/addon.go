// Package addon manages the set of installed addons: persistence, display
// order, capability routing, and fan-out aggregation across transports.
package addon

import (
	"github.com/madari-app/madari/stremio"
)

// InstalledAddon couples an addon manifest with its installation state.
type InstalledAddon struct {
	TransportURL string            `json:"transport_url"`
	Manifest     *stremio.Manifest `json:"manifest"`
	Enabled      bool              `json:"enabled"`
	Order        int               `json:"order"`
	InstalledAt  string            `json:"installed_at"`
}

// BaseURL returns the addon's transport base URL.
func (a *InstalledAddon) BaseURL() string {
	return stremio.BaseURL(a.TransportURL)
}

// ID returns the manifest id, the stable identity of the installation.
func (a *InstalledAddon) ID() string {
	if a.Manifest == nil {
		return ""
	}
	return a.Manifest.ID
}

// supports reports whether this addon can serve the given resource request.
// Resource-level type and id-prefix restrictions override the manifest-level
// ones; an empty restriction list means unrestricted. An empty id always
// passes prefix filtering.
func (a *InstalledAddon) supports(resource, contentType, id string) bool {
	if !a.Enabled || a.Manifest == nil {
		return false
	}

	typeMatches := len(a.Manifest.Types) == 0
	idMatches := len(a.Manifest.IDPrefixes) == 0 || id == ""
	resourceMatches := false

	for _, res := range a.Manifest.Resources {
		if res.Name != resource {
			continue
		}
		resourceMatches = true

		if len(res.Types) > 0 {
			typeMatches = contains(res.Types, contentType)
		} else if len(a.Manifest.Types) > 0 {
			typeMatches = a.Manifest.HasType(contentType)
		} else {
			typeMatches = true
		}

		if id != "" {
			if len(res.IDPrefixes) > 0 {
				idMatches = hasPrefixIn(id, res.IDPrefixes)
			} else if len(a.Manifest.IDPrefixes) > 0 {
				idMatches = a.Manifest.MatchesIDPrefix(id)
			} else {
				idMatches = true
			}
		}
		break
	}

	return resourceMatches && typeMatches && idMatches
}

func contains(items []string, item string) bool {
	for _, existing := range items {
		if existing == item {
			return true
		}
	}
	return false
}

func hasPrefixIn(id string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if len(id) >= len(prefix) && id[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}
