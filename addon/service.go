package addon

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/madari-app/madari/filesystem"
	"github.com/madari-app/madari/log"
	"github.com/madari-app/madari/stremio"
	"github.com/madari-app/madari/where"
	"github.com/samber/mo"
)

// storageVersion tags the on-disk registry schema.
const storageVersion = 1

// registryDocument is the persisted shape of the addon registry.
type registryDocument struct {
	Version int               `json:"version"`
	Addons  []*InstalledAddon `json:"addons"`
}

// Service owns the ordered set of installed addons. All mutations persist
// the registry and notify change subscribers.
type Service struct {
	mu        sync.Mutex
	addons    []*InstalledAddon
	client    *stremio.Client
	path      string
	onChange  []func()
	timestamp func() time.Time
}

// NewService creates a registry backed by the default storage location.
func NewService() *Service {
	return &Service{
		client:    stremio.NewClient(),
		path:      where.Addons(),
		timestamp: time.Now,
	}
}

// Load reads the registry from disk. A missing or unreadable file yields an
// empty registry, not an error.
func (s *Service) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.addons = nil

	data, err := filesystem.API().ReadFile(s.path)
	if err != nil {
		log.Debugf("no addon registry at %s: %v", s.path, err)
		return
	}

	var doc registryDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Warnf("addon registry is malformed, starting empty: %v", err)
		return
	}

	for _, a := range doc.Addons {
		if a == nil || a.Manifest == nil || a.Manifest.ID == "" {
			continue
		}
		s.addons = append(s.addons, a)
	}
	s.renumber()
}

// save persists the registry. Callers must hold the mutex.
func (s *Service) save() error {
	doc := registryDocument{Version: storageVersion, Addons: s.addons}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode addon registry: %w", err)
	}
	if err := filesystem.API().WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write addon registry: %w", err)
	}
	return nil
}

// OnChange registers a callback invoked after every successful mutation.
func (s *Service) OnChange(callback func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, callback)
}

// notify runs subscribers on a snapshot outside the mutex, so a callback
// may call back into the service.
func (s *Service) notify() {
	s.mu.Lock()
	callbacks := append([]func(){}, s.onChange...)
	s.mu.Unlock()

	for _, callback := range callbacks {
		callback()
	}
}

// Install fetches the manifest at the given URL and installs the addon. If
// an addon with the same manifest id already exists, its manifest and
// transport URL are updated in place, keeping order and enabled state.
func (s *Service) Install(ctx context.Context, url string) (*InstalledAddon, error) {
	manifest, err := s.client.FetchManifest(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("install addon: %w", err)
	}

	s.mu.Lock()
	installed := s.upsert(manifest, url)
	err = s.save()
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}
	s.notify()
	return installed, nil
}

// upsert updates an already installed addon with the same manifest id in
// place, keeping order and enabled state, or appends a new installation.
// Callers hold the mutex.
func (s *Service) upsert(manifest *stremio.Manifest, url string) *InstalledAddon {
	for _, existing := range s.addons {
		if existing.ID() == manifest.ID {
			existing.Manifest = manifest
			existing.TransportURL = stremio.ManifestURL(url)
			return existing
		}
	}

	installed := &InstalledAddon{
		TransportURL: stremio.ManifestURL(url),
		Manifest:     manifest,
		Enabled:      true,
		Order:        len(s.addons),
		InstalledAt:  s.timestamp().UTC().Format("2006-01-02T15:04:05Z"),
	}
	s.addons = append(s.addons, installed)
	return installed
}

// RefreshManifests re-fetches the manifest of every installed addon to pick
// up capability and catalog changes. An unreachable addon keeps its last
// known manifest.
func (s *Service) RefreshManifests(ctx context.Context) {
	for _, a := range s.Addons() {
		if _, err := s.Install(ctx, a.TransportURL); err != nil {
			log.Warnf("refresh manifest for %s: %v", a.ID(), err)
		}
	}
}

// Uninstall removes the addon with the given manifest id and renumbers the
// remaining display orders densely.
func (s *Service) Uninstall(id string) bool {
	s.mu.Lock()
	removed := false
	for i, a := range s.addons {
		if a.ID() == id {
			s.addons = append(s.addons[:i], s.addons[i+1:]...)
			s.renumber()
			if err := s.save(); err != nil {
				log.Errorf("persist addon registry: %v", err)
			}
			removed = true
			break
		}
	}
	s.mu.Unlock()

	if removed {
		s.notify()
	}
	return removed
}

// SetEnabled toggles an addon without touching its display order.
func (s *Service) SetEnabled(id string, enabled bool) bool {
	s.mu.Lock()
	toggled := false
	for _, a := range s.addons {
		if a.ID() == id {
			a.Enabled = enabled
			if err := s.save(); err != nil {
				log.Errorf("persist addon registry: %v", err)
			}
			toggled = true
			break
		}
	}
	s.mu.Unlock()

	if toggled {
		s.notify()
	}
	return toggled
}

// Move shifts an addon one position up (direction < 0) or down
// (direction > 0) in display order. Returns false when the move is not
// possible.
func (s *Service) Move(id string, direction int) bool {
	s.mu.Lock()

	index := -1
	for i, a := range s.addons {
		if a.ID() == id {
			index = i
			break
		}
	}

	target := index
	switch {
	case index < 0:
	case direction < 0 && index > 0:
		target = index - 1
	case direction > 0 && index < len(s.addons)-1:
		target = index + 1
	}
	if index < 0 || target == index {
		s.mu.Unlock()
		return false
	}

	s.addons[index], s.addons[target] = s.addons[target], s.addons[index]
	s.renumber()
	if err := s.save(); err != nil {
		log.Errorf("persist addon registry: %v", err)
	}
	s.mu.Unlock()
	s.notify()
	return true
}

// renumber rewrites orders densely 0..n-1 to match slice positions.
// Callers must hold the mutex.
func (s *Service) renumber() {
	for i, a := range s.addons {
		a.Order = i
	}
}

// Addons returns a snapshot of all installed addons in display order.
func (s *Service) Addons() []*InstalledAddon {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*InstalledAddon(nil), s.addons...)
}

// Get looks up an installed addon by manifest id.
func (s *Service) Get(id string) mo.Option[*InstalledAddon] {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.addons {
		if a.ID() == id {
			return mo.Some(a)
		}
	}
	return mo.None[*InstalledAddon]()
}

// ForResource returns the enabled addons, in display order, capable of
// serving the given resource request.
func (s *Service) ForResource(resource, contentType, id string) []*InstalledAddon {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []*InstalledAddon
	for _, a := range s.addons {
		if a.supports(resource, contentType, id) {
			matched = append(matched, a)
		}
	}
	return matched
}

// CatalogRef pairs a catalog definition with the addon that hosts it.
type CatalogRef struct {
	Addon   *InstalledAddon
	Catalog *stremio.CatalogDefinition
}

// AllCatalogs lists every catalog of every enabled addon in display order.
func (s *Service) AllCatalogs() []CatalogRef {
	s.mu.Lock()
	defer s.mu.Unlock()

	var refs []CatalogRef
	for _, a := range s.addons {
		if !a.Enabled || a.Manifest == nil {
			continue
		}
		for i := range a.Manifest.Catalogs {
			refs = append(refs, CatalogRef{Addon: a, Catalog: &a.Manifest.Catalogs[i]})
		}
	}
	return refs
}

// CatalogsByType lists enabled catalogs restricted to one content type.
func (s *Service) CatalogsByType(contentType string) []CatalogRef {
	var refs []CatalogRef
	for _, ref := range s.AllCatalogs() {
		if ref.Catalog.Type == contentType {
			refs = append(refs, ref)
		}
	}
	return refs
}

// SearchableCatalogs lists enabled catalogs that accept the search extra.
func (s *Service) SearchableCatalogs() []CatalogRef {
	var refs []CatalogRef
	for _, ref := range s.AllCatalogs() {
		if ref.Catalog.Searchable() {
			refs = append(refs, ref)
		}
	}
	return refs
}
