package stremio

import (
	"encoding/json"
	"fmt"
)

// The addon ecosystem predates a strict schema, so several manifest fields
// exist in two wire forms. The decoders below normalize both variants and
// skip malformed list items instead of failing the whole document.

// UnmarshalJSON accepts both resource forms: a bare string names the
// resource with no restrictions; an object may narrow types and id prefixes.
func (r *ResourceDefinition) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*r = ResourceDefinition{Name: name}
		return nil
	}

	var obj struct {
		Name       string   `json:"name"`
		Types      []string `json:"types"`
		IDPrefixes []string `json:"idPrefixes"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("resource definition: %w", err)
	}

	*r = ResourceDefinition{Name: obj.Name, Types: obj.Types, IDPrefixes: obj.IDPrefixes}
	return nil
}

// UnmarshalJSON normalizes the two extra-parameter schemas: legacy flat
// extraSupported/extraRequired arrays and structured extra objects with an
// isRequired flag. Both sources are unioned without duplicates, flat arrays
// first.
func (c *CatalogDefinition) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type           string   `json:"type"`
		ID             string   `json:"id"`
		Name           string   `json:"name"`
		Genres         []string `json:"genres"`
		ExtraSupported []string `json:"extraSupported"`
		ExtraRequired  []string `json:"extraRequired"`
		Extra          []struct {
			Name       string `json:"name"`
			IsRequired bool   `json:"isRequired"`
		} `json:"extra"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("catalog definition: %w", err)
	}

	supported := append([]string(nil), raw.ExtraSupported...)
	required := append([]string(nil), raw.ExtraRequired...)
	for _, extra := range raw.Extra {
		if extra.Name == "" {
			continue
		}
		supported = appendUnique(supported, extra.Name)
		if extra.IsRequired {
			required = appendUnique(required, extra.Name)
		}
	}

	*c = CatalogDefinition{
		Type:           raw.Type,
		ID:             raw.ID,
		Name:           raw.Name,
		Genres:         raw.Genres,
		ExtraSupported: supported,
		ExtraRequired:  required,
	}
	return nil
}

// UnmarshalJSON decodes a manifest, tolerating malformed resource and
// catalog entries and accepting behavior hints both nested and top-level.
func (m *Manifest) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID          string  `json:"id"`
		Version     string  `json:"version"`
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Logo        *string `json:"logo"`
		Background  *string `json:"background"`

		Types      []string          `json:"types"`
		Resources  []json.RawMessage `json:"resources"`
		Catalogs   []json.RawMessage `json:"catalogs"`
		IDPrefixes []string          `json:"idPrefixes"`

		Adult         bool    `json:"adult"`
		Configurable  bool    `json:"configurable"`
		ConfigURL     *string `json:"configUrl"`
		BehaviorHints struct {
			Adult        bool    `json:"adult"`
			Configurable bool    `json:"configurable"`
			ConfigURL    *string `json:"configUrl"`
		} `json:"behaviorHints"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("manifest: %w", err)
	}

	out := Manifest{
		ID:           raw.ID,
		Version:      raw.Version,
		Name:         raw.Name,
		Description:  raw.Description,
		Logo:         raw.Logo,
		Background:   raw.Background,
		Types:        raw.Types,
		IDPrefixes:   raw.IDPrefixes,
		Adult:        raw.Adult || raw.BehaviorHints.Adult,
		Configurable: raw.Configurable || raw.BehaviorHints.Configurable,
		ConfigURL:    raw.ConfigURL,
	}
	if out.ConfigURL == nil {
		out.ConfigURL = raw.BehaviorHints.ConfigURL
	}

	for _, item := range raw.Resources {
		var res ResourceDefinition
		if err := json.Unmarshal(item, &res); err != nil || res.Name == "" {
			continue
		}
		out.Resources = append(out.Resources, res)
	}

	for _, item := range raw.Catalogs {
		var cat CatalogDefinition
		if err := json.Unmarshal(item, &cat); err != nil || cat.ID == "" {
			continue
		}
		out.Catalogs = append(out.Catalogs, cat)
	}

	*m = out
	return nil
}

// UnmarshalJSON decodes a video entry, falling back to the legacy "name"
// field when "title" is absent.
func (v *Video) UnmarshalJSON(data []byte) error {
	type alias Video
	var raw struct {
		alias
		LegacyName string `json:"name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("video: %w", err)
	}

	out := Video(raw.alias)
	if out.Title == "" {
		out.Title = raw.LegacyName
	}
	*v = out
	return nil
}

// UnmarshalJSON decodes a full meta object, dropping trailers without a
// source and skipping malformed video entries.
func (m *Meta) UnmarshalJSON(data []byte) error {
	type alias Meta
	var raw struct {
		alias
		Videos []json.RawMessage `json:"videos"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("meta: %w", err)
	}

	out := Meta(raw.alias)
	out.Videos = nil
	for _, item := range raw.Videos {
		var video Video
		if err := json.Unmarshal(item, &video); err != nil || video.ID == "" {
			continue
		}
		out.Videos = append(out.Videos, video)
	}

	kept := out.Trailers[:0]
	for _, trailer := range out.Trailers {
		if trailer.Source != "" {
			kept = append(kept, trailer)
		}
	}
	out.Trailers = kept

	*m = out
	return nil
}

func appendUnique(items []string, item string) []string {
	for _, existing := range items {
		if existing == item {
			return items
		}
	}
	return append(items, item)
}
