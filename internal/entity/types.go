// SPDX-License-Identifier: MIT

// Package entity describes the content entity types and field types that
// bundles and fields can be built from.
package entity

import (
	"errors"
	"fmt"
	"sort"
)

// ErrNotBundleable is returned for entity types without a bundle entity type
var ErrNotBundleable = errors.New("entity type does not support bundles")

// TypeDefinition describes a content entity type
type TypeDefinition struct {
	ID               string
	Label            string
	BundleEntityType string // empty when the type has no bundles
	ConfigPrefix     string // config name prefix of its bundles, e.g. "node.type"
	IDKey            string // bundle key holding the machine name
	LabelKey         string // bundle key holding the label
}

// Bundleable reports whether bundles can be created for the type
func (d TypeDefinition) Bundleable() bool {
	return d.BundleEntityType != ""
}

var contentTypes = map[string]TypeDefinition{
	"node": {
		ID:               "node",
		Label:            "Content",
		BundleEntityType: "node_type",
		ConfigPrefix:     "node.type",
		IDKey:            "type",
		LabelKey:         "name",
	},
	"taxonomy_term": {
		ID:               "taxonomy_term",
		Label:            "Taxonomy term",
		BundleEntityType: "taxonomy_vocabulary",
		ConfigPrefix:     "taxonomy.vocabulary",
		IDKey:            "vid",
		LabelKey:         "name",
	},
	"media": {
		ID:               "media",
		Label:            "Media",
		BundleEntityType: "media_type",
		ConfigPrefix:     "media.type",
		IDKey:            "id",
		LabelKey:         "label",
	},
	"block_content": {
		ID:               "block_content",
		Label:            "Custom block",
		BundleEntityType: "block_content_type",
		ConfigPrefix:     "block_content.type",
		IDKey:            "id",
		LabelKey:         "label",
	},
	"comment": {
		ID:               "comment",
		Label:            "Comment",
		BundleEntityType: "comment_type",
		ConfigPrefix:     "comment.type",
		IDKey:            "id",
		LabelKey:         "label",
	},
	"user": {
		ID:    "user",
		Label: "User",
	},
}

// Definition looks up a content entity type
func Definition(id string) (TypeDefinition, error) {
	def, ok := contentTypes[id]
	if !ok {
		return TypeDefinition{}, fmt.Errorf("unknown content entity type %q", id)
	}
	return def, nil
}

// BundleDefinition looks up a content entity type that supports bundles
func BundleDefinition(id string) (TypeDefinition, error) {
	def, err := Definition(id)
	if err != nil {
		return def, err
	}
	if !def.Bundleable() {
		return def, fmt.Errorf("%s: %w", id, ErrNotBundleable)
	}
	return def, nil
}

// ContentEntityTypes returns the machine names of all content entity types
func ContentEntityTypes() []string {
	types := make([]string, 0, len(contentTypes))
	for id := range contentTypes {
		types = append(types, id)
	}
	sort.Strings(types)
	return types
}

// BundleableEntityTypes returns the content entity types that support bundles
func BundleableEntityTypes() []string {
	var types []string
	for _, id := range ContentEntityTypes() {
		if contentTypes[id].Bundleable() {
			types = append(types, id)
		}
	}
	return types
}
