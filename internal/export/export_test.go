// SPDX-License-Identifier: MIT
package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thatcatcamp/sitebuilder/internal/bundles"
	"github.com/thatcatcamp/sitebuilder/internal/entity"
	"github.com/thatcatcamp/sitebuilder/internal/fields"
	"github.com/thatcatcamp/sitebuilder/internal/imagestyles"
	"github.com/thatcatcamp/sitebuilder/internal/models"
	"gopkg.in/yaml.v3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}

func readYAML(t *testing.T, dir, name string) map[string]any {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(dir, name+".yml"))
	require.NoError(t, err)

	var config map[string]any
	require.NoError(t, yaml.Unmarshal(data, &config))
	return config
}

func seed(t *testing.T, db *gorm.DB) {
	t.Helper()

	ft, err := entity.LookupFieldType("string")
	require.NoError(t, err)

	_, err = bundles.Build(db, bundles.Request{
		EntityType: "node",
		Name:       "article",
		Label:      "Article",
		Fields: []*fields.Field{{
			Type:     "string",
			Name:     "field_subtitle",
			Storage:  fields.NewStorage("node", "field_subtitle", ft),
			Instance: fields.NewInstance("node", "article", "field_subtitle", ft),
		}},
		GrantRoles: []string{"content_editor"},
	})
	require.NoError(t, err)

	height := 450
	_, err = imagestyles.CreateResponsiveImageStyle(db, imagestyles.ResponsiveRequest{
		ID:          "hero",
		Label:       "Hero",
		Width:       800,
		Height:      &height,
		Breakpoints: []int{1920, 1600, 1280, 800, 400},
	})
	require.NoError(t, err)
}

func TestExportAll(t *testing.T) {
	db := setupTestDB(t)
	seed(t, db)

	dir := filepath.Join(t.TempDir(), "sync")
	written, err := NewExporter(dir).ExportAll(db)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"core.entity_form_display.node.article.default",
		"core.entity_view_display.node.article.default",
		"field.field.node.article.field_subtitle",
		"field.storage.node.field_subtitle",
		"image.style.hero_400",
		"image.style.hero_800",
		"node.type.article",
		"responsive_image.styles.hero",
		"user.role.content_editor",
	}, written)

	for _, name := range written {
		config := readYAML(t, dir, name)
		assert.NotEmpty(t, config["uuid"], "%s has a uuid", name)
	}
}

func TestExportBundleUsesEntityTypeKeys(t *testing.T) {
	db := setupTestDB(t)
	seed(t, db)
	_, err := bundles.CreateBundle(db, "taxonomy_term", "tags", "Tags", "Free tagging")
	require.NoError(t, err)

	dir := t.TempDir()
	_, err = NewExporter(dir).ExportAll(db)
	require.NoError(t, err)

	node := readYAML(t, dir, "node.type.article")
	assert.Equal(t, "article", node["type"])
	assert.Equal(t, "Article", node["name"])

	vocabulary := readYAML(t, dir, "taxonomy.vocabulary.tags")
	assert.Equal(t, "tags", vocabulary["vid"])
	assert.Equal(t, "Free tagging", vocabulary["description"])
}

func TestExportFieldAndDisplay(t *testing.T) {
	db := setupTestDB(t)
	seed(t, db)

	dir := t.TempDir()
	_, err := NewExporter(dir).ExportAll(db)
	require.NoError(t, err)

	storage := readYAML(t, dir, "field.storage.node.field_subtitle")
	assert.Equal(t, "string", storage["type"])
	assert.Equal(t, 1, storage["cardinality"])
	assert.Equal(t, 255, storage["settings"].(map[string]any)["max_length"])

	field := readYAML(t, dir, "field.field.node.article.field_subtitle")
	assert.Equal(t, "Subtitle", field["label"])
	deps := field["dependencies"].(map[string]any)["config"].([]any)
	assert.Equal(t, []any{"field.storage.node.field_subtitle", "node.type.article"}, deps)

	view := readYAML(t, dir, "core.entity_view_display.node.article.default")
	content := view["content"].(map[string]any)["field_subtitle"].(map[string]any)
	assert.Equal(t, "string", content["type"])
	assert.Equal(t, "above", content["label"])
}

func TestExportRoleAndResponsiveStyle(t *testing.T) {
	db := setupTestDB(t)
	seed(t, db)

	dir := t.TempDir()
	_, err := NewExporter(dir).ExportAll(db)
	require.NoError(t, err)

	role := readYAML(t, dir, "user.role.content_editor")
	assert.Equal(t, "Content editor", role["label"])
	assert.Equal(t, []any{
		"create article content",
		"delete own article content",
		"edit own article content",
	}, role["permissions"])

	responsive := readYAML(t, dir, "responsive_image.styles.hero")
	assert.Equal(t, "hero_800", responsive["fallback_image_style"])
	assert.Equal(t, "responsive_image", responsive["breakpoint_group"])
	mappings := responsive["image_style_mappings"].([]any)
	require.Len(t, mappings, 1)
	mapping := mappings[0].(map[string]any)["image_mapping"].(map[string]any)
	assert.Equal(t, "100vw", mapping["sizes"])
	assert.Equal(t, []any{"hero_800", "hero_400"}, mapping["sizes_image_styles"])
}

func TestExportRoleUUIDIsStable(t *testing.T) {
	db := setupTestDB(t)
	seed(t, db)

	first := t.TempDir()
	second := t.TempDir()
	_, err := NewExporter(first).ExportAll(db)
	require.NoError(t, err)
	_, err = NewExporter(second).ExportAll(db)
	require.NoError(t, err)

	assert.Equal(t,
		readYAML(t, first, "user.role.content_editor")["uuid"],
		readYAML(t, second, "user.role.content_editor")["uuid"])
}
