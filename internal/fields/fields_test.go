package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thatcatcamp/sitebuilder/internal/entity"
	"github.com/thatcatcamp/sitebuilder/internal/models"
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

func createBundle(t *testing.T, db *gorm.DB, entityType, name string) {
	t.Helper()

	bundle := &models.Bundle{EntityType: entityType, Name: name, Label: name}
	if err := db.Create(bundle).Error; err != nil {
		t.Fatalf("Failed to create bundle: %v", err)
	}
}

func newField(t *testing.T, entityType, bundle, name, fieldType string, withStorage bool) *Field {
	t.Helper()

	ft, err := entity.LookupFieldType(fieldType)
	require.NoError(t, err)

	field := &Field{
		Type:     fieldType,
		Name:     name,
		Instance: NewInstance(entityType, bundle, name, ft),
	}
	if withStorage {
		field.Storage = NewStorage(entityType, name, ft)
	}
	return field
}

func TestNewStorageDefaults(t *testing.T) {
	stringType, _ := entity.LookupFieldType("string")
	storage := NewStorage("node", "field_subtitle", stringType)

	assert.Equal(t, "node.field_subtitle", storage.ID)
	assert.Equal(t, 1, storage.Cardinality)

	settings, err := storage.GetSettings()
	require.NoError(t, err)
	assert.EqualValues(t, 255, settings["max_length"])

	commentType, _ := entity.LookupFieldType("comment")
	assert.Equal(t, 1, NewStorage("node", "field_comments", commentType).Cardinality)
}

func TestNewInstanceDefaultLabel(t *testing.T) {
	ft, _ := entity.LookupFieldType("string")
	instance := NewInstance("node", "article", "field_sub_title", ft)

	assert.Equal(t, "node.article.field_sub_title", instance.ID)
	assert.Equal(t, "Sub title", instance.Label)
	assert.False(t, instance.Required)
}

func TestSaveCreatesStorageInstanceAndDisplays(t *testing.T) {
	db := setupTestDB(t)
	createBundle(t, db, "node", "article")

	require.NoError(t, Save(db, newField(t, "node", "article", "field_subtitle", "string", true)))
	require.NoError(t, Save(db, newField(t, "node", "article", "field_body", "text_long", true)))

	storage, err := LoadStorage(db, "node", "field_subtitle")
	require.NoError(t, err)
	assert.Equal(t, "string", storage.Type)

	names, err := FieldNames(db, "node", "article")
	require.NoError(t, err)
	assert.Equal(t, []string{"field_body", "field_subtitle"}, names)

	form, err := LoadDisplay(db, FormDisplay, "node", "article")
	require.NoError(t, err)
	components, err := form.GetComponents()
	require.NoError(t, err)
	assert.Equal(t, "string_textfield", components["field_subtitle"].Type)
	assert.Equal(t, 0, components["field_subtitle"].Weight)
	assert.Equal(t, 1, components["field_body"].Weight)

	view, err := LoadDisplay(db, ViewDisplay, "node", "article")
	require.NoError(t, err)
	viewComponents, _ := view.GetComponents()
	assert.Equal(t, "string", viewComponents["field_subtitle"].Type)
	assert.Equal(t, "above", viewComponents["field_subtitle"].Label)
}

func TestSaveReusesExistingStorage(t *testing.T) {
	db := setupTestDB(t)
	createBundle(t, db, "node", "article")
	createBundle(t, db, "node", "page")

	require.NoError(t, Save(db, newField(t, "node", "article", "field_tags", "string", true)))
	require.NoError(t, Save(db, newField(t, "node", "page", "field_tags", "string", false)))

	var storages int64
	db.Model(&models.FieldStorage{}).Count(&storages)
	assert.Equal(t, int64(1), storages)

	err := Save(db, newField(t, "node", "page", "field_other", "string", false))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveRejectsStorageTypeMismatch(t *testing.T) {
	db := setupTestDB(t)
	createBundle(t, db, "node", "article")
	createBundle(t, db, "node", "page")

	require.NoError(t, Save(db, newField(t, "node", "article", "field_count", "integer", true)))

	err := Save(db, newField(t, "node", "page", "field_count", "string", false))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has type integer")
}

func TestSaveRequiresBundle(t *testing.T) {
	db := setupTestDB(t)

	err := Save(db, newField(t, "node", "missing", "field_x", "string", true))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestValidateNewFieldName(t *testing.T) {
	db := setupTestDB(t)
	createBundle(t, db, "node", "article")
	require.NoError(t, Save(db, newField(t, "node", "article", "field_subtitle", "string", true)))

	name, err := ValidateNewFieldName(db, "node", "article", "field_intro")
	require.NoError(t, err)
	assert.Equal(t, "field_intro", name)

	_, err = ValidateNewFieldName(db, "node", "article", "field_subtitle")
	assert.EqualError(t, err, `The "field_subtitle" field already exists on the "node" "article" bundle.`)

	_, err = ValidateNewFieldName(db, "node", "article", "Field Intro")
	assert.Error(t, err)
}

func TestDeleteKeepsSharedStorage(t *testing.T) {
	db := setupTestDB(t)
	createBundle(t, db, "node", "article")
	createBundle(t, db, "node", "page")

	require.NoError(t, Save(db, newField(t, "node", "article", "field_tags", "string", true)))
	require.NoError(t, Save(db, newField(t, "node", "page", "field_tags", "string", false)))

	require.NoError(t, Delete(db, "node", "article", "field_tags"))

	_, err := LoadInstance(db, "node", "article", "field_tags")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = LoadStorage(db, "node", "field_tags")
	assert.NoError(t, err, "storage still used by page")

	form, _ := LoadDisplay(db, FormDisplay, "node", "article")
	components, _ := form.GetComponents()
	assert.NotContains(t, components, "field_tags")

	require.NoError(t, Delete(db, "node", "page", "field_tags"))
	_, err = LoadStorage(db, "node", "field_tags")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWeightAfterDeleteStaysUnique(t *testing.T) {
	db := setupTestDB(t)
	createBundle(t, db, "node", "article")

	require.NoError(t, Save(db, newField(t, "node", "article", "field_a", "string", true)))
	require.NoError(t, Save(db, newField(t, "node", "article", "field_b", "string", true)))
	require.NoError(t, Delete(db, "node", "article", "field_a"))
	require.NoError(t, Save(db, newField(t, "node", "article", "field_c", "string", true)))

	for _, kind := range []string{FormDisplay, ViewDisplay} {
		display, err := LoadDisplay(db, kind, "node", "article")
		require.NoError(t, err)
		components, err := display.GetComponents()
		require.NoError(t, err)

		assert.Equal(t, 1, components["field_b"].Weight, kind)
		assert.Equal(t, 2, components["field_c"].Weight, kind)
	}
}

func TestDeleteMissingField(t *testing.T) {
	db := setupTestDB(t)

	err := Delete(db, "node", "article", "field_nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEnsureAndDeleteDisplays(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, EnsureDisplays(db, "taxonomy_term", "tags"))
	require.NoError(t, EnsureDisplays(db, "taxonomy_term", "tags"))

	var count int64
	db.Model(&models.EntityDisplay{}).Count(&count)
	assert.Equal(t, int64(2), count)

	require.NoError(t, DeleteDisplays(db, "taxonomy_term", "tags"))
	db.Model(&models.EntityDisplay{}).Count(&count)
	assert.Equal(t, int64(0), count)
}
