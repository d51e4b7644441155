package models

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(All()...); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	return db
}

func TestCreateBundleAssignsUUID(t *testing.T) {
	db := setupTestDB(t)

	bundle := Bundle{EntityType: "node", Name: "article", Label: "Article"}
	if err := db.Create(&bundle).Error; err != nil {
		t.Fatalf("Failed to create bundle: %v", err)
	}

	if bundle.ID == 0 {
		t.Error("Bundle ID should be set after creation")
	}
	if bundle.UUID == "" {
		t.Error("Bundle UUID should be set after creation")
	}
}

func TestBundleNameUniquePerEntityType(t *testing.T) {
	db := setupTestDB(t)

	db.Create(&Bundle{EntityType: "node", Name: "article", Label: "Article"})

	if err := db.Create(&Bundle{EntityType: "node", Name: "article", Label: "Again"}).Error; err == nil {
		t.Error("Expected duplicate bundle to fail")
	}

	if err := db.Create(&Bundle{EntityType: "media", Name: "article", Label: "Article"}).Error; err != nil {
		t.Errorf("Same name on another entity type should succeed: %v", err)
	}
}

func TestFieldStorageSettingsRoundTrip(t *testing.T) {
	db := setupTestDB(t)

	storage := FieldStorage{ID: "node.field_body", EntityType: "node", FieldName: "field_body", Type: "string", Cardinality: 1}
	if err := storage.SetSettings(map[string]any{"max_length": 255, "is_ascii": false}); err != nil {
		t.Fatalf("SetSettings failed: %v", err)
	}
	if err := db.Create(&storage).Error; err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	var loaded FieldStorage
	if err := db.First(&loaded, "id = ?", "node.field_body").Error; err != nil {
		t.Fatalf("Failed to load storage: %v", err)
	}

	settings, err := loaded.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if settings["max_length"] != float64(255) {
		t.Errorf("Expected max_length 255, got %v", settings["max_length"])
	}
	if settings["is_ascii"] != false {
		t.Errorf("Expected is_ascii false, got %v", settings["is_ascii"])
	}
}

func TestImageStyleAddEffect(t *testing.T) {
	style := ImageStyle{Name: "hero_800", Label: "Hero (800×h)"}

	if err := style.AddEffect(ImageEffect{ID: "image_scale", Data: ImageEffectData{Width: 800}}); err != nil {
		t.Fatalf("AddEffect failed: %v", err)
	}

	effects, err := style.GetEffects()
	if err != nil {
		t.Fatalf("GetEffects failed: %v", err)
	}
	if len(effects) != 1 {
		t.Fatalf("Expected 1 effect, got %d", len(effects))
	}
	if effects[0].UUID == "" {
		t.Error("Effect UUID should be assigned")
	}
	if effects[0].Data.Height != nil {
		t.Errorf("Expected nil height, got %d", *effects[0].Data.Height)
	}
}

func TestEmptyDisplayComponents(t *testing.T) {
	display := EntityDisplay{Kind: "form", TargetEntityType: "node", Bundle: "page"}

	components, err := display.GetComponents()
	if err != nil {
		t.Fatalf("GetComponents failed: %v", err)
	}
	if len(components) != 0 {
		t.Errorf("Expected no components, got %d", len(components))
	}
}
