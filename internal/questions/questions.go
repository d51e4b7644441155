// SPDX-License-Identifier: MIT

// Package questions asks the interactive questions that gather bundle,
// field and responsive image style definitions before they are saved.
// Values already supplied on the command line are validated instead of asked.
package questions

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/thatcatcamp/sitebuilder/internal/bundles"
	"github.com/thatcatcamp/sitebuilder/internal/console"
	"github.com/thatcatcamp/sitebuilder/internal/entity"
	"github.com/thatcatcamp/sitebuilder/internal/fields"
	"github.com/thatcatcamp/sitebuilder/internal/models"
	"github.com/thatcatcamp/sitebuilder/internal/validate"
	"gorm.io/gorm"
)

// Asker asks questions on an IO, checking answers against the database
type Asker struct {
	io *console.IO
	db *gorm.DB
}

// New creates an Asker
func New(io *console.IO, db *gorm.DB) *Asker {
	return &Asker{io: io, db: db}
}

// IO returns the console the questions are asked on
func (a *Asker) IO() *console.IO {
	return a.io
}

// EntityType picks a content entity type that supports bundles
func (a *Asker) EntityType(given string) (string, error) {
	if given != "" {
		if _, err := entity.BundleDefinition(given); err != nil {
			return "", err
		}
		return given, nil
	}
	return a.io.ChoiceNoList("Entity type", entity.BundleableEntityTypes(), "")
}

// NewBundleName asks for the machine name of a bundle that does not exist yet
func (a *Asker) NewBundleName(entityType, given string) (string, error) {
	validator := func(name string) (string, error) {
		return bundles.ValidateNewBundleName(a.db, entityType, name)
	}
	if given != "" {
		return validator(given)
	}
	return a.io.Ask("Bundle name", bundles.DefaultName, validator)
}

// ExistingBundle picks one of an entity type's bundles
func (a *Asker) ExistingBundle(entityType, given string) (string, error) {
	names, err := bundles.BundleNames(a.db, entityType)
	if err != nil {
		return "", err
	}

	if given != "" {
		if _, err := bundles.GetBundle(a.db, entityType, given); err != nil {
			return "", err
		}
		return given, nil
	}
	return a.io.ChoiceNoList("Bundle name", names, "")
}

// BundleLabel asks for a bundle label, defaulting to the humanized name
func (a *Asker) BundleLabel(name, given string) (string, error) {
	if given != "" {
		return given, nil
	}
	return a.io.Ask("Bundle label", console.Humanize(name), nil)
}

// BundleDescription asks for an optional bundle description
func (a *Asker) BundleDescription(given string) (string, error) {
	if given != "" {
		return given, nil
	}
	return a.io.AskEmpty("Bundle description", "", nil)
}

// Fields keeps asking for new fields until the answer to "Add a new field?" is no.
// Without an interactive console no fields are added.
func (a *Asker) Fields(entityType, bundle string) ([]*fields.Field, error) {
	var result []*fields.Field
	if !a.io.Interactive() {
		return result, nil
	}

	for {
		more, err := a.io.Confirm("Add a new field?", true)
		if err != nil {
			return nil, err
		}
		if !more {
			return result, nil
		}

		field, err := a.pendingField(entityType, bundle, "", "", result)
		if err != nil {
			return nil, err
		}
		result = append(result, field)
	}
}

// Field asks the questions for one field on a bundle
func (a *Asker) Field(entityType, bundle, fieldType, fieldName string) (*fields.Field, error) {
	return a.pendingField(entityType, bundle, fieldType, fieldName, nil)
}

// pendingField asks for one field; pending fields are not saved yet but their names are taken
func (a *Asker) pendingField(entityType, bundle, fieldType, fieldName string, pending []*fields.Field) (*fields.Field, error) {
	ft, err := a.fieldType(fieldType)
	if err != nil {
		return nil, err
	}

	validator := func(name string) (string, error) {
		name, err := fields.ValidateNewFieldName(a.db, entityType, bundle, name)
		if err != nil {
			return "", err
		}
		for _, field := range pending {
			if field.Name == name {
				return "", fmt.Errorf("The %q field already exists on the %q %q bundle.", name, entityType, bundle)
			}
		}
		return name, nil
	}

	var name string
	if fieldName != "" {
		name, err = validator(fieldName)
	} else {
		name, err = a.io.Ask("Field name", "field_"+ft.ID, validator)
	}
	if err != nil {
		return nil, err
	}

	field := &fields.Field{Type: ft.ID, Name: name}

	field.Storage, err = a.FieldStorage(entityType, name, ft)
	if err != nil {
		return nil, err
	}

	field.Instance, err = a.FieldInstance(entityType, bundle, name, ft)
	if err != nil {
		return nil, err
	}

	return field, nil
}

func (a *Asker) fieldType(given string) (entity.FieldType, error) {
	if given == "" {
		var err error
		given, err = a.io.ChoiceNoList("Field type", entity.FieldTypes(), "")
		if err != nil {
			return entity.FieldType{}, err
		}
	}
	return entity.LookupFieldType(given)
}

// FieldStorage asks for a new storage definition, or returns nil when the
// entity type already has a storage of the same type under that name
func (a *Asker) FieldStorage(entityType, fieldName string, ft entity.FieldType) (*models.FieldStorage, error) {
	existing, err := fields.LoadStorage(a.db, entityType, fieldName)
	if err != nil && !errors.Is(err, fields.ErrNotFound) {
		return nil, err
	}

	if existing != nil {
		if existing.Type != ft.ID {
			return nil, fmt.Errorf("The %q field is already stored as %q on %q, not %q.", fieldName, existing.Type, entityType, ft.ID)
		}
		a.io.Comment(fmt.Sprintf("Reusing the existing %q field storage.", fields.StorageID(entityType, fieldName)))
		return nil, nil
	}

	storage := fields.NewStorage(entityType, fieldName, ft)

	if !ft.HasFixedCardinality() {
		answer, err := a.io.Ask("Allowed number of values", strconv.Itoa(storage.Cardinality), func(value string) (string, error) {
			cardinality, err := validate.Cardinality(value)
			if err != nil {
				return "", err
			}
			return strconv.Itoa(cardinality), nil
		})
		if err != nil {
			return nil, err
		}
		storage.Cardinality, _ = strconv.Atoi(answer)
	}

	settings, err := a.io.SettingsQuestion(ft.DefaultStorageSettings())
	if err != nil {
		return nil, err
	}
	if err := storage.SetSettings(settings); err != nil {
		return nil, err
	}

	return storage, nil
}

// FieldInstance asks for the label, description, required flag and settings of a field on a bundle
func (a *Asker) FieldInstance(entityType, bundle, fieldName string, ft entity.FieldType) (*models.FieldInstance, error) {
	instance := fields.NewInstance(entityType, bundle, fieldName, ft)

	label, err := a.io.Ask("Field label", instance.Label, nil)
	if err != nil {
		return nil, err
	}
	instance.Label = label

	description, err := a.io.AskEmpty("Field description", "", nil)
	if err != nil {
		return nil, err
	}
	instance.Description = description

	required, err := a.io.Confirm("Is the field required?", false)
	if err != nil {
		return nil, err
	}
	instance.Required = required

	settings, err := a.io.SettingsQuestion(ft.DefaultFieldSettings())
	if err != nil {
		return nil, err
	}
	if err := instance.SetSettings(settings); err != nil {
		return nil, err
	}

	return instance, nil
}

// ExistingField picks one of the fields attached to a bundle
func (a *Asker) ExistingField(entityType, bundle, given string) (string, error) {
	names, err := fields.FieldNames(a.db, entityType, bundle)
	if err != nil {
		return "", err
	}

	if given != "" {
		if _, err := fields.LoadInstance(a.db, entityType, bundle, given); err != nil {
			return "", err
		}
		return given, nil
	}
	return a.io.ChoiceNoList("Field name", names, "")
}
