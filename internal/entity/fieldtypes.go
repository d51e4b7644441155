// SPDX-License-Identifier: MIT
package entity

import (
	"fmt"
	"sort"
)

// FieldType describes a field type available when building fields
type FieldType struct {
	ID               string
	Label            string
	Cardinality      int // fixed cardinality, 0 when configurable
	DefaultWidget    string
	DefaultFormatter string

	storageSettings func() map[string]any
	fieldSettings   func() map[string]any
}

// HasFixedCardinality reports whether the cardinality question is skipped
func (f FieldType) HasFixedCardinality() bool {
	return f.Cardinality != 0
}

// DefaultStorageSettings returns a fresh copy of the storage settings defaults
func (f FieldType) DefaultStorageSettings() map[string]any {
	if f.storageSettings == nil {
		return map[string]any{}
	}
	return f.storageSettings()
}

// DefaultFieldSettings returns a fresh copy of the instance settings defaults
func (f FieldType) DefaultFieldSettings() map[string]any {
	if f.fieldSettings == nil {
		return map[string]any{}
	}
	return f.fieldSettings()
}

func imageDefaults() map[string]any {
	return map[string]any{
		"uuid":   "",
		"alt":    "",
		"title":  "",
		"width":  0,
		"height": 0,
	}
}

var fieldTypes = map[string]FieldType{
	"boolean": {
		ID: "boolean", Label: "Boolean",
		DefaultWidget: "boolean_checkbox", DefaultFormatter: "boolean",
		fieldSettings: func() map[string]any {
			return map[string]any{"on_label": "On", "off_label": "Off"}
		},
	},
	"comment": {
		ID: "comment", Label: "Comments", Cardinality: 1,
		DefaultWidget: "comment_default", DefaultFormatter: "comment_default",
		storageSettings: func() map[string]any {
			return map[string]any{"comment_type": ""}
		},
		fieldSettings: func() map[string]any {
			return map[string]any{"default_mode": 1, "per_page": 50, "anonymous": 0, "form_location": true, "preview": 1}
		},
	},
	"datetime": {
		ID: "datetime", Label: "Date",
		DefaultWidget: "datetime_default", DefaultFormatter: "datetime_default",
		storageSettings: func() map[string]any {
			return map[string]any{"datetime_type": "datetime"}
		},
	},
	"decimal": {
		ID: "decimal", Label: "Number (decimal)",
		DefaultWidget: "number", DefaultFormatter: "number_decimal",
		storageSettings: func() map[string]any {
			return map[string]any{"precision": 10, "scale": 2}
		},
		fieldSettings: func() map[string]any {
			return map[string]any{"min": "", "max": "", "prefix": "", "suffix": ""}
		},
	},
	"email": {
		ID: "email", Label: "Email",
		DefaultWidget: "email_default", DefaultFormatter: "basic_string",
	},
	"entity_reference": {
		ID: "entity_reference", Label: "Entity reference",
		DefaultWidget: "entity_reference_autocomplete", DefaultFormatter: "entity_reference_label",
		storageSettings: func() map[string]any {
			return map[string]any{"target_type": "node"}
		},
		fieldSettings: func() map[string]any {
			return map[string]any{
				"handler":          "default",
				"handler_settings": map[string]any{},
			}
		},
	},
	"image": {
		ID: "image", Label: "Image",
		DefaultWidget: "image_image", DefaultFormatter: "image",
		storageSettings: func() map[string]any {
			return map[string]any{
				"uri_scheme":    "public",
				"default_image": imageDefaults(),
			}
		},
		fieldSettings: func() map[string]any {
			return map[string]any{
				"file_directory":     "[date:custom:Y]-[date:custom:m]",
				"file_extensions":    "png gif jpg jpeg",
				"max_filesize":       "",
				"max_resolution":     "",
				"min_resolution":     "",
				"alt_field":          true,
				"alt_field_required": true,
				"title_field":        false,
				"default_image":      imageDefaults(),
			}
		},
	},
	"integer": {
		ID: "integer", Label: "Number (integer)",
		DefaultWidget: "number", DefaultFormatter: "number_integer",
		storageSettings: func() map[string]any {
			return map[string]any{"unsigned": false, "size": "normal"}
		},
		fieldSettings: func() map[string]any {
			return map[string]any{"min": "", "max": "", "prefix": "", "suffix": ""}
		},
	},
	"link": {
		ID: "link", Label: "Link",
		DefaultWidget: "link_default", DefaultFormatter: "link",
		fieldSettings: func() map[string]any {
			return map[string]any{"link_type": 17, "title": 1}
		},
	},
	"list_string": {
		ID: "list_string", Label: "List (text)",
		DefaultWidget: "options_select", DefaultFormatter: "list_default",
		storageSettings: func() map[string]any {
			return map[string]any{"allowed_values": map[string]any{}, "allowed_values_function": ""}
		},
	},
	"string": {
		ID: "string", Label: "Text (plain)",
		DefaultWidget: "string_textfield", DefaultFormatter: "string",
		storageSettings: func() map[string]any {
			return map[string]any{"max_length": 255, "is_ascii": false, "case_sensitive": false}
		},
	},
	"string_long": {
		ID: "string_long", Label: "Text (plain, long)",
		DefaultWidget: "string_textarea", DefaultFormatter: "basic_string",
		storageSettings: func() map[string]any {
			return map[string]any{"case_sensitive": false}
		},
	},
	"text_long": {
		ID: "text_long", Label: "Text (formatted, long)",
		DefaultWidget: "text_textarea", DefaultFormatter: "text_default",
	},
	"text_with_summary": {
		ID: "text_with_summary", Label: "Text (formatted, long, with summary)",
		DefaultWidget: "text_textarea_with_summary", DefaultFormatter: "text_default",
		fieldSettings: func() map[string]any {
			return map[string]any{"display_summary": false, "required_summary": false}
		},
	},
}

// LookupFieldType finds a field type by machine name
func LookupFieldType(id string) (FieldType, error) {
	ft, ok := fieldTypes[id]
	if !ok {
		return FieldType{}, fmt.Errorf("unknown field type %q", id)
	}
	return ft, nil
}

// FieldTypes returns the machine names of the field types offered in questions
func FieldTypes() []string {
	ids := make([]string, 0, len(fieldTypes))
	for id := range fieldTypes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
