// SPDX-License-Identifier: MIT

// Package validate holds the validation rules shared by interactive
// questions and entity persistence.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// MaxNameLength is the longest allowed bundle or field machine name
const MaxNameLength = 32

var machineNamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator returns the shared struct validator with the machine_name rule registered
func Validator() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		_ = instance.RegisterValidation("machine_name", func(fl validator.FieldLevel) bool {
			return machineNamePattern.MatchString(fl.Field().String())
		})
	})
	return instance
}

// Struct validates an entity record against its validate tags
func Struct(entity interface{}) error {
	err := Validator().Struct(entity)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err
	}

	messages := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		messages = append(messages, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid %T: %s", entity, strings.Join(messages, "; "))
}

// MachineName checks a name contains only lowercase letters, numbers and underscores
func MachineName(name string) (string, error) {
	if !machineNamePattern.MatchString(name) {
		return "", fmt.Errorf("Machine name %q is invalid, it must contain only lowercase letters, numbers and underscores.", name)
	}
	return name, nil
}

// ShortMachineName is MachineName with the bundle and field name length limit
func ShortMachineName(name string) (string, error) {
	name, err := MachineName(name)
	if err != nil {
		return "", err
	}
	if len(name) > MaxNameLength {
		return "", fmt.Errorf("Machine name %q is too long, it must be at most %d characters.", name, MaxNameLength)
	}
	return name, nil
}

// Cardinality parses a field cardinality, accepting positive integers and -1 (unlimited)
func Cardinality(value string) (int, error) {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed == 0 || parsed < -1 {
		return 0, errors.New("Cardinality must be a positive integer or -1.")
	}
	return parsed, nil
}

// DimensionLength parses an image width or height
func DimensionLength(value string) (int, error) {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed < 1 {
		return 0, errors.New("Dimension length must be a positive integer.")
	}
	return parsed, nil
}
