package checklist

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cast"
)

// DefaultValues maps dot paths to schema defaults. Array items use "[0]" as
// their path segment, e.g. "steps.[0].detail".
type DefaultValues map[string]any

// GetDefaultValues extracts every "default" in the checklist schema of the
// given version.
func GetDefaultValues(version string) (DefaultValues, error) {
	info, err := getSchemaInfo(version)
	if err != nil {
		return nil, err
	}

	defaults := make(DefaultValues)
	extractDefaults(info.rawData, "", defaults)
	return defaults, nil
}

func extractDefaults(node any, path string, defaults DefaultValues) {
	schemaMap, ok := node.(map[string]any)
	if !ok {
		return
	}

	if value, ok := schemaMap["default"]; ok && path != "" {
		defaults[path] = value
	}

	if properties, ok := schemaMap["properties"].(map[string]any); ok {
		for name, prop := range properties {
			extractDefaults(prop, joinPath(path, name), defaults)
		}
	}

	if items, ok := schemaMap["items"]; ok {
		extractDefaults(items, joinPath(path, "[0]"), defaults)
	}
}

func joinPath(path, segment string) string {
	if path == "" {
		return segment
	}
	return path + "." + segment
}

// FillWithDefaults sets zero-valued fields of c to the defaults declared by
// the schema of the given version.
func FillWithDefaults(c *Checklist, version string) error {
	defaults, err := GetDefaultValues(version)
	if err != nil {
		return fmt.Errorf("failed to get default values: %w", err)
	}

	if err := applyDefaults(reflect.ValueOf(c).Elem(), "", defaults); err != nil {
		return err
	}

	if c.Title == "" {
		c.Title = DefaultTitle
	}
	return nil
}

func applyDefaults(val reflect.Value, path string, defaults DefaultValues) error {
	switch val.Kind() {
	case reflect.Ptr:
		if val.IsNil() {
			return nil
		}
		return applyDefaults(val.Elem(), path, defaults)

	case reflect.Slice:
		for i := 0; i < val.Len(); i++ {
			if err := applyDefaults(val.Index(i), joinPath(path, "[0]"), defaults); err != nil {
				return err
			}
		}
		return nil

	case reflect.Struct:
		typ := val.Type()
		for i := 0; i < typ.NumField(); i++ {
			fieldType := typ.Field(i)
			if !fieldType.IsExported() {
				continue
			}
			field := val.Field(i)
			fieldPath := joinPath(path, jsonFieldName(fieldType))

			if defaultVal, ok := defaults[fieldPath]; ok && field.IsZero() {
				if err := setFieldValue(field, defaultVal); err != nil {
					return fmt.Errorf("failed to apply default for %s: %w", fieldPath, err)
				}
				continue
			}
			if err := applyDefaults(field, fieldPath, defaults); err != nil {
				return err
			}
		}
		return nil
	}

	return nil
}

func jsonFieldName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "" || tag == "-" {
		return field.Name
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return field.Name
	}
	return name
}

// setFieldValue assigns value to field, converting scalar types with cast
// and composite types with mapstructure.
func setFieldValue(field reflect.Value, value any) error {
	if !field.CanSet() {
		return fmt.Errorf("field of type %s is not settable", field.Type())
	}
	if value == nil {
		return nil
	}

	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(cast.ToString(value))
		return nil
	case reflect.Bool:
		field.SetBool(cast.ToBool(value))
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		field.SetInt(cast.ToInt64(value))
		return nil
	case reflect.Float32, reflect.Float64:
		field.SetFloat(cast.ToFloat64(value))
		return nil
	}

	target := reflect.New(field.Type()).Interface()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(value); err != nil {
		return fmt.Errorf("failed to decode value %v (type %T) to %v: %w", value, value, field.Type(), err)
	}

	field.Set(reflect.ValueOf(target).Elem())
	return nil
}
