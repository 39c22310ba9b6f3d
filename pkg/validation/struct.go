package validation

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/form/v4"
	"github.com/go-playground/validator/v10"
)

// TagName is the struct tag naming the submitted field a struct field binds.
const TagName = "form"

var (
	validateOnce sync.Once
	validate     *validator.Validate

	decoderOnce sync.Once
	decoder     *form.Decoder
)

// Decoder returns the shared form decoder Bind uses.
func Decoder() *form.Decoder {
	decoderOnce.Do(func() {
		decoder = form.NewDecoder()
		decoder.SetTagName(TagName)
		decoder.RegisterTagNameFunc(decoderName)
	})
	return decoder
}

// Validator returns the shared validator. Custom rules registered on it apply
// to every Struct call.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(fieldName)
		_ = validate.RegisterValidation("notblank", validateNotBlank)
	})
	return validate
}

// validateNotBlank rejects strings that are empty after trimming whitespace,
// the same rule form.IsEmptyPostField applies.
func validateNotBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return true
	}
	return strings.TrimSpace(field.String()) != ""
}

// Bind decodes values into the struct dst points to. Fields bind by their
// `form` tag, falling back to the lower-cased field name; `form:"-"` skips a
// field. Checkbox style booleans ("on", "yes") are accepted. Values that do
// not parse as the field's type are reported as Issues; the returned error is
// reserved for a dst that is not a struct pointer.
func Bind(values url.Values, dst any) (Issues, error) {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("validation: bind target must be a non-nil struct pointer, got %T", dst)
	}

	err := Decoder().Decode(dst, values)
	if err == nil {
		return nil, nil
	}
	var decodeErrs form.DecodeErrors
	if !errors.As(err, &decodeErrs) {
		return nil, fmt.Errorf("validation: bind: %w", err)
	}

	kinds := fieldKinds(rv.Elem().Type())
	seen := make(map[string]struct{}, len(decodeErrs))
	names := make([]string, 0, len(decodeErrs))
	for namespace := range decodeErrs {
		// slice elements are reported as name[i]
		name, _, _ := strings.Cut(namespace, "[")
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)

	issues := make(Issues, 0, len(names))
	for _, name := range names {
		issues = append(issues, Issue{
			Field:   name,
			Message: name + " " + bindMessage(kinds[name]),
		})
	}
	return issues, nil
}

// Struct validates dst with the shared validator and turns failures into
// readable issues keyed by form field name.
func Struct(dst any) Issues {
	err := Validator().Struct(dst)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return Issues{{Message: err.Error()}}
	}

	issues := make(Issues, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		issues = append(issues, Issue{
			Path:    fe.Namespace(),
			Field:   fe.Field(),
			Message: message(fe),
		})
	}
	return issues
}

// BindStruct binds values into dst and validates it. Bind issues win over
// rule failures for the same field.
func BindStruct(values url.Values, dst any) (Issues, error) {
	issues, err := Bind(values, dst)
	if err != nil {
		return nil, err
	}
	bound := make(map[string]struct{}, len(issues))
	for _, issue := range issues {
		bound[issue.Field] = struct{}{}
	}
	for _, issue := range Struct(dst) {
		if _, ok := bound[issue.Field]; ok {
			continue
		}
		issues = append(issues, issue)
	}
	return issues, nil
}

func fieldName(sf reflect.StructField) string {
	tag, _, _ := strings.Cut(sf.Tag.Get(TagName), ",")
	switch tag = strings.TrimSpace(tag); tag {
	case "-":
		return ""
	case "":
		return strings.ToLower(sf.Name)
	default:
		return tag
	}
}

// decoderName mirrors fieldName for the form decoder, which skips "-".
func decoderName(sf reflect.StructField) string {
	if name := fieldName(sf); name != "" {
		return name
	}
	return "-"
}

func fieldKinds(typ reflect.Type) map[string]reflect.Kind {
	kinds := make(map[string]reflect.Kind, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		if name := fieldName(sf); name != "" && sf.IsExported() {
			kind := sf.Type.Kind()
			if kind == reflect.Slice {
				kind = sf.Type.Elem().Kind()
			}
			kinds[name] = kind
		}
	}
	return kinds
}

func bindMessage(kind reflect.Kind) string {
	switch kind {
	case reflect.Bool:
		return "must be true or false"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "must be a whole number"
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "must be a positive whole number"
	case reflect.Float32, reflect.Float64:
		return "must be a number"
	default:
		return "is invalid"
	}
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	param := fe.Param()
	switch fe.Tag() {
	case "required", "notblank":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "url", "http_url":
		return field + " must be a valid URL"
	case "numeric", "number":
		return field + " must be a number"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(strings.Fields(param), ", "))
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field, param)
	case "gte":
		return fmt.Sprintf("%s must be %s or more", field, param)
	case "lte":
		return fmt.Sprintf("%s must be %s or less", field, param)
	case "eqfield":
		return fmt.Sprintf("%s must match %s", field, strings.ToLower(param))
	default:
		return field + " is invalid"
	}
}
