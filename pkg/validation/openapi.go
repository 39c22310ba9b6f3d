package validation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
)

var formatsOnce sync.Once

func defineFormats() {
	formatsOnce.Do(func() {
		if _, ok := openapi3.SchemaStringFormats["email"]; !ok {
			openapi3.DefineStringFormatValidator("email", openapi3.NewRegexpFormatValidator(openapi3.FormatOfStringForEmail))
		}
	})
}

// OpenAPI validates submitted values against the request body schema of one
// OpenAPI 3 operation.
type OpenAPI struct {
	operationID string
	mediaType   string
	schema      *openapi3.Schema
	encodings   map[string]*openapi3.Encoding
}

const formMediaType = "application/x-www-form-urlencoded"

var requestMediaTypes = []string{
	formMediaType,
	"multipart/form-data",
	"application/json",
}

// NewOpenAPI loads an OpenAPI 3 document and selects the request body schema
// of operationID.
func NewOpenAPI(ctx context.Context, data []byte, operationID string) (*OpenAPI, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(data) == 0 {
		return nil, errors.New("validation: openapi document is empty")
	}
	operationID = strings.TrimSpace(operationID)
	if operationID == "" {
		return nil, errors.New("validation: operation id is required")
	}
	defineFormats()

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("validation: load openapi document: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("validation: invalid openapi document: %w", err)
	}

	op := findOperation(doc, operationID)
	if op == nil {
		return nil, fmt.Errorf("validation: operation %q not found", operationID)
	}
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil, fmt.Errorf("validation: operation %q has no request body", operationID)
	}

	content := op.RequestBody.Value.Content
	for _, mediaType := range requestMediaTypes {
		mt := content.Get(mediaType)
		if mt == nil || mt.Schema == nil || mt.Schema.Value == nil {
			continue
		}
		v := &OpenAPI{operationID: operationID, mediaType: mediaType, schema: mt.Schema.Value, encodings: mt.Encoding}
		if _, err := v.decode(url.Values{}); err != nil {
			return nil, fmt.Errorf("validation: operation %q: %w", operationID, err)
		}
		return v, nil
	}
	return nil, fmt.Errorf("validation: operation %q has no form or json request schema", operationID)
}

func findOperation(doc *openapi3.T, operationID string) *openapi3.Operation {
	if doc.Paths == nil {
		return nil
	}
	for _, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for _, op := range item.Operations() {
			if op != nil && op.OperationID == operationID {
				return op
			}
		}
	}
	return nil
}

// OperationID returns the operation whose schema is used.
func (o *OpenAPI) OperationID() string { return o.operationID }

// MediaType returns the request content type the schema was taken from.
func (o *OpenAPI) MediaType() string { return o.mediaType }

// Fields returns the schema property names in sorted order.
func (o *OpenAPI) Fields() []string {
	names := make([]string, 0, len(o.schema.Properties))
	for name := range o.schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate decodes values by the schema property types and validates the
// resulting object. Blank values count as absent and names the schema does not
// declare are ignored. It returns the decoded object along with any issues.
func (o *OpenAPI) Validate(values url.Values) (map[string]any, Issues) {
	submitted := o.submitted(values)
	doc, err := o.decode(submitted)
	if err != nil {
		return nil, Issues{{Message: "form could not be decoded: " + err.Error()}}
	}

	var issues Issues
	decodeFailed := make(map[string]struct{})
	for _, name := range sortedNames(submitted) {
		if _, ok := doc[name]; ok {
			continue
		}
		prop := o.property(name)
		if prop == nil {
			continue
		}
		if prop.Type == nil || len(prop.Type.Slice()) == 0 {
			doc[name] = submitted.Get(name)
			continue
		}
		decodeFailed[name] = struct{}{}
		issues = append(issues, Issue{Path: "/" + name, Field: name, Message: name + " " + typeMessage(prop)})
	}

	err = o.schema.VisitJSON(doc, openapi3.MultiErrors(), openapi3.VisitAsRequest(), openapi3.EnableFormatValidation())
	if err == nil {
		return doc, issues
	}
	for _, issue := range schemaIssues(err) {
		if _, ok := decodeFailed[issue.Field]; ok {
			continue
		}
		issues = append(issues, issue)
	}
	return doc, issues
}

// decode runs the registered url-encoded body decoder over values. Properties
// that were not submitted, or whose value does not parse as the property
// type, are left out of the result.
func (o *OpenAPI) decode(values url.Values) (map[string]any, error) {
	decoder := openapi3filter.RegisteredBodyDecoder(formMediaType)
	if decoder == nil {
		return nil, fmt.Errorf("no body decoder registered for %s", formMediaType)
	}
	header := http.Header{"Content-Type": {formMediaType}}
	out, err := decoder(strings.NewReader(values.Encode()), header, &openapi3.SchemaRef{Value: o.schema}, o.encoding)
	if err != nil {
		return nil, err
	}
	obj, ok := out.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("decoded body is %T, not an object", out)
	}
	for name, value := range obj {
		if value == nil {
			delete(obj, name)
		}
	}
	return obj, nil
}

func (o *OpenAPI) encoding(name string) *openapi3.Encoding {
	if o.encodings == nil {
		return nil
	}
	return o.encodings[name]
}

func (o *OpenAPI) property(name string) *openapi3.Schema {
	ref := o.schema.Properties[name]
	if ref == nil {
		return nil
	}
	return ref.Value
}

// submitted drops blank values and names the schema does not declare. Values
// of non-string properties are trimmed, and checkbox values of boolean
// properties are spelled the way the decoder parses them.
func (o *OpenAPI) submitted(values url.Values) url.Values {
	out := make(url.Values, len(values))
	for name, raw := range values {
		prop := o.property(name)
		if prop == nil {
			continue
		}
		scalar := prop
		if prop.Type.Is(openapi3.TypeArray) && prop.Items != nil && prop.Items.Value != nil {
			scalar = prop.Items.Value
		}
		for _, value := range raw {
			trimmed := strings.TrimSpace(value)
			if trimmed == "" {
				continue
			}
			if scalar.Type.Is(openapi3.TypeString) {
				out[name] = append(out[name], value)
				continue
			}
			if scalar.Type.Is(openapi3.TypeBoolean) {
				trimmed = checkboxValue(trimmed)
			}
			out[name] = append(out[name], trimmed)
		}
	}
	return out
}

func checkboxValue(value string) string {
	switch strings.ToLower(value) {
	case "on", "yes":
		return "true"
	case "off", "no":
		return "false"
	}
	return value
}

func typeMessage(prop *openapi3.Schema) string {
	if prop.Type.Is(openapi3.TypeArray) && prop.Items != nil && prop.Items.Value != nil {
		prop = prop.Items.Value
	}
	switch {
	case prop.Type.Is(openapi3.TypeInteger):
		return "must be a whole number"
	case prop.Type.Is(openapi3.TypeNumber):
		return "must be a number"
	case prop.Type.Is(openapi3.TypeBoolean):
		return "must be true or false"
	}
	return "is invalid"
}

func sortedNames(values url.Values) []string {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func schemaIssues(err error) Issues {
	var issues Issues
	var walk func(error)
	walk = func(err error) {
		switch e := err.(type) {
		case openapi3.MultiError:
			for _, inner := range e {
				walk(inner)
			}
		case *openapi3.SchemaError:
			issues = append(issues, issueFromSchemaError(e))
		default:
			msg := strings.TrimSpace(err.Error())
			path := extractJSONPointer(msg)
			issues = append(issues, Issue{Path: path, Field: fieldFromPointer(path), Message: msg})
		}
	}
	walk(err)
	return issues
}

func issueFromSchemaError(err *openapi3.SchemaError) Issue {
	pointer := "/" + strings.Join(err.JSONPointer(), "/")
	field := fieldFromPointer(pointer)

	reason := strings.TrimSpace(err.Reason)
	if reason == "" && err.Origin != nil {
		reason = err.Origin.Error()
	}

	var message string
	switch {
	case err.SchemaField == "required":
		message = field + " is required"
	case field == "":
		message = reason
	default:
		message = field + ": " + reason
	}
	return Issue{Path: pointer, Field: field, Message: message}
}
