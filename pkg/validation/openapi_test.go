package validation_test

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formview/pkg/validation"
)

const contactDocument = `
openapi: 3.0.3
info:
  title: Contact
  version: 1.0.0
paths:
  /contact:
    post:
      operationId: submitContact
      requestBody:
        required: true
        content:
          application/x-www-form-urlencoded:
            schema:
              type: object
              required: [name, email]
              properties:
                name:
                  type: string
                  minLength: 2
                email:
                  type: string
                  format: email
                age:
                  type: integer
                  minimum: 18
                subscribe:
                  type: boolean
                topic:
                  type: array
                  items:
                    type: string
                    enum: [sales, support]
      responses:
        "204":
          description: sent
`

func newContactValidator(t *testing.T) *validation.OpenAPI {
	t.Helper()

	v, err := validation.NewOpenAPI(context.Background(), []byte(contactDocument), "submitContact")
	require.NoError(t, err)
	return v
}

func TestOpenAPI_SelectsFormSchema(t *testing.T) {
	v := newContactValidator(t)
	require.Equal(t, "submitContact", v.OperationID())
	require.Equal(t, "application/x-www-form-urlencoded", v.MediaType())
	require.Equal(t, []string{"age", "email", "name", "subscribe", "topic"}, v.Fields())
}

func TestOpenAPI_ValidateDecodesValues(t *testing.T) {
	v := newContactValidator(t)
	doc, issues := v.Validate(url.Values{
		"name":      {"Ada"},
		"email":     {"ada@example.com"},
		"age":       {"36"},
		"subscribe": {"yes"},
		"topic":     {"sales", "support"},
	})
	require.Empty(t, issues)
	require.Equal(t, map[string]any{
		"name":      "Ada",
		"email":     "ada@example.com",
		"age":       int64(36),
		"subscribe": true,
		"topic":     []any{"sales", "support"},
	}, doc)
}

func TestOpenAPI_ValidateReportsFieldIssues(t *testing.T) {
	v := newContactValidator(t)
	_, issues := v.Validate(url.Values{
		"name":  {"A"},
		"email": {"   "},
		"age":   {"twelve"},
	})

	fields := issues.Fields()
	require.Equal(t, []string{"email is required"}, fields["email"])
	require.Equal(t, []string{"age must be a whole number"}, fields["age"])
	require.Len(t, fields["name"], 1)
	require.Contains(t, fields["name"][0], "minimum string length is 2")
}

func TestOpenAPI_ValidateCheckboxAndUnknownNames(t *testing.T) {
	v := newContactValidator(t)
	doc, issues := v.Validate(url.Values{
		"name":      {"Ada"},
		"email":     {"ada@example.com"},
		"age":       {" 40 "},
		"subscribe": {"on"},
		"csrf":      {"token"},
	})
	require.Empty(t, issues)
	require.Equal(t, true, doc["subscribe"])
	require.Equal(t, int64(40), doc["age"])
	require.NotContains(t, doc, "csrf")
}

func TestOpenAPI_ValidateReportsUnparsableValues(t *testing.T) {
	v := newContactValidator(t)
	doc, issues := v.Validate(url.Values{
		"name":      {"Ada"},
		"email":     {"ada@example.com"},
		"subscribe": {"maybe"},
	})

	require.NotContains(t, doc, "subscribe")
	require.Equal(t, []string{"subscribe must be true or false"}, issues.Fields()["subscribe"])
}

func TestOpenAPI_RejectsNestedFormSchema(t *testing.T) {
	document := `
openapi: 3.0.3
info:
  title: Nested
  version: 1.0.0
paths:
  /profile:
    post:
      operationId: saveProfile
      requestBody:
        content:
          application/x-www-form-urlencoded:
            schema:
              type: object
              properties:
                address:
                  type: object
                  properties:
                    city:
                      type: string
      responses:
        "204":
          description: saved
`
	_, err := validation.NewOpenAPI(context.Background(), []byte(document), "saveProfile")
	require.ErrorContains(t, err, `unsupported schema of request body's property "address"`)
}

func TestOpenAPI_ValidateRangeAndEnum(t *testing.T) {
	v := newContactValidator(t)
	_, issues := v.Validate(url.Values{
		"name":  {"Ada"},
		"email": {"ada@example.com"},
		"age":   {"12"},
		"topic": {"spam"},
	})

	fields := issues.Fields()
	require.Len(t, fields["age"], 1)
	require.Contains(t, fields["age"][0], "number must be at least 18")
	require.Len(t, fields["topic"], 1)
	require.Contains(t, fields["topic"][0], "value is not one of the allowed values")
}

func TestOpenAPI_Errors(t *testing.T) {
	_, err := validation.NewOpenAPI(context.Background(), nil, "submitContact")
	require.Error(t, err)

	_, err = validation.NewOpenAPI(context.Background(), []byte(contactDocument), "")
	require.Error(t, err)

	_, err = validation.NewOpenAPI(context.Background(), []byte(contactDocument), "missing")
	require.ErrorContains(t, err, `operation "missing" not found`)
}
