package validation_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formview/pkg/validation"
)

type contact struct {
	Name      string   `form:"name" validate:"notblank,max=40"`
	Email     string   `form:"email" validate:"required,email"`
	Age       int      `form:"age" validate:"omitempty,gte=18"`
	Subscribe bool     `form:"subscribe"`
	Topics    []string `form:"topic" validate:"dive,oneof=sales support"`
	Internal  string   `form:"-"`
}

func TestBind(t *testing.T) {
	var dst contact
	issues, err := validation.Bind(url.Values{
		"name":      {"Ada"},
		"email":     {"ada@example.com"},
		"age":       {"36"},
		"subscribe": {"on"},
		"topic":     {"sales", "support"},
		"-":         {"ignored"},
	}, &dst)
	require.NoError(t, err)
	require.Empty(t, issues)

	require.Equal(t, contact{
		Name:      "Ada",
		Email:     "ada@example.com",
		Age:       36,
		Subscribe: true,
		Topics:    []string{"sales", "support"},
	}, dst)
}

func TestBind_ReportsUnparsableValues(t *testing.T) {
	var dst contact
	issues, err := validation.Bind(url.Values{"age": {"old"}, "subscribe": {"maybe"}}, &dst)
	require.NoError(t, err)
	require.ElementsMatch(t, validation.Issues{
		{Field: "age", Message: "age must be a whole number"},
		{Field: "subscribe", Message: "subscribe must be true or false"},
	}, issues)
}

func TestBind_ReportsSliceElementsByField(t *testing.T) {
	var dst struct {
		IDs []int `form:"ids"`
	}
	issues, err := validation.Bind(url.Values{"ids": {"1", "x", "y"}}, &dst)
	require.NoError(t, err)
	require.Equal(t, validation.Issues{{Field: "ids", Message: "ids must be a whole number"}}, issues)
}

func TestBind_FallsBackToLowerCaseNames(t *testing.T) {
	var dst struct {
		Nickname string
		Count    uint
		Agree    bool   `form:"agree"`
		Skipped  string `form:"-"`
	}
	issues, err := validation.Bind(url.Values{
		"nickname": {"ada"},
		"count":    {"3"},
		"agree":    {"yes"},
		"Skipped":  {"no"},
	}, &dst)
	require.NoError(t, err)
	require.Empty(t, issues)
	require.Equal(t, "ada", dst.Nickname)
	require.Equal(t, uint(3), dst.Count)
	require.True(t, dst.Agree)
	require.Empty(t, dst.Skipped)

	issues, err = validation.Bind(url.Values{"count": {"-1"}}, &dst)
	require.NoError(t, err)
	require.Equal(t, validation.Issues{{Field: "count", Message: "count must be a positive whole number"}}, issues)
}

func TestBind_RejectsNonStructTargets(t *testing.T) {
	var dst contact
	_, err := validation.Bind(url.Values{}, dst)
	require.Error(t, err)

	_, err = validation.Bind(url.Values{}, (*contact)(nil))
	require.Error(t, err)
}

func TestStruct_Messages(t *testing.T) {
	issues := validation.Struct(&contact{Name: "   ", Email: "nope", Age: 12, Topics: []string{"spam"}})

	fields := issues.Fields()
	require.Equal(t, []string{"name is required"}, fields["name"])
	require.Equal(t, []string{"email must be a valid email address"}, fields["email"])
	require.Equal(t, []string{"age must be 18 or more"}, fields["age"])
	require.Len(t, fields["topic[0]"], 1)
	require.Contains(t, fields["topic[0]"][0], "must be one of: sales, support")
}

func TestStruct_Valid(t *testing.T) {
	require.Empty(t, validation.Struct(&contact{Name: "Ada", Email: "ada@example.com"}))
}

func TestBindStruct_PrefersBindIssues(t *testing.T) {
	var dst contact
	issues, err := validation.BindStruct(url.Values{
		"name":  {"Ada"},
		"email": {"ada@example.com"},
		"age":   {"x"},
	}, &dst)
	require.NoError(t, err)
	require.Equal(t, validation.Issues{{Field: "age", Message: "age must be a whole number"}}, issues)
}

type recordingSink struct {
	form   []string
	fields map[string][]string
}

func (s *recordingSink) AddError(message string) { s.form = append(s.form, message) }

func (s *recordingSink) AddFieldError(field, message string) {
	if s.fields == nil {
		s.fields = map[string][]string{}
	}
	s.fields[field] = append(s.fields[field], message)
}

func TestIssues_ApplyTo(t *testing.T) {
	sink := &recordingSink{}
	issues := validation.Issues{
		{Field: "email", Message: "email is required"},
		{Message: "try again"},
	}

	require.False(t, issues.ApplyTo(sink))
	require.Equal(t, []string{"try again"}, sink.form)
	require.Equal(t, map[string][]string{"email": {"email is required"}}, sink.fields)
	require.Equal(t, "email: email is required; try again", issues.Error())

	require.True(t, validation.Issues(nil).ApplyTo(sink))
}
