package contact_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formview/internal/contact"
	"github.com/goliatone/go-formview/pkg/form"
	"github.com/goliatone/go-formview/pkg/render/template/gotemplate"
	"github.com/goliatone/go-formview/pkg/testsupport"
)

func newEngine(t *testing.T) *gotemplate.Engine {
	t.Helper()

	engine, err := gotemplate.New(gotemplate.WithFS(contact.Templates()))
	require.NoError(t, err)
	return engine
}

func fixedSender(reference string, err error) contact.Sender {
	return contact.SenderFunc(func(context.Context, contact.Submission) (string, error) {
		return reference, err
	})
}

func validFields() url.Values {
	return url.Values{
		"name":      {"Ada"},
		"email":     {"ada@example.com"},
		"topic":     {"support"},
		"message":   {"<script>alert(1)</script><b>hi</b>"},
		"subscribe": {"on"},
	}
}

func serve(t *testing.T, handler http.Handler, method string, fields url.Values) *httptest.ResponseRecorder {
	t.Helper()

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, testsupport.NewFormRequest(method, "/contact", fields))
	return rr
}

func TestContact_InitialDisplay(t *testing.T) {
	handler := form.Handler(contact.Factory(contact.Config{Engine: newEngine(t)}))

	rr := serve(t, handler, http.MethodGet, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	require.Contains(t, body, "<title>Contact us</title>")
	require.Contains(t, body, `action="/contact"`)
	require.Contains(t, body, `<option value="sales">Sales</option>`)
	require.Contains(t, body, `<input type="hidden" name="form" value="contact">`)
	require.NotContains(t, body, `class="errors"`)
}

func TestContact_InvalidSubmission(t *testing.T) {
	handler := form.Handler(contact.Factory(contact.Config{Engine: newEngine(t), Sender: fixedSender("R-1", nil)}))

	fields := validFields()
	fields.Set("email", "  ")
	fields.Set("topic", "spam")
	rr := serve(t, handler, http.MethodPost, fields)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	body := rr.Body.String()
	require.Contains(t, body, "<small>email is required</small>")
	require.Contains(t, body, "<small>topic must be one of: general, sales, support</small>")
	require.Contains(t, body, `value="Ada"`)
	require.NotContains(t, body, "R-1")
}

func TestContact_SuccessfulSubmission(t *testing.T) {
	handler := form.Handler(contact.Factory(contact.Config{Engine: newEngine(t), Sender: fixedSender("R-1", nil)}))

	rr := serve(t, handler, http.MethodPost, validFields())

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	require.Contains(t, body, "Thanks, Ada!")
	require.Contains(t, body, "<code>R-1</code>")
	require.Contains(t, body, "Your message was sent.")
	require.Contains(t, body, "<b>hi</b>")
	require.NotContains(t, body, "<script>")
}

func TestContact_SuccessfulSubmissionRedirects(t *testing.T) {
	cfg := contact.Config{Engine: newEngine(t), Sender: fixedSender("R-1", nil), ThanksPath: "/contact/thanks"}
	handler := form.Handler(contact.Factory(cfg))

	rr := serve(t, handler, http.MethodPost, validFields())
	require.Equal(t, http.StatusFound, rr.Code)
	require.Equal(t, "/contact/thanks?ref=R-1", rr.Header().Get("Location"))

	thanks := form.Handler(contact.ThanksFactory(cfg))
	rr = httptest.NewRecorder()
	thanks.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/contact/thanks?ref=R-1", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "<code>R-1</code>")
}

func TestContact_SenderFailureKeepsForm(t *testing.T) {
	handler := form.Handler(contact.Factory(contact.Config{
		Engine: newEngine(t),
		Sender: fixedSender("", errors.New("smtp: connection refused")),
	}))

	rr := serve(t, handler, http.MethodPost, validFields())

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	body := rr.Body.String()
	require.Contains(t, body, "<li>We could not send your message. Please try again.</li>")
	require.Contains(t, body, "<title>Contact us</title>")
	require.False(t, strings.Contains(body, "smtp"), "internal error leaked into the page")
}
