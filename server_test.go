package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/shreyatrivedi/portfolio/internal/config"
	"github.com/shreyatrivedi/portfolio/internal/contact"
	"github.com/shreyatrivedi/portfolio/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeFormspree records every payload it receives and answers with status.
type fakeFormspree struct {
	mu       sync.Mutex
	status   int
	payloads []map[string]string
}

func (f *fakeFormspree) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var p map[string]string
	_ = json.NewDecoder(r.Body).Decode(&p)
	f.mu.Lock()
	f.payloads = append(f.payloads, p)
	status := f.status
	f.mu.Unlock()
	w.WriteHeader(status)
}

func (f *fakeFormspree) received() []map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]string(nil), f.payloads...)
}

func testConfig() *config.Config {
	return &config.Config{
		Port:      "0",
		ContentDB: ":memory:",
		Contact: config.ContactConfig{
			Relay:         "formspree",
			SubmitTimeout: time.Second,
			CancelPolicy:  "keep",
			DraftTTL:      time.Minute,
		},
	}
}

func newTestServer(t *testing.T, cfg *config.Config, relayStatus int) (*server, *fakeFormspree) {
	t.Helper()
	fake := &fakeFormspree{status: relayStatus}
	relaySrv := httptest.NewServer(fake)
	t.Cleanup(relaySrv.Close)

	store, err := openContent(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	srv, err := newServer(cfg, zap.NewNop(), store, contact.NewHTTPRelay(relaySrv.URL))
	require.NoError(t, err)
	return srv, fake
}

func newTestRouter(t *testing.T, relayStatus int) (http.Handler, *fakeFormspree) {
	t.Helper()
	srv, fake := newTestServer(t, testConfig(), relayStatus)
	return srv.router(), fake
}

func do(t *testing.T, h http.Handler, method, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func regions() string {
	r := map[string]map[string]float64{}
	for i, id := range []string{"hero", "about", "experience", "projects", "skills", "education", "ctfs"} {
		r[id] = map[string]float64{"start": float64(i * 800), "height": 800}
	}
	b, _ := json.Marshal(r)
	return string(b)
}

func TestIndexRendersEverySection(t *testing.T) {
	h, _ := newTestRouter(t, http.StatusOK)
	rec := do(t, h, http.MethodGet, "/", nil, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	for _, id := range []string{"hero", "about", "experience", "projects", "skills", "education", "ctfs"} {
		assert.Contains(t, body, `<section id="`+id+`"`)
	}
	assert.Contains(t, body, "Shreya Trivedi")
	assert.Contains(t, body, `data-active="hero"`)
	assert.Contains(t, body, "<strong>SOC Analyst</strong>")
	assert.Contains(t, body, `hx-get="/work-content"`)
	assert.Contains(t, body, `hx-get="/education-content"`)
	assert.Contains(t, body, `src="/images/avatar.svg"`)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestIndexDoesNotCreateSessions(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(), http.StatusOK)
	h := srv.router()

	for i := 0; i < 50; i++ {
		rec := do(t, h, http.MethodGet, "/", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Result().Cookies())
	}
	assert.Zero(t, srv.drafts.Len())

	do(t, h, http.MethodGet, "/contact-form", nil, nil)
	assert.Equal(t, 1, srv.drafts.Len())
}

func TestSectionFragments(t *testing.T) {
	h, _ := newTestRouter(t, http.StatusOK)

	t.Run("work", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/work-content", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "<article")
		assert.NotContains(t, rec.Body.String(), "<html")
	})

	t.Run("education", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/education-content", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Certifications")
		assert.Contains(t, rec.Body.String(), "Research &amp; Achievements")
	})
}

func TestImages(t *testing.T) {
	h, _ := newTestRouter(t, http.StatusOK)
	rec := do(t, h, http.MethodGet, "/images/avatar.svg", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<svg")
}

func TestHealthz(t *testing.T) {
	h, _ := newTestRouter(t, http.StatusOK)
	rec := do(t, h, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestNavActive(t *testing.T) {
	h, _ := newTestRouter(t, http.StatusOK)

	t.Run("section in view", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/nav/active", url.Values{
			"offset": {"2350"}, "active": {"hero"}, "regions": {regions()},
		}, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `data-active="projects"`)
		assert.Contains(t, rec.Body.String(), `aria-current="true">Projects</button>`)
	})

	t.Run("no match keeps previous", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/nav/active", url.Values{
			"offset": {"99999"}, "active": {"skills"}, "regions": {regions()},
		}, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `data-active="skills"`)
	})

	t.Run("unknown previous falls back to hero", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/nav/active", url.Values{
			"offset": {"99999"}, "active": {"blog"}, "regions": {regions()},
		}, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `data-active="hero"`)
	})

	t.Run("malformed regions", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/nav/active", url.Values{
			"offset": {"0"}, "regions": {"{not json"},
		}, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestNavActiveLogsChanges(t *testing.T) {
	store, err := openContent(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	core, logs := observer.New(zapcore.DebugLevel)
	srv, err := newServer(testConfig(), zap.New(core), store, contact.NewHTTPRelay(""))
	require.NoError(t, err)
	h := srv.router()

	do(t, h, http.MethodPost, "/nav/active", url.Values{
		"offset": {"2350"}, "active": {"hero"}, "regions": {regions()},
	}, nil)
	changes := logs.FilterMessage("Active section changed").All()
	require.Len(t, changes, 1)
	assert.Equal(t, "hero", changes[0].ContextMap()["from"])
	assert.Equal(t, "projects", changes[0].ContextMap()["to"])

	do(t, h, http.MethodPost, "/nav/active", url.Values{
		"offset": {"2350"}, "active": {"projects"}, "regions": {regions()},
	}, nil)
	assert.Len(t, logs.FilterMessage("Active section changed").All(), 1)
}

func TestNavScroll(t *testing.T) {
	h, _ := newTestRouter(t, http.StatusOK)

	rec := do(t, h, http.MethodPost, "/nav/scroll/projects", url.Values{"regions": {regions()}}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"scroll-to-section":"projects"}`, rec.Header().Get("HX-Trigger"))

	// Nothing rendered with that id.
	rec = do(t, h, http.MethodPost, "/nav/scroll/projects", url.Values{"regions": {`{"hero":{"start":0,"height":800}}`}}, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("HX-Trigger"))
}

var aliceForm = url.Values{
	"name":        {"Alice"},
	"email":       {"a@b.com"},
	"company":     {""},
	"position":    {""},
	"inquiryType": {"General"},
	"message":     {"Hi"},
}

func TestContactFieldTogglesSubmit(t *testing.T) {
	h, _ := newTestRouter(t, http.StatusOK)

	rec := do(t, h, http.MethodGet, "/contact-form", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "disabled>Send Message")
	assert.Contains(t, rec.Body.String(), `hx-disabled-elt="#contact-submit"`)
	cookie := sessionCookie(t, rec)

	var last *httptest.ResponseRecorder
	for _, f := range []string{"name", "email", "inquiryType", "message"} {
		last = do(t, h, http.MethodPost, "/contact/field", url.Values{"field": {f}, f: aliceForm[f]}, cookie)
		require.Equal(t, http.StatusOK, last.Code)
	}
	assert.NotContains(t, last.Body.String(), "disabled>Send Message")

	rec = do(t, h, http.MethodPost, "/contact/field", url.Values{"field": {"message"}, "message": {""}}, cookie)
	assert.Contains(t, rec.Body.String(), "disabled>Send Message")

	rec = do(t, h, http.MethodPost, "/contact/field", url.Values{"field": {"_subject"}}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContactSubmitSuccess(t *testing.T) {
	h, fake := newTestRouter(t, http.StatusOK)

	rec := do(t, h, http.MethodGet, "/contact-form", nil, nil)
	cookie := sessionCookie(t, rec)

	rec = do(t, h, http.MethodPost, "/contact", aliceForm, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Thank you! Your message has been sent successfully.")
	assert.Equal(t, "contact-closed", rec.Header().Get("HX-Trigger"))

	got := fake.received()
	require.Len(t, got, 1)
	assert.Equal(t, "General Inquiry from Alice", got[0]["_subject"])
	assert.Equal(t, "a@b.com", got[0]["email"])

	// Reopening shows an empty form.
	rec = do(t, h, http.MethodGet, "/contact-form", nil, cookie)
	assert.NotContains(t, rec.Body.String(), `value="Alice"`)
	assert.Contains(t, rec.Body.String(), "disabled>Send Message")
}

func TestContactSubmitFailureKeepsForm(t *testing.T) {
	h, fake := newTestRouter(t, http.StatusInternalServerError)

	rec := do(t, h, http.MethodGet, "/contact-form", nil, nil)
	cookie := sessionCookie(t, rec)

	rec = do(t, h, http.MethodPost, "/contact", aliceForm, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sorry, there was an error sending your message. Please try again.")
	assert.Empty(t, rec.Header().Get("HX-Trigger"))
	assert.Len(t, fake.received(), 1)

	// The dialog is still open with the fields intact, so a retry needs no typing.
	rec = do(t, h, http.MethodPost, "/contact/field", url.Values{"field": {"company"}, "company": {""}}, cookie)
	assert.NotContains(t, rec.Body.String(), "disabled>Send Message")

	rec = do(t, h, http.MethodGet, "/contact-form", nil, cookie)
	assert.Contains(t, rec.Body.String(), `value="Alice"`)
}

func TestContactSubmitGuards(t *testing.T) {
	h, fake := newTestRouter(t, http.StatusOK)

	t.Run("incomplete", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/contact-form", nil, nil)
		cookie := sessionCookie(t, rec)

		form := url.Values{"name": {"Alice"}, "email": {"a@b.com"}}
		rec = do(t, h, http.MethodPost, "/contact", form, cookie)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("dialog never opened", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/contact", aliceForm, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	assert.Empty(t, fake.received())
}

func TestContactCancel(t *testing.T) {
	h, fake := newTestRouter(t, http.StatusOK)

	rec := do(t, h, http.MethodGet, "/contact-form", nil, nil)
	cookie := sessionCookie(t, rec)
	do(t, h, http.MethodPost, "/contact/field", url.Values{"field": {"name"}, "name": {"Alice"}}, cookie)

	rec = do(t, h, http.MethodPost, "/contact/cancel", nil, cookie)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "contact-closed", rec.Header().Get("HX-Trigger"))

	rec = do(t, h, http.MethodPost, "/contact", aliceForm, cookie)
	assert.Equal(t, http.StatusConflict, rec.Code, "a cancelled dialog cannot submit")
	assert.Empty(t, fake.received())
}

func TestContactSubmitAfterClearedCancel(t *testing.T) {
	cfg := testConfig()
	cfg.Contact.CancelPolicy = "clear"
	srv, fake := newTestServer(t, cfg, http.StatusOK)
	h := srv.router()

	rec := do(t, h, http.MethodGet, "/contact-form", nil, nil)
	cookie := sessionCookie(t, rec)
	do(t, h, http.MethodPost, "/contact/field", url.Values{"field": {"name"}, "name": {"Alice"}}, cookie)
	do(t, h, http.MethodPost, "/contact/cancel", nil, cookie)

	stale := url.Values{"name": {"Mallory"}, "message": {"stale"}}
	rec = do(t, h, http.MethodPost, "/contact", stale, cookie)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Empty(t, fake.received())

	ctrl, _ := srv.drafts.Get(cookie.Value)
	assert.Equal(t, contact.Closed, ctrl.State())
	assert.Equal(t, contact.Inquiry{}, ctrl.Form())
}

func TestSendInquiry(t *testing.T) {
	fake := &fakeFormspree{status: http.StatusOK}
	relaySrv := httptest.NewServer(fake)
	defer relaySrv.Close()

	form := map[contact.Field]string{
		contact.FieldName:        "Alice",
		contact.FieldEmail:       "a@b.com",
		contact.FieldInquiryType: "Internship",
		contact.FieldMessage:     "Hi",
	}

	var out bytes.Buffer
	err := sendInquiry(context.Background(), &out, testConfig(), zap.NewNop(), contact.NewHTTPRelay(relaySrv.URL), form)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "sent successfully")
	require.Len(t, fake.received(), 1)
	assert.Equal(t, "Internship Inquiry from Alice", fake.received()[0]["_subject"])

	fake.mu.Lock()
	fake.status = http.StatusBadGateway
	fake.mu.Unlock()
	out.Reset()
	err = sendInquiry(context.Background(), &out, testConfig(), zap.NewNop(), contact.NewHTTPRelay(relaySrv.URL), form)
	assert.Error(t, err)
	assert.Contains(t, out.String(), "error sending your message")

	delete(form, contact.FieldMessage)
	err = sendInquiry(context.Background(), &out, testConfig(), zap.NewNop(), contact.NewHTTPRelay(relaySrv.URL), form)
	assert.ErrorIs(t, err, contact.ErrIncomplete)
}

func TestNewRelay(t *testing.T) {
	cfg := testConfig()
	cfg.Contact.FormEndpoint = "https://forms.example.com/f/abc"
	relay, ok := newRelay(cfg).(*contact.HTTPRelay)
	require.True(t, ok)
	assert.Equal(t, "https://forms.example.com/f/abc", relay.Endpoint)

	cfg.Contact.Relay = "smtp"
	cfg.SMTP = config.SMTPConfig{Host: "smtp.example.com", Port: "587", User: "site@example.com"}
	smtpRelay, ok := newRelay(cfg).(*contact.SMTPRelay)
	require.True(t, ok)
	assert.Equal(t, "site@example.com", smtpRelay.To)
}

func TestHashIPIsStablePerProcess(t *testing.T) {
	s := &server{salt: "pepper"}
	assert.Equal(t, s.hashIP("10.0.0.1"), s.hashIP("10.0.0.1"))
	assert.NotEqual(t, s.hashIP("10.0.0.1"), s.hashIP("10.0.0.2"))
	assert.Len(t, s.hashIP("10.0.0.1"), 16)
}

func TestGenerateSalt(t *testing.T) {
	a, err := generateSalt()
	require.NoError(t, err)
	b, err := generateSalt()
	require.NoError(t, err)
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}
