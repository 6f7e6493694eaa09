package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shreyatrivedi/portfolio/internal/config"
	"github.com/shreyatrivedi/portfolio/internal/contact"
	"github.com/shreyatrivedi/portfolio/internal/content"
	"github.com/shreyatrivedi/portfolio/internal/nav"
	"github.com/shreyatrivedi/portfolio/internal/session"
)

type server struct {
	cfg     *config.Config
	log     *zap.Logger
	content *content.Store
	drafts  *session.Store
	salt    string
}

func newServer(cfg *config.Config, log *zap.Logger, store *content.Store, relay contact.Relay) (*server, error) {
	salt, err := generateSalt()
	if err != nil {
		return nil, err
	}
	s := &server{
		cfg:     cfg,
		log:     log,
		content: store,
		salt:    salt,
	}
	s.drafts = session.NewStore(cfg.Contact.DraftTTL, func() *contact.Controller {
		return contact.NewController(relay, log,
			contact.WithTimeout(cfg.Contact.SubmitTimeout),
			contact.WithCancelPolicy(cfg.CancelPolicy()),
		)
	})
	return s, nil
}

func (s *server) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), securityHeaders())
	r.LoadHTMLGlob("templates/*")

	r.Static("/images", "./images")
	r.Static("/static", "./static")

	r.GET("/", s.index)

	// Section fragments, loaded by HTMX once the page is up
	r.GET("/work-content", s.section("work-content.html"))
	r.GET("/education-content", s.section("education-content.html"))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Scroll tracking posts the page geometry; the nav fragment comes back.
	r.POST("/nav/active", s.navActive)
	r.POST("/nav/scroll/:id", s.navScroll)

	// HTMX contact dialog
	r.GET("/contact-form", s.contactForm)
	r.POST("/contact/field", s.contactField)
	r.POST("/contact", s.contactSubmit)
	r.POST("/contact/cancel", s.contactCancel)

	return r
}

type navLink struct {
	ID     nav.SectionID
	Label  string
	Active bool
}

type navView struct {
	Active nav.SectionID
	Links  []navLink
}

func newNavView(active nav.SectionID) navView {
	v := navView{Active: active}
	// The hero has no link of its own; the logo scrolls back to it.
	for _, id := range nav.Sections[1:] {
		v.Links = append(v.Links, navLink{ID: id, Label: id.Label(), Active: id == active})
	}
	return v
}

type contactView struct {
	Form          contact.Inquiry
	SubmitEnabled bool
	InquiryTypes  []contact.InquiryType
}

func newContactView(ctrl *contact.Controller) contactView {
	return contactView{
		Form:          ctrl.Form(),
		SubmitEnabled: ctrl.SubmitEnabled(),
		InquiryTypes:  contact.InquiryTypes(),
	}
}

// controller returns the caller's contact controller and refreshes the
// session cookie.
func (s *server) controller(c *gin.Context) *contact.Controller {
	id, _ := c.Cookie(session.CookieName)
	ctrl, id := s.drafts.Get(id)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, id, int(s.cfg.Contact.DraftTTL.Seconds()), "/", "", false, true)
	return ctrl
}

func (s *server) index(c *gin.Context) {
	page, err := s.content.Page(c.Request.Context())
	if err != nil {
		s.log.Error("Error loading page content", zap.Error(err))
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{"error": pageUnavailable})
		return
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"title": page.Profile.Name,
		"page":  page,
		"nav":   newNavView(nav.Hero),
	})
}

// section renders one catalog-backed fragment of the index page.
func (s *server) section(tmpl string) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := s.content.Page(c.Request.Context())
		if err != nil {
			s.log.Error("Error loading section content", zap.String("template", tmpl), zap.Error(err))
			c.HTML(http.StatusInternalServerError, "error.html", gin.H{"error": pageUnavailable})
			return
		}
		c.HTML(http.StatusOK, tmpl, gin.H{"page": page})
	}
}

// scrollEvent is what the page posts for every throttled scroll.
type scrollEvent struct {
	Offset  float64 `form:"offset"`
	Active  string  `form:"active"`
	Regions string  `form:"regions"`
}

func (e scrollEvent) snapshot() (*nav.Snapshot, error) {
	snap := &nav.Snapshot{Offset: e.Offset, Regions: map[nav.SectionID]nav.Region{}}
	if e.Regions == "" {
		return snap, nil
	}
	if err := json.Unmarshal([]byte(e.Regions), &snap.Regions); err != nil {
		return nil, fmt.Errorf("decoding section regions: %w", err)
	}
	return snap, nil
}

func (s *server) navActive(c *gin.Context) {
	var ev scrollEvent
	if err := c.ShouldBind(&ev); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	snap, err := ev.snapshot()
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	tracker := nav.NewTracker(snap,
		nav.WithActive(nav.SectionID(ev.Active)),
		nav.WithListener(func(id nav.SectionID) {
			s.log.Debug("Active section changed", zap.String("from", ev.Active), zap.String("to", string(id)))
		}),
	)
	active, _ := tracker.OnScroll()
	c.HTML(http.StatusOK, "nav.html", gin.H{"nav": newNavView(active)})
}

func (s *server) navScroll(c *gin.Context) {
	var ev scrollEvent
	if err := c.ShouldBind(&ev); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	snap, err := ev.snapshot()
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	tracker := nav.NewTracker(snap)
	tracker.ScrollToSection(nav.SectionID(c.Param("id")))
	if snap.Target == "" {
		c.Status(http.StatusNoContent)
		return
	}

	trigger, _ := json.Marshal(map[string]string{"scroll-to-section": string(snap.Target)})
	c.Header("HX-Trigger", string(trigger))
	c.Status(http.StatusOK)
}

func (s *server) contactForm(c *gin.Context) {
	ctrl := s.controller(c)
	ctrl.Open()
	c.HTML(http.StatusOK, "contact.html", gin.H{
		"title":   "Contact Me",
		"contact": newContactView(ctrl),
	})
}

// contactField applies one keystroke and re-renders the submit button.
func (s *server) contactField(c *gin.Context) {
	field, err := contact.ParseField(c.PostForm("field"))
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	ctrl := s.controller(c)
	if err := ctrl.SetField(field, c.PostForm(string(field))); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	c.HTML(http.StatusOK, "contact-submit.html", gin.H{"contact": newContactView(ctrl)})
}

func (s *server) contactSubmit(c *gin.Context) {
	ctrl := s.controller(c)

	// Keystroke updates are debounced, so the submitted form has the last word.
	posted := make(map[contact.Field]string, len(contact.Fields))
	for _, f := range contact.Fields {
		if v, ok := c.GetPostForm(string(f)); ok {
			posted[f] = v
		}
	}

	notice, err := ctrl.SubmitWith(c.Request.Context(), posted)
	switch {
	case errors.Is(err, contact.ErrIncomplete):
		c.HTML(http.StatusUnprocessableEntity, "contact-error.html", gin.H{"error": incompleteMessage})
		return
	case errors.Is(err, contact.ErrSubmitInFlight):
		c.HTML(http.StatusConflict, "contact-error.html", gin.H{"error": inFlightMessage})
		return
	case errors.Is(err, contact.ErrDialogClosed):
		c.HTML(http.StatusConflict, "contact-error.html", gin.H{"error": dialogClosedMessage})
		return
	case err != nil:
		s.log.Error("Unexpected contact submit error", zap.Error(err))
		c.HTML(http.StatusInternalServerError, "contact-error.html", gin.H{"error": pageUnavailable})
		return
	}

	if notice.Kind == contact.NoticeFailure {
		c.HTML(http.StatusOK, "contact-error.html", gin.H{"error": notice.Message})
		return
	}

	c.Header("HX-Trigger", "contact-closed")
	c.HTML(http.StatusOK, "contact-success.html", gin.H{"success": notice.Message})
}

func (s *server) contactCancel(c *gin.Context) {
	s.controller(c).Cancel()
	c.Header("HX-Trigger", "contact-closed")
	c.Status(http.StatusNoContent)
}
