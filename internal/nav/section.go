package nav

// SectionID names a vertically stacked region of the page.
type SectionID string

const (
	Hero       SectionID = "hero"
	About      SectionID = "about"
	Experience SectionID = "experience"
	Projects   SectionID = "projects"
	Skills     SectionID = "skills"
	Education  SectionID = "education"
	CTFs       SectionID = "ctfs"
)

// Sections is the page's section order, top to bottom.
var Sections = []SectionID{Hero, About, Experience, Projects, Skills, Education, CTFs}

// Label is the text shown for the section in the navigation bar.
func (id SectionID) Label() string {
	switch id {
	case Hero:
		return "Home"
	case About:
		return "About"
	case Experience:
		return "Experience"
	case Projects:
		return "Projects"
	case Skills:
		return "Skills"
	case Education:
		return "Education"
	case CTFs:
		return "CTFs"
	}
	return string(id)
}

// Region is the vertical extent of a rendered section, in document pixels.
type Region struct {
	Start  float64 `json:"start"`
	Height float64 `json:"height"`
}

// Contains reports whether y falls in [Start, Start+Height).
func (r Region) Contains(y float64) bool {
	return r.Start <= y && y < r.Start+r.Height
}

// Viewport is the document the tracker observes. It owns layout; the tracker
// only reads it.
type Viewport interface {
	ScrollOffset() float64
	// Region returns false when no element with that id is rendered.
	Region(id SectionID) (Region, bool)
	ScrollIntoView(id SectionID)
}

// Snapshot is a Viewport captured from a single browser event.
type Snapshot struct {
	Offset  float64              `json:"offset"`
	Regions map[SectionID]Region `json:"regions"`

	// Target is set by ScrollIntoView.
	Target SectionID `json:"-"`
}

func (s *Snapshot) ScrollOffset() float64 { return s.Offset }

func (s *Snapshot) Region(id SectionID) (Region, bool) {
	r, ok := s.Regions[id]
	return r, ok
}

func (s *Snapshot) ScrollIntoView(id SectionID) { s.Target = id }
