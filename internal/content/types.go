package content

import "html/template"

// Document is the shape of the embedded portfolio YAML.
type Document struct {
	Profile    Profile      `yaml:"profile"`
	Experience []Experience `yaml:"experience"`
	Projects   []Project    `yaml:"projects"`
	Skills     []SkillGroup `yaml:"skills"`
	Education  []Education  `yaml:"education"`
	CTFs       []CTF        `yaml:"ctfs"`
}

type Profile struct {
	Name     string `yaml:"name"`
	Handle   string `yaml:"handle"`
	Headline string `yaml:"headline"`
	Tagline  string `yaml:"tagline"`
	Location string `yaml:"location"`
	Email    string `yaml:"email"`
	GitHub   string `yaml:"github"`
	LinkedIn string `yaml:"linkedin"`
	// About is Markdown.
	About string `yaml:"about"`
}

type Experience struct {
	Role       string   `yaml:"role"`
	Org        string   `yaml:"org"`
	Period     string   `yaml:"period"`
	Location   string   `yaml:"location"`
	Highlights []string `yaml:"highlights"`
}

type Project struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Tech        []string `yaml:"tech"`
}

type SkillGroup struct {
	Name  string   `yaml:"name"`
	Items []string `yaml:"items"`
}

// Education covers degrees, certifications and achievements; Kind tells
// them apart.
type Education struct {
	Kind        string `yaml:"kind"`
	Title       string `yaml:"title"`
	Institution string `yaml:"institution"`
	Period      string `yaml:"period"`
	Detail      string `yaml:"detail"`
}

type CTF struct {
	Platform string `yaml:"platform"`
	Category string `yaml:"category"`
	Summary  string `yaml:"summary"`
}

// Page is everything the index template renders.
type Page struct {
	Profile    Profile
	AboutHTML  template.HTML
	Experience []Experience
	Projects   []Project
	Skills     []SkillGroup
	Education  []Education
	CTFs       []CTF
}

// EducationOf filters education entries by kind.
func (p *Page) EducationOf(kind string) []Education {
	var out []Education
	for _, e := range p.Education {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
