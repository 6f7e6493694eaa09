// Package content serves the portfolio copy from a SQLite catalog seeded with
// the embedded YAML document.
package content

import (
	"bytes"
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"

	_ "modernc.org/sqlite"
)

//go:embed portfolio.yaml
var defaultDocument []byte

const schema = `
CREATE TABLE IF NOT EXISTS profile (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	name TEXT NOT NULL,
	handle TEXT NOT NULL DEFAULT '',
	headline TEXT NOT NULL DEFAULT '',
	tagline TEXT NOT NULL DEFAULT '',
	location TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	github TEXT NOT NULL DEFAULT '',
	linkedin TEXT NOT NULL DEFAULT '',
	about_md TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS experiences (
	position INTEGER PRIMARY KEY,
	role TEXT NOT NULL,
	org TEXT NOT NULL,
	period TEXT NOT NULL DEFAULT '',
	location TEXT NOT NULL DEFAULT '',
	highlights TEXT NOT NULL DEFAULT '[]'
);
CREATE TABLE IF NOT EXISTS projects (
	position INTEGER PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	tech TEXT NOT NULL DEFAULT '[]'
);
CREATE TABLE IF NOT EXISTS skill_groups (
	position INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	items TEXT NOT NULL DEFAULT '[]'
);
CREATE TABLE IF NOT EXISTS education (
	position INTEGER PRIMARY KEY,
	kind TEXT NOT NULL CHECK (kind IN ('degree', 'certification', 'achievement')),
	title TEXT NOT NULL,
	institution TEXT NOT NULL DEFAULT '',
	period TEXT NOT NULL DEFAULT '',
	detail TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS ctfs (
	position INTEGER PRIMARY KEY,
	platform TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT '',
	summary TEXT NOT NULL DEFAULT ''
);`

// Store is the content catalog.
type Store struct {
	db *sql.DB
	md goldmark.Markdown
}

// Open opens the catalog at path, or an in-memory one for "" and ":memory:",
// and applies the schema.
func Open(path string) (*Store, error) {
	dsn := ":memory:"
	if path != "" && path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating content directory: %w", err)
		}
		dsn = path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening content db: %w", err)
	}
	// Every connection to :memory: is its own database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying content schema: %w", err)
	}

	return &Store{
		db: db,
		md: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// ParseDocument decodes a portfolio YAML document.
func ParseDocument(raw []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing portfolio document: %w", err)
	}
	if doc.Profile.Name == "" {
		return nil, fmt.Errorf("parsing portfolio document: profile.name is required")
	}
	return &doc, nil
}

// DefaultDocument returns the portfolio shipped with the binary.
func DefaultDocument() (*Document, error) {
	return ParseDocument(defaultDocument)
}

// Seed loads doc into an empty catalog. It reports false and changes nothing
// when the catalog already holds a profile.
func (s *Store) Seed(ctx context.Context, doc *Document) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var n int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM profile`).Scan(&n); err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	p := doc.Profile
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO profile (id, name, handle, headline, tagline, location, email, github, linkedin, about_md)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.Handle, p.Headline, p.Tagline, p.Location, p.Email, p.GitHub, p.LinkedIn, p.About); err != nil {
		return false, fmt.Errorf("seeding profile: %w", err)
	}

	for i, e := range doc.Experience {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO experiences (position, role, org, period, location, highlights)
			VALUES (?, ?, ?, ?, ?, ?)`,
			i, e.Role, e.Org, e.Period, e.Location, jsonList(e.Highlights)); err != nil {
			return false, fmt.Errorf("seeding experience %q: %w", e.Role, err)
		}
	}
	for i, pr := range doc.Projects {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO projects (position, title, description, tech) VALUES (?, ?, ?, ?)`,
			i, pr.Title, pr.Description, jsonList(pr.Tech)); err != nil {
			return false, fmt.Errorf("seeding project %q: %w", pr.Title, err)
		}
	}
	for i, g := range doc.Skills {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO skill_groups (position, name, items) VALUES (?, ?, ?)`,
			i, g.Name, jsonList(g.Items)); err != nil {
			return false, fmt.Errorf("seeding skill group %q: %w", g.Name, err)
		}
	}
	for i, e := range doc.Education {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO education (position, kind, title, institution, period, detail)
			VALUES (?, ?, ?, ?, ?, ?)`,
			i, e.Kind, e.Title, e.Institution, e.Period, e.Detail); err != nil {
			return false, fmt.Errorf("seeding education %q: %w", e.Title, err)
		}
	}
	for i, c := range doc.CTFs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO ctfs (position, platform, category, summary) VALUES (?, ?, ?, ?)`,
			i, c.Platform, c.Category, c.Summary); err != nil {
			return false, fmt.Errorf("seeding ctf %q: %w", c.Platform, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

// Page reads the whole catalog in display order.
func (s *Store) Page(ctx context.Context) (*Page, error) {
	page := &Page{}

	p := &page.Profile
	err := s.db.QueryRowContext(ctx, `
		SELECT name, handle, headline, tagline, location, email, github, linkedin, about_md
		FROM profile WHERE id = 1`).
		Scan(&p.Name, &p.Handle, &p.Headline, &p.Tagline, &p.Location, &p.Email, &p.GitHub, &p.LinkedIn, &p.About)
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}

	var buf bytes.Buffer
	if err := s.md.Convert([]byte(p.About), &buf); err != nil {
		return nil, fmt.Errorf("rendering about: %w", err)
	}
	page.AboutHTML = template.HTML(buf.String())

	rows, err := s.db.QueryContext(ctx, `
		SELECT role, org, period, location, highlights FROM experiences ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("loading experience: %w", err)
	}
	for rows.Next() {
		var e Experience
		var highlights string
		if err := rows.Scan(&e.Role, &e.Org, &e.Period, &e.Location, &highlights); err != nil {
			rows.Close()
			return nil, err
		}
		e.Highlights = parseList(highlights)
		page.Experience = append(page.Experience, e)
	}
	if err := closeRows(rows); err != nil {
		return nil, fmt.Errorf("loading experience: %w", err)
	}

	rows, err = s.db.QueryContext(ctx, `SELECT title, description, tech FROM projects ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("loading projects: %w", err)
	}
	for rows.Next() {
		var pr Project
		var tech string
		if err := rows.Scan(&pr.Title, &pr.Description, &tech); err != nil {
			rows.Close()
			return nil, err
		}
		pr.Tech = parseList(tech)
		page.Projects = append(page.Projects, pr)
	}
	if err := closeRows(rows); err != nil {
		return nil, fmt.Errorf("loading projects: %w", err)
	}

	rows, err = s.db.QueryContext(ctx, `SELECT name, items FROM skill_groups ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("loading skills: %w", err)
	}
	for rows.Next() {
		var g SkillGroup
		var items string
		if err := rows.Scan(&g.Name, &items); err != nil {
			rows.Close()
			return nil, err
		}
		g.Items = parseList(items)
		page.Skills = append(page.Skills, g)
	}
	if err := closeRows(rows); err != nil {
		return nil, fmt.Errorf("loading skills: %w", err)
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT kind, title, institution, period, detail FROM education ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("loading education: %w", err)
	}
	for rows.Next() {
		var e Education
		if err := rows.Scan(&e.Kind, &e.Title, &e.Institution, &e.Period, &e.Detail); err != nil {
			rows.Close()
			return nil, err
		}
		page.Education = append(page.Education, e)
	}
	if err := closeRows(rows); err != nil {
		return nil, fmt.Errorf("loading education: %w", err)
	}

	rows, err = s.db.QueryContext(ctx, `SELECT platform, category, summary FROM ctfs ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("loading ctfs: %w", err)
	}
	for rows.Next() {
		var c CTF
		if err := rows.Scan(&c.Platform, &c.Category, &c.Summary); err != nil {
			rows.Close()
			return nil, err
		}
		page.CTFs = append(page.CTFs, c)
	}
	if err := closeRows(rows); err != nil {
		return nil, fmt.Errorf("loading ctfs: %w", err)
	}

	return page, nil
}

func closeRows(rows *sql.Rows) error {
	err := rows.Err()
	if cerr := rows.Close(); err == nil {
		err = cerr
	}
	return err
}

func jsonList(items []string) string {
	if items == nil {
		items = []string{}
	}
	b, _ := json.Marshal(items)
	return string(b)
}

func parseList(raw string) []string {
	var out []string
	_ = json.Unmarshal([]byte(raw), &out)
	return out
}
