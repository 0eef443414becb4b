// Package content holds the portfolio copy: profile, experience timeline,
// selected works and skills. The embedded document is the default; a file
// named in config replaces it.
package content

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var embedded []byte

// ErrInvalidContent is returned when a document fails validation.
var ErrInvalidContent = errors.New("invalid portfolio content")

// Link is a labelled URL.
type Link struct {
	Label string `yaml:"label" json:"label"`
	URL   string `yaml:"url" json:"url"`
}

// Profile is the hero and footer data.
type Profile struct {
	Name     string `yaml:"name" json:"name"`
	Title    string `yaml:"title" json:"title"`
	Location string `yaml:"location" json:"location"`
	Email    string `yaml:"email" json:"email"`
	Resume   string `yaml:"resume" json:"resume,omitempty"`
	Socials  []Link `yaml:"socials" json:"socials"`
}

// Metric is a headline figure on an experience entry.
type Metric struct {
	Label string `yaml:"label" json:"label"`
	Value string `yaml:"value" json:"value"`
}

// Experience is one timeline entry.
type Experience struct {
	Company     string   `yaml:"company" json:"company"`
	Role        string   `yaml:"role" json:"role"`
	Period      string   `yaml:"period" json:"period"`
	Location    string   `yaml:"location" json:"location"`
	Description []string `yaml:"description" json:"description"`
	Metrics     []Metric `yaml:"metrics" json:"metrics"`
	Tech        []string `yaml:"tech" json:"tech"`
}

// Project is one selected work.
type Project struct {
	Title       string   `yaml:"title" json:"title"`
	Subtitle    string   `yaml:"subtitle" json:"subtitle,omitempty"`
	Description string   `yaml:"description" json:"description"`
	Tech        []string `yaml:"tech" json:"tech"`
	Link        string   `yaml:"link" json:"link"`
	GitHub      string   `yaml:"github" json:"github,omitempty"`
	Year        string   `yaml:"year" json:"year,omitempty"`
}

// Skill is a technology badge.
type Skill struct {
	Name  string `yaml:"name" json:"name"`
	Color string `yaml:"color" json:"color"`
}

// Portfolio is the whole document.
type Portfolio struct {
	Profile    Profile      `yaml:"profile" json:"profile"`
	Experience []Experience `yaml:"experience" json:"experience"`
	Projects   []Project    `yaml:"projects" json:"projects"`
	Skills     []Skill      `yaml:"skills" json:"skills"`
}

// Default returns the embedded portfolio.
func Default() (*Portfolio, error) {
	return Parse(embedded)
}

// Load reads path, or the embedded document when path is empty.
func Load(path string) (*Portfolio, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML document. Unknown keys are rejected.
func Parse(data []byte) (*Portfolio, error) {
	var p Portfolio
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidContent, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks the fields the site cannot render without.
func (p *Portfolio) Validate() error {
	if strings.TrimSpace(p.Profile.Name) == "" {
		return fmt.Errorf("%w: profile.name is required", ErrInvalidContent)
	}
	for i, e := range p.Experience {
		if e.Company == "" || e.Role == "" {
			return fmt.Errorf("%w: experience[%d] needs company and role", ErrInvalidContent, i)
		}
	}
	for i, pr := range p.Projects {
		if pr.Title == "" {
			return fmt.Errorf("%w: projects[%d].title is required", ErrInvalidContent, i)
		}
	}
	return nil
}
