package config

import (
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/mdbot/gitwiki/wiki"
	"gopkg.in/yaml.v3"
)

type Settings struct {
	Application Application       `yaml:"application"`
	Server      Server            `yaml:"server"`
	Pages       Pages             `yaml:"pages"`
	Features    Features          `yaml:"features"`
	Aliases     map[string]string `yaml:"aliases"`
	Media       Media             `yaml:"media"`
}

type Application struct {
	Title string `yaml:"title"`
}

type Server struct {
	Listen string `yaml:"listen"`
	// BasePath is prepended to generated links when the wiki is served below a proxy path.
	BasePath    string   `yaml:"basePath"`
	CORSOrigins []string `yaml:"corsOrigins"`
}

type Pages struct {
	Index   string   `yaml:"index"`
	Root    string   `yaml:"root"`
	PerPage int      `yaml:"perPage"`
	Exclude []string `yaml:"exclude"`
}

type Features struct {
	CaseSensitive bool `yaml:"caseSensitive"`
}

type Media struct {
	Dir string `yaml:"dir"`
}

// Default returns the settings used when no config file exists.
func Default() *Settings {
	return &Settings{
		Application: Application{Title: "Wiki"},
		Server:      Server{Listen: ":8080"},
		Pages: Pages{
			Index:   "Home",
			PerPage: 10,
		},
		Media: Media{Dir: "media"},
	}
}

// Load reads settings from a YAML file, filling anything unset from Default. A missing file is not
// an error.
func Load(path string) (*Settings, error) {
	s := Default()
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks settings that would otherwise fail at request time.
func (s *Settings) Validate() error {
	if s.Pages.PerPage < 1 {
		return fmt.Errorf("pages.perPage must be at least 1, got %d", s.Pages.PerPage)
	}
	if s.Pages.Index == "" {
		return fmt.Errorf("pages.index is required")
	}
	for _, pattern := range s.Pages.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("pages.exclude: invalid pattern %q", pattern)
		}
	}
	for from, to := range s.Aliases {
		if to == "" {
			return fmt.Errorf("aliases: %q has no target", from)
		}
	}
	return nil
}

// WikiOptions returns the page layout options for the wiki package.
func (s *Settings) WikiOptions() wiki.Options {
	return wiki.Options{
		IndexPage:   s.Pages.Index,
		ContentRoot: s.Pages.Root,
		PageSize:    s.Pages.PerPage,
		BasePath:    s.Server.BasePath,
		Exclude:     s.Pages.Exclude,
	}
}

// Resolver builds the page name resolver from the configured aliases.
func (s *Settings) Resolver() (*wiki.Resolver, error) {
	r, err := wiki.NewResolver(s.Aliases, s.Features.CaseSensitive)
	if err != nil {
		return nil, fmt.Errorf("aliases: %w", err)
	}
	return r, nil
}
