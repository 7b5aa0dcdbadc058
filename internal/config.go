package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/quire/internal/layout"
)

// Config represents the application configuration.
type Config struct {
	App        ApplicationConfig `yaml:"app"`
	Manuscript DirConfig         `yaml:"manuscript"`
	Book       DirConfig         `yaml:"book"`
	Template   TemplateConfig    `yaml:"template"`
	Render     RenderConfig      `yaml:"render"`
	Manifest   ManifestConfig    `yaml:"manifest"`
	Watch      WatchConfig       `yaml:"watch"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Manuscript.Validate(); err != nil {
		return fmt.Errorf("manuscript: %w", err)
	}
	if err := c.Book.Validate(); err != nil {
		return fmt.Errorf("book: %w", err)
	}
	if err := c.Template.Validate(); err != nil {
		return fmt.Errorf("template: %w", err)
	}
	if err := c.Manifest.Validate(); err != nil {
		return fmt.Errorf("manifest: %w", err)
	}
	return c.Watch.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds preview server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// DirConfig points at a flat directory.
type DirConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the directory configuration.
func (c *DirConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// TemplateConfig controls page wrapping. When Enabled is false pages are
// written as bare rendered HTML.
type TemplateConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	Placeholder string `yaml:"placeholder"`
}

// Validate validates the template configuration.
func (c *TemplateConfig) Validate() error {
	if c.Placeholder == "" {
		c.Placeholder = layout.DefaultPlaceholder
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.When(c.Enabled, validation.Required)),
	)
}

// RenderConfig selects the Markdown renderer mode.
type RenderConfig struct {
	Extended  bool `yaml:"extended"`
	HardWraps bool `yaml:"hard_wraps"`
	Safe      bool `yaml:"safe"`
}

// ManifestConfig controls the SQLite build manifest.
type ManifestConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	Keep    int    `yaml:"keep"`
}

// Validate validates the manifest configuration.
func (c *ManifestConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.When(c.Enabled, validation.Required)),
		validation.Field(&c.Keep, validation.Min(0)),
	)
}

// WatchConfig holds watcher tuning.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Validate validates the watch configuration.
func (c *WatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Debounce, validation.Min(time.Duration(0))),
	)
}

// NewDefaultConfig returns a Config matching the conventional project layout:
// manuscript/en in, book/en out, template/template.html as the shell.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Manuscript: DirConfig{
			Path: "./manuscript/en/",
		},
		Book: DirConfig{
			Path: "./book/en/",
		},
		Template: TemplateConfig{
			Enabled:     true,
			Path:        "./template/template.html",
			Placeholder: layout.DefaultPlaceholder,
		},
		Render: RenderConfig{
			Extended: true,
		},
		Manifest: ManifestConfig{
			Enabled: false,
			Path:    "./quire.db",
			Keep:    20,
		},
		Watch: WatchConfig{
			Debounce: 200 * time.Millisecond,
		},
	}
}
