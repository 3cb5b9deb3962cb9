package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/tgaquery/internal/graph"
)

func init() {
	// Report validation errors under the YAML key names users write.
	validation.ErrorTag = "yaml"
}

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Report  ReportConfig      `yaml:"report"`
	SPARQL  SPARQLConfig      `yaml:"sparql"`
	Metrics MetricsConfig     `yaml:"metrics"`
	Watch   WatchConfig       `yaml:"watch"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Report.Validate(); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	if err := c.SPARQL.Validate(); err != nil {
		return fmt.Errorf("sparql: %w", err)
	}
	if err := c.Watch.Validate(); err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
}

// ReportConfig names the ontology document and the report destination.
type ReportConfig struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
	// Format forces the input syntax; empty means detect from the extension.
	Format string `yaml:"format"`
}

// Validate validates the report configuration.
func (c *ReportConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Input, validation.Required),
		validation.Field(&c.Output, validation.Required),
		validation.Field(&c.Format, validation.In(syntaxChoices()...)),
	)
}

func syntaxChoices() []interface{} {
	out := make([]interface{}, len(graph.Syntaxes))
	for i, s := range graph.Syntaxes {
		out[i] = s
	}
	return out
}

// SPARQLConfig locates the external SPARQL engine.
type SPARQLConfig struct {
	QueryURL string        `yaml:"query_url"`
	DataURL  string        `yaml:"data_url"`
	Timeout  time.Duration `yaml:"timeout"`
	Username string        `yaml:"username"`
	Password string        `yaml:"password"`
	// Publish replaces the engine's default graph with the loaded document before querying.
	Publish bool `yaml:"publish"`
}

// Validate validates the SPARQL configuration.
func (c *SPARQLConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.QueryURL, validation.Required, is.RequestURL),
		validation.Field(&c.DataURL, validation.When(c.Publish, validation.Required), is.RequestURL),
		validation.Field(&c.Timeout, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.Password, validation.When(c.Username != "", validation.Required)),
	)
}

// MetricsConfig holds the optional Prometheus textfile destination.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// WatchConfig controls re-running the report when the input changes.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"`
}

// Validate validates the watch configuration.
func (c *WatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Debounce, validation.When(c.Enabled, validation.Required, validation.Min(10*time.Millisecond))),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
		},
		Report: ReportConfig{
			Input:  "TGAOntology.rdf",
			Output: "query_results.txt",
		},
		SPARQL: SPARQLConfig{
			QueryURL: "http://localhost:3030/tga/query",
			DataURL:  "http://localhost:3030/tga/data",
			Timeout:  30 * time.Second,
			Publish:  true,
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
	}
}
