// Package config holds the user-tunable settings for the shell.
package config

import (
	_ "embed"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"sigs.k8s.io/yaml"
)

//go:embed default/config.yaml
var defaultConfigData []byte

// ConfigurationName is the name of the configuration file in the config
// directory.
const ConfigurationName = "config.yaml"

type Configuration struct {
	// Prompt is the PS1 style prompt template. Supports \u, \h, \w and \$.
	Prompt string `json:"prompt"`

	// HistoryLimit caps the number of lines kept for the history builtin.
	// Zero means unlimited.
	HistoryLimit int `json:"history_limit" validate:"gte=0"`

	// StrictSyntax rejects malformed pipelines and dangling redirections
	// instead of silently absorbing them.
	StrictSyntax bool `json:"strict_syntax"`

	// AuditLog is the path of the JSON lines command log. Empty disables
	// audit logging.
	AuditLog string `json:"audit_log"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

// Default returns the embedded default configuration.
func Default() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		// The default config is compiled in, failure is a build error.
		panic(err)
	}
	return &out
}
