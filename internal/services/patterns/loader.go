package patterns

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/ternarybob/arbor"
	"gopkg.in/yaml.v3"

	"github.com/ternarybob/intentrank/internal/models"
)

// libraryFile is the on-disk shape of a pattern library
type libraryFile struct {
	Patterns []models.Pattern `json:"patterns" yaml:"patterns" toml:"patterns" validate:"required,min=1,dive"`
}

var libraryValidator = validator.New()

// LoadFile reads a pattern library from JSON, YAML or TOML, chosen by file
// extension, and validates it
func LoadFile(path string) ([]models.Pattern, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pattern file %s: %w", path, err)
	}

	var lib libraryFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &lib)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &lib)
	case ".toml":
		err = toml.Unmarshal(data, &lib)
	default:
		return nil, fmt.Errorf("unsupported pattern file extension %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse pattern file %s: %w", path, err)
	}

	if err := Validate(lib.Patterns); err != nil {
		return nil, fmt.Errorf("invalid pattern file %s: %w", path, err)
	}
	return lib.Patterns, nil
}

// Validate checks struct constraints and pattern ID uniqueness
func Validate(library []models.Pattern) error {
	if err := libraryValidator.Struct(libraryFile{Patterns: library}); err != nil {
		return err
	}
	seen := make(map[string]bool, len(library))
	for _, p := range library {
		if seen[p.ID] {
			return fmt.Errorf("duplicate pattern id %q", p.ID)
		}
		seen[p.ID] = true
	}
	return nil
}

// Load returns the library at path, or the built-in defaults when path is
// empty or the file cannot be used
func Load(path string, logger arbor.ILogger) []models.Pattern {
	if path == "" {
		logger.Debug().Msg("No pattern file configured, using built-in patterns")
		return DefaultPatterns()
	}

	library, err := LoadFile(path)
	if err != nil {
		logger.Warn().
			Str("path", path).
			Err(err).
			Msg("Pattern file unusable, falling back to built-in patterns")
		return DefaultPatterns()
	}

	logger.Info().
		Str("path", path).
		Int("patterns", len(library)).
		Msg("Pattern library loaded")
	return library
}
