package rating

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/intentrank/internal/models"
)

// UnknownSignalWeight key in SignalWeights applies to unrecognized types
const UnknownSignalWeight = "unknown"

// Weights holds every tunable table of the quality scorer. Multiplier maps
// are keyed by the lowercase enum value.
type Weights struct {
	Components        models.ComponentWeights
	SignalWeights     map[string]float64
	Urgency           map[string]float64
	Specificity       map[string]float64
	BuyingStage       map[string]float64
	FalsePositiveRisk map[string]float64
	Velocity          map[string]float64
	CompanySize       map[string]float64
	Industry          map[string]float64
}

// weightsFile is the TOML shape of a weight file. Each section is optional
// and overlays the defaults key by key.
type weightsFile struct {
	Scoring           map[string]float64 `toml:"scoring"`
	SignalWeights     map[string]float64 `toml:"signal_weights"`
	Urgency           map[string]float64 `toml:"urgency"`
	Specificity       map[string]float64 `toml:"specificity"`
	BuyingStage       map[string]float64 `toml:"buying_stage"`
	FalsePositiveRisk map[string]float64 `toml:"false_positive_risk"`
	Velocity          map[string]float64 `toml:"velocity"`
	CompanySize       map[string]float64 `toml:"company_size"`
	Industry          map[string]float64 `toml:"industry"`
}

// DefaultWeights returns a fresh copy of the built-in weight tables
func DefaultWeights() Weights {
	return Weights{
		Components: models.ComponentWeights{Signal: 0.4, Pattern: 0.4, Fit: 0.2},
		SignalWeights: map[string]float64{
			string(models.SignalLinkedInEngagement): 0.25,
			string(models.SignalWebsiteVisit):       0.20,
			string(models.SignalContentDownload):    0.15,
			string(models.SignalEmailInteraction):   0.10,
			string(models.SignalJobChange):          0.10,
			string(models.SignalWebinarAttendance):  0.08,
			string(models.SignalFundingRound):       0.05,
			string(models.SignalHiringActivity):     0.04,
			string(models.SignalReviewSiteActivity): 0.03,
			UnknownSignalWeight:                     0.05,
		},
		Urgency:           map[string]float64{"high": 1.3, "medium": 1.0, "low": 0.7},
		Specificity:       map[string]float64{"high": 1.25, "medium": 1.0, "low": 0.8},
		BuyingStage:       map[string]float64{"decision": 1.4, "consideration": 1.15, "awareness": 0.9, "unknown": 0.85},
		FalsePositiveRisk: map[string]float64{"low": 1.2, "medium": 1.0, "high": 0.6},
		Velocity:          map[string]float64{"increasing": 1.2, "stable": 1.0, "decreasing": 0.8},
		CompanySize: map[string]float64{
			"1-10":      0.8,
			"11-50":     0.95,
			"50-200":    1.1,
			"51-200":    1.1,
			"201-500":   1.15,
			"501-1000":  1.1,
			"1001-5000": 1.0,
			"5000+":     0.9,
		},
		Industry: map[string]float64{
			"saas":               1.2,
			"software":           1.15,
			"technology":         1.1,
			"fintech":            1.1,
			"financial services": 1.05,
			"healthcare":         0.95,
			"manufacturing":      0.9,
			"retail":             0.9,
			"education":          0.85,
			"government":         0.8,
			"nonprofit":          0.8,
		},
	}
}

// ParseWeights overlays a TOML document onto the defaults
func ParseWeights(data []byte) (Weights, error) {
	var file weightsFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return Weights{}, fmt.Errorf("failed to parse weights: %w", err)
	}

	w := DefaultWeights()
	for key, v := range file.Scoring {
		switch strings.ToLower(key) {
		case "signal":
			w.Components.Signal = v
		case "pattern":
			w.Components.Pattern = v
		case "fit":
			w.Components.Fit = v
		default:
			return Weights{}, fmt.Errorf("unknown scoring weight %q", key)
		}
	}
	overlay(w.SignalWeights, file.SignalWeights)
	overlay(w.Urgency, file.Urgency)
	overlay(w.Specificity, file.Specificity)
	overlay(w.BuyingStage, file.BuyingStage)
	overlay(w.FalsePositiveRisk, file.FalsePositiveRisk)
	overlay(w.Velocity, file.Velocity)
	overlay(w.CompanySize, file.CompanySize)
	overlay(w.Industry, file.Industry)

	if err := w.Validate(); err != nil {
		return Weights{}, err
	}
	return w, nil
}

func overlay(dst, src map[string]float64) {
	for k, v := range src {
		dst[strings.ToLower(strings.TrimSpace(k))] = v
	}
}

// Validate rejects negative values and an all-zero component split
func (w Weights) Validate() error {
	c := w.Components
	if c.Signal < 0 || c.Pattern < 0 || c.Fit < 0 {
		return fmt.Errorf("component weights must not be negative")
	}
	if c.Signal+c.Pattern+c.Fit <= 0 {
		return fmt.Errorf("component weights must not all be zero")
	}

	tables := map[string]map[string]float64{
		"signal_weights":      w.SignalWeights,
		"urgency":             w.Urgency,
		"specificity":         w.Specificity,
		"buying_stage":        w.BuyingStage,
		"false_positive_risk": w.FalsePositiveRisk,
		"velocity":            w.Velocity,
		"company_size":        w.CompanySize,
		"industry":            w.Industry,
	}
	for name, table := range tables {
		for k, v := range table {
			if v < 0 {
				return fmt.Errorf("%s.%s must not be negative", name, k)
			}
		}
	}
	return nil
}

// LoadWeights reads a weight file, or returns the defaults when path is
// empty or the file cannot be used
func LoadWeights(path string, logger arbor.ILogger) Weights {
	if path == "" {
		return DefaultWeights()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn().Str("path", path).Err(err).Msg("Weight file unreadable, using default weights")
		return DefaultWeights()
	}

	w, err := ParseWeights(data)
	if err != nil {
		logger.Warn().Str("path", path).Err(err).Msg("Weight file invalid, using default weights")
		return DefaultWeights()
	}

	logger.Info().
		Str("path", path).
		Float64("signal", w.Components.Signal).
		Float64("pattern", w.Components.Pattern).
		Float64("fit", w.Components.Fit).
		Msg("Scoring weights loaded")
	return w
}

// normalizedComponents scales the component weights to sum to 1
func (w Weights) normalizedComponents() models.ComponentWeights {
	c := w.Components
	total := c.Signal + c.Pattern + c.Fit
	if total <= 0 {
		return DefaultWeights().Components
	}
	return models.ComponentWeights{
		Signal:  c.Signal / total,
		Pattern: c.Pattern / total,
		Fit:     c.Fit / total,
	}
}

func lookup(table map[string]float64, key string, fallback float64) float64 {
	if v, ok := table[strings.ToLower(strings.TrimSpace(key))]; ok {
		return v
	}
	return fallback
}
