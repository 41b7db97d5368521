package assessment

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/common/models"
	"gopkg.in/yaml.v3"
)

// Band is a half-open numeric interval [Low, High].
type Band struct {
	Low  float64 `yaml:"low" json:"low"`
	High float64 `yaml:"high" json:"high"`
}

// MetricThreshold carries the clinical knowledge for one metric: the fuzzy
// transition band between normal and abnormal, the target band used for
// compliance, physiological plausibility bounds, the unit scale used to
// normalize trend slopes, and the nominal sampling cadence.
type MetricThreshold struct {
	Fuzzy         Band    `yaml:"fuzzy" json:"fuzzy"`
	Target        Band    `yaml:"target" json:"target"`
	Plausible     Band    `yaml:"plausible" json:"plausible"`
	UnitScale     float64 `yaml:"unit_scale" json:"unit_scale"`
	SamplesPerDay float64 `yaml:"samples_per_day" json:"samples_per_day"`
	HigherIsWorse bool    `yaml:"higher_is_worse" json:"higher_is_worse"`
}

// DiseaseSpec names a condition and the metrics its assessor scores.
type DiseaseSpec struct {
	Name    string   `yaml:"name" json:"name"`
	Metrics []string `yaml:"metrics" json:"metrics"`
}

type ThresholdsConfig struct {
	Metrics  map[string]MetricThreshold `yaml:"metrics" json:"metrics"`
	Diseases []DiseaseSpec              `yaml:"diseases" json:"diseases"`
}

// LoadThresholds reads a YAML override file, falling back to the compiled-in
// clinical defaults when no path is configured.
func LoadThresholds(path string) (ThresholdsConfig, error) {
	if path == "" {
		return DefaultThresholds(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultThresholds(), err
	}

	var cfg ThresholdsConfig
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return ThresholdsConfig{}, err
	}

	if err := cfg.Validate(); err != nil {
		return ThresholdsConfig{}, err
	}

	return cfg, nil
}

// Validate rejects threshold tables the engine cannot score with. These are
// the only hard failures in the system and they happen at construction time.
func (c ThresholdsConfig) Validate() error {
	if len(c.Metrics) == 0 {
		return errors.New("no metric thresholds configured")
	}
	for name, mt := range c.Metrics {
		if mt.Fuzzy.Low >= mt.Fuzzy.High {
			return fmt.Errorf("metric %s: fuzzy band low %.2f must be below high %.2f", name, mt.Fuzzy.Low, mt.Fuzzy.High)
		}
		if mt.Plausible.Low >= mt.Plausible.High {
			return fmt.Errorf("metric %s: plausible band low %.2f must be below high %.2f", name, mt.Plausible.Low, mt.Plausible.High)
		}
		if mt.SamplesPerDay <= 0 {
			return fmt.Errorf("metric %s: samples_per_day must be positive", name)
		}
		if mt.UnitScale <= 0 {
			return fmt.Errorf("metric %s: unit_scale must be positive", name)
		}
	}
	for _, disease := range c.Diseases {
		if len(disease.Metrics) == 0 {
			return fmt.Errorf("disease %s: no metrics configured", disease.Name)
		}
		for _, metric := range disease.Metrics {
			if _, ok := c.Metrics[metric]; !ok {
				return fmt.Errorf("disease %s: unknown metric %s", disease.Name, metric)
			}
		}
	}
	return nil
}

// DefaultThresholds returns the compiled-in clinical tables. Glucose and
// lipid values are in mmol/L, blood pressure in mmHg.
func DefaultThresholds() ThresholdsConfig {
	return ThresholdsConfig{
		Metrics: map[string]MetricThreshold{
			models.MetricSystolicBP: {
				Fuzzy:         Band{Low: 120, High: 140},
				Target:        Band{Low: 90, High: 140},
				Plausible:     Band{Low: 60, High: 250},
				UnitScale:     10,
				SamplesPerDay: 1,
				HigherIsWorse: true,
			},
			models.MetricDiastolicBP: {
				Fuzzy:         Band{Low: 80, High: 90},
				Target:        Band{Low: 60, High: 90},
				Plausible:     Band{Low: 40, High: 150},
				UnitScale:     5,
				SamplesPerDay: 1,
				HigherIsWorse: true,
			},
			models.MetricFastingGlucose: {
				Fuzzy:         Band{Low: 6.1, High: 7.0},
				Target:        Band{Low: 3.9, High: 6.1},
				Plausible:     Band{Low: 2, High: 30},
				UnitScale:     1,
				SamplesPerDay: 1,
				HigherIsWorse: true,
			},
			models.MetricPostprandialGlucose: {
				Fuzzy:         Band{Low: 7.8, High: 11.1},
				Target:        Band{Low: 3.9, High: 7.8},
				Plausible:     Band{Low: 2, High: 35},
				UnitScale:     1,
				SamplesPerDay: 1,
				HigherIsWorse: true,
			},
			models.MetricTotalCholesterol: {
				Fuzzy:         Band{Low: 5.2, High: 6.2},
				Target:        Band{Low: 2.8, High: 5.2},
				Plausible:     Band{Low: 1, High: 15},
				UnitScale:     0.5,
				SamplesPerDay: 1.0 / 7,
				HigherIsWorse: true,
			},
			models.MetricLDLCholesterol: {
				Fuzzy:         Band{Low: 3.4, High: 4.1},
				Target:        Band{Low: 0.5, High: 3.4},
				Plausible:     Band{Low: 0.2, High: 10},
				UnitScale:     0.5,
				SamplesPerDay: 1.0 / 7,
				HigherIsWorse: true,
			},
			models.MetricHeartRate: {
				Fuzzy:         Band{Low: 85, High: 100},
				Target:        Band{Low: 60, High: 100},
				Plausible:     Band{Low: 30, High: 220},
				UnitScale:     10,
				SamplesPerDay: 1,
				HigherIsWorse: true,
			},
			models.MetricSleepHours: {
				Fuzzy:         Band{Low: 6, High: 7},
				Target:        Band{Low: 7, High: 8},
				Plausible:     Band{Low: 0, High: 16},
				UnitScale:     1,
				SamplesPerDay: 1,
				HigherIsWorse: false,
			},
			models.MetricSteps: {
				Fuzzy:         Band{Low: 4000, High: 6000},
				Target:        Band{Low: 6000, High: 40000},
				Plausible:     Band{Low: 0, High: 100000},
				UnitScale:     1000,
				SamplesPerDay: 1,
				HigherIsWorse: false,
			},
			models.MetricWeight: {
				Fuzzy:         Band{Low: 24, High: 28}, // interpreted as BMI when height is known; raw kg band otherwise unused
				Target:        Band{Low: 40, High: 100},
				Plausible:     Band{Low: 20, High: 300},
				UnitScale:     1,
				SamplesPerDay: 1.0 / 7,
				HigherIsWorse: true,
			},
		},
		Diseases: []DiseaseSpec{
			{Name: DiseaseHypertension, Metrics: []string{models.MetricSystolicBP, models.MetricDiastolicBP}},
			{Name: DiseaseDiabetes, Metrics: []string{models.MetricFastingGlucose, models.MetricPostprandialGlucose}},
			{Name: DiseaseDyslipidemia, Metrics: []string{models.MetricTotalCholesterol, models.MetricLDLCholesterol}},
		},
	}
}
