package assessment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gq18262121731-source/Health-Management-System-sub001/pkg/common/models"
)

func TestDefaultThresholdsValidate(t *testing.T) {
	if err := DefaultThresholds().Validate(); err != nil {
		t.Fatalf("compiled-in defaults must validate: %v", err)
	}
}

func TestValidateRejectsBadTables(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*ThresholdsConfig)
	}{
		{"empty metrics", func(c *ThresholdsConfig) { c.Metrics = nil }},
		{"inverted fuzzy band", func(c *ThresholdsConfig) {
			mt := c.Metrics[models.MetricSystolicBP]
			mt.Fuzzy = Band{Low: 140, High: 120}
			c.Metrics[models.MetricSystolicBP] = mt
		}},
		{"inverted plausible band", func(c *ThresholdsConfig) {
			mt := c.Metrics[models.MetricSystolicBP]
			mt.Plausible = Band{Low: 250, High: 60}
			c.Metrics[models.MetricSystolicBP] = mt
		}},
		{"zero cadence", func(c *ThresholdsConfig) {
			mt := c.Metrics[models.MetricSystolicBP]
			mt.SamplesPerDay = 0
			c.Metrics[models.MetricSystolicBP] = mt
		}},
		{"zero unit scale", func(c *ThresholdsConfig) {
			mt := c.Metrics[models.MetricSystolicBP]
			mt.UnitScale = 0
			c.Metrics[models.MetricSystolicBP] = mt
		}},
		{"disease without metrics", func(c *ThresholdsConfig) {
			c.Diseases = append(c.Diseases, DiseaseSpec{Name: "anemia"})
		}},
		{"disease with unknown metric", func(c *ThresholdsConfig) {
			c.Diseases = append(c.Diseases, DiseaseSpec{Name: "anemia", Metrics: []string{"hemoglobin"}})
		}},
	}

	for _, tc := range cases {
		cfg := DefaultThresholds()
		tc.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestLoadThresholdsEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := LoadThresholds("")
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Diseases) != 3 {
		t.Fatalf("diseases = %d, want 3", len(cfg.Diseases))
	}
}

func TestLoadThresholdsMissingFileFallsBack(t *testing.T) {
	cfg, err := LoadThresholds("/nonexistent/thresholds.yaml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if len(cfg.Metrics) == 0 {
		t.Fatal("expected defaults alongside the error")
	}
}

func TestLoadThresholdsFromYAML(t *testing.T) {
	content := `
metrics:
  systolic_bp:
    fuzzy: {low: 115, high: 135}
    target: {low: 90, high: 135}
    plausible: {low: 60, high: 250}
    unit_scale: 10
    samples_per_day: 1
    higher_is_worse: true
diseases:
  - name: hypertension
    metrics: [systolic_bp]
`
	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadThresholds(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Metrics[models.MetricSystolicBP].Fuzzy.Low != 115 {
		t.Fatalf("fuzzy low = %v, want override 115", cfg.Metrics[models.MetricSystolicBP].Fuzzy.Low)
	}
}

func TestLoadThresholdsRejectsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	if err := os.WriteFile(path, []byte("metrics:\n  systolic_bp:\n    fuzzy: {low: 140, high: 120}\n    plausible: {low: 60, high: 250}\n    unit_scale: 10\n    samples_per_day: 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadThresholds(path)
	if err == nil {
		t.Fatal("expected validation error for inverted band in file")
	}
	// Unlike an unreadable file, invalid content returns no usable config;
	// callers distinguish the two on exactly this.
	if len(cfg.Metrics) != 0 {
		t.Fatalf("expected empty config alongside a validation error, got %d metrics", len(cfg.Metrics))
	}
}
