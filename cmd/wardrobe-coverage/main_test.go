package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/thinkwright/wardrobe-coverage/internal/analysis"
	"github.com/thinkwright/wardrobe-coverage/internal/cache"
	"github.com/thinkwright/wardrobe-coverage/internal/loader"
	"github.com/thinkwright/wardrobe-coverage/internal/report"
	"github.com/thinkwright/wardrobe-coverage/internal/store"
)

func TestThresholdsFromConfig(t *testing.T) {
	th := thresholdsFromConfig(map[string]any{})
	if th != report.DefaultThresholds() {
		t.Errorf("empty config thresholds = %+v", th)
	}

	th = thresholdsFromConfig(map[string]any{
		"thresholds": map[string]any{"min_coverage": 0.8, "max_missing": 2},
	})
	if th.MinCoverage != 0.8 || th.MaxMissing != 2 {
		t.Errorf("thresholds = %+v", th)
	}
}

func TestApplyCIDefaults(t *testing.T) {
	newCmd := func() (*cobra.Command, *string) {
		var format string
		cmd := &cobra.Command{Use: "check"}
		cmd.Flags().StringVar(&format, "format", "terminal", "")
		return cmd, &format
	}

	cmd, format := newCmd()
	noPager := false
	applyCIDefaults(cmd, format, &noPager, true)
	if *format != "json" || !noPager {
		t.Errorf("ci defaults: format=%q noPager=%v", *format, noPager)
	}

	cmd, format = newCmd()
	if err := cmd.Flags().Set("format", "markdown"); err != nil {
		t.Fatal(err)
	}
	applyCIDefaults(cmd, format, &noPager, true)
	if *format != "markdown" {
		t.Errorf("explicit format overridden: %q", *format)
	}

	cmd, format = newCmd()
	noPager = false
	applyCIDefaults(cmd, format, &noPager, false)
	if *format != "terminal" || noPager {
		t.Error("non-CI run should keep defaults")
	}
}

func TestCheckCIResult(t *testing.T) {
	if err := checkCIResult(report.Verdict{Pass: true, Failures: []string{}}); err != nil {
		t.Errorf("passing verdict returned %v", err)
	}
	err := checkCIResult(report.Verdict{Pass: false, Failures: []string{"weather coverage 25%"}})
	if err == nil || !strings.Contains(err.Error(), "weather coverage 25%") {
		t.Errorf("failing verdict error = %v", err)
	}
}

func TestFormatReportDefaultsToTerminal(t *testing.T) {
	verdict := report.Verdict{Pass: true, Failures: []string{}}
	rep := analysis.ComputeCoverageReport(nil, analysis.OptionUniverses{})
	if out := formatReport(rep, verdict, "unknown"); !strings.Contains(out, "wardrobe-coverage report") {
		t.Error("unknown format should render the terminal report")
	}
	if out := formatReport(rep, verdict, "json"); !strings.HasPrefix(out, "{") {
		t.Error("json format should render JSON")
	}
}

func TestImportCollection(t *testing.T) {
	tests := []struct {
		name       string
		prune      bool
		wantIDs    string
		wantPruned int
	}{
		{"keeps stale garments", false, "[old socks-1 socks-2]", 0},
		{"prunes stale garments", true, "[socks-1 socks-2]", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			src := filepath.Join(dir, "socks.yaml")
			content := "- type: Socks\n  suitableWeather: [cold]\n- type: Socks\n  suitableWeather: [cold]\n"
			if err := os.WriteFile(src, []byte(content), 0644); err != nil {
				t.Fatal(err)
			}
			coll, err := loader.Load(src, zerolog.Nop())
			if err != nil {
				t.Fatal(err)
			}

			s, err := store.Open(filepath.Join(dir, "closet.db"))
			if err != nil {
				t.Fatal(err)
			}
			defer s.Close()
			ctx := context.Background()
			if err := s.SaveGarment(ctx, analysis.Garment{ID: "old", Type: "hat"}); err != nil {
				t.Fatal(err)
			}

			pruned, err := importCollection(ctx, s, coll, analysis.OptionUniverses{Weather: []string{"cold", "hot"}}, tt.prune)
			if err != nil {
				t.Fatal(err)
			}
			if pruned != tt.wantPruned {
				t.Errorf("pruned = %d, want %d", pruned, tt.wantPruned)
			}
			ids, err := s.GarmentIDs(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if got := fmt.Sprint(ids); got != tt.wantIDs {
				t.Errorf("stored ids = %s, want %s", got, tt.wantIDs)
			}
			opts, err := s.OptionUniverses(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if fmt.Sprint(opts.Weather) != "[cold hot]" {
				t.Errorf("stored weather options = %v", opts.Weather)
			}
		})
	}
}

func TestPurgeReports(t *testing.T) {
	c := cache.NewMemoryClient(10)
	defer c.Close()
	ctx := context.Background()

	key, err := cache.ReportKey(nil, analysis.OptionUniverses{})
	if err != nil {
		t.Fatal(err)
	}
	c.Set(ctx, key, []byte("{}"), time.Minute)
	c.Set(ctx, "session", []byte("x"), time.Minute)

	purgeReports(ctx, c, zerolog.Nop())

	if _, err := c.Get(ctx, key); !errors.Is(err, cache.ErrCacheMiss) {
		t.Errorf("cached report survived purge: %v", err)
	}
	if _, err := c.Get(ctx, "session"); err != nil {
		t.Errorf("unrelated key purged: %v", err)
	}
}
