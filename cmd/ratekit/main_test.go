package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/meenmo/ratekit/cmd/ratekit/internal/curves"
	"github.com/meenmo/ratekit/cmd/ratekit/internal/irs"
	"github.com/meenmo/ratekit/cmd/ratekit/internal/options"
)

const marketJSON = `
  "valuation_date": "2024-03-15",
  "log": {"level": "debug", "format": "json"},
  "quotes": {
    "SOFR-DEP-3M": 0.0531,
    "SOFR-OIS-1Y": 0.0502,
    "SOFR-OIS-2Y": 0.0461,
    "SOFR-OIS-5Y": 0.0412,
    "SOFR-OIS-10Y": 0.0398
  },
  "groups": [{
    "name": "USD-OIS",
    "discount": {"USD": "USD-SOFR"},
    "forward": {"USD-SOFR": "USD-SOFR"},
    "curves": [{
      "name": "USD-SOFR",
      "value_type": "ZeroRate",
      "interpolator": "NaturalCubicSpline",
      "nodes": [
        {"kind": "TERM_DEPOSIT", "quote_id": "SOFR-DEP-3M", "tenor": "3M", "currency": "USD", "day_count": "ACT/360", "calendar": "USD", "spot_lag": 2},
        {"kind": "FIXED_OVERNIGHT_SWAP", "quote_id": "SOFR-OIS-1Y", "tenor": "1Y", "convention": "USD-FIXED-1Y-SOFR-OIS"},
        {"kind": "FIXED_OVERNIGHT_SWAP", "quote_id": "SOFR-OIS-2Y", "tenor": "2Y", "convention": "USD-FIXED-1Y-SOFR-OIS"},
        {"kind": "FIXED_OVERNIGHT_SWAP", "quote_id": "SOFR-OIS-5Y", "tenor": "5Y", "convention": "USD-FIXED-1Y-SOFR-OIS"},
        {"kind": "FIXED_OVERNIGHT_SWAP", "quote_id": "SOFR-OIS-10Y", "tenor": "10Y", "convention": "USD-FIXED-1Y-SOFR-OIS"}
      ]
    }]
  }]`

const swapJSON = `,
  "swap": {
    "convention": "USD-FIXED-1Y-SOFR-OIS",
    "direction": "PAY",
    "notional": 10000000,
    "fixed_rate": 0.042,
    "forward": "1Y",
    "tenor": "5Y"
  }`

const swaptionJSON = `,
  "swaption": {
    "position": "LONG",
    "expiry": "2025-03-17T11:00:00Z",
    "surface": {
      "name": "USD-SWPT-BLACK",
      "model": "BLACK",
      "expiries": [0.5, 1, 2, 5],
      "tenors": [1, 2, 5, 10],
      "vols": [[0.30, 0.28, 0.26, 0.24], [0.28, 0.26, 0.24, 0.22], [0.26, 0.24, 0.22, 0.21], [0.24, 0.22, 0.21, 0.20]]
    }
  }`

func execute(t *testing.T, args []string, doc string) (int, []byte, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(doc), &stdout, &stderr)
	return code, stdout.Bytes(), stderr.String()
}

func TestRun_Usage(t *testing.T) {
	t.Parallel()

	if code, _, _ := execute(t, nil, ""); code != 2 {
		t.Fatalf("no-arg exit code mismatch: got %d want 2", code)
	}
	if code, _, stderr := execute(t, []string{"bond"}, ""); code != 2 || !strings.Contains(stderr, "unknown command") {
		t.Fatalf("unknown command: code %d stderr %q", code, stderr)
	}
	var stdout bytes.Buffer
	if code := run([]string{"help"}, strings.NewReader(""), &stdout, &bytes.Buffer{}); code != 0 || !strings.Contains(stdout.String(), "calibrate") {
		t.Fatalf("help: code %d output %q", code, stdout.String())
	}
}

func TestRun_Calibrate(t *testing.T) {
	t.Parallel()

	code, out, stderr := execute(t, []string{"calibrate"}, "{"+marketJSON+"}")
	var res curves.CalibrationOutput
	if err := json.Unmarshal(out, &res); err != nil {
		t.Fatalf("output is not JSON: %v: %s", err, out)
	}
	if code != 0 || res.Error != "" {
		t.Fatalf("calibrate failed: code %d error %q", code, res.Error)
	}
	if len(res.Groups) != 1 || len(res.Groups[0].Curves) != 1 {
		t.Fatalf("unexpected groups: %+v", res.Groups)
	}
	g := res.Groups[0]
	if g.ResidualNorm >= 1e-9 || len(g.Curves[0].Nodes) != 5 {
		t.Fatalf("unexpected group output: %+v", g)
	}
	if g.Curves[0].Nodes[1].Label != "SOFR-OIS-1Y" {
		t.Fatalf("node label mismatch: got %q", g.Curves[0].Nodes[1].Label)
	}
	if !strings.Contains(stderr, `"run_id"`) || !strings.Contains(stderr, "calibration converged") {
		t.Fatalf("expected structured logs with a run id, got %q", stderr)
	}
}

func TestRun_Swap(t *testing.T) {
	t.Parallel()

	code, out, _ := execute(t, []string{"swap"}, "{"+marketJSON+swapJSON+"}")
	var res irs.PricingOutput
	if err := json.Unmarshal(out, &res); err != nil {
		t.Fatalf("output is not JSON: %v: %s", err, out)
	}
	if code != 0 || res.Error != "" {
		t.Fatalf("swap failed: code %d error %q", code, res.Error)
	}
	if res.ParRate < 0.03 || res.ParRate > 0.06 {
		t.Fatalf("par rate out of range: %.6f", res.ParRate)
	}
	if len(res.Legs) != 2 || len(res.Buckets) == 0 {
		t.Fatalf("unexpected legs/buckets: %d/%d", len(res.Legs), len(res.Buckets))
	}
	// Paying fixed gains when rates rise.
	if !res.PV01.IsPositive() {
		t.Fatalf("payer PV01 should be positive, got %s", res.PV01)
	}
	if res.EffectiveDate != "2025-03-19" || res.MaturityDate != "2030-03-19" {
		t.Fatalf("dates mismatch: %s..%s", res.EffectiveDate, res.MaturityDate)
	}
}

func TestRun_Swaption(t *testing.T) {
	t.Parallel()

	code, out, _ := execute(t, []string{"swaption"}, "{"+marketJSON+swapJSON+swaptionJSON+"}")
	var res options.PricingOutput
	if err := json.Unmarshal(out, &res); err != nil {
		t.Fatalf("output is not JSON: %v: %s", err, out)
	}
	if code != 0 || res.Error != "" {
		t.Fatalf("swaption failed: code %d error %q", code, res.Error)
	}
	if !res.PV.IsPositive() || res.Vega <= 0 || res.Gamma <= 0 {
		t.Fatalf("long option values should be positive: pv %s vega %.4f gamma %.4f", res.PV, res.Vega, res.Gamma)
	}
	if res.ImpliedVolatility == nil || *res.ImpliedVolatility <= 0.2 || *res.ImpliedVolatility >= 0.3 {
		t.Fatalf("implied volatility out of range: %v", res.ImpliedVolatility)
	}
	if len(res.VegaGrid) == 0 || len(res.Buckets) == 0 {
		t.Fatalf("missing risk output")
	}
}

func TestRun_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		doc  string
		want string
	}{
		{"bad json", []string{"calibrate"}, "{", "failed to read input"},
		{"no valuation date", []string{"calibrate"}, `{"quotes": {"A": 0.01}}`, "valuation_date"},
		{"missing swap", []string{"swap"}, "{" + marketJSON + "}", "swap is required"},
		{"missing quote", []string{"calibrate"}, strings.Replace("{"+marketJSON+"}", `"SOFR-OIS-5Y": 0.0412,`, "", 1), "missing quote"},
	}
	for _, tt := range tests {
		code, out, _ := execute(t, tt.args, tt.doc)
		var res struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(out, &res); err != nil {
			t.Fatalf("%s: output is not JSON: %v: %s", tt.name, err, out)
		}
		if code != 1 || !strings.Contains(res.Error, tt.want) {
			t.Fatalf("%s: code %d error %q, want %q", tt.name, code, res.Error, tt.want)
		}
	}
}
