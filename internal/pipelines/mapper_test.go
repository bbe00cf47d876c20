package pipelines

import (
	"testing"

	"dealerbridge_backend/internal/configstore"
)

func TestMapKeepsInputDefaultsWithoutMapping(t *testing.T) {
	res := Map(configstore.TenantRecord{}, "", "", "", "")
	if res.Pipeline != DefaultPipeline {
		t.Fatalf("pipeline = %q, want %q", res.Pipeline, DefaultPipeline)
	}
	if res.Stage != DefaultStage {
		t.Fatalf("stage = %q, want %q", res.Stage, DefaultStage)
	}
	if res.Source != SourceInputDefault {
		t.Fatalf("source = %q, want %q", res.Source, SourceInputDefault)
	}
}

func TestMapNeverReturnsEmptyPipelineOrStage(t *testing.T) {
	tenant := configstore.TenantRecord{
		Brands: []string{"KTM", "Yamaha"},
		PipelineMapping: map[string]configstore.StageTarget{
			"KTM": {Pipeline: "ktm_ventas"},
		},
	}

	inputs := []struct{ brand, pipeline, stage, dealer string }{
		{"", "", "", ""},
		{"Ducati", "", "", "Unknown Dealer"},
		{"KTM", "", "", "Acme Norte"},
		{"", "custom", "qualified", "Yamaha Centro"},
	}

	for _, in := range inputs {
		res := Map(tenant, in.brand, in.pipeline, in.stage, in.dealer)
		if res.Pipeline == "" || res.Stage == "" {
			t.Fatalf("Map(%+v) returned empty pipeline/stage: %+v", in, res)
		}
	}
}

func TestMapBrandMappingWins(t *testing.T) {
	tenant := configstore.TenantRecord{
		Brands: []string{"Yamaha", "Honda"},
		PipelineMapping: map[string]configstore.StageTarget{
			"Yamaha":  {Pipeline: "yamaha_ventas", Stage: "cita_agendada"},
			"default": {Pipeline: "general", Stage: "nuevo"},
		},
	}

	res := Map(tenant, "Yamaha", "", "", "Colón Centro")
	if res.Pipeline != "yamaha_ventas" || res.Stage != "cita_agendada" {
		t.Fatalf("got %s/%s, want yamaha_ventas/cita_agendada", res.Pipeline, res.Stage)
	}
	if res.Source != SourceBrandMapping {
		t.Fatalf("source = %q, want %q", res.Source, SourceBrandMapping)
	}
}

func TestMapNormalizedBrandKey(t *testing.T) {
	tenant := configstore.TenantRecord{
		Brands: []string{"Yamaha", "Honda"},
		PipelineMapping: map[string]configstore.StageTarget{
			"YAMAHA": {Pipeline: "yamaha_ventas", Stage: "cita_agendada"},
		},
	}

	res := Map(tenant, "yamaha", "", "", "")
	if res.Source != SourceNormalizedBrandMapping {
		t.Fatalf("source = %q, want %q", res.Source, SourceNormalizedBrandMapping)
	}
	if res.Pipeline != "yamaha_ventas" {
		t.Fatalf("pipeline = %q", res.Pipeline)
	}
}

func TestMapNormalizedBrandKeyTieBreakIsDeterministic(t *testing.T) {
	// Both keys normalize to "yamaha"; the lexicographically smaller one
	// must win no matter how map iteration happens to order them.
	tenant := configstore.TenantRecord{
		Brands: []string{"Yamaha", "Honda"},
		PipelineMapping: map[string]configstore.StageTarget{
			"YAMAHA": {Pipeline: "upper_ventas", Stage: "cita_agendada"},
			"Yamaha": {Pipeline: "mixed_ventas", Stage: "cita_agendada"},
		},
	}

	for i := 0; i < 20; i++ {
		res := Map(tenant, "yamaha", "", "", "")
		if res.Source != SourceNormalizedBrandMapping {
			t.Fatalf("source = %q, want %q", res.Source, SourceNormalizedBrandMapping)
		}
		if res.Pipeline != "upper_ventas" {
			t.Fatalf("pipeline = %q, want the sorted-first key's target", res.Pipeline)
		}
	}
}

func TestMapFallsBackToDefaultMapping(t *testing.T) {
	tenant := configstore.TenantRecord{
		Brands: []string{"Yamaha", "Honda"},
		PipelineMapping: map[string]configstore.StageTarget{
			"default": {Pipeline: "general", Stage: "nuevo"},
		},
	}

	res := Map(tenant, "Ducati", "", "", "")
	if res.Source != SourceDefaultMapping {
		t.Fatalf("source = %q, want %q", res.Source, SourceDefaultMapping)
	}
	if res.Pipeline != "general" || res.Stage != "nuevo" {
		t.Fatalf("got %s/%s, want general/nuevo", res.Pipeline, res.Stage)
	}
}

func TestMapInfersSingleBrand(t *testing.T) {
	tenant := configstore.TenantRecord{
		Brands: []string{"KTM"},
		PipelineMapping: map[string]configstore.StageTarget{
			"KTM": {Pipeline: "ktm_ventas", Stage: "cita_agendada"},
		},
	}

	res := Map(tenant, "", "", "", "Acme Norte")
	if res.Brand != "KTM" {
		t.Fatalf("brand = %q, want KTM", res.Brand)
	}
	if res.Pipeline != "ktm_ventas" {
		t.Fatalf("pipeline = %q", res.Pipeline)
	}

	found := false
	for _, line := range res.Trace {
		if line == "Brand inferred (single option): KTM" {
			found = true
		}
	}
	if !found {
		t.Fatalf("trace %v missing single-option inference entry", res.Trace)
	}
}

func TestMapInfersBrandFromDealerName(t *testing.T) {
	tenant := configstore.TenantRecord{
		Brands: []string{"Yamaha", "Honda"},
	}

	res := Map(tenant, "", "", "", "Honda Motors Vallarta")
	if res.Brand != "Honda" {
		t.Fatalf("brand = %q, want Honda", res.Brand)
	}
}

func TestMapPartialTargetKeepsDefaults(t *testing.T) {
	tenant := configstore.TenantRecord{
		Brands: []string{"KTM"},
		PipelineMapping: map[string]configstore.StageTarget{
			"KTM": {Pipeline: "ktm_ventas"}, // no stage configured
		},
	}

	res := Map(tenant, "KTM", "", "", "")
	if res.Pipeline != "ktm_ventas" {
		t.Fatalf("pipeline = %q", res.Pipeline)
	}
	if res.Stage != DefaultStage {
		t.Fatalf("stage = %q, want default %q", res.Stage, DefaultStage)
	}
}
