package properties

import (
	"testing"
)

func TestComposeLayeringOrder(t *testing.T) {
	cfg := map[string]interface{}{
		"origen":      "portal",
		"prioridad":   "baja",
		"descuento":   float64(0),
		"financiable": true,
		"default": map[string]interface{}{
			"prioridad": "media",
			"region":    "nacional",
		},
		"_overrides": map[string]interface{}{
			"Acme Norte": map[string]interface{}{
				"region": "norte",
			},
		},
		"KTM": map[string]interface{}{
			"prioridad": "alta",
			"_overrides": map[string]interface{}{
				"Acme Norte": map[string]interface{}{
					"descuento": float64(5),
				},
			},
		},
	}

	composer := NewComposer(StrategyFirst)
	got := composer.Compose(cfg, "KTM", "Acme Norte")

	want := map[string]string{
		"origen":      "portal",
		"prioridad":   "alta",   // brand block beats default block
		"region":      "norte",  // dealer override beats default block
		"descuento":   "5",      // brand dealer override beats top-level scalar
		"financiable": "true",
	}
	for key, value := range want {
		if got[key] != value {
			t.Errorf("%s = %q, want %q", key, got[key], value)
		}
	}
	if len(got) != len(want) {
		t.Fatalf("composed %d keys, want %d: %v", len(got), len(want), got)
	}
}

func TestComposeBrandBlockMatchesNormalized(t *testing.T) {
	cfg := map[string]interface{}{
		"KTM": map[string]interface{}{"linea": "naked"},
	}
	composer := NewComposer(StrategyFirst)

	got := composer.Compose(cfg, "ktm", "")
	if got["linea"] != "naked" {
		t.Fatalf("linea = %q, want brand block applied via normalized match", got["linea"])
	}
}

func TestComposeEmptyConfig(t *testing.T) {
	composer := NewComposer(StrategyRandom)
	if got := composer.Compose(nil, "KTM", "Acme Norte"); len(got) != 0 {
		t.Fatalf("compose(nil) = %v, want empty", got)
	}
}

func TestSelectValueFirstStrategy(t *testing.T) {
	composer := NewComposer(StrategyFirst)
	got := composer.Compose(map[string]interface{}{"vendedor": "Ana, Luis , Marta"}, "", "")
	if got["vendedor"] != "Ana" {
		t.Fatalf("vendedor = %q, want first candidate", got["vendedor"])
	}
}

func TestSelectValueRoundRobinCycles(t *testing.T) {
	composer := NewComposer(StrategyRoundRobin)
	cfg := map[string]interface{}{"vendedor": "Ana,Luis,Marta"}

	var got []string
	for i := 0; i < 4; i++ {
		got = append(got, composer.Compose(cfg, "", "")["vendedor"])
	}
	want := []string{"Ana", "Luis", "Marta", "Ana"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("round-robin pick %d = %q, want %q (all picks: %v)", i, got[i], want[i], got)
		}
	}
}

func TestSelectValueRandomStaysInList(t *testing.T) {
	composer := NewComposer(StrategyRandom)
	cfg := map[string]interface{}{"vendedor": "Ana,Luis"}

	allowed := map[string]bool{"Ana": true, "Luis": true}
	for i := 0; i < 20; i++ {
		pick := composer.Compose(cfg, "", "")["vendedor"]
		if !allowed[pick] {
			t.Fatalf("random pick %q not in candidate list", pick)
		}
	}
}

func TestNewComposerUnknownStrategyFallsBackToRandom(t *testing.T) {
	composer := NewComposer("bogus")
	if composer.strategy != StrategyRandom {
		t.Fatalf("strategy = %q, want %q", composer.strategy, StrategyRandom)
	}
}
