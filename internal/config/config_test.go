package config

import "testing"

func TestDefaultTunablesMatchesConstants(t *testing.T) {
	d := DefaultTunables()
	if d.RecursionLimit != DefaultRecursionLimit {
		t.Errorf("RecursionLimit = %d, want %d", d.RecursionLimit, DefaultRecursionLimit)
	}
	if !d.SingletonTypes {
		t.Errorf("expected SingletonTypes to default to true")
	}
}

func TestParseTunablesKeepsDefaultsForOmittedFields(t *testing.T) {
	cfg, err := ParseTunables([]byte("pack_loop_limit: 5\n"), "test.yaml")
	if err != nil {
		t.Fatalf("ParseTunables returned an error: %v", err)
	}
	if cfg.PackLoopLimit != 5 {
		t.Errorf("PackLoopLimit = %d, want 5", cfg.PackLoopLimit)
	}
	if !cfg.ExtendedTypeMismatchError {
		t.Errorf("expected an omitted bool field to keep its default (true)")
	}
	if cfg.RecursionLimit != DefaultRecursionLimit {
		t.Errorf("expected an omitted int field to keep its default")
	}
}

func TestParseTunablesOverridesExplicitFalse(t *testing.T) {
	cfg, err := ParseTunables([]byte("union_heuristic: false\n"), "test.yaml")
	if err != nil {
		t.Fatalf("ParseTunables returned an error: %v", err)
	}
	if cfg.UnionHeuristic {
		t.Errorf("expected an explicit false to override the default true")
	}
}

func TestParseTunablesRejectsMalformedYAML(t *testing.T) {
	_, err := ParseTunables([]byte("not: [valid"), "test.yaml")
	if err == nil {
		t.Errorf("expected malformed YAML to produce an error")
	}
}

func TestLoadTunablesMissingFileReturnsError(t *testing.T) {
	_, err := LoadTunables("/nonexistent/path/tunables.yaml")
	if err == nil {
		t.Errorf("expected a missing file to produce an error")
	}
}
