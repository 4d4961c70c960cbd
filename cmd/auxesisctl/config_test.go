package main

import (
	"os"
	"path/filepath"
	"testing"

	auxesis "auxesis/pkg/auxesis"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadRunRequest(t *testing.T) {
	path := writeFile(t, "request.json", `{
		"experiment": "xor",
		"max_generations": 120,
		"seed": 42,
		"write_artifacts": true,
		"some_future_field": "ignored"
	}`)

	req, err := loadRunRequest(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if req.Experiment != "xor" || req.MaxGenerations != 120 || req.Seed != 42 || !req.WriteArtifacts {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestLoadRunRequestRejectsMalformedJSON(t *testing.T) {
	path := writeFile(t, "bad.json", `{"experiment": `)
	if _, err := loadRunRequest(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestMergeRunRequestsOverlaysNonZero(t *testing.T) {
	base, err := loadRunRequest(writeFile(t, "base.json", `{"experiment": "xor", "seed": 7, "max_generations": 100}`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	merged := mergeRunRequests(base, auxesis.RunRequest{Seed: 99})
	if merged.Experiment != "xor" {
		t.Fatalf("base experiment lost: %+v", merged)
	}
	if merged.Seed != 99 {
		t.Fatalf("override seed lost: %+v", merged)
	}
	if merged.MaxGenerations != 100 {
		t.Fatalf("zero override must not clobber base: %+v", merged)
	}
}

func TestLoadProfiles(t *testing.T) {
	path := writeFile(t, "profiles.ini", `
[xor-quick]
experiment = xor
generations = 200
seed = 42

[mux-full]
experiment = binary-6-multiplexer
generations = 1000
seed = 1
write_artifacts = false
`)

	profiles, err := loadProfiles(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(profiles))
	}
	if profiles[0].Name != "mux-full" || profiles[1].Name != "xor-quick" {
		t.Fatalf("profiles not sorted: %+v", profiles)
	}
	if profiles[0].WriteArtifacts {
		t.Fatal("write_artifacts = false not honoured")
	}
	if profiles[1].Generations != 200 || profiles[1].Seed != 42 {
		t.Fatalf("unexpected xor-quick: %+v", profiles[1])
	}

	p, err := loadProfile(path, "xor-quick")
	if err != nil || p.Experiment != "xor" {
		t.Fatalf("load single profile: %+v %v", p, err)
	}
	if _, err := loadProfile(path, "missing"); err == nil {
		t.Fatal("missing profile must error")
	}
}

func TestLoadProfilesRequiresExperiment(t *testing.T) {
	path := writeFile(t, "profiles.ini", "[broken]\ngenerations = 5\n")
	if _, err := loadProfiles(path); err == nil {
		t.Fatal("profile without experiment must be rejected")
	}
}
