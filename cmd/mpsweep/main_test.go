package main

import (
	"flag"
	"path/filepath"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/mpsweep/mpsweep/pkg/config"
)

func TestMergeAliases(t *testing.T) {
	configured := map[string][]string{
		"@": {"src"},
	}
	merged := mergeAliases(configured, []string{
		"@utils=src/utils",
		"@utils=src/shared/utils",
		"malformed",
		"=src",
	})

	if got := merged["@"]; len(got) != 1 || got[0] != "src" {
		t.Errorf("merged[@] = %v", got)
	}
	if got := merged["@utils"]; len(got) != 2 || got[0] != "src/utils" || got[1] != "src/shared/utils" {
		t.Errorf("merged[@utils] = %v; repeated flags must append in order", got)
	}
	if _, ok := merged["malformed"]; ok {
		t.Error("malformed flag leaked into merge")
	}
	if _, ok := merged[""]; ok {
		t.Error("empty prefix leaked into merge")
	}

	// Flags never mutate the configured map.
	if len(configured["@"]) != 1 {
		t.Error("configured aliases mutated")
	}
}

func TestMergeAliasesEmpty(t *testing.T) {
	if got := mergeAliases(nil, nil); got != nil {
		t.Errorf("mergeAliases(nil, nil) = %v, want nil", got)
	}
}

func TestMergeAliasesFlagOnly(t *testing.T) {
	merged := mergeAliases(nil, []string{"@=" + filepath.Join("src", "mp")})
	if got := merged["@"]; len(got) != 1 {
		t.Errorf("merged[@] = %v", got)
	}
}

func TestGetFormat(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Output.Format = "toon"

	set := flag.NewFlagSet("test", 0)
	set.String("format", "", "")
	c := cli.NewContext(cli.NewApp(), set, nil)

	if got := getFormat(c, cfg); got != "toon" {
		t.Errorf("getFormat = %q, want config fallback", got)
	}

	if err := set.Set("format", "json"); err != nil {
		t.Fatal(err)
	}
	if got := getFormat(c, cfg); got != "json" {
		t.Errorf("getFormat = %q, want flag to win", got)
	}
}
