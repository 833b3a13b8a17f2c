package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"text", FormatText},
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{"markdown", FormatMarkdown},
		{"md", FormatMarkdown},
		{"toon", FormatTOON},
		{"TOON", FormatTOON},
		{"", FormatText},
		{"invalid", FormatText},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseFormat(tt.input); got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatterFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	f, err := NewFormatter(FormatJSON, path, true)
	if err != nil {
		t.Fatalf("NewFormatter() error: %v", err)
	}
	if f.Colored() {
		t.Error("file output must disable color")
	}

	if err := f.Output(map[string]int{"total": 3}); err != nil {
		t.Fatalf("Output failed: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]int
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["total"] != 3 {
		t.Errorf("decoded = %v", decoded)
	}
}

func TestListRendering(t *testing.T) {
	list := &List{
		Title: "Unused Files (2 of 5)",
		Items: []string{"utils/a.js", "utils/b.js"},
		Empty: "No unused files found.",
	}

	var text strings.Builder
	if err := list.RenderText(&text, false); err != nil {
		t.Fatalf("RenderText failed: %v", err)
	}
	for _, want := range []string{"Unused Files (2 of 5)", "utils/a.js", "utils/b.js"} {
		if !strings.Contains(text.String(), want) {
			t.Errorf("text output missing %q:\n%s", want, text.String())
		}
	}

	var md strings.Builder
	if err := list.RenderMarkdown(&md); err != nil {
		t.Fatalf("RenderMarkdown failed: %v", err)
	}
	if !strings.Contains(md.String(), "- `utils/a.js`") {
		t.Errorf("markdown output missing list item:\n%s", md.String())
	}

	empty := &List{Empty: "No unused files found."}
	var out strings.Builder
	if err := empty.RenderText(&out, false); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No unused files found.") {
		t.Errorf("empty message missing:\n%s", out.String())
	}
}

func TestTableRendering(t *testing.T) {
	table := NewTable("Stats",
		[]string{"Metric", "Value"},
		[][]string{{"Nodes", "10"}, {"Edges", "12"}},
		nil, nil)

	var text strings.Builder
	if err := table.RenderText(&text, false); err != nil {
		t.Fatalf("RenderText failed: %v", err)
	}
	for _, want := range []string{"Stats", "Nodes", "12"} {
		if !strings.Contains(text.String(), want) {
			t.Errorf("text output missing %q:\n%s", want, text.String())
		}
	}

	var md strings.Builder
	if err := table.RenderMarkdown(&md); err != nil {
		t.Fatalf("RenderMarkdown failed: %v", err)
	}
	if !strings.Contains(md.String(), "| Metric | Value |") {
		t.Errorf("markdown header missing:\n%s", md.String())
	}

	data := table.RenderData().([]map[string]string)
	if len(data) != 2 || data[0]["Metric"] != "Nodes" {
		t.Errorf("RenderData = %v", data)
	}
}
