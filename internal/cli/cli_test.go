package cli

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mgpai22/sourceplan/internal/enrich"
	"github.com/mgpai22/sourceplan/internal/subtitle"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const sampleSRT = "1\n00:00:01,000 --> 00:00:03,500\nHe said \"hi\"\n\n" +
	"2\n00:00:03,500 --> 00:00:05,000\nRates rose\nto 5%\n\n" +
	"3\n00:00:05,000 --> 00:00:07,000\nA quiet harbour\n"

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	for _, name := range []string{
		"OPENAI_API_KEY",
		"ANTHROPIC_API_KEY",
		"GEMINI_API_KEY",
		"GOOGLE_API_KEY",
		"FAL_KEY",
		"SOURCEPLAN_LLM_PROVIDER",
	} {
		t.Setenv(name, "")
	}

	resetFlags(rootCmd)
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)

	hasConfig := false
	for _, a := range args {
		if a == "--config" {
			hasConfig = true
		}
	}
	if !hasConfig {
		args = append([]string{"--config", filepath.Join(t.TempDir(), "absent.toml")}, args...)
	}
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeSRT(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "narration.srt")
	if err := os.WriteFile(path, []byte(sampleSRT), 0o644); err != nil {
		t.Fatalf("write srt: %v", err)
	}
	return path
}

func readArchive(t *testing.T, path string) map[string]string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer zr.Close()

	files := make(map[string]string)
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, "/") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		body, _ := io.ReadAll(rc)
		_ = rc.Close()
		files[f.Name] = string(body)
	}
	return files
}

func TestInspect(t *testing.T) {
	out, _, err := runCLI(t, "inspect", writeSRT(t))
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	for _, want := range []string{"00:00:01,000", "Rates rose to 5%", "3 segments: 3 unclassified"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestInspectTranscript(t *testing.T) {
	out, _, err := runCLI(t, "inspect", "--transcript", writeSRT(t))
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if !strings.HasPrefix(out, "1\n00:00:01,000 --> 00:00:03,500\nHe said \"hi\"\n\n2\n") {
		t.Errorf("unexpected transcript:\n%s", out)
	}
	if !strings.Contains(out, "Rates rose to 5%\n\n") {
		t.Errorf("multi-line text not flattened:\n%s", out)
	}
}

func TestInspectMissingFile(t *testing.T) {
	_, _, err := runCLI(t, "inspect", filepath.Join(t.TempDir(), "nope.srt"))
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestExportDefaultOutput(t *testing.T) {
	srt := writeSRT(t)
	out, _, err := runCLI(t, "export", srt)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	archivePath := filepath.Join(filepath.Dir(srt), "narration_export.zip")
	if !strings.Contains(out, archivePath) {
		t.Errorf("output does not name archive:\n%s", out)
	}

	files := readArchive(t, archivePath)
	manifest := strings.Split(files["manifest.csv"], "\n")
	if len(manifest) != 4 {
		t.Fatalf("manifest has %d lines:\n%s", len(manifest), files["manifest.csv"])
	}
	if !strings.Contains(manifest[1], `"He said ""hi"""`) {
		t.Errorf("manifest row 1 = %q", manifest[1])
	}
	if _, ok := files["00_00_03_500/text.txt"]; !ok {
		t.Error("missing segment folder for 00:00:03,500")
	}
	if files["full.srt"] == "" {
		t.Error("missing reconstructed transcript")
	}
}

func TestPlanThenExport(t *testing.T) {
	srt := writeSRT(t)
	planPath := filepath.Join(t.TempDir(), "edits.yaml")

	if _, _, err := runCLI(t, "plan", srt, "-o", planPath); err != nil {
		t.Fatalf("plan: %v", err)
	}

	edits := `version: 1
segments:
  - index: 2
    source_type: real
    links:
      - url: https://stats.example.org/rates
        title: Rate decision
  - index: 3
    source_type: photo
    mood: misty
`
	if err := os.WriteFile(planPath, []byte(edits), 0o644); err != nil {
		t.Fatalf("write plan: %v", err)
	}

	archivePath := filepath.Join(t.TempDir(), "out.zip")
	if _, _, err := runCLI(t, "export", srt, "--plan", planPath, "-o", archivePath); err != nil {
		t.Fatalf("export: %v", err)
	}

	files := readArchive(t, archivePath)
	if got := files["00_00_03_500/urls.txt"]; got != "Rate decision\nhttps://stats.example.org/rates" {
		t.Errorf("urls.txt = %q", got)
	}
	if !strings.Contains(files["00_00_05_000/meta.json"], `"mood": "misty"`) {
		t.Errorf("meta.json missing mood:\n%s", files["00_00_05_000/meta.json"])
	}
	if _, ok := files["00_00_01_000/urls.txt"]; ok {
		t.Error("segment without links has urls.txt")
	}
}

func TestPlanToStdout(t *testing.T) {
	out, _, err := runCLI(t, "plan", writeSRT(t), "-o", "-")
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if !strings.Contains(out, "source: narration.srt") || !strings.Contains(out, "index: 3") {
		t.Errorf("unexpected plan:\n%s", out)
	}
}

func TestExportStaticEnrichment(t *testing.T) {
	srt := writeSRT(t)
	archivePath := filepath.Join(t.TempDir(), "out.zip")

	_, _, err := runCLI(t, "export", srt, "--classify", "--suggest-links", "-o", archivePath)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	files := readArchive(t, archivePath)
	manifest := files["manifest.csv"]
	for _, want := range []string{",illustration,", ",photo,", ",real,"} {
		if !strings.Contains(manifest, want) {
			t.Errorf("manifest missing %q:\n%s", want, manifest)
		}
	}
	// third segment is real under the static distribution
	if !strings.Contains(files["00_00_05_000/urls.txt"], "https://example.com/related-1") {
		t.Errorf("placeholder links missing: %q", files["00_00_05_000/urls.txt"])
	}
}

func TestExportRejectsBadInput(t *testing.T) {
	srt := writeSRT(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"collision policy", []string{"export", srt, "--collision", "merge"}, "collision policy"},
		{"images without key", []string{"export", srt, "--generate-images"}, "FAL_KEY"},
		{"missing file", []string{"export", strings.TrimSuffix(srt, ".srt") + ".vtt"}, "not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestConfigInitAndShow(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, _, err := runCLI(t, "--config", target, "config", "init")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, "Wrote sample configuration") {
		t.Errorf("unexpected output: %s", out)
	}

	content, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	content = bytes.Replace(content, []byte(`api_key = ""`), []byte(`api_key = "sk-secret-value-1234"`), 1)
	if err := os.WriteFile(target, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	out, _, err = runCLI(t, "--config", target, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if strings.Contains(out, "sk-secret-value") {
		t.Errorf("secret leaked:\n%s", out)
	}
	if !strings.Contains(out, "****1234") {
		t.Errorf("redacted key missing:\n%s", out)
	}
}

func TestSummarizeTypes(t *testing.T) {
	got := summarizeTypes([]subtitle.Segment{
		{SourceType: subtitle.SourcePhoto},
		{SourceType: subtitle.SourceReal},
		{SourceType: subtitle.SourcePhoto},
	})
	if got != "3 segments: 2 photo, 1 real reference (url)" {
		t.Errorf("summarizeTypes = %q", got)
	}
}

func TestEllipsize(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 8, "this is…"},
		{"한국어 자막 텍스트", 4, "한국어…"},
	}

	for _, tt := range tests {
		if got := ellipsize(tt.in, tt.width); got != tt.want {
			t.Errorf("ellipsize(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestReportFailure(t *testing.T) {
	var stderr bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetErr(&stderr)

	err := errors.Join(
		&enrich.SegmentError{Index: 2, Err: errors.New("timeout")},
		errors.New("provider unavailable"),
	)
	if n := reportFailure(cmd, "image generation", err); n != 2 {
		t.Errorf("reportFailure counted %d failures, want 2", n)
	}

	want := "image generation failed for segment 2: timeout\n" +
		"image generation failed: provider unavailable\n"
	if stderr.String() != want {
		t.Errorf("stderr = %q, want %q", stderr.String(), want)
	}

	stderr.Reset()
	if n := reportFailure(cmd, "classification", errors.New("bad reply")); n != 1 {
		t.Errorf("single error counted %d", n)
	}
	if stderr.String() != "classification failed: bad reply\n" {
		t.Errorf("stderr = %q", stderr.String())
	}
}
