package cli

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ivlev/alertkit/internal/config"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd("test")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeBackground(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "bg.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 8, 8))); err != nil {
		t.Fatal(err)
	}
	return path
}

// --- config ---

func TestConfigCmd_Stdout(t *testing.T) {
	out, err := run(t, "config")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"deadline:", "decommission_alert_{name}.jpg", "delay_ms: 500"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigCmd_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.yaml")
	if _, err := run(t, "config", "--output", path); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Deadline != config.DefaultDeadline {
		t.Errorf("deadline = %q", cfg.Deadline)
	}
}

// --- generate ---

func TestGenerateCmd_FlagsOverrideJob(t *testing.T) {
	dir := t.TempDir()
	bg := writeBackground(t, dir)
	outDir := filepath.Join(dir, "docs")

	out, err := run(t, "generate",
		"--background", bg,
		"--output", outDir,
		"--width", "160", "--height", "80",
		"--frames", "2",
		"--no-static",
	)
	if err != nil {
		t.Fatalf("generate: %v\n%s", err, out)
	}
	if !strings.Contains(out, "[+++] Success!") {
		t.Errorf("missing success line:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(outDir, "decommission_alert.gif")); err != nil {
		t.Errorf("gif not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "decommission_alert_small.jpg")); !os.IsNotExist(err) {
		t.Error("static output written despite --no-static")
	}
}

func TestGenerateCmd_JobFile(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Background = writeBackground(t, dir)
	cfg.OutputDir = filepath.Join(dir, "out")
	cfg.Animation.Enabled = false
	cfg.Static.Sizes = []config.Size{{Name: "thumb", Width: 120, Height: 90}}
	jobPath := filepath.Join(dir, "job.yaml")
	if err := config.Write(cfg, jobPath); err != nil {
		t.Fatal(err)
	}

	if out, err := run(t, "generate", "--config", jobPath); err != nil {
		t.Fatalf("generate: %v\n%s", err, out)
	}
	if _, err := os.Stat(filepath.Join(dir, "out", "decommission_alert_thumb.jpg")); err != nil {
		t.Errorf("static output missing: %v", err)
	}
}

func TestGenerateCmd_InvalidDeadline(t *testing.T) {
	if _, err := run(t, "generate", "--deadline", "soon"); err == nil {
		t.Error("expected error for bad deadline")
	}
}

func TestGenerateCmd_NothingToDo(t *testing.T) {
	if _, err := run(t, "generate", "--no-animation", "--no-static"); err == nil {
		t.Error("expected error when every output is disabled")
	}
}

func TestExecute_ReportsFailureOnce(t *testing.T) {
	dir := t.TempDir()
	cmd := newRootCmd("test")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"generate", "--background", filepath.Join(dir, "missing.png"), "--output", dir})

	if code := execute(cmd); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if n := strings.Count(out.String(), "[-] generation failed:"); n != 1 {
		t.Errorf("failure reported %d times:\n%s", n, out.String())
	}
	if strings.Contains(out.String(), "Error:") {
		t.Errorf("cobra error line not silenced:\n%s", out.String())
	}
}
