package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/product-compositor/internal/imaging"
)

func fill(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

// writeProduct stores a red block on white as PNG data under any name.
func writeProduct(t *testing.T, path string) {
	t.Helper()
	img := fill(40, 20, color.NRGBA{255, 255, 255, 255})
	for y := 4; y < 16; y++ {
		for x := 4; x < 36; x++ {
			img.SetNRGBA(x, y, color.NRGBA{200, 0, 0, 255})
		}
	}
	if _, err := imaging.WriteFile(path, img, imaging.PNG); err != nil {
		t.Fatal(err)
	}
}

func writeTemplate(t *testing.T, path string) {
	t.Helper()
	if _, err := imaging.WriteFile(path, fill(100, 100, color.NRGBA{240, 240, 255, 255}), imaging.PNG); err != nil {
		t.Fatal(err)
	}
}

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func exists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected %s: %v", path, err)
	}
}

func TestRun_Info(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
		want string
	}{
		{"version", []string{"version"}, 0, "compositor dev"},
		{"version flag", []string{"--version"}, 0, "Git commit"},
		{"help", []string{"help"}, 0, "Commands:"},
		{"no command", nil, 0, "Usage: compositor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, _ := runCLI(t, "", tt.args...)
			if code != tt.code {
				t.Errorf("exit code: got %d, want %d", code, tt.code)
			}
			if !strings.Contains(stdout, tt.want) {
				t.Errorf("stdout does not contain %q:\n%s", tt.want, stdout)
			}
		})
	}
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	badConfig := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(badConfig, []byte("matte: {white_threshold: 999}"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		code int
		want string
	}{
		{"unknown command", []string{"paint"}, 2, `unknown command "paint"`},
		{"bad flag", []string{"-nope"}, 2, ""},
		{"bad config", []string{"-config", badConfig, "apply"}, 1, "invalid configuration"},
		{"missing config", []string{"-config", filepath.Join(dir, "none.yaml"), "apply"}, 1, "failed to read config file"},
		{"apply usage", []string{"apply", "only-template.png"}, 2, "Usage: compositor apply"},
		{"unknown profile", []string{"apply", "-profile", "poster", "t.png", "p.png"}, 2, `unknown profile "poster"`},
		{"missing template", []string{"apply", filepath.Join(dir, "t.png"), "p.png"}, 1, "not found"},
		{"convert usage", []string{"convert"}, 2, "Usage: compositor convert"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, "", tt.args...)
			if code != tt.code {
				t.Errorf("exit code: got %d, want %d", code, tt.code)
			}
			if !strings.Contains(stderr, tt.want) {
				t.Errorf("stderr does not contain %q:\n%s", tt.want, stderr)
			}
		})
	}
}

func TestRun_Apply(t *testing.T) {
	dir := t.TempDir()
	template := filepath.Join(dir, "tpl.png")
	writeTemplate(t, template)
	writeProduct(t, filepath.Join(dir, "shoe.psd"))
	out := filepath.Join(dir, "out")

	code, stdout, stderr := runCLI(t, "", "apply", "-out", out, template,
		filepath.Join(dir, "shoe.psd"), filepath.Join(dir, "missing.psd"))

	if code != 1 {
		t.Errorf("exit code: got %d, want 1 (stderr %s)", code, stderr)
	}
	exists(t, filepath.Join(out, "final_shoe.jpg"))
	for _, want := range []string{
		"1 succeeded, 1 failed",
		"The following files failed:",
		"- missing.psd: input file not found",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout does not contain %q:\n%s", want, stdout)
		}
	}
	if !strings.Contains(stderr, "compose: job failed") {
		t.Errorf("failure not logged:\n%s", stderr)
	}
}

func TestRun_Batch(t *testing.T) {
	dir := t.TempDir()
	template := filepath.Join(dir, "tpl.png")
	writeTemplate(t, template)
	products := filepath.Join(dir, "products")
	writeProduct(t, filepath.Join(products, "a.jpg.psd"))
	writeProduct(t, filepath.Join(products, "b.png"))
	if err := os.WriteFile(filepath.Join(products, "readme.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out")

	code, stdout, _ := runCLI(t, "", "batch", "-profile", "square", "-out", out, template, products)
	if code != 0 {
		t.Fatalf("exit code: got %d\n%s", code, stdout)
	}
	exists(t, filepath.Join(out, "final_a.jpg.png"))
	exists(t, filepath.Join(out, "final_b.png"))
}

func TestRun_Convert(t *testing.T) {
	dir := t.TempDir()
	writeProduct(t, filepath.Join(dir, "a.psd"))
	writeProduct(t, filepath.Join(dir, "b.psd"))
	out := filepath.Join(dir, "png")

	code, stdout, _ := runCLI(t, "", "convert", "-out", out, dir)
	if code != 0 {
		t.Fatalf("exit code: got %d\n%s", code, stdout)
	}

	r, err := imaging.Open(filepath.Join(out, "a.png"))
	if err != nil {
		t.Fatalf("converted file: %v", err)
	}
	if r.Image.NRGBAAt(0, 0).A != 0 {
		t.Error("white background should be matted")
	}
	exists(t, filepath.Join(out, "b.png"))
}

func TestRun_Menu(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeTemplate(t, "tpl.png")
	writeProduct(t, "shoe.psd")
	writeProduct(t, "photo.jpg")

	script := strings.Join([]string{
		"1",                // convert shoe.psd
		"2", "tpl.png",     // apply catalog profile to png_output
		"6", "tpl.png",     // square profile for JPGs
		"5", "missing.psd", // diagnose a missing file
		"9",                // invalid
		"2", "no-such.png", // missing template
		"4",
	}, "\n") + "\n"

	code, stdout, _ := runCLI(t, script, "menu")
	if code != 0 {
		t.Errorf("exit code: got %d", code)
	}

	exists(t, filepath.Join("png_output", "shoe.png"))
	exists(t, filepath.Join("final_output", "final_shoe.jpg"))
	exists(t, filepath.Join("final_output", "final_photo.png"))

	for _, want := range []string{
		"Found 1 PSD files",
		"Test failed!",
		"Invalid choice",
		"Template file not found!",
		"Goodbye!",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout does not contain %q", want)
		}
	}
}

func TestRun_MenuOneClick(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeTemplate(t, "tpl.png")
	writeProduct(t, "boot.psd")

	code, stdout, _ := runCLI(t, "3\ntpl.png\n5\nboot.psd\n", "menu")
	if code != 0 {
		t.Errorf("exit code: got %d", code)
	}
	exists(t, filepath.Join("final_output", "final_boot.jpg"))
	if !strings.Contains(stdout, "Test succeeded! Output file: "+filepath.Join("png_output", "boot.png")) {
		t.Errorf("single file test did not succeed:\n%s", stdout)
	}
}

func TestRun_MCP(t *testing.T) {
	in := `{"jsonrpc":"2.0","id":1,"method":"initialize"}` + "\n"
	code, stdout, _ := runCLI(t, in, "mcp")
	if code != 0 {
		t.Errorf("exit code: got %d", code)
	}
	if !strings.Contains(stdout, `"name":"product-compositor"`) || !strings.Contains(stdout, `"version":"dev"`) {
		t.Errorf("unexpected handshake: %s", stdout)
	}
}
