package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ironsheep/product-compositor/internal/compose"
	"github.com/ironsheep/product-compositor/internal/config"
	"github.com/ironsheep/product-compositor/internal/imaging"
)

const menuText = `
=== Product Compositor ===
1. Convert PSD files to PNG
2. Apply template to converted PNGs
3. One-click (convert and apply template)
4. Exit
5. Test a single PSD file
6. Process JPG files
`

// menu runs the interactive loop on stdin until option 4 or end of input.
// Folders are scanned in the working directory; output goes to the
// configured convert and output directories.
func (a *app) menu(ctx context.Context) int {
	in := bufio.NewScanner(a.stdin)

	for {
		fmt.Fprint(a.stdout, menuText)
		choice, ok := a.prompt(in, "\nChoose an option (1-6): ")
		if !ok {
			return 0
		}

		switch choice {
		case "1":
			a.menuConvert(ctx)
		case "2":
			a.menuApply(ctx, in)
		case "3":
			a.menuOneClick(ctx, in)
		case "4":
			fmt.Fprintln(a.stdout, "Goodbye!")
			return 0
		case "5":
			a.menuTestPSD(in)
		case "6":
			a.menuJPEG(ctx, in)
		default:
			fmt.Fprintln(a.stdout, "Invalid choice, please try again.")
		}

		if ctx.Err() != nil {
			return 1
		}
	}
}

func (a *app) prompt(in *bufio.Scanner, text string) (string, bool) {
	fmt.Fprint(a.stdout, text)
	if !in.Scan() {
		return "", false
	}
	return strings.TrimSpace(in.Text()), true
}

// promptTemplate asks for a template path and checks that it exists.
func (a *app) promptTemplate(in *bufio.Scanner) (string, bool) {
	path, ok := a.prompt(in, "Template image path: ")
	if !ok {
		return "", false
	}
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintln(a.stdout, "Template file not found!")
		return "", false
	}
	return path, true
}

// findListed finds inputs in dir and lists them, or says none were found.
func (a *app) findListed(dir, kind string, exts []string) []string {
	files, err := compose.FindInputs(dir, exts...)
	if err != nil || len(files) == 0 {
		fmt.Fprintf(a.stdout, "No %s files found in %s!\n", kind, dir)
		return nil
	}
	fmt.Fprintf(a.stdout, "\nFound %d %s files:\n", len(files), kind)
	for i, f := range files {
		fmt.Fprintf(a.stdout, "%d. %s\n", i+1, filepath.Base(f))
	}
	return files
}

// convertFolder flattens the PSDs of the working directory into the
// convert directory and returns the report, or nil when there were none.
func (a *app) convertFolder(ctx context.Context) *compose.Report {
	psds := a.findListed(a.workDir, "PSD", compose.PSDExts)
	if len(psds) == 0 {
		return nil
	}
	report := a.comp.ConvertBatch(ctx, convertJobs(psds, a.cfg.Output.ConvertDir, true), a.cfg.Batch.Workers)
	printReport(a.stdout, report)
	return report
}

func (a *app) applyProfile(ctx context.Context, name, template string, products []string) {
	profile, err := a.cfg.Lookup(name)
	if err != nil {
		fmt.Fprintf(a.stdout, "Template processing error: %v\n", err)
		return
	}
	jobs := make([]compose.Job, len(products))
	for i, p := range products {
		jobs[i] = profile.Job(p, template, a.cfg.Output.Dir)
	}
	printReport(a.stdout, a.comp.RunBatch(ctx, jobs, a.cfg.Batch.Workers))
}

func (a *app) menuConvert(ctx context.Context) {
	a.convertFolder(ctx)
}

func (a *app) menuApply(ctx context.Context, in *bufio.Scanner) {
	template, ok := a.promptTemplate(in)
	if !ok {
		return
	}
	pngs, err := compose.FindInputs(a.cfg.Output.ConvertDir, compose.PNGExts...)
	if err != nil || len(pngs) == 0 {
		fmt.Fprintln(a.stdout, "No PNG files found! Convert PSD files first.")
		return
	}
	a.applyProfile(ctx, a.cfg.DefaultProfile, template, pngs)
}

func (a *app) menuOneClick(ctx context.Context, in *bufio.Scanner) {
	template, ok := a.promptTemplate(in)
	if !ok {
		return
	}
	report := a.convertFolder(ctx)
	if report == nil {
		return
	}
	if converted := outputsOf(report); len(converted) > 0 {
		a.applyProfile(ctx, a.cfg.DefaultProfile, template, converted)
	}
}

// menuTestPSD converts one PSD and describes each step, for diagnosing
// files that fail in a batch.
func (a *app) menuTestPSD(in *bufio.Scanner) {
	path, ok := a.prompt(in, "PSD file to test: ")
	if !ok {
		return
	}
	fmt.Fprintf(a.stdout, "\nTesting conversion: %s\n", path)

	info, err := imaging.LoadImageInfo(path)
	if err != nil {
		fmt.Fprintf(a.stdout, "File could not be read: %v\n", err)
		fmt.Fprintln(a.stdout, "\nTest failed!")
		return
	}
	fmt.Fprintf(a.stdout, "Decoded %s: %dx%d, %s, %d bytes\n", info.Format, info.Width, info.Height, info.Mode, info.FileSizeBytes)

	res, err := a.comp.Convert(compose.ConvertJob{
		SourcePath: path,
		OutputDir:  a.cfg.Output.ConvertDir,
		Matte:      true,
	})
	if err != nil {
		fmt.Fprintf(a.stdout, "Conversion failed: %s\n", compose.Summary(err))
		a.log.Error("compose: test conversion failed", "source", path, "error", err)
		fmt.Fprintln(a.stdout, "\nTest failed!")
		return
	}
	fmt.Fprintf(a.stdout, "\nTest succeeded! Output file: %s\n", res.OutputPath)
}

func (a *app) menuJPEG(ctx context.Context, in *bufio.Scanner) {
	template, ok := a.promptTemplate(in)
	if !ok {
		return
	}
	jpgs := a.findListed(a.workDir, "JPG", compose.JPEGExts)
	if len(jpgs) == 0 {
		return
	}
	a.applyProfile(ctx, config.ProfileSquare, template, jpgs)
}
