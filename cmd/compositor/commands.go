package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ironsheep/product-compositor/internal/compose"
	"github.com/ironsheep/product-compositor/internal/server"
	"github.com/ironsheep/product-compositor/internal/web"
)

// jobFlags are the options shared by apply and batch.
type jobFlags struct {
	profile string
	out     string
	workers int
}

func (a *app) jobFlagSet(name string, jf *jobFlags) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.StringVar(&jf.profile, "profile", a.cfg.DefaultProfile, "compositing profile")
	fs.StringVar(&jf.out, "out", a.cfg.Output.Dir, "output directory")
	fs.IntVar(&jf.workers, "workers", a.cfg.Batch.Workers, "concurrent jobs, 0 for one per CPU")
	return fs
}

// composite runs products onto template with the named profile and
// prints the report. It returns the process exit code.
func (a *app) composite(ctx context.Context, template string, products []string, jf jobFlags) int {
	profile, err := a.cfg.Lookup(jf.profile)
	if err != nil {
		fmt.Fprintf(a.stderr, "compositor: %v\n", err)
		return 2
	}
	if _, err := os.Stat(template); err != nil {
		fmt.Fprintf(a.stderr, "compositor: template %s not found\n", template)
		return 1
	}

	jobs := make([]compose.Job, len(products))
	for i, p := range products {
		jobs[i] = profile.Job(p, template, jf.out)
	}
	report := a.comp.RunBatch(ctx, jobs, jf.workers)
	printReport(a.stdout, report)
	return exitCode(report)
}

func (a *app) apply(ctx context.Context, args []string) int {
	var jf jobFlags
	fs := a.jobFlagSet("apply", &jf)
	fs.Usage = func() {
		fmt.Fprintln(a.stderr, "Usage: compositor apply [options] <template> <product>...")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 2 {
		fs.Usage()
		return 2
	}
	return a.composite(ctx, fs.Arg(0), fs.Args()[1:], jf)
}

func (a *app) batch(ctx context.Context, args []string) int {
	var jf jobFlags
	fs := a.jobFlagSet("batch", &jf)
	fs.Usage = func() {
		fmt.Fprintln(a.stderr, "Usage: compositor batch [options] <template> <dir>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return 2
	}

	products, err := compose.FindInputs(fs.Arg(1), compose.RasterExts...)
	if err != nil {
		fmt.Fprintf(a.stderr, "compositor: %v\n", err)
		return 1
	}
	if len(products) == 0 {
		fmt.Fprintf(a.stdout, "No images found in %s\n", fs.Arg(1))
		return 0
	}
	return a.composite(ctx, fs.Arg(0), products, jf)
}

func (a *app) convert(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	out := fs.String("out", a.cfg.Output.ConvertDir, "output directory")
	matte := fs.Bool("matte", true, "make near-white pixels transparent")
	workers := fs.Int("workers", a.cfg.Batch.Workers, "concurrent jobs, 0 for one per CPU")
	fs.Usage = func() {
		fmt.Fprintln(a.stderr, "Usage: compositor convert [options] <file|dir>...")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	var sources []string
	for _, arg := range fs.Args() {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			sources = append(sources, arg)
			continue
		}
		found, err := compose.FindInputs(arg, compose.PSDExts...)
		if err != nil {
			fmt.Fprintf(a.stderr, "compositor: %v\n", err)
			return 1
		}
		sources = append(sources, found...)
	}
	if len(sources) == 0 {
		fmt.Fprintln(a.stdout, "No PSD files found")
		return 0
	}

	report := a.comp.ConvertBatch(ctx, convertJobs(sources, *out, *matte), *workers)
	printReport(a.stdout, report)
	return exitCode(report)
}

func convertJobs(sources []string, out string, matte bool) []compose.ConvertJob {
	jobs := make([]compose.ConvertJob, len(sources))
	for i, s := range sources {
		jobs[i] = compose.ConvertJob{SourcePath: s, OutputDir: out, Matte: matte}
	}
	return jobs
}

func (a *app) serve(ctx context.Context) int {
	srv, err := web.New(a.cfg, a.comp, a.log)
	if err != nil {
		fmt.Fprintf(a.stderr, "compositor: %v\n", err)
		return 1
	}
	if err := srv.ListenAndServe(ctx); err != nil {
		a.log.Error("web: server error", "error", err)
		return 1
	}
	return 0
}

func (a *app) mcp(ctx context.Context) int {
	srv, err := server.New(a.cfg, a.log)
	if err != nil {
		fmt.Fprintf(a.stderr, "compositor: %v\n", err)
		return 1
	}
	srv.Version = Version
	if err := srv.Run(ctx, a.stdin, a.stdout); err != nil && ctx.Err() == nil {
		a.log.Error("mcp: server error", "error", err)
		return 1
	}
	return 0
}

// printReport lists every outcome, then the failed files.
func printReport(w io.Writer, r *compose.Report) {
	for _, o := range r.Outcomes {
		if !o.OK() {
			continue
		}
		fmt.Fprintf(w, "Processed: %s -> %s\n", o.Source, o.Result.OutputPath)
		for _, warn := range o.Result.Warnings {
			fmt.Fprintf(w, "  warning: %s\n", warn)
		}
	}

	fmt.Fprintf(w, "\n%d succeeded, %d failed (%s)\n", r.Succeeded, r.Failed, r.Elapsed.Round(time.Millisecond))

	if failed := r.Failures(); len(failed) > 0 {
		fmt.Fprintln(w, "\nThe following files failed:")
		for _, o := range failed {
			fmt.Fprintf(w, "- %s: %s\n", o.Source, o.Error)
		}
	}
}

// exitCode is 1 when any job failed.
func exitCode(r *compose.Report) int {
	if r.Failed > 0 {
		return 1
	}
	return 0
}

// outputsOf returns the output paths of the successful outcomes.
func outputsOf(r *compose.Report) []string {
	var paths []string
	for _, o := range r.Outcomes {
		if o.OK() {
			paths = append(paths, filepath.Clean(o.Result.OutputPath))
		}
	}
	return paths
}
