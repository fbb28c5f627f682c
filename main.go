package main

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/tillberg/alog"

	"github.com/tillberg/buildqueue/freshness"
	"github.com/tillberg/buildqueue/graph"
	"github.com/tillberg/buildqueue/jobqueue"
	"github.com/tillberg/buildqueue/manifest"
)

var Opts struct {
	Verbose  bool   `short:"v" long:"verbose" description:"Show fresh packages and every command that runs"`
	NoColor  bool   `long:"no-color" description:"Disable ANSI colors"`
	Jobs     int    `short:"j" long:"jobs" description:"Number of parallel jobs (defaults to the number of CPUs)"`
	Force    bool   `short:"f" long:"force" description:"Rebuild everything, even jobs marked fresh"`
	Manifest string `short:"m" long:"manifest" default:"build.yaml" description:"Build plan to execute"`
}

func main() {
	_, err := flags.Parse(&Opts)
	if err != nil {
		err2, ok := err.(*flags.Error)
		if ok && err2.Type == flags.ErrHelp {
			return
		}
		alog.Printf("Error parsing command-line options: %s\n", err)
		os.Exit(2)
	}
	if Opts.NoColor {
		alog.DisableColor()
	}
	if Opts.Jobs <= 0 {
		Opts.Jobs = runtime.GOMAXPROCS(0)
	}

	timer := alog.NewTimer()
	if err := build(context.Background()); err != nil {
		alog.Printf("@(error:error:) %v\n", err)
		os.Exit(1)
	}
	alog.Printf("@(green:%12s) @(dim:build in) %s\n", "Finished", timer.FormatElapsedColor(2*time.Second, 10*time.Second))
}

func build(ctx context.Context) error {
	m, err := manifest.Load(Opts.Manifest)
	if err != nil {
		return err
	}
	resolve, err := m.Resolve()
	if err != nil {
		return err
	}
	if Opts.Verbose {
		pluralProcess := ""
		if Opts.Jobs != 1 {
			pluralProcess = "es"
		}
		alog.Printf("@(dim:Building) @(cyan:%d) @(dim:packages using up to) @(cyan:%d) @(dim:process%s.)\n", resolve.Len(), Opts.Jobs, pluralProcess)
	}

	reporter := &jobqueue.LogReporter{
		Logger:  alog.New(alog.DefaultLogger, "", 0),
		Verbose: Opts.Verbose,
	}
	q := jobqueue.New(resolve, Opts.Jobs, reporter)
	q.Verbose = Opts.Verbose
	enqueueAll(q, m, resolve, Opts.Force)
	return q.Execute(ctx)
}

// enqueueAll registers every stage of every package, in graph order.
func enqueueAll(q *jobqueue.JobQueue, m *manifest.Manifest, resolve *graph.Resolve, force bool) {
	for _, pkg := range resolve.Packages() {
		spec := m.Spec(pkg.ID.Name)
		for _, stage := range jobqueue.Stages() {
			var units []jobqueue.Unit
			for _, js := range spec.Jobs(stage) {
				fresh := freshness.Dirty
				if js.Fresh && !force {
					fresh = freshness.Fresh
				}
				units = append(units, jobqueue.Unit{
					Job:   newCommandJob(pkg, stage, js),
					Fresh: fresh,
				})
			}
			q.Enqueue(pkg, stage, units)
		}
	}
}
