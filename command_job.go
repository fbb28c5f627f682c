package main

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/tillberg/alog"

	"github.com/tillberg/buildqueue/freshness"
	"github.com/tillberg/buildqueue/graph"
	"github.com/tillberg/buildqueue/jobqueue"
	"github.com/tillberg/buildqueue/manifest"
)

// commandJob runs one shell command from the manifest in its package's root.
type commandJob struct {
	pkg   *graph.Package
	stage jobqueue.Stage
	desc  string
	run   string
}

func newCommandJob(pkg *graph.Package, stage jobqueue.Stage, spec manifest.JobSpec) *commandJob {
	return &commandJob{
		pkg:   pkg,
		stage: stage,
		desc:  spec.Describe,
		run:   spec.Run,
	}
}

func (j *commandJob) Describe() string {
	if j.desc != "" {
		return j.desc
	}
	return fmt.Sprintf("`%s`", j.run)
}

func (j *commandJob) Run(ctx context.Context, fresh freshness.Freshness) error {
	if fresh == freshness.Fresh {
		return nil
	}
	buildTimer := alog.NewTimer()
	logPrefix := fmt.Sprintf("@(dim:[%s]) ", j.pkg.ID.Name)
	logger := alog.New(alog.DefaultLogger, alog.Colorify(logPrefix), 0)
	cmd := exec.CommandContext(ctx, "sh", "-c", j.run)
	cmd.Dir = j.pkg.Root
	cmd.Stdout = logger
	cmd.Stderr = logger
	logCommand(logger, cmd.Dir, cmd.Args)
	err := cmd.Run()
	elapsed := buildTimer.FormatElapsedColor(2*time.Second, 10*time.Second)
	if err != nil {
		logger.Printf("@(dim:[)%s@(dim:])    @(error:fail) @(dim:%s)\n", elapsed, j.Describe())
		return errors.Wrapf(err, "%s: %s failed running `%s`", j.pkg.ID, stageName(j.stage), j.run)
	}
	if Opts.Verbose {
		logger.Printf("@(dim:[)%s@(dim:]) success @(dim:%s)\n", elapsed, j.Describe())
	}
	return nil
}

func stageName(stage jobqueue.Stage) string {
	return strings.ToLower(strings.TrimPrefix(stage.String(), "Stage"))
}

func quotedIfNeeded(str string) string {
	if strings.ContainsAny(str, " \n\t\"") {
		return strconv.Quote(str)
	}
	return str
}

func logCommand(logger *alog.Logger, dir string, args []string) {
	if Opts.Verbose {
		var s strings.Builder
		fmt.Fprintf(&s, "cd %s &&", dir)
		for _, v := range args {
			fmt.Fprintf(&s, " %s", quotedIfNeeded(v))
		}
		logger.Log(s.String())
	}
}
