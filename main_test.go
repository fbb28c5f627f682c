package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillberg/buildqueue/freshness"
	"github.com/tillberg/buildqueue/graph"
	"github.com/tillberg/buildqueue/jobqueue"
	"github.com/tillberg/buildqueue/manifest"
)

func writeManifest(t *testing.T, doc string) string {
	dir := t.TempDir()
	path := filepath.Join(dir, "build.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))
	Opts.Manifest = path
	Opts.Jobs = 2
	Opts.Force = false
	Opts.Verbose = false
	return dir
}

func readOrder(t *testing.T, dir string) string {
	buf, err := os.ReadFile(filepath.Join(dir, "order"))
	if os.IsNotExist(err) {
		return ""
	}
	require.NoError(t, err)
	return string(buf)
}

func TestBuildRunsInDependencyOrder(t *testing.T) {
	dir := writeManifest(t, `
packages:
  - name: app
    dependencies: [util]
    stages:
      libraries:
        - run: echo app-lib >> order
      binaries:
        - run: echo app-bin >> order
  - name: util
    stages:
      custom-build:
        - run: echo util-build >> order
      libraries:
        - run: echo util-lib >> order
`)
	require.NoError(t, build(context.Background()))
	assert.Equal(t, "util-build\nutil-lib\napp-lib\napp-bin\n", readOrder(t, dir))
}

func TestBuildSkipsFreshJobs(t *testing.T) {
	dir := writeManifest(t, `
packages:
  - name: app
    dependencies: [util]
    stages:
      libraries:
        - run: echo app >> order
          fresh: true
  - name: util
    stages:
      libraries:
        - run: echo util >> order
          fresh: true
`)
	require.NoError(t, build(context.Background()))
	assert.Equal(t, "", readOrder(t, dir))

	Opts.Force = true
	require.NoError(t, build(context.Background()))
	assert.Equal(t, "util\napp\n", readOrder(t, dir))
}

func TestBuildRebuildsDependents(t *testing.T) {
	dir := writeManifest(t, `
packages:
  - name: app
    dependencies: [util]
    stages:
      libraries:
        - run: echo app >> order
          fresh: true
  - name: util
    stages:
      libraries:
        - run: echo util >> order
`)
	require.NoError(t, build(context.Background()))
	assert.Equal(t, "util\napp\n", readOrder(t, dir))
}

func TestBuildStopsOnFailure(t *testing.T) {
	dir := writeManifest(t, `
packages:
  - name: app
    dependencies: [util]
    stages:
      libraries:
        - run: echo app >> order
  - name: util
    stages:
      libraries:
        - run: exit 3
`)
	err := build(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "util v0.0.0 (local): libraries failed running `exit 3`")
	assert.Equal(t, "", readOrder(t, dir))
}

func TestBuildRejectsBadManifest(t *testing.T) {
	writeManifest(t, "packages:\n  - name: a\n    dependencies: [a2]\n")
	assert.Error(t, build(context.Background()))

	Opts.Manifest = filepath.Join(t.TempDir(), "missing.yaml")
	assert.Error(t, build(context.Background()))
}

func TestCommandJob(t *testing.T) {
	Opts.Verbose = true
	defer func() { Opts.Verbose = false }()
	dir := t.TempDir()
	pkg := &graph.Package{ID: graph.PackageId{Name: "p", Version: "1.0.0"}, Root: dir}

	job := newCommandJob(pkg, jobqueue.StageBinaries, manifest.JobSpec{Run: "touch out"})
	assert.Equal(t, "`touch out`", job.Describe())
	require.NoError(t, job.Run(context.Background(), freshness.Fresh))
	assert.NoFileExists(t, filepath.Join(dir, "out"))
	require.NoError(t, job.Run(context.Background(), freshness.Dirty))
	assert.FileExists(t, filepath.Join(dir, "out"))

	failing := newCommandJob(pkg, jobqueue.StageCustomBuild, manifest.JobSpec{Describe: "build script", Run: "exit 1"})
	assert.Equal(t, "build script", failing.Describe())
	err := failing.Run(context.Background(), freshness.Dirty)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "p v1.0.0: custombuild failed")
}

func TestQuotedIfNeeded(t *testing.T) {
	assert.Equal(t, "plain", quotedIfNeeded("plain"))
	assert.Equal(t, `"two words"`, quotedIfNeeded("two words"))
}
