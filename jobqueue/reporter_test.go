package jobqueue

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tillberg/alog"

	"github.com/tillberg/buildqueue/freshness"
)

func TestLogReporter(t *testing.T) {
	var buf bytes.Buffer
	r := &LogReporter{Logger: alog.New(&buf, "", 0)}
	pkg := newPkg("foo")
	job := &fakeJob{name: "sh -c make"}

	r.Status(pkg, freshness.Fresh)
	r.Describe(pkg, job)
	assert.Empty(t, buf.String())

	r.Status(pkg, freshness.Dirty)
	assert.Contains(t, buf.String(), "Compiling")
	assert.Contains(t, buf.String(), "foo v0.1.0 (local)")

	r.Draining(3)
	assert.Contains(t, buf.String(), "waiting for other jobs to finish")
}

func TestLogReporterVerbose(t *testing.T) {
	var buf bytes.Buffer
	r := &LogReporter{Logger: alog.New(&buf, "", 0), Verbose: true}
	pkg := newPkg("foo")

	r.Status(pkg, freshness.Fresh)
	assert.Contains(t, buf.String(), "Fresh")
	r.Describe(pkg, &fakeJob{name: "sh -c make"})
	assert.Contains(t, buf.String(), "sh -c make")
}
