package jobqueue

import "github.com/tillberg/buildqueue/graph"

//go:generate stringer -type=Stage

// Stage is one step of a package's build pipeline. Every package passes
// through each stage exactly once per execution.
type Stage int

const (
	StageStart Stage = iota
	StageCustomBuild
	StageLibraries
	StageBinaries
	StageEnd
)

// Stages returns every stage in pipeline order.
func Stages() []Stage {
	return []Stage{StageStart, StageCustomBuild, StageLibraries, StageBinaries, StageEnd}
}

// Key identifies one schedulable node: a package at a particular stage.
type Key struct {
	ID    graph.PackageId
	Stage Stage
}

// Resolve provides the direct dependencies of each package.
type Resolve interface {
	Deps(id graph.PackageId) []graph.PackageId
}

// Dependencies returns the nodes that key must wait for. Each stage waits on
// the previous stage of the same package, except Start, which waits on End of
// every other package this one directly depends on.
func Dependencies(key Key, resolve Resolve) []Key {
	id := key.ID
	switch key.Stage {
	case StageStart:
		var deps []Key
		for _, dep := range resolve.Deps(id) {
			if dep == id {
				continue
			}
			deps = append(deps, Key{dep, StageEnd})
		}
		return deps
	case StageCustomBuild:
		return []Key{{id, StageStart}}
	case StageLibraries:
		return []Key{{id, StageCustomBuild}}
	case StageBinaries:
		return []Key{{id, StageLibraries}}
	case StageEnd:
		return []Key{{id, StageBinaries}, {id, StageLibraries}}
	}
	panic("unknown stage " + key.Stage.String())
}
