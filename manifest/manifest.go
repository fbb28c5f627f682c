// Package manifest reads a build plan: a resolved package graph along with
// the commands that make up each package's build stages.
package manifest

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/tillberg/stringset"
	"gopkg.in/yaml.v3"

	"github.com/tillberg/buildqueue/graph"
	"github.com/tillberg/buildqueue/jobqueue"
)

const (
	defaultVersion = "0.0.0"
	defaultSource  = "local"
)

var stageNames = map[string]jobqueue.Stage{
	"custom-build": jobqueue.StageCustomBuild,
	"libraries":    jobqueue.StageLibraries,
	"binaries":     jobqueue.StageBinaries,
}

type Manifest struct {
	Packages []*PackageSpec `yaml:"packages"`
	// Directory that package roots are relative to
	Dir string `yaml:"-"`
}

type PackageSpec struct {
	Name         string               `yaml:"name"`
	Version      string               `yaml:"version"`
	Source       string               `yaml:"source"`
	Root         string               `yaml:"root"`
	Dependencies []string             `yaml:"dependencies"`
	Stages       map[string][]JobSpec `yaml:"stages"`
}

type JobSpec struct {
	Describe string `yaml:"describe"`
	Run      string `yaml:"run"`
	Fresh    bool   `yaml:"fresh"`
}

func (p *PackageSpec) ID() graph.PackageId {
	return graph.PackageId{Name: p.Name, Version: p.Version, Source: p.Source}
}

// Jobs returns the jobs declared for stage, if any.
func (p *PackageSpec) Jobs(stage jobqueue.Stage) []JobSpec {
	for name, s := range stageNames {
		if s == stage {
			return p.Stages[name]
		}
	}
	return nil
}

func Load(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening manifest")
	}
	defer f.Close()
	m, err := Parse(f)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	m.Dir = filepath.Dir(path)
	return m, nil
}

func Parse(r io.Reader) (*Manifest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	m := &Manifest{Dir: "."}
	if err := dec.Decode(m); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "decoding manifest")
	}
	for i, p := range m.Packages {
		if p == nil || p.Name == "" {
			return nil, errors.Errorf("package #%d has no name", i+1)
		}
		if p.Version == "" {
			p.Version = defaultVersion
		}
		if p.Source == "" {
			p.Source = defaultSource
		}
		if p.Root == "" {
			p.Root = "."
		}
		for stage, jobs := range p.Stages {
			if _, ok := stageNames[stage]; !ok {
				return nil, errors.Errorf("package %s: unknown stage %q (expected custom-build, libraries, or binaries)", p.Name, stage)
			}
			for j, job := range jobs {
				if job.Run == "" {
					return nil, errors.Errorf("package %s: job #%d of stage %s has nothing to run", p.Name, j+1, stage)
				}
			}
		}
	}
	return m, nil
}

// Resolve builds the package graph, checking that names are unique, that
// every dependency exists, and that there are no cycles.
func (m *Manifest) Resolve() (*graph.Resolve, error) {
	seen := stringset.New()
	byName := map[string]*PackageSpec{}
	for _, p := range m.Packages {
		if !seen.Add(p.Name) {
			return nil, errors.Errorf("package %s is declared more than once", p.Name)
		}
		byName[p.Name] = p
	}

	r := graph.New()
	for _, p := range m.Packages {
		var deps []graph.PackageId
		for _, name := range p.Dependencies {
			dep, ok := byName[name]
			if !ok {
				return nil, errors.Errorf("package %s depends on %s, which is not in the manifest", p.Name, name)
			}
			deps = append(deps, dep.ID())
		}
		root := p.Root
		if !filepath.IsAbs(root) {
			root = filepath.Join(m.Dir, root)
		}
		r.Add(&graph.Package{ID: p.ID(), Root: root}, deps...)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Spec returns the package declared with the given name.
func (m *Manifest) Spec(name string) *PackageSpec {
	for _, p := range m.Packages {
		if p.Name == name {
			return p
		}
	}
	return nil
}
