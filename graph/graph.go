package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/tillberg/stringset"
)

// PackageId uniquely identifies one package in a resolved graph.
type PackageId struct {
	Name    string
	Version string
	Source  string
}

func (id PackageId) String() string {
	if id.Source == "" {
		return fmt.Sprintf("%s v%s", id.Name, id.Version)
	}
	return fmt.Sprintf("%s v%s (%s)", id.Name, id.Version, id.Source)
}

// Package is the build metadata of one package. It is shared by pointer with
// every job that builds it and must not be modified once scheduling starts.
type Package struct {
	ID   PackageId
	Root string // Working directory for the package's jobs
}

// Resolve is a fully resolved package graph: every package along with the
// packages it directly depends on.
type Resolve struct {
	order    []PackageId
	packages map[PackageId]*Package
	deps     map[PackageId][]PackageId
}

func New() *Resolve {
	return &Resolve{
		packages: map[PackageId]*Package{},
		deps:     map[PackageId][]PackageId{},
	}
}

// Add registers pkg and its direct dependencies. Duplicate dependencies are
// dropped. Adding the same package twice replaces its dependency list.
func (r *Resolve) Add(pkg *Package, deps ...PackageId) {
	if _, exists := r.packages[pkg.ID]; !exists {
		r.order = append(r.order, pkg.ID)
	}
	r.packages[pkg.ID] = pkg
	seen := stringset.New()
	var uniq []PackageId
	for _, dep := range deps {
		if seen.Add(dep.String()) {
			uniq = append(uniq, dep)
		}
	}
	r.deps[pkg.ID] = uniq
}

// Deps returns the direct dependencies of id.
func (r *Resolve) Deps(id PackageId) []PackageId {
	return r.deps[id]
}

func (r *Resolve) Package(id PackageId) *Package {
	return r.packages[id]
}

// Packages returns all packages in the order they were added.
func (r *Resolve) Packages() []*Package {
	pkgs := make([]*Package, 0, len(r.order))
	for _, id := range r.order {
		pkgs = append(pkgs, r.packages[id])
	}
	return pkgs
}

func (r *Resolve) Len() int {
	return len(r.order)
}

// Validate checks that every dependency is a known package and that the graph
// has no cycles. A package depending on itself is not a cycle.
func (r *Resolve) Validate() error {
	inDegree := map[PackageId]int{}
	dependents := map[PackageId][]PackageId{}
	for _, id := range r.order {
		inDegree[id] = 0
	}
	for _, id := range r.order {
		for _, dep := range r.deps[id] {
			if _, ok := r.packages[dep]; !ok {
				return errors.Errorf("package %s depends on unknown package %s", id, dep)
			}
			if dep == id {
				continue
			}
			inDegree[id]++
			dependents[dep] = append(dependents[dep], id)
		}
	}

	var ready []PackageId
	for _, id := range r.order {
		if inDegree[id] == 0 {
			ready = append(ready, id)
		}
	}
	visited := 0
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		visited++
		for _, dependent := range dependents[id] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
	}
	if visited == len(r.order) {
		return nil
	}

	var stuck []PackageId
	for _, id := range r.order {
		if inDegree[id] > 0 {
			stuck = append(stuck, id)
		}
	}
	if cycle := r.findCycle(stuck); len(cycle) > 0 {
		return errors.Errorf("dependency cycle detected: %s", cycleString(cycle))
	}
	names := make([]string, 0, len(stuck))
	for _, id := range stuck {
		names = append(names, id.String())
	}
	sort.Strings(names)
	return errors.Errorf("dependency cycle detected (%d packages): %v", len(stuck), names)
}

// findCycle walks dependency edges among the stuck packages looking for a
// back edge, returning the packages on the cycle.
func (r *Resolve) findCycle(stuck []PackageId) []PackageId {
	stuckSet := map[PackageId]bool{}
	for _, id := range stuck {
		stuckSet[id] = true
	}
	visited := map[PackageId]bool{}
	onStack := map[PackageId]bool{}
	var stack []PackageId
	var cycle []PackageId
	var dfs func(PackageId) bool
	dfs = func(id PackageId) bool {
		visited[id] = true
		onStack[id] = true
		stack = append(stack, id)
		for _, dep := range r.deps[id] {
			if dep == id || !stuckSet[dep] {
				continue
			}
			if onStack[dep] {
				for i := range stack {
					if stack[i] == dep {
						cycle = append([]PackageId(nil), stack[i:]...)
						break
					}
				}
				return true
			}
			if !visited[dep] && dfs(dep) {
				return true
			}
		}
		onStack[id] = false
		stack = stack[:len(stack)-1]
		return false
	}
	for _, id := range stuck {
		if !visited[id] && dfs(id) {
			break
		}
	}
	return cycle
}

func cycleString(cycle []PackageId) string {
	parts := make([]string, 0, len(cycle)+1)
	for _, id := range cycle {
		parts = append(parts, id.Name)
	}
	parts = append(parts, cycle[0].Name)
	return strings.Join(parts, " -> ")
}
