package saga

import (
	"errors"
	"fmt"
)

// Builder assembles a Definition.
//
// Nodes are created unlinked (their next is End) and linked by Sequence.
// Mistakes are collected and reported by Build.
type Builder[T any] struct {
	name  string
	nodes []node
	errs  []error
}

func NewBuilder[T any](name string) *Builder[T] {
	return &Builder[T]{name: name}
}

func (b *Builder[T]) add(n node) NodeID {
	b.nodes = append(b.nodes, n)
	return NodeID(len(b.nodes) - 1)
}

func (b *Builder[T]) fail(format string, args ...any) {
	b.errs = append(b.errs, fmt.Errorf(format, args...))
}

type TaskOption func(*taskOptions)

type taskOptions struct {
	retry *RetryPolicy
	catch NodeID
	once  string
}

// WithRetry retries the task by the policy.
func WithRetry(p RetryPolicy) TaskOption {
	return func(o *taskOptions) {
		o.retry = &p
	}
}

// WithCatch runs the path from handler when the task has failed.
//
// The handler path replaces the rest of the path of the task.
func WithCatch(handler NodeID) TaskOption {
	return func(o *taskOptions) {
		o.catch = handler
	}
}

// Once makes tasks of the group succeed at most once in a run.
//
// Tasks of the same group never run concurrently.
// After one of them has succeeded, the others are skipped.
func Once(group string) TaskOption {
	return func(o *taskOptions) {
		o.once = group
	}
}

// Task adds a node invoking action.
func (b *Builder[T]) Task(name string, action Action[T], options ...TaskOption) NodeID {
	opts := taskOptions{catch: End}
	for _, o := range options {
		o(&opts)
	}
	if action == nil {
		b.fail("task %s: action is nil", name)
	}
	return b.add(&taskNode[T]{
		base:   base{name: name, next: End},
		action: action,
		retry:  opts.retry,
		catch:  opts.catch,
		once:   opts.once,
	})
}

// Choice adds a node running the path from then when cond holds, or from otherwise.
//
// After the chosen path ends, the choice continues to its next.
func (b *Builder[T]) Choice(name string, cond Condition[T], then NodeID, otherwise NodeID) NodeID {
	if cond == nil {
		b.fail("choice %s: condition is nil", name)
	}
	return b.add(&choiceNode[T]{
		base: base{name: name, next: End}, cond: cond, then: then, otherwise: otherwise,
	})
}

// Pass adds a node doing nothing.
func (b *Builder[T]) Pass(name string) NodeID {
	return b.add(&passNode{base: base{name: name, next: End}})
}

// BranchSpec is a path in a Parallel node.
type BranchSpec struct {
	name  string
	start NodeID
}

// Branch names the path from start.
//
// The name is the key of the branch outcome.
func Branch(name string, start NodeID) BranchSpec {
	return BranchSpec{name: name, start: start}
}

// Parallel adds a node running branches concurrently and waiting for all of them.
//
// It fails when any branch fails. A branch without any task run is Skipped.
func (b *Builder[T]) Parallel(name string, branches ...BranchSpec) NodeID {
	if len(branches) == 0 {
		b.fail("parallel %s: no branches", name)
	}
	bs := make([]branch, 0, len(branches))
	for _, br := range branches {
		bs = append(bs, branch{name: br.name, start: br.start})
	}
	return b.add(&parallelNode{base: base{name: name, next: End}, branches: bs})
}

// Succeed adds a node ending its path successfully.
func (b *Builder[T]) Succeed(name string) NodeID {
	return b.add(&succeedNode{base: base{name: name, next: End}})
}

// Fail adds a node ending its path with a failure.
func (b *Builder[T]) Fail(name string, cause string) NodeID {
	return b.add(&failNode{base: base{name: name, next: End}, cause: cause})
}

// Sequence links ids in order, and returns the first one.
func (b *Builder[T]) Sequence(ids ...NodeID) NodeID {
	if len(ids) == 0 {
		b.fail("empty sequence")
		return End
	}
	for i := 0; i+1 < len(ids); i++ {
		n, ok := b.node(ids[i])
		if !ok {
			b.fail("sequence: unknown node %d", ids[i])
			continue
		}
		switch n.(type) {
		case *succeedNode, *failNode:
			b.fail("%s is terminal, so it cannot be followed", n.nodeName())
			continue
		}
		bs := n.self()
		if bs.next != End {
			b.fail("%s is linked already", bs.name)
			continue
		}
		bs.next = ids[i+1]
	}
	return ids[0]
}

func (b *Builder[T]) node(id NodeID) (node, bool) {
	if id < 0 || int(id) >= len(b.nodes) {
		return nil, false
	}
	return b.nodes[id], true
}

// Build validates the graph and returns the definition starting at start.
func (b *Builder[T]) Build(start NodeID) (*Definition[T], error) {
	errs := append([]error{}, b.errs...)

	valid := func(from string, id NodeID) {
		if id == End {
			return
		}
		if _, ok := b.node(id); !ok {
			errs = append(errs, fmt.Errorf("%s refers unknown node %d", from, id))
		}
	}
	if start == End {
		errs = append(errs, errors.New("start should be a node"))
	}
	valid("start", start)

	names := map[string]bool{}
	unique := func(name string) {
		if name == "" {
			errs = append(errs, errors.New("unnamed node"))
			return
		}
		if names[name] {
			errs = append(errs, fmt.Errorf("%s is duplicated", name))
		}
		names[name] = true
	}

	for _, n := range b.nodes {
		unique(n.nodeName())
		valid(n.nodeName(), n.self().next)
		switch n := n.(type) {
		case *taskNode[T]:
			valid(n.name, n.catch)
		case *choiceNode[T]:
			valid(n.name, n.then)
			valid(n.name, n.otherwise)
		case *parallelNode:
			for _, br := range n.branches {
				unique(br.name)
				valid(n.name, br.start)
				if br.start == End {
					errs = append(errs, fmt.Errorf("branch %s has no nodes", br.name))
				}
			}
		}
	}

	if len(errs) == 0 {
		if cyc, ok := b.cycle(); ok {
			errs = append(errs, fmt.Errorf("cycle at %s", cyc))
		}
	}

	if len(errs) != 0 {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidDefinition, b.name, errors.Join(errs...))
	}

	nodes := make([]node, len(b.nodes))
	copy(nodes, b.nodes)
	return &Definition[T]{name: b.name, nodes: nodes, start: start}, nil
}

func (b *Builder[T]) edges(n node) []NodeID {
	ids := []NodeID{n.self().next}
	switch n := n.(type) {
	case *taskNode[T]:
		ids = append(ids, n.catch)
	case *choiceNode[T]:
		ids = append(ids, n.then, n.otherwise)
	case *parallelNode:
		for _, br := range n.branches {
			ids = append(ids, br.start)
		}
	}
	return ids
}

// cycle finds a node on a cycle, if any.
func (b *Builder[T]) cycle() (string, bool) {
	const (
		unvisited = iota
		visiting
		visited
	)
	state := make([]int, len(b.nodes))

	var visit func(id NodeID) (string, bool)
	visit = func(id NodeID) (string, bool) {
		switch state[id] {
		case visiting:
			return b.nodes[id].nodeName(), true
		case visited:
			return "", false
		}
		state[id] = visiting
		for _, next := range b.edges(b.nodes[id]) {
			if next == End {
				continue
			}
			if name, ok := visit(next); ok {
				return name, true
			}
		}
		state[id] = visited
		return "", false
	}

	for id := range b.nodes {
		if name, ok := visit(NodeID(id)); ok {
			return name, true
		}
	}
	return "", false
}
