package research

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"sync/atomic"
)

// End is the terminal pseudo-node of a graph.
const End = "__end__"

var (
	// ErrStreamConsumed is returned when a pipeline stream is ranged twice.
	ErrStreamConsumed = errors.New("research: pipeline stream already consumed")
	// ErrNoEntryPoint is returned by Compile when no entry point was set.
	ErrNoEntryPoint = errors.New("research: entry point not set")
)

// Stage is one node of the pipeline. Run receives a private copy of the
// current state and returns only the fields it wrote.
type Stage interface {
	Name() string
	Run(ctx context.Context, state RunState) (StageUpdate, error)
}

// Graph declares stages and the edges between them.
type Graph struct {
	nodes map[string]Stage
	edges map[string]string
	entry string
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes: make(map[string]Stage),
		edges: make(map[string]string),
	}
}

// AddNode registers a stage under its name.
func (g *Graph) AddNode(stage Stage) error {
	name := stage.Name()
	if name == "" || name == End {
		return fmt.Errorf("research: invalid node name %q", name)
	}
	if _, ok := g.nodes[name]; ok {
		return fmt.Errorf("research: duplicate node %q", name)
	}
	g.nodes[name] = stage
	return nil
}

// AddEdge declares that to runs after from. Each node has exactly one
// successor; use End to terminate the chain.
func (g *Graph) AddEdge(from, to string) error {
	if existing, ok := g.edges[from]; ok {
		return fmt.Errorf("research: node %q already routes to %q", from, existing)
	}
	g.edges[from] = to
	return nil
}

// SetEntryPoint sets the first node to run.
func (g *Graph) SetEntryPoint(name string) {
	g.entry = name
}

// Compile validates the graph as a single chain from the entry point to End
// and returns the runnable pipeline.
func (g *Graph) Compile() (*Pipeline, error) {
	if g.entry == "" {
		return nil, ErrNoEntryPoint
	}
	for from, to := range g.edges {
		if _, ok := g.nodes[from]; !ok {
			return nil, fmt.Errorf("research: edge references unknown node %q", from)
		}
		if _, ok := g.nodes[to]; !ok && to != End {
			return nil, fmt.Errorf("research: edge references unknown node %q", to)
		}
	}

	visited := make(map[string]bool, len(g.nodes))
	chain := make([]Stage, 0, len(g.nodes))
	for cur := g.entry; cur != End; {
		stage, ok := g.nodes[cur]
		if !ok {
			return nil, fmt.Errorf("research: unknown node %q", cur)
		}
		if visited[cur] {
			return nil, fmt.Errorf("research: cycle detected at node %q", cur)
		}
		visited[cur] = true
		chain = append(chain, stage)

		next, ok := g.edges[cur]
		if !ok {
			return nil, fmt.Errorf("research: node %q has no outgoing edge", cur)
		}
		cur = next
	}

	if len(visited) != len(g.nodes) {
		return nil, fmt.Errorf("research: %d of %d nodes unreachable from %q",
			len(g.nodes)-len(visited), len(g.nodes), g.entry)
	}

	return &Pipeline{stages: chain, Logger: slog.Default()}, nil
}

// NodeOutput is what the pipeline yields after each stage: the stage's own
// update and a snapshot of the state with that update merged.
type NodeOutput struct {
	Node   string
	Update StageUpdate
	State  RunState
}

// Pipeline is a compiled graph. It is safe for concurrent use; every call to
// Stream starts an independent run.
type Pipeline struct {
	stages []Stage
	Logger *slog.Logger
}

// NewPipeline wires the standard researcher -> writer chain.
func NewPipeline(researcher *ResearchStage, writer *SynthesisStage) (*Pipeline, error) {
	g := NewGraph()
	if err := g.AddNode(researcher); err != nil {
		return nil, err
	}
	if err := g.AddNode(writer); err != nil {
		return nil, err
	}
	g.SetEntryPoint(ResearcherNode)
	if err := g.AddEdge(ResearcherNode, WriterNode); err != nil {
		return nil, err
	}
	if err := g.AddEdge(WriterNode, End); err != nil {
		return nil, err
	}
	return g.Compile()
}

// Nodes returns the stage names in execution order.
func (p *Pipeline) Nodes() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}

// Stream runs the stages in order starting from initial, yielding one
// NodeOutput per completed stage. A stage error or panic is yielded once as
// the final pair and ends the run. The returned sequence can be ranged once.
func (p *Pipeline) Stream(ctx context.Context, initial RunState) iter.Seq2[NodeOutput, error] {
	var consumed atomic.Bool
	state := initial.Clone()

	return func(yield func(NodeOutput, error) bool) {
		if !consumed.CompareAndSwap(false, true) {
			yield(NodeOutput{}, ErrStreamConsumed)
			return
		}

		for _, stage := range p.stages {
			if err := ctx.Err(); err != nil {
				p.Logger.InfoContext(ctx, "Pipeline abandoned", "next", stage.Name(), "reason", err)
				return
			}

			update, err := runStage(ctx, stage, state.Clone())
			if err != nil {
				p.Logger.ErrorContext(ctx, "Stage failed", "node", stage.Name(), "error", err)
				yield(NodeOutput{Node: stage.Name()}, err)
				return
			}
			if ctx.Err() != nil {
				p.Logger.InfoContext(ctx, "Pipeline abandoned", "after", stage.Name(), "reason", ctx.Err())
				return
			}

			Merge(&state, update)
			p.Logger.DebugContext(ctx, "Stage complete", "node", stage.Name(), "logs", len(update.Logs))

			if !yield(NodeOutput{Node: stage.Name(), Update: update, State: state.Clone()}, nil) {
				return
			}
		}
	}
}

// Invoke runs the pipeline to completion and returns the final state.
func (p *Pipeline) Invoke(ctx context.Context, topic string) (RunState, error) {
	final := NewRunState(topic)
	for out, err := range p.Stream(ctx, final) {
		if err != nil {
			return final, err
		}
		final = out.State
	}
	if err := ctx.Err(); err != nil {
		return final, err
	}
	return final, nil
}

func runStage(ctx context.Context, stage Stage, state RunState) (update StageUpdate, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("node %q panicked: %v", stage.Name(), r)
		}
	}()

	update, err = stage.Run(ctx, state)
	if err != nil {
		return StageUpdate{}, fmt.Errorf("node %q: %w", stage.Name(), err)
	}
	return update, nil
}
