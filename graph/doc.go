// Package graph executes state graphs: named nodes that transform a state
// value of type S, connected by predicate edges or router functions, run
// from an entry point until a transition reaches End.
//
// The agent loop in package kernel is one such graph:
//
//	g := graph.New[*turn](graph.DefaultConfig("agent"), observer)
//	g.AddNode("reasoning", graph.NodeFunc[*turn](k.reason))
//	g.AddNode("tools", graph.NodeFunc[*turn](k.runTools))
//	g.AddConditionalEdges("reasoning", route)
//	g.AddEdge("tools", "reasoning", nil)
//	g.SetEntryPoint("reasoning")
//	final, err := g.Execute(ctx, initial)
//
// Context cancellation is checked before every node, and MaxIterations caps
// the number of node executions per run. Failures are reported as
// *ExecutionError carrying the failing node and the path taken.
package graph
