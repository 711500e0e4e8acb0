package ir

// CallEdge records that Caller calls Callee. Both are mangled names.
type CallEdge struct {
	Caller string
	Callee string
}

// edgeState is the per-edge traversal state of one analysis pass.
type edgeState struct {
	visited     bool
	currentPath bool
	errorGiven  bool
}

// AddToCallGraph records a call. Calls from one caller arrive together, so
// a repeat of an edge already recorded for the current caller is dropped.
func (in *Intermediate) AddToCallGraph(caller, callee string) {
	for i := len(in.callGraph) - 1; i >= 0; i-- {
		e := in.callGraph[i]
		if e.Caller != caller {
			break
		}
		if e.Callee == callee {
			return
		}
	}
	in.callGraph = append(in.callGraph, CallEdge{Caller: caller, Callee: callee})
}

// CallGraph returns the recorded edges.
func (in *Intermediate) CallGraph() []CallEdge { return in.callGraph }

// CheckCallGraphCycles reports recursion. Each back edge is reported once,
// however often the traversal reaches it.
func (in *Intermediate) CheckCallGraphCycles() {
	state := make([]edgeState, len(in.callGraph))

	for {
		root := -1
		for i := range state {
			if !state[i].visited {
				root = i
				break
			}
		}
		if root < 0 {
			return
		}

		// Depth-first from root. An edge is on the stack exactly when its
		// currentPath flag is set, so reaching such an edge again closes a
		// cycle.
		state[root].currentPath = true
		stack := []int{root}
		for len(stack) > 0 {
			call := in.callGraph[stack[len(stack)-1]]
			pushed := false
			for child := range in.callGraph {
				if state[child].visited || in.callGraph[child].Caller != call.Callee {
					continue
				}
				if state[child].currentPath {
					if !state[child].errorGiven {
						in.Error("Recursion detected:")
						in.sink.Info(SourceLoc{}, "    "+call.Callee+" calling "+in.callGraph[child].Callee)
						state[child].errorGiven = true
						in.recursive = true
					}
					continue
				}
				state[child].currentPath = true
				stack = append(stack, child)
				pushed = true
				break
			}
			if !pushed {
				top := stack[len(stack)-1]
				state[top].currentPath = false
				state[top].visited = true
				stack = stack[:len(stack)-1]
			}
		}
	}
}

// CheckCallGraphBodies reports calls reachable from the entry point whose
// callee has no body. Unless keepUncalled is set, function bodies not
// reachable from the entry point are removed from the tree root.
func (in *Intermediate) CheckCallGraphBodies(keepUncalled bool) {
	if in.treeRoot == nil {
		return
	}
	globals := in.treeRoot.Seq
	entry := in.entryPointMangledName

	bodyPosition := make([]int, len(in.callGraph))
	for i, e := range in.callGraph {
		bodyPosition[i] = -1
		for f, g := range globals {
			if fn := AsAggregate(g); fn != nil && fn.Op == OpFunction && fn.Name == e.Callee {
				bodyPosition[i] = f
				break
			}
		}
	}

	// Non-functions are always kept.
	reachable := make([]bool, len(globals))
	for f, g := range globals {
		reachable[f] = true
		if fn := AsAggregate(g); fn != nil && fn.Op == OpFunction {
			reachable[f] = fn.Name == entry
		}
	}

	visited := make([]bool, len(in.callGraph))
	for i, e := range in.callGraph {
		if e.Caller == entry {
			visited[i] = true
		}
	}
	for changed := true; changed; {
		changed = false
		for i, e1 := range in.callGraph {
			if !visited[i] {
				continue
			}
			for j, e2 := range in.callGraph {
				if !visited[j] && e1.Callee == e2.Caller {
					visited[j] = true
					changed = true
				}
			}
		}
	}

	for i, e := range in.callGraph {
		if !visited[i] {
			continue
		}
		if bodyPosition[i] < 0 {
			in.Error("No function definition (body) found: ")
			in.sink.Info(SourceLoc{}, "    "+e.Callee)
		} else {
			reachable[bodyPosition[i]] = true
		}
	}

	if keepUncalled {
		return
	}
	kept := globals[:0]
	for f, g := range globals {
		if reachable[f] {
			kept = append(kept, g)
		} else {
			log.Debugf("removing uncalled function %s", AsAggregate(g).Name)
		}
	}
	in.treeRoot.Seq = kept
}
