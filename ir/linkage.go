package ir

// stageLinkageBuiltIns lists built-ins that count as active even when the
// tree never references them.
var stageLinkageBuiltIns = map[Stage][]string{
	StageVertex:  {"gl_VertexID", "gl_InstanceID"},
	StageCompute: {"gl_WorkGroupSize"},
}

// AddSymbolLinkageNodes finishes the linker-object list of a unit: stage
// built-ins found in st are appended to linkage, which then becomes the
// last child of the tree root.
func (in *Intermediate) AddSymbolLinkageNodes(linkage *Aggregate, st SymbolTable) *Aggregate {
	// Names missing from the table are not available at this version.
	for _, name := range stageLinkageBuiltIns[in.stage] {
		linkage = in.AddSymbolLinkageNode(linkage, st, name)
	}
	if linkage == nil {
		linkage = NewAggregate(OpNull)
	}
	linkage.Op = OpLinkerObjects
	if in.treeRoot == nil {
		in.treeRoot = NewAggregate(OpSequence)
	}
	in.treeRoot.Seq = append(in.treeRoot.Seq, linkage)
	return linkage
}

// AddSymbolLinkageNode appends the variable called name to linkage when
// st knows it.
func (in *Intermediate) AddSymbolLinkageNode(linkage *Aggregate, st SymbolTable, name string) *Aggregate {
	v := st.Find(name)
	if v == nil {
		return linkage
	}
	return in.AddLinkerObject(linkage, v)
}

// AddLinkerObject appends a symbol for v to linkage, creating the list
// when linkage is nil.
func (in *Intermediate) AddLinkerObject(linkage *Aggregate, v *Variable) *Aggregate {
	if linkage == nil {
		linkage = NewAggregate(OpNull)
	}
	linkage.Seq = append(linkage.Seq, in.AddSymbol(v, SourceLoc{}))
	return linkage
}

// LinkerObjects returns the linker-object list, the last child of the
// tree root, or nil when there is none.
func (in *Intermediate) LinkerObjects() *Aggregate {
	if in.treeRoot == nil || len(in.treeRoot.Seq) == 0 {
		return nil
	}
	agg := AsAggregate(in.treeRoot.Seq[len(in.treeRoot.Seq)-1])
	if agg == nil || agg.Op != OpLinkerObjects {
		return nil
	}
	return agg
}
