package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func function(name string) *Aggregate {
	fn := NewAggregate(OpFunction)
	fn.Name = name
	return fn
}

func messagesOf(in *Intermediate, sev Severity) []string {
	var out []string
	for _, d := range in.InfoSink().Filter(sev) {
		out = append(out, d.Message)
	}
	return out
}

func TestAddToCallGraph_DropsRepeats(t *testing.T) {
	in := NewIntermediate(StageFragment, 450, ProfileCore)
	in.AddToCallGraph("main(", "f(")
	in.AddToCallGraph("main(", "f(")
	in.AddToCallGraph("main(", "g(")
	in.AddToCallGraph("g(", "f(")

	assert.Equal(t, []CallEdge{
		{"main(", "f("},
		{"main(", "g("},
		{"g(", "f("},
	}, in.CallGraph())
}

func TestCheckCallGraphCycles(t *testing.T) {
	in := NewIntermediate(StageFragment, 450, ProfileCore)
	in.AddToCallGraph("main(", "A(")
	in.AddToCallGraph("A(", "B(")
	in.AddToCallGraph("B(", "C(")
	in.AddToCallGraph("C(", "A(")

	in.CheckCallGraphCycles()

	assert.True(t, in.IsRecursive())
	assert.Equal(t, []string{"Linking fragment stage: Recursion detected:"}, messagesOf(in, SeverityError))
	assert.Equal(t, 1, in.NumErrors())
	require.Len(t, messagesOf(in, SeverityInfo), 1)
	assert.Contains(t, messagesOf(in, SeverityInfo)[0], " calling ")
}

func TestCheckCallGraphCycles_SelfRecursion(t *testing.T) {
	in := NewIntermediate(StageVertex, 450, ProfileCore)
	in.AddToCallGraph("main(", "f(")
	in.AddToCallGraph("f(", "f(")

	in.CheckCallGraphCycles()
	assert.True(t, in.IsRecursive())
	assert.Equal(t, []string{"    f( calling f("}, messagesOf(in, SeverityInfo))
}

func TestCheckCallGraphCycles_Diamond(t *testing.T) {
	in := NewIntermediate(StageVertex, 450, ProfileCore)
	in.AddToCallGraph("main(", "a(")
	in.AddToCallGraph("main(", "b(")
	in.AddToCallGraph("a(", "c(")
	in.AddToCallGraph("b(", "c(")

	in.CheckCallGraphCycles()
	assert.False(t, in.IsRecursive())
	assert.Zero(t, in.NumErrors())
}

func TestCheckCallGraphBodies(t *testing.T) {
	in := NewIntermediate(StageFragment, 450, ProfileCore)
	root := NewAggregate(OpSequence)
	global := in.AddIntConstant(1, SourceLoc{Line: 1}, true)
	root.Seq = []Node{global, function("main("), function("used("), function("unused(")}
	in.SetTreeRoot(root)
	in.SetEntryPointMangledName("main(")

	in.AddToCallGraph("main(", "used(")
	in.AddToCallGraph("used(", "missing(")
	in.AddToCallGraph("unused(", "alsoMissing(")

	in.CheckCallGraphBodies(false)

	assert.Equal(t, []string{"Linking fragment stage: No function definition (body) found: "}, messagesOf(in, SeverityError))
	assert.Equal(t, []string{"    missing("}, messagesOf(in, SeverityInfo))

	require.Len(t, root.Seq, 3)
	assert.Same(t, global, root.Seq[0])
	assert.Equal(t, "main(", AsAggregate(root.Seq[1]).Name)
	assert.Equal(t, "used(", AsAggregate(root.Seq[2]).Name)
}

func TestCheckCallGraphBodies_KeepUncalled(t *testing.T) {
	in := NewIntermediate(StageFragment, 450, ProfileCore)
	root := NewAggregate(OpSequence)
	root.Seq = []Node{function("main("), function("unused(")}
	in.SetTreeRoot(root)
	in.SetEntryPointMangledName("main(")

	in.CheckCallGraphBodies(true)
	assert.Len(t, root.Seq, 2)
	assert.Zero(t, in.NumErrors())
}
