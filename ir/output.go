package ir

import (
	"fmt"
	"io"
	"math"
	"strings"
)

// Output writes a readable summary of the unit: version, requested
// extensions and the stage's execution modes, followed by the tree when
// tree is set.
func (in *Intermediate) Output(w io.Writer, tree bool) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Shader version: %d\n", in.version)
	for _, ext := range in.RequestedExtensions() {
		fmt.Fprintf(&sb, "Requested %s\n", ext)
	}
	if in.xfbMode {
		sb.WriteString("in xfb mode\n")
	}

	switch in.stage {
	case StageTessControl:
		fmt.Fprintf(&sb, "vertices = %d\n", in.vertices)
	case StageTessEvaluation:
		fmt.Fprintf(&sb, "input primitive = %s\n", in.inputPrimitive)
		fmt.Fprintf(&sb, "vertex spacing = %s\n", in.vertexSpacing)
		fmt.Fprintf(&sb, "triangle order = %s\n", in.vertexOrder)
		if in.pointMode {
			sb.WriteString("using point mode\n")
		}
	case StageGeometry:
		fmt.Fprintf(&sb, "invocations = %d\n", in.invocations)
		fmt.Fprintf(&sb, "max_vertices = %d\n", in.vertices)
		fmt.Fprintf(&sb, "input primitive = %s\n", in.inputPrimitive)
		fmt.Fprintf(&sb, "output primitive = %s\n", in.outputPrimitive)
	case StageFragment:
		if in.pixelCenterInteger {
			sb.WriteString("gl_FragCoord pixel center is integer\n")
		}
		if in.originUpperLeft {
			sb.WriteString("gl_FragCoord origin is upper left\n")
		}
		if in.earlyFragmentTests {
			sb.WriteString("using early_fragment_tests\n")
		}
		if in.postDepthCoverage {
			sb.WriteString("using post_depth_coverage\n")
		}
		if in.depthLayout != DepthNone {
			fmt.Fprintf(&sb, "using %s\n", in.depthLayout)
		}
		if in.blendEquations != 0 {
			sb.WriteString("using")
			for be := BlendEquationShift(0); be < BlendCount; be++ {
				if in.blendEquations&(1<<be) != 0 {
					sb.WriteString(" " + be.String())
				}
			}
			sb.WriteString("\n")
		}
	case StageCompute:
		fmt.Fprintf(&sb, "local_size = (%d, %d, %d)\n", in.localSize[0], in.localSize[1], in.localSize[2])
		ids := in.localSizeSpecID
		if ids[0] != LayoutNotSet || ids[1] != LayoutNotSet || ids[2] != LayoutNotSet {
			fmt.Fprintf(&sb, "local_size ids = (%d, %d, %d)\n", ids[0], ids[1], ids[2])
		}
	}

	if tree && in.treeRoot != nil {
		p := treePrinter{sb: &sb, binaryDouble: in.binaryDoubleOutput}
		p.node(in.treeRoot, 0)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

type treePrinter struct {
	sb           *strings.Builder
	binaryDouble bool
}

func (p *treePrinter) line(loc SourceLoc, depth int, format string, args ...any) {
	if loc.Line > 0 {
		fmt.Fprintf(p.sb, "%d:%d", loc.Source, loc.Line)
	} else {
		fmt.Fprintf(p.sb, "%d:?", loc.Source)
	}
	p.sb.WriteString(strings.Repeat("  ", depth+1))
	fmt.Fprintf(p.sb, format, args...)
	p.sb.WriteString("\n")
}

func (p *treePrinter) node(n Node, depth int) {
	if isNilNode(n) {
		return
	}
	loc := n.Loc()

	switch n := n.(type) {
	case *Symbol:
		p.line(loc, depth, "'%s' (%s)", n.Name, n.Type())
		if len(n.ConstArray) > 0 {
			p.line(loc, depth+1, "Constant:")
			p.constants(loc, depth+2, n.ConstArray)
		}

	case *ConstantUnion:
		p.line(loc, depth, "Constant:")
		p.constants(loc, depth+1, n.Value)

	case *Unary:
		p.line(loc, depth, "%s (%s)", n.Op, n.Type())
		p.node(n.Operand, depth+1)

	case *Binary:
		p.line(loc, depth, "%s (%s)", n.Op, n.Type())
		p.node(n.Left, depth+1)
		p.node(n.Right, depth+1)

	case *Aggregate:
		switch n.Op {
		case OpNull:
			p.line(loc, depth, "ERROR: node is still EOpNull!")
		case OpSequence:
			p.line(loc, depth, "Sequence")
		case OpLinkerObjects:
			p.line(loc, depth, "Linker Objects")
		case OpParameters:
			p.line(loc, depth, "Function Parameters: ")
		case OpFunction:
			p.line(loc, depth, "Function Definition: %s (%s)", n.Name, n.Type())
		case OpFunctionCall:
			p.line(loc, depth, "Function Call: %s (%s)", n.Name, n.Type())
		case OpComma:
			p.line(loc, depth, "Comma")
		default:
			p.line(loc, depth, "%s (%s)", n.Op, n.Type())
		}
		for _, c := range n.Seq {
			p.node(c, depth+1)
		}

	case *Selection:
		p.line(loc, depth, "Test condition and select (%s)", n.Type())
		p.line(loc, depth+1, "Condition")
		p.node(n.Cond, depth+2)
		if isNilNode(n.TrueBlock) {
			p.line(loc, depth+1, "true case is null")
		} else {
			p.line(loc, depth+1, "true case")
			p.node(n.TrueBlock, depth+2)
		}
		if !isNilNode(n.FalseBlock) {
			p.line(loc, depth+1, "false case")
			p.node(n.FalseBlock, depth+2)
		}

	case *Switch:
		p.line(loc, depth, "switch")
		p.line(loc, depth+1, "condition")
		p.node(n.Cond, depth+2)
		p.line(loc, depth+1, "body")
		p.node(n.Body, depth+2)

	case *Loop:
		if n.TestFirst {
			p.line(loc, depth, "Loop with condition tested first")
		} else {
			p.line(loc, depth, "Loop with condition not tested first")
		}
		if isNilNode(n.Test) {
			p.line(loc, depth+1, "No loop condition")
		} else {
			p.line(loc, depth+1, "Loop Condition")
			p.node(n.Test, depth+2)
		}
		if isNilNode(n.Body) {
			p.line(loc, depth+1, "No loop body")
		} else {
			p.line(loc, depth+1, "Loop Body")
			p.node(n.Body, depth+2)
		}
		if !isNilNode(n.Terminal) {
			p.line(loc, depth+1, "Loop Terminal Expression")
			p.node(n.Terminal, depth+2)
		}

	case *Branch:
		p.line(loc, depth, "Branch: %s", branchName(n.Op))
		if !isNilNode(n.Expr) {
			p.node(n.Expr, depth+1)
		}

	case *Method:
		p.line(loc, depth, "Method: %s", n.Method)
		p.node(n.Object, depth+1)
	}
}

func (p *treePrinter) constants(loc SourceLoc, depth int, values ConstArray) {
	for _, c := range values {
		if p.binaryDouble && c.Kind.IsFloat() {
			p.line(loc, depth, "%s : %#016x", c, math.Float64bits(c.f))
			continue
		}
		switch {
		case c.Kind == BasicBool:
			p.line(loc, depth, "%s (const bool)", c)
		case c.Kind.IsInteger():
			p.line(loc, depth, "%s (const %s)", c, c.Kind)
		default:
			p.line(loc, depth, "%s", c)
		}
	}
}

func branchName(op Operator) string {
	switch op {
	case OpKill:
		return "Kill"
	case OpReturn:
		return "Return"
	case OpBreak:
		return "Break"
	case OpContinue:
		return "Continue"
	case OpCase:
		return "Case"
	case OpDefault:
		return "Default"
	}
	return "Unknown Branch"
}
