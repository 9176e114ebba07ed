// Trace tree reconstruction and text rendering for flat span lists
package traceio

import (
	"fmt"
	"io"
	"sort"

	"github.com/andrewh/aispan/pkg/semconv"
)

// TraceTree holds spans grouped by trace with parent-child links.
type TraceTree struct {
	TraceID  string
	Roots    []*SpanNode
	AllNodes []*SpanNode
}

// SpanNode wraps a Span with its children in the trace tree.
type SpanNode struct {
	Span     Span
	Children []*SpanNode
}

// BuildTrees reconstructs trace trees from a flat list of spans. Spans with
// broken parent references (parent not in dataset) become additional roots;
// warnings about them go to w (may be nil).
func BuildTrees(spans []Span, w io.Writer) []*TraceTree {
	byTrace := make(map[string][]Span)
	traceOrder := make([]string, 0)
	for _, s := range spans {
		if _, seen := byTrace[s.TraceID]; !seen {
			traceOrder = append(traceOrder, s.TraceID)
		}
		byTrace[s.TraceID] = append(byTrace[s.TraceID], s)
	}

	trees := make([]*TraceTree, 0, len(byTrace))
	for _, traceID := range traceOrder {
		trees = append(trees, buildTree(traceID, byTrace[traceID], w))
	}
	return trees
}

func buildTree(traceID string, spans []Span, w io.Writer) *TraceTree {
	nodes := make(map[string]*SpanNode, len(spans))
	allNodes := make([]*SpanNode, 0, len(spans))
	for _, s := range spans {
		node := &SpanNode{Span: s}
		nodes[s.SpanID] = node
		allNodes = append(allNodes, node)
	}

	var roots []*SpanNode
	for _, node := range allNodes {
		if node.Span.ParentID == "" {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[node.Span.ParentID]
		if !ok {
			// Broken parent reference — treat as root
			if w != nil {
				_, _ = fmt.Fprintf(w, "warning: span %s in trace %s has parent %s not found in dataset, treating as root\n",
					node.Span.SpanID, traceID, node.Span.ParentID)
			}
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	// Children in start-time order for stable rendering
	for _, node := range allNodes {
		sort.SliceStable(node.Children, func(i, j int) bool {
			return node.Children[i].Span.StartTime.Before(node.Children[j].Span.StartTime)
		})
	}

	return &TraceTree{
		TraceID:  traceID,
		Roots:    roots,
		AllNodes: allNodes,
	}
}

// Fprint renders the trace trees as indented text, one line per span with its
// OpenInference kind and duration.
func Fprint(w io.Writer, trees []*TraceTree) {
	for _, tree := range trees {
		fmt.Fprintf(w, "trace %s\n", tree.TraceID)
		for _, root := range tree.Roots {
			printNode(w, root, 1)
		}
	}
}

func printNode(w io.Writer, node *SpanNode, depth int) {
	kind := node.Span.Attributes[semconv.OISpanKind]
	if kind == "" {
		kind = "-"
	}
	duration := node.Span.EndTime.Sub(node.Span.StartTime)
	for i := 0; i < depth; i++ {
		io.WriteString(w, "  ") //nolint:errcheck // best-effort rendering
	}
	fmt.Fprintf(w, "%s  [%s]  %s\n", node.Span.Name, kind, duration)
	for _, child := range node.Children {
		printNode(w, child, depth+1)
	}
}
