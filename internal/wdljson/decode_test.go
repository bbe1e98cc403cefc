package wdljson

import (
	"testing"

	"github.com/cwbudde/wdlgen/internal/wdl"
)

func TestDecode_TaskAndLockedWorkflow(t *testing.T) {
	doc := []byte(`{
		"primary": "main",
		"tasks": [
			{
				"name": "Add",
				"decls": [
					{"name": "a", "type": "Int"},
					{"name": "b", "type": "Int"}
				],
				"outputs": [
					{"name": "result", "type": "Int", "default": {"node": "binary", "op": "+",
						"left": {"node": "ident", "name": "a"},
						"right": {"node": "ident", "name": "b"}}}
				],
				"runtime": {}
			}
		],
		"workflows": [
			{
				"name": "main",
				"children": [
					{"node": "decl", "name": "x", "type": "Int"},
					{"node": "decl", "name": "y", "type": "Int"},
					{"node": "call", "task": "Add", "alias": "sum", "inputs": [
						{"name": "a", "expr": {"node": "ident", "name": "x"}},
						{"name": "b", "expr": {"node": "ident", "name": "y"}}
					]}
				],
				"outputs": [
					{"name": "total", "type": "Int", "default": {"node": "member",
						"base": {"node": "ident", "name": "sum"}, "field": "result"}}
				]
			}
		]
	}`)

	ns, err := Decode(doc)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(ns.Tasks) != 1 || ns.Tasks[0].Name != "Add" {
		t.Fatalf("unexpected tasks: %+v", ns.Tasks)
	}
	if len(ns.Tasks[0].Decls) != 2 {
		t.Fatalf("expected 2 task decls, got %d", len(ns.Tasks[0].Decls))
	}

	wf := ns.PrimaryWorkflow()
	if wf == nil {
		t.Fatal("expected primary workflow \"main\"")
	}
	if len(wf.Children) != 3 {
		t.Fatalf("expected 3 workflow children, got %d", len(wf.Children))
	}
	if _, ok := wf.Children[0].(*wdl.Decl); !ok {
		t.Errorf("children[0] = %T, want *wdl.Decl", wf.Children[0])
	}
	call, ok := wf.Children[2].(*wdl.Call)
	if !ok {
		t.Fatalf("children[2] = %T, want *wdl.Call", wf.Children[2])
	}
	if call.StageName() != "sum" {
		t.Errorf("StageName() = %q, want %q", call.StageName(), "sum")
	}
	if len(wf.Outputs) != 1 || wf.Outputs[0].Name != "total" {
		t.Fatalf("unexpected workflow outputs: %+v", wf.Outputs)
	}
}

func TestDecode_ScatterBody(t *testing.T) {
	doc := []byte(`{
		"primary": "wf",
		"workflows": [{
			"name": "wf",
			"children": [
				{"node": "decl", "name": "xs", "type": "Array[Int]"},
				{"node": "scatter", "var": "k", "collection": {"node": "ident", "name": "xs"}, "body": [
					{"node": "call", "task": "Add", "inputs": [
						{"name": "a", "expr": {"node": "ident", "name": "k"}},
						{"name": "b", "expr": {"node": "literal", "value": 1}}
					]}
				]}
			]
		}]
	}`)

	ns, err := Decode(doc)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	wf := ns.PrimaryWorkflow()
	scatter, ok := wf.Children[1].(*wdl.Scatter)
	if !ok {
		t.Fatalf("children[1] = %T, want *wdl.Scatter", wf.Children[1])
	}
	if scatter.Var != "k" {
		t.Errorf("Var = %q, want %q", scatter.Var, "k")
	}
	if len(scatter.Body) != 1 {
		t.Fatalf("expected 1 scatter body child, got %d", len(scatter.Body))
	}
}

func TestDecode_UnknownNodeIsError(t *testing.T) {
	_, err := Decode([]byte(`{"workflows":[{"name":"wf","children":[{"node":"bogus"}]}]}`))
	if err == nil {
		t.Fatal("expected an error for an unknown node tag")
	}
}
