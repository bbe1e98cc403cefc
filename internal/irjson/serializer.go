// Package irjson serializes the Namespace IR (spec.md §3) to the JSON
// document submitted downstream for execution; §6 notes the shape itself is
// not part of the core spec, but the ambient stack still needs a concrete
// serializer the way the teacher carries internal/bytecode/serializer.go
// for its own IR.
//
// Grounded on internal/bytecode/serializer.go for the overall shape
// (a small versioned Serializer type with one Marshal entry point), adapted
// from the teacher's binary/encoding-based approach to a JSON document built
// incrementally with github.com/tidwall/sjson — each applet and each stage
// is set into the document as its own raw JSON fragment, mirroring the way
// the workflow assembler itself builds the backbone one stage at a time.
package irjson

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/tidwall/sjson"

	"github.com/cwbudde/wdlgen/internal/irgen"
	"github.com/cwbudde/wdlgen/internal/symbols"
)

// FormatVersion identifies this package's JSON document shape, the same
// way the teacher's bytecode format carries a SerializerVersion.
const FormatVersion = "1.0.0"

// Serializer marshals a Namespace IR to JSON.
type Serializer struct{}

// NewSerializer constructs a Serializer.
func NewSerializer() *Serializer { return &Serializer{} }

// Marshal renders a Namespace IR as a JSON document.
func (s *Serializer) Marshal(ns *irgen.Namespace) ([]byte, error) {
	doc := []byte(`{}`)
	doc, err := sjson.SetBytes(doc, "version", FormatVersion)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(ns.Applets))
	for name := range ns.Applets {
		names = append(names, name)
	}
	sort.Strings(names)

	doc, err = sjson.SetBytes(doc, "applets", map[string]any{})
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		raw, err := marshalApplet(ns.Applets[name])
		if err != nil {
			return nil, fmt.Errorf("irjson: applet %q: %w", name, err)
		}
		doc, err = sjson.SetRawBytesOptions(doc, "applets."+sjsonEscape(name), raw, &sjson.Options{ReplaceInPlace: true})
		if err != nil {
			return nil, fmt.Errorf("irjson: applet %q: %w", name, err)
		}
	}

	if ns.Workflow == nil {
		doc, err = sjson.SetBytes(doc, "workflow", nil)
		if err != nil {
			return nil, err
		}
		return doc, nil
	}

	doc, err = marshalWorkflowInto(doc, ns.Workflow)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// sjsonEscape escapes path metacharacters (".", "*", "?") sjson would
// otherwise interpret as path syntax inside a literal map key.
func sjsonEscape(key string) string {
	out := make([]byte, 0, len(key))
	for i := 0; i < len(key); i++ {
		switch key[i] {
		case '.', '*', '?':
			out = append(out, '\\')
		}
		out = append(out, key[i])
	}
	return string(out)
}

func marshalWorkflowInto(doc []byte, wf *irgen.Workflow) ([]byte, error) {
	header := struct {
		Name    string              `json:"name"`
		Locked  bool                `json:"locked"`
		Inputs  []linkedVarDoc      `json:"inputs"`
		Outputs []linkedVarDoc      `json:"outputs"`
	}{
		Name:    wf.Name,
		Locked:  wf.Locked,
		Inputs:  linkedVarDocs(wf.Inputs),
		Outputs: linkedVarDocs(wf.Outputs),
	}
	raw, err := json.Marshal(header)
	if err != nil {
		return nil, err
	}
	doc, err = sjson.SetRawBytes(doc, "workflow", raw)
	if err != nil {
		return nil, err
	}
	doc, err = sjson.SetBytes(doc, "workflow.stages", []any{})
	if err != nil {
		return nil, err
	}
	for i, stage := range wf.Stages {
		stageRaw, err := marshalStage(stage)
		if err != nil {
			return nil, fmt.Errorf("irjson: stage %q: %w", stage.Name, err)
		}
		doc, err = sjson.SetRawBytes(doc, fmt.Sprintf("workflow.stages.%d", i), stageRaw)
		if err != nil {
			return nil, fmt.Errorf("irjson: stage %q: %w", stage.Name, err)
		}
	}
	return doc, nil
}

func marshalStage(stage irgen.Stage) ([]byte, error) {
	doc := struct {
		Name       string      `json:"name"`
		StageID    string      `json:"stageId"`
		AppletName string      `json:"appletName"`
		Inputs     []sArgDoc   `json:"inputs"`
		Outputs    []cVarDoc   `json:"outputs"`
	}{
		Name:       stage.Name,
		StageID:    stage.StageID,
		AppletName: stage.AppletName,
		Inputs:     sArgDocs(stage.Inputs),
		Outputs:    cVarDocs(stage.Outputs),
	}
	return json.Marshal(doc)
}

func marshalApplet(a *irgen.Applet) ([]byte, error) {
	doc := struct {
		Name         string        `json:"name"`
		Inputs       []cVarDoc     `json:"inputs"`
		Outputs      []cVarDoc     `json:"outputs"`
		InstanceType instanceDoc   `json:"instanceType"`
		Docker       dockerDoc     `json:"docker"`
		Kind         appletKindDoc `json:"kind"`
		Fragment     string        `json:"fragment,omitempty"`
		Verified     bool          `json:"verified"`
	}{
		Name:         a.Name,
		Inputs:       cVarDocs(a.Inputs),
		Outputs:      cVarDocs(a.Outputs),
		InstanceType: marshalInstanceType(a.InstanceType),
		Docker:       marshalDocker(a.Docker),
		Kind:         marshalAppletKind(a.Kind),
		Fragment:     a.Fragment,
		Verified:     a.Verified,
	}
	return json.Marshal(doc)
}

type cVarDoc struct {
	Name           string `json:"name"`
	DxVarName      string `json:"dxVarName"`
	Type           string `json:"type"`
	HasDefault     bool   `json:"hasDefault"`
	DefaultLiteral string `json:"defaultLiteral,omitempty"`
	OriginalFqn    string `json:"originalFqn,omitempty"`
}

func cVarDocs(vars []symbols.CVar) []cVarDoc {
	out := make([]cVarDoc, len(vars))
	for i, v := range vars {
		out[i] = cVarDoc{
			Name:           v.Name,
			DxVarName:      v.DxVarName,
			Type:           v.Type.String(),
			HasDefault:     v.Attrs.HasDefault,
			DefaultLiteral: v.Attrs.DefaultLiteral,
			OriginalFqn:    v.OriginalFqn,
		}
	}
	return out
}

type sArgDoc struct {
	Kind     string   `json:"kind"`
	Constant string   `json:"constant,omitempty"`
	Stage    string   `json:"stage,omitempty"`
	Var      *cVarDoc `json:"var,omitempty"`
}

func sArgDocs(args []symbols.SArg) []sArgDoc {
	out := make([]sArgDoc, len(args))
	for i, a := range args {
		out[i] = marshalSArg(a)
	}
	return out
}

func marshalSArg(a symbols.SArg) sArgDoc {
	switch a.Kind() {
	case symbols.SArgEmpty:
		return sArgDoc{Kind: "empty"}
	case symbols.SArgConstant:
		return sArgDoc{Kind: "constant", Constant: a.ConstantValue().Literal()}
	case symbols.SArgLink:
		stage, v := a.LinkStageAndVar()
		vd := cVarDocs([]symbols.CVar{v})[0]
		return sArgDoc{Kind: "link", Stage: stage, Var: &vd}
	case symbols.SArgWorkflowInput:
		vd := cVarDocs([]symbols.CVar{a.WorkflowInputVar()})[0]
		return sArgDoc{Kind: "workflowInput", Var: &vd}
	default:
		return sArgDoc{Kind: "empty"}
	}
}

type linkedVarDoc struct {
	Var cVarDoc `json:"var"`
	Arg sArgDoc `json:"arg"`
}

func linkedVarDocs(lvs []symbols.LinkedVar) []linkedVarDoc {
	out := make([]linkedVarDoc, len(lvs))
	for i, lv := range lvs {
		out[i] = linkedVarDoc{Var: cVarDocs([]symbols.CVar{lv.CVar})[0], Arg: marshalSArg(lv.SArg)}
	}
	return out
}

type instanceDoc struct {
	Kind         string `json:"kind"`
	Memory       string `json:"memory,omitempty"`
	Disks        string `json:"disks,omitempty"`
	CPU          string `json:"cpu,omitempty"`
	InstanceName string `json:"instanceName,omitempty"`
}

func marshalInstanceType(it irgen.InstanceType) instanceDoc {
	switch it.Kind {
	case irgen.InstanceDefault:
		return instanceDoc{Kind: "default"}
	case irgen.InstanceRuntime:
		return instanceDoc{Kind: "runtime"}
	default:
		return instanceDoc{
			Kind:         "concrete",
			Memory:       it.Spec.Memory,
			Disks:        it.Spec.Disks,
			CPU:          it.Spec.CPU,
			InstanceName: it.Spec.InstanceName,
		}
	}
}

type dockerDoc struct {
	Kind     string `json:"kind"`
	RecordID string `json:"recordId,omitempty"`
}

func marshalDocker(d irgen.Docker) dockerDoc {
	switch d.Kind {
	case irgen.DockerNone:
		return dockerDoc{Kind: "none"}
	case irgen.DockerNetwork:
		return dockerDoc{Kind: "network"}
	default:
		return dockerDoc{Kind: "dxAsset", RecordID: d.RecordID}
	}
}

type appletKindDoc struct {
	Tag      string            `json:"tag"`
	NativeID string            `json:"nativeId,omitempty"`
	CallDict map[string]string `json:"callDict,omitempty"`
}

func marshalAppletKind(k irgen.AppletKind) appletKindDoc {
	return appletKindDoc{
		Tag:      k.Tag.String(),
		NativeID: k.NativeID,
		CallDict: k.CallDict,
	}
}
