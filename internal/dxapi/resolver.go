// Package dxapi declares the DX platform collaborators the lowering pass
// treats as external per spec.md §6: a URL-to-record-id resolver and a
// project/folder client. Both are opaque, synchronous calls from the core's
// point of view (spec §5). This package also ships a dry-run
// implementation backed by an offline manifest file so the core can be
// exercised without a live DX API.
//
// Grounded on the teacher's FFI-boundary interfaces in internal/interp
// (external_functions.go, ffi_errors.go): narrow interfaces for
// out-of-process collaborators, resolved by a concrete adapter at the edge.
package dxapi

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/google/uuid"
)

// URLResolver maps a platform URL (e.g. "dx://project-xxxx:/assets/img.tar")
// to a record id, or fails. The task compiler (spec §4.4) calls this when a
// task's docker runtime attribute is a constant platform URL.
type URLResolver interface {
	ResolveRecordID(ctx context.Context, platformURL string) (recordID string, err error)
}

// Manifest is the on-disk stand-in for a live DX project: a mapping from
// platform URL to the record id it already resolves to, loaded once and
// consulted synchronously (spec §5: "no operation blocks on I/O beyond ...
// resolving platform URLs ... treated as synchronous opaque calls").
type Manifest struct {
	Records map[string]string `yaml:"records"`
}

// LoadManifest reads a YAML manifest file of platform-URL -> record-id
// entries.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dxapi: reading manifest %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("dxapi: parsing manifest %s: %w", path, err)
	}
	if m.Records == nil {
		m.Records = map[string]string{}
	}
	return &m, nil
}

// DryRunResolver resolves against an offline Manifest, fabricating a
// clearly-synthetic record id for any platform URL the manifest doesn't
// cover, so a --dry-run compile still produces well-formed DxAsset values
// without contacting the platform.
type DryRunResolver struct {
	Manifest *Manifest
}

// NewDryRunResolver constructs a resolver backed by m. A nil m behaves as an
// empty manifest (every URL is fabricated).
func NewDryRunResolver(m *Manifest) *DryRunResolver {
	if m == nil {
		m = &Manifest{Records: map[string]string{}}
	}
	return &DryRunResolver{Manifest: m}
}

func (r *DryRunResolver) ResolveRecordID(_ context.Context, platformURL string) (string, error) {
	if id, ok := r.Manifest.Records[platformURL]; ok {
		return id, nil
	}
	return fmt.Sprintf("record-%s", uuid.NewString()), nil
}

// ProjectClient lists and creates folders under a DX project — the object
// creation/directory-listing collaborator spec.md §1 places out of scope
// for the core. It exists here only so cmd/wdlgen can wire a concrete
// client without the core package ever importing it.
type ProjectClient interface {
	EnsureFolder(ctx context.Context, projectID, path string) error
	ListFolder(ctx context.Context, projectID, path string) ([]string, error)
}

// NoopProjectClient is a --dry-run stand-in that performs no platform I/O.
type NoopProjectClient struct{}

func (NoopProjectClient) EnsureFolder(context.Context, string, string) error { return nil }
func (NoopProjectClient) ListFolder(context.Context, string, string) ([]string, error) {
	return nil, nil
}
