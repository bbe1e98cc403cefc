package irgen

import (
	"strings"

	"github.com/cwbudde/wdlgen/internal/irerrors"
	"github.com/cwbudde/wdlgen/internal/wdlposition"
)

// Reserved names and tokens the core must honor in generated identifiers
// (spec §6).
const (
	// CommonStageName is the name of the synthetic inputs stage.
	CommonStageName = "common"
	// OutputsSuffix is the suffix of the output-section applet name.
	OutputsSuffix = "outputs"
	// LastStageID is the fixed stage id of the output-section stage.
	LastStageID = "last_stage"
	// ReorgStageName is the name of the reorganization stage.
	ReorgStageName = "reorg"
)

// reservedPrefixes and reservedSubstrings are the configured set of
// reserved applet-name prefixes/substrings user call aliases must not use
// (spec §6). Kept small and explicit rather than configurable via flags,
// matching how the teacher hard-codes its own reserved-keyword set in the
// lexer rather than accepting it as input.
var (
	reservedPrefixes   = []string{"eval", "scatter", "if", "stage-"}
	reservedSubstrings = []string{"__", "."}
)

// checkCallName validates a call's stage name against the reserved-name
// rules of spec §6 / §7 ("Illegal call name").
func checkCallName(name string, pos wdlposition.Position) error {
	if name == LastStageID {
		return irerrors.New(irerrors.KindIllegalCallName, pos,
			"call name %q equals the reserved last-stage marker", name)
	}
	for _, p := range reservedPrefixes {
		if strings.HasPrefix(name, p) {
			return irerrors.New(irerrors.KindIllegalCallName, pos,
				"call name %q begins with reserved prefix %q", name, p)
		}
	}
	for _, s := range reservedSubstrings {
		if strings.Contains(name, s) {
			return irerrors.New(irerrors.KindIllegalCallName, pos,
				"call name %q contains reserved substring %q", name, s)
		}
	}
	return nil
}
