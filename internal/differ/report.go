package differ

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/janus-lang/astdb/internal/cid"
)

// Report is the structured differ output: the changed/unchanged decl
// names and the invalidated query count are left to the caller to merge
// in once depgraph.Invalidate has run, since the differ itself has no
// view of the query engine's memo cache.
type Report struct {
	Changed            []ReportChange `json:"changed" yaml:"changed"`
	Unchanged          []string       `json:"unchanged" yaml:"unchanged"`
	InvalidatedQueries int            `json:"invalidated_queries" yaml:"invalidated_queries"`
}

// ReportChange is the serializable projection of a Change: CIDs render as
// hex strings rather than raw byte arrays.
type ReportChange struct {
	Item   string         `json:"item" yaml:"item"`
	Kind   Kind           `json:"kind" yaml:"kind"`
	Detail map[string]any `json:"detail,omitempty" yaml:"detail,omitempty"`
	OldCID string         `json:"old_cid,omitempty" yaml:"old_cid,omitempty"`
	NewCID string         `json:"new_cid,omitempty" yaml:"new_cid,omitempty"`
}

// BuildReport assembles a Report from a Diff call's changes, the full set
// of decl names considered (so unchanged ones can be listed), and the
// number of queries a subsequent depgraph.Invalidate pass dropped.
func BuildReport(changes []Change, allItems []string, invalidatedQueries int) Report {
	changedItems := make(map[string]struct{}, len(changes))
	out := Report{InvalidatedQueries: invalidatedQueries}

	for _, c := range changes {
		changedItems[c.Item] = struct{}{}
		rc := ReportChange{Item: c.Item, Kind: c.Kind, Detail: c.Detail}
		if c.OldCID != nil {
			rc.OldCID = c.OldCID.Hex()
		}
		if c.NewCID != nil {
			rc.NewCID = c.NewCID.Hex()
		}
		out.Changed = append(out.Changed, rc)
	}

	for _, item := range allItems {
		if _, ok := changedItems[item]; !ok {
			out.Unchanged = append(out.Unchanged, item)
		}
	}
	sort.Strings(out.Unchanged)

	return out
}

// JSON renders the report as indented JSON.
func (r Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// YAML renders the report as YAML, for callers that want a diff report
// alongside a janus.yaml-style config rather than as machine JSON.
func (r Report) YAML() ([]byte, error) {
	return yaml.Marshal(r)
}

// Table renders a human-readable fixed-width summary, one change per
// line, with a trailing count of unchanged declarations.
func (r Report) Table() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-24s %-22s %s\n", "ITEM", "KIND", "DETAIL")
	for _, c := range r.Changed {
		fmt.Fprintf(&b, "%-24s %-22s %s\n", c.Item, c.Kind, formatDetail(c.Detail))
	}
	fmt.Fprintf(&b, "\n%d changed, %d unchanged, %d queries invalidated\n",
		len(r.Changed), len(r.Unchanged), r.InvalidatedQueries)
	return b.String()
}

func formatDetail(d map[string]any) string {
	if len(d) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, d[k]))
	}
	return strings.Join(parts, " ")
}

// DeltaHex renders a delta CID set as sorted hex strings, for callers
// that want a stable, printable form of Diff's second return value.
func DeltaHex(delta map[cid.CID]struct{}) []string {
	out := make([]string, 0, len(delta))
	for c := range delta {
		out = append(out, c.Hex())
	}
	sort.Strings(out)
	return out
}
