package objective

import "github.com/zeetee1235/contiki-ng-brpl/internal/contracts"

// MRHOF is a minimal ETX-additive reference objective: path cost is the
// parent's advertised rank plus the link metric to it, and rank-via-parent
// adds one hop increment on top. It exists so this module is runnable
// standalone without an external routing stack; spec.md §4.6 describes
// MRHOF's role here only as the delegate for the four non-comparator hooks,
// it does not specify MRHOF's own internals, so this is a reasonable
// stand-in grounded in that description rather than in any corpus file.
type MRHOF struct {
	// MinHopRankInc is the minimum per-hop rank increment (RPL_MIN_HOPRANKINC).
	MinHopRankInc uint16
	// UsableLinkThreshold: links with metric above this are considered
	// unusable (e.g. an ETX ceiling). Zero disables the check.
	UsableLinkThreshold uint16
}

func (m *MRHOF) ParentLinkMetric(p *contracts.ParentRecord) uint16 {
	return p.Metric()
}

func (m *MRHOF) ParentHasUsableLink(p *contracts.ParentRecord) bool {
	if m.UsableLinkThreshold == 0 {
		return true
	}
	return p.Metric() <= m.UsableLinkThreshold
}

func (m *MRHOF) ParentPathCost(p *contracts.ParentRecord) uint16 {
	return p.Metric() + p.Rank
}

func (m *MRHOF) RankViaParent(p *contracts.ParentRecord) uint16 {
	inc := m.MinHopRankInc
	if inc == 0 {
		inc = 256
	}
	return p.Rank + inc
}
