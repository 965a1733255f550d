package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"pagewright/internal/logging"
	"pagewright/internal/store"
	"pagewright/internal/types"
)

// Manager runs batches of independent pipeline runs with bounded
// concurrency and records every result in the audit store. Runs share no
// mutable state beyond the read-only policy table and the store.
type Manager struct {
	orch          *Orchestrator
	store         *store.Store
	maxConcurrent int
}

// NewManager creates a manager. store may be nil (results are then only
// returned, not recorded).
func NewManager(orch *Orchestrator, st *store.Store, maxConcurrent int) *Manager {
	if maxConcurrent <= 0 {
		maxConcurrent = 2
	}
	return &Manager{orch: orch, store: st, maxConcurrent: maxConcurrent}
}

// RunOne executes a single request with the recent-issue hint applied and
// records the result.
func (m *Manager) RunOne(ctx context.Context, request string) *types.BuildResult {
	result := m.orch.RunWithHint(ctx, request, m.recentIssueHint())
	m.record(result)
	return result
}

// RunBatch executes the requests concurrently. Results are returned in
// request order; a cancelled context leaves the corresponding slots nil.
func (m *Manager) RunBatch(ctx context.Context, requests []string) []*types.BuildResult {
	results := make([]*types.BuildResult, len(requests))
	hint := m.recentIssueHint()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.maxConcurrent)
	for i, request := range requests {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = m.orch.RunWithHint(ctx, request, hint)
			m.record(results[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logging.Pipeline("batch cut short: %v", err)
	}
	return results
}

func (m *Manager) record(r *types.BuildResult) {
	if m.store == nil || r == nil {
		return
	}
	if err := m.store.SaveResult(r); err != nil {
		logging.Pipeline("[%s] failed to record result: %v", r.BuildID, err)
	}
}

// recentIssueHint summarizes the most frequent recent issue codes so the
// Architect can bias plans away from chronic defects. Best effort: any
// store problem just means no hint.
func (m *Manager) recentIssueHint() string {
	if m.store == nil {
		return ""
	}

	counts, err := m.store.RecentIssueCounts(20)
	if err != nil || len(counts) == 0 {
		return ""
	}

	type codeCount struct {
		code  types.IssueCode
		count int
	}
	sorted := make([]codeCount, 0, len(counts))
	for code, n := range counts {
		sorted = append(sorted, codeCount{code, n})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count > sorted[j].count
		}
		return sorted[i].code < sorted[j].code
	})
	if len(sorted) > 3 {
		sorted = sorted[:3]
	}

	var sb strings.Builder
	sb.WriteString("Recent builds repeatedly hit these validation problems:\n")
	for _, cc := range sorted {
		fmt.Fprintf(&sb, "- %s (%d times)\n", cc.code, cc.count)
	}
	sb.WriteString("Prefer plans whose content type and interaction pattern avoid them.")
	return sb.String()
}
