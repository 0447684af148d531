package cron

import (
	"context"
	"time"
)

// CleanupTokenBlacklist removes blacklist rows whose tokens have expired on
// their own; they can never be presented again.
func (m *CronManager) CleanupTokenBlacklist() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	jobName := "cleanup_token_blacklist"

	if err := m.blacklist.CleanupExpiredTokens(ctx); err != nil {
		m.logJobError(jobName, err)
		return
	}

	m.logJobComplete(jobName, "expired tokens pruned")
}

// RefreshDashboardTotals recomputes the per-role user counters so dashboard
// reads rarely hit the database.
func (m *CronManager) RefreshDashboardTotals() {
	jobName := "refresh_dashboard_totals"

	if err := m.dashboard.RefreshTotalsCache(); err != nil {
		m.logJobError(jobName, err)
		return
	}

	m.logJobComplete(jobName, "totals cache refreshed")
}
