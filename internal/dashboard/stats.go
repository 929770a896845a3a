package dashboard

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/onyxandcode/onyx-site/internal/projects"
)

// Stats are the headline numbers on the dashboard.
type Stats struct {
	TotalLeads    int            `json:"total_leads"`
	LeadsByStatus map[string]int `json:"leads_by_status"`
	Projects      int            `json:"projects"`
	Projects3D    int            `json:"projects_3d"`
}

// StatsSource computes Stats.
type StatsSource interface {
	Stats(ctx context.Context) (Stats, error)
}

// SQLStats runs aggregate queries over database/sql.
type SQLStats struct {
	db *sql.DB
}

// NewSQLStats wraps a database/sql handle opened with the pgx stdlib driver.
func NewSQLStats(db *sql.DB) *SQLStats {
	return &SQLStats{db: db}
}

// Stats implements StatsSource.
func (s *SQLStats) Stats(ctx context.Context) (Stats, error) {
	out := Stats{LeadsByStatus: map[string]int{}}

	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM leads GROUP BY status`)
	if err != nil {
		return Stats{}, fmt.Errorf("dashboard: lead stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return Stats{}, fmt.Errorf("dashboard: scan lead stats: %w", err)
		}
		out.LeadsByStatus[status] = n
		out.TotalLeads += n
	}
	if err := rows.Err(); err != nil {
		return Stats{}, fmt.Errorf("dashboard: lead stats: %w", err)
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE has_3d) FROM projects`,
	).Scan(&out.Projects, &out.Projects3D)
	if err != nil {
		return Stats{}, fmt.Errorf("dashboard: project stats: %w", err)
	}
	return out, nil
}

// LeadCounter is satisfied by leads.Repository.
type LeadCounter interface {
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// RepositoryStats derives Stats from repositories when no SQL database is configured.
type RepositoryStats struct {
	Leads    LeadCounter
	Projects projects.Repository
}

// Stats implements StatsSource.
func (s RepositoryStats) Stats(ctx context.Context) (Stats, error) {
	counts, err := s.Leads.CountByStatus(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("dashboard: lead stats: %w", err)
	}
	out := Stats{LeadsByStatus: map[string]int{}}
	for status, n := range counts {
		out.LeadsByStatus[status] = n
		out.TotalLeads += n
	}
	list, err := s.Projects.List(ctx, projects.OrderCreatedAsc)
	if err != nil {
		return Stats{}, fmt.Errorf("dashboard: project stats: %w", err)
	}
	out.Projects = len(list)
	for _, p := range list {
		if p.Has3D {
			out.Projects3D++
		}
	}
	return out, nil
}
