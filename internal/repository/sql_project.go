package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/taskpilot/internal/db"
	"github.com/alexanderramin/taskpilot/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// SQLProjectRepo implements ProjectRepo on SQLite or PostgreSQL. Create
// issues several writes; run it through a UnitOfWork for atomicity.
type SQLProjectRepo struct {
	db db.DBTX
}

// NewSQLProjectRepo creates a repo over a database or a transaction.
func NewSQLProjectRepo(conn db.DBTX) *SQLProjectRepo {
	return &SQLProjectRepo{db: conn}
}

const projectColumns = `id, name, status, completion, delayed_tasks, total_tasks, created_at, updated_at`

type projectRow struct {
	ID           string `db:"id"`
	Name         string `db:"name"`
	Status       string `db:"status"`
	Completion   int    `db:"completion"`
	DelayedTasks int    `db:"delayed_tasks"`
	TotalTasks   int    `db:"total_tasks"`
	CreatedAt    string `db:"created_at"`
	UpdatedAt    string `db:"updated_at"`
}

func (r projectRow) toDomain() *domain.Project {
	return &domain.Project{
		ID:           r.ID,
		Name:         r.Name,
		Status:       domain.ProjectStatus(r.Status),
		Completion:   r.Completion,
		DelayedTasks: r.DelayedTasks,
		TotalTasks:   r.TotalTasks,
		CreatedAt:    parseTime(r.CreatedAt),
		UpdatedAt:    parseTime(r.UpdatedAt),
	}
}

func (r projectRow) toSummary() domain.ProjectSummary {
	return domain.ProjectSummary{
		Name:       r.Name,
		Status:     domain.ProjectStatus(r.Status),
		Completion: r.Completion,
		TotalTasks: r.TotalTasks,
		CreatedAt:  parseTime(r.CreatedAt),
	}
}

type memberRow struct {
	Team          string         `db:"team"`
	TaskCount     int            `db:"task_count"`
	Name          sql.NullString `db:"name"`
	AssignedTasks sql.NullInt64  `db:"assigned_tasks"`
}

func (r *SQLProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	key := nameKey(p.Name)

	var taken int
	if err := sqlx.GetContext(ctx, r.db, &taken,
		r.db.Rebind(`SELECT COUNT(*) FROM projects WHERE name_key = ?`), key); err != nil {
		return fmt.Errorf("checking project name: %w", err)
	}
	if taken > 0 {
		return fmt.Errorf("project %q: %w", p.Name, ErrDuplicate)
	}

	status := p.Status
	if status == "" {
		status = domain.StatusCreated
	}
	query := `INSERT INTO projects (id, name, name_key, status, completion, delayed_tasks, total_tasks, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		p.ID,
		strings.TrimSpace(p.Name),
		key,
		string(status),
		p.Completion,
		p.DelayedTasks,
		p.TotalTasks,
		formatTime(p.CreatedAt),
		formatTime(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting project: %w", err)
	}

	for i, ta := range p.Allocations {
		allocID := uuid.New().String()
		_, err := r.db.ExecContext(ctx,
			r.db.Rebind(`INSERT INTO allocations (id, project_id, team, task_count, sort_order) VALUES (?, ?, ?, ?, ?)`),
			allocID, p.ID, ta.Team, ta.Count, i)
		if err != nil {
			return fmt.Errorf("inserting allocation %q: %w", ta.Team, err)
		}
		for j, person := range ta.People {
			_, err := r.db.ExecContext(ctx,
				r.db.Rebind(`INSERT INTO team_members (id, allocation_id, name, assigned_tasks, sort_order) VALUES (?, ?, ?, ?, ?)`),
				uuid.New().String(), allocID, person, ta.Assignments[person], j)
			if err != nil {
				return fmt.Errorf("inserting team member %q: %w", person, err)
			}
		}
	}
	return nil
}

func (r *SQLProjectRepo) GetByName(ctx context.Context, name string) (*domain.Project, error) {
	var row projectRow
	err := sqlx.GetContext(ctx, r.db, &row,
		r.db.Rebind(`SELECT `+projectColumns+` FROM projects WHERE name_key = ?`), nameKey(name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting project: %w", err)
	}
	return r.withAllocations(ctx, row.toDomain())
}

func (r *SQLProjectRepo) FindByNamePrefix(ctx context.Context, text string) (*domain.Project, error) {
	key := nameKey(text)
	query := `SELECT ` + projectColumns + ` FROM projects
		WHERE SUBSTR(CAST(? AS TEXT), 1, LENGTH(name_key)) = name_key
		  AND (LENGTH(CAST(? AS TEXT)) = LENGTH(name_key) OR SUBSTR(CAST(? AS TEXT), LENGTH(name_key) + 1, 1) = ' ')
		ORDER BY LENGTH(name_key) DESC
		LIMIT 1`
	var row projectRow
	err := sqlx.GetContext(ctx, r.db, &row, r.db.Rebind(query), key, key, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project matching %q: %w", text, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("finding project by prefix: %w", err)
	}
	return r.withAllocations(ctx, row.toDomain())
}

func (r *SQLProjectRepo) List(ctx context.Context) ([]domain.ProjectSummary, error) {
	var rows []projectRow
	err := sqlx.SelectContext(ctx, r.db, &rows,
		`SELECT `+projectColumns+` FROM projects ORDER BY created_at DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return summaries(rows), nil
}

func (r *SQLProjectRepo) Search(ctx context.Context, fragment string) ([]domain.ProjectSummary, error) {
	var rows []projectRow
	err := sqlx.SelectContext(ctx, r.db, &rows,
		r.db.Rebind(`SELECT `+projectColumns+` FROM projects WHERE name_key LIKE ? ESCAPE '\' ORDER BY created_at DESC, name`),
		containsPattern(fragment))
	if err != nil {
		return nil, fmt.Errorf("searching projects: %w", err)
	}
	return summaries(rows), nil
}

func (r *SQLProjectRepo) UpdateFields(ctx context.Context, name string, u *domain.UpdateFields) (*domain.Project, error) {
	sets := []string{"updated_at = ?"}
	args := []any{nowUTC()}
	if u != nil {
		if u.Status != nil {
			sets = append(sets, "status = ?")
			args = append(args, string(*u.Status))
		}
		if u.Completion != nil {
			sets = append(sets, "completion = ?")
			args = append(args, *u.Completion)
		}
		if u.DelayedTasks != nil {
			sets = append(sets, "delayed_tasks = ?")
			args = append(args, *u.DelayedTasks)
		}
	}
	args = append(args, nameKey(name))

	query := `UPDATE projects SET ` + strings.Join(sets, ", ") + ` WHERE name_key = ?`
	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("updating project: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("project %q: %w", name, ErrNotFound)
	}
	return r.GetByName(ctx, name)
}

func (r *SQLProjectRepo) Delete(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM projects WHERE name_key = ?`), nameKey(name))
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("project %q: %w", name, ErrNotFound)
	}
	return nil
}

// withAllocations loads allocations and members in stored order.
func (r *SQLProjectRepo) withAllocations(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	query := `SELECT a.team, a.task_count, m.name, m.assigned_tasks
		FROM allocations a
		LEFT JOIN team_members m ON m.allocation_id = a.id
		WHERE a.project_id = ?
		ORDER BY a.sort_order, m.sort_order`
	var rows []memberRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, r.db.Rebind(query), p.ID); err != nil {
		return nil, fmt.Errorf("loading allocations: %w", err)
	}

	for _, row := range rows {
		ta, ok := p.Allocations.Get(row.Team)
		if !ok {
			ta = domain.TeamAllocation{
				Team:        row.Team,
				Count:       row.TaskCount,
				People:      []string{},
				Assignments: map[string]int{},
			}
		}
		if row.Name.Valid {
			ta.People = append(ta.People, row.Name.String)
			ta.Assignments[row.Name.String] = int(row.AssignedTasks.Int64)
		}
		p.Allocations.Set(ta)
	}
	return p, nil
}

func summaries(rows []projectRow) []domain.ProjectSummary {
	out := make([]domain.ProjectSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toSummary())
	}
	return out
}
