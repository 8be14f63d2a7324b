package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/blockedby/jobboard/internal/logger"
	"github.com/blockedby/jobboard/internal/sqlutil"
)

// Job represents a job posting row.
type Job struct {
	ID            int
	Title         string
	Salary        *int
	Equity        *float64
	CompanyHandle string
}

// JobFilter holds the optional list filters. The zero value matches
// everything.
type JobFilter struct {
	Title     string // case-insensitive substring match
	MinSalary *int   // inclusive lower bound
	HasEquity bool   // when true, restricts to equity > 0
}

// conditions returns the WHERE fragment and bind values for the filter.
// Each active filter appends one predicate; placeholders are numbered
// from $1. An inactive filter contributes nothing.
func (f JobFilter) conditions() (string, []any) {
	var (
		conds []string
		args  []any
	)

	if f.Title != "" {
		args = append(args, "%"+f.Title+"%")
		conds = append(conds, fmt.Sprintf("title ILIKE $%d", len(args)))
	}
	if f.MinSalary != nil {
		args = append(args, *f.MinSalary)
		conds = append(conds, fmt.Sprintf("salary >= $%d", len(args)))
	}
	if f.HasEquity {
		conds = append(conds, "equity > 0")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// jobColumns maps patch field names to jobs table columns.
// company_handle is deliberately absent: it is not updatable.
var jobColumns = map[string]string{
	"title":  "title",
	"salary": "salary",
	"equity": "equity",
}

// JobPatch holds the updatable subset of job fields. Nil fields are left
// untouched.
type JobPatch struct {
	Title  *string
	Salary *int
	Equity *float64
}

// fields returns the sparse field-map for the partial update builder.
func (p JobPatch) fields() map[string]any {
	fields := make(map[string]any)
	if p.Title != nil {
		fields["title"] = *p.Title
	}
	if p.Salary != nil {
		fields["salary"] = *p.Salary
	}
	if p.Equity != nil {
		fields["equity"] = *p.Equity
	}
	return fields
}

// JobsRepository handles jobs table operations.
type JobsRepository struct {
	db  Querier
	log *logger.Logger
}

// NewJobsRepository creates a new jobs repository.
func NewJobsRepository(db Querier, log *logger.Logger) *JobsRepository {
	return &JobsRepository{
		db:  db,
		log: log,
	}
}

// Create inserts a new job and fills in the store-generated id.
// Constraint violations (e.g. an unknown company handle) propagate
// wrapped but untranslated.
func (r *JobsRepository) Create(ctx context.Context, j *Job) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO jobs (title, salary, equity, company_handle)
		VALUES ($1, $2, $3, $4)
		RETURNING id, title, salary, equity, company_handle
	`, j.Title, j.Salary, j.Equity, j.CompanyHandle).Scan(
		&j.ID, &j.Title, &j.Salary, &j.Equity, &j.CompanyHandle,
	)
	if err != nil {
		return fmt.Errorf("create job: %w", err)
	}

	r.log.Info().
		Int("id", j.ID).
		Str("title", j.Title).
		Str("company", j.CompanyHandle).
		Msg("created job")

	return nil
}

// List returns jobs matching the filter, ordered by title. Rows carry no
// id. No matches yields an empty slice, not an error.
func (r *JobsRepository) List(ctx context.Context, filter JobFilter) ([]*Job, error) {
	where, args := filter.conditions()

	rows, err := r.db.Query(ctx, `
		SELECT title, salary, equity, company_handle
		FROM jobs`+where+`
		ORDER BY title
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]*Job, 0)
	for rows.Next() {
		var j Job
		if err := rows.Scan(&j.Title, &j.Salary, &j.Equity, &j.CompanyHandle); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, &j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	return jobs, nil
}

// GetByID returns a single job. The returned row carries title, salary,
// equity and company handle; the caller already holds the id.
func (r *JobsRepository) GetByID(ctx context.Context, id int) (*Job, error) {
	var j Job
	err := r.db.QueryRow(ctx, `
		SELECT title, salary, equity, company_handle
		FROM jobs
		WHERE id = $1
	`, id).Scan(&j.Title, &j.Salary, &j.Equity, &j.CompanyHandle)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("job %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get job by id: %w", err)
	}
	return &j, nil
}

// Update writes the fields present in the patch and returns the updated
// row. An empty patch fails with ErrBadRequest before any query is
// issued; an unknown id fails with ErrNotFound.
func (r *JobsRepository) Update(ctx context.Context, id int, patch JobPatch) (*Job, error) {
	set, values, err := sqlutil.PartialUpdate(patch.fields(), jobColumns)
	if err != nil {
		if errors.Is(err, sqlutil.ErrNoFields) {
			return nil, fmt.Errorf("update job %d: %w", id, ErrBadRequest)
		}
		return nil, fmt.Errorf("update job: %w", err)
	}

	values = append(values, id)

	var j Job
	err = r.db.QueryRow(ctx, fmt.Sprintf(`
		UPDATE jobs
		SET %s
		WHERE id = $%d
		RETURNING title, salary, equity, company_handle
	`, set, len(values)), values...).Scan(
		&j.Title, &j.Salary, &j.Equity, &j.CompanyHandle,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("job %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("update job: %w", err)
	}

	r.log.Info().
		Int("id", id).
		Str("title", j.Title).
		Msg("updated job")

	return &j, nil
}

// Delete removes a job. An unknown id fails with ErrNotFound.
func (r *JobsRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM jobs WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("job %d: %w", id, ErrNotFound)
	}

	r.log.Info().
		Int("id", id).
		Msg("deleted job")

	return nil
}
