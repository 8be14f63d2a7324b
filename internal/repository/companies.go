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

// Company represents a company row. Jobs is filled only by Get.
type Company struct {
	Handle       string
	Name         string
	Description  string
	NumEmployees *int
	LogoURL      *string
	Jobs         []*Job
}

// CompanyFilter holds the optional list filters. The zero value matches
// everything.
type CompanyFilter struct {
	Name         string // case-insensitive substring match
	MinEmployees *int   // inclusive lower bound
	MaxEmployees *int   // inclusive upper bound
}

// conditions returns the WHERE fragment and bind values for the filter.
// Inverted employee bounds fail with ErrBadRequest.
func (f CompanyFilter) conditions() (string, []any, error) {
	if f.MinEmployees != nil && f.MaxEmployees != nil && *f.MinEmployees > *f.MaxEmployees {
		return "", nil, fmt.Errorf("min employees %d greater than max %d: %w",
			*f.MinEmployees, *f.MaxEmployees, ErrBadRequest)
	}

	var (
		conds []string
		args  []any
	)

	if f.Name != "" {
		args = append(args, "%"+f.Name+"%")
		conds = append(conds, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if f.MinEmployees != nil {
		args = append(args, *f.MinEmployees)
		conds = append(conds, fmt.Sprintf("num_employees >= $%d", len(args)))
	}
	if f.MaxEmployees != nil {
		args = append(args, *f.MaxEmployees)
		conds = append(conds, fmt.Sprintf("num_employees <= $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

// companyColumns maps patch field names to companies table columns.
var companyColumns = map[string]string{
	"name":         "name",
	"description":  "description",
	"numEmployees": "num_employees",
	"logoUrl":      "logo_url",
}

// CompanyPatch holds the updatable subset of company fields. Nil fields
// are left untouched. The handle is immutable.
type CompanyPatch struct {
	Name         *string
	Description  *string
	NumEmployees *int
	LogoURL      *string
}

func (p CompanyPatch) fields() map[string]any {
	fields := make(map[string]any)
	if p.Name != nil {
		fields["name"] = *p.Name
	}
	if p.Description != nil {
		fields["description"] = *p.Description
	}
	if p.NumEmployees != nil {
		fields["numEmployees"] = *p.NumEmployees
	}
	if p.LogoURL != nil {
		fields["logoUrl"] = *p.LogoURL
	}
	return fields
}

// CompaniesRepository handles companies table operations.
type CompaniesRepository struct {
	db  Querier
	log *logger.Logger
}

// NewCompaniesRepository creates a new companies repository.
func NewCompaniesRepository(db Querier, log *logger.Logger) *CompaniesRepository {
	return &CompaniesRepository{
		db:  db,
		log: log,
	}
}

// Create inserts a new company. A handle that already exists fails with
// ErrBadRequest.
func (r *CompaniesRepository) Create(ctx context.Context, c *Company) error {
	var existing string
	err := r.db.QueryRow(ctx, `
		SELECT handle FROM companies WHERE handle = $1
	`, c.Handle).Scan(&existing)
	if err == nil {
		return fmt.Errorf("duplicate company %s: %w", c.Handle, ErrBadRequest)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("check company exists: %w", err)
	}

	err = r.db.QueryRow(ctx, `
		INSERT INTO companies (handle, name, description, num_employees, logo_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING handle, name, description, num_employees, logo_url
	`, c.Handle, c.Name, c.Description, c.NumEmployees, c.LogoURL).Scan(
		&c.Handle, &c.Name, &c.Description, &c.NumEmployees, &c.LogoURL,
	)
	if err != nil {
		return fmt.Errorf("create company: %w", err)
	}

	r.log.Info().
		Str("handle", c.Handle).
		Str("name", c.Name).
		Msg("created company")

	return nil
}

// List returns companies matching the filter, ordered by name. No
// matches yields an empty slice, not an error.
func (r *CompaniesRepository) List(ctx context.Context, filter CompanyFilter) ([]*Company, error) {
	where, args, err := filter.conditions()
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT handle, name, description, num_employees, logo_url
		FROM companies`+where+`
		ORDER BY name
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	companies := make([]*Company, 0)
	for rows.Next() {
		var c Company
		if err := rows.Scan(&c.Handle, &c.Name, &c.Description, &c.NumEmployees, &c.LogoURL); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		companies = append(companies, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}

	return companies, nil
}

// Get returns a single company together with its job postings.
func (r *CompaniesRepository) Get(ctx context.Context, handle string) (*Company, error) {
	var c Company
	err := r.db.QueryRow(ctx, `
		SELECT handle, name, description, num_employees, logo_url
		FROM companies
		WHERE handle = $1
	`, handle).Scan(&c.Handle, &c.Name, &c.Description, &c.NumEmployees, &c.LogoURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("company %s: %w", handle, ErrNotFound)
		}
		return nil, fmt.Errorf("get company: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, title, salary, equity
		FROM jobs
		WHERE company_handle = $1
		ORDER BY title
	`, handle)
	if err != nil {
		return nil, fmt.Errorf("get company jobs: %w", err)
	}
	defer rows.Close()

	c.Jobs = make([]*Job, 0)
	for rows.Next() {
		j := Job{CompanyHandle: handle}
		if err := rows.Scan(&j.ID, &j.Title, &j.Salary, &j.Equity); err != nil {
			return nil, fmt.Errorf("scan company job: %w", err)
		}
		c.Jobs = append(c.Jobs, &j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get company jobs: %w", err)
	}

	return &c, nil
}

// Update writes the fields present in the patch and returns the updated
// row. An empty patch fails with ErrBadRequest; an unknown handle fails
// with ErrNotFound.
func (r *CompaniesRepository) Update(ctx context.Context, handle string, patch CompanyPatch) (*Company, error) {
	set, values, err := sqlutil.PartialUpdate(patch.fields(), companyColumns)
	if err != nil {
		if errors.Is(err, sqlutil.ErrNoFields) {
			return nil, fmt.Errorf("update company %s: %w", handle, ErrBadRequest)
		}
		return nil, fmt.Errorf("update company: %w", err)
	}

	values = append(values, handle)

	var c Company
	err = r.db.QueryRow(ctx, fmt.Sprintf(`
		UPDATE companies
		SET %s
		WHERE handle = $%d
		RETURNING handle, name, description, num_employees, logo_url
	`, set, len(values)), values...).Scan(
		&c.Handle, &c.Name, &c.Description, &c.NumEmployees, &c.LogoURL,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("company %s: %w", handle, ErrNotFound)
		}
		return nil, fmt.Errorf("update company: %w", err)
	}

	r.log.Info().
		Str("handle", handle).
		Msg("updated company")

	return &c, nil
}

// Delete removes a company and, via the FK cascade, its jobs.
func (r *CompaniesRepository) Delete(ctx context.Context, handle string) error {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM companies WHERE handle = $1
	`, handle)
	if err != nil {
		return fmt.Errorf("delete company: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("company %s: %w", handle, ErrNotFound)
	}

	r.log.Info().
		Str("handle", handle).
		Msg("deleted company")

	return nil
}
