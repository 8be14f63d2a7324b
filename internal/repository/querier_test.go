package repository

import (
	"context"
	"fmt"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeQuerier scripts store responses so repositories can be exercised
// without a database. QueryRow pops scripted rows in order; Query serves
// the rows slice once. Every statement and its bind values are recorded.
type fakeQuerier struct {
	sqls []string
	args [][]any

	rowQueue []scriptedRow
	rows     [][]any
	queryErr error
	execTag  pgconn.CommandTag
	execErr  error
}

type scriptedRow struct {
	vals []any
	err  error
}

func (f *fakeQuerier) pushRow(vals []any, err error) {
	f.rowQueue = append(f.rowQueue, scriptedRow{vals: vals, err: err})
}

func (f *fakeQuerier) record(sql string, args []any) {
	f.sqls = append(f.sqls, sql)
	f.args = append(f.args, args)
}

func (f *fakeQuerier) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.record(sql, args)
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return &fakeRows{rows: f.rows}, nil
}

func (f *fakeQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.record(sql, args)
	if len(f.rowQueue) == 0 {
		return &fakeRow{err: pgx.ErrNoRows}
	}
	row := f.rowQueue[0]
	f.rowQueue = f.rowQueue[1:]
	return &fakeRow{vals: row.vals, err: row.err}
}

func (f *fakeQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.record(sql, args)
	return f.execTag, f.execErr
}

type fakeRow struct {
	vals []any
	err  error
}

func (r *fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return scanInto(dest, r.vals)
}

type fakeRows struct {
	rows [][]any
	idx  int
}

func (r *fakeRows) Next() bool {
	r.idx++
	return r.idx <= len(r.rows)
}

func (r *fakeRows) Scan(dest ...any) error {
	return scanInto(dest, r.rows[r.idx-1])
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return nil, nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

// scanInto assigns scripted values to scan destinations. A nil value
// zeroes the destination, mirroring a SQL NULL into a nil pointer.
func scanInto(dest []any, src []any) error {
	if len(dest) != len(src) {
		return fmt.Errorf("scan: %d destinations, %d values", len(dest), len(src))
	}
	for i, v := range src {
		d := reflect.ValueOf(dest[i]).Elem()
		if v == nil {
			d.Set(reflect.Zero(d.Type()))
			continue
		}
		sv := reflect.ValueOf(v)
		switch {
		case sv.Type() == d.Type():
			d.Set(sv)
		case d.Kind() == reflect.Pointer && sv.Type() == d.Type().Elem():
			p := reflect.New(d.Type().Elem())
			p.Elem().Set(sv)
			d.Set(p)
		default:
			return fmt.Errorf("scan: cannot assign %T to %T", v, dest[i])
		}
	}
	return nil
}
