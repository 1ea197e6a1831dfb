/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Persists people, contracts, rate changes, holiday requests and tasks, and
  implements engine.RecordStore plus the administrative CRUD the API layer
  needs. The same patterns apply to PostgreSQL - only minor SQL dialect
  differences.

REPRESENTATION:
  Dates are stored as "2006-01-02" TEXT, hour quantities as TEXT holding the
  decimal's exact string form. Nothing is ever stored as a float.

MUTATION DISCIPLINE:
  Engine-owned writes are exactly three statements: inserting a rate change,
  closing an open-ended rate change, and the guarded UPDATE that increments a
  contract's two carryover columns together. The increment compares against
  the previously read values, so a concurrent rollover fails instead of
  double-applying.

WAL MODE:
  The database is opened with WAL so readers do not block during the
  carryover write.
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/henrydatei/working-time-recording/engine"
)

// Store implements engine.RecordStore and the api directory on SQLite.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath. Use ":memory:" for tests.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

var _ engine.RecordStore = (*Store)(nil)

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS people (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT
	);

	CREATE TABLE IF NOT EXISTS contracts (
		id TEXT PRIMARY KEY,
		person_id TEXT NOT NULL REFERENCES people(id),
		supervisor_id TEXT,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		hours_per_week TEXT NOT NULL,
		carryover_hours TEXT NOT NULL DEFAULT '0',
		carryover_holiday_hours TEXT NOT NULL DEFAULT '0'
	);
	CREATE INDEX IF NOT EXISTS idx_contracts_person ON contracts(person_id);
	CREATE INDEX IF NOT EXISTS idx_contracts_person_dates
		ON contracts(person_id, start_date, end_date);

	CREATE TABLE IF NOT EXISTS rate_changes (
		id TEXT PRIMARY KEY,
		contract_id TEXT NOT NULL REFERENCES contracts(id),
		start_date TEXT NOT NULL,
		end_date TEXT,
		hours_per_week TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_rate_changes_contract ON rate_changes(contract_id);

	CREATE TABLE IF NOT EXISTS holiday_requests (
		id TEXT PRIMARY KEY,
		person_id TEXT NOT NULL REFERENCES people(id),
		from_date TEXT NOT NULL,
		to_date TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_holiday_requests_person ON holiday_requests(person_id);

	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		person_id TEXT NOT NULL REFERENCES people(id),
		assigner_id TEXT,
		task_text TEXT,
		total_hours TEXT NOT NULL,
		worked_hours TEXT NOT NULL,
		deadline TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_tasks_person ON tasks(person_id);
	CREATE INDEX IF NOT EXISTS idx_tasks_person_deadline ON tasks(person_id, deadline);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// RECORD STORE
// =============================================================================

func (s *Store) ContractsByPerson(ctx context.Context, person engine.PersonID) ([]engine.Contract, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, person_id, supervisor_id, start_date, end_date,
		       hours_per_week, carryover_hours, carryover_holiday_hours
		FROM contracts WHERE person_id = ? ORDER BY start_date`, string(person))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) ContractByID(ctx context.Context, id engine.ContractID) (engine.Contract, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, person_id, supervisor_id, start_date, end_date,
		       hours_per_week, carryover_hours, carryover_holiday_hours
		FROM contracts WHERE id = ?`, string(id))
	c, err := scanContract(row)
	if err == sql.ErrNoRows {
		return engine.Contract{}, engine.ErrContractNotFound
	}
	return c, err
}

func (s *Store) RateChangesByContract(ctx context.Context, contract engine.ContractID) ([]engine.RateChange, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, contract_id, start_date, end_date, hours_per_week
		FROM rate_changes WHERE contract_id = ? ORDER BY start_date`, string(contract))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.RateChange
	for rows.Next() {
		var rc engine.RateChange
		var id, contractID, start, hours string
		var end sql.NullString
		if err := rows.Scan(&id, &contractID, &start, &end, &hours); err != nil {
			return nil, err
		}
		rc.ID = engine.RateChangeID(id)
		rc.ContractID = engine.ContractID(contractID)
		if rc.Start, err = engine.ParseDate(start); err != nil {
			return nil, err
		}
		if end.Valid {
			d, err := engine.ParseDate(end.String)
			if err != nil {
				return nil, err
			}
			rc.End = &d
		}
		if rc.HoursPerWeek, err = decimal.NewFromString(hours); err != nil {
			return nil, err
		}
		out = append(out, rc)
	}
	return out, rows.Err()
}

func (s *Store) HolidayRequestsByPerson(ctx context.Context, person engine.PersonID) ([]engine.HolidayRequest, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, person_id, from_date, to_date
		FROM holiday_requests WHERE person_id = ? ORDER BY from_date`, string(person))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.HolidayRequest
	for rows.Next() {
		var r engine.HolidayRequest
		var personID, from, to string
		if err := rows.Scan(&r.ID, &personID, &from, &to); err != nil {
			return nil, err
		}
		r.PersonID = engine.PersonID(personID)
		if r.From, err = engine.ParseDate(from); err != nil {
			return nil, err
		}
		if r.To, err = engine.ParseDate(to); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) TasksByPerson(ctx context.Context, person engine.PersonID) ([]engine.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, person_id, assigner_id, task_text, total_hours, worked_hours, deadline
		FROM tasks WHERE person_id = ? ORDER BY deadline`, string(person))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.Task
	for rows.Next() {
		var t engine.Task
		var personID, assignerID, total, worked, deadline string
		if err := rows.Scan(&t.ID, &personID, &assignerID, &t.Text, &total, &worked, &deadline); err != nil {
			return nil, err
		}
		t.PersonID = engine.PersonID(personID)
		t.AssignerID = engine.PersonID(assignerID)
		if t.TotalHours, err = decimal.NewFromString(total); err != nil {
			return nil, err
		}
		if t.WorkedHours, err = decimal.NewFromString(worked); err != nil {
			return nil, err
		}
		if t.Deadline, err = engine.ParseDate(deadline); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) CreateRateChange(ctx context.Context, change engine.RateChange) error {
	var end any
	if change.End != nil {
		end = change.End.String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rate_changes (id, contract_id, start_date, end_date, hours_per_week)
		VALUES (?, ?, ?, ?, ?)`,
		string(change.ID), string(change.ContractID), change.Start.String(), end,
		change.HoursPerWeek.String())
	return err
}

func (s *Store) CloseRateChange(ctx context.Context, id engine.RateChangeID, end engine.Date) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE rate_changes SET end_date = ? WHERE id = ?`, end.String(), string(id))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return engine.ErrContractNotFound
	}
	return nil
}

// ApplyCarryover increments both carryover columns in one guarded statement.
func (s *Store) ApplyCarryover(ctx context.Context, contract engine.ContractID, hours, holidayHours decimal.Decimal) error {
	current, err := s.ContractByID(ctx, contract)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE contracts
		SET carryover_hours = ?, carryover_holiday_hours = ?
		WHERE id = ? AND carryover_hours = ? AND carryover_holiday_hours = ?`,
		current.CarryoverHours.Add(hours).String(),
		current.CarryoverHolidayHours.Add(holidayHours).String(),
		string(contract),
		current.CarryoverHours.String(),
		current.CarryoverHolidayHours.String())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("carryover for contract %s: concurrent modification", contract)
	}
	return nil
}

// =============================================================================
// DIRECTORY
// =============================================================================

func (s *Store) CreatePerson(ctx context.Context, p engine.Person) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO people (id, name, email) VALUES (?, ?, ?)`,
		string(p.ID), p.Name, p.Email)
	return err
}

func (s *Store) PersonByID(ctx context.Context, id engine.PersonID) (engine.Person, error) {
	var p engine.Person
	var pid string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email FROM people WHERE id = ?`, string(id)).
		Scan(&pid, &p.Name, &p.Email)
	if err == sql.ErrNoRows {
		return engine.Person{}, engine.ErrPersonNotFound
	}
	if err != nil {
		return engine.Person{}, err
	}
	p.ID = engine.PersonID(pid)
	return p, nil
}

func (s *Store) People(ctx context.Context) ([]engine.Person, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, email FROM people ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.Person
	for rows.Next() {
		var p engine.Person
		var id string
		if err := rows.Scan(&id, &p.Name, &p.Email); err != nil {
			return nil, err
		}
		p.ID = engine.PersonID(id)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) CreateContract(ctx context.Context, c engine.Contract) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contracts (id, person_id, supervisor_id, start_date, end_date,
			hours_per_week, carryover_hours, carryover_holiday_hours)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(c.ID), string(c.PersonID), string(c.SupervisorID),
		c.Start.String(), c.End.String(), c.HoursPerWeek.String(),
		c.CarryoverHours.String(), c.CarryoverHolidayHours.String())
	return err
}

func (s *Store) CreateHolidayRequest(ctx context.Context, r engine.HolidayRequest) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO holiday_requests (id, person_id, from_date, to_date)
		VALUES (?, ?, ?, ?)`,
		r.ID, string(r.PersonID), r.From.String(), r.To.String())
	return err
}

func (s *Store) CreateTask(ctx context.Context, t engine.Task) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, person_id, assigner_id, task_text, total_hours, worked_hours, deadline)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, string(t.PersonID), string(t.AssignerID), t.Text,
		t.TotalHours.String(), t.WorkedHours.String(), t.Deadline.String())
	return err
}

// =============================================================================
// SCAN HELPERS
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContract(row rowScanner) (engine.Contract, error) {
	var c engine.Contract
	var id, personID, start, end, hours, carry, carryHoliday string
	var supervisor sql.NullString
	if err := row.Scan(&id, &personID, &supervisor, &start, &end, &hours, &carry, &carryHoliday); err != nil {
		return engine.Contract{}, err
	}
	c.ID = engine.ContractID(id)
	c.PersonID = engine.PersonID(personID)
	c.SupervisorID = engine.PersonID(supervisor.String)

	var err error
	if c.Start, err = engine.ParseDate(start); err != nil {
		return engine.Contract{}, err
	}
	if c.End, err = engine.ParseDate(end); err != nil {
		return engine.Contract{}, err
	}
	if c.HoursPerWeek, err = decimal.NewFromString(hours); err != nil {
		return engine.Contract{}, err
	}
	if c.CarryoverHours, err = decimal.NewFromString(carry); err != nil {
		return engine.Contract{}, err
	}
	if c.CarryoverHolidayHours, err = decimal.NewFromString(carryHoliday); err != nil {
		return engine.Contract{}, err
	}
	return c, nil
}
