package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rongwang/timesheet-server/internal/config"
	"github.com/rongwang/timesheet-server/internal/models"
	"github.com/rongwang/timesheet-server/internal/timesheet"
	"github.com/rongwang/timesheet-server/internal/utils"
	"github.com/shopspring/decimal"
)

// Repository interface defines the methods that any repository implementation must satisfy
type Repository interface {
	Ping(ctx context.Context) error

	// User operations
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// Profile operations
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	EnsureProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	GetHourlyRate(ctx context.Context, userID string) (decimal.Decimal, error)
	SetHourlyRate(ctx context.Context, userID string, rate decimal.Decimal) (*models.UserProfile, error)

	// Timesheet operations
	CreateTimesheet(ctx context.Context, ts *models.Timesheet) error
	GetTimesheet(ctx context.Context, userID, timesheetID string) (*models.Timesheet, error)
	GetTimesheetByPeriod(ctx context.Context, userID string, month, year int) (*models.Timesheet, error)
	GetUserTimesheets(ctx context.Context, userID string) ([]models.Timesheet, error)
	DeleteTimesheet(ctx context.Context, userID, timesheetID string) error

	// Entry operations
	AddEntry(ctx context.Context, userID string, entry *models.TimesheetEntry) error
	DeleteEntry(ctx context.Context, userID, timesheetID, entryID string) (bool, error)
	GetTimesheetEntries(ctx context.Context, timesheetID string) ([]models.TimesheetEntry, error)
	GetUserEntries(ctx context.Context, userID string) ([]models.TimesheetEntry, error)
}

// SQLRepository implements the Repository interface on Postgres or SQLite.
// Queries are written with ? placeholders and rebound for the connected driver.
type SQLRepository struct {
	db     *sqlx.DB
	logger *utils.Logger
}

// NewSQLRepository creates a new SQL repository
func NewSQLRepository(db *sqlx.DB, logger *utils.Logger) *SQLRepository {
	if logger == nil {
		logger = utils.NopLogger()
	}
	return &SQLRepository{
		db:     db,
		logger: logger.WithComponent(utils.ComponentStorage),
	}
}

// Ping checks that the database is reachable
func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

const entryColumns = `e.id, e.timesheet_id, e.work_date, e.hours_worked, e.note, e.created_at`

func now() time.Time {
	return time.Now().UTC()
}

// User repository methods

// CreateUser inserts the user together with a zero-rate profile
func (r *SQLRepository) CreateUser(ctx context.Context, user *models.User) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	// Generate a new UUID if not provided
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	ts := now()
	user.CreatedAt = ts
	user.UpdatedAt = ts

	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO users (id, email, name, password, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`), user.ID, user.Email, user.Name, user.Password, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %s: %w", user.Email, timesheet.ErrDuplicate)
		}
		return err
	}

	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO user_profiles (user_id, hourly_rate, updated_at) VALUES (?, ?, ?)
	`), user.ID, decimal.Zero, ts)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *SQLRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := r.db.Rebind(`SELECT * FROM users WHERE email = ?`)

	var user models.User
	err := r.db.GetContext(ctx, &user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", email, timesheet.ErrNotFound)
		}
		return nil, err
	}

	return &user, nil
}

func (r *SQLRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	query := r.db.Rebind(`SELECT * FROM users WHERE id = ?`)

	var user models.User
	err := r.db.GetContext(ctx, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", id, timesheet.ErrNotFound)
		}
		return nil, err
	}

	return &user, nil
}

// Profile repository methods

func (r *SQLRepository) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	query := r.db.Rebind(`SELECT user_id, hourly_rate, updated_at FROM user_profiles WHERE user_id = ?`)

	var profile models.UserProfile
	err := r.db.GetContext(ctx, &profile, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("profile of %s: %w", userID, timesheet.ErrNotFound)
		}
		return nil, err
	}

	return &profile, nil
}

// EnsureProfile returns the user's profile, creating a zero-rate one if missing
func (r *SQLRepository) EnsureProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO user_profiles (user_id, hourly_rate, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO NOTHING
	`), userID, decimal.Zero, now())
	if err != nil {
		return nil, err
	}

	return r.GetProfile(ctx, userID)
}

// GetHourlyRate returns the user's rate, or zero when no profile row exists
func (r *SQLRepository) GetHourlyRate(ctx context.Context, userID string) (decimal.Decimal, error) {
	query := r.db.Rebind(`SELECT hourly_rate FROM user_profiles WHERE user_id = ?`)

	var rate decimal.Decimal
	err := r.db.GetContext(ctx, &rate, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}

	return rate, nil
}

func (r *SQLRepository) SetHourlyRate(ctx context.Context, userID string, rate decimal.Decimal) (*models.UserProfile, error) {
	if err := timesheet.ValidateRate(rate); err != nil {
		return nil, err
	}

	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO user_profiles (user_id, hourly_rate, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET hourly_rate = excluded.hourly_rate, updated_at = excluded.updated_at
	`), userID, rate, now())
	if err != nil {
		return nil, err
	}

	return r.GetProfile(ctx, userID)
}

// Timesheet repository methods

// CreateTimesheet inserts ts. The (user_id, month, year) unique constraint turns
// a concurrent or repeated create into ErrDuplicate.
func (r *SQLRepository) CreateTimesheet(ctx context.Context, ts *models.Timesheet) error {
	// Generate a new UUID if not provided
	if ts.ID == "" {
		ts.ID = uuid.New().String()
	}
	ts.CreatedAt = now()

	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO timesheets (id, user_id, month, year, created_at)
		VALUES (?, ?, ?, ?, ?)
	`), ts.ID, ts.UserID, ts.Month, ts.Year, ts.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			r.logger.DebugContext(ctx, "timesheet period already taken",
				utils.FieldUserID, ts.UserID,
				"month", ts.Month,
				"year", ts.Year,
			)
			return fmt.Errorf("timesheet %d/%d: %w", ts.Month, ts.Year, timesheet.ErrDuplicate)
		}
		return err
	}

	return nil
}

// GetTimesheet loads a timesheet only if userID owns it
func (r *SQLRepository) GetTimesheet(ctx context.Context, userID, timesheetID string) (*models.Timesheet, error) {
	query := r.db.Rebind(`SELECT * FROM timesheets WHERE id = ? AND user_id = ?`)

	var ts models.Timesheet
	err := r.db.GetContext(ctx, &ts, query, timesheetID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("timesheet %s: %w", timesheetID, timesheet.ErrNotFound)
		}
		return nil, err
	}

	return &ts, nil
}

func (r *SQLRepository) GetTimesheetByPeriod(ctx context.Context, userID string, month, year int) (*models.Timesheet, error) {
	query := r.db.Rebind(`SELECT * FROM timesheets WHERE user_id = ? AND month = ? AND year = ?`)

	var ts models.Timesheet
	err := r.db.GetContext(ctx, &ts, query, userID, month, year)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("timesheet %d/%d: %w", month, year, timesheet.ErrNotFound)
		}
		return nil, err
	}

	return &ts, nil
}

// GetUserTimesheets returns the user's timesheets, newest period first
func (r *SQLRepository) GetUserTimesheets(ctx context.Context, userID string) ([]models.Timesheet, error) {
	query := r.db.Rebind(`SELECT * FROM timesheets WHERE user_id = ? ORDER BY year DESC, month DESC`)

	timesheets := []models.Timesheet{}
	err := r.db.SelectContext(ctx, &timesheets, query, userID)
	if err != nil {
		return nil, err
	}

	return timesheets, nil
}

// DeleteTimesheet removes a timesheet owned by userID and all of its entries
func (r *SQLRepository) DeleteTimesheet(ctx context.Context, userID, timesheetID string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	// Delete entries first; the foreign key cascades too, but not every SQLite connection enforces it
	_, err = tx.ExecContext(ctx, tx.Rebind(`
		DELETE FROM timesheet_entries
		WHERE timesheet_id IN (SELECT id FROM timesheets WHERE id = ? AND user_id = ?)
	`), timesheetID, userID)
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM timesheets WHERE id = ? AND user_id = ?`), timesheetID, userID)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("timesheet %s: %w", timesheetID, timesheet.ErrNotFound)
	}

	return tx.Commit()
}

// Entry repository methods

// AddEntry inserts entry only if its timesheet exists and belongs to userID,
// returning ErrNotFound otherwise. The ownership check is part of the insert.
func (r *SQLRepository) AddEntry(ctx context.Context, userID string, entry *models.TimesheetEntry) error {
	if err := timesheet.ValidateHours(entry.HoursWorked); err != nil {
		return err
	}
	if err := timesheet.ValidateNote(entry.Note); err != nil {
		return err
	}

	// Generate a new UUID if not provided
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	entry.CreatedAt = now()

	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO timesheet_entries (id, timesheet_id, work_date, hours_worked, note, created_at)
		SELECT `+r.entryInsertValues()+`
		WHERE EXISTS (SELECT 1 FROM timesheets WHERE id = ? AND user_id = ?)
	`), entry.ID, entry.TimesheetID, entry.Date, entry.HoursWorked, entry.Note, entry.CreatedAt,
		entry.TimesheetID, userID)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		r.logger.With(utils.FieldUserID, userID, utils.FieldTimesheetID, entry.TimesheetID).
			DebugContext(ctx, "entry rejected, timesheet not owned or gone")
		return fmt.Errorf("timesheet %s: %w", entry.TimesheetID, timesheet.ErrNotFound)
	}

	return nil
}

// entryInsertValues is the SELECT list of the scoped entry insert. Postgres
// types bare parameters in a SELECT list as text, so typed columns get casts.
func (r *SQLRepository) entryInsertValues() string {
	if r.db.DriverName() == config.DriverPostgres {
		return "?, ?, CAST(? AS DATE), CAST(? AS NUMERIC), ?, CAST(? AS TIMESTAMP)"
	}
	return "?, ?, ?, ?, ?, ?"
}

// DeleteEntry deletes an entry only when it belongs to timesheetID and that
// timesheet belongs to userID. It reports whether a row was removed.
func (r *SQLRepository) DeleteEntry(ctx context.Context, userID, timesheetID, entryID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		DELETE FROM timesheet_entries
		WHERE id = ? AND timesheet_id = ?
		AND timesheet_id IN (SELECT id FROM timesheets WHERE user_id = ?)
	`), entryID, timesheetID, userID)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

// GetTimesheetEntries returns the entries of one timesheet ordered by date
func (r *SQLRepository) GetTimesheetEntries(ctx context.Context, timesheetID string) ([]models.TimesheetEntry, error) {
	query := r.db.Rebind(`
		SELECT ` + entryColumns + ` FROM timesheet_entries e
		WHERE e.timesheet_id = ?
		ORDER BY e.work_date ASC, e.created_at ASC
	`)

	entries := []models.TimesheetEntry{}
	err := r.db.SelectContext(ctx, &entries, query, timesheetID)
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// GetUserEntries returns every entry of every timesheet the user owns in one join
func (r *SQLRepository) GetUserEntries(ctx context.Context, userID string) ([]models.TimesheetEntry, error) {
	query := r.db.Rebind(`
		SELECT ` + entryColumns + ` FROM timesheet_entries e
		JOIN timesheets t ON t.id = e.timesheet_id
		WHERE t.user_id = ?
		ORDER BY e.work_date ASC, e.created_at ASC
	`)

	entries := []models.TimesheetEntry{}
	err := r.db.SelectContext(ctx, &entries, query, userID)
	if err != nil {
		return nil, err
	}

	return entries, nil
}
