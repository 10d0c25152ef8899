package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/harubot/haru/internal/domain"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS schedules (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		date TEXT NOT NULL,
		time TEXT,
		is_done INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_schedules_user_date ON schedules(user_id, date);

	CREATE TABLE IF NOT EXISTS routines (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		frequency TEXT NOT NULL,
		days_of_week TEXT,
		start_date TEXT NOT NULL,
		end_date TEXT,
		time TEXT,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_routines_user ON routines(user_id, is_active);

	CREATE TABLE IF NOT EXISTS routine_completions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		routine_id INTEGER NOT NULL,
		completion_date TEXT NOT NULL,
		is_done INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		UNIQUE(routine_id, completion_date),
		FOREIGN KEY (routine_id) REFERENCES routines(id)
	);

	CREATE TABLE IF NOT EXISTS reflections (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		type TEXT NOT NULL,
		content TEXT NOT NULL,
		date TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_reflections_user ON reflections(user_id, type, date);

	CREATE TABLE IF NOT EXISTS notifications (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		schedule_id INTEGER,
		notification_type TEXT NOT NULL,
		notification_time TEXT NOT NULL,
		message TEXT NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (schedule_id) REFERENCES schedules(id)
	);
	CREATE INDEX IF NOT EXISTS idx_notifications_active ON notifications(is_active, notification_type, notification_time);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

// AddSchedule inserts a schedule and returns its id.
func (s *SQLiteStore) AddSchedule(ctx context.Context, sch *domain.Schedule) (int64, error) {
	now := time.Now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO schedules (user_id, title, description, date, time, is_done, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 0, ?, ?)`,
		sch.UserID, sch.Title, nullable(sch.Description), sch.Date, nullable(sch.Time), now.Unix(), now.Unix())
	if err != nil {
		return 0, fmt.Errorf("insert schedule: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("schedule id: %w", err)
	}
	sch.ID = id
	sch.CreatedAt = now
	sch.UpdatedAt = now
	return id, nil
}

func scanSchedule(row interface{ Scan(...any) error }) (*domain.Schedule, error) {
	var (
		sch              domain.Schedule
		desc, tm         sql.NullString
		created, updated int64
	)
	err := row.Scan(&sch.ID, &sch.UserID, &sch.Title, &desc, &sch.Date, &tm, &sch.IsDone, &created, &updated)
	if err != nil {
		return nil, err
	}
	sch.Description = desc.String
	sch.Time = tm.String
	sch.CreatedAt = time.Unix(created, 0)
	sch.UpdatedAt = time.Unix(updated, 0)
	return &sch, nil
}

const scheduleColumns = `id, user_id, title, description, date, time, is_done, created_at, updated_at`

// GetSchedule retrieves a schedule owned by the given user.
func (s *SQLiteStore) GetSchedule(ctx context.Context, id int64, userID string) (*domain.Schedule, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+scheduleColumns+` FROM schedules WHERE id = ? AND user_id = ?`, id, userID)
	sch, err := scanSchedule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get schedule: %w", err)
	}
	return sch, nil
}

func (s *SQLiteStore) querySchedules(ctx context.Context, query string, args ...any) ([]*domain.Schedule, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query schedules: %w", err)
	}
	defer rows.Close()

	var out []*domain.Schedule
	for rows.Next() {
		sch, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		out = append(out, sch)
	}
	return out, rows.Err()
}

// ListSchedules lists a user's schedules, optionally restricted to one date.
func (s *SQLiteStore) ListSchedules(ctx context.Context, userID, date string) ([]*domain.Schedule, error) {
	if date != "" {
		return s.querySchedules(ctx,
			`SELECT `+scheduleColumns+` FROM schedules
			 WHERE user_id = ? AND date = ?
			 ORDER BY time ASC, created_at ASC`, userID, date)
	}
	return s.querySchedules(ctx,
		`SELECT `+scheduleColumns+` FROM schedules
		 WHERE user_id = ?
		 ORDER BY date ASC, time ASC`, userID)
}

// ListUndoneSchedules lists not-yet-completed schedules for a date.
func (s *SQLiteStore) ListUndoneSchedules(ctx context.Context, userID, date string) ([]*domain.Schedule, error) {
	return s.querySchedules(ctx,
		`SELECT `+scheduleColumns+` FROM schedules
		 WHERE user_id = ? AND date = ? AND is_done = 0
		 ORDER BY time ASC, created_at ASC`, userID, date)
}

// UpdateSchedule persists title/description/date/time changes.
func (s *SQLiteStore) UpdateSchedule(ctx context.Context, sch *domain.Schedule) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE schedules
		SET title = ?, description = ?, date = ?, time = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		sch.Title, nullable(sch.Description), sch.Date, nullable(sch.Time),
		time.Now().Unix(), sch.ID, sch.UserID)
	if err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSchedule removes a schedule owned by the given user.
func (s *SQLiteStore) DeleteSchedule(ctx context.Context, id int64, userID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM schedules WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkScheduleDone flips is_done to true.
func (s *SQLiteStore) MarkScheduleDone(ctx context.Context, id int64, userID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE schedules SET is_done = 1, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		time.Now().Unix(), id, userID)
	if err != nil {
		return fmt.Errorf("mark schedule done: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark schedule done: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListScheduleOwners returns the distinct user ids owning schedules.
func (s *SQLiteStore) ListScheduleOwners(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT user_id FROM schedules`)
	if err != nil {
		return nil, fmt.Errorf("list schedule owners: %w", err)
	}
	defer rows.Close()

	var owners []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan owner: %w", err)
		}
		owners = append(owners, id)
	}
	return owners, rows.Err()
}

// ScheduleStats counts done and not-done schedules in the date range.
func (s *SQLiteStore) ScheduleStats(ctx context.Context, userID, start, end string) (int, int, error) {
	var done, notDone int
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(is_done = 1), 0),
			COALESCE(SUM(is_done = 0), 0)
		FROM schedules
		WHERE user_id = ? AND date BETWEEN ? AND ?`,
		userID, start, end).Scan(&done, &notDone)
	if err != nil {
		return 0, 0, fmt.Errorf("schedule stats: %w", err)
	}
	return done, notDone, nil
}

// AddRoutine inserts a routine and returns its id.
func (s *SQLiteStore) AddRoutine(ctx context.Context, r *domain.Routine) (int64, error) {
	now := time.Now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO routines (user_id, title, description, frequency, days_of_week, start_date, end_date, time, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.UserID, r.Title, nullable(r.Description), r.Frequency,
		nullable(domain.FormatDaysOfWeek(r.DaysOfWeek)),
		r.StartDate, nullable(r.EndDate), nullable(r.Time), r.IsActive, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("insert routine: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("routine id: %w", err)
	}
	r.ID = id
	r.CreatedAt = now
	return id, nil
}

// ListRoutines lists a user's routines, optionally active ones only.
func (s *SQLiteStore) ListRoutines(ctx context.Context, userID string, activeOnly bool) ([]*domain.Routine, error) {
	query := `
		SELECT id, user_id, title, description, frequency, days_of_week, start_date, end_date, time, is_active, created_at
		FROM routines WHERE user_id = ?`
	if activeOnly {
		query += ` AND is_active = 1`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query routines: %w", err)
	}
	defer rows.Close()

	var out []*domain.Routine
	for rows.Next() {
		var (
			r                       domain.Routine
			desc, days, endDate, tm sql.NullString
			created                 int64
		)
		if err := rows.Scan(&r.ID, &r.UserID, &r.Title, &desc, &r.Frequency,
			&days, &r.StartDate, &endDate, &tm, &r.IsActive, &created); err != nil {
			return nil, fmt.Errorf("scan routine: %w", err)
		}
		r.Description = desc.String
		r.EndDate = endDate.String
		r.Time = tm.String
		r.CreatedAt = time.Unix(created, 0)
		if r.DaysOfWeek, err = domain.ParseDaysOfWeek(days.String); err != nil {
			return nil, fmt.Errorf("routine %d: %w", r.ID, err)
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

// UpsertRoutineCompletion records completion state for a routine on a date.
func (s *SQLiteStore) UpsertRoutineCompletion(ctx context.Context, routineID int64, date string, isDone bool) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO routine_completions (routine_id, completion_date, is_done, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(routine_id, completion_date) DO UPDATE SET is_done = excluded.is_done`,
		routineID, date, isDone, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("upsert routine completion: %w", err)
	}
	return nil
}

// CompletionsForDate returns routine-id -> is_done for the user's routines.
func (s *SQLiteStore) CompletionsForDate(ctx context.Context, userID, date string) (map[int64]bool, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rc.routine_id, rc.is_done
		FROM routine_completions rc
		JOIN routines r ON r.id = rc.routine_id
		WHERE r.user_id = ? AND rc.completion_date = ?`,
		userID, date)
	if err != nil {
		return nil, fmt.Errorf("query completions: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]bool)
	for rows.Next() {
		var (
			id   int64
			done bool
		)
		if err := rows.Scan(&id, &done); err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		out[id] = done
	}
	return out, rows.Err()
}

// AddReflection inserts a reflection and returns its id.
func (s *SQLiteStore) AddReflection(ctx context.Context, r *domain.Reflection) (int64, error) {
	now := time.Now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO reflections (user_id, type, content, date, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		r.UserID, r.Kind, r.Content, r.Date, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("insert reflection: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reflection id: %w", err)
	}
	r.ID = id
	r.CreatedAt = now
	return id, nil
}

// ListReflections lists a user's reflections newest first.
func (s *SQLiteStore) ListReflections(ctx context.Context, userID, kind string, limit int) ([]*domain.Reflection, error) {
	query := `SELECT id, user_id, type, content, date, created_at FROM reflections WHERE user_id = ?`
	args := []any{userID}
	if kind != "" {
		query += ` AND type = ?`
		args = append(args, kind)
	}
	query += ` ORDER BY date DESC, created_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reflections: %w", err)
	}
	defer rows.Close()

	var out []*domain.Reflection
	for rows.Next() {
		var (
			r       domain.Reflection
			created int64
		)
		if err := rows.Scan(&r.ID, &r.UserID, &r.Kind, &r.Content, &r.Date, &created); err != nil {
			return nil, fmt.Errorf("scan reflection: %w", err)
		}
		r.CreatedAt = time.Unix(created, 0)
		out = append(out, &r)
	}
	return out, rows.Err()
}

// HasReflectionInRange reports whether a reflection of the kind exists in the
// inclusive date range.
func (s *SQLiteStore) HasReflectionInRange(ctx context.Context, userID, kind, start, end string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM reflections
		WHERE user_id = ? AND type = ? AND date BETWEEN ? AND ?`,
		userID, kind, start, end).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("has reflection: %w", err)
	}
	return n > 0, nil
}

// CountReflectionDays counts distinct reflection dates in the range.
func (s *SQLiteStore) CountReflectionDays(ctx context.Context, userID, start, end string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT date) FROM reflections
		WHERE user_id = ? AND date BETWEEN ? AND ?`,
		userID, start, end).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count reflection days: %w", err)
	}
	return n, nil
}

// AddNotification inserts a notification and returns its id.
func (s *SQLiteStore) AddNotification(ctx context.Context, n *domain.Notification) (int64, error) {
	now := time.Now()
	var scheduleID any
	if n.ScheduleID != 0 {
		scheduleID = n.ScheduleID
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (user_id, schedule_id, notification_type, notification_time, message, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, 1, ?)`,
		n.UserID, scheduleID, n.Kind, n.FireTime, n.Message, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("insert notification: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("notification id: %w", err)
	}
	n.ID = id
	n.IsActive = true
	n.CreatedAt = now
	return id, nil
}

// DueEndNotifications returns active end-of-day notifications due at the
// given wall-clock minute whose schedule falls on the given date. Schedules
// already marked done do not remind.
func (s *SQLiteStore) DueEndNotifications(ctx context.Context, date, fireTime string) ([]*domain.Notification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT n.id, n.user_id, n.schedule_id, n.notification_type, n.notification_time, n.message, n.is_active, n.created_at
		FROM notifications n
		JOIN schedules s ON s.id = n.schedule_id
		WHERE n.notification_type = ? AND n.is_active = 1
		  AND n.notification_time = ? AND s.date = ? AND s.is_done = 0`,
		domain.NotificationEnd, fireTime, date)
	if err != nil {
		return nil, fmt.Errorf("query due notifications: %w", err)
	}
	defer rows.Close()

	var out []*domain.Notification
	for rows.Next() {
		var (
			n          domain.Notification
			scheduleID sql.NullInt64
			created    int64
		)
		if err := rows.Scan(&n.ID, &n.UserID, &scheduleID, &n.Kind, &n.FireTime, &n.Message, &n.IsActive, &created); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.ScheduleID = scheduleID.Int64
		n.CreatedAt = time.Unix(created, 0)
		out = append(out, &n)
	}
	return out, rows.Err()
}

// DeactivateNotification flips is_active to false.
func (s *SQLiteStore) DeactivateNotification(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET is_active = 0 WHERE id = ? AND is_active = 1`, id)
	if err != nil {
		return fmt.Errorf("deactivate notification: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivate notification: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteScheduleNotifications removes notifications tied to a schedule.
func (s *SQLiteStore) DeleteScheduleNotifications(ctx context.Context, scheduleID int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE schedule_id = ?`, scheduleID)
	if err != nil {
		return fmt.Errorf("delete schedule notifications: %w", err)
	}
	return nil
}
