package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"onboard/internal/onboarding/models"
	"onboard/internal/sentinel"
	id "onboard/pkg/domain"
)

const selectColumns = `id, user_id, status, rejection_feedback, version, form, documents, created_at, updated_at`

// PostgresStore persists applications in PostgreSQL. The applicant content
// and the document list are JSONB columns; status and version are columns so
// review queries and optimistic updates stay plain SQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, app *models.Application) error {
	if app == nil {
		return fmt.Errorf("application is required")
	}
	form, docs, err := marshalColumns(app)
	if err != nil {
		return err
	}
	if app.Version == 0 {
		app.Version = 1
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO onboarding_applications (id, user_id, status, rejection_feedback, version, form, documents, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		uuid.UUID(app.ID),
		uuid.UUID(app.UserID),
		string(app.Status),
		app.RejectionFeedback,
		app.Version,
		form,
		docs,
		app.CreatedAt,
		app.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("application for user %s: %w", app.UserID, sentinel.ErrAlreadyUsed)
		}
		return wrapPgErr(err, "create application")
	}
	return nil
}

// Update writes app only while the row is still at app.Version.
func (s *PostgresStore) Update(ctx context.Context, app *models.Application) error {
	if app == nil {
		return fmt.Errorf("application is required")
	}
	form, docs, err := marshalColumns(app)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE onboarding_applications
		SET status = $3, rejection_feedback = $4, form = $5, documents = $6, updated_at = $7, version = version + 1
		WHERE id = $1 AND version = $2
	`,
		uuid.UUID(app.ID),
		app.Version,
		string(app.Status),
		app.RejectionFeedback,
		form,
		docs,
		app.UpdatedAt,
	)
	if err != nil {
		return wrapPgErr(err, "update application")
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update application rows: %w", err)
	}
	if rows == 0 {
		var exists bool
		if err := s.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM onboarding_applications WHERE id = $1)`,
			uuid.UUID(app.ID),
		).Scan(&exists); err != nil {
			return wrapPgErr(err, "check application")
		}
		if !exists {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("application %s changed since version %d: %w", app.ID, app.Version, sentinel.ErrConflict)
	}
	app.Version++
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, appID id.ApplicationID) (*models.Application, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM onboarding_applications WHERE id = $1`,
		uuid.UUID(appID),
	)
	app, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, wrapPgErr(err, "find application by id")
	}
	return app, nil
}

func (s *PostgresStore) FindByUserID(ctx context.Context, userID id.UserID) (*models.Application, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM onboarding_applications WHERE user_id = $1`,
		uuid.UUID(userID),
	)
	app, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, wrapPgErr(err, "find application by user")
	}
	return app, nil
}

func (s *PostgresStore) ListByStatus(ctx context.Context, status models.Status) ([]*models.Application, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM onboarding_applications WHERE status = $1 ORDER BY updated_at DESC, id`,
		string(status),
	)
	if err != nil {
		return nil, wrapPgErr(err, "list applications")
	}
	defer rows.Close()

	apps := make([]*models.Application, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapPgErr(err, "list applications")
	}
	return apps, nil
}

func marshalColumns(app *models.Application) (form, docs []byte, err error) {
	form, err = json.Marshal(toFormRecord(app))
	if err != nil {
		return nil, nil, fmt.Errorf("marshal application form: %w", err)
	}
	docs, err = json.Marshal(toDocumentRecords(app.Documents))
	if err != nil {
		return nil, nil, fmt.Errorf("marshal application documents: %w", err)
	}
	return form, docs, nil
}

type applicationRow interface {
	Scan(dest ...any) error
}

func scanApplication(row applicationRow) (*models.Application, error) {
	var (
		app             models.Application
		appID, userID   uuid.UUID
		status          string
		formRaw, docRaw []byte
	)
	if err := row.Scan(&appID, &userID, &status, &app.RejectionFeedback, &app.Version,
		&formRaw, &docRaw, &app.CreatedAt, &app.UpdatedAt); err != nil {
		return nil, err
	}
	app.ID = id.ApplicationID(appID)
	app.UserID = id.UserID(userID)
	app.Status = models.Status(status)
	app.CreatedAt = app.CreatedAt.UTC()
	app.UpdatedAt = app.UpdatedAt.UTC()

	var form formRecord
	if err := json.Unmarshal(formRaw, &form); err != nil {
		return nil, fmt.Errorf("decode application form: %w", err)
	}
	if err := form.applyTo(&app); err != nil {
		return nil, fmt.Errorf("decode application form: %w", err)
	}
	var docs []documentRecord
	if err := json.Unmarshal(docRaw, &docs); err != nil {
		return nil, fmt.Errorf("decode application documents: %w", err)
	}
	app.Documents = fromDocumentRecords(docs)
	return &app, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// wrapPgErr marks connectivity failures as sentinel.ErrUnavailable.
func wrapPgErr(err error, op string) error {
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%s: %w: %v", op, sentinel.ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
