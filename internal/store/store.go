// internal/store/store.go
//
// Package store is the persistence layer for clearance applications and
// administrator accounts. It owns the applications/admins schema, the
// reference-number format, and the status-transition rules. Status updates
// and document attachment are single conditional UPDATE statements so two
// concurrent administrators cannot lose each other's writes.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"clearance-portal/internal/common/logger"
	"clearance-portal/internal/common/metrics"
	"clearance-portal/internal/models"

	"github.com/google/uuid"
)

var (
	ErrQueryFailed     = errors.New("QUERY_EXECUTION_FAILED")
	ErrRowDecodeFailed = errors.New("ROW_DECODE_FAILED")
	ErrInvalidStatus   = errors.New("INVALID_STATUS")
	ErrSchemaInit      = errors.New("SCHEMA_INIT_FAILED")
)

const (
	// DefaultAdminUsername is the account seeded at initialization.
	DefaultAdminUsername = "admin"

	defaultAdminPassword = "admin123"
	defaultAdminFullName = "System Administrator"
)

const applicationColumns = `id, reference_number, full_name, id_number, phone_number, email,
		property_address, stand_number, property_type, reason,
		documents, uploaded_documents, status,
		submitted_date, review_date, completed_date, admin_notes, reviewed_by`

// Store is the application store. Construct with New and call Init before
// serving requests; Init is fatal-on-error so a partially created schema
// never serves traffic.
type Store struct {
	db            *sql.DB
	logger        logger.Logger
	epoch         int
	adminPassword string
}

// Option configures a Store.
type Option func(*Store)

// WithReferenceEpoch fixes the year embedded in generated reference numbers.
func WithReferenceEpoch(year int) Option {
	return func(s *Store) { s.epoch = year }
}

// WithDefaultAdminPassword overrides the seeded admin account password.
func WithDefaultAdminPassword(password string) Option {
	return func(s *Store) { s.adminPassword = password }
}

// New constructs a Store on an established database handle.
func New(db *sql.DB, log logger.Logger, opts ...Option) *Store {
	s := &Store{
		db:            db,
		logger:        log.WithFields(map[string]interface{}{"component": "store"}),
		epoch:         time.Now().UTC().Year(),
		adminPassword: defaultAdminPassword,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init verifies the connection, creates the schema when absent, and seeds
// the default admin account. Every error here is fatal to the caller.
func (s *Store) Init(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: ping failed: %v", ErrSchemaInit, err)
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS applications (
			id TEXT PRIMARY KEY,
			reference_number TEXT UNIQUE NOT NULL,
			full_name TEXT NOT NULL,
			id_number TEXT NOT NULL,
			phone_number TEXT NOT NULL,
			email TEXT,
			property_address TEXT NOT NULL,
			stand_number TEXT NOT NULL,
			property_type TEXT NOT NULL,
			reason TEXT NOT NULL,
			documents JSONB NOT NULL DEFAULT '[]',
			uploaded_documents JSONB NOT NULL DEFAULT '[]',
			status TEXT NOT NULL,
			submitted_date TIMESTAMPTZ NOT NULL,
			review_date TIMESTAMPTZ,
			completed_date TIMESTAMPTZ,
			admin_notes TEXT,
			reviewed_by TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS admins (
			id TEXT PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			password TEXT NOT NULL,
			full_name TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS audit_log (
			id BIGSERIAL PRIMARY KEY,
			event_type TEXT NOT NULL,
			resource_type TEXT NOT NULL,
			resource_id TEXT NOT NULL,
			details JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: create table: %v", ErrSchemaInit, err)
		}
	}

	// Idempotent seed: the admin row is only created when absent.
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO admins (id, username, password, full_name, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (username) DO NOTHING`,
		uuid.New().String(),
		DefaultAdminUsername,
		s.adminPassword,
		defaultAdminFullName,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("%w: seed default admin: %v", ErrSchemaInit, err)
	}

	s.logger.Info("store initialized", map[string]interface{}{
		"referenceEpoch": s.epoch,
	})
	return nil
}

// CreateApplication persists a new clearance application. The status is
// always submitted, the reference number is generated here, and review and
// completion timestamps start null. Reference-number collisions are not
// retried; they surface as the datastore's unique-constraint error.
func (s *Store) CreateApplication(ctx context.Context, input *models.ApplicationInput) (app *models.Application, err error) {
	defer func(start time.Time) { metrics.ObserveStoreOperation("create_application", start, err) }(time.Now())

	documents := input.Documents
	if documents == nil {
		documents = []string{}
	}
	uploaded := input.UploadedDocuments
	if uploaded == nil {
		uploaded = []string{}
	}

	documentsJSON, err := json.Marshal(documents)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal documents: %v", ErrQueryFailed, err)
	}
	uploadedJSON, err := json.Marshal(uploaded)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal uploaded documents: %v", ErrQueryFailed, err)
	}

	app = &models.Application{
		ID:                uuid.New().String(),
		ReferenceNumber:   newReferenceNumber(s.epoch),
		FullName:          input.FullName,
		IDNumber:          input.IDNumber,
		PhoneNumber:       input.PhoneNumber,
		Email:             input.Email,
		PropertyAddress:   input.PropertyAddress,
		StandNumber:       input.StandNumber,
		PropertyType:      input.PropertyType,
		Reason:            input.Reason,
		Documents:         documents,
		UploadedDocuments: uploaded,
		Status:            models.StatusSubmitted,
		SubmittedDate:     time.Now().UTC(),
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO applications (
			id, reference_number, full_name, id_number, phone_number, email,
			property_address, stand_number, property_type, reason,
			documents, uploaded_documents, status, submitted_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		app.ID,
		app.ReferenceNumber,
		app.FullName,
		app.IDNumber,
		app.PhoneNumber,
		nullableString(app.Email),
		app.PropertyAddress,
		app.StandNumber,
		app.PropertyType,
		app.Reason,
		documentsJSON,
		uploadedJSON,
		string(app.Status),
		app.SubmittedDate,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: insert application: %v", ErrQueryFailed, err)
	}

	s.auditEvent(ctx, "application_created", app.ID, map[string]interface{}{
		"referenceNumber": app.ReferenceNumber,
		"standNumber":     app.StandNumber,
	})

	s.logger.Info("application created", map[string]interface{}{
		"applicationId":   app.ID,
		"referenceNumber": app.ReferenceNumber,
	})

	return app, nil
}

// GetApplication returns the application with the given id, or (nil, nil)
// when no such record exists.
func (s *Store) GetApplication(ctx context.Context, id string) (app *models.Application, err error) {
	defer func(start time.Time) { metrics.ObserveStoreOperation("get_application", start, err) }(time.Now())

	row := s.db.QueryRowContext(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
	return s.scanApplication(row)
}

// GetApplicationByReference returns the application with the given tracking
// code, or (nil, nil) when no such record exists.
func (s *Store) GetApplicationByReference(ctx context.Context, ref string) (app *models.Application, err error) {
	defer func(start time.Time) { metrics.ObserveStoreOperation("get_application_by_reference", start, err) }(time.Now())

	row := s.db.QueryRowContext(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE reference_number = $1`, ref)
	return s.scanApplication(row)
}

// GetAllApplications returns every application, newest submission first.
func (s *Store) GetAllApplications(ctx context.Context) (apps []*models.Application, err error) {
	defer func(start time.Time) { metrics.ObserveStoreOperation("get_all_applications", start, err) }(time.Now())

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+applicationColumns+` FROM applications ORDER BY submitted_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("%w: list applications: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	apps = []*models.Application{}
	for rows.Next() {
		app, err := decodeApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list applications: %v", ErrQueryFailed, err)
	}
	return apps, nil
}

// UpdateApplicationStatus applies an administrator decision in one
// conditional UPDATE: review_date is first-write-wins, completed_date is
// stamped whenever the new status is a decision state, and the free-text
// fields overwrite only when the update supplies them. Returns (nil, nil)
// when the application does not exist. Terminal states are deliberately not
// guarded against further transitions.
func (s *Store) UpdateApplicationStatus(ctx context.Context, id string, upd models.StatusUpdate) (app *models.Application, err error) {
	defer func(start time.Time) { metrics.ObserveStoreOperation("update_application_status", start, err) }(time.Now())

	if !upd.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, upd.Status)
	}

	now := time.Now().UTC()
	row := s.db.QueryRowContext(ctx, `
		UPDATE applications SET
			status = $2,
			review_date = COALESCE(review_date, $3),
			completed_date = CASE WHEN $2 IN ('approved', 'rejected') THEN $3 ELSE completed_date END,
			reviewed_by = COALESCE($4, reviewed_by),
			admin_notes = COALESCE($5, admin_notes),
			reason = COALESCE($6, reason)
		WHERE id = $1
		RETURNING `+applicationColumns,
		id,
		string(upd.Status),
		now,
		upd.ReviewedBy,
		upd.AdminNotes,
		upd.Reason,
	)

	app, err = s.scanApplication(row)
	if err != nil || app == nil {
		return app, err
	}

	metrics.ApplicationsByStatus.WithLabelValues(string(upd.Status)).Inc()
	s.auditEvent(ctx, "status_updated", app.ID, map[string]interface{}{
		"status":     string(upd.Status),
		"reviewedBy": app.ReviewedBy,
	})

	s.logger.Info("application status updated", map[string]interface{}{
		"applicationId": app.ID,
		"status":        string(upd.Status),
	})

	return app, nil
}

// AttachDocuments appends document references to both document lists,
// forces the application into under_review, and stamps review_date with the
// attachment time. The append happens inside the datastore so concurrent
// attachments cannot drop each other's documents. Returns (nil, nil) when
// the application does not exist.
func (s *Store) AttachDocuments(ctx context.Context, id string, documents []string) (app *models.Application, err error) {
	defer func(start time.Time) { metrics.ObserveStoreOperation("attach_documents", start, err) }(time.Now())

	documentsJSON, err := json.Marshal(documents)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal documents: %v", ErrQueryFailed, err)
	}

	now := time.Now().UTC()
	row := s.db.QueryRowContext(ctx, `
		UPDATE applications SET
			documents = documents || $2::jsonb,
			uploaded_documents = uploaded_documents || $2::jsonb,
			status = 'under_review',
			review_date = $3
		WHERE id = $1
		RETURNING `+applicationColumns,
		id,
		documentsJSON,
		now,
	)

	app, err = s.scanApplication(row)
	if err != nil || app == nil {
		return app, err
	}

	s.auditEvent(ctx, "documents_attached", app.ID, map[string]interface{}{
		"count": len(documents),
	})

	s.logger.Info("documents attached", map[string]interface{}{
		"applicationId": app.ID,
		"count":         len(documents),
	})

	return app, nil
}

// CreateAdmin persists a new administrator account. Duplicate usernames
// surface as the datastore's unique-constraint error.
func (s *Store) CreateAdmin(ctx context.Context, input *models.AdminInput) (admin *models.Admin, err error) {
	defer func(start time.Time) { metrics.ObserveStoreOperation("create_admin", start, err) }(time.Now())

	admin = &models.Admin{
		ID:        uuid.New().String(),
		Username:  input.Username,
		Password:  input.Password,
		FullName:  input.FullName,
		CreatedAt: time.Now().UTC(),
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO admins (id, username, password, full_name, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		admin.ID, admin.Username, admin.Password, admin.FullName, admin.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: insert admin: %v", ErrQueryFailed, err)
	}

	s.logger.Info("admin created", map[string]interface{}{
		"adminId":  admin.ID,
		"username": admin.Username,
	})

	return admin, nil
}

// GetAdmin returns the admin with the given id, or (nil, nil) when absent.
func (s *Store) GetAdmin(ctx context.Context, id string) (admin *models.Admin, err error) {
	defer func(start time.Time) { metrics.ObserveStoreOperation("get_admin", start, err) }(time.Now())

	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, password, full_name, created_at FROM admins WHERE id = $1`, id)
	return scanAdmin(row)
}

// GetAdminByUsername returns the admin with the given username, or
// (nil, nil) when absent.
func (s *Store) GetAdminByUsername(ctx context.Context, username string) (admin *models.Admin, err error) {
	defer func(start time.Time) { metrics.ObserveStoreOperation("get_admin_by_username", start, err) }(time.Now())

	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, password, full_name, created_at FROM admins WHERE username = $1`, username)
	return scanAdmin(row)
}

// auditEvent appends an audit_log row. Audit failures are logged and
// swallowed; they never fail the operation that produced them.
func (s *Store) auditEvent(ctx context.Context, eventType, resourceID string, details map[string]interface{}) {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		s.logger.Warn("failed to marshal audit details", map[string]interface{}{
			"error": err,
		})
		detailsJSON = []byte("{}")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		eventType,
		"application",
		resourceID,
		detailsJSON,
		time.Now().UTC(),
	)
	if err != nil {
		s.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":      err,
			"resourceId": resourceID,
			"eventType":  eventType,
		})
	}
}

// scanApplication decodes a single-row query, translating sql.ErrNoRows
// into the (nil, nil) not-found sentinel.
func (s *Store) scanApplication(row *sql.Row) (*models.Application, error) {
	app, err := decodeApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return app, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// decodeApplication is the typed row-to-record mapping. Every nullable
// column scans through sql.Null*, and malformed JSON in the document
// columns fails fast with ErrRowDecodeFailed.
func decodeApplication(row rowScanner) (*models.Application, error) {
	var (
		app           models.Application
		email         sql.NullString
		adminNotes    sql.NullString
		reviewedBy    sql.NullString
		reviewDate    sql.NullTime
		completedDate sql.NullTime
		status        string
		documentsRaw  []byte
		uploadedRaw   []byte
	)

	err := row.Scan(
		&app.ID,
		&app.ReferenceNumber,
		&app.FullName,
		&app.IDNumber,
		&app.PhoneNumber,
		&email,
		&app.PropertyAddress,
		&app.StandNumber,
		&app.PropertyType,
		&app.Reason,
		&documentsRaw,
		&uploadedRaw,
		&status,
		&app.SubmittedDate,
		&reviewDate,
		&completedDate,
		&adminNotes,
		&reviewedBy,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: scan application: %v", ErrRowDecodeFailed, err)
	}

	if err := json.Unmarshal(documentsRaw, &app.Documents); err != nil {
		return nil, fmt.Errorf("%w: decode documents column: %v", ErrRowDecodeFailed, err)
	}
	if err := json.Unmarshal(uploadedRaw, &app.UploadedDocuments); err != nil {
		return nil, fmt.Errorf("%w: decode uploaded_documents column: %v", ErrRowDecodeFailed, err)
	}

	app.Status = models.ApplicationStatus(status)
	if !app.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrRowDecodeFailed, status)
	}

	app.Email = email.String
	app.AdminNotes = adminNotes.String
	app.ReviewedBy = reviewedBy.String
	if reviewDate.Valid {
		t := reviewDate.Time
		app.ReviewDate = &t
	}
	if completedDate.Valid {
		t := completedDate.Time
		app.CompletedDate = &t
	}

	return &app, nil
}

func scanAdmin(row *sql.Row) (*models.Admin, error) {
	var admin models.Admin
	err := row.Scan(&admin.ID, &admin.Username, &admin.Password, &admin.FullName, &admin.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: scan admin: %v", ErrRowDecodeFailed, err)
	}
	return &admin, nil
}

// nullableString maps "" to SQL NULL for optional text columns.
func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
