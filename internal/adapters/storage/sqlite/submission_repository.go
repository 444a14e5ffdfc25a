package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/civiplan/submission-service/internal/domain"
	"github.com/civiplan/submission-service/internal/domain/submission"
	"github.com/civiplan/submission-service/internal/ports"
)

// SubmissionRepository implements ports.SubmissionRepository on the sqlite
// store.
type SubmissionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSubmissionRepository creates a repository sharing the store's handle.
func NewSubmissionRepository(store *Store, logger *slog.Logger) *SubmissionRepository {
	return &SubmissionRepository{
		db:     store.db,
		logger: logger,
	}
}

const submissionColumns = `submission_number, drm_number, status, progress_status, program_book_id,
	project_ids, requirements, status_history, progress_history, audit, version`

// FindByNumber implements ports.SubmissionRepository.
func (r *SubmissionRepository) FindByNumber(ctx context.Context, submissionNumber string) (*submission.Submission, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE submission_number = ?`,
		submissionNumber)

	s, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("submission %s: %w", submissionNumber, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading submission %s: %w", submissionNumber, err)
	}
	return s, nil
}

// FindNumbersByDrm implements ports.SubmissionRepository.
func (r *SubmissionRepository) FindNumbersByDrm(ctx context.Context, drmNumber string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT submission_number FROM submissions WHERE drm_number = ? ORDER BY submission_number`,
		drmNumber)
	if err != nil {
		return nil, fmt.Errorf("listing submission numbers for drm %s: %w", drmNumber, err)
	}
	defer rows.Close()

	var numbers []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		numbers = append(numbers, n)
	}
	return numbers, rows.Err()
}

// FindByProject implements ports.SubmissionRepository.
func (r *SubmissionRepository) FindByProject(ctx context.Context, projectID string) ([]submission.Submission, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+submissionColumns+` FROM submissions s
		 WHERE EXISTS (SELECT 1 FROM submission_projects sp
		               WHERE sp.submission_number = s.submission_number AND sp.project_id = ?)
		 ORDER BY created_at DESC, submission_number DESC`,
		projectID)
	if err != nil {
		return nil, fmt.Errorf("listing submissions for project %s: %w", projectID, err)
	}
	defer rows.Close()

	return collectSubmissions(rows)
}

// Search implements ports.SubmissionRepository. Zero-value criteria fields
// are skipped, so an empty criteria lists everything.
func (r *SubmissionRepository) Search(ctx context.Context, criteria ports.SubmissionCriteria) ([]submission.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions s WHERE 1=1`
	var args []any

	if criteria.DrmNumber != "" {
		query += ` AND drm_number = ?`
		args = append(args, criteria.DrmNumber)
	}
	if criteria.ProgramBookID != "" {
		query += ` AND program_book_id = ?`
		args = append(args, criteria.ProgramBookID)
	}
	if criteria.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(criteria.Status))
	}
	if criteria.ProjectID != "" {
		query += ` AND EXISTS (SELECT 1 FROM submission_projects sp
		            WHERE sp.submission_number = s.submission_number AND sp.project_id = ?)`
		args = append(args, criteria.ProjectID)
	}
	query += ` ORDER BY created_at DESC, submission_number DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching submissions: %w", err)
	}
	defer rows.Close()

	return collectSubmissions(rows)
}

// Save implements ports.SubmissionRepository. The stored version must match
// the aggregate's; on success the version is incremented both in the row and
// on the aggregate. The membership table is rewritten in the same
// transaction.
func (r *SubmissionRepository) Save(ctx context.Context, s *submission.Submission) error {
	rec, err := newSubmissionRecord(s)
	if err != nil {
		return fmt.Errorf("encoding submission %s: %w", s.SubmissionNumber, err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("saving submission %s: %w", s.SubmissionNumber, err)
	}
	defer tx.Rollback()

	var stored int64
	err = tx.QueryRowContext(ctx,
		`SELECT version FROM submissions WHERE submission_number = ?`,
		s.SubmissionNumber).Scan(&stored)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(ctx,
			`INSERT INTO submissions (`+submissionColumns+`, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.number, rec.drmNumber, rec.status, rec.progressStatus, rec.programBookID,
			rec.projectIDs, rec.requirements, rec.statusHistory, rec.progressHistory,
			rec.audit, s.Version+1, rec.createdAt)
		if err != nil {
			return fmt.Errorf("inserting submission %s: %w", s.SubmissionNumber, err)
		}
	case err != nil:
		return fmt.Errorf("saving submission %s: %w", s.SubmissionNumber, err)
	case stored != s.Version:
		return fmt.Errorf("submission %s version %d is stale (stored %d): %w",
			s.SubmissionNumber, s.Version, stored, domain.ErrConflict)
	default:
		_, err = tx.ExecContext(ctx,
			`UPDATE submissions SET drm_number = ?, status = ?, progress_status = ?,
			 program_book_id = ?, project_ids = ?, requirements = ?, status_history = ?,
			 progress_history = ?, audit = ?, version = ? WHERE submission_number = ?`,
			rec.drmNumber, rec.status, rec.progressStatus, rec.programBookID,
			rec.projectIDs, rec.requirements, rec.statusHistory, rec.progressHistory,
			rec.audit, s.Version+1, rec.number)
		if err != nil {
			return fmt.Errorf("updating submission %s: %w", s.SubmissionNumber, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM submission_projects WHERE submission_number = ?`, rec.number); err != nil {
		return fmt.Errorf("clearing project memberships for %s: %w", s.SubmissionNumber, err)
	}
	for _, projectID := range s.ProjectIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO submission_projects (submission_number, project_id) VALUES (?, ?)`,
			rec.number, projectID); err != nil {
			return fmt.Errorf("recording project membership %s: %w", projectID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("saving submission %s: %w", s.SubmissionNumber, err)
	}

	s.Version++
	r.logger.DebugContext(ctx, "submission saved",
		slog.String("submission_number", s.SubmissionNumber),
		slog.Int64("version", s.Version))
	return nil
}

// submissionRecord holds the row-shaped form of the aggregate, with the
// nested collections already JSON-encoded. created_at is denormalized out
// of the audit blob so recency ordering stays in SQL.
type submissionRecord struct {
	number          string
	drmNumber       string
	status          string
	progressStatus  string
	programBookID   string
	projectIDs      string
	requirements    string
	statusHistory   string
	progressHistory string
	audit           string
	createdAt       string
}

func newSubmissionRecord(s *submission.Submission) (*submissionRecord, error) {
	projectIDs, err := json.Marshal(s.ProjectIDs)
	if err != nil {
		return nil, err
	}
	requirements, err := json.Marshal(requirementDocs(s.Requirements))
	if err != nil {
		return nil, err
	}
	statusHistory, err := json.Marshal(statusHistoryDocs(s.StatusHistory))
	if err != nil {
		return nil, err
	}
	progressHistory, err := json.Marshal(progressHistoryDocs(s.ProgressHistory))
	if err != nil {
		return nil, err
	}
	audit, err := json.Marshal(newAuditDoc(s.Audit))
	if err != nil {
		return nil, err
	}
	return &submissionRecord{
		number:          s.SubmissionNumber,
		drmNumber:       s.DrmNumber,
		status:          string(s.Status),
		progressStatus:  string(s.ProgressStatus),
		programBookID:   s.ProgramBookID,
		projectIDs:      string(projectIDs),
		requirements:    string(requirements),
		statusHistory:   string(statusHistory),
		progressHistory: string(progressHistory),
		audit:           string(audit),
		createdAt:       s.Audit.CreatedAt.UTC().Format(time.RFC3339Nano),
	}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (*submission.Submission, error) {
	var (
		s               submission.Submission
		status          string
		progressStatus  string
		projectIDs      string
		requirements    string
		statusHistory   string
		progressHistory string
		audit           string
	)
	err := row.Scan(&s.SubmissionNumber, &s.DrmNumber, &status, &progressStatus,
		&s.ProgramBookID, &projectIDs, &requirements, &statusHistory,
		&progressHistory, &audit, &s.Version)
	if err != nil {
		return nil, err
	}

	s.Status = submission.Status(status)
	s.ProgressStatus = submission.ProgressStatus(progressStatus)
	if err := json.Unmarshal([]byte(projectIDs), &s.ProjectIDs); err != nil {
		return nil, fmt.Errorf("decoding project ids: %w", err)
	}

	var reqDocs []requirementDoc
	if err := json.Unmarshal([]byte(requirements), &reqDocs); err != nil {
		return nil, fmt.Errorf("decoding requirements: %w", err)
	}
	s.Requirements = requirementsFromDocs(reqDocs)

	var statusDocs []statusHistoryDoc
	if err := json.Unmarshal([]byte(statusHistory), &statusDocs); err != nil {
		return nil, fmt.Errorf("decoding status history: %w", err)
	}
	s.StatusHistory = statusHistoryFromDocs(statusDocs)

	var progressDocs []progressHistoryDoc
	if err := json.Unmarshal([]byte(progressHistory), &progressDocs); err != nil {
		return nil, fmt.Errorf("decoding progress history: %w", err)
	}
	s.ProgressHistory = progressHistoryFromDocs(progressDocs)

	var auditDoc auditDoc
	if err := json.Unmarshal([]byte(audit), &auditDoc); err != nil {
		return nil, fmt.Errorf("decoding audit: %w", err)
	}
	s.Audit = auditDoc.toDomain()

	return &s, nil
}

func collectSubmissions(rows *sql.Rows) ([]submission.Submission, error) {
	var results []submission.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *s)
	}
	return results, rows.Err()
}
