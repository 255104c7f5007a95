package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/litc-ly/claims_backend/internal/apperrors"
	"github.com/litc-ly/claims_backend/internal/core/domain"
	portsrepo "github.com/litc-ly/claims_backend/internal/core/ports/repositories"
)

// PgxClaimRepository stores each claim as one row. The invoices and the audit
// trail live in JSONB columns so a claim is always read and written as a
// whole; concurrent writers are serialized by the version column.
type PgxClaimRepository struct {
	db *pgxpool.Pool
}

func newPgxClaimRepository(db *pgxpool.Pool) portsrepo.ClaimRepositoryFacade {
	return &PgxClaimRepository{db: db}
}

// Ensure PgxClaimRepository implements portsrepo.ClaimRepositoryFacade
var _ portsrepo.ClaimRepositoryFacade = (*PgxClaimRepository)(nil)

const claimColumns = `
	claim_id, reference_number, employee_id, employee_name, department,
	description, submission_date, status, total_amount, invoices, audit_trail,
	version, created_at, created_by, last_updated_at, last_updated_by`

func (r *PgxClaimRepository) SaveClaim(ctx context.Context, claim domain.Claim) error {
	invoicesJSON, auditJSON, err := marshalClaimDocuments(&claim)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO claims (` + claimColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err = r.db.Exec(ctx, query,
		claim.ClaimID,
		claim.ReferenceNumber,
		claim.EmployeeID,
		claim.EmployeeName,
		claim.Department,
		claim.Description,
		claim.SubmissionDate,
		claim.Status,
		claim.TotalAmount,
		invoicesJSON,
		auditJSON,
		claim.Version,
		claim.CreatedAt,
		claim.CreatedBy,
		claim.LastUpdatedAt,
		claim.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return fmt.Errorf("%w: claim %s", apperrors.ErrDuplicate, claim.ClaimID)
		}
		return fmt.Errorf("failed to save claim: %w", err)
	}
	return nil
}

func (r *PgxClaimRepository) UpdateClaim(ctx context.Context, claim domain.Claim, expectedVersion int64) error {
	invoicesJSON, auditJSON, err := marshalClaimDocuments(&claim)
	if err != nil {
		return err
	}

	query := `
		UPDATE claims SET
			status = $1,
			invoices = $2,
			audit_trail = $3,
			last_updated_at = $4,
			last_updated_by = $5,
			version = version + 1
		WHERE claim_id = $6 AND version = $7;
	`
	tag, err := r.db.Exec(ctx, query,
		claim.Status,
		invoicesJSON,
		auditJSON,
		claim.LastUpdatedAt,
		claim.LastUpdatedBy,
		claim.ClaimID,
		expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to update claim %s: %w", claim.ClaimID, err)
	}
	if tag.RowsAffected() == 0 {
		// Either the claim is gone or another writer bumped the version first.
		var exists bool
		if checkErr := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM claims WHERE claim_id = $1)`, claim.ClaimID).Scan(&exists); checkErr != nil {
			return fmt.Errorf("failed to update claim %s: %w", claim.ClaimID, checkErr)
		}
		if !exists {
			return fmt.Errorf("%w: claim %s", apperrors.ErrNotFound, claim.ClaimID)
		}
		return fmt.Errorf("%w: claim %s at version %d", apperrors.ErrConflict, claim.ClaimID, expectedVersion)
	}
	return nil
}

func (r *PgxClaimRepository) FindClaimByID(ctx context.Context, claimID string) (*domain.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE claim_id = $1;`
	row := r.db.QueryRow(ctx, query, claimID)

	claim, err := scanClaim(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: claim %s", apperrors.ErrNotFound, claimID)
		}
		return nil, fmt.Errorf("failed to find claim %s: %w", claimID, err)
	}
	return claim, nil
}

func (r *PgxClaimRepository) ListClaims(ctx context.Context, filter portsrepo.ClaimFilter, limit int, offset int) ([]domain.Claim, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + claimColumns + ` FROM claims WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, filter.Status)
		argPos++
	}
	if filter.EmployeeID != "" {
		query += fmt.Sprintf(" AND employee_id = $%d", argPos)
		args = append(args, filter.EmployeeID)
		argPos++
	}
	if filter.AssignedToID != "" {
		// Matches claims carrying at least one invoice assigned to the worker.
		query += fmt.Sprintf(` AND invoices @> $%d::jsonb`, argPos)
		args = append(args, fmt.Sprintf(`[{"assignedToID": %q}]`, filter.AssignedToID))
		argPos++
	}
	if filter.TerminalOnly {
		query += fmt.Sprintf(" AND status IN ($%d, $%d)", argPos, argPos+1)
		args = append(args, domain.StatusApproved, domain.StatusRejected)
		argPos += 2
	}

	query += fmt.Sprintf(" ORDER BY submission_date DESC, claim_id LIMIT $%d OFFSET $%d;", argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}
	defer rows.Close()

	claims := []domain.Claim{}
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan claim row: %w", err)
		}
		claims = append(claims, *claim)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating claim rows: %w", err)
	}
	return claims, nil
}

func marshalClaimDocuments(claim *domain.Claim) ([]byte, []byte, error) {
	invoicesJSON, err := json.Marshal(claim.Invoices)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal invoices for claim %s: %w", claim.ClaimID, err)
	}
	auditJSON, err := json.Marshal(claim.AuditTrail)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal audit trail for claim %s: %w", claim.ClaimID, err)
	}
	return invoicesJSON, auditJSON, nil
}

func scanClaim(row pgx.Row) (*domain.Claim, error) {
	var claim domain.Claim
	var invoicesJSON, auditJSON []byte

	err := row.Scan(
		&claim.ClaimID,
		&claim.ReferenceNumber,
		&claim.EmployeeID,
		&claim.EmployeeName,
		&claim.Department,
		&claim.Description,
		&claim.SubmissionDate,
		&claim.Status,
		&claim.TotalAmount,
		&invoicesJSON,
		&auditJSON,
		&claim.Version,
		&claim.CreatedAt,
		&claim.CreatedBy,
		&claim.LastUpdatedAt,
		&claim.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(invoicesJSON, &claim.Invoices); err != nil {
		return nil, fmt.Errorf("failed to unmarshal invoices for claim %s: %w", claim.ClaimID, err)
	}
	if err := json.Unmarshal(auditJSON, &claim.AuditTrail); err != nil {
		return nil, fmt.Errorf("failed to unmarshal audit trail for claim %s: %w", claim.ClaimID, err)
	}
	return &claim, nil
}
