package postgres

import (
	"context"
	"fmt"
	"time"

	"school-points-backend/internal/core/domain"
	"school-points-backend/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ScanLogRepo implements ports.ScanLogRepository.
type ScanLogRepo struct {
	pool Pool
}

// NewScanLogRepo creates a new ScanLogRepo.
func NewScanLogRepo(pool Pool) *ScanLogRepo {
	return &ScanLogRepo{pool: pool}
}

// Create appends a scan log within a transaction.
func (r *ScanLogRepo) Create(ctx context.Context, tx pgx.Tx, log *domain.ScanLog) error {
	query := `INSERT INTO scan_logs (id, student_id, teacher_id, points, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := tx.Exec(ctx, query, log.ID, log.StudentID, log.TeacherID, log.Points, log.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert scan log: %w", err)
	}
	return nil
}

// SumPointsByTeacherBetween sums points this teacher awarded in [from, to).
func (r *ScanLogRepo) SumPointsByTeacherBetween(ctx context.Context, teacherID uuid.UUID, from, to time.Time) (int64, error) {
	query := `SELECT COALESCE(SUM(points), 0) FROM scan_logs
		WHERE teacher_id = $1 AND created_at >= $2 AND created_at < $3`

	var sum int64
	if err := r.pool.QueryRow(ctx, query, teacherID, from, to).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum scan points: %w", err)
	}
	return sum, nil
}

// ListRecentByTeacher returns this teacher's scans newest first, with the
// scanned student's display name resolved in the same query.
func (r *ScanLogRepo) ListRecentByTeacher(ctx context.Context, teacherID uuid.UUID, limit int) ([]ports.ScanRow, error) {
	query := `SELECT s.id, s.student_id, s.teacher_id, s.points, s.created_at,
		TRIM(a.first_name || ' ' || a.last_name), a.username
		FROM scan_logs s JOIN accounts a ON a.id = s.student_id
		WHERE s.teacher_id = $1 ORDER BY s.created_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, teacherID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent scans: %w", err)
	}
	defer rows.Close()

	scans := []ports.ScanRow{}
	for rows.Next() {
		var s ports.ScanRow
		var username string
		if err := rows.Scan(&s.ID, &s.StudentID, &s.TeacherID, &s.Points, &s.CreatedAt, &s.StudentName, &username); err != nil {
			return nil, fmt.Errorf("scan recent scan row: %w", err)
		}
		if s.StudentName == "" {
			s.StudentName = username
		}
		scans = append(scans, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent scans: %w", err)
	}
	return scans, nil
}
