package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"school-points-backend/internal/core/domain"
	"school-points-backend/internal/core/ports"
	"school-points-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	recentActivityLimit = 20
	statsWeek           = 7 * 24 * time.Hour
)

// reportingService implements ports.ReportingService.
type reportingService struct {
	accountRepo ports.AccountRepository
	walletRepo  ports.WalletRepository
	ledgerRepo  ports.LedgerRepository
	scanRepo    ports.ScanLogRepository
	profileRepo ports.StudentProfileRepository
	statsCache  ports.StatsCache
	cacheTTL    time.Duration
	log         zerolog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewReportingService creates a new reporting service. statsCache may be
// nil to disable dashboard caching.
func NewReportingService(
	accountRepo ports.AccountRepository,
	walletRepo ports.WalletRepository,
	ledgerRepo ports.LedgerRepository,
	scanRepo ports.ScanLogRepository,
	profileRepo ports.StudentProfileRepository,
	statsCache ports.StatsCache,
	cacheTTL time.Duration,
	log zerolog.Logger,
) ports.ReportingService {
	return &reportingService{
		accountRepo: accountRepo,
		walletRepo:  walletRepo,
		ledgerRepo:  ledgerRepo,
		scanRepo:    scanRepo,
		profileRepo: profileRepo,
		statsCache:  statsCache,
		cacheTTL:    cacheTTL,
		log:         log,
		now:         time.Now,
	}
}

// TeacherStats aggregates the dashboard numbers for one teacher and
// computes week-over-week percentage trends.
func (s *reportingService) TeacherStats(ctx context.Context, teacherID uuid.UUID) (*ports.TeacherStats, error) {
	teacher, err := s.accountRepo.GetByID(ctx, teacherID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load teacher: %w", err))
	}
	if teacher == nil {
		return nil, apperror.ErrInvalidToken()
	}
	if !teacher.IsTeacher() {
		return nil, apperror.Forbidden("Only teachers can access this endpoint")
	}

	if s.statsCache != nil {
		cached, err := s.statsCache.Get(ctx, teacherID)
		if err != nil {
			s.log.Warn().Err(err).Msg("stats cache read failed, computing fresh")
		} else if cached != nil {
			stats := &ports.TeacherStats{}
			if err := json.Unmarshal(cached, stats); err == nil {
				return stats, nil
			}
		}
	}

	now := s.now().UTC()
	weekAgo := now.Add(-statsWeek)
	twoWeeksAgo := now.Add(-2 * statsWeek)

	totalStudents, err := s.accountRepo.CountByRole(ctx, domain.RoleStudent)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("count students: %w", err))
	}

	activeStudents, err := s.profileRepo.CountActiveBetween(ctx, weekAgo, now)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("count active students: %w", err))
	}
	prevWeekActive, err := s.profileRepo.CountActiveBetween(ctx, twoWeeksAgo, weekAgo)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("count prev active students: %w", err))
	}

	totalPoints, err := s.scanRepo.SumPointsByTeacherBetween(ctx, teacherID, time.Time{}, now)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("sum awarded points: %w", err))
	}
	thisWeekPoints, err := s.scanRepo.SumPointsByTeacherBetween(ctx, teacherID, weekAgo, now)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("sum this week points: %w", err))
	}
	prevWeekPoints, err := s.scanRepo.SumPointsByTeacherBetween(ctx, teacherID, twoWeeksAgo, weekAgo)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("sum prev week points: %w", err))
	}

	avgBalance, err := s.walletRepo.AverageBalanceByRole(ctx, domain.RoleStudent)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("average balance: %w", err))
	}

	// Balance trend proxies on earn-entry volume week over week.
	currentEarns, err := s.ledgerRepo.CountByKindBetween(ctx, domain.EntryKindEarn, weekAgo, now)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("count earn entries: %w", err))
	}
	prevEarns, err := s.ledgerRepo.CountByKindBetween(ctx, domain.EntryKindEarn, twoWeeksAgo, weekAgo)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("count prev earn entries: %w", err))
	}

	pointsTrend := calculateTrend(float64(thisWeekPoints), float64(prevWeekPoints))
	stats := &ports.TeacherStats{
		Teacher: ports.TeacherInfo{
			Username:  teacher.Username,
			FirstName: teacher.FirstName,
			LastName:  teacher.LastName,
		},
		Stats: ports.StatsBlock{
			TotalStudents:         totalStudents,
			ActiveStudents:        activeStudents,
			TotalPointsAwarded:    totalPoints,
			ThisWeekPoints:        thisWeekPoints,
			AverageStudentBalance: int64(math.Round(avgBalance)),
		},
		Trends: ports.TrendsBlock{
			ActiveStudents: calculateTrend(float64(activeStudents), float64(prevWeekActive)),
			PointsAwarded:  pointsTrend,
			ThisWeekPoints: pointsTrend,
			AverageBalance: calculateTrend(float64(currentEarns), float64(prevEarns)),
		},
	}

	if s.statsCache != nil {
		if payload, err := json.Marshal(stats); err == nil {
			if err := s.statsCache.Set(ctx, teacherID, payload, s.cacheTTL); err != nil {
				s.log.Warn().Err(err).Msg("stats cache write failed")
			}
		}
	}

	return stats, nil
}

// RecentScans lists this teacher's latest awards, newest first, with
// human-relative timestamps.
func (s *reportingService) RecentScans(ctx context.Context, teacherID uuid.UUID, limit int) ([]ports.RecentScan, error) {
	teacher, err := s.accountRepo.GetByID(ctx, teacherID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load teacher: %w", err))
	}
	if teacher == nil {
		return nil, apperror.ErrInvalidToken()
	}
	if !teacher.IsTeacher() {
		return nil, apperror.Forbidden("Only teachers can access this endpoint")
	}

	rows, err := s.scanRepo.ListRecentByTeacher(ctx, teacherID, limit)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list recent scans: %w", err))
	}

	now := s.now().UTC()
	scans := make([]ports.RecentScan, 0, len(rows))
	for _, row := range rows {
		scans = append(scans, ports.RecentScan{
			ID:            row.ID,
			StudentName:   row.StudentName,
			Type:          string(domain.EntryKindEarn),
			Amount:        row.Points,
			Reason:        "Teacher awarded points",
			Timestamp:     formatRelative(row.CreatedAt, now),
			TeacherAction: true,
		})
	}
	return scans, nil
}

// RecentActivity returns the caller's own ledger entries, newest first,
// capped at 20. An account without a wallet simply has no activity.
func (s *reportingService) RecentActivity(ctx context.Context, accountID uuid.UUID) ([]ports.ActivityEntry, error) {
	wallet, err := s.walletRepo.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load wallet: %w", err))
	}
	if wallet == nil {
		return []ports.ActivityEntry{}, nil
	}

	entries, err := s.ledgerRepo.ListByWallet(ctx, wallet.ID, recentActivityLimit)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list ledger entries: %w", err))
	}

	activity := make([]ports.ActivityEntry, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		activity = append(activity, ports.ActivityEntry{
			ID:              e.ID,
			TransactionType: string(e.Kind),
			Amount:          e.Amount,
			Description:     e.Description,
			Icon:            e.Icon(),
			Time:            e.CreatedAt.Format("2006-01-02 15:04:05"),
			Color:           e.Color(),
		})
	}
	return activity, nil
}

// calculateTrend returns the percentage change from previous to current,
// rounded to one decimal. A rise from zero reads as 100, staying at zero
// as 0.
func calculateTrend(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	change := (current - previous) / previous * 100
	return math.Round(change*10) / 10
}

// formatRelative renders a timestamp relative to now: "Just now",
// "N minute(s) ago", "N hour(s) ago", "Yesterday", "N days ago", then
// an absolute date.
func formatRelative(t, now time.Time) string {
	diff := now.Sub(t)
	days := int(diff.Hours() / 24)

	switch {
	case days == 0 && diff < time.Minute:
		return "Just now"
	case days == 0 && diff < time.Hour:
		return pluralize(int(diff.Minutes()), "minute")
	case days == 0:
		return pluralize(int(diff.Hours()), "hour")
	case days == 1:
		return "Yesterday"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.Format("Jan 02, 2006")
	}
}

func pluralize(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
