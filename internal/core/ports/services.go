package ports

import (
	"context"
	"time"

	"school-points-backend/internal/core/domain"

	"github.com/google/uuid"
)

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations. Tokens carry the account
// role; downstream code trusts the claims and never re-validates
// credentials.
type TokenService interface {
	Generate(account *domain.Account) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	AccountID uuid.UUID
	Role      domain.Role
	Username  string
}

// StatsCache caches rendered teacher dashboard payloads.
type StatsCache interface {
	Get(ctx context.Context, teacherID uuid.UUID) ([]byte, error) // nil, nil on miss
	Set(ctx context.Context, teacherID uuid.UUID, payload []byte, ttl time.Duration) error
}

// --- Service Ports (Business Logic) ---

// AwardService is the core points workflow: QR identity resolution and
// the atomic award transaction.
type AwardService interface {
	// ResolveQR maps a scan code to exactly one student and lazily
	// ensures the student's wallet exists.
	ResolveQR(ctx context.Context, qrValue string) (*ScanResult, error)
	// AwardPoints grants points to a student: validate, authorize, then
	// atomically update the wallet, append a ledger entry and a scan log.
	AwardPoints(ctx context.Context, req AwardRequest) (*AwardResult, error)
}

// ScanResult is the student snapshot returned by a QR scan.
type ScanResult struct {
	Account *domain.Account
	Balance int
	Level   int
	Streak  int
}

// AwardRequest holds validated input for a point award.
type AwardRequest struct {
	RequesterID uuid.UUID
	StudentID   uuid.UUID
	Points      int
	Reason      string
}

// AwardResult echoes the committed award.
type AwardResult struct {
	Message    string
	NewBalance int
	Entry      *domain.LedgerEntry
}

// AuthService defines authentication business logic.
type AuthService interface {
	RegisterStudent(ctx context.Context, req RegisterStudentRequest) (*domain.Account, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error)
}

// RegisterStudentRequest holds input for student registration.
type RegisterStudentRequest struct {
	Username    string
	Password    string
	Email       string
	FirstName   string
	LastName    string
	Gender      domain.Gender
	PhoneNumber string
	Birthday    *time.Time
}

// LoginResult carries the issued token plus the fields clients echo.
type LoginResult struct {
	Token    string
	Expiry   time.Time
	Username string
	Role     domain.Role
}

// ReportingService defines dashboard/reporting business logic.
type ReportingService interface {
	TeacherStats(ctx context.Context, teacherID uuid.UUID) (*TeacherStats, error)
	RecentScans(ctx context.Context, teacherID uuid.UUID, limit int) ([]RecentScan, error)
	// RecentActivity returns the caller's own ledger entries, newest
	// first, capped at 20.
	RecentActivity(ctx context.Context, accountID uuid.UUID) ([]ActivityEntry, error)
}

// TeacherStats is the dashboard aggregate payload.
type TeacherStats struct {
	Teacher TeacherInfo `json:"teacher"`
	Stats   StatsBlock  `json:"stats"`
	Trends  TrendsBlock `json:"trends"`
}

type TeacherInfo struct {
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type StatsBlock struct {
	TotalStudents         int64 `json:"totalStudents"`
	ActiveStudents        int64 `json:"activeStudents"`
	TotalPointsAwarded    int64 `json:"totalPointsAwarded"`
	ThisWeekPoints        int64 `json:"thisWeekPoints"`
	AverageStudentBalance int64 `json:"averageStudentBalance"`
}

type TrendsBlock struct {
	ActiveStudents float64 `json:"activeStudents"`
	PointsAwarded  float64 `json:"pointsAwarded"`
	ThisWeekPoints float64 `json:"thisWeekPoints"`
	AverageBalance float64 `json:"averageBalance"`
}

// RecentScan is one dashboard row for a teacher's award history.
type RecentScan struct {
	ID            uuid.UUID `json:"id"`
	StudentName   string    `json:"studentName"`
	Type          string    `json:"type"`
	Amount        int       `json:"amount"`
	Reason        string    `json:"reason"`
	Timestamp     string    `json:"timestamp"`
	TeacherAction bool      `json:"teacherAction"`
}

// ActivityEntry is one rendered ledger row for the recent-activity feed.
type ActivityEntry struct {
	ID              uuid.UUID `json:"id"`
	TransactionType string    `json:"transaction_type"`
	Amount          int       `json:"amount"`
	Description     string    `json:"description"`
	Icon            string    `json:"icon"`
	Time            string    `json:"time"`
	Color           string    `json:"color"`
}

// StoreService defines the points store business logic.
type StoreService interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	// Checkout debits the buyer's wallet and records the order atomically
	// with a spend ledger entry.
	Checkout(ctx context.Context, req CheckoutRequest) (*domain.Order, error)
	ListOrders(ctx context.Context, accountID uuid.UUID) ([]domain.Order, error)
}

// CheckoutRequest holds validated input for a store checkout.
type CheckoutRequest struct {
	AccountID uuid.UUID
	Items     []CheckoutItem
}

// CheckoutItem is one requested product line.
type CheckoutItem struct {
	ProductID uuid.UUID
	Quantity  int
}
