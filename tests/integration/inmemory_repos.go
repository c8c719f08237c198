package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"school-points-backend/internal/core/domain"
	"school-points-backend/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- In-Memory Account Repo ---

type inMemoryAccountRepo struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*domain.Account
}

func newInMemoryAccountRepo() *inMemoryAccountRepo {
	return &inMemoryAccountRepo{accounts: make(map[uuid.UUID]*domain.Account)}
}

func (r *inMemoryAccountRepo) Create(ctx context.Context, a *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if existing.Username == a.Username {
			return fmt.Errorf("username already exists")
		}
	}
	cp := *a
	r.accounts[a.ID] = &cp
	return nil
}

func (r *inMemoryAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *inMemoryAccountRepo) GetByIDAndRole(ctx context.Context, id uuid.UUID, role domain.Role) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[id]
	if !ok || a.Role != role {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *inMemoryAccountRepo) GetByQRCode(ctx context.Context, code string, role domain.Role) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if a.QRCode == code && a.Role == role {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryAccountRepo) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if a.Username == username {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryAccountRepo) CountByRole(ctx context.Context, role domain.Role) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, a := range r.accounts {
		if a.Role == role {
			n++
		}
	}
	return n, nil
}

// --- In-Memory Wallet Repo ---

type inMemoryWalletRepo struct {
	mu      sync.Mutex
	wallets map[uuid.UUID]*domain.Wallet // keyed by account ID
}

func newInMemoryWalletRepo() *inMemoryWalletRepo {
	return &inMemoryWalletRepo{wallets: make(map[uuid.UUID]*domain.Wallet)}
}

func (r *inMemoryWalletRepo) GetByAccountID(ctx context.Context, accountID uuid.UUID) (*domain.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[accountID]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (r *inMemoryWalletRepo) getOrCreateLocked(accountID uuid.UUID) *domain.Wallet {
	w, ok := r.wallets[accountID]
	if !ok {
		w = &domain.Wallet{
			ID:          uuid.New(),
			AccountID:   accountID,
			Balance:     0,
			LastUpdated: time.Now().UTC(),
		}
		r.wallets[accountID] = w
	}
	return w
}

func (r *inMemoryWalletRepo) GetOrCreate(ctx context.Context, accountID uuid.UUID) (*domain.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *r.getOrCreateLocked(accountID)
	return &cp, nil
}

func (r *inMemoryWalletRepo) GetOrCreateForUpdate(ctx context.Context, tx pgx.Tx, accountID uuid.UUID) (*domain.Wallet, error) {
	return r.GetOrCreate(ctx, accountID)
}

func (r *inMemoryWalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, newBalance int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.wallets {
		if w.ID == walletID {
			w.Balance = newBalance
			w.LastUpdated = time.Now().UTC()
			return nil
		}
	}
	return fmt.Errorf("wallet %s not found", walletID)
}

func (r *inMemoryWalletRepo) AverageBalanceByRole(ctx context.Context, role domain.Role) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.wallets) == 0 {
		return 0, nil
	}
	var sum int
	for _, w := range r.wallets {
		sum += w.Balance
	}
	return float64(sum) / float64(len(r.wallets)), nil
}

// --- In-Memory Ledger Repo ---

type inMemoryLedgerRepo struct {
	mu      sync.RWMutex
	entries []domain.LedgerEntry
}

func newInMemoryLedgerRepo() *inMemoryLedgerRepo {
	return &inMemoryLedgerRepo{}
}

func (r *inMemoryLedgerRepo) Create(ctx context.Context, tx pgx.Tx, entry *domain.LedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *inMemoryLedgerRepo) ListByWallet(ctx context.Context, walletID uuid.UUID, limit int) ([]domain.LedgerEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.LedgerEntry, 0)
	for _, e := range r.entries {
		if e.WalletID == walletID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *inMemoryLedgerRepo) CountByKindBetween(ctx context.Context, kind domain.EntryKind, from, to time.Time) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, e := range r.entries {
		if e.Kind == kind && !e.CreatedAt.Before(from) && e.CreatedAt.Before(to) {
			n++
		}
	}
	return n, nil
}

// --- In-Memory Scan Log Repo ---

type inMemoryScanLogRepo struct {
	mu       sync.RWMutex
	logs     []domain.ScanLog
	accounts *inMemoryAccountRepo
}

func newInMemoryScanLogRepo(accounts *inMemoryAccountRepo) *inMemoryScanLogRepo {
	return &inMemoryScanLogRepo{accounts: accounts}
}

func (r *inMemoryScanLogRepo) Create(ctx context.Context, tx pgx.Tx, log *domain.ScanLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, *log)
	return nil
}

func (r *inMemoryScanLogRepo) SumPointsByTeacherBetween(ctx context.Context, teacherID uuid.UUID, from, to time.Time) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var sum int64
	for _, l := range r.logs {
		if l.TeacherID == teacherID && !l.CreatedAt.Before(from) && l.CreatedAt.Before(to) {
			sum += int64(l.Points)
		}
	}
	return sum, nil
}

func (r *inMemoryScanLogRepo) ListRecentByTeacher(ctx context.Context, teacherID uuid.UUID, limit int) ([]ports.ScanRow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rows := make([]ports.ScanRow, 0)
	for _, l := range r.logs {
		if l.TeacherID != teacherID {
			continue
		}
		name := ""
		if student, _ := r.accounts.GetByID(ctx, l.StudentID); student != nil {
			name = student.DisplayName()
		}
		rows = append(rows, ports.ScanRow{ScanLog: l, StudentName: name})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// --- In-Memory Student Profile Repo ---

type inMemoryStudentProfileRepo struct {
	mu       sync.RWMutex
	profiles map[uuid.UUID]*domain.StudentProfile // keyed by account ID
}

func newInMemoryStudentProfileRepo() *inMemoryStudentProfileRepo {
	return &inMemoryStudentProfileRepo{profiles: make(map[uuid.UUID]*domain.StudentProfile)}
}

func (r *inMemoryStudentProfileRepo) Create(ctx context.Context, p *domain.StudentProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.profiles[p.AccountID] = &cp
	return nil
}

func (r *inMemoryStudentProfileRepo) GetByAccountID(ctx context.Context, accountID uuid.UUID) (*domain.StudentProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[accountID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *inMemoryStudentProfileRepo) TouchLastActivity(ctx context.Context, accountID uuid.UUID, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[accountID]
	if !ok {
		return false, nil
	}
	p.LastActivity = &at
	return true, nil
}

func (r *inMemoryStudentProfileRepo) CountActiveBetween(ctx context.Context, from, to time.Time) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, p := range r.profiles {
		if p.LastActivity != nil && !p.LastActivity.Before(from) && p.LastActivity.Before(to) {
			n++
		}
	}
	return n, nil
}

// --- In-Memory Product Repo ---

type inMemoryProductRepo struct {
	mu       sync.RWMutex
	products map[uuid.UUID]*domain.Product
}

func newInMemoryProductRepo() *inMemoryProductRepo {
	return &inMemoryProductRepo{products: make(map[uuid.UUID]*domain.Product)}
}

func (r *inMemoryProductRepo) seed(p *domain.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.products[p.ID] = &cp
}

func (r *inMemoryProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *inMemoryProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *inMemoryProductRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *inMemoryProductRepo) DecrementStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok || p.Stock < qty {
		return fmt.Errorf("insufficient stock for product %s", id)
	}
	p.Stock -= qty
	return nil
}

// --- In-Memory Order Repo ---

type inMemoryOrderRepo struct {
	mu     sync.RWMutex
	orders []domain.Order
}

func newInMemoryOrderRepo() *inMemoryOrderRepo {
	return &inMemoryOrderRepo{}
}

func (r *inMemoryOrderRepo) Create(ctx context.Context, tx pgx.Tx, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = append(r.orders, *order)
	return nil
}

func (r *inMemoryOrderRepo) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Order, 0)
	for _, o := range r.orders {
		if o.AccountID == accountID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// --- In-Memory Transactor ---

// inMemoryTransactor serializes whole transactions with a single mutex,
// standing in for the row locks the real pool takes via FOR UPDATE.
type inMemoryTransactor struct {
	mu sync.Mutex
}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.mu.Lock()
	tx := &noopTx{}
	tx.release = func() { t.mu.Unlock() }
	return tx, nil
}

// noopTx is a no-op pgx.Tx implementation for in-memory testing. Commit
// and Rollback both release the transactor lock; the deferred Rollback
// after a Commit is a no-op.
type noopTx struct {
	once    sync.Once
	release func()
}

func (t *noopTx) done() {
	if t.release != nil {
		t.once.Do(t.release)
	}
}

func (t *noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *noopTx) Commit(ctx context.Context) error          { t.done(); return nil }
func (t *noopTx) Rollback(ctx context.Context) error        { t.done(); return nil }
func (t *noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *noopTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *noopTx) Conn() *pgx.Conn { return nil }
