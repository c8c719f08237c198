package service

import (
	"context"
	"html"
	"strings"
	"testing"
	"unicode/utf8"

	"school-points-backend/internal/core/domain"
	"school-points-backend/internal/core/ports"
	"school-points-backend/internal/core/ports/mocks"
	"school-points-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// mockTx satisfies pgx.Tx for transaction boundary tests. Only Commit
// and Rollback are called by the services under test.
type mockTx struct {
	pgx.Tx
	commitErr  error
	committed  bool
	rolledBack bool
}

func (m *mockTx) Commit(ctx context.Context) error {
	m.committed = true
	return m.commitErr
}

func (m *mockTx) Rollback(ctx context.Context) error {
	m.rolledBack = true
	return nil
}

type awardFixture struct {
	accountRepo *mocks.MockAccountRepository
	walletRepo  *mocks.MockWalletRepository
	ledgerRepo  *mocks.MockLedgerRepository
	scanRepo    *mocks.MockScanLogRepository
	profileRepo *mocks.MockStudentProfileRepository
	transactor  *mocks.MockDBTransactor
	svc         *AwardServiceImpl
}

func newAwardFixture(ctrl *gomock.Controller) *awardFixture {
	f := &awardFixture{
		accountRepo: mocks.NewMockAccountRepository(ctrl),
		walletRepo:  mocks.NewMockWalletRepository(ctrl),
		ledgerRepo:  mocks.NewMockLedgerRepository(ctrl),
		scanRepo:    mocks.NewMockScanLogRepository(ctrl),
		profileRepo: mocks.NewMockStudentProfileRepository(ctrl),
		transactor:  mocks.NewMockDBTransactor(ctrl),
	}
	f.svc = NewAwardService(
		f.accountRepo, f.walletRepo, f.ledgerRepo, f.scanRepo, f.profileRepo,
		f.transactor, 1000, 500, zerolog.Nop(),
	)
	return f
}

func newStudent() *domain.Account {
	return &domain.Account{
		ID:        uuid.New(),
		Username:  "an.pham",
		FirstName: "An",
		LastName:  "Pham",
		Role:      domain.RoleStudent,
		QRCode:    uuid.NewString(),
		Active:    true,
	}
}

func newTeacher() *domain.Account {
	return &domain.Account{
		ID:        uuid.New(),
		Username:  "lan.tran",
		FirstName: "Lan",
		LastName:  "Tran",
		Role:      domain.RoleTeacher,
		Active:    true,
	}
}

func TestResolveQR_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newAwardFixture(ctrl)

	student := newStudent()
	wallet := &domain.Wallet{ID: uuid.New(), AccountID: student.ID, Balance: 75}
	profile := &domain.StudentProfile{AccountID: student.ID, Level: 3, Streak: 5}

	f.accountRepo.EXPECT().GetByQRCode(gomock.Any(), student.QRCode, domain.RoleStudent).Return(student, nil)
	f.walletRepo.EXPECT().GetOrCreate(gomock.Any(), student.ID).Return(wallet, nil)
	f.profileRepo.EXPECT().GetByAccountID(gomock.Any(), student.ID).Return(profile, nil)

	result, err := f.svc.ResolveQR(context.Background(), student.QRCode)
	require.NoError(t, err)
	assert.Equal(t, student, result.Account)
	assert.Equal(t, 75, result.Balance)
	assert.Equal(t, 3, result.Level)
	assert.Equal(t, 5, result.Streak)
}

func TestResolveQR_MissingProfileFallsBackToDefaults(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newAwardFixture(ctrl)

	student := newStudent()
	wallet := &domain.Wallet{ID: uuid.New(), AccountID: student.ID, Balance: 0}

	f.accountRepo.EXPECT().GetByQRCode(gomock.Any(), student.QRCode, domain.RoleStudent).Return(student, nil)
	f.walletRepo.EXPECT().GetOrCreate(gomock.Any(), student.ID).Return(wallet, nil)
	f.profileRepo.EXPECT().GetByAccountID(gomock.Any(), student.ID).Return(nil, nil)

	result, err := f.svc.ResolveQR(context.Background(), student.QRCode)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Level)
	assert.Equal(t, 0, result.Streak)
}

func TestResolveQR_EmptyValue(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newAwardFixture(ctrl)

	_, err := f.svc.ResolveQR(context.Background(), "   ")
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VAL_001", appErr.Code)
	assert.Equal(t, "QR value is required", appErr.Message)
}

func TestResolveQR_UnknownCode(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newAwardFixture(ctrl)

	f.accountRepo.EXPECT().GetByQRCode(gomock.Any(), "no-such-code", domain.RoleStudent).Return(nil, nil)

	_, err := f.svc.ResolveQR(context.Background(), "no-such-code")
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NF_001", appErr.Code)
	assert.Equal(t, "Student not found with this QR code", appErr.Message)
}

func TestAwardPoints_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newAwardFixture(ctrl)

	student := newStudent()
	teacher := newTeacher()
	wallet := &domain.Wallet{ID: uuid.New(), AccountID: student.ID, Balance: 75}
	tx := &mockTx{}

	f.accountRepo.EXPECT().GetByIDAndRole(gomock.Any(), student.ID, domain.RoleStudent).Return(student, nil)
	f.accountRepo.EXPECT().GetByID(gomock.Any(), teacher.ID).Return(teacher, nil)
	f.transactor.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	f.walletRepo.EXPECT().GetOrCreateForUpdate(gomock.Any(), tx, student.ID).Return(wallet, nil)
	f.walletRepo.EXPECT().UpdateBalance(gomock.Any(), tx, wallet.ID, 125).Return(nil)

	var savedEntry *domain.LedgerEntry
	f.ledgerRepo.EXPECT().Create(gomock.Any(), tx, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ pgx.Tx, entry *domain.LedgerEntry) error {
			savedEntry = entry
			return nil
		})

	var savedScan *domain.ScanLog
	f.scanRepo.EXPECT().Create(gomock.Any(), tx, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ pgx.Tx, log *domain.ScanLog) error {
			savedScan = log
			return nil
		})

	f.profileRepo.EXPECT().TouchLastActivity(gomock.Any(), student.ID, gomock.Any()).Return(true, nil)

	result, err := f.svc.AwardPoints(context.Background(), ports.AwardRequest{
		RequesterID: teacher.ID,
		StudentID:   student.ID,
		Points:      50,
		Reason:      "Great work!",
	})
	require.NoError(t, err)

	assert.Equal(t, "Successfully awarded 50 points to An Pham", result.Message)
	assert.Equal(t, 125, result.NewBalance)
	assert.True(t, tx.committed)

	require.NotNil(t, savedEntry)
	assert.Equal(t, wallet.ID, savedEntry.WalletID)
	assert.Equal(t, 50, savedEntry.Amount)
	assert.Equal(t, domain.EntryKindEarn, savedEntry.Kind)
	assert.Equal(t, "Awarded by Lan Tran: Great work!", savedEntry.Description)

	require.NotNil(t, savedScan)
	assert.Equal(t, student.ID, savedScan.StudentID)
	assert.Equal(t, teacher.ID, savedScan.TeacherID)
	assert.Equal(t, 50, savedScan.Points)
}

func TestAwardPoints_ValidationOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newAwardFixture(ctrl)

	teacherID := uuid.New()

	cases := []struct {
		name    string
		req     ports.AwardRequest
		wantMsg string
	}{
		{
			name:    "zero points",
			req:     ports.AwardRequest{RequesterID: teacherID, StudentID: uuid.New(), Points: 0, Reason: "x"},
			wantMsg: "Points must be greater than 0",
		},
		{
			name:    "negative points",
			req:     ports.AwardRequest{RequesterID: teacherID, StudentID: uuid.New(), Points: -5, Reason: "x"},
			wantMsg: "Points must be greater than 0",
		},
		{
			name:    "over cap",
			req:     ports.AwardRequest{RequesterID: teacherID, StudentID: uuid.New(), Points: 1001, Reason: "x"},
			wantMsg: "Cannot award more than 1000 points at once",
		},
		{
			name:    "blank reason",
			req:     ports.AwardRequest{RequesterID: teacherID, StudentID: uuid.New(), Points: 10, Reason: "   "},
			wantMsg: "Reason is required",
		},
		{
			name:    "reason too long",
			req:     ports.AwardRequest{RequesterID: teacherID, StudentID: uuid.New(), Points: 10, Reason: strings.Repeat("a", 501)},
			wantMsg: "Reason must be at most 500 characters",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.AwardPoints(context.Background(), tc.req)
			var appErr *apperror.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, "VAL_001", appErr.Code)
			assert.Equal(t, tc.wantMsg, appErr.Message)
		})
	}
}

func TestAwardPoints_ReasonLengthCountsSubmittedCharacters(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newAwardFixture(ctrl)

	student := newStudent()
	teacher := newTeacher()
	wallet := &domain.Wallet{ID: uuid.New(), AccountID: student.ID, Balance: 0}
	tx := &mockTx{}

	// 500 submitted characters, mixing multibyte text with characters the
	// ingress sanitizer expands into entities. The service sees the escaped
	// form, which is far longer in both bytes and runes.
	raw := strings.Repeat("é", 250) + strings.Repeat("&", 250)
	escaped := html.EscapeString(raw)
	require.Greater(t, len(escaped), 500)
	require.Greater(t, utf8.RuneCountInString(escaped), 500)

	f.accountRepo.EXPECT().GetByIDAndRole(gomock.Any(), student.ID, domain.RoleStudent).Return(student, nil)
	f.accountRepo.EXPECT().GetByID(gomock.Any(), teacher.ID).Return(teacher, nil)
	f.transactor.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	f.walletRepo.EXPECT().GetOrCreateForUpdate(gomock.Any(), tx, student.ID).Return(wallet, nil)
	f.walletRepo.EXPECT().UpdateBalance(gomock.Any(), tx, wallet.ID, 10).Return(nil)
	f.ledgerRepo.EXPECT().Create(gomock.Any(), tx, gomock.Any()).Return(nil)
	f.scanRepo.EXPECT().Create(gomock.Any(), tx, gomock.Any()).Return(nil)
	f.profileRepo.EXPECT().TouchLastActivity(gomock.Any(), student.ID, gomock.Any()).Return(true, nil)

	_, err := f.svc.AwardPoints(context.Background(), ports.AwardRequest{
		RequesterID: teacher.ID,
		StudentID:   student.ID,
		Points:      10,
		Reason:      escaped,
	})
	require.NoError(t, err)
	assert.True(t, tx.committed)

	// One character over the cap is still rejected, multibyte or not.
	_, err = f.svc.AwardPoints(context.Background(), ports.AwardRequest{
		RequesterID: teacher.ID,
		StudentID:   student.ID,
		Points:      10,
		Reason:      strings.Repeat("é", 501),
	})
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VAL_001", appErr.Code)
	assert.Equal(t, "Reason must be at most 500 characters", appErr.Message)
}

func TestAwardPoints_UnknownStudentBeforeRoleCheck(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newAwardFixture(ctrl)

	studentID := uuid.New()
	// Student lookup fails first; the requester is never loaded, so a
	// non-teacher caller still sees the validation message here.
	f.accountRepo.EXPECT().GetByIDAndRole(gomock.Any(), studentID, domain.RoleStudent).Return(nil, nil)

	_, err := f.svc.AwardPoints(context.Background(), ports.AwardRequest{
		RequesterID: uuid.New(),
		StudentID:   studentID,
		Points:      10,
		Reason:      "x",
	})
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VAL_001", appErr.Code)
	assert.Equal(t, "Student not found", appErr.Message)
}

func TestAwardPoints_NonTeacherForbidden(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newAwardFixture(ctrl)

	student := newStudent()
	requester := newStudent()

	f.accountRepo.EXPECT().GetByIDAndRole(gomock.Any(), student.ID, domain.RoleStudent).Return(student, nil)
	f.accountRepo.EXPECT().GetByID(gomock.Any(), requester.ID).Return(requester, nil)

	_, err := f.svc.AwardPoints(context.Background(), ports.AwardRequest{
		RequesterID: requester.ID,
		StudentID:   student.ID,
		Points:      10,
		Reason:      "x",
	})
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "PERM_001", appErr.Code)
	assert.Equal(t, "Only teachers can award points", appErr.Message)
}

func TestAwardPoints_CommitFailureRollsBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newAwardFixture(ctrl)

	student := newStudent()
	teacher := newTeacher()
	wallet := &domain.Wallet{ID: uuid.New(), AccountID: student.ID, Balance: 0}
	tx := &mockTx{commitErr: assert.AnError}

	f.accountRepo.EXPECT().GetByIDAndRole(gomock.Any(), student.ID, domain.RoleStudent).Return(student, nil)
	f.accountRepo.EXPECT().GetByID(gomock.Any(), teacher.ID).Return(teacher, nil)
	f.transactor.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	f.walletRepo.EXPECT().GetOrCreateForUpdate(gomock.Any(), tx, student.ID).Return(wallet, nil)
	f.walletRepo.EXPECT().UpdateBalance(gomock.Any(), tx, wallet.ID, 10).Return(nil)
	f.ledgerRepo.EXPECT().Create(gomock.Any(), tx, gomock.Any()).Return(nil)
	f.scanRepo.EXPECT().Create(gomock.Any(), tx, gomock.Any()).Return(nil)

	_, err := f.svc.AwardPoints(context.Background(), ports.AwardRequest{
		RequesterID: teacher.ID,
		StudentID:   student.ID,
		Points:      10,
		Reason:      "x",
	})
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "SYS_001", appErr.Code)
	assert.True(t, tx.rolledBack)
}

func TestAwardPoints_LedgerFailureNeverCommits(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newAwardFixture(ctrl)

	student := newStudent()
	teacher := newTeacher()
	wallet := &domain.Wallet{ID: uuid.New(), AccountID: student.ID, Balance: 0}
	tx := &mockTx{}

	f.accountRepo.EXPECT().GetByIDAndRole(gomock.Any(), student.ID, domain.RoleStudent).Return(student, nil)
	f.accountRepo.EXPECT().GetByID(gomock.Any(), teacher.ID).Return(teacher, nil)
	f.transactor.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	f.walletRepo.EXPECT().GetOrCreateForUpdate(gomock.Any(), tx, student.ID).Return(wallet, nil)
	f.walletRepo.EXPECT().UpdateBalance(gomock.Any(), tx, wallet.ID, 10).Return(nil)
	f.ledgerRepo.EXPECT().Create(gomock.Any(), tx, gomock.Any()).Return(assert.AnError)

	_, err := f.svc.AwardPoints(context.Background(), ports.AwardRequest{
		RequesterID: teacher.ID,
		StudentID:   student.ID,
		Points:      10,
		Reason:      "x",
	})
	require.Error(t, err)
	assert.False(t, tx.committed)
	assert.True(t, tx.rolledBack)
}

func TestAwardPoints_ActivityTouchFailureDoesNotFailAward(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newAwardFixture(ctrl)

	student := newStudent()
	teacher := newTeacher()
	wallet := &domain.Wallet{ID: uuid.New(), AccountID: student.ID, Balance: 0}
	tx := &mockTx{}

	f.accountRepo.EXPECT().GetByIDAndRole(gomock.Any(), student.ID, domain.RoleStudent).Return(student, nil)
	f.accountRepo.EXPECT().GetByID(gomock.Any(), teacher.ID).Return(teacher, nil)
	f.transactor.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	f.walletRepo.EXPECT().GetOrCreateForUpdate(gomock.Any(), tx, student.ID).Return(wallet, nil)
	f.walletRepo.EXPECT().UpdateBalance(gomock.Any(), tx, wallet.ID, 10).Return(nil)
	f.ledgerRepo.EXPECT().Create(gomock.Any(), tx, gomock.Any()).Return(nil)
	f.scanRepo.EXPECT().Create(gomock.Any(), tx, gomock.Any()).Return(nil)
	f.profileRepo.EXPECT().TouchLastActivity(gomock.Any(), student.ID, gomock.Any()).Return(false, assert.AnError)

	result, err := f.svc.AwardPoints(context.Background(), ports.AwardRequest{
		RequesterID: teacher.ID,
		StudentID:   student.ID,
		Points:      10,
		Reason:      "x",
	})
	require.NoError(t, err)
	assert.Equal(t, 10, result.NewBalance)
	assert.True(t, tx.committed)
}
