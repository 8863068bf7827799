package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"debt-tracker/domain"
)

type debtRecord struct {
	ID        string `gorm:"primaryKey;size:36"`
	UserID    string `gorm:"size:36;index"`
	AccountID string `gorm:"size:36"`

	Name     string `gorm:"size:100"`
	Notes    string `gorm:"size:500"`
	Currency string `gorm:"size:8"`

	InitialAmount decimal.Decimal `gorm:"type:numeric(16,2)"`
	InterestRate  float64
	InterestType  string `gorm:"size:16"`
	TenureMonths  int

	StartDate        time.Time
	NextDueDate      time.Time `gorm:"index"`
	EndDate          *time.Time
	MonthlyPayment   decimal.Decimal `gorm:"type:numeric(16,2)"`
	MonthlyPrincipal decimal.Decimal `gorm:"type:numeric(16,2)"`
	MonthlyInterest  decimal.Decimal `gorm:"type:numeric(16,2)"`

	CurrentBalance     decimal.Decimal `gorm:"type:numeric(16,2)"`
	TotalInterestPaid  decimal.Decimal `gorm:"type:numeric(16,2)"`
	TotalPrincipalPaid decimal.Decimal `gorm:"type:numeric(16,2)"`
	AdditionalCharges  decimal.Decimal `gorm:"type:numeric(16,2)"`

	Status      string `gorm:"size:16;index"`
	IsGoodDebt  bool
	IsCompleted bool
	IsExpired   bool
	IsDeleted   bool `gorm:"index"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (debtRecord) TableName() string { return "debts" }

type debtPaymentRecord struct {
	ID              string          `gorm:"primaryKey;size:36"`
	DebtID          string          `gorm:"size:36;index"`
	AmountPaid      decimal.Decimal `gorm:"type:numeric(16,2)"`
	PrincipalAmount decimal.Decimal `gorm:"type:numeric(16,2)"`
	InterestAmount  decimal.Decimal `gorm:"type:numeric(16,2)"`
	PaymentDate     time.Time
	IsLate          bool
	CreatedAt       time.Time
}

func (debtPaymentRecord) TableName() string { return "debt_payments" }

// DebtRepositoryGorm is the Postgres-backed DebtRepository. Payment
// application runs in one transaction: a conditional UPDATE keyed on the
// previously read balance plus an INSERT of the ledger row, so two concurrent
// payments against one debt cannot both apply.
type DebtRepositoryGorm struct {
	db *gorm.DB
}

func NewDebtRepositoryGorm(dsn string) (*DebtRepositoryGorm, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.AutoMigrate(&debtRecord{}, &debtPaymentRecord{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &DebtRepositoryGorm{db: db}, nil
}

func (r *DebtRepositoryGorm) Create(ctx context.Context, debt domain.Debt) error {
	rec := recordFromDebt(debt)
	return r.db.WithContext(ctx).Create(&rec).Error
}

func (r *DebtRepositoryGorm) GetByID(ctx context.Context, id string) (domain.Debt, error) {
	var rec debtRecord
	err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Debt{}, fmt.Errorf("%w: debt %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return domain.Debt{}, err
	}
	return rec.toDomain(), nil
}

func (r *DebtRepositoryGorm) ListByUser(ctx context.Context, userID string) ([]domain.Debt, error) {
	var recs []debtRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_deleted = ?", userID, false).
		Order("created_at, id").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return toDomainList(recs), nil
}

func (r *DebtRepositoryGorm) ListActiveDueBefore(ctx context.Context, cutoff time.Time) ([]domain.Debt, error) {
	var recs []debtRecord
	err := r.db.WithContext(ctx).
		Where("status = ? AND is_deleted = ? AND next_due_date < ?", domain.StatusActive, false, cutoff).
		Order("id").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return toDomainList(recs), nil
}

func (r *DebtRepositoryGorm) Update(ctx context.Context, debt domain.Debt, prevBalance decimal.Decimal) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return conditionalUpdate(tx, debt, prevBalance)
	})
}

func (r *DebtRepositoryGorm) AddPayment(ctx context.Context, debt domain.Debt, payment domain.DebtPayment, prevBalance decimal.Decimal) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := conditionalUpdate(tx, debt, prevBalance); err != nil {
			return err
		}
		rec := debtPaymentRecord{
			ID:              payment.ID,
			DebtID:          payment.DebtID,
			AmountPaid:      payment.AmountPaid,
			PrincipalAmount: payment.PrincipalAmount,
			InterestAmount:  payment.InterestAmount,
			PaymentDate:     payment.PaymentDate,
			IsLate:          payment.IsLate,
		}
		return tx.Create(&rec).Error
	})
}

func (r *DebtRepositoryGorm) PaymentsByDebt(ctx context.Context, debtID string) ([]domain.DebtPayment, error) {
	var recs []debtPaymentRecord
	err := r.db.WithContext(ctx).
		Where("debt_id = ?", debtID).
		Order("payment_date, id").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	payments := make([]domain.DebtPayment, len(recs))
	for i, rec := range recs {
		payments[i] = domain.DebtPayment{
			ID:              rec.ID,
			DebtID:          rec.DebtID,
			AmountPaid:      rec.AmountPaid,
			PrincipalAmount: rec.PrincipalAmount,
			InterestAmount:  rec.InterestAmount,
			PaymentDate:     rec.PaymentDate,
			IsLate:          rec.IsLate,
		}
	}
	return payments, nil
}

func conditionalUpdate(tx *gorm.DB, debt domain.Debt, prevBalance decimal.Decimal) error {
	rec := recordFromDebt(debt)
	res := tx.Model(&debtRecord{}).
		Where("id = ? AND current_balance = ?", debt.ID, prevBalance).
		Select("*").Omit("id", "created_at").
		Updates(&rec)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := tx.Model(&debtRecord{}).Where("id = ?", debt.ID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: debt %s", domain.ErrNotFound, debt.ID)
		}
		return fmt.Errorf("%w: debt %s was modified concurrently", domain.ErrConflict, debt.ID)
	}
	return nil
}

func recordFromDebt(d domain.Debt) debtRecord {
	var endDate *time.Time
	if !d.EndDate.IsZero() {
		t := d.EndDate
		endDate = &t
	}
	return debtRecord{
		ID:                 d.ID,
		UserID:             d.UserID,
		AccountID:          d.AccountID,
		Name:               d.Name,
		Notes:              d.Notes,
		Currency:           d.Currency,
		InitialAmount:      d.InitialAmount,
		InterestRate:       d.InterestRate,
		InterestType:       string(d.InterestType),
		TenureMonths:       d.TenureMonths,
		StartDate:          d.StartDate,
		NextDueDate:        d.NextDueDate,
		EndDate:            endDate,
		MonthlyPayment:     d.MonthlyPayment,
		MonthlyPrincipal:   d.MonthlyPrincipal,
		MonthlyInterest:    d.MonthlyInterest,
		CurrentBalance:     d.CurrentBalance,
		TotalInterestPaid:  d.TotalInterestPaid,
		TotalPrincipalPaid: d.TotalPrincipalPaid,
		AdditionalCharges:  d.AdditionalCharges,
		Status:             string(d.Status),
		IsGoodDebt:         d.IsGoodDebt,
		IsCompleted:        d.IsCompleted,
		IsExpired:          d.IsExpired,
		IsDeleted:          d.IsDeleted,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

func (rec debtRecord) toDomain() domain.Debt {
	var endDate time.Time
	if rec.EndDate != nil {
		endDate = *rec.EndDate
	}
	return domain.Debt{
		ID:                 rec.ID,
		UserID:             rec.UserID,
		AccountID:          rec.AccountID,
		Name:               rec.Name,
		Notes:              rec.Notes,
		Currency:           rec.Currency,
		InitialAmount:      rec.InitialAmount,
		InterestRate:       rec.InterestRate,
		InterestType:       domain.InterestType(rec.InterestType),
		TenureMonths:       rec.TenureMonths,
		StartDate:          rec.StartDate,
		NextDueDate:        rec.NextDueDate,
		EndDate:            endDate,
		MonthlyPayment:     rec.MonthlyPayment,
		MonthlyPrincipal:   rec.MonthlyPrincipal,
		MonthlyInterest:    rec.MonthlyInterest,
		CurrentBalance:     rec.CurrentBalance,
		TotalInterestPaid:  rec.TotalInterestPaid,
		TotalPrincipalPaid: rec.TotalPrincipalPaid,
		AdditionalCharges:  rec.AdditionalCharges,
		Status:             domain.DebtStatus(rec.Status),
		IsGoodDebt:         rec.IsGoodDebt,
		IsCompleted:        rec.IsCompleted,
		IsExpired:          rec.IsExpired,
		IsDeleted:          rec.IsDeleted,
		CreatedAt:          rec.CreatedAt,
		UpdatedAt:          rec.UpdatedAt,
	}
}

func toDomainList(recs []debtRecord) []domain.Debt {
	debts := make([]domain.Debt, len(recs))
	for i, rec := range recs {
		debts[i] = rec.toDomain()
	}
	return debts
}
