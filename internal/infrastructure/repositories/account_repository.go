package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/wiz0007/WeChat-server/domain"
)

// AccountRepositoryImpl implements domain.AccountRepository using GORM
type AccountRepositoryImpl struct {
	db *gorm.DB
}

// DBAccount represents the database model for Account (with GORM tags)
type DBAccount struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"size:255"`
	Username     string `gorm:"uniqueIndex;size:64"`
	Email        string `gorm:"uniqueIndex;size:255"`
	PasswordHash string `gorm:"column:password"`
	GoogleID     string `gorm:"index;size:64"`
	Avatar       string `gorm:"size:512"`
	IsVerified   bool   `gorm:"index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName returns the table name for GORM
func (DBAccount) TableName() string {
	return "accounts"
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) domain.AccountRepository {
	return &AccountRepositoryImpl{db: db}
}

// Create implements domain.AccountRepository
func (r *AccountRepositoryImpl) Create(ctx context.Context, account *domain.Account) error {
	dbAccount := r.domainToDB(account)
	if err := r.db.WithContext(ctx).Create(dbAccount).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrAccountExists
		}
		return err
	}
	account.ID = dbAccount.ID
	account.CreatedAt = dbAccount.CreatedAt
	account.UpdatedAt = dbAccount.UpdatedAt
	return nil
}

// FindByEmail implements domain.AccountRepository
func (r *AccountRepositoryImpl) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var dbAccount DBAccount
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&dbAccount).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return r.dbToDomain(&dbAccount), nil
}

// FindByID implements domain.AccountRepository
func (r *AccountRepositoryImpl) FindByID(ctx context.Context, id uint) (*domain.Account, error) {
	var dbAccount DBAccount
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&dbAccount).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return r.dbToDomain(&dbAccount), nil
}

// FindAllExcept implements domain.AccountRepository
func (r *AccountRepositoryImpl) FindAllExcept(ctx context.Context, id uint) ([]*domain.Account, error) {
	var dbAccounts []DBAccount
	err := r.db.WithContext(ctx).Where("id <> ?", id).Order("name asc").Find(&dbAccounts).Error
	if err != nil {
		return nil, err
	}

	accounts := make([]*domain.Account, 0, len(dbAccounts))
	for i := range dbAccounts {
		accounts = append(accounts, r.dbToDomain(&dbAccounts[i]))
	}
	return accounts, nil
}

// Update implements domain.AccountRepository
func (r *AccountRepositoryImpl) Update(ctx context.Context, account *domain.Account) error {
	dbAccount := r.domainToDB(account)
	return r.db.WithContext(ctx).Save(dbAccount).Error
}

// MarkVerified implements domain.AccountRepository
func (r *AccountRepositoryImpl) MarkVerified(ctx context.Context, accountID uint) error {
	return r.db.WithContext(ctx).Model(&DBAccount{}).Where("id = ?", accountID).Update("is_verified", true).Error
}

// UpdatePassword implements domain.AccountRepository
func (r *AccountRepositoryImpl) UpdatePassword(ctx context.Context, accountID uint, passwordHash string) error {
	return r.db.WithContext(ctx).Model(&DBAccount{}).Where("id = ?", accountID).Update("password", passwordHash).Error
}

// domainToDB converts domain account to database account
func (r *AccountRepositoryImpl) domainToDB(account *domain.Account) *DBAccount {
	return &DBAccount{
		ID:           account.ID,
		Name:         account.Name,
		Username:     account.Username,
		Email:        account.Email,
		PasswordHash: account.PasswordHash,
		GoogleID:     account.GoogleID,
		Avatar:       account.Avatar,
		IsVerified:   account.IsVerified,
	}
}

// dbToDomain converts database account to domain account
func (r *AccountRepositoryImpl) dbToDomain(dbAccount *DBAccount) *domain.Account {
	return &domain.Account{
		ID:           dbAccount.ID,
		Name:         dbAccount.Name,
		Username:     dbAccount.Username,
		Email:        dbAccount.Email,
		PasswordHash: dbAccount.PasswordHash,
		GoogleID:     dbAccount.GoogleID,
		Avatar:       dbAccount.Avatar,
		IsVerified:   dbAccount.IsVerified,
		CreatedAt:    dbAccount.CreatedAt,
		UpdatedAt:    dbAccount.UpdatedAt,
	}
}
