package account

import (
	"context"
	"sync"

	"crm-notifications/internal/common/contracts"
	"crm-notifications/internal/common/models"
	"crm-notifications/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "user_company_accounts"

type AccountRepository interface {
	// FindUserCompanyAccount returns a ModelNotFoundError when the user is not
	// a member of the company account
	FindUserCompanyAccount(ctx context.Context, userID, companyAccountID models.ID) (contracts.UserCompanyAccount, error)
	Save(ctx context.Context, account *UserCompanyAccount) error
}

type AccountRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewAccountRepository(mongodb *database.MongodbDB) AccountRepository {
	return &AccountRepositoryImpl{
		Collection: mongodb.DB.Collection(CollectionName),
	}
}

func (r *AccountRepositoryImpl) FindUserCompanyAccount(ctx context.Context, userID, companyAccountID models.ID) (contracts.UserCompanyAccount, error) {
	var account UserCompanyAccount
	err := r.Collection.FindOne(ctx, bson.M{
		"user_id":            userID,
		"company_account_id": companyAccountID,
	}).Decode(&account)
	if err == mongo.ErrNoDocuments {
		return nil, models.NewModelNotFoundError("UserCompanyAccount", userID.String(), companyAccountID.String())
	}
	if err != nil {
		return nil, err
	}
	return account.Contract(), nil
}

func (r *AccountRepositoryImpl) Save(ctx context.Context, account *UserCompanyAccount) error {
	if account.ID == "" {
		account.ID = models.NextID()
	}
	_, err := r.Collection.ReplaceOne(ctx, bson.M{"_id": account.ID}, account, options.Replace().SetUpsert(true))
	return err
}

// MemoryAccountRepository is the in-process AccountRepository
type MemoryAccountRepository struct {
	mu       sync.RWMutex
	accounts map[models.ID]UserCompanyAccount
}

func NewMemoryAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{accounts: make(map[models.ID]UserCompanyAccount)}
}

func (r *MemoryAccountRepository) FindUserCompanyAccount(ctx context.Context, userID, companyAccountID models.ID) (contracts.UserCompanyAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if a.UserID == userID && a.CompanyAccountID == companyAccountID {
			return a.Contract(), nil
		}
	}
	return nil, models.NewModelNotFoundError("UserCompanyAccount", userID.String(), companyAccountID.String())
}

func (r *MemoryAccountRepository) Save(ctx context.Context, account *UserCompanyAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if account.ID == "" {
		account.ID = models.NextID()
	}
	r.accounts[account.ID] = *account
	return nil
}
