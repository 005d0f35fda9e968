package seed

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/SagarCoder007/modern-banking-system/internal/accounts"
	"github.com/SagarCoder007/modern-banking-system/internal/logger"
	"github.com/SagarCoder007/modern-banking-system/internal/models"
)

const seedPassword = "password123"

var demoCustomers = []struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Opening   string
}{
	{"alice", "alice@demo.bank", "Alice", "Nguyen", "1000.00"},
	{"bob", "bob@demo.bank", "Bob", "Martins", "500.00"},
	{"carol", "carol@demo.bank", "Carol", "Okafor", "250.00"},
}

// Run seeds one banker and a few demo customers with open accounts.
// Opening deposits go through the real ledger engine so the seeded
// balances come with matching ledger entries. Idempotent: skips if the
// banker already exists.
func Run(ctx context.Context, db *gorm.DB, accountsSvc *accounts.Service) {
	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", "banker").Count(&count).Error; err != nil {
		logger.Log.Fatal("seed check failed", zap.Error(err))
	}
	if count > 0 {
		logger.Log.Info("seed already applied, skipping")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Fatal("failed to hash seed password", zap.Error(err))
	}
	hashed := string(hash)

	banker := models.User{
		Username:  "banker",
		Email:     "banker@demo.bank",
		Password:  hashed,
		Role:      models.RoleBanker,
		FirstName: "Branch",
		LastName:  "Manager",
	}
	if err := db.Create(&banker).Error; err != nil {
		logger.Log.Fatal("seeding banker failed", zap.Error(err))
	}

	for _, c := range demoCustomers {
		user := models.User{
			Username:  c.Username,
			Email:     c.Email,
			Password:  hashed,
			Role:      models.RoleCustomer,
			FirstName: c.FirstName,
			LastName:  c.LastName,
		}
		if err := db.Create(&user).Error; err != nil {
			logger.Log.Fatal("seeding customer failed", zap.String("username", c.Username), zap.Error(err))
		}

		opening := decimal.RequireFromString(c.Opening)
		if _, err := accountsSvc.Open(ctx, user.ID, models.TypeSavings, opening); err != nil {
			logger.Log.Fatal("seeding account failed", zap.String("username", c.Username), zap.Error(err))
		}
	}

	logger.Log.Info("seeded banker and demo customers", zap.String("password", seedPassword))
}
