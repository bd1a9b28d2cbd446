package config

import (
	"context"
	"errors"
	"log"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"gympulse/internal/adapters/persistence/models"
	"gympulse/internal/adapters/persistence/repositories"
	"gympulse/internal/core/domain"
	"gympulse/internal/pkg/password"
)

// SeedMasterData seeds the plan catalog and the default admin account
func SeedMasterData(db *gorm.DB) error {
	if err := seedPlans(db); err != nil {
		return err
	}

	if err := seedAdminUser(db); err != nil {
		return err
	}

	log.Println("✅ Master data seeded successfully")
	return nil
}

// planSeed describes one catalog plan with its monthly price per duration
// class. Longer commitments get a lower effective monthly rate.
type planSeed struct {
	Name        string
	Description string
	Monthly     map[domain.Duration]string
}

func seedPlans(db *gorm.DB) error {
	// An already populated catalog is operator-managed; leave it alone
	count, err := repositories.NewCatalogRepository(db).CountPlans(context.Background())
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	plans := []planSeed{
		{
			Name:        "Basic",
			Description: "Gym floor access during staffed hours",
			Monthly: map[domain.Duration]string{
				domain.DurationMonthly:    "29.99",
				domain.DurationThreeMonth: "27.99",
				domain.DurationSixMonth:   "25.99",
				domain.DurationAnnual:     "22.99",
			},
		},
		{
			Name:        "Standard",
			Description: "24/7 access plus group classes",
			Monthly: map[domain.Duration]string{
				domain.DurationMonthly:    "49.99",
				domain.DurationThreeMonth: "46.99",
				domain.DurationSixMonth:   "43.99",
				domain.DurationAnnual:     "39.99",
			},
		},
		{
			Name:        "Premium",
			Description: "Everything in Standard plus pool, sauna and guest passes",
			Monthly: map[domain.Duration]string{
				domain.DurationMonthly:    "79.99",
				domain.DurationThreeMonth: "74.99",
				domain.DurationSixMonth:   "69.99",
				domain.DurationAnnual:     "64.99",
			},
		},
		{
			Name:        "Elite",
			Description: "All access with monthly personal training sessions",
			Monthly: map[domain.Duration]string{
				domain.DurationMonthly:    "119.99",
				domain.DurationThreeMonth: "112.99",
				domain.DurationSixMonth:   "105.99",
				domain.DurationAnnual:     "99.99",
			},
		},
	}

	for _, seed := range plans {
		plan := models.Plan{
			Name:        seed.Name,
			Description: seed.Description,
			IsActive:    true,
		}
		for _, d := range domain.Durations {
			monthly, err := decimal.NewFromString(seed.Monthly[d])
			if err != nil {
				return err
			}
			plan.PricingTiers = append(plan.PricingTiers, models.PricingTier{
				Duration:     d,
				MonthlyPrice: monthly,
				TotalPrice:   monthly.Mul(decimal.NewFromInt(int64(d.Months()))).Round(2),
			})
		}

		if err := db.Create(&plan).Error; err != nil {
			return err
		}
		log.Printf("   Created plan: %s", plan.Name)
	}

	return nil
}

func seedAdminUser(db *gorm.DB) error {
	var existing models.StaffUser
	err := db.Where("username = ?", "admin").First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := password.Hash(getEnv("ADMIN_PASSWORD", "changeme123"))
	if err != nil {
		return err
	}

	admin := models.StaffUser{
		Username: "admin",
		Email:    getEnv("ADMIN_EMAIL", "admin@gympulse.fit"),
		Password: hash,
		Role:     domain.RoleAdmin,
		IsActive: true,
	}

	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Println("   Created default admin user")
	return nil
}
