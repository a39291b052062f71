package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/dairypro/internal/auth/domain"
	"github.com/smallbiznis/dairypro/internal/auth/password"
	settingsdomain "github.com/smallbiznis/dairypro/internal/settings/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultCompanyName = "DairyPro"

	defaultAdminEmail    = "admin@dairypro.local"
	defaultAdminPassword = "admin"
	defaultAdminName     = "DairyPro Admin"
)

// EnsureCompanySettings seeds the singleton settings row for startup
// bootstrap.
func EnsureCompanySettings(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()
	var settings settingsdomain.CompanySettings
	err := db.WithContext(ctx).Where("id = ?", settingsdomain.SettingsID).First(&settings).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	now := time.Now().UTC()
	settings = settingsdomain.CompanySettings{
		ID:          settingsdomain.SettingsID,
		CompanyName: defaultCompanyName,
		Metadata:    datatypes.JSONMap{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return db.WithContext(ctx).Create(&settings).Error
}

// EnsureAdminUser seeds a default admin account so a fresh install is
// usable out of the box. It does nothing once any user exists.
func EnsureAdminUser(db *gorm.DB, email, plaintext string) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		email = defaultAdminEmail
	}
	if strings.TrimSpace(plaintext) == "" {
		plaintext = defaultAdminPassword
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&authdomain.User{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		hashed, err := password.Hash(plaintext)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		user := authdomain.User{
			ID:           node.Generate(),
			Email:        email,
			Name:         defaultAdminName,
			PasswordHash: hashed,
			Role:         authdomain.RoleAdmin,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return tx.Create(&user).Error
	})
}
