// Package seed loads demo users, wallets and merchants into a store.
package seed

import (
	"context"
	"fmt"

	"wallet-ledger/internal/core/domain"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Data is the content of a seed file.
type Data struct {
	Users     []User     `mapstructure:"users"`
	Merchants []Merchant `mapstructure:"merchants"`
}

// User is a seeded user together with the opening balance of its wallet.
type User struct {
	UserID  string `mapstructure:"user_id"`
	Name    string `mapstructure:"name"`
	Email   string `mapstructure:"email"`
	Phone   string `mapstructure:"phone"`
	Balance string `mapstructure:"balance"`
}

type Merchant struct {
	Code         string `mapstructure:"code"`
	Name         string `mapstructure:"name"`
	Category     string `mapstructure:"category"`
	ContactPhone string `mapstructure:"contact_phone"`
	Description  string `mapstructure:"description"`
	Rating       string `mapstructure:"rating"`
	Featured     bool   `mapstructure:"featured"`
	Logo         string `mapstructure:"logo"`
}

// Target is a store that can take seed data.
type Target interface {
	AddUser(ctx context.Context, u domain.User) error
	OpenWallet(ctx context.Context, userID string, balance decimal.Decimal) (*domain.Wallet, error)
	AddMerchant(ctx context.Context, m domain.Merchant) (*domain.Merchant, error)
}

// Load reads a YAML seed file.
func Load(path string) (*Data, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}

	var d Data
	if err := v.Unmarshal(&d); err != nil {
		return nil, fmt.Errorf("unmarshaling seed file: %w", err)
	}
	return &d, nil
}

// Apply writes d into t: users first, then their wallets, then merchants.
func Apply(ctx context.Context, t Target, d *Data, log zerolog.Logger) error {
	for _, u := range d.Users {
		if u.UserID == "" {
			return fmt.Errorf("seed user without user_id")
		}
		balance := decimal.Zero
		if u.Balance != "" {
			b, err := decimal.NewFromString(u.Balance)
			if err != nil {
				return fmt.Errorf("seed user %s: invalid balance %q: %w", u.UserID, u.Balance, err)
			}
			balance = b
		}

		if err := t.AddUser(ctx, domain.User{UserID: u.UserID, Name: u.Name, Email: u.Email, Phone: u.Phone}); err != nil {
			return fmt.Errorf("seed user %s: %w", u.UserID, err)
		}
		if _, err := t.OpenWallet(ctx, u.UserID, balance); err != nil {
			return fmt.Errorf("seed wallet %s: %w", u.UserID, err)
		}
	}

	for _, m := range d.Merchants {
		rating := decimal.Zero
		if m.Rating != "" {
			r, err := decimal.NewFromString(m.Rating)
			if err != nil {
				return fmt.Errorf("seed merchant %s: invalid rating %q: %w", m.Code, m.Rating, err)
			}
			rating = r
		}

		_, err := t.AddMerchant(ctx, domain.Merchant{
			MerchantCode: m.Code,
			Name:         m.Name,
			Category:     m.Category,
			ContactPhone: nonEmpty(m.ContactPhone),
			Description:  nonEmpty(m.Description),
			Rating:       rating,
			Featured:     m.Featured,
			Logo:         m.Logo,
		})
		if err != nil {
			return fmt.Errorf("seed merchant %s: %w", m.Code, err)
		}
	}

	log.Info().
		Int("users", len(d.Users)).
		Int("merchants", len(d.Merchants)).
		Msg("seed data applied")
	return nil
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
