// Package seed prepares a fresh database: the admin account and, optionally,
// a starter catalog read from YAML.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/catalog"
)

type AdminEnsurer interface {
	EnsureAdmin(ctx context.Context, email, password string) (bool, error)
}

type DBPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type Product struct {
	Name        string          `yaml:"name" validate:"required,max=200"`
	Price       decimal.Decimal `yaml:"price"`
	Description string          `yaml:"description" validate:"max=500"`
	ImageURL    string          `yaml:"imageUrl" validate:"max=500"`
	Category    string          `yaml:"category" validate:"max=50"`
	Stock       int             `yaml:"stock" validate:"gte=0"`
}

type Catalog struct {
	Products []Product `yaml:"products" validate:"dive"`
}

// LoadCatalog reads and validates a catalog file.
func LoadCatalog(path string) (Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(raw)
}

func ParseCatalog(raw []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog: %w", err)
	}
	if err := validator.New().Struct(c); err != nil {
		return Catalog{}, fmt.Errorf("invalid catalog: %w", err)
	}
	for i, p := range c.Products {
		if !p.Price.IsPositive() {
			return Catalog{}, fmt.Errorf("invalid catalog: product %q must have a positive price", p.Name)
		}
		if strings.TrimSpace(p.Category) == "" {
			c.Products[i].Category = catalog.DefaultCategory
		}
	}
	return c, nil
}

type Seeder struct {
	admin  AdminEnsurer
	pool   DBPool
	logger *slog.Logger
	now    func() time.Time
}

func New(admin AdminEnsurer, pool DBPool, logger *slog.Logger) *Seeder {
	return &Seeder{admin: admin, pool: pool, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// Run ensures the admin exists, then applies the catalog file when one is
// configured. It is safe to run on every start.
func (s *Seeder) Run(ctx context.Context, adminEmail, adminPassword, catalogFile string) error {
	created, err := s.admin.EnsureAdmin(ctx, adminEmail, adminPassword)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if created {
		s.logger.InfoContext(ctx, "admin account created", "email", adminEmail)
	}

	if catalogFile == "" {
		return nil
	}
	c, err := LoadCatalog(catalogFile)
	if err != nil {
		return err
	}
	return s.UpsertProducts(ctx, c.Products)
}

// UpsertProducts matches existing products by name, case-insensitively.
func (s *Seeder) UpsertProducts(ctx context.Context, products []Product) error {
	inserted, updated := 0, 0
	for _, p := range products {
		now := s.now()
		tag, err := s.pool.Exec(ctx, `
			UPDATE products
			SET price = $2, description = $3, image_url = $4, category = $5, stock = $6, is_active = TRUE, updated_at = $7
			WHERE lower(name) = lower($1)
		`, p.Name, p.Price, p.Description, p.ImageURL, p.Category, p.Stock, now)
		if err != nil {
			return fmt.Errorf("update product %q: %w", p.Name, err)
		}
		if tag.RowsAffected() > 0 {
			updated++
			continue
		}

		if _, err := s.pool.Exec(ctx, `
			INSERT INTO products (name, price, description, image_url, category, stock, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7, $7)
		`, p.Name, p.Price, p.Description, p.ImageURL, p.Category, p.Stock, now); err != nil {
			return fmt.Errorf("insert product %q: %w", p.Name, err)
		}
		inserted++
	}
	s.logger.InfoContext(ctx, "catalog seeded", "inserted", inserted, "updated", updated)
	return nil
}
