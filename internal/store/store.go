package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storefront/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// ErrNotFound signals that a requested row does not exist. Callers that
// treat absence as a declined operation check for it with errors.Is.
var ErrNotFound = errors.New("not found")

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// GetProductByID retrieves a product by ID
func (s *Store) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, "SELECT * FROM products WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ProductFilter narrows and pages a product listing. Zero values mean
// "no filter" / "no limit".
type ProductFilter struct {
	BrandID string
	TypeID  string
	Offset  int
	Limit   int
}

// GetProducts retrieves products matching the filter
func (s *Store) GetProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	query := "SELECT * FROM products WHERE 1=1"
	args := []interface{}{}

	if filter.BrandID != "" {
		args = append(args, filter.BrandID)
		query += fmt.Sprintf(" AND brand_id = $%d", len(args))
	}
	if filter.TypeID != "" {
		args = append(args, filter.TypeID)
		query += fmt.Sprintf(" AND type_id = $%d", len(args))
	}

	query += " ORDER BY name"

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	products := []models.Product{}
	err := s.db.SelectContext(ctx, &products, query, args...)
	return products, err
}

// GetDeliveryMethodByID retrieves a delivery method by ID
func (s *Store) GetDeliveryMethodByID(ctx context.Context, id string) (*models.DeliveryMethod, error) {
	var method models.DeliveryMethod
	err := s.db.GetContext(ctx, &method, "SELECT * FROM delivery_methods WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("delivery method %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &method, nil
}

// GetDeliveryMethods retrieves all delivery methods, cheapest first
func (s *Store) GetDeliveryMethods(ctx context.Context) ([]models.DeliveryMethod, error) {
	methods := []models.DeliveryMethod{}
	err := s.db.SelectContext(ctx, &methods, "SELECT * FROM delivery_methods ORDER BY price")
	return methods, err
}
