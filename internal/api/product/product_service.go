package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shop-api/internal/db"
)

var (
	// ErrNotFound means the product row does not (or no longer) exist.
	ErrNotFound = errors.New("product not found")
	// ErrVersionConflict means the row still exists but was modified since
	// the caller read it: the submitted row_version is stale.
	ErrVersionConflict = errors.New("concurrency conflict")
)

// Service is the resource store: straight SQL access to the products table.
type Service struct {
	db *sql.DB
}

func NewService(database *sql.DB) *Service {
	return &Service{db: database}
}

const productColumns = "id, name, description, price, row_version, created_at, updated_at"

func (s *Service) List(ctx context.Context) ([]db.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+productColumns+" FROM products ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	products := []db.Product{}
	for rows.Next() {
		var p db.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.RowVersion, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}

	return products, nil
}

// GetByID returns (nil, nil) when no product exists with the given id.
func (s *Service) GetByID(ctx context.Context, id int64) (*db.Product, error) {
	var p db.Product
	err := s.db.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = ?", id).
		Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.RowVersion, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding product: %w", err)
	}
	return &p, nil
}

// Create inserts the product and assigns its id from the database.
func (s *Service) Create(ctx context.Context, p *db.Product) error {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO products (name, description, price) VALUES (?, ?, ?)",
		p.Name, p.Description, p.Price)
	if err != nil {
		return fmt.Errorf("creating product: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading product id: %w", err)
	}
	p.ID = id
	p.RowVersion = 1
	return nil
}

// Update replaces the row, guarded by row_version. When the guarded write
// touches nothing, a re-read distinguishes a vanished row (ErrNotFound) from
// a stale one (ErrVersionConflict).
func (s *Service) Update(ctx context.Context, p *db.Product) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE products SET name = ?, description = ?, price = ?, row_version = row_version + 1 WHERE id = ? AND row_version = ?",
		p.Name, p.Description, p.Price, p.ID, p.RowVersion)
	if err != nil {
		return fmt.Errorf("updating product: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating product: %w", err)
	}
	if rows == 0 {
		existing, err := s.GetByID(ctx, p.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrNotFound
		}
		return ErrVersionConflict
	}

	p.RowVersion++
	return nil
}

// Delete removes the row and returns its last representation.
func (s *Service) Delete(ctx context.Context, id int64) (*db.Product, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("deleting product: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("deleting product: %w", err)
	}
	if rows == 0 {
		return nil, ErrNotFound
	}

	return p, nil
}
