package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vistamar/listings-api/internal/database"
	"github.com/vistamar/listings-api/internal/models"
)

// ErrFavoriteNotFound is returned when a removal targets a favorite the
// visitor does not have.
var ErrFavoriteNotFound = errors.New("favorite not found")

// FavoritesRepository defines the data access operations for saved
// listings. Favorites are presentation-layer state and live entirely
// outside the aggregation core.
type FavoritesRepository interface {
	// ListByVisitor returns the visitor's favorites, newest first.
	// Returns an empty slice when none exist (not an error).
	ListByVisitor(ctx context.Context, visitorID string) ([]models.Favorite, error)

	// Add saves a listing for the visitor. Saving the same property twice
	// is idempotent and returns the existing row.
	Add(ctx context.Context, fav models.Favorite) (*models.Favorite, error)

	// Remove deletes a visitor's favorite by property id.
	// Returns ErrFavoriteNotFound when nothing was removed.
	Remove(ctx context.Context, visitorID, propertyID string) error
}

// favoritesRepository is the concrete pgx-backed implementation.
type favoritesRepository struct {
	db *database.Database
}

// NewFavoritesRepository creates a new FavoritesRepository instance.
func NewFavoritesRepository(db *database.Database) FavoritesRepository {
	return &favoritesRepository{db: db}
}

func (r *favoritesRepository) ListByVisitor(ctx context.Context, visitorID string) ([]models.Favorite, error) {
	query := `
		SELECT id, visitor_id, property_id, property_code, provider, title, city, sale_price, created_at
		FROM favorites
		WHERE visitor_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Pool.Query(ctx, query, visitorID)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites: %w", err)
	}
	defer rows.Close()

	favorites := make([]models.Favorite, 0)
	for rows.Next() {
		var fav models.Favorite
		if err := rows.Scan(
			&fav.ID,
			&fav.VisitorID,
			&fav.PropertyID,
			&fav.PropertyCode,
			&fav.Provider,
			&fav.Title,
			&fav.City,
			&fav.SalePrice,
			&fav.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		favorites = append(favorites, fav)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate favorites: %w", err)
	}

	return favorites, nil
}

func (r *favoritesRepository) Add(ctx context.Context, fav models.Favorite) (*models.Favorite, error) {
	if fav.ID == "" {
		fav.ID = uuid.New().String()
	}

	// The (visitor_id, property_id) unique constraint makes re-saving a
	// no-op that hands back the existing row.
	query := `
		INSERT INTO favorites (id, visitor_id, property_id, property_code, provider, title, city, sale_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (visitor_id, property_id) DO UPDATE SET property_id = EXCLUDED.property_id
		RETURNING id, visitor_id, property_id, property_code, provider, title, city, sale_price, created_at`

	var saved models.Favorite
	err := r.db.Pool.QueryRow(ctx, query,
		fav.ID,
		fav.VisitorID,
		fav.PropertyID,
		fav.PropertyCode,
		fav.Provider,
		fav.Title,
		fav.City,
		fav.SalePrice,
	).Scan(
		&saved.ID,
		&saved.VisitorID,
		&saved.PropertyID,
		&saved.PropertyCode,
		&saved.Provider,
		&saved.Title,
		&saved.City,
		&saved.SalePrice,
		&saved.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert favorite: %w", err)
	}

	return &saved, nil
}

func (r *favoritesRepository) Remove(ctx context.Context, visitorID, propertyID string) error {
	query := `DELETE FROM favorites WHERE visitor_id = $1 AND property_id = $2`

	tag, err := r.db.Pool.Exec(ctx, query, visitorID, propertyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrFavoriteNotFound
		}
		return fmt.Errorf("failed to delete favorite: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrFavoriteNotFound
	}
	return nil
}
