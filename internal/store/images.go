package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ItemImage is a stored photo of a stock item.
type ItemImage struct {
	Data []byte
	MIME string
}

// SetItemImage stores or replaces the photo of an item.
func SetItemImage(ctx context.Context, db *sql.DB, itemID string, data []byte, mime string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO item_images (item_id, image, image_mime, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (item_id) DO UPDATE SET image = excluded.image, image_mime = excluded.image_mime,
		 updated_at = CURRENT_TIMESTAMP`,
		itemID, data, mime,
	)
	if err != nil {
		return fmt.Errorf("setting item image: %w", err)
	}
	return nil
}

// GetItemImage returns the photo of an item, or nil if it has none.
func GetItemImage(ctx context.Context, db *sql.DB, itemID string) (*ItemImage, error) {
	img := &ItemImage{}
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM item_images WHERE item_id = ?`, itemID,
	).Scan(&img.Data, &img.MIME)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item image: %w", err)
	}
	return img, nil
}

// DeleteItemImage removes the photo of an item, if any.
func DeleteItemImage(ctx context.Context, db *sql.DB, itemID string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM item_images WHERE item_id = ?`, itemID)
	if err != nil {
		return fmt.Errorf("deleting item image: %w", err)
	}
	return nil
}
