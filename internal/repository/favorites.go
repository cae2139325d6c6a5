package repository

import (
	"context"

	"flightshots/internal/models"
)

// ToggleFavorite reports whether the photo is in userID's favorites after the call.
func (r *PhotoRepository) ToggleFavorite(ctx context.Context, id, userID string) (bool, error) {
	var added bool
	_, err := r.update(ctx, id, func(p *models.Photo) error {
		p.Favorites, added = toggle(p.Favorites, userID)
		return nil
	})
	return added, err
}

func (r *PhotoRepository) IsFavorite(id, userID string) bool {
	p, ok := r.GetByID(id)
	if !ok {
		return false
	}
	return p.FavoritedBy(userID)
}

// UserFavorites lists the photos userID has favorited, whatever their status.
func (r *PhotoRepository) UserFavorites(userID string) []models.Photo {
	return r.filter(func(p models.Photo) bool { return p.FavoritedBy(userID) })
}
