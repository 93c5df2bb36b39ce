package repository

import (
	"context"
	"database/sql"

	"evmapp/internal/database"
	"evmapp/internal/models"
)

type SponsorRepository struct {
	db *database.DB
}

func NewSponsorRepository(db *database.DB) *SponsorRepository {
	return &SponsorRepository{db: db}
}

func (r *SponsorRepository) List(ctx context.Context) ([]models.Sponsor, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, purpose, contact, cost, status
		FROM sponsors
		ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sponsors []models.Sponsor
	for rows.Next() {
		var s models.Sponsor
		var purpose, contact sql.NullString
		if err := rows.Scan(&s.ID, &s.Name, &purpose, &contact, &s.Cost, &s.Status); err != nil {
			return nil, err
		}
		s.Purpose = purpose.String
		s.Contact = contact.String
		sponsors = append(sponsors, s)
	}

	return sponsors, rows.Err()
}
