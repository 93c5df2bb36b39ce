package repository

import (
	"context"
	"encoding/json"

	"evmapp/internal/database"
	"evmapp/internal/models"
)

type VolunteerRepository struct {
	db *database.DB
}

func NewVolunteerRepository(db *database.DB) *VolunteerRepository {
	return &VolunteerRepository{db: db}
}

func (r *VolunteerRepository) Create(ctx context.Context, volunteer *models.Volunteer) error {
	availability, err := json.Marshal(volunteer.Availability)
	if err != nil {
		return err
	}

	return r.db.QueryRowContext(ctx, `
		INSERT INTO volunteers (first_name, last_name, email, phone, address,
		                        city, state, volunteer_role, skills, availability, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`,
		volunteer.FirstName,
		volunteer.LastName,
		volunteer.Email,
		volunteer.Phone,
		volunteer.Address,
		volunteer.City,
		volunteer.State,
		volunteer.VolunteerRole,
		volunteer.Skills,
		availability,
		volunteer.Status,
	).Scan(&volunteer.ID, &volunteer.CreatedAt, &volunteer.UpdatedAt)
}

func (r *VolunteerRepository) List(ctx context.Context) ([]models.Volunteer, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, first_name, last_name, email, phone, address, city, state,
		       volunteer_role, skills, availability, status, created_at, updated_at
		FROM volunteers
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var volunteers []models.Volunteer
	for rows.Next() {
		var v models.Volunteer
		var availability []byte
		err := rows.Scan(
			&v.ID,
			&v.FirstName,
			&v.LastName,
			&v.Email,
			&v.Phone,
			&v.Address,
			&v.City,
			&v.State,
			&v.VolunteerRole,
			&v.Skills,
			&availability,
			&v.Status,
			&v.CreatedAt,
			&v.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		if len(availability) > 0 {
			if err := json.Unmarshal(availability, &v.Availability); err != nil {
				return nil, err
			}
		}
		volunteers = append(volunteers, v)
	}

	return volunteers, rows.Err()
}
