package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound    = errors.New("profile not found")
	ErrEmailExists = errors.New("profile with this email already exists")
)

type Repository interface {
	Create(ctx context.Context, p *Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	GetByEmail(ctx context.Context, email string) (*Profile, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Profile, error)
	UpdateAddress(ctx context.Context, id uuid.UUID, upd AddressUpdate) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const profileColumns = `id, email, password_hash, first_name, last_name, address, city, state, postal_code, country, phone, role, created_at, updated_at`

func scanProfile(row pgx.Row) (Profile, error) {
	var p Profile
	err := row.Scan(
		&p.ID,
		&p.Email,
		&p.PasswordHash,
		&p.FirstName,
		&p.LastName,
		&p.Address,
		&p.City,
		&p.State,
		&p.PostalCode,
		&p.Country,
		&p.Phone,
		&p.Role,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func (r *postgresRepository) Create(ctx context.Context, p *Profile) error {
	if p.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate profile id: %w", err)
		}
		p.ID = id
	}
	if p.Role == "" {
		p.Role = RoleCustomer
	}

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	query := `
		INSERT INTO profiles (id, email, password_hash, first_name, last_name, address, city, state, postal_code, country, phone, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.Exec(ctx, query,
		p.ID,
		p.Email,
		p.PasswordHash,
		p.FirstName,
		p.LastName,
		p.Address,
		p.City,
		p.State,
		p.PostalCode,
		p.Country,
		p.Phone,
		string(p.Role),
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrEmailExists
		}
		return fmt.Errorf("repository: failed to insert profile: %w", err)
	}

	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE id = $1
	`

	p, err := scanProfile(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select profile by id %s: %w", id, err)
	}

	return &p, nil
}

func (r *postgresRepository) GetByEmail(ctx context.Context, email string) (*Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE email = $1
	`

	p, err := scanProfile(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select profile by email: %w", err)
	}

	return &p, nil
}

func (r *postgresRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE id = ANY($1)
	`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query profiles by ids: %w", err)
	}
	defer rows.Close()

	profiles := make([]Profile, 0, len(ids))
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating profiles: %w", err)
	}

	return profiles, nil
}

func (r *postgresRepository) UpdateAddress(ctx context.Context, id uuid.UUID, upd AddressUpdate) error {
	query := `
		UPDATE profiles
		SET first_name = $1, last_name = $2, address = $3, city = $4, state = $5,
		    postal_code = $6, country = $7, phone = $8, updated_at = $9
		WHERE id = $10
	`

	cmdTag, err := r.db.Exec(ctx, query,
		upd.FirstName,
		upd.LastName,
		upd.Address,
		upd.City,
		upd.State,
		upd.PostalCode,
		upd.Country,
		upd.Phone,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to update profile address for %s: %w", id, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
