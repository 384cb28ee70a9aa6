package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/mediatrack/internal/models"
)

// ReferenceRepository reads the fixture tables seeded on first boot. They have no write operations.
type ReferenceRepository struct {
	db *sql.DB
}

func NewReferenceRepository(db *sql.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

func (r *ReferenceRepository) ListMediaTypes(ctx context.Context) ([]models.MediaType, error) {
	return queryAll(ctx, r.db, `SELECT type_id, type_name FROM media_types ORDER BY type_id`,
		func(row scanner) (models.MediaType, error) {
			var t models.MediaType
			err := row.Scan(&t.TypeID, &t.TypeName)
			return t, err
		})
}

func (r *ReferenceRepository) ListCreatorRoles(ctx context.Context) ([]models.CreatorRole, error) {
	return queryAll(ctx, r.db, `SELECT role_id, role_name FROM creator_roles ORDER BY role_id`,
		func(row scanner) (models.CreatorRole, error) {
			var cr models.CreatorRole
			err := row.Scan(&cr.RoleID, &cr.RoleName)
			return cr, err
		})
}

func (r *ReferenceRepository) ListActivityStatuses(ctx context.Context) ([]models.ActivityStatus, error) {
	return queryAll(ctx, r.db, `SELECT status_id, name FROM activity_statuses ORDER BY status_id`,
		func(row scanner) (models.ActivityStatus, error) {
			var s models.ActivityStatus
			err := row.Scan(&s.StatusID, &s.Name)
			return s, err
		})
}

func (r *ReferenceRepository) ListPlatforms(ctx context.Context) ([]models.Platform, error) {
	return queryAll(ctx, r.db, `SELECT platform_id, name, base_url FROM platforms ORDER BY name`,
		func(row scanner) (models.Platform, error) {
			var (
				p       models.Platform
				baseURL sql.NullString
			)
			err := row.Scan(&p.PlatformID, &p.Name, &baseURL)
			p.BaseURL = stringPtr(baseURL)
			return p, err
		})
}

// queryAll runs query and scans every row with scan. The result is never nil.
func queryAll[T any](ctx context.Context, q querier, query string, scan func(scanner) (T, error)) ([]T, error) {
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query reference data: %w", err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reference row: %w", err)
		}
		out = append(out, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return out, nil
}
