package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/example/courses-service/internal/domain"
)

// PostgresCourseRepo stores each course as a jsonb document next to the
// columns it is filtered by and its version.
type PostgresCourseRepo struct {
	Pool *pgxpool.Pool
}

func NewPostgresCourseRepo(pool *pgxpool.Pool) *PostgresCourseRepo {
	return &PostgresCourseRepo{Pool: pool}
}

func (r *PostgresCourseRepo) Create(ctx context.Context, c *domain.Course) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	_, err = r.Pool.Exec(ctx, `INSERT INTO courses(id, creator, version, payload) VALUES($1, $2, 1, $3)`,
		c.ID, c.Creator, raw)
	if err != nil {
		return fmt.Errorf("insert course %s: %w", c.ID, err)
	}
	c.Version = 1
	return nil
}

func (r *PostgresCourseRepo) GetByID(ctx context.Context, id string) (*domain.Course, error) {
	row := r.Pool.QueryRow(ctx, `SELECT version, payload FROM courses WHERE id = $1`, id)
	c, err := scanCourse(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PostgresCourseRepo) List(ctx context.Context) ([]domain.Course, error) {
	return r.query(ctx, `SELECT version, payload FROM courses ORDER BY id`)
}

func (r *PostgresCourseRepo) ListByCreator(ctx context.Context, username string) ([]domain.Course, error) {
	return r.query(ctx, `SELECT version, payload FROM courses WHERE creator = $1 ORDER BY id`, username)
}

func (r *PostgresCourseRepo) ListByAccess(ctx context.Context, username string) ([]domain.Course, error) {
	return r.query(ctx, `SELECT version, payload FROM courses
        WHERE payload->'access' @> jsonb_build_array($1::text) ORDER BY id`, username)
}

func (r *PostgresCourseRepo) Update(ctx context.Context, c *domain.Course) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	tag, err := r.Pool.Exec(ctx, `UPDATE courses SET payload = $3, creator = $4, version = version + 1
        WHERE id = $1 AND version = $2`, c.ID, c.Version, raw, c.Creator)
	if err != nil {
		return fmt.Errorf("update course %s: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.Pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM courses WHERE id = $1)`, c.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrConflict
	}
	c.Version++
	return nil
}

func (r *PostgresCourseRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresCourseRepo) DeleteByCreator(ctx context.Context, username string) (int64, error) {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM courses WHERE creator = $1`, username)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PostgresCourseRepo) query(ctx context.Context, sql string, args ...any) ([]domain.Course, error) {
	rows, err := r.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]domain.Course, 0)
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanCourse(row pgx.Row) (domain.Course, error) {
	var c domain.Course
	var version int64
	var raw []byte
	if err := row.Scan(&version, &raw); err != nil {
		return c, err
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		return c, fmt.Errorf("decode course: %w", err)
	}
	c.Version = version
	return c, nil
}

// PostgresReviewRepo stores reviews as jsonb with the filter columns broken out.
type PostgresReviewRepo struct {
	Pool *pgxpool.Pool
}

func NewPostgresReviewRepo(pool *pgxpool.Pool) *PostgresReviewRepo {
	return &PostgresReviewRepo{Pool: pool}
}

func (r *PostgresReviewRepo) Create(ctx context.Context, rv *domain.Review) error {
	raw, err := json.Marshal(rv)
	if err != nil {
		return err
	}
	_, err = r.Pool.Exec(ctx, `INSERT INTO reviews(id, course, material, creator, reviewed_user, payload)
        VALUES($1, $2, $3, $4, $5, $6)`, rv.ID, rv.Course, rv.Material, rv.Creator, rv.User, raw)
	return err
}

func (r *PostgresReviewRepo) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	var raw []byte
	err := r.Pool.QueryRow(ctx, `SELECT payload FROM reviews WHERE id = $1`, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var rv domain.Review
	if err := json.Unmarshal(raw, &rv); err != nil {
		return nil, fmt.Errorf("decode review: %w", err)
	}
	return &rv, nil
}

func (r *PostgresReviewRepo) Find(ctx context.Context, filter domain.ReviewFilter) ([]domain.Review, error) {
	var where []string
	var args []any
	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		where = append(where, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("course", filter.Course)
	add("material", filter.Material)
	add("creator", filter.Creator)
	add("reviewed_user", filter.User)

	sql := `SELECT payload FROM reviews`
	if len(where) > 0 {
		sql += ` WHERE ` + strings.Join(where, " AND ")
	}
	sql += ` ORDER BY id`

	rows, err := r.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]domain.Review, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var rv domain.Review
		if err := json.Unmarshal(raw, &rv); err != nil {
			// skip corrupted row
			continue
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (r *PostgresReviewRepo) Update(ctx context.Context, rv *domain.Review) error {
	raw, err := json.Marshal(rv)
	if err != nil {
		return err
	}
	tag, err := r.Pool.Exec(ctx, `UPDATE reviews SET course = $2, material = $3, creator = $4, reviewed_user = $5, payload = $6
        WHERE id = $1`, rv.ID, rv.Course, rv.Material, rv.Creator, rv.User, raw)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresReviewRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// PostgresProfileRepo is the local view of identity-service users.
type PostgresProfileRepo struct {
	Pool *pgxpool.Pool
}

func NewPostgresProfileRepo(pool *pgxpool.Pool) *PostgresProfileRepo {
	return &PostgresProfileRepo{Pool: pool}
}

func (r *PostgresProfileRepo) Upsert(ctx context.Context, p domain.UserProfile) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = r.Pool.Exec(ctx, `INSERT INTO user_profiles(username, payload) VALUES($1, $2)
        ON CONFLICT (username) DO UPDATE SET payload = EXCLUDED.payload`, p.Username, raw)
	return err
}

func (r *PostgresProfileRepo) DeleteByUsername(ctx context.Context, username string) (int64, error) {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM user_profiles WHERE username = $1`, username)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

var (
	_ domain.CourseRepository  = (*PostgresCourseRepo)(nil)
	_ domain.ReviewRepository  = (*PostgresReviewRepo)(nil)
	_ domain.ProfileRepository = (*PostgresProfileRepo)(nil)
)

// EnsureSchema creates the tables if they are missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS courses (
  id text PRIMARY KEY,
  creator text NOT NULL,
  version bigint NOT NULL DEFAULT 1,
  payload jsonb NOT NULL
);
CREATE INDEX IF NOT EXISTS courses_creator_idx ON courses (creator);
CREATE TABLE IF NOT EXISTS reviews (
  id text PRIMARY KEY,
  course text NOT NULL DEFAULT '',
  material text NOT NULL DEFAULT '',
  creator text NOT NULL DEFAULT '',
  reviewed_user text NOT NULL DEFAULT '',
  payload jsonb NOT NULL
);
CREATE INDEX IF NOT EXISTS reviews_course_idx ON reviews (course);
CREATE INDEX IF NOT EXISTS reviews_material_idx ON reviews (material);
CREATE TABLE IF NOT EXISTS user_profiles (
  username text PRIMARY KEY,
  payload jsonb NOT NULL
);`)
	return err
}
