package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

const appColumns = `id, name, description, icon_id, url, page_id, sort_order, created_at, updated_at`

func scanApp(row pgx.Row) (*simplecms.App, error) {
	var a simplecms.App
	err := row.Scan(&a.ID, &a.Name, &a.Description, &a.IconID, &a.URL, &a.PageID,
		&a.SortOrder, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return &a, nil
}

// CreateApp appends the app after the current last one. The table lock keeps
// concurrent inserts from picking the same position.
func (r *Repository) CreateApp(ctx context.Context, app *simplecms.App) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `LOCK TABLE apps IN SHARE ROW EXCLUSIVE MODE`); err != nil {
			return err
		}
		return tx.QueryRow(ctx, `
			INSERT INTO apps (id, name, description, icon_id, url, page_id, sort_order, created_at, updated_at)
			SELECT $1, $2, $3, $4, $5, $6, COALESCE(MAX(sort_order), -1) + 1, $7, $8 FROM apps
			RETURNING sort_order`,
			app.ID, app.Name, app.Description, app.IconID, app.URL, app.PageID,
			app.CreatedAt, app.UpdatedAt).Scan(&app.SortOrder)
	})
	if err != nil {
		return r.handlePostgresError("create app", err)
	}
	return nil
}

func (r *Repository) GetApp(ctx context.Context, id uuid.UUID) (*simplecms.App, error) {
	app, err := scanApp(r.db.QueryRow(ctx, `SELECT `+appColumns+` FROM apps WHERE id = $1`, id))
	if err != nil {
		return nil, r.handlePostgresError("get app", err)
	}
	return app, nil
}

func (r *Repository) UpdateApp(ctx context.Context, app *simplecms.App) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE apps SET name = $2, description = $3, icon_id = $4, url = $5, page_id = $6,
			updated_at = GREATEST(updated_at, $7)
		WHERE id = $1`,
		app.ID, app.Name, app.Description, app.IconID, app.URL, app.PageID, app.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("update app", err)
	}
	if tag.RowsAffected() == 0 {
		return simplecms.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteApp(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM apps WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete app", err)
	}
	if tag.RowsAffected() == 0 {
		return simplecms.ErrNotFound
	}
	return nil
}

func (r *Repository) ListApps(ctx context.Context, limit, offset int) ([]*simplecms.App, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM apps`).Scan(&total); err != nil {
		return nil, 0, r.handlePostgresError("count apps", err)
	}

	rows, err := r.db.Query(ctx, `SELECT `+appColumns+` FROM apps ORDER BY sort_order, id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, r.handlePostgresError("list apps", err)
	}
	defer rows.Close()

	apps := []*simplecms.App{}
	for rows.Next() {
		app, err := scanApp(rows)
		if err != nil {
			return nil, 0, r.handlePostgresError("list apps", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, r.handlePostgresError("list apps", err)
	}
	return apps, total, nil
}

// ReorderApps applies every position in one statement. Ids with no row match
// nothing and are skipped.
func (r *Repository) ReorderApps(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx, `
		UPDATE apps a SET sort_order = u.ord - 1, updated_at = GREATEST(a.updated_at, $2)
		FROM unnest($1::uuid[]) WITH ORDINALITY AS u(id, ord)
		WHERE a.id = u.id`,
		idStrings(ids), at)
	if err != nil {
		return r.handlePostgresError("reorder apps", err)
	}
	return nil
}
