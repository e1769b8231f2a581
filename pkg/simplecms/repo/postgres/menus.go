package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

func (r *Repository) getMenu(ctx context.Context, db DBTX, name string) (*simplecms.MenuTree, error) {
	tree := &simplecms.MenuTree{}
	err := db.QueryRow(ctx, `SELECT id, name FROM menus WHERE name = $1`, name).Scan(&tree.Menu.ID, &tree.Menu.Name)
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(ctx, `
		SELECT id, menu_id, label, link_type, link_target, parent_id, sort_order
		FROM menu_items WHERE menu_id = $1 ORDER BY sort_order, id`, tree.Menu.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tree.Items = []*simplecms.MenuItem{}
	for rows.Next() {
		var item simplecms.MenuItem
		if err := rows.Scan(&item.ID, &item.MenuID, &item.Label, &item.LinkType,
			&item.LinkTarget, &item.ParentID, &item.SortOrder); err != nil {
			return nil, err
		}
		tree.Items = append(tree.Items, &item)
	}
	return tree, rows.Err()
}

func (r *Repository) GetMenu(ctx context.Context, name string) (*simplecms.MenuTree, error) {
	tree, err := r.getMenu(ctx, r.db, name)
	if err != nil {
		return nil, r.handlePostgresError("get menu", err)
	}
	return tree, nil
}

// ReplaceMenu upserts the menu row, then deletes and re-inserts its items in
// the same transaction.
func (r *Repository) ReplaceMenu(ctx context.Context, name string, items []*simplecms.MenuItem) (*simplecms.MenuTree, error) {
	var tree *simplecms.MenuTree
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var menuID uuid.UUID
		err := tx.QueryRow(ctx, `
			INSERT INTO menus (id, name) VALUES ($1, $2)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id`, uuid.New(), name).Scan(&menuID)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM menu_items WHERE menu_id = $1`, menuID); err != nil {
			return err
		}

		batch := &pgx.Batch{}
		for _, item := range items {
			batch.Queue(`
				INSERT INTO menu_items (id, menu_id, label, link_type, link_target, parent_id, sort_order)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				item.ID, menuID, item.Label, item.LinkType, item.LinkTarget, item.ParentID, item.SortOrder)
		}
		if batch.Len() > 0 {
			if err := tx.SendBatch(ctx, batch).Close(); err != nil {
				return err
			}
		}

		tree, err = r.getMenu(ctx, tx, name)
		return err
	})
	if err != nil {
		return nil, r.handlePostgresError("replace menu", err)
	}
	return tree, nil
}
