package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

// DBTX is an interface that allows us to use either a connection pool or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
	Begin(context.Context) (pgx.Tx, error)
}

// Repository implements simplecms.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

var _ simplecms.Repository = (*Repository)(nil)

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%w: %s violates %s", simplecms.ErrConflict, operation, pgErr.ConstraintName)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%w: referenced record not found (%s)", simplecms.ErrInvalidInput, pgErr.ConstraintName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required: %w", err)
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return simplecms.ErrNotFound
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

// itemTables names the tables backing one content kind.
type itemTables struct {
	items     string
	revisions string
	links     string
	fk        string
	article   bool
}

func tablesFor(kind simplecms.Kind) (itemTables, error) {
	switch kind {
	case simplecms.KindPage:
		return itemTables{items: "pages", revisions: "page_revisions", links: "page_categories", fk: "page_id"}, nil
	case simplecms.KindArticle:
		return itemTables{items: "articles", revisions: "article_revisions", links: "article_categories", fk: "article_id", article: true}, nil
	}
	return itemTables{}, fmt.Errorf("unknown content kind %q", kind)
}

// selectColumns returns the item projection, aliased as i. Pages project
// constant values for the article-only columns so both kinds scan the same way.
func (t itemTables) selectColumns() string {
	extra := `''::text, NULL::uuid, 0`
	if t.article {
		extra = `i.short_text, i.cover_image_id, i.reading_time_minutes`
	}
	return fmt.Sprintf(`i.id, i.title, i.slug, i.content, %s, i.status, i.publish_at, i.trashed_at,
		i.author_id, i.created_at, i.updated_at,
		ARRAY(SELECT l.category_id::text FROM %s l WHERE l.%s = i.id ORDER BY l.position)`,
		extra, t.links, t.fk)
}

func scanItem(row pgx.Row, kind simplecms.Kind) (*simplecms.Item, error) {
	var (
		item        simplecms.Item
		status      string
		categoryIDs []string
	)
	err := row.Scan(
		&item.ID, &item.Title, &item.Slug, &item.Content,
		&item.ShortText, &item.CoverImageID, &item.ReadingTimeMinutes,
		&status, &item.PublishAt, &item.TrashedAt,
		&item.AuthorID, &item.CreatedAt, &item.UpdatedAt,
		&categoryIDs)
	if err != nil {
		return nil, err
	}

	item.Kind = kind
	item.Status = simplecms.Status(status)
	item.PublishAt = utc(item.PublishAt)
	item.TrashedAt = utc(item.TrashedAt)
	item.CreatedAt = item.CreatedAt.UTC()
	item.UpdatedAt = item.UpdatedAt.UTC()
	item.CategoryIDs = make([]uuid.UUID, 0, len(categoryIDs))
	for _, s := range categoryIDs {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("invalid category id %q: %w", s, err)
		}
		item.CategoryIDs = append(item.CategoryIDs, id)
	}
	return &item, nil
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// Item operations

func (r *Repository) CreateItem(ctx context.Context, item *simplecms.Item, rev *simplecms.Revision) error {
	t, err := tablesFor(item.Kind)
	if err != nil {
		return err
	}

	err = pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var insertErr error
		if t.article {
			_, insertErr = tx.Exec(ctx, `
				INSERT INTO articles (
					id, title, slug, content, short_text, status, publish_at, trashed_at,
					author_id, cover_image_id, reading_time_minutes, created_at, updated_at
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
				item.ID, item.Title, item.Slug, item.Content, item.ShortText, string(item.Status),
				item.PublishAt, item.TrashedAt, item.AuthorID, item.CoverImageID,
				item.ReadingTimeMinutes, item.CreatedAt, item.UpdatedAt)
		} else {
			_, insertErr = tx.Exec(ctx, `
				INSERT INTO pages (
					id, title, slug, content, status, publish_at, trashed_at,
					author_id, created_at, updated_at
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
				item.ID, item.Title, item.Slug, item.Content, string(item.Status),
				item.PublishAt, item.TrashedAt, item.AuthorID, item.CreatedAt, item.UpdatedAt)
		}
		if insertErr != nil {
			return insertErr
		}
		if err := replaceLinks(ctx, tx, t, item.ID, item.CategoryIDs); err != nil {
			return err
		}
		return insertRevision(ctx, tx, t, rev)
	})
	if err != nil {
		return r.handlePostgresError("create "+string(item.Kind), err)
	}
	return nil
}

func replaceLinks(ctx context.Context, tx pgx.Tx, t itemTables, itemID uuid.UUID, categoryIDs []uuid.UUID) error {
	if _, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, t.links, t.fk), itemID); err != nil {
		return err
	}
	if len(categoryIDs) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (%s, category_id, position)
		SELECT $1, u.category_id, u.ord - 1
		FROM unnest($2::uuid[]) WITH ORDINALITY AS u(category_id, ord)`, t.links, t.fk),
		itemID, idStrings(categoryIDs))
	return err
}

func insertRevision(ctx context.Context, tx pgx.Tx, t itemTables, rev *simplecms.Revision) error {
	if rev == nil {
		return nil
	}
	if t.article {
		_, err := tx.Exec(ctx, `
			INSERT INTO article_revisions (id, article_id, title, content, short_text, author_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			rev.ID, rev.ItemID, rev.Title, rev.Content, rev.ShortText, rev.AuthorID, rev.CreatedAt)
		return err
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO page_revisions (id, page_id, title, content, author_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		rev.ID, rev.ItemID, rev.Title, rev.Content, rev.AuthorID, rev.CreatedAt)
	return err
}

func (r *Repository) getItem(ctx context.Context, db DBTX, kind simplecms.Kind, where string, arg interface{}) (*simplecms.Item, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s FROM %s i WHERE %s`, t.selectColumns(), t.items, where)
	return scanItem(db.QueryRow(ctx, query, arg), kind)
}

func (r *Repository) GetItem(ctx context.Context, kind simplecms.Kind, id uuid.UUID) (*simplecms.Item, error) {
	item, err := r.getItem(ctx, r.db, kind, "i.id = $1", id)
	if err != nil {
		return nil, r.handlePostgresError("get "+string(kind), err)
	}
	return item, nil
}

func (r *Repository) GetItemBySlug(ctx context.Context, kind simplecms.Kind, slug string) (*simplecms.Item, error) {
	item, err := r.getItem(ctx, r.db, kind, "i.slug = $1", slug)
	if err != nil {
		return nil, r.handlePostgresError("get "+string(kind)+" by slug", err)
	}
	return item, nil
}

func (r *Repository) SlugOwner(ctx context.Context, kind simplecms.Kind, slug string) (uuid.UUID, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return uuid.Nil, err
	}
	var id uuid.UUID
	err = r.db.QueryRow(ctx, fmt.Sprintf(`SELECT id FROM %s WHERE slug = $1`, t.items), slug).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, nil
	}
	if err != nil {
		return uuid.Nil, r.handlePostgresError("check slug", err)
	}
	return id, nil
}

func (r *Repository) SaveItem(ctx context.Context, item *simplecms.Item, rev *simplecms.Revision) error {
	t, err := tablesFor(item.Kind)
	if err != nil {
		return err
	}

	err = pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var tag pgconn.CommandTag
		var updateErr error
		if t.article {
			tag, updateErr = tx.Exec(ctx, `
				UPDATE articles SET
					title = $2, slug = $3, content = $4, short_text = $5, status = $6,
					publish_at = $7, trashed_at = $8, cover_image_id = $9,
					reading_time_minutes = $10, updated_at = $11
				WHERE id = $1`,
				item.ID, item.Title, item.Slug, item.Content, item.ShortText, string(item.Status),
				item.PublishAt, item.TrashedAt, item.CoverImageID, item.ReadingTimeMinutes, item.UpdatedAt)
		} else {
			tag, updateErr = tx.Exec(ctx, `
				UPDATE pages SET
					title = $2, slug = $3, content = $4, status = $5,
					publish_at = $6, trashed_at = $7, updated_at = $8
				WHERE id = $1`,
				item.ID, item.Title, item.Slug, item.Content, string(item.Status),
				item.PublishAt, item.TrashedAt, item.UpdatedAt)
		}
		if updateErr != nil {
			return updateErr
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		if err := replaceLinks(ctx, tx, t, item.ID, item.CategoryIDs); err != nil {
			return err
		}
		return insertRevision(ctx, tx, t, rev)
	})
	if err != nil {
		return r.handlePostgresError("update "+string(item.Kind), err)
	}
	return nil
}

// TransitionItem applies a status change with a conditional UPDATE so that
// concurrent transitions cannot both pass a RequireFrom check. updated_at
// only moves forward.
func (r *Repository) TransitionItem(ctx context.Context, kind simplecms.Kind, id uuid.UUID, tr simplecms.Transition) (*simplecms.Item, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}

	var item *simplecms.Item
	err = pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		query := fmt.Sprintf(`UPDATE %s SET status = $2, trashed_at = $3, updated_at = GREATEST(updated_at, $4) WHERE id = $1`, t.items)
		args := []interface{}{id, string(tr.To), tr.TrashedAt, tr.UpdatedAt}
		if tr.RequireFrom != "" {
			query += ` AND status = $5`
			args = append(args, string(tr.RequireFrom))
		}

		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			var current string
			err := tx.QueryRow(ctx, fmt.Sprintf(`SELECT status FROM %s WHERE id = $1`, t.items), id).Scan(&current)
			if err != nil {
				return err
			}
			return fmt.Errorf("%w: status is %s, expected %s", simplecms.ErrInvalidState, current, tr.RequireFrom)
		}

		item, err = r.getItem(ctx, tx, kind, "i.id = $1", id)
		return err
	})
	if err != nil {
		if errors.Is(err, simplecms.ErrInvalidState) {
			return nil, err
		}
		return nil, r.handlePostgresError("transition "+string(kind), err)
	}
	return item, nil
}

func (r *Repository) ListItems(ctx context.Context, kind simplecms.Kind, filter simplecms.ListFilter) ([]*simplecms.Item, int64, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, 0, err
	}
	filter = filter.Normalize()

	var (
		conditions []string
		args       []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Status == "" {
		conditions = append(conditions, "i.status <> 'trashed'")
	} else {
		conditions = append(conditions, "i.status = "+arg(string(filter.Status)))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		conditions = append(conditions, "i.search_vector @@ plainto_tsquery('simple', "+arg(q)+")")
	}
	if filter.CategoryID != nil {
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM %s l WHERE l.%s = i.id AND l.category_id = %s)",
			t.links, t.fk, arg(*filter.CategoryID)))
	}
	where := strings.Join(conditions, " AND ")

	var total int64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s i WHERE %s`, t.items, where)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, r.handlePostgresError("count "+string(kind), err)
	}

	orderBy := "i.updated_at DESC, i.id"
	if filter.Order == simplecms.OrderNewest {
		orderBy = "i.created_at DESC, i.id"
	}
	query := fmt.Sprintf(`SELECT %s FROM %s i WHERE %s ORDER BY %s LIMIT %s OFFSET %s`,
		t.selectColumns(), t.items, where, orderBy, arg(filter.PerPage), arg(filter.Offset()))
	items, err := r.queryItems(ctx, kind, query, args...)
	if err != nil {
		return nil, 0, r.handlePostgresError("list "+string(kind), err)
	}
	return items, total, nil
}

func (r *Repository) queryItems(ctx context.Context, kind simplecms.Kind, query string, args ...interface{}) ([]*simplecms.Item, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*simplecms.Item{}
	for rows.Next() {
		item, err := scanItem(rows, kind)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *Repository) RelatedItems(ctx context.Context, kind simplecms.Kind, itemID uuid.UUID, limit int) ([]*simplecms.Item, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
		SELECT %s FROM %s i
		WHERE i.status = 'published' AND i.id <> $1
		  AND EXISTS (
			SELECT 1 FROM %s l
			JOIN %s src ON src.category_id = l.category_id AND src.%s = $1
			WHERE l.%s = i.id)
		ORDER BY i.created_at DESC, i.id
		LIMIT $2`,
		t.selectColumns(), t.items, t.links, t.links, t.fk, t.fk)
	items, err := r.queryItems(ctx, kind, query, itemID, limit)
	if err != nil {
		return nil, r.handlePostgresError("related "+string(kind), err)
	}
	return items, nil
}

func (r *Repository) ListTrashed(ctx context.Context, kind simplecms.Kind) ([]*simplecms.Item, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s FROM %s i WHERE i.status = 'trashed' ORDER BY i.trashed_at DESC NULLS LAST, i.id`,
		t.selectColumns(), t.items)
	items, err := r.queryItems(ctx, kind, query)
	if err != nil {
		return nil, r.handlePostgresError("list trashed "+string(kind), err)
	}
	return items, nil
}

// Revision operations

func (r *Repository) revisionQuery(t itemTables) string {
	shortText := `''::text`
	if t.article {
		shortText = `short_text`
	}
	return fmt.Sprintf(`SELECT id, %s, title, content, %s, author_id, created_at FROM %s`,
		t.fk, shortText, t.revisions)
}

func scanRevision(row pgx.Row, kind simplecms.Kind) (*simplecms.Revision, error) {
	rev := simplecms.Revision{Kind: kind}
	if err := row.Scan(&rev.ID, &rev.ItemID, &rev.Title, &rev.Content, &rev.ShortText, &rev.AuthorID, &rev.CreatedAt); err != nil {
		return nil, err
	}
	rev.CreatedAt = rev.CreatedAt.UTC()
	return &rev, nil
}

// ListRevisions returns revisions newest first; seq breaks created_at ties.
func (r *Repository) ListRevisions(ctx context.Context, kind simplecms.Kind, itemID uuid.UUID) ([]*simplecms.Revision, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`%s WHERE %s = $1 ORDER BY created_at DESC, seq DESC`, r.revisionQuery(t), t.fk)

	rows, err := r.db.Query(ctx, query, itemID)
	if err != nil {
		return nil, r.handlePostgresError("list revisions", err)
	}
	defer rows.Close()

	revisions := []*simplecms.Revision{}
	for rows.Next() {
		rev, err := scanRevision(rows, kind)
		if err != nil {
			return nil, r.handlePostgresError("list revisions", err)
		}
		revisions = append(revisions, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list revisions", err)
	}
	return revisions, nil
}

func (r *Repository) GetRevision(ctx context.Context, kind simplecms.Kind, itemID, revisionID uuid.UUID) (*simplecms.Revision, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`%s WHERE id = $1 AND %s = $2`, r.revisionQuery(t), t.fk)
	rev, err := scanRevision(r.db.QueryRow(ctx, query, revisionID, itemID), kind)
	if err != nil {
		return nil, r.handlePostgresError("get revision", err)
	}
	return rev, nil
}

// Scheduler operations

func (r *Repository) PublishDue(ctx context.Context, kind simplecms.Kind, now time.Time) (int64, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return 0, err
	}
	tag, err := r.db.Exec(ctx, fmt.Sprintf(`
		UPDATE %s SET status = 'published', updated_at = GREATEST(updated_at, $1)
		WHERE status = 'scheduled' AND publish_at IS NOT NULL AND publish_at <= $1`, t.items), now)
	if err != nil {
		return 0, r.handlePostgresError("publish scheduled "+string(kind), err)
	}
	return tag.RowsAffected(), nil
}

// PurgeTrashed deletes expired trash. Revisions and category links go with
// the row through ON DELETE CASCADE.
func (r *Repository) PurgeTrashed(ctx context.Context, kind simplecms.Kind, cutoff time.Time) (int64, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return 0, err
	}
	tag, err := r.db.Exec(ctx, fmt.Sprintf(`
		DELETE FROM %s WHERE status = 'trashed' AND trashed_at IS NOT NULL AND trashed_at < $1`, t.items), cutoff)
	if err != nil {
		return 0, r.handlePostgresError("purge "+string(kind), err)
	}
	return tag.RowsAffected(), nil
}

// Category operations

func (r *Repository) CreateCategory(ctx context.Context, c *simplecms.Category) error {
	_, err := r.db.Exec(ctx, `INSERT INTO categories (id, name, slug) VALUES ($1, $2, $3)`, c.ID, c.Name, c.Slug)
	if err != nil {
		return r.handlePostgresError("create category", err)
	}
	return nil
}

func (r *Repository) GetCategory(ctx context.Context, id uuid.UUID) (*simplecms.Category, error) {
	var c simplecms.Category
	err := r.db.QueryRow(ctx, `SELECT id, name, slug FROM categories WHERE id = $1`, id).Scan(&c.ID, &c.Name, &c.Slug)
	if err != nil {
		return nil, r.handlePostgresError("get category", err)
	}
	return &c, nil
}

func (r *Repository) UpdateCategory(ctx context.Context, c *simplecms.Category) error {
	tag, err := r.db.Exec(ctx, `UPDATE categories SET name = $2, slug = $3 WHERE id = $1`, c.ID, c.Name, c.Slug)
	if err != nil {
		return r.handlePostgresError("update category", err)
	}
	if tag.RowsAffected() == 0 {
		return simplecms.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete category", err)
	}
	if tag.RowsAffected() == 0 {
		return simplecms.ErrNotFound
	}
	return nil
}

func (r *Repository) ListCategories(ctx context.Context) ([]*simplecms.Category, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, slug FROM categories ORDER BY name, id`)
	if err != nil {
		return nil, r.handlePostgresError("list categories", err)
	}
	defer rows.Close()

	categories := []*simplecms.Category{}
	for rows.Next() {
		var c simplecms.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug); err != nil {
			return nil, r.handlePostgresError("list categories", err)
		}
		categories = append(categories, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list categories", err)
	}
	return categories, nil
}

func (r *Repository) CategorySlugOwner(ctx context.Context, slug string) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.QueryRow(ctx, `SELECT id FROM categories WHERE slug = $1`, slug).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, nil
	}
	if err != nil {
		return uuid.Nil, r.handlePostgresError("check category slug", err)
	}
	return id, nil
}

// Media operations

func (r *Repository) CreateMedia(ctx context.Context, m *simplecms.Media) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO media (
			id, filename, original_filename, mime_type, size_bytes,
			alt_text, object_key, uploaded_by, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		m.ID, m.Filename, m.OriginalFilename, m.MimeType, m.SizeBytes,
		m.AltText, m.ObjectKey, m.UploadedBy, m.CreatedAt)
	if err != nil {
		return r.handlePostgresError("create media", err)
	}
	return nil
}

const mediaColumns = `id, filename, original_filename, mime_type, size_bytes, alt_text, object_key, uploaded_by, created_at`

func scanMedia(row pgx.Row) (*simplecms.Media, error) {
	var m simplecms.Media
	err := row.Scan(&m.ID, &m.Filename, &m.OriginalFilename, &m.MimeType, &m.SizeBytes,
		&m.AltText, &m.ObjectKey, &m.UploadedBy, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	m.CreatedAt = m.CreatedAt.UTC()
	return &m, nil
}

func (r *Repository) GetMedia(ctx context.Context, id uuid.UUID) (*simplecms.Media, error) {
	m, err := scanMedia(r.db.QueryRow(ctx, `SELECT `+mediaColumns+` FROM media WHERE id = $1`, id))
	if err != nil {
		return nil, r.handlePostgresError("get media", err)
	}
	return m, nil
}

func (r *Repository) ListMedia(ctx context.Context, limit, offset int) ([]*simplecms.Media, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM media`).Scan(&total); err != nil {
		return nil, 0, r.handlePostgresError("count media", err)
	}

	rows, err := r.db.Query(ctx, `SELECT `+mediaColumns+` FROM media ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, r.handlePostgresError("list media", err)
	}
	defer rows.Close()

	items := []*simplecms.Media{}
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, 0, r.handlePostgresError("list media", err)
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, r.handlePostgresError("list media", err)
	}
	return items, total, nil
}

// DeleteMedia removes the row; article covers are cleared by ON DELETE SET NULL.
func (r *Repository) DeleteMedia(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM media WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete media", err)
	}
	if tag.RowsAffected() == 0 {
		return simplecms.ErrNotFound
	}
	return nil
}
