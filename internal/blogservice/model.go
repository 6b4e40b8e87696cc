package blogservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/openpress/blogapi/internal/common"
)

var (
	ErrUserForeignKey = errors.New("user_id does not exist")
)

func newBlogModel(db *sql.DB) *BlogModel {
	return &BlogModel{db: db}
}

// ForeignKeyError is a helper function to check if the error is a foreign key constraint error.
func ForeignKeyError(err error, name string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "23503" && pqErr.Constraint == name {
			return true
		}
	}

	return false
}

func (m *BlogModel) insert(ctx context.Context, b *Blog) error {
	query := `
		INSERT INTO blogs (title, description, tags, body, user_id, state, reading_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, read_count, created_at`

	args := []any{
		b.Title,
		b.Description,
		pq.Array(b.Tags),
		b.Body,
		b.Author.ID,
		b.State,
		b.ReadingTime,
	}

	err := m.db.QueryRowContext(ctx, query, args...).Scan(&b.ID, &b.ReadCount, &b.CreatedAt)
	if err != nil {
		switch {
		case ForeignKeyError(err, "blogs_user_id_fkey"):
			return ErrUserForeignKey
		default:
			return err
		}
	}

	return nil
}

// getByID resolves a blog in any state, with the author populated. Used by
// the ownership guard and to shape responses after a write.
func (m *BlogModel) getByID(ctx context.Context, id int) (*Blog, error) {
	query := `
		SELECT b.id, b.title, b.description, b.tags, b.body, b.state, b.read_count, b.reading_time, b.created_at,
		       u.id, u.first_name, u.last_name, u.email
		FROM blogs b
		JOIN users u ON b.user_id = u.id
		WHERE b.id = $1`

	var b Blog
	err := m.db.QueryRowContext(ctx, query, id).Scan(
		&b.ID, &b.Title, &b.Description, pq.Array(&b.Tags), &b.Body, &b.State, &b.ReadCount, &b.ReadingTime, &b.CreatedAt,
		&b.Author.ID, &b.Author.FirstName, &b.Author.LastName, &b.Author.Email,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, common.ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &b, nil
}

// getPublishedAndIncrement is the single-fetch read path: one atomic UPDATE
// resolves the blog, bumps read_count, and returns the new row. A draft or a
// missing id both come back as no rows, so the caller cannot tell them apart.
func (m *BlogModel) getPublishedAndIncrement(ctx context.Context, id int) (*Blog, error) {
	query := `
		UPDATE blogs b
		SET read_count = b.read_count + 1
		FROM users u
		WHERE b.id = $1 AND b.state = 'published' AND u.id = b.user_id
		RETURNING b.id, b.title, b.description, b.tags, b.body, b.state, b.read_count, b.reading_time, b.created_at,
		          u.id, u.first_name, u.last_name, u.email`

	var b Blog
	err := m.db.QueryRowContext(ctx, query, id).Scan(
		&b.ID, &b.Title, &b.Description, pq.Array(&b.Tags), &b.Body, &b.State, &b.ReadCount, &b.ReadingTime, &b.CreatedAt,
		&b.Author.ID, &b.Author.FirstName, &b.Author.LastName, &b.Author.Email,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, common.ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &b, nil
}

// titleExists reports whether another blog already carries this exact title.
// Uniqueness is enforced here by convention, not by an index; the check and
// the following write leave a narrow accepted race window.
func (m *BlogModel) titleExists(ctx context.Context, title string, excludeID int) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM blogs WHERE title = $1 AND id != $2)`

	var exists bool
	err := m.db.QueryRowContext(ctx, query, title, excludeID).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}

// findAuthorIDs resolves a free-text author search to user ids by
// case-insensitive substring match over name parts and email.
func (m *BlogModel) findAuthorIDs(ctx context.Context, author string) ([]int64, error) {
	query := `
		SELECT id
		FROM users
		WHERE first_name ILIKE $1 OR last_name ILIKE $1 OR email ILIKE $1`

	rows, err := m.db.QueryContext(ctx, query, "%"+author+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (m *BlogModel) listBlogs(ctx context.Context, q *blogQuery, sortClause string, limit, offset int) ([]Blog, error) {
	query := fmt.Sprintf(`
		SELECT b.id, b.title, b.description, b.tags, b.body, b.state, b.read_count, b.reading_time, b.created_at,
		       u.id, u.first_name, u.last_name, u.email
		FROM blogs b
		JOIN users u ON b.user_id = u.id
		%s
		ORDER BY %s, b.id
		LIMIT $%d OFFSET $%d`, q.whereClause(), sortClause, len(q.args)+1, len(q.args)+2)

	args := append(append([]any{}, q.args...), limit, offset)

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	blogs := []Blog{}
	for rows.Next() {
		var b Blog
		err := rows.Scan(
			&b.ID, &b.Title, &b.Description, pq.Array(&b.Tags), &b.Body, &b.State, &b.ReadCount, &b.ReadingTime, &b.CreatedAt,
			&b.Author.ID, &b.Author.FirstName, &b.Author.LastName, &b.Author.Email,
		)
		if err != nil {
			return nil, err
		}
		blogs = append(blogs, b)
	}

	return blogs, rows.Err()
}

func (m *BlogModel) countBlogs(ctx context.Context, q *blogQuery) (int, error) {
	query := fmt.Sprintf(`
		SELECT count(*)
		FROM blogs b
		%s`, q.whereClause())

	var total int
	err := m.db.QueryRowContext(ctx, query, q.args...).Scan(&total)
	if err != nil {
		return 0, err
	}

	return total, nil
}

func (m *BlogModel) countByState(ctx context.Context, userID int) (draft int, published int, err error) {
	query := `
		SELECT count(*) FILTER (WHERE state = 'draft'),
		       count(*) FILTER (WHERE state = 'published')
		FROM blogs
		WHERE user_id = $1`

	err = m.db.QueryRowContext(ctx, query, userID).Scan(&draft, &published)
	return draft, published, err
}

func (m *BlogModel) update(ctx context.Context, b *Blog) error {
	query := `
		UPDATE blogs
		SET title = $1, description = $2, tags = $3, body = $4, state = $5, reading_time = $6
		WHERE id = $7`

	args := []any{
		b.Title,
		b.Description,
		pq.Array(b.Tags),
		b.Body,
		b.State,
		b.ReadingTime,
		b.ID,
	}

	res, err := m.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	return oneRowAffected(res)
}

func (m *BlogModel) updateState(ctx context.Context, id int, state BlogState) error {
	query := `
		UPDATE blogs
		SET state = $1
		WHERE id = $2`

	res, err := m.db.ExecContext(ctx, query, state, id)
	if err != nil {
		return err
	}

	return oneRowAffected(res)
}

func (m *BlogModel) deleteBlog(ctx context.Context, id int) error {
	query := `
		DELETE FROM blogs
		WHERE id = $1`

	res, err := m.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return oneRowAffected(res)
}

func oneRowAffected(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows != 1 {
		switch {
		case rows == 0:
			return common.ErrRecordNotFound
		default:
			return fmt.Errorf("expected 1 row to be affected, got %d", rows)
		}
	}

	return nil
}
