package blogservice

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/openpress/blogapi/internal/common"
)

var (
	ErrDuplicateTitle = errors.New("duplicate title")
	ErrNotOwner       = errors.New("not the blog owner")
)

func NewBlogService(db *sql.DB) *BlogService {
	return &BlogService{m: newBlogModel(db)}
}

type CreateBlogRequest struct {
	Title       string
	Description string
	Tags        []string
	Body        string
	AuthorID    int
}

// CreateBlog inserts a new blog for the author. Whatever the caller asked
// for, a new blog always enters in draft state with a zero read count; the
// reading time is computed from the body here and only here.
func (s *BlogService) CreateBlog(ctx context.Context, req *CreateBlogRequest) (*Blog, error) {
	v := common.NewValidator()
	validateTitle(v, req.Title)
	validateBody(v, req.Body)
	validateInt(v, req.AuthorID, "user_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	exists, err := s.m.titleExists(ctx, req.Title, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateTitle
	}

	blog := &Blog{
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
		Body:        req.Body,
		Author:      Author{ID: req.AuthorID},
		State:       StateDraft,
		ReadingTime: CalculateReadingTime(req.Body),
	}

	if err := s.m.insert(ctx, blog); err != nil {
		return nil, err
	}

	// Re-read to populate the author fields. If this fails the insert stays
	// committed and the caller sees a server error.
	return s.m.getByID(ctx, blog.ID)
}

// GetPublishedBlogs is the public listing: only published blogs, optionally
// narrowed by author text, title substring, and tag intersection.
func (s *BlogService) GetPublishedBlogs(ctx context.Context, p ListParams) ([]Blog, Pagination, error) {
	p.normalize()

	q := &blogQuery{}
	q.where("b.state = %s", StatePublished)

	if p.Author != "" {
		ids, err := s.m.findAuthorIDs(ctx, p.Author)
		if err != nil {
			return nil, Pagination{}, err
		}
		if len(ids) == 0 {
			// No matching author is an empty result set, not an error.
			return []Blog{}, newPagination(p.Page, p.Limit, 0), nil
		}
		q.where("b.user_id = ANY(%s)", pq.Array(ids))
	}

	if p.Title != "" {
		q.where("b.title ILIKE %s", "%"+p.Title+"%")
	}

	if len(p.Tags) > 0 {
		q.where("b.tags && %s", pq.Array(p.Tags))
	}

	total, err := s.m.countBlogs(ctx, q)
	if err != nil {
		return nil, Pagination{}, err
	}

	blogs, err := s.m.listBlogs(ctx, q, publicSortClause(p.OrderBy, p.Order), p.Limit, p.offset())
	if err != nil {
		return nil, Pagination{}, err
	}

	return blogs, newPagination(p.Page, p.Limit, total), nil
}

// GetBlogByID resolves a single published blog and increments its read count
// as a side effect of the fetch. Drafts are not found on this path, owner or
// not. The increment is not idempotent: every successful call counts.
func (s *BlogService) GetBlogByID(ctx context.Context, id int) (*Blog, error) {
	v := common.NewValidator()
	validateInt(v, id, "id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.getPublishedAndIncrement(ctx, id)
}

// GetMyBlogs lists the caller's own blogs in any state, with a draft versus
// published summary.
func (s *BlogService) GetMyBlogs(ctx context.Context, userID int, p ListParams) ([]Blog, Pagination, Summary, error) {
	p.normalize()

	v := common.NewValidator()
	validateInt(v, userID, "user_id")
	if p.State != "" {
		validateState(v, p.State)
	}
	if !v.Valid() {
		return nil, Pagination{}, Summary{}, v.ValidationError()
	}

	q := &blogQuery{}
	q.where("b.user_id = %s", userID)
	if p.State != "" {
		q.where("b.state = %s", p.State)
	}

	total, err := s.m.countBlogs(ctx, q)
	if err != nil {
		return nil, Pagination{}, Summary{}, err
	}

	blogs, err := s.m.listBlogs(ctx, q, ownerSortClause(p.OrderBy, p.Order), p.Limit, p.offset())
	if err != nil {
		return nil, Pagination{}, Summary{}, err
	}

	draft, published, err := s.m.countByState(ctx, userID)
	if err != nil {
		return nil, Pagination{}, Summary{}, err
	}

	summary := Summary{
		TotalBlogs:     total,
		DraftBlogs:     draft,
		PublishedBlogs: published,
	}

	return blogs, newPagination(p.Page, p.Limit, total), summary, nil
}

// GetOwnedBlog resolves a blog for mutation on behalf of userID. Absent blog
// before ownership: a caller probing someone else's ids learns only "not
// found" for ids that do not exist.
func (s *BlogService) GetOwnedBlog(ctx context.Context, blogID, userID int) (*Blog, error) {
	v := common.NewValidator()
	validateInt(v, blogID, "id")
	validateInt(v, userID, "user_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	blog, err := s.m.getByID(ctx, blogID)
	if err != nil {
		return nil, err
	}

	if blog.Author.ID != userID {
		return nil, ErrNotOwner
	}

	return blog, nil
}

// UpdateBlogRequest carries a partial update: nil fields are left untouched.
type UpdateBlogRequest struct {
	Title       *string
	Description *string
	Tags        *[]string
	Body        *string
	State       *string
}

// UpdateBlog applies a partial update to an already-authorized blog. The
// caller must pass a blog resolved by GetOwnedBlog; ownership is not
// re-checked here. Nothing is written if any part of the update is invalid.
func (s *BlogService) UpdateBlog(ctx context.Context, blog *Blog, req *UpdateBlogRequest) (*Blog, error) {
	v := common.NewValidator()
	if req.Title != nil {
		validateTitle(v, *req.Title)
	}
	if req.Body != nil {
		validateBody(v, *req.Body)
	}
	if req.State != nil {
		validateState(v, *req.State)
	}
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if req.Title != nil && *req.Title != blog.Title {
		exists, err := s.m.titleExists(ctx, *req.Title, blog.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrDuplicateTitle
		}
		blog.Title = *req.Title
	}

	if req.Description != nil {
		blog.Description = *req.Description
	}
	if req.Tags != nil {
		blog.Tags = *req.Tags
	}
	if req.Body != nil {
		blog.Body = *req.Body
		blog.ReadingTime = CalculateReadingTime(*req.Body)
	}
	if req.State != nil {
		blog.State = BlogState(*req.State)
	}

	if err := s.m.update(ctx, blog); err != nil {
		return nil, err
	}

	return blog, nil
}

// UpdateBlogState is the dedicated state transition: draft to published or
// back, owner-driven, permitted at any time in either direction. No other
// field is touched.
func (s *BlogService) UpdateBlogState(ctx context.Context, blog *Blog, state string) (*Blog, error) {
	v := common.NewValidator()
	v.Check(state != "", "state", "must be provided")
	if state != "" {
		validateState(v, state)
	}
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if err := s.m.updateState(ctx, blog.ID, BlogState(state)); err != nil {
		return nil, err
	}

	blog.State = BlogState(state)

	return blog, nil
}

// DeleteBlog permanently removes an already-authorized blog in either state.
func (s *BlogService) DeleteBlog(ctx context.Context, id int) error {
	v := common.NewValidator()
	validateInt(v, id, "id")
	if !v.Valid() {
		return v.ValidationError()
	}

	return s.m.deleteBlog(ctx, id)
}
