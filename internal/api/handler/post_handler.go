package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/postboard/blog-api/internal/core/ports"
	"github.com/postboard/blog-api/internal/core/query"
)

// PostHandler handles HTTP requests for post operations.
type PostHandler struct {
	posts ports.PostService
	stats ports.StatsService
}

func NewPostHandler(posts ports.PostService, stats ports.StatsService) *PostHandler {
	return &PostHandler{posts: posts, stats: stats}
}

// List handles GET /api/posts.
//
// @Summary      List posts
// @Tags         posts
// @Produce      json
// @Param        page       query     int   false  "Page number"     default(1)
// @Param        limit      query     int   false  "Items per page"  default(10)
// @Param        published  query     bool  false  "Filter by published status"
// @Param        authorId   query     int   false  "Filter by author"
// @Success      200        {object}  postListResponse
// @Failure      400        {object}  errorResponse
// @Failure      500        {object}  errorResponse
// @Router       /posts [get]
func (h *PostHandler) List(c echo.Context) error {
	d, err := query.Posts(c.QueryParams())
	if err != nil {
		return err
	}
	page, err := h.posts.ListPosts(c.Request().Context(), d)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, postListResponse{
		Data:       nonNil(page.Items),
		Pagination: toPagination(page),
	})
}

// Search handles GET /api/posts/search.
//
// @Summary      Search posts by keyword
// @Description  Matches title or content case-insensitively, or an exact tag.
// @Tags         posts
// @Produce      json
// @Param        q          query     string  true   "Keyword"
// @Param        page       query     int     false  "Page number"     default(1)
// @Param        limit      query     int     false  "Items per page"  default(10)
// @Param        published  query     bool    false  "Filter by published status"
// @Success      200        {object}  postSearchResponse
// @Failure      400        {object}  errorResponse
// @Failure      500        {object}  errorResponse
// @Router       /posts/search [get]
func (h *PostHandler) Search(c echo.Context) error {
	d, err := query.Search(c.QueryParams())
	if err != nil {
		return err
	}
	page, err := h.posts.SearchPosts(c.Request().Context(), d)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, postSearchResponse{
		Query:      d.Filter.Search,
		Data:       nonNil(page.Items),
		Pagination: toPagination(page),
	})
}

// Tags handles GET /api/posts/tags.
//
// @Summary      Tag frequency across all posts
// @Tags         posts
// @Produce      json
// @Success      200  {object}  tagsResponse
// @Failure      500  {object}  errorResponse
// @Router       /posts/tags [get]
func (h *PostHandler) Tags(c echo.Context) error {
	tags, err := h.stats.TagFrequency(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tagsResponse{Data: nonNil(tags)})
}

// Get handles GET /api/posts/:id and counts one view.
//
// @Summary      Get a post by id
// @Tags         posts
// @Produce      json
// @Param        id   path      int  true  "Post ID"
// @Success      200  {object}  postResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /posts/{id} [get]
func (h *PostHandler) Get(c echo.Context) error {
	id, err := query.ParseID("id", c.Param("id"))
	if err != nil {
		return err
	}
	post, err := h.posts.GetPost(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, postResponse{Data: post})
}

// GetBySlug handles GET /api/posts/slug/:slug and counts one view.
//
// @Summary      Get a post by slug
// @Tags         posts
// @Produce      json
// @Param        slug  path      string  true  "Post slug"
// @Success      200   {object}  postResponse
// @Failure      404   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /posts/slug/{slug} [get]
func (h *PostHandler) GetBySlug(c echo.Context) error {
	post, err := h.posts.GetPostBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, postResponse{Data: post})
}

// Create handles POST /api/posts.
//
// @Summary      Create a post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Param        body  body      createPostRequest  true  "Post details"
// @Success      201   {object}  postMutationResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /posts [post]
func (h *PostHandler) Create(c echo.Context) error {
	var req createPostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post, err := h.posts.CreatePost(c.Request().Context(), toCreatePostInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, postMutationResponse{
		Message: "Post created successfully",
		Data:    post,
	})
}

// Update handles PUT /api/posts/:id.
//
// @Summary      Update a post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Param        id    path      int                true  "Post ID"
// @Param        body  body      updatePostRequest  true  "Fields to change"
// @Success      200   {object}  postMutationResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /posts/{id} [put]
func (h *PostHandler) Update(c echo.Context) error {
	id, err := query.ParseID("id", c.Param("id"))
	if err != nil {
		return err
	}
	var req updatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post, err := h.posts.UpdatePost(c.Request().Context(), id, toUpdatePostInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, postMutationResponse{
		Message: "Post updated successfully",
		Data:    post,
	})
}

// Delete handles DELETE /api/posts/:id.
//
// @Summary      Delete a post
// @Tags         posts
// @Produce      json
// @Param        id   path      int  true  "Post ID"
// @Success      200  {object}  messageResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /posts/{id} [delete]
func (h *PostHandler) Delete(c echo.Context) error {
	id, err := query.ParseID("id", c.Param("id"))
	if err != nil {
		return err
	}
	if err := h.posts.DeletePost(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Post deleted successfully"})
}
