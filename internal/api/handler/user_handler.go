package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/postboard/blog-api/internal/core/ports"
	"github.com/postboard/blog-api/internal/core/query"
)

// UserHandler handles HTTP requests for user operations.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// List handles GET /api/users.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Param        page      query     int     false  "Page number"     default(1)
// @Param        limit     query     int     false  "Items per page"  default(10)
// @Success      200       {object}  userListResponse
// @Failure      500       {object}  errorResponse
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	page, err := h.service.ListUsers(c.Request().Context(), query.Users(c.QueryParams()))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userListResponse{
		Data:       nonNil(page.Items),
		Pagination: toPagination(page),
	})
}

// ListWithPosts handles GET /api/users/with-posts.
//
// @Summary      List users with their posts
// @Tags         users
// @Produce      json
// @Param        page      query     int     false  "Page number"     default(1)
// @Param        limit     query     int     false  "Items per page"  default(10)
// @Param        isActive  query     bool    false  "Filter by active status"
// @Success      200       {object}  userWithPostsListResponse
// @Failure      500       {object}  errorResponse
// @Router       /users/with-posts [get]
func (h *UserHandler) ListWithPosts(c echo.Context) error {
	page, err := h.service.ListUsersWithPosts(c.Request().Context(), query.Users(c.QueryParams()))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userWithPostsListResponse{
		Data:       toUserWithPosts(page.Items),
		Pagination: toPagination(page),
	})
}

// Get handles GET /api/users/:id.
//
// @Summary      Get a user with their posts
// @Tags         users
// @Produce      json
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  userDetailEnvelope
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	id, err := query.ParseID("id", c.Param("id"))
	if err != nil {
		return err
	}
	detail, err := h.service.GetUser(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userDetailEnvelope{Data: toUserDetail(detail)})
}

// Posts handles GET /api/users/:id/posts.
//
// @Summary      List a user's posts
// @Tags         users
// @Produce      json
// @Param        id         path      int     true   "User ID"
// @Param        published  query     bool    false  "Filter by published status"
// @Param        sortBy     query     string  false  "Sort field"  Enums(createdAt, viewCount, title)
// @Param        order      query     string  false  "Sort order"  Enums(asc, desc)
// @Success      200        {object}  authorPostsResponse
// @Failure      400        {object}  errorResponse
// @Failure      404        {object}  errorResponse
// @Failure      500        {object}  errorResponse
// @Router       /users/{id}/posts [get]
func (h *UserHandler) Posts(c echo.Context) error {
	id, err := query.ParseID("id", c.Param("id"))
	if err != nil {
		return err
	}
	res, err := h.service.ListAuthorPosts(c.Request().Context(), query.AuthorPosts(id, c.QueryParams()))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authorPostsResponse{
		User:  res.Author.Summary(),
		Data:  nonNil(res.Posts),
		Total: res.Total,
	})
}

// Create handles POST /api/users.
//
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      createUserRequest  true  "User details"
// @Success      201   {object}  userMutationResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.service.CreateUser(c.Request().Context(), toCreateUserInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, userMutationResponse{
		Message: "User created successfully",
		Data:    user,
	})
}

// Update handles PUT /api/users/:id.
//
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path      int                true  "User ID"
// @Param        body  body      updateUserRequest  true  "Fields to change"
// @Success      200   {object}  userMutationResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	id, err := query.ParseID("id", c.Param("id"))
	if err != nil {
		return err
	}
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.service.UpdateUser(c.Request().Context(), id, toUpdateUserInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userMutationResponse{
		Message: "User updated successfully",
		Data:    user,
	})
}

// Delete handles DELETE /api/users/:id. The user's posts go with it.
//
// @Summary      Delete a user and their posts
// @Tags         users
// @Produce      json
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  messageResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := query.ParseID("id", c.Param("id"))
	if err != nil {
		return err
	}
	if err := h.service.DeleteUser(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "User deleted successfully"})
}
