package handler

import (
	"github.com/postboard/blog-api/internal/core/ports"
)

func toPagination[T any](p *ports.Page[T]) paginationResponse {
	return paginationResponse{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      p.Total,
		TotalPages: p.TotalPages,
	}
}

func toUserDetail(d *ports.UserDetail) userDetailResponse {
	posts := make([]postSummaryResponse, 0, len(d.Posts))
	for _, p := range d.Posts {
		posts = append(posts, postSummaryResponse{
			ID:        p.ID,
			Title:     p.Title,
			Slug:      p.Slug,
			Published: p.Published,
			CreatedAt: p.CreatedAt,
		})
	}
	return userDetailResponse{User: d.User, Posts: posts}
}

func toUserWithPosts(items []ports.UserWithPosts) []userWithPostsResponse {
	out := make([]userWithPostsResponse, 0, len(items))
	for _, it := range items {
		posts := make([]postListingResponse, 0, len(it.Posts))
		for _, p := range it.Posts {
			posts = append(posts, postListingResponse{
				ID:        p.ID,
				Title:     p.Title,
				Slug:      p.Slug,
				Published: p.Published,
				Tags:      p.Tags,
				Thumbnail: p.Thumbnail,
				ViewCount: p.ViewCount,
				CreatedAt: p.CreatedAt,
			})
		}
		out = append(out, userWithPostsResponse{
			User:  it.User,
			Posts: posts,
			Count: postCountResponse{Posts: len(posts)},
		})
	}
	return out
}

func toCreateUserInput(req createUserRequest) ports.CreateUserInput {
	return ports.CreateUserInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		Name:     req.Name,
		Avatar:   req.Avatar,
	}
}

func toUpdateUserInput(req updateUserRequest) ports.UpdateUserInput {
	return ports.UpdateUserInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		Name:     req.Name,
		Avatar:   req.Avatar,
		IsActive: req.IsActive,
	}
}

func toCreatePostInput(req createPostRequest) ports.CreatePostInput {
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}
	return ports.CreatePostInput{
		Title:     req.Title,
		Content:   req.Content,
		Slug:      req.Slug,
		Published: req.Published,
		Tags:      tags,
		Thumbnail: req.Thumbnail,
		AuthorID:  req.AuthorID,
	}
}

func toUpdatePostInput(req updatePostRequest) ports.UpdatePostInput {
	return ports.UpdatePostInput{
		Title:     req.Title,
		Content:   req.Content,
		Slug:      req.Slug,
		Published: req.Published,
		Tags:      req.Tags,
		Thumbnail: req.Thumbnail,
		AuthorID:  req.AuthorID,
	}
}

// nonNil keeps empty listings rendering as [] instead of null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
