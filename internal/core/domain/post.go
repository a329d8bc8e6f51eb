package domain

import "time"

// Post is a blog entry owned by a User.
type Post struct {
	ID        int64     `json:"id" bson:"_id"`
	Title     string    `json:"title" bson:"title"`
	Content   *string   `json:"content" bson:"content,omitempty"`
	Slug      string    `json:"slug" bson:"slug"`
	Published bool      `json:"published" bson:"published"`
	Tags      []string  `json:"tags" bson:"tags"`
	Thumbnail *string   `json:"thumbnail" bson:"thumbnail,omitempty"`
	ViewCount int64     `json:"viewCount" bson:"view_count"`
	AuthorID  int64     `json:"authorId" bson:"author_id"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

// PostPatch carries the optional fields of a post update; nil means unchanged.
type PostPatch struct {
	Title     *string
	Content   *string
	Slug      *string
	Published *bool
	Tags      []string
	SetTags   bool
	Thumbnail *string
	AuthorID  *int64
}

// Apply copies the set fields of p onto post.
func (p PostPatch) Apply(post *Post) {
	if p.Title != nil {
		post.Title = *p.Title
	}
	if p.Content != nil {
		post.Content = p.Content
	}
	if p.Slug != nil {
		post.Slug = *p.Slug
	}
	if p.Published != nil {
		post.Published = *p.Published
	}
	if p.SetTags {
		post.Tags = append([]string{}, p.Tags...)
	}
	if p.Thumbnail != nil {
		post.Thumbnail = p.Thumbnail
	}
	if p.AuthorID != nil {
		post.AuthorID = *p.AuthorID
	}
}

// PostFilter narrows post queries. Zero value matches every post.
//
// Search matches title or content case-insensitively, or any tag equal to
// the lower-cased keyword. The other fields AND on top of it.
type PostFilter struct {
	Published *bool
	AuthorID  *int64
	AuthorIDs []int64
	Search    string
}

// PostWithAuthor is a post joined with its author summary.
type PostWithAuthor struct {
	Post
	Author AuthorSummary `json:"author"`
}
