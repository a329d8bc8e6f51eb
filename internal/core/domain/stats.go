package domain

// TagCount is one entry of the tag frequency distribution.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

type UserStats struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
}

type PostStats struct {
	Total      int64 `json:"total"`
	Published  int64 `json:"published"`
	Draft      int64 `json:"draft"`
	TotalViews int64 `json:"totalViews"`
}

// TopPost is a published post ranked by views.
type TopPost struct {
	ID        int64         `json:"id"`
	Title     string        `json:"title"`
	Slug      string        `json:"slug"`
	ViewCount int64         `json:"viewCount"`
	Author    AuthorSummary `json:"author"`
}

type PostCount struct {
	Posts int64 `json:"posts"`
}

// TopAuthor is a user ranked by owned posts.
type TopAuthor struct {
	AuthorSummary
	Count PostCount `json:"_count"`
}

// StatsSnapshot bundles the dashboard aggregates. Each figure comes from an
// independent read, so the snapshot is approximately current rather than a
// single point in time.
type StatsSnapshot struct {
	Users       UserStats        `json:"users"`
	Posts       PostStats        `json:"posts"`
	TopPosts    []TopPost        `json:"topPosts"`
	RecentPosts []PostWithAuthor `json:"recentPosts"`
	TopAuthors  []TopAuthor      `json:"topAuthors"`
}
