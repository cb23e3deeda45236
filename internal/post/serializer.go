package post

import (
	"time"

	"gorm.io/gorm"

	"github.com/AlexTsikhun/social-media-api/internal/follow"
	"github.com/AlexTsikhun/social-media-api/internal/like"
	"github.com/AlexTsikhun/social-media-api/internal/target"
	"github.com/AlexTsikhun/social-media-api/internal/user"
)

// ItsMe is reported as is_following_author when the viewer wrote the post.
const ItsMe = "it's me"

type ListItem struct {
	ID            string    `json:"id"`
	User          string    `json:"user"`
	Title         string    `json:"title"`
	Image         string    `json:"image"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"created_at"`
	TotalLikes    int64     `json:"total_likes"`
	TotalComments int64     `json:"total_comments"`
}

type Detail struct {
	ListItem
	Likes             []like.View   `json:"likes"`
	Comments          []CommentView `json:"comments"`
	IsLiked           bool          `json:"is_liked"`
	IsFollowingAuthor interface{}   `json:"is_following_author"`
}

// Serialize builds list items with three queries regardless of page size.
func Serialize(db *gorm.DB, posts []Post) ([]ListItem, error) {
	items := make([]ListItem, 0, len(posts))
	if len(posts) == 0 {
		return items, nil
	}

	ids := make([]string, 0, len(posts))
	authorIDs := make([]string, 0, len(posts))
	seen := map[string]bool{}
	for _, p := range posts {
		ids = append(ids, p.ID)
		if !seen[p.UserID] {
			seen[p.UserID] = true
			authorIDs = append(authorIDs, p.UserID)
		}
	}

	names, err := user.UsernamesByIDs(db, authorIDs)
	if err != nil {
		return nil, err
	}
	likes, err := like.CountMany(db, target.KindPost, ids)
	if err != nil {
		return nil, err
	}
	comments, err := CountComments(db, target.KindPost, ids)
	if err != nil {
		return nil, err
	}

	for _, p := range posts {
		items = append(items, ListItem{
			ID:            p.ID,
			User:          names[p.UserID],
			Title:         p.Title,
			Image:         p.Image,
			Content:       p.Content,
			CreatedAt:     p.CreatedAt,
			TotalLikes:    likes[p.ID],
			TotalComments: comments[p.ID],
		})
	}
	return items, nil
}

func SerializeDetail(db *gorm.DB, p *Post, viewerID string) (*Detail, error) {
	items, err := Serialize(db, []Post{*p})
	if err != nil {
		return nil, err
	}
	ref := target.Ref{Kind: target.KindPost, ID: p.ID}

	d := &Detail{ListItem: items[0]}
	if d.Likes, err = like.List(db, ref); err != nil {
		return nil, err
	}
	if d.Comments, err = ListComments(db, ref); err != nil {
		return nil, err
	}
	if d.IsLiked, err = like.IsLiked(db, ref, viewerID); err != nil {
		return nil, err
	}

	switch viewerID {
	case "":
		d.IsFollowingAuthor = false
	case p.UserID:
		d.IsFollowingAuthor = ItsMe
	default:
		following, err := follow.IsFollowing(db, viewerID, p.UserID)
		if err != nil {
			return nil, err
		}
		d.IsFollowingAuthor = following
	}
	return d, nil
}
