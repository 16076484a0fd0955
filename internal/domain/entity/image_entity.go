package entity

import "time"

// Image is a post of one or more uploaded pictures owned by a single user.
type Image struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user"`
	URLs      []string  `json:"images"`
	Caption   string    `json:"imageCaption,omitempty"`
	IsPrivate bool      `json:"isPrivate"`
	Tag       string    `json:"imageTag,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// OwnedBy reports whether userID created the image.
func (i *Image) OwnedBy(userID string) bool {
	return userID != "" && i.UserID == userID
}

// VisibleTo reports whether userID may view the image.
func (i *Image) VisibleTo(userID string) bool {
	return !i.IsPrivate || i.OwnedBy(userID)
}
