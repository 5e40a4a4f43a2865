package models

import (
	"strings"
	"time"
)

// Profile stores a reader's preferences keyed by the front-end user id
type Profile struct {
	UserID           int64     `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	Username         string    `gorm:"size:255" json:"username"`
	FirstName        string    `gorm:"size:255" json:"first_name"`
	LastName         string    `gorm:"size:255" json:"last_name"`
	Lang             string    `gorm:"size:8;not null;default:'ru'" json:"lang"`
	PreferredGenres  string    `gorm:"type:text" json:"preferred_genres"`
	PreferredAuthors string    `gorm:"type:text" json:"preferred_authors"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

// Genres splits the stored comma-joined genre list
func (p *Profile) Genres() []string {
	return SplitList(p.PreferredGenres)
}

// Authors splits the stored comma-joined author list
func (p *Profile) Authors() []string {
	return SplitList(p.PreferredAuthors)
}

// JoinList joins non-blank entries with a comma, the storage format for list columns
func JoinList(items []string) string {
	kept := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			kept = append(kept, item)
		}
	}
	return strings.Join(kept, ",")
}

// SplitList is the inverse of JoinList; an empty column reads back as an empty list
func SplitList(stored string) []string {
	if strings.TrimSpace(stored) == "" {
		return []string{}
	}
	parts := strings.Split(stored, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
