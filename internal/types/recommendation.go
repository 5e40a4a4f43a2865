package types

import "strings"

// MaxRecommendations caps every RecommendationSet
const MaxRecommendations = 5

// Preferences is the caller-supplied input for one recommendation request
type Preferences struct {
	Favorites []string `json:"favorites"`
	Genres    []string `json:"genres"`
	Authors   []string `json:"authors"`
}

// IsEmpty reports whether no list carries a non-blank entry
func (p Preferences) IsEmpty() bool {
	for _, list := range [][]string{p.Favorites, p.Genres, p.Authors} {
		for _, s := range list {
			if strings.TrimSpace(s) != "" {
				return false
			}
		}
	}
	return true
}

// Recommendation is a single suggested book. Empty Author or Reason means absent.
type Recommendation struct {
	Title  string `json:"title"`
	Author string `json:"author,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Tier names the extraction strategy that produced a RecommendationSet
type Tier string

const (
	TierJSON     Tier = "json"
	TierEmbedded Tier = "embedded"
	TierLines    Tier = "lines"
	TierDefault  Tier = "default"
	TierNone     Tier = "none"
)

// RecommendationSet is the bounded, ordered result of one request
type RecommendationSet struct {
	Items    []Recommendation `json:"books"`
	Degraded bool             `json:"degraded"`
	Tier     Tier             `json:"-"`
}

// RecommendationResponse is the body of POST /v1/users/:user_id/recommendations
type RecommendationResponse struct {
	Books    []Recommendation `json:"books"`
	Degraded bool             `json:"degraded"`
}
