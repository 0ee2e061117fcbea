package domain

// Identity is the session object handed to this core by the (out-of-scope)
// authentication layer.
type Identity struct {
	UID   string `json:"uid"`
	Email string `json:"email,omitempty"`
}

// UserProfile is the remote profile document, read and replaced as a whole.
// Watchlist is represented as an ordered collection but is semantically a set:
// no duplicates, order not significant for membership.
type UserProfile struct {
	UID         string   `json:"uid"`
	DisplayName string   `json:"display_name"`
	AvatarURL   string   `json:"avatar_url,omitempty"`
	Bio         string   `json:"bio,omitempty"`
	Location    string   `json:"location,omitempty"`
	Watchlist   []string `json:"watchlist"`
}

// HasInWatchlist reports membership of an item id in the watchlist.
func (p *UserProfile) HasInWatchlist(itemID string) bool {
	if p == nil {
		return false
	}
	for _, id := range p.Watchlist {
		if id == itemID {
			return true
		}
	}
	return false
}
