package sessions

import (
	"sort"

	"github.com/verte-zerg/meeple/internal/model"
)

// DefaultPerPage is the listing page size used when none is configured.
const DefaultPerPage = 15

// Page is one page of a session listing.
type Page struct {
	Items      []model.Session `json:"items"`
	Page       int             `json:"page"`
	PerPage    int             `json:"perPage"`
	TotalPages int             `json:"totalPages"`
	TotalItems int             `json:"totalItems"`
}

// Paginate slices list into pages. The page number is clamped into range and
// an empty list still has one (empty) page.
func Paginate(list []model.Session, page, perPage int) Page {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	total := len(list)
	pages := (total + perPage - 1) / perPage
	if pages < 1 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	start := (page - 1) * perPage
	end := start + perPage
	if end > total {
		end = total
	}
	items := make([]model.Session, 0, end-start)
	items = append(items, list[start:end]...)
	return Page{
		Items:      items,
		Page:       page,
		PerPage:    perPage,
		TotalPages: pages,
		TotalItems: total,
	}
}

// SortByDate orders sessions by date, then creation time, keeping the
// relative order of exact ties.
func SortByDate(list []model.Session, desc bool) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if desc {
			a, b = b, a
		}
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}

// Filter keeps the sessions matching a game and a player. Empty criteria match everything.
func Filter(list []model.Session, game, player string) []model.Session {
	out := make([]model.Session, 0, len(list))
	for _, session := range list {
		if game != "" && !model.SameName(session.Game, game) {
			continue
		}
		if player != "" && !hasPlayer(session, player) {
			continue
		}
		out = append(out, session)
	}
	return out
}
