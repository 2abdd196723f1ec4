package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/resonate/internal/models"
	"github.com/desertthunder/resonate/internal/query"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSearchFetched MsgKind = iota
	MsgRatingsFetched
	MsgSongFetched
	MsgRated
	MsgFavoriteToggled
)

type searchFetched struct {
	query  string
	page   int
	result query.Result[models.SearchPage]
	err    error
}

type ratingsFetched struct {
	query   string
	page    int
	ratings map[string]int
}

type songFetched struct {
	sid      string
	result   query.Result[models.SongDetail]
	favorite bool
	err      error
}

type rated struct {
	sid   string
	value int
	err   error
}

type favoriteToggled struct {
	sid string
	on  bool
	err error
}

// searchFetchedMsg is the constructor for [MsgSearchFetched]
func searchFetchedMsg(q string, page int, result query.Result[models.SearchPage], err error) Msg {
	return Msg{kind: MsgSearchFetched, data: searchFetched{q, page, result, err}}
}

// ratingsFetchedMsg is the constructor for [MsgRatingsFetched]
func ratingsFetchedMsg(q string, page int, ratings map[string]int) Msg {
	return Msg{kind: MsgRatingsFetched, data: ratingsFetched{q, page, ratings}}
}

// songFetchedMsg is the constructor for [MsgSongFetched]
func songFetchedMsg(sid string, result query.Result[models.SongDetail], favorite bool, err error) Msg {
	return Msg{kind: MsgSongFetched, data: songFetched{sid, result, favorite, err}}
}

// ratedMsg is the constructor for [MsgRated]
func ratedMsg(sid string, value int, err error) Msg {
	return Msg{kind: MsgRated, data: rated{sid, value, err}}
}

// favoriteToggledMsg is the constructor for [MsgFavoriteToggled]
func favoriteToggledMsg(sid string, on bool, err error) Msg {
	return Msg{kind: MsgFavoriteToggled, data: favoriteToggled{sid, on, err}}
}
