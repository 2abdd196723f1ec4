// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI is a song browser over [tasks.Library]:
//  1. [SearchView] : Type a query, page through results, retry a failed page
//  2. [SongView] : Song detail with the viewer's rating and favorite state
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Every read goes through the library's cache, so paging back to a page already seen within its fresh window
// is instant, and a stale page is shown at once while it refreshes.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, n/p, r, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
