package models

import "fmt"

// MusicRowWidth is the number of cells in a spreadsheet music row.
const MusicRowWidth = 7

// Column positions within a MusicRow.
const (
	ColSongName = iota
	ColArtist
	ColAlbum
	ColGenre
	ColLyrics
	ColURL
	ColNotes
)

// MusicRow is one line of the legacy music spreadsheet. It has no identity
// other than its position: deleting a row shifts every later row up by one.
type MusicRow []string

// Validate checks the row has exactly MusicRowWidth cells.
func (r MusicRow) Validate() error {
	if len(r) != MusicRowWidth {
		return fmt.Errorf("row must have %d cells, got %d", MusicRowWidth, len(r))
	}
	return nil
}

// Normalize pads short rows with empty cells and drops cells past the width.
func (r MusicRow) Normalize() MusicRow {
	out := make(MusicRow, MusicRowWidth)
	copy(out, r)
	return out
}

type MusicRequest struct {
	RowIndex *int     `json:"rowIndex,omitempty"`
	RowData  MusicRow `json:"rowData,omitempty"`
}
