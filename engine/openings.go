package engine

import (
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/sixstone-ai/sixstone/board"
	"github.com/sixstone-ai/sixstone/move"
)

// The book only speaks up in quiet early positions; its templates are
// offsets from the board center, tried in order.
const openingsYAML = `
templates:
  - name: center-cross
    max-stones: 4
    offsets:
      - [0, 1]
      - [1, 0]
      - [0, -1]
      - [-1, 0]
      - [1, 1]
      - [-1, -1]
  - name: diamond
    max-stones: 8
    offsets:
      - [1, 1]
      - [-1, 1]
      - [1, -1]
      - [-1, -1]
      - [0, 2]
      - [2, 0]
      - [0, -2]
      - [-2, 0]
`

type bookTemplate struct {
	Name      string   `yaml:"name"`
	MaxStones int      `yaml:"max-stones"`
	Offsets   [][2]int `yaml:"offsets"`
}

type bookData struct {
	Templates []bookTemplate `yaml:"templates"`
}

// Book holds the parsed opening templates.
type Book struct {
	templates []bookTemplate
}

// LoadBook parses the embedded template document.
func LoadBook() (*Book, error) {
	var data bookData
	if err := yaml.Unmarshal([]byte(openingsYAML), &data); err != nil {
		return nil, err
	}
	return &Book{templates: data.Templates}, nil
}

// Suggest returns a template move for a quiet early position: the first two
// empty template cells, or failing that the two frontier cells nearest the
// center. ok is false once the position has outgrown every template.
func (bk *Book) Suggest(b *board.Board) (move.Move, bool) {
	center := board.Size / 2
	for _, tpl := range bk.templates {
		if b.PieceCount() > tpl.MaxStones {
			continue
		}
		var cells []int
		for _, off := range tpl.Offsets {
			r, c := center+off[0], center+off[1]
			if !board.ValidPos(r, c) {
				continue
			}
			cell := board.ToIndex(r, c)
			if b.IsEmpty(cell) {
				cells = append(cells, cell)
				if len(cells) == 2 {
					return move.New(cells[0], cells[1]), true
				}
			}
		}
	}
	return bk.nearestCenterPair(b)
}

func (bk *Book) nearestCenterPair(b *board.Board) (move.Move, bool) {
	center := board.Size / 2
	cells := b.Frontier()
	sort.SliceStable(cells, func(i, j int) bool {
		return centerDist(cells[i], center) < centerDist(cells[j], center)
	})
	var picked []int
	for _, cell := range cells {
		if b.IsEmpty(cell) {
			picked = append(picked, cell)
			if len(picked) == 2 {
				return move.New(picked[0], picked[1]), true
			}
		}
	}
	return move.Move{}, false
}

func centerDist(cell, center int) int {
	dr := board.ToRow(cell) - center
	dc := board.ToCol(cell) - center
	if dr < 0 {
		dr = -dr
	}
	if dc < 0 {
		dc = -dc
	}
	return dr + dc
}
