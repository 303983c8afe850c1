package server

import (
	"tidepool/server/catalog"
	"tidepool/server/internal/crates"
	"tidepool/server/internal/grid"
	"tidepool/server/internal/merge"
	"tidepool/server/internal/pets"
)

// PetView is a pet as clients see it: the stored record plus where it sits
// and its derived numbers.
type PetView struct {
	pets.Pet
	Position *grid.Position `json:"position,omitempty"`
	Stars    int            `json:"stars"`
	Capacity int            `json:"capacity"`
	Disabled bool           `json:"disabled,omitempty"`
}

// StateMessage is the payload broadcast to subscribers after every tick
// and returned by the state endpoint.
type StateMessage struct {
	Ver        int        `json:"ver"`
	Type       string     `json:"type"`
	Tick       uint64     `json:"t"`
	ServerTime int64      `json:"serverTime"`
	Cash       int64      `json:"cash"`
	Pets       []PetView  `json:"pets"`
	Grid       grid.State `json:"grid"`
}

// MoveResult reports where a placed or moved pet ended up. Merge is set
// when the pet was dropped onto a pet it merged into; PetID is then the
// surviving target.
type MoveResult struct {
	PetID    string        `json:"petId"`
	Position grid.Position `json:"position"`
	Merge    *merge.Result `json:"merge,omitempty"`
}

// Collection reports a gem pickup.
type Collection struct {
	PetID   string `json:"petId"`
	Gems    int    `json:"gems"`
	Value   int64  `json:"value"`
	Balance int64  `json:"balance"`
}

// RatingReport is the rating endpoint payload.
type RatingReport struct {
	PetID    string `json:"petId"`
	Stars    int    `json:"stars"`
	Label    string `json:"label"`
	Quality  int    `json:"quality"`
	Capacity int    `json:"capacity"`
	Value    int64  `json:"value"`
}

// Purchase reports a crate purchase. Merges lists the auto-merges that ran
// afterwards.
type Purchase struct {
	Rarity   catalog.Rarity   `json:"rarity"`
	Count    int              `json:"count"`
	Cost     int64            `json:"cost"`
	Balance  int64            `json:"balance"`
	Openings []crates.Opening `json:"openings"`
	Merges   []merge.Result   `json:"merges,omitempty"`
}
