package catalog

import (
	"errors"
	"strings"
)

var (
	ErrUnknownSortKey   = errors.New("unknown sort key")
	ErrUnknownDirection = errors.New("unknown sort direction")
)

type SortKey string

const (
	KeyID          SortKey = "id"
	KeyName        SortKey = "name"
	KeyDescription SortKey = "description"
	KeyPrice       SortKey = "price"
	KeyQuantity    SortKey = "quantity"
)

// Keys lists the sortable columns in display order.
var Keys = []SortKey{KeyID, KeyName, KeyDescription, KeyPrice, KeyQuantity}

func (k SortKey) Numeric() bool {
	return k == KeyID || k == KeyPrice || k == KeyQuantity
}

func (k SortKey) valid() bool {
	switch k {
	case KeyID, KeyName, KeyDescription, KeyPrice, KeyQuantity:
		return true
	default:
		return false
	}
}

func ParseSortKey(v string) (SortKey, error) {
	k := SortKey(strings.ToLower(strings.TrimSpace(v)))
	if k == "" {
		return KeyID, nil
	}
	if !k.valid() {
		return "", ErrUnknownSortKey
	}
	return k, nil
}

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

func ParseDirection(v string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(v))) {
	case "", Asc:
		return Asc, nil
	case Desc:
		return Desc, nil
	default:
		return "", ErrUnknownDirection
	}
}

// SortState is the active sort column and direction. The zero value sorts by
// id ascending.
type SortState struct {
	Key       SortKey
	Direction Direction
}

// Toggle flips the direction when key is already active and otherwise selects
// key ascending.
func (s SortState) Toggle(key SortKey) SortState {
	s = s.normalized()
	if s.Key == key {
		if s.Direction == Asc {
			return SortState{Key: key, Direction: Desc}
		}
		return SortState{Key: key, Direction: Asc}
	}
	return SortState{Key: key, Direction: Asc}
}

func (s SortState) String() string {
	s = s.normalized()
	return string(s.Key) + " " + string(s.Direction)
}

func (s SortState) normalized() SortState {
	if !s.Key.valid() {
		s.Key = KeyID
	}
	if s.Direction != Desc {
		s.Direction = Asc
	}
	return s
}
