// Package entity resolves player names, tribe tags and village coordinates
// against a world's game data.
package entity

import (
	"strconv"
	"strings"

	"github.com/louisbranch/twbb/internal/bbcode"
	apperrors "github.com/louisbranch/twbb/internal/platform/errors"
)

// Kind identifies an entity family.
type Kind string

const (
	KindPlayer  Kind = "player"
	KindTribe   Kind = "tribe"
	KindVillage Kind = "village"
)

// ErrNotFound reports that no entity matches the reference.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "entity not found")

// KindForTag maps an entity tag kind to the entity it references.
func KindForTag(k bbcode.Kind) (Kind, bool) {
	switch k {
	case bbcode.KindCoord:
		return KindVillage, true
	case bbcode.KindPlayer:
		return KindPlayer, true
	case bbcode.KindAlly:
		return KindTribe, true
	}
	return "", false
}

// Record is a resolved entity.
type Record interface {
	ID() int64
	Name() string
	Kind() Kind
}

// Player is a resolved player.
type Player struct {
	PlayerID   int64
	PlayerName string
	Points     *int64
	Rank       *int64
}

func (p Player) ID() int64    { return p.PlayerID }
func (p Player) Name() string { return p.PlayerName }
func (p Player) Kind() Kind   { return KindPlayer }

// Tribe is a resolved tribe.
type Tribe struct {
	TribeID   int64
	TribeName string
	Tag       string
	Points    *int64
	Rank      *int64
}

func (t Tribe) ID() int64    { return t.TribeID }
func (t Tribe) Name() string { return t.TribeName }
func (t Tribe) Kind() Kind   { return KindTribe }

// Village is a resolved village.
type Village struct {
	VillageID   int64
	VillageName string
	X           int
	Y           int
	Points      int64
}

func (v Village) ID() int64    { return v.VillageID }
func (v Village) Name() string { return v.VillageName }
func (v Village) Kind() Kind   { return KindVillage }

// Coord is a map coordinate.
type Coord struct {
	X int
	Y int
}

// String renders the coordinate as "X|Y".
func (c Coord) String() string {
	return strconv.Itoa(c.X) + "|" + strconv.Itoa(c.Y)
}

// ParseCoord parses "X|Y" where both parts are non-negative integers.
func ParseCoord(reference string) (Coord, error) {
	xs, ys, ok := strings.Cut(strings.TrimSpace(reference), "|")
	if !ok {
		return Coord{}, apperrors.New(apperrors.CodeInvalidRequest, "coordinate must be X|Y")
	}
	x, errX := parseUint(xs)
	y, errY := parseUint(ys)
	if errX != nil || errY != nil {
		return Coord{}, apperrors.New(apperrors.CodeInvalidRequest, "coordinate must be X|Y")
	}
	return Coord{X: x, Y: y}, nil
}

func parseUint(s string) (int, error) {
	if s == "" || strings.TrimLeft(s, "0123456789") != "" {
		return 0, strconv.ErrSyntax
	}
	return strconv.Atoi(s)
}
