package entity

import (
	"context"
	"strings"

	"github.com/louisbranch/twbb/internal/gamedata"
)

// DirectorySource is the indexed search surface the directory strategy uses.
type DirectorySource interface {
	gamedata.HostResolver
	FindPlayer(ctx context.Context, wc gamedata.WorldContext, name string) (gamedata.PlayerResult, bool, error)
	FindTribe(ctx context.Context, wc gamedata.WorldContext, tag string) (gamedata.TribeResult, bool, error)
	FindVillage(ctx context.Context, wc gamedata.WorldContext, x, y int) (gamedata.VillageResult, bool, error)
}

// DirectoryStrategy resolves with one filtered twhelp query per reference.
type DirectoryStrategy struct {
	source DirectorySource
}

// NewDirectoryStrategy creates a directory-backed strategy.
func NewDirectoryStrategy(source DirectorySource) *DirectoryStrategy {
	return &DirectoryStrategy{source: source}
}

// Resolve implements Strategy.
func (s *DirectoryStrategy) Resolve(ctx context.Context, kind Kind, reference string, wc gamedata.WorldContext) (Record, error) {
	if err := wc.Validate(); err != nil {
		return nil, err
	}
	if _, err := resolveHost(ctx, s.source, wc); err != nil {
		return nil, err
	}
	reference = strings.TrimSpace(reference)

	switch kind {
	case KindVillage:
		coord, err := ParseCoord(reference)
		if err != nil || coord.String() != reference {
			return nil, notFound(kind, reference)
		}
		row, ok, err := s.source.FindVillage(ctx, wc, coord.X, coord.Y)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, notFound(kind, reference)
		}
		return Village{VillageID: row.ID, VillageName: row.Name, X: row.X, Y: row.Y, Points: row.Points}, nil
	case KindPlayer:
		row, ok, err := s.source.FindPlayer(ctx, wc, reference)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, notFound(kind, reference)
		}
		return Player{PlayerID: row.ID, PlayerName: row.Name, Points: row.Points, Rank: row.Rank}, nil
	case KindTribe:
		row, ok, err := s.source.FindTribe(ctx, wc, reference)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, notFound(kind, reference)
		}
		return Tribe{TribeID: row.ID, TribeName: row.Name, Tag: row.Tag, Points: row.Points, Rank: row.Rank}, nil
	}
	return nil, notFound(kind, reference)
}
