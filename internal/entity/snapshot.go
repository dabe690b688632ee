package entity

import (
	"bufio"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/louisbranch/twbb/internal/gamedata"
	"golang.org/x/text/cases"
)

const maxSnapshotLine = 1 << 20

// SnapshotStrategy resolves by scanning the world's plaintext map dumps.
type SnapshotStrategy struct {
	hosts     gamedata.HostResolver
	snapshots gamedata.Snapshots
}

// NewSnapshotStrategy creates a dump-scanning strategy.
func NewSnapshotStrategy(hosts gamedata.HostResolver, snapshots gamedata.Snapshots) *SnapshotStrategy {
	return &SnapshotStrategy{hosts: hosts, snapshots: snapshots}
}

// Resolve implements Strategy.
func (s *SnapshotStrategy) Resolve(ctx context.Context, kind Kind, reference string, wc gamedata.WorldContext) (Record, error) {
	if err := wc.Validate(); err != nil {
		return nil, err
	}
	host, err := resolveHost(ctx, s.hosts, wc)
	if err != nil {
		return nil, err
	}

	var (
		file  gamedata.SnapshotFile
		match func(fields []string) (Record, bool)
	)
	reference = strings.TrimSpace(reference)
	switch kind {
	case KindVillage:
		if _, err := ParseCoord(reference); err != nil {
			return nil, notFound(kind, reference)
		}
		file, match = gamedata.SnapshotVillages, villageMatcher(reference)
	case KindPlayer:
		file, match = gamedata.SnapshotPlayers, playerMatcher(reference)
	case KindTribe:
		file, match = gamedata.SnapshotTribes, tribeMatcher(reference)
	default:
		return nil, notFound(kind, reference)
	}

	body, err := s.snapshots.Fetch(ctx, host, file)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxSnapshotLine)
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), ",")
		if rec, ok := match(fields); ok {
			return rec, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", file, err)
	}
	return nil, notFound(kind, reference)
}

// villageMatcher compares the reference against the line's "x|y" text
// exactly, so "0500|500" does not match village 500|500.
func villageMatcher(reference string) func([]string) (Record, bool) {
	return func(fields []string) (Record, bool) {
		if len(fields) < 7 || fields[2]+"|"+fields[3] != reference {
			return nil, false
		}
		x, errX := strconv.Atoi(fields[2])
		y, errY := strconv.Atoi(fields[3])
		if errX != nil || errY != nil {
			return nil, false
		}
		id, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return nil, false
		}
		points, _ := strconv.ParseInt(fields[5], 10, 64)
		return Village{VillageID: id, VillageName: decodeName(fields[1]), X: x, Y: y, Points: points}, true
	}
}

func playerMatcher(name string) func([]string) (Record, bool) {
	fold := cases.Fold()
	want := fold.String(name)
	return func(fields []string) (Record, bool) {
		if len(fields) < 6 {
			return nil, false
		}
		decoded := decodeName(fields[1])
		if fold.String(decoded) != want {
			return nil, false
		}
		id, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return nil, false
		}
		return Player{
			PlayerID:   id,
			PlayerName: decoded,
			Points:     optionalInt(fields[4]),
			Rank:       optionalInt(fields[5]),
		}, true
	}
}

func tribeMatcher(tag string) func([]string) (Record, bool) {
	fold := cases.Fold()
	want := fold.String(tag)
	return func(fields []string) (Record, bool) {
		if len(fields) != 8 {
			return nil, false
		}
		decodedTag := decodeName(fields[2])
		if fold.String(decodedTag) != want {
			return nil, false
		}
		id, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return nil, false
		}
		return Tribe{
			TribeID:   id,
			TribeName: decodeName(fields[1]),
			Tag:       decodedTag,
			Points:    optionalInt(fields[5]),
			Rank:      optionalInt(fields[7]),
		}, true
	}
}

// decodeName percent-decodes a dump field, turning '+' into a space.
func decodeName(raw string) string {
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return strings.ReplaceAll(raw, "+", " ")
	}
	return decoded
}

func optionalInt(raw string) *int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return nil
	}
	return &v
}
