package sqlc

import (
	"context"

	mb "github.com/saeidalz13/battleship-solo/models/battleship"
	"github.com/sqlc-dev/pqtype"
)

type AnalyticsManager struct {
	queries Querier
}

func NewAnalyticsManager(queries Querier) *AnalyticsManager {
	return &AnalyticsManager{queries: queries}
}

func (a *AnalyticsManager) IncrementGamesCreatedCount(ctx context.Context, serverIpNet pqtype.Inet) error {
	return a.queries.IncrementGamesCreatedCount(ctx, serverIpNet)
}

// Records the winner of a finished game. SideNone is ignored.
func (a *AnalyticsManager) RecordWinner(ctx context.Context, serverIpNet pqtype.Inet, winner mb.Side) error {
	switch winner {
	case mb.SidePlayer:
		return a.queries.IncrementPlayerWinsCount(ctx, serverIpNet)
	case mb.SideOpponent:
		return a.queries.IncrementOpponentWinsCount(ctx, serverIpNet)
	default:
		return nil
	}
}

func (a *AnalyticsManager) GetGamesCreatedCount(ctx context.Context, serverIpNet pqtype.Inet) (int64, error) {
	return a.queries.GetGamesCreatedCount(ctx, serverIpNet)
}

func (a *AnalyticsManager) GetServerAnalytics(ctx context.Context, serverIpNet pqtype.Inet) (GameServerAnalytic, error) {
	return a.queries.GetServerAnalytics(ctx, serverIpNet)
}
