package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"karmafeed/internal/middleware"
	"karmafeed/internal/models"
	"karmafeed/internal/observability"
	"karmafeed/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// Karma weights per like received.
const (
	PostLikeKarma    = 5
	CommentLikeKarma = 1
)

const (
	LeaderboardWindow = 24 * time.Hour
	LeaderboardSize   = 5
)

type LeaderboardService struct {
	karmaRepo repository.KarmaRepository
	userRepo  repository.UserRepository
}

func NewLeaderboardService(karmaRepo repository.KarmaRepository, userRepo repository.UserRepository) *LeaderboardService {
	return &LeaderboardService{
		karmaRepo: karmaRepo,
		userRepo:  userRepo,
	}
}

// RankKarma combines per-user like counts into karma, drops users with no
// positive karma and returns at most limit entries ordered by karma
// descending, then user id ascending. Usernames are left empty.
func RankKarma(postLikes, commentLikes map[uint]int64, limit int) []models.LeaderboardEntry {
	karma := make(map[uint]int64, len(postLikes)+len(commentLikes))
	for userID, n := range postLikes {
		karma[userID] += PostLikeKarma * n
	}
	for userID, n := range commentLikes {
		karma[userID] += CommentLikeKarma * n
	}

	entries := make([]models.LeaderboardEntry, 0, len(karma))
	for userID, k := range karma {
		if k <= 0 {
			continue
		}
		entries = append(entries, models.LeaderboardEntry{UserID: userID, Karma: k})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Karma != entries[j].Karma {
			return entries[i].Karma > entries[j].Karma
		}
		return entries[i].UserID < entries[j].UserID
	})

	if limit >= 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// TopUsers computes the leaderboard for the window ending at now. It is
// computed from like rows on every call; nothing is cached or stored.
func (s *LeaderboardService) TopUsers(ctx context.Context, now time.Time) (*models.Leaderboard, error) {
	span, ctx := observability.NewSpan(ctx, "leaderboard.top_users")
	defer span.End()
	start := time.Now()
	defer func() {
		observability.LeaderboardDuration.Observe(time.Since(start).Seconds())
	}()

	until := now.UTC()
	since := until.Add(-LeaderboardWindow)

	postLikes, err := s.karmaRepo.PostLikesReceived(ctx, since, until)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	commentLikes, err := s.karmaRepo.CommentLikesReceived(ctx, since, until)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	entries := RankKarma(postLikes, commentLikes, LeaderboardSize)
	if len(entries) > 0 {
		ids := make([]uint, len(entries))
		for i, e := range entries {
			ids[i] = e.UserID
		}
		names, err := s.userRepo.UsernamesByID(ctx, ids)
		if err != nil {
			span.SetError(err)
			return nil, err
		}
		for i := range entries {
			entries[i].Username = names[entries[i].UserID]
		}
	}

	span.AddAttributes(
		attribute.Int("leaderboard.candidates", len(postLikes)+len(commentLikes)),
		attribute.Int("leaderboard.entries", len(entries)),
	)
	middleware.Logger.DebugContext(ctx, "leaderboard computed",
		slog.Int("entries", len(entries)),
		slog.Time("since", since),
	)

	return &models.Leaderboard{
		Users:       entries,
		WindowHours: int(LeaderboardWindow / time.Hour),
		LastUpdated: until,
	}, nil
}
