package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetLeaderboard handles GET /api/leaderboard. Karma is computed from likes
// received in the trailing window at request time.
// @Summary Karma leaderboard
// @Description Top 5 users by karma earned in the last 24 hours
// @Tags leaderboard
// @Produce json
// @Success 200 {object} models.Leaderboard
// @Failure 500 {object} models.ErrorResponse
// @Router /leaderboard [get]
func (s *Server) GetLeaderboard(c *fiber.Ctx) error {
	board, err := s.leaderboardService.TopUsers(c.UserContext(), s.clock())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(board)
}
