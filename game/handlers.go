package game

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RoomExistsHandler answers the pre-join existence probe over plain HTTP so
// the client can validate a code before opening a socket.
func (g *Gateway) RoomExistsHandler(ctx *gin.Context) {
	code := ctx.Param("code")
	ctx.JSON(http.StatusOK, gin.H{
		"roomCode": code,
		"exists":   g.registry.Exists(code),
	})
}

// MyStatsHandler returns the caller's progression ledger plus the derived
// level fields. Requires the auth middleware.
func (g *Gateway) MyStatsHandler(ctx *gin.Context) {
	id := ctx.GetString("id")
	if id == "" {
		slog.Error("id missing after auth middleware",
			"ip", ctx.ClientIP(),
			"user_agent", ctx.Request.UserAgent(),
		)
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "unknown-error"})
		return
	}

	stats, err := g.stats.GetPlayerStats(ctx.Request.Context(), id)
	if err != nil {
		slog.Error("load player stats", "userId", id, "error", err)
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "unknown-error"})
		return
	}

	currentXP, toNext := LevelProgress(stats.XP)
	ctx.JSON(http.StatusOK, gin.H{
		"xp":            stats.XP,
		"level":         LevelForXP(stats.XP),
		"currentXP":     currentXP,
		"xpToNextLevel": toNext,
		"gamesPlayed":   stats.GamesPlayed,
		"gamesWon":      stats.GamesWon,
		"winRate":       stats.WinRate(),
		"winStreak":     stats.WinStreak,
	})
}

// OnlineFriendsHandler lists which of the caller's friends hold a live
// socket right now. Requires the auth middleware.
func (g *Gateway) OnlineFriendsHandler(ctx *gin.Context) {
	id := ctx.GetString("id")
	if id == "" {
		slog.Error("id missing after auth middleware",
			"ip", ctx.ClientIP(),
			"user_agent", ctx.Request.UserAgent(),
		)
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "unknown-error"})
		return
	}

	online := g.presence.OnlineFriends(ctx.Request.Context(), id)
	ctx.JSON(http.StatusOK, gin.H{"online": online})
}
