package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/savelyev-an/packmart/internal/domain"
)

type ScoreHandler struct {
	svs XPServicer
}

func NewScoreHandler(svs XPServicer) *ScoreHandler {
	return &ScoreHandler{
		svs: svs,
	}
}

type TierResponse struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	XPThreshold int64  `json:"xp_threshold"`
	BadgeColor  string `json:"badge_color"`
}

func newTierResponse(tier domain.EloTier) TierResponse {
	return TierResponse{
		Key:         tier.Key,
		Name:        tier.Name,
		XPThreshold: tier.XPThreshold,
		BadgeColor:  tier.BadgeColor,
	}
}

type ScoreResponse struct {
	XP       int64         `json:"xp"`
	Tier     TierResponse  `json:"tier"`
	NextTier *TierResponse `json:"next_tier,omitempty"`
	Progress *float64      `json:"progress,omitempty"`
}

// Index GET RouteGroup + ScoreRoute. Текущий опыт, тир и прогресс до
// следующего тира.
func (s *ScoreHandler) Index(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	score, err := s.svs.GetScore(reqCtx, currentUserID)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	response := ScoreResponse{
		XP:       score.XP,
		Tier:     newTierResponse(score.Tier),
		Progress: score.Progress,
	}
	if score.NextTier != nil {
		next := newTierResponse(*score.NextTier)
		response.NextTier = &next
	}

	c.JSON(http.StatusOK, response)
}

type XPHistoryResponseItem struct {
	XPAmount      int64                    `json:"xp"`
	Kind          domain.XPTransactionKind `json:"kind"`
	SourceOrderID *int64                   `json:"order_id,omitempty"`
	CreatedAt     string                   `json:"created_at"`
}

// History GET RouteGroup + XPHistoryRoute. Журнал начислений опыта.
func (s *ScoreHandler) History(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	transactions, err := s.svs.GetHistory(reqCtx, currentUserID)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	if len(transactions) == 0 {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}

	response := make([]XPHistoryResponseItem, len(transactions))
	for i, transaction := range transactions {
		response[i] = XPHistoryResponseItem{
			XPAmount:      transaction.XPAmount,
			Kind:          transaction.Kind,
			SourceOrderID: transaction.SourceOrderID,
			CreatedAt:     transaction.CreatedAt.Format(time.RFC3339),
		}
	}

	c.JSON(http.StatusOK, response)
}
