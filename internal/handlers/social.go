package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/estuda-app/estuda-backend/internal/services"
)

type RankingHandler struct {
	rankingService services.RankingService
}

func NewRankingHandler(rankingService services.RankingService) *RankingHandler {
	return &RankingHandler{rankingService: rankingService}
}

func limitQuery(c *gin.Context) int {
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			return n
		}
	}
	return 0
}

func (h *RankingHandler) Global(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	entries, err := h.rankingService.GlobalDaily(c.Request.Context(), userID, limitQuery(c))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"ranking": entries})
}

func (h *RankingHandler) Streaks(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	entries, err := h.rankingService.Streaks(c.Request.Context(), limitQuery(c))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"ranking": entries})
}

func (h *RankingHandler) Friends(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	entries, err := h.rankingService.Friends(c.Request.Context(), userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"ranking": entries})
}

func (h *RankingHandler) Clans(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	entries, err := h.rankingService.Clans(c.Request.Context(), limitQuery(c))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"ranking": entries})
}

type ShopHandler struct {
	shopService services.ShopService
}

func NewShopHandler(shopService services.ShopService) *ShopHandler {
	return &ShopHandler{shopService: shopService}
}

func (h *ShopHandler) List(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	items, err := h.shopService.ListItems(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"items": items})
}

func (h *ShopHandler) Buy(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	itemID := c.Param("id")
	if itemID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "item id required"})
		return
	}
	result, err := h.shopService.BuyItem(c.Request.Context(), userID, itemID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}

type ClanHandler struct {
	clanService services.ClanService
}

func NewClanHandler(clanService services.ClanService) *ClanHandler {
	return &ClanHandler{clanService: clanService}
}

func (h *ClanHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req services.ClanInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	clan, err := h.clanService.CreateClan(c.Request.Context(), userID, req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, clan)
}

func (h *ClanHandler) Get(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	clanID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	view, err := h.clanService.GetClan(c.Request.Context(), clanID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, view)
}

func (h *ClanHandler) Join(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	clanID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	clan, err := h.clanService.JoinClan(c.Request.Context(), userID, clanID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, clan)
}

func (h *ClanHandler) Leave(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.clanService.LeaveClan(c.Request.Context(), userID); err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "left clan"})
}

type FriendHandler struct {
	friendService services.FriendService
}

func NewFriendHandler(friendService services.FriendService) *FriendHandler {
	return &FriendHandler{friendService: friendService}
}

func (h *FriendHandler) Send(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		UserID uuid.UUID `json:"user_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	request, err := h.friendService.SendRequest(c.Request.Context(), userID, req.UserID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, request)
}

func (h *FriendHandler) Accept(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	requestID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	request, err := h.friendService.AcceptRequest(c.Request.Context(), userID, requestID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, request)
}

func (h *FriendHandler) Decline(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	requestID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.friendService.DeclineRequest(c.Request.Context(), userID, requestID); err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "request declined"})
}

func (h *FriendHandler) Pending(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	views, err := h.friendService.ListPending(c.Request.Context(), userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"requests": views})
}

func (h *FriendHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	views, err := h.friendService.ListFriends(c.Request.Context(), userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"friends": views})
}

func (h *FriendHandler) Remove(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	friendID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.friendService.RemoveFriend(c.Request.Context(), userID, friendID); err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "friend removed"})
}
