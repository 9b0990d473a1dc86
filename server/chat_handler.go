package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	errs "github.com/waylines/waylines/errors"
	"github.com/waylines/waylines/server/response"
	"github.com/waylines/waylines/services"
)

func (s *Server) handleChatDashboard() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.New("Unauthorized", http.StatusUnauthorized))
			return
		}
		dashboard, err := s.ChatService.Dashboard(user.ID)
		if err != nil {
			response.JSON(c, "", http.StatusInternalServerError, nil, err)
			return
		}
		response.JSON(c, "", http.StatusOK, dashboard, nil)
	}
}

// handleStartPrivateChat finds or lazily creates the conversation with
// another user, marks the peer's messages read and returns recent history.
func (s *Server) handleStartPrivateChat() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.New("Unauthorized", http.StatusUnauthorized))
			return
		}
		otherUserID, err := parseUintParam(c, "userID")
		if err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.New("invalid user id", http.StatusBadRequest))
			return
		}
		conversation, messages, svcErr := s.ChatService.StartConversation(user.ID, otherUserID)
		if svcErr != nil {
			response.JSON(c, "", http.StatusInternalServerError, nil, svcErr)
			return
		}
		response.JSON(c, "", http.StatusOK, gin.H{
			"conversation": conversation,
			"messages":     messages,
		}, nil)
	}
}

func (s *Server) handleSendPrivateMessage() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.New("Unauthorized", http.StatusUnauthorized))
			return
		}
		var body struct {
			ConversationID uint   `json:"conversation_id" binding:"required"`
			Message        string `json:"message" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.New(err.Error(), http.StatusBadRequest))
			return
		}
		message, svcErr := s.ChatService.SendPrivateMessage(body.ConversationID, user.ID, body.Message)
		if svcErr != nil {
			response.JSON(c, "", http.StatusInternalServerError, nil, svcErr)
			return
		}
		response.JSON(c, "Message sent", http.StatusOK, gin.H{
			"message_id": message.ID,
			"content":    message.Content,
			"sender":     message.Sender.Username,
			"sender_id":  message.SenderID,
			"created_at": message.CreatedAt,
		}, nil)
	}
}

func (s *Server) handleGetPrivateMessages() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.New("Unauthorized", http.StatusUnauthorized))
			return
		}
		conversationID, err := parseUintParam(c, "conversationID")
		if err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.New("invalid conversation id", http.StatusBadRequest))
			return
		}
		if _, svcErr := s.ChatService.ConversationForUser(conversationID, user.ID); svcErr != nil {
			response.JSON(c, "", http.StatusForbidden, nil, svcErr)
			return
		}
		messages, svcErr := s.ChatService.PrivateHistory(conversationID, 100)
		if svcErr != nil {
			response.JSON(c, "", http.StatusInternalServerError, nil, svcErr)
			return
		}
		response.JSON(c, "", http.StatusOK, messages, nil)
	}
}

func (s *Server) handleConversationInfo() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.New("Unauthorized", http.StatusUnauthorized))
			return
		}
		conversationID, err := parseUintParam(c, "conversationID")
		if err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.New("invalid conversation id", http.StatusBadRequest))
			return
		}
		conversation, svcErr := s.ChatService.ConversationForUser(conversationID, user.ID)
		if svcErr != nil {
			response.JSON(c, "", http.StatusForbidden, nil, svcErr)
			return
		}
		other := conversation.UserLow
		if other.ID == user.ID {
			other = conversation.UserHigh
		}
		response.JSON(c, "", http.StatusOK, gin.H{
			"conversation": gin.H{
				"id":         conversation.ID,
				"updated_at": conversation.UpdatedAt,
			},
			"other_user": services.UserBrief{
				ID:       other.ID,
				Username: other.Username,
				Fullname: other.Fullname,
			},
		}, nil)
	}
}

func (s *Server) handleMarkConversationRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.New("Unauthorized", http.StatusUnauthorized))
			return
		}
		conversationID, err := parseUintParam(c, "conversationID")
		if err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.New("invalid conversation id", http.StatusBadRequest))
			return
		}
		if svcErr := s.ChatService.MarkConversationRead(conversationID, user.ID); svcErr != nil {
			response.JSON(c, "", http.StatusInternalServerError, nil, svcErr)
			return
		}
		response.JSON(c, "Conversation marked as read", http.StatusOK, nil, nil)
	}
}

func (s *Server) handleGetRouteMessages() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.New("Unauthorized", http.StatusUnauthorized))
			return
		}
		routeID, err := parseUintParam(c, "routeID")
		if err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.New("invalid route id", http.StatusBadRequest))
			return
		}
		route, repoErr := s.RouteRepository.FindRouteByID(routeID)
		if repoErr != nil {
			response.JSON(c, "", http.StatusNotFound, nil, errs.ErrNotFound)
			return
		}
		if !services.CanViewRoute(user, route) {
			response.JSON(c, "", http.StatusForbidden, nil, errs.ErrForbidden)
			return
		}
		messages, svcErr := s.ChatService.RouteHistory(routeID, 100)
		if svcErr != nil {
			response.JSON(c, "", http.StatusInternalServerError, nil, svcErr)
			return
		}
		response.JSON(c, "", http.StatusOK, messages, nil)
	}
}
