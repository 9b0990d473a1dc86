package server

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	errs "github.com/waylines/waylines/errors"
	"github.com/waylines/waylines/server/response"
	"github.com/waylines/waylines/services"
	"github.com/waylines/waylines/ws"
)

// handlePrivateChatSocket guards the private chat endpoint: anonymous
// callers and non-participants are refused during the handshake, before any
// registry join or history fetch.
func (s *Server) handlePrivateChatSocket() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := s.socketUser(c)
		if user == nil {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.New("Unauthorized", http.StatusUnauthorized))
			return
		}
		conversationID, err := parseUintParam(c, "conversationID")
		if err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.New("invalid conversation id", http.StatusBadRequest))
			return
		}
		if _, err := s.ChatService.ConversationForUser(conversationID, user.ID); err != nil {
			response.JSON(c, "", http.StatusForbidden, nil, err)
			return
		}
		if err := ws.ServePrivateChat(s.Hub, s.ChatService, user, conversationID, c.Writer, c.Request); err != nil {
			log.Printf("private chat upgrade failed: %v", err)
		}
	}
}

// handleRouteChatSocket guards the route chat endpoint with the route
// visibility gate. Access is evaluated at connect time only.
func (s *Server) handleRouteChatSocket() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := s.socketUser(c)
		if user == nil {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.New("Unauthorized", http.StatusUnauthorized))
			return
		}
		routeID, err := parseUintParam(c, "routeID")
		if err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.New("invalid route id", http.StatusBadRequest))
			return
		}
		route, err := s.RouteRepository.FindRouteByID(routeID)
		if err != nil {
			response.JSON(c, "", http.StatusNotFound, nil, errs.ErrNotFound)
			return
		}
		if !services.CanViewRoute(user, route) {
			response.JSON(c, "", http.StatusForbidden, nil, errs.ErrForbidden)
			return
		}
		if err := ws.ServeRouteChat(s.Hub, s.ChatService, user, routeID, c.Writer, c.Request); err != nil {
			log.Printf("route chat upgrade failed: %v", err)
		}
	}
}

func parseUintParam(c *gin.Context, name string) (uint, error) {
	value, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(value), nil
}
