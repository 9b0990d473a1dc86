package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	errs "github.com/waylines/waylines/errors"
	"github.com/waylines/waylines/models"
	"github.com/waylines/waylines/server/response"
)

func (s *Server) handleCreateRoute() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.New("Unauthorized", http.StatusUnauthorized))
			return
		}
		var route models.Route
		if err := c.ShouldBindJSON(&route); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.New(err.Error(), http.StatusBadRequest))
			return
		}
		created, err := s.RouteService.CreateRoute(user.ID, &route)
		if err != nil {
			response.JSON(c, "", http.StatusInternalServerError, nil, err)
			return
		}
		response.JSON(c, "Route created", http.StatusCreated, created, nil)
	}
}

// handleGetRoute serves the route detail. It sits outside the authorized
// group because public and link routes are readable anonymously; identity,
// when present, widens access per the visibility rules.
func (s *Server) handleGetRoute() gin.HandlerFunc {
	return func(c *gin.Context) {
		routeID, err := parseUintParam(c, "routeID")
		if err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.New("invalid route id", http.StatusBadRequest))
			return
		}
		user := s.socketUser(c) // optional identity, nil for anonymous
		route, svcErr := s.RouteService.GetRoute(user, routeID)
		if svcErr != nil {
			response.JSON(c, "", http.StatusForbidden, nil, svcErr)
			return
		}
		response.JSON(c, "", http.StatusOK, route, nil)
	}
}

func (s *Server) handleListMyRoutes() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.New("Unauthorized", http.StatusUnauthorized))
			return
		}
		routes, err := s.RouteService.ListMyRoutes(user.ID)
		if err != nil {
			response.JSON(c, "", http.StatusInternalServerError, nil, err)
			return
		}
		response.JSON(c, "", http.StatusOK, routes, nil)
	}
}

func (s *Server) handleShareRoute() gin.HandlerFunc {
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
		var body struct {
			Usernames []string `json:"usernames" binding:"required,min=1"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, errs.New(err.Error(), http.StatusBadRequest))
			return
		}
		route, svcErr := s.RouteService.ShareRoute(user.ID, routeID, body.Usernames)
		if svcErr != nil {
			response.JSON(c, "", http.StatusInternalServerError, nil, svcErr)
			return
		}
		response.JSON(c, "Route shared", http.StatusOK, route, nil)
	}
}
