package server

import (
	"fmt"
	"os"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func (s *Server) setupRouter() *gin.Engine {
	ginMode := os.Getenv("GIN_MODE")
	if ginMode == "test" {
		r := gin.New()
		s.defineRoutes(r)
		return r
	}

	r := gin.New()

	// LoggerWithFormatter middleware will write the logs to gin.DefaultWriter
	// By default gin.DefaultWriter = os.Stdout
	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
			param.ClientIP,
			param.TimeStamp.Format(time.RFC1123),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.Latency,
			param.Request.UserAgent(),
			param.ErrorMessage,
		)
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	s.defineRoutes(r)

	return r
}

func (s *Server) defineRoutes(router *gin.Engine) {
	store := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Minute,
		Limit: 10,
	})
	limitLogin := limitRateForLogin(store)

	apirouter := router.Group("/api/v1")
	apirouter.POST("/auth/signup", s.handleSignup())
	apirouter.POST("/auth/login", limitLogin, s.handleLogin())
	apirouter.GET("/routes/:routeID", s.handleGetRoute())

	authorized := apirouter.Group("/")
	authorized.Use(s.Authorize())
	authorized.GET("/logout", s.handleLogout())
	authorized.POST("/routes", s.handleCreateRoute())
	authorized.GET("/routes", s.handleListMyRoutes())
	authorized.POST("/routes/:routeID/share", s.handleShareRoute())
	authorized.GET("/routes/:routeID/messages", s.handleGetRouteMessages())
	authorized.GET("/chats/dashboard", s.handleChatDashboard())
	authorized.POST("/chats/private/:userID", s.handleStartPrivateChat())
	authorized.POST("/chats/private/send", s.handleSendPrivateMessage())
	authorized.GET("/chats/conversations/:conversationID", s.handleConversationInfo())
	authorized.GET("/chats/conversations/:conversationID/messages", s.handleGetPrivateMessages())
	authorized.POST("/chats/conversations/:conversationID/read", s.handleMarkConversationRead())

	// websocket endpoints authenticate from the handshake themselves
	router.GET("/ws/private_chat/:conversationID", s.handlePrivateChatSocket())
	router.GET("/ws/route_chat/:routeID", s.handleRouteChatSocket())
}
