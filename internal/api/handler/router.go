package handler

import (
	"mentorlink/backend/internal/api/middleware"

	"github.com/gin-gonic/gin"
)

// RouterOptions carries the middleware that depends on outside services.
type RouterOptions struct {
	CORSOrigin    string
	RateLimit     gin.HandlerFunc
	Authenticator middleware.Authenticator
}

func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(h.logger), middleware.CORS(opts.CORSOrigin))
	if opts.RateLimit != nil {
		router.Use(opts.RateLimit)
	}
	authenticator := opts.Authenticator
	if authenticator == nil {
		authenticator = h.Auth
	}
	requireAuth := middleware.Auth(authenticator, h.logger)

	router.GET("/ping", h.Ping)

	api := router.Group("/api")
	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", h.Register)
		authRoutes.POST("/login", h.Login)
		authRoutes.POST("/logout", requireAuth, h.Logout)
		authRoutes.GET("/me", requireAuth, h.Me)
		authRoutes.PUT("/profile", requireAuth, h.UpdateProfile)
	}

	alumniRoutes := api.Group("/alumni", requireAuth)
	{
		alumniRoutes.GET("", h.ListAlumni)
		alumniRoutes.GET("/:id", h.GetAlumni)
		alumniRoutes.PUT("/:id", h.UpdateAlumni)
	}

	requestRoutes := api.Group("/requests", requireAuth)
	{
		requestRoutes.POST("", h.CreateRequest)
		requestRoutes.GET("", h.ListRequests)
		requestRoutes.GET("/:id", h.GetRequest)
		requestRoutes.PUT("/:id", h.UpdateRequestStatus)
	}

	chatRoutes := api.Group("/chat", requireAuth)
	{
		chatRoutes.GET("/rooms", h.ListRooms)
		chatRoutes.POST("/rooms/from-request/:requestId", h.CreateRoomFromRequest)
		chatRoutes.GET("/rooms/:roomId/messages", h.History)
		chatRoutes.POST("/rooms/:roomId/messages", h.SendMessage)
		chatRoutes.POST("/rooms/:roomId/mark-read", h.MarkRead)
		chatRoutes.GET("/rooms/:roomId/unread-count", h.RoomUnreadCount)
		chatRoutes.GET("/unread-count", h.TotalUnreadCount)
	}

	router.GET("/ws/chat/:roomId", requireAuth, h.ServeWebSocket)
	return router
}
