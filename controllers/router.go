package controllers

import (
	"net/http"
	"time"

	"github.com/CUknot/studymatch_backend/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Router collects what NewRouter mounts. AuthLimiter and Websocket are
// optional.
type Router struct {
	Auth         *AuthController
	User         *UserController
	Room         *RoomController
	Notification *NotificationController
	Todo         *TodoController
	Tokens       middleware.TokenValidator
	AuthLimiter  gin.HandlerFunc
	Websocket    gin.HandlerFunc
	AllowOrigins []string
}

// NewRouter builds the gin engine with every route of the API.
func NewRouter(rt Router) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     rt.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "StudyMatch API is running...")
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Authentication routes
	auth := router.Group("/api/auth")
	if rt.AuthLimiter != nil {
		auth.Use(rt.AuthLimiter)
	}
	{
		auth.POST("/signup", rt.Auth.Signup)
		auth.POST("/login", rt.Auth.Login)
	}

	// Protected routes
	api := router.Group("/api")
	api.Use(middleware.JWTAuth(rt.Tokens))
	{
		api.GET("/user/me", rt.User.GetMe)
		api.PUT("/user/profile", rt.User.UpdateProfile)
		api.GET("/user/history", rt.User.GetHistory)

		api.GET("/room/my", rt.Room.GetMyRooms)
		api.GET("/room/active", rt.Room.GetActiveRooms)
		api.POST("/room/create", rt.Room.CreateRoom)
		api.GET("/room/suggested", rt.Room.GetSuggestedRooms)
		api.GET("/room/search", rt.Room.SearchRooms)
		api.PUT("/room/join/:id", rt.Room.JoinRoom)
		api.PUT("/room/leave/:id", rt.Room.LeaveRoom)
		api.DELETE("/room/delete/:id", rt.Room.DeleteRoom)
		api.GET("/room/:id", rt.Room.GetRoom)

		api.GET("/todo/display", rt.Todo.GetTasks)
		api.POST("/todo/add", rt.Todo.AddTask)
		api.PUT("/todo/update/:id", rt.Todo.UpdateTask)
		api.DELETE("/todo/delete/:id", rt.Todo.DeleteTask)
		api.PATCH("/todo/toggle/:id", rt.Todo.ToggleComplete)

		api.POST("/notifications", rt.Notification.SendNotification)
		api.GET("/notifications", rt.Notification.GetNotifications)
		api.PATCH("/notifications/:id/read", rt.Notification.MarkAsRead)
		api.POST("/notifications/send", rt.Notification.SendJoinRequest)
		api.POST("/notifications/:id/accept", rt.Notification.AcceptJoinRequest)
		api.POST("/notifications/:id/reject", rt.Notification.RejectJoinRequest)
	}

	// WebSocket route
	if rt.Websocket != nil {
		router.GET("/ws", rt.Websocket)
	}

	return router
}
