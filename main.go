package main

import (
	"context"
	"log"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/messaging"
	"github.com/redis/go-redis/v9"
	"github.com/waylines/waylines/config"
	"github.com/waylines/waylines/db"
	"github.com/waylines/waylines/server"
	"github.com/waylines/waylines/services"
	"github.com/waylines/waylines/ws"
	"google.golang.org/api/option"
)

// initMessaging sets up the Firebase Messaging client used for best-effort
// push notifications. Push is optional; without credentials it stays off.
func initMessaging(conf *config.Config) *messaging.Client {
	if conf.GoogleApplicationCredentials == "" {
		log.Println("push notifications disabled: no google credentials configured")
		return nil
	}
	opt := option.WithCredentialsFile(conf.GoogleApplicationCredentials)
	app, err := firebase.NewApp(context.Background(), nil, opt)
	if err != nil {
		log.Printf("error initializing Firebase app: %v", err)
		return nil
	}
	client, err := app.Messaging(context.Background())
	if err != nil {
		log.Printf("error getting Messaging client: %v", err)
		return nil
	}
	log.Println("Firebase Messaging client initialized")
	return client
}

// initRedis connects the dashboard cache backend. The cache is best-effort;
// without an address the service falls back to rebuilding from the database.
func initRedis(conf *config.Config) *redis.Client {
	if conf.RedisAddr == "" {
		log.Println("dashboard cache disabled: no redis address configured")
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     conf.RedisAddr,
		Password: conf.RedisPassword,
	})
}

func main() {
	conf, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	gormDB := db.GetDB(conf)
	if err := db.SeedRoles(gormDB.DB); err != nil {
		log.Fatalf("error seeding roles: %v", err)
	}

	authRepo := db.NewAuthRepo(gormDB)
	routeRepo := db.NewRouteRepo(gormDB)
	chatRepo := db.NewChatRepo(gormDB)

	dashboardCache := services.NewDashboardCache(initRedis(conf))
	notifier := services.NewFCMNotifier(initMessaging(conf))

	authService := services.NewAuthService(authRepo, conf)
	routeService := services.NewRouteService(routeRepo, authRepo, conf)
	chatService := services.NewChatService(chatRepo, authRepo, dashboardCache, notifier, conf)

	s := &server.Server{
		Config:          conf,
		AuthRepository:  authRepo,
		RouteRepository: routeRepo,
		ChatRepository:  chatRepo,
		AuthService:     authService,
		RouteService:    routeService,
		ChatService:     chatService,
		Hub:             ws.NewHub(),
		DB:              *gormDB,
	}

	s.Start()
}
