package main

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron/v2"
	"google.golang.org/api/option"

	foosball "github.com/kicktally/foosball-sync/repos/foosball"
	resend "github.com/kicktally/foosball-sync/repos/resend"

	auth "github.com/kicktally/foosball-sync/pkg/auth"

	groups "github.com/kicktally/foosball-sync/services/groups"
	matches "github.com/kicktally/foosball-sync/services/matches"
	ratelimit "github.com/kicktally/foosball-sync/services/ratelimit"
	stats "github.com/kicktally/foosball-sync/services/stats"
)

func main() {
	ctx := context.Background()

	projectID := os.Getenv("FIREBASE_PROJECT_ID")
	credentialsJSON := os.Getenv("FIREBASE_CREDENTIALS_JSON")
	port := os.Getenv("PORT")
	allowOrigins := os.Getenv("CORS_HOSTS")
	hostURL := os.Getenv("HOST_URL")

	credentialsOption := option.WithCredentialsJSON([]byte(credentialsJSON))

	firestoreClient, err := firestore.NewClient(ctx, projectID, credentialsOption)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	firebaseApp, err := firebase.NewApp(ctx, nil, credentialsOption)
	if err != nil {
		log.Fatalf("error initializing app: %v\n", err)
	}

	foosballService := foosball.NewService(firestoreClient)
	resendService := resend.NewService(firestoreClient, hostURL)

	rateLimitService := ratelimit.NewRateLimitService(firestoreClient)
	statsService := stats.NewStatsService(firestoreClient, foosballService)
	groupService := groups.NewGroupService(firestoreClient, foosballService, rateLimitService, statsService, resendService)
	matchesService := matches.NewMatchesService(firestoreClient, foosballService, rateLimitService, statsService)

	// Periodic reconcile: pick up groups whose stats recompute was
	// missed and rebuild them.
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(5*time.Minute),
		gocron.NewTask(func() {
			statsService.ReconcileStale(context.Background())
		}),
	)
	if err != nil {
		log.Fatalf("Failed to schedule stats reconcile job: %v", err)
	}
	scheduler.Start()

	config := cors.DefaultConfig()
	config.AllowOrigins = strings.Split(allowOrigins, ",")
	config.AllowCredentials = true
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Access-Control-Allow-Origin"}

	router := gin.Default()
	router.Use(cors.New(config))

	groupsRouter := router.Group("/groups/v1")
	groupsRouter.Use(auth.AuthMiddleware(firebaseApp))

	matchesRouter := router.Group("/matches/v1")
	matchesRouter.Use(auth.AuthMiddleware(firebaseApp))

	limitsRouter := router.Group("/limits/v1")
	limitsRouter.Use(auth.AuthMiddleware(firebaseApp))

	statsRouter := router.Group("/stats/v1")

	groups.NewHTTPHandler(groups.HTTPOptions{
		Service: groupService,
		Router:  groupsRouter,
	})

	matches.NewHTTPHandler(matches.HTTPOptions{
		Service: matchesService,
		Router:  matchesRouter,
	})

	ratelimit.NewHTTPHandler(ratelimit.HTTPOptions{
		Service: rateLimitService,
		Router:  limitsRouter,
	})

	stats.NewHTTPHandler(stats.HTTPOptions{
		Service: statsService,
		Router:  statsRouter,
	})

	log.Fatal(router.Run(":" + port))
}
