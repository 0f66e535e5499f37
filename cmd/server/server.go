package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/axellelanca/sharetracker/cmd"
	"github.com/axellelanca/sharetracker/internal/api"
	"github.com/axellelanca/sharetracker/internal/config"
	"github.com/axellelanca/sharetracker/internal/models"
	"github.com/axellelanca/sharetracker/internal/monitor"
	"github.com/axellelanca/sharetracker/internal/ratelimit"
	"github.com/axellelanca/sharetracker/internal/repository"
	"github.com/axellelanca/sharetracker/internal/services"
	"github.com/axellelanca/sharetracker/internal/workers"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// RunServerCmd représente la commande 'run-server' de Cobra.
// C'est le point d'entrée pour lancer le serveur de l'application.
var RunServerCmd = &cobra.Command{
	Use:   "run-server",
	Short: "Lance le serveur API de suivi des partages et les processus de fond.",
	Long: `Cette commande initialise la base de données, configure les APIs,
démarre les limiteurs de débit, les workers d'événements et le moniteur de
ressources, puis lance le serveur HTTP.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Charger la configuration
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Échec du chargement de la configuration : %v", err)
		}

		// Initialiser la base de données
		db, err := gorm.Open(sqlite.Open(cfg.Database.Name), &gorm.Config{})
		if err != nil {
			log.Fatalf("Échec de la connexion à la base de données : %v", err)
		}

		// Migration automatique des modèles
		if err := db.AutoMigrate(
			&models.ShareToken{},
			&models.ShareClick{},
			&models.ShareAnalytics{},
			&models.Job{},
			&models.Course{},
			&models.UserEvent{},
		); err != nil {
			log.Fatalf("Échec de la migration de la base de données : %v", err)
		}

		// Initialiser les repositories
		shareRepo := repository.NewShareRepository(db)
		clickRepo := repository.NewClickRepository(db)
		analyticsRepo := repository.NewAnalyticsRepository(db)
		resourceRepo := repository.NewResourceRepository(db)
		eventRepo := repository.NewEventRepository(db)

		log.Println("Repositories initialisés.")

		// Contexte racine des tâches de fond ; annulé à l'arrêt du serveur.
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Construire les limiteurs de débit, un par classe d'action.
		// Les compteurs sont locaux au processus par défaut ; derrière un load
		// balancer chaque instance applique donc son propre plafond. Backend
		// "redis" pour partager les compteurs entre instances.
		limiters := buildLimiters(ctx, cfg)

		// Initialiser les services métiers
		shareService := services.NewShareService(shareRepo, analyticsRepo, resourceRepo,
			cfg.Share.TokenLength, cfg.Share.ExpiryDays)
		analyticsService := services.NewAnalyticsService(clickRepo, analyticsRepo, shareRepo)
		clickService := services.NewClickService(shareService, clickRepo, analyticsService, limiters.Click)
		redirectService := services.NewRedirectService(shareService, clickService, resourceRepo)
		resourceService := services.NewResourceService(resourceRepo)

		log.Println("Services métiers initialisés.")

		// Initialiser le channel des événements de suivi et lancer les workers.
		eventsChan := make(chan models.TrackingEvent, cfg.Analytics.BufferSize)
		api.TrackingEventsChannel = eventsChan // Set the global channel
		workers.StartEventWorkers(cfg.Analytics.WorkerCount, eventsChan, eventRepo)

		log.Printf("Channel d'événements initialisé avec un buffer de %d. %d worker(s) démarré(s).",
			cfg.Analytics.BufferSize, cfg.Analytics.WorkerCount)

		// Initialiser et lancer le moniteur de ressources.
		monitorInterval := time.Duration(cfg.Monitor.IntervalMinutes) * time.Minute
		resourceMonitor := monitor.NewResourceMonitor(resourceRepo, shareRepo, monitorInterval)
		go resourceMonitor.Start(ctx)
		log.Printf("Moniteur de ressources démarré avec un intervalle de %v.", monitorInterval)

		// Configurer le routeur Gin et les handlers API.
		router := gin.Default()
		api.SetupRoutes(router, &api.Handlers{
			Shares:    shareService,
			Clicks:    clickService,
			Analytics: analyticsService,
			Redirects: redirectService,
			Resources: resourceService,
			Limiters:  limiters,
		}, cfg.Analytics.BufferSize)

		log.Println("Routes API configurées.")

		// Créer le serveur HTTP Gin
		serverAddr := fmt.Sprintf(":%d", cfg.Server.Port)
		srv := &http.Server{
			Addr:    serverAddr,
			Handler: router,
		}

		// Démarrer le serveur Gin dans une goroutine anonyme pour ne pas bloquer.
		go func() {
			log.Printf("Démarrage du serveur sur %s", serverAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Échec du démarrage du serveur : %v", err)
			}
		}()

		// Gérer l'arrêt propre du serveur (graceful shutdown).
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM) // Attendre Ctrl+C ou signal d'arrêt

		// Bloquer jusqu'à ce qu'un signal d'arrêt soit reçu.
		<-quit
		log.Println("Signal d'arrêt reçu. Arrêt du serveur...")

		// Arrêter les tâches de fond (balayage des limiteurs, moniteur).
		cancel()

		// Arrêt propre du serveur HTTP avec un timeout.
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Arrêt forcé du serveur : %v", err)
		}

		log.Println("Serveur arrêté proprement.")
	},
}

// buildLimiters construit le jeu de limiteurs selon le backend configuré et
// démarre le balayage périodique des fenêtres expirées (backend mémoire).
func buildLimiters(ctx context.Context, cfg *config.Config) *ratelimit.Set {
	specs := []ratelimit.LimitSpec{
		{Ceiling: cfg.RateLimit.Global.Ceiling, Window: cfg.RateLimit.Global.Window()},
		{Ceiling: cfg.RateLimit.CreateShare.Ceiling, Window: cfg.RateLimit.CreateShare.Window()},
		{Ceiling: cfg.RateLimit.CreateJob.Ceiling, Window: cfg.RateLimit.CreateJob.Window()},
		{Ceiling: cfg.RateLimit.CreateCourse.Ceiling, Window: cfg.RateLimit.CreateCourse.Window()},
		{Ceiling: cfg.RateLimit.Click.Ceiling, Window: cfg.RateLimit.Click.Window()},
	}

	if cfg.RateLimit.Backend == "redis" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RateLimit.RedisAddr})
		log.Printf("Limiteurs de débit Redis initialisés (%s).", cfg.RateLimit.RedisAddr)
		return ratelimit.NewRedisSet(rdb, specs[0], specs[1], specs[2], specs[3], specs[4])
	}

	set := ratelimit.NewMemorySet(specs[0], specs[1], specs[2], specs[3], specs[4])

	// Balayer les entrées expirées pour borner la mémoire.
	sweepEvery := time.Duration(cfg.RateLimit.SweepIntervalSeconds) * time.Second
	for _, l := range []ratelimit.Admitter{set.Global, set.CreateShare, set.CreateJob, set.CreateCourse, set.Click} {
		if mem, ok := l.(*ratelimit.Limiter); ok {
			mem.StartSweeper(ctx, sweepEvery)
		}
	}

	log.Printf("Limiteurs de débit en mémoire initialisés (balayage toutes les %v).", sweepEvery)
	return set
}

func init() {
	cmd.RootCmd.AddCommand(RunServerCmd)
}
