package cli

import (
	"fmt"
	"log"
	"os"

	"github.com/axellelanca/sharetracker/cmd"
	"github.com/axellelanca/sharetracker/internal/config"
	"github.com/axellelanca/sharetracker/internal/repository"
	"github.com/axellelanca/sharetracker/internal/services"
	"github.com/glebarez/sqlite"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// StatsCmd représente la commande 'stats'
var StatsCmd = &cobra.Command{
	Use:   "stats [share-token]",
	Short: "Get analytics for a share token",
	Long:  `Get the click and conversion rollup for the provided share token.`,
	Args:  cobra.ExactArgs(1),
	Run:   runStats,
}

func init() {
	cmd.RootCmd.AddCommand(StatsCmd)
}

// runStats exécute la logique pour la commande stats
func runStats(cmd *cobra.Command, args []string) {
	token := args[0]

	if token == "" {
		fmt.Println("Error: share token is required")
		os.Exit(1)
	}

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

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("FATAL: Échec de l'obtention de la base de données SQL sous-jacente: %v", err)
	}
	defer sqlDB.Close()

	// Initialiser les repositories et services nécessaires
	clickRepo := repository.NewClickRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	shareRepo := repository.NewShareRepository(db)
	analyticsService := services.NewAnalyticsService(clickRepo, analyticsRepo, shareRepo)

	// Récupérer le rollup pour ce token.
	record, err := analyticsService.GetByToken(token)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			fmt.Printf("Error: Share token '%s' not found\n", token)
		} else {
			fmt.Printf("Error retrieving analytics: %v\n", err)
		}
		os.Exit(1)
	}

	// Afficher les résultats
	fmt.Printf("Statistiques pour le token: %s\n", record.ShareToken)
	fmt.Printf("Ressource: %s %s\n", record.ResourceType, record.ResourceID)
	fmt.Printf("Partages: %d\n", record.TotalShares)
	fmt.Printf("Total de clics: %d\n", record.TotalClicks)
	fmt.Printf("Conversions: %d\n", record.TotalConversions)
	fmt.Printf("Taux de conversion: %s%%\n", record.ConversionRate)
	fmt.Printf("Dernière mise à jour: %s\n", record.LastUpdated.Format("2006-01-02 15:04:05"))
}
