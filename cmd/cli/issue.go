package cli

import (
	"fmt"
	"log"
	"os"

	"github.com/axellelanca/sharetracker/cmd"
	"github.com/axellelanca/sharetracker/internal/config"
	"github.com/axellelanca/sharetracker/internal/models"
	"github.com/axellelanca/sharetracker/internal/repository"
	"github.com/axellelanca/sharetracker/internal/services"
	"github.com/glebarez/sqlite"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	resourceTypeFlag string
	resourceIDFlag   string
	userPhoneFlag    string
)

// IssueCmd représente la commande 'issue'
var IssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Émet un token de partage pour une vaga ou un curso.",
	Long: `Cette commande émet un nouveau token de partage lié à une ressource
et affiche l'URL de partage complète.

Exemple:
  sharetracker issue --type=job --id="4f1c...-uuid" --phone="+5511999999999"`,
	Run: func(cmd *cobra.Command, args []string) {
		// Valider les flags requis
		if resourceTypeFlag == "" || resourceIDFlag == "" {
			fmt.Println("Error: --type and --id flags are required")
			os.Exit(1)
		}
		if !models.ValidResourceType(resourceTypeFlag) {
			fmt.Println("Error: --type must be 'job' or 'course'")
			os.Exit(1)
		}

		// Charger la configuration
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		db, err := gorm.Open(sqlite.Open(cfg.Database.Name), &gorm.Config{})
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}

		sqlDB, err := db.DB()
		if err != nil {
			log.Fatalf("FATAL: Échec de l'obtention de la base de données SQL sous-jacente: %v", err)
		}
		defer sqlDB.Close()

		// Initialiser les repositories et services nécessaires
		shareRepo := repository.NewShareRepository(db)
		analyticsRepo := repository.NewAnalyticsRepository(db)
		resourceRepo := repository.NewResourceRepository(db)
		shareService := services.NewShareService(shareRepo, analyticsRepo, resourceRepo,
			cfg.Share.TokenLength, cfg.Share.ExpiryDays)

		// Appeler le ShareService pour émettre le token.
		share, err := shareService.CreateShare(resourceTypeFlag, resourceIDFlag, userPhoneFlag)
		if err != nil {
			log.Fatalf("Failed to issue share token: %v", err)
		}

		fullShareURL := fmt.Sprintf("%s/shared/%s", cfg.Server.BaseURL, share.Token)
		fmt.Printf("Token de partage émis avec succès:\n")
		fmt.Printf("Token: %s\n", share.Token)
		fmt.Printf("URL complète: %s\n", fullShareURL)
		fmt.Printf("Expire le: %s\n", share.ExpiresAt.Format("2006-01-02 15:04:05"))
	},
}

func init() {
	// Définir les flags pour la commande issue.
	IssueCmd.Flags().StringVar(&resourceTypeFlag, "type", "", "Resource type: job or course")
	IssueCmd.Flags().StringVar(&resourceIDFlag, "id", "", "Resource identifier")
	IssueCmd.Flags().StringVar(&userPhoneFlag, "phone", "", "Phone of the sharing user (optional)")

	// Marquer les flags comme requis
	IssueCmd.MarkFlagRequired("type")
	IssueCmd.MarkFlagRequired("id")

	// Ajouter la commande à RootCmd
	cmd.RootCmd.AddCommand(IssueCmd)
}
