package main

import (
	"os"
	"time"

	"adpilot-app/config"
	"adpilot-app/database"
	authapi "adpilot-app/internal/api/auth"
	billingapi "adpilot-app/internal/api/billing"
	campaignsapi "adpilot-app/internal/api/campaigns"
	generationapi "adpilot-app/internal/api/generation"
	stripewebhooks "adpilot-app/internal/api/stripewebhook"
	routes "adpilot-app/internal/app/http"
	"adpilot-app/internal/domain/entitlement"
	"adpilot-app/internal/domain/tiers"
	"adpilot-app/internal/infra/generator"
	"adpilot-app/internal/repository"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// gin.SetMode(gin.ReleaseMode) uncomment only in production
	config.LoadEnv()
	database.InitDB()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("PRETTY_LOGS") == "true" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	log.Logger = logger

	catalog, err := tiers.NewCatalog([]tiers.PriceRef{
		{PriceID: config.STRIPE_PRICE_STARTER_MONTHLY, Tier: tiers.TierStarter, Cycle: tiers.CycleMonthly},
		{PriceID: config.STRIPE_PRICE_STARTER_YEARLY, Tier: tiers.TierStarter, Cycle: tiers.CycleYearly},
		{PriceID: config.STRIPE_PRICE_PRO_MONTHLY, Tier: tiers.TierPro, Cycle: tiers.CycleMonthly},
		{PriceID: config.STRIPE_PRICE_PRO_YEARLY, Tier: tiers.TierPro, Cycle: tiers.CycleYearly},
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid price catalog")
	}

	store := repository.NewEntitlementStore(database.DB)
	ledger := repository.NewEventLedger(database.DB)
	identities := repository.NewIdentityStore(database.DB)
	counters := repository.NewResourceCounter(database.DB)
	payments := repository.NewPaymentRecorder(database.DB)

	provisioner := entitlement.NewProvisioner(identities, store, authapi.SendPasswordSetupEmail, logger)
	engine := entitlement.NewEngine(store, catalog, provisioner, payments, logger)
	quota := entitlement.NewQuotaGateway(store, counters, logger)

	gen := generator.NewClient(config.GENERATOR_BASE_URL, logger)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{os.Getenv("CORS_ORIGIN")},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, routes.Handlers{
		Webhook:    stripewebhooks.NewHandler(engine, ledger, logger),
		Billing:    billingapi.NewHandler(catalog, store, logger),
		Campaigns:  campaignsapi.NewHandler(quota, logger),
		Generation: generationapi.NewHandler(quota, gen, logger),
		Catalog:    catalog,
	})

	if err := r.Run(":" + config.PORT); err != nil {
		logger.Fatal().Err(err).Msg("Server exited")
	}
}
