package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/robfig/cron/v3"

	"github.com/vaanidesk/vaanidesk-be/internal/core/agent"
	"github.com/vaanidesk/vaanidesk-be/internal/core/kb"
	"github.com/vaanidesk/vaanidesk-be/internal/core/llm"
	"github.com/vaanidesk/vaanidesk-be/internal/modules/leads/handlers"
	"github.com/vaanidesk/vaanidesk-be/internal/modules/leads/repositories"
	"github.com/vaanidesk/vaanidesk-be/internal/modules/leads/services"
	"github.com/vaanidesk/vaanidesk-be/internal/shared/config"
	"github.com/vaanidesk/vaanidesk-be/internal/shared/database"
	"github.com/vaanidesk/vaanidesk-be/internal/shared/utils"
)

func main() {
	// Load config
	cfg := config.LoadConfig()
	utils.InitLogger()
	log.Printf("🚀 Starting vaanidesk-api on port %s", cfg.Port)

	// Init database
	db := database.NewDB(cfg.DatabaseURL)
	defer db.Close()

	// Init repositories (use GORM instance)
	businessRepo := repositories.NewBusinessRepo(db.GORM)
	conversationRepo := repositories.NewConversationRepo(db.GORM)
	sourceRetriever := kb.NewRetriever(db.GORM)

	// Init LLM provider (gemini default, openai optional)
	provider, err := llm.NewProvider(&llm.ProviderConfig{
		Type:      llm.ProviderType(cfg.LLMProvider),
		GeminiKey: cfg.GeminiKey,
		OpenAIKey: cfg.OpenAIKey,
	})
	if err != nil {
		log.Fatalf("❌ Failed to initialize LLM provider: %v", err)
	}
	log.Printf("🤖 Using LLM provider: %s", provider.GetProviderName())

	// Init agent registry (one cached agent per business)
	registry := agent.NewRegistry(businessRepo, sourceRetriever, provider, cfg.GeminiModels)

	// Init services
	leadService := services.NewLeadService(registry, conversationRepo)
	queryService := services.NewQueryService(registry, conversationRepo, leadService)
	callService := services.NewCallService(businessRepo, queryService)

	// Init handlers
	queryHandler := handlers.NewQueryHandler(queryService)
	conversationHandler := handlers.NewConversationHandler(conversationRepo)
	webhookHandler := handlers.NewWebhookHandler(callService, cfg.VoiceWebhookSecret)
	adminHandler := handlers.NewAdminHandler(registry, businessRepo)
	healthHandler := handlers.NewHealthHandler(db)

	// Nightly lead digest for the dashboard logs
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("0 2 * * *", func() {
		counts, err := conversationRepo.CountByClassification()
		if err != nil {
			utils.LogError("Lead digest failed", err, nil)
			return
		}
		utils.LogInfo("📊 Lead digest", map[string]interface{}{"by_classification": counts})
	}); err != nil {
		log.Fatalf("❌ Failed to schedule lead digest: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Init Fiber app
	app := fiber.New(fiber.Config{
		AppName: "VaaniDesk API",
	})

	// Middleware
	app.Use(cors.New())

	// Health check
	app.Get("/health", healthHandler.GetHealth)

	// Query routes
	app.Post("/ask", queryHandler.Ask)
	app.Post("/conversations/:sessionID/turns", queryHandler.SaveTurn)

	// Conversation/dashboard routes
	app.Get("/conversations", conversationHandler.ListByBusiness)
	app.Get("/conversations/:sessionID", conversationHandler.GetBySessionID)
	app.Get("/leads", conversationHandler.ListLeads)

	// Voice platform webhook
	app.Post("/webhooks/voice", webhookHandler.ReceiveVoiceEvent)

	// Business admin routes (ingestion + teardown callbacks)
	app.Get("/businesses/:id", adminHandler.GetBusiness)
	app.Post("/businesses/:id/reload", adminHandler.ReloadAgent)
	app.Delete("/businesses/:id/agent", adminHandler.EvictAgent)

	log.Printf("✅ vaanidesk-api running at :%s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}
