package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"legacybook/internal/auth"
	"legacybook/internal/catalog"
	"legacybook/internal/config"
	"legacybook/internal/handler"
	"legacybook/internal/middleware"
	"legacybook/internal/repository/postgres"
	serviceAnalysis "legacybook/internal/service/analysis"
	serviceBook "legacybook/internal/service/book"
	serviceConversation "legacybook/internal/service/conversation"
	serviceInterview "legacybook/internal/service/interview"
	serviceLLM "legacybook/internal/service/llm"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Create JWT verifier for Clerk authentication
	jwtVerifier, err := auth.NewJWTVerifier(cfg.ClerkJWKSURL, cfg.ClerkIssuer, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	userRepo := postgres.NewUserRepository(repoConfig)
	conversationRepo := postgres.NewConversationRepository(repoConfig)
	answerRepo := postgres.NewAnswerRepository(repoConfig)
	versionRepo := postgres.NewBookVersionRepository(repoConfig)
	decisionRepo := postgres.NewDecisionRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Load the interview catalog
	cat, err := catalog.Load()
	if err != nil {
		log.Fatalf("Failed to load interview catalog: %v", err)
	}
	logger.Info("interview catalog loaded", "sections", cat.SectionCount())

	// Setup LLM providers
	providerRegistry, err := serviceLLM.SetupProviders(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to setup LLM providers: %v", err)
	}

	// Create services
	analyzer := serviceAnalysis.NewAnalyzer(providerRegistry, cfg.AnalysisModel, logger)
	conversationService := serviceConversation.NewService(userRepo, conversationRepo, cat, logger)
	interviewService := serviceInterview.NewService(conversationRepo, answerRepo, cat, analyzer, txManager, logger)

	gate := serviceBook.NewUsageGate(conversationRepo)
	generator := serviceBook.NewGenerator(providerRegistry, cfg.BookModel, logger)
	verifier := serviceBook.NewVerifier(providerRegistry, cfg.BookModel, logger)
	regenerator := serviceBook.NewRegenerator(providerRegistry, cfg.BookModel, logger)
	bookService := serviceBook.NewService(
		gate,
		generator,
		verifier,
		regenerator,
		answerRepo,
		versionRepo,
		decisionRepo,
		txManager,
		logger,
	)

	// Create handlers
	healthHandler := handler.NewHealthHandler(pool, logger)
	conversationHandler := handler.NewConversationHandler(conversationService, logger)
	interviewHandler := handler.NewInterviewHandler(interviewService, logger)
	bookHandler := handler.NewBookHandler(bookService, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health checks
	mux.HandleFunc("GET /health", healthHandler.HealthCheck)
	mux.HandleFunc("GET /ready", healthHandler.Ready)

	// Conversation routes
	mux.HandleFunc("POST /api/conversations", conversationHandler.StartConversation)
	mux.HandleFunc("GET /api/conversations/{id}", conversationHandler.GetConversation)

	// Interview and book routes hit paid model providers, so they share a
	// tight per-IP budget.
	strict := middleware.NewRateLimiter(20, time.Minute)

	// Interview routes
	mux.HandleFunc("GET /api/conversations/{id}/question", strict.Limit(interviewHandler.NextQuestion))
	mux.HandleFunc("POST /api/conversations/{id}/answers", strict.Limit(interviewHandler.SubmitAnswer))

	// Book routes
	mux.HandleFunc("POST /api/conversations/{id}/book/generate", strict.Limit(bookHandler.Generate))
	mux.HandleFunc("POST /api/conversations/{id}/book/verify", strict.Limit(bookHandler.VerifyConversation))
	mux.HandleFunc("POST /api/conversations/{id}/book/regenerate", strict.Limit(bookHandler.Regenerate))
	mux.HandleFunc("PUT /api/conversations/{id}/decisions", strict.Limit(bookHandler.SaveDecisions))
	mux.HandleFunc("POST /api/book/versions/{id}/verify", strict.Limit(bookHandler.VerifyVersion))
	mux.HandleFunc("POST /api/book/versions/{id}/finalize", strict.Limit(bookHandler.Finalize))

	// Build middleware chain
	var root http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	root = middleware.AuthMiddleware(jwtVerifier)(root)
	root = middleware.Recovery(logger)(root)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 150 * time.Second, // Book generation calls can run long
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
