package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/contaflow/fiscal-doc-service/api"
	"github.com/contaflow/fiscal-doc-service/internal/db"
	"github.com/contaflow/fiscal-doc-service/internal/models"
	"github.com/contaflow/fiscal-doc-service/internal/services"
	"github.com/contaflow/fiscal-doc-service/internal/storage"
	"github.com/contaflow/fiscal-doc-service/internal/textextract"
)

func main() {
	// Initialize database connection pool
	if err := db.Init(); err != nil {
		log.Printf("Warning: Database not available: %v", err)
		log.Println("Running in processing-only mode (no persistence)")
	} else {
		defer db.Close()
		log.Println("Database connection pool initialized")
	}

	// Initialize MinIO storage
	if err := storage.Init(); err != nil {
		log.Printf("Warning: MinIO storage not available: %v", err)
		log.Println("Uploaded files will not be stored")
	} else {
		log.Println("MinIO storage initialized")
	}

	// Load configuration
	config, err := loadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Vision OCR provider for scanned images (optional)
	var ocr textextract.Provider
	if config.AI.DefaultProvider != "" {
		ocr, err = textextract.NovoProvider(config.AI)
		if err != nil {
			log.Fatalf("Failed to create OCR provider: %v", err)
		}
		log.Printf("Vision OCR provider: %s", ocr.Nome())
	} else {
		log.Println("No vision OCR provider configured - image uploads disabled")
	}

	// Create API handler
	documentos := services.NovoDocumentoService(ocr)
	handler := api.NewHandler(config, documentos)
	router := handler.SetupRoutes()

	// Start server
	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	log.Printf("Starting Fiscal Document Service v%s on %s", api.Version, addr)
	log.Printf("Database: %v", db.Pool != nil)
	log.Printf("Storage: %v", storage.Client != nil)
	log.Printf("Endpoints:")
	log.Printf("  POST http://%s/api/documentos/upload          - Process fiscal document", addr)
	log.Printf("  GET  http://%s/api/documentos                 - List documents", addr)
	log.Printf("  GET  http://%s/api/documentos/{id}            - Get single document", addr)
	log.Printf("  POST http://%s/api/fiscal/simples-nacional    - Simples Nacional calculation", addr)
	log.Printf("  POST http://%s/api/fiscal/fator-r             - Fator R calculation", addr)
	log.Printf("  POST http://%s/api/fiscal/simulacao-fator-r   - Fator R savings simulation", addr)
	log.Printf("  POST http://%s/api/auditorias/sped            - Run SPED audit", addr)
	log.Printf("  GET  http://%s/api/auditorias                 - List audits", addr)
	log.Printf("  GET  http://%s/api/stats                      - Monthly stats", addr)
	log.Printf("  GET  http://%s/health                         - Health check", addr)
	log.Printf("  GET  http://%s/metrics                        - Prometheus metrics", addr)

	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func loadConfig(path string) (*models.Config, error) {
	// Read config file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	var config models.Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables if present
	if port := os.Getenv("PORT"); port != "" {
		fmt.Sscanf(port, "%d", &config.Port)
	}
	if host := os.Getenv("HOST"); host != "" {
		config.Host = host
	}
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.AI.OpenAI.APIKey = apiKey
	}
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.AI.Gemini.APIKey = apiKey
	}
	if provider := os.Getenv("AI_PROVIDER"); provider != "" {
		config.AI.DefaultProvider = provider
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		config.AI.OpenAI.BaseURL = baseURL
	}
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		config.AI.OpenAI.Model = model
	}
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		config.AI.Gemini.Model = model
	}

	return &config, nil
}
