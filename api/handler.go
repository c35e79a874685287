// Package api exposes the HTTP surface of the fiscal document service.
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/contaflow/fiscal-doc-service/internal/db"
	"github.com/contaflow/fiscal-doc-service/internal/fiscal"
	"github.com/contaflow/fiscal-doc-service/internal/models"
	"github.com/contaflow/fiscal-doc-service/internal/observability"
	"github.com/contaflow/fiscal-doc-service/internal/services"
	"github.com/contaflow/fiscal-doc-service/internal/sped"
	"github.com/contaflow/fiscal-doc-service/internal/storage"
)

const (
	DefaultMaxUploadSize = 10 * 1024 * 1024 // 10MB
	Version              = "1.0.0"
)

// Handler handles HTTP requests for document processing and fiscal tools
type Handler struct {
	config     *models.Config
	documentos *services.DocumentoService
}

// NewHandler creates a new API handler
func NewHandler(config *models.Config, documentos *services.DocumentoService) *Handler {
	return &Handler{
		config:     config,
		documentos: documentos,
	}
}

// SetupRoutes configures the HTTP routes
func (h *Handler) SetupRoutes() *mux.Router {
	router := mux.NewRouter()
	router.Use(observability.HTTPMetrics)

	// Document pipeline
	router.HandleFunc("/api/documentos/upload", h.UploadDocumento).Methods("POST")
	router.HandleFunc("/api/documentos", h.GetDocumentos).Methods("GET")
	router.HandleFunc("/api/documentos/{id}", h.GetDocumento).Methods("GET")
	router.HandleFunc("/api/documentos/{id}", h.DeleteDocumento).Methods("DELETE")

	// Fiscal calculations
	router.HandleFunc("/api/fiscal/simples-nacional", h.CalcularSimples).Methods("POST")
	router.HandleFunc("/api/fiscal/fator-r", h.CalcularFatorR).Methods("POST")
	router.HandleFunc("/api/fiscal/simulacao-fator-r", h.SimularFatorR).Methods("POST")

	// SPED audits
	router.HandleFunc("/api/auditorias/sped", h.ExecutarAuditoria).Methods("POST")
	router.HandleFunc("/api/auditorias", h.GetAuditorias).Methods("GET")
	router.HandleFunc("/api/auditorias/{id}", h.GetAuditoria).Methods("GET")

	// Statistics
	router.HandleFunc("/api/stats", h.GetStats).Methods("GET")

	// Health check and metrics
	router.HandleFunc("/health", h.Health).Methods("GET")
	router.Handle("/metrics", observability.MetricsHandler()).Methods("GET")

	return router
}

// HealthResponse represents the health check response structure
type HealthResponse struct {
	Status    string        `json:"status"`
	Version   string        `json:"version"`
	Timestamp string        `json:"timestamp"`
	Uptime    string        `json:"uptime"`
	Memory    MemoryStats   `json:"memory"`
	Database  ServiceStatus `json:"database"`
	Storage   ServiceStatus `json:"storage"`
	AI        ServiceStatus `json:"ai"`
}

// MemoryStats represents memory usage statistics
type MemoryStats struct {
	Allocated string `json:"allocated"`
	Total     string `json:"total"`
	System    string `json:"system"`
}

// ServiceStatus represents the status of a service dependency
type ServiceStatus struct {
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
}

var startTime = time.Now()

// Health endpoint - enhanced for monitoring
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "healthy",
		Version:   Version,
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    time.Since(startTime).String(),
		Memory: MemoryStats{
			Allocated: fmt.Sprintf("%.2f MB", float64(m.Alloc)/1024/1024),
			Total:     fmt.Sprintf("%.2f MB", float64(m.TotalAlloc)/1024/1024),
			System:    fmt.Sprintf("%.2f MB", float64(m.Sys)/1024/1024),
		},
		Database: h.checkDatabase(),
		Storage:  h.checkStorage(),
		AI:       h.checkAI(),
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// checkDatabase verifies PostgreSQL connection
func (h *Handler) checkDatabase() ServiceStatus {
	if db.Pool == nil {
		return ServiceStatus{
			Available: false,
			Error:     "database pool not initialized",
		}
	}

	return ServiceStatus{
		Available: true,
		Version:   "PostgreSQL via PgBouncer",
	}
}

// checkStorage verifies MinIO connection
func (h *Handler) checkStorage() ServiceStatus {
	if storage.Client == nil {
		return ServiceStatus{
			Available: false,
			Error:     "storage client not initialized",
		}
	}

	return ServiceStatus{
		Available: true,
		Version:   "MinIO S3",
	}
}

// checkAI reports whether a vision OCR provider is configured
func (h *Handler) checkAI() ServiceStatus {
	if h.config.AI.DefaultProvider == "" {
		return ServiceStatus{
			Available: false,
			Error:     "no vision OCR provider configured",
		}
	}
	return ServiceStatus{
		Available: true,
		Version:   h.config.AI.DefaultProvider,
	}
}

// UploadDocumento receives a fiscal document (PDF, image or plain text)
// and runs the processing pipeline
func (h *Handler) UploadDocumento(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx := r.Context()
	inicio := time.Now()

	maxUpload := h.maxUploadSize()
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		h.sendError(w, http.StatusBadRequest, "File too large or invalid form data")
		return
	}

	// Accept both "file" and "documento" field names
	file, header, err := r.FormFile("file")
	if err != nil {
		file, header, err = r.FormFile("documento")
		if err != nil {
			h.sendError(w, http.StatusBadRequest, "No file provided (use 'file' or 'documento' field)")
			return
		}
	}
	defer file.Close()

	conteudo, err := io.ReadAll(file)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, "Failed to read file")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/pdf"
	}

	// tipo_esperado lets the caller pin the document type upfront,
	// bypassing the classifier.
	tipoEsperado := models.TipoDocumento(r.FormValue("tipo_esperado"))
	if tipoEsperado == "" {
		tipoEsperado = models.TipoDesconhecido
	}

	doc, err := h.documentos.ProcessarUpload(ctx, header.Filename, contentType, conteudo, tipoEsperado)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, fmt.Sprintf("processing failed: %v", err))
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":        doc.Status != models.StatusErro,
		"documento":      doc,
		"total_duration": time.Since(inicio).Seconds(),
		"saved_to_db":    db.Pool != nil,
	})
}

// GetDocumentos lists the most recent processed documents
func (h *Handler) GetDocumentos(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx := r.Context()
	if db.Pool == nil {
		h.sendError(w, http.StatusServiceUnavailable, "database not available")
		return
	}

	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	documentos, err := db.GetDocumentos(ctx, limit)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, fmt.Sprintf("failed to get documents: %v", err))
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":    true,
		"documentos": documentos,
		"count":      len(documentos),
	})
}

// GetDocumento returns a single document with extracted data and a
// presigned download URL
func (h *Handler) GetDocumento(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx := r.Context()
	if db.Pool == nil {
		h.sendError(w, http.StatusServiceUnavailable, "database not available")
		return
	}

	documentoID := mux.Vars(r)["id"]
	doc, err := db.GetDocumentoByID(ctx, documentoID)
	if err != nil {
		h.sendError(w, http.StatusNotFound, fmt.Sprintf("document not found: %v", err))
		return
	}

	if doc.ArquivoURL != "" && storage.Client != nil {
		if presignedURL, err := storage.GetPresignedURL(ctx, doc.ArquivoURL); err == nil {
			doc.ArquivoURL = presignedURL
		}
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":   true,
		"documento": doc,
	})
}

// DeleteDocumento removes a document and its stored file
func (h *Handler) DeleteDocumento(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx := r.Context()
	if db.Pool == nil {
		h.sendError(w, http.StatusServiceUnavailable, "database not available")
		return
	}

	documentoID := mux.Vars(r)["id"]

	if storage.Client != nil {
		if doc, err := db.GetDocumentoByID(ctx, documentoID); err == nil && doc.ArquivoURL != "" {
			_ = storage.DeleteDocumento(ctx, doc.ArquivoURL)
		}
	}

	if err := db.DeleteDocumento(ctx, documentoID); err != nil {
		h.sendError(w, http.StatusInternalServerError, "failed to delete document")
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": "document deleted",
	})
}

// SimplesRequest is the payload for the Simples Nacional calculation
type SimplesRequest struct {
	ReceitaBruta12M decimal.Decimal  `json:"rbt12"`
	ReceitaMensal   decimal.Decimal  `json:"receita_mensal"`
	Anexo           string           `json:"anexo"`
	FatorR          *decimal.Decimal `json:"fator_r,omitempty"`
}

// CalcularSimples computes the effective Simples Nacional rate and DAS
func (h *Handler) CalcularSimples(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req SimplesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resultado, err := fiscal.CalcularSimplesNacional(req.ReceitaBruta12M, req.ReceitaMensal, fiscal.Anexo(req.Anexo), req.FatorR)
	if err != nil {
		h.sendError(w, http.StatusBadRequest, err.Error())
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":   true,
		"resultado": resultado,
	})
}

// FatorRRequest is the payload for the Fator R calculation
type FatorRRequest struct {
	FolhaSalarios12M decimal.Decimal `json:"folha_salarios_12m"`
	ReceitaBruta12M  decimal.Decimal `json:"rbt12"`
}

// CalcularFatorR computes the Fator R ratio and annex framing
func (h *Handler) CalcularFatorR(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req FatorRRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":   true,
		"resultado": fiscal.CalcularFatorR(req.FolhaSalarios12M, req.ReceitaBruta12M),
	})
}

// SimulacaoRequest is the payload for the Fator R savings simulation
type SimulacaoRequest struct {
	ReceitaBruta12M decimal.Decimal `json:"rbt12"`
	ReceitaMensal   decimal.Decimal `json:"receita_mensal"`
	FolhaAtual12M   decimal.Decimal `json:"folha_atual_12m"`
}

// SimularFatorR compares annex III and V scenarios for a service company
func (h *Handler) SimularFatorR(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req SimulacaoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	simulacao, err := fiscal.SimularEconomiaFatorR(req.ReceitaBruta12M, req.ReceitaMensal, req.FolhaAtual12M)
	if err != nil {
		h.sendError(w, http.StatusBadRequest, err.Error())
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":   true,
		"simulacao": simulacao,
	})
}

// ExecutarAuditoria receives a SPED file plus cross-check data and runs
// the conformity audit
func (h *Handler) ExecutarAuditoria(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx := r.Context()

	maxUpload := h.maxUploadSize()
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		h.sendError(w, http.StatusBadRequest, "File too large or invalid form data")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.sendError(w, http.StatusBadRequest, "No file provided (use 'file' field)")
		return
	}
	defer file.Close()

	tipo := sped.AuditoriaSpedFiscal
	if t := r.FormValue("tipo"); t != "" {
		tipo = sped.TipoAuditoria(t)
	}

	externos := sped.DadosExternos{
		PendenciaEcac: r.FormValue("pendencia_ecac") == "true",
	}
	if v := r.FormValue("total_nfe_recebidas"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			externos.TotalNfeRecebidas = n
		}
	}

	resultado, err := services.ExecutarAuditoria(ctx, tipo, file, externos)
	if err != nil {
		h.sendError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":   true,
		"auditoria": resultado,
	})
}

// GetAuditorias lists recent audits
func (h *Handler) GetAuditorias(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx := r.Context()
	if db.Pool == nil {
		h.sendError(w, http.StatusServiceUnavailable, "database not available")
		return
	}

	auditorias, err := db.GetAuditorias(ctx, 100)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, fmt.Sprintf("failed to get audits: %v", err))
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":    true,
		"auditorias": auditorias,
		"count":      len(auditorias),
	})
}

// GetAuditoria returns a single audit with the full report
func (h *Handler) GetAuditoria(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx := r.Context()
	if db.Pool == nil {
		h.sendError(w, http.StatusServiceUnavailable, "database not available")
		return
	}

	auditoriaID := mux.Vars(r)["id"]
	aud, err := db.GetAuditoriaByID(ctx, auditoriaID)
	if err != nil {
		h.sendError(w, http.StatusNotFound, fmt.Sprintf("audit not found: %v", err))
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":   true,
		"auditoria": aud,
	})
}

// GetStats returns monthly processing statistics
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx := r.Context()
	if db.Pool == nil {
		h.sendError(w, http.StatusServiceUnavailable, "database not available")
		return
	}

	stats, err := db.GetDocumentoStats(ctx)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"stats":   stats,
	})
}

func (h *Handler) maxUploadSize() int64 {
	if h.config.Processing.MaxUploadMB > 0 {
		return h.config.Processing.MaxUploadMB * 1024 * 1024
	}
	return DefaultMaxUploadSize
}

// sendError sends an error response
func (h *Handler) sendError(w http.ResponseWriter, statusCode int, message string) {
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}
