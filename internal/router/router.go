package router

import (
	"net/http"

	"github.com/BerylCAtieno/document-metadata-api/internal/handlers"
	"github.com/BerylCAtieno/document-metadata-api/internal/middleware"
	"github.com/BerylCAtieno/document-metadata-api/internal/services"
	"github.com/BerylCAtieno/document-metadata-api/internal/utils"

	"github.com/gorilla/mux"
)

type Options struct {
	Limits             handlers.Limits
	CORSAllowedOrigins []string
}

func NewRouter(docService services.DocumentService, chatService services.ChatService, opts Options, logger *utils.Logger) http.Handler {
	r := mux.NewRouter()

	// Middlewares
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(middleware.CORSOptions{AllowedOrigins: opts.CORSAllowedOrigins}))

	docHandler := handlers.NewDocumentHandler(docService, opts.Limits, logger)
	chatHandler := handlers.NewChatHandler(chatService, logger)

	// Routes
	api := r.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	// Document endpoints; fixed paths go before {id}
	api.HandleFunc("/documents/types", docHandler.SupportedTypes).Methods(http.MethodGet)
	api.HandleFunc("/documents/inspect", docHandler.InspectDocuments).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/documents/upload", docHandler.UploadDocuments).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/documents/all", docHandler.PurgeDocuments).Methods(http.MethodDelete, http.MethodOptions)
	api.HandleFunc("/documents", docHandler.ListDocuments).Methods(http.MethodGet)
	api.HandleFunc("/documents", docHandler.DeleteDocuments).Methods(http.MethodDelete, http.MethodOptions)
	api.HandleFunc("/documents/{id}/content", docHandler.GetDocumentContent).Methods(http.MethodGet)
	api.HandleFunc("/documents/{id}", docHandler.GetDocument).Methods(http.MethodGet)

	// Backend index
	api.HandleFunc("/index/files", docHandler.ListIndexedFiles).Methods(http.MethodGet)

	// Chat endpoints
	api.HandleFunc("/chat/query", chatHandler.Query).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/chat/messages", chatHandler.History).Methods(http.MethodGet)
	api.HandleFunc("/chat/messages", chatHandler.ClearHistory).Methods(http.MethodDelete, http.MethodOptions)

	return r
}
