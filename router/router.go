package router

import (
	"net/http"

	"sitedata/config"
	contentHandler "sitedata/internal/content"
	"sitedata/internal/content/service"
	"sitedata/middleware"
	"sitedata/socket"
	"sitedata/store"
)

func Setup(cfg *config.Config, client *store.Client, hub *socket.Hub) http.Handler {
	mux := http.NewServeMux()

	// WebSocket read path. Public, like the document GETs it refreshes.
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		socket.ServeWs(hub, w, r)
	})

	// REST API
	svc := service.NewContentService(client, cfg)
	handler := contentHandler.NewContentHandler(svc, cfg)
	auth := middleware.Auth(cfg)

	mux.Handle("/api/site-data", http.HandlerFunc(handler.GetDocument))
	mux.Handle("/api/site-data/save", http.HandlerFunc(handler.SaveDocument))
	mux.Handle("/api/site-data/names", http.HandlerFunc(handler.Names))
	mux.Handle("/api/site-data/export", auth(http.HandlerFunc(handler.Export)))

	return middleware.CORSMiddleware(mux)
}
