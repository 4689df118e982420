package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/patrickwarner/adslots/internal/middleware"
)

// Router registers every HTTP route of the service on a new mux.Router.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.WithTraceLogger(s.Logger))

	r.HandleFunc("/pages/{pageKey}/ads", s.PageAdsHandler).Methods(http.MethodGet)
	r.HandleFunc("/pages/{pageKey}/ads/{id}/click", s.ClickHandler).Methods(http.MethodPost)
	r.HandleFunc("/pages/{pageKey}/ads/{zone}/html", s.ZoneHTMLHandler).Methods(http.MethodGet)
	r.HandleFunc("/pages/{pageKey}/overlay/dismiss", s.DismissOverlayHandler).Methods(http.MethodPost)
	r.HandleFunc("/pages/{pageKey}/overlay/html", s.OverlayHTMLHandler).Methods(http.MethodGet)

	r.HandleFunc("/api/ads", s.ListAds).Methods(http.MethodGet)
	r.HandleFunc("/api/ads", s.CreateAd).Methods(http.MethodPost)
	r.HandleFunc("/api/ads/{id}", s.GetAd).Methods(http.MethodGet)
	r.HandleFunc("/api/ads/{id}", s.UpdateAd).Methods(http.MethodPut)
	r.HandleFunc("/api/ads/{id}", s.DeleteAd).Methods(http.MethodDelete)

	r.HandleFunc("/health", s.HealthHandler).Methods(http.MethodGet)
	r.HandleFunc("/reload", s.ReloadHandler).Methods(http.MethodPost)
	return r
}
