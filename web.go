package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/hajersmiai/trainwarehouse/ingestor"
)

// TriggerServer starts the HTTP trigger server. It exposes the on-demand
// ingestion endpoints and a health check.
func TriggerServer(addr string, in *ingestor.Ingestor) {
	router := mux.NewRouter().StrictSlash(true)

	webLog.Println("Starting trigger server...")

	router.HandleFunc("/run", triggerHandler(in.Run)).Methods(http.MethodPost)
	router.HandleFunc("/run/extended", triggerHandler(in.RunExtended)).Methods(http.MethodPost)
	router.HandleFunc("/healthz", healthHandler)

	server := http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Minute,
	}

	err := server.ListenAndServe()
	if err != nil {
		webLog.Println(err)
	}
}

func triggerHandler(pass func(context.Context) (*ingestor.Summary, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := pass(r.Context())
		if err != nil {
			// total failure, nothing was ingested
			webLog.Println("Triggered ingestion failed:", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		// partial failures are reported inside the summary with status 200
		w.Header().Set("Content-Type", "application/json")
		err = json.NewEncoder(w).Encode(summary)
		if err != nil {
			webLog.Println(err)
		}
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	err := rdb.Ping()
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
