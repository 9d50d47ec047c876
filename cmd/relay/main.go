// Command relay serves only the Kakao login exchange, for deployments that
// keep it apart from the API.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"neighborhood/backend/internal/config"
	"neighborhood/backend/internal/domain/user"
	"neighborhood/backend/internal/firebase"
	"neighborhood/backend/internal/middleware"
	"neighborhood/backend/internal/relay"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()
	if !cfg.Kakao.Enabled() {
		log.Fatal("KAKAO_REST_API_KEY is required")
	}

	app, err := firebase.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("firebase app init failed: %v", err)
	}
	authClient, err := app.Auth(ctx)
	if err != nil {
		log.Fatalf("firebase auth client init failed: %v", err)
	}
	fs, err := app.Firestore(ctx)
	if err != nil {
		log.Fatalf("firestore init failed: %v", err)
	}
	defer fs.Close()

	kakao := relay.NewKakao(cfg.Kakao, &http.Client{Timeout: 10 * time.Second})
	h := relay.NewHandler(kakao, authClient, user.NewService(user.NewRepo(fs), authClient))

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	h.Routes(r)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("relay listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 2)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
}
