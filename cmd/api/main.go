package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"neighborhood/backend/internal/config"
	"neighborhood/backend/internal/domain/chat"
	"neighborhood/backend/internal/domain/dm"
	"neighborhood/backend/internal/domain/inquiry"
	"neighborhood/backend/internal/domain/meeting"
	"neighborhood/backend/internal/domain/notice"
	"neighborhood/backend/internal/domain/notifications"
	"neighborhood/backend/internal/domain/proposal"
	"neighborhood/backend/internal/domain/user"
	"neighborhood/backend/internal/firebase"
	"neighborhood/backend/internal/handlers"
	apihttp "neighborhood/backend/internal/http"
	"neighborhood/backend/internal/live"
	"neighborhood/backend/internal/presence"
	"neighborhood/backend/internal/relay"
	"neighborhood/backend/internal/utils"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()
	if err := utils.SetLocalZone(cfg.TimeZone); err != nil {
		log.Printf("[config] TIME_ZONE %q: %v; using KST", cfg.TimeZone, err)
	}

	clients, err := firebase.NewClients(ctx, cfg)
	if err != nil {
		log.Fatalf("firebase init failed: %v", err)
	}
	defer clients.Close()

	// Presence is optional (REDIS_ADDR)
	presenceStore, err := presence.Connect(ctx, cfg)
	if err != nil {
		log.Printf("[presence] disabled: %v", err)
		presenceStore = nil
	}
	defer presenceStore.Close()

	fs := clients.Firestore

	// Repositories
	userRepo := user.NewRepo(fs)
	chatRepo := chat.NewRepo(fs)

	// Services
	notificationsSvc := notifications.NewService(fs, clients.Messaging)
	userSvc := user.NewService(userRepo, clients.Auth)
	chatSvc := chat.NewService(chatRepo, userRepo, notificationsSvc, presenceStore)
	dmSvc := dm.NewService(dm.NewRepo(fs), userRepo, notificationsSvc)
	noticeSvc := notice.NewService(notice.NewRepo(fs), userRepo, notificationsSvc)
	meetingSvc := meeting.NewService(meeting.NewRepo(fs, chatRepo), chatSvc, userRepo, notificationsSvc)
	proposalSvc := proposal.NewService(proposal.NewRepo(fs), userRepo, notificationsSvc)
	inquirySvc := inquiry.NewService(inquiry.NewRepo(fs), userRepo, notificationsSvc)

	// Kakao relay is mounted only when configured
	var relayHandler *relay.Handler
	if cfg.Kakao.Enabled() {
		kakao := relay.NewKakao(cfg.Kakao, &http.Client{Timeout: 10 * time.Second})
		relayHandler = relay.NewHandler(kakao, clients.Auth, userSvc)
	} else {
		log.Println("KAKAO_REST_API_KEY not set, Kakao relay disabled")
	}

	router := apihttp.NewRouter(apihttp.RouterDeps{
		Cfg:              cfg,
		Auth:             clients.Auth,
		UserSvc:          userSvc,
		NoticeSvc:        noticeSvc,
		MeetingSvc:       meetingSvc,
		ProposalSvc:      proposalSvc,
		InquirySvc:       inquirySvc,
		ChatSvc:          chatSvc,
		DMSvc:            dmSvc,
		NotificationsSvc: notificationsSvc,
		Presence:         handlers.NewPresence(presenceStore),
		Uploads:          handlers.NewUploads(cfg, clients.Storage),
		Live:             live.NewHandler(cfg.AllowedOrigins, chatSvc, dmSvc, notificationsSvc, presenceStore),
		Relay:            relayHandler,
	})

	// WriteTimeout stays 0: live sockets are long-lived.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// graceful shutdown
	go func() {
		log.Printf("API listening on :%s (project=%s)", cfg.Port, cfg.ProjectID)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 2)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Println("shutting down...")
	_ = srv.Shutdown(ctxShutdown)
}
