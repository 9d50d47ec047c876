package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"neighborhood/backend/internal/config"
	"neighborhood/backend/internal/domain/user"
	"neighborhood/backend/internal/firebase"
)

func main() {
	uid := flag.String("uid", "", "target firebase uid")
	revoke := flag.Bool("revoke", false, "remove the admin claim instead of granting it")
	flag.Parse()
	if *uid == "" {
		log.Fatal("uid is required: -uid=xxxxx")
	}

	ctx := context.Background()
	cfg := config.Load()
	app, err := firebase.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("firebase.NewApp: %v", err)
	}
	authClient, err := app.Auth(ctx)
	if err != nil {
		log.Fatalf("app.Auth: %v", err)
	}

	svc := user.NewService(nil, authClient)
	if err := svc.SetAdmin(ctx, *uid, !*revoke); err != nil {
		log.Fatalf("SetAdmin: %v", err)
	}

	if *revoke {
		fmt.Println("ok: admin claim removed for", *uid)
		return
	}
	fmt.Println("ok: admin claim set for", *uid)
}
