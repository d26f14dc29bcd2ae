package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"mentorlink/backend/internal/auth"
	"mentorlink/backend/internal/chathub"
	"mentorlink/backend/internal/config"
	"mentorlink/backend/internal/storage"

	"github.com/sirupsen/logrus"
)

const usage = `Usage: admin <command> [args]

Commands:
  create-admin <email> <password> <full name>
  deactivate-room <room_id>
  activate-room <room_id>
  unread <user_id>`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	log := config.NewLogger(cfg)

	db, err := storage.Open(cfg.DB.DSN())
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	if err := storage.Migrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}
	store := storage.NewStorageService(db)
	ctx := context.Background()

	switch command, args := os.Args[1], os.Args[2:]; command {
	case "create-admin":
		if len(args) != 3 {
			fmt.Println("Usage: admin create-admin <email> <password> <full name>")
			os.Exit(1)
		}
		svc := auth.NewService(store, nil, nil, nil, log)
		user, err := svc.CreateAdmin(ctx, args[0], args[1], args[2])
		if err != nil {
			log.Fatalf("Error creating admin: %v", err)
		}
		fmt.Printf("Admin %s created with id %d.\n", user.Email, user.ID)

	case "deactivate-room", "activate-room":
		if len(args) != 1 {
			fmt.Printf("Usage: admin %s <room_id>\n", command)
			os.Exit(1)
		}
		roomID := parseID(args[0], "room ID")
		active := command == "activate-room"
		if err := chathub.NewRoomRegistry(store, log).SetActive(ctx, roomID, active); err != nil {
			log.Fatalf("Error updating room: %v", err)
		}
		fmt.Printf("Room %d active=%t.\n", roomID, active)

	case "unread":
		if len(args) != 1 {
			fmt.Println("Usage: admin unread <user_id>")
			os.Exit(1)
		}
		userID := parseID(args[0], "user ID")
		n, err := chathub.NewUnreadCounter(store).CountTotal(ctx, userID)
		if err != nil {
			log.Fatalf("Error counting unread messages: %v", err)
		}
		fmt.Printf("User %d has %d unread message(s).\n", userID, n)

	default:
		fmt.Printf("Unknown command: %s\n\n%s\n", command, usage)
		os.Exit(1)
	}
}

func parseID(raw, what string) uint {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		fmt.Printf("Invalid %s. Please provide a positive integer.\n", what)
		os.Exit(1)
	}
	return uint(id)
}
