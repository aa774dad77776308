// Package main provides a console chat client. It authenticates with a
// device id, connects the realtime socket, joins a chat room and relays
// stdin lines as chat messages.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/gamelink/api"
	"github.com/cory-johannsen/gamelink/client"
	"github.com/cory-johannsen/gamelink/config"
	"github.com/cory-johannsen/gamelink/internal/observability"
	"github.com/cory-johannsen/gamelink/rtapi"
	"github.com/cory-johannsen/gamelink/socket"
)

const tickInterval = 16 * time.Millisecond

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	room := flag.String("room", "lobby", "chat room to join")
	username := flag.String("username", "", "username to register on first login")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("loading config: %v", err)
		}
		cfg = loaded
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	// Authenticate with a throwaway device identity.
	rest := client.NewFromConfig(cfg, logger)
	sess, err := rest.AuthenticateDevice(ctx, uuid.NewString(), true, *username, nil)
	if err != nil {
		logger.Fatal("authenticating", zap.Error(err))
	}
	logger.Info("authenticated",
		zap.String("user_id", sess.UserID()),
		zap.String("username", sess.Username()),
	)

	adapter := socket.NewWebSocketAdapter(cfg.Socket, logger)
	sock := socket.New(adapter, cfg.Socket, cfg.Server.Host, logger)

	sock.OnChannelMessage(func(msg *api.ChannelMessage) {
		fmt.Printf("%s: %s\n", msg.Username, msg.Content)
	})
	sock.OnChannelPresence(func(ev *rtapi.ChannelPresenceEvent) {
		for _, p := range ev.Joins {
			fmt.Printf("* %s joined\n", p.Username)
		}
		for _, p := range ev.Leaves {
			fmt.Printf("* %s left\n", p.Username)
		}
	})
	sock.OnClosed(func(err error) {
		if err != nil {
			logger.Warn("connection lost", zap.Error(err))
		}
	})

	// Pump goroutine: all callbacks above run here.
	pump := socket.NewPump(sock, tickInterval, logger)
	pump.Start()
	defer pump.Stop()

	connect, err := sock.Connect(ctx, sess, true)
	if err != nil {
		logger.Fatal("connecting socket", zap.Error(err))
	}
	connectCtx, cancel := context.WithTimeout(ctx, cfg.Socket.ConnectTimeout)
	if _, err := connect.Wait(connectCtx); err != nil {
		cancel()
		logger.Fatal("establishing socket", zap.Error(err))
	}
	cancel()

	channel, err := sock.JoinChat(ctx, *room, rtapi.ChannelTypeRoom, true, false)
	if err != nil {
		logger.Fatal("joining room", zap.Error(err))
	}
	fmt.Printf("joined #%s as %s\n", *room, sess.Username())

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if line == "/quit" {
			break
		}
		content, err := json.Marshal(map[string]string{"message": line})
		if err != nil {
			logger.Error("encoding message", zap.Error(err))
			continue
		}
		if _, err := sock.WriteChatMessage(ctx, channel.ID, string(content)); err != nil {
			logger.Error("sending message", zap.Error(err))
		}
	}

	if err := sock.LeaveChat(ctx, channel.ID); err != nil {
		logger.Warn("leaving room", zap.Error(err))
	}
	if err := sock.Close(); err != nil {
		logger.Warn("closing socket", zap.Error(err))
	}
	if err := rest.SessionLogout(ctx, sess); err != nil {
		logger.Warn("logging out", zap.Error(err))
	}
}
