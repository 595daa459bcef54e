package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"bizhub/internal/client/api"
	"bizhub/internal/client/poller"
	"bizhub/internal/client/sound"
	"bizhub/internal/client/store"
	"bizhub/internal/client/toast"
	"bizhub/internal/shared"
)

// discardPlayer satisfies sound.Player on machines without an audio device.
// The tone is still rendered so synthesis bugs surface in logs, not silence.
type discardPlayer struct{}

func (discardPlayer) Play(pcm []byte, sampleRate int) error {
	return nil
}

func main() {
	baseURL := os.Getenv("BIZHUB_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	pollInterval := 60 * time.Second
	if raw := os.Getenv("BIZHUB_POLL_INTERVAL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			pollInterval = d
		}
	}

	reader := bufio.NewReader(os.Stdin)

	fmt.Print("username: ")
	username, _ := reader.ReadString('\n')
	username = strings.TrimSpace(username)

	fmt.Print("password: ")
	password, _ := reader.ReadString('\n')
	password = strings.TrimSpace(password)

	client := api.NewClient(baseURL)

	loginCtx, cancelLogin := context.WithTimeout(context.Background(), 10*time.Second)
	err := client.Login(loginCtx, username, password)
	cancelLogin()
	if err != nil {
		log.Fatalf("login failed: %v", err)
	}
	fmt.Printf("logged in as %s\n", username)

	toasts := toast.NewManager(5 * time.Second)
	toasts.OnShow = func(t toast.Toast) {
		fmt.Printf("\n[%s] %s\n> ", strings.ToUpper(string(t.Severity)), t.Message)
	}

	cues := sound.NewGenerator(discardPlayer{})

	// Sound follows the saved preference; failures fall back to cues on.
	soundEnabled := true
	if prefs, err := client.GetPreferences(context.Background()); err == nil {
		soundEnabled = prefs.Sound != "none"
	}

	notifications := store.New(client, toasts, func(sev shared.Severity) {
		if soundEnabled {
			cues.Cue(sev)
		}
	})

	// The poller lives for the whole session; cancelling ctx stops it.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go poller.New(notifications, pollInterval, client.HasSession).Run(ctx)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	lines := make(chan string)
	go func() {
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				close(lines)
				return
			}
			lines <- strings.TrimSpace(line)
		}
	}()

	fmt.Println("commands: list, unread, read <id>, read-all, rm <id>, clear, add <message>, refresh, quit")
	fmt.Print("> ")

	for {
		select {
		case <-stop:
			shutdown(notifications)
			return
		case line, ok := <-lines:
			if !ok {
				shutdown(notifications)
				return
			}
			if line == "quit" || line == "exit" {
				shutdown(notifications)
				return
			}
			runCommand(ctx, notifications, line)
			fmt.Print("> ")
		}
	}
}

// shutdown lets in-flight persists settle before the process exits.
func shutdown(s *store.Store) {
	fmt.Println("\nexiting")
	s.Wait()
}

func runCommand(ctx context.Context, s *store.Store, line string) {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	opCtx, cancelOp := context.WithTimeout(ctx, 15*time.Second)
	defer cancelOp()

	switch cmd {
	case "":
	case "list":
		printFeed(s.Snapshot())
	case "unread":
		fmt.Printf("%d unread\n", s.UnreadCount())
	case "read":
		if arg == "" {
			fmt.Println("usage: read <id>")
			return
		}
		if err := s.MarkAsRead(opCtx, arg); err != nil {
			fmt.Printf("mark read failed: %v\n", err)
		}
	case "read-all":
		if err := s.MarkAllAsRead(opCtx); err != nil {
			fmt.Printf("mark all read failed: %v\n", err)
		}
	case "rm":
		if arg == "" {
			fmt.Println("usage: rm <id>")
			return
		}
		if err := s.Remove(opCtx, arg); err != nil {
			fmt.Printf("delete failed: %v\n", err)
		}
	case "clear":
		if err := s.ClearAll(opCtx); err != nil {
			fmt.Printf("clear failed: %v\n", err)
		}
	case "add":
		if arg == "" {
			fmt.Println("usage: add <message>")
			return
		}
		if _, err := s.Add(opCtx, shared.SeverityInfo, arg, "System", nil); err != nil {
			fmt.Printf("add failed: %v\n", err)
		}
	case "refresh":
		if err := s.Refresh(opCtx); err != nil {
			fmt.Printf("refresh failed: %v\n", err)
		}
		printFeed(s.Snapshot())
	default:
		fmt.Printf("unknown command: %s\n", cmd)
	}
}

func printFeed(entries []shared.Notification) {
	if len(entries) == 0 {
		fmt.Println("no notifications")
		return
	}
	for _, n := range entries {
		marker := "*"
		if n.Read {
			marker = " "
		}
		fmt.Printf("%s [%s] %-8s %-8s %s  %s", marker, n.Timestamp.Format("15:04"), n.Type, n.Source, n.ID, n.Message)
		if n.Action != nil {
			fmt.Printf("  (%s -> %s)", n.Action.Label, n.Action.URL)
		}
		fmt.Println()
	}
}
