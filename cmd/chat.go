package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saudedigital/saude/internal/chat"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the triage assistant in the terminal",
	Long:  `Opens one conversation in the terminal. Replies arrive after the configured delay, in the order messages were sent. Type /sair or send EOF to leave.`,
	RunE:  runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	// Keep routine logs out of the conversation.
	if !verbose {
		cfg.Log.Level = "warn"
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync()

	engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	session := chat.NewSession(engine,
		chat.WithDelay(replyDelay(cfg)),
		chat.WithLogger(logger),
		// Piped input can queue many messages at once; the pending count
		// below relies on seeing every event.
		chat.WithEventBuffer(1024),
	)
	defer session.Close()

	out := cmd.OutOrStdout()
	for _, m := range session.Messages() {
		printMessage(out, m)
	}

	events, unsubscribe := session.Subscribe()
	defer unsubscribe()
	printed := make(chan struct{})
	// idle is signalled whenever an event reports no reply pending.
	idle := make(chan struct{}, 1)
	go func() {
		defer close(printed)
		for ev := range events {
			printEvent(out, ev)
			if ev.Type == chat.EventTyping && ev.Pending == 0 {
				select {
				case idle <- struct{}{}:
				default:
				}
			}
		}
	}()

	quit := false
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "/sair" {
			quit = true
			break
		}
		if _, _, err := session.Submit(line); err != nil {
			return err
		}
	}

	// On end of input, let outstanding replies arrive before leaving.
	if !quit {
		for session.Pending() > 0 {
			select {
			case <-idle:
			case <-printed:
				return scanner.Err()
			}
		}
	}

	session.Close()
	<-printed
	return scanner.Err()
}

func printEvent(w io.Writer, ev chat.Event) {
	switch ev.Type {
	case chat.EventMessage:
		if ev.Message.Sender == chat.SenderSystem {
			printMessage(w, *ev.Message)
		}
	case chat.EventNotification:
		fmt.Fprintf(w, "!! %s\n", ev.Notification.Title)
	case chat.EventTyping:
		if ev.Pending > 0 {
			fmt.Fprintln(w, "   digitando...")
		}
	}
}

func printMessage(w io.Writer, m chat.Message) {
	ts := m.Timestamp.Format("15:04")
	if m.Sender == chat.SenderUser {
		fmt.Fprintf(w, "[%s] você: %s\n", ts, m.Text)
		return
	}
	fmt.Fprintf(w, "[%s] assistente: %s\n", ts, m.Text)
	printActions(w, m.Actions)
}
