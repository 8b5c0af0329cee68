package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"bookly/bot"
	"bookly/config"
	"bookly/models"
	"bookly/services/sessions"
	"bookly/utils"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const terminalClientID = "terminal"

func newChatCmd() *cobra.Command {
	var memory bool
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the booking assistant from the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg := config.AppConfig
			if memory {
				cfg.StoreBackend = backendSQL
				cfg.SQLDriver = "sqlite"
				cfg.SQLDSN = ":memory:"
			}
			a, err := buildApp(ctx, cfg, utils.GetLogger())
			if err != nil {
				return err
			}
			defer a.Close()

			in := cmd.InOrStdin()
			interactive := false
			if f, ok := in.(*os.File); ok {
				interactive = term.IsTerminal(int(f.Fd()))
			}
			return runChat(ctx, a.turns, in, cmd.OutOrStdout(), interactive)
		},
	}
	cmd.Flags().BoolVar(&memory, "memory", false, "keep bookings in a throwaway in-memory database")
	return cmd
}

// runChat reads one message per line and prints the assistant's reply until
// the input ends or the conversation completes with "quit".
func runChat(ctx context.Context, turns bot.Turner, in io.Reader, out io.Writer, interactive bool) error {
	store := sessions.NewMemoryStore()
	scanner := bufio.NewScanner(in)

	prompt := func() {
		if interactive {
			fmt.Fprint(out, "> ")
		}
	}
	if interactive {
		fmt.Fprintln(out, "Say hi to start booking. Type quit to leave.")
	}
	prompt()
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			prompt()
			continue
		}
		if strings.EqualFold(text, "quit") || strings.EqualFold(text, "exit") {
			return nil
		}

		sess, err := sessions.Load(ctx, store, terminalClientID)
		if err != nil {
			return err
		}
		state := sess.State
		resp := turns.HandleTurn(ctx, terminalClientID, models.ChatRequest{
			Message:  text,
			State:    &state,
			Messages: sess.Transcript,
		})
		sess = sess.Record(text, resp.Reply, time.Now())
		sess.State = resp.State
		if err := store.Set(ctx, terminalClientID, sess); err != nil {
			return err
		}

		fmt.Fprintln(out, resp.Reply)
		prompt()
	}
	return scanner.Err()
}
