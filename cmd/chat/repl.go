package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"reinai/internal/chat"
)

var errQuit = errors.New("quit")

const replHelp = `Commands:
  /new           start a new chat
  /list          list chats
  /use <id>      switch to a chat
  /clear         clear the active chat
  /model [id]    show or select the model
  /models        list models
  /quit          exit
Anything else is sent as a message.`

func runREPL(ctx context.Context, in io.Reader, out io.Writer, m *chat.Manager) error {
	if active, ok := m.Active(); ok {
		printSession(out, active, m.Model())
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		err := replLine(ctx, out, m, line)
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
}

func replLine(ctx context.Context, out io.Writer, m *chat.Manager, line string) error {
	if !strings.HasPrefix(line, "/") {
		ex, err := m.Send(ctx, line)
		if ex != nil {
			printMessage(out, ex.Reply)
		}
		return err
	}

	fields := strings.Fields(line)
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch fields[0] {
	case "/quit", "/exit":
		return errQuit
	case "/help":
		fmt.Fprintln(out, replHelp)
	case "/new":
		s, err := m.NewSession(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Started %s\n", s.Name)
	case "/list":
		active, _ := m.Active()
		printSessions(out, m.Sessions(), active.ID)
	case "/use":
		if arg == "" {
			return errors.New("usage: /use <id>")
		}
		if err := m.Select(arg); err != nil {
			return err
		}
		active, _ := m.Active()
		printSession(out, active, m.Model())
	case "/clear":
		if err := m.Clear(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "Cleared.")
	case "/model":
		if arg != "" {
			if err := m.SetModel(ctx, arg); err != nil {
				return err
			}
		}
		fmt.Fprintf(out, "Model: %s\n", m.Model())
	case "/models":
		printCatalog(out, m.Model())
	default:
		return fmt.Errorf("unknown command %s, try /help", fields[0])
	}
	return nil
}
