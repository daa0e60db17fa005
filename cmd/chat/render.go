package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"reinai/internal/models"
)

func printMessage(w io.Writer, m models.Message) {
	content := strings.TrimRight(m.Content, "\n")
	if m.Role != models.RoleAssistant {
		fmt.Fprintf(w, "you> %s\n", content)
		return
	}
	fmt.Fprintf(w, "reinai> %s\n", renderMarkdown(content))
}

func printSession(w io.Writer, s models.Session, model string) {
	fmt.Fprintf(w, "# %s [%s]\n", s.Name, models.DisplayName(model))
	if len(s.Messages) == 0 {
		fmt.Fprintln(w, "(no messages yet)")
		return
	}
	for _, m := range s.Messages {
		printMessage(w, m)
	}
}

func printSessions(w io.Writer, sessions []models.Session, activeID string) {
	for _, s := range sessions {
		marker := " "
		if s.ID == activeID {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %s  %-10s %3d msgs  %s\n",
			marker, s.ID, s.Name, len(s.Messages), s.Created().Format(time.DateTime))
	}
}

// printCatalog lists the selectable models, marking current when set.
func printCatalog(w io.Writer, current string) {
	for _, m := range models.Catalog {
		marker := " "
		if m.ID == current {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %-36s %-12s %s\n", marker, m.ID, m.Name, m.Description)
	}
}
