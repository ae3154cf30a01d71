package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"ai-notetaking-session/internal/checkpoint"
	"ai-notetaking-session/internal/config"
	"ai-notetaking-session/internal/dto"
	"ai-notetaking-session/internal/notify"
	"ai-notetaking-session/internal/pkg/logger"
	"ai-notetaking-session/internal/remote"
	"ai-notetaking-session/internal/remote/memory"
	"ai-notetaking-session/internal/save"
	"ai-notetaking-session/internal/session"
	"ai-notetaking-session/pkg/debounce"
	"ai-notetaking-session/pkg/lexical"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// agent is the interactive editing session: a terminal front end driving the
// session coordinator against a note store (HTTP, or in-memory when no store
// URL is configured).
func main() {
	cfg := config.Load()
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	notifier := notify.NewNotifier(sysLogger)
	defer notifier.Close()

	var store remote.Store
	if cfg.Session.StoreBaseURL != "" {
		store = remote.NewHTTPStore(cfg.Session.StoreBaseURL, cfg.Session.StoreRequestTimeout)
	} else {
		mem := memory.NewStore(cfg.Session.MaxCheckpointsPerDocument)
		seedSampleDocuments(mem)
		store = mem
		color.Yellow("NOTE_STORE_BASE_URL not set; running against the in-memory store.")
	}

	saver := save.NewPipeline(store, sysLogger, notifier, uint(cfg.Session.SaveMaxAttempts), cfg.Session.SaveInitialBackoff)
	checkpoints := checkpoint.NewManager(store, sysLogger, cfg.Session.SignificantChangeThresholdPercent)

	coord := session.NewCoordinator(
		session.Config{
			AutoSaveDelay:                     cfg.Session.AutoSaveDelay,
			SignificantChangeThresholdPercent: cfg.Session.SignificantChangeThresholdPercent,
			FlushOnSwitchEnabled:              cfg.Session.FlushOnSwitchEnabled,
		},
		store,
		saver,
		checkpoints,
		notifier,
		&terminalSurface{},
		debounce.SystemClock(),
		sysLogger,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	statuses, err := notifier.Subscribe(ctx)
	if err != nil {
		color.Red("Failed to subscribe to the status stream: %v", err)
		os.Exit(1)
	}
	go renderStatuses(statuses)

	repl(ctx, coord, store)
}

// terminalSurface stands in for the rich-text editor: loads print the fresh
// document content to the terminal.
type terminalSurface struct{}

func (t *terminalSurface) SetContent(content string) {
	divider := color.New(color.FgHiBlack)
	divider.Println("────────────────────────────────")
	fmt.Println(content)
	divider.Println("────────────────────────────────")
}

func renderStatuses(statuses <-chan notify.StatusMessage) {
	for status := range statuses {
		render := color.New(color.FgCyan)
		switch status.Level {
		case notify.LevelSuccess:
			render = color.New(color.FgGreen)
		case notify.LevelWarning:
			render = color.New(color.FgYellow)
		case notify.LevelError:
			render = color.New(color.FgRed)
		}
		if status.Sticky {
			render = render.Add(color.Bold)
			render.Printf("[!] %s\n", status.Text)
			continue
		}
		render.Println(status.Text)
	}
}

func repl(ctx context.Context, coord *session.Coordinator, store remote.Store) {
	var listing []*dto.DocumentSummary
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	prompt := color.New(color.FgHiBlack)

	printHelp()
	for {
		prompt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		command, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)

		switch command {
		case "ls":
			summaries, err := store.ListDocuments(ctx)
			if err != nil {
				color.Red("ls failed: %v", err)
				continue
			}
			listing = summaries
			for i, s := range summaries {
				updated := "never saved"
				if s.UpdatedAt != nil {
					updated = s.UpdatedAt.Format("15:04:05")
				}
				fmt.Printf("%3d. %s (%s)\n", i+1, s.Title, updated)
			}

		case "open":
			id, err := resolveDocumentId(arg, listing)
			if err != nil {
				color.Red("%v", err)
				continue
			}
			if err := coord.SelectDocument(ctx, id); err != nil {
				color.Red("open failed: %v", err)
			}

		case "new":
			if arg == "" {
				color.Red("usage: new <title>")
				continue
			}
			if _, err := coord.CreateDocument(ctx, arg); err != nil {
				color.Red("new failed: %v", err)
			}

		case "type":
			doc, ok := coord.ActiveDocument()
			if !ok {
				color.Red("no document open")
				continue
			}
			content := doc.Content
			if content != "" {
				content += " "
			}
			content += arg
			if err := coord.EditContent(content, lexical.ProjectText(content)); err != nil {
				color.Red("edit failed: %v", err)
			}

		case "save":
			if err := coord.ManualSave(ctx); err != nil {
				color.Red("save failed: %v", err)
			}

		case "checkpoint":
			id, err := coord.ManualCheckpoint(ctx)
			if err != nil {
				color.Red("checkpoint failed: %v", err)
				continue
			}
			if id == uuid.Nil {
				color.Yellow("checkpoint not recorded")
				continue
			}
			color.Green("checkpoint %s recorded", id)

		case "status":
			printStatus(coord)

		case "help":
			printHelp()

		case "quit", "exit":
			// Leaving the session is a focus switch too: flush what is dirty.
			if _, ok := coord.ActiveDocument(); ok {
				if err := coord.ManualSave(ctx); err != nil && err != session.ErrNoActiveDocument {
					color.Yellow("final save failed: %v", err)
				}
			}
			return

		default:
			color.Red("unknown command %q (try help)", command)
		}
	}
}

func resolveDocumentId(arg string, listing []*dto.DocumentSummary) (uuid.UUID, error) {
	if arg == "" {
		return uuid.Nil, fmt.Errorf("usage: open <number|id>")
	}
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(listing) {
			return uuid.Nil, fmt.Errorf("no entry %d in the last ls listing", n)
		}
		return listing[n-1].Id, nil
	}
	id, err := uuid.Parse(arg)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%q is neither a listing number nor a document id", arg)
	}
	return id, nil
}

func printStatus(coord *session.Coordinator) {
	state := "idle"
	switch coord.CurrentState() {
	case session.StateLoading:
		state = "loading"
	case session.StateActive:
		state = "active"
	case session.StateSwitching:
		state = "switching"
	}

	doc, ok := coord.ActiveDocument()
	if !ok {
		fmt.Printf("state: %s, no document open\n", state)
		return
	}

	dirty := ""
	if doc.DerivedText != doc.BaselineDerivedText {
		dirty = " *unsaved edits"
	}
	fmt.Printf("state: %s, document: %s%s\n", state, doc.Title, dirty)
}

func printHelp() {
	fmt.Println(`commands:
  ls                 list documents
  open <number|id>   switch to a document (flushes the current one first)
  new <title>        create a document and switch to it
  type <text>        append text to the open document
  save               save now, ahead of the auto-save timer
  checkpoint         snapshot the current content
  status             show session state
  quit               save and exit`)
}

func seedSampleDocuments(store *memory.Store) {
	ctx := context.Background()
	_, _ = store.CreateDocument(ctx, &dto.CreateDocumentRequest{
		Title:   "Welcome",
		Content: "This sandbox keeps everything in memory. Edits auto-save after the quiet period.",
	})
	_, _ = store.CreateDocument(ctx, &dto.CreateDocumentRequest{
		Title:   "Scratchpad",
		Content: "",
	})
}
