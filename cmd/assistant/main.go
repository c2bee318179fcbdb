package main

// Interactive terminal client for the career assistant API:
//   API_BASE_URL=http://localhost:8080 go run ./cmd/assistant

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/bootstrap"
	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/conversation"
	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/intent"
	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/orchestrator"
	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/remote"
	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/shared/config"
	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/shared/telemetry"
)

const helpText = `commands:
  /role <slug>       show a role page
  /status            show the current analysis
  /download [dir]    save the latest result file
  /stop              cancel the running analysis
  /quit              exit`

func main() {
	cfg := config.Load()
	telemetry.SetOutput(os.Stderr)
	telemetry.SetLevel(cfg.LogLevel)
	defer telemetry.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := remote.NewClient(remote.Options{
		BaseURL:      cfg.APIBaseURL,
		Timeout:      cfg.APITimeout,
		ClientID:     cfg.APIClientID,
		ClientSecret: cfg.APIClientSecret,
		TokenURL:     cfg.APITokenURL,
	})
	resolver := bootstrap.BuildResolver(cfg, nil, nil, client)
	session := conversation.New(intent.Router{Remote: client}, client, resolver, orchestrator.Options{
		Interval:   cfg.PollInterval,
		MaxPolls:   cfg.PollMaxAttempts,
		MaxElapsed: cfg.PollMaxElapsed,
	})
	defer session.Close()

	out := &printer{log: session.Log, w: os.Stdout}
	session.Greet()
	out.flush()
	go out.follow(ctx, 500*time.Millisecond)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		fmt.Fprint(os.Stdout, "> ")
		var line string
		select {
		case <-ctx.Done():
			return
		case l, ok := <-lines:
			if !ok {
				return
			}
			line = strings.TrimSpace(l)
		}
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if quit := command(ctx, session, client, line, os.Stdout); quit {
				return
			}
			continue
		}
		if _, err := session.Send(ctx, line); err != nil && !errors.Is(err, conversation.ErrEmptyMessage) {
			fmt.Fprintf(os.Stdout, "error: %v\n", err)
		}
		out.flush()
	}
}

func command(ctx context.Context, s *conversation.Session, client *remote.Client, line string, w io.Writer) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return true
	case "/help":
		fmt.Fprintln(w, helpText)
	case "/status":
		job := s.Jobs.Snapshot()
		fmt.Fprintf(w, "%s %d%% %s\n", job.Status, job.Progress, job.Message)
		if job.Error != "" {
			fmt.Fprintf(w, "error: %s\n", job.Error)
		}
	case "/stop":
		s.Jobs.Stop()
	case "/role":
		if len(fields) < 2 {
			fmt.Fprintln(w, "usage: /role <slug>")
			return false
		}
		page := s.ViewRole(ctx, fields[1])
		if page.State == conversation.PageReady && page.Content.ImageRef != "" &&
			page.Content.ImageURL == page.Content.ImageRef &&
			!client.AssetAvailable(ctx, page.Content.ImageRef) {
			page.ImageFailed()
		}
		printPage(w, page)
	case "/download":
		dir := "."
		if len(fields) > 1 {
			dir = fields[1]
		}
		path, err := download(ctx, client, dir)
		if err != nil {
			fmt.Fprintf(w, "download failed: %v\n", err)
			return false
		}
		fmt.Fprintf(w, "saved %s\n", path)
	default:
		fmt.Fprintln(w, helpText)
	}
	return false
}

func printPage(w io.Writer, page conversation.RolePage) {
	if page.State != conversation.PageReady {
		fmt.Fprintln(w, page.Message)
		return
	}
	c := page.Content
	fmt.Fprintf(w, "%s  [%s]\n\n%s\n", c.Role, page.Source, c.Summary)
	if len(c.Facts) > 0 {
		fmt.Fprintln(w, "\nQuick facts:")
		for _, f := range c.Facts {
			fmt.Fprintf(w, "  - %s\n", f)
		}
	}
	if len(c.Skills) > 0 {
		fmt.Fprintf(w, "\nKey skills: %s\n", strings.Join(c.Skills, ", "))
	}
	if c.PDFURL != "" {
		fmt.Fprintf(w, "PDF: %s\n", c.PDFURL)
	}
	if c.ImageURL != "" {
		fmt.Fprintf(w, "Image: %s\n", c.ImageURL)
	}
}

func download(ctx context.Context, client *remote.Client, dir string) (string, error) {
	artifact, err := client.DownloadArtifact(ctx)
	if err != nil {
		return "", err
	}
	defer artifact.Body.Close()
	path := filepath.Join(dir, filepath.Base(artifact.Name))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, artifact.Body); err != nil {
		_ = f.Close()
		return "", err
	}
	return path, f.Close()
}

// printer writes assistant messages appended to the log since the last flush.
type printer struct {
	mu   sync.Mutex
	log  *conversation.Log
	w    io.Writer
	seen int
}

func (p *printer) flush() {
	p.mu.Lock()
	defer p.mu.Unlock()
	msgs := p.log.Messages()
	for _, m := range msgs[p.seen:] {
		if m.Origin != conversation.OriginAssistant {
			continue
		}
		fmt.Fprintf(p.w, "\n%s\n", m.Content)
		for _, s := range m.Suggestions {
			fmt.Fprintf(p.w, "  * %s\n", s)
		}
	}
	p.seen = len(msgs)
}

func (p *printer) follow(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			p.flush()
		}
	}
}
