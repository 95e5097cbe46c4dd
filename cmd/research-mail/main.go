// Research-mail runs a research agent with web search and Gmail draft
// delegation, as an interactive CLI or as an MCP tool server.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/hal9000y/research-mail/internal/agentrt"
	"github.com/hal9000y/research-mail/internal/brave"
	"github.com/hal9000y/research-mail/internal/config"
	"github.com/hal9000y/research-mail/internal/email"
	"github.com/hal9000y/research-mail/internal/gmail"
	"github.com/hal9000y/research-mail/internal/mcptool"
	"github.com/hal9000y/research-mail/internal/research"
)

func main() {
	httpAddr := flag.String("http-addr", "localhost:0", "HTTP server listen addr (OAuth callback and MCP endpoint)")
	envFileParam := flag.String("env-file", "", "Path to env file")
	enableStdio := flag.Bool("stdio", false, "Serve MCP tools over stdio instead of the interactive prompt")

	flag.Parse()

	if *envFileParam != "" {
		if err := godotenv.Load(*envFileParam); err != nil {
			panic(fmt.Errorf("godotenv.Load failed: %w", err))
		}
	}

	cfg, err := config.FromEnv()
	if err != nil {
		panic(fmt.Errorf("config.FromEnv failed: %w", err))
	}

	logger := setupLogger(cfg, *enableStdio)

	ln := mustListen(httpAddr)

	authorizer := newLocalAuthorizer(fmt.Sprintf("http://%s/oauth", ln.Addr().String()), logger)

	searchOpts := []brave.Option{}
	if cfg.BraveSearchURL != "" {
		searchOpts = append(searchOpts, brave.WithBaseURL(cfg.BraveSearchURL))
	}
	searchClient := brave.NewClient(searchOpts...)
	draftClient := gmail.NewDraftClient(gmail.WithAuthorizer(authorizer))

	mcpSrv := mcptool.NewServer(searchClient, draftClient, mcptool.Config{
		BraveAPIKey:          cfg.BraveAPIKey,
		GmailCredentialsPath: cfg.GmailCredentialsPath,
		GmailTokenPath:       cfg.GmailTokenPath,
	})

	mux := http.NewServeMux()
	mux.Handle("/oauth", authorizer)
	mux.Handle("/mcp", mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server { return mcpSrv }, nil))

	srv := &http.Server{Handler: mux}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGTERM, syscall.SIGINT)

	stopHTTP, errHTTPCh := serveHTTP(srv, ln, logger)
	defer stopHTTP()

	if *enableStdio {
		stopStdio, errStdioCh := serveStdio(mcpSrv, logger)
		defer stopStdio()

		select {
		case err := <-errHTTPCh:
			logger.Error().Err(err).Msg("http server failed")
		case err := <-errStdioCh:
			logger.Error().Err(err).Msg("stdio transport failed")
		case <-shutdown:
			logger.Info().Msg("shutdown signal received")
		}
		return
	}

	if err := runPrompt(cfg, searchClient, draftClient, logger, shutdown); err != nil {
		logger.Error().Err(err).Msg("session failed")
		os.Exit(1)
	}
}

// runPrompt drives the interactive research session. One usage counter
// spans the whole session, including delegated email-agent runs.
func runPrompt(cfg *config.Config, searchClient *brave.Client, draftClient *gmail.DraftClient, logger zerolog.Logger, shutdown <-chan os.Signal) error {
	provider, err := agentrt.NewProvider(cfg.LLMProvider, cfg.LLMAPIKey, cfg.LLMBaseURL)
	if err != nil {
		return fmt.Errorf("agentrt.NewProvider failed: %w", err)
	}

	emailAgent, err := email.NewAgent(provider, cfg.LLMModel, draftClient, logger)
	if err != nil {
		return fmt.Errorf("email.NewAgent failed: %w", err)
	}

	researchAgent, err := research.NewAgent(provider, cfg.LLMModel, searchClient, emailAgent, logger)
	if err != nil {
		return fmt.Errorf("research.NewAgent failed: %w", err)
	}

	deps := research.Deps{
		BraveAPIKey:          cfg.BraveAPIKey,
		GmailCredentialsPath: cfg.GmailCredentialsPath,
		GmailTokenPath:       cfg.GmailTokenPath,
		SessionID:            uuid.NewString(),
	}
	usage := &agentrt.Usage{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-shutdown
		cancel()
	}()

	fmt.Println("Research assistant ready. Ask a question, or type 'exit' to quit.")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("research> ")
		if !scanner.Scan() {
			break
		}

		line := scanner.Text()
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		result, err := researchAgent.Run(ctx, line, deps, usage)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}

		fmt.Println()
		fmt.Println(result.Output)
		fmt.Println()
	}

	totals := usage.Snapshot()
	fmt.Printf("Session usage: %d requests, %d input tokens, %d output tokens\n",
		totals.Requests, totals.InputTokens, totals.OutputTokens)

	return scanner.Err()
}

func serveStdio(srv *mcp.Server, logger zerolog.Logger) (func(), <-chan error) {
	errStdioCh := make(chan error, 1)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		defer close(errStdioCh)
		logger.Info().Msg("starting stdio transport")

		if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil {
			errStdioCh <- fmt.Errorf("srv.Run failed: %w", err)
		}
	}()

	return func() {
		cancel()

		<-errStdioCh
		logger.Info().Msg("stdio transport stopped")
	}, errStdioCh
}

func serveHTTP(srv *http.Server, ln net.Listener, logger zerolog.Logger) (func(), <-chan error) {
	errHTTPCh := make(chan error, 1)
	go func() {
		defer close(errHTTPCh)

		logger.Info().Str("addr", ln.Addr().String()).Msg("starting http server")

		err := srv.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			err = fmt.Errorf("srv.Serve failed: %w", err)
			logger.Error().Err(err).Msg("http server error")
			errHTTPCh <- err
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("srv.Shutdown failed")
		}

		<-errHTTPCh
		logger.Info().Msg("http server stopped")
	}, errHTTPCh
}

func mustListen(httpAddr *string) net.Listener {
	if httpAddr == nil {
		panic("-http-addr must be provided")
	}

	ln, err := net.Listen("tcp", *httpAddr)
	if err != nil {
		panic(fmt.Errorf("net.Listen failed: %w", err))
	}

	return ln
}

func setupLogger(cfg *config.Config, enableStdio bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	// Stdout carries the MCP transport in stdio mode and the prompt
	// otherwise; logs always go to stderr.
	var out = os.Stderr

	if cfg.Production() {
		return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: out}).Level(lvl).With().Timestamp().Logger()
}

// localAuthorizer satisfies gmail.Authorizer with a browser flow against
// the local callback server. The mux route stays fixed; the handler
// behind it is swapped in when an authorization starts.
type localAuthorizer struct {
	callbackURL string
	logger      zerolog.Logger

	mu      sync.RWMutex
	handler http.Handler
}

func newLocalAuthorizer(callbackURL string, logger zerolog.Logger) *localAuthorizer {
	return &localAuthorizer{callbackURL: callbackURL, logger: logger}
}

func (a *localAuthorizer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mu.RLock()
	h := a.handler
	a.mu.RUnlock()

	if h == nil {
		http.Error(w, "No authorization in progress", http.StatusNotFound)
		return
	}

	h.ServeHTTP(w, r)
}

// Authorize runs the browser-based OAuth2 flow and blocks until the
// callback delivers a token or ctx expires.
func (a *localAuthorizer) Authorize(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	flowCfg := *cfg
	flowCfg.RedirectURL = a.callbackURL

	tok, err := gmail.NewToken(&flowCfg, "")
	if err != nil {
		return nil, fmt.Errorf("gmail.NewToken failed: %w", err)
	}

	a.mu.Lock()
	a.handler = gmail.NewHTTPHandler(tok, a.logger)
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.handler = nil
		a.mu.Unlock()
	}()

	openBrowser(a.callbackURL+"?redirect=1", a.logger)
	fmt.Fprintf(os.Stderr, "Waiting for Gmail authorization; if no browser opened, visit %s?redirect=1\n", a.callbackURL)

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("authorization not completed: %w", ctx.Err())
		case <-ticker.C:
			if t, err := tok.OAuthToken(); err == nil {
				return t, nil
			}
		}
	}
}

func openBrowser(url string, logger zerolog.Logger) {
	var err error
	switch runtime.GOOS {
	case "linux":
		err = exec.Command("xdg-open", url).Start()
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		err = exec.Command("open", url).Start()
	default:
		err = fmt.Errorf("unsupported platform")
	}

	if err != nil {
		logger.Warn().Err(err).Str("url", url).Msg("could not open browser automatically, open the link manually")
	}
}
