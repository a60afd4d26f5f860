// tafakkur - An Arabic deep-reasoning chat assistant for the terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/tafakkur/internal/apiclient"
	"github.com/morganforge/tafakkur/internal/cli"
	"github.com/morganforge/tafakkur/internal/config"
	"github.com/morganforge/tafakkur/internal/deepseek"
	"github.com/morganforge/tafakkur/internal/orchestrator"
	"github.com/morganforge/tafakkur/internal/search"
	"github.com/morganforge/tafakkur/internal/server"
	"github.com/morganforge/tafakkur/internal/storage"
	"github.com/morganforge/tafakkur/internal/ui"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	cmd := "tui"
	args := os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd = args[0]
		args = args[1:]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "تعذر تحميل الإعدادات: %v\n", err)
		os.Exit(1)
	}

	switch cmd {
	case "tui":
		os.Exit(runTUI(cfg, args))
	case "chat":
		os.Exit(runChat(cfg, args))
	case "ask":
		os.Exit(runAsk(cfg, args))
	case "serve":
		os.Exit(runServe(cfg, args))
	case "version":
		fmt.Printf("tafakkur %s (%s, %s)\n", Version, GitCommit, BuildDate)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "أمر غير معروف: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`tafakkur - مساعد محادثة ذكي بالعربية مع تفكير عميق

الاستخدام:
  tafakkur [tui]            واجهة المحادثة التفاعلية (الافتراضي)
  tafakkur chat             محادثة نصية في سطر الأوامر
  tafakkur ask <سؤال>       سؤال واحد وإجابة مباشرة
  tafakkur serve            تشغيل خادم HTTP محلي
  tafakkur version          عرض الإصدار

الخيارات المشتركة:
  -remote                   الاتصال بخادم بدل التشغيل المحلي

متغيرات البيئة:
  DEEPSEEK_API_KEY          مفتاح DeepSeek API
  SERPAPI_KEY               مفتاح SerpAPI للبحث في الويب
  TAFAKKUR_SERVER_URL       عنوان الخادم للوضع البعيد`)
}

// =============================================================================
// WIRING
// =============================================================================

// buildOrchestrator constructs the in-process pipeline from configuration.
func buildOrchestrator(cfg *config.Config) *orchestrator.Orchestrator {
	completion := deepseek.NewClient(deepseek.Config{
		APIKey: cfg.Providers.DeepSeekKey,
	})
	searcher := search.NewClient(search.Config{
		APIKey:     cfg.Providers.SerpAPIKey,
		Region:     cfg.Search.Region,
		Language:   cfg.Search.Language,
		MaxResults: cfg.Search.MaxResults,
	})
	return orchestrator.New(completion, searcher, log.Default())
}

// buildRunner picks the local or remote execution path.
func buildRunner(cfg *config.Config, remote bool) ui.TurnRunner {
	if remote {
		return &ui.RemoteRunner{Client: apiclient.NewClient(cfg.Client.ServerURL)}
	}
	return &ui.LocalRunner{Orch: buildOrchestrator(cfg)}
}

// =============================================================================
// SUBCOMMANDS
// =============================================================================

func runTUI(cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("tui", flag.ExitOnError)
	remote := fs.Bool("remote", false, "connect to a server instead of running locally")
	fs.Parse(args)

	store, err := storage.DefaultStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "تعذر تجهيز ملف الحفظ: %v\n", err)
		return 1
	}

	m := ui.New(buildRunner(cfg, *remote), store)

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "فشل تشغيل الواجهة: %v\n", err)
		return 1
	}
	return 0
}

func runChat(cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	remote := fs.Bool("remote", false, "connect to a server instead of running locally")
	fs.Parse(args)

	session := cli.NewChatSession(buildRunner(cfg, *remote))
	return session.Run()
}

func runAsk(cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	remote := fs.Bool("remote", false, "connect to a server instead of running locally")
	reasoning := fs.Bool("reasoning", false, "print the reasoning section before the answer")
	searchMode := fs.String("search", "auto", "web search: on, off, or auto")
	fs.Parse(args)

	question := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if question == "" {
		fmt.Fprintln(os.Stderr, "الاستخدام: tafakkur ask <سؤال>")
		return 1
	}

	var forceSearch *bool
	switch *searchMode {
	case "on":
		on := true
		forceSearch = &on
	case "off":
		off := false
		forceSearch = &off
	case "auto":
	default:
		fmt.Fprintln(os.Stderr, "قيمة غير صالحة للخيار -search (on|off|auto)")
		return 1
	}

	return cli.Ask(buildRunner(cfg, *remote), question, cli.AskOptions{
		ShowReasoning: *reasoning,
		ForceSearch:   forceSearch,
	})
}

func runServe(cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	port := fs.Int("port", cfg.Server.Port, "port to listen on (localhost only)")
	fs.Parse(args)

	srv := server.New(buildOrchestrator(cfg), server.Config{
		Port:              *port,
		AllowedOrigins:    cfg.Server.AllowedOrigins,
		RequestsPerMinute: cfg.Server.RequestsPerMinute,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			fmt.Fprintf(os.Stderr, "فشل تشغيل الخادم: %v\n", err)
			return 1
		}
	case sig := <-sigCh:
		log.Printf("SIGNAL_RECEIVED | signal=%s", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "فشل إيقاف الخادم: %v\n", err)
			return 1
		}
	}
	return 0
}
