package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"decisionflow/internal/a2a"
	"decisionflow/internal/agents"
	"decisionflow/internal/client"
	"decisionflow/internal/flow"
	"decisionflow/internal/llm"
	"decisionflow/internal/tui"
	"decisionflow/internal/utils"
)

func Run() int {
	if len(os.Args) < 2 {
		usage()
		return 1
	}

	switch os.Args[1] {
	case "info-agent":
		return runInfoAgent(os.Args[2:])
	case "plan-agent":
		return runPlanAgent(os.Args[2:])
	case "client":
		return runClient(os.Args[2:])
	case "send":
		return runSend(os.Args[2:])
	default:
		usage()
		return 1
	}
}

func usage() {
	fmt.Println("decisionflow <command> [options]")
	fmt.Println("Commands: info-agent, plan-agent, client, send")
}

func runInfoAgent(args []string) int {
	fs := flag.NewFlagSet("info-agent", flag.ContinueOnError)
	host := fs.String("host", "", "host to bind")
	port := fs.Int("port", 0, "port to bind")
	noFallback := fs.Bool("no-fallback", false, "refuse to start without OPENAI_API_KEY")
	verbose := fs.Bool("verbose", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfg := flow.LoadConfig()
	applyOverrides(&cfg.InfoAgent.Host, *host, &cfg.InfoAgent.Port, *port)
	cfg.OpenAI.AllowFallback = !*noFallback
	if *verbose {
		cfg.Logging.Level = "debug"
	}

	logger := utils.NewLogger(cfg.Logging.Level)
	if err := cfg.ValidateCredentials(); err != nil {
		logger.Errorf("%v", err)
		return 1
	}

	agent := agents.NewInfoAgent(provider(cfg, logger), logger)
	return serveAgent(agent, cfg.InfoAgent.Host, cfg.InfoAgent.Port, cfg, logger)
}

func runPlanAgent(args []string) int {
	fs := flag.NewFlagSet("plan-agent", flag.ContinueOnError)
	host := fs.String("host", "", "host to bind")
	port := fs.Int("port", 0, "port to bind")
	executorURL := fs.String("executor-url", "", "execution agent URL")
	noFallback := fs.Bool("no-fallback", false, "refuse to start without OPENAI_API_KEY")
	verbose := fs.Bool("verbose", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfg := flow.LoadConfig()
	applyOverrides(&cfg.PlanAgent.Host, *host, &cfg.PlanAgent.Port, *port)
	if *executorURL != "" {
		cfg.ExecutorURL = *executorURL
	}
	cfg.OpenAI.AllowFallback = !*noFallback
	if *verbose {
		cfg.Logging.Level = "debug"
	}

	logger := utils.NewLogger(cfg.Logging.Level)
	if err := cfg.ValidateCredentials(); err != nil {
		logger.Errorf("%v", err)
		return 1
	}

	forwarder := client.New(logger)
	agent := agents.NewPlanAgent(provider(cfg, logger), forwarder, cfg.ExecutorURL, logger)
	return serveAgent(agent, cfg.PlanAgent.Host, cfg.PlanAgent.Port, cfg, logger)
}

func runClient(args []string) int {
	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	url := fs.String("url", "", "agent endpoint")
	verbose := fs.Bool("verbose", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfg := flow.LoadConfig()
	if *verbose {
		cfg.Logging.Level = "debug"
	}
	target := *url
	if target == "" {
		target = fmt.Sprintf("http://%s:%d", cfg.InfoAgent.Host, cfg.InfoAgent.Port)
	}

	// The TUI owns the terminal; log to a file so output stays clean.
	logFile, err := os.OpenFile("decisionflow-client.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
		return 1
	}
	defer logFile.Close()
	logger := utils.NewLoggerTo(logFile, cfg.Logging.Level)

	if err := tui.Run(client.New(logger), target, logger); err != nil {
		fmt.Fprintf(os.Stderr, "client error: %v\n", err)
		return 1
	}
	return 0
}

func runSend(args []string) int {
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	url := fs.String("url", "", "agent endpoint")
	timeout := fs.Duration("timeout", 120*time.Second, "request timeout")
	verbose := fs.Bool("verbose", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() < 1 {
		fmt.Println("usage: decisionflow send [options] <text>")
		return 1
	}

	cfg := flow.LoadConfig()
	if *verbose {
		cfg.Logging.Level = "debug"
	}
	target := *url
	if target == "" {
		target = fmt.Sprintf("http://%s:%d", cfg.InfoAgent.Host, cfg.InfoAgent.Port)
	}

	logger := utils.NewLogger(cfg.Logging.Level)
	ctx, cancel := contextWithSignals()
	defer cancel()

	text, err := client.New(logger).WithTimeout(*timeout).SendText(ctx, target, fs.Arg(0))
	if err != nil {
		logger.Errorf("request failed: %v", err)
		fmt.Println("No response received from the agents")
		return 1
	}
	fmt.Println(text)
	return 0
}

func serveAgent(agent agents.Agent, host string, port int, cfg flow.Config, logger *utils.Logger) int {
	tasks := flow.NewTaskManager(cfg.TaskStoreSize)
	server := a2a.NewAgentServer(agent, tasks, host, port, logger)

	ctx, cancel := contextWithSignals()
	defer cancel()

	if err := server.Start(ctx); err != nil {
		logger.Errorf("server error: %v", err)
		return 1
	}
	return 0
}

func provider(cfg flow.Config, logger *utils.Logger) llm.Provider {
	if cfg.OpenAI.APIKey == "" {
		logger.Warnf("OPENAI_API_KEY not found, agent will use fallback responses")
		return nil
	}
	return llm.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
}

func applyOverrides(host *string, hostFlag string, port *int, portFlag int) {
	if hostFlag != "" {
		*host = hostFlag
	}
	if portFlag != 0 {
		*port = portFlag
	}
}

func contextWithSignals() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
