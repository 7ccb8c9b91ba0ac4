// Command sama runs a tool-using LLM agent from the terminal: one-shot
// questions with "sama ask" or an interactive session with "sama chat".
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/samalabs/sama/agent"
	"github.com/samalabs/sama/config"
	"github.com/samalabs/sama/llm"
	"github.com/samalabs/sama/tool"
)

var (
	flagConfig        string
	flagModel         string
	flagLanguage      string
	flagMaxIterations int
	flagWorkspace     string
)

func main() {
	root := &cobra.Command{
		Use:           "sama",
		Short:         "A tool-using LLM agent",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "path to config file (default: discovered config.local.yaml/config.yaml)")
	root.PersistentFlags().StringVarP(&flagModel, "model", "m", "", "model name override")
	root.PersistentFlags().StringVarP(&flagLanguage, "language", "l", "", "prompt language: en or zh")
	root.PersistentFlags().IntVar(&flagMaxIterations, "max-iterations", 0, "maximum loop iterations per run")
	root.PersistentFlags().StringVarP(&flagWorkspace, "workspace", "w", "", "workspace directory for file tools")

	root.AddCommand(newAskCmd(), newChatCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a single question and print the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildAgent()
			if err != nil {
				return err
			}

			resp := a.Run(cmd.Context(), strings.Join(args, " "))
			fmt.Println(resp.FinalAnswer)
			if !resp.Success {
				return fmt.Errorf("run did not complete: %s", resp.ErrorMessage)
			}
			return nil
		},
	}
}

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildAgent()
			if err != nil {
				return err
			}

			fmt.Println("Type a message, or /reset, /status, /files, /exit.")
			scanner := bufio.NewScanner(os.Stdin)
			scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

			for {
				fmt.Print("> ")
				if !scanner.Scan() {
					fmt.Println()
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}

				switch line {
				case "/exit", "/quit":
					return nil
				case "/reset":
					a.Reset()
					fmt.Println("conversation cleared")
					continue
				case "/status":
					printStatus(a.Status())
					continue
				case "/files":
					if summary := a.FilesSummary(); summary != "" {
						fmt.Println(summary)
					} else {
						fmt.Println("no files in context")
					}
					continue
				}

				resp := a.Run(cmd.Context(), line)
				if !resp.Success {
					fmt.Printf("[%s] %s\n", resp.ErrorMessage, resp.FinalAnswer)
					continue
				}
				fmt.Println(resp.FinalAnswer)
			}
		},
	}
}

func printStatus(s agent.Status) {
	fmt.Printf("state: %s\n", s.State)
	fmt.Printf("iterations: %d, steps: %d\n", s.Iterations, s.StepCount)
	fmt.Printf("tools: %d, files: %d\n", s.ToolCount, s.FileCount)
	fmt.Printf("memory: %d messages, %d chars of context\n", s.MemorySize, s.ContextLength)
}

func buildAgent() (*agent.Agent, error) {
	// .env is optional; ignore a missing file.
	_ = godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	applyFlags(cfg)

	level, err := log.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = log.InfoLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "sama",
		Level:  level,
	})

	if cfg.Model.APIKey == "" {
		return nil, fmt.Errorf("no API key configured: set model.api_key or one of OPENAI_API_KEY, KIMI_API_KEY, MOONSHOT_API_KEY, API_KEY")
	}

	adapter, err := llm.NewGollmAdapter(cfg.Model.Provider,
		llm.WithAPIKey(cfg.Model.APIKey),
		llm.WithModel(cfg.Model.Name),
		llm.WithMaxTokens(cfg.Model.MaxTokens),
		llm.WithTemperature(cfg.Model.Temperature),
	)
	if err != nil {
		return nil, fmt.Errorf("initialize %s backend: %w", cfg.Model.Provider, err)
	}

	client := llm.NewClient(
		llm.WithProvider(cfg.Model.Provider, adapter),
		llm.WithMiddleware(llm.RetryMiddleware(llm.DefaultRetryPolicy())),
	)

	return agent.New(client,
		agent.WithName(cfg.Agent.Name),
		agent.WithModel(cfg.Model.Name),
		agent.WithProvider(cfg.Model.Provider),
		agent.WithTemperature(cfg.Model.Temperature),
		agent.WithMaxTokens(cfg.Model.MaxTokens),
		agent.WithMaxIterations(cfg.Agent.MaxIterations),
		agent.WithLanguage(agent.Language(cfg.Agent.Language)),
		agent.WithWorkspace(cfg.Agent.Workspace),
		agent.WithMemoryLimit(cfg.Memory.MaxMessages),
		agent.WithMaxResultChars(cfg.Memory.MaxResultChars),
		agent.WithLogger(logger),
		agent.WithTools(buildTools(cfg)...),
	), nil
}

func loadConfig() (*config.Config, error) {
	if flagConfig != "" {
		return config.Load(flagConfig)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return config.Discover(wd)
}

func applyFlags(cfg *config.Config) {
	if flagModel != "" {
		cfg.Model.Name = flagModel
	}
	if flagLanguage != "" {
		cfg.Agent.Language = flagLanguage
	}
	if flagMaxIterations > 0 {
		cfg.Agent.MaxIterations = flagMaxIterations
	}
	if flagWorkspace != "" {
		cfg.Agent.Workspace = flagWorkspace
	}
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func buildTools(cfg *config.Config) []tool.Tool {
	allowedDirs := cfg.Tools.File.AllowedDirs
	if len(allowedDirs) == 0 {
		allowedDirs = []string{cfg.Agent.Workspace}
	}

	tools := []tool.Tool{
		tool.NewCalculatorTool(),
		tool.NewTimeTool(),
		tool.NewTodoTool(tool.NewTodoStore()),
	}

	if cfg.Tools.File.Enabled {
		tools = append(tools,
			tool.NewReadFileTool(allowedDirs),
			tool.NewWriteFileTool(allowedDirs),
			tool.NewListDirectoryTool(allowedDirs),
		)
	}

	if cfg.Tools.Shell.Enabled {
		opts := []tool.ShellToolOption{
			tool.WithShellPolicy(tool.ShellPolicy(cfg.Tools.Shell.Policy)),
			tool.WithShellWorkingDir(cfg.Agent.Workspace),
		}
		if len(cfg.Tools.Shell.Whitelist) > 0 {
			opts = append(opts, tool.WithShellWhitelist(cfg.Tools.Shell.Whitelist))
		}
		if cfg.Tools.Shell.TimeoutSeconds > 0 {
			opts = append(opts, tool.WithShellTimeout(seconds(cfg.Tools.Shell.TimeoutSeconds)))
		}
		tools = append(tools, tool.NewShellTool(opts...))
	}

	if cfg.Tools.Python.Enabled {
		opts := []tool.PythonToolOption{}
		if cfg.Tools.Python.Interpreter != "" {
			opts = append(opts, tool.WithPythonInterpreter(cfg.Tools.Python.Interpreter))
		}
		if cfg.Tools.Python.TimeoutSeconds > 0 {
			opts = append(opts, tool.WithPythonTimeout(seconds(cfg.Tools.Python.TimeoutSeconds)))
		}
		tools = append(tools, tool.NewPythonTool(allowedDirs, opts...))
	}

	if cfg.Tools.Search.Enabled {
		tools = append(tools, tool.NewWebSearchTool(
			tool.WithSearchMaxResults(cfg.Tools.Search.MaxResults),
		))
	}

	return tools
}
