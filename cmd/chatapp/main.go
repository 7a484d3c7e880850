// Package main provides a console client for the chatapp library.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/peterh/liner"

	"github.com/fxpyramid/chatapp"
)

const welcomeMessage = "\nWelcome to ChatApp!\n\n" +
	"Here's how to get started:\n\n" +
	"1. Starting a Chat:\n" +
	"   - Simply type your message and hit Enter to send it.\n\n" +
	"2. Saving Your Chat:\n" +
	"   - At any point, if you wish to save the current chat, type `~save` and press Enter. " +
	"You'll see the message \"(saved)\" confirming that your conversation is safely stored.\n\n" +
	"3. Exiting the App:\n" +
	"   - When you are ready to end your session, type `~exit` and press Enter. " +
	"This will save your chat history and close the application.\n\n" +
	"Enjoy your conversation!\n"

// cmdFlags holds all command-line flags
type cmdFlags struct {
	endpoint    string
	model       string
	role        string
	historyDir  string
	loadFile    string
	logLevel    string
	timeout     time.Duration
	temperature float64
}

// parseFlags parses command-line flags
func parseFlags() *cmdFlags {
	flags := &cmdFlags{}
	flag.StringVar(&flags.endpoint, "endpoint", "", "Completion endpoint URL")
	flag.StringVar(&flags.model, "model", "", "Model requested from the endpoint (gpt-4, gpt-3.5-turbo)")
	flag.Float64Var(&flags.temperature, "temperature", -1, "Sampling temperature in [0, 2]")
	flag.DurationVar(&flags.timeout, "timeout", 0, "Timeout per HTTP request")
	flag.StringVar(&flags.historyDir, "history-dir", "", "Directory for saved conversations")
	flag.StringVar(&flags.role, "role", "", "Starting role for submitted messages (user, system)")
	flag.StringVar(&flags.loadFile, "load", "", "History file to offer loading at startup")
	flag.StringVar(&flags.logLevel, "log-level", "", "Log level (off, error, warn, info, debug)")
	flag.Parse()
	return flags
}

// prepareConfigOptions turns set flags into configuration options, leaving
// everything else to environment variables and defaults.
func prepareConfigOptions(flags *cmdFlags) ([]chatapp.ConfigOption, error) {
	var opts []chatapp.ConfigOption
	if flags.endpoint != "" {
		opts = append(opts, chatapp.SetEndpoint(flags.endpoint))
	}
	if flags.model != "" {
		opts = append(opts, chatapp.SetModel(flags.model))
	}
	if flags.temperature >= 0 {
		opts = append(opts, chatapp.SetTemperature(flags.temperature))
	}
	if flags.timeout > 0 {
		opts = append(opts, chatapp.SetTimeout(flags.timeout))
	}
	if flags.historyDir != "" {
		opts = append(opts, chatapp.SetHistoryDir(flags.historyDir))
	}
	if flags.role != "" {
		opts = append(opts, chatapp.SetRole(flags.role))
	}
	if flags.logLevel != "" {
		var level chatapp.LogLevel
		if err := level.UnmarshalText([]byte(flags.logLevel)); err != nil {
			return nil, fmt.Errorf("invalid log level %q", flags.logLevel)
		}
		opts = append(opts, chatapp.SetLogLevel(level))
	}
	return opts, nil
}

// consoleSurface prints conversation lines the way the chat window shows
// them.
type consoleSurface struct{}

func (consoleSurface) Append(role, content string) {
	fmt.Printf("%s: %s\n", strings.ToUpper(role), content)
}

func (consoleSurface) Reset() {
	fmt.Println(strings.Repeat("-", 50))
}

func main() {
	_ = godotenv.Load()

	flags := parseFlags()
	opts, err := prepareConfigOptions(flags)
	if err != nil {
		exitWithError("Error: %v\n", err)
	}

	session, err := chatapp.NewSession(consoleSurface{}, opts...)
	if err != nil {
		exitWithError("Error creating session: %v\n", err)
	}

	fmt.Print(welcomeMessage + "\n")

	if flags.loadFile != "" {
		offerLoad(session, flags.loadFile)
	}

	runChat(session)
}

// exitWithError prints an error message and exits
func exitWithError(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}

// offerLoad asks before replacing the conversation with a history file.
func offerLoad(session *chatapp.Session, loadFile string) {
	if _, err := os.Stat(loadFile); err != nil {
		fmt.Printf("The file '%s' does not exist. Starting a new conversation.\n", loadFile)
		return
	}

	fmt.Printf("Do you want to load the previous chat history from '%s'? (y/n): ", loadFile)
	answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y":
		if err := session.Load(loadFile); err != nil {
			fmt.Printf("Failed to load the chat history from '%s'. Starting a new conversation.\n", loadFile)
		}
	case "n":
		fmt.Println("Starting a new conversation.")
	default:
		fmt.Println("Invalid input. Starting a new conversation.")
	}
}

// runChat reads input lines until the session terminates or the terminal
// closes. Ctrl+C and Ctrl+D end the session without saving.
func runChat(session *chatapp.Session) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	ctx := context.Background()
	for {
		input, err := line.Prompt("> ")
		if err != nil {
			fmt.Println()
			return
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}

		outcome, err := session.Submit(ctx, input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}

		switch outcome {
		case chatapp.OutcomeSent:
			before := session.TotalCost()
			session.Wait()
			if after := session.TotalCost(); after > before {
				fmt.Printf("Total Cost: %.5f $\n", after)
			}
		case chatapp.OutcomeTerminated:
			consoleSurface{}.Append("system", "Session ended.")
			return
		}
	}
}
