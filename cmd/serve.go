package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/theirongolddev/finplan/internal/config"
	"github.com/theirongolddev/finplan/internal/logging"
	"github.com/theirongolddev/finplan/internal/server"

	"github.com/spf13/cobra"
)

var (
	flagServeAddr         string
	flagServeRate         int
	flagServeEventsBuffer int
	flagServeDetach       bool
	flagServeChild        bool
	flagServePIDFile      string
	flagServeLogFile      string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the planner over a local HTTP API",
	Long: "Endpoints: GET /healthz, GET /v1/status, GET /v1/events, GET /v1/stream,\n" +
		"POST /v1/evaluate, POST /v1/project, POST /v1/plan.",
	RunE: runServe,
}

var serveStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server process and API status",
	RunE:  runServeStatus,
}

var serveStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop a detached server",
	RunE:  runServeStop,
}

func init() {
	runDir := filepath.Dir(config.CachePath(config.DefaultConfig()))

	serveCmd.PersistentFlags().StringVar(&flagServeAddr, "addr", "", "HTTP listen address (default from config)")
	serveCmd.PersistentFlags().StringVar(&flagServePIDFile, "pid-file", filepath.Join(runDir, "serve.pid"), "PID file path")
	serveCmd.PersistentFlags().StringVar(&flagServeLogFile, "log-file", filepath.Join(runDir, "serve.log"), "Log file path for detached mode")

	serveCmd.Flags().IntVar(&flagServeRate, "rate", -1, "Max /v1/plan requests per minute, 0 for unlimited (default from config)")
	serveCmd.Flags().IntVar(&flagServeEventsBuffer, "events-buffer", 200, "Max in-memory events retained")
	serveCmd.Flags().BoolVar(&flagServeDetach, "detach", false, "Run the server as a background process")
	serveCmd.Flags().BoolVar(&flagServeChild, "child", false, "Internal: mark detached child process")
	_ = serveCmd.Flags().MarkHidden("child")

	serveCmd.AddCommand(serveStatusCmd, serveStopCmd)
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	if flagServeDetach && flagServeChild {
		return errors.New("invalid serve launch mode")
	}
	if flagServeDetach {
		return startServeDetached()
	}
	return runServeForeground()
}

func startServeDetached() error {
	if err := ensureServerNotRunning(flagServePIDFile); err != nil {
		return err
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	args := filterDetachArg(os.Args[1:])
	args = append(args, "--child")

	if err := os.MkdirAll(filepath.Dir(flagServePIDFile), 0o750); err != nil {
		return fmt.Errorf("create run directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(flagServeLogFile), 0o750); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	//nolint:gosec // log path is configured by the local user
	logf, err := os.OpenFile(flagServeLogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer func() { _ = logf.Close() }()

	cmd := exec.Command(exe, args...) //nolint:gosec // exe/args come from current process invocation
	cmd.Stdout = logf
	cmd.Stderr = logf
	cmd.Stdin = nil
	cmd.Env = os.Environ()

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start detached server: %w", err)
	}

	fmt.Printf("  Started server (pid %d)\n", cmd.Process.Pid)
	fmt.Printf("  PID file: %s\n", flagServePIDFile)
	fmt.Printf("  Log: %s\n", flagServeLogFile)
	fmt.Println("  Check with: finplan serve status")
	return nil
}

func runServeForeground() error {
	if err := ensureServerNotRunning(flagServePIDFile); err != nil {
		return err
	}

	e, err := loadEnv(true)
	if err != nil {
		return err
	}
	defer e.Close()

	// The server logs JSON at info level whatever the console logger does.
	log := logging.NewServer(flagVerbose)
	defer func() { _ = log.Sync() }()

	cfg := server.Config{
		Addr:          e.cfg.Server.Addr,
		RatePerMinute: e.cfg.Server.RatePerMinute,
		EventsBuffer:  flagServeEventsBuffer,
	}
	if flagServeAddr != "" {
		cfg.Addr = flagServeAddr
	}
	if flagServeRate >= 0 {
		cfg.RatePerMinute = flagServeRate
	}

	if err := os.MkdirAll(filepath.Dir(flagServePIDFile), 0o750); err != nil {
		return fmt.Errorf("create run directory: %w", err)
	}
	pid := os.Getpid()
	if err := writePID(flagServePIDFile, pid); err != nil {
		return err
	}
	defer func() { _ = os.Remove(flagServePIDFile) }()

	state := serverRuntimeState{PID: pid, Addr: cfg.Addr, StartedAt: time.Now()}
	_ = writeState(statePath(flagServePIDFile), state)
	defer func() { _ = os.Remove(statePath(flagServePIDFile)) }()

	opts := []server.Option{server.WithLogger(log), server.WithAdvisor(e.adv, e.advErr)}
	if e.cache != nil {
		opts = append(opts, server.WithPlanCounter(e.cache))
	}
	svc := server.New(cfg, opts...)

	fmt.Printf("  finplan listening on http://%s\n", cfg.Addr)
	if e.adv == nil {
		fmt.Printf("  /v1/plan disabled: %v\n", e.advErr)
	}
	fmt.Printf("  Stop with: finplan serve stop --pid-file %s\n", flagServePIDFile)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runServeStatus(_ *cobra.Command, _ []string) error {
	e, err := loadEnv(false)
	if err != nil {
		return err
	}
	defer e.Close()

	addr := e.cfg.Server.Addr
	if flagServeAddr != "" {
		addr = flagServeAddr
	}

	if pid, err := readPID(flagServePIDFile); err == nil {
		if processAlive(pid) {
			fmt.Printf("  Server PID: %d\n", pid)
		} else {
			fmt.Printf("  Server: stale pid file (pid %d not alive)\n", pid)
		}
		if st, err := readState(statePath(flagServePIDFile)); err == nil && st.Addr != "" && flagServeAddr == "" {
			addr = st.Addr
		}
	}
	fmt.Printf("  Address: http://%s\n", addr)

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + addr + "/v1/status") //nolint:noctx // short status probe
	if err != nil {
		fmt.Printf("  API status: unreachable (%v)\n", err)
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("  API status: HTTP %d\n", resp.StatusCode)
		return nil
	}

	var st server.Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		fmt.Printf("  API status: malformed response (%v)\n", err)
		return nil
	}

	fmt.Printf("  Up since: %s (%s)\n", st.StartedAt.Local().Format(time.RFC3339), time.Duration(st.UptimeSec)*time.Second)
	if st.AdvisorReady {
		fmt.Printf("  Model: %s\n", st.Model)
	} else {
		fmt.Println("  Model: advisor not configured")
	}
	fmt.Printf("  Requests: evaluate %d, project %d, plan %d\n", st.Requests.Evaluate, st.Requests.Project, st.Requests.Plan)
	fmt.Printf("  Rejected: invalid %d, rate limited %d, upstream errors %d\n",
		st.Requests.Invalid, st.Requests.RateLimited, st.Requests.PlanErrors)
	fmt.Printf("  Cached plans: %d\n", st.CachedPlans)
	return nil
}

func runServeStop(_ *cobra.Command, _ []string) error {
	pid, err := readPID(flagServePIDFile)
	if err != nil {
		return errors.New("server is not running")
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("find server process: %w", err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal server process: %w", err)
	}

	deadline := time.Now().Add(8 * time.Second)
	for time.Now().Before(deadline) {
		if !processAlive(pid) {
			_ = os.Remove(flagServePIDFile)
			_ = os.Remove(statePath(flagServePIDFile))
			fmt.Printf("  Stopped server (pid %d)\n", pid)
			return nil
		}
		time.Sleep(150 * time.Millisecond)
	}

	return fmt.Errorf("server (pid %d) did not exit in time", pid)
}
