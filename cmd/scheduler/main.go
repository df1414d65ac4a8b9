package main

import (
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/RenewalHub/RenewalHub/internal/pkg/env"
)

// Standalone cron runner that pokes the HTTP trigger endpoints of a running
// RenewalHub instance. Deployments with an external scheduler (systemd timers,
// Kubernetes CronJobs) can skip this binary entirely and call the endpoints
// themselves.
func main() {
	env.SetupEnvFile()

	logger := log.New(os.Stdout, "[Scheduler] ", log.LstdFlags)

	baseURL := env.GetEnv("APP_URL", "http://localhost:4000")
	secret := env.GetEnv("CRON_SECRET", "")
	if secret == "" {
		logger.Fatal("FATAL: CRON_SECRET is not set, the trigger endpoints would reject every call")
	}

	scanSpec := env.GetEnv("SCAN_CRON", "0 6 * * *")
	digestSpec := env.GetEnv("DIGEST_CRON", "0 7 * * 1")

	client := &http.Client{Timeout: 5 * time.Minute}

	engine := cron.New(cron.WithLocation(time.UTC))

	if _, err := engine.AddFunc(scanSpec, func() {
		logger.Println("INFO: Cron job triggered for daily renewal scan.")
		callTrigger(logger, client, baseURL+"/api/v1/cron/renewal-scan", secret)
	}); err != nil {
		logger.Fatalf("FATAL: Could not add renewal scan cron job: %v", err)
	}

	if _, err := engine.AddFunc(digestSpec, func() {
		logger.Println("INFO: Cron job triggered for weekly digest.")
		callTrigger(logger, client, baseURL+"/api/v1/cron/weekly-digest", secret)
	}); err != nil {
		logger.Fatalf("FATAL: Could not add weekly digest cron job: %v", err)
	}

	engine.Start()
	logger.Printf("INFO: Scheduler started (scan %q, digest %q, target %s)", scanSpec, digestSpec, baseURL)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Println("INFO: Shutting down scheduler...")
	ctx := engine.Stop()
	<-ctx.Done()
	logger.Println("INFO: Scheduler stopped.")
}

func callTrigger(logger *log.Logger, client *http.Client, url, secret string) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		logger.Printf("ERROR: Could not build request for %s: %v", url, err)
		return
	}
	req.Header.Set("X-Cron-Secret", secret)

	resp, err := client.Do(req)
	if err != nil {
		logger.Printf("ERROR: Trigger call to %s failed: %v", url, err)
		return
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	switch {
	case resp.StatusCode == http.StatusOK:
		logger.Printf("INFO: %s completed: %s", url, string(body))
	case resp.StatusCode == http.StatusConflict:
		logger.Printf("INFO: %s already running elsewhere, skipping this tick", url)
	default:
		logger.Printf("ERROR: %s returned %s: %s", url, resp.Status, string(body))
	}
}
