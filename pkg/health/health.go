package health

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/festivalpos/distribution-engine/pkg/logger"
)

// Check represents a health check function
type Check func(ctx context.Context) error

// Health contains handlers for health checks and backs the gRPC
// grpc_health_v1 service advertised alongside the fiber RPC surface.
type Health struct {
	logger        logger.Logger
	startTime     time.Time
	mongoClient   *mongo.Client
	kafkaBrokers  string
	checks        map[string]Check
}

// NewHealth creates a new Health instance wired against the store client
// and the Kafka broker list used for trigger simulation.
func NewHealth(log logger.Logger, mongoClient *mongo.Client, kafkaBrokers string) *Health {
	h := &Health{
		logger:       log,
		startTime:    time.Now(),
		mongoClient:  mongoClient,
		kafkaBrokers: kafkaBrokers,
		checks:       make(map[string]Check),
	}

	h.RegisterCheck("mongo", h.checkMongo)
	h.RegisterCheck("kafka", h.checkKafka)

	return h
}

// RegisterCheck registers a new health check
func (h *Health) RegisterCheck(name string, check Check) {
	h.checks[name] = check
}

// GetHandlers returns Fiber handlers for health check endpoints
func (h *Health) GetHandlers() map[string]fiber.Handler {
	return map[string]fiber.Handler{
		"/health":        h.HealthHandler,
		"/health/ready":  h.ReadinessHandler,
		"/health/live":   h.LivenessHandler,
		"/health/info":   h.InfoHandler,
		"/health/status": h.StatusHandler,
	}
}

// checkMongo pings the store client.
func (h *Health) checkMongo(ctx context.Context) error {
	if h.mongoClient == nil {
		return errors.New("mongo client not initialized")
	}

	if err := h.mongoClient.Ping(ctx, nil); err != nil {
		return fmt.Errorf("mongo check failed: %w", err)
	}

	return nil
}

// checkKafka reports whether the trigger transport is configured. It only
// checks that a broker list is set; it does not contact the brokers or ask
// the consumers for their state.
func (h *Health) checkKafka(ctx context.Context) error {
	if h.kafkaBrokers == "" {
		return errors.New("kafka brokers not configured")
	}

	return nil
}

// runChecks runs all registered health checks
func (h *Health) runChecks(ctx context.Context) map[string]error {
	results := make(map[string]error)

	for name, check := range h.checks {
		results[name] = check(ctx)
	}

	return results
}

// allPassing reports whether every registered check currently succeeds,
// for use by the gRPC health service and the fiber readiness endpoint alike.
func (h *Health) allPassing(ctx context.Context) bool {
	for _, err := range h.runChecks(ctx) {
		if err != nil {
			return false
		}
	}
	return true
}

// Check implements grpc_health_v1.HealthServer. It ignores the service name
// argument: the engine exposes a single overall status, not per-service
// granularity.
func (h *Health) Check(ctx context.Context, _ *grpc_health_v1.HealthCheckRequest) (*grpc_health_v1.HealthCheckResponse, error) {
	if h.allPassing(ctx) {
		return &grpc_health_v1.HealthCheckResponse{Status: grpc_health_v1.HealthCheckResponse_SERVING}, nil
	}
	return &grpc_health_v1.HealthCheckResponse{Status: grpc_health_v1.HealthCheckResponse_NOT_SERVING}, nil
}

// Watch implements grpc_health_v1.HealthServer by polling allPassing and
// streaming status changes until the client disconnects.
func (h *Health) Watch(req *grpc_health_v1.HealthCheckRequest, stream grpc_health_v1.Health_WatchServer) error {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	var last grpc_health_v1.HealthCheckResponse_ServingStatus = -1
	for {
		resp, err := h.Check(stream.Context(), req)
		if err != nil {
			return err
		}
		if resp.Status != last {
			if err := stream.Send(resp); err != nil {
				return err
			}
			last = resp.Status
		}

		select {
		case <-stream.Context().Done():
			return nil
		case <-ticker.C:
		}
	}
}

// HealthHandler handles the /health endpoint
func (h *Health) HealthHandler(c *fiber.Ctx) error {
	results := h.runChecks(c.Context())

	allPassed := true
	statusDetails := make(map[string]string)

	for name, err := range results {
		if err != nil {
			allPassed = false
			statusDetails[name] = "down"
		} else {
			statusDetails[name] = "up"
		}
	}

	status := "up"
	if !allPassed {
		status = "degraded"
		c.Status(fiber.StatusServiceUnavailable)
	}

	return c.JSON(fiber.Map{
		"status":  status,
		"details": statusDetails,
	})
}

// ReadinessHandler handles the /health/ready endpoint
func (h *Health) ReadinessHandler(c *fiber.Ctx) error {
	if !h.allPassing(c.Context()) {
		c.Status(fiber.StatusServiceUnavailable)
		return c.JSON(fiber.Map{
			"status": "not ready",
		})
	}

	return c.JSON(fiber.Map{
		"status": "ready",
	})
}

// LivenessHandler handles the /health/live endpoint
func (h *Health) LivenessHandler(c *fiber.Ctx) error {
	// Liveness check always returns success if the service is running
	return c.JSON(fiber.Map{
		"status": "alive",
	})
}

// InfoHandler handles the /health/info endpoint
func (h *Health) InfoHandler(c *fiber.Ctx) error {
	info := map[string]interface{}{
		"service":    "distribution-engine",
		"version":    "1.0.0",
		"start_time": h.startTime.Format(time.RFC3339),
		"uptime":     time.Since(h.startTime).String(),
		"go_version": runtime.Version(),
		"go_os":      runtime.GOOS,
		"go_arch":    runtime.GOARCH,
		"goroutines": runtime.NumGoroutine(),
		"cpu_cores":  runtime.NumCPU(),
	}

	return c.JSON(info)
}

// StatusHandler handles the /health/status endpoint
func (h *Health) StatusHandler(c *fiber.Ctx) error {
	results := h.runChecks(c.Context())

	statusDetails := make(map[string]interface{})

	for name, err := range results {
		details := map[string]interface{}{
			"status": "up",
			"error":  nil,
		}

		if err != nil {
			details["status"] = "down"
			details["error"] = err.Error()
		}

		statusDetails[name] = details
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	memory := map[string]interface{}{
		"alloc":        memStats.Alloc,
		"total_alloc":  memStats.TotalAlloc,
		"sys":          memStats.Sys,
		"num_gc":       memStats.NumGC,
		"heap_objects": memStats.HeapObjects,
	}

	return c.JSON(fiber.Map{
		"components": statusDetails,
		"memory":     memory,
		"uptime":     time.Since(h.startTime).String(),
	})
}
