// Package alert schedules asynchronous notifications for products whose
// stock fell to or below the restock threshold. Tasks are processed by the
// worker binary, off the checkout request path.
package alert

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/yusapos/backend-pos/internal/domain"
)

// TaskStockLow is the asynq task type for low-stock alerts.
const TaskStockLow = "stock:low"

// QueueAlerts is the asynq queue alerts are routed to.
const QueueAlerts = "alerts"

// StockLowPayload is the task payload for a low-stock alert.
type StockLowPayload struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	SKU       string `json:"sku"`
	Stock     int    `json:"stock"`
	Threshold int    `json:"threshold"`
}

// Enqueuer schedules low-stock tasks. The task id is derived from the
// product id so repeated sales of an already-low product collapse into one
// pending alert.
type Enqueuer struct {
	Client    *asynq.Client
	Threshold int
	Retention time.Duration
}

func (e *Enqueuer) retention() time.Duration {
	if e == nil || e.Retention <= 0 {
		return time.Hour
	}
	return e.Retention
}

// StockLow enqueues an alert for the product.
func (e *Enqueuer) StockLow(ctx context.Context, p domain.Product) error {
	if e == nil || e.Client == nil {
		return errors.New("alert: enqueuer not configured")
	}
	payload, err := json.Marshal(StockLowPayload{
		ProductID: p.ID,
		Name:      p.Name,
		SKU:       p.SKU,
		Stock:     p.Stock,
		Threshold: e.Threshold,
	})
	if err != nil {
		return fmt.Errorf("alert: encode payload: %w", err)
	}
	task := asynq.NewTask(TaskStockLow, payload)
	_, err = e.Client.EnqueueContext(ctx, task,
		asynq.TaskID("stock-low:"+p.ID),
		asynq.Queue(QueueAlerts),
		asynq.Retention(e.retention()),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		// an alert for this product is already pending
		return nil
	}
	return err
}

// Worker handles low-stock tasks on the worker binary.
type Worker struct {
	Log zerolog.Logger
}

// HandleStockLow logs the alert. Notification channels (email, messaging)
// hang off this handler.
func (w *Worker) HandleStockLow(ctx context.Context, task *asynq.Task) error {
	var payload StockLowPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("alert: decode payload: %w", err)
	}
	w.Log.Warn().
		Str("product_id", payload.ProductID).
		Str("sku", payload.SKU).
		Str("name", payload.Name).
		Int("stock", payload.Stock).
		Int("threshold", payload.Threshold).
		Msg("product stock is low")
	return nil
}
