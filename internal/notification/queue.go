package notification

import (
	"log"
	"net/http"
	"sync"
	"time"

	invoicedomain "faktury-backend/internal/invoice/domain"
)

// Queue delivers Discord webhook notifications from a background worker so
// that a slow or failing webhook never blocks invoice extraction.
type Queue struct {
	webhookURL  string
	frontendURL string
	client      *http.Client

	jobs       chan DiscordWebhookPayload
	maxRetries int
	retryDelay time.Duration
	pace       time.Duration

	workerWg sync.WaitGroup
	started  bool
	mu       sync.Mutex
}

// NewQueue creates a notification queue. An empty webhookURL disables
// delivery; enqueued payloads are dropped silently.
func NewQueue(webhookURL, frontendURL string) *Queue {
	return &Queue{
		webhookURL:  webhookURL,
		frontendURL: frontendURL,
		client:      &http.Client{Timeout: 15 * time.Second},
		jobs:        make(chan DiscordWebhookPayload, 100),
		maxRetries:  3,
		retryDelay:  5 * time.Second,
		pace:        time.Second, // Discord rate limit
	}
}

// Start launches the delivery worker
func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.started {
		return
	}
	q.started = true

	q.workerWg.Add(1)
	go q.worker()
	log.Println("[Notifications] Delivery worker started")
}

// Stop drains and stops the worker
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return
	}
	q.mu.Unlock()

	close(q.jobs)
	q.workerWg.Wait()
	log.Println("[Notifications] Delivery worker stopped")
}

// NotifyNewInvoice queues an announcement for a freshly extracted invoice
func (q *Queue) NotifyNewInvoice(fields invoicedomain.InvoiceFields) {
	q.enqueue(NewInvoicePayload(fields, q.frontendURL))
}

// NotifyError queues an operator-facing error notification
func (q *Queue) NotifyError(message, details string) {
	q.enqueue(ErrorPayload(message, details))
}

func (q *Queue) enqueue(payload DiscordWebhookPayload) {
	if q.webhookURL == "" {
		return
	}
	select {
	case q.jobs <- payload:
	default:
		log.Println("[Notifications] Queue full, dropping notification")
	}
}

func (q *Queue) worker() {
	defer q.workerWg.Done()

	for payload := range q.jobs {
		q.deliver(payload)
		time.Sleep(q.pace)
	}
}

func (q *Queue) deliver(payload DiscordWebhookPayload) {
	var err error
	for attempt := 0; attempt < q.maxRetries; attempt++ {
		if err = sendWebhook(q.client, q.webhookURL, payload); err == nil {
			return
		}
		log.Printf("[Notifications] Delivery failed (attempt %d/%d): %v", attempt+1, q.maxRetries, err)
		if attempt < q.maxRetries-1 {
			time.Sleep(q.retryDelay)
		}
	}
	log.Printf("[Notifications] Max retries reached, discarding notification: %v", err)
}
