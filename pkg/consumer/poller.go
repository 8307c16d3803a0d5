package consumer

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"time"

	"github.com/gojek/heimdall/v7/httpclient"
)

// Poller pulls batches of raw scans from the stream endpoint and feeds
// them through a dispatcher. The endpoint returns a JSON array of provider
// scan payloads per request.
type Poller struct {
	client     *httpclient.Client
	url        string
	interval   time.Duration
	dispatcher *Dispatcher
}

func NewPoller(url string, interval time.Duration, dispatcher *Dispatcher) *Poller {
	client := httpclient.NewClient(
		httpclient.WithHTTPTimeout(10*time.Second),
		httpclient.WithRetryCount(3),
	)
	return &Poller{
		client:     client,
		url:        url,
		interval:   interval,
		dispatcher: dispatcher,
	}
}

// Run polls until the context is cancelled. Fetch failures are logged and
// retried on the next tick.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll()
		}
	}
}

func (p *Poller) poll() {
	res, err := p.client.Get(p.url, nil)
	if err != nil {
		log.Printf("polling scan stream failed: %v", err)
		return
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		log.Printf("reading scan stream response failed: %v", err)
		return
	}

	var payloads []json.RawMessage
	if err := json.Unmarshal(body, &payloads); err != nil {
		log.Printf("malformed scan stream batch: %v", err)
		return
	}

	for _, payload := range payloads {
		event, err := ParseRaw(payload)
		if err != nil {
			log.Printf("dropping scan: %v", err)
			continue
		}
		p.dispatcher.Dispatch(event)
	}
}
