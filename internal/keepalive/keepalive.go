package keepalive

import (
	"context"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Keepalive pings the bot's own public URL at randomized intervals so
// free-tier hosting does not idle the process out.
type Keepalive struct {
	context    context.Context
	cancel     func()
	waitGroup  sync.WaitGroup
	logger     *zap.Logger
	url        string
	httpClient *http.Client
}

func NewKeepalive(logger *zap.Logger, url string) *Keepalive {
	context, cancel := context.WithCancel(context.Background())
	return &Keepalive{
		context: context,
		cancel:  cancel,
		logger:  logger,
		url:     url,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (this *Keepalive) Start() error {
	this.logger.Info("starting keepalive pinger", zap.String("url", this.url))

	this.waitGroup.Add(1)
	go this.loop()
	return nil
}

func (this *Keepalive) Stop() error {
	this.logger.Info("stopping keepalive pinger")

	this.cancel()
	this.waitGroup.Wait()
	return nil
}

func (this *Keepalive) loop() {
	defer this.waitGroup.Done()

	for {
		select {
		case <-this.context.Done():
			return
		case <-time.After(time.Duration(rand.Intn(21)) * time.Second):
		}

		this.ping()
	}
}

func (this *Keepalive) ping() {
	req, err := http.NewRequestWithContext(this.context, http.MethodGet, this.url, nil)
	if err != nil {
		this.logger.Error("keepalive request build failed", zap.Error(err))
		return
	}

	resp, err := this.httpClient.Do(req)
	if err != nil {
		this.logger.Warn("keepalive ping failed", zap.Error(err))
		return
	}
	resp.Body.Close()

	this.logger.Debug("keepalive ping", zap.Int("status", resp.StatusCode))
}
