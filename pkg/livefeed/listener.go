package livefeed

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/NotCoffee418/microgrid_monitor/pkg/types"
	"github.com/gorilla/websocket"
)

const (
	maxRetries     = 10
	baseRetryDelay = 2 * time.Second
	maxRetryDelay  = 60 * time.Second

	// Updates arrive every poll interval, pongs keep the connection alive in between.
	readTimeout  = 90 * time.Second
	pingInterval = 30 * time.Second
)

var ErrGaveUp = errors.New("livefeed: max retries reached")

// FeedUrl is the websocket url of the dashboard API live feed.
func FeedUrl(host string, tls bool) string {
	scheme := "ws"
	if tls {
		scheme = "wss"
	}
	u := url.URL{Scheme: scheme, Host: host, Path: "/ws"}
	return u.String()
}

// retryDelay is the wait before attempt retryCount+1.
func retryDelay(retryCount int) time.Duration {
	if retryCount <= 0 {
		return 0
	}
	if retryCount > 10 {
		return maxRetryDelay
	}
	d := time.Duration(1<<(retryCount-1)) * baseRetryDelay
	if d > maxRetryDelay {
		d = maxRetryDelay
	}
	return d
}

// StartListener keeps a websocket connection to the live feed open and calls
// handle for every update. Returns nil when ctx ends, ErrGaveUp after
// maxRetries failed connection attempts in a row.
func StartListener(ctx context.Context, host string, tls bool, handle func(update *types.LiveUpdate)) error {
	feedUrl := FeedUrl(host, tls)
	retryCount := 0

	for {
		if retryCount > 0 {
			delay := retryDelay(retryCount)
			log.Printf("Retrying connection in %v... (attempt %d/%d)", delay, retryCount+1, maxRetries)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil
			}
		}

		log.Printf("Connecting to %s", feedUrl)
		dialer := *websocket.DefaultDialer
		dialer.HandshakeTimeout = 10 * time.Second
		c, _, err := dialer.DialContext(ctx, feedUrl, nil)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Printf("Connection failed: %v", err)
			retryCount++
			if retryCount >= maxRetries {
				return fmt.Errorf("%w (%d attempts): %w", ErrGaveUp, maxRetries, err)
			}
			continue
		}

		log.Println("Connected! Accepting live updates.")
		retryCount = 0

		connectionBroken := handleConnection(ctx, c, handle)
		c.Close()
		if !connectionBroken {
			return nil
		}
		log.Println("Connection lost, will retry...")
		retryCount = 1
	}
}

// handleConnection returns true when the connection broke and false on shutdown.
func handleConnection(ctx context.Context, c *websocket.Conn, handle func(update *types.LiveUpdate)) bool {
	done := make(chan struct{})

	c.SetReadDeadline(time.Now().Add(readTimeout))
	c.SetPongHandler(func(string) error {
		return c.SetReadDeadline(time.Now().Add(readTimeout))
	})

	go func() {
		defer close(done)
		for {
			messageType, message, err := c.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("WebSocket error: %v", err)
				} else {
					log.Printf("Connection closed: %v", err)
				}
				return
			}
			c.SetReadDeadline(time.Now().Add(readTimeout))

			if messageType != websocket.TextMessage {
				log.Printf("Received unexpected message type: %d", messageType)
				continue
			}
			if update := types.LiveUpdateFromJsonBytes(message); update != nil {
				handle(update)
			} else {
				log.Printf("Failed to parse live update: %s", string(message))
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return true
		case <-ticker.C:
			deadline := time.Now().Add(writeTimeout)
			if err := c.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				log.Printf("Failed to send ping: %v", err)
			}
		case <-ctx.Done():
			err := c.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			if err != nil {
				log.Println("Error sending close message:", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return false
		}
	}
}
