package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/Dahilon/Atlas/internal/domain/models"
	drepo "github.com/Dahilon/Atlas/internal/domain/repository"

	"github.com/gorilla/websocket"
)

// Client implements an ArticleStream backed by the upstream news-feed
// WebSocket.
type Client struct {
	apiKey         string
	websocketURL   string
	channels       []string
	reconnectDelay time.Duration
	pingInterval   time.Duration

	conn      *websocket.Conn
	connected bool
}

// New creates a new feed ArticleStream.
func New(apiKey, websocketURL string, channels []string, reconnectDelay, pingInterval time.Duration) drepo.ArticleStream {
	return &Client{
		apiKey:         apiKey,
		websocketURL:   websocketURL,
		channels:       channels,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
	}
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	u := fmt.Sprintf("%s?token=%s", c.websocketURL, c.apiKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("feed connect: %w", err)
	}
	c.conn = conn
	c.connected = true
	log.Printf("feed: connected")
	return nil
}

// Subscribe subscribes to configured channels.
func (c *Client) Subscribe(ctx context.Context) error {
	if c.conn == nil || !c.connected {
		return fmt.Errorf("feed not connected")
	}
	for _, ch := range c.channels {
		msg := map[string]string{"type": "subscribe", "channel": ch}
		if err := c.conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", ch, err)
		}
		log.Printf("feed: subscribed %s", ch)
	}
	return nil
}

type feedArticle struct {
	ID          string   `json:"id"`
	Source      string   `json:"source"`
	Title       string   `json:"title"`
	Text        string   `json:"text"`
	PublishedAt string   `json:"published_at"`
	CountryCode string   `json:"country_code"`
	EntityCount int      `json:"entity_count"`
	Goldstein   *float64 `json:"goldstein_scale,omitempty"`
	QuadClass   *int     `json:"quad_class,omitempty"`
}

func (d feedArticle) toModel() *models.Article {
	return &models.Article{
		ID:             d.ID,
		Source:         d.Source,
		Title:          d.Title,
		Text:           d.Text,
		PublishedAt:    d.PublishedAt,
		CountryCode:    d.CountryCode,
		EntityCount:    d.EntityCount,
		GoldsteinScale: d.Goldstein,
		QuadClass:      d.QuadClass,
	}
}

type feedMessage struct {
	Type string        `json:"type"`
	Data []feedArticle `json:"data"`
}

// Read streams Article events and errors.
func (c *Client) Read(ctx context.Context) (<-chan *models.Article, <-chan error) {
	articles := make(chan *models.Article, 1024)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if c.conn != nil {
					_ = c.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(articles)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if c.conn == nil {
					errs <- fmt.Errorf("feed conn nil")
					return
				}
				_, b, err := c.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("feed read: %w", err)
					return
				}
				var m feedMessage
				if err := json.Unmarshal(b, &m); err != nil {
					// ignore non-article frames
					continue
				}
				if m.Type != "article" {
					continue
				}
				for _, d := range m.Data {
					a := d.toModel()
					select {
					case articles <- a:
					default:
						// drop on backpressure
					}
				}
			}
		}
	}()

	return articles, errs
}

// Reconnect closes and reconnects.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.reconnectDelay)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the WS connection.
func (c *Client) Close() error {
	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool { return c.connected }
