package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/monocle-dev/bertostore/internal/models"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type DiscordWebhookField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type DiscordEmbed struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Color       int                   `json:"color"`
	Fields      []DiscordWebhookField `json:"fields"`
	Footer      *DiscordFooter        `json:"footer,omitempty"`
	Timestamp   string                `json:"timestamp"`
}

type DiscordFooter struct {
	Text string `json:"text"`
}

type DiscordWebhookRequest struct {
	Username string         `json:"username"`
	Embeds   []DiscordEmbed `json:"embeds"`
}

type SlackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type SlackAttachment struct {
	Color     string       `json:"color"`
	Title     string       `json:"title"`
	Text      string       `json:"text"`
	Fields    []SlackField `json:"fields"`
	Footer    string       `json:"footer"`
	Timestamp int64        `json:"ts"`
}

type SlackWebhookRequest struct {
	Username    string            `json:"username"`
	IconEmoji   string            `json:"icon_emoji,omitempty"`
	Text        string            `json:"text"`
	Attachments []SlackAttachment `json:"attachments"`
}

const (
	ColorGreen  = 65280    // #00FF00 new order
	ColorOrange = 16753920 // #FFA500 low stock

	Username = "BertoStore"

	requestTimeout = 10 * time.Second
)

// Notifier posts admin alerts to the configured Discord and Slack webhooks.
// With neither configured every call is a no-op.
type Notifier struct {
	discordURL string
	slackURL   string
	client     *http.Client
	now        func() time.Time
}

func NewNotifier(discordURL, slackURL string) *Notifier {
	return &Notifier{
		discordURL: strings.TrimSpace(discordURL),
		slackURL:   strings.TrimSpace(slackURL),
		client:     &http.Client{Timeout: requestTimeout},
		now:        time.Now,
	}
}

func (n *Notifier) Enabled() bool {
	return n != nil && (n.discordURL != "" || n.slackURL != "")
}

func money(amount float64) string {
	return "$" + decimal.NewFromFloat(amount).StringFixed(2)
}

func (n *Notifier) OrderPlaced(ctx context.Context, order models.Order) error {
	if !n.Enabled() {
		return nil
	}

	units := 0

	for _, item := range order.Items {
		units += item.Quantity
	}

	now := n.now()

	discord := DiscordWebhookRequest{
		Username: Username,
		Embeds: []DiscordEmbed{
			{
				Title:       fmt.Sprintf("New order %s", order.OrderNumber),
				Description: fmt.Sprintf("**%s** placed an order for %d item(s).", order.Shipping.FullName, units),
				Color:       ColorGreen,
				Fields: []DiscordWebhookField{
					{Name: "Order", Value: order.OrderNumber, Inline: true},
					{Name: "Status", Value: string(order.Status), Inline: true},
					{Name: "Total", Value: money(order.Total), Inline: true},
					{Name: "Subtotal", Value: money(order.Subtotal), Inline: true},
					{Name: "Shipping", Value: money(order.ShippingFee), Inline: true},
					{Name: "Ship to", Value: fmt.Sprintf("%s, %s, %s", order.Shipping.City, order.Shipping.State, order.Shipping.Country), Inline: false},
				},
				Footer:    &DiscordFooter{Text: "BertoStore orders"},
				Timestamp: now.Format(time.RFC3339),
			},
		},
	}

	slack := SlackWebhookRequest{
		Username:  Username,
		IconEmoji: ":shopping_trolley:",
		Text:      fmt.Sprintf(":shopping_trolley: *New order %s*", order.OrderNumber),
		Attachments: []SlackAttachment{
			{
				Color: "good",
				Title: fmt.Sprintf("%s placed an order for %d item(s)", order.Shipping.FullName, units),
				Text:  order.Notes,
				Fields: []SlackField{
					{Title: "Total", Value: money(order.Total), Short: true},
					{Title: "Status", Value: string(order.Status), Short: true},
					{Title: "Email", Value: order.Shipping.Email, Short: true},
					{Title: "Country", Value: order.Shipping.Country, Short: true},
				},
				Footer:    "BertoStore orders",
				Timestamp: now.Unix(),
			},
		},
	}

	return n.send(ctx, discord, slack)
}

// LowStock reports products that have fallen below threshold units.
func (n *Notifier) LowStock(ctx context.Context, products []models.Product, threshold int) error {
	if !n.Enabled() || len(products) == 0 {
		return nil
	}

	now := n.now()
	discordFields := make([]DiscordWebhookField, 0, len(products))
	slackFields := make([]SlackField, 0, len(products))

	for _, product := range products {
		value := fmt.Sprintf("%d left (%s)", product.Stock, product.SupplierName)
		discordFields = append(discordFields, DiscordWebhookField{Name: product.Title, Value: value, Inline: false})
		slackFields = append(slackFields, SlackField{Title: product.Title, Value: value, Short: false})
	}

	summary := fmt.Sprintf("%d product(s) have fewer than %d units in stock.", len(products), threshold)

	discord := DiscordWebhookRequest{
		Username: Username,
		Embeds: []DiscordEmbed{
			{
				Title:       "Low stock",
				Description: summary,
				Color:       ColorOrange,
				Fields:      discordFields,
				Footer:      &DiscordFooter{Text: "BertoStore inventory"},
				Timestamp:   now.Format(time.RFC3339),
			},
		},
	}

	slack := SlackWebhookRequest{
		Username:  Username,
		IconEmoji: ":warning:",
		Text:      ":warning: *Low stock*",
		Attachments: []SlackAttachment{
			{
				Color:     "warning",
				Title:     summary,
				Fields:    slackFields,
				Footer:    "BertoStore inventory",
				Timestamp: now.Unix(),
			},
		},
	}

	return n.send(ctx, discord, slack)
}

func (n *Notifier) send(ctx context.Context, discord DiscordWebhookRequest, slack SlackWebhookRequest) error {
	group, ctx := errgroup.WithContext(ctx)

	if n.discordURL != "" {
		group.Go(func() error {
			return errors.Wrap(n.post(ctx, n.discordURL, discord), "discord")
		})
	}

	if n.slackURL != "" {
		group.Go(func() error {
			return errors.Wrap(n.post(ctx, n.slackURL, slack), "slack")
		})
	}

	return group.Wait()
}

func (n *Notifier) post(ctx context.Context, webhookURL string, payload interface{}) error {
	body, err := json.Marshal(payload)

	if err != nil {
		return errors.Wrap(err, "marshal webhook payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))

	if err != nil {
		return errors.Wrap(err, "build webhook request")
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)

	if err != nil {
		return errors.Wrap(err, "send webhook")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return errors.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
