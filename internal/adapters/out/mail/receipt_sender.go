package mail

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	cartdom "storefront/internal/domain/cart"
)

// EmailClient sends one email. Implemented by SendGridClient.
type EmailClient interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

// EmailResolver maps a principal uid to a deliverable address.
type EmailResolver interface {
	EmailByUID(ctx context.Context, uid string) (string, error)
}

// ReceiptSender implements the cart usecase's ReceiptNotifier: a plain-text
// checkout receipt, best-effort (the caller logs failures and moves on).
type ReceiptSender struct {
	Client   EmailClient
	Resolver EmailResolver
	From     string
}

func NewReceiptSender(client EmailClient, resolver EmailResolver, from string) *ReceiptSender {
	return &ReceiptSender{Client: client, Resolver: resolver, From: strings.TrimSpace(from)}
}

func (s *ReceiptSender) CheckoutCompleted(ctx context.Context, ownerID string, c *cartdom.Cart) error {
	if s == nil || s.Client == nil || s.Resolver == nil {
		return errors.New("receipt_sender: not configured")
	}
	if c == nil {
		return errors.New("receipt_sender: cart is nil")
	}

	to, err := s.Resolver.EmailByUID(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("receipt_sender: resolve email: %w", err)
	}
	if strings.TrimSpace(to) == "" {
		return errors.New("receipt_sender: owner has no email")
	}

	subject := fmt.Sprintf("Order confirmation %s", c.ID)
	return s.Client.Send(ctx, s.From, to, subject, receiptBody(c))
}

func receiptBody(c *cartdom.Cart) string {
	pids := make([]string, 0, len(c.Lines))
	for pid := range c.Lines {
		pids = append(pids, pid)
	}
	sort.Strings(pids)

	var b strings.Builder
	b.WriteString("Thank you for your order.\n\n")
	for _, pid := range pids {
		ln := c.Lines[pid]
		fmt.Fprintf(&b, "- product %s  x%d  @ %d\n", pid, ln.Qty, ln.Price)
	}
	fmt.Fprintf(&b, "\nTotal: %d\n", c.Total())
	return b.String()
}
