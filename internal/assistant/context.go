package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/Saishivram/paperroute/internal/repository"
)

// ContextBuilder gathers owner-scoped business data for a question. The
// question is keyword-routed to the repositories so only the tables the
// owner is actually asking about get queried.
type ContextBuilder struct {
	Employees     *repository.EmployeeRepo
	Customers     *repository.CustomerRepo
	Newspapers    *repository.NewspaperRepo
	Subscriptions *repository.SubscriptionRepo
	Payments      *repository.PaymentRepo
}

// Build returns a plain-text snapshot of the owner's data relevant to
// the message. An empty string means no topic matched; an error means a
// matched topic's query failed and the caller should degrade further.
func (b *ContextBuilder) Build(ctx context.Context, ownerID uint64, message string) (string, error) {
	q := strings.ToLower(message)
	var sb strings.Builder

	if containsAny(q, "employee", "staff", "worker", "deliverer") {
		emps, err := b.Employees.ListByOwner(ctx, ownerID)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&sb, "Employees (%d):\n", len(emps))
		for _, e := range emps {
			fmt.Fprintf(&sb, "- %s (%s), role %s\n", e.Name, e.Email, e.Role)
		}
	}

	if containsAny(q, "customer", "reader", "subscriber") {
		custs, err := b.Customers.ListForOwner(ctx, ownerID)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&sb, "Customers (%d):\n", len(custs))
		for _, cu := range custs {
			fmt.Fprintf(&sb, "- %s, %s, %d subscription(s)\n", cu.Name, cu.Address, len(cu.Subscriptions))
		}
	}

	if containsAny(q, "newspaper", "paper", "publication", "title") {
		papers, err := b.Newspapers.ListByOwner(ctx, ownerID)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&sb, "Newspapers (%d):\n", len(papers))
		for _, n := range papers {
			fmt.Fprintf(&sb, "- %q by %s, %s, price %.2f\n", n.Title, n.Publisher, n.Frequency, n.Price)
		}
	}

	if containsAny(q, "subscription", "subscribe", "renewal") {
		subs, err := b.Subscriptions.ListDetails(ctx, ownerID)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&sb, "Subscriptions (%d):\n", len(subs))
		for _, s := range subs {
			fmt.Fprintf(&sb, "- %s -> %q: %s, fee %.2f, next payment %s\n",
				s.Customer.Name, s.Newspaper.Title, s.Status, s.MonthlyFee, s.NextPaymentDate)
		}
	}

	if containsAny(q, "payment", "revenue", "money", "owed", "due", "late", "overdue") {
		pays, err := b.Payments.ListByOwner(ctx, ownerID)
		if err != nil {
			return "", err
		}
		var total float64
		late := 0
		for _, p := range pays {
			total += p.Amount
			if p.Status == "late" {
				late++
			}
		}
		fmt.Fprintf(&sb, "Payments: %d recorded, %.2f total, %d late.\n", len(pays), total, late)
	}

	return sb.String(), nil
}

func containsAny(haystack string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
