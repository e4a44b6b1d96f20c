package assistant

import "strings"

// Canned replies used when the completion service is unavailable. The
// reply is picked by the same keyword routing as the context builder so
// the degraded answer still points the owner somewhere useful.

const degradedReply = "I'm having trouble reaching your business data right now. " +
	"Please try again in a moment."

// FallbackReply returns a canned response matching the message topic.
func FallbackReply(message string) string {
	q := strings.ToLower(message)
	switch {
	case containsAny(q, "payment", "revenue", "money", "due", "late", "overdue"):
		return "I can't reach the assistant service right now. You can review payments, " +
			"late payments and revenue under the Payments tab."
	case containsAny(q, "subscription", "subscribe", "renewal"):
		return "I can't reach the assistant service right now. Subscriptions and their " +
			"next payment dates are listed under the Subscriptions tab."
	case containsAny(q, "delivery", "deliveries", "route"):
		return "I can't reach the assistant service right now. Today's deliveries and " +
			"their statuses are on the Deliveries board."
	case containsAny(q, "employee", "staff", "customer", "newspaper"):
		return "I can't reach the assistant service right now. Employee, customer and " +
			"newspaper records are available from the dashboard."
	default:
		return "I can't reach the assistant service right now. Please try again shortly."
	}
}

// DegradedReply is returned when the business-data lookup itself failed,
// which is worse than an LLM outage: nothing topical can be offered.
func DegradedReply() string { return degradedReply }
