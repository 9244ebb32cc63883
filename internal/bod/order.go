package bod

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrUnsupportedRequestFormat = errors.New("unsupported request format")

// DescriptionPrefix starts every call description built from an order.
const DescriptionPrefix = "Beverage request: "

// ZoneResolver maps a location code to a zone id. A nil id with a nil error
// means the location is unknown upstream.
type ZoneResolver interface {
	Resolve(ctx context.Context, location string) (*int, error)
}

// OrderRequest is the canonical form of an inbound vendor order: the drink
// that drives call matching, the ordering location and its resolved zone,
// and a human-readable summary of the whole cart.
type OrderRequest struct {
	Drink       string `json:"drink"`
	Location    string `json:"location"`
	Zone        *int   `json:"zone"`
	Description string `json:"description"`
}

// envelope mirrors the vendor payload. Field casing follows the wire format,
// including the capitalized Location key.
type envelope struct {
	Order struct {
		Cart []cartItem `json:"cart"`
	} `json:"order"`
	Cabinet struct {
		Location string `json:"Location"`
	} `json:"cabinet"`
}

type cartItem struct {
	Name     string     `json:"name"`
	Modified []modifier `json:"modified"`
}

type modifier struct {
	Name string `json:"name"`
}

// ParseOrder validates a raw vendor payload and normalizes it into an
// OrderRequest. Drink and location are taken verbatim, no trimming or case
// changes. A location the resolver does not know yields a nil Zone and is
// not a failure; resolver errors are.
func ParseOrder(ctx context.Context, raw []byte, zones ZoneResolver) (*OrderRequest, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: invalid order payload: %v", ErrUnsupportedRequestFormat, err)
	}

	cart := env.Order.Cart
	if len(cart) == 0 {
		return nil, fmt.Errorf("%w: order cart is empty", ErrUnsupportedRequestFormat)
	}
	if cart[0].Name == "" {
		return nil, fmt.Errorf("%w: first cart item has no name", ErrUnsupportedRequestFormat)
	}
	if env.Cabinet.Location == "" {
		return nil, fmt.Errorf("%w: cabinet location is missing", ErrUnsupportedRequestFormat)
	}

	req := &OrderRequest{
		Drink:       cart[0].Name,
		Location:    env.Cabinet.Location,
		Description: renderDescription(cart),
	}

	zoneID, err := zones.Resolve(ctx, req.Location)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve zone for location %s: %w", req.Location, err)
	}
	req.Zone = zoneID
	return req, nil
}

// renderDescription lists every cart line, each with its modifiers in a
// parenthetical when it has any.
func renderDescription(cart []cartItem) string {
	var builder strings.Builder
	builder.WriteString(DescriptionPrefix)
	for i, item := range cart {
		if i > 0 {
			builder.WriteString(", ")
		}
		builder.WriteString(item.Name)
		if len(item.Modified) == 0 {
			continue
		}
		builder.WriteString(" (with ")
		for j, mod := range item.Modified {
			if j > 0 {
				builder.WriteString(", ")
			}
			builder.WriteString(mod.Name)
		}
		builder.WriteString(")")
	}
	return builder.String()
}
