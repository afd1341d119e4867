package commerce

import (
	"context"

	pkgerrors "github.com/hos-market/storefront-api/pkg/errors"
	"github.com/shopspring/decimal"
)

const getCheckoutQuery = `
query GetCheckout($id: ID!) {
  checkout(id: $id) {
    id
    token
    email
    channel
    lines {
      id
      quantity
      variant {
        id
        name
        product {
          id
          name
          seller {
            id
            storeName
            sellerType
          }
        }
      }
      totalPrice {
        gross { amount currency }
        tax { amount currency }
      }
    }
    subtotalPrice { gross { amount currency } }
    shippingPrice { gross { amount currency } }
    totalPrice {
      gross { amount currency }
      tax { amount currency }
    }
  }
}`

const createCheckoutMutation = `
mutation CreateCheckout($email: String, $channel: String, $lines: [CheckoutLineInput!]!) {
  checkoutCreate(input: { email: $email, channel: $channel, lines: $lines }) {
    checkout {
      id
      token
    }
    errors {
      field
      message
      code
    }
  }
}`

const deleteCheckoutLinesMutation = `
mutation DeleteCheckoutLines($checkoutId: ID!, $lines: [ID!]!) {
  checkoutLinesDelete(checkoutId: $checkoutId, lines: $lines) {
    checkout {
      id
    }
    errors {
      field
      message
      code
    }
  }
}`

const createPaymentMutation = `
mutation CheckoutPaymentCreate($checkoutId: ID!, $input: PaymentInput!) {
  checkoutPaymentCreate(checkoutId: $checkoutId, input: $input) {
    payment {
      id
    }
    errors {
      field
      message
      code
    }
  }
}`

const completeCheckoutMutation = `
mutation CompleteCheckout($checkoutId: ID!) {
  checkoutComplete(checkoutId: $checkoutId) {
    order {
      id
    }
    errors {
      field
      message
      code
    }
  }
}`

// GetCheckout fetches the checkout snapshot with its full line tree.
func (c *Client) GetCheckout(ctx context.Context, checkoutID string) (*Checkout, error) {
	var result struct {
		Checkout *Checkout `json:"checkout"`
	}
	if err := c.do(ctx, "GetCheckout", getCheckoutQuery, map[string]any{"id": checkoutID}, &result); err != nil {
		return nil, err
	}
	if result.Checkout == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout not found")
	}
	return result.Checkout, nil
}

// CreateCheckoutInput carries everything needed to open a checkout session.
type CreateCheckoutInput struct {
	Email   string
	Channel string
	Lines   []LineInput
}

// CreateCheckout opens a new backend checkout session for the given lines.
func (c *Client) CreateCheckout(ctx context.Context, input CreateCheckoutInput) (*CheckoutRef, error) {
	lines := make([]map[string]any, len(input.Lines))
	for i, line := range input.Lines {
		lines[i] = map[string]any{"variantId": line.VariantID, "quantity": line.Quantity}
	}

	variables := map[string]any{"lines": lines}
	if input.Email != "" {
		variables["email"] = input.Email
	}
	channel := input.Channel
	if channel == "" {
		channel = c.channel
	}
	if channel != "" {
		variables["channel"] = channel
	}

	var result struct {
		CheckoutCreate struct {
			Checkout *CheckoutRef     `json:"checkout"`
			Errors   []APIErrorDetail `json:"errors"`
		} `json:"checkoutCreate"`
	}
	if err := c.do(ctx, "CreateCheckout", createCheckoutMutation, variables, &result); err != nil {
		return nil, err
	}
	if len(result.CheckoutCreate.Errors) > 0 {
		return nil, backendError("checkoutCreate", result.CheckoutCreate.Errors)
	}
	if result.CheckoutCreate.Checkout == nil || result.CheckoutCreate.Checkout.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "backend returned no checkout")
	}
	return result.CheckoutCreate.Checkout, nil
}

// DeleteCheckoutLines removes the given lines from a checkout session.
func (c *Client) DeleteCheckoutLines(ctx context.Context, checkoutID string, lineIDs []string) error {
	var result struct {
		CheckoutLinesDelete struct {
			Errors []APIErrorDetail `json:"errors"`
		} `json:"checkoutLinesDelete"`
	}
	variables := map[string]any{"checkoutId": checkoutID, "lines": lineIDs}
	if err := c.do(ctx, "DeleteCheckoutLines", deleteCheckoutLinesMutation, variables, &result); err != nil {
		return err
	}
	if len(result.CheckoutLinesDelete.Errors) > 0 {
		return backendError("checkoutLinesDelete", result.CheckoutLinesDelete.Errors)
	}
	return nil
}

// PaymentInput selects a gateway and tokenized payment method for a session.
type PaymentInput struct {
	Gateway string
	Token   string
	Amount  decimal.Decimal
}

// CreatePayment attaches a payment to the checkout session.
func (c *Client) CreatePayment(ctx context.Context, checkoutID string, input PaymentInput) error {
	var result struct {
		CheckoutPaymentCreate struct {
			Errors []APIErrorDetail `json:"errors"`
		} `json:"checkoutPaymentCreate"`
	}
	variables := map[string]any{
		"checkoutId": checkoutID,
		"input": map[string]any{
			"gateway": input.Gateway,
			"token":   input.Token,
			"amount":  input.Amount,
		},
	}
	if err := c.do(ctx, "CheckoutPaymentCreate", createPaymentMutation, variables, &result); err != nil {
		return err
	}
	if len(result.CheckoutPaymentCreate.Errors) > 0 {
		return backendError("checkoutPaymentCreate", result.CheckoutPaymentCreate.Errors)
	}
	return nil
}

// CompleteCheckout finalizes the session and returns the created order id.
func (c *Client) CompleteCheckout(ctx context.Context, checkoutID string) (string, error) {
	var result struct {
		CheckoutComplete struct {
			Order *struct {
				ID string `json:"id"`
			} `json:"order"`
			Errors []APIErrorDetail `json:"errors"`
		} `json:"checkoutComplete"`
	}
	variables := map[string]any{"checkoutId": checkoutID}
	if err := c.do(ctx, "CompleteCheckout", completeCheckoutMutation, variables, &result); err != nil {
		return "", err
	}
	if len(result.CheckoutComplete.Errors) > 0 {
		return "", backendError("checkoutComplete", result.CheckoutComplete.Errors)
	}
	if result.CheckoutComplete.Order == nil || result.CheckoutComplete.Order.ID == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "backend completed checkout without an order")
	}
	return result.CheckoutComplete.Order.ID, nil
}
