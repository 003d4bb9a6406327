package billing

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// The billing provider's payloads are not shape-stable: keys arrive in
// snake_case or camelCase depending on the endpoint, booleans may be strings,
// amounts may be numbers or numeric strings, and dates may be ISO strings or
// unix timestamps. Everything is normalized here, once, at the boundary;
// heterogeneous shapes never leak past this package.

// NormalizeProject converts a raw provider project payload into the
// canonical RemoteProject shape.
func NormalizeProject(raw map[string]json.RawMessage) (*RemoteProject, error) {
	id, err := asString(pick(raw, "id", "project_id", "projectId"))
	if err != nil || id == "" {
		return nil, fmt.Errorf("billing: project payload missing id: %w", err)
	}

	p := &RemoteProject{ID: id}
	p.Title, _ = asString(pick(raw, "title", "name"))
	p.Description, _ = asString(pick(raw, "description", "details"))
	p.ClientID, _ = asString(pick(raw, "client_id", "clientId", "customer_id", "customerId"))

	if v := pick(raw, "completed", "is_completed", "isCompleted"); v != nil {
		completed, err := asBool(v)
		if err != nil {
			return nil, fmt.Errorf("billing: invalid completed flag: %w", err)
		}
		p.Completed = completed
	}
	if v := pick(raw, "progress"); v != nil {
		n, err := asInt64(v)
		if err != nil {
			return nil, fmt.Errorf("billing: invalid progress: %w", err)
		}
		progress := int(n)
		p.Progress = &progress
	}
	if v := pick(raw, "due_date", "dueDate", "deadline"); v != nil {
		t, err := asTime(v)
		if err != nil {
			return nil, fmt.Errorf("billing: invalid due date: %w", err)
		}
		p.DueDate = t
	}
	if v := pick(raw, "budget"); v != nil {
		n, err := asInt64(v)
		if err != nil {
			return nil, fmt.Errorf("billing: invalid budget: %w", err)
		}
		p.Budget = &n
	}
	if v := pick(raw, "fixed_price", "fixedPrice", "is_fixed_price"); v != nil {
		fixed, err := asBool(v)
		if err != nil {
			return nil, fmt.Errorf("billing: invalid fixed price flag: %w", err)
		}
		p.FixedPrice = fixed
	}
	if v := pick(raw, "fixed_price_amount", "fixedPriceAmount"); v != nil {
		n, err := asInt64(v)
		if err != nil {
			return nil, fmt.Errorf("billing: invalid fixed price amount: %w", err)
		}
		p.FixedPriceAmount = &n
	}

	return p, nil
}

// NormalizeClient converts a raw provider client payload into the canonical
// RemoteClient shape.
func NormalizeClient(raw map[string]json.RawMessage) (*RemoteClient, error) {
	id, err := asString(pick(raw, "id", "client_id", "clientId"))
	if err != nil || id == "" {
		return nil, fmt.Errorf("billing: client payload missing id: %w", err)
	}
	c := &RemoteClient{ID: id}
	c.Name, _ = asString(pick(raw, "name", "contact_name", "contactName"))
	c.Email, _ = asString(pick(raw, "email"))
	c.Organization, _ = asString(pick(raw, "organization", "company", "company_name"))
	return c, nil
}

// NormalizeInvoice converts a raw provider invoice payload into the
// canonical RemoteInvoice shape.
func NormalizeInvoice(raw map[string]json.RawMessage) (*RemoteInvoice, error) {
	number, err := asString(pick(raw, "number", "invoice_number", "invoiceNumber", "id"))
	if err != nil || number == "" {
		return nil, fmt.Errorf("billing: invoice payload missing number: %w", err)
	}

	inv := &RemoteInvoice{Number: number}
	inv.ProjectID, _ = asString(pick(raw, "project_id", "projectId"))
	inv.Currency, _ = asString(pick(raw, "currency"))
	inv.Status, _ = asString(pick(raw, "status", "state"))

	if v := pick(raw, "amount", "total", "total_amount"); v != nil {
		amount, err := asDecimal(v)
		if err != nil {
			return nil, fmt.Errorf("billing: invalid invoice amount: %w", err)
		}
		inv.Amount = amount
	}
	if v := pick(raw, "issued_at", "issuedAt", "date"); v != nil {
		t, err := asTime(v)
		if err != nil {
			return nil, fmt.Errorf("billing: invalid issue date: %w", err)
		}
		inv.IssuedAt = t
	}
	if v := pick(raw, "paid_at", "paidAt"); v != nil {
		t, err := asTime(v)
		if err != nil {
			return nil, fmt.Errorf("billing: invalid paid date: %w", err)
		}
		inv.PaidAt = t
	}

	return inv, nil
}

// pick returns the first present key from the raw payload
func pick(raw map[string]json.RawMessage, keys ...string) json.RawMessage {
	for _, k := range keys {
		if v, ok := raw[k]; ok && string(v) != "null" {
			return v
		}
	}
	return nil
}

func asString(v json.RawMessage) (string, error) {
	if v == nil {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s, nil
	}
	// Numeric IDs arrive unquoted from some endpoints
	var n json.Number
	if err := json.Unmarshal(v, &n); err == nil {
		return n.String(), nil
	}
	return "", fmt.Errorf("value %s is not a string", string(v))
}

func asBool(v json.RawMessage) (bool, error) {
	var b bool
	if err := json.Unmarshal(v, &b); err == nil {
		return b, nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "yes", "1":
			return true, nil
		case "false", "no", "0", "":
			return false, nil
		}
		return false, fmt.Errorf("value %q is not a boolean", s)
	}
	var n float64
	if err := json.Unmarshal(v, &n); err == nil {
		return n != 0, nil
	}
	return false, fmt.Errorf("value %s is not a boolean", string(v))
}

func asInt64(v json.RawMessage) (int64, error) {
	var n json.Number
	if err := json.Unmarshal(v, &n); err == nil {
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		if f, err := n.Float64(); err == nil {
			return int64(f), nil
		}
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("value %q is not an integer", s)
		}
		return i, nil
	}
	return 0, fmt.Errorf("value %s is not an integer", string(v))
}

func asDecimal(v json.RawMessage) (decimal.Decimal, error) {
	var n json.Number
	if err := json.Unmarshal(v, &n); err == nil {
		return decimal.NewFromString(n.String())
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return decimal.NewFromString(strings.TrimSpace(s))
	}
	return decimal.Zero, fmt.Errorf("value %s is not a decimal", string(v))
}

// asTime accepts RFC3339 strings, bare dates, and unix second timestamps
func asTime(v json.RawMessage) (*time.Time, error) {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, nil
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02", "2006-01-02 15:04:05"} {
			if t, err := time.Parse(layout, s); err == nil {
				return &t, nil
			}
		}
		return nil, fmt.Errorf("value %q is not a recognized date", s)
	}
	var n int64
	if err := json.Unmarshal(v, &n); err == nil {
		if n == 0 {
			return nil, nil
		}
		t := time.Unix(n, 0).UTC()
		return &t, nil
	}
	return nil, fmt.Errorf("value %s is not a recognized date", string(v))
}
