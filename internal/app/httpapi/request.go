package httpapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/wareledger/wareledger/internal/app/domain/inventory"
	apperrors "github.com/wareledger/wareledger/internal/errors"
	"github.com/wareledger/wareledger/internal/multipart"
)

// request is what an operation sees: query, decoded body and path
// parameters of one HTTP request.
type request struct {
	r      *http.Request
	query  url.Values
	body   multipart.Body
	params map[string]string
}

func (q *request) ctx() context.Context { return q.r.Context() }

func (q *request) field(name string) string { return q.body.Field(name) }

func (q *request) queryValue(name string) string { return q.query.Get(name) }

// queryID reads a required numeric id from the query string. A missing id is
// reported as not found, a malformed one as a validation error.
func (q *request) queryID(name, entity string) (int64, error) {
	return requiredInt(q.query.Get(name), name, "Missing "+entity+" id")
}

// bodyID is queryID for a body field.
func (q *request) bodyID(entity string) (int64, error) {
	return requiredInt(q.field("id"), "id", "Missing "+entity+" id")
}

// idField reads a required reference id from the body, such as objectId.
func (q *request) idField(name string) (int64, error) {
	return requiredInt(q.field(name), name, "Missing "+name)
}

// intField reads a required integer body field.
func (q *request) intField(name string) (int64, error) {
	v, err := q.optionalInt(name)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 0, apperrors.Validation("Missing " + name)
	}
	return *v, nil
}

// optionalInt reads an integer body field; blank gives nil.
func (q *request) optionalInt(name string) (*int64, error) {
	raw := strings.TrimSpace(q.field(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, apperrors.Validationf("invalid %s: %q", name, raw)
	}
	return &v, nil
}

// intOr reads an integer body field with a default for blank input.
func (q *request) intOr(name string, def int64) (int64, error) {
	v, err := q.optionalInt(name)
	if err != nil || v == nil {
		return def, err
	}
	return *v, nil
}

// floatField reads a float body field. Blank input uses def when hasDef is
// set and is an error otherwise.
func (q *request) floatField(name string, def float64, hasDef bool) (float64, error) {
	raw := strings.TrimSpace(q.field(name))
	if raw == "" {
		if hasDef {
			return def, nil
		}
		return 0, apperrors.Validation("Missing " + name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apperrors.Validationf("invalid %s: %q", name, raw)
	}
	return v, nil
}

func (q *request) date(name string) (inventory.Date, error) {
	d, err := inventory.ParseDate(q.field(name))
	if err != nil {
		return inventory.Date{}, apperrors.Validation(err.Error())
	}
	return d, nil
}

func (q *request) attachment(name string) inventory.Attachment {
	f, ok := q.body.File(name)
	if !ok {
		return inventory.Attachment{}
	}
	return inventory.Attachment{Filename: f.Filename, Data: f.Data}
}

// document reads <prefix>Number, <prefix>Date and <prefix>File.
func (q *request) document(prefix string) (inventory.Document, error) {
	d, err := q.date(prefix + "Date")
	if err != nil {
		return inventory.Document{}, err
	}
	return inventory.Document{
		Number: q.field(prefix + "Number"),
		Date:   d,
		File:   q.attachment(prefix + "File"),
	}, nil
}

// replacementDocument returns nil unless any part of the document was sent.
func (q *request) replacementDocument(prefix string) (*inventory.Document, error) {
	_, hasFile := q.body.File(prefix + "File")
	if !q.body.Has(prefix+"Number") && !q.body.Has(prefix+"Date") && !hasFile {
		return nil, nil
	}
	d, err := q.document(prefix)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func requiredInt(raw, name, missing string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, apperrors.NotFound(missing)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperrors.Validationf("invalid %s: %q", name, raw)
	}
	return v, nil
}
