package httpapi

import (
	"net/http"
	"strings"

	"github.com/wareledger/wareledger/internal/app/domain/pricing"
)

// getPricing serves ?id= (one), ?receipt_id= ({} when none) or the full list.
func (d *Dispatcher) getPricing(w http.ResponseWriter, req *request) error {
	switch {
	case strings.TrimSpace(req.queryValue("id")) != "":
		id, err := req.queryID("id", "pricing")
		if err != nil {
			return err
		}
		p, err := d.app.Pricing.Get(req.ctx(), id)
		if err != nil {
			return err
		}
		return writeJSON(w, p)

	case strings.TrimSpace(req.queryValue("receipt_id")) != "":
		receiptID, err := req.queryID("receipt_id", "receipt")
		if err != nil {
			return err
		}
		p, ok, err := d.app.Pricing.ByReceipt(req.ctx(), receiptID)
		if err != nil {
			return err
		}
		if !ok {
			return writeJSON(w, struct{}{})
		}
		return writeJSON(w, p)

	default:
		list, err := d.app.Pricing.List(req.ctx())
		if err != nil {
			return err
		}
		return writeJSON(w, orEmpty(list))
	}
}

func (d *Dispatcher) createPricing(w http.ResponseWriter, req *request) error {
	receiptID, err := req.idField("receiptId")
	if err != nil {
		return err
	}
	price, err := req.floatField("price", 0, false)
	if err != nil {
		return err
	}
	tax, err := req.floatField("tax", pricing.DefaultTax, true)
	if err != nil {
		return err
	}
	id, err := d.app.Pricing.Create(req.ctx(), receiptID, price, tax)
	if err != nil {
		return err
	}
	return created(w, id, "Цена успешно добавлена")
}

func (d *Dispatcher) updatePricing(w http.ResponseWriter, req *request) error {
	id, err := req.bodyID("pricing")
	if err != nil {
		return err
	}
	price, err := req.floatField("price", 0, false)
	if err != nil {
		return err
	}
	tax, err := req.floatField("tax", 0, false)
	if err != nil {
		return err
	}
	if err := d.app.Pricing.Update(req.ctx(), id, price, tax); err != nil {
		return err
	}
	return done(w, "Цена успешно обновлена")
}

func (d *Dispatcher) deletePricing(w http.ResponseWriter, req *request) error {
	id, err := req.queryID("id", "pricing")
	if err != nil {
		return err
	}
	if err := d.app.Pricing.Delete(req.ctx(), id); err != nil {
		return err
	}
	return done(w, "Цена успешно удалена")
}
