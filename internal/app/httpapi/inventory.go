package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/wareledger/wareledger/internal/app/domain/inventory"
	invsvc "github.com/wareledger/wareledger/internal/app/services/inventory"
)

// --- objects ----------------------------------------------------------------

func (d *Dispatcher) listObjects(w http.ResponseWriter, req *request) error {
	objects, err := d.app.Inventory.ListObjects(req.ctx())
	if err != nil {
		return err
	}
	return writeJSON(w, orEmpty(objects))
}

func (d *Dispatcher) searchObjects(w http.ResponseWriter, req *request) error {
	objects, err := d.app.Inventory.SearchObjects(req.ctx(), req.queryValue("type"), req.queryValue("value"))
	if err != nil {
		return err
	}
	return writeJSON(w, orEmpty(objects))
}

func (d *Dispatcher) getObject(w http.ResponseWriter, req *request) error {
	id, err := req.queryID("id", "object")
	if err != nil {
		return err
	}
	obj, err := d.app.Inventory.GetObject(req.ctx(), id)
	if err != nil {
		return err
	}
	return writeJSON(w, obj)
}

func (d *Dispatcher) objectDetails(w http.ResponseWriter, req *request) error {
	id, err := req.queryID("id", "object")
	if err != nil {
		return err
	}
	details, err := d.app.Inventory.ObjectDetails(req.ctx(), id)
	if err != nil {
		return err
	}
	return writeJSON(w, details)
}

func (d *Dispatcher) createObject(w http.ResponseWriter, req *request) error {
	name := req.field("objectName")
	id, err := d.app.Inventory.CreateObject(req.ctx(), name)
	if err != nil {
		return err
	}
	return created(w, id, fmt.Sprintf("Объект \"%s\" успешно создан", name))
}

func (d *Dispatcher) updateObject(w http.ResponseWriter, req *request) error {
	id, err := req.bodyID("object")
	if err != nil {
		return err
	}
	name := req.field("objectName")
	if err := d.app.Inventory.UpdateObject(req.ctx(), id, name); err != nil {
		return err
	}
	return done(w, fmt.Sprintf("Объект \"%s\" успешно обновлён", name))
}

func (d *Dispatcher) deleteObject(w http.ResponseWriter, req *request) error {
	id, err := req.queryID("id", "object")
	if err != nil {
		return err
	}
	if err := d.app.Inventory.DeleteObject(req.ctx(), id); err != nil {
		return err
	}
	return done(w, "Объект успешно удалён")
}

// --- sellers ----------------------------------------------------------------

func (d *Dispatcher) listSellers(w http.ResponseWriter, req *request) error {
	sellers, err := d.app.Inventory.ListSellers(req.ctx())
	if err != nil {
		return err
	}
	return writeJSON(w, orEmpty(sellers))
}

func (d *Dispatcher) getSeller(w http.ResponseWriter, req *request) error {
	id, err := req.queryID("id", "seller")
	if err != nil {
		return err
	}
	seller, err := d.app.Inventory.GetSeller(req.ctx(), id)
	if err != nil {
		return err
	}
	return writeJSON(w, seller)
}

func (d *Dispatcher) createSeller(w http.ResponseWriter, req *request) error {
	name := req.field("name")
	id, err := d.app.Inventory.CreateSeller(req.ctx(), name, req.field("inn"), req.field("kpp"))
	if err != nil {
		return err
	}
	return created(w, id, fmt.Sprintf("Поставщик \"%s\" успешно создан", name))
}

func (d *Dispatcher) updateSeller(w http.ResponseWriter, req *request) error {
	id, err := req.bodyID("seller")
	if err != nil {
		return err
	}
	seller := inventory.Seller{ID: id, Name: req.field("name"), INN: req.field("inn"), KPP: req.field("kpp")}
	if err := d.app.Inventory.UpdateSeller(req.ctx(), seller); err != nil {
		return err
	}
	return done(w, fmt.Sprintf("Поставщик \"%s\" успешно обновлён", seller.Name))
}

func (d *Dispatcher) deleteSeller(w http.ResponseWriter, req *request) error {
	id, err := req.queryID("id", "seller")
	if err != nil {
		return err
	}
	if err := d.app.Inventory.DeleteSeller(req.ctx(), id); err != nil {
		return err
	}
	return done(w, "Поставщик успешно удалён")
}

// --- themes -----------------------------------------------------------------

func (d *Dispatcher) listThemes(w http.ResponseWriter, req *request) error {
	themes, err := d.app.Inventory.ListThemes(req.ctx())
	if err != nil {
		return err
	}
	return writeJSON(w, orEmpty(themes))
}

func (d *Dispatcher) getTheme(w http.ResponseWriter, req *request) error {
	id, err := req.queryID("id", "theme")
	if err != nil {
		return err
	}
	theme, err := d.app.Inventory.GetTheme(req.ctx(), id)
	if err != nil {
		return err
	}
	return writeJSON(w, theme)
}

func (d *Dispatcher) createTheme(w http.ResponseWriter, req *request) error {
	name := req.field("name")
	id, err := d.app.Inventory.CreateTheme(req.ctx(), name)
	if err != nil {
		return err
	}
	return created(w, id, fmt.Sprintf("Тема \"%s\" успешно создана", name))
}

func (d *Dispatcher) updateTheme(w http.ResponseWriter, req *request) error {
	id, err := req.bodyID("theme")
	if err != nil {
		return err
	}
	name := req.field("name")
	if err := d.app.Inventory.UpdateTheme(req.ctx(), id, name); err != nil {
		return err
	}
	return done(w, fmt.Sprintf("Тема \"%s\" успешно обновлена", name))
}

func (d *Dispatcher) deleteTheme(w http.ResponseWriter, req *request) error {
	id, err := req.queryID("id", "theme")
	if err != nil {
		return err
	}
	if err := d.app.Inventory.DeleteTheme(req.ctx(), id); err != nil {
		return err
	}
	return done(w, "Тема успешно удалена")
}

// --- receipts ---------------------------------------------------------------

func (d *Dispatcher) getReceipt(w http.ResponseWriter, req *request) error {
	id, err := req.queryID("id", "receipt")
	if err != nil {
		return err
	}
	receipt, err := d.app.Inventory.GetReceipt(req.ctx(), id)
	if err != nil {
		return err
	}
	return writeJSON(w, receipt)
}

func (d *Dispatcher) createReceipt(w http.ResponseWriter, req *request) error {
	var (
		rr  invsvc.ReceiptRequest
		err error
	)
	if rr.ObjectID, err = req.optionalInt("objectId"); err != nil {
		return err
	}
	if rr.SellerID, err = req.optionalInt("sellerId"); err != nil {
		return err
	}
	if rr.ThemeID, err = req.optionalInt("themeId"); err != nil {
		return err
	}
	if rr.Quantity, err = req.intOr("quantity", 0); err != nil {
		return err
	}
	if rr.Bill, err = req.document("bill"); err != nil {
		return err
	}
	if rr.Invoice, err = req.document("invoice"); err != nil {
		return err
	}
	if rr.EntryControl, err = req.document("entryControl"); err != nil {
		return err
	}
	rr.NewObjectName = req.field("newObjectName")
	rr.NewThemeName = req.field("newThemeName")
	if name := req.field("newSellerName"); name != "" {
		rr.NewSeller = &invsvc.NewSeller{Name: name, INN: req.field("newSellerInn"), KPP: req.field("newSellerKpp")}
	}
	rr.SellerObjectName = req.field("sellerObjectName")
	rr.Location = req.field("location")

	id, err := d.app.Inventory.CreateReceipt(req.ctx(), rr)
	if err != nil {
		return err
	}
	return created(w, id, fmt.Sprintf(
		"Поступление успешно зарегистрировано!\n\nКоличество: %d шт.\nСчёт: %s\nНакладная: %s",
		rr.Quantity, orDash(rr.Bill.Number), orDash(rr.Invoice.Number),
	))
}

func (d *Dispatcher) updateReceipt(w http.ResponseWriter, req *request) error {
	var (
		u   inventory.ReceiptUpdate
		err error
	)
	if u.ID, err = req.bodyID("receipt"); err != nil {
		return err
	}
	if u.ObjectID, err = req.idField("objectId"); err != nil {
		return err
	}
	if u.SellerID, err = req.idField("sellerId"); err != nil {
		return err
	}
	if u.ThemeID, err = req.idField("themeId"); err != nil {
		return err
	}
	if u.Quantity, err = req.intField("quantity"); err != nil {
		return err
	}
	if u.Bill, err = req.replacementDocument("bill"); err != nil {
		return err
	}
	if u.Invoice, err = req.replacementDocument("invoice"); err != nil {
		return err
	}
	if u.EntryControl, err = req.replacementDocument("entryControl"); err != nil {
		return err
	}
	u.SellerObjectName = req.field("sellerObjectName")
	u.Location = req.field("location")

	if err := d.app.Inventory.UpdateReceipt(req.ctx(), u); err != nil {
		return err
	}
	return done(w, "Поступление успешно обновлено")
}

func (d *Dispatcher) deleteReceipt(w http.ResponseWriter, req *request) error {
	id, err := req.queryID("id", "receipt")
	if err != nil {
		return err
	}
	if err := d.app.Inventory.DeleteReceipt(req.ctx(), id); err != nil {
		return err
	}
	return done(w, "Поступление успешно удалено")
}

// --- writeoffs --------------------------------------------------------------

func (d *Dispatcher) getWriteOff(w http.ResponseWriter, req *request) error {
	id, err := req.queryID("id", "writeoff")
	if err != nil {
		return err
	}
	wo, err := d.app.Inventory.GetWriteOff(req.ctx(), id)
	if err != nil {
		return err
	}
	return writeJSON(w, wo)
}

func (d *Dispatcher) createWriteOff(w http.ResponseWriter, req *request) error {
	var (
		wr  invsvc.WriteOffRequest
		err error
	)
	objectID, err := req.optionalInt("objectId")
	if err != nil {
		return err
	}
	if objectID != nil {
		wr.ObjectID = *objectID
	}
	if wr.ThemeID, err = req.optionalInt("themeId"); err != nil {
		return err
	}
	if wr.Quantity, err = req.intOr("quantity", 0); err != nil {
		return err
	}
	if wr.Date, err = req.date("writeoffDate"); err != nil {
		return err
	}
	wr.Document = req.attachment("writeoffDocument")
	wr.NewThemeName = req.field("newThemeName")

	id, err := d.app.Inventory.CreateWriteOff(req.ctx(), wr)
	if err != nil {
		return err
	}
	return created(w, id, fmt.Sprintf("Списание успешно зарегистрировано!\n\nКоличество: %d шт.", wr.Quantity))
}

func (d *Dispatcher) updateWriteOff(w http.ResponseWriter, req *request) error {
	var (
		in  inventory.WriteOffInput
		err error
	)
	if in.ID, err = req.bodyID("writeoff"); err != nil {
		return err
	}
	if in.ObjectID, err = req.idField("objectId"); err != nil {
		return err
	}
	if in.ThemeID, err = req.optionalInt("themeId"); err != nil {
		return err
	}
	if in.Quantity, err = req.intField("quantity"); err != nil {
		return err
	}
	if in.Date, err = req.date("writeoffDate"); err != nil {
		return err
	}
	in.Document = req.attachment("writeoffDocument")

	if err := d.app.Inventory.UpdateWriteOff(req.ctx(), in); err != nil {
		return err
	}
	return done(w, "Списание успешно обновлено")
}

func (d *Dispatcher) deleteWriteOff(w http.ResponseWriter, req *request) error {
	id, err := req.queryID("id", "writeoff")
	if err != nil {
		return err
	}
	if err := d.app.Inventory.DeleteWriteOff(req.ctx(), id); err != nil {
		return err
	}
	return done(w, "Списание успешно удалено")
}

// --- files ------------------------------------------------------------------

func (d *Dispatcher) file(w http.ResponseWriter, req *request) error {
	kind, err := inventory.ParseFileKind(req.params["kind"])
	if err != nil {
		return err
	}
	id, err := strconv.ParseInt(req.params["id"], 10, 64)
	if err != nil {
		return err
	}
	f, err := d.app.Inventory.File(req.ctx(), kind, id)
	if err != nil {
		return err
	}
	writeFile(w, f.File, f.Name())
	return nil
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
