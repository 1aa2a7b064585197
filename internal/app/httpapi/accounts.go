package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/wareledger/wareledger/internal/app/metrics"
	"github.com/wareledger/wareledger/internal/app/services/accounts"
	apperrors "github.com/wareledger/wareledger/internal/errors"
	"github.com/wareledger/wareledger/internal/httputil"
	"github.com/wareledger/wareledger/internal/middleware"
)

func (d *Dispatcher) config(w http.ResponseWriter, _ *request) error {
	return writeJSON(w, map[string]interface{}{
		"company_name": d.site.companyName,
		"has_logo":     d.site.hasLogo(),
	})
}

func (d *Dispatcher) health(w http.ResponseWriter, req *request) error {
	report := d.app.Health.Check(req.ctx())
	status := http.StatusOK
	if report.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	httputil.WriteJSON(w, status, report)
	return nil
}

func (d *Dispatcher) authCheck(w http.ResponseWriter, req *request) error {
	user, ok := d.app.Accounts.Current(req.ctx(), middleware.TokenFromRequest(req.r))
	if !ok {
		return writeJSON(w, map[string]interface{}{"authenticated": false})
	}
	return writeJSON(w, map[string]interface{}{"authenticated": true, "user": user})
}

func (d *Dispatcher) login(w http.ResponseWriter, req *request) error {
	result, err := d.app.Accounts.Login(req.ctx(), req.field("username"), req.field("password"))
	if err != nil {
		if apperrors.HTTPStatus(err) == http.StatusUnauthorized {
			metrics.RecordLogin("failure")
			d.log.LogSecurityEvent(req.ctx(), "login_failed", map[string]interface{}{
				"username":    req.field("username"),
				"remote_addr": req.r.RemoteAddr,
			})
		}
		return err
	}
	metrics.RecordLogin("success")

	setSessionCookie(w, result.Token)
	return writeJSON(w, map[string]interface{}{
		"success":    true,
		"session_id": result.Token,
		"user":       result.User,
	})
}

func (d *Dispatcher) logout(w http.ResponseWriter, req *request) error {
	d.app.Accounts.Logout(req.ctx(), middleware.TokenFromRequest(req.r))
	clearSessionCookie(w)
	return writeJSON(w, map[string]interface{}{"success": true})
}

// --- users ------------------------------------------------------------------

func (d *Dispatcher) listUsers(w http.ResponseWriter, req *request) error {
	users, err := d.app.Accounts.ListUsers(req.ctx())
	if err != nil {
		return err
	}
	return writeJSON(w, users)
}

func (d *Dispatcher) getUser(w http.ResponseWriter, req *request) error {
	id, err := req.queryID("id", "user")
	if err != nil {
		return err
	}
	user, err := d.app.Accounts.GetUser(req.ctx(), id)
	if err != nil {
		return err
	}
	return writeJSON(w, user)
}

func (d *Dispatcher) createUser(w http.ResponseWriter, req *request) error {
	username := req.field("username")
	id, err := d.app.Accounts.CreateUser(req.ctx(), username, req.field("password"), isTrue(req.field("admin")))
	if err != nil {
		return err
	}
	return created(w, id, fmt.Sprintf("Пользователь \"%s\" успешно создан", username))
}

func (d *Dispatcher) updateUser(w http.ResponseWriter, req *request) error {
	id, err := req.bodyID("user")
	if err != nil {
		return err
	}
	u := accounts.UserUpdate{
		ID:       id,
		Username: req.field("username"),
		Admin:    isTrue(req.field("admin")),
		Password: req.field("password"),
	}
	if err := d.app.Accounts.UpdateUser(req.ctx(), u); err != nil {
		return err
	}
	return done(w, fmt.Sprintf("Пользователь \"%s\" успешно обновлён", u.Username))
}

func (d *Dispatcher) deleteUser(w http.ResponseWriter, req *request) error {
	id, err := req.queryID("id", "user")
	if err != nil {
		return err
	}
	if err := d.app.Accounts.DeleteUser(req.ctx(), id); err != nil {
		return err
	}
	return done(w, "Пользователь успешно удалён")
}

// --- logs -------------------------------------------------------------------

func (d *Dispatcher) listLogs(w http.ResponseWriter, req *request) error {
	limit, err := queryInt(req, "limit", 0)
	if err != nil {
		return err
	}
	offset, err := queryInt(req, "offset", 0)
	if err != nil {
		return err
	}
	page, err := d.app.Audit.List(req.ctx(), req.queryValue("search"), limit, offset)
	if err != nil {
		return err
	}
	return writeJSON(w, page)
}

func (d *Dispatcher) listRequests(w http.ResponseWriter, req *request) error {
	limit, err := queryInt(req, "limit", 0)
	if err != nil {
		return err
	}
	return writeJSON(w, d.journal.Recent(limit))
}

func queryInt(req *request, name string, def int) (int, error) {
	raw := strings.TrimSpace(req.queryValue(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.Validationf("invalid %s: %q", name, raw)
	}
	return v, nil
}

func isTrue(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "true")
}
