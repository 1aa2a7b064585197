package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/wareledger/wareledger/internal/app/domain/inventory"
	apperrors "github.com/wareledger/wareledger/internal/errors"
	"github.com/wareledger/wareledger/internal/middleware"
)

// filePrefix starts the one parameterised route, /api/file/{kind}/{id}.
const filePrefix = "/api/file/"

func (d *Dispatcher) routeTable() []route {
	get, post, put, del := http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete
	public, authed, admin := middleware.Public, middleware.Authenticated, middleware.Admin
	return []route{
		{get, "/api/config", public, d.config},
		{get, "/api/health", public, d.health},
		{get, "/api/auth/check", public, d.authCheck},
		{post, "/api/auth/login", public, d.login},
		{post, "/api/auth/logout", public, d.logout},

		{get, "/api/objects", public, d.listObjects},
		{get, "/api/search", public, d.searchObjects},
		{get, "/api/object", public, d.getObject},
		{get, "/api/object_details", public, d.objectDetails},
		{post, "/api/object", authed, d.createObject},
		{put, "/api/object", authed, d.updateObject},
		{del, "/api/object", authed, d.deleteObject},

		{get, "/api/sellers", public, d.listSellers},
		{get, "/api/seller", public, d.getSeller},
		{post, "/api/seller", authed, d.createSeller},
		{put, "/api/seller", authed, d.updateSeller},
		{del, "/api/seller", authed, d.deleteSeller},

		{get, "/api/themes", public, d.listThemes},
		{get, "/api/theme", public, d.getTheme},
		{post, "/api/theme", authed, d.createTheme},
		{put, "/api/theme", authed, d.updateTheme},
		{del, "/api/theme", authed, d.deleteTheme},

		{get, "/api/receipt", public, d.getReceipt},
		{post, "/api/receipt", authed, d.createReceipt},
		{put, "/api/receipt", authed, d.updateReceipt},
		{del, "/api/receipt", authed, d.deleteReceipt},

		{get, "/api/writeoff", public, d.getWriteOff},
		{post, "/api/writeoff", authed, d.createWriteOff},
		{put, "/api/writeoff", authed, d.updateWriteOff},
		{del, "/api/writeoff", authed, d.deleteWriteOff},

		{get, "/api/pricing", public, d.getPricing},
		{post, "/api/pricing", authed, d.createPricing},
		{put, "/api/pricing", authed, d.updatePricing},
		{del, "/api/pricing", authed, d.deletePricing},

		{get, "/api/users", admin, d.listUsers},
		{get, "/api/user", admin, d.getUser},
		{post, "/api/user", admin, d.createUser},
		{put, "/api/user", admin, d.updateUser},
		{del, "/api/user", admin, d.deleteUser},

		{get, "/api/logs", admin, d.listLogs},
		{get, "/api/requests", admin, d.listRequests},
	}
}

func (d *Dispatcher) fileRoute() route {
	return route{http.MethodGet, filePrefix + "{kind}/{id}", middleware.Public, d.file}
}

// fileParams splits "{kind}/{id}". Anything else is an invalid file path.
func fileParams(rest string) (map[string]string, error) {
	kind, id, ok := strings.Cut(rest, "/")
	if !ok || id == "" || strings.Contains(id, "/") {
		return nil, apperrors.Validation("Invalid file path")
	}
	if _, err := inventory.ParseFileKind(kind); err != nil {
		return nil, apperrors.Validation("Invalid file path")
	}
	if _, err := strconv.ParseUint(id, 10, 63); err != nil {
		return nil, apperrors.Validation("Invalid file path")
	}
	return map[string]string{"kind": kind, "id": id}, nil
}
