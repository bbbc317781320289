package http

import (
	"worldforge/internal/server/core"
	"worldforge/internal/server/storage"

	"github.com/gofiber/fiber/v2"
)

func catalogFilter(c *fiber.Ctx) storage.CatalogFilter {
	return storage.CatalogFilter{
		Query:     c.Query("q"),
		CreatedBy: c.Query("createdBy"),
	}
}

// registerRaces mounts /races; writes require a session
func (h *HTTPHandler) registerRaces(r fiber.Router, authRequired fiber.Handler) {
	r.Get("/races", h.GetRaces)
	r.Post("/races", authRequired, h.CreateRace)
	r.Patch("/races", authRequired, h.UpdateRace)
	r.Delete("/races", authRequired, h.DeleteRace)
}

func (h *HTTPHandler) GetRaces(c *fiber.Ctx) error {
	if c.Query("id") != "" {
		id, err := resourceID(c)
		if err != nil {
			return h.writeError(c, err)
		}
		race, err := h.svc.GetRace(c.UserContext(), id)
		if err != nil {
			return h.writeError(c, err)
		}
		return c.JSON(core.ItemResponse{OK: true, Item: race})
	}

	races, err := h.svc.ListRaces(c.UserContext(), catalogFilter(c))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(core.RowsResponse{OK: true, Rows: races})
}

func (h *HTTPHandler) CreateRace(c *fiber.Ctx) error {
	var req core.RaceRequest
	if err := parseValidBody(c, &req); err != nil {
		return h.writeError(c, err)
	}

	userID, _ := c.Locals(localUserID).(string)
	race, err := h.svc.CreateRace(c.UserContext(), userID, req)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(core.ItemResponse{OK: true, Item: race})
}

func (h *HTTPHandler) UpdateRace(c *fiber.Ctx) error {
	id, err := resourceID(c)
	if err != nil {
		return h.writeError(c, err)
	}
	var req core.RaceRequest
	if err := parseValidBody(c, &req); err != nil {
		return h.writeError(c, err)
	}

	race, err := h.svc.UpdateRace(c.UserContext(), id, req)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(core.ItemResponse{OK: true, Item: race})
}

func (h *HTTPHandler) DeleteRace(c *fiber.Ctx) error {
	id, err := resourceID(c)
	if err != nil {
		return h.writeError(c, err)
	}

	deleted, err := h.svc.DeleteRace(c.UserContext(), id)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(core.ItemResponse{OK: true, Item: deleted})
}

// registerCatalogs mounts one route set per flat catalog table
func (h *HTTPHandler) registerCatalogs(r fiber.Router, authRequired fiber.Handler) {
	for _, t := range storage.CatalogTables {
		path := "/" + t.Resource
		r.Get(path, h.getCatalog(t))
		r.Post(path, authRequired, h.createCatalogItem(t))
		r.Patch(path, authRequired, h.updateCatalogItem(t))
		r.Delete(path, authRequired, h.deleteCatalogItem(t))
	}
}

func (h *HTTPHandler) getCatalog(t *storage.CatalogTable) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Query("id") != "" {
			id, err := resourceID(c)
			if err != nil {
				return h.writeError(c, err)
			}
			item, err := h.svc.GetCatalogItem(c.UserContext(), t, id)
			if err != nil {
				return h.writeError(c, err)
			}
			return c.JSON(core.ItemResponse{OK: true, Item: item})
		}

		rows, err := h.svc.ListCatalog(c.UserContext(), t, catalogFilter(c))
		if err != nil {
			return h.writeError(c, err)
		}
		return c.JSON(core.RowsResponse{OK: true, Rows: rows})
	}
}

func (h *HTTPHandler) createCatalogItem(t *storage.CatalogTable) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var fields core.CatalogFields
		if err := parseBody(c, &fields); err != nil {
			return h.writeError(c, err)
		}

		userID, _ := c.Locals(localUserID).(string)
		item, err := h.svc.CreateCatalogItem(c.UserContext(), userID, t, fields)
		if err != nil {
			return h.writeError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(core.ItemResponse{OK: true, Item: item})
	}
}

func (h *HTTPHandler) updateCatalogItem(t *storage.CatalogTable) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := resourceID(c)
		if err != nil {
			return h.writeError(c, err)
		}
		var fields core.CatalogFields
		if err := parseBody(c, &fields); err != nil {
			return h.writeError(c, err)
		}

		item, err := h.svc.UpdateCatalogItem(c.UserContext(), t, id, fields)
		if err != nil {
			return h.writeError(c, err)
		}
		return c.JSON(core.ItemResponse{OK: true, Item: item})
	}
}

func (h *HTTPHandler) deleteCatalogItem(t *storage.CatalogTable) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := resourceID(c)
		if err != nil {
			return h.writeError(c, err)
		}

		deleted, err := h.svc.DeleteCatalogItem(c.UserContext(), t, id)
		if err != nil {
			return h.writeError(c, err)
		}
		return c.JSON(core.ItemResponse{OK: true, Item: deleted})
	}
}
