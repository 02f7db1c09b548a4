package controllers

import (
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v5"
	"github.com/mbarden/gopull/internal/app"
	"github.com/mbarden/gopull/internal/domain"
)

type TransfersController struct {
	App *app.Context
}

// Create enqueues a new transfer.
func (ctrl *TransfersController) Create(c *echo.Context) error {
	var req CreateTransferRequest
	if err := c.Bind(&req); err != nil {
		return c.String(http.StatusBadRequest, "invalid request body")
	}
	if req.URL == "" {
		return c.String(http.StatusBadRequest, "url is required")
	}

	cfg := ctrl.App.Config
	name := domain.DeriveName(req.URL)

	dest := req.Dest
	if dest == "" {
		dest = filepath.Join(cfg.Download.OutDir, name)
	}
	workers := req.Workers
	if workers <= 0 {
		workers = cfg.Download.Workers
	}

	job := &domain.TransferJob{
		URL:     req.URL,
		Dest:    dest,
		Workers: workers,
		Timeout: cfg.Download.Timeout(),
	}

	item, err := ctrl.App.Queue.Add(job, name)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, NewTransferResponse(item))
}

// List returns every known transfer, with live counters for items that are
// currently running.
func (ctrl *TransfersController) List(c *echo.Context) error {
	items, err := ctrl.App.Store.GetQueueItems()
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	resp := make([]TransferResponse, 0, len(items))
	for _, item := range items {
		// Prefer the in-memory item: its state carries live byte counts.
		if live, ok := ctrl.App.Queue.GetItem(item.ID); ok {
			item = live
		}
		resp = append(resp, NewTransferResponse(item))
	}
	return c.JSON(http.StatusOK, resp)
}

// Get returns one transfer by ID.
func (ctrl *TransfersController) Get(c *echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.String(http.StatusBadRequest, "missing id")
	}

	item, ok := ctrl.App.Queue.GetItem(id)
	if !ok {
		return c.NoContent(http.StatusNotFound)
	}
	return c.JSON(http.StatusOK, NewTransferResponse(item))
}

// Cancel aborts a pending or running transfer.
func (ctrl *TransfersController) Cancel(c *echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.String(http.StatusBadRequest, "missing id")
	}

	if !ctrl.App.Queue.Cancel(id) {
		return c.NoContent(http.StatusNotFound)
	}
	return c.NoContent(http.StatusOK)
}
