package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/forestar-be/forestar-facturation/internal/export"
	"github.com/forestar-be/forestar-facturation/internal/resolver"
	"github.com/forestar-be/forestar-facturation/internal/view"
	"github.com/forestar-be/forestar-facturation/pkg/models"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handler) ListReconciliations(c *gin.Context) {
	list, err := h.backend.ListReconciliations(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	type listItem struct {
		models.ReconciliationSummary
		DisplayTitle string `json:"displayTitle"`
		StatusLabel  string `json:"statusLabel"`
	}
	items := make([]listItem, len(list))
	for i := range list {
		items[i] = listItem{
			ReconciliationSummary: list[i],
			DisplayTitle:          list[i].DisplayTitle(h.location),
			StatusLabel:           view.StatusLabel(list[i].Status),
		}
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (h *Handler) GetReconciliation(c *gin.Context) {
	details, err := h.backend.FetchReconciliation(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": details})
}

func (h *Handler) DeleteReconciliation(c *gin.Context) {
	if err := h.backend.DeleteReconciliation(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "reconciliation deleted"})
}

func (h *Handler) UpdateTitle(c *gin.Context) {
	var req models.UpdateTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if err := req.Validate(); err != nil {
		h.fail(c, err)
		return
	}
	if err := h.backend.UpdateTitle(c.Request.Context(), c.Param("id"), req); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "title updated", "title": req.Title})
}

func (h *Handler) GetStatus(c *gin.Context) {
	report, err := h.backend.GetStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": report, "message": report.StatusMessage()})
}

// ActiveReconciliation returns the job followed by the checkpoint, if any.
func (h *Handler) ActiveReconciliation(c *gin.Context) {
	if h.tracker == nil {
		c.JSON(http.StatusOK, gin.H{"active": false})
		return
	}
	state, err := h.tracker.Active(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	if state == nil {
		c.JSON(http.StatusOK, gin.H{"active": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"active": true, "data": state})
}

// Project returns one page of the filtered and sorted view.
func (h *Handler) Project(c *gin.Context) {
	state, err := stateFromQuery(c, h.itemsPerPage)
	if err != nil {
		h.fail(c, err)
		return
	}
	details, err := h.backend.FetchReconciliation(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	projection := view.ProjectDetails(details, state)
	counts := make(map[string]int, len(projection.FilterCounts))
	labels := make(map[string]string, len(projection.AvailableFilters))
	for f, n := range projection.FilterCounts {
		counts[string(f)] = n
	}
	for _, f := range projection.AvailableFilters {
		labels[string(f)] = view.FilterLabel(f)
	}

	c.JSON(http.StatusOK, gin.H{
		"state":            state,
		"page":             projection.Page,
		"availableFilters": projection.AvailableFilters,
		"filterLabels":     labels,
		"filterCounts":     counts,
		"totalGroups":      projection.TotalGroups,
		"hasActiveFilters": projection.HasActiveFilters,
	})
}

func (h *Handler) Statistics(c *gin.Context) {
	details, err := h.backend.FetchReconciliation(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": view.ComputeStatistics(details)})
}

// Export downloads the filtered and sorted view, all pages, as xlsx.
func (h *Handler) Export(c *gin.Context) {
	state, err := stateFromQuery(c, h.itemsPerPage)
	if err != nil {
		h.fail(c, err)
		return
	}
	details, err := h.backend.FetchReconciliation(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	projection := view.ProjectDetails(details, state)
	meta := export.Meta{
		ReconciliationID:   details.ID,
		ReconciliationName: details.DisplayTitle(h.location),
		ReferenceDate:      details.ReferenceDate(),
		SearchTerm:         state.SearchTerm,
		Filters:            state.Filters,
		Sort:               state.Sort,
		ExportedAt:         time.Now(),
		Location:           h.location,
	}
	data, err := export.Snapshot(projection.Items, meta)
	if err != nil {
		h.fail(c, err)
		return
	}

	name := export.FileName(meta)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(name)))
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (h *Handler) Suggestions(c *gin.Context) {
	suggestions, err := h.backend.FetchSuggestions(c.Request.Context(), c.Param("id"), c.Param("invoiceId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": suggestions})
}

// ResolveMultiple applies a decision to the competing matches of an invoice.
// The matches are read from a fresh snapshot, never from the request.
func (h *Handler) ResolveMultiple(c *gin.Context) {
	var decision resolver.Decision
	if err := c.ShouldBindJSON(&decision); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	ctx := c.Request.Context()
	recID, invoiceID := c.Param("id"), c.Param("invoiceId")

	details, err := h.backend.FetchReconciliation(ctx, recID)
	if err != nil {
		h.fail(c, err)
		return
	}
	groups := view.GroupMatches(details.Matches, view.NewLookup(details.Invoices, details.Transactions))
	group, ok := view.FindGroup(groups, invoiceID)
	if !ok {
		h.fail(c, &models.ValidationError{Field: "invoiceId", Value: invoiceID, Message: "no matches for this invoice"})
		return
	}
	if !group.IsOriginallyMultiple {
		h.fail(c, ErrNotMultiple)
		return
	}

	result, err := h.resolver.ResolveMultiple(ctx, recID, invoiceID, group.Matches, decision)
	if err != nil && !errors.Is(err, resolver.ErrReloadFailed) {
		h.fail(c, err)
		return
	}

	body := gin.H{
		"resolutionId": result.ResolutionID,
		"deleted":      result.Deleted,
		"survivor":     result.Survivor,
		"reloaded":     result.Reloaded != nil,
	}
	if err != nil {
		body["warning"] = err.Error()
	}
	c.JSON(http.StatusOK, body)
}

func (h *Handler) CreateMatch(c *gin.Context) {
	var req models.CreateMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	match, err := h.backend.CreateMatch(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "match created", "match": match})
}

func (h *Handler) UpdateMatch(c *gin.Context) {
	var req models.UpdateMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	match, err := h.backend.UpdateMatch(c.Request.Context(), c.Param("id"), c.Param("matchId"), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "match updated", "match": match})
}

func (h *Handler) DeleteMatch(c *gin.Context) {
	if err := h.backend.DeleteMatch(c.Request.Context(), c.Param("id"), c.Param("matchId")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "match deleted"})
}

func (h *Handler) ValidateMatch(c *gin.Context) {
	h.review(c, "match validated", h.backend.ValidateMatch)
}

func (h *Handler) RejectMatch(c *gin.Context) {
	h.review(c, "match rejected", h.backend.RejectMatch)
}

type reviewFunc func(ctx context.Context, reconciliationID, matchID string, notes []string) (*models.Match, error)

func (h *Handler) review(c *gin.Context, message string, fn reviewFunc) {
	var req models.ReviewRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
	}
	match, err := fn(c.Request.Context(), c.Param("id"), c.Param("matchId"), req.Notes)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "match": match})
}
