package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"fleet-charging/analytics"
	"fleet-charging/cache"
	"fleet-charging/database"
	"fleet-charging/handlers/base"
	"fleet-charging/models"

	"github.com/labstack/echo/v4"
)

// Default reporting windows applied when no date range is given, matching the
// dashboard's presets per endpoint.
const (
	defaultKPIDays         = 30
	defaultTrendDays       = 30
	defaultHeatmapDays     = 7
	defaultUtilizationDays = 1
)

// AnalyticsHandler serves every energy-efficiency endpoint. Each request
// computes over one consistent store snapshot; results are cached briefly in
// Redis keyed by path and query string.
type AnalyticsHandler struct {
	db     *database.Database
	cache  *cache.Cache
	logger *slog.Logger
	now    func() time.Time
}

func NewAnalyticsHandler(db *database.Database, cacheClient *cache.Cache, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		db:     db,
		cache:  cacheClient,
		logger: logger.With("component", "analytics_handler"),
		now:    time.Now,
	}
}

// ===================================================================
// REQUEST PLUMBING
// ===================================================================

func parseAnalyticsFilter(c echo.Context) (analytics.Filter, error) {
	startDate, err := base.ExtractTimeParam(c, "startDate")
	if err != nil {
		return analytics.Filter{}, err
	}
	endDate, err := base.ExtractTimeParam(c, "endDate")
	if err != nil {
		return analytics.Filter{}, err
	}
	if startDate != nil && endDate != nil && endDate.Before(*startDate) {
		return analytics.Filter{}, base.BadRequestError("endDate must not precede startDate")
	}

	stationIDs, err := base.ExtractIDListParam(c, "stationIds")
	if err != nil {
		return analytics.Filter{}, err
	}
	robotIDs, err := base.ExtractIDListParam(c, "robotIds")
	if err != nil {
		return analytics.Filter{}, err
	}

	return analytics.Filter{
		StartDate:  startDate,
		EndDate:    endDate,
		StationIDs: stationIDs,
		RobotIDs:   robotIDs,
	}, nil
}

// resolveRange turns the filter's optional dates into a concrete period,
// falling back to the last defaultDays days.
func (h *AnalyticsHandler) resolveRange(f analytics.Filter, defaultDays int) analytics.DateRange {
	if f.StartDate != nil && f.EndDate != nil {
		return analytics.DateRange{Start: *f.StartDate, End: *f.EndDate}
	}
	end := h.now()
	return analytics.DateRange{Start: end.AddDate(0, 0, -defaultDays), End: end}
}

func cacheKey(c echo.Context) string {
	return c.Path() + "?" + c.QueryString()
}

// respondCached returns the cached payload when present; otherwise it calls
// compute, caches the result and sends it. Cache failures degrade to compute.
func (h *AnalyticsHandler) respondCached(c echo.Context, compute func() (interface{}, error)) error {
	key := cacheKey(c)
	ctx := c.Request().Context()

	if h.cache != nil {
		var raw json.RawMessage
		hit, err := h.cache.GetJSON(ctx, key, &raw)
		if err != nil {
			h.logger.Warn("Cache read failed", "key", key, slog.Any("error", err))
		} else if hit {
			return c.JSONBlob(http.StatusOK, raw)
		}
	}

	result, err := compute()
	if err != nil {
		return base.HandleRepositoryError(c, err)
	}

	if h.cache != nil {
		if err := h.cache.SetJSON(ctx, key, result); err != nil {
			h.logger.Warn("Cache write failed", "key", key, slog.Any("error", err))
		}
	}
	return c.JSON(http.StatusOK, result)
}

// ===================================================================
// ENDPOINTS
// ===================================================================

// GetKPI returns the headline metrics with period-over-period changes.
func (h *AnalyticsHandler) GetKPI(c echo.Context) error {
	filter, err := parseAnalyticsFilter(c)
	if err != nil {
		return err
	}

	return h.respondCached(c, func() (interface{}, error) {
		snap, err := h.db.TakeSnapshot()
		if err != nil {
			return nil, err
		}

		current := analytics.FilterOrders(snap.Orders, filter)

		var previous []models.ChargingOrder
		if prevFilter, ok := filter.PreviousPeriod(); ok {
			previous = analytics.FilterOrders(snap.Orders, prevFilter)
		}

		stations := analytics.FilterStations(snap.Stations, filter)
		periodHours := h.resolveRange(filter, defaultKPIDays).Hours()

		return analytics.ComputeKPI(current, previous, stations, periodHours, h.now()), nil
	})
}

// GetEfficiencyTrend returns per-station daily efficiency series.
func (h *AnalyticsHandler) GetEfficiencyTrend(c echo.Context) error {
	filter, err := parseAnalyticsFilter(c)
	if err != nil {
		return err
	}

	return h.respondCached(c, func() (interface{}, error) {
		snap, err := h.db.TakeSnapshot()
		if err != nil {
			return nil, err
		}

		orders := analytics.FilterOrders(snap.Orders, filter)
		stations := analytics.FilterStations(snap.Stations, filter)
		rng := h.resolveRange(filter, defaultTrendDays)

		return analytics.EfficiencyTrend(rng, orders, stations), nil
	})
}

// GetEnergyDistribution returns the day x hour energy heatmap.
func (h *AnalyticsHandler) GetEnergyDistribution(c echo.Context) error {
	filter, err := parseAnalyticsFilter(c)
	if err != nil {
		return err
	}

	return h.respondCached(c, func() (interface{}, error) {
		snap, err := h.db.TakeSnapshot()
		if err != nil {
			return nil, err
		}

		orders := analytics.FilterOrders(snap.Orders, filter)
		rng := h.resolveRange(filter, defaultHeatmapDays)

		return analytics.EnergyHeatmap(rng, orders, snap.Stations), nil
	})
}

// GetStationUtilization returns per-station busy/idle hour breakdowns.
func (h *AnalyticsHandler) GetStationUtilization(c echo.Context) error {
	filter, err := parseAnalyticsFilter(c)
	if err != nil {
		return err
	}

	return h.respondCached(c, func() (interface{}, error) {
		snap, err := h.db.TakeSnapshot()
		if err != nil {
			return nil, err
		}

		orders := analytics.FilterOrders(snap.Orders, filter)
		stations := analytics.FilterStations(snap.Stations, filter)
		periodHours := h.resolveRange(filter, defaultUtilizationDays).Hours()

		return analytics.ComputeStationUtilization(orders, stations, periodHours, h.now()), nil
	})
}

// GetRobotBehavior returns per-robot charging pattern summaries.
func (h *AnalyticsHandler) GetRobotBehavior(c echo.Context) error {
	filter, err := parseAnalyticsFilter(c)
	if err != nil {
		return err
	}

	return h.respondCached(c, func() (interface{}, error) {
		snap, err := h.db.TakeSnapshot()
		if err != nil {
			return nil, err
		}

		orders := analytics.FilterOrders(snap.Orders, filter)
		robots := analytics.FilterRobots(snap.Robots, filter)

		return analytics.ComputeRobotBehavior(orders, robots), nil
	})
}

// GetPeakAnalysis returns demand grouped into two-hour slots of the day.
func (h *AnalyticsHandler) GetPeakAnalysis(c echo.Context) error {
	filter, err := parseAnalyticsFilter(c)
	if err != nil {
		return err
	}

	return h.respondCached(c, func() (interface{}, error) {
		snap, err := h.db.TakeSnapshot()
		if err != nil {
			return nil, err
		}

		orders := analytics.FilterOrders(snap.Orders, filter)

		return analytics.ComputePeakAnalysis(orders), nil
	})
}

// GetChargingEvents returns the paginated denormalized event list.
func (h *AnalyticsHandler) GetChargingEvents(c echo.Context) error {
	filter, err := parseAnalyticsFilter(c)
	if err != nil {
		return err
	}
	page := base.ExtractOptionalIntParam(c, "page", 1)
	pageSize := base.ExtractOptionalIntParam(c, "pageSize", 20)
	query := c.QueryParam("query")

	return h.respondCached(c, func() (interface{}, error) {
		snap, err := h.db.TakeSnapshot()
		if err != nil {
			return nil, err
		}

		orders := analytics.FilterOrders(snap.Orders, filter)
		events := analytics.BuildEvents(orders, snap.Robots, snap.Stations)

		return analytics.EventsPage(events, query, page, pageSize), nil
	})
}

// ExportData streams the filtered event list as a CSV or XLSX download.
func (h *AnalyticsHandler) ExportData(c echo.Context) error {
	filter, err := parseAnalyticsFilter(c)
	if err != nil {
		return err
	}
	exportType := base.ExtractOptionalStringParam(c, "exportType", "csv")
	if exportType != "csv" && exportType != "xlsx" {
		return base.BadRequestError("Invalid exportType: must be csv or xlsx")
	}

	snap, err := h.db.TakeSnapshot()
	if err != nil {
		return base.HandleRepositoryError(c, err)
	}

	orders := analytics.FilterOrders(snap.Orders, filter)
	events := analytics.BuildEvents(orders, snap.Robots, snap.Stations)

	var data []byte
	var mime string
	switch exportType {
	case "csv":
		mime = "text/csv"
		data, err = analytics.ExportCSV(events)
	case "xlsx":
		mime = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		data, err = analytics.ExportXLSX(events)
	}
	if err != nil {
		h.logger.Error("Export failed", "type", exportType, slog.Any("error", err))
		return base.InternalServerError("failed to generate export")
	}

	filename := analytics.ExportFilename(exportType, h.now())
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment;filename="+filename)
	return c.Blob(http.StatusOK, mime, data)
}
