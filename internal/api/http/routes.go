package httpapi

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/stazionemeteococito/meteo-archive/internal/excerpt"
	"github.com/stazionemeteococito/meteo-archive/internal/meteo"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *meteo.Service, excerpts *excerpt.Generator) {
	v1 := app.Group("/api/v1")

	v1.Get("/observations", func(c *fiber.Ctx) error {
		var req rangeQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		obs, err := service.Range(req.From, req.To)
		if err != nil {
			if errors.Is(err, meteo.ErrInvalidRange) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to query observations")
		}

		if req.Symbol != "" {
			obs = filterBySymbol(obs, meteo.Symbol(req.Symbol))
		}

		return c.JSON(fiber.Map{
			"from":         req.From,
			"to":           req.To,
			"observations": obs,
		})
	})

	v1.Get("/observations/current", func(c *fiber.Ctx) error {
		latest, err := service.Current()
		if err != nil {
			if errors.Is(err, meteo.ErrNoData) {
				return fiber.NewError(fiber.StatusNotFound, "archive is empty")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read archive")
		}
		return c.JSON(latest)
	})

	v1.Get("/observations/snapshot", func(c *fiber.Ctx) error {
		snap, err := service.Snapshot(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "snapshot fetch failed: "+err.Error())
		}
		return c.JSON(snap)
	})

	v1.Get("/stats", func(c *fiber.Ctx) error {
		var req rangeQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		symbols, err := parseSymbols(c.Query("symbols"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		obs, err := service.Range(req.From, req.To)
		if err != nil {
			if errors.Is(err, meteo.ErrInvalidRange) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to query observations")
		}

		stats, err := meteo.Compute(obs, symbols...)
		if err != nil {
			if errors.Is(err, meteo.ErrEmptyInput) {
				return fiber.NewError(fiber.StatusNotFound, "no observations in requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to compute statistics")
		}

		return c.JSON(fiber.Map{
			"from":  req.From,
			"to":    req.To,
			"stats": stats,
		})
	})

	v1.Get("/excerpts/:period", func(c *fiber.Ctx) error {
		var texts []string
		var err error

		switch c.Params("period") {
		case "current":
			texts, err = excerpts.Current()
		case "day":
			texts, err = excerpts.Day()
		case "week":
			texts, err = excerpts.Week()
		case "month":
			texts, err = excerpts.Month()
		case "report":
			texts, err = excerpts.Report(c.Context())
		default:
			return fiber.NewError(fiber.StatusBadRequest, "period must be one of current, day, week, month, report")
		}

		if err != nil {
			if errors.Is(err, meteo.ErrNoData) || errors.Is(err, meteo.ErrEmptyInput) {
				return fiber.NewError(fiber.StatusNotFound, "no observations for requested period")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to generate excerpts")
		}

		return c.JSON(fiber.Map{"excerpts": texts})
	})

	v1.Post("/update", func(c *fiber.Ctx) error {
		added, err := service.Update(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "update cycle failed: "+err.Error())
		}
		return c.JSON(fiber.Map{"added": added})
	})
}

// rangeQuery holds query parameters for range-bounded endpoints.
type rangeQuery struct {
	From   time.Time `validate:"required"`
	To     time.Time `validate:"required,gtefield=From"`
	Symbol string
}

func (r *rangeQuery) bind(c *fiber.Ctx) error {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}
	r.From = from
	r.To = to

	if sym := c.Query("symbol"); sym != "" {
		if _, ok := meteo.FromSymbol(meteo.Symbol(sym)); !ok {
			return errors.New("unknown symbol: " + sym)
		}
		r.Symbol = sym
	}

	return validate.Struct(r)
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.UTC(), nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}

func parseSymbols(s string) ([]meteo.Symbol, error) {
	if s == "" {
		return nil, nil
	}
	var symbols []meteo.Symbol
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, ok := meteo.FromSymbol(meteo.Symbol(part)); !ok {
			return nil, errors.New("unknown symbol: " + part)
		}
		symbols = append(symbols, meteo.Symbol(part))
	}
	return symbols, nil
}

func filterBySymbol(obs []meteo.Observation, sym meteo.Symbol) []meteo.Observation {
	filtered := make([]meteo.Observation, 0, len(obs))
	for _, o := range obs {
		if o.Symbol == sym {
			filtered = append(filtered, o)
		}
	}
	return filtered
}
