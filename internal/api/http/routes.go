package httpapi

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weekend-getaway-finder/internal/store"
	"github.com/i474232898/weekend-getaway-finder/internal/trip"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, engine *trip.Engine, history trip.HistoryLog) {
	v1 := app.Group("/api/v1")

	v1.Get("/trips/search", func(c *fiber.Ctx) error {
		var req searchQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		result, err := engine.Search(c.Context(), trip.SearchRequest{
			Origin:       req.Origin,
			Destination:  req.Destination,
			Range:        trip.DateRange{Start: req.From, End: req.To},
			LongWeekends: req.Long,
		})
		if err != nil {
			if errors.Is(err, trip.ErrInvalidRange) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "search failed")
		}

		return c.JSON(result)
	})

	v1.Get("/trips/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if req.Origin == "" && req.Destination == "" {
			return c.JSON(fiber.Map{
				"searches": history.Recent(req.Limit),
			})
		}

		results, err := history.ByRoute(req.Origin, req.Destination, req.Limit)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no search history for requested route")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch search history")
		}

		return c.JSON(fiber.Map{
			"origin":      req.Origin,
			"destination": req.Destination,
			"searches":    results,
		})
	})
}

// searchQuery holds query parameters for the search endpoint.
type searchQuery struct {
	Origin      string    `validate:"required,len=3,alpha"`
	Destination string    `validate:"required,len=3,alpha"`
	From        time.Time `validate:"required"`
	To          time.Time `validate:"required,gtefield=From"`
	Long        bool
}

func (q *searchQuery) bind(c *fiber.Ctx) error {
	q.Origin = strings.ToUpper(c.Query("origin"))
	q.Destination = strings.ToUpper(c.Query("destination"))
	q.Long = c.QueryBool("long")

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseDate(fromStr)
	if err != nil {
		return err
	}
	to, err := parseDate(toStr)
	if err != nil {
		return err
	}
	q.From = from
	q.To = to

	return validate.Struct(q)
}

// historyQuery holds query parameters for the history endpoint. Origin and
// destination must be given together or not at all.
type historyQuery struct {
	Origin      string `validate:"omitempty,len=3,alpha"`
	Destination string `validate:"omitempty,len=3,alpha"`
	Limit       int    `validate:"gte=0,lte=100"`
}

func (q *historyQuery) bind(c *fiber.Ctx) error {
	q.Origin = strings.ToUpper(c.Query("origin"))
	q.Destination = strings.ToUpper(c.Query("destination"))

	if (q.Origin == "") != (q.Destination == "") {
		return errors.New("origin and destination must be provided together")
	}

	limitStr := c.Query("limit", "10")
	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		return errors.New("invalid limit; expected an integer")
	}
	q.Limit = limit

	return validate.Struct(q)
}

// parseDate tries to parse either a calendar date or RFC3339.
func parseDate(s string) (time.Time, error) {
	if ts, err := time.Parse("2006-01-02", s); err == nil {
		return ts, nil
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	return time.Time{}, errors.New("invalid date format; use YYYY-MM-DD or RFC3339")
}
