package handler

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/gymcard/internal/ethiopian"
	"github.com/mansoorceksport/gymcard/internal/membership"
	"github.com/mansoorceksport/gymcard/internal/telemetry"
)

// CalendarHandler exposes the Ethiopian calendar converter
type CalendarHandler struct {
	calc    *membership.Calculator
	metrics *telemetry.Metrics
}

func NewCalendarHandler(calc *membership.Calculator, metrics *telemetry.Metrics) *CalendarHandler {
	return &CalendarHandler{calc: calc, metrics: metrics}
}

func (h *CalendarHandler) done(c *fiber.Ctx, op string, err error, data fiber.Map) error {
	h.metrics.CalendarRequest(op, err)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": data})
}

// ToGregorian handles GET /v1/calendar/to-gregorian?date=YYYY-MM-DD (Ethiopian)
func (h *CalendarHandler) ToGregorian(c *fiber.Ctx) error {
	in := c.Query("date")
	g, err := ethiopian.EthiopianToGregorian(in)
	if err != nil {
		return h.done(c, "to-gregorian", err, nil)
	}
	return h.done(c, "to-gregorian", nil, fiber.Map{
		"ethiopian": in,
		"gregorian": g.Format(time.DateOnly),
		"formatted": ethiopian.FormatDate(in),
	})
}

// ToEthiopian handles GET /v1/calendar/to-ethiopian?date=YYYY-MM-DD (Gregorian)
func (h *CalendarHandler) ToEthiopian(c *fiber.Ctx) error {
	in := c.Query("date")
	if in == "" {
		return h.done(c, "to-ethiopian", ethiopian.ErrMissingInput, nil)
	}
	g, err := time.Parse(time.DateOnly, in)
	if err != nil {
		return h.done(c, "to-ethiopian", ethiopian.ErrInvalidFormat, nil)
	}
	e, err := ethiopian.GregorianToEthiopian(g)
	if err != nil {
		return h.done(c, "to-ethiopian", err, nil)
	}
	return h.done(c, "to-ethiopian", nil, fiber.Map{
		"gregorian": in,
		"ethiopian": e,
		"formatted": ethiopian.FormatDate(e),
	})
}

// Format handles GET /v1/calendar/format?date=
// Never fails: unreadable input comes back unchanged.
func (h *CalendarHandler) Format(c *fiber.Ctx) error {
	in := c.Query("date")
	return h.done(c, "format", nil, fiber.Map{
		"date":      in,
		"formatted": ethiopian.FormatDate(in),
	})
}

// AddMonths handles GET /v1/calendar/add-months?date=&months=
func (h *CalendarHandler) AddMonths(c *fiber.Ctx) error {
	months, err := strconv.Atoi(c.Query("months"))
	if err != nil {
		return h.done(c, "add-months", ethiopian.ErrInvalidFormat, nil)
	}
	out, err := ethiopian.AddMonths(c.Query("date"), months)
	if err != nil {
		return h.done(c, "add-months", err, nil)
	}
	return h.done(c, "add-months", nil, fiber.Map{
		"date":   c.Query("date"),
		"months": months,
		"result": out,
	})
}

// DaysBetween handles GET /v1/calendar/days-between?from=&to=
func (h *CalendarHandler) DaysBetween(c *fiber.Ctx) error {
	n, err := ethiopian.DaysBetween(c.Query("from"), c.Query("to"))
	if err != nil {
		return h.done(c, "days-between", err, nil)
	}
	return h.done(c, "days-between", nil, fiber.Map{
		"from": c.Query("from"),
		"to":   c.Query("to"),
		"days": n,
	})
}

// Leap handles GET /v1/calendar/leap/:year
func (h *CalendarHandler) Leap(c *fiber.Ctx) error {
	year, err := strconv.Atoi(c.Params("year"))
	if err != nil {
		return h.done(c, "leap", ethiopian.ErrInvalidFormat, nil)
	}
	return h.done(c, "leap", nil, fiber.Map{
		"year":       year,
		"leap":       ethiopian.IsLeapYear(year),
		"pagumeDays": ethiopian.DaysInMonth(year, ethiopian.Pagume),
		"daysInYear": ethiopian.DaysInYear(year),
	})
}

// Today handles GET /v1/calendar/today
func (h *CalendarHandler) Today(c *fiber.Ctx) error {
	today := h.calc.Today()
	e, err := ethiopian.GregorianToEthiopian(today)
	if err != nil {
		return h.done(c, "today", err, nil)
	}
	return h.done(c, "today", nil, fiber.Map{
		"gregorian": today.Format(time.DateOnly),
		"ethiopian": e,
		"formatted": ethiopian.FormatDate(e),
	})
}
