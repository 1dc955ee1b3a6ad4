package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/orcabay/sail-reservation/internal/model"
	"github.com/orcabay/sail-reservation/internal/service"
)

// BookingHandler serves the availability search and the reservation
// endpoint.
type BookingHandler struct {
	Availability *service.Availability
	Reservations *service.Reservations
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(av *service.Availability, res *service.Reservations) *BookingHandler {
	if av == nil || res == nil {
		panic("nil service passed to NewBookingHandler")
	}
	return &BookingHandler{Availability: av, Reservations: res}
}

// CheckAvailability handles POST /v1/bookings/check-availability.  It
// returns the admissible sails around the requested time, split into
// exactMatch / halfHourBefore / halfHourAfter.  All three lists empty
// is a normal 200 response, not an error.
func (h *BookingHandler) CheckAvailability(c echo.Context) error {
	var body struct {
		Date              string `json:"date"`
		Time              string `json:"time"`
		ActivityID        uint64 `json:"activity_id"`
		PopulationTypeID  uint64 `json:"population_type_id"`
		NumPeopleActivity int    `json:"num_people_activity"`
		NumPeopleSail     int    `json:"num_people_sail"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if _, err := time.Parse(model.DateFormat, body.Date); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	at, err := model.ParseClock(body.Time)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "time must be HH:MM"})
	}
	if body.ActivityID == 0 || body.PopulationTypeID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "activity_id and population_type_id are required"})
	}
	if body.NumPeopleActivity < 0 || body.NumPeopleSail < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "party sizes must not be negative"})
	}

	res, err := h.Availability.Search(c.Request().Context(), service.SearchQuery{
		Date:              body.Date,
		Time:              at,
		ActivityID:        body.ActivityID,
		PopulationTypeID:  body.PopulationTypeID,
		NumPeopleActivity: body.NumPeopleActivity,
		NumPeopleSail:     body.NumPeopleSail,
	})
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// newSailBody is the inline new-sail payload of a booking request.
type newSailBody struct {
	Date               string `json:"date"`
	PlannedStartTime   string `json:"planned_start_time"`
	BoatID             uint64 `json:"boat_id"`
	ActivityID         uint64 `json:"activity_id"`
	PopulationTypeID   uint64 `json:"population_type_id"`
	IsPrivateGroup     bool   `json:"is_private_group"`
	RequiresOrcaEscort bool   `json:"requires_orca_escort"`
}

// CreateBooking handles POST /v1/bookings.  The body targets either an
// existing sail (sail_id) or a new one (new_sail); the reservation
// service enforces exactly-one-of and runs the whole thing in a
// single transaction.  Responds 201 with the booking, 409 when the
// seats ran out between search and commit.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	var body struct {
		SailID            uint64              `json:"sail_id"`
		NewSail           *newSailBody        `json:"new_sail"`
		Customer          model.CustomerInput `json:"customer"`
		PaymentTypeID     uint64              `json:"payment_type_id"`
		FinalPriceCents   uint32              `json:"final_price_cents"`
		NumPeopleActivity int                 `json:"num_people_activity"`
		NumPeopleSail     int                 `json:"num_people_sail"`
		IsPhoneBooking    bool                `json:"is_phone_booking"`
		UpTo16Year        bool                `json:"up_to_16_year"`
		Notes             *string             `json:"notes"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	in := service.ReserveInput{
		SailID:            body.SailID,
		Customer:          body.Customer,
		PaymentTypeID:     body.PaymentTypeID,
		FinalPriceCents:   body.FinalPriceCents,
		NumPeopleActivity: body.NumPeopleActivity,
		NumPeopleSail:     body.NumPeopleSail,
		IsPhoneBooking:    body.IsPhoneBooking,
		UpTo16Year:        body.UpTo16Year,
		Notes:             body.Notes,
	}
	if body.NewSail != nil {
		at, err := model.ParseClock(body.NewSail.PlannedStartTime)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "new_sail.planned_start_time must be HH:MM"})
		}
		if _, err := time.Parse(model.DateFormat, body.NewSail.Date); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "new_sail.date must be YYYY-MM-DD"})
		}
		in.NewSail = &service.NewSailSpec{
			Date:               body.NewSail.Date,
			PlannedStartTime:   at,
			BoatID:             body.NewSail.BoatID,
			ActivityID:         body.NewSail.ActivityID,
			PopulationTypeID:   body.NewSail.PopulationTypeID,
			IsPrivateGroup:     body.NewSail.IsPrivateGroup,
			RequiresOrcaEscort: body.NewSail.RequiresOrcaEscort,
		}
	}

	out, err := h.Reservations.Reserve(c.Request().Context(), in)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}
