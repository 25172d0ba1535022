package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/tablebook/booking-client/backend"
	bk "github.com/tablebook/booking-client/booking"
	"github.com/tablebook/booking-client/view"
)

type EntryView interface {
	State() view.EntryState
	Today() string
	SelectDate(ctx context.Context, date string) (view.EntryState, error)
	SelectTime(slot string) (view.EntryState, error)
	SetDetails(name, contact string, guests int) (view.EntryState, error)
	Submit(ctx context.Context) (backend.Booking, view.EntryState, error)
}

type dateRequest struct {
	Date string `json:"date" binding:"required"`
}

type timeRequest struct {
	Time string `json:"time" binding:"required"`
}

type detailsRequest struct {
	Name    string `json:"name" binding:"required"`
	Contact string `json:"contact" binding:"required"`
	Guests  int    `json:"guests" binding:"required,min=1"`
}

// submission is the draft as it must look before being sent.
type submission struct {
	Name    string `binding:"required"`
	Contact string `binding:"required"`
	Guests  int    `binding:"required,min=1"`
	Date    string `binding:"required"`
	Time    string `binding:"required"`
}

type EntryHandler struct {
	view        EntryView
	session     SessionIdentity
	summaryPath string
}

func NewEntryHandler(entry EntryView, session SessionIdentity, summaryPath string) *EntryHandler {
	return &EntryHandler{view: entry, session: session, summaryPath: summaryPath}
}

func (h *EntryHandler) Register(rg *gin.RouterGroup) {
	requireSession := RequireSession(h.session)
	rg.GET("", h.Get)
	rg.PUT("/date", h.SelectDate)
	rg.PUT("/time", h.SelectTime)
	rg.PUT("/details", h.SetDetails)
	rg.POST("/submit", requireSession, h.Submit)
}

func (h *EntryHandler) Get(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, gin.H{
		"today": h.view.Today(),
		"state": h.view.State(),
	})
}

func (h *EntryHandler) SelectDate(c *gin.Context) {
	var req dateRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse JSON body"})
		return
	}

	state, err := h.view.SelectDate(c.Request.Context(), req.Date)

	if err != nil {
		c.Error(err)

		switch {
		case errors.Is(err, view.ErrInvalidDate), errors.Is(err, view.ErrPastDate):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, view.ErrSuperseded):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, view.ErrViewClosed):
			c.JSON(http.StatusGone, gin.H{"error": err.Error()})
		default:
			c.JSON(upstreamStatus(err), gin.H{"error": noticeText(state.Notice, bk.MsgFetchFailed)})
		}

		return
	}

	c.IndentedJSON(http.StatusOK, state)
}

func (h *EntryHandler) SelectTime(c *gin.Context) {
	var req timeRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse JSON body"})
		return
	}

	state, err := h.view.SelectTime(req.Time)

	if err != nil {
		c.Error(err)

		switch {
		case errors.Is(err, view.ErrUnknownSlot):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, view.ErrSlotTaken), errors.Is(err, view.ErrSlotsNotLoaded):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, view.ErrViewClosed):
			c.JSON(http.StatusGone, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to select time"})
		}

		return
	}

	c.IndentedJSON(http.StatusOK, state)
}

func (h *EntryHandler) SetDetails(c *gin.Context) {
	var req detailsRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse JSON body"})
		return
	}

	state, err := h.view.SetDetails(req.Name, req.Contact, req.Guests)

	if err != nil {
		c.Error(err)

		if errors.Is(err, view.ErrViewClosed) {
			c.JSON(http.StatusGone, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to set details"})
		}

		return
	}

	c.IndentedJSON(http.StatusOK, state)
}

func (h *EntryHandler) Submit(c *gin.Context) {
	draft := h.view.State().Draft

	err := binding.Validator.ValidateStruct(submission{
		Name:    draft.Name,
		Contact: draft.Contact,
		Guests:  draft.Guests,
		Date:    draft.Date,
		Time:    draft.Time,
	})

	if err != nil {
		c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "booking is incomplete"})
		return
	}

	created, state, err := h.view.Submit(c.Request.Context())

	if err != nil {
		c.Error(err)

		switch {
		case errors.Is(err, bk.ErrUnauthenticated):
			c.JSON(http.StatusUnauthorized, gin.H{"error": noticeText(state.Notice, err.Error())})
		case errors.Is(err, bk.ErrIncompleteDraft):
			c.JSON(http.StatusBadRequest, gin.H{"error": noticeText(state.Notice, err.Error())})
		case errors.Is(err, view.ErrSlotTaken):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, view.ErrViewClosed):
			c.JSON(http.StatusGone, gin.H{"error": err.Error()})
		default:
			c.JSON(upstreamStatus(err), gin.H{"error": noticeText(state.Notice, bk.MsgCreateFailed)})
		}

		return
	}

	date := created.Date
	if len(date) == 0 {
		date = draft.Date
	}

	c.JSON(http.StatusCreated, gin.H{
		"booking": created,
		"state":   state,
		"summary": h.summaryPath + "?" + url.Values{"date": {date}}.Encode(),
	})
}
