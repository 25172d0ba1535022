package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	bk "github.com/tablebook/booking-client/booking"
	"github.com/tablebook/booking-client/view"
)

type SummaryView interface {
	Open(ctx context.Context, date string) (view.SummaryState, error)
	Cancel(ctx context.Context, id string) (view.SummaryState, error)
}

type SummaryHandler struct {
	view      SummaryView
	session   SessionIdentity
	entryPath string
}

func NewSummaryHandler(summary SummaryView, session SessionIdentity, entryPath string) *SummaryHandler {
	return &SummaryHandler{view: summary, session: session, entryPath: entryPath}
}

func (h *SummaryHandler) Register(rg *gin.RouterGroup) {
	requireSession := RequireSession(h.session)
	rg.GET("", h.Open)
	rg.DELETE("/bookings/:id", requireSession, h.Cancel)
}

// Open shows the bookings of the requested date. Anonymous viewers and
// requests without any date are sent back to the entry view.
func (h *SummaryHandler) Open(c *gin.Context) {
	state, err := h.view.Open(c.Request.Context(), c.Query("date"))

	if err != nil {
		switch {
		case errors.Is(err, view.ErrRedirectToEntry):
			c.Redirect(http.StatusSeeOther, h.entryPath)
		case errors.Is(err, view.ErrSuperseded):
			c.Error(err)
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, view.ErrViewClosed):
			c.Error(err)
			c.JSON(http.StatusGone, gin.H{"error": err.Error()})
		default:
			c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": bk.MsgFetchFailed})
		}

		return
	}

	c.IndentedJSON(http.StatusOK, state)
}

func (h *SummaryHandler) Cancel(c *gin.Context) {
	id := c.Param("id")

	state, err := h.view.Cancel(c.Request.Context(), id)

	if err != nil {
		c.Error(err)

		switch {
		case errors.Is(err, view.ErrListingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		case errors.Is(err, bk.ErrUnauthenticated):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authentication"})
		case errors.Is(err, bk.ErrNotAllowed):
			c.JSON(http.StatusForbidden, gin.H{"error": noticeText(state.Notice, "not allowed to cancel this booking")})
		case errors.Is(err, view.ErrViewClosed):
			c.JSON(http.StatusGone, gin.H{"error": err.Error()})
		default:
			c.JSON(upstreamStatus(err), gin.H{"error": noticeText(state.Notice, bk.MsgCancelFailed)})
		}

		return
	}

	c.IndentedJSON(http.StatusOK, state)
}
