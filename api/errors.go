package api

import (
	"errors"
	"net/http"

	"github.com/tablebook/booking-client/backend"
	"github.com/tablebook/booking-client/view"
)

// upstreamStatus maps a failed booking API call to the status answered to
// the caller. Client errors of the booking API are passed through.
func upstreamStatus(err error) int {
	var remoteErr *backend.RemoteError

	if errors.As(err, &remoteErr) && remoteErr.Status >= 400 && remoteErr.Status < 500 {
		return remoteErr.Status
	}

	return http.StatusBadGateway
}

func noticeText(notice *view.Notice, fallback string) string {
	if notice == nil || len(notice.Text) == 0 {
		return fallback
	}

	return notice.Text
}
