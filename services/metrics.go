package services

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestSubmissions counts submission attempts by outcome (created or an error code).
	RequestSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campus_request_submissions_total",
		Help: "Total number of student request submissions by outcome",
	}, []string{"outcome"})

	// RequestDispositions counts admin decisions by resulting status.
	RequestDispositions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campus_request_dispositions_total",
		Help: "Total number of student requests approved or rejected",
	}, []string{"status"})

	// RequestDeletions counts requests withdrawn by their owner.
	RequestDeletions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campus_request_deletions_total",
		Help: "Total number of pending requests deleted by their owner",
	})

	// ReceiptCleanupFailures counts receipts that could not be removed after a request was dropped.
	ReceiptCleanupFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campus_receipt_cleanup_failures_total",
		Help: "Total number of receipt blobs left behind after a failed cleanup",
	})
)

func submissionOutcome(err error) string {
	if err == nil {
		return "created"
	}
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != "" {
		return appErr.Code
	}
	return "error"
}
